package juevent

import "testing"

func TestKindStringNames(t *testing.T) {
	cases := map[Kind]string{
		StartArray:  "StartArray",
		EndObject:   "EndObject",
		ValueNumber: "ValueNumber",
		EndStream:   "EndStream",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}

func TestKindStringOutOfRange(t *testing.T) {
	if got := Kind(999).String(); got != "<unknown event>" {
		t.Errorf("unexpected string for out-of-range kind: %q", got)
	}
}

func TestIsStructural(t *testing.T) {
	for _, k := range []Kind{StartArray, EndArray, StartObject, EndObject} {
		if !k.IsStructural() {
			t.Errorf("%v expected structural", k)
		}
	}
	for _, k := range []Kind{KeyName, ValueString, ValueNumber, EndStream} {
		if k.IsStructural() {
			t.Errorf("%v unexpected structural", k)
		}
	}
}

func TestIsValue(t *testing.T) {
	for _, k := range []Kind{ValueString, ValueNumber, ValueTrue, ValueFalse,
		ValueNull, ValueEmptyLiteral, ValueEmptyComposite, ValueMissing,
		StartArray, StartObject} {
		if !k.IsValue() {
			t.Errorf("%v expected to be a value kind", k)
		}
	}
	for _, k := range []Kind{KeyName, EndArray, EndObject, EndStream} {
		if k.IsValue() {
			t.Errorf("%v unexpected value kind", k)
		}
	}
}
