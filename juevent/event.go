// Package juevent defines the closed set of JSON→URL parse events and
// their payload contracts, per spec.md §3/§4.9 (C9).
//
// Grounded on jcstoken.Kind's closed enum + lookup-table String() method,
// generalized from six JSON value kinds to the fourteen-member JSON→URL
// event set (structural open/close events plus the extra "missing" and
// "empty" sentinel values this encoding needs that plain JSON does not).
package juevent

// Kind is one of the closed set of parse events.
type Kind int

const (
	// StartArray opens an array composite.
	StartArray Kind = iota
	// EndArray closes an array composite.
	EndArray
	// StartObject opens an object composite.
	StartObject
	// EndObject closes an object composite.
	EndObject
	// KeyName is an object member name; always immediately followed by an
	// object-value event or, under WFU, ValueMissing.
	KeyName
	// ValueString is a string value (or key-position string — see KeyName).
	ValueString
	// ValueNumber is a numeric value; its payload is a *junumber.Text.
	ValueNumber
	// ValueTrue is the literal boolean true.
	ValueTrue
	// ValueFalse is the literal boolean false.
	ValueFalse
	// ValueNull is the literal null.
	ValueNull
	// ValueEmptyLiteral is the empty string, written as !e (AQF) or ''
	// (non-AQF) or a zero-length bare token when permitted.
	ValueEmptyLiteral
	// ValueEmptyComposite is an empty array/object, "()".
	ValueEmptyComposite
	// ValueMissing is a WFU object entry whose key had no value separator.
	ValueMissing
	// EndStream is always the last event produced, and idempotent
	// thereafter.
	EndStream
)

var kindNames = [...]string{
	"StartArray",
	"EndArray",
	"StartObject",
	"EndObject",
	"KeyName",
	"ValueString",
	"ValueNumber",
	"ValueTrue",
	"ValueFalse",
	"ValueNull",
	"ValueEmptyLiteral",
	"ValueEmptyComposite",
	"ValueMissing",
	"EndStream",
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "<unknown event>"
	}
	return kindNames[k]
}

// IsStructural reports whether k opens or closes a composite.
func (k Kind) IsStructural() bool {
	switch k {
	case StartArray, EndArray, StartObject, EndObject:
		return true
	default:
		return false
	}
}

// IsValue reports whether k is one of the "value" events (i.e. something
// a consumer would bind to an array element or object value).
func (k Kind) IsValue() bool {
	switch k {
	case ValueString, ValueNumber, ValueTrue, ValueFalse, ValueNull,
		ValueEmptyLiteral, ValueEmptyComposite, ValueMissing,
		StartArray, StartObject:
		return true
	default:
		return false
	}
}
