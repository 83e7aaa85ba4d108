package juopts

import "testing"

func TestOptionsHasAndWith(t *testing.T) {
	o := NewOptions(AQF, SkipNulls)
	if !o.Has(AQF) || !o.Has(SkipNulls) {
		t.Fatal("expected both flags set")
	}
	if o.Has(WFUComposite) {
		t.Fatal("unexpected flag set")
	}
	o2 := o.With(WFUComposite)
	if !o2.Has(WFUComposite) || o.Has(WFUComposite) {
		t.Fatal("With must not mutate receiver")
	}
	o3 := o2.Without(AQF)
	if o3.Has(AQF) || !o2.Has(AQF) {
		t.Fatal("Without must not mutate receiver")
	}
}

func TestLimitsDefaults(t *testing.T) {
	var l Limits
	if l.MaxChars() != DefaultMaxParseChars {
		t.Fatalf("got %d", l.MaxChars())
	}
	if l.MaxDepth() != DefaultMaxParseDepth {
		t.Fatalf("got %d", l.MaxDepth())
	}
	if l.MaxValues() != DefaultMaxParseValues {
		t.Fatalf("got %d", l.MaxValues())
	}
}

func TestLimitsBuilder(t *testing.T) {
	l := NewLimitsBuilder().MaxParseDepth(4).MaxParseValues(10).Build()
	if l.MaxDepth() != 4 || l.MaxValues() != 10 {
		t.Fatalf("unexpected limits: %+v", l)
	}
	if l.MaxChars() != DefaultMaxParseChars {
		t.Fatalf("expected default chars cap, got %d", l.MaxChars())
	}
}
