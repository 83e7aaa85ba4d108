package juparse

import (
	"testing"

	"github.com/lattice-substrate/jsonurl/juerr"
	"github.com/lattice-substrate/jsonurl/juevent"
	"github.com/lattice-substrate/jsonurl/juopts"
)

type recorded struct {
	kind juevent.Kind
	str  string
}

func drain(t *testing.T, p *Parser) ([]recorded, error) {
	t.Helper()
	var out []recorded
	for {
		k, err := p.Next()
		if err != nil {
			return out, err
		}
		r := recorded{kind: k}
		if k == juevent.KeyName || k == juevent.ValueString {
			r.str = p.String()
		}
		out = append(out, r)
		if k == juevent.EndStream {
			return out, nil
		}
	}
}

func assertSequence(t *testing.T, got []recorded, want []recorded) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("event count mismatch: got %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i].kind != want[i].kind {
			t.Fatalf("event %d: got kind %v, want %v (full: %+v)", i, got[i].kind, want[i].kind, got)
		}
		if want[i].str != "" && got[i].str != want[i].str {
			t.Fatalf("event %d: got string %q, want %q", i, got[i].str, want[i].str)
		}
	}
}

func TestScenario1ArrayOfStrings(t *testing.T) {
	p := New([]byte("(hello,World!)"), juopts.Options{}, juopts.DefaultLimits())
	got, err := drain(t, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertSequence(t, got, []recorded{
		{kind: juevent.StartArray},
		{kind: juevent.ValueString, str: "hello"},
		{kind: juevent.ValueString, str: "World!"},
		{kind: juevent.EndArray},
		{kind: juevent.EndStream},
	})
}

func TestScenario2NestedObjects(t *testing.T) {
	p := New([]byte("(a:(b:(c:d)))"), juopts.Options{}, juopts.DefaultLimits())
	got, err := drain(t, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertSequence(t, got, []recorded{
		{kind: juevent.StartObject},
		{kind: juevent.KeyName, str: "a"},
		{kind: juevent.StartObject},
		{kind: juevent.KeyName, str: "b"},
		{kind: juevent.StartObject},
		{kind: juevent.KeyName, str: "c"},
		{kind: juevent.ValueString, str: "d"},
		{kind: juevent.EndObject},
		{kind: juevent.EndObject},
		{kind: juevent.EndObject},
		{kind: juevent.EndStream},
	})
}

func TestScenario3PercentDecodedValue(t *testing.T) {
	p := New([]byte("(a:hello%C2%A2world)"), juopts.Options{}, juopts.DefaultLimits())
	got, err := drain(t, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertSequence(t, got, []recorded{
		{kind: juevent.StartObject},
		{kind: juevent.KeyName, str: "a"},
		{kind: juevent.ValueString, str: "hello¢world"},
		{kind: juevent.EndObject},
		{kind: juevent.EndStream},
	})
}

func TestScenario4WFUImpliedObject(t *testing.T) {
	p := New([]byte("a=b&c=d"), juopts.NewOptions(juopts.WFUComposite), juopts.DefaultLimits())
	p.SetImplied(ImpliedObject)
	got, err := drain(t, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertSequence(t, got, []recorded{
		{kind: juevent.KeyName, str: "a"},
		{kind: juevent.ValueString, str: "b"},
		{kind: juevent.KeyName, str: "c"},
		{kind: juevent.ValueString, str: "d"},
		{kind: juevent.EndStream},
	})
}

func TestScenario5WFUMissingValue(t *testing.T) {
	p := New([]byte("a=b&c"), juopts.NewOptions(juopts.WFUComposite), juopts.DefaultLimits())
	p.SetImplied(ImpliedObject)
	got, err := drain(t, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertSequence(t, got, []recorded{
		{kind: juevent.KeyName, str: "a"},
		{kind: juevent.ValueString, str: "b"},
		{kind: juevent.KeyName, str: "c"},
		{kind: juevent.ValueMissing},
		{kind: juevent.EndStream},
	})
}

func TestScenario6NumberWithExponent(t *testing.T) {
	p := New([]byte("1e+2"), juopts.Options{}, juopts.DefaultLimits())
	k, err := p.Next()
	if err != nil || k != juevent.ValueNumber {
		t.Fatalf("got kind=%v err=%v", k, err)
	}
	if p.NumberText().Raw() != "1e+2" {
		t.Fatalf("unexpected raw text: %q", p.NumberText().Raw())
	}
	if !p.NumberText().IsLong() {
		t.Fatal("expected 1e+2 to classify as long (100)")
	}
	if k, err := p.Next(); err != nil || k != juevent.EndStream {
		t.Fatalf("got kind=%v err=%v", k, err)
	}
}

func TestScenario7AQFEmptyLiteral(t *testing.T) {
	p := New([]byte("!e"), juopts.NewOptions(juopts.AQF), juopts.DefaultLimits())
	got, err := drain(t, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertSequence(t, got, []recorded{
		{kind: juevent.ValueEmptyLiteral},
		{kind: juevent.EndStream},
	})
}

func TestScenario8MaxValuesLimit(t *testing.T) {
	limits := juopts.NewLimitsBuilder().MaxParseValues(2).Build()
	p := New([]byte("(true,false,false)"), juopts.Options{}, limits)
	_, err := drain(t, p)
	if err == nil {
		t.Fatal("expected a limit error")
	}
	var limitErr *juerr.LimitError
	if ok := asLimitError(err, &limitErr); !ok {
		t.Fatalf("expected *juerr.LimitError, got %T: %v", err, err)
	}
	if limitErr.Kind != juerr.MaxParseValues {
		t.Fatalf("expected MaxParseValues, got %v", limitErr.Kind)
	}
}

func TestScenario9ExtraTextAfterValue(t *testing.T) {
	p := New([]byte("()a"), juopts.Options{}, juopts.DefaultLimits())
	_, err := drain(t, p)
	var syntaxErr *juerr.SyntaxError
	if ok := asSyntaxError(err, &syntaxErr); !ok {
		t.Fatalf("expected *juerr.SyntaxError, got %T: %v", err, err)
	}
	if syntaxErr.Offset != 2 {
		t.Fatalf("expected offset 2, got %d", syntaxErr.Offset)
	}
}

func TestScenario10AQFEscapedPlus(t *testing.T) {
	p := New([]byte("1e!+2"), juopts.NewOptions(juopts.AQF), juopts.DefaultLimits())
	got, err := drain(t, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertSequence(t, got, []recorded{
		{kind: juevent.ValueString, str: "1e+2"},
		{kind: juevent.EndStream},
	})
}

func TestEmptyComposite(t *testing.T) {
	p := New([]byte("()"), juopts.Options{}, juopts.DefaultLimits())
	got, err := drain(t, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertSequence(t, got, []recorded{
		{kind: juevent.ValueEmptyComposite},
		{kind: juevent.EndStream},
	})
}

func TestQuotedStringWithEmbeddedQuoteEscape(t *testing.T) {
	p := New([]byte("'it%27s'"), juopts.Options{}, juopts.DefaultLimits())
	k, err := p.Next()
	if err != nil || k != juevent.ValueString {
		t.Fatalf("got kind=%v err=%v", k, err)
	}
	if p.String() != "it's" {
		t.Fatalf("got %q", p.String())
	}
}

func asLimitError(err error, target **juerr.LimitError) bool {
	if le, ok := err.(*juerr.LimitError); ok {
		*target = le
		return true
	}
	return false
}

func asSyntaxError(err error, target **juerr.SyntaxError) bool {
	if se, ok := err.(*juerr.SyntaxError); ok {
		*target = se
		return true
	}
	return false
}
