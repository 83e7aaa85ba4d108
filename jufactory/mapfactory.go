package jufactory

import "github.com/lattice-substrate/jsonurl/junumber"

// MapFactory is a reference Factory binding onto plain Go values: arrays
// become []any, objects become map[string]any, numbers become whichever
// of int64/*big.Int/float64/*big.Float junumber.Build classifies them as.
// Concrete tree bindings are explicitly out of scope for the core per
// spec.md §1; MapFactory exists so the driver and the grammar can be
// exercised end-to-end in tests without a caller-supplied binding.
type MapFactory struct {
	// Policy controls number classification. The zero value uses
	// junumber.DefaultPolicy().
	Policy junumber.Policy
}

func (f MapFactory) policy() junumber.Policy {
	if f.Policy == (junumber.Policy{}) {
		return junumber.DefaultPolicy()
	}
	return f.Policy
}

func (MapFactory) NewArrayBuilder() any  { return &[]any{} }
func (MapFactory) NewObjectBuilder() any { return &map[string]any{} }

func (MapFactory) Add(arrayBuilder any, v any) {
	b := arrayBuilder.(*[]any)
	*b = append(*b, v)
}

func (MapFactory) Put(objectBuilder any, key string, v any) {
	b := objectBuilder.(*map[string]any)
	(*b)[key] = v
}

func (MapFactory) FinalizeArray(arrayBuilder any) any {
	return []any(*arrayBuilder.(*[]any))
}

func (MapFactory) FinalizeObject(objectBuilder any) any {
	return map[string]any(*objectBuilder.(*map[string]any))
}

func (MapFactory) True() any  { return true }
func (MapFactory) False() any { return false }
func (MapFactory) Null() any  { return nil }

// EmptyComposite has no array-vs-object information in the event stream
// alone; MapFactory resolves it to an empty array. A binding that needs
// to distinguish `()` from `(:)` should track NO_EMPTY_COMPOSITE itself.
func (MapFactory) EmptyComposite() any { return []any{} }

func (MapFactory) EmptyLiteral() any { return "" }

func (MapFactory) String(s string) any { return s }

func (f MapFactory) Number(t *junumber.Text) any {
	v, err := junumber.Build(t, f.policy())
	if err != nil {
		return t.Raw()
	}
	switch v.Kind {
	case junumber.KindInt64:
		return v.Int64
	case junumber.KindBigInt:
		return v.BigInt
	case junumber.KindFloat64:
		return v.Float64
	default:
		return v.BigDecimal
	}
}
