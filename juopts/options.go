// Package juopts defines the JSON→URL option lattice (dialect toggles) and
// the parse-time resource Limits, per spec.md §3/§4.5.
//
// Grounded on the teacher's jcstoken.Options{MaxDepth, MaxInputSize} with
// its maxDepth()/maxInputSize() zero-value-fallback accessor methods,
// generalized from two int fields to a small bitset (the option lattice)
// plus a three-field Limits record with the same fallback-accessor shape.
package juopts

// Option is one bit in the dialect/behavior lattice described by spec.md §3.
type Option uint32

const (
	// AQF selects the "!"-escape dialect in place of percent/quote rules.
	AQF Option = 1 << iota
	// WFUComposite enables "&"/"=" as additional top-level separators.
	WFUComposite
	// ImpliedStringLiterals treats every bare token as a string.
	ImpliedStringLiterals
	// EmptyUnquotedKey allows a zero-length bare token as an object key.
	EmptyUnquotedKey
	// EmptyUnquotedValue allows a zero-length bare token as a value.
	EmptyUnquotedValue
	// CoerceNullToEmptyString rewrites null to "" on output.
	CoerceNullToEmptyString
	// SkipNulls omits null-valued array/object entries on output.
	SkipNulls
	// NoEmptyComposite serializes {} as "(:)" instead of "()".
	NoEmptyComposite
)

// Options is an immutable subset of the Option lattice.
type Options struct {
	bits Option
}

// NewOptions builds an Options set from the given flags.
func NewOptions(flags ...Option) Options {
	var o Options
	for _, f := range flags {
		o.bits |= f
	}
	return o
}

// Has reports whether opt is set.
func (o Options) Has(opt Option) bool { return o.bits&opt != 0 }

// With returns a new Options with opt set, leaving the receiver untouched.
func (o Options) With(opt Option) Options { return Options{bits: o.bits | opt} }

// Without returns a new Options with opt cleared, leaving the receiver
// untouched.
func (o Options) Without(opt Option) Options { return Options{bits: o.bits &^ opt} }

// Default limits, matching the magnitudes spec.md §3 suggests.
const (
	DefaultMaxParseChars  = 65536
	DefaultMaxParseDepth  = 32
	DefaultMaxParseValues = 4096
)

// Limits bounds parse-time resource consumption. The zero value falls back
// to the package defaults via the accessor methods below, mirroring the
// teacher's Options.maxDepth()/maxInputSize() pattern.
type Limits struct {
	MaxParseChars  int
	MaxParseDepth  int
	MaxParseValues int
}

// DefaultLimits returns the sane-default Limits named in spec.md §3.
func DefaultLimits() Limits {
	return Limits{
		MaxParseChars:  DefaultMaxParseChars,
		MaxParseDepth:  DefaultMaxParseDepth,
		MaxParseValues: DefaultMaxParseValues,
	}
}

func (l Limits) maxParseChars() int {
	if l.MaxParseChars > 0 {
		return l.MaxParseChars
	}
	return DefaultMaxParseChars
}

func (l Limits) maxParseDepth() int {
	if l.MaxParseDepth > 0 {
		return l.MaxParseDepth
	}
	return DefaultMaxParseDepth
}

func (l Limits) maxParseValues() int {
	if l.MaxParseValues > 0 {
		return l.MaxParseValues
	}
	return DefaultMaxParseValues
}

// MaxChars returns the effective character cap (falling back to the
// package default when unset).
func (l Limits) MaxChars() int { return l.maxParseChars() }

// MaxDepth returns the effective nesting-depth cap (falling back to the
// package default when unset).
func (l Limits) MaxDepth() int { return l.maxParseDepth() }

// MaxValues returns the effective value-count cap (falling back to the
// package default when unset).
func (l Limits) MaxValues() int { return l.maxParseValues() }

// LimitsBuilder incrementally constructs a Limits value, per spec.md
// §4.5's "a builder pattern is recommended for limits."
type LimitsBuilder struct {
	limits Limits
}

// NewLimitsBuilder starts from the package defaults.
func NewLimitsBuilder() *LimitsBuilder {
	return &LimitsBuilder{limits: DefaultLimits()}
}

// MaxParseChars sets the character-count cap.
func (b *LimitsBuilder) MaxParseChars(n int) *LimitsBuilder {
	b.limits.MaxParseChars = n
	return b
}

// MaxParseDepth sets the nesting-depth cap.
func (b *LimitsBuilder) MaxParseDepth(n int) *LimitsBuilder {
	b.limits.MaxParseDepth = n
	return b
}

// MaxParseValues sets the total value-count cap.
func (b *LimitsBuilder) MaxParseValues(n int) *LimitsBuilder {
	b.limits.MaxParseValues = n
	return b
}

// Build returns the assembled Limits.
func (b *LimitsBuilder) Build() Limits {
	return b.limits
}
