// Package jsonurl is a thin façade over the jsonurl component packages:
// jucursor, judecode, junumber, juerr, juopts, juevent, juparse,
// jufactory, and jubuild. It re-exports the surface a typical caller
// needs — Parse/Write against plain Go values, plus ParseToFactory for
// callers with their own value-tree binding — without requiring direct
// imports of every component package.
package jsonurl

import (
	"github.com/lattice-substrate/jsonurl/juerr"
	"github.com/lattice-substrate/jsonurl/jufactory"
	"github.com/lattice-substrate/jsonurl/juopts"
)

// Options and Limits are re-exported so callers need not import juopts
// for the common case.
type (
	Options = juopts.Options
	Option  = juopts.Option
	Limits  = juopts.Limits
)

const (
	AQF                     = juopts.AQF
	WFUComposite            = juopts.WFUComposite
	ImpliedStringLiterals   = juopts.ImpliedStringLiterals
	EmptyUnquotedKey        = juopts.EmptyUnquotedKey
	EmptyUnquotedValue      = juopts.EmptyUnquotedValue
	CoerceNullToEmptyString = juopts.CoerceNullToEmptyString
	SkipNulls               = juopts.SkipNulls
	NoEmptyComposite        = juopts.NoEmptyComposite
)

// NewOptions re-exports juopts.NewOptions.
func NewOptions(flags ...Option) Options { return juopts.NewOptions(flags...) }

// DefaultLimits re-exports juopts.DefaultLimits.
func DefaultLimits() Limits { return juopts.DefaultLimits() }

// SyntaxError and LimitError are re-exported for callers that want to
// type-switch on parse/serialize failures without importing juerr.
type (
	SyntaxError = juerr.SyntaxError
	LimitError  = juerr.LimitError
)

// Factory re-exports jufactory.Factory, the value-factory interface
// ParseToFactory drives.
type Factory = jufactory.Factory

// MissingValueProvider re-exports jufactory.MissingValueProvider.
type MissingValueProvider = jufactory.MissingValueProvider

// Parse decodes text as a JSON→URL document into plain Go values:
// map[string]any, []any, string, bool, nil, and int64/*big.Int/
// float64/*big.Float depending on each number's magnitude and the
// default junumber.Policy. For a caller-owned value tree, use
// ParseToFactory instead.
func Parse(text []byte, opts Options, limits Limits) (any, error) {
	return jufactory.NewDriver(jufactory.MapFactory{}).Parse(text, opts, limits)
}

// ParseToFactory decodes text exactly as Parse does, but assembles the
// result through a caller-supplied Factory rather than the built-in
// MapFactory binding.
func ParseToFactory(text []byte, factory Factory, opts Options, limits Limits) (any, error) {
	return jufactory.NewDriver(factory).Parse(text, opts, limits)
}

// ValueFactoryParser is a reusable parser bound to one Factory, mirroring
// spec.md §6's ValueFactoryParser.parse/parseArray/parseObject surface.
type ValueFactoryParser struct {
	driver *jufactory.Driver
}

// NewValueFactoryParser constructs a ValueFactoryParser over factory.
func NewValueFactoryParser(factory Factory) *ValueFactoryParser {
	return &ValueFactoryParser{driver: jufactory.NewDriver(factory)}
}

// WithMissingValueProvider installs the substitute for WFU missing
// values and returns the receiver for chaining.
func (p *ValueFactoryParser) WithMissingValueProvider(provider MissingValueProvider) *ValueFactoryParser {
	p.driver.WithMissingValueProvider(provider)
	return p
}

// Parse parses text as an ordinary (non-implied) document.
func (p *ValueFactoryParser) Parse(text []byte, opts Options, limits Limits) (any, error) {
	return p.driver.Parse(text, opts, limits)
}

// ParseArray parses text as the body of an implied array.
func (p *ValueFactoryParser) ParseArray(text []byte, opts Options, limits Limits) (any, error) {
	return p.driver.ParseArray(text, opts, limits)
}

// ParseObject parses text as the body of an implied object.
func (p *ValueFactoryParser) ParseObject(text []byte, opts Options, limits Limits) (any, error) {
	return p.driver.ParseObject(text, opts, limits)
}
