// Package jufactory bridges a juparse event stream to a caller-supplied
// value tree via a small capability interface, per spec.md §4.6 (C6).
//
// Grounded on jcstoken.parser.parseObjectMembers/parseArray's
// accumulate-into-v.Members/v.Elems pattern, generalized from "build this
// one concrete *jcstoken.Value tree" to "call back into whatever tree the
// caller's Factory implementation owns" — the polymorphism spec.md §9
// asks for in place of the original's deeply generic capability type.
package jufactory

import (
	"fmt"

	"github.com/lattice-substrate/jsonurl/juerr"
	"github.com/lattice-substrate/jsonurl/juevent"
	"github.com/lattice-substrate/jsonurl/junumber"
	"github.com/lattice-substrate/jsonurl/juopts"
	"github.com/lattice-substrate/jsonurl/juparse"
)

// Factory is implemented by callers to receive parse events as calls
// that build their own value representation. Builders and values are
// opaque to the driver; it only ever passes them back to the same
// Factory that produced them.
type Factory interface {
	NewArrayBuilder() any
	NewObjectBuilder() any
	Add(arrayBuilder any, v any)
	Put(objectBuilder any, key string, v any)
	FinalizeArray(arrayBuilder any) any
	FinalizeObject(objectBuilder any) any

	True() any
	False() any
	Null() any
	EmptyComposite() any
	EmptyLiteral() any
	String(s string) any
	Number(t *junumber.Text) any
}

// MissingValueProvider supplies a substitute value for a WFU object entry
// whose key had no value separator (spec.md §4.4's ValueMissing event).
type MissingValueProvider func(key string) (any, error)

// Driver consumes a juparse event stream and assembles a value using a
// Factory. A Driver is reusable across parses.
type Driver struct {
	factory Factory
	missing MissingValueProvider
}

// NewDriver constructs a Driver over factory. The default
// MissingValueProvider raises a SyntaxError naming the pending key; set
// one with WithMissingValueProvider to substitute a default instead.
func NewDriver(factory Factory) *Driver {
	return &Driver{factory: factory}
}

// WithMissingValueProvider installs p as the substitute for WFU missing
// values and returns the receiver for chaining.
func (d *Driver) WithMissingValueProvider(p MissingValueProvider) *Driver {
	d.missing = p
	return d
}

// Parse parses text as an ordinary (non-implied) JSON→URL document.
func (d *Driver) Parse(text []byte, opts juopts.Options, limits juopts.Limits) (any, error) {
	p := juparse.New(text, opts, limits)
	return d.run(p, juparse.ImpliedNone)
}

// ParseArray parses text as the body of an implied array.
func (d *Driver) ParseArray(text []byte, opts juopts.Options, limits juopts.Limits) (any, error) {
	p := juparse.New(text, opts, limits)
	p.SetImplied(juparse.ImpliedArray)
	return d.run(p, juparse.ImpliedArray)
}

// ParseObject parses text as the body of an implied object.
func (d *Driver) ParseObject(text []byte, opts juopts.Options, limits juopts.Limits) (any, error) {
	p := juparse.New(text, opts, limits)
	p.SetImplied(juparse.ImpliedObject)
	return d.run(p, juparse.ImpliedObject)
}

type builderKind int

const (
	builderArray builderKind = iota
	builderObject
)

type builderFrame struct {
	kind    builderKind
	builder any
}

// run drives p to completion, maintaining the key stack and builder
// stack spec.md §4.6 describes. Implied composites are seeded onto the
// builder stack up front, since juparse never emits a Start/End pair for
// them; EndStream finalizes the seed directly.
func (d *Driver) run(p *juparse.Parser, implied juparse.ImpliedKind) (any, error) {
	var keys []string
	var builders []builderFrame
	var final any
	haveFinal := false

	switch implied {
	case juparse.ImpliedArray:
		builders = append(builders, builderFrame{kind: builderArray, builder: d.factory.NewArrayBuilder()})
	case juparse.ImpliedObject:
		builders = append(builders, builderFrame{kind: builderObject, builder: d.factory.NewObjectBuilder()})
	}

	deliver := func(v any) error {
		if len(builders) == 0 {
			final, haveFinal = v, true
			return nil
		}
		top := builders[len(builders)-1]
		if top.kind == builderArray {
			d.factory.Add(top.builder, v)
			return nil
		}
		if len(keys) == 0 {
			return fmt.Errorf("jufactory: internal: object value with no pending key")
		}
		key := keys[len(keys)-1]
		keys = keys[:len(keys)-1]
		d.factory.Put(top.builder, key, v)
		return nil
	}

	popAndFinalize := func(kind builderKind) (any, error) {
		if len(builders) == 0 {
			return nil, fmt.Errorf("jufactory: internal: close event with no open builder")
		}
		top := builders[len(builders)-1]
		builders = builders[:len(builders)-1]
		if top.kind != kind {
			return nil, fmt.Errorf("jufactory: internal: builder kind mismatch on close")
		}
		if kind == builderArray {
			return d.factory.FinalizeArray(top.builder), nil
		}
		return d.factory.FinalizeObject(top.builder), nil
	}

	for {
		k, err := p.Next()
		if err != nil {
			return nil, err
		}

		switch k {
		case juevent.StartArray:
			builders = append(builders, builderFrame{kind: builderArray, builder: d.factory.NewArrayBuilder()})
		case juevent.StartObject:
			builders = append(builders, builderFrame{kind: builderObject, builder: d.factory.NewObjectBuilder()})
		case juevent.EndArray:
			v, err := popAndFinalize(builderArray)
			if err != nil {
				return nil, err
			}
			if err := deliver(v); err != nil {
				return nil, err
			}
		case juevent.EndObject:
			v, err := popAndFinalize(builderObject)
			if err != nil {
				return nil, err
			}
			if err := deliver(v); err != nil {
				return nil, err
			}
		case juevent.KeyName:
			keys = append(keys, p.String())
		case juevent.ValueString:
			if err := deliver(d.factory.String(p.String())); err != nil {
				return nil, err
			}
		case juevent.ValueNumber:
			if err := deliver(d.factory.Number(p.NumberText())); err != nil {
				return nil, err
			}
		case juevent.ValueTrue:
			if err := deliver(d.factory.True()); err != nil {
				return nil, err
			}
		case juevent.ValueFalse:
			if err := deliver(d.factory.False()); err != nil {
				return nil, err
			}
		case juevent.ValueNull:
			if err := deliver(d.factory.Null()); err != nil {
				return nil, err
			}
		case juevent.ValueEmptyLiteral:
			if err := deliver(d.factory.EmptyLiteral()); err != nil {
				return nil, err
			}
		case juevent.ValueEmptyComposite:
			if err := deliver(d.factory.EmptyComposite()); err != nil {
				return nil, err
			}
		case juevent.ValueMissing:
			if len(keys) == 0 {
				return nil, fmt.Errorf("jufactory: internal: missing value with no pending key")
			}
			key := keys[len(keys)-1]
			var v any
			if d.missing != nil {
				v, err = d.missing(key)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, juerr.NewSyntax(0, "missing value for key %q and no MissingValueProvider configured", key)
			}
			keys = keys[:len(keys)-1]
			if err := deliver(v); err != nil {
				return nil, err
			}
		case juevent.EndStream:
			if implied != juparse.ImpliedNone {
				kind := builderArray
				if implied == juparse.ImpliedObject {
					kind = builderObject
				}
				return popAndFinalize(kind)
			}
			if !haveFinal {
				return nil, fmt.Errorf("jufactory: internal: stream ended with no value produced")
			}
			return final, nil
		}
	}
}
