package jsonurl

import (
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/lattice-substrate/jsonurl/jubuild"
)

// TextBuilder re-exports jubuild.Builder, spec.md §6's low-level
// beginObject/endObject/beginArray/endArray/addKey/add.../valueSeparator/
// nameSeparator surface.
type TextBuilder = jubuild.Builder

// NewTextBuilder constructs a TextBuilder writing to acc under opts.
func NewTextBuilder(acc jubuild.Accumulator, opts Options) *TextBuilder {
	return jubuild.New(acc, opts)
}

// Write serializes v — built from nil, bool, string, int64, *big.Int,
// float64, *big.Float, []any, or map[string]any, the same shapes Parse's
// default MapFactory binding produces — as JSON→URL text. Map keys are
// sorted for deterministic output, since map[string]any carries no
// insertion order of its own.
func Write(v any, opts Options) (string, error) {
	var sb strings.Builder
	b := jubuild.New(&sb, opts)
	if err := writeValue(b, v); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func writeValue(b *TextBuilder, v any) error {
	switch x := v.(type) {
	case nil:
		return b.AddNull()
	case bool:
		if x {
			return b.AddTrue()
		}
		return b.AddFalse()
	case string:
		return b.AddString(x)
	case int64, int, *big.Int, float64, *big.Float:
		return b.AddNumber(x)
	case []any:
		return writeArray(b, x)
	case map[string]any:
		return writeObject(b, x)
	default:
		return fmt.Errorf("jsonurl: Write: unsupported value type %T", v)
	}
}

func writeArray(b *TextBuilder, arr []any) error {
	if err := b.BeginArray(); err != nil {
		return err
	}
	for _, elem := range arr {
		_, err := b.Element(elem == nil, func(b *TextBuilder) error {
			return writeValue(b, elem)
		})
		if err != nil {
			return err
		}
	}
	return b.EndArray()
}

func writeObject(b *TextBuilder, obj map[string]any) error {
	if err := b.BeginObject(); err != nil {
		return err
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		val := obj[k]
		_, err := b.Member(k, val == nil, func(b *TextBuilder) error {
			return writeValue(b, val)
		})
		if err != nil {
			return err
		}
	}
	return b.EndObject()
}
