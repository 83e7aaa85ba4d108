// Package jubuild emits well-formed JSON→URL text from primitive,
// string, and composite writes, mirroring the same option lattice the
// parser honors, per spec.md §4.7 (C7).
//
// Grounded on jcs/serialize.go's low-level buffer-append structure
// (byteSpanForCopy/hexDigit-style helpers, one function per value kind);
// the escaping decision table is rewritten for JSON→URL's percent/"!"
// dialects in place of JCS's backslash escaping, and RFC 8785 key sorting
// is dropped since JSON→URL preserves insertion order.
package jubuild

import (
	"math/big"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/lattice-substrate/jsonurl/juerr"
	"github.com/lattice-substrate/jsonurl/juevent"
	"github.com/lattice-substrate/jsonurl/junumber"
	"github.com/lattice-substrate/jsonurl/juopts"
)

// Accumulator receives the text fragments a Builder writes. *strings.
// Builder and *bytes.Buffer both satisfy it.
type Accumulator interface {
	WriteString(s string) (int, error)
}

type frameState struct {
	kind     juevent.Kind // StartArray or StartObject
	wroteAny bool
}

// Builder writes JSON→URL text to an Accumulator. It is not safe for
// concurrent use.
type Builder struct {
	acc   Accumulator
	opts  juopts.Options
	stack []frameState
}

// New constructs a Builder writing to acc under opts.
func New(acc Accumulator, opts juopts.Options) *Builder {
	return &Builder{acc: acc, opts: opts}
}

func (b *Builder) write(s string) error {
	_, err := b.acc.WriteString(s)
	return err
}

// BeginArray opens an array composite. Callers manage separators
// themselves (via ValueSeparator) or use Element for automatic tracking.
func (b *Builder) BeginArray() error {
	if err := b.write("("); err != nil {
		return err
	}
	b.stack = append(b.stack, frameState{kind: juevent.StartArray})
	return nil
}

// EndArray closes the innermost array composite.
func (b *Builder) EndArray() error {
	return b.endComposite(juevent.StartArray)
}

// BeginObject opens an object composite.
func (b *Builder) BeginObject() error {
	if err := b.write("("); err != nil {
		return err
	}
	b.stack = append(b.stack, frameState{kind: juevent.StartObject})
	return nil
}

// EndObject closes the innermost object composite.
func (b *Builder) EndObject() error {
	return b.endComposite(juevent.StartObject)
}

func (b *Builder) endComposite(kind juevent.Kind) error {
	if len(b.stack) == 0 {
		return juerr.NewSyntax(0, "jubuild: End called with no open composite")
	}
	top := b.stack[len(b.stack)-1]
	if top.kind != kind {
		return juerr.NewSyntax(0, "jubuild: mismatched End call")
	}
	b.stack = b.stack[:len(b.stack)-1]
	if !top.wroteAny && kind == juevent.StartObject && b.opts.Has(juopts.NoEmptyComposite) {
		if err := b.write(":"); err != nil {
			return err
		}
	}
	return b.write(")")
}

// ValueSeparator writes "," between two array elements or object
// members. Per spec.md §4.7, this call is neither required nor forbidden
// by the state machine; Element/Member insert it automatically.
func (b *Builder) ValueSeparator() error { return b.write(",") }

// NameSeparator writes ":" between an object key and its value.
func (b *Builder) NameSeparator() error { return b.write(":") }

func (b *Builder) markWroteAny() {
	if len(b.stack) > 0 {
		b.stack[len(b.stack)-1].wroteAny = true
	}
}

func (b *Builder) needsSeparator() bool {
	return len(b.stack) > 0 && b.stack[len(b.stack)-1].wroteAny
}

// Element writes one array element, automatically inserting the
// separator before any element after the first. If isNull and
// SKIP_NULLS is set, nothing is written and the element is omitted
// entirely (spec.md §4.7's SKIP_NULLS rule); it reports whether anything
// was written.
func (b *Builder) Element(isNull bool, write func(*Builder) error) (bool, error) {
	if isNull && b.opts.Has(juopts.SkipNulls) {
		return false, nil
	}
	if b.needsSeparator() {
		if err := b.ValueSeparator(); err != nil {
			return false, err
		}
	}
	b.markWroteAny()
	if err := write(b); err != nil {
		return false, err
	}
	return true, nil
}

// Member writes one key:value object member, automatically inserting the
// separator before any member after the first. If isNull and SKIP_NULLS
// is set, the entire member (key and value) is omitted.
func (b *Builder) Member(key string, isNull bool, write func(*Builder) error) (bool, error) {
	if isNull && b.opts.Has(juopts.SkipNulls) {
		return false, nil
	}
	if b.needsSeparator() {
		if err := b.ValueSeparator(); err != nil {
			return false, err
		}
	}
	b.markWroteAny()
	if err := b.AddKey(key); err != nil {
		return false, err
	}
	if err := write(b); err != nil {
		return false, err
	}
	return true, nil
}

// AddKey writes a bare object key token followed by ":". It does not
// manage separators; use Member for that.
func (b *Builder) AddKey(key string) error {
	if err := b.writeToken(key, true); err != nil {
		return err
	}
	return b.NameSeparator()
}

// AddString writes s as a value token, quoting/escaping it if needed to
// avoid being reinterpreted as a number or reserved literal.
func (b *Builder) AddString(s string) error {
	return b.writeToken(s, false)
}

// AddTrue writes the literal true.
func (b *Builder) AddTrue() error { return b.write("true") }

// AddFalse writes the literal false.
func (b *Builder) AddFalse() error { return b.write("false") }

// AddNull writes null, or (under COERCE_NULL_TO_EMPTY_STRING) the empty
// string form instead.
func (b *Builder) AddNull() error {
	if b.opts.Has(juopts.CoerceNullToEmptyString) {
		return b.AddEmptyLiteral()
	}
	return b.write("null")
}

// AddEmptyLiteral writes the canonical empty-string value token: "!e"
// under AQF, "''" otherwise (or zero characters when
// EMPTY_UNQUOTED_VALUE permits it).
func (b *Builder) AddEmptyLiteral() error {
	return b.writeEmptyToken(false)
}

func (b *Builder) writeEmptyToken(isKey bool) error {
	allowBare := isKey && b.opts.Has(juopts.EmptyUnquotedKey) ||
		!isKey && b.opts.Has(juopts.EmptyUnquotedValue)
	if allowBare {
		return nil
	}
	if b.opts.Has(juopts.AQF) {
		return b.write("!e")
	}
	return b.write("''")
}

// AddNumberText writes t verbatim, re-emitting exactly the literal text
// it was scanned from.
func (b *Builder) AddNumberText(t *junumber.Text) error {
	return b.write(t.Raw())
}

// AddNumber formats and writes a numeric value of type int64, *big.Int,
// float64, or *big.Float.
func (b *Builder) AddNumber(v any) error {
	switch n := v.(type) {
	case int64:
		return b.write(strconv.FormatInt(n, 10))
	case int:
		return b.write(strconv.Itoa(n))
	case *big.Int:
		return b.write(n.String())
	case float64:
		return b.write(strconv.FormatFloat(n, 'g', -1, 64))
	case *big.Float:
		return b.write(n.Text('g', -1))
	default:
		return juerr.NewSyntax(0, "jubuild: unsupported number type %T", v)
	}
}

// CodePointWriter writes UTF-16 code units one at a time, buffering a leading
// high surrogate until its matching low surrogate arrives so that
// supplementary-plane characters are percent-encoded as one scalar value
// rather than as two lone surrogates (spec.md §4.7's "code-point writer
// ... validates surrogate pairing when taking UTF-16 input").
type CodePointWriter struct {
	b      *Builder
	high   uint16
	hasPending bool
}

// NewCodePointWriter wraps b for incremental UTF-16 code-unit writes.
func NewCodePointWriter(b *Builder) *CodePointWriter {
	return &CodePointWriter{b: b}
}

// WriteUnit feeds one UTF-16 code unit.
func (w *CodePointWriter) WriteUnit(u uint16) error {
	if w.hasPending {
		r := utf16.DecodeRune(rune(w.high), rune(u))
		w.hasPending = false
		if r == utf8.RuneError {
			return juerr.NewSyntax(0, "jubuild: invalid surrogate pair U+%04X U+%04X", w.high, u)
		}
		return w.b.writeScalar(r)
	}
	if utf16.IsSurrogate(rune(u)) {
		if u >= 0xDC00 {
			return juerr.NewSyntax(0, "jubuild: lone low surrogate U+%04X", u)
		}
		w.high = u
		w.hasPending = true
		return nil
	}
	return w.b.writeScalar(rune(u))
}

// Close reports an error if a high surrogate was never paired.
func (w *CodePointWriter) Close() error {
	if w.hasPending {
		return juerr.NewSyntax(0, "jubuild: lone high surrogate U+%04X at end of input", w.high)
	}
	return nil
}

func (b *Builder) writeScalar(r rune) error {
	if b.opts.Has(juopts.AQF) {
		return b.writeRuneAQF(r)
	}
	return b.writeRuneNonAQF(r)
}

// writeToken writes s as a bare/escaped token. isKey suppresses the
// number/true/false/null disambiguation (keys are never reinterpreted as
// anything but strings) but still escapes ":" within a key.
func (b *Builder) writeToken(s string, isKey bool) error {
	if s == "" {
		return b.writeEmptyToken(isKey)
	}
	ambiguous := !isKey && b.isAmbiguousValue(s) && !b.opts.Has(juopts.ImpliedStringLiterals)

	if b.opts.Has(juopts.AQF) {
		return b.writeAQFToken(s, ambiguous)
	}
	if ambiguous {
		return b.writeQuoted(s)
	}
	return b.writeBareword(s)
}

func (b *Builder) isAmbiguousValue(s string) bool {
	switch s {
	case "true", "false", "null":
		return true
	}
	if junumber.IsNumber(s) {
		return true
	}
	return strings.ContainsAny(s, ":=")
}

func (b *Builder) writeBareword(s string) error {
	for _, r := range s {
		if err := b.writeRuneNonAQF(r); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) writeQuoted(s string) error {
	if err := b.write("'"); err != nil {
		return err
	}
	for _, r := range s {
		if r == '\'' {
			if err := b.writePercentEncoded(r); err != nil {
				return err
			}
			continue
		}
		if err := b.writeRuneNonAQF(r); err != nil {
			return err
		}
	}
	return b.write("'")
}

func (b *Builder) writeAQFToken(s string, ambiguous bool) error {
	runes := []rune(s)
	if ambiguous {
		if err := b.write("!"); err != nil {
			return err
		}
		if err := b.write(string(runes[0])); err != nil {
			return err
		}
		runes = runes[1:]
	}
	for _, r := range runes {
		if err := b.writeRuneAQF(r); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) isAlwaysEncodeNonAQF(r rune) bool {
	switch r {
	case '(', ')', ',', ':', '\'', '%', '!':
		return true
	case '&', '=':
		return b.opts.Has(juopts.WFUComposite)
	}
	return false
}

func (b *Builder) isStructuralAQF(r rune) bool {
	switch r {
	case '(', ')', ',', ':':
		return true
	case '&', '=':
		return b.opts.Has(juopts.WFUComposite)
	}
	return false
}

func (b *Builder) writeRuneNonAQF(r rune) error {
	switch {
	case r == ' ':
		return b.write("+")
	case r < 0x20 || r >= 0x80 || b.isAlwaysEncodeNonAQF(r):
		return b.writePercentEncoded(r)
	default:
		return b.write(string(r))
	}
}

func (b *Builder) writeRuneAQF(r rune) error {
	switch {
	case r >= 0x80:
		return b.writePercentEncoded(r)
	case r == '!':
		return b.write("!!")
	case r == '+':
		return b.write("!+")
	case b.isStructuralAQF(r):
		return b.write("!" + string(r))
	case r < 0x20:
		return juerr.NewSyntax(0, "jubuild: control character U+%04X cannot be represented", r)
	default:
		return b.write(string(r))
	}
}

const hexDigits = "0123456789ABCDEF"

func (b *Builder) writePercentEncoded(r rune) error {
	if r >= 0xD800 && r <= 0xDFFF {
		return juerr.NewSyntax(0, "jubuild: lone surrogate U+%04X", r)
	}
	var tmp [4]byte
	n := utf8.EncodeRune(tmp[:], r)
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteByte('%')
		sb.WriteByte(hexDigits[tmp[i]>>4])
		sb.WriteByte(hexDigits[tmp[i]&0x0F])
	}
	return b.write(sb.String())
}
