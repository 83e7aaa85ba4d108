// Package juparse drives the JSON→URL grammar state machine and exposes
// it as a single-threaded, non-suspending pull iterator: one call to Next
// advances exactly one step and returns exactly one event, per spec.md
// §4.4 (C4).
//
// Grounded on jcstoken.parser's recursive-descent value/array/object
// methods, restructured from recursion into an explicit continuation
// field plus a frame stack so that control returns to the caller after
// every single event — the teacher's parser reads a whole document in
// one parseValue() call; this one never reads past the token needed to
// produce the event it is about to return.
package juparse

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/lattice-substrate/jsonurl/juerr"
	"github.com/lattice-substrate/jsonurl/juevent"
	"github.com/lattice-substrate/jsonurl/jucursor"
	"github.com/lattice-substrate/jsonurl/judecode"
	"github.com/lattice-substrate/jsonurl/junumber"
	"github.com/lattice-substrate/jsonurl/juopts"
)

// ImpliedKind selects implied-composite root parsing: the outermost
// "(...)" is treated as absent and the stream is parsed directly as the
// body of an array or object, per spec.md §4.4's "implied composites."
type ImpliedKind int

const (
	// ImpliedNone parses the root the ordinary way (literal or explicit
	// composite).
	ImpliedNone ImpliedKind = iota
	// ImpliedArray treats the entire input as array elements.
	ImpliedArray
	// ImpliedObject treats the entire input as object members.
	ImpliedObject
)

type frameKind int

const (
	frameArray frameKind = iota
	frameObject
)

type frame struct {
	kind        frameKind
	implied     bool
	wfuEligible bool
}

type cont int

const (
	contStart cont = iota
	contAfterArrayValue
	contAfterObjectKey
	contAfterObjectValue
	contAwaitEOF
	contDone
)

// Parser is a streaming JSON→URL event iterator. The zero value is not
// usable; construct with New.
type Parser struct {
	cur    *jucursor.Cursor
	opts   juopts.Options
	limits juopts.Limits

	stack []frame
	cont  cont
	err   error

	hasPending  bool
	pendingKind juevent.Kind
	pendingStr  string
	pendingNum  *junumber.Text

	curString string
	curNumber *junumber.Text

	valueCount  int
	impliedKind ImpliedKind
}

// New constructs a Parser over text with the given options and limits.
func New(text []byte, opts juopts.Options, limits juopts.Limits) *Parser {
	return &Parser{
		cur:    jucursor.New(text, limits.MaxChars()),
		opts:   opts,
		limits: limits,
		cont:   contStart,
	}
}

// SetImplied selects implied-composite root parsing. Must be called
// before the first call to Next.
func (p *Parser) SetImplied(kind ImpliedKind) {
	p.impliedKind = kind
}

// String returns the decoded string payload of the current KeyName or
// ValueString event. Valid only until the next call to Next.
func (p *Parser) String() string { return p.curString }

// NumberText returns the number-text descriptor of the current
// ValueNumber event. Valid only until the next call to Next.
func (p *Parser) NumberText() *junumber.Text { return p.curNumber }

// Next advances the parser and returns the next event. Once an error is
// returned, further calls return the same error; once EndStream is
// returned, further calls return EndStream again.
func (p *Parser) Next() (juevent.Kind, error) {
	if p.err != nil {
		return juevent.EndStream, p.err
	}

	var k juevent.Kind
	var err error

	switch {
	case p.hasPending:
		p.hasPending = false
		k = p.pendingKind
		p.curString = p.pendingStr
		p.curNumber = p.pendingNum
	case p.cont == contDone:
		return juevent.EndStream, nil
	default:
		k, err = p.step()
		if err != nil {
			p.err = err
			p.cont = contDone
			return 0, err
		}
	}

	if countsTowardBudget(k) {
		if err := p.accountValue(); err != nil {
			p.err = err
			p.cont = contDone
			return 0, err
		}
	}
	return k, nil
}

func countsTowardBudget(k juevent.Kind) bool {
	switch k {
	case juevent.StartArray, juevent.EndArray, juevent.StartObject, juevent.EndObject, juevent.EndStream:
		return false
	default:
		return true
	}
}

func (p *Parser) accountValue() error {
	p.valueCount++
	if p.valueCount > p.limits.MaxValues() {
		return juerr.NewLimit(juerr.MaxParseValues, p.cur.Offset())
	}
	return nil
}

func (p *Parser) checkDepth() error {
	if len(p.stack)+1 > p.limits.MaxDepth() {
		return juerr.NewLimit(juerr.MaxParseDepth, p.cur.Offset())
	}
	return nil
}

func (p *Parser) setPending(kind juevent.Kind, str string, num *junumber.Text) {
	p.hasPending = true
	p.pendingKind = kind
	p.pendingStr = str
	p.pendingNum = num
}

func (p *Parser) step() (juevent.Kind, error) {
	switch p.cont {
	case contStart:
		return p.startRoot()
	case contAfterArrayValue:
		return p.afterArrayValue()
	case contAfterObjectKey:
		return p.afterObjectKey()
	case contAfterObjectValue:
		return p.afterObjectValue()
	case contAwaitEOF:
		return p.awaitEOF()
	default:
		return 0, fmt.Errorf("juparse: parser in an invalid internal state")
	}
}

func (p *Parser) currentFrame() frame {
	return p.stack[len(p.stack)-1]
}

func (p *Parser) currentWFUEligible() bool {
	if len(p.stack) == 0 {
		return p.opts.Has(juopts.WFUComposite)
	}
	return p.stack[len(p.stack)-1].wfuEligible
}

// startRoot handles the very first step: either implied-composite mode
// (no outer parens, ever) or an ordinary literal/explicit-composite root.
func (p *Parser) startRoot() (juevent.Kind, error) {
	if p.impliedKind != ImpliedNone {
		if err := p.checkDepth(); err != nil {
			return 0, err
		}
		fk := frameArray
		if p.impliedKind == ImpliedObject {
			fk = frameObject
		}
		p.stack = append(p.stack, frame{kind: fk, implied: true, wfuEligible: p.opts.Has(juopts.WFUComposite)})
		if fk == frameArray {
			return p.expectArrayValueOrEmpty()
		}
		return p.expectObjectKeyOrEmpty()
	}

	kind, err := p.parseValue()
	if err != nil {
		return 0, err
	}
	if kind != juevent.StartArray && kind != juevent.StartObject {
		p.cont = contAwaitEOF
	}
	return kind, nil
}

func (p *Parser) awaitEOF() (juevent.Kind, error) {
	r, err := p.cur.Peek()
	if err != nil {
		return 0, err
	}
	if r != jucursor.EOF {
		return 0, juerr.NewSyntax(p.cur.Offset(), "unexpected text after a complete value")
	}
	p.cont = contDone
	return juevent.EndStream, nil
}

// parseValue parses one value at the current position: a nested
// composite (recursing into openComposite) or a literal token.
func (p *Parser) parseValue() (juevent.Kind, error) {
	r, err := p.cur.Peek()
	if err != nil {
		return 0, err
	}
	if r == jucursor.EOF {
		return 0, juerr.NewSyntax(p.cur.Offset(), "expected a value")
	}
	if r == '(' {
		p.cur.Advance()
		return p.openComposite()
	}
	tok, err := p.scanToken(p.currentWFUEligible())
	if err != nil {
		return 0, err
	}
	kind, str, num, err := p.classifyAsValue(tok)
	if err != nil {
		return 0, err
	}
	p.curString, p.curNumber = str, num
	return kind, nil
}

// openComposite is called immediately after consuming the opening '('.
// It decides, via a one-token lookahead, whether the composite is empty,
// an array, or an object (spec.md §4.4's disambiguation rule), and pushes
// the corresponding frame.
func (p *Parser) openComposite() (juevent.Kind, error) {
	r, err := p.cur.Peek()
	if err != nil {
		return 0, err
	}
	if r == ')' {
		p.cur.Advance()
		return juevent.ValueEmptyComposite, nil
	}

	wfuHere := p.opts.Has(juopts.WFUComposite) && len(p.stack) == 0
	tok, err := p.scanToken(wfuHere)
	if err != nil {
		return 0, err
	}
	r2, err := p.cur.Peek()
	if err != nil {
		return 0, err
	}
	isKey := r2 == ':' || (wfuHere && r2 == '=')

	if isKey {
		if err := p.checkDepth(); err != nil {
			return 0, err
		}
		p.stack = append(p.stack, frame{kind: frameObject, wfuEligible: wfuHere})
		keyStr, err := p.classifyAsKey(tok)
		if err != nil {
			return 0, err
		}
		p.setPending(juevent.KeyName, keyStr, nil)
		p.cont = contAfterObjectKey
		return juevent.StartObject, nil
	}

	if err := p.checkDepth(); err != nil {
		return 0, err
	}
	p.stack = append(p.stack, frame{kind: frameArray, wfuEligible: wfuHere})
	kind, str, num, err := p.classifyAsValue(tok)
	if err != nil {
		return 0, err
	}
	p.setPending(kind, str, num)
	p.cont = contAfterArrayValue
	return juevent.StartArray, nil
}

func (p *Parser) expectArrayValueOrEmpty() (juevent.Kind, error) {
	r, err := p.cur.Peek()
	if err != nil {
		return 0, err
	}
	if r == jucursor.EOF {
		return p.closeFrame(juevent.EndArray)
	}
	return p.expectArrayValue()
}

func (p *Parser) expectArrayValue() (juevent.Kind, error) {
	kind, err := p.parseValue()
	if err != nil {
		return 0, err
	}
	if kind != juevent.StartArray && kind != juevent.StartObject {
		p.cont = contAfterArrayValue
	}
	return kind, nil
}

func (p *Parser) afterArrayValue() (juevent.Kind, error) {
	f := p.currentFrame()
	r, err := p.cur.Peek()
	if err != nil {
		return 0, err
	}
	switch {
	case r == ',':
		p.cur.Advance()
		return p.expectArrayValue()
	case f.wfuEligible && r == '&':
		p.cur.Advance()
		return p.expectArrayValue()
	case r == ')':
		p.cur.Advance()
		return p.closeFrame(juevent.EndArray)
	case f.implied && r == jucursor.EOF:
		return p.closeFrame(juevent.EndArray)
	default:
		return 0, juerr.NewSyntax(p.cur.Offset(), "expected ',' or ')'")
	}
}

func (p *Parser) expectObjectKeyOrEmpty() (juevent.Kind, error) {
	r, err := p.cur.Peek()
	if err != nil {
		return 0, err
	}
	if r == jucursor.EOF {
		return p.closeFrame(juevent.EndObject)
	}
	return p.expectObjectKey()
}

func (p *Parser) expectObjectKey() (juevent.Kind, error) {
	tok, err := p.scanToken(p.currentWFUEligible())
	if err != nil {
		return 0, err
	}
	keyStr, err := p.classifyAsKey(tok)
	if err != nil {
		return 0, err
	}
	p.curString = keyStr
	p.cont = contAfterObjectKey
	return juevent.KeyName, nil
}

func (p *Parser) afterObjectKey() (juevent.Kind, error) {
	f := p.currentFrame()
	r, err := p.cur.Peek()
	if err != nil {
		return 0, err
	}
	switch {
	case r == ':':
		p.cur.Advance()
		return p.expectObjectValue()
	case f.wfuEligible && r == '=':
		p.cur.Advance()
		return p.expectObjectValue()
	case f.wfuEligible && (r == '&' || r == jucursor.EOF):
		p.cont = contAfterObjectValue
		return juevent.ValueMissing, nil
	default:
		return 0, juerr.NewSyntax(p.cur.Offset(), "expected ':' after object key")
	}
}

func (p *Parser) expectObjectValue() (juevent.Kind, error) {
	kind, err := p.parseValue()
	if err != nil {
		return 0, err
	}
	if kind != juevent.StartArray && kind != juevent.StartObject {
		p.cont = contAfterObjectValue
	}
	return kind, nil
}

func (p *Parser) afterObjectValue() (juevent.Kind, error) {
	f := p.currentFrame()
	r, err := p.cur.Peek()
	if err != nil {
		return 0, err
	}
	switch {
	case r == ',':
		p.cur.Advance()
		return p.expectObjectKey()
	case f.wfuEligible && r == '&':
		p.cur.Advance()
		return p.expectObjectKey()
	case r == ')':
		p.cur.Advance()
		return p.closeFrame(juevent.EndObject)
	case f.implied && r == jucursor.EOF:
		return p.closeFrame(juevent.EndObject)
	default:
		return 0, juerr.NewSyntax(p.cur.Offset(), "expected ',' or ')'")
	}
}

// closeFrame pops the current frame and decides what the pop itself
// yields: an explicit close event, or — when the frame being closed is
// the implied root — EndStream directly, since implied composites never
// have a matching Start/End pair (spec.md §4.4).
func (p *Parser) closeFrame(explicitKind juevent.Kind) (juevent.Kind, error) {
	f := p.currentFrame()
	p.stack = p.stack[:len(p.stack)-1]

	if len(p.stack) == 0 {
		if f.implied {
			p.cont = contDone
			return juevent.EndStream, nil
		}
		p.cont = contAwaitEOF
		return explicitKind, nil
	}

	parent := p.stack[len(p.stack)-1]
	if parent.kind == frameArray {
		p.cont = contAfterArrayValue
	} else {
		p.cont = contAfterObjectValue
	}
	return explicitKind, nil
}

// token is the intermediate descriptor produced by scanToken, before the
// caller decides whether it plays the role of a key or a value.
type token struct {
	raw             []byte // wire-level text, used for true/false/null/number classification
	decoded         string
	quotedOrEscaped bool // forced to string interpretation: quoted, or used any AQF escape
	bare            bool // a plain bareword (not quoted/escaped); true even when empty
	explicitEmpty   bool // the canonical empty-literal form ('' or !e)
	offset          int
}

func (p *Parser) scanToken(wfuHere bool) (token, error) {
	r, err := p.cur.Peek()
	if err != nil {
		return token{}, err
	}
	if !p.opts.Has(juopts.AQF) && r == '\'' {
		return p.scanQuoted()
	}
	return p.scanBareword(wfuHere)
}

func (p *Parser) scanQuoted() (token, error) {
	startOffset := p.cur.Offset()
	if _, err := p.cur.Advance(); err != nil {
		return token{}, err
	}
	var raw []byte
	for {
		r, err := p.cur.Peek()
		if err != nil {
			return token{}, err
		}
		if r == jucursor.EOF {
			return token{}, juerr.NewSyntax(p.cur.Offset(), "unterminated quoted string")
		}
		if r == '\'' {
			p.cur.Advance()
			break
		}
		raw = utf8.AppendRune(raw, r)
		if _, err := p.cur.Advance(); err != nil {
			return token{}, err
		}
	}
	decoded, err := judecode.DecodeToken(raw, startOffset+1)
	if err != nil {
		return token{}, err
	}
	return token{
		raw:             raw,
		decoded:         decoded,
		quotedOrEscaped: true,
		explicitEmpty:   len(raw) == 0,
		offset:          startOffset,
	}, nil
}

// isStopChar reports whether r ends a bareword scan (without being
// consumed by it).
func (p *Parser) isStopChar(r rune, wfuHere bool) bool {
	switch r {
	case jucursor.EOF, '(', ')', ',', ':', ' ':
		return true
	}
	if wfuHere && (r == '&' || r == '=') {
		return true
	}
	return false
}

// scanBareword scans an unquoted token. In AQF mode "!" introduces an
// escape: "!e" denotes the empty literal (only legal as the entire
// token), "!t"/"!f"/"!n" are reserved and always a syntax error, "!!"
// yields a literal "!", and "!X" for any other X yields a literal X —
// bypassing both the %HH/+ decoding convention and the bareword stop set
// that X would otherwise be subject to (spec.md §4.4's literal
// classification bullets; the general "!X bypasses X's usual meaning"
// reading is what scenario 10 of spec.md §8 requires of "1e!+2").
func (p *Parser) scanBareword(wfuHere bool) (token, error) {
	aqf := p.opts.Has(juopts.AQF)
	startOffset := p.cur.Offset()

	var rawBuf []byte
	var normalBuf []byte
	var decoded strings.Builder
	normalStart := startOffset
	forced := false
	sawAny := false

	flushNormal := func() error {
		if len(normalBuf) == 0 {
			return nil
		}
		dec, err := judecode.DecodeToken(normalBuf, normalStart)
		if err != nil {
			return err
		}
		decoded.WriteString(dec)
		normalBuf = normalBuf[:0]
		return nil
	}

	for {
		r, err := p.cur.Peek()
		if err != nil {
			return token{}, err
		}

		if aqf && r == '!' {
			escOffset := p.cur.Offset()
			p.cur.Advance()
			r2, err := p.cur.Peek()
			if err != nil {
				return token{}, err
			}
			switch r2 {
			case 'e':
				if sawAny {
					return token{}, juerr.NewSyntax(escOffset, "!e must be the entire token")
				}
				p.cur.Advance()
				r3, err := p.cur.Peek()
				if err != nil {
					return token{}, err
				}
				if !p.isStopChar(r3, wfuHere) {
					return token{}, juerr.NewSyntax(p.cur.Offset(), "!e must be the entire token")
				}
				return token{explicitEmpty: true, quotedOrEscaped: true, offset: startOffset}, nil
			case 't', 'f', 'n':
				return token{}, juerr.NewSyntax(escOffset, "reserved escape sequence !%c", r2)
			case jucursor.EOF:
				return token{}, juerr.NewSyntax(escOffset, "unterminated escape sequence")
			default:
				if err := flushNormal(); err != nil {
					return token{}, err
				}
				p.cur.Advance()
				decoded.WriteRune(r2)
				rawBuf = utf8.AppendRune(rawBuf, r2)
				forced = true
				sawAny = true
				normalStart = p.cur.Offset()
				continue
			}
		}

		if p.isStopChar(r, wfuHere) {
			break
		}
		rawBuf = utf8.AppendRune(rawBuf, r)
		normalBuf = utf8.AppendRune(normalBuf, r)
		if _, err := p.cur.Advance(); err != nil {
			return token{}, err
		}
		sawAny = true
	}

	if err := flushNormal(); err != nil {
		return token{}, err
	}

	if !sawAny {
		return token{bare: true, offset: startOffset}, nil
	}
	return token{
		raw:             rawBuf,
		decoded:         decoded.String(),
		quotedOrEscaped: forced,
		bare:            !forced,
		offset:          startOffset,
	}, nil
}

func (p *Parser) classifyAsKey(tok token) (string, error) {
	if tok.explicitEmpty {
		return "", nil
	}
	if tok.bare && len(tok.raw) == 0 {
		if !p.opts.Has(juopts.EmptyUnquotedKey) {
			return "", juerr.NewSyntax(tok.offset, "empty unquoted key not permitted")
		}
		return "", nil
	}
	return tok.decoded, nil
}

func (p *Parser) classifyAsValue(tok token) (juevent.Kind, string, *junumber.Text, error) {
	if tok.explicitEmpty {
		return juevent.ValueEmptyLiteral, "", nil, nil
	}
	if tok.bare && len(tok.raw) == 0 {
		if !p.opts.Has(juopts.EmptyUnquotedValue) {
			return 0, "", nil, juerr.NewSyntax(tok.offset, "empty unquoted value not permitted")
		}
		return juevent.ValueEmptyLiteral, "", nil, nil
	}
	if p.opts.Has(juopts.ImpliedStringLiterals) || tok.quotedOrEscaped {
		return juevent.ValueString, tok.decoded, nil, nil
	}
	switch string(tok.raw) {
	case "true":
		return juevent.ValueTrue, "", nil, nil
	case "false":
		return juevent.ValueFalse, "", nil, nil
	case "null":
		return juevent.ValueNull, "", nil, nil
	}
	if junumber.IsNumber(string(tok.raw)) {
		text, _, ok := junumber.Scan(tok.raw, 0)
		if !ok {
			return 0, "", nil, juerr.NewSyntax(tok.offset, "internal: IsNumber/Scan disagreed on %q", tok.raw)
		}
		return juevent.ValueNumber, "", text, nil
	}
	return juevent.ValueString, tok.decoded, nil, nil
}
