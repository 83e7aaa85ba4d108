// Package junumber recognizes and classifies JSON→URL numeric literals and
// implements the big-math overflow policy of spec.md §4.3/§4.10 (C3, C10).
//
// Grounded on jcstoken.parser's parseNumber span-scanning structure
// (consumeNumberSign/scanIntegerPart/scanFractionPart/scanExponentPart),
// generalized from "scan then strconv.ParseFloat once" to "scan spans,
// classify digit-wise, then construct exactly the target representation" —
// the no-parse-then-catch discipline spec.md §9 calls for, and which the
// teacher's own jcsfloat package (Burger-Dybvig over math/big, never a
// parse-and-recover) already demonstrates for the adjacent problem of
// formatting rather than classifying floats.
package junumber

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
)

// ExpKind classifies the exponent marker of a number literal, per spec.md §3.
type ExpKind int

const (
	// ExpNone means no exponent marker was present.
	ExpNone ExpKind = iota
	// ExpBare means an exponent marker with no explicit sign ("e5").
	ExpBare
	// ExpPositive means an explicitly signed positive exponent ("e+5").
	ExpPositive
	// ExpNegative means a negative exponent ("e-5").
	ExpNegative
)

// Text is an immutable descriptor of a scanned numeric literal: index
// spans (byte offsets, relative to the slice passed to Scan) for the
// integer, fractional, and exponent parts, per spec.md §3.
//
// Invariants: if the fractional span is empty, HasFractional is false; if
// the exponent span is empty, ExpKind is ExpNone.
type Text struct {
	data               []byte // the slice Scan was called on
	Start, End         int    // overall token span
	Negative           bool
	IntDigitsStart     int
	IntDigitsEnd       int
	HasFractional      bool
	FracStart, FracEnd int
	ExpKind            ExpKind
	ExpStart, ExpEnd   int // exponent digits, excluding sign and marker
	ExpNegativeSign    bool
}

// Raw returns the literal token text this descriptor was scanned from.
func (t *Text) Raw() string {
	return string(t.data[t.Start:t.End])
}

// Scan recognizes a numeric literal starting at data[pos] and returns its
// descriptor and the byte offset immediately after it. It returns ok=false
// (not an error) if data[pos:] does not begin with a well-formed number,
// matching spec.md §4.3's grammar exactly:
//
//	number = [ "-" ] int [ frac ] [ exp ]
//	int    = "0" / ( nzd *digit )
//	frac   = "." 1*digit
//	exp    = ("e"/"E") ["+"/"-"] 1*digit
func Scan(data []byte, pos int) (*Text, int, bool) {
	start := pos
	t := &Text{data: data, Start: start}

	pos = scanSign(data, pos, t)

	intStart := pos
	pos, ok := scanInt(data, pos)
	if !ok {
		return nil, start, false
	}
	t.IntDigitsStart, t.IntDigitsEnd = intStart, pos

	pos = scanFrac(data, pos, t)
	pos = scanExp(data, pos, t)

	t.End = pos
	return t, pos, true
}

func scanSign(data []byte, pos int, t *Text) int {
	if pos < len(data) && data[pos] == '-' {
		t.Negative = true
		return pos + 1
	}
	return pos
}

func scanInt(data []byte, pos int) (int, bool) {
	if pos >= len(data) || !isDigit(data[pos]) {
		return pos, false
	}
	if data[pos] == '0' {
		return pos + 1, true
	}
	start := pos
	for pos < len(data) && isDigit(data[pos]) {
		pos++
	}
	return pos, pos > start
}

func scanFrac(data []byte, pos int, t *Text) int {
	if pos >= len(data) || data[pos] != '.' {
		return pos
	}
	dotPos := pos
	p := pos + 1
	fracStart := p
	for p < len(data) && isDigit(data[p]) {
		p++
	}
	if p == fracStart {
		return dotPos // no digits after '.': frac is not present
	}
	t.HasFractional = true
	t.FracStart, t.FracEnd = fracStart, p
	return p
}

func scanExp(data []byte, pos int, t *Text) int {
	if pos >= len(data) || (data[pos] != 'e' && data[pos] != 'E') {
		return pos
	}
	markerPos := pos
	p := pos + 1
	kind := ExpBare
	if p < len(data) && (data[p] == '+' || data[p] == '-') {
		if data[p] == '-' {
			kind = ExpNegative
			t.ExpNegativeSign = true
		} else {
			kind = ExpPositive
		}
		p++
	}
	digitsStart := p
	for p < len(data) && isDigit(data[p]) {
		p++
	}
	if p == digitsStart {
		return markerPos // no exponent digits: exponent is not present
	}
	t.ExpKind = kind
	t.ExpStart, t.ExpEnd = digitsStart, p
	return p
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// IsNumber reports whether s is, in its entirety, a well-formed numeric
// literal.
func IsNumber(s string) bool {
	data := []byte(s)
	_, end, ok := Scan(data, 0)
	return ok && end == len(data)
}

// IsNonFractional reports whether t describes an integral value per
// spec.md §4.3 rule 1: no fractional part, and an exponent kind that
// cannot make the value fractional (None, Bare, or Positive).
func (t *Text) IsNonFractional() bool {
	return !t.HasFractional && t.ExpKind != ExpNegative
}

// IsLong reports whether t's value both is non-fractional and fits a
// 64-bit signed integer without big-math promotion (spec.md §4.3 rule 1:
// integer digit count + positive exponent <= 18).
func (t *Text) IsLong() bool {
	if !t.IsNonFractional() {
		return false
	}
	return t.expandedIntegerDigitCount() <= 18
}

func (t *Text) intDigitCount() int {
	return t.IntDigitsEnd - t.IntDigitsStart
}

// exponentValue returns the exponent's numeric value (0 if absent).
func (t *Text) exponentValue() int {
	if t.ExpKind == ExpNone {
		return 0
	}
	n, _ := strconv.Atoi(string(t.data[t.ExpStart:t.ExpEnd]))
	if t.ExpNegativeSign {
		return -n
	}
	return n
}

// expandedIntegerDigitCount is the digit count of the integer this literal
// expands to once a non-negative exponent's trailing zeros are accounted
// for, per spec.md §4.3 rule 1 ("integer digit count + positive exponent").
func (t *Text) expandedIntegerDigitCount() int {
	return t.intDigitCount() + t.exponentValue()
}

// Kind names the in-memory representation classify/Build chose for a
// number, per spec.md §4.3.
type Kind int

const (
	// KindInt64 is an exact 64-bit signed integer.
	KindInt64 Kind = iota
	// KindBigInt is an arbitrary-precision integer (overflowed a long).
	KindBigInt
	// KindFloat64 is an IEEE 754 double.
	KindFloat64
	// KindBigDecimal is an arbitrary-precision decimal (overflowed double
	// precision, or a policy promoted it there regardless).
	KindBigDecimal
)

// Value is the constructed numeric representation of a Text descriptor.
type Value struct {
	Kind       Kind
	Int64      int64
	BigInt     *big.Int
	Float64    float64
	BigDecimal *big.Float
}

// Precision selects the significant-digit budget a float64 is allowed
// before the fractional path promotes to BigDecimal (or another
// Action), per spec.md §4.3 rule 3's "preset 32/64/128-bit variants."
type Precision int

const (
	// Precision32 budgets ~7 significant decimal digits (IEEE 754 single).
	Precision32 Precision = iota
	// Precision64 budgets ~17 significant decimal digits (IEEE 754 double).
	Precision64
	// Precision128 budgets ~34 significant decimal digits (IEEE 754 quad).
	Precision128
)

func (p Precision) digits() int {
	switch p {
	case Precision32:
		return 7
	case Precision128:
		return 34
	default:
		return 17
	}
}

// Action is what to do when a number overflows its representation's
// budget.
type Action int

const (
	// ActionBigPrecision promotes to the arbitrary-precision representation
	// (BigInt for the integer path, BigDecimal for the fractional path).
	ActionBigPrecision Action = iota
	// ActionDouble forces an IEEE 754 double even if precision is lost.
	ActionDouble
	// ActionInfinity saturates to signed infinity. Legal only on the
	// fractional path; see Policy's Open Question decision below.
	ActionInfinity
	// ActionError rejects the overflowing literal.
	ActionError
)

// Policy is the big-math overflow policy of spec.md §4.3 rule 3 / §4.10.
//
// Open Question (a) (SPEC_FULL.md §7): ActionInfinity is not a legal
// IntegerOverflow action — the integer path only ever promotes to an
// exact BigInt, saturates to a double, or errors; "infinity" is not a
// representable integer. NewPolicy rejects that combination eagerly
// rather than deferring it to parse time.
type Policy struct {
	Precision          Precision
	IntegerOverflow    Action
	FractionalOverflow Action
}

// DefaultPolicy promotes both paths to arbitrary precision at double
// (64-bit) precision, matching spec.md §3's implied defaults.
func DefaultPolicy() Policy {
	return Policy{Precision: Precision64, IntegerOverflow: ActionBigPrecision, FractionalOverflow: ActionBigPrecision}
}

// NewPolicy validates and constructs a Policy.
func NewPolicy(precision Precision, integerOverflow, fractionalOverflow Action) (Policy, error) {
	if integerOverflow == ActionInfinity {
		return Policy{}, fmt.Errorf("junumber: ActionInfinity is not a legal policy for integer overflow")
	}
	return Policy{Precision: precision, IntegerOverflow: integerOverflow, FractionalOverflow: fractionalOverflow}, nil
}

// Build deterministically constructs the Value a Text descriptor denotes,
// choosing its representation by digit-counting rather than by parsing
// and recovering from a failure (spec.md §9).
func Build(t *Text, policy Policy) (Value, error) {
	if t.IsNonFractional() {
		return buildInteger(t, policy)
	}
	return buildFractional(t, policy)
}

func buildInteger(t *Text, policy Policy) (Value, error) {
	if t.IsLong() {
		n, err := strconv.ParseInt(expandedIntegerLiteral(t), 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("junumber: %q classified as long but failed to parse: %w", t.Raw(), err)
		}
		return Value{Kind: KindInt64, Int64: n}, nil
	}

	switch policy.IntegerOverflow {
	case ActionBigPrecision:
		bi, ok := new(big.Int).SetString(expandedIntegerLiteral(t), 10)
		if !ok {
			return Value{}, fmt.Errorf("junumber: failed to parse %q as a big integer", t.Raw())
		}
		return Value{Kind: KindBigInt, BigInt: bi}, nil
	case ActionDouble:
		f, err := strconv.ParseFloat(t.Raw(), 64)
		if err != nil {
			return Value{}, fmt.Errorf("junumber: failed to parse %q as a double: %w", t.Raw(), err)
		}
		return Value{Kind: KindFloat64, Float64: f}, nil
	default:
		return Value{}, fmt.Errorf("junumber: %q overflows a 64-bit integer and overflow policy is Error", t.Raw())
	}
}

// expandedIntegerLiteral renders the exact base-10 integer a Text denotes,
// appending the exponent's trailing zeros (if any) to the integer digits.
func expandedIntegerLiteral(t *Text) string {
	digits := string(t.data[t.IntDigitsStart:t.IntDigitsEnd])
	exp := t.exponentValue()
	var b []byte
	if t.Negative {
		b = append(b, '-')
	}
	b = append(b, digits...)
	for i := 0; i < exp; i++ {
		b = append(b, '0')
	}
	return string(b)
}

func significantDigitCount(t *Text) int {
	n := t.intDigitCount()
	if t.HasFractional {
		n += t.FracEnd - t.FracStart
	}
	// Leading zeros in "0.00123" aren't significant; strip them from the
	// count when the integer part is exactly "0".
	if t.intDigitCount() == 1 && t.data[t.IntDigitsStart] == '0' {
		n--
		if t.HasFractional {
			for i := t.FracStart; i < t.FracEnd && t.data[i] == '0'; i++ {
				n--
			}
		}
	}
	if n < 1 {
		n = 1
	}
	return n
}

func buildFractional(t *Text, policy Policy) (Value, error) {
	if significantDigitCount(t) <= policy.Precision.digits() {
		f, err := strconv.ParseFloat(t.Raw(), 64)
		if err != nil {
			return Value{}, fmt.Errorf("junumber: failed to parse %q as a double: %w", t.Raw(), err)
		}
		return Value{Kind: KindFloat64, Float64: f}, nil
	}

	switch policy.FractionalOverflow {
	case ActionBigPrecision:
		bf, _, err := big.ParseFloat(t.Raw(), 10, 256, big.ToNearestEven)
		if err != nil {
			return Value{}, fmt.Errorf("junumber: failed to parse %q as a big decimal: %w", t.Raw(), err)
		}
		return Value{Kind: KindBigDecimal, BigDecimal: bf}, nil
	case ActionDouble:
		f, err := strconv.ParseFloat(t.Raw(), 64)
		if err != nil {
			return Value{}, fmt.Errorf("junumber: failed to parse %q as a double: %w", t.Raw(), err)
		}
		return Value{Kind: KindFloat64, Float64: f}, nil
	case ActionInfinity:
		sign := 1
		if t.Negative {
			sign = -1
		}
		return Value{Kind: KindFloat64, Float64: math.Inf(sign)}, nil
	default:
		return Value{}, fmt.Errorf("junumber: %q exceeds precision %d and overflow policy is Error", t.Raw(), policy.Precision.digits())
	}
}
