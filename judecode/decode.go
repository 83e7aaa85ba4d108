// Package judecode performs on-the-fly percent-decoding and UTF-8
// validation of a JSON→URL literal token, writing decoded scalar values
// into a plain Go string (the "string arena" of spec.md §3).
//
// There is no direct teacher analog (the teacher's JSON input has no
// percent-encoding); the surrogate-pairing and validation discipline is
// grounded on jcstoken.parser.parseUnicodeEscape /
// readFollowingLowSurrogate, retargeted from "\uXXXX escapes in a JSON
// string" to "CESU-8 style percent-encoded surrogate pairs in a URL
// token", per spec.md §4.2's high/low-surrogate-pairing bullet.
package judecode

import (
	"unicode/utf16"
	"unicode/utf8"

	"github.com/lattice-substrate/jsonurl/juerr"
)

// DecodeToken decodes raw, percent-escaped token bytes into a string.
//
//   - '+' decodes to U+0020.
//   - "%HH" decodes to one byte; runs of such bytes (and/or raw UTF-8
//     bytes) are regrouped into Unicode scalar values.
//   - Any other byte is copied through, after validating it is part of a
//     well-formed UTF-8 sequence.
//
// baseOffset is the character offset (in the surrounding document, per
// jucursor's char-counting convention) of raw[0], used to annotate errors.
func DecodeToken(raw []byte, baseOffset int) (string, error) {
	bytes, offsets, err := collectBytes(raw, baseOffset)
	if err != nil {
		return "", err
	}
	return validateAndPair(bytes, offsets)
}

// collectBytes walks raw applying the '+' and "%HH" rules, producing the
// decoded byte sequence plus, for each output byte, the source character
// offset it came from (for error reporting after regrouping).
func collectBytes(raw []byte, baseOffset int) ([]byte, []int, error) {
	var out []byte
	var offsets []int
	i := 0
	charOffset := baseOffset

	for i < len(raw) {
		b := raw[i]
		switch {
		case b == '+':
			out = append(out, ' ')
			offsets = append(offsets, charOffset)
			i++
			charOffset++
		case b == '%':
			val, err := decodeHexByte(raw, i, charOffset)
			if err != nil {
				return nil, nil, err
			}
			out = append(out, val)
			offsets = append(offsets, charOffset)
			i += 3
			charOffset++
		default:
			r, size := utf8.DecodeRune(raw[i:])
			if r == utf8.RuneError && size <= 1 {
				return nil, nil, juerr.NewSyntax(charOffset, "invalid UTF-8 byte 0x%02X", b)
			}
			for k := 0; k < size; k++ {
				out = append(out, raw[i+k])
				offsets = append(offsets, charOffset)
			}
			i += size
			charOffset++
		}
	}
	return out, offsets, nil
}

func decodeHexByte(raw []byte, percentIdx, charOffset int) (byte, error) {
	if percentIdx+2 >= len(raw) {
		return 0, juerr.NewSyntax(charOffset, "incomplete percent-encoded sequence")
	}
	hi, ok1 := hexVal(raw[percentIdx+1])
	lo, ok2 := hexVal(raw[percentIdx+2])
	if !ok1 || !ok2 {
		return 0, juerr.NewSyntax(charOffset, "invalid percent-encoded sequence %q", raw[percentIdx:percentIdx+3])
	}
	return hi<<4 | lo, nil
}

func hexVal(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	default:
		return 0, false
	}
}

// validateAndPair walks the decoded byte sequence, regrouping bytes into
// scalar values. Standard well-formed UTF-8 sequences are copied through
// unchanged (Go's utf8 package already rejects overlong forms, surrogate
// code points, and code points above U+10FFFF). A CESU-8 style encoded
// surrogate half (a 3-byte 0xED sequence in the D800-DFFF range, which Go
// refuses to decode as a rune) is special-cased: a high surrogate must be
// immediately followed by a matching low surrogate, and the pair is
// combined into its supplementary-plane scalar; anything else is a lone
// surrogate error.
func validateAndPair(b []byte, offsets []int) (string, error) {
	var out []byte
	i := 0
	for i < len(b) {
		if r, size := utf8.DecodeRune(b[i:]); !(r == utf8.RuneError && size <= 1) {
			out = appendRune(out, r)
			i += size
			continue
		}

		if surrogate, ok := decodeCESU8Surrogate(b[i:]); ok {
			combined, consumed, err := pairSurrogate(b[i:], offsets[i:], surrogate)
			if err != nil {
				return "", err
			}
			out = appendRune(out, combined)
			i += consumed
			continue
		}

		return "", juerr.NewSyntax(offsets[i], "invalid UTF-8 byte 0x%02X", b[i])
	}
	return string(out), nil
}

func pairSurrogate(b []byte, offs []int, high rune) (rune, int, error) {
	if !utf16.IsSurrogate(high) || high >= 0xDC00 {
		return 0, 0, juerr.NewSyntax(offs[0], "lone low surrogate U+%04X", high)
	}
	if len(b) < 6 {
		return 0, 0, juerr.NewSyntax(offs[0], "lone high surrogate U+%04X (no following low surrogate)", high)
	}
	low, ok := decodeCESU8Surrogate(b[3:6])
	if !ok || low < 0xDC00 || low > 0xDFFF {
		return 0, 0, juerr.NewSyntax(offs[0], "high surrogate U+%04X not followed by a low surrogate", high)
	}
	combined := utf16.DecodeRune(high, low)
	if combined == utf8.RuneError {
		return 0, 0, juerr.NewSyntax(offs[0], "invalid surrogate pair U+%04X U+%04X", high, low)
	}
	return combined, 6, nil
}

// decodeCESU8Surrogate decodes a single 3-byte 0xED-prefixed UTF-8-shaped
// sequence into its (invalid-as-a-scalar) surrogate code point, without
// going through utf8.DecodeRune (which refuses surrogates outright).
func decodeCESU8Surrogate(b []byte) (rune, bool) {
	if len(b) < 3 {
		return 0, false
	}
	if b[0] != 0xED {
		return 0, false
	}
	if b[1] < 0xA0 || b[1] > 0xBF || b[2] < 0x80 || b[2] > 0xBF {
		return 0, false
	}
	r := rune(b[0]&0x0F)<<12 | rune(b[1]&0x3F)<<6 | rune(b[2]&0x3F)
	return r, true
}

func appendRune(buf []byte, r rune) []byte {
	var tmp [4]byte
	n := utf8.EncodeRune(tmp[:], r)
	return append(buf, tmp[:n]...)
}
