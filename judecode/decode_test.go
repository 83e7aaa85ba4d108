package judecode

import (
	"errors"
	"testing"

	"github.com/lattice-substrate/jsonurl/juerr"
)

func TestDecodePlusToSpace(t *testing.T) {
	got, err := DecodeToken([]byte("hello+world"), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "hello world" {
		t.Fatalf("got %q", got)
	}
}

func TestDecodePercentEscape(t *testing.T) {
	got, err := DecodeToken([]byte("hello%C2%A2world"), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "hello¢world" {
		t.Fatalf("got %q", got)
	}
}

func TestDecodeRawUTF8PassesThrough(t *testing.T) {
	got, err := DecodeToken([]byte("café"), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "café" {
		t.Fatalf("got %q", got)
	}
}

func TestDecodeSurrogatePair(t *testing.T) {
	// U+1F600 GRINNING FACE encoded as a CESU-8 surrogate pair:
	// high D83D -> ED A0 BD, low DE00 -> ED B8 80.
	raw := []byte{'%', 'E', 'D', '%', 'A', '0', '%', 'B', 'D', '%', 'E', 'D', '%', 'B', '8', '%', '8', '0'}
	got, err := DecodeToken(raw, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "\U0001F600" {
		t.Fatalf("got %q, want grinning face", got)
	}
}

func TestDecodeLoneHighSurrogateErrors(t *testing.T) {
	raw := []byte{'%', 'E', 'D', '%', 'A', '0', '%', 'B', 'D'}
	_, err := DecodeToken(raw, 0)
	var se *juerr.SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("expected syntax error, got %v", err)
	}
}

func TestDecodeLoneLowSurrogateErrors(t *testing.T) {
	raw := []byte{'%', 'E', 'D', '%', 'B', '8', '%', '8', '0'}
	_, err := DecodeToken(raw, 0)
	var se *juerr.SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("expected syntax error, got %v", err)
	}
}

func TestDecodeInvalidPercentSequence(t *testing.T) {
	_, err := DecodeToken([]byte("abc%ZZ"), 0)
	var se *juerr.SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("expected syntax error, got %v", err)
	}
}

func TestDecodeIncompletePercentSequence(t *testing.T) {
	_, err := DecodeToken([]byte("abc%4"), 0)
	var se *juerr.SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("expected syntax error, got %v", err)
	}
}
