// Package base62 encodes non-negative integers with the 62-symbol alphabet
// (digits, uppercase, lowercase) used for short codes.
package base62

import (
	"errors"
	"fmt"
	"strings"
)

// Alphabet is ordered so that '0' is the zero symbol.
const Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const base = uint64(len(Alphabet))

var (
	// ErrInvalidCharacter is returned when decoding a string containing a symbol outside the alphabet.
	ErrInvalidCharacter = errors.New("invalid base62 character")
	// ErrOverflow is returned when the decoded value does not fit into uint64.
	ErrOverflow = errors.New("base62 value overflows uint64")
)

// Encode returns the base62 representation of n without padding.
func Encode(n uint64) string {
	if n == 0 {
		return Alphabet[:1]
	}

	var buf [11]byte // 62^11 > 2^64
	i := len(buf)

	for n > 0 {
		i--
		buf[i] = Alphabet[n%base]
		n /= base
	}

	return string(buf[i:])
}

// Decode parses a base62 string produced by Encode. Leading zero symbols are accepted.
func Decode(s string) (uint64, error) {
	const op = "base62.Decode"

	if s == "" {
		return 0, fmt.Errorf("%s: empty input: %w", op, ErrInvalidCharacter)
	}

	var n uint64

	for _, c := range s {
		digit := strings.IndexRune(Alphabet, c)
		if digit < 0 {
			return 0, fmt.Errorf("%s: %q: %w", op, c, ErrInvalidCharacter)
		}

		if n > (^uint64(0)-uint64(digit))/base {
			return 0, fmt.Errorf("%s: %w", op, ErrOverflow)
		}

		n = n*base + uint64(digit)
	}

	return n, nil
}

// Fit adjusts code to exactly length symbols. Shorter codes are left-padded with
// the zero symbol, longer codes are truncated to their first length symbols.
// The second return value reports whether truncation happened; a truncated code
// no longer decodes back to the original value.
func Fit(code string, length int) (string, bool) {
	switch {
	case length <= 0:
		return "", len(code) > 0
	case len(code) > length:
		return code[:length], true
	case len(code) < length:
		return strings.Repeat(Alphabet[:1], length-len(code)) + code, false
	default:
		return code, false
	}
}
