// Package blc implements the binary lambda calculus wire format: the
// bit-level encoding of De Bruijn terms and its packed byte form.
//
// Packed bytes are MSB-first: bit k of a stream is bit 7-k%8 of byte
// k/8, and the final byte is padded with zero bits.
package blc

import (
	"fmt"
	"strings"
)

// Bit is a single binary digit, 0 or 1.
type Bit uint8

// Bits is an ordered sequence of bits.
type Bits []Bit

// String renders bits as ASCII '0' and '1' characters.
func (b Bits) String() string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, bit := range b {
		sb.WriteByte('0' + byte(bit&1))
	}
	return sb.String()
}

// Equal reports whether b and o hold the same bits.
func (b Bits) Equal(o Bits) bool {
	if len(b) != len(o) {
		return false
	}
	for i := range b {
		if b[i] != o[i] {
			return false
		}
	}
	return true
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// ParseBits reads ASCII '0'/'1' characters, skipping spaces, tabs and
// line breaks. Any other character is a malformed encoding.
func ParseBits(s string) (Bits, error) {
	bits := make(Bits, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '0':
			bits = append(bits, 0)
		case c == '1':
			bits = append(bits, 1)
		case isSpace(c):
		default:
			return nil, &SyntaxError{Offset: i, Msg: fmt.Sprintf("invalid bit character %q", c)}
		}
	}
	return bits, nil
}

// MustParseBits is like ParseBits but panics on error. It is meant for
// program literals.
func MustParseBits(s string) Bits {
	bits, err := ParseBits(s)
	if err != nil {
		panic(err)
	}
	return bits
}

// Pack stores bits MSB-first, eight per byte, zero-padding the last byte.
func Pack(bits Bits) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, bit := range bits {
		if bit&1 != 0 {
			out[i/8] |= 0x80 >> (i % 8)
		}
	}
	return out
}

// Unpack expands bytes into bits, MSB first.
func Unpack(data []byte) Bits {
	bits := make(Bits, 0, len(data)*8)
	for _, b := range data {
		for shift := 7; shift >= 0; shift-- {
			bits = append(bits, Bit(b>>shift)&1)
		}
	}
	return bits
}
