package blc

import (
	"errors"
	"fmt"

	"github.com/vic/goblc/pkg/lambda"
)

// ErrMalformedEncoding is matched by every decoding failure.
var ErrMalformedEncoding = errors.New("malformed BLC encoding")

// SyntaxError locates a decoding failure at a bit (or character) offset.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v at bit %d: %s", ErrMalformedEncoding, e.Offset, e.Msg)
}

func (e *SyntaxError) Is(target error) bool { return target == ErrMalformedEncoding }

// Encode maps a term to its canonical bit string:
//
//	Abs M   -> 00 M
//	App M N -> 01 M N
//	Var i   -> 1^(i+1) 0
func Encode(t lambda.Term) Bits {
	return AppendEncode(nil, t)
}

// AppendEncode appends the encoding of t to dst.
func AppendEncode(dst Bits, t lambda.Term) Bits {
	switch x := t.(type) {
	case lambda.Var:
		for i := 0; i <= x.Index; i++ {
			dst = append(dst, 1)
		}
		return append(dst, 0)
	case lambda.Abs:
		return AppendEncode(append(dst, 0, 0), x.Body)
	case lambda.App:
		dst = AppendEncode(append(dst, 0, 1), x.Fun)
		return AppendEncode(dst, x.Arg)
	default:
		panic(fmt.Sprintf("blc: unknown term type %T", t))
	}
}

// EncodeString is Encode rendered as ASCII bits.
func EncodeString(t lambda.Term) string {
	return Encode(t).String()
}

// Decoder reads consecutive terms from a bit string.
type Decoder struct {
	bits Bits
	pos  int
}

func NewDecoder(bits Bits) *Decoder {
	return &Decoder{bits: bits}
}

// Offset is the number of bits consumed so far.
func (d *Decoder) Offset() int { return d.pos }

// Rest returns the unconsumed bits.
func (d *Decoder) Rest() Bits { return d.bits[d.pos:] }

// More reports whether any bits remain.
func (d *Decoder) More() bool { return d.pos < len(d.bits) }

// Next decodes exactly the bits of one term. On error the decoder does
// not advance.
func (d *Decoder) Next() (lambda.Term, error) {
	start := d.pos
	t, err := d.term()
	if err != nil {
		d.pos = start
		return nil, err
	}
	return t, nil
}

func (d *Decoder) fail(msg string) error {
	return &SyntaxError{Offset: d.pos, Msg: msg}
}

func (d *Decoder) term() (lambda.Term, error) {
	if d.pos >= len(d.bits) {
		return nil, d.fail("unexpected end of input, expected a term")
	}
	if d.bits[d.pos] == 1 {
		return d.variable()
	}
	if d.pos+1 >= len(d.bits) {
		return nil, d.fail("truncated tag")
	}
	tag := d.bits[d.pos+1]
	d.pos += 2
	if tag == 0 {
		body, err := d.term()
		if err != nil {
			return nil, err
		}
		return lambda.Abs{Body: body}, nil
	}
	fun, err := d.term()
	if err != nil {
		return nil, err
	}
	arg, err := d.term()
	if err != nil {
		return nil, err
	}
	return lambda.App{Fun: fun, Arg: arg}, nil
}

func (d *Decoder) variable() (lambda.Term, error) {
	ones := 0
	for d.pos < len(d.bits) && d.bits[d.pos] == 1 {
		ones++
		d.pos++
	}
	if d.pos >= len(d.bits) {
		return nil, d.fail("unterminated variable")
	}
	d.pos++ // terminating 0
	return lambda.Var{Index: ones - 1}, nil
}

// DecodePrefix decodes one term from the front of bits and returns the
// remainder.
func DecodePrefix(bits Bits) (lambda.Term, Bits, error) {
	d := NewDecoder(bits)
	t, err := d.Next()
	if err != nil {
		return nil, bits, err
	}
	return t, d.Rest(), nil
}

// Decode decodes bits that hold exactly one term.
func Decode(bits Bits) (lambda.Term, error) {
	d := NewDecoder(bits)
	t, err := d.Next()
	if err != nil {
		return nil, err
	}
	if d.More() {
		return nil, d.fail(fmt.Sprintf("%d trailing bits after term", len(d.Rest())))
	}
	return t, nil
}

// DecodeString parses ASCII bits and decodes exactly one term.
func DecodeString(s string) (lambda.Term, error) {
	bits, err := ParseBits(s)
	if err != nil {
		return nil, err
	}
	return Decode(bits)
}

// DecodePacked decodes a program stored in packed bytes. The padding of
// the byte holding the program's last bit is discarded; the whole bytes
// after it are returned untouched, since a packed program may be
// followed by its input.
func DecodePacked(data []byte) (lambda.Term, []byte, error) {
	d := NewDecoder(Unpack(data))
	t, err := d.Next()
	if err != nil {
		return nil, nil, err
	}
	used := (d.Offset() + 7) / 8
	return t, data[used:], nil
}
