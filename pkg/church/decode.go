package church

import (
	"errors"
	"fmt"
	"io"

	"github.com/vic/goblc/pkg/lambda"
)

var (
	// ErrNotABoolean means a list element expected to be a bit is neither
	// Church boolean.
	ErrNotABoolean = errors.New("not a Church boolean")
	// ErrInvalidOutputShape means a term expected to be a list is not one,
	// or a byte does not have exactly eight bits.
	ErrInvalidOutputShape = errors.New("invalid output shape")
)

// ShapeError places a decoding failure in the output: Index is the byte
// position and Bit the bit position inside it, or -1 when the failure is
// in the outer list.
type ShapeError struct {
	Index int
	Bit   int
	Err   error
}

func (e *ShapeError) Error() string {
	if e.Bit < 0 {
		return fmt.Sprintf("output element %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("output element %d, bit %d: %v", e.Index, e.Bit, e.Err)
}

func (e *ShapeError) Unwrap() error { return e.Err }

// Shape is the outermost structure of a list cell.
type Shape int

const (
	ShapeOther Shape = iota
	ShapeNil
	ShapeCons
)

func (s Shape) String() string {
	switch s {
	case ShapeNil:
		return "nil"
	case ShapeCons:
		return "cons"
	default:
		return "other"
	}
}

// Inspector answers shape questions about terms referenced by handles of
// type H, reducing them only as far as each answer requires. Errors
// returned by an Inspector come from reduction and are passed through.
type Inspector[H any] interface {
	// Uncons reports whether h is nil, a cons cell (with its head and
	// tail), or something else.
	Uncons(h H) (shape Shape, head, tail H, err error)
	// Boolean reports the bit h encodes; ok is false if h is neither
	// Church boolean.
	Boolean(h H) (bit byte, ok bool, err error)
}

// DecodeBit decodes a single Church boolean.
func DecodeBit[H any](in Inspector[H], h H) (byte, error) {
	bit, ok, err := in.Boolean(h)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrNotABoolean
	}
	return bit, nil
}

// DecodeByte decodes a list of exactly eight booleans, MSB first.
func DecodeByte[H any](in Inspector[H], h H) (byte, error) {
	return decodeByte(in, h, 0)
}

func decodeByte[H any](in Inspector[H], h H, index int) (byte, error) {
	var b byte
	cur := h
	for i := 0; ; i++ {
		shape, head, tail, err := in.Uncons(cur)
		if err != nil {
			return 0, err
		}
		switch shape {
		case ShapeNil:
			if i != 8 {
				return 0, &ShapeError{Index: index, Bit: i, Err: fmt.Errorf("%w: byte has %d bits", ErrInvalidOutputShape, i)}
			}
			return b, nil
		case ShapeCons:
			if i == 8 {
				return 0, &ShapeError{Index: index, Bit: i, Err: fmt.Errorf("%w: byte has more than 8 bits", ErrInvalidOutputShape)}
			}
			bit, err := DecodeBit(in, head)
			if err != nil {
				if errors.Is(err, ErrNotABoolean) {
					return 0, &ShapeError{Index: index, Bit: i, Err: err}
				}
				return 0, err
			}
			b = b<<1 | bit
			cur = tail
		default:
			return 0, &ShapeError{Index: index, Bit: i, Err: fmt.Errorf("%w: byte is not a list", ErrInvalidOutputShape)}
		}
	}
}

// Decoder pulls bytes one at a time from a Church list.
type Decoder[H any] struct {
	in    Inspector[H]
	cur   H
	index int
	err   error
}

func NewDecoder[H any](in Inspector[H], list H) *Decoder[H] {
	return &Decoder[H]{in: in, cur: list}
}

// Next returns the next byte, io.EOF at nil, or the error that stopped
// decoding. Errors are sticky.
func (d *Decoder[H]) Next() (byte, error) {
	if d.err != nil {
		return 0, d.err
	}
	shape, head, tail, err := d.in.Uncons(d.cur)
	if err != nil {
		d.err = err
		return 0, err
	}
	switch shape {
	case ShapeNil:
		d.err = io.EOF
		return 0, io.EOF
	case ShapeCons:
		b, err := decodeByte(d.in, head, d.index)
		if err != nil {
			d.err = err
			return 0, err
		}
		d.index++
		d.cur = tail
		return b, nil
	default:
		d.err = &ShapeError{Index: d.index, Bit: -1, Err: fmt.Errorf("%w: not a list", ErrInvalidOutputShape)}
		return 0, d.err
	}
}

// Index is the number of bytes decoded so far.
func (d *Decoder[H]) Index() int { return d.index }

// DecodeBytes decodes a finite list of bytes.
func DecodeBytes[H any](in Inspector[H], list H) ([]byte, error) {
	d := NewDecoder(in, list)
	var out []byte
	for {
		b, err := d.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
}

// Terms inspects lambda terms that are already in normal form, matching
// the canonical shapes exactly.
type Terms struct{}

var _ Inspector[lambda.Term] = Terms{}

func (Terms) Uncons(t lambda.Term) (Shape, lambda.Term, lambda.Term, error) {
	if lambda.Equal(t, falseTerm) {
		return ShapeNil, nil, nil, nil
	}
	abs, ok := t.(lambda.Abs)
	if !ok {
		return ShapeOther, nil, nil, nil
	}
	outer, ok := abs.Body.(lambda.App)
	if !ok {
		return ShapeOther, nil, nil, nil
	}
	inner, ok := outer.Fun.(lambda.App)
	if !ok {
		return ShapeOther, nil, nil, nil
	}
	if v, ok := inner.Fun.(lambda.Var); !ok || v.Index != 0 {
		return ShapeOther, nil, nil, nil
	}
	head, tail := inner.Arg, outer.Arg
	// The cell's own binder must not leak into its fields.
	if mentions(head, 0) || mentions(tail, 0) {
		return ShapeOther, nil, nil, nil
	}
	return ShapeCons, lambda.Shift(head, -1, 0), lambda.Shift(tail, -1, 0), nil
}

func (Terms) Boolean(t lambda.Term) (byte, bool, error) {
	switch {
	case lambda.Equal(t, trueTerm):
		return 0, true, nil
	case lambda.Equal(t, falseTerm):
		return 1, true, nil
	}
	return 0, false, nil
}

// mentions reports whether t refers to the variable free at index i.
func mentions(t lambda.Term, i int) bool {
	switch x := t.(type) {
	case lambda.Var:
		return x.Index == i
	case lambda.Abs:
		return mentions(x.Body, i+1)
	case lambda.App:
		return mentions(x.Fun, i) || mentions(x.Arg, i)
	}
	return false
}
