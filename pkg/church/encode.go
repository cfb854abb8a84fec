// Package church converts raw bytes to and from Church-encoded terms.
//
// A bit is a Church boolean: bit 0 is true (λλ.1) and bit 1 is false
// (λλ.0). A list cell is λ.0 head tail and nil is false. A byte is a list
// of exactly eight bits, most significant first, and a byte string is a
// list of bytes. For example 'a' (0x61) encodes to
//
//	λ1(λ1(λλ2)(λ1(λλ1)(λ1(λλ1)(λ1(λλ2)(λ1(λλ2)(λ1(λλ2)(λ1(λλ2)(λ1(λλ1)(λλ1)))))))))(λλ1)
//
// in 1-based notation.
package church

import "github.com/vic/goblc/pkg/lambda"

var (
	trueTerm  lambda.Term = lambda.Abs{Body: lambda.Abs{Body: lambda.Var{Index: 1}}}
	falseTerm lambda.Term = lambda.Abs{Body: lambda.Abs{Body: lambda.Var{Index: 0}}}
)

// True is λλ.1, the encoding of bit 0.
func True() lambda.Term { return trueTerm }

// False is λλ.0, the encoding of bit 1.
func False() lambda.Term { return falseTerm }

// Nil terminates a list.
func Nil() lambda.Term { return falseTerm }

// Cons builds λ.0 head tail. head and tail may be open; they are shifted
// under the new binder.
func Cons(head, tail lambda.Term) lambda.Term {
	return cons(lambda.Shift(head, 1, 0), lambda.Shift(tail, 1, 0))
}

// cons assumes head and tail are closed.
func cons(head, tail lambda.Term) lambda.Term {
	return lambda.Abs{Body: lambda.App{
		Fun: lambda.App{Fun: lambda.Var{Index: 0}, Arg: head},
		Arg: tail,
	}}
}

// List builds a list of closed terms.
func List(items ...lambda.Term) lambda.Term {
	out := Nil()
	for i := len(items) - 1; i >= 0; i-- {
		out = cons(items[i], out)
	}
	return out
}

// EncodeBit maps 0 to True and any other value to False.
func EncodeBit(bit byte) lambda.Term {
	if bit == 0 {
		return trueTerm
	}
	return falseTerm
}

var byteTerms [256]lambda.Term

func init() {
	for i := range byteTerms {
		byteTerms[i] = encodeByte(byte(i))
	}
}

func encodeByte(b byte) lambda.Term {
	bits := make([]lambda.Term, 8)
	for i := range bits {
		bits[i] = EncodeBit((b >> (7 - i)) & 1)
	}
	return List(bits...)
}

// EncodeByte encodes b as a list of eight booleans, MSB first.
func EncodeByte(b byte) lambda.Term {
	return byteTerms[b]
}

// EncodeBytes encodes s as a list of bytes. The empty slice is Nil.
func EncodeBytes(s []byte) lambda.Term {
	out := Nil()
	for i := len(s) - 1; i >= 0; i-- {
		out = cons(byteTerms[s[i]], out)
	}
	return out
}

// EncodeBits encodes a list of single bits, one boolean per element.
func EncodeBits(bits []byte) lambda.Term {
	out := Nil()
	for i := len(bits) - 1; i >= 0; i-- {
		out = cons(EncodeBit(bits[i]), out)
	}
	return out
}
