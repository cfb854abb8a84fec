// Package execution runs binary lambda calculus programs: it encodes the
// input, applies the program to it, reduces and decodes the output.
package execution

import (
	"github.com/vic/goblc/pkg/blc"
	"github.com/vic/goblc/pkg/church"
	"github.com/vic/goblc/pkg/lambda"
)

// Program is a parsed BLC program.
type Program struct {
	Term lambda.Term
	// Prefix holds bytes stored after the program in a packed file. They
	// are fed to the program ahead of byte input.
	Prefix []byte
}

func ProgramFromTerm(t lambda.Term) Program {
	return Program{Term: t}
}

// ProgramFromBits decodes a program that occupies all of bits.
func ProgramFromBits(bits blc.Bits) (Program, error) {
	t, err := blc.Decode(bits)
	if err != nil {
		return Program{}, wrap(err)
	}
	return Program{Term: t}, nil
}

// ParseProgram decodes ASCII '0'/'1' text, ignoring whitespace.
func ParseProgram(text string) (Program, error) {
	bits, err := blc.ParseBits(text)
	if err != nil {
		return Program{}, wrap(err)
	}
	return ProgramFromBits(bits)
}

// ProgramFromPacked decodes a packed program; whole bytes after it
// become the program's Prefix.
func ProgramFromPacked(data []byte) (Program, error) {
	t, rest, err := blc.DecodePacked(data)
	if err != nil {
		return Program{}, wrap(err)
	}
	p := Program{Term: t}
	if len(rest) > 0 {
		p.Prefix = append([]byte(nil), rest...)
	}
	return p, nil
}

// ProgramFromSource parses the named-variable surface syntax.
func ProgramFromSource(src string) (Program, error) {
	t, err := lambda.Parse(src)
	if err != nil {
		return Program{}, wrap(err)
	}
	return Program{Term: t}, nil
}

// Bits is the canonical encoding of the program term. The zero Program
// has no encoding.
func (p Program) Bits() blc.Bits {
	if p.Term == nil {
		return nil
	}
	return blc.Encode(p.Term)
}

type inputKind int

const (
	inputNothing inputKind = iota
	inputBytes
	inputTerm
	inputBinary
)

func (k inputKind) String() string {
	switch k {
	case inputBytes:
		return "bytes"
	case inputTerm:
		return "term"
	case inputBinary:
		return "binary"
	default:
		return "nothing"
	}
}

// Input is what a program is applied to.
type Input struct {
	kind inputKind
	data []byte
	bits blc.Bits
	term lambda.Term
}

// Nothing runs the program on its own, without applying it.
func Nothing() Input { return Input{kind: inputNothing} }

// Bytes applies the program to the Church encoding of b.
func Bytes(b []byte) Input { return Input{kind: inputBytes, data: b} }

// Term applies the program to t as is.
func Term(t lambda.Term) Input { return Input{kind: inputTerm, term: t} }

// Binary applies the program to the term encoded by bits. The bits are
// decoded when the run starts.
func Binary(bits blc.Bits) Input { return Input{kind: inputBinary, bits: bits} }

// argument returns the term to apply the program to, or nil for Nothing.
// A program Prefix is prepended to byte input and is input on its own
// when there is nothing else.
func (in Input) argument(prefix []byte) (lambda.Term, error) {
	switch in.kind {
	case inputBytes:
		if len(prefix) == 0 {
			return church.EncodeBytes(in.data), nil
		}
		data := make([]byte, 0, len(prefix)+len(in.data))
		return church.EncodeBytes(append(append(data, prefix...), in.data...)), nil
	case inputTerm:
		return in.term, nil
	case inputBinary:
		t, err := blc.Decode(in.bits)
		if err != nil {
			return nil, err
		}
		return t, nil
	default:
		if len(prefix) > 0 {
			return church.EncodeBytes(prefix), nil
		}
		return nil, nil
	}
}
