package lambda

import (
	"fmt"
	"unicode"
)

type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIdent
	TokenColon
	TokenEqual
	TokenSemicolon
	TokenLParen
	TokenRParen
	TokenLet
	TokenIn
)

type Token struct {
	Type    TokenType
	Literal string
}

// ParseError reports a syntax or scoping problem at a byte offset.
type ParseError struct {
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d: %s", e.Offset, e.Msg)
}

// Parser reads the nix-like surface syntax (x: body, juxtaposition,
// parentheses, let bindings) and resolves names to De Bruijn indices.
type Parser struct {
	input   string
	pos     int
	start   int
	current Token
	scope   []string
}

func NewParser(input string) *Parser {
	p := &Parser{input: input}
	p.next()
	return p
}

func (p *Parser) next() {
	p.skipWhitespace()
	p.start = p.pos
	if p.pos >= len(p.input) {
		p.current = Token{Type: TokenEOF}
		return
	}

	ch := p.input[p.pos]
	switch {
	case isLetter(ch):
		for p.pos < len(p.input) && (isLetter(p.input[p.pos]) || isDigit(p.input[p.pos]) || p.input[p.pos] == '\'') {
			p.pos++
		}
		lit := p.input[p.start:p.pos]
		switch lit {
		case "let":
			p.current = Token{Type: TokenLet, Literal: lit}
		case "in":
			p.current = Token{Type: TokenIn, Literal: lit}
		default:
			p.current = Token{Type: TokenIdent, Literal: lit}
		}
	case ch == ':':
		p.current = Token{Type: TokenColon, Literal: ":"}
		p.pos++
	case ch == '=':
		p.current = Token{Type: TokenEqual, Literal: "="}
		p.pos++
	case ch == ';':
		p.current = Token{Type: TokenSemicolon, Literal: ";"}
		p.pos++
	case ch == '(':
		p.current = Token{Type: TokenLParen, Literal: "("}
		p.pos++
	case ch == ')':
		p.current = Token{Type: TokenRParen, Literal: ")"}
		p.pos++
	case ch == '#':
		// Comment to end of line.
		for p.pos < len(p.input) && p.input[p.pos] != '\n' {
			p.pos++
		}
		p.next()
	default:
		// Single-char symbols (e.g. +) are identifiers.
		p.current = Token{Type: TokenIdent, Literal: string(ch)}
		p.pos++
	}
}

func (p *Parser) skipWhitespace() {
	for p.pos < len(p.input) && unicode.IsSpace(rune(p.input[p.pos])) {
		p.pos++
	}
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func (p *Parser) errorf(format string, args ...any) error {
	return &ParseError{Offset: p.start, Msg: fmt.Sprintf(format, args...)}
}

// Parse parses a single closed term and requires the whole input to be
// consumed.
func (p *Parser) Parse() (Term, error) {
	t, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	if p.current.Type != TokenEOF {
		return nil, p.errorf("unexpected %q after term", p.current.Literal)
	}
	return t, nil
}

func (p *Parser) bind(name string) { p.scope = append(p.scope, name) }
func (p *Parser) unbind(n int)     { p.scope = p.scope[:len(p.scope)-n] }

func (p *Parser) lookup(name string) (Var, bool) {
	for i := len(p.scope) - 1; i >= 0; i-- {
		if p.scope[i] == name {
			return Var{Index: len(p.scope) - 1 - i}, true
		}
	}
	return Var{}, false
}

// peekColon reports whether the identifier under the cursor starts an
// abstraction, restoring the cursor either way.
func (p *Parser) peekColon() bool {
	savePos, saveStart, saveTok := p.pos, p.start, p.current
	p.next()
	isAbs := p.current.Type == TokenColon
	p.pos, p.start, p.current = savePos, saveStart, saveTok
	return isAbs
}

// Term ::= Let | Ident ':' Term | App
func (p *Parser) parseTerm() (Term, error) {
	if p.current.Type == TokenLet {
		return p.parseLet()
	}
	if p.current.Type == TokenIdent && p.peekColon() {
		return p.parseAbs()
	}
	return p.parseApp()
}

func (p *Parser) parseAbs() (Term, error) {
	name := p.current.Literal
	p.next() // ident
	p.next() // colon
	p.bind(name)
	body, err := p.parseTerm()
	p.unbind(1)
	if err != nil {
		return nil, err
	}
	return Abs{Body: body}, nil
}

func (p *Parser) parseApp() (Term, error) {
	left, err := p.parseAtom()
	if err != nil {
		return nil, err
	}

	for {
		switch p.current.Type {
		case TokenEOF, TokenRParen, TokenSemicolon, TokenIn:
			return left, nil
		case TokenLet:
			// A trailing let extends as far right as possible.
			right, err := p.parseLet()
			if err != nil {
				return nil, err
			}
			return App{Fun: left, Arg: right}, nil
		case TokenIdent:
			// `f x: x` parses as `f (x: x)`.
			if p.peekColon() {
				right, err := p.parseAbs()
				if err != nil {
					return nil, err
				}
				return App{Fun: left, Arg: right}, nil
			}
		}

		right, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		left = App{Fun: left, Arg: right}
	}
}

func (p *Parser) parseAtom() (Term, error) {
	switch p.current.Type {
	case TokenIdent:
		name := p.current.Literal
		v, ok := p.lookup(name)
		if !ok {
			return nil, p.errorf("unbound variable %q", name)
		}
		p.next()
		return v, nil
	case TokenLParen:
		p.next()
		term, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if p.current.Type != TokenRParen {
			return nil, p.errorf("expected ')'")
		}
		p.next()
		return term, nil
	case TokenEOF:
		return nil, p.errorf("unexpected end of input")
	default:
		return nil, p.errorf("unexpected token %q", p.current.Literal)
	}
}

// let x = M; y = N; in B desugars to (x: (y: B) N) M, so each binding
// sees the ones before it.
func (p *Parser) parseLet() (Term, error) {
	p.next() // consume 'let'

	var vals []Term
	defer func() { p.unbind(len(vals)) }()

	for {
		if p.current.Type != TokenIdent {
			return nil, p.errorf("expected identifier in let binding")
		}
		name := p.current.Literal
		p.next()

		if p.current.Type != TokenEqual {
			return nil, p.errorf("expected '='")
		}
		p.next()

		val, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		vals = append(vals, val)
		p.bind(name)

		if p.current.Type == TokenSemicolon {
			p.next()
		}
		if p.current.Type == TokenIn {
			p.next()
			break
		}
		if p.current.Type != TokenIdent {
			return nil, p.errorf("expected ';' or 'in'")
		}
	}

	body, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	term := body
	for i := len(vals) - 1; i >= 0; i-- {
		term = App{Fun: Abs{Body: term}, Arg: vals[i]}
	}
	return term, nil
}

// Parse parses a closed lambda term from the surface syntax.
func Parse(input string) (Term, error) {
	return NewParser(input).Parse()
}
