package lambda

import (
	"strconv"
	"strings"
)

// Term represents a lambda calculus term with De Bruijn indices.
type Term interface {
	String() string
	isTerm()
}

// Var represents a variable usage. Index counts enclosing abstractions
// from the innermost outward, starting at 0.
type Var struct {
	Index int
}

// Abs represents an abstraction (lambda). It binds index 0 inside Body.
type Abs struct {
	Body Term
}

// App represents an application.
type App struct {
	Fun Term
	Arg Term
}

func (Var) isTerm() {}
func (Abs) isTerm() {}
func (App) isTerm() {}

func (v Var) String() string { return render(v) }
func (a Abs) String() string { return render(a) }
func (a App) String() string { return render(a) }

// Apply builds the left-nested application f a1 a2 ... an.
func Apply(f Term, args ...Term) Term {
	for _, a := range args {
		f = App{Fun: f, Arg: a}
	}
	return f
}

// Lambdas wraps body in n abstractions.
func Lambdas(n int, body Term) Term {
	for i := 0; i < n; i++ {
		body = Abs{Body: body}
	}
	return body
}

// Equal reports whether a and b are structurally identical.
func Equal(a, b Term) bool {
	for {
		switch x := a.(type) {
		case Var:
			y, ok := b.(Var)
			return ok && x.Index == y.Index
		case Abs:
			y, ok := b.(Abs)
			if !ok {
				return false
			}
			a, b = x.Body, y.Body
		case App:
			y, ok := b.(App)
			if !ok || !Equal(x.Fun, y.Fun) {
				return false
			}
			a, b = x.Arg, y.Arg
		default:
			return false
		}
	}
}

// Size returns the number of nodes in t.
func Size(t Term) int {
	switch x := t.(type) {
	case Abs:
		return 1 + Size(x.Body)
	case App:
		return 1 + Size(x.Fun) + Size(x.Arg)
	default:
		return 1
	}
}

// FreeDepth returns the smallest number of binders that would close t.
func FreeDepth(t Term) int {
	return freeDepth(t, 0)
}

func freeDepth(t Term, depth int) int {
	switch x := t.(type) {
	case Var:
		if x.Index >= depth {
			return x.Index - depth + 1
		}
		return 0
	case Abs:
		return freeDepth(x.Body, depth+1)
	case App:
		return max(freeDepth(x.Fun, depth), freeDepth(x.Arg, depth))
	default:
		return 0
	}
}

// IsClosed reports whether t has no free variables.
func IsClosed(t Term) bool {
	return FreeDepth(t) == 0
}

// render writes the compact 1-based notation, e.g. λ1(λλ2)(λλ1).
func render(t Term) string {
	var sb strings.Builder
	write(&sb, t)
	return sb.String()
}

func write(sb *strings.Builder, t Term) {
	switch x := t.(type) {
	case Var:
		sb.WriteString(strconv.Itoa(x.Index + 1))
	case Abs:
		sb.WriteString("λ")
		write(sb, x.Body)
	case App:
		if _, ok := x.Fun.(Abs); ok {
			sb.WriteByte('(')
			write(sb, x.Fun)
			sb.WriteByte(')')
		} else {
			write(sb, x.Fun)
		}
		if _, ok := x.Arg.(Var); ok {
			write(sb, x.Arg)
		} else {
			sb.WriteByte('(')
			write(sb, x.Arg)
			sb.WriteByte(')')
		}
	}
}
