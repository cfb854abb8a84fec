package lambda

import (
	"errors"
	"math/rand"
	"testing"
)

func mustParse(t *testing.T, src string) Term {
	t.Helper()
	term, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", src, err)
	}
	return term
}

// randomTerm builds a term of bounded depth whose free variables stay
// below free at the top level.
func randomTerm(r *rand.Rand, depth, free int) Term {
	if depth == 0 || r.Intn(4) == 0 {
		if free == 0 {
			return Abs{Body: Var{Index: 0}}
		}
		return Var{Index: r.Intn(free)}
	}
	if r.Intn(2) == 0 {
		return Abs{Body: randomTerm(r, depth-1, free+1)}
	}
	return App{Fun: randomTerm(r, depth-1, free), Arg: randomTerm(r, depth-1, free)}
}

// TestIdentityFunction tests the simplest term: (x: x) is λ.0.
func TestIdentityFunction(t *testing.T) {
	term := mustParse(t, "(x: x)")
	want := Abs{Body: Var{Index: 0}}
	if !Equal(term, want) {
		t.Fatalf("got %v, want %v", term, want)
	}
	if got := term.String(); got != "λ1" {
		t.Errorf("String() = %q, want %q", got, "λ1")
	}
}

// TestKCombinator checks that the outer binder is index 1 inside two
// abstractions.
func TestKCombinator(t *testing.T) {
	term := mustParse(t, "x: y: x")
	want := Lambdas(2, Var{Index: 1})
	if !Equal(term, want) {
		t.Fatalf("got %v, want %v", term, want)
	}
	if got := term.String(); got != "λλ2" {
		t.Errorf("String() = %q, want %q", got, "λλ2")
	}
}

func TestSCombinator(t *testing.T) {
	term := mustParse(t, "x: y: z: x z (y z)")
	if got := term.String(); got != "λλλ31(21)" {
		t.Errorf("String() = %q, want %q", got, "λλλ31(21)")
	}
}

func TestChurchNumerals(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"f: x: x", "λλ1"},
		{"f: x: f x", "λλ21"},
		{"f: x: f (f x)", "λλ2(21)"},
		{"f: x: f (f (f x))", "λλ2(2(21))"},
	}
	for _, tt := range tests {
		if got := mustParse(t, tt.src).String(); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.src, got, tt.want)
		}
	}
}

// TestLetBinding checks that let desugars to an immediately applied
// abstraction and that later bindings see earlier ones.
func TestLetBinding(t *testing.T) {
	term := mustParse(t, "let id = x: x; in id id")
	want := App{Fun: Abs{Body: App{Fun: Var{Index: 0}, Arg: Var{Index: 0}}}, Arg: Abs{Body: Var{Index: 0}}}
	if !Equal(term, want) {
		t.Fatalf("got %v, want %v", term, want)
	}
	if got := term.String(); got != "(λ11)(λ1)" {
		t.Errorf("String() = %q", got)
	}

	nested := mustParse(t, "let a = x: x; b = a a; in b")
	// (a: (b: b) (a a)) (x: x)
	want = App{
		Fun: Abs{Body: App{
			Fun: Abs{Body: Var{Index: 0}},
			Arg: App{Fun: Var{Index: 0}, Arg: Var{Index: 0}},
		}},
		Arg: Abs{Body: Var{Index: 0}},
	}
	if !Equal(nested, want) {
		t.Errorf("got %v, want %v", nested, want)
	}
}

func TestComments(t *testing.T) {
	term := mustParse(t, "# identity\nx: # the body\n x")
	if !Equal(term, Abs{Body: Var{Index: 0}}) {
		t.Errorf("got %v", term)
	}
}

// TestFreeVariables checks that unbound names are rejected with a
// positioned error.
func TestFreeVariables(t *testing.T) {
	_, err := Parse("x: y")
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if perr.Offset != 3 {
		t.Errorf("Offset = %d, want 3", perr.Offset)
	}
}

func TestParseErrors(t *testing.T) {
	for _, src := range []string{"", "(x: x", "x: x)", "let = x: x; in x", "let a x; in a"} {
		if _, err := Parse(src); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", src)
		}
	}
}

// TestNestedApplications checks the rendering rules: application is left
// associative, abstractions in function position and compound arguments
// are parenthesized.
func TestNestedApplications(t *testing.T) {
	tests := []struct {
		term Term
		want string
	}{
		{Apply(Var{Index: 0}, Var{Index: 1}, Var{Index: 2}), "123"},
		{App{Fun: Var{Index: 0}, Arg: App{Fun: Var{Index: 1}, Arg: Var{Index: 2}}}, "1(23)"},
		{App{Fun: Abs{Body: Var{Index: 0}}, Arg: Var{Index: 4}}, "(λ1)5"},
		{Abs{Body: Apply(Var{Index: 0}, Lambdas(2, Var{Index: 1}), Lambdas(2, Var{Index: 0}))}, "λ1(λλ2)(λλ1)"},
	}
	for _, tt := range tests {
		if got := tt.term.String(); got != tt.want {
			t.Errorf("got %q, want %q", got, tt.want)
		}
	}
}

func TestFreeDepth(t *testing.T) {
	tests := []struct {
		term Term
		want int
	}{
		{Var{Index: 0}, 1},
		{Var{Index: 3}, 4},
		{Abs{Body: Var{Index: 3}}, 3},
		{Lambdas(2, Var{Index: 1}), 0},
		{App{Fun: Abs{Body: Var{Index: 2}}, Arg: Var{Index: 0}}, 2},
	}
	for _, tt := range tests {
		if got := FreeDepth(tt.term); got != tt.want {
			t.Errorf("FreeDepth(%v) = %d, want %d", tt.term, got, tt.want)
		}
		if IsClosed(tt.term) != (tt.want == 0) {
			t.Errorf("IsClosed(%v) disagrees with FreeDepth", tt.term)
		}
	}
}

func TestSize(t *testing.T) {
	if got := Size(mustParse(t, "x: y: x y")); got != 5 {
		t.Errorf("Size = %d, want 5", got)
	}
}
