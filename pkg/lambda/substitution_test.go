package lambda

import (
	"math/rand"
	"testing"
)

func TestShift(t *testing.T) {
	term := Abs{Body: App{Fun: Var{Index: 0}, Arg: Var{Index: 2}}}
	got := Shift(term, 3, 0)
	want := Abs{Body: App{Fun: Var{Index: 0}, Arg: Var{Index: 5}}}
	if !Equal(got, want) {
		t.Errorf("Shift = %v, want %v", got, want)
	}
	if back := Shift(got, -3, 0); !Equal(back, term) {
		t.Errorf("Shift back = %v, want %v", back, term)
	}
}

func TestBeta(t *testing.T) {
	// (λ.λ.1 0) applied to a free 5 gives λ.6 0.
	body := Abs{Body: App{Fun: Var{Index: 1}, Arg: Var{Index: 0}}}
	got := Beta(body, Var{Index: 5})
	var want Term = Abs{Body: App{Fun: Var{Index: 6}, Arg: Var{Index: 0}}}
	if !Equal(got, want) {
		t.Errorf("Beta = %v, want %v", got, want)
	}

	// Variables above the consumed binder move down by one.
	got = Beta(App{Fun: Var{Index: 0}, Arg: Var{Index: 3}}, Lambdas(1, Var{Index: 0}))
	want = App{Fun: Lambdas(1, Var{Index: 0}), Arg: Var{Index: 2}}
	if !Equal(got, want) {
		t.Errorf("Beta = %v, want %v", got, want)
	}
}

// TestSubstitutionLemma checks Substitute(Shift(t, 1, 0), 0, r) == t on
// random terms.
func TestSubstitutionLemma(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		term := randomTerm(r, 6, 3)
		repl := randomTerm(r, 4, 2)
		if got := Substitute(Shift(term, 1, 0), 0, repl); !Equal(got, term) {
			t.Fatalf("lemma failed for %v with %v: got %v", term, repl, got)
		}
	}
}

// TestBetaMatchesShiftReplace checks Beta against the shift, replace,
// unshift formulation.
func TestBetaMatchesShiftReplace(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	for i := 0; i < 500; i++ {
		body := randomTerm(r, 6, 2)
		arg := randomTerm(r, 4, 1)
		want := Shift(replace(body, 0, Shift(arg, 1, 0), 0), -1, 0)
		if got := Beta(body, arg); !Equal(got, want) {
			t.Fatalf("Beta(%v, %v) = %v, want %v", body, arg, got, want)
		}
	}
}
