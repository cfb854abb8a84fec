package lambda

// Shift adds amount to every variable in t whose index is >= cutoff.
// The cutoff grows by one under each abstraction, so locally bound
// variables are left alone. A negative amount removes a binder.
func Shift(t Term, amount, cutoff int) Term {
	if amount == 0 {
		return t
	}
	return shift(t, amount, cutoff)
}

func shift(t Term, amount, cutoff int) Term {
	switch x := t.(type) {
	case Var:
		if x.Index >= cutoff {
			return Var{Index: x.Index + amount}
		}
		return x
	case Abs:
		return Abs{Body: shift(x.Body, amount, cutoff+1)}
	case App:
		return App{Fun: shift(x.Fun, amount, cutoff), Arg: shift(x.Arg, amount, cutoff)}
	default:
		return t
	}
}

// Substitute replaces the variable index (as seen from the top of t) with
// replacement and removes its binder: replacement is shifted by the
// binder depth at each occurrence, and every free variable above index
// is decremented.
//
// Substitute(Shift(t, 1, 0), 0, r) == t for any t and r.
func Substitute(t Term, index int, replacement Term) Term {
	return substitute(t, index, replacement, 0)
}

func substitute(t Term, index int, r Term, depth int) Term {
	switch x := t.(type) {
	case Var:
		switch {
		case x.Index == index+depth:
			return Shift(r, depth, 0)
		case x.Index > index+depth:
			return Var{Index: x.Index - 1}
		default:
			return x
		}
	case Abs:
		return Abs{Body: substitute(x.Body, index, r, depth+1)}
	case App:
		return App{
			Fun: substitute(x.Fun, index, r, depth),
			Arg: substitute(x.Arg, index, r, depth),
		}
	default:
		return t
	}
}

// Beta contracts the redex App{Abs{body}, arg}.
//
// It is the same as Shift(replace(body, 0, Shift(arg, 1, 0)), -1, 0) where
// replace does not renumber the remaining variables.
func Beta(body, arg Term) Term {
	return Substitute(body, 0, arg)
}

// replace substitutes without removing a binder.
func replace(t Term, index int, r Term, depth int) Term {
	switch x := t.(type) {
	case Var:
		if x.Index == index+depth {
			return Shift(r, depth, 0)
		}
		return x
	case Abs:
		return Abs{Body: replace(x.Body, index, r, depth+1)}
	case App:
		return App{Fun: replace(x.Fun, index, r, depth), Arg: replace(x.Arg, index, r, depth)}
	default:
		return t
	}
}
