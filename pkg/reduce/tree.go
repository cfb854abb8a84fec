package reduce

import (
	"context"

	"github.com/vic/goblc/pkg/lambda"
)

// Step performs one leftmost-outermost beta reduction by substitution.
// It reports false when t is already in normal form.
func Step(t lambda.Term) (lambda.Term, bool) {
	switch x := t.(type) {
	case lambda.Abs:
		body, ok := Step(x.Body)
		if !ok {
			return t, false
		}
		return lambda.Abs{Body: body}, true
	case lambda.App:
		if fn, ok := x.Fun.(lambda.Abs); ok {
			return lambda.Beta(fn.Body, x.Arg), true
		}
		if fn, ok := Step(x.Fun); ok {
			return lambda.App{Fun: fn, Arg: x.Arg}, true
		}
		if arg, ok := Step(x.Arg); ok {
			return lambda.App{Fun: x.Fun, Arg: arg}, true
		}
		return t, false
	default:
		return t, false
	}
}

// NormalizeTree reduces t to normal form by repeated Step. It copies the
// argument at every substitution, so it is exponentially slower than the
// Machine on terms that duplicate work, but it has no hidden state and
// serves as the reference reducer. MaxNodes bounds the term size.
func NormalizeTree(ctx context.Context, t lambda.Term, limits Limits) (lambda.Term, Stats, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var stats Stats
	limitErr := func(kind LimitKind, limit uint64, cause error) error {
		log.Debugf("tree reduction stopped: %v after %d steps", kind, stats.TotalReductions)
		return &LimitError{Kind: kind, Limit: limit, Steps: stats.TotalReductions, Err: cause}
	}
	for {
		next, ok := Step(t)
		if !ok {
			return t, stats, nil
		}
		t = next
		stats.TotalReductions++
		if limits.MaxSteps > 0 && stats.TotalReductions > limits.MaxSteps {
			return nil, stats, limitErr(LimitSteps, limits.MaxSteps, nil)
		}
		if limits.MaxNodes > 0 && uint64(lambda.Size(t)) > limits.MaxNodes {
			return nil, stats, limitErr(LimitNodes, limits.MaxNodes, nil)
		}
		if err := ctx.Err(); err != nil {
			return nil, stats, limitErr(LimitContext, 0, err)
		}
	}
}
