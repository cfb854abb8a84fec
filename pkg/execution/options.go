package execution

import (
	"fmt"
	"time"

	"github.com/vic/goblc/pkg/reduce"
)

// Strategy selects the reducer.
type Strategy int

const (
	// StrategyGraph is the lazy graph machine with sharing. Output is
	// produced incrementally, so unbounded output streams.
	StrategyGraph Strategy = iota
	// StrategyTree normalizes the whole application by substitution
	// before decoding anything.
	StrategyTree
)

func (s Strategy) String() string {
	switch s {
	case StrategyGraph:
		return "graph"
	case StrategyTree:
		return "tree"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "graph", "":
		return StrategyGraph, nil
	case "tree":
		return StrategyTree, nil
	}
	return 0, fmt.Errorf("unknown strategy %q (want graph or tree)", s)
}

// Mode selects how the normal form is turned into output.
type Mode int

const (
	// ModeBytes requires a list of bytes.
	ModeBytes Mode = iota
	// ModeAuto decodes bytes, writes boolean elements as '0' and '1',
	// and renders whatever is not a list as "(term)".
	ModeAuto
	// ModeTerm renders the normal form.
	ModeTerm
)

func (m Mode) String() string {
	switch m {
	case ModeBytes:
		return "bytes"
	case ModeAuto:
		return "auto"
	case ModeTerm:
		return "term"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

func ParseMode(s string) (Mode, error) {
	switch s {
	case "bytes", "":
		return ModeBytes, nil
	case "auto":
		return ModeAuto, nil
	case "term":
		return ModeTerm, nil
	}
	return 0, fmt.Errorf("unknown output mode %q (want bytes, auto or term)", s)
}

type Options struct {
	Limits   reduce.Limits
	Strategy Strategy
	Mode     Mode
	// Timeout bounds the whole run; zero means no deadline.
	Timeout time.Duration
	// AllowFree runs open programs, treating free variables as opaque.
	AllowFree bool
	// TraceCapacity enables the machine trace when positive.
	TraceCapacity int
}

func DefaultOptions() Options {
	return Options{Limits: reduce.DefaultLimits}
}

type Option func(*Options)

func WithOptions(o Options) Option {
	return func(dst *Options) { *dst = o }
}

func WithLimits(l reduce.Limits) Option {
	return func(o *Options) { o.Limits = l }
}

func WithStrategy(s Strategy) Option {
	return func(o *Options) { o.Strategy = s }
}

func WithMode(m Mode) Option {
	return func(o *Options) { o.Mode = m }
}

func WithTimeout(d time.Duration) Option {
	return func(o *Options) { o.Timeout = d }
}

func WithAllowFree(allow bool) Option {
	return func(o *Options) { o.AllowFree = allow }
}

func WithTrace(capacity int) Option {
	return func(o *Options) { o.TraceCapacity = capacity }
}
