package reduce

import (
	"errors"
	"fmt"
)

var (
	// ErrDiverged is matched when reduction exceeds its resource bounds or
	// re-enters a term it is already evaluating.
	ErrDiverged = errors.New("reduction diverged")
	// ErrMalformedTerm is matched when reduction meets a structure that
	// cannot occur in a closed program, such as a free variable.
	ErrMalformedTerm = errors.New("malformed term")
)

// Limits bounds a reduction. Zero means unlimited.
type Limits struct {
	// MaxSteps caps the number of beta reductions.
	MaxSteps uint64
	// MaxNodes caps the arena (thunks plus environment cells) for the
	// graph machine, and the term size for tree reduction.
	MaxNodes uint64
}

// DefaultLimits are generous enough for the classic BLC programs while
// still stopping a runaway term within seconds. A thunk takes about 100
// bytes, so the node bound keeps the arena under 1 GiB.
var DefaultLimits = Limits{
	MaxSteps: 100_000_000,
	MaxNodes: 8_000_000,
}

type LimitKind int

const (
	LimitSteps LimitKind = iota
	LimitNodes
	LimitBlackHole
	LimitContext
)

func (k LimitKind) String() string {
	switch k {
	case LimitSteps:
		return "step limit"
	case LimitNodes:
		return "size limit"
	case LimitBlackHole:
		return "black hole"
	case LimitContext:
		return "cancelled"
	default:
		return "unknown limit"
	}
}

// LimitError reports why a reduction was abandoned. It matches
// ErrDiverged; for LimitContext it also unwraps to the context error.
type LimitError struct {
	Kind  LimitKind
	Limit uint64
	Steps uint64
	Err   error
}

func (e *LimitError) Error() string {
	switch e.Kind {
	case LimitSteps, LimitNodes:
		return fmt.Sprintf("%v: %v of %d exceeded after %d steps", ErrDiverged, e.Kind, e.Limit, e.Steps)
	case LimitContext:
		return fmt.Sprintf("%v: %v after %d steps: %v", ErrDiverged, e.Kind, e.Steps, e.Err)
	default:
		return fmt.Sprintf("%v: %v after %d steps", ErrDiverged, e.Kind, e.Steps)
	}
}

func (e *LimitError) Is(target error) bool { return target == ErrDiverged }

func (e *LimitError) Unwrap() error { return e.Err }

// State is the lifecycle of a reduction session.
type State int

const (
	StateReducing State = iota
	StateNormalized
	StateDiverged
	StateMalformed
)

func (s State) String() string {
	switch s {
	case StateReducing:
		return "Reducing"
	case StateNormalized:
		return "Normalized"
	case StateDiverged:
		return "Diverged"
	case StateMalformed:
		return "Malformed"
	default:
		return "Unknown"
	}
}
