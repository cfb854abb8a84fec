package execution

import (
	"context"
	"errors"
	"fmt"

	"github.com/vic/goblc/pkg/blc"
	"github.com/vic/goblc/pkg/church"
	"github.com/vic/goblc/pkg/reduce"
)

// Kind classifies a failed run.
type Kind int

const (
	KindMalformedEncoding Kind = iota + 1
	KindNotABoolean
	KindInvalidOutputShape
	KindDiverged
	KindMalformedTerm
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindMalformedEncoding:
		return "MalformedEncoding"
	case KindNotABoolean:
		return "NotABoolean"
	case KindInvalidOutputShape:
		return "InvalidOutputShape"
	case KindDiverged:
		return "Diverged"
	case KindMalformedTerm:
		return "MalformedTerm"
	case KindCanceled:
		return "Canceled"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is returned by every failed run. Partial holds the bytes that
// were decoded before the failure; Run never returns them otherwise.
type Error struct {
	Kind    Kind
	Partial []byte
	Err     error
}

func (e *Error) Error() string {
	if len(e.Partial) > 0 {
		return fmt.Sprintf("%v after %d bytes: %v", e.Kind, len(e.Partial), e.Err)
	}
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// classify maps an error to its Kind. Anything unrecognized, parse
// errors included, is a malformed term.
func classify(err error) Kind {
	switch {
	case errors.Is(err, blc.ErrMalformedEncoding):
		return KindMalformedEncoding
	case errors.Is(err, context.Canceled):
		return KindCanceled
	case errors.Is(err, reduce.ErrDiverged):
		return KindDiverged
	case errors.Is(err, church.ErrNotABoolean):
		return KindNotABoolean
	case errors.Is(err, church.ErrInvalidOutputShape):
		return KindInvalidOutputShape
	default:
		return KindMalformedTerm
	}
}

// wrap turns any error into an *Error, leaving existing ones alone.
func wrap(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: classify(err), Err: err}
}
