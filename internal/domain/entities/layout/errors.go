package layout

import (
	"errors"
	"fmt"
)

// Kind classifies a layout error so callers can react without string matching.
type Kind string

const (
	KindNotFound           Kind = "not_found"
	KindInvalidArgument    Kind = "invalid_argument"
	KindConflict           Kind = "conflict"
	KindInvariantViolation Kind = "invariant_violation"
	KindValidation         Kind = "validation"
)

// Sentinels for errors.Is. Any *Error with the same Kind matches.
var (
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrInvalidArgument    = &Error{Kind: KindInvalidArgument}
	ErrConflict           = &Error{Kind: KindConflict}
	ErrInvariantViolation = &Error{Kind: KindInvariantViolation}
	ErrValidation         = &Error{Kind: KindValidation}
)

// Error is returned by every failing Model operation.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Msg != "":
		return fmt.Sprintf("layout %s: %s", e.Op, e.Msg)
	case e.Msg != "":
		return "layout: " + e.Msg
	default:
		return "layout: " + string(e.Kind)
	}
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of the outermost *Error in err's chain, or "" when
// err did not come from this package.
func KindOf(err error) Kind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return ""
}

func notFound(op, format string, args ...any) error {
	return &Error{Kind: KindNotFound, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func invalidArgument(op, format string, args ...any) error {
	return &Error{Kind: KindInvalidArgument, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func conflict(op, format string, args ...any) error {
	return &Error{Kind: KindConflict, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func invariantViolation(op, format string, args ...any) error {
	return &Error{Kind: KindInvariantViolation, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Op: "deserialize", Msg: fmt.Sprintf(format, args...)}
}

// NewError builds an *Error for layers above the model (services, the page
// store) that report failures with the same taxonomy.
func NewError(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}
