package interpolate

import (
	"errors"
	"fmt"
)

// ErrorKind classifies engine failures.
type ErrorKind int

const (
	// KindParse is a syntactically invalid expression.
	KindParse ErrorKind = iota

	// KindSecurity is an expression rejected by the security validator.
	KindSecurity

	// KindMissingVariable is an identifier with no binding. Under the
	// default posture it degrades to an empty substitution.
	KindMissingVariable

	// KindMissingMember is a missing member under strict parameter access.
	KindMissingMember

	// KindCompilation is a failure while preparing a compiled unit.
	KindCompilation

	// KindRuntime is a failure raised while evaluating an expression.
	KindRuntime

	// KindTimeout is an evaluation that exceeded its time budget.
	KindTimeout

	// KindFormat is a format specifier that could not be applied. Under
	// the default posture it degrades to default stringification.
	KindFormat
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindParse:
		return "parse"
	case KindSecurity:
		return "security"
	case KindMissingVariable:
		return "missing-variable"
	case KindMissingMember:
		return "missing-member"
	case KindCompilation:
		return "compilation"
	case KindRuntime:
		return "runtime"
	case KindTimeout:
		return "timeout"
	case KindFormat:
		return "format"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is the typed engine error: the failure kind, the expression that
// raised it and the wrapped cause.
type Error struct {
	Kind ErrorKind
	Expr string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s error in expression %q", e.Kind, e.Expr)
	}
	return fmt.Sprintf("%s error in expression %q: %v", e.Kind, e.Expr, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of an engine error, or false for any other error.
func KindOf(err error) (ErrorKind, bool) {
	var engineErr *Error
	if errors.As(err, &engineErr) {
		return engineErr.Kind, true
	}
	return 0, false
}

func newError(kind ErrorKind, expr string, err error) *Error {
	return &Error{Kind: kind, Expr: expr, Err: err}
}
