package exprlang

import "fmt"

// MissingVariableError reports an identifier with no binding in the
// resolver chain or variable context.
type MissingVariableError struct {
	Name string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("undefined variable %q", e.Name)
}

// RuntimeError wraps any failure raised while walking an expression tree,
// carrying the offending expression text. The evaluator never swallows
// errors; every cause is reachable through Unwrap.
type RuntimeError struct {
	Expr string
	Err  error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("evaluating %q: %v", e.Expr, e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}
