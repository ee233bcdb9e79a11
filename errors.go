package scenario

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDeclaration is the sentinel matched by every declaration-time
// failure: empty option mappings, blank keys, names that canonicalize to the
// empty string, unknown fixtures, malformed reserved options.
var ErrInvalidDeclaration = errors.New("scenario: invalid declaration")

// DeclarationError carries the context of a rejected declaration. It matches
// ErrInvalidDeclaration through errors.Is.
type DeclarationError struct {
	Reason      string
	Description string
	Key         string
	Err         error
}

func (e *DeclarationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	var sb strings.Builder
	sb.WriteString("scenario: invalid declaration: ")
	sb.WriteString(e.Reason)
	if e.Description != "" {
		fmt.Fprintf(&sb, " (description %q)", e.Description)
	}
	if e.Key != "" {
		fmt.Fprintf(&sb, " (key %q)", e.Key)
	}
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	return sb.String()
}

func (e *DeclarationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports sentinel membership so callers can test with
// errors.Is(err, ErrInvalidDeclaration) without knowing the concrete type.
func (e *DeclarationError) Is(target error) bool {
	return target == ErrInvalidDeclaration
}

func invalidDeclaration(reason string) *DeclarationError {
	return &DeclarationError{Reason: reason}
}

// GuardError captures evaluator metadata alongside the originating error for
// guard expressions that failed to compile or evaluate.
type GuardError struct {
	Engine string
	Expr   string
	Err    error
}

func (e *GuardError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("scenario: %s guard %s: %v", e.Engine, describeGuard(e.Expr), e.Err)
}

func (e *GuardError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeGuard(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func wrapGuardError(engine, expr string, err error) error {
	if err == nil {
		return nil
	}

	var guardErr *GuardError
	if errors.As(err, &guardErr) {
		if guardErr.Engine == "" {
			guardErr.Engine = engine
		}
		if guardErr.Expr == "" {
			guardErr.Expr = expr
		}
		return guardErr
	}

	return &GuardError{
		Engine: engine,
		Expr:   expr,
		Err:    err,
	}
}
