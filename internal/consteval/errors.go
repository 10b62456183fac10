package consteval

import (
	"fmt"
	"github.com/funvibe/rcheck/internal/diagnostics"
	"github.com/funvibe/rcheck/internal/token"
)

// ErrorKind classifies an evaluation failure.
type ErrorKind int

const (
	DivisionByZero ErrorKind = iota
	Overflow
	NonConstantExpression
	NegativeArraySize
	Mismatch
	InvalidOperand
	InvalidCast
	Reported // depends on a constant that already failed
)

// Error is a constant-evaluation failure anchored at a token.
type Error struct {
	Kind    ErrorKind
	Token   token.Token
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Token, e.Message)
}

// Code maps the failure to its diagnostic code.
func (e *Error) Code() diagnostics.ErrorCode {
	switch e.Kind {
	case DivisionByZero:
		return diagnostics.ErrC001
	case Overflow:
		return diagnostics.ErrC002
	case NonConstantExpression:
		return diagnostics.ErrC003
	case NegativeArraySize:
		return diagnostics.ErrC004
	case Mismatch:
		return diagnostics.ErrT001
	case InvalidCast:
		return diagnostics.ErrT002
	}
	return diagnostics.ErrT005
}

// Silent reports whether the failure was already diagnosed elsewhere.
func (e *Error) Silent() bool {
	return e.Kind == Reported
}

// Diagnostic converts the failure for the reporter.
func (e *Error) Diagnostic() *diagnostics.DiagnosticError {
	return diagnostics.NewError(e.Code(), e.Token, "%s", e.Message)
}

func newError(kind ErrorKind, tok token.Token, format string, args ...any) *Error {
	return &Error{Kind: kind, Token: tok, Message: fmt.Sprintf(format, args...)}
}
