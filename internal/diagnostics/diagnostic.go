package diagnostics

import (
	"fmt"
	"github.com/funvibe/rcheck/internal/token"
	"strings"
)

// Severity represents the severity level of a diagnostic
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "unknown"
	}
}

// Phase orders diagnostics across analysis phases.
type Phase int

const (
	PhaseNames Phase = iota
	PhaseTypes
	PhaseOwnership
)

func (p Phase) String() string {
	switch p {
	case PhaseNames:
		return "names"
	case PhaseTypes:
		return "types"
	case PhaseOwnership:
		return "ownership"
	default:
		return "unknown"
	}
}

// Label points at a secondary span with a short note.
type Label struct {
	Token   token.Token
	Message string
}

// DiagnosticError is one reported problem. Token is the primary span.
type DiagnosticError struct {
	Code      ErrorCode
	Severity  Severity
	Token     token.Token
	Message   string
	Secondary []Label
	File      string
	Unit      string // compilation unit id, stamped by the pipeline
	Phase     Phase
}

// NewError creates an error diagnostic with a formatted message.
func NewError(code ErrorCode, tok token.Token, format string, args ...any) *DiagnosticError {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &DiagnosticError{
		Code:     code,
		Severity: Error,
		Token:    tok,
		Message:  msg,
		File:     tok.File,
	}
}

// NewWarning creates a warning diagnostic.
func NewWarning(code ErrorCode, tok token.Token, format string, args ...any) *DiagnosticError {
	d := NewError(code, tok, format, args...)
	d.Severity = Warning
	return d
}

// WithSecondary attaches a secondary span.
func (e *DiagnosticError) WithSecondary(tok token.Token, msg string) *DiagnosticError {
	e.Secondary = append(e.Secondary, Label{Token: tok, Message: msg})
	return e
}

// Kind returns the message kind derived from the code.
func (e *DiagnosticError) Kind() Kind {
	return e.Code.Kind()
}

func (e *DiagnosticError) Error() string {
	var sb strings.Builder
	if e.File != "" {
		sb.WriteString(e.File)
		sb.WriteString(":")
	}
	fmt.Fprintf(&sb, "%d:%d: %s %s: %s", e.Token.Line, e.Token.Column, e.Severity, e.Code, e.Message)
	for _, l := range e.Secondary {
		fmt.Fprintf(&sb, "\n  %d:%d: note: %s", l.Token.Line, l.Token.Column, l.Message)
	}
	return sb.String()
}
