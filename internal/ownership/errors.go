package ownership

import (
	"fmt"

	"github.com/funvibe/rcheck/internal/diagnostics"
	"github.com/funvibe/rcheck/internal/places"
	"github.com/funvibe/rcheck/internal/token"
)

type ErrorKind int

const (
	UseOfMoved ErrorKind = iota
	UseOfPartiallyMoved
	MoveOutOfReference
	MoveOutOfIndex
	Uninitialized
	AssignToMoved
	MoveWhileBorrowed
)

// Error describes a rejected use of a place.
type Error struct {
	Kind    ErrorKind
	Place   places.Place
	Moved   places.Place // the moved place, for use-after-move errors
	MovedAt token.Token
	LoanAt  token.Token // creation of the blocking loan
}

func (e *Error) Error() string {
	switch e.Kind {
	case UseOfMoved:
		if e.Moved.Equal(e.Place) {
			return fmt.Sprintf("use of moved value: `%s`", e.Place)
		}
		return fmt.Sprintf("use of moved value: `%s` (`%s` was moved)", e.Place, e.Moved)
	case UseOfPartiallyMoved:
		return fmt.Sprintf("use of partially moved value: `%s`", e.Place)
	case MoveOutOfReference:
		return fmt.Sprintf("cannot move out of `%s` which is behind a reference", e.Place)
	case MoveOutOfIndex:
		return fmt.Sprintf("cannot move out of `%s`, an element of an array", e.Place)
	case Uninitialized:
		return fmt.Sprintf("used binding `%s` isn't initialized", e.Place)
	case AssignToMoved:
		return fmt.Sprintf("assign to part of moved value: `%s`", e.Moved)
	case MoveWhileBorrowed:
		return fmt.Sprintf("cannot move out of `%s` because it is borrowed", e.Place)
	}
	return "ownership error"
}

// Code maps the error to its diagnostic code.
func (e *Error) Code() diagnostics.ErrorCode {
	switch e.Kind {
	case UseOfMoved, AssignToMoved:
		return diagnostics.ErrO001
	case UseOfPartiallyMoved:
		return diagnostics.ErrO002
	case MoveOutOfReference, MoveOutOfIndex:
		return diagnostics.ErrO003
	case Uninitialized:
		return diagnostics.ErrO004
	case MoveWhileBorrowed:
		return diagnostics.ErrB003
	}
	return diagnostics.ErrO001
}

// Diagnostic converts the error into a diagnostic anchored at tok.
func (e *Error) Diagnostic(tok token.Token) *diagnostics.DiagnosticError {
	d := diagnostics.NewError(e.Code(), tok, "%s", e.Error())
	switch {
	case !e.MovedAt.IsZero():
		d.WithSecondary(e.MovedAt, "value moved here")
	case !e.LoanAt.IsZero():
		d.WithSecondary(e.LoanAt, "borrow of `"+e.Place.String()+"` occurs here")
	}
	return d
}
