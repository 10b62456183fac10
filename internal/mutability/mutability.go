package mutability

import (
	"fmt"

	"github.com/funvibe/rcheck/internal/diagnostics"
	"github.com/funvibe/rcheck/internal/places"
	"github.com/funvibe/rcheck/internal/symbols"
	"github.com/funvibe/rcheck/internal/token"
	"github.com/funvibe/rcheck/internal/typesystem"
)

// Bindings reports the initialization state of locals.
// *ownership.Tracker implements it.
type Bindings interface {
	IsInitialized(sym *symbols.Symbol) bool
}

type ErrorKind int

const (
	ImmutableBinding ErrorKind = iota
	AssignTwice
	BorrowImmutable
	BehindSharedRef
)

// Error is a rejected write or mutable borrow.
type Error struct {
	Kind   ErrorKind
	Place  places.Place
	Borrow bool         // the access is a `&mut` borrow, not an assignment
	Ref    places.Place // the shared reference traversed, for BehindSharedRef
}

func (e *Error) Error() string {
	root := e.Place.Root.Name
	switch e.Kind {
	case AssignTwice:
		if e.Place.Root.Kind == symbols.ParameterSymbol {
			return fmt.Sprintf("cannot assign to immutable argument `%s`", root)
		}
		return fmt.Sprintf("cannot assign twice to immutable variable `%s`", root)
	case ImmutableBinding:
		return fmt.Sprintf("cannot assign to `%s`, as `%s` is not declared as mutable", e.Place, root)
	case BorrowImmutable:
		return fmt.Sprintf("cannot borrow `%s` as mutable, as `%s` is not declared as mutable", e.Place, root)
	case BehindSharedRef:
		if e.Borrow {
			return fmt.Sprintf("cannot borrow `%s` as mutable, as it is behind a `&` reference", e.Place)
		}
		return fmt.Sprintf("cannot assign to `%s`, which is behind a `&` reference", e.Place)
	}
	return "mutability error"
}

// Code maps the error to its diagnostic code.
func (e *Error) Code() diagnostics.ErrorCode {
	switch e.Kind {
	case BorrowImmutable:
		return diagnostics.ErrM002
	case BehindSharedRef:
		return diagnostics.ErrM003
	}
	return diagnostics.ErrM001
}

// Diagnostic converts the error into a diagnostic anchored at tok.
func (e *Error) Diagnostic(tok token.Token) *diagnostics.DiagnosticError {
	d := diagnostics.NewError(e.Code(), tok, "%s", e.Error())
	if e.Kind != BehindSharedRef && e.Place.Root.Node != nil {
		d.WithSecondary(e.Place.Root.Node.GetToken(), "help: consider making this binding mutable")
	}
	return d
}

// CheckWrite decides whether p may be assigned. Through a dereference the
// write needs every traversed reference to be `&mut`; otherwise the root
// binding must be `mut`, except for the first assignment of a binding
// declared without a value.
func CheckWrite(p places.Place, b Bindings) *Error {
	if err := throughRefs(p); err != nil {
		return err
	}
	if p.HasDeref() || p.Root.Mutable {
		return nil
	}
	if !b.IsInitialized(p.Root) {
		if p.IsRoot() {
			return nil
		}
		return &Error{Kind: ImmutableBinding, Place: p}
	}
	if p.IsRoot() {
		return &Error{Kind: AssignTwice, Place: p}
	}
	return &Error{Kind: ImmutableBinding, Place: p}
}

// CheckBorrowMut decides whether `&mut p` may be created.
func CheckBorrowMut(p places.Place) *Error {
	if err := throughRefs(p); err != nil {
		err.Borrow = true
		return err
	}
	if p.HasDeref() || p.Root.Mutable {
		return nil
	}
	return &Error{Kind: BorrowImmutable, Place: p, Borrow: true}
}

// throughRefs checks every dereference along p goes through `&mut`.
func throughRefs(p places.Place) *Error {
	for i, s := range p.Path {
		if s.Kind != places.DerefSegment {
			continue
		}
		ref := places.Place{Root: p.Root, Path: p.Path[:i]}
		r, ok := ref.Type().(typesystem.TRef)
		if ok && !r.Mutable {
			return &Error{Kind: BehindSharedRef, Place: p, Ref: ref}
		}
	}
	return nil
}
