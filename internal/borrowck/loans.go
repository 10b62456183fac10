package borrowck

import (
	"fmt"

	"github.com/funvibe/rcheck/internal/diagnostics"
	"github.com/funvibe/rcheck/internal/places"
	"github.com/funvibe/rcheck/internal/symbols"
	"github.com/funvibe/rcheck/internal/token"
)

type Kind int

const (
	Shared Kind = iota
	Exclusive
)

func (k Kind) String() string {
	if k == Exclusive {
		return "mutable"
	}
	return "immutable"
}

// LoanID names a loan within one function.
type LoanID int

// Loan is a live borrow of a place. A loan without holders is a temporary
// and is released at the end of the statement that created it.
type Loan struct {
	ID      LoanID
	Place   places.Place
	Kind    Kind
	At      token.Token
	holders []*symbols.Symbol
}

// BorrowState summarizes the loans on one place.
type BorrowState struct {
	Exclusive bool
	Shared    int
}

func (s BorrowState) IsFree() bool {
	return !s.Exclusive && s.Shared == 0
}

type Access int

const (
	AccessBorrow Access = iota
	AccessRead
	AccessWrite
	AccessMove
)

// Conflict reports an access blocked by an existing loan.
type Conflict struct {
	Place    places.Place
	Access   Access
	Kind     Kind // requested borrow kind for AccessBorrow
	Existing Loan
}

func (c *Conflict) Error() string {
	switch c.Access {
	case AccessRead:
		return fmt.Sprintf("cannot use `%s` because it was mutably borrowed", c.Place)
	case AccessWrite:
		return fmt.Sprintf("cannot assign to `%s` because it is borrowed", c.Place)
	case AccessMove:
		return fmt.Sprintf("cannot move out of `%s` because it is borrowed", c.Place)
	}
	if c.Kind == Exclusive && c.Existing.Kind == Exclusive {
		return fmt.Sprintf("cannot borrow `%s` as mutable more than once at a time", c.Place)
	}
	return fmt.Sprintf("cannot borrow `%s` as %s because it is also borrowed as %s", c.Place, c.Kind, c.Existing.Kind)
}

// Code maps the conflict to its diagnostic code.
func (c *Conflict) Code() diagnostics.ErrorCode {
	switch c.Access {
	case AccessRead:
		return diagnostics.ErrB002
	case AccessWrite, AccessMove:
		return diagnostics.ErrB003
	}
	return diagnostics.ErrB001
}

// Diagnostic converts the conflict into a diagnostic anchored at tok.
func (c *Conflict) Diagnostic(tok token.Token) *diagnostics.DiagnosticError {
	return diagnostics.NewError(c.Code(), tok, "%s", c.Error()).
		WithSecondary(c.Existing.At, fmt.Sprintf("%s borrow of `%s` occurs here", c.Existing.Kind, c.Existing.Place))
}

// Tracker holds the live loans of one function.
type Tracker struct {
	loans []*Loan
	next  *LoanID // shared by clones so branch loans never collide
}

func NewTracker() *Tracker {
	return &Tracker{next: new(LoanID)}
}

func (t *Tracker) conflicting(p places.Place, exclusiveOnly bool) (*Loan, bool) {
	for i := len(t.loans) - 1; i >= 0; i-- {
		l := t.loans[i]
		if exclusiveOnly && l.Kind != Exclusive {
			continue
		}
		if l.Place.Conflicts(p) {
			return l, true
		}
	}
	return nil, false
}

// BorrowShared lends p immutably. It conflicts with exclusive loans on
// prefix-related places.
func (t *Tracker) BorrowShared(p places.Place, at token.Token) (LoanID, *Conflict) {
	if l, ok := t.conflicting(p, true); ok {
		return 0, &Conflict{Place: p, Access: AccessBorrow, Kind: Shared, Existing: *l}
	}
	return t.Record(p, Shared, at), nil
}

// BorrowExclusive lends p mutably. It conflicts with any loan on a
// prefix-related place.
func (t *Tracker) BorrowExclusive(p places.Place, at token.Token) (LoanID, *Conflict) {
	if l, ok := t.conflicting(p, false); ok {
		return 0, &Conflict{Place: p, Access: AccessBorrow, Kind: Exclusive, Existing: *l}
	}
	return t.Record(p, Exclusive, at), nil
}

// Record adds a loan without checking for conflicts.
func (t *Tracker) Record(p places.Place, k Kind, at token.Token) LoanID {
	*t.next++
	id := *t.next
	t.loans = append(t.loans, &Loan{ID: id, Place: p, Kind: k, At: at})
	return id
}

// CheckRead rejects reading p while it is mutably borrowed.
func (t *Tracker) CheckRead(p places.Place) *Conflict {
	if l, ok := t.conflicting(p, true); ok {
		return &Conflict{Place: p, Access: AccessRead, Existing: *l}
	}
	return nil
}

// CheckWrite rejects assigning p while any loan overlaps it.
func (t *Tracker) CheckWrite(p places.Place) *Conflict {
	if l, ok := t.conflicting(p, false); ok {
		return &Conflict{Place: p, Access: AccessWrite, Existing: *l}
	}
	return nil
}

// Borrowed implements ownership.BorrowView.
func (t *Tracker) Borrowed(p places.Place) (token.Token, bool) {
	if l, ok := t.conflicting(p, false); ok {
		return l.At, true
	}
	return token.Token{}, false
}

// StateOf summarizes the loans on exactly p.
func (t *Tracker) StateOf(p places.Place) BorrowState {
	var s BorrowState
	for _, l := range t.loans {
		if !l.Place.Equal(p) {
			continue
		}
		if l.Kind == Exclusive {
			s.Exclusive = true
		} else {
			s.Shared++
		}
	}
	return s
}

// Loan returns the live loan with the given id.
func (t *Tracker) Loan(id LoanID) (*Loan, bool) {
	for _, l := range t.loans {
		if l.ID == id {
			return l, true
		}
	}
	return nil, false
}

// Release ends a loan.
func (t *Tracker) Release(id LoanID) {
	for i, l := range t.loans {
		if l.ID == id {
			t.loans = append(t.loans[:i], t.loans[i+1:]...)
			return
		}
	}
}

// Hold makes sym a holder of the loan; the loan lives until every holder's
// scope has ended.
func (t *Tracker) Hold(id LoanID, sym *symbols.Symbol) {
	l, ok := t.Loan(id)
	if !ok {
		return
	}
	for _, h := range l.holders {
		if h == sym {
			return
		}
	}
	l.holders = append(l.holders, sym)
}

// Share makes to a holder of every loan held by from, for a reference
// copied or moved into another binding.
func (t *Tracker) Share(from, to *symbols.Symbol) {
	for _, l := range t.loans {
		for _, h := range l.holders {
			if h == from {
				t.Hold(l.ID, to)
				break
			}
		}
	}
}

// ReleaseHolder drops sym from every loan it holds and ends the loans left
// without holders.
func (t *Tracker) ReleaseHolder(sym *symbols.Symbol) {
	kept := t.loans[:0]
	for _, l := range t.loans {
		held := len(l.holders) > 0
		hs := l.holders[:0]
		for _, h := range l.holders {
			if h != sym {
				hs = append(hs, h)
			}
		}
		l.holders = hs
		if held && len(hs) == 0 {
			continue
		}
		kept = append(kept, l)
	}
	t.loans = kept
}

// Len returns the number of live loans.
func (t *Tracker) Len() int {
	return len(t.loans)
}

// Clone copies the loans for analysing one branch.
func (t *Tracker) Clone() *Tracker {
	c := &Tracker{next: t.next, loans: make([]*Loan, len(t.loans))}
	for i, l := range t.loans {
		cp := *l
		cp.holders = append([]*symbols.Symbol(nil), l.holders...)
		c.loans[i] = &cp
	}
	return c
}

// Merge keeps the loans live in either branch.
func (t *Tracker) Merge(o *Tracker) {
	for _, l := range o.loans {
		if mine, ok := t.Loan(l.ID); ok {
			for _, h := range l.holders {
				t.Hold(mine.ID, h)
			}
			continue
		}
		cp := *l
		cp.holders = append([]*symbols.Symbol(nil), l.holders...)
		t.loans = append(t.loans, &cp)
	}
}
