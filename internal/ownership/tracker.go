package ownership

import (
	"github.com/funvibe/rcheck/internal/places"
	"github.com/funvibe/rcheck/internal/symbols"
	"github.com/funvibe/rcheck/internal/token"
)

// State is the move state of a place.
type State int

const (
	Owned State = iota
	Moved
	PartiallyMoved
)

func (s State) String() string {
	switch s {
	case Owned:
		return "owned"
	case Moved:
		return "moved"
	case PartiallyMoved:
		return "partially moved"
	}
	return "unknown"
}

// BorrowView lets the tracker ask whether a place is currently lent out.
type BorrowView interface {
	// Borrowed returns the creation site of a live loan conflicting with p.
	Borrowed(p places.Place) (token.Token, bool)
}

type move struct {
	place places.Place
	at    token.Token
}

// Tracker holds the move state of every place of one function. Places with
// no recorded move are Owned; a place is PartiallyMoved when some strict
// descendant is moved.
type Tracker struct {
	moves  map[*symbols.Symbol][]move
	uninit map[*symbols.Symbol]bool
	view   BorrowView
}

// NewTracker creates an empty tracker. view may be nil.
func NewTracker(view BorrowView) *Tracker {
	return &Tracker{
		moves:  make(map[*symbols.Symbol][]move),
		uninit: make(map[*symbols.Symbol]bool),
		view:   view,
	}
}

// SetView replaces the borrow view consulted by MoveOut.
func (t *Tracker) SetView(view BorrowView) {
	t.view = view
}

// Declare starts tracking a binding. A binding declared without a value
// must be assigned before it is read.
func (t *Tracker) Declare(sym *symbols.Symbol, initialized bool) {
	delete(t.moves, sym)
	if initialized {
		delete(t.uninit, sym)
	} else {
		t.uninit[sym] = true
	}
}

// IsInitialized reports whether sym has been given a value.
func (t *Tracker) IsInitialized(sym *symbols.Symbol) bool {
	return !t.uninit[sym]
}

// StateOf returns the move state of p.
func (t *Tracker) StateOf(p places.Place) State {
	if _, ok := t.movedPrefix(p); ok {
		return Moved
	}
	if _, ok := t.movedChild(p); ok {
		return PartiallyMoved
	}
	return Owned
}

func (t *Tracker) movedPrefix(p places.Place) (move, bool) {
	for _, m := range t.moves[p.Root] {
		if m.place.IsPrefixOf(p) {
			return m, true
		}
	}
	return move{}, false
}

func (t *Tracker) movedChild(p places.Place) (move, bool) {
	for _, m := range t.moves[p.Root] {
		if p.IsStrictPrefixOf(m.place) {
			return m, true
		}
	}
	return move{}, false
}

// Read checks that p holds a value: it is initialized and neither p, an
// ancestor nor a descendant has been moved.
func (t *Tracker) Read(p places.Place) *Error {
	if t.uninit[p.Root] {
		return &Error{Kind: Uninitialized, Place: places.Of(p.Root)}
	}
	if m, ok := t.movedPrefix(p); ok {
		return &Error{Kind: UseOfMoved, Place: p, Moved: m.place, MovedAt: m.at}
	}
	if m, ok := t.movedChild(p); ok {
		return &Error{Kind: UseOfPartiallyMoved, Place: p, Moved: m.place, MovedAt: m.at}
	}
	return nil
}

// MoveOut transfers the value out of p. Siblings of p stay usable;
// ancestors become partially moved.
func (t *Tracker) MoveOut(p places.Place, at token.Token) *Error {
	if p.HasDeref() {
		return &Error{Kind: MoveOutOfReference, Place: p}
	}
	if p.HasIndex() {
		return &Error{Kind: MoveOutOfIndex, Place: p}
	}
	if err := t.Read(p); err != nil {
		return err
	}
	if t.view != nil {
		if loan, ok := t.view.Borrowed(p); ok {
			return &Error{Kind: MoveWhileBorrowed, Place: p, LoanAt: loan}
		}
	}
	t.moves[p.Root] = append(t.moves[p.Root], move{place: p, at: at})
	return nil
}

// Reassign gives p a fresh value: p and everything below it become Owned.
// Assigning into a field of a moved aggregate is an error.
func (t *Tracker) Reassign(p places.Place) *Error {
	if !p.IsRoot() {
		if t.uninit[p.Root] {
			return &Error{Kind: Uninitialized, Place: places.Of(p.Root)}
		}
		if parent, _ := p.Parent(); t.StateOf(parent) == Moved {
			m, _ := t.movedPrefix(parent)
			return &Error{Kind: AssignToMoved, Place: p, Moved: m.place, MovedAt: m.at}
		}
	}
	delete(t.uninit, p.Root)
	kept := t.moves[p.Root][:0]
	for _, m := range t.moves[p.Root] {
		if !p.IsPrefixOf(m.place) {
			kept = append(kept, m)
		}
	}
	if len(kept) == 0 {
		delete(t.moves, p.Root)
	} else {
		t.moves[p.Root] = kept
	}
	return nil
}

// ClearRoot forgets every place rooted at sym, on scope exit.
func (t *Tracker) ClearRoot(sym *symbols.Symbol) {
	delete(t.moves, sym)
	delete(t.uninit, sym)
}

// Clone copies the state for analysing one branch.
func (t *Tracker) Clone() *Tracker {
	c := NewTracker(t.view)
	for sym, ms := range t.moves {
		c.moves[sym] = append([]move(nil), ms...)
	}
	for sym := range t.uninit {
		c.uninit[sym] = true
	}
	return c
}

// Merge joins the state of another branch into t: a place moved in either
// branch is moved afterwards, a binding uninitialized in either stays so.
func (t *Tracker) Merge(o *Tracker) {
	for sym, ms := range o.moves {
		for _, m := range ms {
			if _, ok := t.movedPrefix(m.place); !ok {
				t.moves[sym] = append(t.moves[sym], m)
			}
		}
	}
	for sym := range o.uninit {
		t.uninit[sym] = true
	}
}
