package ownership

import (
	"testing"

	"github.com/funvibe/rcheck/internal/diagnostics"
	"github.com/funvibe/rcheck/internal/places"
	"github.com/funvibe/rcheck/internal/symbols"
	"github.com/funvibe/rcheck/internal/token"
)

func local(name string) *symbols.Symbol {
	return &symbols.Symbol{Name: name, Kind: symbols.VariableSymbol}
}

type lentOut struct{ place places.Place }

func (l lentOut) Borrowed(p places.Place) (token.Token, bool) {
	if l.place.Conflicts(p) {
		return token.At(1, 9, "&"), true
	}
	return token.Token{}, false
}

func expectKind(t *testing.T, err *Error, kind ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error kind %d, got none", kind)
	}
	if err.Kind != kind {
		t.Fatalf("expected error kind %d, got %d (%s)", kind, err.Kind, err)
	}
}

func TestMoveThenRead(t *testing.T) {
	s := local("s")
	tr := NewTracker(nil)
	tr.Declare(s, true)

	if err := tr.MoveOut(places.Of(s), token.At(2, 1, "s")); err != nil {
		t.Fatalf("first move: %v", err)
	}
	expectKind(t, tr.Read(places.Of(s)), UseOfMoved)
	expectKind(t, tr.MoveOut(places.Of(s), token.At(3, 1, "s")), UseOfMoved)

	if err := tr.Reassign(places.Of(s)); err != nil {
		t.Fatalf("reassign: %v", err)
	}
	if err := tr.Read(places.Of(s)); err != nil {
		t.Errorf("read after reassignment: %v", err)
	}
}

func TestPartialMove(t *testing.T) {
	p := local("p")
	tr := NewTracker(nil)
	tr.Declare(p, true)
	x, y := places.Of(p).Field("x"), places.Of(p).Field("y")

	if err := tr.MoveOut(x, token.At(2, 1, "p")); err != nil {
		t.Fatalf("move p.x: %v", err)
	}
	if got := tr.StateOf(places.Of(p)); got != PartiallyMoved {
		t.Errorf("state of p = %s, want partially moved", got)
	}
	if got := tr.StateOf(x); got != Moved {
		t.Errorf("state of p.x = %s, want moved", got)
	}
	if err := tr.Read(y); err != nil {
		t.Errorf("sibling read: %v", err)
	}
	if err := tr.MoveOut(y, token.At(3, 1, "p")); err != nil {
		t.Errorf("sibling move: %v", err)
	}
	expectKind(t, tr.Read(places.Of(p)), UseOfPartiallyMoved)
	expectKind(t, tr.Read(x.Field("inner")), UseOfMoved)

	if err := tr.Reassign(x); err != nil {
		t.Fatalf("reassign p.x: %v", err)
	}
	if got := tr.StateOf(x); got != Owned {
		t.Errorf("state of p.x after reassignment = %s, want owned", got)
	}
}

func TestMoveOutOfReferenceOrIndex(t *testing.T) {
	r := local("r")
	tr := NewTracker(nil)
	tr.Declare(r, true)
	expectKind(t, tr.MoveOut(places.Of(r).Deref(), token.At(1, 1, "r")), MoveOutOfReference)
	expectKind(t, tr.MoveOut(places.Of(r).Index(), token.At(1, 1, "r")), MoveOutOfIndex)
	if got := tr.StateOf(places.Of(r)); got != Owned {
		t.Errorf("rejected moves must not change state, got %s", got)
	}
}

func TestMoveWhileBorrowed(t *testing.T) {
	s := local("s")
	tr := NewTracker(lentOut{place: places.Of(s)})
	tr.Declare(s, true)
	err := tr.MoveOut(places.Of(s), token.At(2, 1, "s"))
	expectKind(t, err, MoveWhileBorrowed)
	if err.Code() != diagnostics.ErrB003 {
		t.Errorf("code = %s, want %s", err.Code(), diagnostics.ErrB003)
	}
	d := err.Diagnostic(token.At(2, 1, "s"))
	if len(d.Secondary) != 1 {
		t.Errorf("expected the loan to be labelled, got %+v", d.Secondary)
	}
}

func TestDeferredInitialization(t *testing.T) {
	x := local("x")
	tr := NewTracker(nil)
	tr.Declare(x, false)
	if tr.IsInitialized(x) {
		t.Fatalf("binding without value reported initialized")
	}
	expectKind(t, tr.Read(places.Of(x)), Uninitialized)
	expectKind(t, tr.Reassign(places.Of(x).Field("a")), Uninitialized)
	if err := tr.Reassign(places.Of(x)); err != nil {
		t.Fatalf("initializing assignment: %v", err)
	}
	if err := tr.Read(places.Of(x)); err != nil {
		t.Errorf("read after initialization: %v", err)
	}
}

func TestAssignIntoMovedAggregate(t *testing.T) {
	p := local("p")
	tr := NewTracker(nil)
	tr.Declare(p, true)
	_ = tr.MoveOut(places.Of(p), token.At(1, 1, "p"))
	expectKind(t, tr.Reassign(places.Of(p).Field("x")), AssignToMoved)
}

func TestCloneAndMerge(t *testing.T) {
	a, b := local("a"), local("b")
	tr := NewTracker(nil)
	tr.Declare(a, true)
	tr.Declare(b, true)

	branch := tr.Clone()
	if err := branch.MoveOut(places.Of(a), token.At(2, 1, "a")); err != nil {
		t.Fatalf("move in branch: %v", err)
	}
	if got := tr.StateOf(places.Of(a)); got != Owned {
		t.Fatalf("clone shares state with the original")
	}

	other := tr.Clone()
	_ = other.MoveOut(places.Of(b).Field("f"), token.At(3, 1, "b"))

	branch.Merge(other)
	if got := branch.StateOf(places.Of(a)); got != Moved {
		t.Errorf("a after merge = %s, want moved", got)
	}
	if got := branch.StateOf(places.Of(b)); got != PartiallyMoved {
		t.Errorf("b after merge = %s, want partially moved", got)
	}
}

func TestClearRoot(t *testing.T) {
	s := local("s")
	tr := NewTracker(nil)
	tr.Declare(s, true)
	_ = tr.MoveOut(places.Of(s), token.At(1, 1, "s"))
	tr.ClearRoot(s)
	if got := tr.StateOf(places.Of(s)); got != Owned {
		t.Errorf("state after scope exit = %s, want owned", got)
	}
}

func TestErrorMessages(t *testing.T) {
	p := local("p")
	tests := []struct {
		err  *Error
		code diagnostics.ErrorCode
		want string
	}{
		{&Error{Kind: UseOfMoved, Place: places.Of(p), Moved: places.Of(p)}, diagnostics.ErrO001, "use of moved value: `p`"},
		{&Error{Kind: UseOfPartiallyMoved, Place: places.Of(p)}, diagnostics.ErrO002, "use of partially moved value: `p`"},
		{&Error{Kind: MoveOutOfIndex, Place: places.Of(p).Index()}, diagnostics.ErrO003, "cannot move out of `p[..]`, an element of an array"},
		{&Error{Kind: Uninitialized, Place: places.Of(p)}, diagnostics.ErrO004, "used binding `p` isn't initialized"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
		if got := tt.err.Code(); got != tt.code {
			t.Errorf("Code() = %s, want %s", got, tt.code)
		}
	}
}
