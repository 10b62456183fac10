package borrowck

import (
	"testing"

	"github.com/funvibe/rcheck/internal/diagnostics"
	"github.com/funvibe/rcheck/internal/places"
	"github.com/funvibe/rcheck/internal/symbols"
	"github.com/funvibe/rcheck/internal/token"
)

func local(name string) *symbols.Symbol {
	return &symbols.Symbol{Name: name, Kind: symbols.VariableSymbol, Mutable: true}
}

var at = token.At(1, 1, "&")

func TestPrefixRelatedBorrowsConflict(t *testing.T) {
	p := local("p")
	whole := places.Of(p)
	field := whole.Field("x")
	nested := field.Field("a")

	tests := []struct {
		name     string
		held     places.Place
		heldKind Kind
		want     places.Place
		wantKind Kind
		conflict bool
	}{
		{"exclusive whole, shared field", whole, Exclusive, field, Shared, true},
		{"exclusive field, shared whole", field, Exclusive, whole, Shared, true},
		{"shared whole, exclusive nested", whole, Shared, nested, Exclusive, true},
		{"shared whole, shared field", whole, Shared, field, Shared, false},
		{"exclusive sibling", whole.Field("y"), Exclusive, field, Exclusive, false},
		{"exclusive element, shared element", whole.Index(), Exclusive, whole.Index(), Shared, true},
		{"exclusive twice", field, Exclusive, field, Exclusive, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker()
			tr.Record(tt.held, tt.heldKind, at)
			var conflict *Conflict
			if tt.wantKind == Exclusive {
				_, conflict = tr.BorrowExclusive(tt.want, at)
			} else {
				_, conflict = tr.BorrowShared(tt.want, at)
			}
			if (conflict != nil) != tt.conflict {
				t.Fatalf("conflict = %v, want %v", conflict, tt.conflict)
			}
			if conflict != nil && conflict.Code() != diagnostics.ErrB001 {
				t.Errorf("code = %s, want %s", conflict.Code(), diagnostics.ErrB001)
			}
		})
	}
}

func TestStateOf(t *testing.T) {
	x := places.Of(local("x"))
	tr := NewTracker()
	if !tr.StateOf(x).IsFree() {
		t.Fatalf("fresh place is not free")
	}
	a, _ := tr.BorrowShared(x, at)
	tr.BorrowShared(x, at)
	if got := tr.StateOf(x); got.Shared != 2 || got.Exclusive {
		t.Errorf("state = %+v, want two shared loans", got)
	}
	tr.Release(a)
	if got := tr.StateOf(x); got.Shared != 1 {
		t.Errorf("state after release = %+v, want one shared loan", got)
	}
}

func TestHoldersKeepLoansAlive(t *testing.T) {
	x := places.Of(local("x"))
	r, r2 := local("r"), local("r2")
	tr := NewTracker()
	id, _ := tr.BorrowExclusive(x, at)
	tr.Hold(id, r)
	tr.Share(r, r2)

	tr.ReleaseHolder(r)
	if tr.CheckRead(x) == nil {
		t.Fatalf("loan ended while a holder is still live")
	}
	tr.ReleaseHolder(r2)
	if c := tr.CheckRead(x); c != nil {
		t.Errorf("loan survived its last holder: %s", c)
	}
}

func TestTemporariesSurviveReleaseHolder(t *testing.T) {
	x := places.Of(local("x"))
	tr := NewTracker()
	tr.BorrowShared(x, at)
	tr.ReleaseHolder(local("other"))
	if tr.Len() != 1 {
		t.Errorf("temporary loan removed by unrelated holder release")
	}
}

func TestAccessChecks(t *testing.T) {
	x := places.Of(local("x"))
	tr := NewTracker()
	tr.BorrowShared(x, at)
	if c := tr.CheckRead(x); c != nil {
		t.Errorf("read during shared borrow: %s", c)
	}
	c := tr.CheckWrite(x.Field("f"))
	if c == nil || c.Code() != diagnostics.ErrB003 {
		t.Fatalf("write during shared borrow: got %v, want B003", c)
	}
	if want := "cannot assign to `x.f` because it is borrowed"; c.Error() != want {
		t.Errorf("message = %q, want %q", c.Error(), want)
	}

	tr = NewTracker()
	tr.BorrowExclusive(x, at)
	c = tr.CheckRead(x)
	if c == nil || c.Code() != diagnostics.ErrB002 {
		t.Fatalf("read during exclusive borrow: got %v, want B002", c)
	}
	if _, ok := tr.Borrowed(x.Field("f")); !ok {
		t.Errorf("borrow view misses a loan on an ancestor")
	}
}

func TestCloneAndMerge(t *testing.T) {
	x, y := places.Of(local("x")), places.Of(local("y"))
	tr := NewTracker()
	a := tr.Clone()
	b := tr.Clone()
	idA, _ := a.BorrowShared(x, at)
	idB, _ := b.BorrowExclusive(y, at)
	if idA == idB {
		t.Fatalf("branches handed out the same loan id")
	}
	if tr.Len() != 0 {
		t.Fatalf("clone shares loans with the original")
	}
	a.Merge(b)
	if a.Len() != 2 {
		t.Errorf("merged loans = %d, want 2", a.Len())
	}
}

func TestConflictMessages(t *testing.T) {
	x := places.Of(local("x"))
	tr := NewTracker()
	tr.BorrowExclusive(x, at)
	_, twice := tr.BorrowExclusive(x, at)
	if want := "cannot borrow `x` as mutable more than once at a time"; twice.Error() != want {
		t.Errorf("message = %q, want %q", twice.Error(), want)
	}
	_, shared := tr.BorrowShared(x, at)
	if want := "cannot borrow `x` as immutable because it is also borrowed as mutable"; shared.Error() != want {
		t.Errorf("message = %q, want %q", shared.Error(), want)
	}
	d := shared.Diagnostic(token.At(2, 3, "&"))
	if len(d.Secondary) != 1 || d.Secondary[0].Token != at {
		t.Errorf("diagnostic should point at the existing loan, got %+v", d.Secondary)
	}
}
