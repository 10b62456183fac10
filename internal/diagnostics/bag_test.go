package diagnostics

import (
	"github.com/funvibe/rcheck/internal/token"
	"strings"
	"sync"
	"testing"
)

func TestBagOrdersByPhaseThenPosition(t *testing.T) {
	bag := NewBag(0)
	bag.SetPhase(PhaseOwnership)
	bag.Errorf(ErrB001, token.At(1, 5, "x"), "conflict")
	bag.SetPhase(PhaseTypes)
	bag.Errorf(ErrT001, token.At(9, 1, "y"), "mismatch")
	bag.Errorf(ErrT002, token.At(2, 3, "z"), "cast")

	got := bag.Codes()
	want := []ErrorCode{ErrT002, ErrT001, ErrB001}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("codes[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestBagDeduplicates(t *testing.T) {
	bag := NewBag(0)
	tok := token.At(3, 4, "a")
	bag.Errorf(ErrM001, tok, "first")
	bag.Errorf(ErrM001, tok, "second")
	bag.Errorf(ErrM002, tok, "other code")

	diags := bag.Diagnostics()
	if len(diags) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", len(diags))
	}
	if diags[0].Message != "first" {
		t.Errorf("kept %q, want the first report", diags[0].Message)
	}
	if bag.ErrorCount() != 2 {
		t.Errorf("ErrorCount() = %d, want 2", bag.ErrorCount())
	}
}

func TestBagLimitAndCounts(t *testing.T) {
	bag := NewBag(1)
	bag.Errorf(ErrN001, token.At(1, 1, "a"), "a")
	bag.Add(NewWarning(ErrN001, token.At(2, 1, "b"), "b"))
	if !bag.HasErrors() {
		t.Errorf("HasErrors() = false")
	}
	if len(bag.Diagnostics()) != 1 || bag.Dropped() != 1 {
		t.Errorf("kept %d, dropped %d", len(bag.Diagnostics()), bag.Dropped())
	}
	if bag.WarningCount() != 1 {
		t.Errorf("WarningCount() = %d, want 1", bag.WarningCount())
	}
}

func TestBagStampsUnit(t *testing.T) {
	bag := NewBag(0)
	bag.SetUnit("unit-1")
	d := bag.Errorf(ErrO001, token.At(1, 1, "v"), "moved")
	if d.Unit != "unit-1" {
		t.Errorf("Unit = %q", d.Unit)
	}
}

func TestBagConcurrentAdd(t *testing.T) {
	bag := NewBag(0)
	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(line int) {
			defer wg.Done()
			bag.Errorf(ErrT001, token.At(line, 1, "x"), "m")
		}(i)
	}
	wg.Wait()
	if bag.ErrorCount() != 50 {
		t.Errorf("ErrorCount() = %d, want 50", bag.ErrorCount())
	}
}

func TestCodeKinds(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want Kind
	}{
		{ErrN002, NameError},
		{ErrT001, TypeMismatch},
		{ErrT008, AmbiguousTypeUnresolved},
		{ErrC004, ConstEvalError},
		{ErrO003, MoveError},
		{ErrB001, BorrowConflict},
		{ErrM003, MutabilityError},
		{ErrS001, StructuralError},
	}
	for _, tt := range tests {
		if got := tt.code.Kind(); got != tt.want {
			t.Errorf("%s.Kind() = %s, want %s", tt.code, got, tt.want)
		}
	}
	if ErrC001.Subkind() != "DivisionByZero" || ErrC002.Subkind() != "Overflow" {
		t.Errorf("unexpected subkinds %q %q", ErrC001.Subkind(), ErrC002.Subkind())
	}
}

func TestErrorFormatting(t *testing.T) {
	d := NewError(ErrB001, token.At(4, 9, "x"), "cannot borrow `%s` as mutable", "x").
		WithSecondary(token.At(3, 13, "&x"), "first borrow here")
	msg := d.Error()
	for _, want := range []string{"4:9: error B001: cannot borrow `x` as mutable", "3:13: note: first borrow here"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}
