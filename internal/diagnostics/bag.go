package diagnostics

import (
	"fmt"
	"github.com/funvibe/rcheck/internal/token"
	"sort"
	"sync"
)

// Bag collects diagnostics for one compilation unit. Adding never fails;
// a diagnostic with the same position and code as an earlier one is dropped.
type Bag struct {
	mu         sync.Mutex
	seen       map[string]bool
	items      []*DiagnosticError
	phase      Phase
	unit       string
	limit      int
	dropped    int
	errorCount int
	warnCount  int
}

// NewBag creates an empty bag. limit caps the number of kept diagnostics; 0 keeps all.
func NewBag(limit int) *Bag {
	return &Bag{seen: make(map[string]bool), limit: limit}
}

// SetPhase sets the phase stamped on diagnostics added from now on.
func (b *Bag) SetPhase(p Phase) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.phase = p
}

// SetUnit sets the compilation unit stamped on diagnostics added from now on.
func (b *Bag) SetUnit(unit string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.unit = unit
}

// Add records a diagnostic.
func (b *Bag) Add(d *DiagnosticError) {
	if d == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	key := fmt.Sprintf("%d:%d:%s", d.Token.Line, d.Token.Column, d.Code)
	if b.seen[key] {
		return
	}
	b.seen[key] = true
	switch d.Severity {
	case Error:
		b.errorCount++
	case Warning:
		b.warnCount++
	}
	if b.limit > 0 && len(b.items) >= b.limit {
		b.dropped++
		return
	}
	d.Phase = b.phase
	if d.Unit == "" {
		d.Unit = b.unit
	}
	b.items = append(b.items, d)
}

// Errorf records a new error diagnostic and returns it so callers can attach labels.
func (b *Bag) Errorf(code ErrorCode, tok token.Token, format string, args ...any) *DiagnosticError {
	d := NewError(code, tok, format, args...)
	b.Add(d)
	return d
}

// HasErrors reports whether any error-severity diagnostic was added.
func (b *Bag) HasErrors() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.errorCount > 0
}

// ErrorCount returns the number of errors, including dropped ones.
func (b *Bag) ErrorCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.errorCount
}

// WarningCount returns the number of warnings, including dropped ones.
func (b *Bag) WarningCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.warnCount
}

// Dropped returns how many diagnostics were discarded by the limit.
func (b *Bag) Dropped() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

// Diagnostics returns a copy of all diagnostics ordered by phase, then by position.
func (b *Bag) Diagnostics() []*DiagnosticError {
	b.mu.Lock()
	result := make([]*DiagnosticError, len(b.items))
	copy(result, b.items)
	b.mu.Unlock()

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Phase != result[j].Phase {
			return result[i].Phase < result[j].Phase
		}
		return result[i].Token.Before(result[j].Token)
	})
	return result
}

// Codes lists the codes of all diagnostics in report order.
func (b *Bag) Codes() []ErrorCode {
	diags := b.Diagnostics()
	codes := make([]ErrorCode, len(diags))
	for i, d := range diags {
		codes[i] = d.Code
	}
	return codes
}
