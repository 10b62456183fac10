package symbols

import (
	"fmt"
)

// DuplicateError reports a second declaration of a name in one scope.
type DuplicateError struct {
	Name     string
	Previous *Symbol
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("the name `%s` is defined multiple times", e.Name)
}

// SymbolTable is the scope tree of one compilation unit.
type SymbolTable struct {
	scopes  []*Scope
	current ScopeID
}

// NewSymbolTable creates a table holding the prelude and, nested in it, the
// crate scope. The crate scope is current, so crate items shadow built-ins.
func NewSymbolTable() *SymbolTable {
	st := &SymbolTable{current: NoScope}
	st.EnterScope(ScopePrelude)
	st.EnterScope(ScopeGlobal)
	return st
}

// Prelude returns the root scope id.
func (s *SymbolTable) Prelude() ScopeID {
	return 0
}

// Global returns the crate scope id.
func (s *SymbolTable) Global() ScopeID {
	return 1
}

// Current returns the innermost open scope.
func (s *SymbolTable) Current() ScopeID {
	return s.current
}

// Scope returns the scope with the given id.
func (s *SymbolTable) Scope(id ScopeID) *Scope {
	if id < 0 || int(id) >= len(s.scopes) {
		return nil
	}
	return s.scopes[id]
}

// EnterScope opens a child of the current scope and makes it current.
func (s *SymbolTable) EnterScope(kind ScopeType) ScopeID {
	id := ScopeID(len(s.scopes))
	sc := &Scope{
		ID:     id,
		Parent: s.current,
		Type:   kind,
		store:  make(map[string]*Symbol),
	}
	s.scopes = append(s.scopes, sc)
	s.current = id
	return id
}

// ExitScope closes scope id, which must be the current one. Its symbols stay
// in the tree for later lookups by id but are no longer reachable from the
// current scope.
func (s *SymbolTable) ExitScope(id ScopeID) {
	if id != s.current {
		panic(fmt.Sprintf("symbols: exiting scope %d while %d is current", id, s.current))
	}
	s.current = s.scopes[id].Parent
}

// Reenter makes an existing scope current again, for later passes that walk
// the same tree. It returns the previously current scope.
func (s *SymbolTable) Reenter(id ScopeID) ScopeID {
	prev := s.current
	s.current = id
	return prev
}

// Declare adds sym to the current scope.
func (s *SymbolTable) Declare(name string, sym *Symbol) error {
	return s.DeclareIn(s.current, name, sym)
}

// DeclareIn adds sym to scope id. Shadowing a name from an enclosing scope
// is allowed; redeclaring it in the same scope is not.
func (s *SymbolTable) DeclareIn(id ScopeID, name string, sym *Symbol) error {
	sc := s.scopes[id]
	if prev, ok := sc.store[name]; ok {
		return &DuplicateError{Name: name, Previous: prev}
	}
	sym.Name = name
	sym.Scope = id
	sc.store[name] = sym
	sc.order = append(sc.order, sym)
	return nil
}

// Redeclare replaces a let binding in the current scope. Rust lets a later
// `let` shadow an earlier one in the same block.
func (s *SymbolTable) Redeclare(name string, sym *Symbol) {
	sc := s.scopes[s.current]
	sym.Name = name
	sym.Scope = s.current
	sc.store[name] = sym
	sc.order = append(sc.order, sym)
}

// AddMember registers an associated item on a type or trait symbol.
func (s *SymbolTable) AddMember(owner *Symbol, member *Symbol) error {
	if prev, ok := owner.Member(member.Name); ok {
		return &DuplicateError{Name: member.Name, Previous: prev}
	}
	member.Owner = owner
	owner.members = append(owner.members, member)
	return nil
}
