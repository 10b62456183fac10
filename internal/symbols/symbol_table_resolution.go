package symbols

// Resolve looks name up starting at scope at and walking the parent chain.
// The innermost declaration wins.
func (s *SymbolTable) Resolve(name string, at ScopeID) (*Symbol, bool) {
	for id := at; id != NoScope; id = s.scopes[id].Parent {
		if sym, ok := s.scopes[id].store[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// Find resolves name from the current scope.
func (s *SymbolTable) Find(name string) (*Symbol, bool) {
	return s.Resolve(name, s.current)
}

// FindLocal looks name up in the current scope only.
func (s *SymbolTable) FindLocal(name string) (*Symbol, bool) {
	sym, ok := s.scopes[s.current].store[name]
	return sym, ok
}

// Enclosing returns the nearest scope of the given type around the current
// scope, without crossing a function boundary unless looking for one.
func (s *SymbolTable) Enclosing(kind ScopeType) (*Scope, bool) {
	for id := s.current; id != NoScope; id = s.scopes[id].Parent {
		sc := s.scopes[id]
		if sc.Type == kind {
			return sc, true
		}
		if sc.Type == ScopeFunction && kind != ScopeFunction {
			return nil, false
		}
	}
	return nil, false
}

// IsWithin reports whether scope inner is outer or nested in it.
func (s *SymbolTable) IsWithin(inner, outer ScopeID) bool {
	for id := inner; id != NoScope; id = s.scopes[id].Parent {
		if id == outer {
			return true
		}
	}
	return false
}

// Member finds an associated item by name.
func (sym *Symbol) Member(name string) (*Symbol, bool) {
	for _, m := range sym.members {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// Members returns the associated items in declaration order.
func (sym *Symbol) Members() []*Symbol {
	return sym.members
}
