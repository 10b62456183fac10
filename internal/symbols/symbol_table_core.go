package symbols

import (
	"github.com/funvibe/rcheck/internal/ast"
	"github.com/funvibe/rcheck/internal/typesystem"
)

type SymbolKind int

type ScopeType int

// ScopeID names a scope in the table's scope tree.
type ScopeID int

// NoScope is the parent of the root scope.
const NoScope ScopeID = -1

const (
	ScopePrelude ScopeType = iota // Built-ins, parent of the crate scope
	ScopeGlobal                   // Crate top level
	ScopeFunction
	ScopeBlock
	ScopeLoop
	ScopeImpl // impl and trait bodies
)

func (s ScopeType) String() string {
	switch s {
	case ScopePrelude:
		return "prelude"
	case ScopeGlobal:
		return "global"
	case ScopeFunction:
		return "function"
	case ScopeBlock:
		return "block"
	case ScopeLoop:
		return "loop"
	case ScopeImpl:
		return "impl"
	}
	return "unknown"
}

const (
	VariableSymbol SymbolKind = iota
	ParameterSymbol
	FunctionSymbol
	StructSymbol
	EnumSymbol
	VariantSymbol
	ConstantSymbol
	TraitSymbol
	BuiltinSymbol
)

func (k SymbolKind) String() string {
	switch k {
	case VariableSymbol:
		return "variable"
	case ParameterSymbol:
		return "parameter"
	case FunctionSymbol:
		return "function"
	case StructSymbol:
		return "struct"
	case EnumSymbol:
		return "enum"
	case VariantSymbol:
		return "variant"
	case ConstantSymbol:
		return "constant"
	case TraitSymbol:
		return "trait"
	case BuiltinSymbol:
		return "builtin"
	}
	return "unknown"
}

// Receiver describes how a method takes self.
type Receiver int

const (
	NoReceiver Receiver = iota
	ByValue
	ByRef
	ByMutRef
)

type Symbol struct {
	Name     string
	Type     typesystem.Type
	Kind     SymbolKind
	Mutable  bool
	Scope    ScopeID
	Node     ast.Node // The AST node where this symbol was defined
	Owner    *Symbol  // Type symbol for associated items, nil otherwise
	Receiver Receiver // For methods
	members  []*Symbol
}

// IsAssociated reports whether the symbol is an item of an impl or trait.
func (s *Symbol) IsAssociated() bool {
	return s.Owner != nil
}

// IsValue reports whether the symbol denotes a runtime value.
func (s *Symbol) IsValue() bool {
	switch s.Kind {
	case VariableSymbol, ParameterSymbol, FunctionSymbol, VariantSymbol, ConstantSymbol, BuiltinSymbol:
		return true
	}
	return false
}

// IsType reports whether the symbol names a type.
func (s *Symbol) IsType() bool {
	return s.Kind == StructSymbol || s.Kind == EnumSymbol
}

// IsLocal reports whether the symbol is a let binding or a parameter.
func (s *Symbol) IsLocal() bool {
	return s.Kind == VariableSymbol || s.Kind == ParameterSymbol
}

// Scope is one node of the scope tree.
type Scope struct {
	ID     ScopeID
	Parent ScopeID
	Type   ScopeType
	store  map[string]*Symbol
	order  []*Symbol
}

// Symbols returns the symbols declared in this scope in declaration order.
func (sc *Scope) Symbols() []*Symbol {
	return sc.order
}
