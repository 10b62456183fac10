package analyzer

import (
	"github.com/funvibe/rcheck/internal/ast"
	"github.com/funvibe/rcheck/internal/config"
	"github.com/funvibe/rcheck/internal/diagnostics"
	"github.com/funvibe/rcheck/internal/symbols"
	"github.com/funvibe/rcheck/internal/typesystem"
)

// BuildType converts a type annotation into a type, reporting unknown
// names. Array lengths are evaluated as constants at the current scope.
func (a *Analyzer) BuildType(t ast.Type) typesystem.Type {
	if t == nil {
		return typesystem.Unit
	}
	switch n := t.(type) {
	case *ast.UnitType:
		return typesystem.Unit
	case *ast.NamedType:
		return a.namedType(n)
	case *ast.ReferenceType:
		return typesystem.TRef{Elem: a.BuildType(n.Elem), Mutable: n.Mutable}
	case *ast.ArrayType:
		elem := a.BuildType(n.Elem)
		size, err := a.eval.EvalArraySize(n.Size, a.constScope(false))
		if err != nil {
			a.reportConst(err)
			return typesystem.TArray{Elem: elem, Len: -1}
		}
		return typesystem.TArray{Elem: elem, Len: size}
	}
	return typesystem.Unresolved
}

func (a *Analyzer) namedType(n *ast.NamedType) typesystem.Type {
	if n.Name == config.SelfTypeName {
		if a.selfType == nil {
			a.errorf(diagnostics.ErrN001, n.Token, "cannot find type `Self` in this scope")
			return typesystem.Unresolved
		}
		return a.selfType
	}
	if sym, ok := a.table.Find(n.Name); ok {
		if sym.IsType() {
			return sym.Type
		}
		if _, isPrim := typesystem.PrimByName[n.Name]; !isPrim {
			a.errorf(diagnostics.ErrN006, n.Token, "expected type, found %s `%s`", sym.Kind, n.Name)
			return typesystem.Unresolved
		}
	}
	if p, ok := typesystem.PrimByName[n.Name]; ok {
		return p
	}
	a.errorf(diagnostics.ErrN001, n.Token, "cannot find type `%s` in this scope", n.Name)
	return typesystem.Unresolved
}

// typeSymbol resolves a type name used as the first segment of a path or
// as the target of an impl.
func (a *Analyzer) typeSymbol(name string) (*symbols.Symbol, typesystem.Type, bool) {
	if name == config.SelfTypeName && a.selfType != nil {
		return a.nominal(a.selfType), a.selfType, true
	}
	if sym, ok := a.table.Find(name); ok && sym.IsType() {
		return sym, sym.Type, true
	}
	if p, ok := typesystem.PrimByName[name]; ok {
		return nil, p, true
	}
	return nil, nil, false
}
