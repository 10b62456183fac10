package analyzer

import (
	"github.com/funvibe/rcheck/internal/ast"
	"github.com/funvibe/rcheck/internal/diagnostics"
	"github.com/funvibe/rcheck/internal/symbols"
	"github.com/funvibe/rcheck/internal/token"
	"github.com/funvibe/rcheck/internal/typesystem"
)

// CollectNames declares every top-level item in the crate scope. Struct and
// enum types are created here so later signatures can refer to items
// declared further down.
func (a *Analyzer) CollectNames(c *ast.Crate) {
	a.file = c.File
	RegisterBuiltins(a.table)
	global := a.table.Global()
	for _, item := range c.Items {
		var sym *symbols.Symbol
		var name *ast.Identifier
		switch it := item.(type) {
		case *ast.StructItem:
			name = it.Name
			st := &typesystem.TStruct{Name: it.Name.Value}
			sym = &symbols.Symbol{Kind: symbols.StructSymbol, Type: st, Node: it}
			a.typeSyms[st] = sym
		case *ast.EnumItem:
			name = it.Name
			sym = a.collectEnum(it)
		case *ast.FunctionItem:
			name = it.Name
			sym = &symbols.Symbol{Kind: symbols.FunctionSymbol, Node: it}
		case *ast.ConstItem:
			name = it.Name
			sym = &symbols.Symbol{Kind: symbols.ConstantSymbol, Node: it}
		case *ast.TraitItem:
			name = it.Name
			self := &typesystem.TStruct{Name: "Self"}
			sym = &symbols.Symbol{Kind: symbols.TraitSymbol, Type: self, Node: it}
			a.typeSyms[self] = sym
		default:
			continue
		}
		a.declare(global, name, sym)
		a.items[item] = sym
	}
}

func (a *Analyzer) collectEnum(it *ast.EnumItem) *symbols.Symbol {
	en := &typesystem.TEnum{Name: it.Name.Value}
	sym := &symbols.Symbol{Kind: symbols.EnumSymbol, Type: en, Node: it}
	a.typeSyms[en] = sym
	for _, v := range it.Variants {
		vs := &symbols.Symbol{Name: v.Value, Kind: symbols.VariantSymbol, Type: en, Node: v}
		if err := a.table.AddMember(sym, vs); err != nil {
			a.duplicate(v.Token, err)
			continue
		}
		en.Variants = append(en.Variants, v.Value)
	}
	return sym
}

// declare adds sym to scope id and reports a duplicate.
func (a *Analyzer) declare(id symbols.ScopeID, name *ast.Identifier, sym *symbols.Symbol) bool {
	if err := a.table.DeclareIn(id, name.Value, sym); err != nil {
		a.duplicate(name.Token, err)
		return false
	}
	return true
}

func (a *Analyzer) duplicate(tok token.Token, err error) {
	d := a.errorf(diagnostics.ErrN002, tok, "%s", err.Error())
	if dup, ok := err.(*symbols.DuplicateError); ok && dup.Previous != nil && dup.Previous.Node != nil {
		d.WithSecondary(dup.Previous.Node.GetToken(), "previous definition here")
	}
}
