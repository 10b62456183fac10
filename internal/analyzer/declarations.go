package analyzer

import (
	"github.com/funvibe/rcheck/internal/ast"
	"github.com/funvibe/rcheck/internal/diagnostics"
	"github.com/funvibe/rcheck/internal/symbols"
	"github.com/funvibe/rcheck/internal/typesystem"
	"sort"
	"strings"
)

// AnalyzeHeaders resolves struct fields, constant values, function
// signatures, traits and impls in source order. A constant may only use
// constants declared above it.
func (a *Analyzer) AnalyzeHeaders(c *ast.Crate) {
	a.file = c.File
	for _, item := range c.Items {
		switch it := item.(type) {
		case *ast.StructItem:
			a.structHeader(it, a.items[it])
		case *ast.ConstItem:
			if sym := a.items[it]; sym != nil {
				a.constHeader(it, sym)
			}
		case *ast.FunctionItem:
			if sym := a.items[it]; sym != nil {
				a.functionHeader(it, sym)
			}
		case *ast.TraitItem:
			if sym := a.items[it]; sym != nil {
				a.traitHeader(it, sym)
			}
		case *ast.ImplItem:
			a.implHeader(it)
		}
	}
}

func (a *Analyzer) structHeader(it *ast.StructItem, sym *symbols.Symbol) {
	st, _ := sym.Type.(*typesystem.TStruct)
	if st == nil {
		return
	}
	seen := make(map[string]*ast.FieldDecl)
	for _, f := range it.Fields {
		ft := a.BuildType(f.Type)
		if prev, dup := seen[f.Name.Value]; dup {
			a.errorf(diagnostics.ErrN002, f.Name.Token, "field `%s` is already declared", f.Name.Value).
				WithSecondary(prev.Name.Token, "`"+f.Name.Value+"` first declared here")
			continue
		}
		seen[f.Name.Value] = f
		st.Fields = append(st.Fields, typesystem.Field{Name: f.Name.Value, Type: ft})
	}
}

// constHeader checks the declared type, then evaluates the value.
func (a *Analyzer) constHeader(it *ast.ConstItem, sym *symbols.Symbol) {
	declared := a.BuildType(it.Type)
	sym.Type = declared
	if it.Value == nil {
		return
	}
	v, err := a.eval.EvalConst(it.Value, declared, a.constScope(false))
	if err != nil {
		a.reportConst(err)
		a.failed[sym] = true
		return
	}
	a.Info.Consts[sym] = v
	a.Info.Types[it.Value] = declared
}

// signature resolves parameter and return types. For methods the receiver
// is the first parameter.
func (a *Analyzer) signature(fn *ast.FunctionItem) (typesystem.TFunc, symbols.Receiver) {
	var sig typesystem.TFunc
	recv := symbols.NoReceiver
	if fn.Self != nil {
		if a.selfType == nil {
			a.errorf(diagnostics.ErrS004, fn.Self.Token, "`self` parameter is only allowed in associated functions")
		} else {
			sig.Params = append(sig.Params, receiverType(a.selfType, fn.Self))
		}
		switch {
		case fn.Self.Ref && fn.Self.Mutable:
			recv = symbols.ByMutRef
		case fn.Self.Ref:
			recv = symbols.ByRef
		default:
			recv = symbols.ByValue
		}
	}
	for _, p := range fn.Params {
		sig.Params = append(sig.Params, a.BuildType(p.Type))
	}
	sig.Return = a.BuildType(fn.ReturnType)
	return sig, recv
}

func receiverType(self typesystem.Type, sp *ast.SelfParam) typesystem.Type {
	if sp.Ref {
		return typesystem.TRef{Elem: self, Mutable: sp.Mutable}
	}
	return self
}

func (a *Analyzer) functionHeader(fn *ast.FunctionItem, sym *symbols.Symbol) {
	sig, recv := a.signature(fn)
	sym.Type = sig
	sym.Receiver = recv
	a.Info.Functions[fn] = sym
}

// traitHeader records the trait's functions and constants as members. A
// function without a body must be provided by every impl.
func (a *Analyzer) traitHeader(it *ast.TraitItem, sym *symbols.Symbol) {
	prev := a.selfType
	a.selfType = sym.Type
	defer func() { a.selfType = prev }()
	for _, item := range it.Items {
		a.associatedItem(sym, item)
	}
}

func (a *Analyzer) implHeader(it *ast.ImplItem) {
	target, t, ok := a.typeSymbol(it.Target.Value)
	if !ok || target == nil || target.Kind == symbols.TraitSymbol {
		if ok {
			a.errorf(diagnostics.ErrN006, it.Target.Token, "cannot define inherent `impl` for `%s`", it.Target.Value)
		} else {
			a.errorf(diagnostics.ErrN001, it.Target.Token, "cannot find type `%s` in this scope", it.Target.Value)
		}
		return
	}
	prev := a.selfType
	a.selfType = t
	defer func() { a.selfType = prev }()

	var trait *symbols.Symbol
	if it.Trait != nil {
		trait = a.lookupTrait(it.Trait)
	}
	for _, item := range it.Items {
		member := a.associatedItem(target, item)
		if member != nil && trait != nil {
			if _, inTrait := trait.Member(member.Name); !inTrait {
				a.errorf(diagnostics.ErrN005, item.GetToken(), "`%s` is not a member of trait `%s`", member.Name, trait.Name)
			}
		}
	}
	if trait != nil {
		a.checkTraitImpl(it, target, trait)
	}
}

func (a *Analyzer) lookupTrait(id *ast.Identifier) *symbols.Symbol {
	sym, ok := a.table.Find(id.Value)
	if !ok {
		a.errorf(diagnostics.ErrN001, id.Token, "cannot find trait `%s` in this scope", id.Value)
		return nil
	}
	if sym.Kind != symbols.TraitSymbol {
		a.errorf(diagnostics.ErrN006, id.Token, "expected trait, found %s `%s`", sym.Kind, id.Value)
		return nil
	}
	return sym
}

// checkTraitImpl reports trait functions the impl leaves out and inherits
// the default ones.
func (a *Analyzer) checkTraitImpl(it *ast.ImplItem, target, trait *symbols.Symbol) {
	var missing []string
	for _, m := range trait.Members() {
		if _, ok := target.Member(m.Name); ok {
			continue
		}
		fn, isFn := m.Node.(*ast.FunctionItem)
		if m.Kind == symbols.FunctionSymbol && isFn && fn.Body != nil {
			inherited := &symbols.Symbol{Name: m.Name, Kind: m.Kind, Type: replaceSelf(m.Type, trait.Type, target.Type), Receiver: m.Receiver, Node: fn}
			_ = a.table.AddMember(target, inherited)
			continue
		}
		if c, isConst := m.Node.(*ast.ConstItem); m.Kind == symbols.ConstantSymbol && isConst && c.Value != nil {
			inherited := &symbols.Symbol{Name: m.Name, Kind: m.Kind, Type: replaceSelf(m.Type, trait.Type, target.Type), Node: c}
			if v, ok := a.Info.Consts[m]; ok {
				a.Info.Consts[inherited] = v
			} else {
				a.failed[inherited] = true
			}
			_ = a.table.AddMember(target, inherited)
			continue
		}
		missing = append(missing, m.Name)
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		a.errorf(diagnostics.ErrN005, it.Token, "not all trait items implemented, missing: `%s`", strings.Join(missing, "`, `"))
	}
}

// replaceSelf substitutes the implementing type for a trait's Self.
func replaceSelf(t, self, target typesystem.Type) typesystem.Type {
	return typesystem.Map(t, func(x typesystem.Type) typesystem.Type {
		if st, ok := x.(*typesystem.TStruct); ok && typesystem.Type(st) == self {
			return target
		}
		return x
	})
}

// associatedItem declares one impl or trait item on owner.
func (a *Analyzer) associatedItem(owner *symbols.Symbol, item ast.Item) *symbols.Symbol {
	var member *symbols.Symbol
	var name *ast.Identifier
	switch n := item.(type) {
	case *ast.FunctionItem:
		name = n.Name
		sig, recv := a.signature(n)
		member = &symbols.Symbol{Name: n.Name.Value, Kind: symbols.FunctionSymbol, Type: sig, Receiver: recv, Node: n}
		a.Info.Functions[n] = member
	case *ast.ConstItem:
		name = n.Name
		member = &symbols.Symbol{Name: n.Name.Value, Kind: symbols.ConstantSymbol, Node: n}
		a.constHeader(n, member)
	default:
		return nil
	}
	if err := a.table.AddMember(owner, member); err != nil {
		a.duplicate(name.Token, err)
		return nil
	}
	a.items[item] = member
	return member
}
