package analyzer

import (
	"github.com/funvibe/rcheck/internal/ast"
	"github.com/funvibe/rcheck/internal/config"
	"github.com/funvibe/rcheck/internal/diagnostics"
	"github.com/funvibe/rcheck/internal/symbols"
	"github.com/funvibe/rcheck/internal/typesystem"
)

// AnalyzeBodies infers the types of every function body: free functions,
// impl methods and default bodies of trait functions.
func (a *Analyzer) AnalyzeBodies(c *ast.Crate) {
	a.file = c.File
	for _, item := range c.Items {
		switch it := item.(type) {
		case *ast.FunctionItem:
			if sym := a.items[it]; sym != nil {
				a.checkFunction(it, sym)
			}
		case *ast.ImplItem:
			_, t, ok := a.typeSymbol(it.Target.Value)
			if !ok {
				continue
			}
			a.withSelf(t, it.Items)
		case *ast.TraitItem:
			if sym := a.items[it]; sym != nil {
				a.withSelf(sym.Type, it.Items)
			}
		}
	}
}

func (a *Analyzer) withSelf(self typesystem.Type, items []ast.Item) {
	prev := a.selfType
	a.selfType = self
	defer func() { a.selfType = prev }()
	for _, item := range items {
		fn, ok := item.(*ast.FunctionItem)
		if !ok {
			continue
		}
		if sym := a.items[fn]; sym != nil {
			a.checkFunction(fn, sym)
		}
	}
}

func (a *Analyzer) checkFunction(fn *ast.FunctionItem, sym *symbols.Symbol) {
	if fn.Body == nil {
		return
	}
	sig, _ := sym.Type.(typesystem.TFunc)
	ret := sig.Return
	if ret == nil {
		ret = typesystem.Unit
	}
	a.fn = &fnCtx{item: fn, sym: sym, ret: ret}
	defer func() { a.fn = nil }()

	id := a.table.EnterScope(symbols.ScopeFunction)
	params := sig.Params
	if fn.Self != nil && a.selfType != nil && len(params) > 0 {
		self := &symbols.Symbol{
			Kind:    symbols.ParameterSymbol,
			Type:    params[0],
			Mutable: fn.Self.Mutable && !fn.Self.Ref,
			Node:    fn.Self,
		}
		_ = a.table.Declare(config.SelfValueName, self)
		a.Info.Selves[fn] = self
		a.fn.locals = append(a.fn.locals, self)
		params = params[1:]
	}
	for i, p := range fn.Params {
		var pt typesystem.Type = typesystem.Unresolved
		if i < len(params) {
			pt = params[i]
		}
		ps := &symbols.Symbol{Kind: symbols.ParameterSymbol, Type: pt, Mutable: p.Mutable, Node: p}
		if err := a.table.Declare(p.Name.Value, ps); err != nil {
			a.duplicate(p.Name.Token, err)
			continue
		}
		a.Info.Params[p] = ps
		a.fn.locals = append(a.fn.locals, ps)
	}

	body := a.infer(fn.Body)
	a.consume(fn.Body, body, ret, diagnostics.ErrS002)
	if a.opts.Checks.TerminalCall {
		a.checkTerminalCall(fn.Body)
	}
	a.table.ExitScope(id)
	a.finish(fn)
}

// statement types one statement and reports whether it diverges.
func (a *Analyzer) statement(s ast.Statement) bool {
	switch st := s.(type) {
	case *ast.LetStatement:
		return a.letStatement(st)
	case *ast.ExpressionStatement:
		t := a.infer(st.Expression)
		diverges := a.diverges(t)
		if st.Semicolon {
			a.discard(st.Expression, t)
			return diverges
		}
		a.consume(st.Expression, t, typesystem.Unit, diagnostics.ErrT001)
		return diverges
	}
	return false
}

// diverges reports whether every value of type t is never.
func (a *Analyzer) diverges(t typesystem.Type) bool {
	if amb, ok := t.(typesystem.TAmbiguous); ok {
		j, err := typesystem.Join(amb.Candidates...)
		return err == nil && typesystem.IsNever(j)
	}
	return typesystem.IsNever(t)
}

// letStatement checks the value against the annotation first; without one
// the binding takes the value's type.
func (a *Analyzer) letStatement(st *ast.LetStatement) bool {
	var declared typesystem.Type
	if st.Type != nil {
		declared = a.BuildType(st.Type)
	}
	t := declared
	diverges := false
	if st.Value != nil {
		vt := a.infer(st.Value)
		diverges = a.diverges(vt)
		if declared != nil {
			a.consume(st.Value, vt, declared, diagnostics.ErrT001)
		} else {
			t = a.consume(st.Value, vt, nil, diagnostics.ErrT001)
		}
	}
	a.bindPattern(st.Pattern, t, false)
	if ip, ok := st.Pattern.(*ast.IdentifierPattern); ok {
		if sym := a.Info.Bindings[ip]; sym != nil {
			switch {
			case st.Value == nil:
				a.deferred[sym] = true
			case !ip.ByRef:
				a.inits[sym] = st.Value
			}
		}
	}
	return diverges
}

// checkTerminalCall reports exit calls in a function body that are followed
// by further statements or a tail.
func (a *Analyzer) checkTerminalCall(body *ast.BlockExpression) {
	last := len(body.Statements) - 1
	for i, s := range body.Statements {
		es, ok := s.(*ast.ExpressionStatement)
		if !ok || !a.isExitCall(es.Expression) {
			continue
		}
		if i < last || body.Tail != nil {
			a.errorf(diagnostics.ErrS001, es.Expression.GetToken(), "`%s` must be the last statement of the function", config.ExitFuncName)
		}
	}
}

func (a *Analyzer) isExitCall(e ast.Expression) bool {
	call, ok := e.(*ast.CallExpression)
	if !ok {
		return false
	}
	p, ok := call.Function.(*ast.PathExpression)
	return ok && isExit(a.Info.Paths[p])
}
