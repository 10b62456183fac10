package analyzer

import (
	"github.com/funvibe/rcheck/internal/ast"
	"github.com/funvibe/rcheck/internal/diagnostics"
	"github.com/funvibe/rcheck/internal/symbols"
	"github.com/funvibe/rcheck/internal/token"
	"github.com/funvibe/rcheck/internal/typesystem"
)

// inferBlock types the statements of b in a new scope. The block takes
// the type of its tail; without one it is unit, or never when a statement
// diverges.
func (a *Analyzer) inferBlock(b *ast.BlockExpression) typesystem.Type {
	id := a.table.EnterScope(symbols.ScopeBlock)
	defer a.table.ExitScope(id)
	diverges := false
	for _, s := range b.Statements {
		if a.statement(s) {
			diverges = true
		}
	}
	if b.Tail != nil {
		return a.infer(b.Tail)
	}
	if diverges {
		return typesystem.Never
	}
	return typesystem.Unit
}

func (a *Analyzer) inferIf(n *ast.IfExpression) typesystem.Type {
	a.check(n.Condition, typesystem.Bool)
	then := a.infer(n.Consequence)
	if n.Alternative == nil {
		a.consume(n.Consequence, then, typesystem.Unit, diagnostics.ErrT001)
		return typesystem.Unit
	}
	alt := a.infer(n.Alternative)
	return typesystem.TAmbiguous{Candidates: []typesystem.Type{then, alt}}
}

func (a *Analyzer) inferMatch(n *ast.MatchExpression) typesystem.Type {
	subject := a.check(n.Subject, nil)
	if len(n.Arms) == 0 {
		return typesystem.Never
	}
	cands := make([]typesystem.Type, 0, len(n.Arms))
	for _, arm := range n.Arms {
		id := a.table.EnterScope(symbols.ScopeBlock)
		a.bindPattern(arm.Pattern, subject, true)
		cands = append(cands, a.infer(arm.Body))
		a.table.ExitScope(id)
	}
	return typesystem.TAmbiguous{Candidates: cands}
}

func (a *Analyzer) inferLoop(n *ast.LoopExpression) typesystem.Type {
	ctx := a.enterLoop(n)
	a.check(n.Body, typesystem.Unit)
	a.exitLoop()
	if !ctx.broken {
		return typesystem.Never
	}
	allUnit := true
	for _, t := range ctx.breaks {
		if !typesystem.IsUnit(t) {
			allUnit = false
		}
	}
	if allUnit {
		return typesystem.Unit
	}
	return typesystem.TAmbiguous{Candidates: ctx.breaks}
}

func (a *Analyzer) inferWhile(n *ast.WhileExpression) typesystem.Type {
	a.check(n.Condition, typesystem.Bool)
	a.enterLoop(nil)
	a.check(n.Body, typesystem.Unit)
	a.exitLoop()
	return typesystem.Unit
}

func (a *Analyzer) enterLoop(n *ast.LoopExpression) *loopCtx {
	ctx := &loopCtx{loop: n}
	id := a.table.EnterScope(symbols.ScopeLoop)
	ctx.scope = id
	a.fn.loops = append(a.fn.loops, ctx)
	return ctx
}

func (a *Analyzer) exitLoop() {
	ctx := a.fn.loops[len(a.fn.loops)-1]
	a.fn.loops = a.fn.loops[:len(a.fn.loops)-1]
	a.table.ExitScope(ctx.scope)
}

func (a *Analyzer) innermostLoop() *loopCtx {
	if a.fn == nil || len(a.fn.loops) == 0 {
		return nil
	}
	return a.fn.loops[len(a.fn.loops)-1]
}

func (a *Analyzer) inferBreak(n *ast.BreakExpression) typesystem.Type {
	ctx := a.innermostLoop()
	if ctx == nil {
		a.errorf(diagnostics.ErrS003, n.Token, "`break` outside of a loop")
		if n.Value != nil {
			a.check(n.Value, nil)
		}
		return typesystem.Never
	}
	ctx.broken = true
	if n.Value == nil {
		ctx.breaks = append(ctx.breaks, typesystem.Unit)
		return typesystem.Never
	}
	if ctx.loop == nil {
		a.errorf(diagnostics.ErrS005, n.Token, "`break` with value from a `while` loop")
		a.check(n.Value, nil)
		return typesystem.Never
	}
	ctx.breaks = append(ctx.breaks, a.infer(n.Value))
	a.breaks[ctx.loop] = append(a.breaks[ctx.loop], n)
	return typesystem.Never
}

func (a *Analyzer) inferContinue(n *ast.ContinueExpression) typesystem.Type {
	if a.innermostLoop() == nil {
		a.errorf(diagnostics.ErrS003, n.Token, "`continue` outside of a loop")
	}
	return typesystem.Never
}

func (a *Analyzer) inferReturn(n *ast.ReturnExpression) typesystem.Type {
	ret := typesystem.Type(typesystem.Unit)
	if a.fn != nil && a.fn.ret != nil {
		ret = a.fn.ret
	}
	if n.Value == nil {
		if !typesystem.IsUnit(ret) && !typesystem.IsUnresolved(ret) {
			a.errorf(diagnostics.ErrS002, n.Token, "`return;` in a function whose return type is `%s`", ret)
		}
		return typesystem.Never
	}
	a.consume(n.Value, a.infer(n.Value), ret, diagnostics.ErrS002)
	return typesystem.Never
}

// bindPattern declares the bindings of p, matched against a value of type
// t, in the current scope. In match arms a bare name that resolves to a
// constant or a variant is compared instead of bound.
func (a *Analyzer) bindPattern(p ast.Pattern, t typesystem.Type, inMatch bool) {
	if t == nil && !isBinding(p) {
		t = typesystem.Unresolved
	}
	switch n := p.(type) {
	case *ast.IdentifierPattern:
		if inMatch && !n.ByRef && !n.Mutable {
			if sym, ok := a.table.Find(n.Name.Value); ok && (sym.Kind == symbols.ConstantSymbol || sym.Kind == symbols.VariantSymbol) {
				a.matchValue(n.Name.Token, sym.Type, t)
				return
			}
		}
		bt := t
		if n.ByRef && t != nil {
			bt = typesystem.TRef{Elem: t, Mutable: n.Mutable}
		}
		sym := &symbols.Symbol{
			Kind:    symbols.VariableSymbol,
			Type:    bt,
			Mutable: n.Mutable && !n.ByRef,
			Node:    n,
		}
		a.table.Redeclare(n.Name.Value, sym)
		a.Info.Bindings[n] = sym
		if a.fn != nil {
			a.fn.locals = append(a.fn.locals, sym)
		}
	case *ast.WildcardPattern:
	case *ast.ReferencePattern:
		r, ok := t.(typesystem.TRef)
		if !ok || r.Mutable != n.Mutable {
			if !typesystem.IsUnresolved(t) {
				want := "&"
				if n.Mutable {
					want = "&mut "
				}
				a.errorf(diagnostics.ErrT001, n.Token, "mismatched types: expected `%s`, found `%s_`", t, want)
			}
			a.bindPattern(n.Inner, typesystem.Unresolved, inMatch)
			return
		}
		a.bindPattern(n.Inner, r.Elem, inMatch)
	case *ast.LiteralPattern:
		lt := a.infer(n.Value)
		a.matchValue(n.Value.GetToken(), lt, t)
		if !typesystem.IsUnresolved(t) {
			a.settle(n.Value, t)
		}
	case *ast.PathPattern:
		res := a.ResolvePath(n.Path)
		if res == nil {
			return
		}
		if res.Kind != PathConstant && res.Kind != PathVariant {
			a.errorf(diagnostics.ErrN006, n.Path.Token, "expected unit variant or constant, found %s `%s`", res.Kind, n.Path.Name())
			return
		}
		a.matchValue(n.Path.Token, res.Type, t)
	}
}

func isBinding(p ast.Pattern) bool {
	_, ok := p.(*ast.IdentifierPattern)
	return ok
}

func (a *Analyzer) matchValue(tok token.Token, pt, subject typesystem.Type) {
	if _, err := typesystem.Unify(pt, subject); err != nil {
		a.errorf(diagnostics.ErrT001, tok, "mismatched types: expected `%s`, found `%s`", subject, pt)
	}
}
