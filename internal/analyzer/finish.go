package analyzer

import (
	"github.com/funvibe/rcheck/internal/ast"
	"github.com/funvibe/rcheck/internal/consteval"
	"github.com/funvibe/rcheck/internal/diagnostics"
	"github.com/funvibe/rcheck/internal/typesystem"
	"math/big"
)

// finish settles what inference of fn left open. Locals and expressions
// still typed {integer} become i32, leftover ambiguous types are joined.
// Integer literals are then range checked at their final type, and
// operations on constants are folded to catch overflow.
func (a *Analyzer) finish(fn *ast.FunctionItem) {
	for _, sym := range a.fn.locals {
		if sym.Type == nil {
			sym.Type = typesystem.Unresolved
			continue
		}
		sym.Type = typesystem.DefaultIntegers(sym.Type)
	}

	var exprs []ast.Expression
	negated := make(map[*ast.IntegerLiteral]bool)
	ast.Inspect(fn.Body, func(n ast.Node) bool {
		e, ok := n.(ast.Expression)
		if !ok {
			return true
		}
		if pre, ok := e.(*ast.PrefixExpression); ok && pre.Operator == "-" {
			if lit, ok := pre.Operand.(*ast.IntegerLiteral); ok {
				negated[lit] = true
			}
		}
		if _, typed := a.Info.Types[e]; typed {
			exprs = append(exprs, e)
		}
		return true
	})

	for _, e := range exprs {
		a.Info.Types[e] = a.finalType(e)
	}
	for _, e := range exprs {
		if lit, ok := e.(*ast.IntegerLiteral); ok {
			a.checkLiteral(lit, negated[lit])
		}
	}
	if !a.opts.Checks.Overflow {
		return
	}
	scope := a.constScope(a.opts.Checks.PropagateLetConstants)
	for _, e := range exprs {
		switch e.(type) {
		case *ast.InfixExpression, *ast.PrefixExpression, *ast.CastExpression:
			a.fold(e, scope)
		}
	}
}

func (a *Analyzer) finalType(e ast.Expression) typesystem.Type {
	if p, ok := e.(*ast.PathExpression); ok {
		if res := a.Info.Paths[p]; res != nil && res.Kind == PathVariable && res.Symbol != nil {
			res.Type = res.Symbol.Type
			return res.Type
		}
	}
	t := a.Info.Types[e]
	if amb, ok := t.(typesystem.TAmbiguous); ok {
		joined, err := typesystem.Join(amb.Candidates...)
		if err != nil {
			a.errorf(diagnostics.ErrT008, tokenOf(e), "cannot infer the type of this expression: %s", err)
			return typesystem.Unresolved
		}
		t = joined
	}
	return typesystem.DefaultIntegers(t)
}

func (a *Analyzer) checkLiteral(lit *ast.IntegerLiteral, negated bool) {
	t := a.Info.Types[lit]
	if !typesystem.IsInteger(t) || a.lenErrs[lit] {
		return
	}
	v := lit.Value
	if negated {
		v = new(big.Int).Neg(v)
	}
	if !a.target.Fits(t, v) {
		a.errorf(diagnostics.ErrC002, lit.Token, "literal out of range for `%s`: `%s`", t, v)
	}
}

// fold evaluates e at its final type. Only arithmetic failures are
// reported; anything not constant is left alone.
func (a *Analyzer) fold(e ast.Expression, scope *constScope) {
	t := a.Info.Types[e]
	if typesystem.IsUnresolved(t) {
		return
	}
	v, err := a.eval.Eval(e, t, scope)
	if err != nil {
		if err.Kind == consteval.DivisionByZero || err.Kind == consteval.Overflow {
			a.reportConst(err)
		}
		return
	}
	if v.IsConstant() {
		a.Info.Values[e] = v
	}
}
