package analyzer

import (
	"github.com/funvibe/rcheck/internal/ast"
	"github.com/funvibe/rcheck/internal/diagnostics"
	"github.com/funvibe/rcheck/internal/token"
	"github.com/funvibe/rcheck/internal/typesystem"
)

// infer types e bottom-up and records the result. Control-flow expressions
// may come back ambiguous; the consumer settles them through check.
func (a *Analyzer) infer(e ast.Expression) typesystem.Type {
	if e == nil {
		return typesystem.Unit
	}
	var t typesystem.Type
	switch n := e.(type) {
	case *ast.IntegerLiteral:
		t = a.inferInteger(n)
	case *ast.BooleanLiteral:
		t = typesystem.Bool
	case *ast.CharLiteral:
		t = typesystem.Char
	case *ast.StringLiteral:
		t = strRef
	case *ast.PathExpression:
		return a.inferPath(n)
	case *ast.GroupedExpression:
		t = a.infer(n.Inner)
	case *ast.PrefixExpression:
		t = a.inferPrefix(n)
	case *ast.InfixExpression:
		t = a.inferInfix(n)
	case *ast.CastExpression:
		t = a.inferCast(n)
	case *ast.BorrowExpression:
		t = a.inferBorrow(n)
	case *ast.DerefExpression:
		t = a.inferDeref(n)
	case *ast.AssignExpression:
		t = a.inferAssign(n)
	case *ast.ArrayLiteral:
		t = a.inferArray(n)
	case *ast.ArrayRepeatExpression:
		t = a.inferRepeat(n)
	case *ast.IndexExpression:
		t = a.inferIndex(n)
	case *ast.FieldAccessExpression:
		t = a.inferField(n)
	case *ast.StructLiteral:
		t = a.inferStructLiteral(n)
	case *ast.CallExpression:
		t = a.inferCall(n)
	case *ast.MethodCallExpression:
		t = a.inferMethodCall(n)
	case *ast.BlockExpression:
		t = a.inferBlock(n)
	case *ast.IfExpression:
		t = a.inferIf(n)
	case *ast.LoopExpression:
		t = a.inferLoop(n)
	case *ast.WhileExpression:
		t = a.inferWhile(n)
	case *ast.MatchExpression:
		t = a.inferMatch(n)
	case *ast.BreakExpression:
		t = a.inferBreak(n)
	case *ast.ContinueExpression:
		t = a.inferContinue(n)
	case *ast.ReturnExpression:
		t = a.inferReturn(n)
	case *ast.UnderscoreExpression:
		t = typesystem.Unresolved
	default:
		t = typesystem.Unresolved
	}
	return a.record(e, t)
}

// check types e where a value of type expected is required. A nil expected
// resolves an ambiguous type by joining its candidates.
func (a *Analyzer) check(e ast.Expression, expected typesystem.Type) typesystem.Type {
	return a.consume(e, a.infer(e), expected, diagnostics.ErrT001)
}

// consume settles the type t of e against its use. code is reported on a
// mismatch.
func (a *Analyzer) consume(e ast.Expression, t, expected typesystem.Type, code diagnostics.ErrorCode) typesystem.Type {
	if expected == nil {
		return a.resolve(e, t)
	}
	final, err := typesystem.Expect(t, expected)
	if err != nil {
		a.mismatch(e, t, expected, code)
		return expected
	}
	a.settle(e, final)
	return final
}

// resolve settles an ambiguous type with no context to the join of its
// candidates.
func (a *Analyzer) resolve(e ast.Expression, t typesystem.Type) typesystem.Type {
	amb, ok := t.(typesystem.TAmbiguous)
	if !ok {
		return t
	}
	joined, err := typesystem.Join(amb.Candidates...)
	if err != nil {
		a.errorf(diagnostics.ErrT008, tokenOf(e), "cannot infer the type of this expression: %s", err)
		a.record(e, typesystem.Unresolved)
		return typesystem.Unresolved
	}
	a.settle(e, joined)
	return joined
}

// discard resolves the type of a value dropped by `;`: ambiguous becomes unit.
func (a *Analyzer) discard(e ast.Expression, t typesystem.Type) typesystem.Type {
	if typesystem.IsAmbiguous(t) {
		if joined, err := typesystem.Join(t.(typesystem.TAmbiguous).Candidates...); err == nil && typesystem.IsNever(joined) {
			return a.record(e, typesystem.Never)
		}
		return a.record(e, typesystem.Unit)
	}
	return t
}

func (a *Analyzer) mismatch(e ast.Expression, actual, expected typesystem.Type, code diagnostics.ErrorCode) {
	if amb, ok := actual.(typesystem.TAmbiguous); ok {
		for _, c := range amb.Candidates {
			if _, err := typesystem.Expect(c, expected); err != nil {
				actual = c
				break
			}
		}
	}
	a.errorf(code, tokenOf(e), "mismatched types: expected `%s`, found `%s`", expected, actual)
}

// tokenOf anchors a diagnostic about a value at the expression producing it:
// the tail of a block rather than its opening brace.
func tokenOf(e ast.Expression) token.Token {
	for {
		b, ok := e.(*ast.BlockExpression)
		if !ok || b.Tail == nil {
			return e.GetToken()
		}
		e = b.Tail
	}
}

// settle writes a final type into e and the nested expressions that
// produced its value. Concrete and diverging types are left as they are.
func (a *Analyzer) settle(e ast.Expression, t typesystem.Type) {
	if e == nil || t == nil || typesystem.IsUnresolved(t) || typesystem.IsAmbiguous(t) {
		return
	}
	cur, ok := a.Info.Types[e]
	if !ok || typesystem.IsNever(cur) || typesystem.IsSettled(cur) {
		return
	}
	a.Info.Types[e] = t
	switch n := e.(type) {
	case *ast.GroupedExpression:
		a.settle(n.Inner, t)
	case *ast.BlockExpression:
		a.settle(n.Tail, t)
	case *ast.IfExpression:
		a.settle(n.Consequence, t)
		a.settle(n.Alternative, t)
	case *ast.MatchExpression:
		for _, arm := range n.Arms {
			a.settle(arm.Body, t)
		}
	case *ast.LoopExpression:
		for _, b := range a.breaks[n] {
			a.settle(b.Value, t)
		}
	case *ast.InfixExpression:
		switch n.Operator {
		case "<<", ">>":
			a.settle(n.Left, t)
		case "==", "!=", "<", ">", "<=", ">=", "&&", "||":
		default:
			a.settle(n.Left, t)
			a.settle(n.Right, t)
		}
	case *ast.PrefixExpression:
		a.settle(n.Operand, t)
	case *ast.ArrayLiteral:
		if arr, ok := t.(typesystem.TArray); ok {
			for _, el := range n.Elements {
				a.settle(el, arr.Elem)
			}
		}
	case *ast.ArrayRepeatExpression:
		if arr, ok := t.(typesystem.TArray); ok {
			a.settle(n.Value, arr.Elem)
		}
	case *ast.BorrowExpression:
		if r, ok := t.(typesystem.TRef); ok {
			a.settle(n.Operand, r.Elem)
		}
	case *ast.IndexExpression:
		if arr, ok := a.Info.Types[n.Base].(typesystem.TArray); ok {
			a.settle(n.Base, typesystem.TArray{Elem: t, Len: arr.Len})
		}
	case *ast.PathExpression:
		a.settleLocal(n, t)
	}
}

// settleLocal fixes the type of a let whose initializer had no concrete
// integer width yet, on its first concrete use.
func (a *Analyzer) settleLocal(p *ast.PathExpression, t typesystem.Type) {
	res := a.Info.Paths[p]
	if res == nil || res.Kind != PathVariable || res.Symbol == nil {
		return
	}
	sym := res.Symbol
	if sym.Type == nil || typesystem.IsSettled(sym.Type) {
		return
	}
	sym.Type = t
	if init := a.inits[sym]; init != nil {
		a.settle(init, t)
	}
	for _, v := range a.assigned[sym] {
		a.settle(v, t)
	}
}

func (a *Analyzer) inferInteger(n *ast.IntegerLiteral) typesystem.Type {
	if n.Suffix == "" {
		return typesystem.IntLit
	}
	t, ok := typesystem.PrimByName[n.Suffix]
	if !ok || !typesystem.IsInteger(t) {
		a.errorf(diagnostics.ErrT005, n.Token, "invalid suffix `%s` for number literal", n.Suffix)
		return typesystem.Unresolved
	}
	return t
}

func (a *Analyzer) inferPrefix(n *ast.PrefixExpression) typesystem.Type {
	t := a.check(n.Operand, nil)
	if typesystem.IsUnresolved(t) {
		return t
	}
	switch n.Operator {
	case "-":
		if typesystem.IsSigned(t) {
			return t
		}
	case "!":
		if typesystem.IsBool(t) || typesystem.IsInteger(t) {
			return t
		}
	}
	a.errorf(diagnostics.ErrT005, n.Token, "cannot apply unary operator `%s` to type `%s`", n.Operator, t)
	return typesystem.Unresolved
}

func (a *Analyzer) inferInfix(n *ast.InfixExpression) typesystem.Type {
	if n.Operator == "&&" || n.Operator == "||" {
		a.check(n.Left, typesystem.Bool)
		a.check(n.Right, typesystem.Bool)
		return typesystem.Bool
	}
	lt := a.check(n.Left, nil)
	rt := a.check(n.Right, nil)
	if typesystem.IsUnresolved(lt) || typesystem.IsUnresolved(rt) {
		if isComparison(n.Operator) {
			return typesystem.Bool
		}
		return typesystem.Unresolved
	}
	switch n.Operator {
	case "<<", ">>":
		if !typesystem.IsInteger(lt) || !typesystem.IsInteger(rt) {
			return a.badOperands(n, lt, rt)
		}
		return lt
	}
	t, err := typesystem.Unify(lt, rt)
	if err != nil {
		a.errorf(diagnostics.ErrT001, n.Right.GetToken(), "mismatched types: expected `%s`, found `%s`", lt, rt)
		if isComparison(n.Operator) {
			return typesystem.Bool
		}
		return typesystem.Unresolved
	}
	switch {
	case isComparison(n.Operator):
		if !comparable(t) {
			a.badOperands(n, lt, rt)
		}
		a.settle(n.Left, t)
		a.settle(n.Right, t)
		return typesystem.Bool
	case n.Operator == "&" || n.Operator == "|" || n.Operator == "^":
		if typesystem.IsInteger(t) || typesystem.IsBool(t) {
			a.settle(n.Left, t)
			a.settle(n.Right, t)
			return t
		}
	case typesystem.IsInteger(t):
		a.settle(n.Left, t)
		a.settle(n.Right, t)
		return t
	}
	return a.badOperands(n, lt, rt)
}

func (a *Analyzer) badOperands(n *ast.InfixExpression, lt, rt typesystem.Type) typesystem.Type {
	a.errorf(diagnostics.ErrT005, n.Token, "cannot apply binary operator `%s` to `%s` and `%s`", n.Operator, lt, rt)
	return typesystem.Unresolved
}

func isComparison(op string) bool {
	switch op {
	case "==", "!=", "<", ">", "<=", ">=":
		return true
	}
	return false
}

// comparable reports whether values of t support comparison operators.
func comparable(t typesystem.Type) bool {
	if r, ok := t.(typesystem.TRef); ok {
		return comparable(r.Elem)
	}
	p, ok := t.(typesystem.TPrim)
	return ok && !typesystem.IsUnit(p) && !typesystem.IsNever(p)
}

func (a *Analyzer) inferCast(n *ast.CastExpression) typesystem.Type {
	from := a.check(n.Operand, nil)
	to := a.BuildType(n.Type)
	if !typesystem.CanCast(from, to) {
		a.errorf(diagnostics.ErrT002, n.Token, "non-primitive cast: `%s` as `%s`", from, to)
	}
	return to
}
