package consteval

import (
	"github.com/funvibe/rcheck/internal/ast"
	"github.com/funvibe/rcheck/internal/typesystem"
	"math/big"
)

// LookupState tells how a path relates to the constants in scope.
type LookupState int

const (
	NotConstant LookupState = iota
	Pending                 // declared later or still being evaluated
	Ready
	Failed // its own evaluation failed and was already reported
)

// Lookup is the answer to a constant query.
type Lookup struct {
	State LookupState
	Type  typesystem.Type
	Value Value
}

// Scope answers the evaluator's name queries at one program point.
type Scope interface {
	// Constant resolves a path to a constant item, an associated constant
	// or a primitive bound such as `i32::MAX`.
	Constant(path *ast.PathExpression) Lookup
	// ResolveType resolves a type annotation; it reports its own errors
	// and returns {unknown} on failure.
	ResolveType(t ast.Type) typesystem.Type
}

// Evaluator reduces constant expressions at a fixed target.
type Evaluator struct {
	Target typesystem.Target
}

func New(target typesystem.Target) *Evaluator {
	return &Evaluator{Target: target}
}

// EvalConst type-checks expr against declared, then evaluates it.
// A nil declared type skips the check.
func (ev *Evaluator) EvalConst(expr ast.Expression, declared typesystem.Type, scope Scope) (Value, *Error) {
	t, err := ev.TypeOf(expr, scope)
	if err != nil {
		return Value{}, err
	}
	if declared != nil {
		if _, merr := typesystem.Expect(t, declared); merr != nil {
			return Value{}, newError(Mismatch, expr.GetToken(), "mismatched types: expected `%s`, found `%s`", declared, t)
		}
	}
	return ev.eval(expr, declared, scope)
}

// EvalArraySize evaluates the length of `[T; N]` or `[v; N]`.
func (ev *Evaluator) EvalArraySize(expr ast.Expression, scope Scope) (int64, *Error) {
	tok := expr.GetToken()
	t, err := ev.TypeOf(expr, scope)
	if err != nil {
		if err.Kind == NonConstantExpression {
			return 0, newError(NegativeArraySize, tok, "array length must be a non-negative integer constant: %s", err.Message)
		}
		return 0, err
	}
	if !typesystem.IsInteger(t) {
		return 0, newError(NegativeArraySize, tok, "array length must be a non-negative integer constant, found `%s`", t)
	}
	want := typesystem.Type(typesystem.I64)
	if !typesystem.IsIntLit(t) {
		want = t
	}
	v, err := ev.eval(expr, want, scope)
	if err != nil {
		return 0, err
	}
	if v.Int.Sign() < 0 {
		return 0, newError(NegativeArraySize, tok, "array length `%s` is negative", v.Int)
	}
	if !ev.Target.Fits(typesystem.Usize, v.Int) {
		return 0, newError(NegativeArraySize, tok, "array length `%s` does not fit in `usize`", v.Int)
	}
	return v.Int.Int64(), nil
}

// TypeOf types a constant expression without evaluating it. Unsuffixed
// literals yield {integer}.
func (ev *Evaluator) TypeOf(expr ast.Expression, scope Scope) (typesystem.Type, *Error) {
	tok := expr.GetToken()
	switch n := expr.(type) {
	case *ast.IntegerLiteral:
		if n.Suffix == "" {
			return typesystem.IntLit, nil
		}
		t, ok := typesystem.PrimByName[n.Suffix]
		if !ok || !typesystem.IsInteger(t) {
			return nil, newError(InvalidOperand, tok, "invalid suffix `%s` for integer literal", n.Suffix)
		}
		return t, nil
	case *ast.BooleanLiteral:
		return typesystem.Bool, nil
	case *ast.CharLiteral:
		return typesystem.Char, nil
	case *ast.StringLiteral:
		return typesystem.TRef{Elem: typesystem.Str}, nil
	case *ast.GroupedExpression:
		return ev.TypeOf(n.Inner, scope)
	case *ast.PathExpression:
		l := scope.Constant(n)
		switch l.State {
		case Ready:
			return l.Type, nil
		case Pending:
			return nil, newError(NonConstantExpression, tok, "constant `%s` is used before it is defined", n.Name())
		case Failed:
			return nil, &Error{Kind: Reported, Token: tok}
		}
		return nil, newError(NonConstantExpression, tok, "`%s` is not a constant", n.Name())
	case *ast.PrefixExpression:
		t, err := ev.TypeOf(n.Operand, scope)
		if err != nil {
			return nil, err
		}
		switch {
		case n.Operator == "-" && typesystem.IsSigned(t):
			return t, nil
		case n.Operator == "!" && (typesystem.IsBool(t) || typesystem.IsInteger(t)):
			return t, nil
		}
		return nil, newError(InvalidOperand, tok, "cannot apply unary `%s` to type `%s`", n.Operator, t)
	case *ast.InfixExpression:
		return ev.typeOfInfix(n, scope)
	case *ast.CastExpression:
		from, err := ev.TypeOf(n.Operand, scope)
		if err != nil {
			return nil, err
		}
		to := scope.ResolveType(n.Type)
		if !typesystem.CanCast(from, to) {
			return nil, newError(InvalidCast, tok, "non-primitive cast: `%s` as `%s`", from, to)
		}
		return to, nil
	}
	return nil, newError(NonConstantExpression, tok, "expression is not a constant")
}

func (ev *Evaluator) typeOfInfix(n *ast.InfixExpression, scope Scope) (typesystem.Type, *Error) {
	tok := n.GetToken()
	lt, err := ev.TypeOf(n.Left, scope)
	if err != nil {
		return nil, err
	}
	rt, err := ev.TypeOf(n.Right, scope)
	if err != nil {
		return nil, err
	}
	switch n.Operator {
	case "<<", ">>":
		if !typesystem.IsInteger(lt) || !typesystem.IsInteger(rt) {
			return nil, newError(InvalidOperand, tok, "no implementation for `%s %s %s`", lt, n.Operator, rt)
		}
		return lt, nil
	case "&&", "||":
		if !typesystem.IsBool(lt) || !typesystem.IsBool(rt) {
			return nil, newError(Mismatch, tok, "mismatched types: `%s` requires `bool` operands, found `%s` and `%s`", n.Operator, lt, rt)
		}
		return typesystem.Bool, nil
	}
	t, uerr := typesystem.Unify(lt, rt)
	if uerr != nil {
		return nil, newError(Mismatch, tok, "mismatched types: expected `%s`, found `%s`", lt, rt)
	}
	switch n.Operator {
	case "==", "!=", "<", ">", "<=", ">=":
		return typesystem.Bool, nil
	case "&", "|", "^":
		if typesystem.IsInteger(t) || typesystem.IsBool(t) {
			return t, nil
		}
	case "+", "-", "*", "/", "%":
		if typesystem.IsInteger(t) {
			return t, nil
		}
	}
	return nil, newError(InvalidOperand, tok, "no implementation for `%s %s %s`", lt, n.Operator, rt)
}

// settle picks the evaluation width for an operand type.
func settle(t, want typesystem.Type) typesystem.Type {
	if !typesystem.IsIntLit(t) {
		return t
	}
	if want != nil && typesystem.IsInteger(want) && !typesystem.IsIntLit(want) {
		return want
	}
	return typesystem.I32
}

// Eval evaluates an already type-checked expression; want is the expected
// type of unsuffixed literals and may be nil.
func (ev *Evaluator) Eval(expr ast.Expression, want typesystem.Type, scope Scope) (Value, *Error) {
	if _, err := ev.TypeOf(expr, scope); err != nil {
		return Value{}, err
	}
	return ev.eval(expr, want, scope)
}

func (ev *Evaluator) eval(expr ast.Expression, want typesystem.Type, scope Scope) (Value, *Error) {
	tok := expr.GetToken()
	switch n := expr.(type) {
	case *ast.IntegerLiteral:
		return ev.literal(n, n.Value, want)
	case *ast.BooleanLiteral:
		return NewBoolValue(n.Value), nil
	case *ast.CharLiteral:
		return NewCharValue(n.Value), nil
	case *ast.StringLiteral:
		return NewStrValue(n.Value), nil
	case *ast.GroupedExpression:
		return ev.eval(n.Inner, want, scope)
	case *ast.PathExpression:
		return scope.Constant(n).Value, nil
	case *ast.PrefixExpression:
		if lit, ok := n.Operand.(*ast.IntegerLiteral); ok && n.Operator == "-" {
			return ev.literal(lit, new(big.Int).Neg(lit.Value), want)
		}
		v, err := ev.eval(n.Operand, want, scope)
		if err != nil {
			return Value{}, err
		}
		return Unary(ev.Target, n.Operator, v, tok)
	case *ast.InfixExpression:
		lt, _ := ev.TypeOf(n.Left, scope)
		rt, _ := ev.TypeOf(n.Right, scope)
		var lw, rw typesystem.Type
		switch n.Operator {
		case "<<", ">>":
			lw, rw = settle(lt, want), settle(rt, nil)
		case "==", "!=", "<", ">", "<=", ">=":
			t, _ := typesystem.Unify(lt, rt)
			lw = settle(t, nil)
			rw = lw
		default:
			t, _ := typesystem.Unify(lt, rt)
			lw = settle(t, want)
			rw = lw
		}
		l, err := ev.eval(n.Left, lw, scope)
		if err != nil {
			return Value{}, err
		}
		r, err := ev.eval(n.Right, rw, scope)
		if err != nil {
			return Value{}, err
		}
		return Binary(ev.Target, n.Operator, l, r, lw, tok)
	case *ast.CastExpression:
		v, err := ev.eval(n.Operand, nil, scope)
		if err != nil {
			return Value{}, err
		}
		return CastValue(ev.Target, v, scope.ResolveType(n.Type), tok)
	}
	return Value{}, newError(NonConstantExpression, tok, "expression is not a constant")
}

func (ev *Evaluator) literal(n *ast.IntegerLiteral, v *big.Int, want typesystem.Type) (Value, *Error) {
	t := typesystem.Type(typesystem.IntLit)
	if n.Suffix != "" {
		t = typesystem.PrimByName[n.Suffix]
	}
	t = settle(t, want)
	if !ev.Target.Fits(t, v) {
		return Value{}, newError(Overflow, n.GetToken(), "literal out of range for `%s`: `%s`", t, v)
	}
	return NewIntValue(v, t), nil
}
