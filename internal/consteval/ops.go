package consteval

import (
	"github.com/funvibe/rcheck/internal/token"
	"github.com/funvibe/rcheck/internal/typesystem"
	"math/big"
)

// checked returns v as a value of integer type t, or an overflow error.
func checked(tg typesystem.Target, t typesystem.Type, v *big.Int, tok token.Token, what string) (Value, *Error) {
	if !tg.Fits(t, v) {
		return Value{}, newError(Overflow, tok, "attempt to %s with overflow: result does not fit in `%s`", what, t)
	}
	return NewIntValue(v, t), nil
}

// Binary evaluates `l op r` at the width of t. For comparisons t is the
// operand type; the result is bool.
func Binary(tg typesystem.Target, op string, l, r Value, t typesystem.Type, tok token.Token) (Value, *Error) {
	switch op {
	case "==", "!=", "<", ">", "<=", ">=":
		return compare(op, l, r, tok)
	case "&&":
		return NewBoolValue(l.Bool && r.Bool), nil
	case "||":
		return NewBoolValue(l.Bool || r.Bool), nil
	}

	if l.Kind == ConstBool && r.Kind == ConstBool {
		switch op {
		case "&":
			return NewBoolValue(l.Bool && r.Bool), nil
		case "|":
			return NewBoolValue(l.Bool || r.Bool), nil
		case "^":
			return NewBoolValue(l.Bool != r.Bool), nil
		}
		return Value{}, newError(InvalidOperand, tok, "cannot apply `%s` to `bool`", op)
	}
	if l.Kind != ConstInt || r.Kind != ConstInt {
		return Value{}, newError(InvalidOperand, tok, "cannot apply `%s` to `%s` and `%s`", op, l.Type, r.Type)
	}

	a, b := l.Int, r.Int
	res := new(big.Int)
	switch op {
	case "+":
		return checked(tg, t, res.Add(a, b), tok, "add")
	case "-":
		return checked(tg, t, res.Sub(a, b), tok, "subtract")
	case "*":
		return checked(tg, t, res.Mul(a, b), tok, "multiply")
	case "/":
		if b.Sign() == 0 {
			return Value{}, newError(DivisionByZero, tok, "attempt to divide `%s` by zero", a)
		}
		return checked(tg, t, res.Quo(a, b), tok, "divide")
	case "%":
		if b.Sign() == 0 {
			return Value{}, newError(DivisionByZero, tok, "attempt to calculate the remainder of `%s` with a divisor of zero", a)
		}
		if _, err := checked(tg, t, new(big.Int).Quo(a, b), tok, "calculate the remainder"); err != nil {
			return Value{}, err
		}
		return NewIntValue(res.Rem(a, b), t), nil
	case "&":
		return NewIntValue(tg.Wrap(t, res.And(a, b)), t), nil
	case "|":
		return NewIntValue(tg.Wrap(t, res.Or(a, b)), t), nil
	case "^":
		return NewIntValue(tg.Wrap(t, res.Xor(a, b)), t), nil
	case "<<", ">>":
		bits := tg.Bits(t)
		if b.Sign() < 0 || b.Cmp(big.NewInt(int64(bits))) >= 0 {
			return Value{}, newError(Overflow, tok, "attempt to shift `%s` by `%s` with overflow", a, b)
		}
		n := uint(b.Int64())
		if op == "<<" {
			return NewIntValue(tg.Wrap(t, res.Lsh(a, n)), t), nil
		}
		return NewIntValue(res.Rsh(a, n), t), nil
	}
	return Value{}, newError(InvalidOperand, tok, "unsupported operator `%s` in constant expression", op)
}

func compare(op string, l, r Value, tok token.Token) (Value, *Error) {
	var c int
	switch {
	case l.Kind == ConstInt && r.Kind == ConstInt:
		c = l.Int.Cmp(r.Int)
	case l.Kind == ConstChar && r.Kind == ConstChar:
		c = cmpOrdered(l.Char, r.Char)
	case l.Kind == ConstBool && r.Kind == ConstBool:
		c = cmpOrdered(b2i(l.Bool), b2i(r.Bool))
	case l.Kind == ConstStr && r.Kind == ConstStr:
		c = cmpOrdered(l.Str, r.Str)
	case l.Kind == ConstUnit && r.Kind == ConstUnit:
		c = 0
	default:
		return Value{}, newError(InvalidOperand, tok, "cannot compare `%s` with `%s`", l.Type, r.Type)
	}
	var res bool
	switch op {
	case "==":
		res = c == 0
	case "!=":
		res = c != 0
	case "<":
		res = c < 0
	case ">":
		res = c > 0
	case "<=":
		res = c <= 0
	case ">=":
		res = c >= 0
	}
	return NewBoolValue(res), nil
}

func cmpOrdered[T rune | int | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Unary evaluates a prefix operator.
func Unary(tg typesystem.Target, op string, v Value, tok token.Token) (Value, *Error) {
	switch {
	case op == "!" && v.Kind == ConstBool:
		return NewBoolValue(!v.Bool), nil
	case op == "!" && v.Kind == ConstInt:
		// Bitwise not: -v-1 within the width of the type.
		res := new(big.Int).Not(v.Int)
		return NewIntValue(tg.Wrap(v.Type, res), v.Type), nil
	case op == "-" && v.Kind == ConstInt:
		if !typesystem.IsSigned(v.Type) {
			return Value{}, newError(InvalidOperand, tok, "cannot apply unary `-` to type `%s`", v.Type)
		}
		return checked(tg, v.Type, new(big.Int).Neg(v.Int), tok, "negate")
	}
	return Value{}, newError(InvalidOperand, tok, "cannot apply unary `%s` to `%s`", op, v.Type)
}

// CastValue evaluates `v as to`. Integer casts truncate like the target
// machine. Casting to bool tests for zero; casting to char keeps the low
// eight bits.
func CastValue(tg typesystem.Target, v Value, to typesystem.Type, tok token.Token) (Value, *Error) {
	var n *big.Int
	switch v.Kind {
	case ConstInt:
		n = v.Int
	case ConstBool:
		n = big.NewInt(int64(b2i(v.Bool)))
	case ConstChar:
		n = big.NewInt(int64(v.Char))
	default:
		return Value{}, newError(InvalidCast, tok, "non-primitive cast: `%s` as `%s`", v.Type, to)
	}
	switch {
	case typesystem.IsInteger(to):
		return NewIntValue(tg.Wrap(to, n), to), nil
	case typesystem.IsChar(to):
		if v.Kind == ConstChar {
			return v, nil
		}
		return NewCharValue(rune(tg.Wrap(typesystem.U8, n).Int64())), nil
	case typesystem.IsBool(to):
		if v.Kind == ConstBool {
			return v, nil
		}
		return NewBoolValue(n.Sign() != 0), nil
	}
	return Value{}, newError(InvalidCast, tok, "non-primitive cast: `%s` as `%s`", v.Type, to)
}
