package consteval

import (
	"fmt"
	"github.com/funvibe/rcheck/internal/typesystem"
	"math/big"
	"strconv"
)

// ConstKind categorizes the type of constant value
type ConstKind int

const (
	ConstUnknown ConstKind = iota // Not a constant or cannot be evaluated
	ConstInt                      // Integer constant (*big.Int)
	ConstBool
	ConstChar
	ConstUnit
	ConstStr
)

// Value is a compile-time known constant.
type Value struct {
	Kind ConstKind
	Type typesystem.Type
	Int  *big.Int
	Bool bool
	Char rune
	Str  string
}

// NewIntValue creates a constant integer value; v is copied.
func NewIntValue(v *big.Int, t typesystem.Type) Value {
	return Value{Kind: ConstInt, Type: t, Int: new(big.Int).Set(v)}
}

func NewBoolValue(b bool) Value {
	return Value{Kind: ConstBool, Type: typesystem.Bool, Bool: b}
}

func NewCharValue(c rune) Value {
	return Value{Kind: ConstChar, Type: typesystem.Char, Char: c}
}

func NewStrValue(s string) Value {
	return Value{Kind: ConstStr, Type: typesystem.TRef{Elem: typesystem.Str}, Str: s}
}

func UnitValue() Value {
	return Value{Kind: ConstUnit, Type: typesystem.Unit}
}

// IsConstant reports whether the value was evaluated.
func (v Value) IsConstant() bool {
	return v.Kind != ConstUnknown
}

// AsInt64 returns the integer value if it fits an int64.
func (v Value) AsInt64() (int64, bool) {
	if v.Kind != ConstInt || !v.Int.IsInt64() {
		return 0, false
	}
	return v.Int.Int64(), true
}

func (v Value) String() string {
	switch v.Kind {
	case ConstInt:
		return v.Int.String()
	case ConstBool:
		return strconv.FormatBool(v.Bool)
	case ConstChar:
		return strconv.QuoteRune(v.Char)
	case ConstUnit:
		return "()"
	case ConstStr:
		return strconv.Quote(v.Str)
	}
	return "<unknown>"
}

// Equal compares two values of the same kind.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case ConstInt:
		return v.Int.Cmp(o.Int) == 0
	case ConstBool:
		return v.Bool == o.Bool
	case ConstChar:
		return v.Char == o.Char
	case ConstStr:
		return v.Str == o.Str
	}
	return true
}

// GoString helps test failure output.
func (v Value) GoString() string {
	return fmt.Sprintf("%s: %s", v.String(), v.Type)
}
