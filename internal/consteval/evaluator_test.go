package consteval

import (
	. "github.com/funvibe/rcheck/internal/ast"
	"github.com/funvibe/rcheck/internal/typesystem"
	"math/big"
	"testing"
)

// fakeScope serves a fixed set of constants.
type fakeScope struct {
	consts  map[string]Value
	pending map[string]bool
}

func (s fakeScope) Constant(path *PathExpression) Lookup {
	name := path.Name()
	if v, ok := s.consts[name]; ok {
		return Lookup{State: Ready, Type: v.Type, Value: v}
	}
	if s.pending[name] {
		return Lookup{State: Pending}
	}
	if name == "BROKEN" {
		return Lookup{State: Failed, Type: typesystem.I32}
	}
	return Lookup{State: NotConstant}
}

func (s fakeScope) ResolveType(t Type) typesystem.Type {
	if nt, ok := t.(*NamedType); ok {
		if p, ok := typesystem.PrimByName[nt.Name]; ok {
			return p
		}
	}
	return typesystem.Unresolved
}

func newScope() fakeScope {
	tg := typesystem.DefaultTarget
	return fakeScope{
		consts: map[string]Value{
			"i32::MAX": NewIntValue(tg.Max(typesystem.I32), typesystem.I32),
			"i32::MIN": NewIntValue(tg.Min(typesystem.I32), typesystem.I32),
			"N":        NewIntValue(big.NewInt(4), typesystem.I32),
			"NEG":      NewIntValue(big.NewInt(-2), typesystem.I32),
			"FLAG":     NewBoolValue(true),
		},
		pending: map[string]bool{"LATER": true},
	}
}

func TestEvalConst(t *testing.T) {
	ev := New(typesystem.DefaultTarget)
	tests := []struct {
		name     string
		expr     Expression
		declared typesystem.Type
		want     string
		wantType string
	}{
		{"fold", Bin("+", Int(100), Int(200)), typesystem.I32, "300", "i32"},
		{"grouping", Bin("*", Grp(Bin("+", Int(1), Int(2))), Int(3)), typesystem.I64, "9", "i64"},
		{"const ref", Bin("*", P("N"), Int(2)), typesystem.I32, "8", "i32"},
		{"negative literal", Neg(IntS(128, "i8")), nil, "-128", "i8"},
		{"comparison", Bin("<", Int(1), Int(2)), typesystem.Bool, "true", "bool"},
		{"logic", Bin("&&", P("FLAG"), Not(Bool(false))), typesystem.Bool, "true", "bool"},
		{"bitwise", Bin("|", IntS(12, "u8"), Int(3)), nil, "15", "u8"},
		{"shift", Bin("<<", Int(1), Int(4)), typesystem.U32, "16", "u32"},
		{"not unsigned", Not(IntS(0, "u8")), nil, "255", "u8"},
		{"truncating cast", Cast(Int(300), Ty("u8")), typesystem.U8, "44", "u8"},
		{"bool cast", Cast(Bool(true), Ty("i32")), nil, "1", "i32"},
		{"char cast", Cast(Chr('A'), Ty("u32")), nil, "65", "u32"},
		{"u8 to char", Cast(IntS(97, "u8"), Ty("char")), typesystem.Char, "'a'", "char"},
		{"i32 to char", Cast(IntS(65, "i32"), Ty("char")), typesystem.Char, "'A'", "char"},
		{"int to bool", Cast(Int(2), Ty("bool")), typesystem.Bool, "true", "bool"},
		{"zero to bool", Cast(Int(0), Ty("bool")), typesystem.Bool, "false", "bool"},
		{"char to bool", Cast(Chr('x'), Ty("bool")), typesystem.Bool, "true", "bool"},
		{"remainder", Bin("%", Neg(Int(7)), Int(3)), nil, "-1", "i32"},
		{"division truncates", Bin("/", Neg(Int(7)), Int(2)), nil, "-3", "i32"},
		{"string", Str("hi"), nil, `"hi"`, "&str"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ev.EvalConst(tt.expr, tt.declared, newScope())
			if err != nil {
				t.Fatalf("EvalConst: %v", err)
			}
			if v.String() != tt.want || v.Type.String() != tt.wantType {
				t.Errorf("got %#v, want %s: %s", v, tt.want, tt.wantType)
			}
		})
	}
}

func TestEvalConstErrors(t *testing.T) {
	ev := New(typesystem.DefaultTarget)
	tests := []struct {
		name     string
		expr     Expression
		declared typesystem.Type
		want     ErrorKind
	}{
		{"max plus one", Bin("+", P("i32::MAX"), Int(1)), nil, Overflow},
		{"min minus one", Bin("-", P("i32::MIN"), Int(1)), typesystem.I32, Overflow},
		{"negate min", Neg(P("i32::MIN")), nil, Overflow},
		{"min div minus one", Bin("/", P("i32::MIN"), Neg(Int(1))), nil, Overflow},
		{"division by zero", Bin("/", Int(10), Int(0)), nil, DivisionByZero},
		{"remainder by zero", Bin("%", Int(10), Int(0)), typesystem.U8, DivisionByZero},
		{"literal out of range", Int(256), typesystem.U8, Overflow},
		{"shift too far", Bin("<<", IntS(1, "u8"), Int(8)), nil, Overflow},
		{"declared bool", Int(5), typesystem.Bool, Mismatch},
		{"operand mismatch", Bin("+", IntS(1, "u8"), IntS(1, "i32")), nil, Mismatch},
		{"runtime value", Bin("+", P("x"), Int(1)), nil, NonConstantExpression},
		{"forward reference", P("LATER"), typesystem.I32, NonConstantExpression},
		{"call", CallN("f"), nil, NonConstantExpression},
		{"unsigned negation", Neg(IntS(1, "u32")), nil, InvalidOperand},
		{"bad cast", Cast(Int(1), Ty("String")), nil, InvalidCast},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ev.EvalConst(tt.expr, tt.declared, newScope())
			if err == nil {
				t.Fatalf("expected error, got %#v", v)
			}
			if err.Kind != tt.want {
				t.Errorf("kind = %d (%s), want %d", err.Kind, err.Message, tt.want)
			}
		})
	}
}

// Type checking against the declared type happens before any reduction:
// the division by zero in the value is never reached.
func TestDeclaredTypeCheckedFirst(t *testing.T) {
	ev := New(typesystem.DefaultTarget)
	_, err := ev.EvalConst(Bin("/", Int(1), Int(0)), typesystem.Bool, newScope())
	if err == nil || err.Kind != Mismatch {
		t.Fatalf("expected a type mismatch before evaluation, got %v", err)
	}
}

func TestEvalArraySize(t *testing.T) {
	ev := New(typesystem.DefaultTarget)
	tests := []struct {
		name    string
		expr    Expression
		want    int64
		wantErr ErrorKind
	}{
		{"literal", Int(3), 3, -1},
		{"const", P("N"), 4, -1},
		{"expression", Bin("+", P("N"), Int(1)), 5, -1},
		{"negative const", P("NEG"), 0, NegativeArraySize},
		{"negative literal", Neg(Int(1)), 0, NegativeArraySize},
		{"bool", P("FLAG"), 0, NegativeArraySize},
		{"runtime", P("n"), 0, NegativeArraySize},
		{"divide by zero", Bin("/", Int(4), Int(0)), 0, DivisionByZero},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ev.EvalArraySize(tt.expr, newScope())
			if tt.wantErr < 0 {
				if err != nil {
					t.Fatalf("EvalArraySize: %v", err)
				}
				if got != tt.want {
					t.Errorf("size = %d, want %d", got, tt.want)
				}
				return
			}
			if err == nil || err.Kind != tt.wantErr {
				t.Errorf("err = %v, want kind %d", err, tt.wantErr)
			}
		})
	}
}

func TestErrorCodes(t *testing.T) {
	if (&Error{Kind: NegativeArraySize}).Code() == (&Error{Kind: NonConstantExpression}).Code() {
		t.Errorf("array size failures need their own code")
	}
	d := (&Error{Kind: DivisionByZero, Message: "x"}).Diagnostic()
	if d.Code.Subkind() != "DivisionByZero" {
		t.Errorf("subkind = %q", d.Code.Subkind())
	}
}

func TestFailedConstantIsSilent(t *testing.T) {
	ev := New(typesystem.DefaultTarget)
	_, err := ev.EvalConst(Bin("+", P("BROKEN"), Int(1)), typesystem.I32, newScope())
	if err == nil || !err.Silent() {
		t.Fatalf("expected a silent error, got %v", err)
	}
	if _, err := ev.EvalArraySize(P("BROKEN"), newScope()); err == nil || !err.Silent() {
		t.Errorf("array size over a failed constant must stay silent, got %v", err)
	}
}
