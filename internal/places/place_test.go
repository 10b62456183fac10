package places

import (
	"testing"

	"github.com/funvibe/rcheck/internal/ast"
	"github.com/funvibe/rcheck/internal/symbols"
	"github.com/funvibe/rcheck/internal/typesystem"
)

func local(name string, t typesystem.Type) *symbols.Symbol {
	return &symbols.Symbol{Name: name, Kind: symbols.VariableSymbol, Type: t}
}

func TestConflicts(t *testing.T) {
	p := local("p", nil)
	q := local("q", nil)
	arr := local("arr", nil)

	tests := []struct {
		name string
		a, b Place
		want bool
	}{
		{"same place", Of(p), Of(p), true},
		{"whole and field", Of(p), Of(p).Field("x"), true},
		{"field and whole", Of(p).Field("x"), Of(p), true},
		{"siblings", Of(p).Field("x"), Of(p).Field("y"), false},
		{"nested sibling", Of(p).Field("x").Field("a"), Of(p).Field("y"), false},
		{"nested under field", Of(p).Field("x").Field("a"), Of(p).Field("x"), true},
		{"different roots", Of(p), Of(q), false},
		{"any two indices", Of(arr).Index(), Of(arr).Index(), true},
		{"element and array", Of(arr), Of(arr).Index(), true},
		{"through deref", Of(p).Deref().Field("x"), Of(p), true},
		{"deref and field", Of(p).Deref(), Of(p).Field("x"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Conflicts(tt.b); got != tt.want {
				t.Errorf("%s conflicts %s = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if got := tt.b.Conflicts(tt.a); got != tt.want {
				t.Errorf("conflict is not symmetric for %s and %s", tt.a, tt.b)
			}
		})
	}
}

func TestPrefix(t *testing.T) {
	p := local("p", nil)
	whole, field := Of(p), Of(p).Field("x")
	if !whole.IsStrictPrefixOf(field) {
		t.Errorf("%s should be a strict prefix of %s", whole, field)
	}
	if whole.IsStrictPrefixOf(whole) {
		t.Errorf("a place is not a strict prefix of itself")
	}
	if parent, ok := field.Parent(); !ok || !parent.Equal(whole) {
		t.Errorf("parent of %s = %s, want %s", field, parent, whole)
	}
	if _, ok := whole.Parent(); ok {
		t.Errorf("root place has no parent")
	}
}

func TestProjectionsDoNotAlias(t *testing.T) {
	base := Of(local("p", nil)).Field("a")
	x := base.Field("x")
	y := base.Field("y")
	if x.Equal(y) {
		t.Errorf("projections of one base share storage: %s == %s", x, y)
	}
}

func TestString(t *testing.T) {
	p := local("p", nil)
	tests := []struct {
		place Place
		want  string
	}{
		{Of(p), "p"},
		{Of(p).Field("x"), "p.x"},
		{Of(p).Index(), "p[..]"},
		{Of(p).Deref(), "*p"},
		{Of(p).Field("r").Deref(), "*(p.r)"},
		{Of(p).Deref().Field("x"), "(*p).x"},
	}
	for _, tt := range tests {
		if got := tt.place.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestType(t *testing.T) {
	point := &typesystem.TStruct{Name: "Point", Fields: []typesystem.Field{{Name: "x", Type: typesystem.I64}}}
	r := local("r", typesystem.TRef{Elem: point, Mutable: true})
	arr := local("a", typesystem.TArray{Elem: typesystem.U8, Len: 3})

	if got := Of(r).Deref().Field("x").Type(); !typesystem.Equal(got, typesystem.I64) {
		t.Errorf("(*r).x type = %s, want i64", got)
	}
	if got := Of(arr).Index().Type(); !typesystem.Equal(got, typesystem.U8) {
		t.Errorf("a[..] type = %s, want u8", got)
	}
	if got := Of(arr).Field("x").Type(); !typesystem.IsUnresolved(got) {
		t.Errorf("field of an array = %s, want unresolved", got)
	}
}

type fakeResolver struct {
	syms  map[*ast.PathExpression]*symbols.Symbol
	types map[ast.Expression]typesystem.Type
}

func (f fakeResolver) SymbolOf(p *ast.PathExpression) *symbols.Symbol { return f.syms[p] }

func (f fakeResolver) TypeOf(e ast.Expression) typesystem.Type {
	if t, ok := f.types[e]; ok {
		return t
	}
	return typesystem.Unresolved
}

func TestFromExpression(t *testing.T) {
	point := &typesystem.TStruct{Name: "Point", Fields: []typesystem.Field{{Name: "x", Type: typesystem.I32}}}
	p := local("p", point)
	r := local("r", typesystem.TRef{Elem: point})
	limit := &symbols.Symbol{Name: "LIMIT", Kind: symbols.ConstantSymbol, Type: typesystem.I32}

	pPath, rPath, cPath := ast.P("p"), ast.P("r"), ast.P("LIMIT")
	res := fakeResolver{
		syms:  map[*ast.PathExpression]*symbols.Symbol{pPath: p, rPath: r, cPath: limit},
		types: map[ast.Expression]typesystem.Type{pPath: point, rPath: r.Type},
	}

	if got, ok := FromExpression(ast.Fld(pPath, "x"), res); !ok || got.String() != "p.x" {
		t.Errorf("p.x => %s, %v", got, ok)
	}
	got, ok := FromExpression(ast.Fld(rPath, "x"), res)
	if !ok || !got.HasDeref() || got.String() != "(*r).x" {
		t.Errorf("field through a reference => %s, %v", got, ok)
	}
	if _, ok := FromExpression(cPath, res); ok {
		t.Errorf("constants are not places")
	}
	if _, ok := FromExpression(ast.Int(1), res); ok {
		t.Errorf("literals are not places")
	}
}
