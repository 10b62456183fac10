package ast

import (
	"os"
	"strings"
	"testing"
)

func TestBlkPromotesTrailingExpression(t *testing.T) {
	b := Blk(Semi(CallN("print", Str("a"))), Expr(Int(1)))
	if b.Tail == nil {
		t.Fatalf("expected tail")
	}
	if len(b.Statements) != 1 {
		t.Errorf("expected 1 statement, got %d", len(b.Statements))
	}

	b = Blk(Semi(Int(1)))
	if b.Tail != nil {
		t.Errorf("block ending in `;` must have no tail")
	}
}

func TestAssignPositionsIsPreorder(t *testing.T) {
	read := P("x")
	c := Main(
		Let("x", nil, Int(5)),
		Let("y", nil, RefMut(P("x"))),
		Semi(CallN("printlnInt", read)),
	)
	var last int
	Inspect(c, func(n Node) bool {
		if _, ok := n.(*Crate); ok {
			return true
		}
		line := n.GetToken().Line
		if line <= last {
			t.Errorf("%T at line %d after line %d", n, line, last)
		}
		last = line
		return true
	})
	if read.GetToken().Line == 0 {
		t.Errorf("nested node left without position")
	}
}

func TestAssignPositionsKeepsExisting(t *testing.T) {
	lit := Int(1)
	lit.Token.Line, lit.Token.Column = 40, 2
	c := Main(Semi(lit))
	if lit.Token.Line != 40 || lit.Token.Column != 2 {
		t.Errorf("position overwritten: %s", lit.Token)
	}
	_ = c
}

func TestChildrenListsVariadicOperands(t *testing.T) {
	a, b := Int(1), Int(2)
	tests := []struct {
		name string
		node Node
		want []Node
	}{
		{"array elements", Arr(a, b), []Node{a, b}},
		{"call arguments", Call(P("f"), a, b), nil},
		{"method arguments", MCall(P("s"), "append", a, b), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Children(tt.node)
			if len(got) < 2 || got[len(got)-2] != Node(a) || got[len(got)-1] != Node(b) {
				t.Fatalf("children = %v, want trailing %v %v", got, a, b)
			}
			if tt.want != nil && len(got) != len(tt.want) {
				t.Errorf("children = %d, want %d", len(got), len(tt.want))
			}
		})
	}
}

func TestPathName(t *testing.T) {
	if got := P("Color::Red").Name(); got != "Color::Red" {
		t.Errorf("Name() = %q", got)
	}
	if n := len(P("x").Segments); n != 1 {
		t.Errorf("segments = %d", n)
	}
}

func TestDecodeFixture(t *testing.T) {
	f, err := os.Open("testdata/point.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	c, err := Decode(f)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if c.File != "point.rs" || len(c.Items) != 3 {
		t.Fatalf("got file %q with %d items", c.File, len(c.Items))
	}
	st, ok := c.Items[0].(*StructItem)
	if !ok || len(st.Fields) != 2 || st.Fields[1].Name.Value != "y" {
		t.Fatalf("bad struct item %#v", c.Items[0])
	}
	ci := c.Items[1].(*ConstItem)
	if ci.Token.Line != 5 {
		t.Errorf("explicit position lost: %s", ci.Token)
	}
	if ci.Token.File != "point.rs" {
		t.Errorf("file not stamped: %q", ci.Token.File)
	}
	main := c.Items[2].(*FunctionItem)
	if main.Body.Tail == nil {
		t.Fatalf("trailing expr statement should be the tail")
	}
	if _, ok := main.Body.Tail.(*IfExpression); !ok {
		t.Errorf("tail is %T", main.Body.Tail)
	}
	if len(main.Body.Statements) != 5 {
		t.Fatalf("statements = %d", len(main.Body.Statements))
	}
	let := main.Body.Statements[0].(*LetStatement)
	if p := let.Pattern.(*IdentifierPattern); !p.Mutable || p.Name.Value != "p" {
		t.Errorf("bad pattern %#v", p)
	}
	lit := let.Value.(*StructLiteral)
	if lit.Fields[0].Name.Value != "x" || lit.Fields[1].Name.Value != "y" {
		t.Errorf("struct literal fields out of order")
	}
	asg := main.Body.Statements[2].(*ExpressionStatement).Expression.(*AssignExpression)
	if asg.Operator != "+=" {
		t.Errorf("operator = %q", asg.Operator)
	}
	arr := main.Body.Statements[1].(*LetStatement).Type.(*ArrayType)
	if p, ok := arr.Size.(*PathExpression); !ok || p.Name() != "N" {
		t.Errorf("array size = %#v", arr.Size)
	}
}

func TestDecodeJSON(t *testing.T) {
	src := `{"items": [{"fn": {"name": "main", "ret": "i32", "body": [{"expr": {"int": {"value": 7, "suffix": "u8"}}}]}}]}`
	c, err := DecodeString(src)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	fn := c.Items[0].(*FunctionItem)
	lit := fn.Body.Tail.(*IntegerLiteral)
	if lit.Suffix != "u8" || lit.Value.Int64() != 7 {
		t.Errorf("got %s%s", lit.Value, lit.Suffix)
	}
}

func TestDecodePositionForms(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
	}{
		{"beside kind", `items: [{const: {name: C, type: i32, value: 1}, at: "7:3"}]`, 7},
		{"inside body", `items: [{const: {name: C, type: i32, value: 1, at: "8:2"}}]`, 8},
		{"outer wins", `items: [{const: {name: C, type: i32, value: 1, at: "8:2"}, at: "9:1"}]`, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := DecodeString(tt.src)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if got := c.Items[0].GetToken().Line; got != tt.line {
				t.Errorf("line = %d, want %d", got, tt.line)
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"no items", "file: a.rs\n", "crate has no items"},
		{"unknown item", "items: [{module: {}}]\n", `unknown item kind "module"`},
		{"unknown expr", "items: [{fn: {name: f, body: [{expr: {lambda: 1}}]}}]\n", `unknown expression kind "lambda"`},
		{"bad arity", "items: [{fn: {name: f, body: [{expr: {bin: [\"+\", 1]}}]}}]\n", "bin needs 3 operands"},
		{"two kinds", "items: [{fn: {name: f}, const: {name: C}}]\n", "node has both"},
		{"bad position", "items: [{fn: {name: f}, at: nowhere}]\n", "bad position"},
		{"bad inner position", "items: [{fn: {name: f, at: nowhere}}]\n", "bad position"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeString(tt.src)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}
