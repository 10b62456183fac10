package analyzer

import (
	"github.com/funvibe/rcheck/internal/ast"
	"github.com/funvibe/rcheck/internal/config"
	"github.com/funvibe/rcheck/internal/diagnostics"
	"github.com/funvibe/rcheck/internal/symbols"
	"strings"
	"testing"
)

// analyzeCrate runs every analyzer pass over c with the default options.
func analyzeCrate(c *ast.Crate) (*Info, *diagnostics.Bag) {
	return analyzeWith(c, config.DefaultOptions())
}

func analyzeWith(c *ast.Crate, opts config.Options) (*Info, *diagnostics.Bag) {
	bag := diagnostics.NewBag(0)
	a := New(symbols.NewSymbolTable(), bag, opts)
	return a.Analyze(c), bag
}

func dump(bag *diagnostics.Bag) string {
	var msgs []string
	for _, d := range bag.Diagnostics() {
		msgs = append(msgs, d.Error())
	}
	return strings.Join(msgs, "\n")
}

// expectError asserts that analysis reports at least one diagnostic with code.
func expectError(t *testing.T, c *ast.Crate, code diagnostics.ErrorCode) *diagnostics.DiagnosticError {
	t.Helper()
	_, bag := analyzeCrate(c)
	for _, d := range bag.Diagnostics() {
		if d.Code == code {
			return d
		}
	}
	if !bag.HasErrors() {
		t.Fatalf("expected error %s, but got none", code)
	}
	t.Fatalf("expected error %s, got:\n%s", code, dump(bag))
	return nil
}

// expectErrorContains asserts an error with code whose message contains substr.
func expectErrorContains(t *testing.T, c *ast.Crate, code diagnostics.ErrorCode, substr string) {
	t.Helper()
	d := expectError(t, c, code)
	if !strings.Contains(d.Message, substr) {
		t.Errorf("expected error message to contain %q, got: %s", substr, d.Message)
	}
}

// expectNoErrors asserts that analysis produces no diagnostics and returns the typed view.
func expectNoErrors(t *testing.T, c *ast.Crate) *Info {
	t.Helper()
	info, bag := analyzeCrate(c)
	if len(bag.Diagnostics()) > 0 {
		t.Fatalf("expected no errors, got:\n%s", dump(bag))
	}
	return info
}

// ---------------------------------------------------------------------------
// Names
// ---------------------------------------------------------------------------

func TestN001_UndeclaredValue(t *testing.T) {
	c := ast.Main(ast.Semi(ast.CallN("printlnInt", ast.P("y"))))
	expectErrorContains(t, c, diagnostics.ErrN001, "`y`")
}

func TestN001_UndeclaredType(t *testing.T) {
	c := ast.Main(ast.Let("x", ast.Ty("Missing"), nil))
	expectError(t, c, diagnostics.ErrN001)
}

func TestN002_DuplicateFunction(t *testing.T) {
	c := ast.NewCrate(
		ast.Fn("f", nil, nil, ast.Blk()),
		ast.Fn("f", nil, nil, ast.Blk()),
	)
	d := expectError(t, c, diagnostics.ErrN002)
	if len(d.Secondary) != 1 {
		t.Errorf("expected a note on the first definition, got %v", d.Secondary)
	}
}

func TestN002_DuplicateParameter(t *testing.T) {
	c := ast.NewCrate(ast.Fn("f", ast.Params(ast.Prm("a", ast.Ty("i32")), ast.Prm("a", ast.Ty("i32"))), nil, ast.Blk()))
	expectError(t, c, diagnostics.ErrN002)
}

func TestN002_DuplicateVariant(t *testing.T) {
	c := ast.NewCrate(ast.EnumDef("Color", "Red", "Red"))
	expectError(t, c, diagnostics.ErrN002)
}

func TestShadowingInOneBlockIsAllowed(t *testing.T) {
	c := ast.Main(
		ast.Let("x", nil, ast.Int(1)),
		ast.Let("x", nil, ast.Bool(true)),
		ast.Semi(ast.If(ast.P("x"), ast.Blk(), nil)),
	)
	expectNoErrors(t, c)
}

func TestN003_UnknownField(t *testing.T) {
	c := ast.MainWith(
		[]ast.Item{ast.StructDef("Point", ast.FD("x", ast.Ty("i32")))},
		ast.Let("p", nil, ast.StructLit("Point", ast.FI("x", ast.Int(1)))),
		ast.Semi(ast.Fld(ast.P("p"), "z")),
	)
	expectErrorContains(t, c, diagnostics.ErrN003, "`z`")
}

func TestN004_UnknownMethod(t *testing.T) {
	c := ast.Main(
		ast.Let("s", nil, ast.CallN("String::new")),
		ast.Semi(ast.MCall(ast.P("s"), "push")),
	)
	expectError(t, c, diagnostics.ErrN004)
}

func TestN004_UnknownVariant(t *testing.T) {
	c := ast.MainWith(
		[]ast.Item{ast.EnumDef("Color", "Red")},
		ast.Let("c", nil, ast.P("Color::Blue")),
	)
	expectErrorContains(t, c, diagnostics.ErrN004, "Blue")
}

func TestN005_MissingTraitItem(t *testing.T) {
	c := ast.NewCrate(
		ast.Trait("Shape", ast.Method("area", ast.SelfRef(), nil, ast.Ty("i32"), nil)),
		ast.StructDef("Square"),
		ast.ImplTrait("Shape", "Square"),
	)
	expectErrorContains(t, c, diagnostics.ErrN005, "`area`")
}

func TestN005_ExtraTraitItem(t *testing.T) {
	c := ast.NewCrate(
		ast.Trait("Shape"),
		ast.StructDef("Square"),
		ast.ImplTrait("Shape", "Square", ast.Fn("extra", nil, nil, ast.Blk())),
	)
	expectError(t, c, diagnostics.ErrN005)
}

func TestN006_TypeNameIsNotAType(t *testing.T) {
	c := ast.NewCrate(
		ast.Fn("helper", nil, nil, ast.Blk()),
		ast.Fn("main", nil, nil, ast.Blk(ast.Let("x", ast.Ty("helper"), nil))),
	)
	expectError(t, c, diagnostics.ErrN006)
}

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

func TestT001_LetAnnotationMismatch(t *testing.T) {
	c := ast.Main(ast.Let("x", ast.Ty("i32"), ast.Bool(true)))
	expectErrorContains(t, c, diagnostics.ErrT001, "expected `i32`, found `bool`")
}

func TestT001_OperandMismatch(t *testing.T) {
	c := ast.Main(ast.Let("x", nil, ast.Bin("+", ast.Int(1), ast.Bool(true))))
	expectError(t, c, diagnostics.ErrT001)
}

func TestT001_IfWithoutElseMustBeUnit(t *testing.T) {
	c := ast.Main(ast.Semi(ast.If(ast.Bool(true), ast.Blk(ast.Expr(ast.Int(1))), nil)))
	expectError(t, c, diagnostics.ErrT001)
}

func TestT001_IfConditionMustBeBool(t *testing.T) {
	c := ast.Main(ast.Semi(ast.If(ast.Int(1), ast.Blk(), nil)))
	expectError(t, c, diagnostics.ErrT001)
}

func TestT001_ArgumentMismatch(t *testing.T) {
	c := ast.Main(ast.Semi(ast.CallN("printlnInt", ast.Str("a"))))
	expectError(t, c, diagnostics.ErrT001)
}

func TestT001_AmbiguousBranchAgainstExpected(t *testing.T) {
	ifx := ast.If(ast.Bool(true), ast.Blk(ast.Expr(ast.Int(1))), ast.Blk(ast.Expr(ast.Bool(false))))
	c := ast.Main(ast.Let("x", ast.Ty("i32"), ifx))
	expectErrorContains(t, c, diagnostics.ErrT001, "found `bool`")
}

func TestT002_InvalidCast(t *testing.T) {
	c := ast.Main(ast.Let("x", nil, ast.Cast(ast.Str("a"), ast.Ty("u8"))))
	expectError(t, c, diagnostics.ErrT002)
}

func TestValidCasts(t *testing.T) {
	c := ast.Main(
		ast.Let("a", nil, ast.Cast(ast.Bool(true), ast.Ty("u8"))),
		ast.Let("b", nil, ast.Cast(ast.Chr('a'), ast.Ty("u32"))),
		ast.Let("c", nil, ast.Cast(ast.IntS(65, "u8"), ast.Ty("char"))),
		ast.Let("d", nil, ast.Cast(ast.IntS(7, "i64"), ast.Ty("usize"))),
		ast.Let("e", nil, ast.Cast(ast.Int(1), ast.Ty("bool"))),
		ast.Let("f", nil, ast.Cast(ast.Chr('x'), ast.Ty("bool"))),
		ast.Let("g", nil, ast.Cast(ast.IntS(66, "i32"), ast.Ty("char"))),
		ast.Let("h", nil, ast.Cast(ast.Bool(true), ast.Ty("char"))),
	)
	expectNoErrors(t, c)
}

func TestT003_TypeIsNotCallable(t *testing.T) {
	c := ast.MainWith(
		[]ast.Item{ast.StructDef("Point")},
		ast.Semi(ast.CallN("Point")),
	)
	expectErrorContains(t, c, diagnostics.ErrT003, "type Point")
}

func TestT003_ValueIsNotCallable(t *testing.T) {
	c := ast.Main(
		ast.Let("x", nil, ast.Int(1)),
		ast.Semi(ast.CallN("x", ast.Int(2))),
	)
	expectError(t, c, diagnostics.ErrT003)
}

func TestT004_ArgumentCount(t *testing.T) {
	c := ast.Main(ast.Semi(ast.CallN("printInt", ast.Int(1), ast.Int(2))))
	expectErrorContains(t, c, diagnostics.ErrT004, "takes 1 argument but 2 arguments were supplied")
}

func TestT005_InvalidOperands(t *testing.T) {
	c := ast.Main(ast.Let("x", nil, ast.Bin("+", ast.Bool(true), ast.Bool(false))))
	expectError(t, c, diagnostics.ErrT005)
}

func TestT005_NegateUnsigned(t *testing.T) {
	c := ast.Main(ast.Let("x", nil, ast.Neg(ast.IntS(1, "u8"))))
	expectError(t, c, diagnostics.ErrT005)
}

func TestT005_InvalidAssignmentTarget(t *testing.T) {
	c := ast.Main(ast.Semi(ast.Assign(ast.Int(1), ast.Int(2))))
	expectError(t, c, diagnostics.ErrT005)
}

func TestT006_DerefNonReference(t *testing.T) {
	c := ast.Main(ast.Let("x", nil, ast.Deref(ast.Int(5))))
	expectError(t, c, diagnostics.ErrT006)
}

func TestT006_IndexNonArray(t *testing.T) {
	c := ast.Main(
		ast.Let("x", nil, ast.Int(5)),
		ast.Semi(ast.Idx(ast.P("x"), ast.Int(0))),
	)
	expectError(t, c, diagnostics.ErrT006)
}

func TestT007_StructLiteralFields(t *testing.T) {
	point := func() ast.Item {
		return ast.StructDef("Point", ast.FD("x", ast.Ty("i32")), ast.FD("y", ast.Ty("i32")))
	}
	missing := ast.MainWith([]ast.Item{point()}, ast.Let("p", nil, ast.StructLit("Point", ast.FI("x", ast.Int(1)))))
	expectErrorContains(t, missing, diagnostics.ErrT007, "missing field `y`")

	twice := ast.MainWith([]ast.Item{point()}, ast.Let("p", nil, ast.StructLit("Point",
		ast.FI("x", ast.Int(1)), ast.FI("x", ast.Int(2)), ast.FI("y", ast.Int(3)))))
	expectErrorContains(t, twice, diagnostics.ErrT007, "more than once")
}

func TestT008_IncompatibleBranches(t *testing.T) {
	build := func(first, second ast.Expression) *ast.Crate {
		ifx := ast.If(ast.Bool(true), ast.Blk(ast.Expr(first)), ast.Blk(ast.Expr(second)))
		return ast.Main(ast.Let("x", nil, ifx))
	}
	d1 := expectError(t, build(ast.Int(1), ast.Bool(true)), diagnostics.ErrT008)
	d2 := expectError(t, build(ast.Bool(true), ast.Int(1)), diagnostics.ErrT008)
	if d1.Message != d2.Message {
		t.Errorf("join result depends on branch order:\n%s\n%s", d1.Message, d2.Message)
	}
}

// ---------------------------------------------------------------------------
// Constants
// ---------------------------------------------------------------------------

func TestC001_DivisionByZeroInBody(t *testing.T) {
	c := ast.Main(ast.Let("x", nil, ast.Bin("/", ast.Int(10), ast.Int(0))))
	expectError(t, c, diagnostics.ErrC001)
}

func TestC002_MaxPlusOne(t *testing.T) {
	c := ast.Main(ast.Let("x", nil, ast.Bin("+", ast.P("i32::MAX"), ast.Int(1))))
	expectError(t, c, diagnostics.ErrC002)
}

func TestC002_ConstItemOverflow(t *testing.T) {
	c := ast.NewCrate(ast.Const("X", ast.Ty("i32"), ast.Bin("+", ast.P("i32::MAX"), ast.Int(1))))
	expectError(t, c, diagnostics.ErrC002)
}

func TestC002_LiteralOutOfRange(t *testing.T) {
	c := ast.Main(ast.Let("x", ast.Ty("u8"), ast.Int(256)))
	expectErrorContains(t, c, diagnostics.ErrC002, "`u8`")
}

func TestC002_LetPropagation(t *testing.T) {
	build := func() *ast.Crate {
		return ast.Main(
			ast.Let("x", ast.Ty("u8"), ast.Int(255)),
			ast.Let("y", nil, ast.Bin("+", ast.P("x"), ast.Int(1))),
		)
	}
	expectError(t, build(), diagnostics.ErrC002)

	opts := config.DefaultOptions()
	opts.Checks.PropagateLetConstants = false
	if _, bag := analyzeWith(build(), opts); bag.HasErrors() {
		t.Errorf("expected no errors without let propagation, got:\n%s", dump(bag))
	}
}

func TestOverflowCheckCanBeDisabled(t *testing.T) {
	opts := config.DefaultOptions()
	opts.Checks.Overflow = false
	c := ast.Main(ast.Let("x", nil, ast.Bin("/", ast.Int(10), ast.Int(0))))
	if _, bag := analyzeWith(c, opts); bag.HasErrors() {
		t.Errorf("expected no errors, got:\n%s", dump(bag))
	}
}

func TestC003_ForwardConstReference(t *testing.T) {
	c := ast.NewCrate(
		ast.Const("A", ast.Ty("i32"), ast.P("B")),
		ast.Const("B", ast.Ty("i32"), ast.Int(1)),
	)
	expectErrorContains(t, c, diagnostics.ErrC003, "`B`")
}

func TestFailedConstantIsReportedOnce(t *testing.T) {
	c := ast.NewCrate(
		ast.Const("A", ast.Ty("i32"), ast.Bin("/", ast.Int(1), ast.Int(0))),
		ast.Const("B", ast.Ty("i32"), ast.Bin("+", ast.P("A"), ast.Int(1))),
	)
	_, bag := analyzeCrate(c)
	codes := bag.Codes()
	if len(codes) != 1 || codes[0] != diagnostics.ErrC001 {
		t.Errorf("expected only C001, got %v", codes)
	}
}

func TestC004_NegativeArraySize(t *testing.T) {
	c := ast.Main(ast.Let("a", ast.TyArr(ast.Ty("i32"), ast.Bin("-", ast.Int(0), ast.Int(1))), nil))
	expectError(t, c, diagnostics.ErrC004)
}

func TestC004_NegativeRepeatCountReportedOnce(t *testing.T) {
	c := ast.Main(ast.Let("a", nil, ast.ArrRep(ast.Int(0), ast.Neg(ast.Int(1)))))
	_, bag := analyzeCrate(c)
	codes := bag.Codes()
	if len(codes) != 1 || codes[0] != diagnostics.ErrC004 {
		t.Fatalf("codes = %v, want [C004]\n%s", codes, dump(bag))
	}
}

func TestT001_NonIntegerRepeatCount(t *testing.T) {
	c := ast.Main(ast.Let("a", nil, ast.ArrRep(ast.Int(0), ast.Bool(true))))
	expectErrorContains(t, c, diagnostics.ErrT001, "expected an integer array length")
}

func TestC004_ArraySizeFromLocal(t *testing.T) {
	c := ast.Main(
		ast.Let("n", nil, ast.Int(3)),
		ast.Let("a", nil, ast.ArrRep(ast.Int(0), ast.P("n"))),
	)
	expectError(t, c, diagnostics.ErrC004)
}

// ---------------------------------------------------------------------------
// Structure
// ---------------------------------------------------------------------------

func TestS001_ExitNotLast(t *testing.T) {
	c := ast.Main(
		ast.Semi(ast.CallN("exit", ast.Int(0))),
		ast.Semi(ast.CallN("printInt", ast.Int(1))),
	)
	expectError(t, c, diagnostics.ErrS001)
}

func TestExitAsLastStatement(t *testing.T) {
	c := ast.Main(
		ast.Semi(ast.CallN("printInt", ast.Int(1))),
		ast.Semi(ast.CallN("exit", ast.Int(0))),
	)
	expectNoErrors(t, c)
}

func TestTerminalCallCheckCanBeDisabled(t *testing.T) {
	opts := config.DefaultOptions()
	opts.Checks.TerminalCall = false
	c := ast.Main(
		ast.Semi(ast.CallN("exit", ast.Int(0))),
		ast.Semi(ast.CallN("printInt", ast.Int(1))),
	)
	if _, bag := analyzeWith(c, opts); bag.HasErrors() {
		t.Errorf("expected no errors, got:\n%s", dump(bag))
	}
}

func TestS002_TailMismatch(t *testing.T) {
	c := ast.NewCrate(ast.Fn("f", nil, ast.Ty("i32"), ast.Blk(ast.Expr(ast.Bool(true)))))
	expectError(t, c, diagnostics.ErrS002)
}

func TestS002_MissingTail(t *testing.T) {
	c := ast.NewCrate(ast.Fn("f", nil, ast.Ty("i32"), ast.Blk(ast.Semi(ast.Int(1)))))
	expectError(t, c, diagnostics.ErrS002)
}

func TestS002_ReturnValue(t *testing.T) {
	c := ast.NewCrate(ast.Fn("f", nil, ast.Ty("i32"), ast.Blk(ast.Semi(ast.Ret(ast.Bool(true))))))
	expectError(t, c, diagnostics.ErrS002)
}

func TestEarlyReturnSatisfiesReturnType(t *testing.T) {
	c := ast.NewCrate(ast.Fn("f", nil, ast.Ty("i32"), ast.Blk(ast.Semi(ast.Ret(ast.Int(1))))))
	expectNoErrors(t, c)
}

func TestS003_BreakOutsideLoop(t *testing.T) {
	expectError(t, ast.Main(ast.Semi(ast.Brk(nil))), diagnostics.ErrS003)
	expectError(t, ast.Main(ast.Semi(ast.Cont())), diagnostics.ErrS003)
}

func TestS004_SelfOutsideMethod(t *testing.T) {
	expectError(t, ast.Main(ast.Semi(ast.P("self"))), diagnostics.ErrS004)
	expectError(t, ast.NewCrate(ast.Method("f", ast.SelfRef(), nil, nil, ast.Blk())), diagnostics.ErrS004)
}

func TestS005_BreakValueInWhile(t *testing.T) {
	c := ast.Main(ast.Semi(ast.While(ast.Bool(true), ast.Blk(ast.Semi(ast.Brk(ast.Int(1)))))))
	expectError(t, c, diagnostics.ErrS005)
}

func TestRecovery_MultipleErrors(t *testing.T) {
	c := ast.Main(
		ast.Let("a", ast.Ty("i32"), ast.Bool(true)),
		ast.Semi(ast.CallN("missing")),
		ast.Let("b", nil, ast.Bin("/", ast.Int(1), ast.Int(0))),
	)
	_, bag := analyzeCrate(c)
	want := map[diagnostics.ErrorCode]bool{diagnostics.ErrT001: false, diagnostics.ErrN001: false, diagnostics.ErrC001: false}
	for _, code := range bag.Codes() {
		if _, ok := want[code]; ok {
			want[code] = true
		}
	}
	for code, seen := range want {
		if !seen {
			t.Errorf("expected %s among:\n%s", code, dump(bag))
		}
	}
}
