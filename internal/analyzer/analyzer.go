package analyzer

import (
	"github.com/funvibe/rcheck/internal/ast"
	"github.com/funvibe/rcheck/internal/config"
	"github.com/funvibe/rcheck/internal/consteval"
	"github.com/funvibe/rcheck/internal/diagnostics"
	"github.com/funvibe/rcheck/internal/symbols"
	"github.com/funvibe/rcheck/internal/token"
	"github.com/funvibe/rcheck/internal/typesystem"
)

// PathKind tags what a path expression resolved to.
type PathKind int

const (
	PathVariable PathKind = iota // let binding, parameter or self
	PathFunction                 // free or associated function
	PathConstant                 // const item, associated const, primitive bound
	PathVariant                  // enum variant
	PathType                     // bare type name, a constructor-type value
	PathBuiltin                  // built-in function
)

func (k PathKind) String() string {
	switch k {
	case PathVariable:
		return "variable"
	case PathFunction:
		return "function"
	case PathConstant:
		return "constant"
	case PathVariant:
		return "variant"
	case PathType:
		return "type"
	case PathBuiltin:
		return "builtin"
	}
	return "unknown"
}

// PathResolution is the single answer for every path expression.
type PathResolution struct {
	Kind   PathKind
	Symbol *symbols.Symbol // nil for primitive bounds and String::from/new
	Type   typesystem.Type
	Value  *consteval.Value // primitive bounds only; const items live in Info.Consts
}

// MethodResolution describes the callee of a method call.
type MethodResolution struct {
	Name     string
	Symbol   *symbols.Symbol // nil for built-in methods
	Receiver symbols.Receiver
	Type     typesystem.TFunc // parameters without the receiver
}

// IsBuiltin reports whether the method is provided by the language.
func (m *MethodResolution) IsBuiltin() bool {
	return m.Symbol == nil
}

// Info is the typed view of a crate handed to later phases and to the
// code generator.
type Info struct {
	Types     map[ast.Expression]typesystem.Type
	Paths     map[*ast.PathExpression]*PathResolution
	Bindings  map[*ast.IdentifierPattern]*symbols.Symbol
	Params    map[*ast.Param]*symbols.Symbol
	Selves    map[*ast.FunctionItem]*symbols.Symbol
	Functions map[*ast.FunctionItem]*symbols.Symbol
	Methods   map[*ast.MethodCallExpression]*MethodResolution
	Consts    map[*symbols.Symbol]consteval.Value
	// Values holds the folded value of constant operations found in bodies.
	Values map[ast.Expression]consteval.Value
}

func newInfo() *Info {
	return &Info{
		Types:     make(map[ast.Expression]typesystem.Type),
		Paths:     make(map[*ast.PathExpression]*PathResolution),
		Bindings:  make(map[*ast.IdentifierPattern]*symbols.Symbol),
		Params:    make(map[*ast.Param]*symbols.Symbol),
		Selves:    make(map[*ast.FunctionItem]*symbols.Symbol),
		Functions: make(map[*ast.FunctionItem]*symbols.Symbol),
		Methods:   make(map[*ast.MethodCallExpression]*MethodResolution),
		Consts:    make(map[*symbols.Symbol]consteval.Value),
		Values:    make(map[ast.Expression]consteval.Value),
	}
}

// TypeOf returns the final type of e, {unknown} when e was never typed.
func (i *Info) TypeOf(e ast.Expression) typesystem.Type {
	if t, ok := i.Types[e]; ok && t != nil {
		return t
	}
	return typesystem.Unresolved
}

// SymbolOf returns the symbol a path resolved to, if any.
func (i *Info) SymbolOf(p *ast.PathExpression) *symbols.Symbol {
	if res, ok := i.Paths[p]; ok {
		return res.Symbol
	}
	return nil
}

// Analyzer performs name collection, signature resolution and type
// inference over one crate.
type Analyzer struct {
	table  *symbols.SymbolTable
	bag    *diagnostics.Bag
	opts   config.Options
	target typesystem.Target
	eval   *consteval.Evaluator
	Info   *Info

	file     string
	items    map[ast.Item]*symbols.Symbol
	typeSyms map[typesystem.Type]*symbols.Symbol // *TStruct / *TEnum / trait Self -> declaring symbol
	failed   map[*symbols.Symbol]bool            // constants whose evaluation failed
	inits    map[*symbols.Symbol]ast.Expression  // let initializers, for late integer settling
	deferred map[*symbols.Symbol]bool            // lets declared without initializer
	assigned map[*symbols.Symbol][]ast.Expression // values assigned to deferred lets
	breaks   map[*ast.LoopExpression][]*ast.BreakExpression
	letConst map[*symbols.Symbol]*letConstant
	lenErrs  map[*ast.IntegerLiteral]bool // literals inside a rejected array length

	selfType typesystem.Type // enclosing impl or trait target
	fn       *fnCtx
}

type fnCtx struct {
	item   *ast.FunctionItem
	sym    *symbols.Symbol
	ret    typesystem.Type
	loops  []*loopCtx
	locals []*symbols.Symbol
}

type loopCtx struct {
	loop   *ast.LoopExpression // nil for while loops
	scope  symbols.ScopeID
	breaks []typesystem.Type
	broken bool
}

// New creates an analyzer reporting into bag.
func New(table *symbols.SymbolTable, bag *diagnostics.Bag, opts config.Options) *Analyzer {
	target := typesystem.Target{PointerBits: opts.PointerBits}
	return &Analyzer{
		table:    table,
		bag:      bag,
		opts:     opts,
		target:   target,
		eval:     consteval.New(target),
		Info:     newInfo(),
		items:    make(map[ast.Item]*symbols.Symbol),
		typeSyms: make(map[typesystem.Type]*symbols.Symbol),
		failed:   make(map[*symbols.Symbol]bool),
		inits:    make(map[*symbols.Symbol]ast.Expression),
		deferred: make(map[*symbols.Symbol]bool),
		assigned: make(map[*symbols.Symbol][]ast.Expression),
		breaks:   make(map[*ast.LoopExpression][]*ast.BreakExpression),
		letConst: make(map[*symbols.Symbol]*letConstant),
		lenErrs:  make(map[*ast.IntegerLiteral]bool),
	}
}

// Analyze runs every pass over the crate and returns the typed view.
func (a *Analyzer) Analyze(c *ast.Crate) *Info {
	a.bag.SetPhase(diagnostics.PhaseNames)
	a.CollectNames(c)
	a.bag.SetPhase(diagnostics.PhaseTypes)
	a.AnalyzeHeaders(c)
	a.AnalyzeBodies(c)
	return a.Info
}

// Table returns the symbol table the analyzer populates.
func (a *Analyzer) Table() *symbols.SymbolTable {
	return a.table
}

// nominal returns the declaring symbol of a struct, enum or trait Self type.
func (a *Analyzer) nominal(t typesystem.Type) *symbols.Symbol {
	switch t := t.(type) {
	case *typesystem.TStruct:
		return a.typeSyms[t]
	case *typesystem.TEnum:
		return a.typeSyms[t]
	}
	return nil
}

func (a *Analyzer) errorf(code diagnostics.ErrorCode, tok token.Token, format string, args ...any) *diagnostics.DiagnosticError {
	d := diagnostics.NewError(code, tok, format, args...)
	if d.File == "" {
		d.File = a.file
	}
	a.bag.Add(d)
	return d
}

func (a *Analyzer) reportConst(err *consteval.Error) {
	if err == nil || err.Silent() {
		return
	}
	d := err.Diagnostic()
	if d.File == "" {
		d.File = a.file
	}
	a.bag.Add(d)
}

// record stores the type of e and returns it.
func (a *Analyzer) record(e ast.Expression, t typesystem.Type) typesystem.Type {
	if t == nil {
		t = typesystem.Unresolved
	}
	a.Info.Types[e] = t
	return t
}
