package analyzer

import (
	"github.com/funvibe/rcheck/internal/config"
	"github.com/funvibe/rcheck/internal/consteval"
	"github.com/funvibe/rcheck/internal/symbols"
	"github.com/funvibe/rcheck/internal/typesystem"
)

var strRef = typesystem.TRef{Elem: typesystem.Str}

// builtinFuncs are the free functions of the prelude.
var builtinFuncs = []struct {
	name string
	typ  typesystem.TFunc
}{
	{config.PrintFuncName, typesystem.TFunc{Params: []typesystem.Type{strRef}, Return: typesystem.Unit}},
	{config.PrintlnFuncName, typesystem.TFunc{Params: []typesystem.Type{strRef}, Return: typesystem.Unit}},
	{config.PrintIntFuncName, typesystem.TFunc{Params: []typesystem.Type{typesystem.I32}, Return: typesystem.Unit}},
	{config.PrintlnIntFuncName, typesystem.TFunc{Params: []typesystem.Type{typesystem.I32}, Return: typesystem.Unit}},
	{config.GetStringFuncName, typesystem.TFunc{Return: typesystem.StringT}},
	{config.GetIntFuncName, typesystem.TFunc{Return: typesystem.I32}},
	// exit never returns
	{config.ExitFuncName, typesystem.TFunc{Params: []typesystem.Type{typesystem.I32}, Return: typesystem.Never}},
}

// RegisterBuiltins declares the built-in functions in the prelude scope.
// Calling it again on the same table is a no-op.
func RegisterBuiltins(table *symbols.SymbolTable) {
	prelude := table.Prelude()
	for _, b := range builtinFuncs {
		if _, ok := table.Resolve(b.name, prelude); ok {
			continue
		}
		_ = table.DeclareIn(prelude, b.name, &symbols.Symbol{Kind: symbols.BuiltinSymbol, Type: b.typ})
	}
}

// isExit reports whether a callee resolved to the built-in exit.
func isExit(res *PathResolution) bool {
	return res != nil && res.Kind == PathBuiltin && res.Symbol != nil && res.Symbol.Name == config.ExitFuncName
}

// builtinMethod finds a method the language provides on base, the receiver
// type with references stripped.
func builtinMethod(base typesystem.Type, name string) (*MethodResolution, bool) {
	m := &MethodResolution{Name: name, Receiver: symbols.ByRef}
	switch {
	case typesystem.IsString(base) || typesystem.IsStr(base):
		switch name {
		case config.ToStringMethodName:
			m.Type = typesystem.TFunc{Return: typesystem.StringT}
		case config.AsStrMethodName:
			m.Type = typesystem.TFunc{Return: strRef}
		case config.LenMethodName:
			m.Type = typesystem.TFunc{Return: typesystem.Usize}
		case config.AsMutStrMethodName:
			if !typesystem.IsString(base) {
				return nil, false
			}
			m.Receiver = symbols.ByMutRef
			m.Type = typesystem.TFunc{Return: typesystem.TRef{Elem: typesystem.Str, Mutable: true}}
		case config.AppendMethodName:
			if !typesystem.IsString(base) {
				return nil, false
			}
			m.Receiver = symbols.ByMutRef
			m.Type = typesystem.TFunc{Params: []typesystem.Type{strRef}, Return: typesystem.Unit}
		default:
			return nil, false
		}
	case isArray(base):
		if name != config.LenMethodName {
			return nil, false
		}
		m.Type = typesystem.TFunc{Return: typesystem.Usize}
	case typesystem.IsInteger(base):
		if name != config.ToStringMethodName {
			return nil, false
		}
		m.Receiver = symbols.ByValue
		m.Type = typesystem.TFunc{Return: typesystem.StringT}
	default:
		return nil, false
	}
	return m, true
}

// primitiveItem resolves `prim::item` for the primitive types.
func (a *Analyzer) primitiveItem(prim typesystem.TPrim, item string) (*PathResolution, bool) {
	switch {
	case typesystem.IsInteger(prim) && (item == config.MaxConstName || item == config.MinConstName):
		v := a.target.Max(prim)
		if item == config.MinConstName {
			v = a.target.Min(prim)
		}
		val := consteval.NewIntValue(v, prim)
		return &PathResolution{Kind: PathConstant, Type: prim, Value: &val}, true
	case typesystem.IsString(prim) && item == config.FromFuncName:
		return &PathResolution{Kind: PathBuiltin, Type: typesystem.TFunc{Params: []typesystem.Type{strRef}, Return: typesystem.StringT}}, true
	case typesystem.IsString(prim) && item == config.NewFuncName:
		return &PathResolution{Kind: PathBuiltin, Type: typesystem.TFunc{Return: typesystem.StringT}}, true
	}
	return nil, false
}

func isArray(t typesystem.Type) bool {
	_, ok := t.(typesystem.TArray)
	return ok
}
