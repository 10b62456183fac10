package analyzer

import (
	"fmt"
	"github.com/funvibe/rcheck/internal/ast"
	"github.com/funvibe/rcheck/internal/config"
	"github.com/funvibe/rcheck/internal/diagnostics"
	"github.com/funvibe/rcheck/internal/symbols"
	"github.com/funvibe/rcheck/internal/typesystem"
)

// ResolvePath resolves a path expression to a variable, function, constant,
// variant or type, records the answer and reports failures. It returns nil
// when the path does not resolve.
func (a *Analyzer) ResolvePath(p *ast.PathExpression) *PathResolution {
	res, why := a.resolvePath(p)
	if res == nil {
		if why != nil {
			a.errorf(why.code, why.at.GetToken(), "%s", why.msg)
		}
		a.record(p, typesystem.Unresolved)
		return nil
	}
	a.Info.Paths[p] = res
	a.record(p, res.Type)
	return res
}

// lookupPath resolves without reporting.
func (a *Analyzer) lookupPath(p *ast.PathExpression) *PathResolution {
	res, _ := a.resolvePath(p)
	return res
}

type pathFailure struct {
	code diagnostics.ErrorCode
	at   ast.Node
	msg  string
}

func fail(code diagnostics.ErrorCode, at ast.Node, format string, args ...any) *pathFailure {
	return &pathFailure{code: code, at: at, msg: fmt.Sprintf(format, args...)}
}

func (a *Analyzer) resolvePath(p *ast.PathExpression) (*PathResolution, *pathFailure) {
	switch len(p.Segments) {
	case 1:
		return a.resolveName(p.Segments[0])
	case 2:
		return a.resolveAssociated(p.Segments[0], p.Segments[1])
	}
	return nil, fail(diagnostics.ErrN001, p, "failed to resolve path `%s`", p.Name())
}

func (a *Analyzer) resolveName(id *ast.Identifier) (*PathResolution, *pathFailure) {
	name := id.Value
	if name == config.SelfTypeName {
		if a.selfType == nil {
			return nil, fail(diagnostics.ErrN001, id, "cannot find `Self` in this scope")
		}
		return &PathResolution{Kind: PathType, Symbol: a.nominal(a.selfType), Type: typesystem.TCtor{Target: a.selfType}}, nil
	}
	sym, ok := a.table.Find(name)
	if !ok {
		if name == config.SelfValueName {
			return nil, fail(diagnostics.ErrS004, id, "`self` is only available in methods")
		}
		if p, ok := typesystem.PrimByName[name]; ok {
			return &PathResolution{Kind: PathType, Type: typesystem.TCtor{Target: p}}, nil
		}
		return nil, fail(diagnostics.ErrN001, id, "cannot find value `%s` in this scope", name)
	}
	return symbolResolution(sym, id)
}

func symbolResolution(sym *symbols.Symbol, at ast.Node) (*PathResolution, *pathFailure) {
	res := &PathResolution{Symbol: sym, Type: sym.Type}
	switch sym.Kind {
	case symbols.VariableSymbol, symbols.ParameterSymbol:
		res.Kind = PathVariable
	case symbols.FunctionSymbol:
		res.Kind = PathFunction
	case symbols.BuiltinSymbol:
		res.Kind = PathBuiltin
	case symbols.ConstantSymbol:
		res.Kind = PathConstant
	case symbols.VariantSymbol:
		res.Kind = PathVariant
	case symbols.StructSymbol, symbols.EnumSymbol:
		res.Kind = PathType
		res.Type = typesystem.TCtor{Target: sym.Type}
	default:
		return nil, fail(diagnostics.ErrN006, at, "expected value, found %s `%s`", sym.Kind, sym.Name)
	}
	if res.Type == nil {
		res.Type = typesystem.Unresolved
	}
	return res, nil
}

func (a *Analyzer) resolveAssociated(owner, item *ast.Identifier) (*PathResolution, *pathFailure) {
	sym, t, ok := a.typeSymbol(owner.Value)
	if !ok {
		if s, found := a.table.Find(owner.Value); found {
			return nil, fail(diagnostics.ErrN006, owner, "expected type, found %s `%s`", s.Kind, owner.Value)
		}
		return nil, fail(diagnostics.ErrN001, owner, "failed to resolve: use of undeclared type `%s`", owner.Value)
	}
	if sym == nil {
		if prim, isPrim := t.(typesystem.TPrim); isPrim {
			if res, ok := a.primitiveItem(prim, item.Value); ok {
				return res, nil
			}
		}
		return nil, fail(diagnostics.ErrN004, item, "no associated item named `%s` found for `%s`", item.Value, t)
	}
	member, ok := sym.Member(item.Value)
	if !ok {
		if _, isEnum := t.(*typesystem.TEnum); isEnum {
			return nil, fail(diagnostics.ErrN004, item, "no variant or associated item named `%s` found for enum `%s`", item.Value, t)
		}
		return nil, fail(diagnostics.ErrN004, item, "no associated item named `%s` found for `%s`", item.Value, t)
	}
	return symbolResolution(member, item)
}
