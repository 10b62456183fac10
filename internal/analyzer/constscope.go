package analyzer

import (
	"github.com/funvibe/rcheck/internal/ast"
	"github.com/funvibe/rcheck/internal/consteval"
	"github.com/funvibe/rcheck/internal/symbols"
	"github.com/funvibe/rcheck/internal/typesystem"
)

// constScope answers constant queries for the evaluator. With locals set,
// immutable lets initialized by constants count as constants too.
type constScope struct {
	a      *Analyzer
	locals bool
}

func (a *Analyzer) constScope(locals bool) *constScope {
	return &constScope{a: a, locals: locals}
}

type letConstant struct {
	busy  bool
	ok    bool
	value consteval.Value
}

func (s *constScope) Constant(p *ast.PathExpression) consteval.Lookup {
	res, ok := s.a.Info.Paths[p]
	if !ok {
		res = s.a.lookupPath(p)
	}
	if res == nil {
		return consteval.Lookup{State: consteval.NotConstant}
	}
	switch res.Kind {
	case PathConstant:
		if res.Value != nil {
			return consteval.Lookup{State: consteval.Ready, Type: res.Type, Value: *res.Value}
		}
		if v, ok := s.a.Info.Consts[res.Symbol]; ok {
			return consteval.Lookup{State: consteval.Ready, Type: res.Symbol.Type, Value: v}
		}
		if s.a.failed[res.Symbol] {
			return consteval.Lookup{State: consteval.Failed, Type: res.Symbol.Type}
		}
		return consteval.Lookup{State: consteval.Pending}
	case PathVariable:
		if s.locals {
			if v, ok := s.let(res.Symbol); ok {
				return consteval.Lookup{State: consteval.Ready, Type: res.Symbol.Type, Value: v}
			}
		}
	}
	return consteval.Lookup{State: consteval.NotConstant}
}

func (s *constScope) ResolveType(t ast.Type) typesystem.Type {
	return s.a.BuildType(t)
}

// let folds the initializer of an immutable let once.
func (s *constScope) let(sym *symbols.Symbol) (consteval.Value, bool) {
	if sym == nil || sym.Mutable || sym.Kind != symbols.VariableSymbol || s.a.deferred[sym] {
		return consteval.Value{}, false
	}
	if lc, ok := s.a.letConst[sym]; ok {
		return lc.value, lc.ok && !lc.busy
	}
	init := s.a.inits[sym]
	if init == nil {
		return consteval.Value{}, false
	}
	lc := &letConstant{busy: true}
	s.a.letConst[sym] = lc
	v, err := s.a.eval.Eval(init, sym.Type, s)
	lc.busy = false
	if err == nil && v.IsConstant() {
		lc.ok, lc.value = true, v
	}
	return lc.value, lc.ok
}
