package analyzer

import (
	"github.com/funvibe/rcheck/internal/ast"
	"github.com/funvibe/rcheck/internal/diagnostics"
	"github.com/funvibe/rcheck/internal/symbols"
	"github.com/funvibe/rcheck/internal/typesystem"
	"sort"
	"strings"
)

func (a *Analyzer) inferPath(p *ast.PathExpression) typesystem.Type {
	res := a.ResolvePath(p)
	if res == nil {
		return typesystem.Unresolved
	}
	return a.Info.Types[p]
}

func (a *Analyzer) inferCall(n *ast.CallExpression) typesystem.Type {
	ft := a.check(n.Function, nil)
	fn, ok := ft.(typesystem.TFunc)
	if !ok {
		if !typesystem.IsUnresolved(ft) {
			a.errorf(diagnostics.ErrT003, n.Function.GetToken(), "expected function, found `%s`", ft)
		}
		for _, arg := range n.Arguments {
			a.check(arg, nil)
		}
		return typesystem.Unresolved
	}
	a.arguments(n, fn.Params, n.Arguments)
	if fn.Return == nil {
		return typesystem.Unit
	}
	return fn.Return
}

// arguments checks call arguments against parameter types.
func (a *Analyzer) arguments(at ast.Node, params []typesystem.Type, args []ast.Expression) {
	if len(params) != len(args) {
		a.errorf(diagnostics.ErrT004, at.GetToken(), "this function takes %d argument%s but %d %s supplied",
			len(params), plural(len(params)), len(args), wasWere(len(args)))
	}
	for i, arg := range args {
		if i < len(params) {
			a.check(arg, params[i])
		} else {
			a.check(arg, nil)
		}
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func wasWere(n int) string {
	if n == 1 {
		return "argument was"
	}
	return "arguments were"
}

// inferMethodCall resolves recv.m(args) through auto-deref: first the
// associated functions of the receiver's struct or enum, then the
// built-in methods.
func (a *Analyzer) inferMethodCall(n *ast.MethodCallExpression) typesystem.Type {
	rt := a.check(n.Receiver, nil)
	base := typesystem.Deref(rt)
	if typesystem.IsUnresolved(base) {
		for _, arg := range n.Arguments {
			a.check(arg, nil)
		}
		return typesystem.Unresolved
	}
	m := a.lookupMethod(base, n.Method)
	if m == nil {
		for _, arg := range n.Arguments {
			a.check(arg, nil)
		}
		return typesystem.Unresolved
	}
	a.Info.Methods[n] = m
	a.arguments(n.Method, m.Type.Params, n.Arguments)
	if m.Type.Return == nil {
		return typesystem.Unit
	}
	return m.Type.Return
}

func (a *Analyzer) lookupMethod(base typesystem.Type, name *ast.Identifier) *MethodResolution {
	if owner := a.nominal(base); owner != nil {
		member, ok := owner.Member(name.Value)
		if ok && member.Kind == symbols.FunctionSymbol {
			sig, _ := member.Type.(typesystem.TFunc)
			if member.Receiver == symbols.NoReceiver {
				a.errorf(diagnostics.ErrN004, name.Token, "`%s::%s` is an associated function, not a method", owner.Name, name.Value)
				return nil
			}
			params := sig.Params
			if len(params) > 0 {
				params = params[1:]
			}
			return &MethodResolution{
				Name:     name.Value,
				Symbol:   member,
				Receiver: member.Receiver,
				Type:     typesystem.TFunc{Params: params, Return: sig.Return},
			}
		}
	}
	if m, ok := builtinMethod(base, name.Value); ok {
		return m
	}
	a.errorf(diagnostics.ErrN004, name.Token, "no method named `%s` found for `%s` in the current scope", name.Value, base)
	return nil
}

func (a *Analyzer) inferField(n *ast.FieldAccessExpression) typesystem.Type {
	bt := a.check(n.Base, nil)
	base := typesystem.Deref(bt)
	if typesystem.IsUnresolved(base) {
		return typesystem.Unresolved
	}
	st, ok := base.(*typesystem.TStruct)
	if !ok {
		a.errorf(diagnostics.ErrN003, n.Field.Token, "no field `%s` on type `%s`", n.Field.Value, base)
		return typesystem.Unresolved
	}
	f, ok := st.Field(n.Field.Value)
	if !ok {
		a.errorf(diagnostics.ErrN003, n.Field.Token, "no field `%s` on type `%s`", n.Field.Value, st)
		return typesystem.Unresolved
	}
	return f.Type
}

func (a *Analyzer) inferIndex(n *ast.IndexExpression) typesystem.Type {
	bt := a.check(n.Base, nil)
	a.check(n.Index, typesystem.Usize)
	base := typesystem.Deref(bt)
	if typesystem.IsUnresolved(base) {
		return typesystem.Unresolved
	}
	arr, ok := base.(typesystem.TArray)
	if !ok {
		a.errorf(diagnostics.ErrT006, n.Token, "cannot index into a value of type `%s`", bt)
		return typesystem.Unresolved
	}
	return arr.Elem
}

func (a *Analyzer) inferStructLiteral(n *ast.StructLiteral) typesystem.Type {
	_, t, ok := a.typeSymbol(n.Name.Value)
	st, isStruct := t.(*typesystem.TStruct)
	if !ok || !isStruct {
		if ok {
			a.errorf(diagnostics.ErrN006, n.Name.Token, "expected struct, found `%s`", t)
		} else {
			a.errorf(diagnostics.ErrN001, n.Name.Token, "cannot find struct `%s` in this scope", n.Name.Value)
		}
		for _, f := range n.Fields {
			a.check(f.Value, nil)
		}
		return typesystem.Unresolved
	}
	seen := make(map[string]bool)
	for _, fi := range n.Fields {
		f, found := st.Field(fi.Name.Value)
		if !found {
			a.errorf(diagnostics.ErrN003, fi.Name.Token, "struct `%s` has no field named `%s`", st, fi.Name.Value)
			a.check(fi.Value, nil)
			continue
		}
		if seen[f.Name] {
			a.errorf(diagnostics.ErrT007, fi.Name.Token, "field `%s` specified more than once", f.Name)
			a.check(fi.Value, nil)
			continue
		}
		seen[f.Name] = true
		a.check(fi.Value, f.Type)
	}
	var missing []string
	for _, f := range st.Fields {
		if !seen[f.Name] {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		a.errorf(diagnostics.ErrT007, n.Token, "missing field%s `%s` in initializer of `%s`", plural(len(missing)), strings.Join(missing, "`, `"), st)
	}
	return st
}

func (a *Analyzer) inferArray(n *ast.ArrayLiteral) typesystem.Type {
	var elem typesystem.Type = typesystem.Unresolved
	for _, el := range n.Elements {
		t := a.check(el, nil)
		u, err := typesystem.Unify(elem, t)
		if err != nil {
			a.errorf(diagnostics.ErrT001, el.GetToken(), "mismatched types: expected `%s`, found `%s`", elem, t)
			continue
		}
		elem = u
	}
	for _, el := range n.Elements {
		a.settle(el, elem)
	}
	return typesystem.TArray{Elem: elem, Len: int64(len(n.Elements))}
}

func (a *Analyzer) inferRepeat(n *ast.ArrayRepeatExpression) typesystem.Type {
	elem := a.check(n.Value, nil)
	count := a.check(n.Count, nil)
	if typesystem.IsUnresolved(count) {
		return typesystem.TArray{Elem: elem, Len: -1}
	}
	if !typesystem.IsInteger(count) {
		a.errorf(diagnostics.ErrT001, tokenOf(n.Count), "mismatched types: expected an integer array length, found `%s`", count)
		return typesystem.TArray{Elem: elem, Len: -1}
	}
	a.settle(n.Count, typesystem.Usize)
	size, err := a.eval.EvalArraySize(n.Count, a.constScope(false))
	if err != nil {
		a.reportConst(err)
		// the length diagnostic covers any literal in the count
		ast.Inspect(n.Count, func(c ast.Node) bool {
			if lit, ok := c.(*ast.IntegerLiteral); ok {
				a.lenErrs[lit] = true
			}
			return true
		})
		return typesystem.TArray{Elem: elem, Len: -1}
	}
	return typesystem.TArray{Elem: elem, Len: size}
}

func (a *Analyzer) inferBorrow(n *ast.BorrowExpression) typesystem.Type {
	t := a.check(n.Operand, nil)
	return typesystem.TRef{Elem: t, Mutable: n.Mutable}
}

func (a *Analyzer) inferDeref(n *ast.DerefExpression) typesystem.Type {
	t := a.check(n.Operand, nil)
	switch r := t.(type) {
	case typesystem.TRef:
		return r.Elem
	case typesystem.TUnresolved:
		return t
	}
	a.errorf(diagnostics.ErrT006, n.Token, "type `%s` cannot be dereferenced", t)
	return typesystem.Unresolved
}

// isPlace reports whether e denotes a memory location.
func isPlace(e ast.Expression) bool {
	switch n := e.(type) {
	case *ast.PathExpression, *ast.DerefExpression, *ast.UnderscoreExpression:
		return true
	case *ast.FieldAccessExpression:
		return isPlace(n.Base) || isValueBase(n.Base)
	case *ast.IndexExpression:
		return isPlace(n.Base) || isValueBase(n.Base)
	case *ast.GroupedExpression:
		return isPlace(n.Inner)
	}
	return false
}

// isValueBase accepts bases that yield a reference, such as method calls
// returning &mut T, under a field or index projection.
func isValueBase(e ast.Expression) bool {
	switch e.(type) {
	case *ast.MethodCallExpression, *ast.CallExpression:
		return true
	}
	return false
}

func (a *Analyzer) inferAssign(n *ast.AssignExpression) typesystem.Type {
	if !isPlace(n.Target) {
		a.errorf(diagnostics.ErrT005, n.Target.GetToken(), "invalid left-hand side of assignment")
		a.check(n.Target, nil)
		a.check(n.Value, nil)
		return typesystem.Unit
	}
	if n.Operator == "=" {
		if sym := a.uninitialized(n.Target); sym != nil {
			vt := a.check(n.Value, nil)
			sym.Type = vt
			a.assigned[sym] = append(a.assigned[sym], n.Value)
			a.record(n.Target, vt)
			return typesystem.Unit
		}
		tt := a.infer(n.Target)
		if _, under := n.Target.(*ast.UnderscoreExpression); under || typesystem.IsUnresolved(tt) {
			a.check(n.Value, nil)
			return typesystem.Unit
		}
		a.check(n.Value, tt)
		if sym := a.deferredLocal(n.Target); sym != nil {
			a.assigned[sym] = append(a.assigned[sym], n.Value)
		}
		return typesystem.Unit
	}
	tt := a.check(n.Target, nil)
	op := strings.TrimSuffix(n.Operator, "=")
	if op == "<<" || op == ">>" {
		vt := a.check(n.Value, nil)
		if !typesystem.IsUnresolved(tt) && !typesystem.IsUnresolved(vt) && (!typesystem.IsInteger(tt) || !typesystem.IsInteger(vt)) {
			a.errorf(diagnostics.ErrT005, n.Token, "cannot apply `%s` to `%s` and `%s`", n.Operator, tt, vt)
		}
		return typesystem.Unit
	}
	if typesystem.IsUnresolved(tt) {
		a.check(n.Value, nil)
		return typesystem.Unit
	}
	a.check(n.Value, tt)
	ok := typesystem.IsInteger(tt)
	if op == "&" || op == "|" || op == "^" {
		ok = ok || typesystem.IsBool(tt)
	}
	if !ok {
		a.errorf(diagnostics.ErrT005, n.Token, "cannot apply `%s` to type `%s`", n.Operator, tt)
	}
	return typesystem.Unit
}

// uninitialized returns the local behind target when it is a let declared
// without type or value that has not been assigned yet.
func (a *Analyzer) uninitialized(target ast.Expression) *symbols.Symbol {
	p, ok := target.(*ast.PathExpression)
	if !ok || len(p.Segments) != 1 {
		return nil
	}
	res := a.ResolvePath(p)
	if res == nil || res.Kind != PathVariable || res.Symbol.Type != nil {
		return nil
	}
	return res.Symbol
}

func (a *Analyzer) deferredLocal(target ast.Expression) *symbols.Symbol {
	p, ok := target.(*ast.PathExpression)
	if !ok {
		return nil
	}
	if sym := a.Info.SymbolOf(p); sym != nil && a.deferred[sym] {
		return sym
	}
	return nil
}
