package typesystem

// Unify returns the common type of t1 and t2.
// It enforces strict equality for concrete types; `!` and {unknown} are
// absorbed, {integer} joins with any integer width and ambiguous candidate
// sets are folded against the other operand.
func Unify(t1, t2 Type) (Type, error) {
	if t1 == nil || t2 == nil {
		if t1 == nil {
			return t2, nil
		}
		return t1, nil
	}
	if IsUnresolved(t1) {
		return t2, nil
	}
	if IsUnresolved(t2) {
		return t1, nil
	}
	if a, ok := t1.(TAmbiguous); ok {
		return Join(append(append([]Type{}, a.Candidates...), t2)...)
	}
	if b, ok := t2.(TAmbiguous); ok {
		return Join(append([]Type{t1}, b.Candidates...)...)
	}
	if IsNever(t1) {
		return t2, nil
	}
	if IsNever(t2) {
		return t1, nil
	}

	switch a := t1.(type) {
	case TPrim:
		b, ok := t2.(TPrim)
		if !ok {
			break
		}
		if a.Kind == b.Kind {
			return a, nil
		}
		if a.Kind == KIntLit && IsInteger(b) {
			return b, nil
		}
		if b.Kind == KIntLit && IsInteger(a) {
			return a, nil
		}
	case TArray:
		b, ok := t2.(TArray)
		if !ok {
			break
		}
		if a.Len >= 0 && b.Len >= 0 && a.Len != b.Len {
			break
		}
		elem, err := Unify(a.Elem, b.Elem)
		if err != nil {
			break
		}
		n := a.Len
		if n < 0 {
			n = b.Len
		}
		return TArray{Elem: elem, Len: n}, nil
	case TRef:
		b, ok := t2.(TRef)
		if !ok || a.Mutable != b.Mutable {
			break
		}
		elem, err := Unify(a.Elem, b.Elem)
		if err != nil {
			break
		}
		return TRef{Elem: elem, Mutable: a.Mutable}, nil
	case *TStruct:
		if b, ok := t2.(*TStruct); ok && (a == b || a.Name == b.Name) {
			return a, nil
		}
	case *TEnum:
		if b, ok := t2.(*TEnum); ok && (a == b || a.Name == b.Name) {
			return a, nil
		}
	case TFunc:
		b, ok := t2.(TFunc)
		if !ok || len(a.Params) != len(b.Params) {
			break
		}
		params := make([]Type, len(a.Params))
		for i := range a.Params {
			p, err := Unify(a.Params[i], b.Params[i])
			if err != nil {
				return nil, NewMismatchError(t1, t2)
			}
			params[i] = p
		}
		ret, err := Unify(a.Return, b.Return)
		if err != nil {
			break
		}
		return TFunc{Params: params, Return: ret}, nil
	case TCtor:
		if b, ok := t2.(TCtor); ok {
			if target, err := Unify(a.Target, b.Target); err == nil {
				return TCtor{Target: target}, nil
			}
		}
	}
	return nil, NewMismatchError(t1, t2)
}

// Join folds candidates pairwise with Unify. The result, or the error, is
// the same for every order of the candidates.
func Join(candidates ...Type) (Type, error) {
	var acc Type = Never
	for _, c := range candidates {
		next, err := Unify(acc, c)
		if err != nil {
			return nil, &JoinError{Candidates: distinctNames(flatten(candidates))}
		}
		acc = next
	}
	return acc, nil
}

func flatten(ts []Type) []Type {
	var out []Type
	for _, t := range ts {
		if a, ok := t.(TAmbiguous); ok {
			out = append(out, flatten(a.Candidates)...)
			continue
		}
		if IsNever(t) || IsUnresolved(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Expect checks that a value of type actual may be used where expected is
// required. On top of Unify it allows `&mut T` where `&T` is expected.
// It returns the settled type of the value.
func Expect(actual, expected Type) (Type, error) {
	if expected == nil {
		return actual, nil
	}
	if a, ok := actual.(TAmbiguous); ok {
		for _, c := range a.Candidates {
			if _, err := Expect(c, expected); err != nil {
				return nil, NewMismatchError(expected, c)
			}
		}
		return expected, nil
	}
	if ar, ok := actual.(TRef); ok {
		if er, ok := expected.(TRef); ok && ar.Mutable && !er.Mutable {
			if _, err := Unify(ar.Elem, er.Elem); err != nil {
				return nil, NewMismatchError(expected, actual)
			}
			return expected, nil
		}
	}
	t, err := Unify(actual, expected)
	if err != nil {
		return nil, NewMismatchError(expected, actual)
	}
	return t, nil
}

// Equal reports structural equality.
func Equal(t1, t2 Type) bool {
	if IsUnresolved(t1) || IsUnresolved(t2) {
		return IsUnresolved(t1) && IsUnresolved(t2)
	}
	if IsNever(t1) || IsNever(t2) {
		return IsNever(t1) && IsNever(t2)
	}
	if IsIntLit(t1) != IsIntLit(t2) {
		return false
	}
	_, err := Unify(t1, t2)
	return err == nil
}
