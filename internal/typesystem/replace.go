package typesystem

// Map rebuilds t bottom-up, replacing each component with f(component).
func Map(t Type, f func(Type) Type) Type {
	if t == nil {
		return nil
	}
	switch typ := t.(type) {
	case TArray:
		return f(TArray{Elem: Map(typ.Elem, f), Len: typ.Len})
	case TRef:
		return f(TRef{Elem: Map(typ.Elem, f), Mutable: typ.Mutable})
	case TFunc:
		params := make([]Type, len(typ.Params))
		for i, p := range typ.Params {
			params[i] = Map(p, f)
		}
		return f(TFunc{Params: params, Return: Map(typ.Return, f)})
	case TAmbiguous:
		cands := make([]Type, len(typ.Candidates))
		for i, c := range typ.Candidates {
			cands[i] = Map(c, f)
		}
		return f(TAmbiguous{Candidates: cands})
	}
	return f(t)
}

// DefaultIntegers replaces every {integer} in t with i32.
func DefaultIntegers(t Type) Type {
	return Map(t, func(x Type) Type {
		if IsIntLit(x) {
			return I32
		}
		return x
	})
}
