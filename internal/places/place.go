package places

import (
	"strings"

	"github.com/funvibe/rcheck/internal/ast"
	"github.com/funvibe/rcheck/internal/symbols"
	"github.com/funvibe/rcheck/internal/typesystem"
)

type SegmentKind int

const (
	FieldSegment SegmentKind = iota
	IndexSegment
	DerefSegment
)

// Segment is one projection step of a place.
type Segment struct {
	Kind SegmentKind
	Name string // field name, empty otherwise
}

// Place is a rooted access path: a local binding followed by field, index
// and dereference projections. Values are immutable; projections copy.
type Place struct {
	Root *symbols.Symbol
	Path []Segment
}

// Of returns the place naming the whole binding.
func Of(root *symbols.Symbol) Place {
	return Place{Root: root}
}

func (p Place) with(s Segment) Place {
	path := make([]Segment, len(p.Path), len(p.Path)+1)
	copy(path, p.Path)
	return Place{Root: p.Root, Path: append(path, s)}
}

func (p Place) Field(name string) Place {
	return p.with(Segment{Kind: FieldSegment, Name: name})
}

// Index projects an element. All indices of an array compare equal.
func (p Place) Index() Place {
	return p.with(Segment{Kind: IndexSegment})
}

func (p Place) Deref() Place {
	return p.with(Segment{Kind: DerefSegment})
}

// IsRoot reports whether p names the whole binding.
func (p Place) IsRoot() bool {
	return len(p.Path) == 0
}

// Parent drops the last segment.
func (p Place) Parent() (Place, bool) {
	if p.IsRoot() {
		return p, false
	}
	return Place{Root: p.Root, Path: p.Path[:len(p.Path)-1]}, true
}

// HasDeref reports whether the path goes through a reference.
func (p Place) HasDeref() bool {
	return p.has(DerefSegment)
}

// HasIndex reports whether the path selects an array element.
func (p Place) HasIndex() bool {
	return p.has(IndexSegment)
}

func (p Place) has(k SegmentKind) bool {
	for _, s := range p.Path {
		if s.Kind == k {
			return true
		}
	}
	return false
}

// IsPrefixOf reports whether q is p or is reached from p by projection.
func (p Place) IsPrefixOf(q Place) bool {
	if p.Root != q.Root || len(p.Path) > len(q.Path) {
		return false
	}
	for i, s := range p.Path {
		if s != q.Path[i] {
			return false
		}
	}
	return true
}

// IsStrictPrefixOf is IsPrefixOf without equality.
func (p Place) IsStrictPrefixOf(q Place) bool {
	return len(p.Path) < len(q.Path) && p.IsPrefixOf(q)
}

func (p Place) Equal(q Place) bool {
	return len(p.Path) == len(q.Path) && p.IsPrefixOf(q)
}

// Conflicts reports whether accesses to p and q can overlap: one is a
// prefix of the other. Sibling fields never conflict.
func (p Place) Conflicts(q Place) bool {
	return p.IsPrefixOf(q) || q.IsPrefixOf(p)
}

// String renders the place the way the source would spell it.
func (p Place) String() string {
	name := "_"
	if p.Root != nil {
		name = p.Root.Name
	}
	for i, s := range p.Path {
		if s.Kind != DerefSegment && i > 0 && p.Path[i-1].Kind == DerefSegment {
			name = "(" + name + ")"
		}
		switch s.Kind {
		case FieldSegment:
			name += "." + s.Name
		case IndexSegment:
			name += "[..]"
		case DerefSegment:
			if strings.ContainsAny(name, ".[") {
				name = "*(" + name + ")"
			} else {
				name = "*" + name
			}
		}
	}
	return name
}

// Type walks the root's type along the path. The result is Unresolved when
// a step does not fit the type.
func (p Place) Type() typesystem.Type {
	if p.Root == nil || p.Root.Type == nil {
		return typesystem.Unresolved
	}
	t := p.Root.Type
	for _, s := range p.Path {
		switch s.Kind {
		case DerefSegment:
			r, ok := t.(typesystem.TRef)
			if !ok {
				return typesystem.Unresolved
			}
			t = r.Elem
		case IndexSegment:
			arr, ok := t.(typesystem.TArray)
			if !ok {
				return typesystem.Unresolved
			}
			t = arr.Elem
		case FieldSegment:
			st, ok := t.(*typesystem.TStruct)
			if !ok {
				return typesystem.Unresolved
			}
			f, ok := st.Field(s.Name)
			if !ok {
				return typesystem.Unresolved
			}
			t = f.Type
		}
	}
	return t
}

// Resolver supplies the typing facts needed to turn an expression into a
// place. *analyzer.Info implements it.
type Resolver interface {
	SymbolOf(p *ast.PathExpression) *symbols.Symbol
	TypeOf(e ast.Expression) typesystem.Type
}

// FromExpression maps a place expression to its place. Field access and
// indexing through references get the implicit dereferences made
// explicit. The second result is false for expressions that do not denote
// a local's storage.
func FromExpression(e ast.Expression, r Resolver) (Place, bool) {
	switch n := e.(type) {
	case *ast.PathExpression:
		sym := r.SymbolOf(n)
		if sym == nil || (sym.Kind != symbols.VariableSymbol && sym.Kind != symbols.ParameterSymbol) {
			return Place{}, false
		}
		return Of(sym), true
	case *ast.GroupedExpression:
		return FromExpression(n.Inner, r)
	case *ast.FieldAccessExpression:
		base, ok := autoDeref(n.Base, r)
		if !ok {
			return Place{}, false
		}
		return base.Field(n.Field.Value), true
	case *ast.IndexExpression:
		base, ok := autoDeref(n.Base, r)
		if !ok {
			return Place{}, false
		}
		return base.Index(), true
	case *ast.DerefExpression:
		base, ok := FromExpression(n.Operand, r)
		if !ok {
			return Place{}, false
		}
		return base.Deref(), true
	}
	return Place{}, false
}

func autoDeref(e ast.Expression, r Resolver) (Place, bool) {
	p, ok := FromExpression(e, r)
	if !ok {
		return p, false
	}
	t := r.TypeOf(e)
	for {
		ref, isRef := t.(typesystem.TRef)
		if !isRef {
			return p, true
		}
		p = p.Deref()
		t = ref.Elem
	}
}
