package typesystem

import (
	"fmt"
	"sort"
	"strings"
)

// Type is the interface for all types in our system.
type Type interface {
	String() string
	typ()
}

// PrimKind enumerates the primitive types.
type PrimKind int

const (
	KBool PrimKind = iota
	KChar
	KI8
	KI16
	KI32
	KI64
	KIsize
	KU8
	KU16
	KU32
	KU64
	KUsize
	KUnit
	KNever
	KStr
	KString
	KIntLit // type of an unsuffixed integer literal before its width is known
)

var primNames = map[PrimKind]string{
	KBool: "bool", KChar: "char",
	KI8: "i8", KI16: "i16", KI32: "i32", KI64: "i64", KIsize: "isize",
	KU8: "u8", KU16: "u16", KU32: "u32", KU64: "u64", KUsize: "usize",
	KUnit: "()", KNever: "!", KStr: "str", KString: "String",
	KIntLit: "{integer}",
}

// TPrim is a primitive type.
type TPrim struct {
	Kind PrimKind
}

func (t TPrim) typ()           {}
func (t TPrim) String() string { return primNames[t.Kind] }

var (
	Bool    = TPrim{KBool}
	Char    = TPrim{KChar}
	I8      = TPrim{KI8}
	I16     = TPrim{KI16}
	I32     = TPrim{KI32}
	I64     = TPrim{KI64}
	Isize   = TPrim{KIsize}
	U8      = TPrim{KU8}
	U16     = TPrim{KU16}
	U32     = TPrim{KU32}
	U64     = TPrim{KU64}
	Usize   = TPrim{KUsize}
	Unit    = TPrim{KUnit}
	Never   = TPrim{KNever}
	Str     = TPrim{KStr}
	StringT = TPrim{KString}
	IntLit  = TPrim{KIntLit}
)

// PrimByName maps source-level primitive names to types.
var PrimByName = map[string]TPrim{
	"bool": Bool, "char": Char,
	"i8": I8, "i16": I16, "i32": I32, "i64": I64, "isize": Isize,
	"u8": U8, "u16": U16, "u32": U32, "u64": U64, "usize": Usize,
	"str": Str, "String": StringT,
}

// TArray is [Elem; Len]. Len is -1 when the length failed to evaluate.
type TArray struct {
	Elem Type
	Len  int64
}

func (t TArray) typ() {}
func (t TArray) String() string {
	if t.Len < 0 {
		return fmt.Sprintf("[%s; _]", t.Elem)
	}
	return fmt.Sprintf("[%s; %d]", t.Elem, t.Len)
}

// TRef is &Elem or &mut Elem.
type TRef struct {
	Elem    Type
	Mutable bool
}

func (t TRef) typ() {}
func (t TRef) String() string {
	if t.Mutable {
		return "&mut " + t.Elem.String()
	}
	return "&" + t.Elem.String()
}

// Field is a named struct field.
type Field struct {
	Name string
	Type Type
}

// TStruct is a nominal struct type. Fields are filled in after all type
// names are known, so values are shared by pointer.
type TStruct struct {
	Name   string
	Fields []Field
}

func (t *TStruct) typ()           {}
func (t *TStruct) String() string { return t.Name }

// Field looks up a field by name.
func (t *TStruct) Field(name string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// TEnum is a nominal enum of unit variants.
type TEnum struct {
	Name     string
	Variants []string
}

func (t *TEnum) typ()           {}
func (t *TEnum) String() string { return t.Name }

// HasVariant reports whether the enum declares v.
func (t *TEnum) HasVariant(v string) bool {
	for _, x := range t.Variants {
		if x == v {
			return true
		}
	}
	return false
}

// TFunc is a function signature.
type TFunc struct {
	Params []Type
	Return Type
}

func (t TFunc) typ() {}
func (t TFunc) String() string {
	params := make([]string, len(t.Params))
	for i, p := range t.Params {
		params[i] = p.String()
	}
	s := "fn(" + strings.Join(params, ", ") + ")"
	if t.Return != nil && !IsUnit(t.Return) {
		s += " -> " + t.Return.String()
	}
	return s
}

// TCtor is the value of a bare type name: usable to reach `Type::item`,
// not callable.
type TCtor struct {
	Target Type
}

func (t TCtor) typ()           {}
func (t TCtor) String() string { return "type " + t.Target.String() }

// TAmbiguous is the transient type of a control-flow expression whose
// value type waits on its use context.
type TAmbiguous struct {
	Candidates []Type
}

func (t TAmbiguous) typ() {}
func (t TAmbiguous) String() string {
	return "{ambiguous: " + strings.Join(distinctNames(t.Candidates), " | ") + "}"
}

// TUnresolved is the fallback type after an error. It unifies with
// everything so one mistake does not cascade.
type TUnresolved struct{}

func (t TUnresolved) typ()           {}
func (t TUnresolved) String() string { return "{unknown}" }

var Unresolved = TUnresolved{}

// distinctNames returns the sorted, distinct string forms of types.
func distinctNames(ts []Type) []string {
	seen := make(map[string]bool)
	var names []string
	for _, t := range ts {
		s := t.String()
		if !seen[s] {
			seen[s] = true
			names = append(names, s)
		}
	}
	sort.Strings(names)
	return names
}

func prim(t Type) (PrimKind, bool) {
	p, ok := t.(TPrim)
	return p.Kind, ok
}

func isKind(t Type, k PrimKind) bool {
	p, ok := t.(TPrim)
	return ok && p.Kind == k
}

// IsInteger reports whether t is an integer type of any width, including {integer}.
func IsInteger(t Type) bool {
	k, ok := prim(t)
	return ok && (k >= KI8 && k <= KUsize || k == KIntLit)
}

// IsSigned reports whether t is a signed integer type. {integer} counts as signed.
func IsSigned(t Type) bool {
	k, ok := prim(t)
	return ok && (k >= KI8 && k <= KIsize || k == KIntLit)
}

func IsBool(t Type) bool   { return isKind(t, KBool) }
func IsChar(t Type) bool   { return isKind(t, KChar) }
func IsUnit(t Type) bool   { return isKind(t, KUnit) }
func IsNever(t Type) bool  { return isKind(t, KNever) }
func IsIntLit(t Type) bool { return isKind(t, KIntLit) }

func IsUnresolved(t Type) bool {
	_, ok := t.(TUnresolved)
	return ok
}

func IsAmbiguous(t Type) bool {
	_, ok := t.(TAmbiguous)
	return ok
}

// IsString reports whether t is String.
func IsString(t Type) bool { return isKind(t, KString) }

// IsStr reports whether t is str.
func IsStr(t Type) bool { return isKind(t, KStr) }

// IsCopy reports whether values of t are copied instead of moved.
func IsCopy(t Type) bool {
	switch t := t.(type) {
	case TPrim:
		return t.Kind != KString && t.Kind != KStr
	case TRef:
		return !t.Mutable
	case TArray:
		return IsCopy(t.Elem)
	case TFunc, TCtor, TUnresolved:
		return true
	case TAmbiguous:
		for _, c := range t.Candidates {
			if !IsCopy(c) {
				return false
			}
		}
		return true
	}
	return false
}

// ContainsRef reports whether a value of t can hold a reference.
func ContainsRef(t Type) bool {
	return containsRef(t, map[*TStruct]bool{})
}

func containsRef(t Type, seen map[*TStruct]bool) bool {
	switch t := t.(type) {
	case TRef:
		return true
	case TArray:
		return containsRef(t.Elem, seen)
	case *TStruct:
		if seen[t] {
			return false
		}
		seen[t] = true
		for _, f := range t.Fields {
			if containsRef(f.Type, seen) {
				return true
			}
		}
	case TAmbiguous:
		for _, c := range t.Candidates {
			if containsRef(c, seen) {
				return true
			}
		}
	}
	return false
}

// IsSettled reports whether t contains neither {integer} nor ambiguous parts.
func IsSettled(t Type) bool {
	switch t := t.(type) {
	case TPrim:
		return t.Kind != KIntLit
	case TAmbiguous:
		return false
	case TArray:
		return IsSettled(t.Elem)
	case TRef:
		return IsSettled(t.Elem)
	}
	return true
}

// Deref strips all reference layers.
func Deref(t Type) Type {
	for {
		r, ok := t.(TRef)
		if !ok {
			return t
		}
		t = r.Elem
	}
}
