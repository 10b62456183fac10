package config

// Entry point and receiver names
const (
	MainFuncName  = "main"
	SelfValueName = "self"
	SelfTypeName  = "Self"
)

// Built-in function names
const (
	PrintFuncName      = "print"
	PrintlnFuncName    = "println"
	PrintIntFuncName   = "printInt"
	PrintlnIntFuncName = "printlnInt"
	GetStringFuncName  = "getString"
	GetIntFuncName     = "getInt"
	ExitFuncName       = "exit"
)

// Built-in method names
const (
	ToStringMethodName = "to_string"
	AsStrMethodName    = "as_str"
	AsMutStrMethodName = "as_mut_str"
	LenMethodName      = "len"
	AppendMethodName   = "append"
)

// Built-in associated items
const (
	FromFuncName = "from"
	NewFuncName  = "new"
	MaxConstName = "MAX"
	MinConstName = "MIN"
)

// Primitive type names
const (
	BoolTypeName   = "bool"
	CharTypeName   = "char"
	StrTypeName    = "str"
	StringTypeName = "String"
	I8TypeName     = "i8"
	I16TypeName    = "i16"
	I32TypeName    = "i32"
	I64TypeName    = "i64"
	IsizeTypeName  = "isize"
	U8TypeName     = "u8"
	U16TypeName    = "u16"
	U32TypeName    = "u32"
	U64TypeName    = "u64"
	UsizeTypeName  = "usize"
)

// DefaultPointerBits is the width of isize/usize on the target.
const DefaultPointerBits = 32
