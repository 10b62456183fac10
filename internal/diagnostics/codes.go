package diagnostics

// ErrorCode identifies one diagnostic. The prefix letter selects the Kind.
type ErrorCode string

const (
	// Name errors (N prefix)
	ErrN001 ErrorCode = "N001" // undeclared name
	ErrN002 ErrorCode = "N002" // duplicate declaration in one scope
	ErrN003 ErrorCode = "N003" // unknown field
	ErrN004 ErrorCode = "N004" // unknown associated item or method
	ErrN005 ErrorCode = "N005" // trait impl missing or adding items
	ErrN006 ErrorCode = "N006" // name is not a value / not a type

	// Type errors (T prefix)
	ErrT001 ErrorCode = "T001" // mismatched types
	ErrT002 ErrorCode = "T002" // invalid cast
	ErrT003 ErrorCode = "T003" // not callable
	ErrT004 ErrorCode = "T004" // wrong argument count
	ErrT005 ErrorCode = "T005" // invalid operand types
	ErrT006 ErrorCode = "T006" // not indexable / not dereferenceable
	ErrT007 ErrorCode = "T007" // struct literal fields
	ErrT008 ErrorCode = "T008" // ambiguous type never resolved

	// Constant evaluation errors (C prefix)
	ErrC001 ErrorCode = "C001" // division or remainder by zero
	ErrC002 ErrorCode = "C002" // overflow
	ErrC003 ErrorCode = "C003" // non-constant expression
	ErrC004 ErrorCode = "C004" // array size is not a non-negative integer constant

	// Move errors (O prefix)
	ErrO001 ErrorCode = "O001" // use of moved value
	ErrO002 ErrorCode = "O002" // use of partially moved value
	ErrO003 ErrorCode = "O003" // move out of reference or index
	ErrO004 ErrorCode = "O004" // use of possibly uninitialized binding

	// Borrow errors (B prefix)
	ErrB001 ErrorCode = "B001" // conflicting borrow
	ErrB002 ErrorCode = "B002" // use while mutably borrowed
	ErrB003 ErrorCode = "B003" // move or assignment while borrowed

	// Mutability errors (M prefix)
	ErrM001 ErrorCode = "M001" // assignment to immutable binding
	ErrM002 ErrorCode = "M002" // mutable borrow of immutable binding
	ErrM003 ErrorCode = "M003" // write through shared reference

	// Structural errors (S prefix)
	ErrS001 ErrorCode = "S001" // exit is not the last statement
	ErrS002 ErrorCode = "S002" // return type mismatch
	ErrS003 ErrorCode = "S003" // break or continue outside loop
	ErrS004 ErrorCode = "S004" // self outside method
	ErrS005 ErrorCode = "S005" // break with value inside while
)

// Kind is the message kind of a diagnostic.
type Kind int

const (
	NameError Kind = iota
	TypeMismatch
	AmbiguousTypeUnresolved
	ConstEvalError
	MoveError
	BorrowConflict
	MutabilityError
	StructuralError
)

func (k Kind) String() string {
	switch k {
	case NameError:
		return "NameError"
	case TypeMismatch:
		return "TypeMismatch"
	case AmbiguousTypeUnresolved:
		return "AmbiguousTypeUnresolved"
	case ConstEvalError:
		return "ConstEvalError"
	case MoveError:
		return "MoveError"
	case BorrowConflict:
		return "BorrowConflict"
	case MutabilityError:
		return "MutabilityError"
	case StructuralError:
		return "StructuralError"
	default:
		return "unknown"
	}
}

// Kind maps a code to its message kind.
func (c ErrorCode) Kind() Kind {
	if c == ErrT008 {
		return AmbiguousTypeUnresolved
	}
	if len(c) == 0 {
		return StructuralError
	}
	switch c[0] {
	case 'N':
		return NameError
	case 'T':
		return TypeMismatch
	case 'C':
		return ConstEvalError
	case 'O':
		return MoveError
	case 'B':
		return BorrowConflict
	case 'M':
		return MutabilityError
	default:
		return StructuralError
	}
}

// Subkind names the constant-evaluation failure for C codes.
func (c ErrorCode) Subkind() string {
	switch c {
	case ErrC001:
		return "DivisionByZero"
	case ErrC002:
		return "Overflow"
	case ErrC003:
		return "NonConstantExpression"
	case ErrC004:
		return "NegativeArraySize"
	}
	return ""
}
