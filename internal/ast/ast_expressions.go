package ast

import (
	"github.com/funvibe/rcheck/internal/token"
	"math/big"
)

// IntegerLiteral is an integer literal with an optional width suffix.
// 42, 7u8
type IntegerLiteral struct {
	Token  token.Token
	Value  *big.Int
	Suffix string // "" when unsuffixed
}

func (il *IntegerLiteral) expressionNode()      {}
func (il *IntegerLiteral) TokenLiteral() string { return il.Token.Lexeme }
func (il *IntegerLiteral) GetToken() token.Token {
	if il == nil {
		return token.Token{}
	}
	return il.Token
}

// BooleanLiteral: true / false
type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (bl *BooleanLiteral) expressionNode()      {}
func (bl *BooleanLiteral) TokenLiteral() string { return bl.Token.Lexeme }
func (bl *BooleanLiteral) GetToken() token.Token {
	if bl == nil {
		return token.Token{}
	}
	return bl.Token
}

// CharLiteral: 'a'
type CharLiteral struct {
	Token token.Token
	Value rune
}

func (cl *CharLiteral) expressionNode()      {}
func (cl *CharLiteral) TokenLiteral() string { return cl.Token.Lexeme }
func (cl *CharLiteral) GetToken() token.Token {
	if cl == nil {
		return token.Token{}
	}
	return cl.Token
}

// StringLiteral is a string literal, typed &str.
type StringLiteral struct {
	Token token.Token
	Value string
}

func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Lexeme }
func (sl *StringLiteral) GetToken() token.Token {
	if sl == nil {
		return token.Token{}
	}
	return sl.Token
}

// PathExpression is a one or two segment path.
// x, Color::Red, i32::MAX
type PathExpression struct {
	Token    token.Token
	Segments []*Identifier
}

func (pe *PathExpression) expressionNode()      {}
func (pe *PathExpression) TokenLiteral() string { return pe.Token.Lexeme }
func (pe *PathExpression) GetToken() token.Token {
	if pe == nil {
		return token.Token{}
	}
	return pe.Token
}

// GroupedExpression: (expr)
type GroupedExpression struct {
	Token token.Token
	Inner Expression
}

func (ge *GroupedExpression) expressionNode()      {}
func (ge *GroupedExpression) TokenLiteral() string { return ge.Token.Lexeme }
func (ge *GroupedExpression) GetToken() token.Token {
	if ge == nil {
		return token.Token{}
	}
	return ge.Token
}

// BorrowExpression: &expr, &mut expr
type BorrowExpression struct {
	Token   token.Token
	Mutable bool
	Operand Expression
}

func (be *BorrowExpression) expressionNode()      {}
func (be *BorrowExpression) TokenLiteral() string { return be.Token.Lexeme }
func (be *BorrowExpression) GetToken() token.Token {
	if be == nil {
		return token.Token{}
	}
	return be.Token
}

// DerefExpression: *expr
type DerefExpression struct {
	Token   token.Token
	Operand Expression
}

func (de *DerefExpression) expressionNode()      {}
func (de *DerefExpression) TokenLiteral() string { return de.Token.Lexeme }
func (de *DerefExpression) GetToken() token.Token {
	if de == nil {
		return token.Token{}
	}
	return de.Token
}

// PrefixExpression: -expr, !expr
type PrefixExpression struct {
	Token    token.Token
	Operator string
	Operand  Expression
}

func (pr *PrefixExpression) expressionNode()      {}
func (pr *PrefixExpression) TokenLiteral() string { return pr.Token.Lexeme }
func (pr *PrefixExpression) GetToken() token.Token {
	if pr == nil {
		return token.Token{}
	}
	return pr.Token
}

// InfixExpression: a + b, a && b, a << b
type InfixExpression struct {
	Token    token.Token
	Operator string
	Left     Expression
	Right    Expression
}

func (ie *InfixExpression) expressionNode()      {}
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Lexeme }
func (ie *InfixExpression) GetToken() token.Token {
	if ie == nil {
		return token.Token{}
	}
	return ie.Token
}

// CastExpression: expr as Type
type CastExpression struct {
	Token   token.Token
	Operand Expression
	Type    Type
}

func (ce *CastExpression) expressionNode()      {}
func (ce *CastExpression) TokenLiteral() string { return ce.Token.Lexeme }
func (ce *CastExpression) GetToken() token.Token {
	if ce == nil {
		return token.Token{}
	}
	return ce.Token
}

// AssignExpression: target = value, target += value
type AssignExpression struct {
	Token    token.Token
	Operator string // "=" or a compound operator such as "+="
	Target   Expression
	Value    Expression
}

func (ae *AssignExpression) expressionNode()      {}
func (ae *AssignExpression) TokenLiteral() string { return ae.Token.Lexeme }
func (ae *AssignExpression) GetToken() token.Token {
	if ae == nil {
		return token.Token{}
	}
	return ae.Token
}

// ArrayLiteral: [a, b, c]
type ArrayLiteral struct {
	Token    token.Token
	Elements []Expression
}

func (al *ArrayLiteral) expressionNode()      {}
func (al *ArrayLiteral) TokenLiteral() string { return al.Token.Lexeme }
func (al *ArrayLiteral) GetToken() token.Token {
	if al == nil {
		return token.Token{}
	}
	return al.Token
}

// ArrayRepeatExpression: [value; count]
type ArrayRepeatExpression struct {
	Token token.Token
	Value Expression
	Count Expression
}

func (ar *ArrayRepeatExpression) expressionNode()      {}
func (ar *ArrayRepeatExpression) TokenLiteral() string { return ar.Token.Lexeme }
func (ar *ArrayRepeatExpression) GetToken() token.Token {
	if ar == nil {
		return token.Token{}
	}
	return ar.Token
}

// IndexExpression: base[index]
type IndexExpression struct {
	Token token.Token
	Base  Expression
	Index Expression
}

func (ix *IndexExpression) expressionNode()      {}
func (ix *IndexExpression) TokenLiteral() string { return ix.Token.Lexeme }
func (ix *IndexExpression) GetToken() token.Token {
	if ix == nil {
		return token.Token{}
	}
	return ix.Token
}

// StructLiteral: Point { x: 1, y: 2 }
type StructLiteral struct {
	Token  token.Token
	Name   *Identifier
	Fields []*FieldInit
}

func (st *StructLiteral) expressionNode()      {}
func (st *StructLiteral) TokenLiteral() string { return st.Token.Lexeme }
func (st *StructLiteral) GetToken() token.Token {
	if st == nil {
		return token.Token{}
	}
	return st.Token
}

// CallExpression: f(a, b), Type::func(a)
type CallExpression struct {
	Token     token.Token
	Function  Expression
	Arguments []Expression
}

func (ca *CallExpression) expressionNode()      {}
func (ca *CallExpression) TokenLiteral() string { return ca.Token.Lexeme }
func (ca *CallExpression) GetToken() token.Token {
	if ca == nil {
		return token.Token{}
	}
	return ca.Token
}

// MethodCallExpression: recv.method(a)
type MethodCallExpression struct {
	Token     token.Token
	Receiver  Expression
	Method    *Identifier
	Arguments []Expression
}

func (mc *MethodCallExpression) expressionNode()      {}
func (mc *MethodCallExpression) TokenLiteral() string { return mc.Token.Lexeme }
func (mc *MethodCallExpression) GetToken() token.Token {
	if mc == nil {
		return token.Token{}
	}
	return mc.Token
}

// FieldAccessExpression: base.field
type FieldAccessExpression struct {
	Token token.Token
	Base  Expression
	Field *Identifier
}

func (fa *FieldAccessExpression) expressionNode()      {}
func (fa *FieldAccessExpression) TokenLiteral() string { return fa.Token.Lexeme }
func (fa *FieldAccessExpression) GetToken() token.Token {
	if fa == nil {
		return token.Token{}
	}
	return fa.Token
}

// ContinueExpression: continue
type ContinueExpression struct {
	Token token.Token
}

func (co *ContinueExpression) expressionNode()      {}
func (co *ContinueExpression) TokenLiteral() string { return co.Token.Lexeme }
func (co *ContinueExpression) GetToken() token.Token {
	if co == nil {
		return token.Token{}
	}
	return co.Token
}

// BreakExpression: break, break value
type BreakExpression struct {
	Token token.Token
	Value Expression // optional
}

func (br *BreakExpression) expressionNode()      {}
func (br *BreakExpression) TokenLiteral() string { return br.Token.Lexeme }
func (br *BreakExpression) GetToken() token.Token {
	if br == nil {
		return token.Token{}
	}
	return br.Token
}

// ReturnExpression: return, return value
type ReturnExpression struct {
	Token token.Token
	Value Expression // optional
}

func (re *ReturnExpression) expressionNode()      {}
func (re *ReturnExpression) TokenLiteral() string { return re.Token.Lexeme }
func (re *ReturnExpression) GetToken() token.Token {
	if re == nil {
		return token.Token{}
	}
	return re.Token
}

// UnderscoreExpression is `_` used as an assignment target.
type UnderscoreExpression struct {
	Token token.Token
}

func (ue *UnderscoreExpression) expressionNode()      {}
func (ue *UnderscoreExpression) TokenLiteral() string { return ue.Token.Lexeme }
func (ue *UnderscoreExpression) GetToken() token.Token {
	if ue == nil {
		return token.Token{}
	}
	return ue.Token
}

// BlockExpression: { stmts; tail }
type BlockExpression struct {
	Token      token.Token
	Statements []Statement
	Tail       Expression // nil when the block ends with a statement
}

func (bk *BlockExpression) expressionNode()      {}
func (bk *BlockExpression) TokenLiteral() string { return bk.Token.Lexeme }
func (bk *BlockExpression) GetToken() token.Token {
	if bk == nil {
		return token.Token{}
	}
	return bk.Token
}

// IfExpression: if cond { ... } else { ... }
type IfExpression struct {
	Token       token.Token
	Condition   Expression
	Consequence *BlockExpression
	Alternative Expression // nil, *BlockExpression or *IfExpression
}

func (ifx *IfExpression) expressionNode()      {}
func (ifx *IfExpression) TokenLiteral() string { return ifx.Token.Lexeme }
func (ifx *IfExpression) GetToken() token.Token {
	if ifx == nil {
		return token.Token{}
	}
	return ifx.Token
}

// LoopExpression: loop { ... }
type LoopExpression struct {
	Token token.Token
	Body  *BlockExpression
}

func (lp *LoopExpression) expressionNode()      {}
func (lp *LoopExpression) TokenLiteral() string { return lp.Token.Lexeme }
func (lp *LoopExpression) GetToken() token.Token {
	if lp == nil {
		return token.Token{}
	}
	return lp.Token
}

// WhileExpression: while cond { ... }
type WhileExpression struct {
	Token     token.Token
	Condition Expression
	Body      *BlockExpression
}

func (wh *WhileExpression) expressionNode()      {}
func (wh *WhileExpression) TokenLiteral() string { return wh.Token.Lexeme }
func (wh *WhileExpression) GetToken() token.Token {
	if wh == nil {
		return token.Token{}
	}
	return wh.Token
}

// MatchExpression: match subject { pat => body, ... }
type MatchExpression struct {
	Token   token.Token
	Subject Expression
	Arms    []*MatchArm
}

func (ma *MatchExpression) expressionNode()      {}
func (ma *MatchExpression) TokenLiteral() string { return ma.Token.Lexeme }
func (ma *MatchExpression) GetToken() token.Token {
	if ma == nil {
		return token.Token{}
	}
	return ma.Token
}

// FieldInit is one `name: value` entry of a struct literal.
type FieldInit struct {
	Token token.Token
	Name  *Identifier
	Value Expression
}

func (fi *FieldInit) TokenLiteral() string { return fi.Token.Lexeme }
func (fi *FieldInit) GetToken() token.Token {
	if fi == nil {
		return token.Token{}
	}
	return fi.Token
}

// MatchArm is one `pattern => body` arm.
type MatchArm struct {
	Token   token.Token
	Pattern Pattern
	Body    Expression
}

func (m *MatchArm) TokenLiteral() string { return m.Token.Lexeme }
func (m *MatchArm) GetToken() token.Token {
	if m == nil {
		return token.Token{}
	}
	return m.Token
}

// Name returns the path joined by "::".
func (pe *PathExpression) Name() string {
	s := ""
	for i, seg := range pe.Segments {
		if i > 0 {
			s += "::"
		}
		s += seg.Value
	}
	return s
}

// IsBlockLike reports whether e ends in a block and may stand as a statement without `;`.
func IsBlockLike(e Expression) bool {
	switch e.(type) {
	case *BlockExpression, *IfExpression, *LoopExpression, *WhileExpression, *MatchExpression:
		return true
	}
	return false
}
