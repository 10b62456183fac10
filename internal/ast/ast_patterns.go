package ast

import (
	"github.com/funvibe/rcheck/internal/token"
)

// Pattern appears in let bindings and match arms.
type Pattern interface {
	Node
	patternNode()
}

// IdentifierPattern binds a name.
// x, mut x, ref x, ref mut x
type IdentifierPattern struct {
	Token   token.Token
	Name    *Identifier
	Mutable bool
	ByRef   bool
}

func (ip *IdentifierPattern) patternNode()         {}
func (ip *IdentifierPattern) TokenLiteral() string { return ip.Token.Lexeme }
func (ip *IdentifierPattern) GetToken() token.Token {
	if ip == nil {
		return token.Token{}
	}
	return ip.Token
}

// WildcardPattern: _
type WildcardPattern struct {
	Token token.Token
}

func (wp *WildcardPattern) patternNode()         {}
func (wp *WildcardPattern) TokenLiteral() string { return wp.Token.Lexeme }
func (wp *WildcardPattern) GetToken() token.Token {
	if wp == nil {
		return token.Token{}
	}
	return wp.Token
}

// ReferencePattern destructures a reference.
// &x, &mut x
type ReferencePattern struct {
	Token   token.Token
	Mutable bool
	Inner   Pattern
}

func (rp *ReferencePattern) patternNode()         {}
func (rp *ReferencePattern) TokenLiteral() string { return rp.Token.Lexeme }
func (rp *ReferencePattern) GetToken() token.Token {
	if rp == nil {
		return token.Token{}
	}
	return rp.Token
}

// LiteralPattern matches a literal value: 1, -1, true, 'c'.
type LiteralPattern struct {
	Token token.Token
	Value Expression
}

func (lp *LiteralPattern) patternNode()         {}
func (lp *LiteralPattern) TokenLiteral() string { return lp.Token.Lexeme }
func (lp *LiteralPattern) GetToken() token.Token {
	if lp == nil {
		return token.Token{}
	}
	return lp.Token
}

// PathPattern matches an enum variant or a constant: Color::Red, N.
type PathPattern struct {
	Token token.Token
	Path  *PathExpression
}

func (pp *PathPattern) patternNode()         {}
func (pp *PathPattern) TokenLiteral() string { return pp.Token.Lexeme }
func (pp *PathPattern) GetToken() token.Token {
	if pp == nil {
		return token.Token{}
	}
	return pp.Token
}
