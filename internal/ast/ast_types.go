package ast

import (
	"github.com/funvibe/rcheck/internal/token"
)

// Type is a type annotation as written in source.
type Type interface {
	Node
	typeNode()
}

// NamedType is a primitive, struct, enum or Self type name.
// i32, Point, Self
type NamedType struct {
	Token token.Token
	Name  string
}

func (nt *NamedType) typeNode()            {}
func (nt *NamedType) TokenLiteral() string { return nt.Token.Lexeme }
func (nt *NamedType) GetToken() token.Token {
	if nt == nil {
		return token.Token{}
	}
	return nt.Token
}

// ReferenceType: &T, &mut T
type ReferenceType struct {
	Token   token.Token
	Mutable bool
	Elem    Type
}

func (rt *ReferenceType) typeNode()            {}
func (rt *ReferenceType) TokenLiteral() string { return rt.Token.Lexeme }
func (rt *ReferenceType) GetToken() token.Token {
	if rt == nil {
		return token.Token{}
	}
	return rt.Token
}

// ArrayType: [T; N]. Size is a constant expression.
type ArrayType struct {
	Token token.Token
	Elem  Type
	Size  Expression
}

func (at *ArrayType) typeNode()            {}
func (at *ArrayType) TokenLiteral() string { return at.Token.Lexeme }
func (at *ArrayType) GetToken() token.Token {
	if at == nil {
		return token.Token{}
	}
	return at.Token
}

// UnitType: ()
type UnitType struct {
	Token token.Token
}

func (ut *UnitType) typeNode()            {}
func (ut *UnitType) TokenLiteral() string { return ut.Token.Lexeme }
func (ut *UnitType) GetToken() token.Token {
	if ut == nil {
		return token.Token{}
	}
	return ut.Token
}
