package ast

import (
	"github.com/funvibe/rcheck/internal/token"
)

// TokenProvider is an interface for any AST node that can provide its primary token.
// This is useful for error reporting.
type TokenProvider interface {
	GetToken() token.Token
}

// Node is the base interface for all AST nodes.
type Node interface {
	TokenLiteral() string
	GetToken() token.Token
}

// Statement is a Node that represents a statement inside a block.
type Statement interface {
	Node
	statementNode()
}

// Expression is a Node that represents an expression.
type Expression interface {
	Node
	expressionNode()
}

// Item is a top-level or impl/trait-level declaration.
type Item interface {
	Node
	itemNode()
}

// Crate is the root node handed over by the parser.
type Crate struct {
	File  string
	Items []Item
}

func (c *Crate) TokenLiteral() string {
	if len(c.Items) > 0 {
		return c.Items[0].TokenLiteral()
	}
	return ""
}

func (c *Crate) GetToken() token.Token {
	if c == nil || len(c.Items) == 0 {
		return token.Token{}
	}
	return c.Items[0].GetToken()
}

// Identifier is a bare name.
type Identifier struct {
	Token token.Token
	Value string
}

func (i *Identifier) TokenLiteral() string { return i.Token.Lexeme }
func (i *Identifier) GetToken() token.Token {
	if i == nil {
		return token.Token{}
	}
	return i.Token
}
func (i *Identifier) String() string { return i.Value }

// SelfParam is the receiver of a method.
// self, mut self, &self, &mut self
type SelfParam struct {
	Token   token.Token
	Ref     bool
	Mutable bool
}

func (sp *SelfParam) TokenLiteral() string { return sp.Token.Lexeme }
func (sp *SelfParam) GetToken() token.Token {
	if sp == nil {
		return token.Token{}
	}
	return sp.Token
}

// Param is a function parameter.
// mut name: Type
type Param struct {
	Token   token.Token
	Name    *Identifier
	Mutable bool
	Type    Type
}

func (p *Param) TokenLiteral() string { return p.Token.Lexeme }
func (p *Param) GetToken() token.Token {
	if p == nil {
		return token.Token{}
	}
	return p.Token
}

// FunctionItem declares a free function, an associated function or a method.
// fn name(self, a: T) -> R { ... }
type FunctionItem struct {
	Token      token.Token
	Name       *Identifier
	Self       *SelfParam // nil for functions without receiver
	Params     []*Param
	ReturnType Type             // nil means unit
	Body       *BlockExpression // nil for trait declarations without default
}

func (fi *FunctionItem) itemNode()            {}
func (fi *FunctionItem) TokenLiteral() string { return fi.Token.Lexeme }
func (fi *FunctionItem) GetToken() token.Token {
	if fi == nil {
		return token.Token{}
	}
	return fi.Token
}

// FieldDecl is one field of a struct declaration.
type FieldDecl struct {
	Token token.Token
	Name  *Identifier
	Type  Type
}

func (fd *FieldDecl) TokenLiteral() string { return fd.Token.Lexeme }
func (fd *FieldDecl) GetToken() token.Token {
	if fd == nil {
		return token.Token{}
	}
	return fd.Token
}

// StructItem declares a struct.
// struct Point { x: i32, y: i32 }
type StructItem struct {
	Token  token.Token
	Name   *Identifier
	Fields []*FieldDecl
}

func (si *StructItem) itemNode()            {}
func (si *StructItem) TokenLiteral() string { return si.Token.Lexeme }
func (si *StructItem) GetToken() token.Token {
	if si == nil {
		return token.Token{}
	}
	return si.Token
}

// EnumItem declares an enum with unit variants.
// enum Color { Red, Green }
type EnumItem struct {
	Token    token.Token
	Name     *Identifier
	Variants []*Identifier
}

func (ei *EnumItem) itemNode()            {}
func (ei *EnumItem) TokenLiteral() string { return ei.Token.Lexeme }
func (ei *EnumItem) GetToken() token.Token {
	if ei == nil {
		return token.Token{}
	}
	return ei.Token
}

// ConstItem declares a constant.
// const N: usize = 4;
type ConstItem struct {
	Token token.Token
	Name  *Identifier
	Type  Type
	Value Expression // nil only inside trait declarations
}

func (ci *ConstItem) itemNode()            {}
func (ci *ConstItem) TokenLiteral() string { return ci.Token.Lexeme }
func (ci *ConstItem) GetToken() token.Token {
	if ci == nil {
		return token.Token{}
	}
	return ci.Token
}

// ImplItem attaches associated items to a struct or enum.
// impl Trait for Target { ... } or impl Target { ... }
type ImplItem struct {
	Token  token.Token
	Trait  *Identifier // nil for inherent impls
	Target *Identifier
	Items  []Item
}

func (ii *ImplItem) itemNode()            {}
func (ii *ImplItem) TokenLiteral() string { return ii.Token.Lexeme }
func (ii *ImplItem) GetToken() token.Token {
	if ii == nil {
		return token.Token{}
	}
	return ii.Token
}

// TraitItem declares a trait.
// trait Shape { fn area(&self) -> i32; }
type TraitItem struct {
	Token token.Token
	Name  *Identifier
	Items []Item
}

func (ti *TraitItem) itemNode()            {}
func (ti *TraitItem) TokenLiteral() string { return ti.Token.Lexeme }
func (ti *TraitItem) GetToken() token.Token {
	if ti == nil {
		return token.Token{}
	}
	return ti.Token
}

// LetStatement binds a pattern.
// let mut x: i32 = 5;
type LetStatement struct {
	Token   token.Token
	Pattern Pattern
	Type    Type       // optional
	Value   Expression // optional, deferred initialization when nil
}

func (ls *LetStatement) statementNode()       {}
func (ls *LetStatement) TokenLiteral() string { return ls.Token.Lexeme }
func (ls *LetStatement) GetToken() token.Token {
	if ls == nil {
		return token.Token{}
	}
	return ls.Token
}

// ExpressionStatement is an expression in statement position.
// Semicolon records whether a trailing `;` discards the value.
type ExpressionStatement struct {
	Token      token.Token
	Expression Expression
	Semicolon  bool
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Lexeme }
func (es *ExpressionStatement) GetToken() token.Token {
	if es == nil {
		return token.Token{}
	}
	return es.Token
}
