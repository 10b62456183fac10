package ast

import (
	"github.com/funvibe/rcheck/internal/token"
	"math/big"
	"strings"
)

// Builders for constructing trees without a parser. Positions are filled in
// by NewCrate via AssignPositions.

func lex(s string) token.Token {
	return token.Token{Lexeme: s}
}

// Identifier and literal helpers.

func ID(name string) *Identifier {
	return &Identifier{Token: lex(name), Value: name}
}

func Int(value int64) *IntegerLiteral {
	return IntBig(big.NewInt(value), "")
}

func IntS(value int64, suffix string) *IntegerLiteral {
	return IntBig(big.NewInt(value), suffix)
}

func IntBig(value *big.Int, suffix string) *IntegerLiteral {
	return &IntegerLiteral{Token: lex(value.String() + suffix), Value: new(big.Int).Set(value), Suffix: suffix}
}

func Bool(value bool) *BooleanLiteral {
	if value {
		return &BooleanLiteral{Token: lex("true"), Value: true}
	}
	return &BooleanLiteral{Token: lex("false")}
}

func Chr(value rune) *CharLiteral {
	return &CharLiteral{Token: lex("'" + string(value) + "'"), Value: value}
}

func Str(value string) *StringLiteral {
	return &StringLiteral{Token: lex(`"` + value + `"`), Value: value}
}

// P builds a path from "a" or "Type::item".
func P(path string) *PathExpression {
	parts := strings.Split(path, "::")
	segs := make([]*Identifier, len(parts))
	for i, part := range parts {
		segs[i] = ID(part)
	}
	return &PathExpression{Token: lex(path), Segments: segs}
}

// Expression helpers.

func Grp(inner Expression) *GroupedExpression {
	return &GroupedExpression{Token: lex("("), Inner: inner}
}

func Ref(operand Expression) *BorrowExpression {
	return &BorrowExpression{Token: lex("&"), Operand: operand}
}

func RefMut(operand Expression) *BorrowExpression {
	return &BorrowExpression{Token: lex("&mut"), Mutable: true, Operand: operand}
}

func Deref(operand Expression) *DerefExpression {
	return &DerefExpression{Token: lex("*"), Operand: operand}
}

func Neg(operand Expression) *PrefixExpression {
	return &PrefixExpression{Token: lex("-"), Operator: "-", Operand: operand}
}

func Not(operand Expression) *PrefixExpression {
	return &PrefixExpression{Token: lex("!"), Operator: "!", Operand: operand}
}

func Bin(op string, left, right Expression) *InfixExpression {
	return &InfixExpression{Token: lex(op), Operator: op, Left: left, Right: right}
}

func Cast(operand Expression, t Type) *CastExpression {
	return &CastExpression{Token: lex("as"), Operand: operand, Type: t}
}

func Assign(target, value Expression) *AssignExpression {
	return AssignOp("=", target, value)
}

func AssignOp(op string, target, value Expression) *AssignExpression {
	return &AssignExpression{Token: lex(op), Operator: op, Target: target, Value: value}
}

func Arr(elements ...Expression) *ArrayLiteral {
	return &ArrayLiteral{Token: lex("["), Elements: elements}
}

func ArrRep(value, count Expression) *ArrayRepeatExpression {
	return &ArrayRepeatExpression{Token: lex("["), Value: value, Count: count}
}

func Idx(base, index Expression) *IndexExpression {
	return &IndexExpression{Token: lex("["), Base: base, Index: index}
}

func Fld(base Expression, field string) *FieldAccessExpression {
	return &FieldAccessExpression{Token: lex("."), Base: base, Field: ID(field)}
}

func StructLit(name string, fields ...*FieldInit) *StructLiteral {
	return &StructLiteral{Token: lex(name), Name: ID(name), Fields: fields}
}

func FI(name string, value Expression) *FieldInit {
	return &FieldInit{Token: lex(name), Name: ID(name), Value: value}
}

func Call(fn Expression, args ...Expression) *CallExpression {
	return &CallExpression{Token: lex("("), Function: fn, Arguments: args}
}

// CallN calls a function by path.
func CallN(path string, args ...Expression) *CallExpression {
	return Call(P(path), args...)
}

func MCall(receiver Expression, method string, args ...Expression) *MethodCallExpression {
	return &MethodCallExpression{Token: lex("."), Receiver: receiver, Method: ID(method), Arguments: args}
}

func Brk(value Expression) *BreakExpression {
	return &BreakExpression{Token: lex("break"), Value: value}
}

func Cont() *ContinueExpression {
	return &ContinueExpression{Token: lex("continue")}
}

func Ret(value Expression) *ReturnExpression {
	return &ReturnExpression{Token: lex("return"), Value: value}
}

func Under() *UnderscoreExpression {
	return &UnderscoreExpression{Token: lex("_")}
}

// Blk builds a block. A trailing Expr statement becomes the tail.
func Blk(stmts ...Statement) *BlockExpression {
	b := &BlockExpression{Token: lex("{")}
	if n := len(stmts); n > 0 {
		if es, ok := stmts[n-1].(*ExpressionStatement); ok && !es.Semicolon {
			b.Tail = es.Expression
			stmts = stmts[:n-1]
		}
	}
	b.Statements = stmts
	return b
}

func If(cond Expression, then *BlockExpression, alt Expression) *IfExpression {
	return &IfExpression{Token: lex("if"), Condition: cond, Consequence: then, Alternative: alt}
}

func Loop(body *BlockExpression) *LoopExpression {
	return &LoopExpression{Token: lex("loop"), Body: body}
}

func While(cond Expression, body *BlockExpression) *WhileExpression {
	return &WhileExpression{Token: lex("while"), Condition: cond, Body: body}
}

func Match(subject Expression, arms ...*MatchArm) *MatchExpression {
	return &MatchExpression{Token: lex("match"), Subject: subject, Arms: arms}
}

func Arm(pattern Pattern, body Expression) *MatchArm {
	return &MatchArm{Token: lex("=>"), Pattern: pattern, Body: body}
}

// Statement helpers.

// Expr is an expression statement without a trailing `;`.
func Expr(e Expression) *ExpressionStatement {
	return &ExpressionStatement{Token: e.GetToken(), Expression: e}
}

// Semi is an expression statement terminated by `;`.
func Semi(e Expression) *ExpressionStatement {
	return &ExpressionStatement{Token: e.GetToken(), Expression: e, Semicolon: true}
}

func Let(name string, t Type, value Expression) *LetStatement {
	return LetP(PI(name), t, value)
}

func LetMut(name string, t Type, value Expression) *LetStatement {
	return LetP(PIMut(name), t, value)
}

func LetP(p Pattern, t Type, value Expression) *LetStatement {
	return &LetStatement{Token: lex("let"), Pattern: p, Type: t, Value: value}
}

// Pattern helpers.

func PI(name string) *IdentifierPattern {
	return &IdentifierPattern{Token: lex(name), Name: ID(name)}
}

func PIMut(name string) *IdentifierPattern {
	return &IdentifierPattern{Token: lex(name), Name: ID(name), Mutable: true}
}

func PWild() *WildcardPattern {
	return &WildcardPattern{Token: lex("_")}
}

func PRef(inner Pattern) *ReferencePattern {
	return &ReferencePattern{Token: lex("&"), Inner: inner}
}

func PLit(value Expression) *LiteralPattern {
	return &LiteralPattern{Token: value.GetToken(), Value: value}
}

func PPath(path string) *PathPattern {
	return &PathPattern{Token: lex(path), Path: P(path)}
}

// Type expression helpers.

func Ty(name string) *NamedType {
	return &NamedType{Token: lex(name), Name: name}
}

func TyRef(elem Type) *ReferenceType {
	return &ReferenceType{Token: lex("&"), Elem: elem}
}

func TyRefMut(elem Type) *ReferenceType {
	return &ReferenceType{Token: lex("&mut"), Mutable: true, Elem: elem}
}

func TyArr(elem Type, size Expression) *ArrayType {
	return &ArrayType{Token: lex("["), Elem: elem, Size: size}
}

func TyUnit() *UnitType {
	return &UnitType{Token: lex("()")}
}

// Item helpers.

func Fn(name string, params []*Param, ret Type, body *BlockExpression) *FunctionItem {
	return &FunctionItem{Token: lex("fn"), Name: ID(name), Params: params, ReturnType: ret, Body: body}
}

// Method builds a function with a receiver.
func Method(name string, self *SelfParam, params []*Param, ret Type, body *BlockExpression) *FunctionItem {
	fn := Fn(name, params, ret, body)
	fn.Self = self
	return fn
}

func Prm(name string, t Type) *Param {
	return &Param{Token: lex(name), Name: ID(name), Type: t}
}

func PrmMut(name string, t Type) *Param {
	return &Param{Token: lex(name), Name: ID(name), Mutable: true, Type: t}
}

func Params(params ...*Param) []*Param {
	return params
}

func SelfV() *SelfParam {
	return &SelfParam{Token: lex("self")}
}

func SelfRef() *SelfParam {
	return &SelfParam{Token: lex("&self"), Ref: true}
}

func SelfRefMut() *SelfParam {
	return &SelfParam{Token: lex("&mut self"), Ref: true, Mutable: true}
}

func StructDef(name string, fields ...*FieldDecl) *StructItem {
	return &StructItem{Token: lex("struct"), Name: ID(name), Fields: fields}
}

func FD(name string, t Type) *FieldDecl {
	return &FieldDecl{Token: lex(name), Name: ID(name), Type: t}
}

func EnumDef(name string, variants ...string) *EnumItem {
	e := &EnumItem{Token: lex("enum"), Name: ID(name)}
	for _, v := range variants {
		e.Variants = append(e.Variants, ID(v))
	}
	return e
}

func Const(name string, t Type, value Expression) *ConstItem {
	return &ConstItem{Token: lex("const"), Name: ID(name), Type: t, Value: value}
}

func Impl(target string, items ...Item) *ImplItem {
	return &ImplItem{Token: lex("impl"), Target: ID(target), Items: items}
}

func ImplTrait(trait, target string, items ...Item) *ImplItem {
	im := Impl(target, items...)
	im.Trait = ID(trait)
	return im
}

func Trait(name string, items ...Item) *TraitItem {
	return &TraitItem{Token: lex("trait"), Name: ID(name), Items: items}
}

// NewCrate wraps items into a crate and assigns positions.
func NewCrate(items ...Item) *Crate {
	c := &Crate{Items: items}
	AssignPositions(c)
	return c
}

// Main wraps statements into `fn main() { ... }` inside a new crate, after
// any extra items.
func Main(stmts ...Statement) *Crate {
	return MainWith(nil, stmts...)
}

func MainWith(items []Item, stmts ...Statement) *Crate {
	all := append(append([]Item{}, items...), Fn("main", nil, nil, Blk(stmts...)))
	return NewCrate(all...)
}
