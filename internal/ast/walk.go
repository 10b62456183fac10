package ast

import (
	"github.com/funvibe/rcheck/internal/token"
	"reflect"
)

// Children returns the direct child nodes of n in source order.
func Children(n Node) []Node {
	var out []Node
	add := func(nodes ...Node) {
		for _, c := range nodes {
			if c == nil || reflect.ValueOf(c).IsNil() {
				continue
			}
			out = append(out, c)
		}
	}
	switch n := n.(type) {
	case *Crate:
		for _, it := range n.Items {
			add(it)
		}
	case *FunctionItem:
		add(n.Name, n.Self)
		for _, p := range n.Params {
			add(p)
		}
		add(n.ReturnType, n.Body)
	case *Param:
		add(n.Name, n.Type)
	case *StructItem:
		add(n.Name)
		for _, f := range n.Fields {
			add(f)
		}
	case *FieldDecl:
		add(n.Name, n.Type)
	case *EnumItem:
		add(n.Name)
		for _, v := range n.Variants {
			add(v)
		}
	case *ConstItem:
		add(n.Name, n.Type, n.Value)
	case *ImplItem:
		add(n.Trait, n.Target)
		for _, it := range n.Items {
			add(it)
		}
	case *TraitItem:
		add(n.Name)
		for _, it := range n.Items {
			add(it)
		}
	case *LetStatement:
		add(n.Pattern, n.Type, n.Value)
	case *ExpressionStatement:
		add(n.Expression)
	case *PathExpression:
		for _, s := range n.Segments {
			add(s)
		}
	case *GroupedExpression:
		add(n.Inner)
	case *BorrowExpression:
		add(n.Operand)
	case *DerefExpression:
		add(n.Operand)
	case *PrefixExpression:
		add(n.Operand)
	case *InfixExpression:
		add(n.Left, n.Right)
	case *CastExpression:
		add(n.Operand, n.Type)
	case *AssignExpression:
		add(n.Target, n.Value)
	case *ArrayLiteral:
		for _, el := range n.Elements {
			add(el)
		}
	case *ArrayRepeatExpression:
		add(n.Value, n.Count)
	case *IndexExpression:
		add(n.Base, n.Index)
	case *StructLiteral:
		add(n.Name)
		for _, f := range n.Fields {
			add(f)
		}
	case *FieldInit:
		add(n.Name, n.Value)
	case *CallExpression:
		add(n.Function)
		for _, arg := range n.Arguments {
			add(arg)
		}
	case *MethodCallExpression:
		add(n.Receiver, n.Method)
		for _, arg := range n.Arguments {
			add(arg)
		}
	case *FieldAccessExpression:
		add(n.Base, n.Field)
	case *BreakExpression:
		add(n.Value)
	case *ReturnExpression:
		add(n.Value)
	case *BlockExpression:
		for _, s := range n.Statements {
			add(s)
		}
		add(n.Tail)
	case *IfExpression:
		add(n.Condition, n.Consequence, n.Alternative)
	case *LoopExpression:
		add(n.Body)
	case *WhileExpression:
		add(n.Condition, n.Body)
	case *MatchExpression:
		add(n.Subject)
		for _, a := range n.Arms {
			add(a)
		}
	case *MatchArm:
		add(n.Pattern, n.Body)
	case *IdentifierPattern:
		add(n.Name)
	case *ReferencePattern:
		add(n.Inner)
	case *LiteralPattern:
		add(n.Value)
	case *PathPattern:
		add(n.Path)
	case *ReferenceType:
		add(n.Elem)
	case *ArrayType:
		add(n.Elem, n.Size)
	}
	return out
}

// Inspect traverses the tree in depth-first order. If f returns false the
// children of that node are skipped.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || reflect.ValueOf(n).IsNil() || !f(n) {
		return
	}
	for _, c := range Children(n) {
		Inspect(c, f)
	}
}

// AssignPositions gives every node without a position a synthetic one:
// line = preorder index, column 1. Nodes built by hand or decoded from a
// document without positions get a stable source order this way.
func AssignPositions(c *Crate) {
	line := 0
	Inspect(c, func(n Node) bool {
		line++
		if _, ok := n.(*Crate); ok {
			return true
		}
		field := reflect.ValueOf(n).Elem().FieldByName("Token")
		if !field.IsValid() {
			return true
		}
		tok := field.Interface().(token.Token)
		if tok.IsZero() {
			tok.Line, tok.Column = line, 1
			tok.EndLine, tok.EndColumn = line, 1+len(tok.Lexeme)
		}
		if tok.File == "" {
			tok.File = c.File
		}
		field.Set(reflect.ValueOf(tok))
		return true
	})
}
