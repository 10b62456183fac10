package ast

import (
	"fmt"
	"github.com/funvibe/rcheck/internal/token"
	"gopkg.in/yaml.v3"
	"io"
	"math/big"
	"strconv"
	"strings"
)

// Decode reads a crate from the parser's YAML (or JSON) interchange form.
//
// Every node is a mapping with one key naming its kind, e.g.
//
//	items:
//	  - fn:
//	      name: main
//	      body:
//	        - let: {pat: {mut: x}, value: 5}
//	        - semi: {assign: [x, 10]}
//
// Scalars are shorthands: integers and booleans are literals, other strings
// are paths. Any node may carry `at: "line:col"`.
func Decode(r io.Reader) (*Crate, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode crate: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("decode crate: empty document")
	}
	d := &decoder{}
	c, err := d.crate(doc.Content[0])
	if err != nil {
		return nil, fmt.Errorf("decode crate: %w", err)
	}
	AssignPositions(c)
	return c, nil
}

// DecodeString is Decode over a string.
func DecodeString(src string) (*Crate, error) {
	return Decode(strings.NewReader(src))
}

type decoder struct {
	file string
}

func (d *decoder) errorf(n *yaml.Node, format string, args ...any) error {
	return fmt.Errorf("line %d: %s", n.Line, fmt.Sprintf(format, args...))
}

// fields returns the key/value pairs of a mapping node.
func fields(n *yaml.Node) map[string]*yaml.Node {
	m := make(map[string]*yaml.Node)
	if n.Kind != yaml.MappingNode {
		return m
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		m[n.Content[i].Value] = n.Content[i+1]
	}
	return m
}

// tagged splits a node of the form {kind: body, at: "l:c"}. A mapping body
// may carry the position itself, as in {kind: {at: "l:c", ...}}; the outer
// one wins when both are given.
func (d *decoder) tagged(n *yaml.Node) (string, *yaml.Node, token.Token, error) {
	if n.Kind != yaml.MappingNode {
		return "", nil, token.Token{}, d.errorf(n, "expected a mapping")
	}
	var tok token.Token
	kind, body := "", (*yaml.Node)(nil)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i].Value, n.Content[i+1]
		if key == "at" {
			t, err := d.position(val)
			if err != nil {
				return "", nil, tok, err
			}
			tok = t
			continue
		}
		if kind != "" {
			return "", nil, tok, d.errorf(n, "node has both %q and %q", kind, key)
		}
		kind, body = key, val
	}
	if kind == "" {
		return "", nil, tok, d.errorf(n, "node has no kind")
	}
	if pos, ok := fields(body)["at"]; ok && tok.IsZero() {
		t, err := d.position(pos)
		if err != nil {
			return "", nil, tok, err
		}
		tok = t
	}
	return kind, body, tok, nil
}

func (d *decoder) position(n *yaml.Node) (token.Token, error) {
	line, col, ok := strings.Cut(n.Value, ":")
	l, err1 := strconv.Atoi(line)
	c, err2 := strconv.Atoi(col)
	if !ok || err1 != nil || err2 != nil {
		return token.Token{}, d.errorf(n, "bad position %q", n.Value)
	}
	return token.Token{File: d.file, Line: l, Column: c, EndLine: l, EndColumn: c}, nil
}

func withLexeme(tok token.Token, lexeme string) token.Token {
	tok.Lexeme = lexeme
	return tok
}

func (d *decoder) crate(n *yaml.Node) (*Crate, error) {
	f := fields(n)
	c := &Crate{}
	if file, ok := f["file"]; ok {
		c.File = file.Value
		d.file = file.Value
	}
	items, ok := f["items"]
	if !ok {
		return nil, d.errorf(n, "crate has no items")
	}
	for _, it := range items.Content {
		item, err := d.item(it)
		if err != nil {
			return nil, err
		}
		c.Items = append(c.Items, item)
	}
	return c, nil
}

func (d *decoder) item(n *yaml.Node) (Item, error) {
	kind, body, tok, err := d.tagged(n)
	if err != nil {
		return nil, err
	}
	f := fields(body)
	switch kind {
	case "fn":
		return d.function(body, tok)
	case "struct":
		s := &StructItem{Token: withLexeme(tok, "struct"), Name: d.ident(f["name"])}
		if fs, ok := f["fields"]; ok {
			for _, fn := range fs.Content {
				ff := fields(fn)
				t, err := d.typ(ff["type"])
				if err != nil {
					return nil, err
				}
				name := d.ident(ff["name"])
				s.Fields = append(s.Fields, &FieldDecl{Token: name.Token, Name: name, Type: t})
			}
		}
		return s, nil
	case "enum":
		e := &EnumItem{Token: withLexeme(tok, "enum"), Name: d.ident(f["name"])}
		if vs, ok := f["variants"]; ok {
			for _, v := range vs.Content {
				e.Variants = append(e.Variants, d.ident(v))
			}
		}
		return e, nil
	case "const":
		t, err := d.typ(f["type"])
		if err != nil {
			return nil, err
		}
		ci := &ConstItem{Token: withLexeme(tok, "const"), Name: d.ident(f["name"]), Type: t}
		if v, ok := f["value"]; ok {
			if ci.Value, err = d.expr(v); err != nil {
				return nil, err
			}
		}
		return ci, nil
	case "impl":
		im := &ImplItem{Token: withLexeme(tok, "impl"), Target: d.ident(f["for"])}
		if tr, ok := f["trait"]; ok {
			im.Trait = d.ident(tr)
		}
		if im.Items, err = d.items(f["items"]); err != nil {
			return nil, err
		}
		return im, nil
	case "trait":
		tr := &TraitItem{Token: withLexeme(tok, "trait"), Name: d.ident(f["name"])}
		if tr.Items, err = d.items(f["items"]); err != nil {
			return nil, err
		}
		return tr, nil
	}
	return nil, d.errorf(n, "unknown item kind %q", kind)
}

func (d *decoder) items(n *yaml.Node) ([]Item, error) {
	if n == nil {
		return nil, nil
	}
	var out []Item
	for _, it := range n.Content {
		item, err := d.item(it)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (d *decoder) function(n *yaml.Node, tok token.Token) (*FunctionItem, error) {
	f := fields(n)
	fn := &FunctionItem{Token: withLexeme(tok, "fn"), Name: d.ident(f["name"])}
	if s, ok := f["self"]; ok {
		sp := &SelfParam{Token: token.Token{Lexeme: s.Value}}
		switch s.Value {
		case "self":
		case "mut self":
			sp.Mutable = true
		case "&self":
			sp.Ref = true
		case "&mut self":
			sp.Ref, sp.Mutable = true, true
		default:
			return nil, d.errorf(s, "bad receiver %q", s.Value)
		}
		fn.Self = sp
	}
	if ps, ok := f["params"]; ok {
		for _, pn := range ps.Content {
			pf := fields(pn)
			t, err := d.typ(pf["type"])
			if err != nil {
				return nil, err
			}
			name := d.ident(pf["name"])
			p := &Param{Token: name.Token, Name: name, Type: t}
			if m, ok := pf["mut"]; ok && m.Value == "true" {
				p.Mutable = true
			}
			fn.Params = append(fn.Params, p)
		}
	}
	if r, ok := f["ret"]; ok {
		t, err := d.typ(r)
		if err != nil {
			return nil, err
		}
		fn.ReturnType = t
	}
	if b, ok := f["body"]; ok {
		blk, err := d.block(b, token.Token{})
		if err != nil {
			return nil, err
		}
		fn.Body = blk
	}
	return fn, nil
}

func (d *decoder) ident(n *yaml.Node) *Identifier {
	if n == nil {
		return &Identifier{}
	}
	return &Identifier{Token: token.Token{Lexeme: n.Value}, Value: n.Value}
}

func (d *decoder) typ(n *yaml.Node) (Type, error) {
	if n == nil {
		return nil, nil
	}
	if n.Kind == yaml.ScalarNode {
		tok := token.Token{Lexeme: n.Value}
		if n.Value == "()" {
			return &UnitType{Token: tok}, nil
		}
		return &NamedType{Token: tok, Name: n.Value}, nil
	}
	kind, body, tok, err := d.tagged(n)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "ref", "refmut":
		elem, err := d.typ(body)
		if err != nil {
			return nil, err
		}
		return &ReferenceType{Token: withLexeme(tok, "&"), Mutable: kind == "refmut", Elem: elem}, nil
	case "array":
		if len(body.Content) != 2 {
			return nil, d.errorf(n, "array type needs [elem, size]")
		}
		elem, err := d.typ(body.Content[0])
		if err != nil {
			return nil, err
		}
		size, err := d.expr(body.Content[1])
		if err != nil {
			return nil, err
		}
		return &ArrayType{Token: withLexeme(tok, "["), Elem: elem, Size: size}, nil
	}
	return nil, d.errorf(n, "unknown type kind %q", kind)
}

func (d *decoder) block(n *yaml.Node, tok token.Token) (*BlockExpression, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, d.errorf(n, "block must be a list of statements")
	}
	var stmts []Statement
	for _, sn := range n.Content {
		s, err := d.stmt(sn)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	b := Blk(stmts...)
	b.Token = withLexeme(tok, "{")
	return b, nil
}

func (d *decoder) stmt(n *yaml.Node) (Statement, error) {
	kind, body, tok, err := d.tagged(n)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "let":
		f := fields(body)
		ls := &LetStatement{Token: withLexeme(tok, "let")}
		if ls.Pattern, err = d.pattern(f["pat"]); err != nil {
			return nil, err
		}
		if ls.Type, err = d.typ(f["type"]); err != nil {
			return nil, err
		}
		if v, ok := f["value"]; ok {
			if ls.Value, err = d.expr(v); err != nil {
				return nil, err
			}
		}
		return ls, nil
	case "expr", "semi":
		e, err := d.expr(body)
		if err != nil {
			return nil, err
		}
		return &ExpressionStatement{Token: tok, Expression: e, Semicolon: kind == "semi"}, nil
	}
	return nil, d.errorf(n, "unknown statement kind %q", kind)
}

func (d *decoder) pattern(n *yaml.Node) (Pattern, error) {
	if n == nil {
		return nil, fmt.Errorf("missing pattern")
	}
	if n.Kind == yaml.ScalarNode {
		tok := token.Token{Lexeme: n.Value}
		if n.Value == "_" {
			return &WildcardPattern{Token: tok}, nil
		}
		if n.Tag == "!!int" || n.Tag == "!!bool" {
			v, err := d.expr(n)
			if err != nil {
				return nil, err
			}
			return &LiteralPattern{Token: tok, Value: v}, nil
		}
		if strings.Contains(n.Value, "::") {
			return &PathPattern{Token: tok, Path: P(n.Value)}, nil
		}
		return &IdentifierPattern{Token: tok, Name: ID(n.Value)}, nil
	}
	kind, body, tok, err := d.tagged(n)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "mut":
		return &IdentifierPattern{Token: withLexeme(tok, body.Value), Name: ID(body.Value), Mutable: true}, nil
	case "ref", "refmut":
		inner, err := d.pattern(body)
		if err != nil {
			return nil, err
		}
		return &ReferencePattern{Token: withLexeme(tok, "&"), Mutable: kind == "refmut", Inner: inner}, nil
	case "lit":
		v, err := d.expr(body)
		if err != nil {
			return nil, err
		}
		return &LiteralPattern{Token: tok, Value: v}, nil
	case "path":
		return &PathPattern{Token: withLexeme(tok, body.Value), Path: P(body.Value)}, nil
	}
	return nil, d.errorf(n, "unknown pattern kind %q", kind)
}

func (d *decoder) exprs(nodes []*yaml.Node) ([]Expression, error) {
	out := make([]Expression, 0, len(nodes))
	for _, n := range nodes {
		e, err := d.expr(n)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// list decodes a sequence body that must have exactly want elements.
func (d *decoder) list(n *yaml.Node, kind string, want int) ([]*yaml.Node, error) {
	if n.Kind != yaml.SequenceNode || len(n.Content) != want {
		return nil, d.errorf(n, "%s needs %d operands", kind, want)
	}
	return n.Content, nil
}

func (d *decoder) scalar(n *yaml.Node) (Expression, error) {
	tok := token.Token{Lexeme: n.Value}
	switch n.Tag {
	case "!!int":
		v, ok := new(big.Int).SetString(n.Value, 0)
		if !ok {
			return nil, d.errorf(n, "bad integer %q", n.Value)
		}
		return &IntegerLiteral{Token: tok, Value: v}, nil
	case "!!bool":
		return &BooleanLiteral{Token: tok, Value: n.Value == "true"}, nil
	}
	if n.Value == "_" {
		return &UnderscoreExpression{Token: tok}, nil
	}
	p := P(n.Value)
	return p, nil
}

func (d *decoder) expr(n *yaml.Node) (Expression, error) {
	if n == nil {
		return nil, fmt.Errorf("missing expression")
	}
	if n.Kind == yaml.ScalarNode {
		return d.scalar(n)
	}
	kind, body, tok, err := d.tagged(n)
	if err != nil {
		return nil, err
	}
	at := func(lexeme string) token.Token { return withLexeme(tok, lexeme) }
	switch kind {
	case "int":
		f := fields(body)
		v, ok := new(big.Int).SetString(f["value"].Value, 0)
		if !ok {
			return nil, d.errorf(n, "bad integer")
		}
		lit := &IntegerLiteral{Token: at(f["value"].Value), Value: v}
		if s, ok := f["suffix"]; ok {
			lit.Suffix = s.Value
		}
		return lit, nil
	case "str":
		return &StringLiteral{Token: at(`"` + body.Value + `"`), Value: body.Value}, nil
	case "char":
		r := []rune(body.Value)
		if len(r) != 1 {
			return nil, d.errorf(n, "char literal must hold one character")
		}
		return &CharLiteral{Token: at(body.Value), Value: r[0]}, nil
	case "group":
		inner, err := d.expr(body)
		if err != nil {
			return nil, err
		}
		return &GroupedExpression{Token: at("("), Inner: inner}, nil
	case "ref", "refmut":
		op, err := d.expr(body)
		if err != nil {
			return nil, err
		}
		return &BorrowExpression{Token: at("&"), Mutable: kind == "refmut", Operand: op}, nil
	case "deref":
		op, err := d.expr(body)
		if err != nil {
			return nil, err
		}
		return &DerefExpression{Token: at("*"), Operand: op}, nil
	case "unary":
		ops, err := d.list(body, kind, 2)
		if err != nil {
			return nil, err
		}
		op, err := d.expr(ops[1])
		if err != nil {
			return nil, err
		}
		return &PrefixExpression{Token: at(ops[0].Value), Operator: ops[0].Value, Operand: op}, nil
	case "bin":
		ops, err := d.list(body, kind, 3)
		if err != nil {
			return nil, err
		}
		l, err := d.expr(ops[1])
		if err != nil {
			return nil, err
		}
		r, err := d.expr(ops[2])
		if err != nil {
			return nil, err
		}
		return &InfixExpression{Token: at(ops[0].Value), Operator: ops[0].Value, Left: l, Right: r}, nil
	case "cast":
		ops, err := d.list(body, kind, 2)
		if err != nil {
			return nil, err
		}
		op, err := d.expr(ops[0])
		if err != nil {
			return nil, err
		}
		t, err := d.typ(ops[1])
		if err != nil {
			return nil, err
		}
		return &CastExpression{Token: at("as"), Operand: op, Type: t}, nil
	case "assign":
		operator := "="
		parts := body.Content
		if len(parts) == 3 {
			operator, parts = parts[0].Value, parts[1:]
		}
		if len(parts) != 2 {
			return nil, d.errorf(n, "assign needs [target, value] or [op, target, value]")
		}
		target, err := d.expr(parts[0])
		if err != nil {
			return nil, err
		}
		value, err := d.expr(parts[1])
		if err != nil {
			return nil, err
		}
		return &AssignExpression{Token: at(operator), Operator: operator, Target: target, Value: value}, nil
	case "array":
		elems, err := d.exprs(body.Content)
		if err != nil {
			return nil, err
		}
		return &ArrayLiteral{Token: at("["), Elements: elems}, nil
	case "repeat":
		ops, err := d.list(body, kind, 2)
		if err != nil {
			return nil, err
		}
		es, err := d.exprs(ops)
		if err != nil {
			return nil, err
		}
		return &ArrayRepeatExpression{Token: at("["), Value: es[0], Count: es[1]}, nil
	case "index":
		ops, err := d.list(body, kind, 2)
		if err != nil {
			return nil, err
		}
		es, err := d.exprs(ops)
		if err != nil {
			return nil, err
		}
		return &IndexExpression{Token: at("["), Base: es[0], Index: es[1]}, nil
	case "field":
		ops, err := d.list(body, kind, 2)
		if err != nil {
			return nil, err
		}
		base, err := d.expr(ops[0])
		if err != nil {
			return nil, err
		}
		return &FieldAccessExpression{Token: at("."), Base: base, Field: d.ident(ops[1])}, nil
	case "struct":
		f := fields(body)
		name := d.ident(f["name"])
		sl := &StructLiteral{Token: at(name.Value), Name: name}
		if fs, ok := f["fields"]; ok {
			for i := 0; i+1 < len(fs.Content); i += 2 {
				v, err := d.expr(fs.Content[i+1])
				if err != nil {
					return nil, err
				}
				fname := d.ident(fs.Content[i])
				sl.Fields = append(sl.Fields, &FieldInit{Token: fname.Token, Name: fname, Value: v})
			}
		}
		return sl, nil
	case "call":
		if body.Kind != yaml.SequenceNode || len(body.Content) == 0 {
			return nil, d.errorf(n, "call needs [function, args...]")
		}
		es, err := d.exprs(body.Content)
		if err != nil {
			return nil, err
		}
		return &CallExpression{Token: at("("), Function: es[0], Arguments: es[1:]}, nil
	case "method":
		if body.Kind != yaml.SequenceNode || len(body.Content) < 2 {
			return nil, d.errorf(n, "method needs [receiver, name, args...]")
		}
		recv, err := d.expr(body.Content[0])
		if err != nil {
			return nil, err
		}
		args, err := d.exprs(body.Content[2:])
		if err != nil {
			return nil, err
		}
		return &MethodCallExpression{Token: at("."), Receiver: recv, Method: d.ident(body.Content[1]), Arguments: args}, nil
	case "break", "return":
		var v Expression
		if body.Tag != "!!null" {
			if v, err = d.expr(body); err != nil {
				return nil, err
			}
		}
		if kind == "break" {
			return &BreakExpression{Token: at("break"), Value: v}, nil
		}
		return &ReturnExpression{Token: at("return"), Value: v}, nil
	case "continue":
		return &ContinueExpression{Token: at("continue")}, nil
	case "block":
		return d.block(body, tok)
	case "if":
		f := fields(body)
		cond, err := d.expr(f["cond"])
		if err != nil {
			return nil, err
		}
		then, err := d.block(f["then"], token.Token{})
		if err != nil {
			return nil, err
		}
		ie := &IfExpression{Token: at("if"), Condition: cond, Consequence: then}
		if alt, ok := f["else"]; ok {
			if alt.Kind == yaml.SequenceNode {
				ie.Alternative, err = d.block(alt, token.Token{})
			} else {
				ie.Alternative, err = d.expr(alt)
			}
			if err != nil {
				return nil, err
			}
		}
		return ie, nil
	case "loop":
		b, err := d.block(body, token.Token{})
		if err != nil {
			return nil, err
		}
		return &LoopExpression{Token: at("loop"), Body: b}, nil
	case "while":
		f := fields(body)
		cond, err := d.expr(f["cond"])
		if err != nil {
			return nil, err
		}
		b, err := d.block(f["body"], token.Token{})
		if err != nil {
			return nil, err
		}
		return &WhileExpression{Token: at("while"), Condition: cond, Body: b}, nil
	case "match":
		f := fields(body)
		subj, err := d.expr(f["subject"])
		if err != nil {
			return nil, err
		}
		me := &MatchExpression{Token: at("match"), Subject: subj}
		if arms, ok := f["arms"]; ok {
			for _, an := range arms.Content {
				af := fields(an)
				pat, err := d.pattern(af["pat"])
				if err != nil {
					return nil, err
				}
				b, err := d.expr(af["body"])
				if err != nil {
					return nil, err
				}
				me.Arms = append(me.Arms, &MatchArm{Token: at("=>"), Pattern: pat, Body: b})
			}
		}
		return me, nil
	}
	return nil, d.errorf(n, "unknown expression kind %q", kind)
}
