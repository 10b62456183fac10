package borrowck

import (
	"github.com/funvibe/rcheck/internal/analyzer"
	"github.com/funvibe/rcheck/internal/ast"
	"github.com/funvibe/rcheck/internal/diagnostics"
	"github.com/funvibe/rcheck/internal/mutability"
	"github.com/funvibe/rcheck/internal/ownership"
	"github.com/funvibe/rcheck/internal/places"
	"github.com/funvibe/rcheck/internal/symbols"
	"github.com/funvibe/rcheck/internal/token"
	"github.com/funvibe/rcheck/internal/typesystem"
)

// State is the move and loan state of one function under analysis.
type State struct {
	Moves *ownership.Tracker
	Loans *Tracker
}

func NewState() *State {
	loans := NewTracker()
	return &State{Moves: ownership.NewTracker(loans), Loans: loans}
}

// Clone copies the state for analysing one branch.
func (s *State) Clone() *State {
	loans := s.Loans.Clone()
	moves := s.Moves.Clone()
	moves.SetView(loans)
	return &State{Moves: moves, Loans: loans}
}

// Merge joins the state reached at the end of another branch.
func (s *State) Merge(o *State) {
	s.Moves.Merge(o.Moves)
	s.Loans.Merge(o.Loans)
}

type branch struct {
	state    *State
	diverges bool
}

type loopFrame struct {
	depth int // scopes open outside the loop
	exits []branch
}

// Checker walks typed function bodies, tracking moves and loans and
// checking every write and mutable borrow for mutability.
type Checker struct {
	info   *analyzer.Info
	bag    *diagnostics.Bag
	state  *State
	scopes [][]*symbols.Symbol
	temps  []LoanID
	loops  []*loopFrame
}

func New(info *analyzer.Info, bag *diagnostics.Bag) *Checker {
	return &Checker{info: info, bag: bag}
}

// Check analyses every function body of the crate.
func (c *Checker) Check(crate *ast.Crate) {
	for _, item := range crate.Items {
		switch it := item.(type) {
		case *ast.FunctionItem:
			c.Function(it)
		case *ast.ImplItem:
			c.functions(it.Items)
		case *ast.TraitItem:
			c.functions(it.Items)
		}
	}
}

func (c *Checker) functions(items []ast.Item) {
	for _, item := range items {
		if fn, ok := item.(*ast.FunctionItem); ok {
			c.Function(fn)
		}
	}
}

// Function analyses one body with a fresh state.
func (c *Checker) Function(fn *ast.FunctionItem) {
	if fn.Body == nil {
		return
	}
	c.state = NewState()
	c.scopes, c.temps, c.loops = nil, nil, nil
	c.push()
	if self := c.info.Selves[fn]; self != nil {
		c.declare(self, true)
	}
	for _, p := range fn.Params {
		if sym := c.info.Params[p]; sym != nil {
			c.declare(sym, true)
		}
	}
	c.block(fn.Body, true)
	c.releaseTemps(0)
	c.pop()
	c.state = nil
}

func (c *Checker) push() {
	c.scopes = append(c.scopes, nil)
}

// pop ends the innermost scope: the loans its bindings hold are released
// and their places forgotten.
func (c *Checker) pop() {
	top := c.scopes[len(c.scopes)-1]
	c.scopes = c.scopes[:len(c.scopes)-1]
	for _, sym := range top {
		c.state.Loans.ReleaseHolder(sym)
		c.state.Moves.ClearRoot(sym)
	}
}

func (c *Checker) declare(sym *symbols.Symbol, initialized bool) {
	c.state.Moves.Declare(sym, initialized)
	c.scopes[len(c.scopes)-1] = append(c.scopes[len(c.scopes)-1], sym)
}

// releaseTemps ends the temporary loans created since start.
func (c *Checker) releaseTemps(start int) {
	for _, id := range c.temps[start:] {
		if l, ok := c.state.Loans.Loan(id); ok && len(l.holders) == 0 {
			c.state.Loans.Release(id)
		}
	}
	c.temps = c.temps[:start]
}

// holdTemps hands the temporary loans created since start to sym.
func (c *Checker) holdTemps(start int, sym *symbols.Symbol) {
	for _, id := range c.temps[start:] {
		c.state.Loans.Hold(id, sym)
	}
}

func (c *Checker) report(d *diagnostics.DiagnosticError) {
	c.bag.Add(d)
}

func (c *Checker) diverges(e ast.Expression) bool {
	return e != nil && typesystem.IsNever(c.info.TypeOf(e))
}

// join continues with the merge of the branches that fall through.
func (c *Checker) join(branches []branch) {
	var out *State
	for _, b := range branches {
		if b.diverges {
			continue
		}
		if out == nil {
			out = b.state
			continue
		}
		out.Merge(b.state)
	}
	if out == nil {
		out = branches[len(branches)-1].state
	}
	c.state = out
}

func (c *Checker) block(b *ast.BlockExpression, consume bool) {
	c.push()
	for _, s := range b.Statements {
		c.statement(s)
	}
	if b.Tail != nil {
		c.expr(b.Tail, consume)
	}
	c.pop()
}

func (c *Checker) statement(s ast.Statement) {
	start := len(c.temps)
	switch st := s.(type) {
	case *ast.LetStatement:
		c.let(st)
	case *ast.ExpressionStatement:
		c.expr(st.Expression, true)
	}
	c.releaseTemps(start)
}

func (c *Checker) let(st *ast.LetStatement) {
	start := len(c.temps)
	if ip, ok := st.Pattern.(*ast.IdentifierPattern); ok && ip.ByRef && st.Value != nil {
		if p, isPlace := places.FromExpression(st.Value, c.info); isPlace {
			c.indices(st.Value)
			sym := c.info.Bindings[ip]
			if sym == nil {
				return
			}
			if id, lent := c.lend(p, ip.Mutable, ip.Token); lent {
				c.state.Loans.Hold(id, sym)
			}
			c.declare(sym, true)
			return
		}
	}
	c.expr(st.Value, true)
	for _, sym := range c.declarePattern(st.Pattern, st.Value != nil) {
		if st.Value == nil || !typesystem.ContainsRef(sym.Type) {
			continue
		}
		c.holdTemps(start, sym)
		if from := c.pathSymbol(st.Value); from != nil {
			c.state.Loans.Share(from, sym)
		}
	}
}

// declarePattern declares the bindings introduced by p.
func (c *Checker) declarePattern(p ast.Pattern, initialized bool) []*symbols.Symbol {
	switch n := p.(type) {
	case *ast.IdentifierPattern:
		if sym := c.info.Bindings[n]; sym != nil {
			c.declare(sym, initialized)
			return []*symbols.Symbol{sym}
		}
	case *ast.ReferencePattern:
		return c.declarePattern(n.Inner, initialized)
	}
	return nil
}

// pathSymbol returns the local a plain path expression names.
func (c *Checker) pathSymbol(e ast.Expression) *symbols.Symbol {
	for {
		g, ok := e.(*ast.GroupedExpression)
		if !ok {
			break
		}
		e = g.Inner
	}
	p, ok := e.(*ast.PathExpression)
	if !ok {
		return nil
	}
	return c.info.SymbolOf(p)
}

// expr visits e. consume is set where the value is moved out of its place
// rather than inspected.
func (c *Checker) expr(e ast.Expression, consume bool) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case *ast.PathExpression, *ast.FieldAccessExpression, *ast.IndexExpression, *ast.DerefExpression:
		c.use(e, consume)
	case *ast.GroupedExpression:
		c.expr(n.Inner, consume)
	case *ast.PrefixExpression:
		c.expr(n.Operand, true)
	case *ast.InfixExpression:
		inspect := isComparison(n.Operator)
		c.expr(n.Left, !inspect)
		c.expr(n.Right, !inspect)
	case *ast.CastExpression:
		c.expr(n.Operand, true)
	case *ast.BorrowExpression:
		c.borrow(n)
	case *ast.AssignExpression:
		c.assign(n)
	case *ast.ArrayLiteral:
		for _, el := range n.Elements {
			c.expr(el, true)
		}
	case *ast.ArrayRepeatExpression:
		c.expr(n.Value, true)
	case *ast.StructLiteral:
		for _, f := range n.Fields {
			c.expr(f.Value, true)
		}
	case *ast.CallExpression:
		c.expr(n.Function, false)
		c.args(n.Arguments)
	case *ast.MethodCallExpression:
		c.methodCall(n)
	case *ast.BlockExpression:
		c.block(n, consume)
	case *ast.IfExpression:
		c.ifExpr(n, consume)
	case *ast.LoopExpression:
		c.loop(n)
	case *ast.WhileExpression:
		c.while(n)
	case *ast.MatchExpression:
		c.match(n, consume)
	case *ast.BreakExpression:
		c.expr(n.Value, true)
		c.breakOut()
	case *ast.ReturnExpression:
		c.expr(n.Value, true)
	}
}

// breakOut records the state leaving the innermost loop, with the scopes
// opened inside the loop already ended.
func (c *Checker) breakOut() {
	if len(c.loops) == 0 {
		return
	}
	top := c.loops[len(c.loops)-1]
	st := c.state.Clone()
	for _, scope := range c.scopes[top.depth:] {
		for _, sym := range scope {
			st.Loans.ReleaseHolder(sym)
			st.Moves.ClearRoot(sym)
		}
	}
	top.exits = append(top.exits, branch{state: st})
}

func isComparison(op string) bool {
	switch op {
	case "==", "!=", "<", ">", "<=", ">=":
		return true
	}
	return false
}

// use visits a place expression: a non-Copy value is moved out when
// consumed, anything else is read.
func (c *Checker) use(e ast.Expression, consume bool) {
	p, ok := places.FromExpression(e, c.info)
	if !ok {
		c.operands(e)
		return
	}
	c.indices(e)
	t := c.info.TypeOf(e)
	if typesystem.IsUnresolved(t) {
		return
	}
	if consume && !typesystem.IsCopy(t) {
		if err := c.state.Moves.MoveOut(p, e.GetToken()); err != nil {
			c.report(err.Diagnostic(e.GetToken()))
		}
		return
	}
	c.read(p, e.GetToken())
}

// operands visits the parts of a projection whose base is not a place.
func (c *Checker) operands(e ast.Expression) {
	switch n := e.(type) {
	case *ast.FieldAccessExpression:
		c.expr(n.Base, false)
	case *ast.IndexExpression:
		c.expr(n.Base, false)
		c.expr(n.Index, true)
	case *ast.DerefExpression:
		c.expr(n.Operand, false)
	}
}

// indices visits the index operands inside a place expression.
func (c *Checker) indices(e ast.Expression) {
	switch n := e.(type) {
	case *ast.GroupedExpression:
		c.indices(n.Inner)
	case *ast.FieldAccessExpression:
		c.indices(n.Base)
	case *ast.IndexExpression:
		c.indices(n.Base)
		c.expr(n.Index, true)
	case *ast.DerefExpression:
		c.indices(n.Operand)
	}
}

func (c *Checker) read(p places.Place, at token.Token) {
	if err := c.state.Moves.Read(p); err != nil {
		c.report(err.Diagnostic(at))
		return
	}
	if conflict := c.state.Loans.CheckRead(p); conflict != nil {
		c.report(conflict.Diagnostic(at))
	}
}

func (c *Checker) borrow(n *ast.BorrowExpression) {
	p, ok := places.FromExpression(n.Operand, c.info)
	if !ok {
		c.expr(n.Operand, true)
		return
	}
	c.indices(n.Operand)
	if typesystem.IsUnresolved(c.info.TypeOf(n.Operand)) {
		return
	}
	c.lend(p, n.Mutable, n.Token)
}

// lend creates a temporary loan of p. A `&mut` of a place that may not be
// mutated is reported but still recorded.
func (c *Checker) lend(p places.Place, mutable bool, at token.Token) (LoanID, bool) {
	if err := c.state.Moves.Read(p); err != nil {
		c.report(err.Diagnostic(at))
		return 0, false
	}
	var (
		id       LoanID
		conflict *Conflict
	)
	if mutable {
		if err := mutability.CheckBorrowMut(p); err != nil {
			c.report(err.Diagnostic(at))
		}
		id, conflict = c.state.Loans.BorrowExclusive(p, at)
	} else {
		id, conflict = c.state.Loans.BorrowShared(p, at)
	}
	if conflict != nil {
		c.report(conflict.Diagnostic(at))
		return 0, false
	}
	c.temps = append(c.temps, id)
	return id, true
}

func (c *Checker) assign(n *ast.AssignExpression) {
	start := len(c.temps)
	c.expr(n.Value, true)
	p, ok := places.FromExpression(n.Target, c.info)
	if !ok {
		c.releaseTemps(start)
		c.expr(n.Target, false)
		return
	}
	if n.Operator == "=" && p.IsRoot() && typesystem.ContainsRef(p.Root.Type) {
		c.holdTemps(start, p.Root)
		if from := c.pathSymbol(n.Value); from != nil {
			c.state.Loans.Share(from, p.Root)
		}
	}
	c.releaseTemps(start)
	c.indices(n.Target)
	if typesystem.IsUnresolved(c.info.TypeOf(n.Target)) {
		return
	}
	at := n.Target.GetToken()
	if n.Operator != "=" {
		c.read(p, at)
	}
	if err := mutability.CheckWrite(p, c.state.Moves); err != nil {
		c.report(err.Diagnostic(at))
	}
	if conflict := c.state.Loans.CheckWrite(p); conflict != nil {
		c.report(conflict.Diagnostic(at))
	}
	if n.Operator == "=" {
		if err := c.state.Moves.Reassign(p); err != nil {
			c.report(err.Diagnostic(at))
		}
	}
}

// args visits call arguments. Loans taken while computing an argument
// that carries no reference end with that argument.
func (c *Checker) args(args []ast.Expression) {
	for _, a := range args {
		start := len(c.temps)
		c.expr(a, true)
		if !typesystem.ContainsRef(c.info.TypeOf(a)) {
			c.releaseTemps(start)
		}
	}
}

func (c *Checker) methodCall(n *ast.MethodCallExpression) {
	m := c.info.Methods[n]
	if m == nil {
		c.expr(n.Receiver, false)
		c.args(n.Arguments)
		return
	}
	switch m.Receiver {
	case symbols.ByValue:
		c.expr(n.Receiver, true)
		c.args(n.Arguments)
	case symbols.ByRef:
		c.receiver(n.Receiver, false)
		c.args(n.Arguments)
	case symbols.ByMutRef:
		// the exclusive borrow of the receiver starts once the
		// arguments are evaluated
		c.args(n.Arguments)
		c.receiver(n.Receiver, true)
	default:
		c.expr(n.Receiver, false)
		c.args(n.Arguments)
	}
}

// receiver auto-borrows the receiver of a `&self` or `&mut self` method,
// through any references it already is.
func (c *Checker) receiver(recv ast.Expression, mutable bool) {
	p, ok := places.FromExpression(recv, c.info)
	if !ok {
		c.expr(recv, true)
		return
	}
	c.indices(recv)
	t := c.info.TypeOf(recv)
	if typesystem.IsUnresolved(t) {
		return
	}
	for {
		r, isRef := t.(typesystem.TRef)
		if !isRef {
			break
		}
		p = p.Deref()
		t = r.Elem
	}
	c.lend(p, mutable, recv.GetToken())
}

// condition visits an expression whose loans end once it is evaluated.
func (c *Checker) condition(e ast.Expression, consume bool) {
	start := len(c.temps)
	c.expr(e, consume)
	c.releaseTemps(start)
}

func (c *Checker) ifExpr(n *ast.IfExpression, consume bool) {
	c.condition(n.Condition, false)
	before := c.state.Clone()
	c.block(n.Consequence, consume)
	then := branch{state: c.state, diverges: c.diverges(n.Consequence)}
	c.state = before
	if n.Alternative != nil {
		c.expr(n.Alternative, consume)
	}
	c.join([]branch{then, {state: c.state, diverges: c.diverges(n.Alternative)}})
}

// iterate visits a loop body. A body that can run again is visited a
// second time so moves made by one iteration are seen by the next.
func (c *Checker) iterate(body *ast.BlockExpression, cond ast.Expression) {
	c.block(body, false)
	if c.diverges(body) {
		return
	}
	if cond != nil {
		c.condition(cond, false)
	}
	c.block(body, false)
}

func (c *Checker) loop(n *ast.LoopExpression) {
	frame := &loopFrame{depth: len(c.scopes)}
	c.loops = append(c.loops, frame)
	c.iterate(n.Body, nil)
	c.loops = c.loops[:len(c.loops)-1]
	if len(frame.exits) > 0 {
		c.join(frame.exits)
	}
}

func (c *Checker) while(n *ast.WhileExpression) {
	frame := &loopFrame{depth: len(c.scopes)}
	c.loops = append(c.loops, frame)
	c.condition(n.Condition, false)
	c.iterate(n.Body, n.Condition)
	c.loops = c.loops[:len(c.loops)-1]
	c.join(append(frame.exits, branch{state: c.state}))
}

func (c *Checker) match(n *ast.MatchExpression, consume bool) {
	subject, isPlace := places.FromExpression(n.Subject, c.info)
	if isPlace {
		c.indices(n.Subject)
		isPlace = !typesystem.IsUnresolved(c.info.TypeOf(n.Subject))
	} else {
		c.condition(n.Subject, true)
	}
	before := c.state
	var arms []branch
	for _, arm := range n.Arms {
		c.state = before.Clone()
		c.push()
		start := len(c.temps)
		if isPlace {
			c.bindArm(arm.Pattern, subject, n.Subject.GetToken())
		} else {
			c.declarePattern(arm.Pattern, true)
		}
		c.expr(arm.Body, consume)
		c.pop()
		c.releaseTemps(start)
		arms = append(arms, branch{state: c.state, diverges: c.diverges(arm.Body)})
	}
	if len(arms) == 0 {
		c.state = before
		return
	}
	c.join(arms)
}

// bindArm applies an arm pattern to the matched place: binding by value
// moves a non-Copy subject, `ref` bindings borrow it, literal and path
// patterns read it.
func (c *Checker) bindArm(pat ast.Pattern, subject places.Place, at token.Token) {
	switch n := pat.(type) {
	case *ast.WildcardPattern:
	case *ast.IdentifierPattern:
		sym := c.info.Bindings[n]
		if sym == nil {
			c.read(subject, at)
			return
		}
		if n.ByRef {
			if id, lent := c.lend(subject, n.Mutable, n.Token); lent {
				c.state.Loans.Hold(id, sym)
			}
		} else if typesystem.IsCopy(subject.Type()) {
			c.read(subject, at)
		} else if err := c.state.Moves.MoveOut(subject, at); err != nil {
			c.report(err.Diagnostic(at))
		}
		c.declare(sym, true)
	case *ast.ReferencePattern:
		c.bindArm(n.Inner, subject.Deref(), at)
	default:
		c.read(subject, at)
	}
}
