package runtime

import (
	"math"
	"minijava/internal/ast"
	"minijava/internal/diag"
	"minijava/internal/output"
	"minijava/internal/span"
	"minijava/internal/token"
)

// ============================================================
// Runtime errors
// ============================================================

func typeErr(s span.Span, code, format string, args ...interface{}) error {
	return diag.Errorf(diag.TypeError, code, s, format, args...)
}

func arithmeticErr(s span.Span, format string, args ...interface{}) error {
	return diag.Errorf(diag.ArithmeticError, "E5001", s, format, args...)
}

func runtimeErr(s span.Span, code, format string, args ...interface{}) error {
	return diag.Errorf(diag.RuntimeError, code, s, format, args...)
}

// ============================================================
// Interpreter
// ============================================================

// Interpreter walks the AST and executes it against an Environment, appending printed text
// to an output Sink. The first failure aborts the run.
type Interpreter struct {
	env *Environment
	out *output.Sink
}

// New creates an interpreter with an empty root environment. A nil sink discards output.
func New(out *output.Sink) *Interpreter {
	if out == nil {
		out = output.NewSink(nil)
	}
	return &Interpreter{env: NewEnvironment(), out: out}
}

// Run executes the program body in order. Bindings made by the body stay in the root frame,
// so a later Run on the same interpreter sees them.
func (i *Interpreter) Run(file *ast.File) error {
	for _, stmt := range file.Body {
		if err := i.execStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Env returns the interpreter's environment (useful for REPL).
func (i *Interpreter) Env() *Environment {
	return i.env
}

// Output returns the sink the interpreter prints to.
func (i *Interpreter) Output() *output.Sink {
	return i.out
}

// ============================================================
// Statement execution
// ============================================================

func (i *Interpreter) execStmt(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.VarDeclStmt:
		return i.execVarDecl(s)

	case *ast.AssignStmt:
		return i.execAssign(s)

	case *ast.PrintStmt:
		return i.execPrint(s)

	case *ast.ExprStmt:
		_, err := i.evalExpr(s.Expr)
		return err

	case *ast.EmptyStmt:
		return nil

	case *ast.BlockStmt:
		return i.execBlock(s)

	case *ast.IfStmt:
		return i.execIf(s)

	case *ast.WhileStmt:
		return i.execWhile(s)

	case *ast.ForStmt:
		return i.execFor(s)

	default:
		return runtimeErr(stmt.GetSpan(), "E6002", "unhandled statement type: %T", stmt)
	}
}

func (i *Interpreter) execVarDecl(s *ast.VarDeclStmt) error {
	want, ok := KindOfType(s.Type)
	if !ok {
		return runtimeErr(s.Span, "E6002", "unknown declaration type %s", s.Type)
	}
	val, err := i.evalExpr(s.Init)
	if err != nil {
		return err
	}
	val, ok = coerce(want, val, s.Init)
	if !ok {
		return typeErr(s.Init.GetSpan(), "E4001", "cannot initialize %s variable '%s' with %s value",
			want, s.Name, val.Kind())
	}
	i.env.Declare(s.Name, val)
	return nil
}

func (i *Interpreter) execAssign(s *ast.AssignStmt) error {
	current, ok := i.env.Lookup(s.Target.Name)
	if !ok {
		return runtimeErr(s.Target.Span, "E6001", "undeclared variable '%s'", s.Target.Name)
	}
	val, err := i.evalExpr(s.Value)
	if err != nil {
		return err
	}
	val, ok = coerce(current.Kind(), val, s.Value)
	if !ok {
		return typeErr(s.Value.GetSpan(), "E4002", "cannot assign %s value to %s variable '%s'",
			val.Kind(), current.Kind(), s.Target.Name)
	}
	i.env.Assign(s.Target.Name, val)
	return nil
}

// coerce checks that val may be stored in a binding of kind want. An int literal, optionally
// negated, may be stored in a float or double binding.
func coerce(want Kind, val Value, expr ast.Expr) (Value, bool) {
	if val.Kind() == want {
		return val, true
	}
	if (want == KindFloat || want == KindDouble) && isIntLiteral(expr) {
		return widen(val, want), true
	}
	return val, false
}

func isIntLiteral(expr ast.Expr) bool {
	switch e := ast.Unparen(expr).(type) {
	case *ast.IntLiteral:
		return true
	case *ast.UnaryExpr:
		_, ok := ast.Unparen(e.Operand).(*ast.IntLiteral)
		return ok && e.Op == token.MINUS
	}
	return false
}

func (i *Interpreter) execPrint(s *ast.PrintStmt) error {
	if s.Arg == nil {
		i.out.Emit("")
		return nil
	}
	val, err := i.evalExpr(s.Arg)
	if err != nil {
		return err
	}
	if s.Newline {
		i.out.Emit(val.String())
	} else {
		i.out.Write(val.String())
	}
	return nil
}

func (i *Interpreter) execIf(s *ast.IfStmt) error {
	cond, err := i.evalCondition(s.Condition)
	if err != nil {
		return err
	}
	if cond {
		return i.execBlock(s.Body)
	}

	for _, elseIf := range s.ElseIfs {
		cond, err := i.evalCondition(elseIf.Condition)
		if err != nil {
			return err
		}
		if cond {
			return i.execBlock(elseIf.Body)
		}
	}

	if s.ElseBody != nil {
		return i.execBlock(s.ElseBody)
	}
	return nil
}

func (i *Interpreter) execWhile(s *ast.WhileStmt) error {
	for {
		cond, err := i.evalCondition(s.Condition)
		if err != nil {
			return err
		}
		if !cond {
			return nil
		}
		if err := i.execBlock(s.Body); err != nil {
			return err
		}
	}
}

func (i *Interpreter) execFor(s *ast.ForStmt) error {
	// init declarations live in a frame enclosing condition, body and update
	i.env.Push()
	defer i.env.Pop()

	if s.Init != nil {
		if err := i.execStmt(s.Init); err != nil {
			return err
		}
	}

	for {
		if s.Condition != nil {
			cond, err := i.evalCondition(s.Condition)
			if err != nil {
				return err
			}
			if !cond {
				return nil
			}
		}

		// new frame for each iteration
		if err := i.execBlock(s.Body); err != nil {
			return err
		}

		if s.Update != nil {
			if err := i.execStmt(s.Update); err != nil {
				return err
			}
		}
	}
}

func (i *Interpreter) execBlock(block *ast.BlockStmt) error {
	i.env.Push()
	defer i.env.Pop()

	for _, stmt := range block.Stmts {
		if err := i.execStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (i *Interpreter) evalCondition(expr ast.Expr) (bool, error) {
	val, err := i.evalExpr(expr)
	if err != nil {
		return false, err
	}
	b, ok := val.(BoolVal)
	if !ok {
		return false, typeErr(expr.GetSpan(), "E4003", "condition must be boolean, got %s", val.Kind())
	}
	return bool(b), nil
}

// ============================================================
// Expression evaluation
// ============================================================

func (i *Interpreter) evalExpr(expr ast.Expr) (Value, error) {
	switch e := expr.(type) {
	case *ast.IntLiteral:
		return IntVal(int32(e.Value)), nil
	case *ast.FloatLiteral:
		if e.Single {
			return FloatVal(float32(e.Value)), nil
		}
		return DoubleVal(e.Value), nil
	case *ast.StringLiteral:
		return StringVal(e.Value), nil
	case *ast.CharLiteral:
		return CharVal(e.Value), nil
	case *ast.BoolLiteral:
		return BoolVal(e.Value), nil
	case *ast.IdentExpr:
		return i.evalIdent(e)
	case *ast.ParenExpr:
		return i.evalExpr(e.Inner)
	case *ast.UnaryExpr:
		return i.evalUnary(e)
	case *ast.IncDecExpr:
		return i.evalIncDec(e)
	case *ast.BinaryExpr:
		if e.Op == token.AND || e.Op == token.OR {
			return i.evalLogical(e)
		}
		return i.evalBinary(e)
	case nil:
		return nil, runtimeErr(span.Span{}, "E6002", "missing expression")
	default:
		return nil, runtimeErr(expr.GetSpan(), "E6002", "unhandled expression type: %T", expr)
	}
}

func (i *Interpreter) evalIdent(e *ast.IdentExpr) (Value, error) {
	val, ok := i.env.Lookup(e.Name)
	if !ok {
		return nil, runtimeErr(e.Span, "E6001", "undeclared variable '%s'", e.Name)
	}
	return val, nil
}

func (i *Interpreter) evalUnary(e *ast.UnaryExpr) (Value, error) {
	operand, err := i.evalExpr(e.Operand)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case token.BANG:
		if b, ok := operand.(BoolVal); ok {
			return !b, nil
		}
	case token.MINUS:
		switch v := operand.(type) {
		case IntVal:
			return -v, nil
		case FloatVal:
			return -v, nil
		case DoubleVal:
			return -v, nil
		}
	}
	return nil, typeErr(e.Span, "E4005", "bad operand type %s for unary operator '%s'", operand.Kind(), e.Op)
}

func (i *Interpreter) evalIncDec(e *ast.IncDecExpr) (Value, error) {
	current, ok := i.env.Lookup(e.Target.Name)
	if !ok {
		return nil, runtimeErr(e.Target.Span, "E6001", "undeclared variable '%s'", e.Target.Name)
	}
	n, ok := current.(IntVal)
	if !ok {
		return nil, typeErr(e.Span, "E4006", "operator '%s' requires an int variable, '%s' is %s",
			e.Op, e.Target.Name, current.Kind())
	}
	updated := n + IntVal(e.Delta())
	i.env.Assign(e.Target.Name, updated)
	if e.Prefix {
		return updated, nil
	}
	return n, nil
}

func (i *Interpreter) evalLogical(e *ast.BinaryExpr) (Value, error) {
	left, err := i.evalBool(e.Left, e.Op)
	if err != nil {
		return nil, err
	}
	// short-circuit: the right operand is not evaluated
	if e.Op == token.OR && left {
		return BoolVal(true), nil
	}
	if e.Op == token.AND && !left {
		return BoolVal(false), nil
	}
	right, err := i.evalBool(e.Right, e.Op)
	if err != nil {
		return nil, err
	}
	return BoolVal(right), nil
}

func (i *Interpreter) evalBool(expr ast.Expr, op token.Kind) (bool, error) {
	val, err := i.evalExpr(expr)
	if err != nil {
		return false, err
	}
	b, ok := val.(BoolVal)
	if !ok {
		return false, typeErr(expr.GetSpan(), "E4004", "operator '%s' requires boolean operands, got %s", op, val.Kind())
	}
	return bool(b), nil
}

func (i *Interpreter) evalBinary(e *ast.BinaryExpr) (Value, error) {
	left, err := i.evalExpr(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.evalExpr(e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case token.PLUS:
		// String concatenation when either side is a String
		if left.Kind() == KindString || right.Kind() == KindString {
			return StringVal(left.String() + right.String()), nil
		}
		return arith(e, left, right)
	case token.MINUS, token.STAR, token.SLASH, token.PERCENT:
		return arith(e, left, right)
	case token.LT, token.LTE, token.GT, token.GTE:
		return compare(e, left, right)
	case token.EQ, token.NEQ:
		eq, ok := valuesEqual(left, right)
		if !ok {
			return nil, badOperands(e, left, right)
		}
		return BoolVal(eq == (e.Op == token.EQ)), nil
	default:
		return nil, runtimeErr(e.Span, "E6002", "unknown binary operator: %s", e.Op)
	}
}

func badOperands(e *ast.BinaryExpr, left, right Value) error {
	return typeErr(e.Span, "E4004", "bad operand types for binary operator '%s': %s and %s",
		e.Op, left.Kind(), right.Kind())
}

// ============================================================
// Operators
// ============================================================

// arith applies an arithmetic operator after binary numeric promotion.
func arith(e *ast.BinaryExpr, left, right Value) (Value, error) {
	if !left.Kind().IsNumeric() || !right.Kind().IsNumeric() {
		return nil, badOperands(e, left, right)
	}

	switch promoted(left.Kind(), right.Kind()) {
	case KindInt:
		a, b := left.(IntVal), right.(IntVal)
		switch e.Op {
		case token.PLUS:
			return a + b, nil
		case token.MINUS:
			return a - b, nil
		case token.STAR:
			return a * b, nil
		case token.SLASH:
			if b == 0 {
				return nil, arithmeticErr(e.Span, "/ by zero")
			}
			return a / b, nil
		case token.PERCENT:
			if b == 0 {
				return nil, arithmeticErr(e.Span, "%% by zero")
			}
			return a % b, nil
		}

	case KindFloat:
		a, b := widen(left, KindFloat).(FloatVal), widen(right, KindFloat).(FloatVal)
		switch e.Op {
		case token.PLUS:
			return a + b, nil
		case token.MINUS:
			return a - b, nil
		case token.STAR:
			return a * b, nil
		case token.SLASH:
			return a / b, nil
		case token.PERCENT:
			return FloatVal(math.Mod(float64(a), float64(b))), nil
		}

	case KindDouble:
		a, b := widen(left, KindDouble).(DoubleVal), widen(right, KindDouble).(DoubleVal)
		switch e.Op {
		case token.PLUS:
			return a + b, nil
		case token.MINUS:
			return a - b, nil
		case token.STAR:
			return a * b, nil
		case token.SLASH:
			return a / b, nil
		case token.PERCENT:
			return DoubleVal(math.Mod(float64(a), float64(b))), nil
		}
	}
	return nil, badOperands(e, left, right)
}

// compare applies a relational operator to two numbers or two chars.
func compare(e *ast.BinaryExpr, left, right Value) (Value, error) {
	var c int
	var unordered bool

	switch {
	case left.Kind() == KindChar && right.Kind() == KindChar:
		c = cmp3(float64(left.(CharVal)), float64(right.(CharVal)))
	case left.Kind().IsNumeric() && right.Kind().IsNumeric():
		a, b := numeric(left, right)
		if math.IsNaN(a) || math.IsNaN(b) {
			unordered = true
		}
		c = cmp3(a, b)
	default:
		return nil, badOperands(e, left, right)
	}

	if unordered {
		return BoolVal(false), nil
	}
	switch e.Op {
	case token.LT:
		return BoolVal(c < 0), nil
	case token.LTE:
		return BoolVal(c <= 0), nil
	case token.GT:
		return BoolVal(c > 0), nil
	default:
		return BoolVal(c >= 0), nil
	}
}

// numeric promotes both operands and returns them as float64, which holds every int32,
// float32 and float64 exactly.
func numeric(left, right Value) (float64, float64) {
	k := promoted(left.Kind(), right.Kind())
	return toFloat64(widen(left, k)), toFloat64(widen(right, k))
}

func toFloat64(v Value) float64 {
	switch n := v.(type) {
	case IntVal:
		return float64(n)
	case FloatVal:
		return float64(n)
	case DoubleVal:
		return float64(n)
	}
	return math.NaN()
}

func cmp3(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// valuesEqual compares two numbers, booleans, chars or Strings. The second result is false
// when the operands cannot be compared.
func valuesEqual(a, b Value) (bool, bool) {
	switch {
	case a.Kind().IsNumeric() && b.Kind().IsNumeric():
		x, y := numeric(a, b)
		return x == y, true
	case a.Kind() != b.Kind():
		return false, false
	}
	switch x := a.(type) {
	case BoolVal:
		return x == b.(BoolVal), true
	case CharVal:
		return x == b.(CharVal), true
	case StringVal:
		return x == b.(StringVal), true
	}
	return false, false
}
