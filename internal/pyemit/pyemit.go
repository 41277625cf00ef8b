// Package pyemit translates minijava programs into Python 3 source.
//
// The translation aims at readable Python rather than byte-identical output: booleans print
// as True/False and floats use Python's repr.
package pyemit

import (
	"fmt"
	"minijava/internal/ast"
	"minijava/internal/runtime"
	"minijava/internal/token"
	"strconv"
	"strings"
)

const indentUnit = "    "

// Python operator precedence, lowest to highest.
const (
	precNone = iota
	precOr
	precAnd
	precNot
	precCompare
	precAdd
	precMul
	precUnary
	precAtom
)

// reserved holds Python keywords and the builtins the translation itself calls.
var reserved = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true, "assert": true,
	"async": true, "await": true, "def": true, "del": true, "elif": true, "except": true,
	"from": true, "global": true, "import": true, "in": true, "is": true, "lambda": true,
	"nonlocal": true, "not": true, "or": true, "pass": true, "raise": true, "with": true,
	"yield": true, "print": true, "range": true, "str": true, "int": true,
}

// File translates file into Python source.
func File(file *ast.File) (string, error) {
	e := &emitter{}
	e.push()
	if err := e.stmts(file.Body); err != nil {
		return "", err
	}
	return e.buf.String(), nil
}

type emitter struct {
	buf   strings.Builder
	level int
	kinds []map[string]runtime.Kind
}

// ---- scopes ----

func (e *emitter) push() { e.kinds = append(e.kinds, make(map[string]runtime.Kind)) }
func (e *emitter) pop()  { e.kinds = e.kinds[:len(e.kinds)-1] }

func (e *emitter) declare(name string, k runtime.Kind) {
	e.kinds[len(e.kinds)-1][name] = k
}

func (e *emitter) lookup(name string) (runtime.Kind, bool) {
	for i := len(e.kinds) - 1; i >= 0; i-- {
		if k, ok := e.kinds[i][name]; ok {
			return k, true
		}
	}
	return 0, false
}

// ---- output ----

func (e *emitter) line(format string, args ...interface{}) {
	e.buf.WriteString(strings.Repeat(indentUnit, e.level))
	fmt.Fprintf(&e.buf, format, args...)
	e.buf.WriteByte('\n')
}

// ============================================================
// Statements
// ============================================================

func (e *emitter) stmts(stmts []ast.Stmt) error {
	for _, s := range stmts {
		if err := e.stmt(s); err != nil {
			return err
		}
	}
	return nil
}

// body emits an indented suite, writing pass when it produced nothing.
func (e *emitter) body(emit func() error) error {
	e.level++
	e.push()
	before := e.buf.Len()
	err := emit()
	if err == nil && e.buf.Len() == before {
		e.line("pass")
	}
	e.pop()
	e.level--
	return err
}

func (e *emitter) block(b *ast.BlockStmt) error {
	return e.body(func() error { return e.stmts(b.Stmts) })
}

func (e *emitter) stmt(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.VarDeclStmt:
		k, ok := runtime.KindOfType(s.Type)
		if !ok {
			return fmt.Errorf("pyemit: unknown type %s", s.Type)
		}
		e.line("%s = %s", name(s.Name), e.valueFor(k, s.Init))
		e.declare(s.Name, k)

	case *ast.AssignStmt:
		k, _ := e.lookup(s.Target.Name)
		e.line("%s = %s", name(s.Target.Name), e.valueFor(k, s.Value))

	case *ast.PrintStmt:
		switch {
		case s.Arg == nil:
			e.line("print()")
		case s.Newline:
			e.line("print(%s)", e.expr(s.Arg, precNone))
		default:
			e.line("print(%s, end=\"\")", e.expr(s.Arg, precNone))
		}

	case *ast.ExprStmt:
		if inc, ok := ast.Unparen(s.Expr).(*ast.IncDecExpr); ok {
			if inc.Op == token.INC {
				e.line("%s += 1", name(inc.Target.Name))
			} else {
				e.line("%s -= 1", name(inc.Target.Name))
			}
			return nil
		}
		e.line("%s", e.expr(s.Expr, precNone))

	case *ast.EmptyStmt:

	case *ast.BlockStmt:
		// Python has no block scope; the statements are emitted in place.
		e.push()
		defer e.pop()
		return e.stmts(s.Stmts)

	case *ast.IfStmt:
		return e.ifStmt(s)

	case *ast.WhileStmt:
		e.line("while %s:", e.expr(s.Condition, precNone))
		return e.block(s.Body)

	case *ast.ForStmt:
		return e.forStmt(s)

	default:
		return fmt.Errorf("pyemit: no translation for %T", stmt)
	}
	return nil
}

func (e *emitter) ifStmt(s *ast.IfStmt) error {
	e.line("if %s:", e.expr(s.Condition, precNone))
	if err := e.block(s.Body); err != nil {
		return err
	}
	for _, ei := range s.ElseIfs {
		e.line("elif %s:", e.expr(ei.Condition, precNone))
		if err := e.block(ei.Body); err != nil {
			return err
		}
	}
	if s.ElseBody != nil {
		e.line("else:")
		return e.block(s.ElseBody)
	}
	return nil
}

func (e *emitter) forStmt(s *ast.ForStmt) error {
	e.push()
	defer e.pop()

	if loopVar, args, ok := rangeLoop(s); ok {
		e.declare(loopVar, runtime.KindInt)
		e.line("for %s in range(%s):", name(loopVar), args)
		return e.block(s.Body)
	}

	// general form: init, then a while loop with the update at the end of the body
	if s.Init != nil {
		if err := e.stmt(s.Init); err != nil {
			return err
		}
	}
	cond := "True"
	if s.Condition != nil {
		cond = e.expr(s.Condition, precNone)
	}
	e.line("while %s:", cond)
	return e.body(func() error {
		if err := e.stmts(s.Body.Stmts); err != nil {
			return err
		}
		if s.Update != nil {
			return e.stmt(s.Update)
		}
		return nil
	})
}

// rangeLoop recognises counting loops that map onto range(): an int declared from a literal,
// compared against a literal, stepped by ++ or --, and not written by the body.
func rangeLoop(s *ast.ForStmt) (string, string, bool) {
	decl, ok := s.Init.(*ast.VarDeclStmt)
	if !ok || decl.Type != token.KW_INT {
		return "", "", false
	}
	start, ok := intLiteral(decl.Init)
	if !ok {
		return "", "", false
	}
	cond, ok := ast.Unparen(s.Condition).(*ast.BinaryExpr)
	if !ok {
		return "", "", false
	}
	left, ok := ast.Unparen(cond.Left).(*ast.IdentExpr)
	if !ok || left.Name != decl.Name {
		return "", "", false
	}
	end, ok := intLiteral(cond.Right)
	if !ok {
		return "", "", false
	}
	upd, ok := s.Update.(*ast.ExprStmt)
	if !ok {
		return "", "", false
	}
	inc, ok := ast.Unparen(upd.Expr).(*ast.IncDecExpr)
	if !ok || inc.Target.Name != decl.Name || writes(s.Body, decl.Name) {
		return "", "", false
	}

	step := inc.Delta()
	switch {
	case step == 1 && cond.Op == token.LT,
		step == 1 && cond.Op == token.NEQ && start <= end:
		return decl.Name, fmt.Sprintf("%d, %d", start, end), true
	case step == 1 && cond.Op == token.LTE:
		return decl.Name, fmt.Sprintf("%d, %d", start, end+1), true
	case step == -1 && cond.Op == token.GT,
		step == -1 && cond.Op == token.NEQ && start >= end:
		return decl.Name, fmt.Sprintf("%d, %d, -1", start, end), true
	case step == -1 && cond.Op == token.GTE:
		return decl.Name, fmt.Sprintf("%d, %d, -1", start, end-1), true
	case cond.Op == token.EQ && start == end:
		return decl.Name, fmt.Sprintf("%d, %d", start, start+1), true
	}
	return "", "", false
}

func intLiteral(expr ast.Expr) (int64, bool) {
	switch e := ast.Unparen(expr).(type) {
	case *ast.IntLiteral:
		return e.Value, true
	case *ast.UnaryExpr:
		if lit, ok := ast.Unparen(e.Operand).(*ast.IntLiteral); ok && e.Op == token.MINUS {
			return -lit.Value, true
		}
	}
	return 0, false
}

// writes reports whether any statement below node assigns or steps the variable.
func writes(node ast.Node, varName string) bool {
	found := false
	ast.Walk(node, func(n ast.Node) bool {
		switch x := n.(type) {
		case *ast.AssignStmt:
			found = found || x.Target.Name == varName
		case *ast.IncDecExpr:
			found = found || x.Target.Name == varName
		case *ast.VarDeclStmt:
			found = found || x.Name == varName
		}
		return !found
	})
	return found
}

// ============================================================
// Expressions
// ============================================================

// valueFor renders an initializer or assigned value, converting int literals stored in
// float or double variables.
func (e *emitter) valueFor(k runtime.Kind, expr ast.Expr) string {
	if k == runtime.KindFloat || k == runtime.KindDouble {
		if v, ok := intLiteral(expr); ok {
			return strconv.FormatInt(v, 10) + ".0"
		}
	}
	return e.expr(expr, precNone)
}

// expr renders expr, parenthesising it when its precedence is below outer.
func (e *emitter) expr(expr ast.Expr, outer int) string {
	text, prec := e.render(expr)
	if prec < outer {
		return "(" + text + ")"
	}
	return text
}

func (e *emitter) render(expr ast.Expr) (string, int) {
	switch x := expr.(type) {
	case *ast.IntLiteral:
		if x.Value < 0 {
			return strconv.FormatInt(x.Value, 10), precUnary
		}
		return strconv.FormatInt(x.Value, 10), precAtom
	case *ast.FloatLiteral:
		return floatLiteral(x), precAtom
	case *ast.StringLiteral:
		return strconv.Quote(x.Value), precAtom
	case *ast.CharLiteral:
		return strconv.Quote(string(x.Value)), precAtom
	case *ast.BoolLiteral:
		if x.Value {
			return "True", precAtom
		}
		return "False", precAtom
	case *ast.IdentExpr:
		return name(x.Name), precAtom
	case *ast.ParenExpr:
		return "(" + e.expr(x.Inner, precNone) + ")", precAtom
	case *ast.UnaryExpr:
		if x.Op == token.BANG {
			return "not " + e.expr(x.Operand, precNot), precNot
		}
		return "-" + e.expr(x.Operand, precUnary), precUnary
	case *ast.IncDecExpr:
		// assignment expression: prefix yields the new value, postfix the old one
		target := name(x.Target.Name)
		op := "+"
		undo := "- 1"
		if x.Op == token.DEC {
			op, undo = "-", "+ 1"
		}
		update := fmt.Sprintf("(%s := %s %s 1)", target, target, op)
		if x.Prefix {
			return update, precAtom
		}
		return update + " " + undo, precAdd
	case *ast.BinaryExpr:
		return e.binary(x)
	}
	return fmt.Sprintf("<%T>", expr), precAtom
}

func (e *emitter) binary(x *ast.BinaryExpr) (string, int) {
	switch x.Op {
	case token.OR:
		return e.expr(x.Left, precOr) + " or " + e.expr(x.Right, precOr+1), precOr
	case token.AND:
		return e.expr(x.Left, precAnd) + " and " + e.expr(x.Right, precAnd+1), precAnd
	case token.EQ, token.NEQ, token.LT, token.LTE, token.GT, token.GTE:
		// Python chains comparisons, so both operands bind tighter
		return e.expr(x.Left, precCompare+1) + " " + x.Op.String() + " " + e.expr(x.Right, precCompare+1), precCompare
	case token.PLUS:
		lk, lok := e.kindOf(x.Left)
		rk, rok := e.kindOf(x.Right)
		if (lok && lk == runtime.KindString) || (rok && rk == runtime.KindString) {
			return e.strOperand(x.Left, precAdd) + " + " + e.strOperand(x.Right, precAdd+1), precAdd
		}
		return e.expr(x.Left, precAdd) + " + " + e.expr(x.Right, precAdd+1), precAdd
	case token.MINUS:
		return e.expr(x.Left, precAdd) + " - " + e.expr(x.Right, precAdd+1), precAdd
	case token.STAR, token.PERCENT:
		return e.expr(x.Left, precMul) + " " + x.Op.String() + " " + e.expr(x.Right, precMul+1), precMul
	case token.SLASH:
		lk, lok := e.kindOf(x.Left)
		rk, rok := e.kindOf(x.Right)
		if lok && rok && lk == runtime.KindInt && rk == runtime.KindInt {
			// Java truncates toward zero, Python's // floors
			return "int(" + e.expr(x.Left, precMul) + " / " + e.expr(x.Right, precMul+1) + ")", precAtom
		}
		return e.expr(x.Left, precMul) + " / " + e.expr(x.Right, precMul+1), precMul
	}
	return fmt.Sprintf("<%s>", x.Op), precAtom
}

// strOperand renders one side of a String concatenation, converting non-String values.
func (e *emitter) strOperand(expr ast.Expr, outer int) string {
	if k, ok := e.kindOf(expr); ok && (k == runtime.KindString || k == runtime.KindChar) {
		return e.expr(expr, outer)
	}
	return "str(" + e.expr(expr, precNone) + ")"
}

// kindOf infers the static kind of expr from literals and declarations.
func (e *emitter) kindOf(expr ast.Expr) (runtime.Kind, bool) {
	switch x := expr.(type) {
	case *ast.IntLiteral, *ast.IncDecExpr:
		return runtime.KindInt, true
	case *ast.FloatLiteral:
		if x.Single {
			return runtime.KindFloat, true
		}
		return runtime.KindDouble, true
	case *ast.StringLiteral:
		return runtime.KindString, true
	case *ast.CharLiteral:
		return runtime.KindChar, true
	case *ast.BoolLiteral:
		return runtime.KindBoolean, true
	case *ast.IdentExpr:
		return e.lookup(x.Name)
	case *ast.ParenExpr:
		return e.kindOf(x.Inner)
	case *ast.UnaryExpr:
		if x.Op == token.BANG {
			return runtime.KindBoolean, true
		}
		return e.kindOf(x.Operand)
	case *ast.BinaryExpr:
		switch x.Op {
		case token.OR, token.AND, token.EQ, token.NEQ, token.LT, token.LTE, token.GT, token.GTE:
			return runtime.KindBoolean, true
		}
		lk, lok := e.kindOf(x.Left)
		rk, rok := e.kindOf(x.Right)
		if !lok || !rok {
			return 0, false
		}
		if x.Op == token.PLUS && (lk == runtime.KindString || rk == runtime.KindString) {
			return runtime.KindString, true
		}
		switch {
		case lk == runtime.KindDouble || rk == runtime.KindDouble:
			return runtime.KindDouble, true
		case lk == runtime.KindFloat || rk == runtime.KindFloat:
			return runtime.KindFloat, true
		default:
			return runtime.KindInt, true
		}
	}
	return 0, false
}

func floatLiteral(x *ast.FloatLiteral) string {
	bits := 64
	if x.Single {
		bits = 32
	}
	s := strconv.FormatFloat(x.Value, 'g', -1, bits)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}

// name renames identifiers that collide with Python keywords or the builtins used above.
func name(ident string) string {
	if reserved[ident] {
		return ident + "_"
	}
	return ident
}
