// Package ast defines the abstract syntax tree for minijava programs.
package ast

import (
	"minijava/internal/span"
	"minijava/internal/token"
)

// ============================================================
// Node interfaces
// ============================================================

// Node is the interface implemented by all AST nodes.
type Node interface {
	nodeNode()
	GetSpan() span.Span
}

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// ============================================================
// Base types (embedded to provide common fields)
// ============================================================

// NodeBase provides the common Span field for all AST nodes.
type NodeBase struct {
	Span span.Span
}

func (n NodeBase) nodeNode()          {}
func (n NodeBase) GetSpan() span.Span { return n.Span }

// ExprBase is embedded by all expression nodes.
type ExprBase struct{ NodeBase }

func (ExprBase) exprNode() {}

// StmtBase is embedded by all statement nodes.
type StmtBase struct{ NodeBase }

func (StmtBase) stmtNode() {}

// ============================================================
// File (top-level AST root)
// ============================================================

// File is a parsed program. When the source wraps its statements in
// `class C { public static void main(String[] args) { ... } }`, ClassName and Entry
// record the wrapper and Body holds the entry procedure's statements.
type File struct {
	NodeBase
	ClassName string
	Entry     string
	Body      []Stmt
}

// ============================================================
// Expressions
// ============================================================

// IdentExpr represents a variable reference.
type IdentExpr struct {
	ExprBase
	Name string
}

// IntLiteral represents an int literal. Value always fits in 32 bits.
type IntLiteral struct {
	ExprBase
	Value int64
}

// FloatLiteral represents a float (Single) or double literal.
type FloatLiteral struct {
	ExprBase
	Value  float64
	Single bool // literal carried an f/F suffix
}

// StringLiteral represents a String literal.
type StringLiteral struct {
	ExprBase
	Value string
}

// CharLiteral represents a char literal.
type CharLiteral struct {
	ExprBase
	Value rune
}

// BoolLiteral represents true or false.
type BoolLiteral struct {
	ExprBase
	Value bool
}

// UnaryExpr represents a prefix operation: -x, !x.
type UnaryExpr struct {
	ExprBase
	Op      token.Kind
	Operand Expr
}

// IncDecExpr represents ++x, --x, x++ and x--.
type IncDecExpr struct {
	ExprBase
	Op     token.Kind // token.INC or token.DEC
	Prefix bool
	Target *IdentExpr
}

// Delta returns +1 for increments and -1 for decrements.
func (e *IncDecExpr) Delta() int32 {
	if e.Op == token.DEC {
		return -1
	}
	return 1
}

// BinaryExpr represents a binary operation: a + b, x == y, p && q.
type BinaryExpr struct {
	ExprBase
	Op    token.Kind
	Left  Expr
	Right Expr
}

// ParenExpr represents a parenthesized expression.
type ParenExpr struct {
	ExprBase
	Inner Expr
}

// ============================================================
// Statements
// ============================================================

// VarDeclStmt represents a typed declaration: int x = expr.
type VarDeclStmt struct {
	StmtBase
	Type token.Kind // one of the type keywords
	Name string
	Init Expr
}

// AssignStmt represents an assignment: name = value.
type AssignStmt struct {
	StmtBase
	Target *IdentExpr
	Value  Expr
}

// PrintStmt represents System.out.println(arg) or System.out.print(arg).
type PrintStmt struct {
	StmtBase
	Newline bool // println
	Arg     Expr // nil for println()
}

// ExprStmt wraps an increment or decrement used as a statement.
type ExprStmt struct {
	StmtBase
	Expr Expr
}

// EmptyStmt represents a lone semicolon.
type EmptyStmt struct {
	StmtBase
}

// BlockStmt represents a block of statements: { ... }.
type BlockStmt struct {
	StmtBase
	Stmts []Stmt
}

// IfStmt represents an if/else if/else chain.
type IfStmt struct {
	StmtBase
	Condition Expr
	Body      *BlockStmt
	ElseIfs   []ElseIfClause
	ElseBody  *BlockStmt // may be nil
}

// ElseIfClause represents a single "else if" branch.
type ElseIfClause struct {
	Span      span.Span
	Condition Expr
	Body      *BlockStmt
}

// WhileStmt represents a while loop.
type WhileStmt struct {
	StmtBase
	Condition Expr
	Body      *BlockStmt
}

// ForStmt represents for (init; condition; update) { body }.
type ForStmt struct {
	StmtBase
	Init      Stmt // VarDeclStmt, AssignStmt, ExprStmt, or nil
	Condition Expr // or nil (infinite loop)
	Update    Stmt // AssignStmt, ExprStmt, or nil
	Body      *BlockStmt
}

// ============================================================
// Helpers
// ============================================================

// Unparen strips any number of enclosing parentheses.
func Unparen(e Expr) Expr {
	for {
		p, ok := e.(*ParenExpr)
		if !ok {
			return e
		}
		e = p.Inner
	}
}

// Walk calls fn for node and every node below it in source order, stopping the descent
// into a subtree when fn returns false.
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}
	switch n := node.(type) {
	case *File:
		for _, s := range n.Body {
			Walk(s, fn)
		}
	case *UnaryExpr:
		Walk(n.Operand, fn)
	case *IncDecExpr:
		Walk(n.Target, fn)
	case *BinaryExpr:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *ParenExpr:
		Walk(n.Inner, fn)
	case *VarDeclStmt:
		Walk(n.Init, fn)
	case *AssignStmt:
		Walk(n.Target, fn)
		Walk(n.Value, fn)
	case *PrintStmt:
		if n.Arg != nil {
			Walk(n.Arg, fn)
		}
	case *ExprStmt:
		Walk(n.Expr, fn)
	case *BlockStmt:
		for _, s := range n.Stmts {
			Walk(s, fn)
		}
	case *IfStmt:
		Walk(n.Condition, fn)
		Walk(n.Body, fn)
		for _, ei := range n.ElseIfs {
			Walk(ei.Condition, fn)
			Walk(ei.Body, fn)
		}
		if n.ElseBody != nil {
			Walk(n.ElseBody, fn)
		}
	case *WhileStmt:
		Walk(n.Condition, fn)
		Walk(n.Body, fn)
	case *ForStmt:
		if n.Init != nil {
			Walk(n.Init, fn)
		}
		if n.Condition != nil {
			Walk(n.Condition, fn)
		}
		if n.Update != nil {
			Walk(n.Update, fn)
		}
		Walk(n.Body, fn)
	}
}
