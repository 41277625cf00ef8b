// Package check resolves variable names before a program runs.
//
// It mirrors the evaluator's frame structure: the program body is the root scope, every block
// opens a child scope, and a for loop opens one scope for its init clause that encloses the
// body.
package check

import (
	"minijava/internal/ast"
	"minijava/internal/diag"
	"minijava/internal/span"
)

type varInfo struct {
	decl span.Span
}

type scope struct {
	parent *scope
	vars   map[string]*varInfo
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, vars: make(map[string]*varInfo)}
}

func (s *scope) lookup(name string) (*varInfo, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// checker carries the scope chain while walking one file.
type checker struct {
	cur   *scope
	diags []diag.Diagnostic
}

// File checks every name in file. Names in predeclared are treated as already bound in the
// root scope (the REPL passes the variables of earlier inputs).
func File(file *ast.File, predeclared ...string) []diag.Diagnostic {
	c := &checker{cur: newScope(nil)}
	for _, name := range predeclared {
		c.cur.vars[name] = &varInfo{}
	}
	for _, stmt := range file.Body {
		c.stmt(stmt)
	}
	return c.diags
}

func (c *checker) push() { c.cur = newScope(c.cur) }
func (c *checker) pop()  { c.cur = c.cur.parent }

func (c *checker) declare(stmt *ast.VarDeclStmt) {
	if _, ok := c.cur.vars[stmt.Name]; !ok {
		if outer, shadowed := c.cur.lookup(stmt.Name); shadowed {
			d := diag.Warningf("W0001", stmt.Span, "declaration of '%s' shadows an outer variable", stmt.Name)
			if outer.decl.Start.IsValid() {
				d = d.WithHint("outer declaration at " + outer.decl.Start.String())
			}
			c.diags = append(c.diags, d)
		}
	}
	c.cur.vars[stmt.Name] = &varInfo{decl: stmt.Span}
}

func (c *checker) resolve(ident *ast.IdentExpr) {
	if _, ok := c.cur.lookup(ident.Name); !ok {
		c.diags = append(c.diags, diag.Errorf(diag.RuntimeError, "E6001", ident.Span,
			"undeclared variable '%s'", ident.Name))
	}
}

func (c *checker) stmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.VarDeclStmt:
		// the initializer cannot see the name it initializes
		c.expr(s.Init)
		c.declare(s)
	case *ast.AssignStmt:
		c.resolve(s.Target)
		c.expr(s.Value)
	case *ast.PrintStmt:
		c.expr(s.Arg)
	case *ast.ExprStmt:
		c.expr(s.Expr)
	case *ast.BlockStmt:
		c.block(s)
	case *ast.IfStmt:
		c.expr(s.Condition)
		c.block(s.Body)
		for _, ei := range s.ElseIfs {
			c.expr(ei.Condition)
			c.block(ei.Body)
		}
		if s.ElseBody != nil {
			c.block(s.ElseBody)
		}
	case *ast.WhileStmt:
		c.expr(s.Condition)
		c.block(s.Body)
	case *ast.ForStmt:
		c.push()
		if s.Init != nil {
			c.stmt(s.Init)
		}
		c.expr(s.Condition)
		c.block(s.Body)
		if s.Update != nil {
			c.stmt(s.Update)
		}
		c.pop()
	}
}

func (c *checker) block(b *ast.BlockStmt) {
	if b == nil {
		return
	}
	c.push()
	for _, stmt := range b.Stmts {
		c.stmt(stmt)
	}
	c.pop()
}

func (c *checker) expr(e ast.Expr) {
	if e == nil {
		return
	}
	ast.Walk(e, func(n ast.Node) bool {
		if ident, ok := n.(*ast.IdentExpr); ok {
			c.resolve(ident)
		}
		return true
	})
}
