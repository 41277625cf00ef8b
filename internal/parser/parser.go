// Package parser implements the syntax analysis for minijava.
// It uses Pratt parsing for expressions and recursive descent for statements and the
// class/main wrapper.
package parser

import (
	"fmt"
	"math"
	"minijava/internal/ast"
	"minijava/internal/diag"
	"minijava/internal/span"
	"minijava/internal/token"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ============================================================
// Binding power (precedence) levels
// ============================================================

const (
	bpNone       = 0
	bpOr         = 10 // ||
	bpAnd        = 20 // &&
	bpEquality   = 30 // == !=
	bpComparison = 40 // < <= > >=
	bpAdditive   = 50 // + -
	bpMultiply   = 60 // * / %
	bpPrefix     = 70 // ! - ++ --
	bpPostfix    = 80 // x++ x--
)

// infixBP returns the left binding power for an infix/postfix operator.
func infixBP(kind token.Kind) int {
	switch kind {
	case token.OR:
		return bpOr
	case token.AND:
		return bpAnd
	case token.EQ, token.NEQ:
		return bpEquality
	case token.LT, token.LTE, token.GT, token.GTE:
		return bpComparison
	case token.PLUS, token.MINUS:
		return bpAdditive
	case token.STAR, token.SLASH, token.PERCENT:
		return bpMultiply
	case token.INC, token.DEC:
		return bpPostfix
	default:
		return bpNone
	}
}

func isComparison(kind token.Kind) bool {
	return infixBP(kind) == bpComparison
}

// unsupportedKeywords maps Java keywords outside the subset to the construct they start.
var unsupportedKeywords = map[token.Kind]string{
	token.KW_CLASS:     "nested classes",
	token.KW_PUBLIC:    "member declarations",
	token.KW_PRIVATE:   "member declarations",
	token.KW_PROTECTED: "member declarations",
	token.KW_STATIC:    "member declarations",
	token.KW_FINAL:     "final variables",
	token.KW_VOID:      "method declarations",
	token.KW_NEW:       "object creation",
	token.KW_RETURN:    "return statements",
	token.KW_BREAK:     "break statements",
	token.KW_CONTINUE:  "continue statements",
	token.KW_DO:        "do-while loops",
	token.KW_SWITCH:    "switch statements",
	token.KW_CASE:      "switch statements",
	token.KW_DEFAULT:   "switch statements",
	token.KW_TRY:       "exceptions",
	token.KW_CATCH:     "exceptions",
	token.KW_FINALLY:   "exceptions",
	token.KW_THROW:     "exceptions",
	token.KW_NULL:      "null references",
}

// ============================================================
// Parser
// ============================================================

// Parser performs syntax analysis on a stream of tokens.
type Parser struct {
	tokens []token.Token
	pos    int
	diags  []diag.Diagnostic
}

// New creates a new parser from a token slice.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens, pos: 0}
}

// ParseFile parses the entire file and returns the AST root and diagnostics.
func (p *Parser) ParseFile() (*ast.File, []diag.Diagnostic) {
	file := &ast.File{}
	startPos := p.peek().Span.Start

	if p.atClassDecl() {
		p.parseClassDecl(file)
		for !p.isAtEnd() {
			tok := p.peek()
			if p.atClassDecl() {
				p.unsupported(tok.Span, "E3002", "a program has exactly one class")
				p.skipConstruct()
				continue
			}
			p.error("E2003", tok.Span, fmt.Sprintf("unexpected %s after class body", describe(tok)))
			p.advance()
		}
	} else {
		file.Body = p.parseStmtList(token.EOF)
	}

	file.Span = span.Span{Start: startPos, End: p.peek().Span.End}
	return file, p.diags
}

// ---- navigation helpers ----

func (p *Parser) peek() token.Token {
	return p.peekAt(0)
}

func (p *Parser) peekAt(n int) token.Token {
	if p.pos+n >= len(p.tokens) {
		if len(p.tokens) > 0 {
			return p.tokens[len(p.tokens)-1]
		}
		return token.Token{Kind: token.EOF}
	}
	return p.tokens[p.pos+n]
}

func (p *Parser) peekKind() token.Kind {
	return p.peek().Kind
}

func (p *Parser) advance() token.Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) check(kind token.Kind) bool {
	return p.peekKind() == kind
}

func (p *Parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			return true
		}
	}
	return false
}

func (p *Parser) expect(kind token.Kind) (token.Token, bool) {
	if p.check(kind) {
		return p.advance(), true
	}
	tok := p.peek()
	p.error("E2001", tok.Span, fmt.Sprintf("expected '%s', got %s", kind, describe(tok)))
	return tok, false
}

// expectSemi consumes the ';' terminating a simple statement.
func (p *Parser) expectSemi() {
	if _, ok := p.expect(token.SEMICOLON); !ok {
		p.synchronize()
	}
}

func (p *Parser) isAtEnd() bool {
	return p.peekKind() == token.EOF
}

func (p *Parser) error(code string, s span.Span, msg string) {
	p.diags = append(p.diags, diag.Errorf(diag.SyntaxError, code, s, "%s", msg))
}

func (p *Parser) unsupported(s span.Span, code, format string, args ...interface{}) {
	p.diags = append(p.diags, diag.Errorf(diag.UnsupportedConstruct, code, s, format, args...))
}

// describe renders a token for error messages.
func describe(tok token.Token) string {
	switch tok.Kind {
	case token.EOF:
		return "end of file"
	case token.IDENT, token.INT, token.FLOAT, token.DOUBLE:
		return fmt.Sprintf("'%s'", tok.Lexeme)
	case token.STRING:
		return "string literal"
	case token.CHAR:
		return "character literal"
	default:
		return fmt.Sprintf("'%s'", tok.Kind)
	}
}

// ============================================================
// Error recovery
// ============================================================

// synchronize skips tokens until a likely statement boundary.
func (p *Parser) synchronize() {
	for !p.isAtEnd() {
		if p.check(token.SEMICOLON) {
			p.advance()
			return
		}
		if p.match(token.RBRACE, token.LBRACE) {
			return
		}
		if p.match(token.KW_IF, token.KW_WHILE, token.KW_FOR) || p.peekKind().IsType() {
			return
		}
		p.advance()
	}
}

// skipConstruct skips an unsupported construct: up to a ';' or through one balanced
// brace group, whichever ends it.
func (p *Parser) skipConstruct() {
	depth := 0
	for !p.isAtEnd() {
		switch p.peekKind() {
		case token.LBRACE:
			depth++
		case token.RBRACE:
			if depth == 0 {
				return
			}
			depth--
			if depth == 0 {
				p.advance()
				return
			}
		case token.SEMICOLON:
			if depth == 0 {
				p.advance()
				return
			}
		}
		p.advance()
	}
}

// skipGroup skips a balanced (...) or [...] group starting at the current token.
func (p *Parser) skipGroup(open, close token.Kind) {
	depth := 0
	for !p.isAtEnd() {
		switch p.peekKind() {
		case open:
			depth++
		case close:
			depth--
			if depth <= 0 {
				p.advance()
				return
			}
		case token.SEMICOLON, token.LBRACE, token.RBRACE:
			return
		}
		p.advance()
	}
}

// ============================================================
// Class / entry procedure
// ============================================================

// atClassDecl reports whether the next tokens are [modifiers] class.
func (p *Parser) atClassDecl() bool {
	i := 0
	for p.peekAt(i).Kind.IsModifier() {
		i++
	}
	return p.peekAt(i).Kind == token.KW_CLASS
}

// parseClassDecl parses: [modifiers] class IDENT { main }
func (p *Parser) parseClassDecl(file *ast.File) {
	for p.peekKind().IsModifier() {
		p.advance()
	}
	p.advance() // consume 'class'

	nameTok, ok := p.expect(token.IDENT)
	if !ok {
		p.skipConstruct()
		return
	}
	file.ClassName = nameTok.Lexeme

	if p.check(token.IDENT) && (p.peek().Lexeme == "extends" || p.peek().Lexeme == "implements") {
		p.unsupported(p.peek().Span, "E3001", "class inheritance is not supported")
		for !p.check(token.LBRACE) && !p.isAtEnd() {
			p.advance()
		}
	}

	if _, ok := p.expect(token.LBRACE); !ok {
		p.skipConstruct()
		return
	}

	errorsBefore := len(p.diags)
	for !p.check(token.RBRACE) && !p.isAtEnd() {
		if p.check(token.SEMICOLON) {
			p.advance()
			continue
		}
		before := p.pos
		p.parseMember(file)
		if p.pos == before {
			p.advance()
		}
	}
	p.expect(token.RBRACE)

	if file.Entry == "" && len(p.diags) == errorsBefore {
		p.unsupported(nameTok.Span, "E3003", "class %s has no main method", file.ClassName)
	}
}

// parseMember parses one class member. Only the main method is accepted.
func (p *Parser) parseMember(file *ast.File) {
	memberStart := p.peek()
	isPublic, isStatic := false, false
	for p.peekKind().IsModifier() {
		switch p.advance().Kind {
		case token.KW_PUBLIC:
			isPublic = true
		case token.KW_STATIC:
			isStatic = true
		}
	}

	if p.check(token.KW_VOID) && p.peekAt(1).Kind == token.IDENT && p.peekAt(1).Lexeme == "main" &&
		p.peekAt(2).Kind == token.LPAREN {
		p.advance() // consume 'void'
		nameTok := p.advance()
		if !p.parseMainParams() {
			p.unsupported(nameTok.Span, "E3005", "main must be declared as main(String[] args)")
			p.skipConstruct()
			return
		}
		if !isPublic || !isStatic {
			p.unsupported(memberStart.Span, "E3005", "main must be declared public static void")
		}
		if file.Entry != "" {
			p.unsupported(nameTok.Span, "E3006", "duplicate main method")
		}
		body := p.parseBlock()
		file.Entry = nameTok.Lexeme
		file.Body = body.Stmts
		return
	}

	what := "field declarations"
	switch {
	case p.check(token.KW_CLASS):
		what = "nested classes"
	case p.check(token.KW_VOID),
		p.peekAt(1).Kind == token.IDENT && p.peekAt(2).Kind == token.LPAREN,
		p.check(token.IDENT) && p.peekAt(1).Kind == token.LPAREN:
		what = "method declarations other than main"
	}
	p.unsupported(memberStart.Span, "E3001", "%s are not supported", what)
	p.skipConstruct()
}

// parseMainParams parses ( String [ ] IDENT ) or ( String IDENT [ ] ).
func (p *Parser) parseMainParams() bool {
	p.advance() // consume '('
	if !p.check(token.KW_STRING) {
		return false
	}
	p.advance()
	switch {
	case p.check(token.LBRACKET) && p.peekAt(1).Kind == token.RBRACKET && p.peekAt(2).Kind == token.IDENT:
		p.advance()
		p.advance()
		p.advance()
	case p.check(token.IDENT) && p.peekAt(1).Kind == token.LBRACKET && p.peekAt(2).Kind == token.RBRACKET:
		p.advance()
		p.advance()
		p.advance()
	default:
		return false
	}
	if !p.check(token.RPAREN) {
		return false
	}
	p.advance()
	return true
}

// ============================================================
// Statement parsing
// ============================================================

// parseStmtList parses statements until the terminator kind (not consumed).
func (p *Parser) parseStmtList(end token.Kind) []ast.Stmt {
	var stmts []ast.Stmt
	for !p.check(end) && !p.isAtEnd() {
		before := p.pos
		if p.check(token.RBRACE) {
			tok := p.advance()
			p.error("E2002", tok.Span, "unexpected '}'")
			continue
		}
		if stmt := p.parseStmt(); stmt != nil {
			stmts = append(stmts, stmt)
		}
		if p.pos == before {
			p.advance()
		}
	}
	return stmts
}

func (p *Parser) parseStmt() ast.Stmt {
	kind := p.peekKind()
	switch {
	case kind == token.LBRACE:
		return p.parseBlock()
	case kind == token.SEMICOLON:
		tok := p.advance()
		return &ast.EmptyStmt{StmtBase: makeStmtBase(tok.Span.Start, tok.Span.End)}
	case kind == token.KW_IF:
		return p.parseIfStmt()
	case kind == token.KW_WHILE:
		return p.parseWhileStmt()
	case kind == token.KW_FOR:
		return p.parseForStmt()
	case kind.IsType():
		stmt := p.parseVarDecl()
		p.expectSemi()
		return stmt
	case kind == token.IDENT && p.atPrint():
		stmt := p.parsePrint()
		p.expectSemi()
		return stmt
	}

	if what, ok := unsupportedKeywords[kind]; ok {
		tok := p.peek()
		p.unsupported(tok.Span, "E3001", "%s are not supported", what)
		p.skipConstruct()
		return nil
	}

	stmt := p.parseSimpleStmt()
	if stmt != nil {
		p.expectSemi()
	}
	return stmt
}

// parseIfStmt parses: if (expr) body { else if (expr) body } [ else body ]
func (p *Parser) parseIfStmt() *ast.IfStmt {
	start := p.advance() // consume 'if'
	stmt := &ast.IfStmt{}

	stmt.Condition = p.parseCondition()
	stmt.Body = p.parseBody()

	for p.check(token.KW_ELSE) {
		p.advance() // consume 'else'
		if p.check(token.KW_IF) {
			elseIfStart := p.advance() // consume 'if'
			clause := ast.ElseIfClause{}
			clause.Condition = p.parseCondition()
			clause.Body = p.parseBody()
			clause.Span = p.makeSpan(elseIfStart.Span.Start)
			stmt.ElseIfs = append(stmt.ElseIfs, clause)
		} else {
			stmt.ElseBody = p.parseBody()
			break
		}
	}

	stmt.Span = p.makeSpan(start.Span.Start)
	return stmt
}

// parseWhileStmt parses: while (expr) body
func (p *Parser) parseWhileStmt() *ast.WhileStmt {
	start := p.advance() // consume 'while'
	stmt := &ast.WhileStmt{}
	stmt.Condition = p.parseCondition()
	stmt.Body = p.parseBody()
	stmt.Span = p.makeSpan(start.Span.Start)
	return stmt
}

// parseCondition parses a parenthesized condition: ( expr )
func (p *Parser) parseCondition() ast.Expr {
	if _, ok := p.expect(token.LPAREN); !ok {
		p.synchronize()
		return nil
	}
	cond := p.requireExpr()
	p.expect(token.RPAREN)
	return cond
}

// parseForStmt parses: for ( [init]; [cond]; [update] ) body
func (p *Parser) parseForStmt() *ast.ForStmt {
	start := p.advance() // consume 'for'
	stmt := &ast.ForStmt{}

	if _, ok := p.expect(token.LPAREN); !ok {
		p.synchronize()
		stmt.Body = &ast.BlockStmt{}
		stmt.Span = p.makeSpan(start.Span.Start)
		return stmt
	}

	// Init (optional)
	if !p.check(token.SEMICOLON) {
		if p.peekKind().IsType() {
			stmt.Init = p.parseVarDecl()
		} else {
			stmt.Init = p.parseSimpleStmt()
		}
	}
	p.expect(token.SEMICOLON)

	// Condition (optional)
	if !p.check(token.SEMICOLON) {
		stmt.Condition = p.requireExpr()
	}
	p.expect(token.SEMICOLON)

	// Update (optional)
	if !p.check(token.RPAREN) {
		stmt.Update = p.parseSimpleStmt()
	}
	if p.check(token.COMMA) {
		p.unsupported(p.peek().Span, "E3001", "comma-separated for clauses are not supported")
		for !p.check(token.RPAREN) && !p.isAtEnd() && !p.check(token.LBRACE) {
			p.advance()
		}
	}
	p.expect(token.RPAREN)

	stmt.Body = p.parseBody()
	stmt.Span = p.makeSpan(start.Span.Start)
	return stmt
}

// parseVarDecl parses: type IDENT = expr
func (p *Parser) parseVarDecl() *ast.VarDeclStmt {
	typeTok := p.advance() // consume type keyword
	stmt := &ast.VarDeclStmt{Type: typeTok.Kind}

	if p.check(token.LBRACKET) {
		p.unsupported(p.peek().Span, "E3001", "arrays are not supported")
		p.skipConstruct()
		stmt.Span = p.makeSpan(typeTok.Span.Start)
		return stmt
	}

	nameTok, ok := p.expect(token.IDENT)
	if !ok {
		p.synchronize()
		stmt.Span = p.makeSpan(typeTok.Span.Start)
		return stmt
	}
	stmt.Name = nameTok.Lexeme

	switch {
	case p.check(token.LBRACKET):
		p.unsupported(p.peek().Span, "E3001", "arrays are not supported")
		p.skipConstruct()
	case p.check(token.LPAREN):
		p.unsupported(nameTok.Span, "E3001", "method declarations other than main are not supported")
		p.skipConstruct()
	case !p.check(token.ASSIGN):
		p.unsupported(nameTok.Span, "E3007", "declaration of '%s' has no initializer", stmt.Name)
	default:
		p.advance() // consume '='
		stmt.Init = p.requireExpr()
		if p.check(token.COMMA) {
			p.unsupported(p.peek().Span, "E3001", "multiple declarators are not supported")
			p.synchronize()
		}
	}

	stmt.Span = p.makeSpan(typeTok.Span.Start)
	return stmt
}

// atPrint reports whether the next tokens are System.out.<name>.
func (p *Parser) atPrint() bool {
	return p.peek().Lexeme == "System" &&
		p.peekAt(1).Kind == token.DOT &&
		p.peekAt(2).Kind == token.IDENT && p.peekAt(2).Lexeme == "out" &&
		p.peekAt(3).Kind == token.DOT &&
		p.peekAt(4).Kind == token.IDENT
}

// parsePrint parses: System.out.println( [expr] ) or System.out.print( expr )
func (p *Parser) parsePrint() ast.Stmt {
	start := p.advance() // System
	p.advance()          // .
	p.advance()          // out
	p.advance()          // .
	method := p.advance()

	if method.Lexeme != "println" && method.Lexeme != "print" {
		p.unsupported(method.Span, "E3004", "method call System.out.%s is not supported", method.Lexeme)
		p.skipConstruct()
		return nil
	}

	stmt := &ast.PrintStmt{Newline: method.Lexeme == "println"}
	if _, ok := p.expect(token.LPAREN); !ok {
		p.synchronize()
		stmt.Span = p.makeSpan(start.Span.Start)
		return stmt
	}
	if !p.check(token.RPAREN) {
		stmt.Arg = p.requireExpr()
		if p.check(token.COMMA) {
			p.error("E2005", p.peek().Span, fmt.Sprintf("System.out.%s takes a single argument", method.Lexeme))
			p.skipGroup(token.LPAREN, token.RPAREN)
		}
	} else if !stmt.Newline {
		p.error("E2005", p.peek().Span, "System.out.print requires an argument")
	}
	p.expect(token.RPAREN)

	stmt.Span = p.makeSpan(start.Span.Start)
	return stmt
}

// parseSimpleStmt parses an assignment or an increment/decrement statement.
func (p *Parser) parseSimpleStmt() ast.Stmt {
	tok := p.peek()

	if tok.Kind == token.IDENT {
		next := p.peekAt(1).Kind
		switch {
		case next == token.ASSIGN:
			p.advance() // name
			p.advance() // '='
			target := &ast.IdentExpr{ExprBase: makeExprBase(tok.Span.Start, tok.Span.End), Name: tok.Lexeme}
			value := p.requireExpr()
			return &ast.AssignStmt{
				StmtBase: makeStmtBase(tok.Span.Start, p.prevEnd()),
				Target:   target,
				Value:    value,
			}
		case next.IsCompoundAssign():
			p.unsupported(p.peekAt(1).Span, "E3001", "compound assignment '%s' is not supported", next)
			p.skipConstruct()
			return nil
		}
	}

	errorsBefore := len(p.diags)
	expr := p.parseExpr(bpNone)
	if expr == nil {
		if len(p.diags) == errorsBefore {
			p.error("E2002", tok.Span, fmt.Sprintf("unexpected %s", describe(tok)))
		}
		p.synchronize()
		return nil
	}

	if _, ok := ast.Unparen(expr).(*ast.IncDecExpr); !ok {
		if len(p.diags) == errorsBefore {
			p.error("E2007", expr.GetSpan(), "not a statement")
		}
		p.synchronize()
		return nil
	}

	return &ast.ExprStmt{
		StmtBase: makeStmtBase(expr.GetSpan().Start, expr.GetSpan().End),
		Expr:     expr,
	}
}

// parseBody parses a loop or branch body. A single statement is wrapped in a block.
func (p *Parser) parseBody() *ast.BlockStmt {
	if p.check(token.LBRACE) {
		return p.parseBlock()
	}
	start := p.peek()
	block := &ast.BlockStmt{}
	if p.isAtEnd() {
		p.error("E2001", start.Span, "expected statement, got end of file")
		block.Span = start.Span
		return block
	}
	if p.peekKind().IsType() {
		p.error("E2006", start.Span, "declaration not allowed here")
	}
	if stmt := p.parseStmt(); stmt != nil {
		block.Stmts = append(block.Stmts, stmt)
	}
	block.Span = p.makeSpan(start.Span.Start)
	return block
}

// parseBlock parses: { stmts }
func (p *Parser) parseBlock() *ast.BlockStmt {
	start := p.peek()
	block := &ast.BlockStmt{}

	if _, ok := p.expect(token.LBRACE); !ok {
		p.synchronize()
		block.Span = p.makeSpan(start.Span.Start)
		return block
	}

	block.Stmts = p.parseStmtList(token.RBRACE)

	p.expect(token.RBRACE)
	block.Span = p.makeSpan(start.Span.Start)
	return block
}

// ============================================================
// Expression parsing (Pratt / precedence climbing)
// ============================================================

// requireExpr parses an expression and reports an error if none is present.
func (p *Parser) requireExpr() ast.Expr {
	return p.requireOperand(bpNone)
}

// requireOperand is requireExpr with a minimum binding power.
func (p *Parser) requireOperand(bp int) ast.Expr {
	tok := p.peek()
	errorsBefore := len(p.diags)
	expr := p.parseExpr(bp)
	if expr == nil && len(p.diags) == errorsBefore {
		p.error("E2002", tok.Span, fmt.Sprintf("expected expression, got %s", describe(tok)))
	}
	return expr
}

// parseExpr parses an expression with the given minimum binding power.
func (p *Parser) parseExpr(minBP int) ast.Expr {
	left := p.nud()
	if left == nil {
		return nil
	}

	for {
		kind := p.peekKind()
		bp := infixBP(kind)
		if bp <= minBP {
			break
		}
		if isComparison(kind) {
			if bin, ok := left.(*ast.BinaryExpr); ok && isComparison(bin.Op) {
				p.error("E2008", p.peek().Span, "comparison operators cannot be chained")
			}
		}
		left = p.led(left)
		if left == nil {
			return nil
		}
	}

	return left
}

// nud handles prefix (null denotation) parsing.
func (p *Parser) nud() ast.Expr {
	tok := p.peek()

	switch tok.Kind {
	case token.INT:
		p.advance()
		return p.intLiteral(tok, tok.Span.Start, false)

	case token.FLOAT, token.DOUBLE:
		p.advance()
		text := strings.TrimRight(tok.Lexeme, "fFdD")
		bits := 64
		if tok.Kind == token.FLOAT {
			bits = 32
		}
		val, err := strconv.ParseFloat(text, bits)
		if err != nil {
			p.error("E2010", tok.Span, fmt.Sprintf("floating-point number too large: %s", tok.Lexeme))
		}
		return &ast.FloatLiteral{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Value:    val,
			Single:   tok.Kind == token.FLOAT,
		}

	case token.STRING:
		p.advance()
		return &ast.StringLiteral{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Value:    tok.Lexeme,
		}

	case token.CHAR:
		p.advance()
		r, _ := utf8.DecodeRuneInString(tok.Lexeme)
		return &ast.CharLiteral{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Value:    r,
		}

	case token.KW_TRUE, token.KW_FALSE:
		p.advance()
		return &ast.BoolLiteral{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Value:    tok.Kind == token.KW_TRUE,
		}

	case token.IDENT:
		p.advance()
		switch p.peekKind() {
		case token.LPAREN:
			p.unsupported(tok.Span, "E3004", "method call %s(...) is not supported", tok.Lexeme)
			p.skipGroup(token.LPAREN, token.RPAREN)
		case token.DOT:
			p.unsupported(tok.Span, "E3004", "member access on '%s' is not supported", tok.Lexeme)
			for p.check(token.DOT) && p.peekAt(1).Kind == token.IDENT {
				p.advance()
				p.advance()
			}
			if p.check(token.LPAREN) {
				p.skipGroup(token.LPAREN, token.RPAREN)
			}
		case token.LBRACKET:
			p.unsupported(p.peek().Span, "E3001", "arrays are not supported")
			p.skipGroup(token.LBRACKET, token.RBRACKET)
		}
		return &ast.IdentExpr{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Name:     tok.Lexeme,
		}

	case token.LPAREN:
		p.advance() // consume '('
		if p.peekKind().IsType() && p.peekAt(1).Kind == token.RPAREN {
			p.unsupported(tok.Span, "E3001", "casts are not supported")
			p.advance()
			p.advance()
			return p.parseExpr(bpPrefix)
		}
		inner := p.requireExpr()
		end, _ := p.expect(token.RPAREN)
		if inner == nil {
			return nil
		}
		return &ast.ParenExpr{
			ExprBase: makeExprBase(tok.Span.Start, end.Span.End),
			Inner:    inner,
		}

	case token.MINUS:
		p.advance()
		if p.check(token.INT) {
			// fold so that -2147483648 is representable
			lit := p.advance()
			return p.intLiteral(lit, tok.Span.Start, true)
		}
		return p.prefix(tok)

	case token.BANG:
		p.advance()
		return p.prefix(tok)

	case token.INC, token.DEC:
		p.advance()
		if !p.check(token.IDENT) {
			p.error("E2009", p.peek().Span, fmt.Sprintf("operand of '%s' must be a variable", tok.Kind))
			return nil
		}
		nameTok := p.advance()
		return &ast.IncDecExpr{
			ExprBase: makeExprBase(tok.Span.Start, nameTok.Span.End),
			Op:       tok.Kind,
			Prefix:   true,
			Target: &ast.IdentExpr{
				ExprBase: makeExprBase(nameTok.Span.Start, nameTok.Span.End),
				Name:     nameTok.Lexeme,
			},
		}

	default:
		if what, ok := unsupportedKeywords[tok.Kind]; ok {
			p.unsupported(tok.Span, "E3001", "%s are not supported", what)
			p.advance()
		}
		return nil
	}
}

// prefix parses the operand of a unary - or ! whose operator was just consumed.
func (p *Parser) prefix(op token.Token) ast.Expr {
	operand := p.requireOperand(bpPrefix)
	if operand == nil {
		return nil
	}
	return &ast.UnaryExpr{
		ExprBase: makeExprBase(op.Span.Start, operand.GetSpan().End),
		Op:       op.Kind,
		Operand:  operand,
	}
}

// intLiteral converts an INT token, negated when the parser folded a leading minus.
func (p *Parser) intLiteral(tok token.Token, start span.Position, negate bool) ast.Expr {
	val, err := strconv.ParseInt(tok.Lexeme, 10, 64)
	limit := int64(math.MaxInt32)
	if negate {
		limit++
	}
	if err != nil || val > limit {
		p.error("E2010", tok.Span, fmt.Sprintf("integer number too large: %s", tok.Lexeme))
		val = 0
	}
	if negate {
		val = -val
	}
	return &ast.IntLiteral{
		ExprBase: makeExprBase(start, tok.Span.End),
		Value:    val,
	}
}

// led handles infix/postfix (left denotation) parsing.
func (p *Parser) led(left ast.Expr) ast.Expr {
	tok := p.peek()

	switch tok.Kind {
	case token.INC, token.DEC:
		p.advance()
		target, ok := left.(*ast.IdentExpr)
		if !ok {
			p.error("E2009", tok.Span, fmt.Sprintf("operand of '%s' must be a variable", tok.Kind))
			return nil
		}
		return &ast.IncDecExpr{
			ExprBase: makeExprBase(left.GetSpan().Start, tok.Span.End),
			Op:       tok.Kind,
			Target:   target,
		}

	default:
		// Binary infix operator (left-associative)
		bp := infixBP(tok.Kind)
		p.advance()
		right := p.requireOperand(bp)
		if right == nil {
			return nil
		}
		return &ast.BinaryExpr{
			ExprBase: makeExprBase(left.GetSpan().Start, right.GetSpan().End),
			Op:       tok.Kind,
			Left:     left,
			Right:    right,
		}
	}
}

// ============================================================
// Span helpers
// ============================================================

func (p *Parser) prevEnd() span.Position {
	if p.pos > 0 && p.pos-1 < len(p.tokens) {
		return p.tokens[p.pos-1].Span.End
	}
	return p.peek().Span.Start
}

func (p *Parser) makeSpan(start span.Position) span.Span {
	return span.Span{Start: start, End: p.prevEnd()}
}

func makeExprBase(start, end span.Position) ast.ExprBase {
	return ast.ExprBase{NodeBase: ast.NodeBase{Span: span.Span{Start: start, End: end}}}
}

func makeStmtBase(start, end span.Position) ast.StmtBase {
	return ast.StmtBase{NodeBase: ast.NodeBase{Span: span.Span{Start: start, End: end}}}
}
