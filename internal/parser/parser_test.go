package parser

import (
	"encoding/json"
	"minijava/internal/ast"
	"minijava/internal/diag"
	"minijava/internal/lexer"
	"minijava/internal/token"
	"strings"
	"testing"
)

// helper: parse source and return AST + check for no errors
func parseOK(t *testing.T, source string) *ast.File {
	t.Helper()
	l := lexer.New(source, "test.java")
	tokens, lexDiags := l.Tokenize()
	if len(lexDiags) > 0 {
		t.Fatalf("lex errors: %v", lexDiags)
	}
	p := New(tokens)
	file, parseDiags := p.ParseFile()
	if len(parseDiags) > 0 {
		t.Fatalf("parse errors: %v", parseDiags)
	}
	return file
}

// helper: parse source that must fail and return the first diagnostic
func parseErr(t *testing.T, source string) diag.Diagnostic {
	t.Helper()
	tokens, lexDiags := lexer.New(source, "test.java").Tokenize()
	if len(lexDiags) > 0 {
		t.Fatalf("lex errors: %v", lexDiags)
	}
	_, diags := New(tokens).ParseFile()
	if len(diags) == 0 {
		t.Fatalf("expected parse errors for %q", source)
	}
	return diags[0]
}

// helper: parse and return JSON string (for golden-test style checks)
func parseToJSON(t *testing.T, source string) string {
	t.Helper()
	file := parseOK(t, source)
	m := ast.NodeToMap(file)
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		t.Fatalf("json error: %v", err)
	}
	return string(data)
}

func TestParseVarDecl(t *testing.T) {
	file := parseOK(t, `int x = 42;`)
	if len(file.Body) != 1 {
		t.Fatalf("expected 1 node, got %d", len(file.Body))
	}
	decl, ok := file.Body[0].(*ast.VarDeclStmt)
	if !ok {
		t.Fatalf("expected VarDeclStmt, got %T", file.Body[0])
	}
	if decl.Name != "x" {
		t.Errorf("expected name 'x', got %q", decl.Name)
	}
	if decl.Type != token.KW_INT {
		t.Errorf("expected type int, got %s", decl.Type)
	}
	lit, ok := decl.Init.(*ast.IntLiteral)
	if !ok || lit.Value != 42 {
		t.Errorf("expected IntLiteral 42, got %#v", decl.Init)
	}
}

func TestParseAllDeclTypes(t *testing.T) {
	file := parseOK(t, `int a = 1; float b = 19.99f; double c = 2.5; boolean d = true; char e = 'A'; String f = "hi";`)
	want := []token.Kind{token.KW_INT, token.KW_FLOAT, token.KW_DOUBLE, token.KW_BOOLEAN, token.KW_CHAR, token.KW_STRING}
	if len(file.Body) != len(want) {
		t.Fatalf("expected %d decls, got %d", len(want), len(file.Body))
	}
	for i, k := range want {
		decl := file.Body[i].(*ast.VarDeclStmt)
		if decl.Type != k {
			t.Errorf("decl[%d]: expected %s, got %s", i, k, decl.Type)
		}
	}
	if f := file.Body[1].(*ast.VarDeclStmt).Init.(*ast.FloatLiteral); !f.Single {
		t.Error("expected 19.99f to be a float literal")
	}
	if c := file.Body[4].(*ast.VarDeclStmt).Init.(*ast.CharLiteral); c.Value != 'A' {
		t.Errorf("expected 'A', got %q", c.Value)
	}
}

func TestParseBinaryExpr(t *testing.T) {
	file := parseOK(t, `int z = 1 + 2 * 3;`)
	decl := file.Body[0].(*ast.VarDeclStmt)
	// init should be BinaryExpr: 1 + (2 * 3)
	binExpr, ok := decl.Init.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("expected BinaryExpr, got %T", decl.Init)
	}
	if binExpr.Op.String() != "+" {
		t.Errorf("expected '+', got %q", binExpr.Op.String())
	}
	// right should be BinaryExpr: 2 * 3
	rightBin, ok := binExpr.Right.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("expected right BinaryExpr, got %T", binExpr.Right)
	}
	if rightBin.Op.String() != "*" {
		t.Errorf("expected '*', got %q", rightBin.Op.String())
	}
}

func TestParseLeftAssociative(t *testing.T) {
	file := parseOK(t, `int z = 10 - 4 - 3;`)
	bin := file.Body[0].(*ast.VarDeclStmt).Init.(*ast.BinaryExpr)
	if _, ok := bin.Left.(*ast.BinaryExpr); !ok {
		t.Fatalf("expected (10 - 4) - 3, left is %T", bin.Left)
	}
}

func TestParseLogicalPrecedence(t *testing.T) {
	file := parseOK(t, `boolean b = x > 5 || y < 2 && z == 1;`)
	bin := file.Body[0].(*ast.VarDeclStmt).Init.(*ast.BinaryExpr)
	if bin.Op != token.OR {
		t.Fatalf("expected || at the root, got %s", bin.Op)
	}
	if right := bin.Right.(*ast.BinaryExpr); right.Op != token.AND {
		t.Errorf("expected && on the right, got %s", right.Op)
	}
}

func TestParseIntMinValue(t *testing.T) {
	file := parseOK(t, `int m = -2147483648;`)
	lit, ok := file.Body[0].(*ast.VarDeclStmt).Init.(*ast.IntLiteral)
	if !ok {
		t.Fatalf("expected folded IntLiteral, got %T", file.Body[0].(*ast.VarDeclStmt).Init)
	}
	if lit.Value != -2147483648 {
		t.Errorf("expected -2147483648, got %d", lit.Value)
	}
}

func TestParseIntTooLarge(t *testing.T) {
	d := parseErr(t, `int m = 2147483648;`)
	if d.Code != "E2010" || d.Kind != diag.SyntaxError {
		t.Errorf("expected SyntaxError E2010, got %s %s", d.Kind, d.Code)
	}
}

func TestParseIfStmt(t *testing.T) {
	source := `if (x > 0) {
  System.out.println(x);
} else if (x == 0) {
  System.out.println(0);
} else {
  System.out.println(-1);
}`
	file := parseOK(t, source)
	ifStmt, ok := file.Body[0].(*ast.IfStmt)
	if !ok {
		t.Fatalf("expected IfStmt, got %T", file.Body[0])
	}
	if ifStmt.Condition == nil {
		t.Fatal("condition is nil")
	}
	if len(ifStmt.ElseIfs) != 1 {
		t.Errorf("expected 1 else-if, got %d", len(ifStmt.ElseIfs))
	}
	if ifStmt.ElseBody == nil {
		t.Error("else body is nil")
	}
}

func TestParseIfWithoutBraces(t *testing.T) {
	file := parseOK(t, `if (ok) System.out.println("yes"); else System.out.println("no");`)
	ifStmt := file.Body[0].(*ast.IfStmt)
	if len(ifStmt.Body.Stmts) != 1 || ifStmt.ElseBody == nil || len(ifStmt.ElseBody.Stmts) != 1 {
		t.Fatalf("expected single-statement bodies wrapped in blocks")
	}
}

func TestParseWhileStmt(t *testing.T) {
	source := `while (i < 10) {
  i = i + 1;
}`
	file := parseOK(t, source)
	whileStmt, ok := file.Body[0].(*ast.WhileStmt)
	if !ok {
		t.Fatalf("expected WhileStmt, got %T", file.Body[0])
	}
	if whileStmt.Condition == nil {
		t.Fatal("condition is nil")
	}
	if whileStmt.Body == nil {
		t.Fatal("body is nil")
	}
}

func TestParseForStmt(t *testing.T) {
	file := parseOK(t, `for (int i = 0; i < 5; i++) { System.out.print(i); }`)
	forStmt, ok := file.Body[0].(*ast.ForStmt)
	if !ok {
		t.Fatalf("expected ForStmt, got %T", file.Body[0])
	}
	if _, ok := forStmt.Init.(*ast.VarDeclStmt); !ok {
		t.Errorf("expected VarDeclStmt init, got %T", forStmt.Init)
	}
	upd, ok := forStmt.Update.(*ast.ExprStmt)
	if !ok {
		t.Fatalf("expected ExprStmt update, got %T", forStmt.Update)
	}
	if inc := upd.Expr.(*ast.IncDecExpr); inc.Prefix || inc.Op != token.INC {
		t.Errorf("expected postfix ++, got %#v", inc)
	}
}

func TestParseForEmptyClauses(t *testing.T) {
	file := parseOK(t, `for (;;) { }`)
	forStmt := file.Body[0].(*ast.ForStmt)
	if forStmt.Init != nil || forStmt.Condition != nil || forStmt.Update != nil {
		t.Error("expected all clauses to be empty")
	}
}

func TestParseAssignment(t *testing.T) {
	file := parseOK(t, `x = 42;`)
	assign, ok := file.Body[0].(*ast.AssignStmt)
	if !ok {
		t.Fatalf("expected AssignStmt, got %T", file.Body[0])
	}
	if assign.Target.Name != "x" {
		t.Errorf("expected 'x', got %q", assign.Target.Name)
	}
}

func TestParsePrint(t *testing.T) {
	file := parseOK(t, `System.out.println("a"); System.out.print(1); System.out.println();`)
	if len(file.Body) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(file.Body))
	}
	first := file.Body[0].(*ast.PrintStmt)
	second := file.Body[1].(*ast.PrintStmt)
	third := file.Body[2].(*ast.PrintStmt)
	if !first.Newline || second.Newline {
		t.Error("println/print newline flags are wrong")
	}
	if third.Arg != nil {
		t.Error("expected println() without argument")
	}
}

func TestParsePrefixAndPostfix(t *testing.T) {
	file := parseOK(t, `int y = ++x + x--;`)
	bin := file.Body[0].(*ast.VarDeclStmt).Init.(*ast.BinaryExpr)
	pre := bin.Left.(*ast.IncDecExpr)
	post := bin.Right.(*ast.IncDecExpr)
	if !pre.Prefix || pre.Op != token.INC {
		t.Error("expected prefix ++")
	}
	if post.Prefix || post.Op != token.DEC {
		t.Error("expected postfix --")
	}
}

func TestParseClassWrapper(t *testing.T) {
	source := `public class Main {
    public static void main(String[] args) {
        int x = 1;
        System.out.println(x);
    }
}`
	file := parseOK(t, source)
	if file.ClassName != "Main" || file.Entry != "main" {
		t.Errorf("expected Main.main, got %s.%s", file.ClassName, file.Entry)
	}
	if len(file.Body) != 2 {
		t.Errorf("expected 2 statements in main, got %d", len(file.Body))
	}
}

func TestParseClassWrapperAltArgs(t *testing.T) {
	file := parseOK(t, `class A { static public void main(String args[]) { } }`)
	if file.Entry != "main" {
		t.Error("expected main entry")
	}
}

func TestParseEmptyStatement(t *testing.T) {
	file := parseOK(t, `;;int x = 1;;`)
	if len(file.Body) != 4 {
		t.Fatalf("expected 4 statements, got %d", len(file.Body))
	}
}

func TestParseJSONOutput(t *testing.T) {
	jsonStr := parseToJSON(t, `int x = 1;`)
	// Just make sure it's valid JSON and has the right structure
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(jsonStr), &m); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if m["kind"] != "File" {
		t.Errorf("expected kind 'File', got %v", m["kind"])
	}
}

func TestParseUnsupportedConstructs(t *testing.T) {
	cases := map[string]string{
		"missing initializer": `int x;`,
		"break":               `while (true) { break; }`,
		"return":              `return;`,
		"arrays":              `int[] a = 1;`,
		"compound assign":     `x += 1;`,
		"method call":         `foo(1);`,
		"new":                 `String s = new String("a");`,
		"printf":              `System.out.printf("%d", 1);`,
		"other method":        `class A { void f() { } public static void main(String[] args) { } }`,
		"field":               `class A { int x = 1; public static void main(String[] args) { } }`,
		"no main":             `class A { }`,
		"two classes":         `class A { public static void main(String[] a) { } } class B { }`,
		"multi declarators":   `int a = 1, b = 2;`,
	}
	for name, source := range cases {
		t.Run(name, func(t *testing.T) {
			d := parseErr(t, source)
			if d.Kind != diag.UnsupportedConstruct {
				t.Errorf("expected UnsupportedConstruct, got %s: %s", d.Kind, d.Message)
			}
		})
	}
}

func TestParseSyntaxErrors(t *testing.T) {
	cases := map[string]string{
		"missing semicolon": `int x = 1`,
		"missing paren":     `if (x > 1 { }`,
		"not a statement":   `x + 1;`,
		"chained compare":   `boolean b = 1 < 2 < 3;`,
		"incdec literal":    `5++;`,
		"unclosed block":    `{ int x = 1;`,
		"stray brace":       `}`,
		"missing operand":   `int x = 1 + ;`,
	}
	for name, source := range cases {
		t.Run(name, func(t *testing.T) {
			d := parseErr(t, source)
			if d.Kind != diag.SyntaxError {
				t.Errorf("expected SyntaxError, got %s: %s", d.Kind, d.Message)
			}
		})
	}
}

func TestParseChainedCompareMessage(t *testing.T) {
	d := parseErr(t, `boolean b = a < b < c;`)
	if d.Code != "E2008" || !strings.Contains(d.Message, "chained") {
		t.Errorf("unexpected diagnostic %s", d)
	}
}

func TestParseErrorRecovery(t *testing.T) {
	// Missing semicolon - parser should still produce the following statement
	source := `int x = 1
int y = 3;`
	l := lexer.New(source, "test.java")
	tokens, _ := l.Tokenize()
	p := New(tokens)
	file, diags := p.ParseFile()

	if len(diags) == 0 {
		t.Error("expected parse errors")
	}
	if file == nil {
		t.Fatal("file is nil")
	}
	if len(file.Body) != 2 {
		t.Errorf("expected recovery to keep both declarations, got %d", len(file.Body))
	}
}
