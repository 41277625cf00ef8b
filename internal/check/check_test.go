package check

import (
	"minijava/internal/ast"
	"minijava/internal/diag"
	"minijava/internal/lexer"
	"minijava/internal/parser"
	"testing"
)

func parseOK(t *testing.T, source string) *ast.File {
	t.Helper()
	tokens, lexDiags := lexer.New(source, "test.java").Tokenize()
	if len(lexDiags) > 0 {
		t.Fatalf("lex errors: %v", lexDiags)
	}
	file, diags := parser.New(tokens).ParseFile()
	if len(diags) > 0 {
		t.Fatalf("parse errors: %v", diags)
	}
	return file
}

func TestCheckClean(t *testing.T) {
	source := `int x = 1;
for (int i = 0; i < 3; i++) { x = x + i; }
if (x > 2) { String s = "big"; System.out.println(s); }`
	if diags := File(parseOK(t, source)); len(diags) != 0 {
		t.Errorf("expected no diagnostics, got %v", diags)
	}
}

func TestCheckUndeclared(t *testing.T) {
	diags := File(parseOK(t, `int x = 1;
System.out.println(y);`))
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %v", diags)
	}
	d := diags[0]
	if d.Code != "E6001" || d.Kind != diag.RuntimeError || d.Severity != diag.Error {
		t.Errorf("unexpected diagnostic %s", d)
	}
	if d.Span.Start.Line != 2 {
		t.Errorf("expected line 2, got %d", d.Span.Start.Line)
	}
}

func TestCheckAssignUndeclared(t *testing.T) {
	diags := File(parseOK(t, `z = 3;`))
	if !diag.HasErrors(diags) {
		t.Fatal("expected an error for assignment to undeclared name")
	}
}

func TestCheckSelfInitializer(t *testing.T) {
	diags := File(parseOK(t, `int x = x + 1;`))
	if !diag.HasErrors(diags) {
		t.Fatal("initializer must not see the variable being declared")
	}
}

func TestCheckBlockScopeEnds(t *testing.T) {
	diags := File(parseOK(t, `{ int inner = 1; }
System.out.println(inner);`))
	if !diag.HasErrors(diags) {
		t.Fatal("expected block-local name to be out of scope")
	}
}

func TestCheckLoopVariableDoesNotLeak(t *testing.T) {
	diags := File(parseOK(t, `for (int j = 0; j < 5; j++) { }
System.out.println(j);`))
	if !diag.HasErrors(diags) {
		t.Fatal("expected loop variable to be out of scope after the loop")
	}
}

func TestCheckShadowingWarns(t *testing.T) {
	diags := File(parseOK(t, `int x = 1;
{ int x = 2; }`))
	if diag.HasErrors(diags) {
		t.Fatalf("shadowing must not be fatal: %v", diags)
	}
	if len(diags) != 1 || diags[0].Code != "W0001" || diags[0].Severity != diag.Warning {
		t.Fatalf("expected W0001 warning, got %v", diags)
	}
	if diags[0].Hint == "" {
		t.Error("expected the hint to point at the outer declaration")
	}
}

func TestCheckRedeclareSameScope(t *testing.T) {
	diags := File(parseOK(t, `int x = 1; int x = 2;`))
	if len(diags) != 0 {
		t.Errorf("redeclaration in the same scope overwrites silently, got %v", diags)
	}
}

func TestCheckPredeclared(t *testing.T) {
	diags := File(parseOK(t, `count = count + 1;`), "count")
	if len(diags) != 0 {
		t.Errorf("expected predeclared name to resolve, got %v", diags)
	}
}

func TestCheckConditionsAndUpdates(t *testing.T) {
	diags := File(parseOK(t, `while (missing) { }
for (int i = 0; i < 1; other++) { }`))
	if len(diags) != 2 {
		t.Fatalf("expected 2 errors, got %v", diags)
	}
}
