package runtime

import (
	"bytes"
	"minijava/internal/diag"
	"minijava/internal/lexer"
	"minijava/internal/output"
	"minijava/internal/parser"
	"strings"
	"testing"
)

// runSource parses and executes source code, returning captured stdout and any error.
func runSource(source string) (string, error) {
	l := lexer.New(source, "test.java")
	tokens, _ := l.Tokenize()
	p := parser.New(tokens)
	file, diags := p.ParseFile()
	if err := diag.FirstError(diags); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	sink := output.NewSink(&buf)
	interp := New(sink)
	err := interp.Run(file)
	sink.Flush()
	return buf.String(), err
}

func expectOutput(t *testing.T, source, expected string) {
	t.Helper()
	out, err := runSource(source)
	if err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	if strings.TrimRight(out, "\n") != strings.TrimRight(expected, "\n") {
		t.Errorf("output mismatch:\nexpected: %q\ngot:      %q", expected, out)
	}
}

func expectError(t *testing.T, source string, kind diag.Kind, contains string) {
	t.Helper()
	_, err := runSource(source)
	if err == nil {
		t.Fatalf("expected error containing %q, got nil", contains)
	}
	if got := diag.KindOf(err); got != kind {
		t.Errorf("expected %s, got %s: %v", kind, got, err)
	}
	if !strings.Contains(err.Error(), contains) {
		t.Errorf("expected error containing %q, got: %v", contains, err)
	}
}

// ---- Tests ----

func TestPrintLiteral(t *testing.T) {
	expectOutput(t, `System.out.println(42);`, "42\n")
}

func TestPrintString(t *testing.T) {
	expectOutput(t, `System.out.println("hello");`, "hello\n")
}

func TestPrintWithoutNewline(t *testing.T) {
	expectOutput(t, `System.out.print("a"); System.out.print(1); System.out.println("b"); System.out.println();`,
		"a1b\n\n")
}

func TestArithmetic(t *testing.T) {
	expectOutput(t, `System.out.println(1 + 2 * 3);`, "7\n")
	expectOutput(t, `System.out.println((1 + 2) * 3);`, "9\n")
	expectOutput(t, `System.out.println(10 / 3);`, "3\n") // integer division
	expectOutput(t, `System.out.println(10 % 3);`, "1\n")
	expectOutput(t, `System.out.println(10.0 / 3.0);`, "3.3333333333333335\n")
	expectOutput(t, `System.out.println(-7 / 2);`, "-3\n")
	expectOutput(t, `System.out.println(10 - 4 - 3);`, "3\n")
}

func TestIntOverflowWraps(t *testing.T) {
	expectOutput(t, `int x = 2147483647; x++; System.out.println(x);`, "-2147483648\n")
	expectOutput(t, `System.out.println(-2147483648 - 1);`, "2147483647\n")
	expectOutput(t, `System.out.println(65536 * 65536);`, "0\n")
}

func TestNumericPromotion(t *testing.T) {
	expectOutput(t, `System.out.println(1 + 2.5);`, "3.5\n")
	expectOutput(t, `System.out.println(1 + 2.5f);`, "3.5\n")
	expectOutput(t, `System.out.println(3 > 2.5);`, "true\n")
	expectOutput(t, `System.out.println(2 == 2.0);`, "true\n")
}

func TestFloatFormatting(t *testing.T) {
	cases := map[string]string{
		`System.out.println(19.99f);`:     "19.99",
		`System.out.println(10.0);`:       "10.0",
		`System.out.println(10000000.0);`: "1.0E7",
		`System.out.println(0.001);`:      "0.001",
		`System.out.println(0.0001);`:     "1.0E-4",
		`System.out.println(1.0 / 0);`:    "Infinity",
		`System.out.println(-1.0 / 0);`:   "-Infinity",
		`System.out.println(0.0 / 0);`:    "NaN",
		`System.out.println(-0.0);`:       "-0.0",
	}
	for source, want := range cases {
		expectOutput(t, source, want+"\n")
	}
}

func TestFormatFloat(t *testing.T) {
	cases := []struct {
		x    float64
		bits int
		want string
	}{
		{19.99, 64, "19.99"},
		{float64(float32(19.99)), 32, "19.99"},
		{3, 64, "3.0"},
		{1234567.0, 64, "1234567.0"},
		{12345678.9, 64, "1.23456789E7"},
		{1e21, 64, "1.0E21"},
		{0.00012, 64, "1.2E-4"},
		{-2.5, 32, "-2.5"},
	}
	for _, c := range cases {
		if got := formatFloat(c.x, c.bits); got != c.want {
			t.Errorf("formatFloat(%v, %d) = %q, want %q", c.x, c.bits, got, c.want)
		}
	}
}

func TestStringConcat(t *testing.T) {
	expectOutput(t, `String s = "a" + 1 + 2; System.out.println(s);`, "a12\n")
	expectOutput(t, `System.out.println(1 + 2 + "a");`, "3a\n")
	expectOutput(t, `System.out.println("x=" + 'c' + true + 1.5);`, "x=ctrue1.5\n")
}

func TestVarDecl(t *testing.T) {
	expectOutput(t, `
int x = 10;
System.out.println(x);
`, "10\n")
}

func TestIntLiteralWidensToFloat(t *testing.T) {
	expectOutput(t, `float f = 10; double d = -3; System.out.println(f); System.out.println(d);`, "10.0\n-3.0\n")
	expectOutput(t, `double d = 1.5; d = 2; System.out.println(d);`, "2.0\n")
}

func TestDeclTypeMismatch(t *testing.T) {
	expectError(t, `int x = "hello";`, diag.TypeError, "cannot initialize int variable 'x'")
	expectError(t, `int a = 1; double d = a;`, diag.TypeError, "double")
	expectError(t, `float f = 1.5;`, diag.TypeError, "float")
	expectError(t, `char c = "c";`, diag.TypeError, "char")
}

func TestAssignTypeMismatch(t *testing.T) {
	expectError(t, `boolean b = true; b = 1;`, diag.TypeError, "cannot assign int value to boolean variable 'b'")
}

func TestUndeclaredVariable(t *testing.T) {
	expectError(t, `System.out.println(nope);`, diag.RuntimeError, "undeclared variable 'nope'")
	expectError(t, `nope = 1;`, diag.RuntimeError, "undeclared variable 'nope'")
	expectError(t, `nope++;`, diag.RuntimeError, "undeclared variable 'nope'")
}

func TestDivisionByZero(t *testing.T) {
	out, err := runSource(`System.out.println("before"); int z = 0; System.out.println(1 / z); System.out.println("after");`)
	if diag.KindOf(err) != diag.ArithmeticError {
		t.Fatalf("expected ArithmeticError, got %v", err)
	}
	if out != "before\n" {
		t.Errorf("expected output up to the failure, got %q", out)
	}
	expectError(t, `System.out.println(5 % 0);`, diag.ArithmeticError, "% by zero")
}

func TestFloatDivisionByZeroDoesNotFail(t *testing.T) {
	expectOutput(t, `float f = 1; System.out.println(f / 0);`, "Infinity\n")
}

func TestIfElseChain(t *testing.T) {
	source := `
int score = 85;
if (score >= 90) {
  System.out.println("A");
} else if (score >= 80) {
  System.out.println("B");
} else if (score >= 70) {
  System.out.println("C");
} else {
  System.out.println("F");
}`
	expectOutput(t, source, "B\n")
}

func TestIfNoBranchTaken(t *testing.T) {
	expectOutput(t, `if (false) { System.out.println("x"); } else if (1 > 2) { System.out.println("y"); }`, "")
}

func TestConditionMustBeBoolean(t *testing.T) {
	expectError(t, `int x = 1; if (x) { }`, diag.TypeError, "condition must be boolean, got int")
	expectError(t, `while (1) { }`, diag.TypeError, "condition must be boolean")
}

func TestShortCircuit(t *testing.T) {
	source := `
int calls = 0;
if (false && calls++ > 0) { }
if (true || calls++ > 0) { }
System.out.println(calls);
if (true && calls++ == 0) { }
System.out.println(calls);`
	expectOutput(t, source, "0\n1\n")
}

func TestLogicalRequiresBoolean(t *testing.T) {
	expectError(t, `boolean b = 1 && true;`, diag.TypeError, "requires boolean operands")
}

func TestWhileLoop(t *testing.T) {
	expectOutput(t, `int i = 0; while (i < 3) { System.out.println(i); i++; }`, "0\n1\n2\n")
	expectOutput(t, `int i = 5; while (i < 3) { System.out.println(i); }`, "")
}

func TestForLoops(t *testing.T) {
	expectOutput(t, `for (int j = 0; j < 5; j++) { System.out.println(j); }`, "0\n1\n2\n3\n4\n")
	expectOutput(t, `for (int k = 3; k > 0; k--) { System.out.println(k); }`, "3\n2\n1\n")
}

func TestForReusesOuterVariable(t *testing.T) {
	expectOutput(t, `int i = 100; for (i = 0; i < 4; i++) { } System.out.println(i);`, "4\n")
}

func TestForVariableDoesNotLeak(t *testing.T) {
	expectError(t, `for (int j = 0; j < 2; j++) { } System.out.println(j);`, diag.RuntimeError, "undeclared variable 'j'")
}

func TestBlockShadowing(t *testing.T) {
	expectOutput(t, `int x = 1; { int x = 2; System.out.println(x); } System.out.println(x);`, "2\n1\n")
}

func TestBlockAssignsOuter(t *testing.T) {
	expectOutput(t, `int x = 1; { x = 5; } System.out.println(x);`, "5\n")
}

func TestRedeclareSameScope(t *testing.T) {
	expectOutput(t, `int x = 1; int x = 2; System.out.println(x);`, "2\n")
}

func TestIncDecValues(t *testing.T) {
	expectOutput(t, `int n = 3; int a = n++; int b = ++n; int c = n--; int d = --n; System.out.println(a + " " + b + " " + c + " " + d + " " + n);`,
		"3 5 5 3 3\n")
}

func TestIncDecRequiresInt(t *testing.T) {
	expectError(t, `double d = 1.5; d++;`, diag.TypeError, "requires an int variable")
	expectError(t, `char c = 'a'; c++;`, diag.TypeError, "requires an int variable")
}

func TestUnaryOperators(t *testing.T) {
	expectOutput(t, `int x = 4; System.out.println(-x); System.out.println(!(x > 3));`, "-4\nfalse\n")
	expectError(t, `boolean b = !1;`, diag.TypeError, "bad operand type int for unary operator '!'")
	expectError(t, `String s = -"a";`, diag.TypeError, "unary operator '-'")
}

func TestEquality(t *testing.T) {
	expectOutput(t, `String a = "hi"; String b = "h" + "i"; System.out.println(a == b);`, "true\n")
	expectOutput(t, `System.out.println('a' != 'b');`, "true\n")
	expectOutput(t, `System.out.println(true == false);`, "false\n")
	expectError(t, `boolean b = 1 == true;`, diag.TypeError, "bad operand types for binary operator '=='")
}

func TestCharRules(t *testing.T) {
	expectOutput(t, `char c = 'x'; System.out.println(c); System.out.println(c > 'a');`, "x\ntrue\n")
	expectError(t, `char c = 'a'; int n = c + 1;`, diag.TypeError, "bad operand types for binary operator '+': char and int")
	expectError(t, `boolean b = 'a' < 1;`, diag.TypeError, "char and int")
}

func TestArithmeticOnBooleanFails(t *testing.T) {
	expectError(t, `int x = true + 1;`, diag.TypeError, "boolean and int")
	expectError(t, `String s = "a" - "b";`, diag.TypeError, "String and String")
}

func TestEnvPersistsAcrossRuns(t *testing.T) {
	interp := New(nil)
	for _, source := range []string{`int total = 1;`, `total = total + 41;`, `System.out.println(total);`} {
		tokens, _ := lexer.New(source, "repl").Tokenize()
		file, diags := parser.New(tokens).ParseFile()
		if len(diags) > 0 {
			t.Fatalf("parse errors: %v", diags)
		}
		if err := interp.Run(file); err != nil {
			t.Fatalf("runtime error: %v", err)
		}
	}
	if lines := interp.Output().Lines(); len(lines) != 1 || lines[0] != "42" {
		t.Errorf("expected [42], got %q", lines)
	}
	if names := interp.Env().Names(); len(names) != 1 || names[0] != "total" {
		t.Errorf("unexpected names %v", names)
	}
}
