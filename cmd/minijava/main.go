// Command minijava is the CLI entry point for the minijava toolchain.
//
// Usage:
//
//	minijava tokens    <file> [--json]   Print tokens
//	minijava parse     <file>            Print AST as JSON
//	minijava check     <file>            Report diagnostics without running
//	minijava run       <file>            Run a source file
//	minijava translate <file>            Print the program as Python 3
//	minijava test      <suite.yaml>      Run a conformance suite
//	minijava repl                        Start interactive REPL
package main

import (
	"fmt"
	"minijava/internal/ast"
	"minijava/internal/check"
	"minijava/internal/diag"
	"minijava/internal/driver"
	"minijava/internal/lexer"
	"minijava/internal/pyemit"
	"minijava/internal/suite"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "tokens":
		filename := fileArg()
		cmdTokens(readFile(filename), filename, hasFlag("--json"))
	case "parse":
		filename := fileArg()
		cmdParse(readFile(filename), filename)
	case "check":
		filename := fileArg()
		cmdCheck(readFile(filename), filename)
	case "run":
		filename := fileArg()
		cmdRun(readFile(filename), filename)
	case "translate":
		filename := fileArg()
		cmdTranslate(readFile(filename), filename)
	case "test":
		cmdTest(fileArg())
	case "repl":
		cmdRepl()
	default:
		fmt.Fprintf(os.Stderr, "error: unknown command '%s'\n", command)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  minijava tokens    <file> [--json]   Tokenize and print tokens")
	fmt.Fprintln(os.Stderr, "  minijava parse     <file>            Parse and print AST (JSON)")
	fmt.Fprintln(os.Stderr, "  minijava check     <file>            Report diagnostics without running")
	fmt.Fprintln(os.Stderr, "  minijava run       <file>            Run a source file")
	fmt.Fprintln(os.Stderr, "  minijava translate <file>            Translate to Python 3")
	fmt.Fprintln(os.Stderr, "  minijava test      <suite.yaml>      Run a conformance suite")
	fmt.Fprintln(os.Stderr, "  minijava repl                        Start interactive REPL")
}

func fileArg() string {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "error: missing file argument")
		os.Exit(1)
	}
	return os.Args[2]
}

func readFile(filename string) string {
	source, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: cannot read file %s: %v\n", filename, err)
		os.Exit(1)
	}
	return string(source)
}

func hasFlag(flag string) bool {
	for _, arg := range os.Args[3:] {
		if arg == flag {
			return true
		}
	}
	return false
}

// parseOrExit parses source, printing diagnostics and exiting when it has errors.
func parseOrExit(source, filename string) *ast.File {
	file, diags := driver.Parse(source, filename)
	printDiagsText(diags)
	if diag.HasErrors(diags) {
		os.Exit(1)
	}
	return file
}

// ---- tokens command ----

func cmdTokens(source, filename string, jsonMode bool) {
	tokens, diags := lexer.New(source, filename).Tokenize()

	if jsonMode {
		printTokensJSON(tokens, diags)
	} else {
		printTokensText(tokens, diags)
	}

	if len(diags) > 0 {
		os.Exit(1)
	}
}

// ---- parse command ----

func cmdParse(source, filename string) {
	file, diags := driver.Parse(source, filename)

	output := map[string]interface{}{
		"diagnostics": diagsToSlice(diags),
	}
	if file != nil {
		output["ast"] = ast.NodeToMap(file)
	}
	printJSON(output)

	if diag.HasErrors(diags) {
		os.Exit(1)
	}
}

// ---- check command ----

func cmdCheck(source, filename string) {
	file := parseOrExit(source, filename)
	diags := check.File(file)
	printDiagsText(diags)
	if diag.HasErrors(diags) {
		os.Exit(1)
	}
}

// ---- run command ----

func cmdRun(source, filename string) {
	if _, err := driver.RunSource(source, filename, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// ---- translate command ----

func cmdTranslate(source, filename string) {
	file := parseOrExit(source, filename)
	if err := diag.FirstError(check.File(file)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	out, err := pyemit.File(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(out)
}

// ---- test command ----

func cmdTest(path string) {
	s, err := suite.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	failed := 0
	for _, r := range s.Run() {
		if r.Passed() {
			fmt.Printf("PASS  %s\n", r.Case.Name)
			continue
		}
		failed++
		fmt.Printf("FAIL  %s\n", r.Case.Name)
		for _, f := range r.Failures {
			fmt.Printf("      %s\n", f)
		}
	}

	name := s.Name
	if name == "" {
		name = s.Path
	}
	fmt.Printf("\n%s: %d passed, %d failed\n", name, len(s.Cases)-failed, failed)
	if failed > 0 {
		os.Exit(1)
	}
}
