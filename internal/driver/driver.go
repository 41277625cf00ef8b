// Package driver runs whole programs: source text in, printed lines out.
//
// Every run gets a fresh environment and output sink, so runs share no state and may execute
// concurrently.
package driver

import (
	"fmt"
	"io"
	"minijava/internal/ast"
	"minijava/internal/check"
	"minijava/internal/diag"
	"minijava/internal/lexer"
	"minijava/internal/output"
	"minijava/internal/parser"
	"minijava/internal/runtime"
	"os"
)

// Parse lexes and parses source. When lexing fails the file is nil and only the lexical
// diagnostics are returned.
func Parse(source, filename string) (*ast.File, []diag.Diagnostic) {
	tokens, lexDiags := lexer.New(source, filename).Tokenize()
	if diag.HasErrors(lexDiags) {
		return nil, lexDiags
	}
	file, parseDiags := parser.New(tokens).ParseFile()
	return file, append(lexDiags, parseDiags...)
}

// Run executes file and returns every line it printed. On failure the lines printed before
// the failure are returned together with the error, whose diag.Kind is preserved.
func Run(file *ast.File) ([]string, error) {
	return RunWriter(file, nil)
}

// RunWriter is Run that also streams output to w as it is printed. w may be nil.
func RunWriter(file *ast.File, w io.Writer) ([]string, error) {
	if err := diag.FirstError(check.File(file)); err != nil {
		return []string{}, err
	}

	sink := output.NewSink(w)
	interp := runtime.New(sink)
	err := interp.Run(file)
	sink.Flush()

	if err == nil && sink.Err() != nil {
		err = fmt.Errorf("driver: write output: %w", sink.Err())
	}
	return sink.Lines(), err
}

// RunSource parses and runs source. A syntax or unsupported-construct diagnostic is returned
// as the error without running anything.
func RunSource(source, filename string, w io.Writer) ([]string, error) {
	file, diags := Parse(source, filename)
	if err := diag.FirstError(diags); err != nil {
		return []string{}, err
	}
	return RunWriter(file, w)
}

// RunFile reads the program at path and runs it.
func RunFile(path string, w io.Writer) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("driver: read %s: %w", path, err)
	}
	return RunSource(string(data), path, w)
}
