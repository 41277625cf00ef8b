// Package suite loads and runs conformance suites: YAML files listing programs together with
// the output and error they must produce.
package suite

import (
	"fmt"
	"minijava/internal/diag"
	"minijava/internal/driver"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"
)

// Suite is a named list of cases.
type Suite struct {
	Path  string
	Name  string
	Cases []*Case
}

// Case is one program and its expected behaviour.
type Case struct {
	Name   string
	Source string
	Output []string       // lines printed, up to the failure when Error is set
	Error  *ExpectedError // nil when the program must succeed
}

// ExpectedError describes the terminal error a case must end with.
type ExpectedError struct {
	Kind     diag.Kind
	Contains string
}

// Result is the outcome of one case.
type Result struct {
	Case     *Case
	Output   []string
	Err      error
	Failures []string
}

// Passed reports whether the case met every expectation.
func (r Result) Passed() bool {
	return len(r.Failures) == 0
}

// Load parses a suite file. Program and output files named by cases are resolved relative
// to the suite's directory and read eagerly.
func Load(path string) (*Suite, error) {
	if path == "" {
		return nil, fmt.Errorf("suite: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("suite: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var raw suiteDisk
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("suite: parse %s: %w", abs, err)
	}

	s, err := raw.toSuite(filepath.Dir(abs))
	if err != nil {
		return nil, fmt.Errorf("suite: %s: %w", abs, err)
	}
	s.Path = abs
	return s, nil
}

// Run executes every case twice and compares both runs with the expectations and with each
// other.
func (s *Suite) Run() []Result {
	results := make([]Result, 0, len(s.Cases))
	for _, c := range s.Cases {
		results = append(results, c.Run())
	}
	return results
}

// Run executes the case.
func (c *Case) Run() Result {
	lines, err := driver.RunSource(c.Source, c.Name, nil)
	result := Result{Case: c, Output: lines, Err: err}

	want := c.Output
	if want == nil {
		want = []string{}
	}
	if !reflect.DeepEqual(lines, want) {
		result.Failures = append(result.Failures, describeMismatch(want, lines))
	}

	switch {
	case c.Error == nil && err != nil:
		result.Failures = append(result.Failures, fmt.Sprintf("unexpected error: %v", err))
	case c.Error != nil && err == nil:
		result.Failures = append(result.Failures, fmt.Sprintf("expected %s, program succeeded", c.Error.Kind))
	case c.Error != nil:
		if got := diag.KindOf(err); got != c.Error.Kind {
			result.Failures = append(result.Failures, fmt.Sprintf("expected %s, got %s: %v", c.Error.Kind, got, err))
		}
		if c.Error.Contains != "" && !strings.Contains(err.Error(), c.Error.Contains) {
			result.Failures = append(result.Failures, fmt.Sprintf("error %q does not contain %q", err, c.Error.Contains))
		}
	}

	again, againErr := driver.RunSource(c.Source, c.Name, nil)
	if !reflect.DeepEqual(lines, again) || errString(err) != errString(againErr) {
		result.Failures = append(result.Failures, "second run differs from the first")
	}
	return result
}

func describeMismatch(want, got []string) string {
	for i := 0; i < len(want) || i < len(got); i++ {
		switch {
		case i >= len(got):
			return fmt.Sprintf("line %d: expected %q, output ended", i+1, want[i])
		case i >= len(want):
			return fmt.Sprintf("line %d: unexpected %q", i+1, got[i])
		case want[i] != got[i]:
			return fmt.Sprintf("line %d: expected %q, got %q", i+1, want[i], got[i])
		}
	}
	return "output differs"
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ---- on-disk form ----

type suiteDisk struct {
	Name  string     `yaml:"name"`
	Cases []caseDisk `yaml:"cases"`
}

type caseDisk struct {
	Name       string     `yaml:"name"`
	Source     string     `yaml:"source"`
	File       string     `yaml:"file"`
	Output     []string   `yaml:"output"`
	OutputFile string     `yaml:"output_file"`
	Error      *errorDisk `yaml:"error"`
}

type errorDisk struct {
	Kind     string `yaml:"kind"`
	Contains string `yaml:"contains"`
}

func (d suiteDisk) toSuite(dir string) (*Suite, error) {
	s := &Suite{
		Name:  strings.TrimSpace(d.Name),
		Cases: make([]*Case, 0, len(d.Cases)),
	}
	seen := make(map[string]bool)
	for i, raw := range d.Cases {
		c, err := raw.toCase(dir)
		if err != nil {
			return nil, fmt.Errorf("case %d: %w", i+1, err)
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("case %d: duplicate name %q", i+1, c.Name)
		}
		seen[c.Name] = true
		s.Cases = append(s.Cases, c)
	}
	return s, nil
}

func (d caseDisk) toCase(dir string) (*Case, error) {
	c := &Case{Name: strings.TrimSpace(d.Name), Output: d.Output}
	if c.Name == "" {
		return nil, fmt.Errorf("missing name")
	}

	switch {
	case d.Source != "" && d.File != "":
		return nil, fmt.Errorf("%s: source and file are exclusive", c.Name)
	case d.File != "":
		data, err := os.ReadFile(filepath.Join(dir, d.File))
		if err != nil {
			return nil, fmt.Errorf("%s: read program: %w", c.Name, err)
		}
		c.Source = string(data)
	default:
		c.Source = d.Source
	}

	if d.OutputFile != "" {
		if d.Output != nil {
			return nil, fmt.Errorf("%s: output and output_file are exclusive", c.Name)
		}
		data, err := os.ReadFile(filepath.Join(dir, d.OutputFile))
		if err != nil {
			return nil, fmt.Errorf("%s: read output: %w", c.Name, err)
		}
		c.Output = splitLines(string(data))
	}

	if d.Error != nil {
		kind, ok := diag.ParseKind(strings.TrimSpace(d.Error.Kind))
		if !ok {
			return nil, fmt.Errorf("%s: unknown error kind %q", c.Name, d.Error.Kind)
		}
		c.Error = &ExpectedError{Kind: kind, Contains: d.Error.Contains}
	}
	return c, nil
}

func splitLines(text string) []string {
	text = strings.TrimRight(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if text == "" {
		return []string{}
	}
	return strings.Split(text, "\n")
}
