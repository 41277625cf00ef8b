// Package diag provides the diagnostic type reported by every stage, from lexing to evaluation.
package diag

import (
	"errors"
	"fmt"
	"minijava/internal/span"
)

// Severity indicates the severity of a diagnostic.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "unknown"
	}
}

// Kind classifies a failure.
type Kind int

const (
	SyntaxError          Kind = iota // malformed token stream
	UnsupportedConstruct             // well-formed Java outside the accepted subset
	TypeError                        // kind mismatch or invalid operand kinds
	ArithmeticError                  // integer division or remainder by zero
	RuntimeError                     // undeclared name or anything unclassified
)

var kindNames = map[Kind]string{
	SyntaxError:          "SyntaxError",
	UnsupportedConstruct: "UnsupportedConstruct",
	TypeError:            "TypeError",
	ArithmeticError:      "ArithmeticError",
	RuntimeError:         "RuntimeError",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps a kind name back to its Kind.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// Diagnostic is a located message with a stable code. Diagnostics with Error severity are
// also the error values returned to callers.
type Diagnostic struct {
	Code     string    `json:"code"`           // stable error code, e.g. "E2001"
	Kind     Kind      `json:"kind"`           // failure class
	Severity Severity  `json:"severity"`       // error or warning
	Message  string    `json:"message"`        // human-readable description
	Span     span.Span `json:"span"`           // source location
	Hint     string    `json:"hint,omitempty"` // optional hint
}

// String returns a human-readable representation of the diagnostic.
func (d Diagnostic) String() string {
	label := d.Kind.String()
	if d.Severity == Warning {
		label = "warning"
	}
	msg := fmt.Sprintf("[%s] %s at %s: %s", d.Code, label, d.Span.Start, d.Message)
	if d.Hint != "" {
		msg += " (hint: " + d.Hint + ")"
	}
	return msg
}

func (d Diagnostic) Error() string {
	return d.String()
}

// WithHint returns a copy of d carrying hint.
func (d Diagnostic) WithHint(hint string) Diagnostic {
	d.Hint = hint
	return d
}

// Errorf creates an error diagnostic of the given kind at s.
func Errorf(kind Kind, code string, s span.Span, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		Code:     code,
		Kind:     kind,
		Severity: Error,
		Message:  fmt.Sprintf(format, args...),
		Span:     s,
	}
}

// Warningf creates a warning diagnostic at s.
func Warningf(code string, s span.Span, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		Code:     code,
		Kind:     RuntimeError,
		Severity: Warning,
		Message:  fmt.Sprintf(format, args...),
		Span:     s,
	}
}

// FirstError returns the first diagnostic with Error severity, or nil.
func FirstError(diags []Diagnostic) error {
	for _, d := range diags {
		if d.Severity == Error {
			return d
		}
	}
	return nil
}

// HasErrors reports whether any diagnostic has Error severity.
func HasErrors(diags []Diagnostic) bool {
	return FirstError(diags) != nil
}

// KindOf extracts the failure kind from err. Errors that are not diagnostics are
// RuntimeError.
func KindOf(err error) Kind {
	var d Diagnostic
	if errors.As(err, &d) {
		return d.Kind
	}
	return RuntimeError
}
