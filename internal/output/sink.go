// Package output collects the lines a program prints.
package output

import (
	"io"
	"strings"
)

// Sink is an ordered, append-only sequence of output lines. Text written with Write stays
// pending until the next Emit or Flush completes the line.
//
// When a mirror writer is set every append is also written to it immediately, so a run can
// stream its output while the lines are still collected.
type Sink struct {
	lines      []string
	pending    strings.Builder
	hasPending bool

	mirror io.Writer
	err    error
}

// NewSink creates an empty sink. w may be nil.
func NewSink(w io.Writer) *Sink {
	return &Sink{mirror: w}
}

// Emit appends one line, completing any pending text first.
func (s *Sink) Emit(text string) {
	line := text
	if s.hasPending {
		line = s.pending.String() + text
		s.pending.Reset()
		s.hasPending = false
	}
	s.lines = append(s.lines, line)
	s.write(text + "\n")
}

// Write extends the pending line without completing it.
func (s *Sink) Write(text string) {
	s.pending.WriteString(text)
	s.hasPending = true
	s.write(text)
}

// Flush completes the pending line, if any.
func (s *Sink) Flush() {
	if !s.hasPending {
		return
	}
	s.lines = append(s.lines, s.pending.String())
	s.pending.Reset()
	s.hasPending = false
	s.write("\n")
}

// Lines returns a copy of the completed lines.
func (s *Sink) Lines() []string {
	out := make([]string, len(s.lines))
	copy(out, s.lines)
	return out
}

// Len returns the number of completed lines.
func (s *Sink) Len() int {
	return len(s.lines)
}

// Err returns the first error returned by the mirror writer.
func (s *Sink) Err() error {
	return s.err
}

func (s *Sink) write(text string) {
	if s.mirror == nil || s.err != nil {
		return
	}
	if _, err := io.WriteString(s.mirror, text); err != nil {
		s.err = err
	}
}
