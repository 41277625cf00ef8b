package runtime

import "sort"

// Environment is a stack of frames mapping variable names to values. The bottom frame is the
// program's root scope; every block and every for loop pushes a frame and pops it on exit.
type Environment struct {
	frames []map[string]Value
}

// NewEnvironment creates an environment holding one empty root frame.
func NewEnvironment() *Environment {
	return &Environment{frames: []map[string]Value{make(map[string]Value)}}
}

// Push opens a new innermost frame.
func (e *Environment) Push() {
	e.frames = append(e.frames, make(map[string]Value))
}

// Pop discards the innermost frame. The root frame is never popped.
func (e *Environment) Pop() {
	if len(e.frames) > 1 {
		e.frames = e.frames[:len(e.frames)-1]
	}
}

// Depth returns the number of frames, including the root.
func (e *Environment) Depth() int {
	return len(e.frames)
}

// Declare binds name in the innermost frame, overwriting an existing binding in that frame.
func (e *Environment) Declare(name string, value Value) {
	e.frames[len(e.frames)-1][name] = value
}

// Lookup finds name by walking from the innermost frame outwards.
func (e *Environment) Lookup(name string) (Value, bool) {
	for i := len(e.frames) - 1; i >= 0; i-- {
		if val, exists := e.frames[i][name]; exists {
			return val, true
		}
	}
	return nil, false
}

// Assign replaces the value of the innermost existing binding of name.
// It returns false when name is not bound in any frame.
func (e *Environment) Assign(name string, value Value) bool {
	for i := len(e.frames) - 1; i >= 0; i-- {
		if _, exists := e.frames[i][name]; exists {
			e.frames[i][name] = value
			return true
		}
	}
	return false
}

// Names returns every visible name, sorted.
func (e *Environment) Names() []string {
	seen := make(map[string]bool)
	var names []string
	for _, frame := range e.frames {
		for name := range frame {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}
