package interp

import "github.com/liam13141/epp/internal/object"

// Environment is the interpreter's scope stack: a slice of frames with
// the global frame always at index 0. `set` is scope-chain-aware per
// spec.md §3 — it overwrites an existing binding wherever in the chain
// it was first created, and only creates a new binding in the
// innermost frame when no enclosing frame already holds the name.
type Environment struct {
	frames []map[string]object.Object
}

// NewGlobal returns a fresh environment holding only the global frame.
func NewGlobal() *Environment {
	return &Environment{frames: []map[string]object.Object{{}}}
}

// Push adds a new innermost frame. The interpreter does not call it:
// if/repeat/for bodies run in the enclosing *Environment, and a user
// function call builds its own environment with NewCallEnv.
func (e *Environment) Push() {
	e.frames = append(e.frames, map[string]object.Object{})
}

func (e *Environment) Pop() {
	e.frames = e.frames[:len(e.frames)-1]
}

// Get walks from the innermost frame outward.
func (e *Environment) Get(name string) (object.Object, bool) {
	for i := len(e.frames) - 1; i >= 0; i-- {
		if v, ok := e.frames[i][name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Set implements the scope-chain-aware write: update in place at the
// frame of first hit, or bind fresh in the innermost frame.
func (e *Environment) Set(name string, value object.Object) {
	for i := len(e.frames) - 1; i >= 0; i-- {
		if _, ok := e.frames[i][name]; ok {
			e.frames[i][name] = value
			return
		}
	}
	e.frames[len(e.frames)-1][name] = value
}

// SetLocal always binds in the innermost frame, used to install
// function parameters without walking the chain.
func (e *Environment) SetLocal(name string, value object.Object) {
	e.frames[len(e.frames)-1][name] = value
}

// Global returns the outermost (global) frame directly, used to build
// the isolated [global, local] stack for a user function call per
// spec.md's no-lexical-closure invariant.
func (e *Environment) Global() map[string]object.Object {
	return e.frames[0]
}

// NewCallEnv builds the environment a user function body runs in:
// exactly the global frame plus one fresh local frame, never any
// frames from the caller's local scope.
func NewCallEnv(global map[string]object.Object) *Environment {
	return &Environment{frames: []map[string]object.Object{global, {}}}
}
