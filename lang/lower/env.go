// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package lower

import "github.com/probechain/go-pseudo/lang/ir"

// Env maps variable names to their current SSA values. Scopes nest: a
// lookup that misses in one scope continues in its parent.
type Env struct {
	parent *Env
	vars   map[string]ir.Value
}

// NewEnv creates a scope nested in parent, which may be nil.
func NewEnv(parent *Env) *Env {
	return &Env{parent: parent, vars: make(map[string]ir.Value)}
}

// Define binds name in this scope, shadowing any outer binding.
func (e *Env) Define(name string, v ir.Value) {
	e.vars[name] = v
}

// Lookup returns the innermost binding of name.
func (e *Env) Lookup(name string) (ir.Value, bool) {
	for s := e; s != nil; s = s.parent {
		if v, ok := s.vars[name]; ok {
			return v, true
		}
	}
	return ir.Value{}, false
}

// Assign rebinds name in the innermost scope that defines it. It reports
// false if name is not bound anywhere.
func (e *Env) Assign(name string, v ir.Value) bool {
	for s := e; s != nil; s = s.parent {
		if _, ok := s.vars[name]; ok {
			s.vars[name] = v
			return true
		}
	}
	return false
}
