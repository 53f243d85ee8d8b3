// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package lalr

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"
)

// expectedCacheSize bounds the number of states whose expected-token list is
// kept around.
const expectedCacheSize = 256

// ActionKind is the kind of a parse table entry.
type ActionKind uint8

const (
	ActError ActionKind = iota
	ActShift
	ActReduce
	ActAccept
)

func (k ActionKind) String() string {
	switch k {
	case ActShift:
		return "shift"
	case ActReduce:
		return "reduce"
	case ActAccept:
		return "accept"
	}
	return "error"
}

// Action is a single parse table entry. Target is the successor state of a
// shift or the production of a reduce.
type Action struct {
	Kind   ActionKind
	Target int

	explicit bool // error entry written by %nonassoc
}

func (a Action) String() string {
	switch a.Kind {
	case ActShift:
		return fmt.Sprintf("s%d", a.Target)
	case ActReduce:
		return fmt.Sprintf("r%d", a.Target)
	case ActAccept:
		return "acc"
	}
	return ""
}

// ConflictKind distinguishes shift/reduce from reduce/reduce conflicts.
type ConflictKind int

const (
	ShiftReduce ConflictKind = iota
	ReduceReduce
)

func (k ConflictKind) String() string {
	if k == ReduceReduce {
		return "reduce/reduce"
	}
	return "shift/reduce"
}

// Conflict is a table cell that precedence declarations did not settle.
type Conflict struct {
	State      int
	Symbol     Symbol
	Kind       ConflictKind
	Rules      []int
	Resolution string
}

// Table is an LALR(1) parse table. It is read-only once built and safe for
// concurrent use.
type Table struct {
	Grammar   *Grammar
	Conflicts []Conflict
	Resolved  int // conflicts settled by precedence

	actions [][]Action
	gotos   [][]int
	expect  *lru.ARCCache
}

func newTable(g *Grammar, states int) *Table {
	t := &Table{
		Grammar: g,
		actions: make([][]Action, states),
		gotos:   make([][]int, states),
	}
	for i := range t.actions {
		t.actions[i] = make([]Action, g.NumSymbols())
		t.gotos[i] = make([]int, g.NumSymbols())
		for j := range t.gotos[i] {
			t.gotos[i][j] = -1
		}
	}
	// NewARC only fails for a non-positive size.
	t.expect, _ = lru.NewARC(expectedCacheSize)
	return t
}

// NumStates returns the number of parser states.
func (t *Table) NumStates() int { return len(t.actions) }

// Action returns the table entry for state and terminal sym.
func (t *Table) Action(state int, sym Symbol) Action {
	if sym < 0 || int(sym) >= len(t.actions[state]) || !t.Grammar.IsTerminal(sym) {
		return Action{}
	}
	return t.actions[state][sym]
}

// Goto returns the successor of state after reducing to nonterminal sym.
func (t *Table) Goto(state int, sym Symbol) (int, bool) {
	if sym < 0 || int(sym) >= len(t.gotos[state]) {
		return -1, false
	}
	next := t.gotos[state][sym]
	return next, next >= 0
}

// Expected returns the terminals that have a non-error action in state, in
// declaration order. The error terminal is never listed.
func (t *Table) Expected(state int) []Symbol {
	if v, ok := t.expect.Get(state); ok {
		return v.([]Symbol)
	}
	var out []Symbol
	for _, s := range t.Grammar.Terminals() {
		if s != Error && t.actions[state][s].Kind != ActError {
			out = append(out, s)
		}
	}
	t.expect.Add(state, out)
	return out
}

// Counts returns how many shift, reduce and accept entries the table holds.
func (t *Table) Counts() (shifts, reduces, accepts int) {
	for _, row := range t.actions {
		for _, a := range row {
			switch a.Kind {
			case ActShift:
				shifts++
			case ActReduce:
				reduces++
			case ActAccept:
				accepts++
			}
		}
	}
	return shifts, reduces, accepts
}

// describe formats a conflict the way yacc reports it.
func (c Conflict) describe(g *Grammar) string {
	return fmt.Sprintf("state %d: %s conflict on %s (rules %v), resolved as %s",
		c.State, c.Kind, g.Name(c.Symbol), c.Rules, c.Resolution)
}

// DescribeConflicts returns one line per unresolved conflict.
func (t *Table) DescribeConflicts() []string {
	out := make([]string, len(t.Conflicts))
	for i, c := range t.Conflicts {
		out[i] = c.describe(t.Grammar)
	}
	return out
}
