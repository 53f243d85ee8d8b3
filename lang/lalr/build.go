// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package lalr

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set"
)

var errNoStart = errors.New("grammar has no start symbol")

// item is an LR(0) item: a production with a dot position.
type item struct {
	prod int
	dot  int
}

// lrState is a state of the LR(0) automaton with its LALR(1) lookaheads.
type lrState struct {
	kernel []item              // kernel items, sorted
	index  map[item]int        // kernel item -> position in kernel and la
	la     []mapset.Set        // lookahead set per kernel item
	trans  map[Symbol]int      // successor state per symbol
	order  []Symbol            // transition symbols, ascending
	items  []item              // closure, filled by the final pass
	looks  map[item]mapset.Set // lookaheads of every closure item
}

// builder holds the working data of one Build call.
type builder struct {
	g        *Grammar
	nullable []bool
	first    []mapset.Set
	states   []*lrState
	byKernel map[string]int
}

// Build computes the LALR(1) table of g.
func Build(g *Grammar) (*Table, error) {
	if err := g.validate(); err != nil {
		return nil, err
	}
	b := &builder{g: g, byKernel: make(map[string]int)}
	b.computeFirst()
	b.buildAutomaton()
	b.propagateLookaheads()
	return b.fillTable()
}

// ---------------------------------------------------------------------------
// FIRST sets
// ---------------------------------------------------------------------------

func (b *builder) computeFirst() {
	n := b.g.NumSymbols()
	b.nullable = make([]bool, n)
	b.first = make([]mapset.Set, n)
	for i := 0; i < n; i++ {
		b.first[i] = mapset.NewThreadUnsafeSet()
		if b.g.IsTerminal(Symbol(i)) {
			b.first[i].Add(Symbol(i))
		}
	}
	for changed := true; changed; {
		changed = false
		for _, p := range b.g.prods {
			before := b.first[p.LHS].Cardinality()
			f, nullable := b.firstOfSeq(p.RHS)
			b.first[p.LHS] = b.first[p.LHS].Union(f)
			if b.first[p.LHS].Cardinality() != before {
				changed = true
			}
			if nullable && !b.nullable[p.LHS] {
				b.nullable[p.LHS] = true
				changed = true
			}
		}
	}
}

// firstOfSeq returns FIRST of a symbol sequence and whether the whole
// sequence can derive the empty string.
func (b *builder) firstOfSeq(seq []Symbol) (mapset.Set, bool) {
	out := mapset.NewThreadUnsafeSet()
	for _, s := range seq {
		out = out.Union(b.first[s])
		if b.g.IsTerminal(s) || !b.nullable[s] {
			return out, false
		}
	}
	return out, true
}

// ---------------------------------------------------------------------------
// LR(0) automaton
// ---------------------------------------------------------------------------

func (b *builder) next(it item) (Symbol, bool) {
	rhs := b.g.prods[it.prod].RHS
	if it.dot >= len(rhs) {
		return NoSymbol, false
	}
	return rhs[it.dot], true
}

// closure0 returns the LR(0) closure of kernel in a deterministic order.
func (b *builder) closure0(kernel []item) []item {
	out := append([]item(nil), kernel...)
	seen := make(map[item]bool, len(kernel))
	for _, it := range kernel {
		seen[it] = true
	}
	for i := 0; i < len(out); i++ {
		s, ok := b.next(out[i])
		if !ok || b.g.IsTerminal(s) {
			continue
		}
		for _, p := range b.g.byLHS[s] {
			it := item{prod: p.ID}
			if !seen[it] {
				seen[it] = true
				out = append(out, it)
			}
		}
	}
	return out
}

func kernelKey(kernel []item) string {
	var sb strings.Builder
	for _, it := range kernel {
		sb.WriteString(strconv.Itoa(it.prod))
		sb.WriteByte('.')
		sb.WriteString(strconv.Itoa(it.dot))
		sb.WriteByte(',')
	}
	return sb.String()
}

func sortItems(items []item) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].prod != items[j].prod {
			return items[i].prod < items[j].prod
		}
		return items[i].dot < items[j].dot
	})
}

// addState returns the state with the given kernel, creating it if needed.
func (b *builder) addState(kernel []item) int {
	sortItems(kernel)
	key := kernelKey(kernel)
	if id, ok := b.byKernel[key]; ok {
		return id
	}
	st := &lrState{
		kernel: kernel,
		index:  make(map[item]int, len(kernel)),
		la:     make([]mapset.Set, len(kernel)),
		trans:  make(map[Symbol]int),
	}
	for i, it := range kernel {
		st.index[it] = i
		st.la[i] = mapset.NewThreadUnsafeSet()
	}
	b.states = append(b.states, st)
	b.byKernel[key] = len(b.states) - 1
	return len(b.states) - 1
}

func (b *builder) buildAutomaton() {
	b.addState([]item{{prod: 0}})
	for i := 0; i < len(b.states); i++ {
		st := b.states[i]
		gotos := make(map[Symbol][]item)
		for _, it := range b.closure0(st.kernel) {
			if s, ok := b.next(it); ok {
				gotos[s] = append(gotos[s], item{prod: it.prod, dot: it.dot + 1})
			}
		}
		for s := range gotos {
			st.order = append(st.order, s)
		}
		sort.Slice(st.order, func(i, j int) bool { return st.order[i] < st.order[j] })
		for _, s := range st.order {
			st.trans[s] = b.addState(gotos[s])
		}
	}
}

// ---------------------------------------------------------------------------
// Lookahead propagation
// ---------------------------------------------------------------------------

// closure1 computes the LR(1) closure of st from the current kernel
// lookaheads. Items are returned in a deterministic order.
func (b *builder) closure1(st *lrState) ([]item, map[item]mapset.Set) {
	items := append([]item(nil), st.kernel...)
	looks := make(map[item]mapset.Set, len(items))
	for i, it := range st.kernel {
		looks[it] = st.la[i].Clone()
	}
	for changed := true; changed; {
		changed = false
		for i := 0; i < len(items); i++ {
			it := items[i]
			s, ok := b.next(it)
			if !ok || b.g.IsTerminal(s) {
				continue
			}
			la, nullable := b.firstOfSeq(b.g.prods[it.prod].RHS[it.dot+1:])
			if nullable {
				la = la.Union(looks[it])
			}
			for _, p := range b.g.byLHS[s] {
				target := item{prod: p.ID}
				cur, seen := looks[target]
				if !seen {
					items = append(items, target)
					cur = mapset.NewThreadUnsafeSet()
				}
				merged := cur.Union(la)
				if !seen || merged.Cardinality() != cur.Cardinality() {
					looks[target] = merged
					changed = true
				}
			}
		}
	}
	return items, looks
}

func (b *builder) propagateLookaheads() {
	b.states[0].la[0].Add(EOF)
	for changed := true; changed; {
		changed = false
		for _, st := range b.states {
			items, looks := b.closure1(st)
			for _, it := range items {
				s, ok := b.next(it)
				if !ok {
					continue
				}
				target := b.states[st.trans[s]]
				idx := target.index[item{prod: it.prod, dot: it.dot + 1}]
				before := target.la[idx].Cardinality()
				target.la[idx] = target.la[idx].Union(looks[it])
				if target.la[idx].Cardinality() != before {
					changed = true
				}
			}
		}
	}
	for _, st := range b.states {
		st.items, st.looks = b.closure1(st)
	}
}

// sortedSymbols returns the members of a symbol set in ascending order.
func sortedSymbols(s mapset.Set) []Symbol {
	out := make([]Symbol, 0, s.Cardinality())
	for _, v := range s.ToSlice() {
		out = append(out, v.(Symbol))
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ---------------------------------------------------------------------------
// Table construction and conflict resolution
// ---------------------------------------------------------------------------

func (b *builder) fillTable() (*Table, error) {
	g := b.g
	t := newTable(g, len(b.states))
	for id, st := range b.states {
		for _, s := range st.order {
			if g.IsTerminal(s) {
				t.actions[id][s] = Action{Kind: ActShift, Target: st.trans[s]}
			} else {
				t.gotos[id][s] = st.trans[s]
			}
		}
		for _, it := range st.items {
			if _, ok := b.next(it); ok {
				continue
			}
			for _, a := range sortedSymbols(st.looks[it]) {
				b.addReduce(t, id, a, it.prod)
			}
		}
	}
	return t, nil
}

// addReduce merges a reduction by prod on lookahead a into the action table,
// resolving conflicts yacc style.
func (b *builder) addReduce(t *Table, state int, a Symbol, prod int) {
	g := b.g
	if prod == 0 {
		if cur := t.actions[state][a]; cur.Kind == ActReduce {
			t.Conflicts = append(t.Conflicts, Conflict{
				State: state, Symbol: a, Kind: ReduceReduce,
				Rules:      []int{cur.Target},
				Resolution: "accept",
			})
		}
		t.actions[state][a] = Action{Kind: ActAccept}
		return
	}
	reduce := Action{Kind: ActReduce, Target: prod}
	cur := t.actions[state][a]
	switch cur.Kind {
	case ActError:
		if cur.explicit {
			return // %nonassoc already decided this cell
		}
		t.actions[state][a] = reduce

	case ActReduce:
		keep, drop := cur.Target, prod
		if drop < keep {
			keep, drop = drop, keep
		}
		t.actions[state][a] = Action{Kind: ActReduce, Target: keep}
		t.Conflicts = append(t.Conflicts, Conflict{
			State: state, Symbol: a, Kind: ReduceReduce,
			Rules:      []int{keep, drop},
			Resolution: fmt.Sprintf("reduce by rule %d", keep),
		})

	case ActShift:
		rp := g.RulePrecedence(g.prods[prod])
		tp := g.PrecedenceOf(a)
		if rp.Level == 0 || tp.Level == 0 {
			t.Conflicts = append(t.Conflicts, Conflict{
				State: state, Symbol: a, Kind: ShiftReduce,
				Rules:      []int{prod},
				Resolution: "shift",
			})
			return
		}
		t.Resolved++
		switch {
		case rp.Level > tp.Level:
			t.actions[state][a] = reduce
		case rp.Level < tp.Level:
			// keep the shift
		case tp.Assoc == AssocLeft:
			t.actions[state][a] = reduce
		case tp.Assoc == AssocRight:
			// keep the shift
		default:
			t.actions[state][a] = Action{Kind: ActError, explicit: true}
		}

	case ActAccept:
		t.Conflicts = append(t.Conflicts, Conflict{
			State: state, Symbol: a, Kind: ShiftReduce,
			Rules:      []int{prod},
			Resolution: "accept",
		})
	}
}
