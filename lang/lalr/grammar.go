// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package lalr builds LALR(1) parse tables from a context-free grammar and
// drives a table-based shift/reduce parser over them.
//
// Design overview:
//
//   - A Grammar is declared programmatically: terminals, nonterminals,
//     productions and yacc-style precedence levels (%left, %right,
//     %nonassoc, %prec).
//   - Build computes the LR(0) automaton and propagates LR(1) lookaheads to
//     a fixed point, giving the LALR(1) table. Conflicts are settled the way
//     yacc settles them; any that precedence does not decide are recorded.
//   - Engine runs the table against a token stream, calling a reduction
//     callback per matched production, and recovers from syntax errors
//     through the predeclared error terminal.
package lalr

import (
	"fmt"
	"strings"
)

// Symbol identifies a grammar symbol. Terminals and nonterminals share one
// numbering space.
type Symbol int

// Predeclared symbols.
const (
	NoSymbol Symbol = -1
	EOF      Symbol = 0 // end of input
	Error    Symbol = 1 // the error token used for recovery
	Accept   Symbol = 2 // augmented start symbol
)

// Assoc is the associativity of a precedence level.
type Assoc int

const (
	AssocNone Assoc = iota
	AssocLeft
	AssocRight
	AssocNonAssoc
)

func (a Assoc) String() string {
	switch a {
	case AssocLeft:
		return "left"
	case AssocRight:
		return "right"
	case AssocNonAssoc:
		return "nonassoc"
	}
	return "none"
}

// Precedence is the precedence of a terminal. Higher levels bind tighter;
// level zero means none was declared.
type Precedence struct {
	Level int
	Assoc Assoc
}

// Production is a single grammar rule LHS : RHS.
type Production struct {
	ID   int
	LHS  Symbol
	RHS  []Symbol
	Prec Symbol // terminal giving the rule its precedence, NoSymbol for the default
}

type symbolInfo struct {
	name     string
	terminal bool
	prec     Precedence
}

// Grammar is a context-free grammar under construction. Production zero is
// always the augmented rule $accept : Start.
type Grammar struct {
	symbols []symbolInfo
	prods   []*Production
	byLHS   map[Symbol][]*Production
	levels  int
	start   Symbol
}

// NewGrammar creates an empty grammar holding only the predeclared symbols.
func NewGrammar() *Grammar {
	g := &Grammar{
		byLHS: make(map[Symbol][]*Production),
		start: NoSymbol,
	}
	g.symbols = append(g.symbols,
		symbolInfo{name: "end of file", terminal: true},
		symbolInfo{name: "error", terminal: true},
		symbolInfo{name: "$accept"},
	)
	g.prods = append(g.prods, &Production{ID: 0, LHS: Accept, RHS: []Symbol{NoSymbol}, Prec: NoSymbol})
	return g
}

// Terminal declares a new terminal symbol.
func (g *Grammar) Terminal(name string) Symbol {
	g.symbols = append(g.symbols, symbolInfo{name: name, terminal: true})
	return Symbol(len(g.symbols) - 1)
}

// Nonterminal declares a new nonterminal symbol.
func (g *Grammar) Nonterminal(name string) Symbol {
	g.symbols = append(g.symbols, symbolInfo{name: name})
	return Symbol(len(g.symbols) - 1)
}

// Rule adds the production lhs : rhs... and returns it. The caller may set
// Prec on the result to mimic %prec.
func (g *Grammar) Rule(lhs Symbol, rhs ...Symbol) *Production {
	p := &Production{
		ID:   len(g.prods),
		LHS:  lhs,
		RHS:  append([]Symbol(nil), rhs...),
		Prec: NoSymbol,
	}
	g.prods = append(g.prods, p)
	g.byLHS[lhs] = append(g.byLHS[lhs], p)
	return p
}

// Precedence declares the next, tighter binding precedence level for syms.
// Calls are made from the loosest level to the tightest, as in a yacc file.
func (g *Grammar) Precedence(assoc Assoc, syms ...Symbol) {
	g.levels++
	for _, s := range syms {
		g.symbols[s].prec = Precedence{Level: g.levels, Assoc: assoc}
	}
}

// SetStart selects the start symbol.
func (g *Grammar) SetStart(s Symbol) {
	g.start = s
	g.prods[0].RHS = []Symbol{s}
}

// Start returns the start symbol, NoSymbol when unset.
func (g *Grammar) Start() Symbol { return g.start }

// NumSymbols returns the number of declared symbols, predeclared ones
// included.
func (g *Grammar) NumSymbols() int { return len(g.symbols) }

// IsTerminal reports whether s is a terminal.
func (g *Grammar) IsTerminal(s Symbol) bool {
	return s >= 0 && int(s) < len(g.symbols) && g.symbols[s].terminal
}

// Name returns the display name of s.
func (g *Grammar) Name(s Symbol) string {
	if s < 0 || int(s) >= len(g.symbols) {
		return fmt.Sprintf("symbol(%d)", s)
	}
	return g.symbols[s].name
}

// PrecedenceOf returns the declared precedence of terminal s.
func (g *Grammar) PrecedenceOf(s Symbol) Precedence {
	if s < 0 || int(s) >= len(g.symbols) {
		return Precedence{}
	}
	return g.symbols[s].prec
}

// Productions returns every production, the augmented rule first.
func (g *Grammar) Productions() []*Production { return g.prods }

// Production returns the production with the given id.
func (g *Grammar) Production(id int) *Production { return g.prods[id] }

// Terminals returns the declared terminals in declaration order.
func (g *Grammar) Terminals() []Symbol {
	var out []Symbol
	for i, s := range g.symbols {
		if s.terminal {
			out = append(out, Symbol(i))
		}
	}
	return out
}

// RulePrecedence returns the precedence of p: that of its %prec terminal, or
// of the last terminal in its body that has one.
func (g *Grammar) RulePrecedence(p *Production) Precedence {
	if p.Prec != NoSymbol {
		return g.PrecedenceOf(p.Prec)
	}
	for i := len(p.RHS) - 1; i >= 0; i-- {
		if s := p.RHS[i]; g.IsTerminal(s) && g.symbols[s].prec.Level > 0 {
			return g.symbols[s].prec
		}
	}
	return Precedence{}
}

// ProductionString formats p as "LHS: A B C", or "LHS: %empty".
func (g *Grammar) ProductionString(p *Production) string {
	var b strings.Builder
	b.WriteString(g.Name(p.LHS))
	b.WriteString(":")
	if len(p.RHS) == 0 {
		b.WriteString(" %empty")
	}
	for _, s := range p.RHS {
		b.WriteByte(' ')
		b.WriteString(g.Name(s))
	}
	if p.Prec != NoSymbol {
		b.WriteString(" %prec ")
		b.WriteString(g.Name(p.Prec))
	}
	return b.String()
}

// validate checks the grammar is complete enough to build a table from.
func (g *Grammar) validate() error {
	if g.start == NoSymbol {
		return errNoStart
	}
	if g.IsTerminal(g.start) {
		return fmt.Errorf("start symbol %s is a terminal", g.Name(g.start))
	}
	for _, p := range g.prods[1:] {
		if g.IsTerminal(p.LHS) || p.LHS == Accept || int(p.LHS) >= len(g.symbols) {
			return fmt.Errorf("rule %d: invalid left-hand side %s", p.ID, g.Name(p.LHS))
		}
		for _, s := range p.RHS {
			if s < 0 || int(s) >= len(g.symbols) || s == Accept || s == EOF {
				return fmt.Errorf("rule %d: invalid symbol %s in body", p.ID, g.Name(s))
			}
		}
		if p.Prec != NoSymbol && !g.IsTerminal(p.Prec) {
			return fmt.Errorf("rule %d: %%prec symbol %s is not a terminal", p.ID, g.Name(p.Prec))
		}
	}
	for i, s := range g.symbols {
		if !s.terminal && Symbol(i) != Accept && len(g.byLHS[Symbol(i)]) == 0 {
			return fmt.Errorf("nonterminal %s has no rules", s.name)
		}
	}
	return nil
}
