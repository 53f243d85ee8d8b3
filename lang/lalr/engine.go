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

	"github.com/ethereum/go-ethereum/log"

	"github.com/probechain/go-pseudo/lang/token"
)

// DefaultMaxErrors is the number of syntax errors after which a parse gives
// up even if recovery could continue.
const DefaultMaxErrors = 10

// recoverShifts is the number of tokens that must be shifted after an error
// before a new error is reported.
const recoverShifts = 3

// Lexer supplies classified tokens to the engine. After the end of input it
// keeps returning EOF.
type Lexer interface {
	Next() (Symbol, token.Token)
}

// Reducer builds the semantic value of production p from the values of its
// body. Terminal values are the token.Token that was shifted; the error
// terminal has a nil value. A non-nil error rejects the reduction and puts
// the engine into error recovery.
type Reducer func(p *Production, args []interface{}) (interface{}, error)

// frame is one entry of the parse stack.
type frame struct {
	state int
	value interface{}
	pos   token.Position
}

// Engine drives a Table over a token stream.
type Engine struct {
	table     *Table
	maxErrors int
	log       log.Logger
}

// NewEngine creates an engine for t. A maxErrors below one selects
// DefaultMaxErrors; a nil logger selects the root logger.
func NewEngine(t *Table, maxErrors int, logger log.Logger) *Engine {
	if maxErrors < 1 {
		maxErrors = DefaultMaxErrors
	}
	if logger == nil {
		logger = log.Root()
	}
	return &Engine{table: t, maxErrors: maxErrors, log: logger}
}

// Parse runs the parser until the input is accepted or parsing is abandoned.
// The value of the start symbol is returned only when no error was reported;
// otherwise the value is nil and errs lists every error in the order found.
func (e *Engine) Parse(lex Lexer, reduce Reducer) (value interface{}, errs []*SyntaxError) {
	var (
		g      = e.table.Grammar
		stack  = []frame{{state: 0}}
		sym    Symbol
		tok    token.Token
		haveLA bool
		quiet  int // tokens still to shift before errors are reported again
	)
	for {
		if !haveLA {
			sym, tok = lex.Next()
			haveLA = true
			e.log.Trace("Reading token", "token", g.Name(sym), "literal", tok.Literal, "pos", tok.Pos)
		}
		state := stack[len(stack)-1].state
		act := e.table.Action(state, sym)

		switch act.Kind {
		case ActShift:
			e.log.Trace("Shifting", "token", g.Name(sym), "state", act.Target)
			stack = append(stack, frame{state: act.Target, value: tok, pos: tok.Pos})
			haveLA = false
			if quiet > 0 {
				quiet--
			}
			continue

		case ActReduce:
			p := g.prods[act.Target]
			n := len(p.RHS)
			base := len(stack) - n
			args := make([]interface{}, n)
			pos := tok.Pos
			for i := range args {
				args[i] = stack[base+i].value
			}
			if n > 0 {
				pos = stack[base].pos
			}
			e.log.Trace("Reducing stack", "rule", act.Target, "production", g.ProductionString(p))
			v, err := reduce(p, args)
			stack = stack[:base]
			if err == nil {
				next, ok := e.table.Goto(stack[len(stack)-1].state, p.LHS)
				if !ok {
					// Unreachable for a table produced by Build.
					errs = append(errs, e.report(pos, sym, tok, nil, errBadGoto))
					return nil, errs
				}
				stack = append(stack, frame{state: next, value: v, pos: pos})
				continue
			}
			errs = append(errs, e.actionError(pos, sym, tok, err))
			e.log.Debug("Reduction rejected", "rule", act.Target, "err", err)

		case ActAccept:
			if len(errs) > 0 {
				return nil, errs
			}
			return stack[len(stack)-1].value, nil

		case ActError:
			switch {
			case quiet == 0:
				errs = append(errs, e.report(tok.Pos, sym, tok, e.expected(state), nil))
				e.log.Debug("Syntax error", "pos", tok.Pos, "unexpected", g.Name(sym))
			case quiet == recoverShifts:
				// Still resynchronizing: drop the lookahead.
				if sym == EOF {
					return nil, errs
				}
				e.log.Trace("Discarding token", "token", g.Name(sym))
				haveLA = false
			}
		}

		// Error recovery: pop until a state can shift the error token.
		if len(errs) >= e.maxErrors {
			e.log.Debug("Too many errors, giving up", "count", len(errs))
			return nil, errs
		}
		quiet = recoverShifts
		for {
			top := stack[len(stack)-1].state
			if act := e.table.Action(top, Error); act.Kind == ActShift {
				e.log.Trace("Shifting", "token", "error", "state", act.Target)
				stack = append(stack, frame{state: act.Target, pos: tok.Pos})
				break
			}
			if len(stack) == 1 {
				e.log.Debug("Error recovery failed, stack exhausted")
				return nil, errs
			}
			stack = stack[:len(stack)-1]
		}
	}
}

var errBadGoto = errors.New("parse table has no goto entry")

func (e *Engine) expected(state int) []string {
	syms := e.table.Expected(state)
	names := make([]string, len(syms))
	for i, s := range syms {
		names[i] = e.table.Grammar.Name(s)
	}
	return names
}

func (e *Engine) report(pos token.Position, sym Symbol, tok token.Token, expected []string, cause error) *SyntaxError {
	return &SyntaxError{
		Pos:        pos,
		Unexpected: tok,
		Found:      e.table.Grammar.Name(sym),
		Expected:   expected,
		Cause:      cause,
	}
}

// actionError turns a reduction failure into a SyntaxError. A reducer may
// return a *SyntaxError of its own to pin the position.
func (e *Engine) actionError(pos token.Position, sym Symbol, tok token.Token, err error) *SyntaxError {
	var se *SyntaxError
	if errors.As(err, &se) {
		if !se.Pos.IsValid() {
			se.Pos = pos
		}
		return se
	}
	return e.report(pos, sym, tok, nil, err)
}
