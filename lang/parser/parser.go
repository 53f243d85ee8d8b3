// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package parser turns pseudocode source into a syntax tree. It is a table
// driven LALR(1) parser: the grammar is declared once, compiled into a parse
// table on first use and shared by every parse afterwards.
package parser

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/log"

	"github.com/probechain/go-pseudo/lang/ast"
	"github.com/probechain/go-pseudo/lang/lalr"
	"github.com/probechain/go-pseudo/lang/lexer"
	"github.com/probechain/go-pseudo/lang/token"
)

// SyntaxError is a single parse error with its position.
type SyntaxError = lalr.SyntaxError

// ErrorList is the set of errors reported by one parse, in source order.
type ErrorList []*SyntaxError

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	case 2:
		return fmt.Sprintf("%s (and 1 more error)", l[0])
	}
	return fmt.Sprintf("%s (and %d more errors)", l[0], len(l)-1)
}

// Err returns an error equivalent to this list, or nil if it is empty.
func (l ErrorList) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (l ErrorList) Unwrap() []error {
	errs := make([]error, len(l))
	for i, e := range l {
		errs[i] = e
	}
	return errs
}

// TokenSource supplies tokens to the parser. Once the input is exhausted it
// must keep returning EOF.
type TokenSource interface {
	NextToken() token.Token
}

// SliceSource is a TokenSource over a fixed token slice. A missing trailing
// EOF is supplied.
type SliceSource struct {
	toks []token.Token
	pos  int
}

// NewSliceSource creates a source replaying toks.
func NewSliceSource(toks []token.Token) *SliceSource {
	return &SliceSource{toks: toks}
}

// NextToken implements TokenSource.
func (s *SliceSource) NextToken() token.Token {
	if s.pos >= len(s.toks) {
		var pos token.Position
		if n := len(s.toks); n > 0 {
			pos = s.toks[n-1].Pos
		}
		return token.Token{Type: token.EOF, Pos: pos}
	}
	tok := s.toks[s.pos]
	s.pos++
	return tok
}

// Config tunes a parse.
type Config struct {
	MaxErrors int        // errors before giving up, lalr.DefaultMaxErrors if zero
	Logger    log.Logger // trace output of the engine, root logger if nil
}

var (
	langOnce sync.Once
	lang     *language
	langErr  error
)

func loadLanguage() (*language, error) {
	langOnce.Do(func() {
		lang, langErr = newLanguage()
	})
	return lang, langErr
}

// Table returns the parse table of the pseudocode grammar, building it on
// the first call.
func Table() (*lalr.Table, error) {
	l, err := loadLanguage()
	if err != nil {
		return nil, err
	}
	return l.table, nil
}

// Parse parses the source text of a single compilation unit. The returned
// error is an ErrorList when the text has syntax errors; the tree is nil in
// that case.
func Parse(filename, src string) (*ast.CompilationUnit, error) {
	return ParseTokens(lexer.New(filename, src), Config{})
}

// ParseTokens parses the tokens supplied by src. COMMENT tokens are skipped.
func ParseTokens(src TokenSource, cfg Config) (*ast.CompilationUnit, error) {
	l, err := loadLanguage()
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Root()
	}
	engine := lalr.NewEngine(l.table, cfg.MaxErrors, logger)
	v, errs := engine.Parse(&classifier{src: src, terms: l.terms}, l.reduce)
	if len(errs) > 0 {
		logger.Debug("Parse failed", "errors", len(errs), "first", errs[0])
		return nil, ErrorList(errs)
	}
	return v.(*ast.CompilationUnit), nil
}

// classifier maps tokens to grammar terminals.
type classifier struct {
	src   TokenSource
	terms map[token.Type]lalr.Symbol
}

func (c *classifier) Next() (lalr.Symbol, token.Token) {
	for {
		tok := c.src.NextToken()
		if tok.Type == token.COMMENT {
			continue
		}
		if sym, ok := c.terms[tok.Type]; ok {
			return sym, tok
		}
		return c.terms[token.ILLEGAL], tok
	}
}
