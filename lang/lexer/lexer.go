// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package lexer implements a single-pass, no-backtracking scanner for the
// pseudocode language.
//
// Scanning rules:
//   - ASCII-only input; any other byte is reported as an ILLEGAL token
//   - Keywords are upper case; every other identifier is an IDENT
//   - Numbers are decimal with an optional fraction and exponent
//   - "//" starts a line comment, returned as a COMMENT token
//   - Operators use longest match, so "<-" always wins over "<" "-"
package lexer

import (
	"github.com/probechain/go-pseudo/lang/token"
)

// Lexer holds the state for a single-pass tokenization run.
type Lexer struct {
	filename string
	input    []byte

	// pos is the index into input of the next byte to be loaded into ch.
	// After advance(), ch == input[pos-1] and pos points one past it.
	pos  int
	line int // 1-based current line number
	col  int // 1-based current column number

	ch byte // current character; 0 when past end
}

// New creates a new Lexer for the given filename and input string.
func New(filename, input string) *Lexer {
	l := &Lexer{
		filename: filename,
		input:    []byte(input),
		line:     1,
		col:      0,
	}
	l.advance() // prime l.ch with the first byte
	return l
}

// advance moves to the next byte in the input, updating line/column tracking.
// When the end of input is reached, ch is set to 0.
func (l *Lexer) advance() {
	if l.ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	if l.pos >= len(l.input) {
		l.ch = 0
		l.pos = len(l.input) + 1
		return
	}
	l.ch = l.input[l.pos]
	l.pos++
}

// peek returns the byte after the current character without consuming it.
// Returns 0 if at or past end.
func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

// currentPos returns a token.Position capturing the lexer's state right now.
// Call this before consuming the first character of a token.
func (l *Lexer) currentPos() token.Position {
	return token.Position{
		File:   l.filename,
		Line:   l.line,
		Column: l.col,
		Offset: l.pos - 1,
	}
}

// makeToken constructs a token with the given type, literal, and position.
func makeToken(typ token.Type, literal string, pos token.Position) token.Token {
	return token.Token{Type: typ, Literal: literal, Pos: pos}
}

// skipWhitespace consumes space, tab, carriage return, and newline characters.
func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
		l.advance()
	}
}

// atEnd reports whether every input byte has been consumed.
func (l *Lexer) atEnd() bool {
	return l.pos > len(l.input)
}

// NextToken scans and returns the next token from the input.
// After EOF is reached, subsequent calls continue returning EOF tokens.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespace()

	pos := l.currentPos()
	ch := l.ch

	if ch == 0 && l.atEnd() {
		return makeToken(token.EOF, "", pos)
	}

	l.advance() // consume ch; from here on, l.ch is the character AFTER ch

	switch {
	// -------------------------------------------------------------------------
	// Identifiers and keywords
	// -------------------------------------------------------------------------
	case isIdentStart(ch):
		lit := l.readIdentFromFirst(ch)
		return makeToken(token.LookupIdent(lit), lit, pos)

	// -------------------------------------------------------------------------
	// Numeric literals
	// -------------------------------------------------------------------------
	case isDigit(ch):
		return makeToken(token.NUMBER, l.readNumberFromFirst(ch), pos)

	// -------------------------------------------------------------------------
	// Slash: comment or division
	// -------------------------------------------------------------------------
	case ch == '/':
		if l.ch == '/' {
			l.advance() // consume second '/'
			return makeToken(token.COMMENT, "//"+l.readLineCommentBody(), pos)
		}
		return makeToken(token.SLASH, "/", pos)

	// -------------------------------------------------------------------------
	// Relational operators and assignment
	// -------------------------------------------------------------------------
	case ch == '<':
		switch l.ch {
		case '-':
			l.advance()
			return makeToken(token.ASSIGN, "<-", pos)
		case '=':
			l.advance()
			return makeToken(token.LE, "<=", pos)
		case '>':
			l.advance()
			return makeToken(token.NE, "<>", pos)
		default:
			return makeToken(token.LT, "<", pos)
		}

	case ch == '>':
		if l.ch == '=' {
			l.advance()
			return makeToken(token.GE, ">=", pos)
		}
		return makeToken(token.GT, ">", pos)

	// -------------------------------------------------------------------------
	// Single-character operators and punctuation
	// -------------------------------------------------------------------------
	case ch == '=':
		return makeToken(token.EQ, "=", pos)
	case ch == '+':
		return makeToken(token.PLUS, "+", pos)
	case ch == '-':
		return makeToken(token.MINUS, "-", pos)
	case ch == '*':
		return makeToken(token.STAR, "*", pos)
	case ch == '(':
		return makeToken(token.LPAREN, "(", pos)
	case ch == ')':
		return makeToken(token.RPAREN, ")", pos)
	case ch == ':':
		return makeToken(token.COLON, ":", pos)
	case ch == ',':
		return makeToken(token.COMMA, ",", pos)
	}

	// Anything else is ILLEGAL.
	return makeToken(token.ILLEGAL, string([]byte{ch}), pos)
}

// Tokenize returns all tokens (including the final EOF) produced by repeated
// calls to NextToken.
func (l *Lexer) Tokenize() []token.Token {
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return toks
}

// ---------------------------------------------------------------------------
// Internal readers. Each assumes the first character has already been
// consumed by the advance() call inside NextToken.
// ---------------------------------------------------------------------------

// readIdentFromFirst builds an identifier literal starting with the already-
// consumed byte `first`, then consuming subsequent ident-continue bytes.
func (l *Lexer) readIdentFromFirst(first byte) string {
	buf := make([]byte, 1, 16)
	buf[0] = first
	for isIdentContinue(l.ch) {
		buf = append(buf, l.ch)
		l.advance()
	}
	return string(buf)
}

// readNumberFromFirst reads the rest of a numeric literal:
//
//	digits [ "." digits ] [ ("e"|"E") ["+"|"-"] digits ]
//
// A '.' or 'e' that is not followed by a digit ends the literal.
func (l *Lexer) readNumberFromFirst(first byte) string {
	buf := make([]byte, 1, 24)
	buf[0] = first
	for isDigit(l.ch) {
		buf = append(buf, l.ch)
		l.advance()
	}
	if l.ch == '.' && isDigit(l.peek()) {
		buf = append(buf, '.')
		l.advance() // consume '.'
		for isDigit(l.ch) {
			buf = append(buf, l.ch)
			l.advance()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		next := l.peek()
		signed := next == '+' || next == '-'
		if isDigit(next) || (signed && l.pos+1 < len(l.input) && isDigit(l.input[l.pos+1])) {
			buf = append(buf, l.ch)
			l.advance() // consume 'e'/'E'
			if signed {
				buf = append(buf, l.ch)
				l.advance()
			}
			for isDigit(l.ch) {
				buf = append(buf, l.ch)
				l.advance()
			}
		}
	}
	return string(buf)
}

// readLineCommentBody reads from the current position to end-of-line (not
// including the newline byte). The "//" prefix has already been consumed.
func (l *Lexer) readLineCommentBody() string {
	var buf []byte
	for l.ch != '\n' && !(l.ch == 0 && l.atEnd()) {
		buf = append(buf, l.ch)
		l.advance()
	}
	return string(buf)
}

// ---------------------------------------------------------------------------
// Character classification helpers
// ---------------------------------------------------------------------------

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isIdentContinue(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}
