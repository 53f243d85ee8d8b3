// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package token defines the lexical token types of the pseudocode language.
//
// Keywords are upper case and matched exactly (IF, ENDIF, DECLARE, ...).
// Operators follow the exam-board pseudocode conventions: "<-" assigns,
// "=" compares and "<>" means not equal.
package token

import "fmt"

// Token represents a lexical token.
type Token struct {
	Type    Type
	Literal string
	Pos     Position
}

func (t Token) String() string {
	if t.Literal == "" || t.Type.IsKeyword() || t.Type.IsOperator() {
		return t.Type.String()
	}
	return fmt.Sprintf("%s(%s)", t.Type, t.Literal)
}

// Position tracks source location.
type Position struct {
	File   string
	Line   int
	Column int
	Offset int
}

func (p Position) String() string {
	if p.File != "" {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// IsValid reports whether the position carries a line number.
func (p Position) IsValid() bool { return p.Line > 0 }

// Type is the set of lexical token types.
type Type int

const (
	// Special tokens
	ILLEGAL Type = iota
	EOF
	COMMENT

	// Literals
	IDENT  // total, i, Max_Value
	NUMBER // 42, 3.14, 1e-3

	// Operators
	operatorStart
	PLUS   // +
	MINUS  // -
	STAR   // *
	SLASH  // /
	EQ     // =
	NE     // <>
	LT     // <
	GT     // >
	LE     // <=
	GE     // >=
	ASSIGN // <-
	operatorEnd

	// Delimiters
	LPAREN // (
	RPAREN // )
	COLON  // :
	COMMA  // ,

	keywordStart
	OUTPUT
	FUNCTION
	ENDFUNCTION
	PROCEDURE
	ENDPROCEDURE
	RETURNS
	RETURN
	CALL
	DECLARE
	INTEGER
	REAL
	CHAR
	STRING
	BOOLEAN
	IF
	THEN
	ELSE
	ENDIF
	WHILE
	ENDWHILE
	FOR
	TO
	NEXT
	MOD
	AND
	OR
	NOT
	keywordEnd
)

var tokenNames = [...]string{
	ILLEGAL: "ILLEGAL",
	EOF:     "EOF",
	COMMENT: "COMMENT",

	IDENT:  "IDENT",
	NUMBER: "NUMBER",

	PLUS:   "+",
	MINUS:  "-",
	STAR:   "*",
	SLASH:  "/",
	EQ:     "=",
	NE:     "<>",
	LT:     "<",
	GT:     ">",
	LE:     "<=",
	GE:     ">=",
	ASSIGN: "<-",

	LPAREN: "(",
	RPAREN: ")",
	COLON:  ":",
	COMMA:  ",",

	OUTPUT:       "OUTPUT",
	FUNCTION:     "FUNCTION",
	ENDFUNCTION:  "ENDFUNCTION",
	PROCEDURE:    "PROCEDURE",
	ENDPROCEDURE: "ENDPROCEDURE",
	RETURNS:      "RETURNS",
	RETURN:       "RETURN",
	CALL:         "CALL",
	DECLARE:      "DECLARE",
	INTEGER:      "INTEGER",
	REAL:         "REAL",
	CHAR:         "CHAR",
	STRING:       "STRING",
	BOOLEAN:      "BOOLEAN",
	IF:           "IF",
	THEN:         "THEN",
	ELSE:         "ELSE",
	ENDIF:        "ENDIF",
	WHILE:        "WHILE",
	ENDWHILE:     "ENDWHILE",
	FOR:          "FOR",
	TO:           "TO",
	NEXT:         "NEXT",
	MOD:          "MOD",
	AND:          "AND",
	OR:           "OR",
	NOT:          "NOT",
}

// String returns the string form of a token type.
func (t Type) String() string {
	if t >= 0 && int(t) < len(tokenNames) && tokenNames[t] != "" {
		return tokenNames[t]
	}
	return fmt.Sprintf("token(%d)", t)
}

// IsKeyword returns true if the token is a keyword.
func (t Type) IsKeyword() bool {
	return t > keywordStart && t < keywordEnd
}

// IsOperator returns true if the token is an operator.
func (t Type) IsOperator() bool {
	return t > operatorStart && t < operatorEnd
}

// IsLiteral returns true if the token carries a literal payload.
func (t Type) IsLiteral() bool {
	return t == IDENT || t == NUMBER
}

// Types returns every token type a scanner can produce, in declaration order.
// COMMENT is left out since the parser never sees it.
func Types() []Type {
	types := []Type{ILLEGAL, EOF, IDENT, NUMBER}
	for t := operatorStart + 1; t < operatorEnd; t++ {
		types = append(types, t)
	}
	types = append(types, LPAREN, RPAREN, COLON, COMMA)
	for t := keywordStart + 1; t < keywordEnd; t++ {
		types = append(types, t)
	}
	return types
}

// keywords maps keyword strings to token types.
var keywords map[string]Type

func init() {
	keywords = make(map[string]Type)
	for i := keywordStart + 1; i < keywordEnd; i++ {
		keywords[tokenNames[i]] = i
	}
}

// LookupIdent checks if an identifier is a keyword.
func LookupIdent(ident string) Type {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}
