// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package lalr

import (
	"fmt"
	"strings"

	"github.com/probechain/go-pseudo/lang/token"
)

// maxListedExpected is the largest expected-token list spelled out in an
// error message. Longer lists are omitted, as yacc does.
const maxListedExpected = 4

// SyntaxError is an error found while parsing: a token no table action
// accepts, or a reduction the semantic action refused.
type SyntaxError struct {
	Pos        token.Position
	Unexpected token.Token // lookahead at the point of failure
	Found      string      // grammar name of the lookahead
	Expected   []string    // grammar names of acceptable terminals
	Cause      error       // set when a reduction action failed
}

// Message returns the error text without the position.
func (e *SyntaxError) Message() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	var b strings.Builder
	b.WriteString("syntax error, unexpected ")
	b.WriteString(e.Found)
	if t := e.Unexpected.Type; (t == token.ILLEGAL || t.IsLiteral()) && e.Unexpected.Literal != "" {
		fmt.Fprintf(&b, " %q", e.Unexpected.Literal)
	}
	if n := len(e.Expected); n > 0 && n <= maxListedExpected {
		b.WriteString(", expecting ")
		b.WriteString(strings.Join(e.Expected, " or "))
	}
	return b.String()
}

func (e *SyntaxError) Error() string {
	if !e.Pos.IsValid() {
		return e.Message()
	}
	return e.Pos.String() + ": " + e.Message()
}

func (e *SyntaxError) Unwrap() error { return e.Cause }
