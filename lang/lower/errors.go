// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package lower

import (
	"errors"

	"github.com/probechain/go-pseudo/lang/ast"
	"github.com/probechain/go-pseudo/lang/token"
)

var (
	ErrUnknownVariable = errors.New("unknown variable name")
	ErrInvalidUnaryOp  = errors.New("invalid unary operator")
	ErrInvalidBinaryOp = errors.New("invalid binary operator")
	ErrNotImplemented  = errors.New("not implemented")
)

// Error is a lowering failure at a tree node.
type Error struct {
	Pos  token.Position
	Node ast.Node
	Err  error
}

func (e *Error) Error() string {
	if !e.Pos.IsValid() {
		return e.Err.Error()
	}
	return e.Pos.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }
