// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package lower translates syntax trees into SSA IR.
//
// Expressions lower to real-valued arithmetic. Variables are resolved through
// an explicit Env; nothing is kept in package state, so independent
// Lowerers may run concurrently.
package lower

import (
	"fmt"

	"github.com/ethereum/go-ethereum/log"

	"github.com/probechain/go-pseudo/lang/ast"
	"github.com/probechain/go-pseudo/lang/ir"
)

// MainFunction is the name given to a compilation unit that is a bare block.
const MainFunction = "main"

// Lowerer emits IR for syntax trees through an ir.Builder.
type Lowerer struct {
	b    *ir.Builder
	log  log.Logger
	dead int // unreachable blocks opened so far
}

// New creates a Lowerer emitting into b. A nil builder starts a new program;
// a nil logger selects the root logger.
func New(b *ir.Builder, logger log.Logger) *Lowerer {
	if b == nil {
		b = ir.NewBuilder()
	}
	if logger == nil {
		logger = log.Root()
	}
	return &Lowerer{b: b, log: logger}
}

// Builder returns the builder the Lowerer emits into.
func (l *Lowerer) Builder() *ir.Builder { return l.b }

// fail records a failure at n.
func (l *Lowerer) fail(n ast.Node, err error) error {
	l.log.Debug("Lowering failed", "pos", n.Pos(), "node", n.Kind(), "err", err)
	return &Error{Pos: n.Pos(), Node: n, Err: err}
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

var binaryOps = map[string]struct {
	op   ir.Op
	name string
}{
	"+": {ir.OpAdd, "addtmp"},
	"-": {ir.OpSub, "subtmp"},
	"*": {ir.OpMul, "multmp"},
	"/": {ir.OpDiv, "divtmp"},
}

// Expr emits the instructions computing e into the current block and
// returns the resulting value. The first failure stops lowering.
func (l *Lowerer) Expr(env *Env, e ast.Expression) (ir.Value, error) {
	switch e := e.(type) {
	case *ast.Literal:
		return l.b.Const(ir.TypeReal, e.Value), nil

	case *ast.PrimaryExpr:
		return l.Expr(env, e.X)

	case *ast.VariableRef:
		v, ok := env.Lookup(e.Name)
		if !ok {
			return ir.Value{}, l.fail(e, fmt.Errorf("%w %q", ErrUnknownVariable, e.Name))
		}
		return v, nil

	case *ast.UnaryExpr:
		x, err := l.Expr(env, e.X)
		if err != nil {
			return ir.Value{}, err
		}
		switch e.Op {
		case "+":
			return x, nil
		case "-":
			return l.b.Neg(ir.TypeReal, x, "negtmp"), nil
		}
		return ir.Value{}, l.fail(e, fmt.Errorf("%w %q", ErrInvalidUnaryOp, e.Op))

	case *ast.BinaryExpr:
		x, err := l.Expr(env, e.X)
		if err != nil {
			return ir.Value{}, err
		}
		y, err := l.Expr(env, e.Y)
		if err != nil {
			return ir.Value{}, err
		}
		op, ok := binaryOps[e.Op]
		if !ok {
			return ir.Value{}, l.fail(e, fmt.Errorf("%w %q", ErrInvalidBinaryOp, e.Op))
		}
		return l.b.Arith(op.op, ir.TypeReal, x, y, op.name), nil
	}
	return ir.Value{}, l.fail(e, fmt.Errorf("%w: %s expression", ErrNotImplemented, e.Kind()))
}

// ---------------------------------------------------------------------------
// Statements and definitions
// ---------------------------------------------------------------------------

// Block lowers the statements of blk in order. Statements following a
// RETURN go to a fresh block with no predecessors.
func (l *Lowerer) Block(env *Env, blk *ast.Block) error {
	for _, s := range blk.Stmts {
		if l.b.Block().Terminator != nil {
			l.dead++
			l.b.SetBlock(l.b.NewBlock(fmt.Sprintf("dead%d", l.dead)))
		}
		if err := l.Stmt(env, s); err != nil {
			return err
		}
	}
	return nil
}

// Stmt lowers a single statement.
func (l *Lowerer) Stmt(env *Env, s ast.Statement) error {
	switch s := s.(type) {
	case *ast.VarDecl:
		// Numbers are reals whatever the declared tag.
		env.Define(s.Name, l.b.Const(ir.TypeReal, 0))
		return nil

	case *ast.VarAssign:
		v, err := l.Expr(env, s.Value)
		if err != nil {
			return err
		}
		if !env.Assign(s.Name, v) {
			return l.fail(s, fmt.Errorf("%w %q", ErrUnknownVariable, s.Name))
		}
		return nil

	case *ast.Output:
		v, err := l.Expr(env, s.Value)
		if err != nil {
			return err
		}
		l.b.EmitOutput(v)
		return nil

	case *ast.Return:
		v, err := l.Expr(env, s.Value)
		if err != nil {
			return err
		}
		l.b.EmitReturn(&v)
		return nil
	}
	return l.fail(s, fmt.Errorf("%w: %s statement", ErrNotImplemented, s.Kind()))
}

// Unit lowers a compilation unit into a new IR function: one per function or
// procedure definition, or MainFunction for a bare block.
func (l *Lowerer) Unit(u *ast.CompilationUnit) (*ir.Function, error) {
	var (
		name   = MainFunction
		ret    = ir.TypeVoid
		params []*ast.Parameter
		body   *ast.Block
	)
	switch def := u.Def.(type) {
	case *ast.FunctionDef:
		name, ret, params, body = def.Name, typeOf(def.ReturnType), def.Params, def.Body
	case *ast.ProcedureDef:
		name, params, body = def.Name, def.Params, def.Body
	case *ast.Block:
		body = def
	default:
		return nil, fmt.Errorf("%w: empty compilation unit", ErrNotImplemented)
	}

	fn := l.b.StartFunction(name, nil, ret)
	env := NewEnv(nil)
	for _, p := range params {
		env.Define(p.Name, l.b.Param(typeOf(p.Type), p.Name))
	}
	l.b.SetBlock(l.b.NewBlock("entry"))
	if err := l.Block(env, body); err != nil {
		return nil, err
	}
	if l.b.Block().Terminator == nil {
		l.b.EmitReturn(nil)
	}
	l.log.Debug("Lowered compilation unit", "func", fn.Name, "blocks", len(fn.Blocks), "values", fn.Locals)
	return fn, nil
}

// typeOf maps a declared type to its IR type.
func typeOf(t ast.TypeTag) ir.TypeRef {
	switch t {
	case ast.TypeInteger:
		return ir.TypeInteger
	case ast.TypeChar:
		return ir.TypeChar
	case ast.TypeString:
		return ir.TypeString
	case ast.TypeBoolean:
		return ir.TypeBoolean
	}
	return ir.TypeReal
}
