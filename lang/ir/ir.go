// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package ir defines the SSA-form intermediate representation produced from
// pseudocode syntax trees.
//
// Every value is assigned exactly once. Numeric values are reals; constants
// live in a per-program pool and are loaded with OpConst.
package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// Program is a complete IR program.
type Program struct {
	Functions []*Function
	Constants []Constant

	index map[Constant]int
}

// Constant returns the pool index of c, adding it if it is not pooled yet.
func (p *Program) Constant(c Constant) int {
	if idx, ok := p.index[c]; ok {
		return idx
	}
	if p.index == nil {
		p.index = make(map[Constant]int)
	}
	idx := len(p.Constants)
	p.Constants = append(p.Constants, c)
	p.index[c] = idx
	return idx
}

// Function returns the function with the given name, or nil.
func (p *Program) Function(name string) *Function {
	for _, fn := range p.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

func (p *Program) String() string {
	var b strings.Builder
	for i, c := range p.Constants {
		fmt.Fprintf(&b, "$%d = %s\n", i, c)
	}
	for _, fn := range p.Functions {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(fn.String())
	}
	return b.String()
}

// Function represents a single function in SSA form.
type Function struct {
	Name       string
	Params     []Value
	ReturnType TypeRef
	Blocks     []*BasicBlock
	Locals     int // number of local values allocated
}

func (fn *Function) String() string {
	var b strings.Builder
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = p.String() + " " + p.Type.String()
	}
	fmt.Fprintf(&b, "func %s(%s) %s {\n", fn.Name, strings.Join(params, ", "), fn.ReturnType)
	for _, bb := range fn.Blocks {
		b.WriteString(bb.Label + ":\n")
		for _, inst := range bb.Instructions {
			b.WriteString("  " + inst.String() + "\n")
		}
		if bb.Terminator != nil {
			b.WriteString("  " + bb.Terminator.String() + "\n")
		}
	}
	b.WriteString("}\n")
	return b.String()
}

// BasicBlock is a straight-line sequence of instructions with a terminator.
type BasicBlock struct {
	Label        string
	Instructions []*Instruction
	Terminator   Terminator
	Preds        []*BasicBlock
	Succs        []*BasicBlock
}

// Value represents an SSA value (virtual register).
type Value struct {
	ID   int
	Type TypeRef
	Name string // unique within its function when set
}

// NoValue is the result of instructions that produce nothing.
var NoValue = Value{ID: -1}

// String prints named values as %name and the rest as %ID. Identifiers
// never start with a digit, so the two forms cannot collide.
func (v Value) String() string {
	if v.Name != "" {
		return "%" + v.Name
	}
	return "%" + strconv.Itoa(v.ID)
}

// TypeRef identifies the type of a value.
type TypeRef int

// Predefined type refs, one per declarable type plus void.
const (
	TypeVoid TypeRef = iota
	TypeInteger
	TypeReal
	TypeChar
	TypeString
	TypeBoolean
)

var typeNames = [...]string{
	TypeVoid:    "void",
	TypeInteger: "integer",
	TypeReal:    "real",
	TypeChar:    "char",
	TypeString:  "string",
	TypeBoolean: "boolean",
}

func (t TypeRef) String() string {
	if t >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("type(%d)", int(t))
}

// Constant represents a compile-time constant.
type Constant struct {
	Type  TypeRef
	Value float64
}

func (c Constant) String() string {
	return fmt.Sprintf("%s %v", c.Type, c.Value)
}

// Op is an SSA instruction opcode.
type Op int

const (
	// Arithmetic
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpNeg

	// Value operations
	OpConst // load constant
	OpMove  // copy of another value

	// Effects
	OpOutput // print a value
)

var opNames = map[Op]string{
	OpAdd: "add", OpSub: "sub", OpMul: "mul", OpDiv: "div", OpNeg: "neg",
	OpConst: "const", OpMove: "move",
	OpOutput: "output",
}

func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("op(%d)", op)
}

// Instruction is a single SSA instruction.
type Instruction struct {
	Op       Op
	Result   Value   // destination value, NoValue for effects
	Operands []Value // source values
	ConstIdx int     // index into constant pool (for OpConst)
}

func (inst *Instruction) String() string {
	s := inst.Op.String()
	if inst.Result != NoValue {
		s = fmt.Sprintf("%s = %s", inst.Result, inst.Op)
	}
	for _, op := range inst.Operands {
		s += " " + op.String()
	}
	if inst.Op == OpConst {
		s += fmt.Sprintf(" $%d", inst.ConstIdx)
	}
	return s
}

// Terminator ends a basic block.
type Terminator interface {
	terminator()
	String() string
}

// TermReturn returns a value from the function.
type TermReturn struct {
	Value *Value // nil for void return
}

func (t *TermReturn) terminator() {}
func (t *TermReturn) String() string {
	if t.Value != nil {
		return fmt.Sprintf("ret %s", t.Value)
	}
	return "ret void"
}

// TermBranch unconditionally branches to a block. Branch terminators are
// produced only once control flow statements are lowered.
type TermBranch struct {
	Target *BasicBlock
}

func (t *TermBranch) terminator() {}
func (t *TermBranch) String() string {
	return fmt.Sprintf("br %s", t.Target.Label)
}

// TermCondBranch conditionally branches.
type TermCondBranch struct {
	Cond     Value
	TrueBlk  *BasicBlock
	FalseBlk *BasicBlock
}

func (t *TermCondBranch) terminator() {}
func (t *TermCondBranch) String() string {
	return fmt.Sprintf("br %s, %s, %s", t.Cond, t.TrueBlk.Label, t.FalseBlk.Label)
}
