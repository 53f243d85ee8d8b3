// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package ir

import "strconv"

// Builder constructs SSA IR from higher-level representations. Arithmetic on
// constant operands is folded as it is emitted.
type Builder struct {
	program  *Program
	function *Function
	block    *BasicBlock
	nextID   int

	names  map[string]int  // uses of each value name in the current function
	consts map[int]float64 // value ID -> constant it was loaded with
}

// NewBuilder creates a new IR builder.
func NewBuilder() *Builder {
	return &Builder{
		program: &Program{},
		consts:  make(map[int]float64),
	}
}

// Program returns the built program.
func (b *Builder) Program() *Program {
	return b.program
}

// Function returns the function under construction.
func (b *Builder) Function() *Function {
	return b.function
}

// Block returns the current insertion point.
func (b *Builder) Block() *BasicBlock {
	return b.block
}

// AddConstant adds a constant to the pool and returns its index.
func (b *Builder) AddConstant(c Constant) int {
	return b.program.Constant(c)
}

// StartFunction begins building a new function.
func (b *Builder) StartFunction(name string, params []Value, ret TypeRef) *Function {
	f := &Function{
		Name:       name,
		Params:     params,
		ReturnType: ret,
	}
	b.function = f
	b.block = nil
	b.names = make(map[string]int)
	for _, p := range params {
		b.names[p.Name]++
	}
	b.program.Functions = append(b.program.Functions, f)
	return f
}

// NewBlock creates a new basic block in the current function.
func (b *Builder) NewBlock(label string) *BasicBlock {
	bb := &BasicBlock{Label: label}
	b.function.Blocks = append(b.function.Blocks, bb)
	return bb
}

// SetBlock sets the current insertion point.
func (b *Builder) SetBlock(bb *BasicBlock) {
	b.block = bb
}

// NewValue allocates a fresh SSA value. A name already taken in the
// function gets a numeric suffix: addtmp, addtmp1, addtmp2.
func (b *Builder) NewValue(typ TypeRef, name string) Value {
	if name != "" {
		base := name
		for b.names[name] > 0 {
			name = base + strconv.Itoa(b.names[base])
			b.names[base]++
		}
		b.names[name]++
	}
	v := Value{ID: b.nextID, Type: typ, Name: name}
	b.nextID++
	b.function.Locals++
	return v
}

// Param appends a parameter to the current function.
func (b *Builder) Param(typ TypeRef, name string) Value {
	v := b.NewValue(typ, name)
	b.function.Params = append(b.function.Params, v)
	return v
}

// Emit appends an instruction to the current block and returns its result.
func (b *Builder) Emit(op Op, result Value, operands ...Value) Value {
	inst := &Instruction{
		Op:       op,
		Result:   result,
		Operands: operands,
	}
	b.block.Instructions = append(b.block.Instructions, inst)
	return result
}

// EmitConst loads a constant into a value.
func (b *Builder) EmitConst(result Value, constIdx int) Value {
	inst := &Instruction{
		Op:       OpConst,
		Result:   result,
		ConstIdx: constIdx,
	}
	b.block.Instructions = append(b.block.Instructions, inst)
	b.consts[result.ID] = b.program.Constants[constIdx].Value
	return result
}

// Const loads the constant v of type typ into a fresh value.
func (b *Builder) Const(typ TypeRef, v float64) Value {
	idx := b.AddConstant(Constant{Type: typ, Value: v})
	return b.EmitConst(b.NewValue(typ, ""), idx)
}

// ConstantOf reports the constant a value was loaded with, if any.
func (b *Builder) ConstantOf(v Value) (float64, bool) {
	c, ok := b.consts[v.ID]
	return c, ok
}

// Arith emits a binary arithmetic instruction of result type typ named name.
// When both operands are constants the result is computed here and loaded
// as a constant.
func (b *Builder) Arith(op Op, typ TypeRef, x, y Value, name string) Value {
	if cx, ok := b.ConstantOf(x); ok {
		if cy, ok := b.ConstantOf(y); ok {
			if r, ok := foldBinary(op, cx, cy); ok {
				return b.Const(typ, r)
			}
		}
	}
	return b.Emit(op, b.NewValue(typ, name), x, y)
}

// Neg emits a negation of result type typ named name, folding constant
// operands.
func (b *Builder) Neg(typ TypeRef, x Value, name string) Value {
	if c, ok := b.ConstantOf(x); ok {
		return b.Const(typ, -c)
	}
	return b.Emit(OpNeg, b.NewValue(typ, name), x)
}

// EmitOutput appends an output of v.
func (b *Builder) EmitOutput(v Value) {
	b.Emit(OpOutput, NoValue, v)
}

// EmitBranch sets an unconditional branch terminator. It and EmitCondBranch
// are the hooks for lowering IF, WHILE and FOR.
func (b *Builder) EmitBranch(target *BasicBlock) {
	b.block.Terminator = &TermBranch{Target: target}
	b.block.Succs = append(b.block.Succs, target)
	target.Preds = append(target.Preds, b.block)
}

// EmitCondBranch sets a conditional branch terminator.
func (b *Builder) EmitCondBranch(cond Value, trueBlk, falseBlk *BasicBlock) {
	b.block.Terminator = &TermCondBranch{
		Cond:     cond,
		TrueBlk:  trueBlk,
		FalseBlk: falseBlk,
	}
	b.block.Succs = append(b.block.Succs, trueBlk, falseBlk)
	trueBlk.Preds = append(trueBlk.Preds, b.block)
	falseBlk.Preds = append(falseBlk.Preds, b.block)
}

// EmitReturn sets a return terminator.
func (b *Builder) EmitReturn(val *Value) {
	b.block.Terminator = &TermReturn{Value: val}
}

// foldBinary evaluates op on two constants. Division by zero is left to run
// time.
func foldBinary(op Op, x, y float64) (float64, bool) {
	switch op {
	case OpAdd:
		return x + y, true
	case OpSub:
		return x - y, true
	case OpMul:
		return x * y, true
	case OpDiv:
		if y == 0 {
			return 0, false
		}
		return x / y, true
	}
	return 0, false
}
