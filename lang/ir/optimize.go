// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package ir

// Optimize runs all optimization passes on a program.
func Optimize(prog *Program) {
	for _, fn := range prog.Functions {
		ConstantFold(prog, fn)
		CommonSubexprEliminate(fn)
		DeadCodeEliminate(fn)
		RemoveUnreachableBlocks(fn)
	}
}

// ConstantFold replaces arithmetic on known constants with constant loads,
// repeating until no instruction changes.
func ConstantFold(prog *Program, fn *Function) {
	known := make(map[int]float64) // value ID -> constant
	changed := true
	for changed {
		changed = false
		for _, block := range fn.Blocks {
			for i, inst := range block.Instructions {
				switch inst.Op {
				case OpConst:
					known[inst.Result.ID] = prog.Constants[inst.ConstIdx].Value
					continue
				case OpMove:
					if c, ok := known[inst.Operands[0].ID]; ok {
						block.Instructions[i] = constLoad(prog, inst.Result, c)
						changed = true
					}
					continue
				}
				if result, ok := tryFoldConstant(inst, known); ok {
					block.Instructions[i] = constLoad(prog, inst.Result, result)
					changed = true
				}
			}
		}
	}
}

func constLoad(prog *Program, result Value, c float64) *Instruction {
	return &Instruction{
		Op:       OpConst,
		Result:   result,
		ConstIdx: prog.Constant(Constant{Type: result.Type, Value: c}),
	}
}

// tryFoldConstant evaluates inst if all of its operands are known.
func tryFoldConstant(inst *Instruction, known map[int]float64) (float64, bool) {
	switch inst.Op {
	case OpNeg:
		if c, ok := known[inst.Operands[0].ID]; ok {
			return -c, true
		}
	case OpAdd, OpSub, OpMul, OpDiv:
		x, xok := known[inst.Operands[0].ID]
		y, yok := known[inst.Operands[1].ID]
		if xok && yok {
			return foldBinary(inst.Op, x, y)
		}
	}
	return 0, false
}

// DeadCodeEliminate removes instructions whose results are never used.
// Liveness starts at side effects and terminators and follows operands back
// to their definitions.
func DeadCodeEliminate(fn *Function) {
	defs := make(map[int]*Instruction)
	var work []Value
	for _, block := range fn.Blocks {
		for _, inst := range block.Instructions {
			defs[inst.Result.ID] = inst
			if hasSideEffects(inst.Op) {
				work = append(work, inst.Operands...)
			}
		}
		switch term := block.Terminator.(type) {
		case *TermCondBranch:
			work = append(work, term.Cond)
		case *TermReturn:
			if term.Value != nil {
				work = append(work, *term.Value)
			}
		}
	}

	live := make(map[int]bool)
	for len(work) > 0 {
		v := work[len(work)-1]
		work = work[:len(work)-1]
		if live[v.ID] {
			continue
		}
		live[v.ID] = true
		if def, ok := defs[v.ID]; ok {
			work = append(work, def.Operands...)
		}
	}

	for _, block := range fn.Blocks {
		kept := block.Instructions[:0]
		for _, inst := range block.Instructions {
			if live[inst.Result.ID] || hasSideEffects(inst.Op) {
				kept = append(kept, inst)
			}
		}
		block.Instructions = kept
	}
}

// hasSideEffects returns true if an op has observable side effects.
func hasSideEffects(op Op) bool {
	return op == OpOutput
}

// CommonSubexprEliminate replaces redundant computations with earlier results.
func CommonSubexprEliminate(fn *Function) {
	type exprKey struct {
		op  Op
		op1 int // operand 1 value ID
		op2 int // operand 2 value ID, -1 for unary ops
	}

	for _, block := range fn.Blocks {
		available := make(map[exprKey]Value)

		for i, inst := range block.Instructions {
			if hasSideEffects(inst.Op) || len(inst.Operands) == 0 || inst.Op == OpMove {
				continue
			}

			key := exprKey{op: inst.Op, op1: inst.Operands[0].ID, op2: -1}
			if len(inst.Operands) > 1 {
				key.op2 = inst.Operands[1].ID
			}

			if existing, ok := available[key]; ok {
				// Replace with a move from the existing result.
				block.Instructions[i] = &Instruction{
					Op:       OpMove,
					Result:   inst.Result,
					Operands: []Value{existing},
				}
			} else {
				available[key] = inst.Result
			}
		}
	}
}

// RemoveUnreachableBlocks drops blocks that cannot be reached from the entry
// block and unlinks them from the survivors' predecessor lists.
func RemoveUnreachableBlocks(fn *Function) {
	if len(fn.Blocks) <= 1 {
		return
	}
	reachable := map[*BasicBlock]bool{fn.Blocks[0]: true}
	stack := []*BasicBlock{fn.Blocks[0]}
	for len(stack) > 0 {
		bb := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, succ := range bb.Succs {
			if !reachable[succ] {
				reachable[succ] = true
				stack = append(stack, succ)
			}
		}
	}

	kept := fn.Blocks[:0]
	for _, block := range fn.Blocks {
		if !reachable[block] {
			continue
		}
		preds := block.Preds[:0]
		for _, p := range block.Preds {
			if reachable[p] {
				preds = append(preds, p)
			}
		}
		block.Preds = preds
		kept = append(kept, block)
	}
	fn.Blocks = kept
}
