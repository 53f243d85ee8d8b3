// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package ir

import "testing"

// newTestFunction starts a function with a single entry block.
func newTestFunction(name string, params ...string) (*Builder, []Value) {
	b := NewBuilder()
	b.StartFunction(name, nil, TypeReal)
	var vals []Value
	for _, p := range params {
		vals = append(vals, b.Param(TypeReal, p))
	}
	b.SetBlock(b.NewBlock("entry"))
	return b, vals
}

func TestBuilderBasic(t *testing.T) {
	b, params := newTestFunction("add", "a", "b")

	result := b.Arith(OpAdd, TypeReal, params[0], params[1], "addtmp")
	b.EmitReturn(&result)

	prog := b.Program()
	if len(prog.Functions) != 1 {
		t.Fatalf("expected 1 function, got %d", len(prog.Functions))
	}
	fn := prog.Functions[0]
	if fn.Name != "add" {
		t.Errorf("expected function name 'add', got %q", fn.Name)
	}
	if len(fn.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(fn.Params))
	}
	if len(fn.Blocks[0].Instructions) != 1 {
		t.Fatalf("expected 1 instruction, got %d", len(fn.Blocks[0].Instructions))
	}
	inst := fn.Blocks[0].Instructions[0]
	if inst.Op != OpAdd {
		t.Errorf("expected OpAdd, got %s", inst.Op)
	}
	want := "func add(%a real, %b real) real {\nentry:\n  %addtmp = add %a %b\n  ret %addtmp\n}\n"
	if got := fn.String(); got != want {
		t.Errorf("listing mismatch:\n got: %q\nwant: %q", got, want)
	}
}

func TestBuilderFoldsConstants(t *testing.T) {
	b, _ := newTestFunction("k")

	two := b.Const(TypeReal, 2)
	three := b.Const(TypeReal, 3)
	sum := b.Arith(OpAdd, TypeReal, two, three, "addtmp")
	neg := b.Neg(TypeReal, sum, "negtmp")

	if c, ok := b.ConstantOf(neg); !ok || c != -5 {
		t.Errorf("expected constant -5, got %v (constant: %v)", c, ok)
	}
	for _, inst := range b.Function().Blocks[0].Instructions {
		if inst.Op != OpConst {
			t.Errorf("unexpected %s instruction", inst.Op)
		}
	}
	zero := b.Const(TypeReal, 0)
	if div := b.Arith(OpDiv, TypeReal, two, zero, "divtmp"); div.Name != "divtmp" {
		t.Errorf("division by zero folded into %s", div)
	}
}

func TestBuilderUniqueNames(t *testing.T) {
	b, params := newTestFunction("f", "x")
	x := params[0]
	first := b.Arith(OpMul, TypeReal, x, x, "multmp")
	second := b.Arith(OpMul, TypeReal, first, x, "multmp")
	third := b.Arith(OpMul, TypeReal, second, x, "multmp")
	dup := b.NewValue(TypeReal, "x")

	for _, tc := range []struct {
		v    Value
		want string
	}{
		{first, "%multmp"}, {second, "%multmp1"}, {third, "%multmp2"}, {dup, "%x1"},
	} {
		if got := tc.v.String(); got != tc.want {
			t.Errorf("got %s, want %s", got, tc.want)
		}
	}
}

func TestConstantPoolInterning(t *testing.T) {
	var prog Program
	a := prog.Constant(Constant{Type: TypeReal, Value: 1.5})
	b := prog.Constant(Constant{Type: TypeReal, Value: 2})
	c := prog.Constant(Constant{Type: TypeReal, Value: 1.5})
	if a != c || a == b {
		t.Errorf("indices %d %d %d", a, b, c)
	}
	if len(prog.Constants) != 2 {
		t.Errorf("expected 2 pooled constants, got %d", len(prog.Constants))
	}
}

func TestBuilderControlFlow(t *testing.T) {
	b := NewBuilder()
	b.StartFunction("pick", nil, TypeReal)
	cond := b.Param(TypeBoolean, "c")

	entry := b.NewBlock("entry")
	thenBlk := b.NewBlock("then")
	elseBlk := b.NewBlock("else")

	b.SetBlock(entry)
	b.EmitCondBranch(cond, thenBlk, elseBlk)

	b.SetBlock(thenBlk)
	one := b.Const(TypeReal, 1)
	b.EmitReturn(&one)

	b.SetBlock(elseBlk)
	two := b.Const(TypeReal, 2)
	b.EmitReturn(&two)

	fn := b.Program().Functions[0]
	if len(fn.Blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(fn.Blocks))
	}
	if len(entry.Succs) != 2 {
		t.Errorf("entry should have 2 successors, got %d", len(entry.Succs))
	}
	if len(thenBlk.Preds) != 1 || thenBlk.Preds[0] != entry {
		t.Error("then block should have entry as predecessor")
	}
	if got := entry.Terminator.String(); got != "br %c, then, else" {
		t.Errorf("terminator %q", got)
	}
}

func TestConstantFold(t *testing.T) {
	b, _ := newTestFunction("f")
	prog := b.Program()

	// Emit unfolded arithmetic by hand, as a later pass could leave it.
	x := b.Const(TypeReal, 6)
	y := b.Const(TypeReal, 4)
	sum := b.Emit(OpAdd, b.NewValue(TypeReal, "addtmp"), x, y)
	neg := b.Emit(OpNeg, b.NewValue(TypeReal, "negtmp"), sum)
	half := b.Emit(OpDiv, b.NewValue(TypeReal, "divtmp"), neg, b.Const(TypeReal, 4))
	b.EmitReturn(&half)

	fn := b.Function()
	ConstantFold(prog, fn)

	last := fn.Blocks[0].Instructions[len(fn.Blocks[0].Instructions)-1]
	if last.Op != OpConst {
		t.Fatalf("expected folded constant, got %s", last)
	}
	if got := prog.Constants[last.ConstIdx].Value; got != -2.5 {
		t.Errorf("folded to %v, want -2.5", got)
	}
}

func TestDeadCodeElimination(t *testing.T) {
	b, params := newTestFunction("test", "a", "b")

	// Live: result = a + b
	result := b.Arith(OpAdd, TypeReal, params[0], params[1], "result")
	// Dead: unused = a * b
	b.Arith(OpMul, TypeReal, params[0], params[1], "unused")
	// Kept for its effect.
	b.EmitOutput(params[0])

	b.EmitReturn(&result)

	fn := b.Function()
	if len(fn.Blocks[0].Instructions) != 3 {
		t.Fatalf("expected 3 instructions before DCE, got %d", len(fn.Blocks[0].Instructions))
	}

	DeadCodeEliminate(fn)

	insts := fn.Blocks[0].Instructions
	if len(insts) != 2 {
		t.Fatalf("expected 2 instructions after DCE, got %d", len(insts))
	}
	if insts[0].Op != OpAdd || insts[1].Op != OpOutput {
		t.Errorf("unexpected survivors %s, %s", insts[0], insts[1])
	}
}

func TestDeadCodeEliminationChain(t *testing.T) {
	b, params := newTestFunction("chain", "a", "b")
	prod := b.Arith(OpMul, TypeReal, params[0], params[1], "multmp")
	b.Arith(OpAdd, TypeReal, prod, params[0], "addtmp") // only use of prod, itself unused
	b.EmitReturn(nil)

	fn := b.Function()
	DeadCodeEliminate(fn)
	if n := len(fn.Blocks[0].Instructions); n != 0 {
		t.Errorf("expected the whole chain removed, %d instructions left", n)
	}
}

func TestCommonSubexprEliminate(t *testing.T) {
	b, params := newTestFunction("f", "a", "b")
	first := b.Arith(OpSub, TypeReal, params[0], params[1], "subtmp")
	second := b.Arith(OpSub, TypeReal, params[0], params[1], "subtmp")
	b.Neg(TypeReal, params[0], "negtmp")
	b.Neg(TypeReal, params[0], "negtmp")
	total := b.Arith(OpAdd, TypeReal, first, second, "addtmp")
	b.EmitReturn(&total)

	fn := b.Function()
	CommonSubexprEliminate(fn)

	insts := fn.Blocks[0].Instructions
	if insts[1].Op != OpMove || insts[1].Operands[0] != first {
		t.Errorf("second subtraction not replaced: %s", insts[1])
	}
	if insts[3].Op != OpMove {
		t.Errorf("second negation not replaced: %s", insts[3])
	}
}

func TestOptimize(t *testing.T) {
	b, params := newTestFunction("f", "a")
	a := params[0]
	x := b.Const(TypeReal, 1)
	moved := b.Emit(OpMove, b.NewValue(TypeReal, "m"), x)
	sum := b.Emit(OpAdd, b.NewValue(TypeReal, "addtmp"), moved, x)
	b.Arith(OpMul, TypeReal, a, a, "unused")
	b.EmitOutput(sum)
	b.EmitReturn(nil)

	prog := b.Program()
	Optimize(prog)

	insts := prog.Functions[0].Blocks[0].Instructions
	if len(insts) != 2 {
		t.Fatalf("expected 2 instructions, got %d:\n%s", len(insts), prog)
	}
	if insts[0].Op != OpConst || prog.Constants[insts[0].ConstIdx].Value != 2 {
		t.Errorf("expected const 2, got %s", insts[0])
	}
	if insts[1].Op != OpOutput {
		t.Errorf("expected output, got %s", insts[1])
	}
}

func TestRemoveUnreachableBlocks(t *testing.T) {
	b := NewBuilder()

	b.StartFunction("test", nil, TypeVoid)

	entry := b.NewBlock("entry")
	reachable := b.NewBlock("reachable")
	b.NewBlock("unreachable") // no predecessors

	b.SetBlock(entry)
	b.EmitBranch(reachable)

	b.SetBlock(reachable)
	b.EmitReturn(nil)

	fn := b.Program().Functions[0]
	if len(fn.Blocks) != 3 {
		t.Fatalf("expected 3 blocks before optimization, got %d", len(fn.Blocks))
	}

	RemoveUnreachableBlocks(fn)

	if len(fn.Blocks) != 2 {
		t.Fatalf("expected 2 blocks after removing unreachable, got %d", len(fn.Blocks))
	}
}

func TestRemoveUnreachablePreds(t *testing.T) {
	b := NewBuilder()
	b.StartFunction("test", nil, TypeVoid)
	entry := b.NewBlock("entry")
	exit := b.NewBlock("exit")
	orphan := b.NewBlock("orphan")

	b.SetBlock(entry)
	b.EmitBranch(exit)
	b.SetBlock(orphan)
	b.EmitBranch(exit)
	b.SetBlock(exit)
	b.EmitReturn(nil)

	fn := b.Function()
	RemoveUnreachableBlocks(fn)
	if len(fn.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(fn.Blocks))
	}
	if len(exit.Preds) != 1 || exit.Preds[0] != entry {
		t.Errorf("exit predecessors not pruned: %d left", len(exit.Preds))
	}
}

func TestProgramString(t *testing.T) {
	b, _ := newTestFunction("main")
	v := b.Const(TypeReal, 7)
	b.EmitOutput(v)
	b.EmitReturn(nil)

	want := "$0 = real 7\n\nfunc main() real {\nentry:\n  %0 = const $0\n  output %0\n  ret void\n}\n"
	if got := b.Program().String(); got != want {
		t.Errorf("listing mismatch:\n got: %q\nwant: %q", got, want)
	}
}

func TestValueString(t *testing.T) {
	named := Value{ID: 0, Name: "x"}
	if s := named.String(); s != "%x" {
		t.Errorf("expected %%x, got %s", s)
	}

	unnamed := Value{ID: 42}
	if s := unnamed.String(); s != "%42" {
		t.Errorf("expected %%42, got %s", s)
	}
}

func TestParamNamedLikeUnnamedValue(t *testing.T) {
	b, params := newTestFunction("G", "v1")
	three := b.Const(TypeReal, 3)
	prod := b.Arith(OpMul, TypeReal, params[0], three, "multmp")
	b.EmitReturn(&prod)

	want := "func G(%v1 real) real {\nentry:\n  %1 = const $0\n  %multmp = mul %v1 %1\n  ret %multmp\n}\n"
	if got := b.Function().String(); got != want {
		t.Errorf("listing mismatch:\n got: %q\nwant: %q", got, want)
	}
}

func TestArithResultType(t *testing.T) {
	b, _ := newTestFunction("f")
	n := b.Param(TypeInteger, "n")
	half := b.Const(TypeReal, 0.5)
	if v := b.Arith(OpAdd, TypeReal, n, half, "addtmp"); v.Type != TypeReal {
		t.Errorf("n + 0.5 typed %s, want real", v.Type)
	}
	if v := b.Arith(OpAdd, TypeReal, half, n, "addtmp"); v.Type != TypeReal {
		t.Errorf("0.5 + n typed %s, want real", v.Type)
	}
	if v := b.Neg(TypeReal, n, "negtmp"); v.Type != TypeReal {
		t.Errorf("-n typed %s, want real", v.Type)
	}
}

func TestOpString(t *testing.T) {
	if s := OpAdd.String(); s != "add" {
		t.Errorf("expected 'add', got %q", s)
	}
	if s := OpOutput.String(); s != "output" {
		t.Errorf("expected 'output', got %q", s)
	}
	if s := Op(99).String(); s != "op(99)" {
		t.Errorf("expected 'op(99)', got %q", s)
	}
}
