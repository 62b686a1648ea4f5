// Copyright 2026 The Oaf Authors
// This file is part of Oaf.

package bytecode

// Peephole runs the post-fixup optimization pass (§4.3): fused
// compare-and-branch, redundant-move elision, then compaction. It mutates
// fn in place.
func Peephole(fn *Function) {
	fuseCompareAndBranch(fn)
	elideRedundantMoves(fn)
}

// jumpTargets returns the set of instruction indices that are the target of
// some Jump/JumpIfTrue/JumpIfFalse/fused-jump in fn, plus the instruction
// after each ParallelForBegin's endIx (where execution resumes after the loop),
// used to avoid fusing a compare-branch pair that something jumps directly
// into the middle of.
func jumpTargets(fn *Function) map[int]bool {
	out := map[int]bool{}
	for _, in := range fn.Instructions {
		switch in.Op {
		case Jump:
			out[int(in.A)] = true
		case JumpIfTrue, JumpIfFalse:
			out[int(in.B)] = true
		case JumpIfBinaryIntTrue, JumpIfBinaryIntConstRightTrue:
			out[int(in.D)] = true
		case ParallelForBegin:
			out[int(in.C)+1] = true
		}
	}
	return out
}

// readsSlot reports whether instruction in reads slot as an operand (as
// opposed to writing it, or using the field for an opcode/constant
// index/jump target).
func readsSlot(in Instruction, slot int32) bool {
	switch in.Op {
	case Move:
		return in.B == slot
	case Unary:
		return in.C == slot
	case Binary, BinaryInt:
		return in.C == slot || in.D == slot
	case BinaryIntConstRight:
		return in.C == slot
	case JumpIfBinaryIntTrue:
		return in.B == slot || in.C == slot
	case JumpIfBinaryIntConstRightTrue:
		return in.B == slot
	case Cast:
		return in.B == slot
	case JumpIfTrue, JumpIfFalse:
		return in.A == slot
	case Print:
		return in.A == slot
	case Throw:
		return in.A == slot || in.B == slot
	case ArrayCreate:
		return in.B == slot
	case ArrayGet:
		return in.B == slot || in.C == slot
	case ArraySet:
		return in.A == slot || in.B == slot || in.C == slot
	case ParallelForBegin:
		return in.A == slot
	case ParallelReduceAdd:
		return in.A == slot || in.B == slot
	case Return:
		return in.A == slot
	}
	return false
}

func slotReadAfter(fn *Function, fromIdx int, slot int32) bool {
	for i := fromIdx + 1; i < len(fn.Instructions); i++ {
		if readsSlot(fn.Instructions[i], slot) {
			return true
		}
	}
	return false
}

func fuseCompareAndBranch(fn *Function) {
	removed := make([]bool, len(fn.Instructions))
	targets := jumpTargets(fn)
	for i := 0; i+1 < len(fn.Instructions); i++ {
		if removed[i] || removed[i+1] {
			continue
		}
		prod := fn.Instructions[i]
		next := fn.Instructions[i+1]
		if prod.Op != BinaryInt && prod.Op != BinaryIntConstRight {
			continue
		}
		if next.Op != JumpIfTrue || next.A != prod.A {
			continue
		}
		if targets[i+1] {
			continue
		}
		if slotReadAfter(fn, i+1, prod.A) {
			continue
		}

		fused := Instruction{B: prod.C, C: prod.D, D: next.B}
		if prod.Op == BinaryInt {
			fused.Op = JumpIfBinaryIntTrue
		} else {
			fused.Op = JumpIfBinaryIntConstRightTrue
		}
		fused.A = prod.B
		fn.Instructions[i] = fused
		removed[i+1] = true
	}
	compact(fn, removed)
}

var redirectableProducer = map[Opcode]bool{
	LoadConst:           true,
	Move:                true,
	Unary:               true,
	Binary:              true,
	BinaryInt:           true,
	BinaryIntConstRight: true,
	Cast:                true,
	ArrayCreate:         true,
	ArrayGet:            true,
}

func elideRedundantMoves(fn *Function) {
	removed := make([]bool, len(fn.Instructions))
	for i := 0; i+1 < len(fn.Instructions); i++ {
		if removed[i] || removed[i+1] {
			continue
		}
		prod := fn.Instructions[i]
		mv := fn.Instructions[i+1]
		if !redirectableProducer[prod.Op] {
			continue
		}
		if mv.Op != Move || mv.B != prod.A {
			continue
		}
		if slotReadAfter(fn, i+1, prod.A) {
			continue
		}
		fn.Instructions[i].A = mv.A
		removed[i+1] = true
	}
	compact(fn, removed)
}

// compact removes every instruction flagged in removed, rebuilding an
// old→new index table and rewriting every jump/branch/endIx target through
// it. A target past the old end maps to the new end (§4.3 step 3).
func compact(fn *Function, removed []bool) {
	oldToNew := make([]int32, len(fn.Instructions)+1)
	kept := make([]Instruction, 0, len(fn.Instructions))
	for i, in := range fn.Instructions {
		oldToNew[i] = int32(len(kept))
		if removed[i] {
			continue
		}
		kept = append(kept, in)
	}
	oldToNew[len(fn.Instructions)] = int32(len(kept))

	remap := func(target int32) int32 {
		if target < 0 || int(target) >= len(oldToNew) {
			return int32(len(kept))
		}
		return oldToNew[target]
	}

	for i := range kept {
		switch kept[i].Op {
		case Jump:
			kept[i].A = remap(kept[i].A)
		case JumpIfTrue, JumpIfFalse:
			kept[i].B = remap(kept[i].B)
		case JumpIfBinaryIntTrue, JumpIfBinaryIntConstRightTrue:
			kept[i].D = remap(kept[i].D)
		case ParallelForBegin:
			if kept[i].C >= 0 {
				kept[i].C = remap(kept[i].C)
			}
		}
	}
	fn.Instructions = kept
}
