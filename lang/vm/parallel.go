// Copyright 2026 The Oaf Authors
// This file is part of Oaf.
//
// Oaf is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Oaf is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Oaf. If not, see <http://www.gnu.org/licenses/>.

package vm

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/oaflang/oaf/lang/bytecode"
	"github.com/oaflang/oaf/lang/ir"
)

// resolveParallelEnd finds the ParallelForEnd matching the ParallelForBegin
// at beginIx, preferring the generator's patched index but falling back to
// a forward scan that tracks nesting depth (§4.4.3 step 1).
func resolveParallelEnd(fn *bytecode.Function, beginIx int) (int, error) {
	c := fn.Instructions[beginIx].C
	if c >= 0 && int(c) < len(fn.Instructions) && fn.Instructions[c].Op == bytecode.ParallelForEnd {
		return int(c), nil
	}
	depth := 0
	for i := beginIx + 1; i < len(fn.Instructions); i++ {
		switch fn.Instructions[i].Op {
		case bytecode.ParallelForBegin:
			depth++
		case bytecode.ParallelForEnd:
			if depth == 0 {
				return i, nil
			}
			depth--
		}
	}
	return 0, ErrUnresolvedParallelEnd
}

// runParallelFor executes the counted parallel loop opened at beginIx
// (§4.4.3), merges its reductions into slots, and returns the instruction
// index to resume at (the matching End's successor).
func (m *VM) runParallelFor(fn *bytecode.Function, constants []Value, slots []Value, beginIx int) (int, error) {
	begin := fn.Instructions[beginIx]
	endIx, err := resolveParallelEnd(fn, beginIx)
	if err != nil {
		return 0, err
	}

	count, err := slots[begin.A].ToLong()
	if err != nil {
		return 0, err
	}
	if count <= 0 {
		return endIx + 1, nil
	}

	reductions := make([]map[int32]int64, count)
	g, ctx := errgroup.WithContext(context.Background())
	sem := semaphore.NewWeighted(int64(m.workers))

	for it := int64(0); it < count; it++ {
		it := it
		g.Go(func() error {
			if err := sem.Acquire(ctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			local := make([]Value, len(slots))
			copy(local, slots)
			local[begin.B] = IntValue(it)

			reduce := map[int32]int64{}
			if err := runParallelBody(fn, constants, local, beginIx+1, endIx, reduce); err != nil {
				return err
			}
			reductions[it] = reduce
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Printf("vm: parallel loop at instruction %d cancelled remaining iterations: %v", beginIx, err)
		return 0, err
	}

	for _, reduce := range reductions {
		for slot, delta := range reduce {
			cur, _ := slots[slot].ToLong()
			slots[slot] = IntValue(cur + delta)
		}
	}
	return endIx + 1, nil
}

// runParallelBody executes one iteration's instructions in [start, end)
// against a private slot clone, accumulating ParallelReduceAdd contributions
// into reduce rather than writing through to shared state. Any Print,
// Throw, Return, or jump outside [start, end) is a ParallelBodyViolation
// (§4.1.1, §4.4.3 step 6).
func runParallelBody(fn *bytecode.Function, constants []Value, slots []Value, start, end int, reduce map[int32]int64) error {
	pc := start
	for pc >= start && pc < end {
		in := fn.Instructions[pc]
		switch in.Op {
		case bytecode.Nop:
			pc++
		case bytecode.LoadConst:
			slots[in.A] = constants[in.B]
			pc++
		case bytecode.Move:
			slots[in.A] = slots[in.B]
			pc++
		case bytecode.Unary:
			v, err := evalUnary(ir.UnaryOp(in.B), slots[in.C])
			if err != nil {
				return err
			}
			slots[in.A] = v
			pc++
		case bytecode.Binary, bytecode.BinaryInt:
			v, err := evalBinary(ir.BinaryOp(in.B), slots[in.C], slots[in.D])
			if err != nil {
				return err
			}
			slots[in.A] = v
			pc++
		case bytecode.BinaryIntConstRight:
			v, err := evalBinary(ir.BinaryOp(in.B), slots[in.C], constants[in.D])
			if err != nil {
				return err
			}
			slots[in.A] = v
			pc++
		case bytecode.JumpIfBinaryIntTrue:
			v, err := evalBinary(ir.BinaryOp(in.A), slots[in.B], slots[in.C])
			if err != nil {
				return err
			}
			if v.ToBool() {
				if int(in.D) < start || int(in.D) >= end {
					return fmt.Errorf("%w: branch target outside loop body", ErrParallelBodyViolation)
				}
				pc = int(in.D)
			} else {
				pc++
			}
		case bytecode.JumpIfBinaryIntConstRightTrue:
			v, err := evalBinary(ir.BinaryOp(in.A), slots[in.B], constants[in.C])
			if err != nil {
				return err
			}
			if v.ToBool() {
				if int(in.D) < start || int(in.D) >= end {
					return fmt.Errorf("%w: branch target outside loop body", ErrParallelBodyViolation)
				}
				pc = int(in.D)
			} else {
				pc++
			}
		case bytecode.Cast:
			v, err := evalCast(slots[in.B], ir.Type(in.C))
			if err != nil {
				return err
			}
			slots[in.A] = v
			pc++
		case bytecode.Jump:
			if int(in.A) < start || int(in.A) >= end {
				return fmt.Errorf("%w: jump target outside loop body", ErrParallelBodyViolation)
			}
			pc = int(in.A)
		case bytecode.JumpIfTrue:
			if slots[in.A].ToBool() {
				if int(in.B) < start || int(in.B) >= end {
					return fmt.Errorf("%w: branch target outside loop body", ErrParallelBodyViolation)
				}
				pc = int(in.B)
			} else {
				pc++
			}
		case bytecode.JumpIfFalse:
			if !slots[in.A].ToBool() {
				if int(in.B) < start || int(in.B) >= end {
					return fmt.Errorf("%w: branch target outside loop body", ErrParallelBodyViolation)
				}
				pc = int(in.B)
			} else {
				pc++
			}
		case bytecode.ArrayCreate:
			n, err := slots[in.B].ToLong()
			if err != nil {
				return err
			}
			if n < 0 {
				n = 0
			}
			slots[in.A] = ArrayValue(make([]Value, n))
			pc++
		case bytecode.ArrayGet:
			v, err := arrayGet(slots[in.B], slots[in.C])
			if err != nil {
				return err
			}
			slots[in.A] = v
			pc++
		case bytecode.ArraySet:
			if err := arraySet(slots[in.A], slots[in.B], slots[in.C]); err != nil {
				return err
			}
			pc++
		case bytecode.ParallelForBegin:
			nestedEnd, err := resolveParallelEnd(fn, pc)
			if err != nil {
				return err
			}
			if nestedEnd >= end {
				return fmt.Errorf("%w: nested parallel loop escapes its enclosing body", ErrParallelBodyViolation)
			}
			count, err := slots[in.A].ToLong()
			if err != nil {
				return err
			}
			for it := int64(0); it < count; it++ {
				local := make([]Value, len(slots))
				copy(local, slots)
				local[in.B] = IntValue(it)
				nestedReduce := map[int32]int64{}
				if err := runParallelBody(fn, constants, local, pc+1, nestedEnd, nestedReduce); err != nil {
					return err
				}
				for slot, delta := range nestedReduce {
					reduce[slot] += delta
				}
			}
			pc = nestedEnd + 1
		case bytecode.ParallelForEnd:
			pc++
		case bytecode.ParallelReduceAdd:
			delta, err := slots[in.B].ToLong()
			if err != nil {
				return err
			}
			reduce[in.A] += delta
			pc++
		case bytecode.Print, bytecode.Throw, bytecode.Return:
			return fmt.Errorf("%w: %s inside a parallel loop body", ErrParallelBodyViolation, in.Op)
		default:
			return fmt.Errorf("%w: %s", ErrUnsupportedOpcode, in.Op)
		}
	}
	return nil
}
