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
	"fmt"

	"github.com/oaflang/oaf/lang/bytecode"
	"github.com/oaflang/oaf/lang/ir"
)

// runGeneric is the fully generic boxed-value interpreter (§4.4.2). It
// handles every opcode the Bytecode Generator can emit, including the
// fused JumpIfBinaryInt*True opcodes peephole optimization produces
// regardless of whether the whole function is fast-path eligible.
func (m *VM) runGeneric(fn *bytecode.Function) ExecResult {
	slots := make([]Value, fn.SlotCount)
	constants := valuesFromConstants(fn.Constants)
	var stdout []string

	pc := 0
	for pc >= 0 && pc < len(fn.Instructions) {
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
				return failResult(err, stdout)
			}
			slots[in.A] = v
			pc++

		case bytecode.Binary, bytecode.BinaryInt:
			v, err := evalBinary(ir.BinaryOp(in.B), slots[in.C], slots[in.D])
			if err != nil {
				return failResult(err, stdout)
			}
			slots[in.A] = v
			pc++

		case bytecode.BinaryIntConstRight:
			v, err := evalBinary(ir.BinaryOp(in.B), slots[in.C], constants[in.D])
			if err != nil {
				return failResult(err, stdout)
			}
			slots[in.A] = v
			pc++

		case bytecode.JumpIfBinaryIntTrue:
			v, err := evalBinary(ir.BinaryOp(in.A), slots[in.B], slots[in.C])
			if err != nil {
				return failResult(err, stdout)
			}
			if v.ToBool() {
				pc = int(in.D)
			} else {
				pc++
			}

		case bytecode.JumpIfBinaryIntConstRightTrue:
			v, err := evalBinary(ir.BinaryOp(in.A), slots[in.B], constants[in.C])
			if err != nil {
				return failResult(err, stdout)
			}
			if v.ToBool() {
				pc = int(in.D)
			} else {
				pc++
			}

		case bytecode.Cast:
			v, err := evalCast(slots[in.B], ir.Type(in.C))
			if err != nil {
				return failResult(err, stdout)
			}
			slots[in.A] = v
			pc++

		case bytecode.Jump:
			pc = int(in.A)

		case bytecode.JumpIfTrue:
			if slots[in.A].ToBool() {
				pc = int(in.B)
			} else {
				pc++
			}

		case bytecode.JumpIfFalse:
			if !slots[in.A].ToBool() {
				pc = int(in.B)
			} else {
				pc++
			}

		case bytecode.Print:
			stdout = append(stdout, slots[in.A].Text())
			pc++

		case bytecode.Throw:
			return ExecResult{Success: false, ErrorMessage: formatThrow(slots, in), Stdout: stdout}

		case bytecode.ArrayCreate:
			n, err := slots[in.B].ToLong()
			if err != nil {
				return failResult(err, stdout)
			}
			if n < 0 {
				n = 0
			}
			slots[in.A] = ArrayValue(make([]Value, n))
			pc++

		case bytecode.ArrayGet:
			v, err := arrayGet(slots[in.B], slots[in.C])
			if err != nil {
				return failResult(err, stdout)
			}
			slots[in.A] = v
			pc++

		case bytecode.ArraySet:
			if err := arraySet(slots[in.A], slots[in.B], slots[in.C]); err != nil {
				return failResult(err, stdout)
			}
			pc++

		case bytecode.ParallelForBegin:
			next, err := m.runParallelFor(fn, constants, slots, pc)
			if err != nil {
				return failResult(err, stdout)
			}
			pc = next

		case bytecode.ParallelForEnd:
			pc++

		case bytecode.ParallelReduceAdd:
			return failResult(fmt.Errorf("%w: reduce outside a parallel loop", ErrUnsupportedOpcode), stdout)

		case bytecode.Return:
			if in.A == bytecode.NoSlot {
				return ExecResult{Success: true, Stdout: stdout}
			}
			return ExecResult{Success: true, HasReturn: true, ReturnValue: slots[in.A], Stdout: stdout}

		default:
			return failResult(fmt.Errorf("%w: %s", ErrUnsupportedOpcode, in.Op), stdout)
		}
	}
	return ExecResult{Success: true, Stdout: stdout}
}

func failResult(err error, stdout []string) ExecResult {
	return ExecResult{Success: false, ErrorMessage: err.Error(), Stdout: stdout}
}

func arrayGet(arr, idx Value) (Value, error) {
	if arr.Kind != Array {
		return Value{}, ErrNotAnArray
	}
	i, err := idx.ToLong()
	if err != nil {
		return Value{}, err
	}
	if i < 0 || i >= int64(len(arr.Arr)) {
		return Value{}, ErrArrayIndexOutOfRange
	}
	return arr.Arr[i], nil
}

func arraySet(arr, idx, val Value) error {
	if arr.Kind != Array {
		return ErrNotAnArray
	}
	i, err := idx.ToLong()
	if err != nil {
		return err
	}
	if i < 0 || i >= int64(len(arr.Arr)) {
		return ErrArrayIndexOutOfRange
	}
	arr.Arr[i] = val
	return nil
}

func formatThrow(slots []Value, in bytecode.Instruction) string {
	errText, detailText := "null", "null"
	if in.A != bytecode.NoSlot {
		errText = slots[in.A].Text()
	}
	if in.B != bytecode.NoSlot {
		detailText = slots[in.B].Text()
	}
	return fmt.Sprintf("Thrown: %s (%s)", errText, detailText)
}

func valuesFromConstants(cs []bytecode.Constant) []Value {
	out := make([]Value, len(cs))
	for i, c := range cs {
		out[i] = valueFromConstant(c)
	}
	return out
}

func valueFromConstant(c bytecode.Constant) Value {
	switch c.Kind {
	case ir.Int:
		switch p := c.Payload.(type) {
		case int64:
			return IntValue(p)
		case bool:
			if p {
				return IntValue(1)
			}
			return IntValue(0)
		}
		return IntValue(0)
	case ir.Bool:
		if b, ok := c.Payload.(bool); ok {
			return BoolValue(b)
		}
		return BoolValue(false)
	case ir.Char:
		switch p := c.Payload.(type) {
		case int32:
			return CharValue(p)
		case int64:
			return CharValue(rune(p))
		}
		return CharValue(0)
	case ir.Float:
		if f, ok := c.Payload.(float64); ok {
			return FloatValue(f)
		}
		return FloatValue(0)
	case ir.String:
		if s, ok := c.Payload.(string); ok {
			return StringValue(s)
		}
		return StringValue("")
	default:
		return NullValue()
	}
}
