// Copyright 2026 The Oaf Authors
// This file is part of Oaf.

package bytecode

import (
	"fmt"

	"github.com/oaflang/oaf/lang/ir"
)

// Instruction is a bytecode instruction word: an opcode plus four signed
// operand slots. Each opcode assigns its own meaning to A, B, C, D (slot
// index, constant index, operator tag, or branch target); unused fields are
// left at their zero value. Jump targets are absolute instruction indices
// into the owning Function's Instructions slice; -1 denotes "no value" for
// Return/Throw operands.
type Instruction struct {
	Op   Opcode
	A, B, C, D int32
}

func (in Instruction) String() string {
	return fmt.Sprintf("%s %d %d %d %d", in.Op, in.A, in.B, in.C, in.D)
}

// NoSlot marks an absent optional slot operand (Return with no value, Throw
// with an omitted error or detail).
const NoSlot int32 = -1

// Constant is one entry of a Function's constant pool. Kind records the IR
// type the literal was lowered from; Payload holds the corresponding Go
// value (nil, bool, int64, float64, rune, string).
type Constant struct {
	Kind    ir.Type
	Payload interface{}
}

// Function is a compiled function: its slot count, constant pool, and flat
// instruction stream, plus the inferred return type used to gate fast-path
// eligibility.
type Function struct {
	Name         string
	SlotCount    int
	Constants    []Constant
	Instructions []Instruction

	// ReturnTypeKnown is true when every value-carrying Return in the
	// function agrees on a single Int, Bool, or Char return type (void
	// Returns are ignored); ReturnType holds that type, or Void when the
	// function has only void Returns. When false the function returns
	// "dynamically typed" values and must run under the dynamic-bool
	// fast-path interpreter or the generic path.
	ReturnTypeKnown bool
	ReturnType      ir.Type
}

// Program is a compiled unit: the functions it contains and which one
// execution begins in.
type Program struct {
	EntryFunctionName string
	Functions         []*Function
}

// FunctionByName looks up a function by name.
func (p *Program) FunctionByName(name string) (*Function, bool) {
	for _, fn := range p.Functions {
		if fn.Name == name {
			return fn, true
		}
	}
	return nil, false
}

// Entry returns the program's entry function.
func (p *Program) Entry() (*Function, bool) {
	return p.FunctionByName(p.EntryFunctionName)
}
