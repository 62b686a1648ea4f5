// Copyright 2026 The Oaf Authors
// This file is part of Oaf.

// Package bytecode defines the register/slot-based bytecode model produced
// by the Generator from an optimized IR module, and the Generator itself.
package bytecode

// Opcode is the tag of a bytecode Instruction.
type Opcode uint8

const (
	Nop Opcode = iota
	LoadConst
	Move
	Unary
	Binary
	BinaryInt
	BinaryIntConstRight
	JumpIfBinaryIntTrue
	JumpIfBinaryIntConstRightTrue
	Cast
	Jump
	JumpIfTrue
	JumpIfFalse
	Print
	Throw
	ArrayCreate
	ArrayGet
	ArraySet
	ParallelForBegin
	ParallelForEnd
	ParallelReduceAdd
	Return

	opcodeCount
)

var opcodeNames = [opcodeCount]string{
	Nop:                           "Nop",
	LoadConst:                     "LoadConst",
	Move:                          "Move",
	Unary:                         "Unary",
	Binary:                        "Binary",
	BinaryInt:                     "BinaryInt",
	BinaryIntConstRight:           "BinaryIntConstRight",
	JumpIfBinaryIntTrue:           "JumpIfBinaryIntTrue",
	JumpIfBinaryIntConstRightTrue: "JumpIfBinaryIntConstRightTrue",
	Cast:                          "Cast",
	Jump:                          "Jump",
	JumpIfTrue:                    "JumpIfTrue",
	JumpIfFalse:                   "JumpIfFalse",
	Print:                         "Print",
	Throw:                         "Throw",
	ArrayCreate:                   "ArrayCreate",
	ArrayGet:                      "ArrayGet",
	ArraySet:                      "ArraySet",
	ParallelForBegin:              "ParallelForBegin",
	ParallelForEnd:                "ParallelForEnd",
	ParallelReduceAdd:             "ParallelReduceAdd",
	Return:                        "Return",
}

func (op Opcode) String() string {
	if int(op) >= 0 && int(op) < len(opcodeNames) && opcodeNames[op] != "" {
		return opcodeNames[op]
	}
	return "Opcode(?)"
}

// IntegerEligible is the opcode subset the fast-path eligibility predicate
// (§4.4.1) allows a function to be built from.
func (op Opcode) IntegerEligible() bool {
	switch op {
	case Nop, LoadConst, Move, Jump, JumpIfTrue, JumpIfFalse, Return, Unary,
		Binary, BinaryInt, BinaryIntConstRight,
		JumpIfBinaryIntTrue, JumpIfBinaryIntConstRightTrue, Cast:
		return true
	}
	return false
}
