// Copyright 2026 The Oaf Authors
// This file is part of Oaf.

package ir

import "fmt"

// BasicBlock is a maximal straight-line sequence of instructions ending in
// exactly one terminator (or left unterminated mid-lowering, which the
// Lowerer's tail-void rule resolves before returning).
type BasicBlock struct {
	Label  string
	Instrs []Instr
}

// Terminated reports whether the block's last instruction is a terminator.
func (b *BasicBlock) Terminated() bool {
	if len(b.Instrs) == 0 {
		return false
	}
	return b.Instrs[len(b.Instrs)-1].IsTerminator()
}

// Append adds instr to the block. It fails if the block is already
// terminated.
func (b *BasicBlock) Append(instr Instr) error {
	if b.Terminated() {
		return fmt.Errorf("ir: block %q is already terminated", b.Label)
	}
	b.Instrs = append(b.Instrs, instr)
	return nil
}

// Terminator returns the block's terminating instruction, if any.
func (b *BasicBlock) Terminator() (Instr, bool) {
	if !b.Terminated() {
		return nil, false
	}
	return b.Instrs[len(b.Instrs)-1], true
}

// Successors returns the labels of blocks this block can transfer control
// to directly, per §4.2's dead-store elimination rule: both Branch targets,
// the Jump target, none for Return/Throw.
func (b *BasicBlock) Successors() []string {
	term, ok := b.Terminator()
	if !ok {
		return nil
	}
	switch t := term.(type) {
	case *Branch:
		return []string{t.TrueLabel, t.FalseLabel}
	case *Jump:
		return []string{t.Label}
	default:
		return nil
	}
}

// Function is an ordered list of basic blocks; the first is the entry.
type Function struct {
	Name   string
	Blocks []*BasicBlock
}

// Entry returns the function's entry block.
func (f *Function) Entry() *BasicBlock {
	if len(f.Blocks) == 0 {
		return nil
	}
	return f.Blocks[0]
}

// BlockByLabel looks up a block by its label.
func (f *Function) BlockByLabel(label string) (*BasicBlock, bool) {
	for _, b := range f.Blocks {
		if b.Label == label {
			return b, true
		}
	}
	return nil, false
}

// BlockIndex returns the position of label within the block list, or -1 if
// not found.
func (f *Function) BlockIndex(label string) int {
	for i, b := range f.Blocks {
		if b.Label == label {
			return i
		}
	}
	return -1
}

// Module is an ordered list of functions. The core uses one function,
// "main"; the model admits more.
type Module struct {
	Name      string
	Functions []*Function
}

// FunctionByName looks up a function by name.
func (m *Module) FunctionByName(name string) (*Function, bool) {
	for _, f := range m.Functions {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}
