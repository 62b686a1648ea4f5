// Copyright 2026 The Oaf Authors
// This file is part of Oaf.

package bytecode

import (
	"fmt"
	"strings"
)

// Disassemble renders a compiled program as human-readable listing: one
// function header per Function, its constant pool, and its instruction
// stream with absolute indices so jump/branch targets can be read directly.
func Disassemble(prog *Program) string {
	var b strings.Builder
	for i, fn := range prog.Functions {
		if i > 0 {
			b.WriteByte('\n')
		}
		disassembleFunction(&b, fn, fn.Name == prog.EntryFunctionName)
	}
	return b.String()
}

func disassembleFunction(b *strings.Builder, fn *Function, isEntry bool) {
	fmt.Fprintf(b, "func %s (slots=%d)", fn.Name, fn.SlotCount)
	if isEntry {
		b.WriteString(" ; entry")
	}
	if fn.ReturnTypeKnown {
		fmt.Fprintf(b, " ; returns %s", fn.ReturnType)
	}
	b.WriteByte('\n')

	for i, c := range fn.Constants {
		fmt.Fprintf(b, "  const %d = %s(%v)\n", i, c.Kind, c.Payload)
	}
	for i, in := range fn.Instructions {
		fmt.Fprintf(b, "  %4d  %s\n", i, in)
	}
}
