// Copyright 2026 The Oaf Authors
// This file is part of Oaf.

package bytecode_test

import (
	"strings"
	"testing"

	"github.com/oaflang/oaf/lang/bytecode"
	"github.com/oaflang/oaf/lang/ir"
	"github.com/oaflang/oaf/lang/lexer"
	"github.com/oaflang/oaf/lang/parser"
)

func TestDisassembleListsConstantsAndInstructions(t *testing.T) {
	toks := lexer.New("test.oaf", `flux a=1; flux b=2; return a+b;`).Tokenize()
	prog, err := parser.ParseProgram(toks)
	if err != nil {
		t.Fatalf("ParseProgram: %v", err)
	}
	mod, err := ir.Lower(prog)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	ir.Optimize(mod)
	bc, err := bytecode.Generate(mod)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	out := bytecode.Disassemble(bc)
	if !strings.Contains(out, "func "+bc.EntryFunctionName) {
		t.Fatalf("disassembly missing entry function header:\n%s", out)
	}
	if !strings.Contains(out, "entry") {
		t.Fatalf("disassembly does not mark the entry function:\n%s", out)
	}
	if !strings.Contains(out, "Return") {
		t.Fatalf("disassembly missing a Return instruction:\n%s", out)
	}
}
