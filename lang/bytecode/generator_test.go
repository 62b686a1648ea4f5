// Copyright 2026 The Oaf Authors
// This file is part of Oaf.

package bytecode_test

import (
	"testing"

	"github.com/oaflang/oaf/lang/bytecode"
	"github.com/oaflang/oaf/lang/ir"
	"github.com/oaflang/oaf/lang/lexer"
	"github.com/oaflang/oaf/lang/parser"
)

func generate(t *testing.T, src string) *bytecode.Function {
	t.Helper()
	toks := lexer.New("test.oaf", src).Tokenize()
	prog, err := parser.ParseProgram(toks)
	if err != nil {
		t.Fatalf("ParseProgram(%q): %v", src, err)
	}
	mod, err := ir.Lower(prog)
	if err != nil {
		t.Fatalf("Lower(%q): %v", src, err)
	}
	bc, err := bytecode.Generate(mod)
	if err != nil {
		t.Fatalf("Generate(%q): %v", src, err)
	}
	fn, ok := bc.FunctionByName("main")
	if !ok {
		t.Fatalf("Generate(%q): no main function", src)
	}
	return fn
}

func countOp(fn *bytecode.Function, op bytecode.Opcode) int {
	n := 0
	for _, in := range fn.Instructions {
		if in.Op == op {
			n++
		}
	}
	return n
}

func TestDuplicateConstantsShareOnePoolSlot(t *testing.T) {
	fn := generate(t, `flux a=7; flux b=7; return a+b;`)
	sevens := 0
	for _, c := range fn.Constants {
		if c.Payload == int64(7) {
			sevens++
		}
	}
	if sevens != 1 {
		t.Fatalf("constant 7 interned %d times, want 1 (pool=%v)", sevens, fn.Constants)
	}
}

func TestConstRightBinaryUsesConstPool(t *testing.T) {
	fn := generate(t, `flux a=1; return a+5;`)
	if countOp(fn, bytecode.BinaryIntConstRight) != 1 {
		t.Fatalf("expected one BinaryIntConstRight, got instructions: %v", fn.Instructions)
	}
	if countOp(fn, bytecode.Binary) != 0 && countOp(fn, bytecode.BinaryInt) != 0 {
		t.Fatalf("expected no plain Binary/BinaryInt for an int-vs-const-add, got: %v", fn.Instructions)
	}
}

func TestCommutativeConstLeftIsNormalizedToConstRight(t *testing.T) {
	fn := generate(t, `flux a=1; return 5+a;`)
	if countOp(fn, bytecode.BinaryIntConstRight) != 1 {
		t.Fatalf("expected commutative const-left add to normalize to BinaryIntConstRight, got: %v", fn.Instructions)
	}
}

func TestBranchLowersToJumpIfTrueAndJump(t *testing.T) {
	fn := generate(t, `flux a=1; if (a>0) { print a; } else { print 0; } return a;`)
	if countOp(fn, bytecode.JumpIfTrue)+countOp(fn, bytecode.JumpIfBinaryIntTrue)+countOp(fn, bytecode.JumpIfBinaryIntConstRightTrue) == 0 {
		t.Fatalf("expected a conditional jump opcode, got: %v", fn.Instructions)
	}
}

func TestNestedParallelForPatchesBothEnds(t *testing.T) {
	fn := generate(t, `
		flux sum = 0;
		parallel loop i => 4 => {
			parallel loop j => 4 => {
				sum += i;
			}
		}
		return sum;
	`)
	begins := []int{}
	ends := map[int]bool{}
	for idx, in := range fn.Instructions {
		switch in.Op {
		case bytecode.ParallelForBegin:
			begins = append(begins, idx)
		case bytecode.ParallelForEnd:
			ends[idx] = true
		}
	}
	if len(begins) != 2 {
		t.Fatalf("expected 2 ParallelForBegin, got %d: %v", len(begins), fn.Instructions)
	}
	for _, b := range begins {
		c := int(fn.Instructions[b].C)
		if !ends[c] {
			t.Fatalf("ParallelForBegin at %d has C=%d which is not a ParallelForEnd index", b, c)
		}
	}
}

func TestReturnTypeInferredForIntBoolChar(t *testing.T) {
	cases := []struct {
		src  string
		want ir.Type
	}{
		{`return 1;`, ir.Int},
		{`return true;`, ir.Bool},
		{`flux c = 'a'; return c;`, ir.Char},
	}
	for _, tc := range cases {
		fn := generate(t, tc.src)
		if !fn.ReturnTypeKnown {
			t.Fatalf("generate(%q): ReturnTypeKnown = false, want true", tc.src)
		}
		if fn.ReturnType != tc.want {
			t.Fatalf("generate(%q): ReturnType = %s, want %s", tc.src, fn.ReturnType, tc.want)
		}
	}
}

func TestMixedReturnTypesAreNotInferred(t *testing.T) {
	fn := generate(t, `flux a=1; if (a>0) { return 1; } return true;`)
	if fn.ReturnTypeKnown {
		t.Fatalf("expected mixed Int/Bool returns to leave ReturnTypeKnown = false, got type %s", fn.ReturnType)
	}
}
