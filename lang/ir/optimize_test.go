// Copyright 2026 The Oaf Authors
// This file is part of Oaf.

package ir_test

import (
	"testing"

	"github.com/oaflang/oaf/lang/ir"
	"github.com/oaflang/oaf/lang/lexer"
	"github.com/oaflang/oaf/lang/parser"
)

func mustLowerAndOptimize(t *testing.T, src string) *ir.Function {
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
	ir.Optimize(mod)
	fn, _ := mod.FunctionByName("main")
	return fn
}

func TestFoldConstantsCollapsesArithmetic(t *testing.T) {
	fn := mustLowerAndOptimize(t, "return 1 + 2 * 3;")
	last := fn.Blocks[len(fn.Blocks)-1]
	term, ok := last.Terminator()
	if !ok {
		t.Fatalf("no terminator")
	}
	ret, ok := term.(*ir.Return)
	if !ok {
		t.Fatalf("terminator is %T, want *ir.Return", term)
	}
	c, ok := ret.Value.(*ir.Constant)
	if !ok {
		t.Fatalf("return value is %T, want *ir.Constant (folded)", ret.Value)
	}
	if c.Payload.(int64) != 7 {
		t.Errorf("folded value = %v, want 7", c.Payload)
	}
}

func TestFoldConstantBranchBecomesJump(t *testing.T) {
	fn := mustLowerAndOptimize(t, `
		if (true) {
			print 1;
		} else {
			print 2;
		}
	`)
	for _, b := range fn.Blocks {
		if term, ok := b.Terminator(); ok {
			if _, ok := term.(*ir.Branch); ok {
				t.Fatalf("block %s still ends in Branch after constant folding", b.Label)
			}
		}
	}
}

func TestCopyPropagationReplacesDirectCopy(t *testing.T) {
	fn := mustLowerAndOptimize(t, `
		flux a = 5;
		flux b = a;
		return b + 1;
	`)
	last := fn.Blocks[len(fn.Blocks)-1]
	term, _ := last.Terminator()
	ret := term.(*ir.Return)
	if _, ok := ret.Value.(*ir.Constant); !ok {
		t.Fatalf("return value is %T, want folded *ir.Constant after copy propagation", ret.Value)
	}
}

func TestDeadStoreEliminationDropsUnreadAssign(t *testing.T) {
	fn := mustLowerAndOptimize(t, `
		flux a = 1;
		a = 2;
		return 0;
	`)
	n := 0
	for _, b := range fn.Blocks {
		for _, in := range b.Instrs {
			if as, ok := in.(*ir.Assign); ok && as.Dst.String() == "a" {
				n++
			}
		}
	}
	if n != 0 {
		t.Fatalf("got %d surviving assigns to dead variable a, want 0", n)
	}
}

func TestDeadTemporaryEliminationDropsUnusedTemp(t *testing.T) {
	fn := mustLowerAndOptimize(t, `
		flux x = 1;
		flux y = 2;
		return x;
	`)
	for _, b := range fn.Blocks {
		for _, in := range b.Instrs {
			if bin, ok := in.(*ir.Binary); ok {
				if _, isTemp := bin.Dst.(*ir.Temporary); isTemp {
					used := false
					for _, b2 := range fn.Blocks {
						for _, in2 := range b2.Instrs {
							for _, r := range in2.Reads() {
								if r == bin.Dst {
									used = true
								}
							}
						}
						if term, ok := b2.Terminator(); ok {
							for _, r := range term.Reads() {
								if r == bin.Dst {
									used = true
								}
							}
						}
					}
					if !used {
						t.Errorf("dead temporary %s survived elimination", bin.Dst)
					}
				}
			}
		}
	}
}
