// Copyright 2026 The Oaf Authors
// This file is part of Oaf.

package ir_test

import (
	"testing"

	"github.com/oaflang/oaf/lang/ir"
	"github.com/oaflang/oaf/lang/lexer"
	"github.com/oaflang/oaf/lang/parser"
)

func mustLower(t *testing.T, src string) *ir.Function {
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
	fn, ok := mod.FunctionByName("main")
	if !ok {
		t.Fatalf("lowered module has no main function")
	}
	return fn
}

func countInstrs(fn *ir.Function, pred func(ir.Instr) bool) int {
	n := 0
	for _, b := range fn.Blocks {
		for _, in := range b.Instrs {
			if pred(in) {
				n++
			}
		}
	}
	return n
}

func TestLowerVarDeclEmitsAssign(t *testing.T) {
	fn := mustLower(t, "flux total = 0; return total;")
	n := countInstrs(fn, func(in ir.Instr) bool {
		a, ok := in.(*ir.Assign)
		return ok && a.Dst.String() == "total"
	})
	if n != 1 {
		t.Fatalf("got %d Assign(total) instructions, want 1", n)
	}
	last := fn.Blocks[len(fn.Blocks)-1]
	term, ok := last.Terminator()
	if !ok {
		t.Fatalf("function does not end in a terminator")
	}
	ret, ok := term.(*ir.Return)
	if !ok {
		t.Fatalf("terminator is %T, want *ir.Return", term)
	}
	if ret.Value == nil || ret.Value.String() != "total" {
		t.Errorf("return value = %v, want total", ret.Value)
	}
}

func TestLowerIfElseProducesFourBlocks(t *testing.T) {
	fn := mustLower(t, `
		flux x = 1;
		if (x == 1) {
			print x;
		} else {
			print 0;
		}
	`)
	var printCount int
	for _, b := range fn.Blocks {
		for _, in := range b.Instrs {
			if _, ok := in.(*ir.Print); ok {
				printCount++
			}
		}
	}
	if printCount != 2 {
		t.Fatalf("got %d Print instructions, want 2 (one per branch)", printCount)
	}
	if len(fn.Blocks) < 4 {
		t.Fatalf("got %d blocks, want at least 4 (entry, then, else, end)", len(fn.Blocks))
	}
}

func TestLowerPlainLoopBranchesBackToCond(t *testing.T) {
	fn := mustLower(t, `
		flux i = 0;
		loop (i < 10) {
			i += 1;
		}
	`)
	var branches int
	var binaries int
	for _, b := range fn.Blocks {
		for _, in := range b.Instrs {
			switch in.(type) {
			case *ir.Branch:
				branches++
			case *ir.Binary:
				binaries++
			}
		}
	}
	if branches != 1 {
		t.Fatalf("got %d Branch instructions, want 1", branches)
	}
	if binaries < 2 {
		t.Fatalf("got %d Binary instructions, want at least 2 (cond + body increment)", binaries)
	}
}

func TestLowerParallelLoopEmitsBeginEndReduce(t *testing.T) {
	fn := mustLower(t, `
		flux total = 0;
		parallel loop i => 10 => {
			total += i;
		}
	`)
	var begins, ends, reduces int
	for _, b := range fn.Blocks {
		for _, in := range b.Instrs {
			switch in.(type) {
			case *ir.ParallelForBegin:
				begins++
			case *ir.ParallelForEnd:
				ends++
			case *ir.ParallelReduceAdd:
				reduces++
			}
		}
	}
	if begins != 1 || ends != 1 {
		t.Fatalf("got begins=%d ends=%d, want 1 each", begins, ends)
	}
	if reduces != 1 {
		t.Fatalf("got %d ParallelReduceAdd, want 1", reduces)
	}
}

func TestLowerMatchChainsEqualityChecks(t *testing.T) {
	fn := mustLower(t, `
		flux x = 2;
		match (x) {
			1 => { print 1; }
			2 => { print 2; }
			=> { print 0; }
		}
	`)
	eqCount := countInstrs(fn, func(in ir.Instr) bool {
		b, ok := in.(*ir.Binary)
		return ok && b.Op == ir.Eq
	})
	if eqCount != 2 {
		t.Fatalf("got %d equality checks, want 2 (default arm has none)", eqCount)
	}
}

func TestLowerAggregateExpandsToFlatFields(t *testing.T) {
	fn := mustLower(t, `
		struct Point { Int x, Int y }
		flux p = Point { x: 1, y: 2 };
		return p.x;
	`)
	n := countInstrs(fn, func(in ir.Instr) bool {
		a, ok := in.(*ir.Assign)
		return ok && a.Dst.String() == "p.x"
	})
	if n != 1 {
		t.Fatalf("got %d assigns to p.x, want 1", n)
	}
	last := fn.Blocks[len(fn.Blocks)-1]
	term, _ := last.Terminator()
	ret := term.(*ir.Return)
	if ret.Value.String() != "p.x" {
		t.Errorf("return value = %v, want p.x", ret.Value)
	}
}

func TestLowerThrowAndBreak(t *testing.T) {
	fn := mustLower(t, `
		flux i = 0;
		loop (i < 5) {
			if (i == 3) {
				break;
			}
			i += 1;
		}
		throw 1, 2;
	`)
	var jumps int
	for _, b := range fn.Blocks {
		if term, ok := b.Terminator(); ok {
			if _, ok := term.(*ir.Jump); ok {
				jumps++
			}
		}
	}
	if jumps == 0 {
		t.Fatalf("expected at least one Jump terminator from break/loop back-edge")
	}
	found := false
	for _, b := range fn.Blocks {
		if term, ok := b.Terminator(); ok {
			if th, ok := term.(*ir.Throw); ok {
				found = true
				if th.Err == nil || th.Detail == nil {
					t.Errorf("throw operands = %v, %v, want both non-nil", th.Err, th.Detail)
				}
			}
		}
	}
	if !found {
		t.Fatalf("no Throw terminator found")
	}
}
