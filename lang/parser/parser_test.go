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

package parser_test

import (
	"testing"

	"github.com/oaflang/oaf/lang/ast"
	"github.com/oaflang/oaf/lang/lexer"
	"github.com/oaflang/oaf/lang/parser"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	toks := lexer.New("test.oaf", src).Tokenize()
	prog, err := parser.ParseProgram(toks)
	if err != nil {
		t.Fatalf("ParseProgram(%q): %v", src, err)
	}
	return prog
}

func TestParseVarDeclAndReturn(t *testing.T) {
	prog := mustParse(t, "flux total = 0; return total;")
	if len(prog.Statements) != 2 {
		t.Fatalf("got %d statements, want 2", len(prog.Statements))
	}
	decl, ok := prog.Statements[0].(*ast.VarDecl)
	if !ok {
		t.Fatalf("statement[0] is %T, want *ast.VarDecl", prog.Statements[0])
	}
	if decl.Name != "total" {
		t.Errorf("decl.Name = %q, want total", decl.Name)
	}
	if lit, ok := decl.Value.(*ast.IntLit); !ok || lit.Value != 0 {
		t.Errorf("decl.Value = %#v, want IntLit(0)", decl.Value)
	}
	ret, ok := prog.Statements[1].(*ast.ReturnStmt)
	if !ok {
		t.Fatalf("statement[1] is %T, want *ast.ReturnStmt", prog.Statements[1])
	}
	if id, ok := ret.Value.(*ast.Ident); !ok || id.Name != "total" {
		t.Errorf("ret.Value = %#v, want Ident(total)", ret.Value)
	}
}

func TestParseCompoundAssignAndLoop(t *testing.T) {
	prog := mustParse(t, `
		flux sum = 0;
		flux i = 0;
		loop (i < 10) {
			sum += i;
			i += 1;
		}
	`)
	if len(prog.Statements) != 3 {
		t.Fatalf("got %d statements, want 3", len(prog.Statements))
	}
	loop, ok := prog.Statements[2].(*ast.LoopStmt)
	if !ok {
		t.Fatalf("statement[2] is %T, want *ast.LoopStmt", prog.Statements[2])
	}
	if loop.Parallel {
		t.Error("loop.Parallel = true, want false")
	}
	cond, ok := loop.Cond.(*ast.BinaryExpr)
	if !ok || cond.Op != "<" {
		t.Errorf("loop.Cond = %#v, want BinaryExpr(<)", loop.Cond)
	}
	if len(loop.Body.Statements) != 2 {
		t.Fatalf("loop body has %d statements, want 2", len(loop.Body.Statements))
	}
	assign, ok := loop.Body.Statements[0].(*ast.AssignStmt)
	if !ok || assign.Op != "+=" || assign.Name != "sum" {
		t.Errorf("body[0] = %#v, want AssignStmt(sum +=)", loop.Body.Statements[0])
	}
}

func TestParseParallelLoop(t *testing.T) {
	prog := mustParse(t, `
		flux sum = 0;
		parallel loop i => 10 => {
			sum += i;
		}
	`)
	loop, ok := prog.Statements[1].(*ast.LoopStmt)
	if !ok {
		t.Fatalf("statement[1] is %T, want *ast.LoopStmt", prog.Statements[1])
	}
	if !loop.Parallel {
		t.Fatal("loop.Parallel = false, want true")
	}
	if loop.IterVar != "i" {
		t.Errorf("loop.IterVar = %q, want i", loop.IterVar)
	}
	count, ok := loop.Count.(*ast.IntLit)
	if !ok || count.Value != 10 {
		t.Errorf("loop.Count = %#v, want IntLit(10)", loop.Count)
	}
}

func TestParseIfElse(t *testing.T) {
	prog := mustParse(t, `
		if (x > 0) {
			return 1;
		} else {
			return -1;
		}
	`)
	ifs, ok := prog.Statements[0].(*ast.IfStmt)
	if !ok {
		t.Fatalf("statement[0] is %T, want *ast.IfStmt", prog.Statements[0])
	}
	if ifs.Else == nil {
		t.Fatal("ifs.Else is nil, want non-nil")
	}
	ret, ok := ifs.Else.Statements[0].(*ast.ReturnStmt)
	if !ok {
		t.Fatalf("else[0] is %T, want *ast.ReturnStmt", ifs.Else.Statements[0])
	}
	un, ok := ret.Value.(*ast.UnaryExpr)
	if !ok || un.Op != "-" {
		t.Errorf("ret.Value = %#v, want UnaryExpr(-)", ret.Value)
	}
}

func TestParseMatch(t *testing.T) {
	prog := mustParse(t, `
		flux result = 0;
		match (x) {
			1 => { result = 10; },
			2 => { result = 20; },
			=> { result = -1; },
		}
	`)
	m, ok := prog.Statements[1].(*ast.MatchStmt)
	if !ok {
		t.Fatalf("statement[1] is %T, want *ast.MatchStmt", prog.Statements[1])
	}
	if len(m.Arms) != 3 {
		t.Fatalf("got %d arms, want 3", len(m.Arms))
	}
	if m.Arms[2].Pattern != nil {
		t.Errorf("last arm pattern = %#v, want nil (default)", m.Arms[2].Pattern)
	}
}

func TestParseArrayIndexAndNewArray(t *testing.T) {
	prog := mustParse(t, `
		flux arr = newarray(5);
		arr[0] = 42;
	`)
	decl, ok := prog.Statements[0].(*ast.VarDecl)
	if !ok {
		t.Fatalf("statement[0] is %T", prog.Statements[0])
	}
	if _, ok := decl.Value.(*ast.NewArrayExpr); !ok {
		t.Errorf("decl.Value = %#v, want *ast.NewArrayExpr", decl.Value)
	}
	idxAssign, ok := prog.Statements[1].(*ast.IndexAssignStmt)
	if !ok {
		t.Fatalf("statement[1] is %T, want *ast.IndexAssignStmt", prog.Statements[1])
	}
	if idxAssign.Op != "=" {
		t.Errorf("idxAssign.Op = %q, want =", idxAssign.Op)
	}
}

func TestParseAggregateConstructor(t *testing.T) {
	prog := mustParse(t, `
		struct Point { Int x, Int y }
		flux p = Point { x: 1, y: 2 };
	`)
	if _, ok := prog.Statements[0].(*ast.AggregateDecl); !ok {
		t.Fatalf("statement[0] is %T, want *ast.AggregateDecl", prog.Statements[0])
	}
	decl, ok := prog.Statements[1].(*ast.VarDecl)
	if !ok {
		t.Fatalf("statement[1] is %T, want *ast.VarDecl", prog.Statements[1])
	}
	agg, ok := decl.Value.(*ast.AggregateExpr)
	if !ok {
		t.Fatalf("decl.Value is %T, want *ast.AggregateExpr", decl.Value)
	}
	if agg.TypeName != "Point" || len(agg.Args) != 2 {
		t.Errorf("agg = %#v", agg)
	}
}
