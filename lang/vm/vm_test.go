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

package vm_test

import (
	"strings"
	"testing"

	"github.com/oaflang/oaf/lang/bytecode"
	"github.com/oaflang/oaf/lang/ir"
	"github.com/oaflang/oaf/lang/lexer"
	"github.com/oaflang/oaf/lang/parser"
	"github.com/oaflang/oaf/lang/vm"
)

func compile(t *testing.T, src string) *bytecode.Program {
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
	bc, err := bytecode.Generate(mod)
	if err != nil {
		t.Fatalf("Generate(%q): %v", src, err)
	}
	return bc
}

func wantIntReturn(t *testing.T, src string, want int64) vm.ExecResult {
	t.Helper()
	res := vm.Execute(compile(t, src), "")
	if !res.Success {
		t.Fatalf("execute(%q): unexpected failure: %s", src, res.ErrorMessage)
	}
	if !res.HasReturn {
		t.Fatalf("execute(%q): expected a return value, got none", src)
	}
	if res.ReturnValue.Kind != vm.Int || res.ReturnValue.I != want {
		t.Fatalf("execute(%q) = %+v, want Int(%d)", src, res.ReturnValue, want)
	}
	return res
}

// 1. sums 1..10 with a plain counted loop. → Return: 55
func TestScenarioSerialLoopSum(t *testing.T) {
	wantIntReturn(t, `flux total=0; flux i=1; loop (i<=10) { total+=i; i+=1; } return total;`, 55)
}

// 2. counts down from 1000, exercising the fast path. → Return: 500500
func TestScenarioSerialLoopSumFastPath(t *testing.T) {
	wantIntReturn(t, `flux total=0; flux i=1000; loop (i>0) { total+=i; i-=1; } return total;`, 500500)
}

// 3. flux a=1; flux b=2; return a+b; → Return: 3
func TestScenarioSimpleAddition(t *testing.T) {
	wantIntReturn(t, `flux a=1; flux b=2; return a+b;`, 3)
}

// 4. array create/set/get. → Return: 20
func TestScenarioArrayGetSet(t *testing.T) {
	wantIntReturn(t, `flux arr = newarray(3); arr[0]=10; arr[1]=20; arr[2]=30; return arr[1];`, 20)
}

// 5. out-of-range array write fails with a message containing "out of range".
func TestScenarioArrayOutOfRange(t *testing.T) {
	res := vm.Execute(compile(t, `flux arr = newarray(2); arr[5] = 1; return 0;`), "")
	if res.Success {
		t.Fatalf("expected failure, got success with return %+v", res.ReturnValue)
	}
	if !strings.Contains(res.ErrorMessage, "out of range") {
		t.Fatalf("error message %q does not contain %q", res.ErrorMessage, "out of range")
	}
}

// 6. parallel reduction over 0..999 sums to 499500.
func TestScenarioParallelReduction(t *testing.T) {
	wantIntReturn(t, `flux sum = 0; parallel loop i => 1000 => { sum += i; } return sum;`, 499500)
}

func TestEntryNotFoundSurfacesAsFailure(t *testing.T) {
	bc := compile(t, `flux a=1; return a;`)
	res := vm.Execute(bc, "doesNotExist")
	if res.Success {
		t.Fatalf("expected failure for missing entry function")
	}
	if !strings.Contains(res.ErrorMessage, "entry function") {
		t.Fatalf("error message %q does not mention entry function", res.ErrorMessage)
	}
}

func TestThrowProducesFormattedMessage(t *testing.T) {
	res := vm.Execute(compile(t, `throw 1, 2;`), "")
	if res.Success {
		t.Fatalf("expected throw to fail execution")
	}
	if !strings.HasPrefix(res.ErrorMessage, "Thrown:") {
		t.Fatalf("error message %q does not start with %q", res.ErrorMessage, "Thrown:")
	}
}

func TestPrintCollectsStdoutLines(t *testing.T) {
	res := vm.Execute(compile(t, `print 1; print 2; return 0;`), "")
	if !res.Success {
		t.Fatalf("unexpected failure: %s", res.ErrorMessage)
	}
	if len(res.Stdout) != 2 || res.Stdout[0] != "1" || res.Stdout[1] != "2" {
		t.Fatalf("unexpected stdout: %v", res.Stdout)
	}
}

func TestIndependentVMsAgreeOnSameProgram(t *testing.T) {
	src := `flux total=0; flux i=1; loop (i<=50) { total+=i*2; i+=1; } return total;`
	bc := compile(t, src)

	a := vm.New(4, 16)
	b := vm.New(1, 1)

	r1 := a.Execute(bc, "")
	r2 := b.Execute(bc, "")
	if !r1.Success || !r2.Success {
		t.Fatalf("unexpected failure: %s / %s", r1.ErrorMessage, r2.ErrorMessage)
	}
	if r1.ReturnValue.I != r2.ReturnValue.I {
		t.Fatalf("two VMs disagreed: %d vs %d", r1.ReturnValue.I, r2.ReturnValue.I)
	}
}
