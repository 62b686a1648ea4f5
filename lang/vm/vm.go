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

// Package vm executes a compiled bytecode.Program: a fully generic
// boxed-value interpreter that handles every opcode, and a specialized
// integer fast path selected once per function when its constants and
// opcodes all satisfy the integer-safety predicate of §4.4.1.
package vm

import (
	"github.com/oaflang/oaf/lang/bytecode"
)

const (
	defaultParallelWorkers  = 8
	defaultFastPathCacheCap = 256
)

// VM holds the process-wide fast-path cache (§5: read-mostly after steady
// state, mutex-protected) and the worker budget for counted parallel loops.
// Per-execution slot vectors are private to their invocation.
type VM struct {
	cache   *fastPathCache
	workers int
}

// New builds a VM with the given parallel-loop worker budget and fast-path
// cache capacity. A non-positive value falls back to the package default.
func New(workers, fastPathCacheSize int) *VM {
	if workers <= 0 {
		workers = defaultParallelWorkers
	}
	if fastPathCacheSize <= 0 {
		fastPathCacheSize = defaultFastPathCacheCap
	}
	return &VM{cache: newFastPathCache(fastPathCacheSize), workers: workers}
}

var defaultVM = New(defaultParallelWorkers, defaultFastPathCacheCap)

// ExecResult is the public result of running a program (§6): success,
// optional return value, and an optional error message. Stdout carries every
// line written by Print, in program order.
type ExecResult struct {
	Success      bool
	HasReturn    bool
	ReturnValue  Value
	ErrorMessage string
	Stdout       []string
}

// Execute runs a program starting at entryName, or the program's declared
// entry function when entryName is empty. It uses the package-wide default
// VM; call New to configure worker/cache sizing explicitly.
func Execute(prog *bytecode.Program, entryName string) ExecResult {
	return defaultVM.Execute(prog, entryName)
}

// InvalidateProgram drops every function of prog from the fast-path cache,
// including negative entries. Callers that replace a compiled program in
// place (e.g. a REPL recompiling the same function names) should call this
// so stale cache entries never leak into a different program (§9: "process-
// wide caches keyed by function identity ... provide explicit
// invalidation").
func (m *VM) InvalidateProgram(prog *bytecode.Program) {
	for _, fn := range prog.Functions {
		m.cache.invalidate(contentHash(fn))
	}
}

// Execute runs a program on this VM starting at entryName, or the program's
// declared entry function when entryName is empty.
func (m *VM) Execute(prog *bytecode.Program, entryName string) ExecResult {
	name := entryName
	if name == "" {
		name = prog.EntryFunctionName
	}
	fn, ok := prog.FunctionByName(name)
	if !ok {
		return ExecResult{Success: false, ErrorMessage: ErrEntryNotFound.Error()}
	}

	if v, eligible, err := m.runFastPath(fn); eligible {
		if err != nil {
			return ExecResult{Success: false, ErrorMessage: err.Error()}
		}
		return ExecResult{Success: true, HasReturn: v.Kind != Null, ReturnValue: v}
	}

	return m.runGeneric(fn)
}
