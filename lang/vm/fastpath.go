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

package vm

import (
	"fmt"
	"log"
	"sync"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru"

	"github.com/oaflang/oaf/lang/bytecode"
	"github.com/oaflang/oaf/lang/ir"
)

// decodedFunction is a function's fast-path-ready form (§4.4.1): constants
// decoded to i64 once, plus whether each one is logically a bool (needed by
// the dynamic-bool interpreter), and whether the function's return type was
// resolved to a single concrete kind.
type decodedFunction struct {
	fn        *bytecode.Function
	constants []int64
	constBool []bool
	static    bool
	retType   ir.Type
}

// cacheEntry is what the fast-path cache stores per function content hash:
// either a decoded function, or a negative ("not eligible") marker.
type cacheEntry struct {
	eligible bool
	decoded  *decodedFunction
}

// fastPathCache is the process-wide, mutex-protected per-function cache and
// negative cache of §5, backed by a bounded LRU keyed by a content hash.
type fastPathCache struct {
	mu    sync.Mutex
	cache *lru.Cache
}

func newFastPathCache(size int) *fastPathCache {
	c, _ := lru.NewWithEvict(size, func(key, value interface{}) {
		log.Printf("vm: fast-path cache evicted function hash %x", key)
	})
	return &fastPathCache{cache: c}
}

func (fc *fastPathCache) get(h uint64) (*cacheEntry, bool) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	v, ok := fc.cache.Get(h)
	if !ok {
		return nil, false
	}
	return v.(*cacheEntry), true
}

func (fc *fastPathCache) put(h uint64, e *cacheEntry) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.cache.Add(h, e)
}

// invalidate removes a single function's cache entry, positive or negative,
// so a replaced program's stale decoding can never be reused under the same
// content hash.
func (fc *fastPathCache) invalidate(h uint64) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.cache.Remove(h)
}

// contentHash hashes a function's shape and contents with xxhash so that
// structurally identical functions (and re-executions of the same compiled
// function) share one cache entry.
func contentHash(fn *bytecode.Function) uint64 {
	h := xxhash.New()
	fmt.Fprintf(h, "%s|%d|", fn.Name, fn.SlotCount)
	for _, c := range fn.Constants {
		fmt.Fprintf(h, "%d:%v|", c.Kind, c.Payload)
	}
	for _, in := range fn.Instructions {
		fmt.Fprintf(h, "%d,%d,%d,%d,%d;", in.Op, in.A, in.B, in.C, in.D)
	}
	return h.Sum64()
}

// isEligible implements the §4.4.1 eligibility predicate: every pooled
// constant is integer-like, and every instruction's opcode (and, for Cast,
// its target type) is in the integer-eligible set.
func isEligible(fn *bytecode.Function) bool {
	for _, c := range fn.Constants {
		if c.Kind != ir.Int && c.Kind != ir.Bool && c.Kind != ir.Char {
			return false
		}
	}
	for _, in := range fn.Instructions {
		if !in.Op.IntegerEligible() {
			return false
		}
		if in.Op == bytecode.Cast {
			t := ir.Type(in.C)
			if t != ir.Int && t != ir.Bool && t != ir.Char {
				return false
			}
		}
	}
	return true
}

func decode(fn *bytecode.Function) *decodedFunction {
	consts := make([]int64, len(fn.Constants))
	constBool := make([]bool, len(fn.Constants))
	for i, c := range fn.Constants {
		switch p := c.Payload.(type) {
		case int64:
			consts[i] = p
		case bool:
			constBool[i] = p
			if p {
				consts[i] = 1
			}
		case rune:
			consts[i] = int64(p)
		}
	}
	static := fn.ReturnTypeKnown && fn.ReturnType != ir.Unknown
	return &decodedFunction{fn: fn, constants: consts, constBool: constBool, static: static, retType: fn.ReturnType}
}

// runFastPath resolves (via the cache, computing and storing on a miss)
// whether fn is fast-path eligible, and if so runs it. The second return
// value reports eligibility; callers fall back to the generic interpreter
// when it is false.
func (m *VM) runFastPath(fn *bytecode.Function) (Value, bool, error) {
	h := contentHash(fn)
	entry, found := m.cache.get(h)
	if !found {
		if !isEligible(fn) {
			entry = &cacheEntry{eligible: false}
		} else {
			entry = &cacheEntry{eligible: true, decoded: decode(fn)}
		}
		m.cache.put(h, entry)
	}
	if !entry.eligible {
		return Value{}, false, nil
	}
	if entry.decoded.static {
		v, err := runStatic(entry.decoded)
		return v, true, err
	}
	v, err := runDynamic(entry.decoded)
	return v, true, err
}

func runStatic(df *decodedFunction) (Value, error) {
	ins := df.fn.Instructions
	slots := make([]int64, df.fn.SlotCount)
	pc := 0
	for pc >= 0 && pc < len(ins) {
		in := ins[pc]
		switch in.Op {
		case bytecode.Nop:
			pc++
		case bytecode.LoadConst:
			slots[in.A] = df.constants[in.B]
			pc++
		case bytecode.Move:
			slots[in.A] = slots[in.B]
			pc++
		case bytecode.Unary:
			slots[in.A] = fastUnary(ir.UnaryOp(in.B), slots[in.C])
			pc++
		case bytecode.Binary, bytecode.BinaryInt:
			slots[in.A] = fastBinary(ir.BinaryOp(in.B), slots[in.C], slots[in.D])
			pc++
		case bytecode.BinaryIntConstRight:
			slots[in.A] = fastBinary(ir.BinaryOp(in.B), slots[in.C], df.constants[in.D])
			pc++
		case bytecode.Cast:
			slots[in.A] = fastCast(slots[in.B], ir.Type(in.C))
			pc++
		case bytecode.Jump:
			pc = int(in.A)
		case bytecode.JumpIfTrue:
			if slots[in.A] != 0 {
				pc = int(in.B)
			} else {
				pc++
			}
		case bytecode.JumpIfFalse:
			if slots[in.A] == 0 {
				pc = int(in.B)
			} else {
				pc++
			}
		case bytecode.JumpIfBinaryIntTrue:
			if fastBinary(ir.BinaryOp(in.A), slots[in.B], slots[in.C]) != 0 {
				pc = int(in.D)
			} else {
				pc++
			}
		case bytecode.JumpIfBinaryIntConstRightTrue:
			if fastBinary(ir.BinaryOp(in.A), slots[in.B], df.constants[in.C]) != 0 {
				pc = int(in.D)
			} else {
				pc++
			}
		case bytecode.Return:
			if in.A == bytecode.NoSlot {
				return NullValue(), nil
			}
			return boxStatic(slots[in.A], df.retType), nil
		default:
			return Value{}, fmt.Errorf("%w: %s", ErrUnsupportedOpcode, in.Op)
		}
	}
	return NullValue(), nil
}

func boxStatic(v int64, t ir.Type) Value {
	switch t {
	case ir.Bool:
		return BoolValue(v != 0)
	case ir.Char:
		return CharValue(rune(v))
	default:
		return IntValue(v)
	}
}

// runDynamic is the dynamic-bool fast-path interpreter (§4.4.1): a parallel
// bool array tags whether each slot's current value is logically boolean,
// so Return can box it correctly without a statically known return type.
func runDynamic(df *decodedFunction) (Value, error) {
	ins := df.fn.Instructions
	n := df.fn.SlotCount
	slots := make([]int64, n)
	tags := make([]bool, n)
	pc := 0
	for pc >= 0 && pc < len(ins) {
		in := ins[pc]
		switch in.Op {
		case bytecode.Nop:
			pc++
		case bytecode.LoadConst:
			slots[in.A] = df.constants[in.B]
			tags[in.A] = df.constBool[in.B]
			pc++
		case bytecode.Move:
			slots[in.A] = slots[in.B]
			tags[in.A] = tags[in.B]
			pc++
		case bytecode.Unary:
			op := ir.UnaryOp(in.B)
			slots[in.A] = fastUnary(op, slots[in.C])
			switch op {
			case ir.LogicalNot:
				tags[in.A] = true
			case ir.Identity:
				tags[in.A] = tags[in.C]
			default:
				tags[in.A] = false
			}
			pc++
		case bytecode.Binary, bytecode.BinaryInt:
			op := ir.BinaryOp(in.B)
			slots[in.A] = fastBinary(op, slots[in.C], slots[in.D])
			tags[in.A] = op.IsComparison() || op.IsLogical()
			pc++
		case bytecode.BinaryIntConstRight:
			op := ir.BinaryOp(in.B)
			slots[in.A] = fastBinary(op, slots[in.C], df.constants[in.D])
			tags[in.A] = op.IsComparison() || op.IsLogical()
			pc++
		case bytecode.Cast:
			target := ir.Type(in.C)
			slots[in.A] = fastCast(slots[in.B], target)
			tags[in.A] = target == ir.Bool
			pc++
		case bytecode.Jump:
			pc = int(in.A)
		case bytecode.JumpIfTrue:
			if slots[in.A] != 0 {
				pc = int(in.B)
			} else {
				pc++
			}
		case bytecode.JumpIfFalse:
			if slots[in.A] == 0 {
				pc = int(in.B)
			} else {
				pc++
			}
		case bytecode.JumpIfBinaryIntTrue:
			if fastBinary(ir.BinaryOp(in.A), slots[in.B], slots[in.C]) != 0 {
				pc = int(in.D)
			} else {
				pc++
			}
		case bytecode.JumpIfBinaryIntConstRightTrue:
			if fastBinary(ir.BinaryOp(in.A), slots[in.B], df.constants[in.C]) != 0 {
				pc = int(in.D)
			} else {
				pc++
			}
		case bytecode.Return:
			if in.A == bytecode.NoSlot {
				return NullValue(), nil
			}
			if tags[in.A] {
				return BoolValue(slots[in.A] != 0), nil
			}
			return IntValue(slots[in.A]), nil
		default:
			return Value{}, fmt.Errorf("%w: %s", ErrUnsupportedOpcode, in.Op)
		}
	}
	return NullValue(), nil
}
