// Copyright 2026 The Oaf Authors
// This file is part of Oaf.

package bytecode

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/oaflang/oaf/lang/ir"
)

// Generator translates an optimized IR module into a Program. One Generator
// is used per Generate call; per-function state is reset between functions.
type Generator struct {
	slots       map[string]int32
	nextSlot    int32
	constIdx    map[uint64][]constEntry
	constants   []Constant
	labelOffset map[string]int
	fixups      []fixup
	pendingEnds []int // instruction indices of open ParallelForBegin, LIFO
}

type constEntry struct {
	kind    ir.Type
	payload interface{}
	index   int
}

type fixup struct {
	instrIndex int
	field      int // 0=A 1=B 2=C 3=D
	label      string
}

// Generate compiles every function of mod into a Program. The first
// function in mod becomes the program's entry function, per §6.
func Generate(mod *ir.Module) (*Program, error) {
	prog := &Program{}
	for _, fn := range mod.Functions {
		g := &Generator{
			slots:       map[string]int32{},
			constIdx:    map[uint64][]constEntry{},
			labelOffset: map[string]int{},
		}
		compiled, err := g.generateFunction(fn)
		if err != nil {
			return nil, fmt.Errorf("bytecode: function %s: %w", fn.Name, err)
		}
		prog.Functions = append(prog.Functions, compiled)
	}
	if len(prog.Functions) > 0 {
		prog.EntryFunctionName = prog.Functions[0].Name
	}
	return prog, nil
}

func (g *Generator) generateFunction(fn *ir.Function) (*Function, error) {
	out := &Function{Name: fn.Name}
	var instrs []Instruction

	for _, b := range fn.Blocks {
		g.labelOffset[b.Label] = len(instrs)
		for _, in := range b.Instrs {
			if err := g.lowerInstr(in, &instrs); err != nil {
				return nil, err
			}
		}
	}

	for _, fx := range g.fixups {
		target, ok := g.labelOffset[fx.label]
		if !ok {
			target = len(instrs)
		}
		setOperand(&instrs[fx.instrIndex], fx.field, int32(target))
	}

	out.Instructions = instrs
	out.Constants = g.constants
	out.SlotCount = int(g.nextSlot)
	out.ReturnType, out.ReturnTypeKnown = inferReturnType(fn)

	Peephole(out)
	return out, nil
}

func setOperand(in *Instruction, field int, v int32) {
	switch field {
	case 0:
		in.A = v
	case 1:
		in.B = v
	case 2:
		in.C = v
	case 3:
		in.D = v
	}
}

// inferReturnType scans every Return in fn; if all returns carry an Int-,
// Bool-, or Char-typed value (never mixed, never Unknown; void returns are
// allowed alongside any one of them), it records that single type (§4.3,
// §4.4.1).
func inferReturnType(fn *ir.Function) (ir.Type, bool) {
	seen := ir.Void
	has := false
	for _, b := range fn.Blocks {
		term, ok := b.Terminator()
		if !ok {
			continue
		}
		ret, ok := term.(*ir.Return)
		if !ok {
			continue
		}
		if ret.Value == nil {
			continue
		}
		t := ret.Value.Type()
		if t != ir.Int && t != ir.Bool && t != ir.Char {
			return ir.Unknown, false
		}
		if has && t != seen {
			return ir.Unknown, false
		}
		seen, has = t, true
	}
	if !has {
		return ir.Void, true
	}
	return seen, true
}

// ---- slot allocation ----

func (g *Generator) slotFor(v ir.Value, instrs *[]Instruction) int32 {
	switch val := v.(type) {
	case *ir.Variable:
		return g.namedSlot(val.Name)
	case *ir.Temporary:
		return g.namedSlot(val.Name)
	case *ir.Constant:
		s := g.freshSlot()
		idx := g.intern(val)
		*instrs = append(*instrs, Instruction{Op: LoadConst, A: s, B: int32(idx)})
		return s
	default:
		return g.freshSlot()
	}
}

func (g *Generator) namedSlot(name string) int32 {
	if s, ok := g.slots[name]; ok {
		return s
	}
	s := g.freshSlot()
	g.slots[name] = s
	return s
}

func (g *Generator) freshSlot() int32 {
	s := g.nextSlot
	g.nextSlot++
	return s
}

// intern interns a constant value, keyed by (IrTypeKind, stringified value)
// so identical literals share an index (§4.3).
func (g *Generator) intern(c *ir.Constant) int {
	key := fmt.Sprintf("%d:%v", c.Typ, c.Payload)
	h := xxhash.Sum64String(key)
	for _, e := range g.constIdx[h] {
		if e.kind == c.Typ && fmt.Sprintf("%v", e.payload) == fmt.Sprintf("%v", c.Payload) {
			return e.index
		}
	}
	idx := len(g.constants)
	g.constants = append(g.constants, Constant{Kind: c.Typ, Payload: c.Payload})
	g.constIdx[h] = append(g.constIdx[h], constEntry{kind: c.Typ, payload: c.Payload, index: idx})
	return idx
}

// intAsI64 reports whether a Constant's payload is representable as an i64
// for integer specialization purposes, and the value itself.
func intAsI64(c *ir.Constant) (int64, bool) {
	switch v := c.Payload.(type) {
	case int64:
		return v, true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case rune:
		return int64(v), true
	}
	return 0, false
}

// ---- instruction lowering (§4.3 opcode lowering table) ----

func (g *Generator) lowerInstr(in ir.Instr, instrs *[]Instruction) error {
	switch i := in.(type) {
	case *ir.Assign:
		if c, ok := i.Src.(*ir.Constant); ok {
			dst := g.namedOrFreshDst(i.Dst)
			idx := g.intern(c)
			*instrs = append(*instrs, Instruction{Op: LoadConst, A: dst, B: int32(idx)})
			return nil
		}
		dst := g.namedOrFreshDst(i.Dst)
		src := g.slotFor(i.Src, instrs)
		*instrs = append(*instrs, Instruction{Op: Move, A: dst, B: src})
		return nil

	case *ir.Unary:
		dst := g.namedOrFreshDst(i.Dst)
		x := g.slotFor(i.X, instrs)
		*instrs = append(*instrs, Instruction{Op: Unary, A: dst, B: int32(i.Op), C: x})
		return nil

	case *ir.Binary:
		return g.lowerBinary(i, instrs)

	case *ir.Cast:
		dst := g.namedOrFreshDst(i.Dst)
		src := g.slotFor(i.Src, instrs)
		*instrs = append(*instrs, Instruction{Op: Cast, A: dst, B: src, C: int32(i.TargetType)})
		return nil

	case *ir.Print:
		x := g.slotFor(i.X, instrs)
		*instrs = append(*instrs, Instruction{Op: Print, A: x})
		return nil

	case *ir.ArrayCreate:
		dst := g.namedOrFreshDst(i.Dst)
		length := g.slotFor(i.Length, instrs)
		*instrs = append(*instrs, Instruction{Op: ArrayCreate, A: dst, B: length})
		return nil

	case *ir.ArrayGet:
		dst := g.namedOrFreshDst(i.Dst)
		arr := g.slotFor(i.Arr, instrs)
		idx := g.slotFor(i.Idx, instrs)
		*instrs = append(*instrs, Instruction{Op: ArrayGet, A: dst, B: arr, C: idx})
		return nil

	case *ir.ArraySet:
		arr := g.slotFor(i.Arr, instrs)
		idx := g.slotFor(i.Idx, instrs)
		val := g.slotFor(i.Val, instrs)
		*instrs = append(*instrs, Instruction{Op: ArraySet, A: arr, B: idx, C: val})
		return nil

	case *ir.ParallelForBegin:
		count := g.slotFor(i.Count, instrs)
		iter := g.namedOrFreshDst(i.IterVar)
		*instrs = append(*instrs, Instruction{Op: ParallelForBegin, A: count, B: iter, C: -1})
		g.pendingEnds = append(g.pendingEnds, len(*instrs)-1)
		return nil

	case *ir.ParallelForEnd:
		endIx := len(*instrs)
		*instrs = append(*instrs, Instruction{Op: ParallelForEnd})
		if n := len(g.pendingEnds); n > 0 {
			beginIx := g.pendingEnds[n-1]
			g.pendingEnds = g.pendingEnds[:n-1]
			(*instrs)[beginIx].C = int32(endIx)
		}
		return nil

	case *ir.ParallelReduceAdd:
		target := g.slotFor(i.Target, instrs)
		contrib := g.slotFor(i.Contribution, instrs)
		*instrs = append(*instrs, Instruction{Op: ParallelReduceAdd, A: target, B: contrib})
		return nil

	case *ir.Branch:
		cond := g.slotFor(i.Cond, instrs)
		jt := len(*instrs)
		*instrs = append(*instrs, Instruction{Op: JumpIfTrue, A: cond})
		g.fixups = append(g.fixups, fixup{instrIndex: jt, field: 1, label: i.TrueLabel})
		jf := len(*instrs)
		*instrs = append(*instrs, Instruction{Op: Jump})
		g.fixups = append(g.fixups, fixup{instrIndex: jf, field: 0, label: i.FalseLabel})
		return nil

	case *ir.Jump:
		jx := len(*instrs)
		*instrs = append(*instrs, Instruction{Op: Jump})
		g.fixups = append(g.fixups, fixup{instrIndex: jx, field: 0, label: i.Label})
		return nil

	case *ir.Return:
		if i.Value == nil {
			*instrs = append(*instrs, Instruction{Op: Return, A: NoSlot})
			return nil
		}
		v := g.slotFor(i.Value, instrs)
		*instrs = append(*instrs, Instruction{Op: Return, A: v})
		return nil

	case *ir.Throw:
		errSlot := int32(NoSlot)
		detailSlot := int32(NoSlot)
		if i.Err != nil {
			errSlot = g.slotFor(i.Err, instrs)
		}
		if i.Detail != nil {
			detailSlot = g.slotFor(i.Detail, instrs)
		}
		*instrs = append(*instrs, Instruction{Op: Throw, A: errSlot, B: detailSlot})
		return nil

	default:
		return fmt.Errorf("bytecode: no lowering for IR instruction %T", in)
	}
}

// namedOrFreshDst allocates/reuses the slot for an Assign-like destination.
// Dst is always a *Variable or *Temporary per the IR model.
func (g *Generator) namedOrFreshDst(v ir.Value) int32 {
	switch val := v.(type) {
	case *ir.Variable:
		return g.namedSlot(val.Name)
	case *ir.Temporary:
		return g.namedSlot(val.Name)
	default:
		return g.freshSlot()
	}
}

func (g *Generator) lowerBinary(i *ir.Binary, instrs *[]Instruction) error {
	dst := g.namedOrFreshDst(i.Dst)

	if !i.IntegerSpecializable() {
		x := g.slotFor(i.X, instrs)
		y := g.slotFor(i.Y, instrs)
		*instrs = append(*instrs, Instruction{Op: Binary, A: dst, B: int32(i.Op), C: x, D: y})
		return nil
	}

	xc, xIsConst := i.X.(*ir.Constant)
	yc, yIsConst := i.Y.(*ir.Constant)

	if yIsConst && !xIsConst {
		if v, ok := intAsI64(yc); ok {
			x := g.slotFor(i.X, instrs)
			idx := g.internInt(yc.Typ, v)
			*instrs = append(*instrs, Instruction{Op: BinaryIntConstRight, A: dst, B: int32(i.Op), C: x, D: int32(idx)})
			return nil
		}
	}
	if xIsConst && !yIsConst && i.Op.IsCommutative() {
		if v, ok := intAsI64(xc); ok {
			y := g.slotFor(i.Y, instrs)
			idx := g.internInt(xc.Typ, v)
			*instrs = append(*instrs, Instruction{Op: BinaryIntConstRight, A: dst, B: int32(i.Op), C: y, D: int32(idx)})
			return nil
		}
	}

	x := g.slotFor(i.X, instrs)
	y := g.slotFor(i.Y, instrs)
	*instrs = append(*instrs, Instruction{Op: BinaryInt, A: dst, B: int32(i.Op), C: x, D: y})
	return nil
}

// internInt interns an integer-like constant already decoded to i64,
// reusing the same (kind, stringified value) key as intern so const-right
// integer operands share a pool slot with equal LoadConst-materialized
// constants.
func (g *Generator) internInt(kind ir.Type, v int64) int {
	return g.intern(&ir.Constant{Typ: kind, Payload: v})
}
