// Copyright 2026 The Oaf Authors
// This file is part of Oaf.

package ir

// Optimize runs the per-function optimization pipeline to a fixed point:
// constant folding, copy propagation, dead-store elimination, and dead-
// temporary elimination, repeated in rounds until a round changes nothing,
// with at least three rounds and at most maxOptimizePasses (§4.2).
func Optimize(mod *Module) {
	for _, fn := range mod.Functions {
		optimizeFunction(fn)
	}
}

// maxOptimizePasses bounds the fixed-point loop; in practice the pipeline
// converges in a handful of passes, but a hard cap keeps a pathological
// oscillation from looping forever.
const maxOptimizePasses = 32

func optimizeFunction(fn *Function) {
	for pass := 1; pass <= maxOptimizePasses; pass++ {
		changed := false
		changed = foldConstants(fn) || changed
		changed = propagateCopies(fn) || changed
		changed = eliminateDeadStores(fn) || changed
		changed = eliminateDeadTemporaries(fn) || changed
		if !changed && pass >= 3 {
			return
		}
	}
}

// ---- constant folding ----

func foldConstants(fn *Function) bool {
	changed := false
	for _, b := range fn.Blocks {
		for i, instr := range b.Instrs {
			switch in := instr.(type) {
			case *Unary:
				if c, ok := in.X.(*Constant); ok {
					if folded, ok := foldUnary(in.Op, c); ok {
						b.Instrs[i] = &Assign{Dst: in.Dst, Src: folded}
						changed = true
					}
				}
			case *Binary:
				cx, okx := in.X.(*Constant)
				cy, oky := in.Y.(*Constant)
				if okx && oky {
					if folded, ok := foldBinary(in.Op, cx, cy); ok {
						b.Instrs[i] = &Assign{Dst: in.Dst, Src: folded}
						changed = true
					}
				}
			}
		}
		if t, ok := b.Terminator(); ok {
			if br, ok := t.(*Branch); ok {
				if c, ok := br.Cond.(*Constant); ok {
					if bv, ok := c.Payload.(bool); ok {
						label := br.FalseLabel
						if bv {
							label = br.TrueLabel
						}
						b.Instrs[len(b.Instrs)-1] = &Jump{Label: label}
						changed = true
					}
				}
			}
		}
	}
	return changed
}

func foldUnary(op UnaryOp, c *Constant) (*Constant, bool) {
	switch op {
	case Negate:
		switch v := c.Payload.(type) {
		case int64:
			return &Constant{Typ: c.Typ, Payload: -v}, true
		case float64:
			return &Constant{Typ: c.Typ, Payload: -v}, true
		}
	case LogicalNot:
		if v, ok := c.Payload.(bool); ok {
			return &Constant{Typ: Bool, Payload: !v}, true
		}
	case BitwiseNot:
		if v, ok := c.Payload.(int64); ok {
			return &Constant{Typ: c.Typ, Payload: ^v}, true
		}
	}
	return nil, false
}

func foldBinary(op BinaryOp, x, y *Constant) (*Constant, bool) {
	xi, xIsInt := x.Payload.(int64)
	yi, yIsInt := y.Payload.(int64)
	if xIsInt && yIsInt {
		switch op {
		case Add:
			return &Constant{Typ: Int, Payload: xi + yi}, true
		case Sub:
			return &Constant{Typ: Int, Payload: xi - yi}, true
		case Mul:
			return &Constant{Typ: Int, Payload: xi * yi}, true
		case Div:
			if yi == 0 {
				return nil, false
			}
			return &Constant{Typ: Int, Payload: xi / yi}, true
		case Mod:
			if yi == 0 {
				return nil, false
			}
			return &Constant{Typ: Int, Payload: xi % yi}, true
		case Shl:
			return &Constant{Typ: Int, Payload: xi << uint(yi)}, true
		case Shr:
			return &Constant{Typ: Int, Payload: xi >> uint(yi)}, true
		case BitAnd:
			return &Constant{Typ: Int, Payload: xi & yi}, true
		case BitOr:
			return &Constant{Typ: Int, Payload: xi | yi}, true
		case BitXor:
			return &Constant{Typ: Int, Payload: xi ^ yi}, true
		case Lt:
			return &Constant{Typ: Bool, Payload: xi < yi}, true
		case Le:
			return &Constant{Typ: Bool, Payload: xi <= yi}, true
		case Gt:
			return &Constant{Typ: Bool, Payload: xi > yi}, true
		case Ge:
			return &Constant{Typ: Bool, Payload: xi >= yi}, true
		case Eq:
			return &Constant{Typ: Bool, Payload: xi == yi}, true
		case Ne:
			return &Constant{Typ: Bool, Payload: xi != yi}, true
		}
	}

	xb, xIsBool := x.Payload.(bool)
	yb, yIsBool := y.Payload.(bool)
	if xIsBool && yIsBool {
		switch op {
		case LogicalAnd:
			return &Constant{Typ: Bool, Payload: xb && yb}, true
		case LogicalOr:
			return &Constant{Typ: Bool, Payload: xb || yb}, true
		case LogicalXor:
			return &Constant{Typ: Bool, Payload: xb != yb}, true
		case LogicalXand:
			return &Constant{Typ: Bool, Payload: xb == yb}, true
		case Eq:
			return &Constant{Typ: Bool, Payload: xb == yb}, true
		case Ne:
			return &Constant{Typ: Bool, Payload: xb != yb}, true
		}
	}
	return nil, false
}

// ---- copy propagation ----

// propagateCopies replaces uses of a Variable/Temporary that was last
// assigned directly from another Value with that Value, detecting and
// refusing to propagate through assignment cycles (a = b; b = a;).
func propagateCopies(fn *Function) bool {
	changed := false
	for _, b := range fn.Blocks {
		copyOf := map[string]Value{}
		for i, instr := range b.Instrs {
			assign, ok := instr.(*Assign)
			if !ok {
				for _, v := range instr.Reads() {
					if repl, ok := resolveCopy(copyOf, v, map[string]bool{}); ok && repl != v {
						replaceRead(b.Instrs[i], v, repl)
						changed = true
					}
				}
				if d, ok := instr.Def(); ok {
					delete(copyOf, d.String())
				}
				continue
			}

			if repl, ok := resolveCopy(copyOf, assign.Src, map[string]bool{}); ok && repl != assign.Src {
				assign.Src = repl
				changed = true
			}

			dstKey := assign.Dst.String()
			switch assign.Src.(type) {
			case *Variable, *Temporary, *Constant:
				if assign.Src.String() != dstKey {
					copyOf[dstKey] = assign.Src
				} else {
					delete(copyOf, dstKey)
				}
			default:
				delete(copyOf, dstKey)
			}
			for k, v := range copyOf {
				if v.String() == dstKey && k != dstKey {
					delete(copyOf, k)
				}
			}
		}
	}
	return changed
}

func resolveCopy(copyOf map[string]Value, v Value, seen map[string]bool) (Value, bool) {
	switch v.(type) {
	case *Variable, *Temporary:
	default:
		return v, false
	}
	key := v.String()
	if seen[key] {
		return v, false
	}
	seen[key] = true
	next, ok := copyOf[key]
	if !ok {
		return v, false
	}
	if deeper, ok := resolveCopy(copyOf, next, seen); ok {
		return deeper, true
	}
	return next, true
}

func replaceRead(instr Instr, old, new Value) {
	switch in := instr.(type) {
	case *Unary:
		if in.X == old {
			in.X = new
		}
	case *Binary:
		if in.X == old {
			in.X = new
		}
		if in.Y == old {
			in.Y = new
		}
	case *Cast:
		if in.Src == old {
			in.Src = new
		}
	case *Print:
		if in.X == old {
			in.X = new
		}
	case *ArrayCreate:
		if in.Length == old {
			in.Length = new
		}
	case *ArrayGet:
		if in.Arr == old {
			in.Arr = new
		}
		if in.Idx == old {
			in.Idx = new
		}
	case *ArraySet:
		if in.Arr == old {
			in.Arr = new
		}
		if in.Idx == old {
			in.Idx = new
		}
		if in.Val == old {
			in.Val = new
		}
	case *ParallelForBegin:
		if in.Count == old {
			in.Count = new
		}
	case *ParallelReduceAdd:
		if in.Contribution == old {
			in.Contribution = new
		}
	case *Branch:
		if in.Cond == old {
			in.Cond = new
		}
	case *Return:
		if in.Value == old {
			in.Value = new
		}
	case *Throw:
		if in.Err == old {
			in.Err = new
		}
		if in.Detail == old {
			in.Detail = new
		}
	}
}

// ---- dead-store elimination ----

// eliminateDeadStores computes backward liveness of variables per function
// (live-out of a block is the union of live-in of its successors, plus the
// textual next block when the block is unterminated, iterated to a fixed
// point) and removes Assign/Binary/Unary/Cast instructions whose
// destination is a Variable that is dead immediately after the instruction
// and has no side effects beyond the store itself. A ParallelReduceAdd adds
// into its target's current value, so it counts as a read of the target.
func eliminateDeadStores(fn *Function) bool {
	liveIn := make([]map[string]bool, len(fn.Blocks))
	liveOut := make([]map[string]bool, len(fn.Blocks))
	for i := range fn.Blocks {
		liveIn[i] = map[string]bool{}
		liveOut[i] = map[string]bool{}
	}

	for {
		stable := true
		for i := len(fn.Blocks) - 1; i >= 0; i-- {
			b := fn.Blocks[i]
			out := map[string]bool{}
			succs := b.Successors()
			if !b.Terminated() && i+1 < len(fn.Blocks) {
				succs = append(succs, fn.Blocks[i+1].Label)
			}
			for _, succLabel := range succs {
				if j := fn.BlockIndex(succLabel); j >= 0 {
					for k := range liveIn[j] {
						out[k] = true
					}
				}
			}
			in := map[string]bool{}
			for k := range out {
				in[k] = true
			}
			for j := len(b.Instrs) - 1; j >= 0; j-- {
				instr := b.Instrs[j]
				if d, ok := instr.Def(); ok {
					if v, ok := d.(*Variable); ok {
						delete(in, v.Name)
					}
				}
				for _, r := range instr.Reads() {
					if v, ok := r.(*Variable); ok {
						in[v.Name] = true
					}
				}
				if red, ok := instr.(*ParallelReduceAdd); ok {
					if v, ok := red.Target.(*Variable); ok {
						in[v.Name] = true
					}
				}
			}
			if !mapsEqual(in, liveIn[i]) || !mapsEqual(out, liveOut[i]) {
				stable = false
			}
			liveIn[i] = in
			liveOut[i] = out
		}
		if stable {
			break
		}
	}

	changed := false
	for i, b := range fn.Blocks {
		live := map[string]bool{}
		for k := range liveOut[i] {
			live[k] = true
		}
		kept := make([]Instr, 0, len(b.Instrs))
		for j := len(b.Instrs) - 1; j >= 0; j-- {
			instr := b.Instrs[j]
			if removable, v := deadStoreCandidate(instr); removable {
				if !live[v.Name] {
					changed = true
					continue
				}
			}
			if d, ok := instr.Def(); ok {
				if v, ok := d.(*Variable); ok {
					delete(live, v.Name)
				}
			}
			for _, r := range instr.Reads() {
				if v, ok := r.(*Variable); ok {
					live[v.Name] = true
				}
			}
			if red, ok := instr.(*ParallelReduceAdd); ok {
				if v, ok := red.Target.(*Variable); ok {
					live[v.Name] = true
				}
			}
			kept = append(kept, instr)
		}
		for l, r := 0, len(kept)-1; l < r; l, r = l+1, r-1 {
			kept[l], kept[r] = kept[r], kept[l]
		}
		b.Instrs = kept
	}
	return changed
}

// deadStoreCandidate reports whether instr is an Assign/Binary/Unary/Cast
// writing a Variable (and therefore removable if that Variable turns out
// dead). Instructions with Variable destinations already carry
// HasSideEffects()==true per the source-of-truth rule (§3); removal here
// is specifically about stores that are provably never read, not a
// relaxation of that rule.
func deadStoreCandidate(instr Instr) (bool, *Variable) {
	switch in := instr.(type) {
	case *Assign:
		if v, ok := in.Dst.(*Variable); ok {
			return true, v
		}
	case *Binary:
		if v, ok := in.Dst.(*Variable); ok {
			return true, v
		}
	case *Unary:
		if v, ok := in.Dst.(*Variable); ok {
			return true, v
		}
	case *Cast:
		if v, ok := in.Dst.(*Variable); ok {
			return true, v
		}
	}
	return false, nil
}

func mapsEqual(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

// ---- dead-temporary elimination ----

// eliminateDeadTemporaries removes side-effect-free instructions that
// define a Temporary read nowhere in the function. The set of read
// temporaries is collected once, before any removal, so a definition whose
// only reader is removed in this call is removed in a later round of
// Optimize rather than in the same call.
func eliminateDeadTemporaries(fn *Function) bool {
	used := map[string]bool{}
	for _, b := range fn.Blocks {
		for _, instr := range b.Instrs {
			for _, r := range instr.Reads() {
				if t, ok := r.(*Temporary); ok {
					used[t.Name] = true
				}
			}
		}
		if t, ok := b.Terminator(); ok {
			for _, r := range t.Reads() {
				if tmp, ok := r.(*Temporary); ok {
					used[tmp.Name] = true
				}
			}
		}
	}

	changed := false
	for _, b := range fn.Blocks {
		kept := make([]Instr, 0, len(b.Instrs))
		for j := len(b.Instrs) - 1; j >= 0; j-- {
			instr := b.Instrs[j]
			if d, ok := instr.Def(); ok {
				if t, ok := d.(*Temporary); ok && !instr.HasSideEffects() && !used[t.Name] {
					changed = true
					continue
				}
			}
			kept = append(kept, instr)
		}
		for l, r := 0, len(kept)-1; l < r; l, r = l+1, r-1 {
			kept[l], kept[r] = kept[r], kept[l]
		}
		b.Instrs = kept
	}
	return changed
}
