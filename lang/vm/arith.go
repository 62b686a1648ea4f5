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
	"math"

	"github.com/oaflang/oaf/lang/ir"
)

// evalUnary applies a Unary opcode to a boxed operand (generic path).
func evalUnary(op ir.UnaryOp, x Value) (Value, error) {
	switch op {
	case ir.Identity:
		return x, nil
	case ir.Negate:
		if x.Kind == Float {
			return FloatValue(-x.F), nil
		}
		n, err := x.ToLong()
		if err != nil {
			return Value{}, err
		}
		return IntValue(-n), nil
	case ir.LogicalNot:
		return BoolValue(!x.ToBool()), nil
	case ir.BitwiseNot:
		n, err := x.ToLong()
		if err != nil {
			return Value{}, err
		}
		return IntValue(^n), nil
	default:
		return Value{}, fmt.Errorf("%w: unary %s", ErrUnsupportedOpcode, op)
	}
}

// evalBinary applies a Binary opcode to boxed operands (generic path),
// per §4.4.2.
func evalBinary(op ir.BinaryOp, l, r Value) (Value, error) {
	if op == ir.Add && (l.Kind == String || r.Kind == String) {
		return StringValue(l.Text() + r.Text()), nil
	}
	if op.IsLogical() {
		lb, rb := l.ToBool(), r.ToBool()
		switch op {
		case ir.LogicalAnd:
			return BoolValue(lb && rb), nil
		case ir.LogicalOr:
			return BoolValue(lb || rb), nil
		case ir.LogicalXor:
			return BoolValue(lb != rb), nil
		default: // LogicalXand
			return BoolValue(lb == rb), nil
		}
	}
	if op == ir.Eq || op == ir.Ne {
		eq := valuesEqual(l, r)
		if op == ir.Ne {
			eq = !eq
		}
		return BoolValue(eq), nil
	}
	if op.IsComparison() {
		ld, err := l.ToDouble()
		if err != nil {
			return Value{}, err
		}
		rd, err := r.ToDouble()
		if err != nil {
			return Value{}, err
		}
		var res bool
		switch op {
		case ir.Lt:
			res = ld < rd
		case ir.Le:
			res = ld <= rd
		case ir.Gt:
			res = ld > rd
		default: // Ge
			res = ld >= rd
		}
		return BoolValue(res), nil
	}
	switch op {
	case ir.Shl, ir.Shr, ir.UShl, ir.UShr, ir.BitAnd, ir.BitOr, ir.BitXor, ir.BitXand:
		li, err := l.ToLong()
		if err != nil {
			return Value{}, err
		}
		ri, err := r.ToLong()
		if err != nil {
			return Value{}, err
		}
		return IntValue(bitwiseInt(op, li, ri)), nil
	case ir.Root:
		ld, err := l.ToDouble()
		if err != nil {
			return Value{}, err
		}
		rd, err := r.ToDouble()
		if err != nil {
			return Value{}, err
		}
		return IntValue(rootInt(ld, rd)), nil
	}
	if l.Kind == Float || r.Kind == Float {
		ld, err := l.ToDouble()
		if err != nil {
			return Value{}, err
		}
		rd, err := r.ToDouble()
		if err != nil {
			return Value{}, err
		}
		return FloatValue(arithFloat(op, ld, rd)), nil
	}
	li, err := l.ToLong()
	if err != nil {
		return Value{}, err
	}
	ri, err := r.ToLong()
	if err != nil {
		return Value{}, err
	}
	return IntValue(arithInt(op, li, ri)), nil
}

// evalCast converts v to targetType per §4.4.2.
func evalCast(v Value, target ir.Type) (Value, error) {
	switch target {
	case ir.Int:
		n, err := v.ToLong()
		if err != nil {
			return Value{}, err
		}
		return IntValue(n), nil
	case ir.Float:
		f, err := v.ToDouble()
		if err != nil {
			return Value{}, err
		}
		return FloatValue(f), nil
	case ir.Bool:
		return BoolValue(v.ToBool()), nil
	case ir.Char:
		n, err := v.ToLong()
		if err != nil {
			return Value{}, err
		}
		return CharValue(rune(n)), nil
	case ir.String:
		return StringValue(v.Text()), nil
	default:
		return Value{}, fmt.Errorf("%w: cast to %s", ErrUnsupportedOpcode, target)
	}
}

// arithInt computes two's-complement-wrapping integer arithmetic with
// 0-on-zero-divisor, the documented resolution of §9's Div/Mod Open
// Question (shared by the generic and fast paths).
func arithInt(op ir.BinaryOp, x, y int64) int64 {
	switch op {
	case ir.Add:
		return x + y
	case ir.Sub:
		return x - y
	case ir.Mul:
		return x * y
	case ir.Div:
		if y == 0 {
			return 0
		}
		return x / y
	case ir.Mod:
		if y == 0 {
			return 0
		}
		return x % y
	default:
		return 0
	}
}

// arithFloat computes IEEE-754 double arithmetic; division/modulo by zero
// is left to produce IEEE infinity/NaN, the documented resolution of §9's
// float-path half of the same Open Question.
func arithFloat(op ir.BinaryOp, x, y float64) float64 {
	switch op {
	case ir.Add:
		return x + y
	case ir.Sub:
		return x - y
	case ir.Mul:
		return x * y
	case ir.Div:
		return x / y
	case ir.Mod:
		return math.Mod(x, y)
	default:
		return 0
	}
}

func bitwiseInt(op ir.BinaryOp, x, y int64) int64 {
	shift := uint(y) & 63
	switch op {
	case ir.Shl:
		return x << shift
	case ir.Shr:
		return x >> shift
	case ir.UShl:
		return int64(uint64(x) << shift)
	case ir.UShr:
		return int64(uint64(x) >> shift)
	case ir.BitAnd:
		return x & y
	case ir.BitOr:
		return x | y
	case ir.BitXor:
		return x ^ y
	default: // BitXand: bitwise equivalence, the "xnor" reading of xand
		return ^(x ^ y)
	}
}

// rootInt is Root(a,b) = floor(a^(1/b)), computed via double approximation
// (§4.4.1). b == 0 follows the same 0-on-zero-divisor convention as Div/Mod.
func rootInt(a, b float64) int64 {
	if b == 0 {
		return 0
	}
	return int64(math.Floor(math.Pow(a, 1.0/b)))
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// fastUnary applies a Unary opcode to a raw i64 slot (fast path, §4.4.1).
func fastUnary(op ir.UnaryOp, x int64) int64 {
	switch op {
	case ir.Identity:
		return x
	case ir.Negate:
		return -x
	case ir.LogicalNot:
		return boolInt(x == 0)
	default: // BitwiseNot
		return ^x
	}
}

// fastBinary applies a Binary/BinaryInt/BinaryIntConstRight opcode to raw
// i64 operands (fast path, §4.4.1). Comparisons and logical ops use plain
// integer equality; no epsilon is needed since every fast-path value is an
// exact i64.
func fastBinary(op ir.BinaryOp, x, y int64) int64 {
	switch op {
	case ir.Add, ir.Sub, ir.Mul, ir.Div, ir.Mod:
		return arithInt(op, x, y)
	case ir.Root:
		return rootInt(float64(x), float64(y))
	case ir.Shl, ir.Shr, ir.UShl, ir.UShr, ir.BitAnd, ir.BitOr, ir.BitXor, ir.BitXand:
		return bitwiseInt(op, x, y)
	case ir.Lt:
		return boolInt(x < y)
	case ir.Le:
		return boolInt(x <= y)
	case ir.Gt:
		return boolInt(x > y)
	case ir.Ge:
		return boolInt(x >= y)
	case ir.Eq:
		return boolInt(x == y)
	case ir.Ne:
		return boolInt(x != y)
	case ir.LogicalAnd:
		return boolInt(x != 0 && y != 0)
	case ir.LogicalOr:
		return boolInt(x != 0 || y != 0)
	case ir.LogicalXor:
		return boolInt((x != 0) != (y != 0))
	default: // LogicalXand
		return boolInt((x != 0) == (y != 0))
	}
}

// fastCast converts a raw i64 slot for Cast targets {Int, Bool, Char} (the
// only targets the fast-path eligibility predicate admits).
func fastCast(v int64, target ir.Type) int64 {
	if target == ir.Bool {
		return boolInt(v != 0)
	}
	return v
}
