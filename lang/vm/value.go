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
	"strconv"
)

// epsilon is the tolerance used for numeric equality and truthiness of a
// non-bool, non-string value (§4.4.2).
const epsilon = 1e-9

// Kind is the tag of a boxed Value.
type Kind int

const (
	Null Kind = iota
	Bool
	Int
	Float
	Char
	String
	Array
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	case Char:
		return "char"
	case String:
		return "string"
	case Array:
		return "array"
	default:
		return "?"
	}
}

// Value is the generic interpreter's opaque boxed value (§4.4.2): exactly
// one of Null, Bool, Int, Float, Char, String, or Array. Bool and Char share
// the I field with Int (0/1 for Bool, code point for Char) to avoid an extra
// field per kind.
type Value struct {
	Kind Kind
	I    int64
	F    float64
	Str  string
	Arr  []Value
}

func NullValue() Value          { return Value{Kind: Null} }
func BoolValue(b bool) Value    { v := Value{Kind: Bool}; if b { v.I = 1 }; return v }
func IntValue(i int64) Value    { return Value{Kind: Int, I: i} }
func FloatValue(f float64) Value { return Value{Kind: Float, F: f} }
func CharValue(r rune) Value    { return Value{Kind: Char, I: int64(r)} }
func StringValue(s string) Value { return Value{Kind: String, Str: s} }
func ArrayValue(a []Value) Value { return Value{Kind: Array, Arr: a} }

// ToLong coerces v to an i64 per §4.4.2.
func (v Value) ToLong() (int64, error) {
	switch v.Kind {
	case Null:
		return 0, nil
	case Bool, Int, Char:
		return v.I, nil
	case Float:
		return int64(v.F), nil
	default:
		return 0, fmt.Errorf("cannot convert %s to integer", v.Kind)
	}
}

// ToDouble coerces v to an f64 per §4.4.2.
func (v Value) ToDouble() (float64, error) {
	switch v.Kind {
	case Null:
		return 0, nil
	case Bool, Int, Char:
		return float64(v.I), nil
	case Float:
		return v.F, nil
	case String:
		f, err := strconv.ParseFloat(v.Str, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot convert %q to a number", v.Str)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("cannot convert %s to a number", v.Kind)
	}
}

// ToBool coerces v to a bool per §4.4.2.
func (v Value) ToBool() bool {
	switch v.Kind {
	case Null:
		return false
	case Bool:
		return v.I != 0
	case String:
		return v.Str != ""
	default:
		d, err := v.ToDouble()
		if err != nil {
			return false
		}
		return math.Abs(d) > epsilon
	}
}

// Text renders v's textual representation, as used by Print, string
// concatenation, and Cast-to-String (§4.4.2).
func (v Value) Text() string {
	switch v.Kind {
	case Null:
		return "null"
	case Bool:
		if v.I != 0 {
			return "true"
		}
		return "false"
	case Int:
		return strconv.FormatInt(v.I, 10)
	case Char:
		return string(rune(v.I))
	case Float:
		return strconv.FormatFloat(v.F, 'g', -1, 64)
	case String:
		return v.Str
	case Array:
		return fmt.Sprintf("[array len=%d]", len(v.Arr))
	default:
		return ""
	}
}

func isNumericKind(k Kind) bool {
	return k == Int || k == Float || k == Bool || k == Char
}

// valuesEqual implements §4.4.2's equality rule: numeric-equals within
// epsilon when both sides are numeric, otherwise structural equality. This
// resolves the Open Question on mixed Int/Bool equality in favor of
// numeric-equals (documented in DESIGN.md).
func valuesEqual(a, b Value) bool {
	if isNumericKind(a.Kind) && isNumericKind(b.Kind) {
		da, _ := a.ToDouble()
		db, _ := b.ToDouble()
		return math.Abs(da-db) < epsilon
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case Null:
		return true
	case String:
		return a.Str == b.Str
	case Array:
		return false
	default:
		return a.I == b.I && a.F == b.F
	}
}
