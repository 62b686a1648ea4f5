// Copyright 2026 The Oaf Authors
// This file is part of Oaf.

package ir

import "fmt"

// Value is the operand kind used by every instruction: exactly one of
// Constant, Variable, or Temporary.
type Value interface {
	Type() Type
	String() string
	isValue()
}

// Constant is a literal operand: null, boolean, integer, float, char, or
// string. Payload holds the corresponding Go value (nil, bool, int64,
// float64, rune, string).
type Constant struct {
	Typ     Type
	Payload interface{}
}

func (c *Constant) Type() Type { return c.Typ }

func (c *Constant) String() string {
	if c.Payload == nil {
		return "null"
	}
	return fmt.Sprintf("%v", c.Payload)
}

func (*Constant) isValue() {}

// Variable is a named mutable storage cell. Name is the qualified name
// (e.g. "total", "M.total", "p.x") that uniquely identifies the cell within
// the function; two Variables with the same Name refer to the same cell.
type Variable struct {
	Typ  Type
	Name string
}

func (v *Variable) Type() Type      { return v.Typ }
func (v *Variable) String() string  { return v.Name }
func (*Variable) isValue()          {}

// Temporary is a single-assignment intermediate, written exactly once per
// function.
type Temporary struct {
	Typ  Type
	Name string
}

func (t *Temporary) Type() Type     { return t.Typ }
func (t *Temporary) String() string { return t.Name }
func (*Temporary) isValue()         {}
