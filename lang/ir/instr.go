// Copyright 2026 The Oaf Authors
// This file is part of Oaf.

package ir

import "fmt"

// Instr is the closed variant of IR instructions. Each concrete variant
// below declares its own terminator-ness, side-effect flag, read operands,
// and defined destination (if any), replacing the source's class hierarchy
// with a single tagged interface per spec.md §9.
type Instr interface {
	IsTerminator() bool
	HasSideEffects() bool
	Reads() []Value
	Def() (Value, bool)
	String() string
}

func isVariable(v Value) bool {
	_, ok := v.(*Variable)
	return ok
}

func nonNil(vs ...Value) []Value {
	var out []Value
	for _, v := range vs {
		if v != nil {
			out = append(out, v)
		}
	}
	return out
}

// ---- Non-terminators ----

// Assign is `dst = src`.
type Assign struct {
	Dst Value
	Src Value
}

func (i *Assign) IsTerminator() bool    { return false }
func (i *Assign) HasSideEffects() bool  { return isVariable(i.Dst) }
func (i *Assign) Reads() []Value        { return nonNil(i.Src) }
func (i *Assign) Def() (Value, bool)    { return i.Dst, true }
func (i *Assign) String() string {
	return fmt.Sprintf("%s = %s", i.Dst, i.Src)
}

// Unary is `dst = op x`.
type Unary struct {
	Dst Value
	Op  UnaryOp
	X   Value
}

func (i *Unary) IsTerminator() bool   { return false }
func (i *Unary) HasSideEffects() bool { return isVariable(i.Dst) }
func (i *Unary) Reads() []Value       { return nonNil(i.X) }
func (i *Unary) Def() (Value, bool)   { return i.Dst, true }
func (i *Unary) String() string {
	return fmt.Sprintf("%s = %s %s", i.Dst, i.Op, i.X)
}

// Binary is `dst = x op y`.
type Binary struct {
	Dst Value
	Op  BinaryOp
	X   Value
	Y   Value
}

func (i *Binary) IsTerminator() bool   { return false }
func (i *Binary) HasSideEffects() bool { return isVariable(i.Dst) }
func (i *Binary) Reads() []Value       { return nonNil(i.X, i.Y) }
func (i *Binary) Def() (Value, bool)   { return i.Dst, true }
func (i *Binary) String() string {
	return fmt.Sprintf("%s = %s %s %s", i.Dst, i.X, i.Op, i.Y)
}

// IntegerSpecializable reports whether this Binary qualifies for integer
// specialization per §4.3: both operands integer-like.
func (i *Binary) IntegerSpecializable() bool {
	return i.X.Type().IsIntegerLike() && i.Y.Type().IsIntegerLike() && i.Op.IsIntegerSpecializable()
}

// Cast is `dst = src as targetType`.
type Cast struct {
	Dst        Value
	Src        Value
	TargetType Type
}

func (i *Cast) IsTerminator() bool   { return false }
func (i *Cast) HasSideEffects() bool { return isVariable(i.Dst) }
func (i *Cast) Reads() []Value       { return nonNil(i.Src) }
func (i *Cast) Def() (Value, bool)   { return i.Dst, true }
func (i *Cast) String() string {
	return fmt.Sprintf("%s = cast(%s, %s)", i.Dst, i.Src, i.TargetType)
}

// Print writes the textual representation of X followed by a newline.
type Print struct {
	X Value
}

func (i *Print) IsTerminator() bool   { return false }
func (i *Print) HasSideEffects() bool { return true }
func (i *Print) Reads() []Value       { return nonNil(i.X) }
func (i *Print) Def() (Value, bool)   { return nil, false }
func (i *Print) String() string       { return fmt.Sprintf("print %s", i.X) }

// ArrayCreate is `dst = newarray(length)`.
type ArrayCreate struct {
	Dst    Value
	Length Value
}

func (i *ArrayCreate) IsTerminator() bool   { return false }
func (i *ArrayCreate) HasSideEffects() bool { return isVariable(i.Dst) }
func (i *ArrayCreate) Reads() []Value       { return nonNil(i.Length) }
func (i *ArrayCreate) Def() (Value, bool)   { return i.Dst, true }
func (i *ArrayCreate) String() string {
	return fmt.Sprintf("%s = newarray(%s)", i.Dst, i.Length)
}

// ArrayGet is `dst = arr[idx]`.
type ArrayGet struct {
	Dst Value
	Arr Value
	Idx Value
}

func (i *ArrayGet) IsTerminator() bool   { return false }
func (i *ArrayGet) HasSideEffects() bool { return isVariable(i.Dst) }
func (i *ArrayGet) Reads() []Value       { return nonNil(i.Arr, i.Idx) }
func (i *ArrayGet) Def() (Value, bool)   { return i.Dst, true }
func (i *ArrayGet) String() string {
	return fmt.Sprintf("%s = %s[%s]", i.Dst, i.Arr, i.Idx)
}

// ArraySet is `arr[idx] = val`. Always has side effects: it stores to the
// heap array.
type ArraySet struct {
	Arr Value
	Idx Value
	Val Value
}

func (i *ArraySet) IsTerminator() bool   { return false }
func (i *ArraySet) HasSideEffects() bool { return true }
func (i *ArraySet) Reads() []Value       { return nonNil(i.Arr, i.Idx, i.Val) }
func (i *ArraySet) Def() (Value, bool)   { return nil, false }
func (i *ArraySet) String() string {
	return fmt.Sprintf("%s[%s] = %s", i.Arr, i.Idx, i.Val)
}

// ParallelForBegin opens a counted parallel loop (§4.1.1).
type ParallelForBegin struct {
	Count   Value
	IterVar Value
}

func (i *ParallelForBegin) IsTerminator() bool   { return false }
func (i *ParallelForBegin) HasSideEffects() bool { return true }
func (i *ParallelForBegin) Reads() []Value       { return nonNil(i.Count) }
func (i *ParallelForBegin) Def() (Value, bool)   { return nil, false }
func (i *ParallelForBegin) String() string {
	return fmt.Sprintf("parallel_for_begin %s, %s", i.Count, i.IterVar)
}

// ParallelForEnd closes the matching ParallelForBegin.
type ParallelForEnd struct{}

func (i *ParallelForEnd) IsTerminator() bool   { return false }
func (i *ParallelForEnd) HasSideEffects() bool { return true }
func (i *ParallelForEnd) Reads() []Value       { return nil }
func (i *ParallelForEnd) Def() (Value, bool)   { return nil, false }
func (i *ParallelForEnd) String() string       { return "parallel_for_end" }

// ParallelReduceAdd is the sole sanctioned cross-iteration write inside a
// counted parallel loop: `target += contribution`, merged after all
// iterations complete.
type ParallelReduceAdd struct {
	Target       Value
	Contribution Value
}

func (i *ParallelReduceAdd) IsTerminator() bool   { return false }
func (i *ParallelReduceAdd) HasSideEffects() bool { return true }
func (i *ParallelReduceAdd) Reads() []Value       { return nonNil(i.Contribution) }
func (i *ParallelReduceAdd) Def() (Value, bool)   { return i.Target, true }
func (i *ParallelReduceAdd) String() string {
	return fmt.Sprintf("%s += %s (reduce)", i.Target, i.Contribution)
}

// ---- Terminators ----

// Branch transfers control to TrueLabel or FalseLabel depending on Cond.
type Branch struct {
	Cond       Value
	TrueLabel  string
	FalseLabel string
}

func (i *Branch) IsTerminator() bool   { return true }
func (i *Branch) HasSideEffects() bool { return true }
func (i *Branch) Reads() []Value       { return nonNil(i.Cond) }
func (i *Branch) Def() (Value, bool)   { return nil, false }
func (i *Branch) String() string {
	return fmt.Sprintf("branch %s ? %s : %s", i.Cond, i.TrueLabel, i.FalseLabel)
}

// Jump unconditionally transfers control to Label.
type Jump struct {
	Label string
}

func (i *Jump) IsTerminator() bool   { return true }
func (i *Jump) HasSideEffects() bool { return true }
func (i *Jump) Reads() []Value       { return nil }
func (i *Jump) Def() (Value, bool)   { return nil, false }
func (i *Jump) String() string       { return fmt.Sprintf("jump %s", i.Label) }

// Return halts execution with success and an optional value.
type Return struct {
	Value Value
}

func (i *Return) IsTerminator() bool   { return true }
func (i *Return) HasSideEffects() bool { return true }
func (i *Return) Reads() []Value       { return nonNil(i.Value) }
func (i *Return) Def() (Value, bool)   { return nil, false }
func (i *Return) String() string {
	if i.Value == nil {
		return "return"
	}
	return fmt.Sprintf("return %s", i.Value)
}

// Throw halts execution with an error and optional detail value.
type Throw struct {
	Err    Value
	Detail Value
}

func (i *Throw) IsTerminator() bool   { return true }
func (i *Throw) HasSideEffects() bool { return true }
func (i *Throw) Reads() []Value       { return nonNil(i.Err, i.Detail) }
func (i *Throw) Def() (Value, bool)   { return nil, false }
func (i *Throw) String() string {
	return fmt.Sprintf("throw %s, %s", i.Err, i.Detail)
}
