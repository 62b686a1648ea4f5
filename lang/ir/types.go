// Copyright 2026 The Oaf Authors
// This file is part of Oaf.

// Package ir defines the CFG-IR data model (types, values, instructions,
// basic blocks, functions, modules), the AST-to-IR Lowerer, and the
// per-function optimization pipeline.
package ir

// Type is the closed variant of IR value types.
type Type int

const (
	Void Type = iota
	Int
	Float
	Bool
	Char
	String
	Unknown
)

func (t Type) String() string {
	switch t {
	case Void:
		return "void"
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case Char:
		return "char"
	case String:
		return "string"
	default:
		return "unknown"
	}
}

// IsIntegerLike reports whether t is one of the integer-like kinds: Int,
// Char, Bool.
func (t Type) IsIntegerLike() bool {
	return t == Int || t == Char || t == Bool
}

// TypeFromName maps a surface type name (as written in a declared-type
// annotation) to its IR type. Unrecognized names, including aggregate and
// enum type names, collapse to Unknown; aggregate fields are expanded into
// flat per-field variables by the Lowerer rather than represented as a
// distinct IR type.
func TypeFromName(name string) Type {
	switch name {
	case "Int":
		return Int
	case "Float":
		return Float
	case "Bool":
		return Bool
	case "Char":
		return Char
	case "String":
		return String
	case "Void", "":
		return Void
	default:
		return Unknown
	}
}
