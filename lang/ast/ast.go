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

// Package ast defines the syntax tree the Lowerer consumes. Lexing and
// parsing are external collaborators; this package only fixes the shape of
// their output so lang/ir can walk it.
package ast

import "github.com/oaflang/oaf/lang/token"

// Node is implemented by every AST node.
type Node interface {
	Pos() token.Position
	node()
}

// Statement is a top-level or block-level statement.
type Statement interface {
	Node
	statementNode()
}

// Expression produces a value.
type Expression interface {
	Node
	expressionNode()
}

// Declaration is a type declaration (struct/class/enum) or module/import
// directive; all are statements too, lowered as no-ops or layout interning.
type Declaration interface {
	Statement
	declarationNode()
}

type base struct {
	pos token.Position
}

func (b base) Pos() token.Position { return b.pos }
func (base) node()                 {}

// Program is the root node: an ordered list of top-level statements.
type Program struct {
	base
	Statements []Statement
}

func NewProgram(pos token.Position, stmts []Statement) *Program {
	return &Program{base: base{pos}, Statements: stmts}
}

// ---- Declarations ----

// ModuleDecl is `module M;`.
type ModuleDecl struct {
	base
	Name string
}

func (*ModuleDecl) statementNode()  {}
func (*ModuleDecl) declarationNode() {}

// ImportDecl is `import M;`.
type ImportDecl struct {
	base
	Name string
}

func (*ImportDecl) statementNode()  {}
func (*ImportDecl) declarationNode() {}

// FieldDecl is one field of a struct/class body.
type FieldDecl struct {
	Name string
	Type string
}

// AggregateKind distinguishes struct from class declarations; the Lowerer
// treats both identically as aggregate layouts.
type AggregateKind int

const (
	StructKind AggregateKind = iota
	ClassKind
)

// AggregateDecl is `struct Name { fields... }` or `class Name { fields... }`.
type AggregateDecl struct {
	base
	Kind   AggregateKind
	Name   string
	Fields []FieldDecl
}

func (*AggregateDecl) statementNode()  {}
func (*AggregateDecl) declarationNode() {}

// EnumDecl is `enum Name { Variant, Variant, ... }`; variants get dense
// ordinals in declaration order.
type EnumDecl struct {
	base
	Name     string
	Variants []string
}

func (*EnumDecl) statementNode()  {}
func (*EnumDecl) declarationNode() {}

// ---- Statements ----

// VarDecl is `flux [Type] name = expr;`. Type is empty when omitted, in
// which case the Lowerer infers it from Value via the literal rule.
type VarDecl struct {
	base
	Type  string
	Name  string
	Value Expression
}

func (*VarDecl) statementNode() {}

// AssignStmt is `name op= expr;`. Op is "=" for plain assignment or the
// compound operator itself ("+=" etc.).
type AssignStmt struct {
	base
	Name  string
	Op    string
	Value Expression
}

func (*AssignStmt) statementNode() {}

// IndexAssignStmt is `target[index] op= expr;`.
type IndexAssignStmt struct {
	base
	Target Expression
	Index  Expression
	Op     string
	Value  Expression
}

func (*IndexAssignStmt) statementNode() {}

// IfStmt is `if (cond) { then } else { else }`. Else may be nil.
type IfStmt struct {
	base
	Cond Expression
	Then *BlockStmt
	Else *BlockStmt
}

func (*IfStmt) statementNode() {}

// LoopStmt covers both the plain `loop (cond) { body }` form and the
// counted-parallel form `parallel loop i => count => body`.
type LoopStmt struct {
	base
	Parallel bool

	// Plain loop.
	Cond Expression
	Body *BlockStmt

	// Parallel loop.
	IterVar string
	Count   Expression
}

func (*LoopStmt) statementNode() {}

// MatchArm is one arm of a match statement. Pattern is nil for the default
// arm, which must be the last arm if present.
type MatchArm struct {
	Pattern Expression
	Body    *BlockStmt
}

// MatchStmt is `match (scrutinee) { arm... }`.
type MatchStmt struct {
	base
	Scrutinee Expression
	Arms      []MatchArm
}

func (*MatchStmt) statementNode() {}

// BreakStmt is `break;`.
type BreakStmt struct{ base }

func (*BreakStmt) statementNode() {}

// ContinueStmt is `continue;`.
type ContinueStmt struct{ base }

func (*ContinueStmt) statementNode() {}

// ReturnStmt is `return [expr];`. Value is nil for a bare return.
type ReturnStmt struct {
	base
	Value Expression
}

func (*ReturnStmt) statementNode() {}

// ThrowStmt is `throw errExpr[, detailExpr];`. Either operand may be nil.
type ThrowStmt struct {
	base
	Error  Expression
	Detail Expression
}

func (*ThrowStmt) statementNode() {}

// PrintStmt is `print expr;`.
type PrintStmt struct {
	base
	Value Expression
}

func (*PrintStmt) statementNode() {}

// BlockStmt is `{ statements... }`, introducing a fresh lexical scope.
type BlockStmt struct {
	base
	Statements []Statement
}

func (*BlockStmt) statementNode() {}

// ExprStmt wraps an expression evaluated for side effects only (e.g. a
// standalone call). The core language has no user-defined calls, so this
// exists for forward compatibility and parser uniformity.
type ExprStmt struct {
	base
	Value Expression
}

func (*ExprStmt) statementNode() {}

// ---- Expressions ----

// Ident is a plain or dotted identifier (`name`, `obj.field`, `M.sym`).
type Ident struct {
	base
	Name string
}

func (*Ident) expressionNode() {}

// IntLit, FloatLit, BoolLit, CharLit, StringLit, NullLit are literal
// expressions; their IrType is inferred directly by the Lowerer.
type IntLit struct {
	base
	Value int64
}

func (*IntLit) expressionNode() {}

type FloatLit struct {
	base
	Value float64
}

func (*FloatLit) expressionNode() {}

type BoolLit struct {
	base
	Value bool
}

func (*BoolLit) expressionNode() {}

type CharLit struct {
	base
	Value rune
}

func (*CharLit) expressionNode() {}

type StringLit struct {
	base
	Value string
}

func (*StringLit) expressionNode() {}

type NullLit struct{ base }

func (*NullLit) expressionNode() {}

// BinaryExpr is `left op right`.
type BinaryExpr struct {
	base
	Op    string
	Left  Expression
	Right Expression
}

func (*BinaryExpr) expressionNode() {}

// UnaryExpr is `op x` (negate, logical-not, bitwise-not).
type UnaryExpr struct {
	base
	Op string
	X  Expression
}

func (*UnaryExpr) expressionNode() {}

// IndexExpr is `target[index]`.
type IndexExpr struct {
	base
	Target Expression
	Index  Expression
}

func (*IndexExpr) expressionNode() {}

// FieldExpr is `target.field`, distinct from a dotted Ident when target is
// itself a compound expression (e.g. an index result).
type FieldExpr struct {
	base
	Target Expression
	Field  string
}

func (*FieldExpr) expressionNode() {}

// NewArrayExpr is `newarray(length)`.
type NewArrayExpr struct {
	base
	Length Expression
}

func (*NewArrayExpr) expressionNode() {}

// AggregateArg is one constructor argument, optionally naming the field it
// initializes (`field: expr`); Name is empty for positional arguments.
type AggregateArg struct {
	Name  string
	Value Expression
}

// AggregateExpr is `TypeName { field: expr, ... }`, where an argument may
// also be positional (`TypeName { expr, ... }`).
// Fields omitted from Args receive an Unknown-typed null constant per the
// Lowerer's aggregate rule.
type AggregateExpr struct {
	base
	TypeName string
	Args     []AggregateArg
}

func (*AggregateExpr) expressionNode() {}

// CastExpr is an explicit `expr as Type` conversion.
type CastExpr struct {
	base
	Value      Expression
	TargetType string
}

func (*CastExpr) expressionNode() {}
