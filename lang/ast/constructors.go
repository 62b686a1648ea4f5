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

package ast

import "github.com/oaflang/oaf/lang/token"

// Constructors for every node, used by lang/parser so callers never need to
// reach into the unexported base field directly.

func NewModuleDecl(pos token.Position, name string) *ModuleDecl {
	return &ModuleDecl{base: base{pos}, Name: name}
}

func NewImportDecl(pos token.Position, name string) *ImportDecl {
	return &ImportDecl{base: base{pos}, Name: name}
}

func NewAggregateDecl(pos token.Position, kind AggregateKind, name string, fields []FieldDecl) *AggregateDecl {
	return &AggregateDecl{base: base{pos}, Kind: kind, Name: name, Fields: fields}
}

func NewEnumDecl(pos token.Position, name string, variants []string) *EnumDecl {
	return &EnumDecl{base: base{pos}, Name: name, Variants: variants}
}

func NewVarDecl(pos token.Position, typ, name string, value Expression) *VarDecl {
	return &VarDecl{base: base{pos}, Type: typ, Name: name, Value: value}
}

func NewAssignStmt(pos token.Position, name, op string, value Expression) *AssignStmt {
	return &AssignStmt{base: base{pos}, Name: name, Op: op, Value: value}
}

func NewIndexAssignStmt(pos token.Position, target, index Expression, op string, value Expression) *IndexAssignStmt {
	return &IndexAssignStmt{base: base{pos}, Target: target, Index: index, Op: op, Value: value}
}

func NewIfStmt(pos token.Position, cond Expression, then, els *BlockStmt) *IfStmt {
	return &IfStmt{base: base{pos}, Cond: cond, Then: then, Else: els}
}

func NewPlainLoopStmt(pos token.Position, cond Expression, body *BlockStmt) *LoopStmt {
	return &LoopStmt{base: base{pos}, Cond: cond, Body: body}
}

func NewParallelLoopStmt(pos token.Position, iterVar string, count Expression, body *BlockStmt) *LoopStmt {
	return &LoopStmt{base: base{pos}, Parallel: true, IterVar: iterVar, Count: count, Body: body}
}

func NewMatchStmt(pos token.Position, scrutinee Expression, arms []MatchArm) *MatchStmt {
	return &MatchStmt{base: base{pos}, Scrutinee: scrutinee, Arms: arms}
}

func NewBreakStmt(pos token.Position) *BreakStmt       { return &BreakStmt{base{pos}} }
func NewContinueStmt(pos token.Position) *ContinueStmt { return &ContinueStmt{base{pos}} }

func NewReturnStmt(pos token.Position, value Expression) *ReturnStmt {
	return &ReturnStmt{base: base{pos}, Value: value}
}

func NewThrowStmt(pos token.Position, errV, detail Expression) *ThrowStmt {
	return &ThrowStmt{base: base{pos}, Error: errV, Detail: detail}
}

func NewPrintStmt(pos token.Position, value Expression) *PrintStmt {
	return &PrintStmt{base: base{pos}, Value: value}
}

func NewBlockStmt(pos token.Position, stmts []Statement) *BlockStmt {
	return &BlockStmt{base: base{pos}, Statements: stmts}
}

func NewExprStmt(pos token.Position, value Expression) *ExprStmt {
	return &ExprStmt{base: base{pos}, Value: value}
}

func NewIdent(pos token.Position, name string) *Ident { return &Ident{base: base{pos}, Name: name} }

func NewIntLit(pos token.Position, v int64) *IntLit       { return &IntLit{base: base{pos}, Value: v} }
func NewFloatLit(pos token.Position, v float64) *FloatLit { return &FloatLit{base: base{pos}, Value: v} }
func NewBoolLit(pos token.Position, v bool) *BoolLit      { return &BoolLit{base: base{pos}, Value: v} }
func NewCharLit(pos token.Position, v rune) *CharLit      { return &CharLit{base: base{pos}, Value: v} }
func NewStringLit(pos token.Position, v string) *StringLit {
	return &StringLit{base: base{pos}, Value: v}
}
func NewNullLit(pos token.Position) *NullLit { return &NullLit{base{pos}} }

func NewBinaryExpr(pos token.Position, op string, left, right Expression) *BinaryExpr {
	return &BinaryExpr{base: base{pos}, Op: op, Left: left, Right: right}
}

func NewUnaryExpr(pos token.Position, op string, x Expression) *UnaryExpr {
	return &UnaryExpr{base: base{pos}, Op: op, X: x}
}

func NewIndexExpr(pos token.Position, target, index Expression) *IndexExpr {
	return &IndexExpr{base: base{pos}, Target: target, Index: index}
}

func NewFieldExpr(pos token.Position, target Expression, field string) *FieldExpr {
	return &FieldExpr{base: base{pos}, Target: target, Field: field}
}

func NewNewArrayExpr(pos token.Position, length Expression) *NewArrayExpr {
	return &NewArrayExpr{base: base{pos}, Length: length}
}

func NewAggregateExpr(pos token.Position, typeName string, args []AggregateArg) *AggregateExpr {
	return &AggregateExpr{base: base{pos}, TypeName: typeName, Args: args}
}

func NewCastExpr(pos token.Position, value Expression, targetType string) *CastExpr {
	return &CastExpr{base: base{pos}, Value: value, TargetType: targetType}
}
