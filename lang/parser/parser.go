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

// Package parser implements a recursive-descent, Pratt-expression parser
// producing lang/ast trees from a lang/lexer token stream. Parsing is an
// external collaborator per spec.md §1; it exists so source text can be
// driven through the full pipeline in tests and by cmd/oafc.
package parser

import (
	"fmt"
	"strconv"

	"github.com/oaflang/oaf/lang/ast"
	"github.com/oaflang/oaf/lang/token"
)

// precedence levels, lowest to highest.
const (
	_ int = iota
	lowest
	logicalOr
	logicalAnd
	equality
	relational
	bitwise
	shiftPrec
	additive
	multiplicative
	unaryPrec
	castPrec
	indexPrec
)

var precedences = map[token.Type]int{
	token.OROR:      logicalOr,
	token.ANDAND:    logicalAnd,
	token.EQ:        equality,
	token.NEQ:       equality,
	token.LT:        relational,
	token.GT:        relational,
	token.LTE:       relational,
	token.GTE:       relational,
	token.AMP:       bitwise,
	token.PIPE:      bitwise,
	token.CARET:     bitwise,
	token.LSHIFT:    shiftPrec,
	token.RSHIFT:    shiftPrec,
	token.ULSHIFT:   shiftPrec,
	token.URSHIFT:   shiftPrec,
	token.PLUS:      additive,
	token.MINUS:     additive,
	token.STAR:      multiplicative,
	token.SLASH:     multiplicative,
	token.PERCENT:   multiplicative,
	token.LBRACKET:  indexPrec,
	token.DOT:       indexPrec,
}

var assignOps = map[token.Type]string{
	token.ASSIGN:    "=",
	token.PLUSEQ:    "+=",
	token.MINUSEQ:   "-=",
	token.STAREQ:    "*=",
	token.SLASHEQ:   "/=",
	token.PERCENTEQ: "%=",
}

// Parser holds the state for a single parse of a token stream.
type Parser struct {
	toks []token.Token
	pos  int
}

// New creates a Parser over an already-tokenized stream (as produced by
// lexer.Tokenize).
func New(toks []token.Token) *Parser {
	return &Parser{toks: toks}
}

func (p *Parser) cur() token.Token  { return p.toks[p.pos] }
func (p *Parser) peek() token.Token {
	if p.pos+1 < len(p.toks) {
		return p.toks[p.pos+1]
	}
	return p.toks[len(p.toks)-1]
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) at(t token.Type) bool { return p.cur().Type == t }

func (p *Parser) expect(t token.Type) (token.Token, error) {
	if !p.at(t) {
		return token.Token{}, fmt.Errorf("parser: at %s: expected %s, got %s %q", p.cur().Pos, t, p.cur().Type, p.cur().Literal)
	}
	return p.advance(), nil
}

// ParseProgram parses the full token stream into a Program.
func ParseProgram(toks []token.Token) (*ast.Program, error) {
	p := New(toks)
	pos := p.cur().Pos
	var stmts []ast.Statement
	for !p.at(token.EOF) {
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	return ast.NewProgram(pos, stmts), nil
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch p.cur().Type {
	case token.MODULE:
		return p.parseModuleDecl()
	case token.IMPORT:
		return p.parseImportDecl()
	case token.STRUCT, token.CLASS:
		return p.parseAggregateDecl()
	case token.ENUM:
		return p.parseEnumDecl()
	case token.FLUX:
		return p.parseVarDecl()
	case token.IF:
		return p.parseIfStmt()
	case token.LOOP:
		return p.parseLoopStmt(false)
	case token.PARALLEL:
		return p.parseParallelLoopStmt()
	case token.MATCH:
		return p.parseMatchStmt()
	case token.BREAK:
		pos := p.advance().Pos
		if _, err := p.expect(token.SEMICOLON); err != nil {
			return nil, err
		}
		return ast.NewBreakStmt(pos), nil
	case token.CONTINUE:
		pos := p.advance().Pos
		if _, err := p.expect(token.SEMICOLON); err != nil {
			return nil, err
		}
		return ast.NewContinueStmt(pos), nil
	case token.RETURN:
		return p.parseReturnStmt()
	case token.THROW:
		return p.parseThrowStmt()
	case token.PRINT:
		return p.parsePrintStmt()
	case token.LBRACE:
		return p.parseBlockStmt()
	default:
		return p.parseSimpleStmt()
	}
}

func (p *Parser) parseModuleDecl() (ast.Statement, error) {
	pos := p.advance().Pos
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return ast.NewModuleDecl(pos, name.Literal), nil
}

func (p *Parser) parseImportDecl() (ast.Statement, error) {
	pos := p.advance().Pos
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return ast.NewImportDecl(pos, name.Literal), nil
}

func (p *Parser) parseAggregateDecl() (ast.Statement, error) {
	pos := p.cur().Pos
	kind := ast.StructKind
	if p.cur().Type == token.CLASS {
		kind = ast.ClassKind
	}
	p.advance()
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	var fields []ast.FieldDecl
	for !p.at(token.RBRACE) {
		typTok, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		fieldTok, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		fields = append(fields, ast.FieldDecl{Name: fieldTok.Literal, Type: typTok.Literal})
		if p.at(token.COMMA) {
			p.advance()
		}
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return ast.NewAggregateDecl(pos, kind, name.Literal, fields), nil
}

func (p *Parser) parseEnumDecl() (ast.Statement, error) {
	pos := p.advance().Pos
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	var variants []string
	for !p.at(token.RBRACE) {
		v, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		variants = append(variants, v.Literal)
		if p.at(token.COMMA) {
			p.advance()
		}
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return ast.NewEnumDecl(pos, name.Literal, variants), nil
}

func (p *Parser) parseVarDecl() (ast.Statement, error) {
	pos := p.advance().Pos // 'flux'
	typ := ""
	// Optional type precedes the name: `flux Int x = 1;` vs `flux x = 1;`.
	if p.at(token.IDENT) && p.peek().Type == token.IDENT {
		typ = p.advance().Literal
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ASSIGN); err != nil {
		return nil, err
	}
	val, err := p.parseExpression(lowest)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return ast.NewVarDecl(pos, typ, name.Literal, val), nil
}

func (p *Parser) parseIfStmt() (ast.Statement, error) {
	pos := p.advance().Pos
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression(lowest)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	then, err := p.parseBlockStmt()
	if err != nil {
		return nil, err
	}
	var els *ast.BlockStmt
	if p.at(token.ELSE) {
		p.advance()
		if p.at(token.IF) {
			inner, err := p.parseIfStmt()
			if err != nil {
				return nil, err
			}
			els = ast.NewBlockStmt(inner.Pos(), []ast.Statement{inner})
		} else {
			els, err = p.parseBlockStmt()
			if err != nil {
				return nil, err
			}
		}
	}
	return ast.NewIfStmt(pos, cond, then, els), nil
}

func (p *Parser) parseLoopStmt(parallel bool) (ast.Statement, error) {
	pos := p.advance().Pos
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression(lowest)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseBlockStmt()
	if err != nil {
		return nil, err
	}
	return ast.NewPlainLoopStmt(pos, cond, body), nil
}

func (p *Parser) parseParallelLoopStmt() (ast.Statement, error) {
	pos := p.advance().Pos // 'parallel'
	if _, err := p.expect(token.LOOP); err != nil {
		return nil, err
	}
	iter, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ARROW); err != nil {
		return nil, err
	}
	count, err := p.parseExpression(lowest)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ARROW); err != nil {
		return nil, err
	}
	body, err := p.parseBlockStmt()
	if err != nil {
		return nil, err
	}
	return ast.NewParallelLoopStmt(pos, iter.Literal, count, body), nil
}

func (p *Parser) parseMatchStmt() (ast.Statement, error) {
	pos := p.advance().Pos
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	scrutinee, err := p.parseExpression(lowest)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	var arms []ast.MatchArm
	for !p.at(token.RBRACE) {
		var pattern ast.Expression
		if p.at(token.ARROW) {
			// default arm: `=> { body }`
		} else {
			pattern, err = p.parseExpression(lowest)
			if err != nil {
				return nil, err
			}
		}
		if _, err := p.expect(token.ARROW); err != nil {
			return nil, err
		}
		body, err := p.parseBlockStmt()
		if err != nil {
			return nil, err
		}
		arms = append(arms, ast.MatchArm{Pattern: pattern, Body: body})
		if p.at(token.COMMA) {
			p.advance()
		}
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return ast.NewMatchStmt(pos, scrutinee, arms), nil
}

func (p *Parser) parseReturnStmt() (ast.Statement, error) {
	pos := p.advance().Pos
	var val ast.Expression
	if !p.at(token.SEMICOLON) {
		var err error
		val, err = p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return ast.NewReturnStmt(pos, val), nil
}

func (p *Parser) parseThrowStmt() (ast.Statement, error) {
	pos := p.advance().Pos
	var errExpr, detail ast.Expression
	if !p.at(token.SEMICOLON) {
		var err error
		errExpr, err = p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}
		if p.at(token.COMMA) {
			p.advance()
			detail, err = p.parseExpression(lowest)
			if err != nil {
				return nil, err
			}
		}
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return ast.NewThrowStmt(pos, errExpr, detail), nil
}

func (p *Parser) parsePrintStmt() (ast.Statement, error) {
	pos := p.advance().Pos
	val, err := p.parseExpression(lowest)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return ast.NewPrintStmt(pos, val), nil
}

func (p *Parser) parseBlockStmt() (*ast.BlockStmt, error) {
	pos, err := p.expect(token.LBRACE)
	if err != nil {
		return nil, err
	}
	var stmts []ast.Statement
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return ast.NewBlockStmt(pos.Pos, stmts), nil
}

// parseSimpleStmt handles assignment, indexed assignment, and bare
// expression statements, which all start with an expression.
func (p *Parser) parseSimpleStmt() (ast.Statement, error) {
	pos := p.cur().Pos
	expr, err := p.parseExpression(lowest)
	if err != nil {
		return nil, err
	}
	if op, ok := assignOps[p.cur().Type]; ok {
		p.advance()
		val, err := p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.SEMICOLON); err != nil {
			return nil, err
		}
		switch target := expr.(type) {
		case *ast.Ident:
			return ast.NewAssignStmt(pos, target.Name, op, val), nil
		case *ast.IndexExpr:
			return ast.NewIndexAssignStmt(pos, target.Target, target.Index, op, val), nil
		default:
			return nil, fmt.Errorf("parser: at %s: invalid assignment target", pos)
		}
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return ast.NewExprStmt(pos, expr), nil
}

// ---- Pratt expression parsing ----

func (p *Parser) parseExpression(minPrec int) (ast.Expression, error) {
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}
	for {
		tt := p.cur().Type
		prec, ok := precedences[tt]
		if !ok || prec <= minPrec {
			break
		}
		switch tt {
		case token.LBRACKET:
			left, err = p.parseIndex(left)
		case token.DOT:
			left, err = p.parseField(left)
		default:
			left, err = p.parseInfix(left, prec)
		}
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *Parser) parsePrefix() (ast.Expression, error) {
	tok := p.cur()
	switch tok.Type {
	case token.MINUS, token.BANG, token.TILDE:
		p.advance()
		x, err := p.parseExpression(unaryPrec)
		if err != nil {
			return nil, err
		}
		return ast.NewUnaryExpr(tok.Pos, tok.Type.String(), x), nil
	case token.INT:
		p.advance()
		v, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parser: at %s: bad int literal %q: %w", tok.Pos, tok.Literal, err)
		}
		return ast.NewIntLit(tok.Pos, v), nil
	case token.FLOAT:
		p.advance()
		v, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return nil, fmt.Errorf("parser: at %s: bad float literal %q: %w", tok.Pos, tok.Literal, err)
		}
		return ast.NewFloatLit(tok.Pos, v), nil
	case token.TRUE:
		p.advance()
		return ast.NewBoolLit(tok.Pos, true), nil
	case token.FALSE:
		p.advance()
		return ast.NewBoolLit(tok.Pos, false), nil
	case token.NULL:
		p.advance()
		return ast.NewNullLit(tok.Pos), nil
	case token.STRING:
		p.advance()
		return ast.NewStringLit(tok.Pos, tok.Literal), nil
	case token.CHAR:
		p.advance()
		r := rune(0)
		for _, c := range tok.Literal {
			r = c
			break
		}
		return ast.NewCharLit(tok.Pos, r), nil
	case token.NEWARRAY:
		return p.parseNewArray()
	case token.LPAREN:
		p.advance()
		inner, err := p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return inner, nil
	case token.IDENT:
		return p.parseIdentOrAggregate()
	default:
		return nil, fmt.Errorf("parser: at %s: unexpected token %s %q", tok.Pos, tok.Type, tok.Literal)
	}
}

func (p *Parser) parseNewArray() (ast.Expression, error) {
	pos := p.advance().Pos
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	length, err := p.parseExpression(lowest)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return ast.NewNewArrayExpr(pos, length), nil
}

func (p *Parser) parseIdentOrAggregate() (ast.Expression, error) {
	tok := p.advance()
	name := tok.Literal
	for p.at(token.DOT) && p.peek().Type == token.IDENT {
		p.advance()
		part := p.advance()
		name += "." + part.Literal
	}
	if p.at(token.LBRACE) {
		return p.parseAggregateBody(tok.Pos, name)
	}
	return ast.NewIdent(tok.Pos, name), nil
}

func (p *Parser) parseAggregateBody(pos token.Position, typeName string) (ast.Expression, error) {
	p.advance() // '{'
	var args []ast.AggregateArg
	for !p.at(token.RBRACE) {
		fieldName := ""
		start := p.pos
		if p.at(token.IDENT) && p.peek().Type == token.COLON {
			fieldName = p.advance().Literal
			p.advance() // ':'
		} else {
			p.pos = start
		}
		val, err := p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}
		args = append(args, ast.AggregateArg{Name: fieldName, Value: val})
		if p.at(token.COMMA) {
			p.advance()
		}
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return ast.NewAggregateExpr(pos, typeName, args), nil
}

func (p *Parser) parseIndex(left ast.Expression) (ast.Expression, error) {
	pos := p.advance().Pos // '['
	idx, err := p.parseExpression(lowest)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBRACKET); err != nil {
		return nil, err
	}
	return ast.NewIndexExpr(pos, left, idx), nil
}

func (p *Parser) parseField(left ast.Expression) (ast.Expression, error) {
	pos := p.advance().Pos // '.'
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	return ast.NewFieldExpr(pos, left, name.Literal), nil
}

func (p *Parser) parseInfix(left ast.Expression, prec int) (ast.Expression, error) {
	tok := p.advance()
	right, err := p.parseExpression(prec)
	if err != nil {
		return nil, err
	}
	return ast.NewBinaryExpr(tok.Pos, tok.Type.String(), left, right), nil
}
