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

// Package token defines the lexical token types for the Oaf language.
package token

import "fmt"

// Token is a single lexical token.
type Token struct {
	Type    Type
	Literal string
	Pos     Position
}

// Position tracks a source location.
type Position struct {
	File   string
	Line   int
	Column int
}

func (p Position) String() string {
	if p.File != "" {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Type is the set of lexical token kinds.
type Type int

const (
	ILLEGAL Type = iota
	EOF

	// Literals
	IDENT  // total, i, MyStruct
	INT    // 42
	FLOAT  // 3.14
	STRING // "hello"
	CHAR   // 'a'

	// Operators
	PLUS     // +
	MINUS    // -
	STAR     // *
	SLASH    // /
	PERCENT  // %
	CARET    // ^   (Root operator per §4.3's Root)
	AMP      // &
	PIPE     // |
	TILDE    // ~   (bitwise not)
	BANG     // !
	DOT      // .
	ARROW    // =>
	LSHIFT   // <<
	RSHIFT   // >>
	ULSHIFT  // <<< (unsigned shift-left marker)
	URSHIFT  // >>> (unsigned shift-right)

	EQ  // ==
	NEQ // !=
	LT  // <
	GT  // >
	LTE // <=
	GTE // >=

	ASSIGN    // =
	PLUSEQ    // +=
	MINUSEQ   // -=
	STAREQ    // *=
	SLASHEQ   // /=
	PERCENTEQ // %=

	ANDAND // &&
	OROR   // ||

	LPAREN    // (
	RPAREN    // )
	LBRACKET  // [
	RBRACKET  // ]
	LBRACE    // {
	RBRACE    // }
	COMMA     // ,
	SEMICOLON // ;
	COLON     // :

	keywordStart
	FLUX     // flux  (variable declaration)
	MODULE   // module
	IMPORT   // import
	IF       // if
	ELSE     // else
	LOOP     // loop
	PARALLEL // parallel
	MATCH    // match
	BREAK    // break
	CONTINUE // continue
	RETURN   // return
	THROW    // throw
	PRINT    // print
	NEWARRAY // newarray
	STRUCT   // struct
	CLASS    // class
	ENUM     // enum
	TRUE     // true
	FALSE    // false
	NULL     // null
	keywordEnd
)

var names = map[Type]string{
	ILLEGAL: "ILLEGAL", EOF: "EOF",
	IDENT: "IDENT", INT: "INT", FLOAT: "FLOAT", STRING: "STRING", CHAR: "CHAR",
	PLUS: "+", MINUS: "-", STAR: "*", SLASH: "/", PERCENT: "%", CARET: "^",
	AMP: "&", PIPE: "|", TILDE: "~", BANG: "!", DOT: ".", ARROW: "=>",
	LSHIFT: "<<", RSHIFT: ">>", ULSHIFT: "<<<", URSHIFT: ">>>",
	EQ: "==", NEQ: "!=", LT: "<", GT: ">", LTE: "<=", GTE: ">=",
	ASSIGN: "=", PLUSEQ: "+=", MINUSEQ: "-=", STAREQ: "*=", SLASHEQ: "/=", PERCENTEQ: "%=",
	ANDAND: "&&", OROR: "||",
	LPAREN: "(", RPAREN: ")", LBRACKET: "[", RBRACKET: "]", LBRACE: "{", RBRACE: "}",
	COMMA: ",", SEMICOLON: ";", COLON: ":",
	FLUX: "flux", MODULE: "module", IMPORT: "import", IF: "if", ELSE: "else",
	LOOP: "loop", PARALLEL: "parallel", MATCH: "match", BREAK: "break",
	CONTINUE: "continue", RETURN: "return", THROW: "throw", PRINT: "print",
	NEWARRAY: "newarray", STRUCT: "struct", CLASS: "class", ENUM: "enum",
	TRUE: "true", FALSE: "false", NULL: "null",
}

func (t Type) String() string {
	if n, ok := names[t]; ok {
		return n
	}
	return fmt.Sprintf("type(%d)", int(t))
}

var keywords = map[string]Type{
	"flux": FLUX, "module": MODULE, "import": IMPORT, "if": IF, "else": ELSE,
	"loop": LOOP, "parallel": PARALLEL, "match": MATCH, "break": BREAK,
	"continue": CONTINUE, "return": RETURN, "throw": THROW, "print": PRINT,
	"newarray": NEWARRAY, "struct": STRUCT, "class": CLASS, "enum": ENUM,
	"true": TRUE, "false": FALSE, "null": NULL,
}

// LookupIdent classifies ident as a keyword Type or IDENT.
func LookupIdent(ident string) Type {
	if t, ok := keywords[ident]; ok {
		return t
	}
	return IDENT
}
