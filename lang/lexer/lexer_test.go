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

package lexer_test

import (
	"testing"

	"github.com/oaflang/oaf/lang/lexer"
	"github.com/oaflang/oaf/lang/token"
)

type tokenCase struct {
	typ     token.Type
	literal string
}

func runTokenize(t *testing.T, name, input string, want []tokenCase) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		t.Helper()
		toks := lexer.New("test.oaf", input).Tokenize()
		if len(toks) == 0 {
			t.Fatal("Tokenize returned empty slice")
		}
		last := toks[len(toks)-1]
		if last.Type != token.EOF {
			t.Errorf("last token is %s, want EOF", last.Type)
		}
		body := toks[:len(toks)-1]
		if len(body) != len(want) {
			t.Fatalf("got %d tokens (excl. EOF), want %d: %v", len(body), len(want), body)
		}
		for i, w := range want {
			got := body[i]
			if got.Type != w.typ {
				t.Errorf("token[%d]: type = %s, want %s (literal %q)", i, got.Type, w.typ, got.Literal)
			}
			if got.Literal != w.literal {
				t.Errorf("token[%d]: literal = %q, want %q", i, got.Literal, w.literal)
			}
		}
	})
}

func TestKeywordsAndIdents(t *testing.T) {
	runTokenize(t, "decl", "flux total = 0;", []tokenCase{
		{token.FLUX, "flux"}, {token.IDENT, "total"}, {token.ASSIGN, "="},
		{token.INT, "0"}, {token.SEMICOLON, ";"},
	})
}

func TestOperators(t *testing.T) {
	runTokenize(t, "ops", "a+=b; a<=b; a<<<b; a>>>b;", []tokenCase{
		{token.IDENT, "a"}, {token.PLUSEQ, "+="}, {token.IDENT, "b"}, {token.SEMICOLON, ";"},
		{token.IDENT, "a"}, {token.LTE, "<="}, {token.IDENT, "b"}, {token.SEMICOLON, ";"},
		{token.IDENT, "a"}, {token.ULSHIFT, "<<<"}, {token.IDENT, "b"}, {token.SEMICOLON, ";"},
		{token.IDENT, "a"}, {token.URSHIFT, ">>>"}, {token.IDENT, "b"}, {token.SEMICOLON, ";"},
	})
}

func TestStringAndCharLiterals(t *testing.T) {
	runTokenize(t, "lits", `"hi\n" 'a' '\t'`, []tokenCase{
		{token.STRING, "hi\n"}, {token.CHAR, "a"}, {token.CHAR, "\t"},
	})
}

func TestComments(t *testing.T) {
	runTokenize(t, "comments", "flux a = 1; // trailing\n/* block */ flux b = 2;", []tokenCase{
		{token.FLUX, "flux"}, {token.IDENT, "a"}, {token.ASSIGN, "="}, {token.INT, "1"}, {token.SEMICOLON, ";"},
		{token.FLUX, "flux"}, {token.IDENT, "b"}, {token.ASSIGN, "="}, {token.INT, "2"}, {token.SEMICOLON, ";"},
	})
}

func TestParallelLoopKeywords(t *testing.T) {
	runTokenize(t, "parallel", "parallel loop i => 10 => sum += i;;;", []tokenCase{
		{token.PARALLEL, "parallel"}, {token.LOOP, "loop"}, {token.IDENT, "i"}, {token.ARROW, "=>"},
		{token.INT, "10"}, {token.ARROW, "=>"}, {token.IDENT, "sum"}, {token.PLUSEQ, "+="},
		{token.IDENT, "i"}, {token.SEMICOLON, ";"}, {token.SEMICOLON, ";"}, {token.SEMICOLON, ";"},
	})
}

func TestFloatVsDotAccess(t *testing.T) {
	runTokenize(t, "float", "3.14 obj.field", []tokenCase{
		{token.FLOAT, "3.14"}, {token.IDENT, "obj"}, {token.DOT, "."}, {token.IDENT, "field"},
	})
}
