package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/ripple/lang/token"
)

func Test_Tokenize_kindSequence(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		expect    []token.Kind
		expectErr bool
	}{
		{name: "empty", input: "", expect: []token.Kind{token.EOF}},
		{name: "int literal", input: "42", expect: []token.Kind{token.Int, token.EOF}},
		{name: "float literal", input: "3.14", expect: []token.Kind{token.Float, token.EOF}},
		{name: "int then dot is not a float", input: "3 .14", expect: []token.Kind{
			token.Int, token.EOF,
		}, expectErr: true},
		{name: "string literal", input: `"hello"`, expect: []token.Kind{token.String, token.EOF}},
		{name: "bool true", input: "true", expect: []token.Kind{token.Bool, token.EOF}},
		{name: "bool false case-insensitive", input: "FALSE", expect: []token.Kind{token.Bool, token.EOF}},
		{name: "identifier", input: "total_sales", expect: []token.Kind{token.Ident, token.EOF}},
		{name: "source decl", input: "source A: int := 1;", expect: []token.Kind{
			token.KwSource, token.Ident, token.Colon, token.KwInt, token.ColonEq, token.Int, token.Semi, token.EOF,
		}},
		{name: "stream decl with arrow", input: "stream B <- A * 2;", expect: []token.Kind{
			token.KwStream, token.Ident, token.Arrow, token.Ident, token.Star, token.Int, token.Semi, token.EOF,
		}},
		{name: "comparison operators maximal munch", input: "<= >= == != < > = ", expect: []token.Kind{
			token.LtEq, token.GtEq, token.EqEq, token.NotEq, token.Lt, token.Gt, token.Error, token.EOF,
		}, expectErr: true},
		{name: "lambda arrow", input: "(a, x) => a + x", expect: []token.Kind{
			token.LParen, token.Ident, token.Comma, token.Ident, token.RParen, token.FatArrow,
			token.Ident, token.Plus, token.Ident, token.EOF,
		}},
		{name: "line comment skipped", input: "A // this is a comment\nB", expect: []token.Kind{
			token.Ident, token.Ident, token.EOF,
		}},
		{name: "unterminated string", input: `"oops`, expectErr: true},
		{name: "illegal character", input: "A @ B", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			toks, err := Tokenize(tc.input)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}

			assert := assert.New(t)
			if !assert.Nil(err) {
				return
			}

			var kinds []token.Kind
			for _, tok := range toks {
				kinds = append(kinds, tok.Kind)
			}
			assert.Equal(tc.expect, kinds)
		})
	}
}

func Test_Tokenize_positions(t *testing.T) {
	assert := assert.New(t)

	toks, err := Tokenize("A\nB")
	if !assert.Nil(err) {
		return
	}

	if !assert.Len(toks, 3) {
		return
	}

	assert.Equal(1, toks[0].Line)
	assert.Equal(1, toks[0].Col)
	assert.Equal(2, toks[1].Line)
	assert.Equal(1, toks[1].Col)
}

func Test_Tokenize_escapes(t *testing.T) {
	assert := assert.New(t)

	toks, err := Tokenize(`"a\"b\\c\nd\te"`)
	if !assert.Nil(err) {
		return
	}
	if !assert.Len(toks, 2) {
		return
	}
	assert.Equal("a\"b\\c\nd\te", toks[0].Lexeme)
}
