package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/ripple/lang/ast"
)

func Test_Parse_declKinds(t *testing.T) {
	src := `
		source A: int := 1;
		stream B <- A * 2;
		sink out <- B;
	`

	decls, err := Parse(src)
	require.Nil(t, err)
	require.Len(t, decls, 3)

	assert.Equal(t, ast.DeclSource, decls[0].DeclKind)
	assert.Equal(t, "A", decls[0].Name)
	assert.Equal(t, ast.AnnotInt, decls[0].Type)

	assert.Equal(t, ast.DeclStream, decls[1].DeclKind)
	assert.Equal(t, "B", decls[1].Name)

	assert.Equal(t, ast.DeclSink, decls[2].DeclKind)
	assert.Equal(t, "out", decls[2].Name)
}

func Test_Parse_precedence(t *testing.T) {
	// A + B * C should parse as A + (B * C): the top node is Add.
	decls, err := Parse(`stream s <- A + B * C;`)
	require.Nil(t, err)
	require.Len(t, decls, 1)

	bin, ok := decls[0].Init.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, ast.OpAdd, bin.Op)

	right, ok := bin.Right.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, ast.OpMul, right.Op)
}

func Test_Parse_ifThenElseEnd(t *testing.T) {
	decls, err := Parse(`stream s <- if t < 10 then "cold" else if t < 25 then "ok" else "hot" end end;`)
	require.Nil(t, err)
	require.Len(t, decls, 1)

	outer, ok := decls[0].Init.(*ast.If)
	require.True(t, ok)

	inner, ok := outer.Else.(*ast.If)
	require.True(t, ok)
	lit, ok := inner.Then.(*ast.Literal)
	require.True(t, ok)
	assert.Equal(t, "ok", lit.S)
}

func Test_Parse_lambdaAndFold(t *testing.T) {
	decls, err := Parse(`stream s <- fold(n, 0, (a, x) => a + x);`)
	require.Nil(t, err)
	require.Len(t, decls, 1)

	fold, ok := decls[0].Init.(*ast.Fold)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "x"}, fold.Lambda.Params)

	src, ok := fold.Source.(*ast.Ident)
	require.True(t, ok)
	assert.Equal(t, "n", src.Name)
}

func Test_Parse_pre(t *testing.T) {
	decls, err := Parse(`stream counter <- pre(counter, 0) + 1;`)
	require.Nil(t, err)
	require.Len(t, decls, 1)

	bin, ok := decls[0].Init.(*ast.Binary)
	require.True(t, ok)

	pre, ok := bin.Left.(*ast.Pre)
	require.True(t, ok)
	assert.Equal(t, "counter", pre.Name)
}

func Test_Parse_builtinCallVsGroupVsLambda(t *testing.T) {
	decls, err := Parse(`stream s <- filter(data, (row) => row);`)
	require.Nil(t, err)

	call, ok := decls[0].Init.(*ast.Call)
	require.True(t, ok)
	assert.Equal(t, "filter", call.Name)
	require.Len(t, call.Args, 2)

	_, isIdent := call.Args[0].(*ast.Ident)
	assert.True(t, isIdent)

	lam, isLambda := call.Args[1].(*ast.Lambda)
	require.True(t, isLambda)
	assert.Equal(t, []string{"row"}, lam.Params)
}

func Test_Parse_errors(t *testing.T) {
	testCases := []string{
		`stream A <- B + 1`,      // missing semicolon
		`stream A <- ;`,          // missing expression
		`source A int := 1;`,     // missing colon
		`fold(n, 0, (a) => a);`,  // wrong arity lambda, also missing decl keyword
	}

	for _, src := range testCases {
		_, err := Parse(src)
		assert.Error(t, err, src)
	}
}
