package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/ripple/lang/parser"
)

func Test_Tree_containsDeclAndFormula(t *testing.T) {
	decls, err := parser.Parse(`stream B <- A + 1;`)
	require.Nil(t, err)

	out := Tree(decls)
	assert.Contains(t, out, "stream B")
	assert.Contains(t, out, "+")
}

func Test_DOT_hasEdgeFromDependencyToNode(t *testing.T) {
	decls, err := parser.Parse(`
		source A := 1;
		stream B <- A + 1;
	`)
	require.Nil(t, err)

	out := DOT(decls)
	assert.True(t, strings.Contains(out, `"A" -> "B"`))
}

func Test_JSON_roundTripsDeclNames(t *testing.T) {
	decls, err := parser.Parse(`source A := 1;`)
	require.Nil(t, err)

	out, jerr := JSON(decls)
	require.NoError(t, jerr)
	assert.Contains(t, out, `"name": "A"`)
	assert.Contains(t, out, `"kind": "source"`)
}
