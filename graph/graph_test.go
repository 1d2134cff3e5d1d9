package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/ripple/lang/parser"
)

func Test_Build_wiresDependenciesAndBackRefs(t *testing.T) {
	decls, perr := parser.Parse(`
		source A := 1;
		stream B <- A + 1;
		sink out <- B;
	`)
	require.Nil(t, perr)

	g, rep := Build(decls)
	require.False(t, rep.HasErrors())

	a := g.Nodes["A"]
	b := g.Nodes["B"]
	out := g.Nodes["out"]

	require.Len(t, b.Dependencies, 1)
	assert.Equal(t, "A", b.Dependencies[0].Name)
	require.Len(t, a.BackRefs, 1)
	assert.Equal(t, "B", a.BackRefs[0].Name)

	require.Len(t, out.Dependencies, 1)
	assert.Equal(t, "B", out.Dependencies[0].Name)

	assert.Equal(t, []string{"A", "B", "out"}, g.Order)
}

func Test_Build_preRefsSeparateFromDependencies(t *testing.T) {
	decls, perr := parser.Parse(`stream counter <- pre(counter, 0) + 1;`)
	require.Nil(t, perr)

	g, rep := Build(decls)
	require.False(t, rep.HasErrors())

	counter := g.Nodes["counter"]
	assert.Empty(t, counter.Dependencies)
	require.Len(t, counter.PreRefs, 1)
	assert.Equal(t, "counter", counter.PreRefs[0].Name)
}

func Test_Build_propagatesAnalyzerErrors(t *testing.T) {
	decls, perr := parser.Parse(`stream A <- B + 1;`)
	require.Nil(t, perr)

	_, rep := Build(decls)
	assert.True(t, rep.HasErrors())
}
