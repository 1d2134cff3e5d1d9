package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/ripple/engine"
	"github.com/dekarrin/ripple/graph"
	"github.com/dekarrin/ripple/lang/parser"
)

func Test_ExportInspect_roundTrip(t *testing.T) {
	decls, perr := parser.Parse(`
		source A := 1;
		stream B <- A + 1;
	`)
	require.Nil(t, perr)

	g, rep := graph.Build(decls)
	require.False(t, rep.HasErrors())

	_, rep2 := engine.New(g)
	require.False(t, rep2.HasErrors())

	data, err := Export(g)
	require.NoError(t, err)

	snap, err := Inspect(data)
	require.NoError(t, err)
	require.Len(t, snap.Nodes, 2)

	a, ok := snap.Find("A")
	require.True(t, ok)
	assert.Equal(t, "int", a.ValueTag)
}
