package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/ripple/graph"
	"github.com/dekarrin/ripple/lang/parser"
	"github.com/dekarrin/ripple/value"
)

func build(t *testing.T, src string) *Engine {
	t.Helper()
	decls, perr := parser.Parse(src)
	require.Nil(t, perr)
	g, rep := graph.Build(decls)
	require.False(t, rep.HasErrors())
	e, rep2 := New(g)
	require.False(t, rep2.HasErrors())
	return e
}

func Test_Push_propagatesThroughChain(t *testing.T) {
	e := build(t, `
		source A := 0;
		stream B <- A * 2;
		sink out <- B + 1;
	`)

	rep := e.Push("A", value.OfInt(5))
	require.False(t, rep.HasErrors())

	v, ok := e.Read("out")
	require.True(t, ok)
	assert.Equal(t, value.OfInt(11), v)
}

func Test_Push_unchangedValueDoesNotRepropagate(t *testing.T) {
	e := build(t, `
		source A := 1;
		stream B <- A + 1;
	`)

	rep := e.Push("A", value.OfInt(1))
	require.False(t, rep.HasErrors())

	v, _ := e.Read("B")
	assert.Equal(t, value.OfInt(2), v)
}

func Test_Push_counterAdvancesEveryWave(t *testing.T) {
	e := build(t, `
		source tick := 0;
		stream counter <- pre(counter, 0) + 1;
	`)

	v, ok := e.Read("counter")
	require.True(t, ok)
	assert.Equal(t, value.OfInt(1), v, "cold build evaluates counter once using pre's initial")

	e.Push("tick", value.OfInt(1))
	v, _ = e.Read("counter")
	assert.Equal(t, value.OfInt(2), v)

	e.Push("tick", value.OfInt(2))
	v, _ = e.Read("counter")
	assert.Equal(t, value.OfInt(3), v)
}

func Test_Push_foldAccumulates(t *testing.T) {
	e := build(t, `
		source n := 0;
		stream total <- fold(n, 0, (acc, x) => acc + x);
	`)

	e.Push("n", value.OfInt(3))
	v, _ := e.Read("total")
	assert.Equal(t, value.OfInt(3), v)

	e.Push("n", value.OfInt(4))
	v, _ = e.Read("total")
	assert.Equal(t, value.OfInt(7), v)
}

func Test_Push_divisionByZeroPreservesCache(t *testing.T) {
	e := build(t, `
		source A := 10;
		source B := 2;
		stream ratio <- A / B;
	`)

	v, _ := e.Read("ratio")
	assert.Equal(t, value.OfFloat(5.0), v)

	rep := e.Push("B", value.OfInt(0))
	require.True(t, rep.HasErrors())

	v, _ = e.Read("ratio")
	assert.Equal(t, value.OfFloat(5.0), v, "ratio keeps its last good value after a division-by-zero error")
}

func Test_BaseDir_resolvesRelativeLoadCSVPath(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "people.csv"), []byte("name,age\nava,9\n"), 0644)
	require.NoError(t, err)

	decls, perr := parser.Parse(`source t := load_csv("people.csv", true); sink n <- col(t, 0);`)
	require.Nil(t, perr)
	g, rep := graph.Build(decls)
	require.False(t, rep.HasErrors())

	e, rep2 := New(g, dir)
	require.False(t, rep2.HasErrors())

	v, ok := e.Read("n")
	require.True(t, ok)
	assert.Equal(t, value.OfList([]value.Value{value.OfString("ava")}), v)
}

func Test_Subscribe_notifiesOnSinkChange(t *testing.T) {
	e := build(t, `
		source A := 0;
		sink out <- A * 10;
	`)

	var got []value.Value
	e.Subscribe("out", func(v value.Value) {
		got = append(got, v)
	})

	e.Push("A", value.OfInt(1))
	e.Push("A", value.OfInt(1)) // unchanged, should not notify again
	e.Push("A", value.OfInt(2))

	require.Len(t, got, 2)
	assert.Equal(t, value.OfInt(10), got[0])
	assert.Equal(t, value.OfInt(20), got[1])
}
