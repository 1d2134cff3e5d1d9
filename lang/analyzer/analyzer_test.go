package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/ripple/lang/parser"
	"github.com/dekarrin/ripple/lang/rerr"
)

func Test_Analyze_rankSimpleChain(t *testing.T) {
	decls, err := parser.Parse(`
		source A := 1;
		stream B <- A + 1;
		sink out <- B;
	`)
	require.Nil(t, err)

	res, rep := Analyze(decls)
	require.False(t, rep.HasErrors())

	assert.Equal(t, 0, res.Rank["A"])
	assert.Equal(t, 1, res.Rank["B"])
	assert.Equal(t, 2, res.Rank["out"])
}

func Test_Analyze_duplicateDefinition(t *testing.T) {
	decls, err := parser.Parse(`
		source A := 1;
		source A := 2;
	`)
	require.Nil(t, err)

	_, rep := Analyze(decls)
	require.True(t, rep.HasErrors())
	assert.Equal(t, rerr.KindDuplicate, rep.Errors[0].Kind)
}

func Test_Analyze_undefinedReference(t *testing.T) {
	decls, err := parser.Parse(`
		source A := 1;
		stream B <- A + X;
	`)
	require.Nil(t, err)

	_, rep := Analyze(decls)
	require.True(t, rep.HasErrors())
	assert.Equal(t, rerr.KindUndefined, rep.Errors[0].Kind)
	assert.Contains(t, rep.Errors[0].Message, "X")
}

func Test_Analyze_circularDependency(t *testing.T) {
	decls, err := parser.Parse(`
		stream A <- B + 1;
		stream B <- C + 1;
		stream C <- A + 1;
	`)
	require.Nil(t, err)

	_, rep := Analyze(decls)
	require.True(t, rep.HasErrors())
	assert.Equal(t, rerr.KindCircular, rep.Errors[0].Kind)
}

func Test_Analyze_preBreaksApparentCycle(t *testing.T) {
	decls, err := parser.Parse(`
		stream counter <- pre(counter, 0) + 1;
	`)
	require.Nil(t, err)

	res, rep := Analyze(decls)
	require.False(t, rep.HasErrors(), "pre self-reference must not be treated as a cycle")
	assert.Equal(t, 0, res.Rank["counter"])
	assert.True(t, res.PreRefs["counter"].Has("counter"))
	assert.False(t, res.Deps["counter"].Has("counter"))
}

func Test_Analyze_lambdaParamsNotFreeIdents(t *testing.T) {
	decls, err := parser.Parse(`
		source n := 1;
		stream total <- fold(n, 0, (acc, x) => acc + x);
	`)
	require.Nil(t, err)

	res, rep := Analyze(decls)
	require.False(t, rep.HasErrors())
	assert.True(t, res.Deps["total"].Has("n"))
	assert.False(t, res.Deps["total"].Has("acc"))
	assert.False(t, res.Deps["total"].Has("x"))
}

func Test_Analyze_rankWithMultipleDeps(t *testing.T) {
	decls, err := parser.Parse(`
		source A := 1;
		source B := 2;
		stream C <- A + B;
	`)
	require.Nil(t, err)

	res, rep := Analyze(decls)
	require.False(t, rep.HasErrors())
	assert.Equal(t, 1, res.Rank["C"])
}
