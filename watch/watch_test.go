package watch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/ripple/lang/parser"
)

func Test_DiscoverSources_findsLoadCSVSources(t *testing.T) {
	decls, err := parser.Parse(`
		source data := load_csv("salaries.csv", true);
		source other := load_csv("raw.csv", false);
		source plain := 1;
		stream derived <- data;
	`)
	require.Nil(t, err)

	srcs := DiscoverSources(decls)
	require.Len(t, srcs, 2)
	assert.Equal(t, Source{NodeName: "data", Path: "salaries.csv", HasHeader: true}, srcs[0])
	assert.Equal(t, Source{NodeName: "other", Path: "raw.csv", HasHeader: false}, srcs[1])
}

func Test_DiscoverSources_skipsNonLoadCSVSources(t *testing.T) {
	decls, err := parser.Parse(`source n := 1;`)
	require.Nil(t, err)
	assert.Empty(t, DiscoverSources(decls))
}
