package history

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Log {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	l, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func Test_Record_andRecent(t *testing.T) {
	l := openTemp(t)
	ctx := context.Background()

	require.NoError(t, l.Record(ctx, "temp", "21"))
	require.NoError(t, l.Record(ctx, "temp", "22"))
	require.NoError(t, l.Record(ctx, "other", "true"))

	entries, err := l.Recent(ctx, "temp", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "22", entries[0].ValueRepr)
	assert.Equal(t, "21", entries[1].ValueRepr)
}

func Test_Recent_respectsLimit(t *testing.T) {
	l := openTemp(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, l.Record(ctx, "n", "x"))
	}

	entries, err := l.Recent(ctx, "n", 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func Test_Recent_unknownNodeIsEmpty(t *testing.T) {
	l := openTemp(t)
	entries, err := l.Recent(context.Background(), "nope", 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
