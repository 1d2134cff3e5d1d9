package csvsrc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/ripple/value"
)

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func Test_Load_withHeaderAndCoercion(t *testing.T) {
	path := writeTemp(t, "name,score,active,note\nalice,10,true,\nbob,2.5,false,hi\n")

	v, err := Load(path, true)
	require.NoError(t, err)
	require.Equal(t, value.Table, v.Tag())

	tab := v.Table()
	assert.Equal(t, []string{"name", "score", "active", "note"}, tab.Header)
	require.Len(t, tab.Rows, 2)

	assert.Equal(t, value.OfString("alice"), tab.Rows[0][0])
	assert.Equal(t, value.OfInt(10), tab.Rows[0][1])
	assert.Equal(t, value.OfBool(true), tab.Rows[0][2])
	assert.Equal(t, value.NullValue, tab.Rows[0][3])

	assert.Equal(t, value.OfFloat(2.5), tab.Rows[1][1])
	assert.Equal(t, value.OfBool(false), tab.Rows[1][2])
}

func Test_Load_withoutHeader(t *testing.T) {
	path := writeTemp(t, "1,2\n3,4\n")

	v, err := Load(path, false)
	require.NoError(t, err)
	tab := v.Table()
	assert.Nil(t, tab.Header)
	require.Len(t, tab.Rows, 2)
	assert.Equal(t, value.OfInt(1), tab.Rows[0][0])
}

func Test_Header(t *testing.T) {
	path := writeTemp(t, "a,b,c\n1,2,3\n")
	h, err := Header(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, h)
}

func Test_Load_missingFile(t *testing.T) {
	_, err := Load("/no/such/file.csv", true)
	assert.Error(t, err)
}
