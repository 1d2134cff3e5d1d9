package replcmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/ripple/value"
)

func Test_Parse_push(t *testing.T) {
	cmd, err := Parse("push temp 42")
	require.NoError(t, err)
	assert.Equal(t, VerbPush, cmd.Verb)
	assert.Equal(t, "temp", cmd.Node)
	assert.Equal(t, value.OfInt(42), cmd.Value)
}

func Test_Parse_pushQuotedString(t *testing.T) {
	cmd, err := Parse(`push label "hello world"`)
	require.NoError(t, err)
	assert.Equal(t, "hello world", cmd.Value.Str())
}

func Test_Parse_pushBool(t *testing.T) {
	cmd, err := Parse("push ready true")
	require.NoError(t, err)
	assert.Equal(t, value.OfBool(true), cmd.Value)
}

func Test_Parse_read(t *testing.T) {
	cmd, err := Parse("read total")
	require.NoError(t, err)
	assert.Equal(t, VerbRead, cmd.Verb)
	assert.Equal(t, "total", cmd.Node)
}

func Test_Parse_quitAndHelp(t *testing.T) {
	cmd, err := Parse(":quit")
	require.NoError(t, err)
	assert.Equal(t, VerbQuit, cmd.Verb)

	cmd, err = Parse(":help")
	require.NoError(t, err)
	assert.Equal(t, VerbHelp, cmd.Verb)
}

func Test_Parse_emptyLineIsNoop(t *testing.T) {
	cmd, err := Parse("   ")
	require.NoError(t, err)
	assert.Equal(t, VerbNone, cmd.Verb)
}

func Test_Parse_pushMissingValue(t *testing.T) {
	_, err := Parse("push temp")
	assert.Error(t, err)
}

func Test_Parse_unknownVerb(t *testing.T) {
	_, err := Parse("frobnicate temp")
	assert.Error(t, err)
}
