package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Load_andDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ripple.toml")
	require.NoError(t, os.WriteFile(path, []byte("csv_base_dir = \"/data\"\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data", cfg.CSVBaseDir)
	assert.Equal(t, "", cfg.ListenAddr)

	cfg = cfg.FillDefaults()
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 250, cfg.WatchDebounceMillis)

	assert.NoError(t, cfg.Validate())
}

func Test_Validate_requiresSecretWhenAuthEnabled(t *testing.T) {
	cfg := Config{ListenAddr: ":8080", RequireAuth: true, TokenSecret: "short"}
	assert.Error(t, cfg.Validate())

	cfg.TokenSecret = "0123456789012345678901234567890123"
	assert.NoError(t, cfg.Validate())
}
