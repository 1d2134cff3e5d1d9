// Package config loads the TOML configuration given to the ripple CLI's
// --config flag: listen
// address, step budget, watch debounce, CSV base directory, and the
// optional auth and history settings.
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	// MinSecretSize and MaxSecretSize bound TokenSecret's length, checked
	// by Validate when RequireAuth is set.
	MinSecretSize = 32
	MaxSecretSize = 64
)

// Config configures a ripple run or repl process and its optional HTTP
// server.
type Config struct {
	// ListenAddr is the address the HTTP introspection server binds to,
	// e.g. ":8080".
	ListenAddr string `toml:"listen_addr"`

	// StepBudget caps the number of node evaluations a single push may
	// trigger. 0 means use engine.DefaultStepBudget.
	StepBudget int `toml:"step_budget"`

	// WatchDebounceMillis is how long the file watcher waits after a
	// write before reloading, to collapse bursts of writes into one
	// reload.
	WatchDebounceMillis int `toml:"watch_debounce_ms"`

	// CSVBaseDir is prepended to relative load_csv paths. Empty means use
	// the working directory.
	CSVBaseDir string `toml:"csv_base_dir"`

	// RequireAuth turns on bearer-token auth for the mutating HTTP
	// endpoints. TokenSecret is the HMAC signing key; required when
	// RequireAuth is true.
	RequireAuth bool   `toml:"require_auth"`
	TokenSecret string `toml:"token_secret"`

	// HistoryPath, if non-empty, is a SQLite file every successful push
	// made through the HTTP server's push endpoint is recorded to via
	// package history. Empty disables the audit log.
	HistoryPath string `toml:"history_path"`
}

// WatchDebounce returns WatchDebounceMillis as a time.Duration.
func (c Config) WatchDebounce() time.Duration {
	return time.Duration(c.WatchDebounceMillis) * time.Millisecond
}

// Load reads and decodes a TOML config file at path.
func Load(path string) (Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// FillDefaults returns a copy of c with unset fields set to their
// defaults.
func (c Config) FillDefaults() Config {
	out := c
	if out.ListenAddr == "" {
		out.ListenAddr = ":8080"
	}
	if out.WatchDebounceMillis == 0 {
		out.WatchDebounceMillis = 250
	}
	return out
}

// Validate returns an error if c has invalid field values. Call this on
// the result of FillDefaults so defaulted fields are the ones checked.
func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr: must not be empty")
	}
	if c.StepBudget < 0 {
		return fmt.Errorf("step_budget: must not be negative")
	}
	if c.RequireAuth {
		if len(c.TokenSecret) < MinSecretSize {
			return fmt.Errorf("token_secret: must be at least %d bytes, but is %d", MinSecretSize, len(c.TokenSecret))
		}
		if len(c.TokenSecret) > MaxSecretSize {
			return fmt.Errorf("token_secret: must be no more than %d bytes, but is %d", MaxSecretSize, len(c.TokenSecret))
		}
	}
	return nil
}
