package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/x-stp/crtree/internal/tree"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.Equal(t, "unicode", cfg.Style)
	assert.Equal(t, "keep", cfg.Wildcards)
	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, 0, cfg.Spaces)
	assert.False(t, cfg.IncludeRoot)
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
style = "ascii"
include_root = true
spaces = 2
wildcards = "strip"

[fetch]
workers = 8
timeout = "30s"
user_agent = "crtree-test"

[server]
metrics_addr = ":9090"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ascii", cfg.Style)
	assert.True(t, cfg.IncludeRoot)
	assert.Equal(t, 2, cfg.Spaces)
	assert.Equal(t, "strip", cfg.Wildcards)
	assert.Equal(t, 8, cfg.Fetch.Workers)
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout.Duration)
	assert.Equal(t, "crtree-test", cfg.Fetch.UserAgent)
	assert.Equal(t, ":9090", cfg.Server.MetricsAddr)

	// Untouched keys keep their defaults.
	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, Default().Fetch.Rate, cfg.Fetch.Rate)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		body string
	}{
		{"syntax", `style = `},
		{"unknown key", `colour = "red"`},
		{"unknown style", `style = "Unicode"`},
		{"bad wildcards", `wildcards = "reject"`},
		{"bad format", `format = "xml"`},
		{"negative spaces", `spaces = -1`},
		{"bad duration", "[fetch]\ntimeout = \"soon\""},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Load(writeConfig(t, tc.body))
			assert.Error(t, err)
		})
	}

	_, err := Load(writeConfig(t, `style = "nope"`))
	assert.True(t, errors.Is(err, tree.ErrUnknownStyle))
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "crtree", "config.toml"), path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}
