package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper: write config.yaml under a fake home directory
func writeHomeConfig(t *testing.T, content string) string {
	tmpDir := t.TempDir()
	configDir := filepath.Join(tmpDir, ".dslreviews")
	require.NoError(t, os.MkdirAll(configDir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(content), 0o600))
	return tmpDir
}

func TestLoadConfigFile_NoFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadConfigFile()
	require.NoError(t, err)
	assert.Nil(t, cfg, "Should return nil when config file doesn't exist")
}

func TestLoadConfigFile_ValidConfig(t *testing.T) {
	home := writeHomeConfig(t, `storage:
  dsn: "/path/to/reviews.db"
fetch:
  timeout: "30s"
  user_agent: "tester/1.0"
output:
  format: "json"
log:
  level: "debug"
  pretty: false
`)
	t.Setenv("HOME", home)

	cfg, err := LoadConfigFile()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "/path/to/reviews.db", cfg.Storage.DSN)
	assert.Equal(t, "30s", cfg.Fetch.Timeout)
	assert.Equal(t, "tester/1.0", cfg.Fetch.UserAgent)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "debug", cfg.Log.Level)
	require.NotNil(t, cfg.Log.Pretty)
	assert.False(t, *cfg.Log.Pretty)
}

func TestLoadConfigFile_InvalidYAML(t *testing.T) {
	home := writeHomeConfig(t, `storage:
  - this is invalid yaml because storage should be an object not a list
`)
	t.Setenv("HOME", home)

	cfg, err := LoadConfigFile()
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadConfigFile_PartialConfig(t *testing.T) {
	home := writeHomeConfig(t, `output:
  format: "table"
`)
	t.Setenv("HOME", home)

	cfg, err := LoadConfigFile()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "table", cfg.Output.Format)
	assert.Equal(t, "", cfg.Storage.DSN, "Unspecified DSN should be empty string")
	assert.Nil(t, cfg.Log.Pretty, "Unspecified pretty flag should be nil")
}

func TestLoadConfigFileFrom_ExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  dsn: custom.db\n"), 0o600))

	cfg, err := LoadConfigFileFrom(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "custom.db", cfg.Storage.DSN)
}
