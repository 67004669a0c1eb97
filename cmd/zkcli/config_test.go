package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "zkcli.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		expected cliConfig
	}{
		{
			name:     "empty file keeps defaults",
			contents: "",
			expected: defaultConfig(),
		},
		{
			name: "full overlay",
			contents: `
servers = "zk1:2181,zk2:2181/appA"
session_timeout_ms = 5000
log_level = "debug"
`,
			expected: cliConfig{
				Servers:        "zk1:2181,zk2:2181/appA",
				SessionTimeout: 5 * time.Second,
				LogLevel:       "debug",
			},
		},
		{
			name:     "partial overlay keeps remaining defaults",
			contents: `log_level = "warn"`,
			expected: cliConfig{
				Servers:        "127.0.0.1:2181",
				SessionTimeout: 10 * time.Second,
				LogLevel:       "warn",
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg, err := loadConfig(writeConfig(t, test.contents))
			require.NoError(t, err)
			assert.Equal(t, test.expected, cfg)
		})
	}
}

func TestLoadConfig_NoPath(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoadConfig_MalformedTOML(t *testing.T) {
	_, err := loadConfig(writeConfig(t, `servers = [broken`))
	assert.Error(t, err)
}
