package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "TicketZero AI", cfg.App.Name)
	assert.Equal(t, "1.0.0", cfg.App.Version)
	assert.Equal(t, 72*time.Hour, cfg.Trial.Length.Std())
	assert.Equal(t, "ticketzero-trial-v1", cfg.Trial.Salt)
	assert.Equal(t, "jgreenia@jandraisolutions.com", cfg.Trial.SupportEmail)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Output)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yml"))
	require.NoError(t, err)
	assert.Equal(t, "TicketZero AI", cfg.App.Name)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfigFile(t, `
app:
  name: Custom Product
trial:
  length: 168h
  salt: custom-deployment-salt
  support_email: sales@custom.example.com
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Custom Product", cfg.App.Name)
	assert.Equal(t, 7*24*time.Hour, cfg.Trial.Length.Std())
	assert.Equal(t, "custom-deployment-salt", cfg.Trial.Salt)
	assert.Equal(t, "sales@custom.example.com", cfg.Trial.SupportEmail)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Output, "unset fields still fall back to defaults")
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
trial:
  salt: salt-from-file
`)
	t.Setenv("TICKETZERO_TRIAL_SALT", "salt-from-env")
	t.Setenv("TICKETZERO_LOGGING_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "salt-from-env", cfg.Trial.Salt)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadDurationFromEnv(t *testing.T) {
	t.Setenv("TICKETZERO_TRIAL_LENGTH", "24h")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, cfg.Trial.Length.Std())
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "bad support email",
			yaml: "trial:\n  support_email: not-an-email\n",
		},
		{
			name: "salt too short",
			yaml: "trial:\n  salt: tiny\n",
		},
		{
			name: "unknown log level",
			yaml: "logging:\n  level: loud\n",
		},
		{
			name: "negative trial length",
			yaml: "trial:\n  length: -24h\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfigFile(t, tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadMalformedFile(t *testing.T) {
	_, err := Load(writeConfigFile(t, "trial: [not a mapping"))
	assert.Error(t, err)
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trial-gate.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
