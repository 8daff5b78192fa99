package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
[log]
output = "stdout"
level = "DEBUG"

[http]
port = 8081
accessLog = true

[database.mysql]
host = "127.0.0.1"
port = "3306"
dbname = "qaboard"

[local]
backend = "memory"

[sync]
saveDebounce = "250ms"
startupAttempts = 3

[history]
location = "UTC"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoadConfigFile(t *testing.T) {
	c, err := LoadConfigFile(writeConfig(t, sample))
	require.NoError(t, err)

	assert.Equal(t, "DEBUG", c.Log.Level)
	assert.Equal(t, 8081, c.Http.Port)
	assert.Equal(t, "/api/v1", c.Http.ContextPath)
	assert.True(t, c.Database.MySQLEnabled())
	assert.Equal(t, "memory", c.Local.Backend)
	assert.Equal(t, 250*time.Millisecond, c.Sync.SaveDebounce)
	assert.Equal(t, 3, c.Sync.StartupAttempts)
	assert.Equal(t, "none", c.Storage.Provider)
	assert.False(t, c.Pprof.Enable)
	assert.Equal(t, "/debug/pprof", c.Pprof.Path)
	assert.Equal(t, "*", c.Http.CorsOrigins)

	opts, err := c.History.Options()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, opts.Location)
}

func TestLoadConfigFile_EnvOverride(t *testing.T) {
	t.Setenv("QABOARD_HTTP_PORT", "9999")
	c, err := LoadConfigFile(writeConfig(t, sample))
	require.NoError(t, err)
	assert.Equal(t, 9999, c.Http.Port)
}

func TestLoadConfigFile_Missing(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
