package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrCreateWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", DefaultConfigFileName)

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.FileExists(t, path)

	again, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadOrCreateFillsMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFileName)
	body := `
backend = "json"

[reminder]
interval = "5s"

[keys]
add = "+"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, BackendJSON, cfg.Backend)
	assert.Equal(t, DefaultDBName, cfg.DBPath)
	assert.Equal(t, 5*time.Second, cfg.ReminderInterval())
	assert.Equal(t, 100, cfg.Reminder.DedupCap)
	assert.Equal(t, 2.0, cfg.Save.PerSecond)
	assert.Equal(t, "+", cfg.Keys.Add)
	assert.Equal(t, "q", cfg.Keys.Quit)
}

func TestLoadOrCreateRejectsBadInput(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("backend = ["), 0o644))
	_, err := LoadOrCreate(bad)
	assert.Error(t, err)

	unknown := filepath.Join(dir, "unknown.toml")
	require.NoError(t, os.WriteFile(unknown, []byte(`backend = "postgres"`), 0o644))
	_, err = LoadOrCreate(unknown)
	assert.ErrorContains(t, err, "unknown backend")
}

func TestReminderIntervalFallback(t *testing.T) {
	for _, in := range []string{"", "soon", "-1s"} {
		cfg := Config{Reminder: Reminder{Interval: in}}
		assert.Equal(t, 30*time.Second, cfg.ReminderInterval(), in)
	}
}

func TestResolveConfigPathPrefersEnv(t *testing.T) {
	t.Setenv(EnvConfigPath, "/tmp/custom.toml")
	p, err := ResolveConfigPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.toml", p)
}
