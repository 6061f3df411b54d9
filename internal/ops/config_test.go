package ops

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volgrader/pkg/listener"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1000, cfg.Warmup)
	assert.Equal(t, 100, cfg.Horizon)
	assert.Equal(t, 10, cfg.Depth)
	assert.Equal(t, "TEA", cfg.Instrument)
	assert.Equal(t, 10*time.Second, cfg.ResponseTimeout)
	assert.True(t, cfg.Progress)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"horizon":    func(c *Config) { c.Horizon = 1 },
		"warmup":     func(c *Config) { c.Warmup = -1 },
		"depth":      func(c *Config) { c.Depth = 0 },
		"network":    func(c *Config) { c.Network = "udp" },
		"timeout":    func(c *Config) { c.ResponseTimeout = 0 },
		"data":       func(c *Config) { c.Data = "" },
		"instrument": func(c *Config) { c.Instrument = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "grader.json", `{
		"data": "rec.csv",
		"instrument": "COFFEE",
		"warmup": 0,
		"horizon": 5,
		"responseTimeout": "250ms",
		"progress": false,
		"storage": {"sqlitePath": "sessions.db"}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "rec.csv", cfg.Data)
	assert.Equal(t, "COFFEE", cfg.Instrument)
	assert.Equal(t, 0, cfg.Warmup)
	assert.Equal(t, 5, cfg.Horizon)
	assert.Equal(t, 10, cfg.Depth)
	assert.Equal(t, 250*time.Millisecond, cfg.ResponseTimeout)
	assert.False(t, cfg.Progress)
	assert.Equal(t, "sessions.db", cfg.Storage.SQLitePath)
	assert.Equal(t, DefaultStorageQueue, cfg.Storage.QueueSize)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "grader.yaml", `
network: unix
address: /tmp/grader.sock
depth: 2
loginTimeout: 3s
storage:
  postgres:
    host: db.local
    user: grader
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, listener.NetworkUnix, cfg.Network)
	assert.Equal(t, "/tmp/grader.sock", cfg.Address)
	assert.Equal(t, 2, cfg.Depth)
	assert.Equal(t, DefaultWarmup, cfg.Warmup)
	assert.Equal(t, 3*time.Second, cfg.LoginTimeout)
	assert.True(t, cfg.PostgresEnabled())
	assert.Equal(t, "db.local", cfg.PostgresOption().Host)
}

func TestLoadRejects(t *testing.T) {
	_, err := Load(writeFile(t, "grader.toml", "data = 1"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "grader.json", `{"responseTimeout": "soon"}`))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestParseFlagsOverrideFile(t *testing.T) {
	path := writeFile(t, "grader.yaml", "instrument: COFFEE\nhorizon: 7\nlogDir: logs\n")

	cfg, err := Parse("grader", []string{"-config", path, "-horizon", "3", "-no-progress", "-timeout", "2s", "data/test.csv"})
	require.NoError(t, err)
	assert.Equal(t, "COFFEE", cfg.Instrument)
	assert.Equal(t, 3, cfg.Horizon)
	assert.Equal(t, "logs", cfg.LogDir)
	assert.False(t, cfg.Progress)
	assert.Equal(t, 2*time.Second, cfg.ResponseTimeout)
	assert.Equal(t, "data/test.csv", cfg.Data)

	src := cfg.ReplaySource()
	assert.Equal(t, "COFFEE", src.Target)
	assert.Equal(t, 3, src.Horizon)

	sc := cfg.SessionConfig()
	assert.Equal(t, 2*time.Second, sc.ResponseTimeout)
	assert.Equal(t, "logs", sc.LogDir)
}

func TestParseRejectsInvalidHorizon(t *testing.T) {
	_, err := Parse("grader", []string{"-horizon", "1"})
	assert.Error(t, err)
}

func TestParseNoProgressValue(t *testing.T) {
	cfg, err := Parse("grader", []string{"-no-progress=false"})
	require.NoError(t, err)
	assert.True(t, cfg.Progress)

	cfg, err = Parse("grader", []string{"-no-progress=true"})
	require.NoError(t, err)
	assert.False(t, cfg.Progress)

	path := writeFile(t, "grader.json", `{"progress": false}`)
	cfg, err = Parse("grader", []string{"-config", path})
	require.NoError(t, err)
	assert.False(t, cfg.Progress)

	cfg, err = Parse("grader", []string{"-config", path, "-no-progress=false"})
	require.NoError(t, err)
	assert.True(t, cfg.Progress)
}
