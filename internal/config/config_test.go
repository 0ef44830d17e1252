package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobfeed-engine/internal/config"
)

func TestDefaultIsValid(t *testing.T) {
	_, vr := config.NormalizeAndValidate(config.Default())
	assert.True(t, vr.OK(), vr.Errors)
	assert.Empty(t, vr.Warnings)
}

func TestNormalizeAndValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*config.Config)
		wantErr  string
		wantWarn string
	}{
		{name: "bad port", mutate: func(c *config.Config) { c.App.Port = 0 }, wantErr: "app.port must be 1..65535"},
		{name: "bad platform", mutate: func(c *config.Config) { c.App.Platform = "symbian" }, wantErr: "app.platform"},
		{name: "relative endpoint", mutate: func(c *config.Config) { c.Feed.Endpoint = "/common/jobs" }, wantErr: "feed.endpoint must be an absolute http(s) URL"},
		{name: "http endpoint", mutate: func(c *config.Config) { c.Feed.Endpoint = "http://jobs.local/api" }, wantWarn: "plain http"},
		{name: "zero timeout", mutate: func(c *config.Config) { c.Feed.RequestTimeoutSeconds = 0 }, wantErr: "feed.request_timeout_seconds must be > 0"},
		{name: "redis without address", mutate: func(c *config.Config) { c.Storage.Backend = "Redis" }, wantErr: "storage.redis.address is required"},
		{name: "unknown backend", mutate: func(c *config.Config) { c.Storage.Backend = "leveldb" }, wantErr: "storage.backend must be sqlite or redis"},
		{name: "unknown log level", mutate: func(c *config.Config) { c.Logging.Level = "loud" }, wantWarn: "logging.level"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)

			_, vr := config.NormalizeAndValidate(cfg)
			if tc.wantErr != "" {
				require.False(t, vr.OK())
				assert.Contains(t, vr.Errors[0], tc.wantErr)
			} else {
				assert.True(t, vr.OK(), vr.Errors)
			}
			if tc.wantWarn != "" {
				require.NotEmpty(t, vr.Warnings)
				assert.Contains(t, vr.Warnings[0], tc.wantWarn)
			}
		})
	}
}

func TestNormalizeLowercasesBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Backend = " SQLite "
	cfg.App.Platform = "IOS"

	out, vr := config.NormalizeAndValidate(cfg)
	require.True(t, vr.OK(), vr.Errors)
	assert.Equal(t, config.BackendSQLite, out.Storage.Backend)
	assert.Equal(t, "ios", out.App.Platform)
}

func TestSaveAtomicAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yml")

	cfg := config.Default()
	cfg.Feed.Endpoint = "https://jobs.example.com/api"
	require.NoError(t, config.SaveAtomic(path, cfg))

	cfg.Feed.Burst = 5
	require.NoError(t, config.SaveAtomic(path, cfg))

	got, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)

	prev, err := config.Load(path + ".bak")
	require.NoError(t, err)
	assert.Equal(t, 2, prev.Feed.Burst)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestSaveAtomicRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	cfg := config.Default()
	cfg.App.Port = -1

	err := config.SaveAtomic(path, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "app.port")

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("app:\n  port: 9000\n"), 0o644))

	got, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, got.App.Port)
	assert.Equal(t, config.Default().Feed.Endpoint, got.Feed.Endpoint)
}

func TestEnsureUserConfig(t *testing.T) {
	t.Run("copies template", func(t *testing.T) {
		dir := t.TempDir()
		tmpl := filepath.Join(dir, "template.yml")
		require.NoError(t, os.WriteFile(tmpl, []byte("app:\n  port: 4000\n"), 0o644))

		p, err := config.EnsureUserConfig(dir, tmpl)
		require.NoError(t, err)
		got, err := config.Load(p)
		require.NoError(t, err)
		assert.Equal(t, 4000, got.App.Port)
	})

	t.Run("writes defaults without template", func(t *testing.T) {
		dir := t.TempDir()
		p, err := config.EnsureUserConfig(dir, filepath.Join(dir, "missing.yml"))
		require.NoError(t, err)
		got, err := config.Load(p)
		require.NoError(t, err)
		assert.Equal(t, config.Default(), got)
	})

	t.Run("keeps existing", func(t *testing.T) {
		dir := t.TempDir()
		existing := filepath.Join(dir, "config.yml")
		require.NoError(t, os.WriteFile(existing, []byte("app:\n  port: 5000\n"), 0o644))

		p, err := config.EnsureUserConfig(dir, filepath.Join(dir, "missing.yml"))
		require.NoError(t, err)
		assert.Equal(t, existing, p)
		got, err := config.Load(p)
		require.NoError(t, err)
		assert.Equal(t, 5000, got.App.Port)
	})
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("JOBFEED_ENDPOINT", "https://override.example.com/jobs")
	t.Setenv("JOBFEED_LOG_LEVEL", "debug")

	cfg := config.Default()
	config.ApplyEnv(&cfg)
	assert.Equal(t, "https://override.example.com/jobs", cfg.Feed.Endpoint)
	assert.Equal(t, "debug", cfg.Logging.Level)
}
