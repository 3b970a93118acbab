package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadDefaults(t *testing.T) {
	l, err := NewLoader("")
	require.NoError(t, err)

	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, BackendDB, cfg.Jobs.Backend)
	assert.Equal(t, 4, cfg.Jobs.MaxAttempts())
	assert.Equal(t, 2*time.Second, cfg.Jobs.BackoffBase)
	assert.Equal(t, "postgres://postgres:@localhost:5432/milestones?sslmode=disable", cfg.Database.DSN())
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Awards.SendGrid.Enabled())
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	path := writeFile(t, "config.yaml", `
database:
  driver: sqlite
  sqlite_path: /tmp/ms.db
jobs:
  concurrency: 8
  backoff_base: 500ms
  backoff_max: 10s
awards:
  sendgrid:
    api_key: SG.key
    from_email: noreply@lms.test
`)
	t.Setenv("JOBS_MAX_RETRIES", "5")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	l, err := NewLoader(path)
	require.NoError(t, err)
	cfg, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/ms.db", cfg.Database.SQLitePath)
	assert.Equal(t, 8, cfg.Jobs.Concurrency)
	assert.Equal(t, 500*time.Millisecond, cfg.Jobs.BackoffBase)
	assert.Equal(t, 6, cfg.Jobs.MaxAttempts())
	assert.True(t, cfg.Redis.Enabled())
	assert.True(t, cfg.Awards.SendGrid.Enabled())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]struct {
		body string
		want string
	}{
		"unknown backend": {body: "jobs:\n  backend: rabbitmq\n", want: "backend"},
		"backoff max below base": {body: "jobs:\n  backoff_base: 10s\n  backoff_max: 1s\n", want: "backoff_max"},
		"temporal without address": {body: "jobs:\n  backend: temporal\n", want: "temporal.address"},
		"missing cert file": {body: "temporal:\n  client_cert_path: /nope/cert.pem\n", want: "must be an existing and readable file"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			l, err := NewLoader(writeFile(t, "config.yaml", tc.body))
			require.NoError(t, err)
			_, err = l.Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadDotEnvSkipsMissingFiles(t *testing.T) {
	p := writeFile(t, ".env", "MILESTONES_DOTENV_CHECK=loaded\n")
	t.Setenv("MILESTONES_DOTENV_CHECK", "")
	os.Unsetenv("MILESTONES_DOTENV_CHECK")

	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "absent.env"), p))
	assert.Equal(t, "loaded", os.Getenv("MILESTONES_DOTENV_CHECK"))
}
