package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CBSEPREP_API_URL", "CBSEPREP_DB", "CBSEPREP_LOG_FILE", "CBSEPREP_LOG_LEVEL",
		"CBSEPREP_REQUEST_TIMEOUT", "CBSEPREP_SPLASH_DURATION", "CBSEPREP_HEALTH_TTL", "CBSEPREP_UPDATE_REPO",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://localhost:8000", cfg.APIURL)
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("CBSEPREP_API_URL", "https://cbse.example.com")
	t.Setenv("CBSEPREP_LOG_LEVEL", "debug")
	t.Setenv("CBSEPREP_REQUEST_TIMEOUT", "45s")
	t.Setenv("CBSEPREP_SPLASH_DURATION", "1s")

	cfg := FromEnv()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "https://cbse.example.com", cfg.APIURL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 45*time.Second, cfg.RequestTimeout)
	assert.Equal(t, time.Second, cfg.SplashDuration)
}

func TestUpdateRepoFromEnv(t *testing.T) {
	clearEnv(t)
	assert.Equal(t, DefaultUpdateRepo, FromEnv().UpdateRepo)

	t.Setenv("CBSEPREP_UPDATE_REPO", "asha/cbseprep-fork")
	owner, repo, err := FromEnv().UpdateOwnerRepo()
	require.NoError(t, err)
	assert.Equal(t, "asha", owner)
	assert.Equal(t, "cbseprep-fork", repo)
}

func TestFromEnvIgnoresBadDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("CBSEPREP_REQUEST_TIMEOUT", "soon")

	cfg := FromEnv()
	assert.Equal(t, Default().RequestTimeout, cfg.RequestTimeout)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"ftp url", func(c *Config) { c.APIURL = "ftp://host" }, true},
		{"no host", func(c *Config) { c.APIURL = "http://" }, true},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }, true},
		{"negative splash", func(c *Config) { c.SplashDuration = -time.Second }, true},
		{"zero splash", func(c *Config) { c.SplashDuration = 0 }, false},
		{"bad level", func(c *Config) { c.LogLevel = "verbose" }, true},
		{"fork repo", func(c *Config) { c.UpdateRepo = "asha/cbseprep" }, false},
		{"repo without owner", func(c *Config) { c.UpdateRepo = "cbseprep" }, true},
		{"repo with path", func(c *Config) { c.UpdateRepo = "a/b/c" }, true},
		{"empty repo", func(c *Config) { c.UpdateRepo = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CBSEPREP_API_URL=http://10.0.0.5:8000\n"), 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	// godotenv does not override variables that are already set, even empty ones.
	require.NoError(t, os.Unsetenv("CBSEPREP_API_URL"))
	t.Cleanup(func() { _ = os.Unsetenv("CBSEPREP_API_URL") })

	require.NoError(t, LoadDotEnv())
	assert.Equal(t, "http://10.0.0.5:8000", FromEnv().APIURL)
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	assert.NoError(t, LoadDotEnv())
}
