package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blog.yaml"), []byte("feed:\n  page_size: 25\nserver:\n  port: 9000\n"), 0o644))

	t.Setenv("SERVER_PORT", "9100")

	v, err := Load(dir, "blog", WithEnvFiles(), WithDefaults(map[string]any{
		"feed.page_size":    10,
		"feed.timeline_ttl": "20s",
	}))
	require.NoError(t, err)

	assert.Equal(t, 25, v.GetInt("feed.page_size"), "file overrides defaults")
	assert.Equal(t, 9100, v.GetInt("server.port"), "env overrides the file")
	assert.Equal(t, "20s", v.GetString("feed.timeline_ttl"))
}

func TestLoadWithoutConfigFile(t *testing.T) {
	v, err := Load(t.TempDir(), "does-not-exist", WithEnvFiles())
	require.NoError(t, err)
	assert.NotNil(t, v)
}

func TestLoadExplicitEnvNames(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	v, err := Load(t.TempDir(), "none", WithEnvFiles(), WithEnv(map[string]string{
		"auth.jwt_secret": "JWT_SECRET",
	}))
	require.NoError(t, err)
	assert.Equal(t, "s3cret", v.GetString("auth.jwt_secret"))
}

func TestLoadDotenvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("BLOG_DOTENV_PORT=7070\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("BLOG_DOTENV_PORT") })

	v, err := Load(dir, "none",
		WithEnvFiles(envFile, filepath.Join(dir, "missing.env")),
		WithEnv(map[string]string{"server.port": "BLOG_DOTENV_PORT"}),
	)
	require.NoError(t, err)
	assert.Equal(t, 7070, v.GetInt("server.port"))
}
