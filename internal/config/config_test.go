package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestResolveDBConfigPath(t *testing.T) {
	t.Setenv(DBConfigEnv, "")
	assert.Equal(t, DefaultDBConfigPath, ResolveDBConfigPath(""))

	t.Setenv(DBConfigEnv, "/etc/market/db.json")
	assert.Equal(t, "/etc/market/db.json", ResolveDBConfigPath(""))
	assert.Equal(t, "explicit.json", ResolveDBConfigPath("explicit.json"))
}

func TestLoadDBConfig(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "db.json", `{"apiKey": "ignored", "authDomain": "market.firebaseapp.com", "databaseURL": "redis://localhost:6379/0", "storageBucket": ""}`)

	cfg, err := LoadDBConfig(p)
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.Driver)
	assert.Equal(t, "market", cfg.Namespace)
	assert.Equal(t, "redis://localhost:6379/0", cfg.DatabaseURL)
}

func TestLoadDBConfigFromEnv(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "db.json", `{"driver": "memory"}`)
	t.Setenv(DBConfigEnv, p)

	cfg, err := LoadDBConfig("")
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Driver)
}

func TestLoadDBConfigMissing(t *testing.T) {
	_, err := LoadDBConfig(filepath.Join(t.TempDir(), "none.json"))
	assert.ErrorIs(t, err, ErrNoDBConfig)
}

func TestLoadDBConfigInvalid(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadDBConfig(writeFile(t, dir, "broken.json", `{"driver": `))
	assert.Error(t, err)

	_, err = LoadDBConfig(writeFile(t, dir, "nourl.json", `{"driver": "mysql"}`))
	assert.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("CORS_ALLOW_ORIGINS", "http://a.test, ,http://b.test")
	cfg := Load()
	assert.Equal(t, 5001, cfg.Port)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowOrigins)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, ".env", "MARKET_TEST_VALUE=from-file\n")
	t.Setenv("MARKET_TEST_VALUE", "")
	require.NoError(t, os.Unsetenv("MARKET_TEST_VALUE"))

	loaded := LoadDotEnv(p, filepath.Join(dir, ".env.missing"))
	assert.Equal(t, []string{p}, loaded)
	assert.Equal(t, "from-file", os.Getenv("MARKET_TEST_VALUE"))
}
