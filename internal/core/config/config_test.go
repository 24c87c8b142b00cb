package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.App.HTTP.Port)
	assert.Equal(t, "mysql", cfg.DB.Driver)
	assert.Equal(t, 3306, cfg.DB.Port)
	assert.Equal(t, "en-US", cfg.Catalog.Language)
	assert.Equal(t, "https://api.themoviedb.org/3", cfg.Catalog.BaseURL)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.True(t, cfg.DB.AutoMigrate)
	assert.ErrorIs(t, cfg.RequireCatalog(), ErrMissingAPIKey)
}

func TestLoad_PlatformEnv(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	chdir(t, t.TempDir())
	t.Setenv("PORT", "8081")
	t.Setenv("TMDB_API_KEY", "secret-key")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_USER", "flick")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "movies")
	t.Setenv("DB_SSL", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.App.HTTP.Port)
	assert.Equal(t, "secret-key", cfg.Catalog.APIKey)
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, "flick", cfg.DB.User)
	assert.Equal(t, "pw", cfg.DB.Password)
	assert.Equal(t, "movies", cfg.DB.Name)
	assert.True(t, cfg.DB.SSL)
	assert.NoError(t, cfg.RequireCatalog())
}

func TestLoad_PrefixedEnvWins(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	chdir(t, t.TempDir())
	t.Setenv("PORT", "8081")
	t.Setenv("APP_APP_HTTP_PORT", "9090")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.App.HTTP.Port)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
app:
  http:
    port: 4000
catalog:
  base_url: http://catalog.local/3/
  api_key: from-file
db:
  driver: Postgres
  port: 6543
log:
  level: debug
  json: true
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.App.HTTP.Port)
	assert.Equal(t, "http://catalog.local/3", cfg.Catalog.BaseURL)
	assert.Equal(t, "from-file", cfg.Catalog.APIKey)
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, 6543, cfg.DB.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.JSON)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("unsupported driver", func(t *testing.T) {
		t.Setenv("CONFIG_PATH", "")
		chdir(t, t.TempDir())
		t.Setenv("DB_DRIVER", "oracle")
		_, err := Load("")
		assert.ErrorIs(t, err, ErrUnsupportedDriver)
	})
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains: it changes
// the working directory for the duration of the test and restores it on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
