package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)

	assert.Equal(t, defaultPort, cfg.Port)
	assert.True(t, cfg.IsDev())
	assert.Equal(t, defaultWebURL, cfg.WebURL)
	assert.Contains(t, cfg.DSN, "lingoletics")
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 8080
env: production
web_url: https://lingoletics.com/
admin_password_hash: "$2a$10$abc"
mail:
  enable: true
  resend_key: re_123
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.False(t, cfg.IsDev())
	assert.Equal(t, "https://lingoletics.com", cfg.WebURL, "trailing slash trimmed")
	assert.Equal(t, "$2a$10$abc", cfg.AdminPassHash)
	assert.True(t, cfg.Mail.Enable)
	assert.Equal(t, "re_123", cfg.Mail.ResendKey)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("APP_URL", "https://staging.lingoletics.com")
	t.Setenv("ADMIN_PASSWORD_HASH", `"$2a$10$quoted"`)
	t.Setenv("RESEND_API_KEY", "re_abc")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "https://staging.lingoletics.com", cfg.WebURL)
	assert.Equal(t, "$2a$10$quoted", cfg.AdminPassHash, "surrounding quotes stripped")
	assert.Equal(t, "re_abc", cfg.Mail.ResendKey)
	assert.True(t, cfg.Mail.Enable, "a Resend key switches mail on")
}

func TestTrimQuotes(t *testing.T) {
	assert.Equal(t, "abc", trimQuotes(`"abc"`))
	assert.Equal(t, "abc", trimQuotes(`'abc'`))
	assert.Equal(t, `"abc`, trimQuotes(`"abc`))
	assert.Equal(t, "abc", trimQuotes("  abc  "))
}
