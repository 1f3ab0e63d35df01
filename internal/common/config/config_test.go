package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveEnv(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "9999")
	os.Unsetenv("TEST_CFG_MISSING")

	content := []byte("port: ${TEST_CFG_PORT:5234}\nname: \"${TEST_CFG_MISSING:fallback}\"\nempty: \"${TEST_CFG_MISSING}\"")
	resolved := string(resolveEnv(content))

	assert.Contains(t, resolved, "port: 9999")
	assert.Contains(t, resolved, "name: \"fallback\"")
	assert.Contains(t, resolved, "empty: \"\"")
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "apiserver.yaml")
	content := `
port: ${TEST_APISERVER_PORT:5234}
database:
  type: sqlite
  dbname: ":memory:"
jwt:
  secret_key: "${TEST_JWT_SECRET:0123456789abcdef0123456789abcdef}"
  duration: 24h
intake:
  rate_limit:
    type: memory
    limit: 5
    window: 30s
metrics:
  enabled: true
  namespace: enrollflow
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, cfgPath, err := LoadConfig[APIServerConfig](path)
	require.NoError(t, err)
	assert.Equal(t, path, cfgPath)

	assert.Equal(t, 5234, cfg.Port)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, ":memory:", cfg.Database.DBName)
	assert.Equal(t, "0123456789abcdef0123456789abcdef", cfg.JWT.SecretKey)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Duration)
	assert.Equal(t, "memory", cfg.Intake.RateLimit.Type)
	assert.Equal(t, 5, cfg.Intake.RateLimit.Limit)
	assert.Equal(t, 30*time.Second, cfg.Intake.RateLimit.Window)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "apiserver.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: ${TEST_APISERVER_PORT:5234}"), 0644))

	t.Setenv("TEST_APISERVER_PORT", "8080")
	cfg, _, err := LoadConfig[APIServerConfig](path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, _, err := LoadConfig[APIServerConfig](filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestGetDSN(t *testing.T) {
	pg := DatabaseConfig{Type: "postgres", Host: "db", Port: 5432, User: "u", Password: "p", DBName: "crm", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/crm?sslmode=disable", pg.GetDSN())

	my := DatabaseConfig{Type: "mysql", Host: "db", Port: 3306, User: "u", Password: "p", DBName: "crm"}
	assert.Equal(t, "u:p@tcp(db:3306)/crm?charset=utf8mb4&parseTime=True&loc=Local", my.GetDSN())

	lite := DatabaseConfig{Type: "sqlite", DBName: ":memory:"}
	assert.Equal(t, ":memory:", lite.GetDSN())
}
