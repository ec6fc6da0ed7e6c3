package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfig_Defaults(t *testing.T) {
	t.Setenv("INVENPULSE_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := GetConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Web.ListeningAddress)
	assert.Equal(t, "ipSession", cfg.Web.SessionIdentifier)
	assert.Equal(t, 24*time.Hour, cfg.Web.SessionLifetime)
	assert.Equal(t, "/login", cfg.Web.RoutePaths.Login)
	assert.Equal(t, SupportedDatabase("sqlite"), cfg.Database.Type)
	assert.True(t, cfg.Directory.Embedded)
}

func TestGetConfig_FileAndEnvSubstitution(t *testing.T) {
	cfgFile := filepath.Join(t.TempDir(), "config.yaml")
	contents := `
web:
  listening_address: ":9090"
  external_url: "https://stock.example.com/"
  session_secret: "${IP_TEST_SESSION_SECRET}"
database:
  type: postgres
  dsn: "host=db user=ip dbname=ip"
directory:
  embedded: false
  base_url: "http://users.internal:5000"
`
	require.NoError(t, os.WriteFile(cfgFile, []byte(contents), 0o600))
	t.Setenv("INVENPULSE_CONFIG", cfgFile)
	t.Setenv("IP_TEST_SESSION_SECRET", "from-environment")

	cfg, err := GetConfig()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Web.ListeningAddress)
	assert.Equal(t, "from-environment", cfg.Web.SessionSecret)
	assert.Equal(t, DatabasePostgres, cfg.Database.Type)
	assert.False(t, cfg.Directory.Embedded)
	assert.Equal(t, "http://users.internal:5000", cfg.Directory.BaseUrl)

	// trailing slash of the external URL is trimmed
	assert.Equal(t, "https://stock.example.com", cfg.Web.ExternalUrl)
}

func TestConfig_LogStartupValues(t *testing.T) {
	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(previous) })

	cfg := defaultConfig()
	cfg.LogStartupValues()

	out := buf.String()
	assert.Contains(t, out, "embeddedDirectory=true")
	assert.Contains(t, out, "listeningAddress=:8080")
	assert.NotContains(t, out, cfg.Web.SessionSecret)
}

func TestOauthAdminMapping_Defaults(t *testing.T) {
	mapping := &OauthAdminMapping{}

	assert.True(t, mapping.GetAdminValueRegex().MatchString("true"))
	assert.False(t, mapping.GetAdminValueRegex().MatchString("false"))
	assert.True(t, mapping.GetAdminGroupRegex().MatchString("invenpulse_admins"))
}

func TestOauthAdminMapping_CustomRegex(t *testing.T) {
	mapping := &OauthAdminMapping{
		AdminValueRegex: "^(yes|1)$",
		AdminGroupRegex: "^stock-admins$",
	}

	assert.True(t, mapping.GetAdminValueRegex().MatchString("yes"))
	assert.False(t, mapping.GetAdminValueRegex().MatchString("true"))
	assert.True(t, mapping.GetAdminGroupRegex().MatchString("stock-admins"))
}
