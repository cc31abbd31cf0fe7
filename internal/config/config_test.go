package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikey/staffing-mail-agent/internal/core"
)

func TestDefaultsMatchCoreDefaults(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())

	assert.Equal(t, "rules", cfg.GetRecognizer().Provider)
	assert.Equal(t, core.DefaultPatternConfig(), cfg.GetPatterns())
	assert.Equal(t, core.DefaultExtractionConfig(), cfg.GetExtraction())

	agent, err := cfg.GetAgent()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, agent.PollInterval)
	assert.False(t, agent.RunOnce)

	assert.Equal(t, "Processed", cfg.GetIMAP().ProcessedFolder)
	assert.Equal(t, ":993", cfg.GetIMAP().Address())
}

func TestNewFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
recognizer:
  provider: openai
extraction:
  location_blacklist: [bonjour, salut]
store:
  type: sqlite
agent:
  poll_interval: 30s
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := NewFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.GetRecognizer().Provider)
	assert.Equal(t, []string{"bonjour", "salut"}, cfg.GetExtraction().LocationBlacklist)
	assert.Equal(t, "sqlite", cfg.GetString("store.type"))
	assert.Equal(t, 2030, cfg.GetExtraction().MaxYear)

	agent, err := cfg.GetAgent()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, agent.PollInterval)
}

func TestNewFromFileMissing(t *testing.T) {
	_, err := NewFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLegacyMailboxEnv(t *testing.T) {
	t.Setenv("IMAP_SERVER", "imap.example.org")
	t.Setenv("EMAIL_USER", "staffing@example.org")
	t.Setenv("EMAIL_PASSWORD", "secret")

	cfg, err := New()
	require.NoError(t, err)

	imap := cfg.GetIMAP()
	assert.Equal(t, "imap.example.org", imap.Server)
	assert.Equal(t, "staffing@example.org", imap.Username)
	assert.Equal(t, "secret", imap.Password)
}

func TestInvalidPollInterval(t *testing.T) {
	v := NewEmptyViper()
	v.Set("agent.poll_interval", "often")

	_, err := NewFromViper(v).GetAgent()
	assert.Error(t, err)
}
