package factory

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/staffing-mail-agent/internal/adapters/mailbox"
	"github.com/mikey/staffing-mail-agent/internal/adapters/publisher"
	"github.com/mikey/staffing-mail-agent/internal/adapters/recognizer"
	"github.com/mikey/staffing-mail-agent/internal/adapters/store"
	"github.com/mikey/staffing-mail-agent/internal/config"
	"github.com/mikey/staffing-mail-agent/internal/core"
	"github.com/mikey/staffing-mail-agent/internal/utils"
)

func testConfig(settings map[string]any) *config.Config {
	v := config.NewEmptyViper()
	for key, value := range settings {
		v.Set(key, value)
	}
	return config.NewFromViper(v)
}

func TestRecognizerFactory(t *testing.T) {
	tp := utils.NewTextProcessor(zap.NewNop())

	rec, err := NewRecognizerFactory(testConfig(nil), zap.NewNop(), tp).CreateRecognizer()
	require.NoError(t, err)
	assert.IsType(t, &recognizer.RulesRecognizer{}, rec)

	rec, err = NewRecognizerFactory(testConfig(map[string]any{
		"recognizer.provider": "openai",
		"openai.api_key":      "sk-test",
	}), zap.NewNop(), tp).CreateRecognizer()
	require.NoError(t, err)
	assert.IsType(t, &recognizer.LLMRecognizer{}, rec)

	_, err = NewRecognizerFactory(testConfig(map[string]any{"recognizer.provider": "openai"}), zap.NewNop(), tp).CreateRecognizer()
	assert.ErrorContains(t, err, "API key is required")

	_, err = NewRecognizerFactory(testConfig(map[string]any{"recognizer.provider": "spacy"}), zap.NewNop(), tp).CreateRecognizer()
	assert.ErrorContains(t, err, "unsupported recognizer provider")
}

func TestStoreFactory(t *testing.T) {
	repo, err := NewStoreFactory(testConfig(nil), zap.NewNop()).CreateResultRepository()
	require.NoError(t, err)
	require.IsType(t, &store.MemoryStore{}, repo)
	repo.(*store.MemoryStore).Stop()

	path := filepath.Join(t.TempDir(), "nested", "results.db")
	repo, err = NewStoreFactory(testConfig(map[string]any{
		"store.type":        "sqlite",
		"store.sqlite_path": path,
	}), zap.NewNop()).CreateResultRepository()
	require.NoError(t, err)
	require.IsType(t, &store.SQLiteStore{}, repo)
	repo.(*store.SQLiteStore).Stop()
	assert.FileExists(t, path)

	repo, err = NewStoreFactory(testConfig(map[string]any{"store.enabled": false}), zap.NewNop()).CreateResultRepository()
	require.NoError(t, err)
	assert.Nil(t, repo)

	_, err = NewStoreFactory(testConfig(map[string]any{"store.type": "redis"}), zap.NewNop()).CreateResultRepository()
	assert.ErrorContains(t, err, "unsupported store type")

	_, err = NewStoreFactory(testConfig(map[string]any{"store.cleanup_frequency": "hourly"}), zap.NewNop()).CreateResultRepository()
	assert.Error(t, err)
}

func TestStoreFactoryServiceOptions(t *testing.T) {
	opts, err := NewStoreFactory(testConfig(map[string]any{"store.ttl": "2h"}), zap.NewNop()).GetServiceOptions()
	require.NoError(t, err)
	assert.True(t, opts.StoreEnabled)
	assert.Equal(t, "2h0m0s", opts.ResultTTL.String())
}

func TestPublisherFactory(t *testing.T) {
	pub, err := NewPublisherFactory(testConfig(nil), zap.NewNop()).CreatePublisher()
	require.NoError(t, err)
	assert.IsType(t, &publisher.LogPublisher{}, pub)

	pub, err = NewPublisherFactory(testConfig(map[string]any{"publisher.type": "none"}), zap.NewNop()).CreatePublisher()
	require.NoError(t, err)
	assert.Nil(t, pub)

	_, err = NewPublisherFactory(testConfig(map[string]any{"publisher.type": "amqp"}), zap.NewNop()).CreatePublisher()
	assert.ErrorContains(t, err, "unsupported publisher type")
}

func TestMailboxFactory(t *testing.T) {
	service := core.NewStaffingService(
		recognizer.NewRulesRecognizer(nil, zap.NewNop()),
		nil,
		core.NewRequirementExtractor(core.DefaultExtractionConfig(), nil, zap.NewNop()),
		nil, nil, nil,
		zap.NewNop(),
		core.ServiceOptions{},
	)

	agent, err := NewMailboxFactory(testConfig(map[string]any{"imap.server": "imap.example.org"}), zap.NewNop(), service).CreateMailboxAgent()
	require.NoError(t, err)
	assert.IsType(t, &mailbox.PollingAgent{}, agent)

	_, err = NewMailboxFactory(testConfig(nil), zap.NewNop(), service).CreateMailboxAgent()
	assert.ErrorContains(t, err, "imap server is required")

	agent, err = NewMailboxFactory(testConfig(map[string]any{"mailbox.type": "smtp"}), zap.NewNop(), service).CreateMailboxAgent()
	require.NoError(t, err)
	assert.IsType(t, &mailbox.SMTPIngress{}, agent)

	_, err = NewMailboxFactory(testConfig(map[string]any{"mailbox.type": "pop3"}), zap.NewNop(), service).CreateMailboxAgent()
	assert.ErrorContains(t, err, "unsupported mailbox type")
}

func TestRulesFactory(t *testing.T) {
	f := NewRulesFactory(testConfig(map[string]any{"senders.ignored_domains": []string{"promo.example"}}), zap.NewNop())

	assert.NotNil(t, f.CreatePatternRuler())
	assert.NotNil(t, f.CreateExtractor())
	senders := f.CreateSenderFilter()
	assert.True(t, senders.IsIgnored("News <news@promo.example>"))
	assert.False(t, senders.IsIgnored("rh@cisss.example"))
}
