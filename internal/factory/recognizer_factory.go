package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/staffing-mail-agent/internal/adapters/recognizer"
	"github.com/mikey/staffing-mail-agent/internal/config"
	"github.com/mikey/staffing-mail-agent/internal/core"
	"github.com/mikey/staffing-mail-agent/internal/ports"
	"github.com/mikey/staffing-mail-agent/internal/utils"
)

// RecognizerFactory creates entity recognizers
type RecognizerFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewRecognizerFactory creates a new recognizer factory
func NewRecognizerFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *RecognizerFactory {
	return &RecognizerFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateRecognizer creates the entity recognizer selected by recognizer.provider
func (f *RecognizerFactory) CreateRecognizer() (core.EntityRecognizer, error) {
	recognizerCfg := f.cfg.GetRecognizer()

	var (
		client      ports.LLMClient
		maxBodySize int
		err         error
	)
	switch recognizerCfg.Provider {
	case "rules", "":
		return recognizer.NewRulesRecognizer(recognizerCfg.KnownPlaces, f.logger), nil
	case "bedrock":
		client, err = NewBedrockFactory(f.cfg, f.logger).CreateLLMClient()
		maxBodySize = f.cfg.GetBedrock().MaxBodySize
	case "gemini":
		client, err = NewGeminiFactory(f.cfg, f.logger).CreateLLMClient()
		maxBodySize = f.cfg.GetGemini().MaxBodySize
	case "openai":
		client, err = NewOpenAIFactory(f.cfg, f.logger).CreateLLMClient()
		maxBodySize = f.cfg.GetOpenAI().MaxBodySize
	default:
		return nil, fmt.Errorf("unsupported recognizer provider: %s", recognizerCfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	f.logger.Info("Using LLM recognizer",
		zap.String("provider", recognizerCfg.Provider),
		zap.String("model", client.ModelName()))
	return recognizer.NewLLMRecognizer(client, f.textProcessor, maxBodySize, f.logger), nil
}
