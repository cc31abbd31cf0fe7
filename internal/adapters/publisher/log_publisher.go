package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/staffing-mail-agent/internal/core"
)

// LogPublisher writes each processed result to the log as JSON
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher creates a new log publisher
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the output record of result
func (p *LogPublisher) Publish(_ context.Context, result *core.ProcessedResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	p.logger.Info("Staffing requirements",
		zap.String("message_id", result.ID),
		zap.String("classification", result.Classification),
		zap.ByteString("result", payload))
	return nil
}
