package core

import (
	"context"
)

// EntityRecognizer labels spans of text with semantic categories
type EntityRecognizer interface {
	// Recognize returns the entity spans found in text
	Recognize(ctx context.Context, text string) ([]EntitySpan, error)
}

// MessageSource yields decoded messages awaiting processing
type MessageSource interface {
	// Fetch returns the messages that have not been processed yet
	Fetch(ctx context.Context) ([]*RawMessage, error)
}

// MessageSink records that a message has been processed
type MessageSink interface {
	// MarkProcessed is idempotent
	MarkProcessed(ctx context.Context, messageID string) error
}

// ResultRepository defines the interface for storing processed results
type ResultRepository interface {
	// Get retrieves a stored result for a message
	Get(ctx context.Context, messageID string) (*StoredResult, error)

	// Set stores a result
	Set(ctx context.Context, entry *StoredResult) error

	// Delete removes a stored result
	Delete(ctx context.Context, messageID string) error

	// Cleanup removes expired results
	Cleanup(ctx context.Context) error
}

// ResultPublisher hands processed results to downstream routers
type ResultPublisher interface {
	Publish(ctx context.Context, result *ProcessedResult) error
}

// SenderFilter decides which senders are skipped entirely
type SenderFilter interface {
	IsIgnored(from string) bool
}
