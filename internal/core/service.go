package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrRecognizerFailed is returned when the entity recognizer cannot process a message
var ErrRecognizerFailed = errors.New("entity recognition failed")

// ServiceOptions controls result storage in the staffing service
type ServiceOptions struct {
	StoreEnabled bool
	ResultTTL    time.Duration
}

// StaffingService is the core service extracting staffing requirements from messages
type StaffingService struct {
	recognizer EntityRecognizer
	patterns   *PatternRuler
	extractor  *RequirementExtractor
	store      ResultRepository
	publisher  ResultPublisher
	senders    SenderFilter
	logger     *zap.Logger
	opts       ServiceOptions
	now        func() time.Time
}

// NewStaffingService creates a new staffing service. store, publisher and
// senders may be nil.
func NewStaffingService(
	recognizer EntityRecognizer,
	patterns *PatternRuler,
	extractor *RequirementExtractor,
	store ResultRepository,
	publisher ResultPublisher,
	senders SenderFilter,
	logger *zap.Logger,
	opts ServiceOptions,
) *StaffingService {
	return &StaffingService{
		recognizer: recognizer,
		patterns:   patterns,
		extractor:  extractor,
		store:      store,
		publisher:  publisher,
		senders:    senders,
		logger:     logger,
		opts:       opts,
		now:        time.Now,
	}
}

// Extract runs entity recognition and the domain rules over text and builds
// the requirement record
func (s *StaffingService) Extract(ctx context.Context, text string) (*RequirementRecord, error) {
	spans, err := s.recognizer.Recognize(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRecognizerFailed, err)
	}

	if s.patterns != nil {
		spans = append(spans, s.patterns.Apply(text)...)
	}

	return s.extractor.Extract(text, spans), nil
}

// ProcessMessage extracts and classifies the requirements of a single message
func (s *StaffingService) ProcessMessage(ctx context.Context, msg *RawMessage) (*ProcessedResult, error) {
	record, err := s.Extract(ctx, msg.Text())
	if err != nil {
		return nil, err
	}

	result := &ProcessedResult{
		ID:             msg.ID,
		Classification: Classify(record),
		Requirements:   record,
		From:           msg.From,
		Date:           msg.Date,
		ProcessedAt:    s.now(),
	}

	s.logger.Info("Extracted staffing requirements",
		zap.String("message_id", msg.ID),
		zap.String("from", msg.From),
		zap.String("classification", result.Classification),
		zap.Bool("urgent", record.Urgent))

	return result, nil
}

// ProcessBatch fetches pending messages from source, processes each one and
// marks it on sink. A failing message is logged and skipped; it never aborts
// the rest of the batch.
func (s *StaffingService) ProcessBatch(ctx context.Context, source MessageSource, sink MessageSink) ([]*ProcessedResult, error) {
	runID := uuid.NewString()
	logger := s.logger.With(zap.String("run_id", runID))

	messages, err := source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	logger.Info("Fetched messages", zap.Int("count", len(messages)))

	results := make([]*ProcessedResult, 0, len(messages))
	for _, msg := range messages {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		result, err := s.handle(ctx, logger, msg, sink)
		if err != nil {
			logger.Error("Failed to process message",
				zap.String("message_id", msg.ID),
				zap.Error(err))
			continue
		}
		if result != nil {
			results = append(results, result)
		}
	}

	logger.Info("Batch complete",
		zap.Int("fetched", len(messages)),
		zap.Int("processed", len(results)))

	return results, nil
}

// HandleMessage runs the full pipeline for one message: sender filtering,
// stored result reuse, extraction, marking on sink, storage and publishing.
// It returns a nil result and no error for ignored senders. sink may be nil.
func (s *StaffingService) HandleMessage(ctx context.Context, msg *RawMessage, sink MessageSink) (*ProcessedResult, error) {
	return s.handle(ctx, s.logger, msg, sink)
}

func (s *StaffingService) handle(ctx context.Context, logger *zap.Logger, msg *RawMessage, sink MessageSink) (*ProcessedResult, error) {
	if s.senders != nil && s.senders.IsIgnored(msg.From) {
		logger.Info("Skipping message from ignored sender",
			zap.String("message_id", msg.ID),
			zap.String("from", msg.From))
		return nil, nil
	}

	result, cached := s.lookup(ctx, msg.ID)
	if cached {
		// The stored entry is shared; the mark outcome belongs to this pass
		copied := *result
		copied.Processed = false
		result = &copied
	} else {
		var err error
		if result, err = s.ProcessMessage(ctx, msg); err != nil {
			return nil, err
		}
	}

	if sink != nil {
		if err := sink.MarkProcessed(ctx, msg.ID); err != nil {
			logger.Error("Failed to mark message as processed",
				zap.String("message_id", msg.ID),
				zap.Error(err))
		} else {
			result.Processed = true
		}
	}

	s.remember(ctx, result)
	s.publish(ctx, result)
	return result, nil
}

// lookup returns a previously stored result for the message, if any
func (s *StaffingService) lookup(ctx context.Context, messageID string) (*ProcessedResult, bool) {
	if !s.opts.StoreEnabled || s.store == nil {
		return nil, false
	}
	entry, err := s.store.Get(ctx, messageID)
	if err != nil || entry == nil || entry.Result == nil {
		return nil, false
	}
	s.logger.Debug("Result store hit", zap.String("message_id", messageID))
	return entry.Result, true
}

func (s *StaffingService) remember(ctx context.Context, result *ProcessedResult) {
	if !s.opts.StoreEnabled || s.store == nil {
		return
	}
	now := s.now()
	entry := &StoredResult{
		Result:    result,
		StoredAt:  now,
		ExpiresAt: now.Add(s.opts.ResultTTL),
	}
	if err := s.store.Set(ctx, entry); err != nil {
		s.logger.Error("Failed to store result", zap.String("message_id", result.ID), zap.Error(err))
	}
}

func (s *StaffingService) publish(ctx context.Context, result *ProcessedResult) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, result); err != nil {
		s.logger.Error("Failed to publish result", zap.String("message_id", result.ID), zap.Error(err))
	}
}
