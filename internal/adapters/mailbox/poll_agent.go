package mailbox

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/staffing-mail-agent/internal/core"
)

// BatchProcessor runs one fetch-process-mark pass
type BatchProcessor interface {
	ProcessBatch(ctx context.Context, source core.MessageSource, sink core.MessageSink) ([]*core.ProcessedResult, error)
}

// PollingAgent runs the staffing service over a mailbox at a fixed interval
type PollingAgent struct {
	service  BatchProcessor
	source   core.MessageSource
	sink     core.MessageSink
	interval time.Duration
	runOnce  bool
	logger   *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPollingAgent creates a new polling agent
func NewPollingAgent(
	service BatchProcessor,
	source core.MessageSource,
	sink core.MessageSink,
	interval time.Duration,
	runOnce bool,
	logger *zap.Logger,
) *PollingAgent {
	return &PollingAgent{
		service:  service,
		source:   source,
		sink:     sink,
		interval: interval,
		runOnce:  runOnce,
		logger:   logger,
	}
}

// Start runs a first pass immediately. Unless the agent runs once, further
// passes follow every interval in the background until Stop.
func (a *PollingAgent) Start() error {
	if a.runOnce {
		a.logger.Info("Running a single mailbox pass")
		_, err := a.poll(context.Background())
		return err
	}
	if a.interval <= 0 {
		return errors.New("poll interval must be positive")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		return errors.New("agent already started")
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.wg.Add(1)
	go a.loop(ctx)

	a.logger.Info("Polling agent started", zap.Duration("interval", a.interval))
	return nil
}

// Stop cancels the polling loop and waits for the current pass to end
func (a *PollingAgent) Stop() error {
	a.mu.Lock()
	cancel := a.cancel
	a.cancel = nil
	a.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	a.wg.Wait()
	a.logger.Info("Polling agent stopped")
	return nil
}

func (a *PollingAgent) loop(ctx context.Context) {
	defer a.wg.Done()

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		if _, err := a.poll(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error("Mailbox pass failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// poll runs one batch and releases the mailbox connection afterwards
func (a *PollingAgent) poll(ctx context.Context) ([]*core.ProcessedResult, error) {
	defer func() {
		if closer, ok := a.source.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				a.logger.Warn("Failed to close mailbox", zap.Error(err))
			}
		}
	}()
	return a.service.ProcessBatch(ctx, a.source, a.sink)
}
