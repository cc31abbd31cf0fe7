package store

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// ErrNotFound is returned when no live result is stored for a message
var ErrNotFound = errors.New("stored result not found")

// cleaner is implemented by every repository with expiring entries
type cleaner interface {
	Cleanup(ctx context.Context) error
}

// janitor runs Cleanup periodically until stopped
type janitor struct {
	stopCh chan struct{}
	doneCh chan struct{}
}

func startJanitor(c cleaner, freq time.Duration, logger *zap.Logger) *janitor {
	j := &janitor{
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	if freq <= 0 {
		close(j.doneCh)
		return j
	}

	go func() {
		defer close(j.doneCh)
		ticker := time.NewTicker(freq)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := c.Cleanup(context.Background()); err != nil {
					logger.Error("Failed to clean up result store", zap.Error(err))
				}
			case <-j.stopCh:
				return
			}
		}
	}()
	return j
}

func (j *janitor) stop() {
	select {
	case <-j.stopCh:
	default:
		close(j.stopCh)
	}
	<-j.doneCh
}
