package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/staffing-mail-agent/internal/config"
	"github.com/mikey/staffing-mail-agent/internal/core"
	"github.com/mikey/staffing-mail-agent/internal/di"
)

func main() {
	flags, err := di.ParseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid arguments: %v\n", err)
		os.Exit(2)
	}

	// Build the dependency injection container
	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run extracts the requirements of every input message and prints the
// output records as JSON on stdout
func run(
	cfg *config.Config,
	logger *zap.Logger,
	service *core.StaffingService,
	source core.MessageSource,
	recognizer core.EntityRecognizer,
) error {
	defer logger.Sync()
	defer func() {
		if closer, ok := recognizer.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				logger.Error("Failed to close recognizer", zap.Error(err))
			}
		}
	}()

	logger.Info("Extracting staffing requirements", zap.String("recognizer", cfg.GetRecognizer().Provider))

	startTime := time.Now()
	results, err := service.ProcessBatch(context.Background(), source, nil)
	if err != nil {
		return err
	}
	logger.Debug("Extraction complete",
		zap.Int("results", len(results)),
		zap.Duration("duration", time.Since(startTime)))

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if len(results) == 1 {
		return encoder.Encode(results[0])
	}
	return encoder.Encode(results)
}
