package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/mikey/staffing-mail-agent/internal/config"
	"github.com/mikey/staffing-mail-agent/internal/core"
	"github.com/mikey/staffing-mail-agent/internal/di"
	"github.com/mikey/staffing-mail-agent/internal/ports"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	cfg *config.Config,
	logger *zap.Logger,
	agent ports.MailboxAgent,
	recognizer core.EntityRecognizer,
	store core.ResultRepository,
	publisher core.ResultPublisher,
) error {
	defer logger.Sync()
	defer shutdown(logger, recognizer, store, publisher)

	logger.Info("Starting staffing agent",
		zap.String("mailbox", cfg.GetString("mailbox.type")),
		zap.String("recognizer", cfg.GetRecognizer().Provider))

	// Start the agent
	if err := agent.Start(); err != nil {
		logger.Error("Failed to start mailbox agent", zap.Error(err))
		return err
	}

	agentCfg, err := cfg.GetAgent()
	if err != nil {
		return err
	}
	if agentCfg.RunOnce && cfg.GetString("mailbox.type") == "imap" {
		logger.Info("Single pass complete")
		return nil
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	// Stop the agent
	if err := agent.Stop(); err != nil {
		logger.Error("Failed to stop mailbox agent", zap.Error(err))
	}

	logger.Info("Shutdown complete")
	return nil
}

// shutdown releases the resources held by the pipeline
func shutdown(logger *zap.Logger, recognizer core.EntityRecognizer, store core.ResultRepository, publisher core.ResultPublisher) {
	if closer, ok := recognizer.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close recognizer", zap.Error(err))
		}
	}

	if stopper, ok := store.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	if closer, ok := publisher.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close publisher", zap.Error(err))
		}
	}
}
