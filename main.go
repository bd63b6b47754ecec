package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Vector/vector-reviews-scraper/runner"
	"github.com/Vector/vector-reviews-scraper/runner/filerunner"
	"github.com/Vector/vector-reviews-scraper/runner/queryrunner"
)

func main() {
	_ = godotenv.Load() // Load .env file if present
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan

		log.Println("Received signal, shutting down...")

		cancel()
	}()

	err := newRootCmd().ExecuteContext(ctx)

	_ = runner.Telemetry().Close()

	cancel()

	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		os.Exit(1)
	}

	os.Exit(0)
}

func run(ctx context.Context, cfg *runner.Config) error {
	logger, err := runner.NewLogger(cfg.Debug)
	if err != nil {
		return err
	}

	defer func() { _ = logger.Sync() }()

	runner.Banner(cfg)

	runnerInstance, err := runnerFactory(cfg, logger)
	if err != nil {
		return err
	}

	if err := runnerInstance.Run(ctx); err != nil {
		_ = runnerInstance.Close(ctx)

		return err
	}

	return runnerInstance.Close(ctx)
}

func runnerFactory(cfg *runner.Config, logger *zap.Logger) (runner.Runner, error) {
	switch cfg.RunMode {
	case runner.RunModeFile:
		return filerunner.New(cfg, logger)
	case runner.RunModeQuery:
		return queryrunner.New(cfg, logger)
	default:
		return nil, fmt.Errorf("%w: %d", runner.ErrInvalidRunMode, cfg.RunMode)
	}
}
