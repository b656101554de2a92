package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/exp/slog"
	"golang.org/x/sync/errgroup"

	"github.com/alovak/pix-donations/donation"
	"github.com/alovak/pix-donations/internal/telemetry"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	if err := run(logger); err != nil {
		logger.Error("donation server stopped", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx := context.Background()

	cfg, err := donation.LoadConfig(ctx)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	_, shutdownTelemetry, err := telemetry.New(ctx, telemetry.Config{
		Service:       cfg.Telemetry.Service,
		Environment:   cfg.Telemetry.Environment,
		CollectorAddr: cfg.Telemetry.CollectorAddr,
	})
	if err != nil {
		return fmt.Errorf("setting up telemetry: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(ctx); err != nil {
			logger.Error("flushing traces", "err", err)
		}
	}()

	app := donation.NewApp(logger, cfg)
	if err := app.Start(); err != nil {
		return fmt.Errorf("starting app: %w", err)
	}

	mainCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gCtx := errgroup.WithContext(mainCtx)

	g.Go(func() error {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(c)

		select {
		case sig := <-c:
			logger.Info("received shutdown signal", "signal", sig)
			return fmt.Errorf("received signal: %s", sig)
		case <-gCtx.Done():
			return gCtx.Err()
		}
	})

	g.Go(func() error {
		<-gCtx.Done()
		app.Shutdown()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Info("shutdown complete", "reason", err)
	}
	return nil
}
