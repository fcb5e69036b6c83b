package scheduler

import (
	"context"
	"errors"
	"log"
	"time"

	"devtask/internal/config"
	"devtask/internal/metrics"
	"devtask/internal/runner"
)

// DefaultTask is the task watch mode runs on each cycle.
const DefaultTask = "clean.all"

// RunOnce executes a single clean cycle.
func RunOnce(ctx context.Context, r *runner.Runner, logger *log.Logger) error {
	if logger == nil {
		logger = log.Default()
	}
	if r == nil {
		return errors.New("nil runner")
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	start := time.Now()
	if err := r.Run(ctx, DefaultTask); err != nil {
		metrics.ErrorsTotal.Inc()
		return err
	}

	logger.Printf("clean cycle complete: duration=%.3fs", time.Since(start).Seconds())
	return nil
}

// Run executes clean cycles on the configured interval until the context
// is cancelled. A POST to the metrics server's /trigger endpoint forces a
// cycle between ticks.
func Run(ctx context.Context, cfg *config.Config, r *runner.Runner, logger *log.Logger) error {
	if logger == nil {
		logger = log.Default()
	}
	if cfg == nil {
		return errors.New("nil config")
	}

	if err := RunOnce(ctx, r, logger); err != nil {
		return err
	}

	ticker := time.NewTicker(cfg.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Println("watch mode shutting down")
			return ctx.Err()
		case <-ticker.C:
			if err := RunOnce(ctx, r, logger); err != nil {
				logger.Printf("error running clean cycle: %v", err)
			}
		case <-metrics.TriggerChannel():
			logger.Println("clean cycle triggered")
			if err := RunOnce(ctx, r, logger); err != nil {
				logger.Printf("error running clean cycle: %v", err)
			}
		}
	}
}
