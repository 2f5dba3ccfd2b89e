// Package scheduler runs the poll job on a fixed interval. Runs never
// overlap: a tick that fires while the previous run is still going is
// skipped.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Every runs job once right away, then every interval until ctx is
// done. It blocks and waits for a running job before returning.
func Every(ctx context.Context, interval time.Duration, logger *slog.Logger, job func(context.Context)) error {
	if interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", interval)
	}
	if logger == nil {
		logger = slog.Default()
	}
	cl := cronLogger{logger: logger}

	// Recover must sit inside SkipIfStillRunning so a panic still frees the run slot.
	wrapped := cron.NewChain(cron.SkipIfStillRunning(cl), cron.Recover(cl)).
		Then(cron.FuncJob(func() { job(ctx) }))

	wrapped.Run()
	if ctx.Err() != nil {
		return nil
	}

	c := cron.New(cron.WithLogger(cl))
	c.Schedule(cron.Every(interval), wrapped)
	c.Start()
	logger.Info("scheduler started", "interval", interval)

	<-ctx.Done()
	<-c.Stop().Done()
	logger.Info("scheduler stopped")
	return nil
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
