// Package publish hands device records to the configured host sinks.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cmee-tracker/internal/device"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -o publishfakes/fake_publisher.go . Publisher

// Publisher upserts device records in one host system.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, records []device.Record) error
}

// Fanout sends every batch to all publishers. One failing sink does
// not keep the others from receiving the batch.
type Fanout struct {
	publishers []Publisher
	logger     *slog.Logger
}

func NewFanout(logger *slog.Logger, publishers ...Publisher) *Fanout {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fanout{publishers: publishers, logger: logger}
}

// Len returns the number of sinks.
func (f *Fanout) Len() int {
	return len(f.publishers)
}

// Publish returns the failures of all sinks joined.
func (f *Fanout) Publish(ctx context.Context, records []device.Record) error {
	var errs []error
	for _, p := range f.publishers {
		if err := p.Publish(ctx, records); err != nil {
			f.logger.Warn("publish failed", "sink", p.Name(), "devices", len(records), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		f.logger.Debug("published", "sink", p.Name(), "devices", len(records))
	}
	return errors.Join(errs...)
}
