// Package tracker runs one poll cycle against the CMEE service: login,
// alarm data, device data, logout, then normalization. It is usable from
// the one-shot CLI command and from the background loop alike.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cmee-tracker/internal/cmee"
	"cmee-tracker/internal/config"
	"cmee-tracker/internal/device"
	"cmee-tracker/internal/normalize"

	"github.com/google/uuid"
)

// Options holds the arguments for a poll cycle.
type Options struct {
	Config config.Config
	Logger *slog.Logger
	// Clock drives the alarm start time and last_updated. Nil means wall clock.
	Clock normalize.Clock
	// TestClient is used only for dependency injection in testing. Leave nil in production.
	TestClient cmee.Client
}

// Summary holds the outcome of a poll cycle. Devices is nil when the
// cycle failed.
type Summary struct {
	CycleID       string          `json:"cycle_id"`
	TokenAcquired bool            `json:"token_acquired"`
	Devices       []device.Record `json:"devices"`
	Errors        []string        `json:"errors,omitempty"`
	Warnings      []string        `json:"warnings,omitempty"`
	StartTime     time.Time       `json:"start_time"`
	Duration      time.Duration   `json:"duration"`
}

// OK reports whether the cycle produced a device list.
func (s Summary) OK() bool {
	return len(s.Errors) == 0
}

// Run executes one poll cycle. Any failure, including a panic while
// parsing, ends the cycle with an error and no devices.
func Run(ctx context.Context, opts Options) (summary Summary, err error) {
	start := time.Now()
	summary.CycleID = uuid.NewString()
	summary.StartTime = start

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("cycle", summary.CycleID)

	clock := opts.Clock
	if clock == nil {
		clock = normalize.RealClock{}
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("poll cycle panicked: %v", r)
		}
		if err != nil {
			summary.Devices = nil
			summary.Errors = append(summary.Errors, err.Error())
			logger.Error("poll cycle failed", "error", err)
		}
		summary.Duration = time.Since(start)
	}()

	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return summary, fmt.Errorf("invalid config: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return summary, err
	}

	client := opts.TestClient
	if client == nil {
		client, err = cmee.New(cfg, logger)
		if err != nil {
			return summary, fmt.Errorf("create session: %w", err)
		}
	}

	logger.Debug("requesting cmee data")

	token, err := client.Login(ctx)
	switch {
	case errors.Is(err, cmee.ErrNoToken):
		logger.Warn("login returned no session token, continuing with empty token", "error", err)
		summary.Warnings = append(summary.Warnings, err.Error())
		token = ""
	case err != nil:
		return summary, err
	default:
		summary.TokenAcquired = token != ""
	}

	startTime := cmee.AlarmStartTime(clock.Now(), loc)
	alarms, err := client.FetchAlarmData(ctx, token, startTime)
	if err != nil {
		return summary, err
	}
	logger.Log(ctx, config.LevelTrace, "alarm data retrieved", "starttime", startTime, "body", string(alarms))

	body, err := client.FetchDeviceData(ctx, token)
	if err != nil {
		return summary, err
	}
	logger.Log(ctx, config.LevelTrace, "device data retrieved", "body", string(body))

	records, warnings, err := normalize.NewWithClock(loc, clock, logger).Normalize(body)
	if err != nil {
		return summary, &cmee.StepError{Step: cmee.StepDeviceData, Err: err}
	}
	for _, w := range warnings {
		logger.Debug("row field defaulted", "row", w.Row, "device", w.DeviceID, "field", w.Field, "skipped", w.Skipped, "error", w.Err)
		summary.Warnings = append(summary.Warnings, w.Error())
	}

	if err := client.Logout(ctx); err != nil {
		return summary, err
	}

	summary.Devices = records
	if len(records) == 0 {
		logger.Info("no devices found")
	} else {
		logger.Info("poll cycle finished", "devices", len(records), "warnings", len(summary.Warnings))
	}
	return summary, nil
}
