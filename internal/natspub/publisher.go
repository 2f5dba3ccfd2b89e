// Package natspub publishes watch positions to NATS, one subject per
// watch (<subject>.<dev_id>).
package natspub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cmee-tracker/internal/config"
	"cmee-tracker/internal/device"

	"github.com/nats-io/nats.go"
)

// Position is the message published per watch.
type Position struct {
	DeviceID        string    `json:"deviceId"`
	Name            string    `json:"name"`
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
	Accuracy        *int      `json:"accuracy"`
	Battery         *int      `json:"battery"`
	Status          string    `json:"status"`
	Location        string    `json:"location"`
	PositioningTime string    `json:"positioningTime"`
	ReceptionTime   string    `json:"receptionTime"`
	ServerTime      time.Time `json:"serverTime"`
}

type Publisher struct {
	cfg    config.NATSConfig
	name   string
	logger *slog.Logger
	conn   *nats.Conn
}

// New creates a Publisher for the tracker instance called name.
func New(cfg config.NATSConfig, name string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{cfg: cfg, name: name, logger: logger}
}

func (p *Publisher) Name() string {
	return "nats"
}

// Connect dials the server. Reconnects are unlimited.
func (p *Publisher) Connect() error {
	p.logger.Info("connecting to nats", "url", p.cfg.URL)
	opts := []nats.Option{
		nats.Name(p.ConnectionName()),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			p.logger.Warn("disconnected from nats", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			p.logger.Info("reconnected to nats", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			p.logger.Info("nats connection closed")
		}),
	}
	if p.cfg.Username != "" {
		opts = append(opts, nats.UserInfo(p.cfg.Username, p.cfg.Password))
	}

	nc, err := nats.Connect(p.cfg.URL, opts...)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	p.conn = nc
	return nil
}

// ConnectionName is the client name shown in the server's connection list.
func (p *Publisher) ConnectionName() string {
	if p.name == "" {
		return "cmee-tracker"
	}
	return p.name
}

func (p *Publisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}

// Subject returns the subject for one watch.
func (p *Publisher) Subject(devID string) string {
	return p.cfg.Subject + "." + devID
}

// Publish sends one Position per record and flushes.
func (p *Publisher) Publish(ctx context.Context, records []device.Record) error {
	if p.conn == nil {
		return errors.New("nats publisher not connected")
	}
	now := time.Now().UTC()
	var errs []error
	for _, rec := range records {
		payload, err := json.Marshal(NewPosition(rec, now))
		if err != nil {
			errs = append(errs, fmt.Errorf("marshal %s: %w", rec.DevID, err))
			continue
		}
		if err := p.conn.Publish(p.Subject(rec.DevID), payload); err != nil {
			errs = append(errs, fmt.Errorf("publish %s: %w", rec.DevID, err))
		}
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("flush: %w", err))
	}
	return errors.Join(errs...)
}

// NewPosition converts rec into the wire message.
func NewPosition(rec device.Record, serverTime time.Time) Position {
	return Position{
		DeviceID:        rec.DevID,
		Name:            rec.HostName,
		Latitude:        rec.Latitude(),
		Longitude:       rec.Longitude(),
		Accuracy:        rec.GPSAccuracy,
		Battery:         rec.Battery,
		Status:          rec.Attributes.Status,
		Location:        rec.Attributes.Location,
		PositioningTime: rec.Attributes.PositioningTime,
		ReceptionTime:   rec.Attributes.ReceptionTime,
		ServerTime:      serverTime,
	}
}
