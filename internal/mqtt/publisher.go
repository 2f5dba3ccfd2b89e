// Package mqtt publishes watches as Home Assistant MQTT device_tracker
// entities. The publisher uses Eclipse Paho v2's autopaho for
// connection management. On every (re-)connect it re-publishes the
// retained discovery config of every watch seen so far and an "online"
// availability message; a will message flips availability to "offline"
// on unexpected disconnects.
package mqtt

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"cmee-tracker/internal/config"
	"cmee-tracker/internal/device"

	"github.com/eclipse/paho.golang/autopaho"
	"github.com/eclipse/paho.golang/paho"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// Publisher manages the MQTT connection and publishes discovery and
// attribute messages for device records.
type Publisher struct {
	cfg    config.MQTTConfig
	name   string
	logger *slog.Logger

	mu    sync.Mutex
	cm    *autopaho.ConnectionManager
	known map[string]device.Record // dev_id → last record, for re-discovery
}

// New creates a Publisher but does not connect. name is the tracker
// instance name and prefixes the MQTT client id.
func New(cfg config.MQTTConfig, name string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		cfg:    cfg,
		name:   name,
		logger: logger,
		known:  make(map[string]device.Record),
	}
}

func (p *Publisher) Name() string {
	return "mqtt"
}

// Start connects to the broker. It waits up to 30s for the first
// connection; after that autopaho keeps retrying in the background.
func (p *Publisher) Start(ctx context.Context) error {
	brokerURL, err := url.Parse(p.cfg.Broker)
	if err != nil {
		return fmt.Errorf("parse mqtt broker URL: %w", err)
	}

	pahoCfg := autopaho.ClientConfig{
		ServerUrls:      []*url.URL{brokerURL},
		KeepAlive:       30,
		ConnectUsername: p.cfg.Username,
		ConnectPassword: []byte(p.cfg.Password),
		WillMessage: &paho.WillMessage{
			Topic:   p.AvailabilityTopic(),
			Payload: []byte("offline"),
			QoS:     1,
			Retain:  true,
		},
		OnConnectionUp: func(cm *autopaho.ConnectionManager, _ *paho.Connack) {
			p.logger.Info("mqtt connected to broker", "broker", p.cfg.Broker)
			p.rediscover(ctx, cm)
			p.publishAvailability(ctx, cm, "online")
		},
		OnConnectError: func(err error) {
			p.logger.Warn("mqtt connection error", "error", err)
		},
		ClientConfig: paho.ClientConfig{
			ClientID: ClientID(p.name),
		},
	}

	if brokerURL.Scheme == "mqtts" || brokerURL.Scheme == "ssl" {
		pahoCfg.TlsCfg = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}

	cm, err := autopaho.NewConnection(ctx, pahoCfg)
	if err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	p.mu.Lock()
	p.cm = cm
	p.mu.Unlock()

	connCtx, connCancel := context.WithTimeout(ctx, 30*time.Second)
	defer connCancel()
	if err := cm.AwaitConnection(connCtx); err != nil {
		p.logger.Warn("mqtt initial connection timed out, will retry in background", "error", err)
	}
	return nil
}

// Stop publishes "offline" and disconnects.
func (p *Publisher) Stop(ctx context.Context) error {
	cm := p.conn()
	if cm == nil {
		return nil
	}
	p.publishAvailability(ctx, cm, "offline")
	return cm.Disconnect(ctx)
}

// Publish sends discovery for watches not seen before and the
// attributes of every record.
func (p *Publisher) Publish(ctx context.Context, records []device.Record) error {
	cm := p.conn()
	if cm == nil {
		return errors.New("mqtt publisher not started")
	}

	var errs []error
	for _, rec := range records {
		p.mu.Lock()
		_, seen := p.known[rec.DevID]
		p.mu.Unlock()

		if !seen {
			if err := p.publishDiscovery(ctx, cm, rec); err != nil {
				errs = append(errs, err)
				continue
			}
		}
		p.mu.Lock()
		p.known[rec.DevID] = rec
		p.mu.Unlock()

		payload, err := json.Marshal(Attributes(rec))
		if err != nil {
			errs = append(errs, fmt.Errorf("marshal attributes %s: %w", rec.DevID, err))
			continue
		}
		if _, err := cm.Publish(ctx, &paho.Publish{
			Topic:   p.AttributesTopic(rec.DevID),
			Payload: payload,
			QoS:     1,
			Retain:  true,
		}); err != nil {
			errs = append(errs, fmt.Errorf("publish attributes %s: %w", rec.DevID, err))
		}
	}
	return errors.Join(errs...)
}

func (p *Publisher) conn() *autopaho.ConnectionManager {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cm
}

// ClientID returns a broker-unique client id prefixed with the slugified
// instance name.
func ClientID(name string) string {
	prefix := slug.Make(name)
	if prefix == "" {
		prefix = "cmee-tracker"
	}
	return prefix + "-" + uuid.NewString()[:8]
}

// --- Topic helpers ---

func (p *Publisher) AvailabilityTopic() string {
	return p.cfg.BaseTopic + "/availability"
}

func (p *Publisher) AttributesTopic(devID string) string {
	return p.cfg.BaseTopic + "/" + devID + "/attributes"
}

func (p *Publisher) DiscoveryTopic(devID string) string {
	return p.cfg.DiscoveryPrefix + "/device_tracker/" + devID + "/config"
}

// --- Discovery ---

func (p *Publisher) publishDiscovery(ctx context.Context, cm *autopaho.ConnectionManager, rec device.Record) error {
	topic := p.DiscoveryTopic(rec.DevID)
	payload, err := json.Marshal(NewTrackerConfig(rec, p.AttributesTopic(rec.DevID), p.AvailabilityTopic()))
	if err != nil {
		return fmt.Errorf("marshal discovery %s: %w", rec.DevID, err)
	}
	if _, err := cm.Publish(ctx, &paho.Publish{
		Topic:   topic,
		Payload: payload,
		QoS:     1,
		Retain:  true,
	}); err != nil {
		return fmt.Errorf("publish discovery %s: %w", rec.DevID, err)
	}
	p.logger.Debug("mqtt discovery published", "dev_id", rec.DevID, "topic", topic)
	return nil
}

func (p *Publisher) rediscover(ctx context.Context, cm *autopaho.ConnectionManager) {
	p.mu.Lock()
	records := make([]device.Record, 0, len(p.known))
	for _, rec := range p.known {
		records = append(records, rec)
	}
	p.mu.Unlock()

	for _, rec := range records {
		if err := p.publishDiscovery(ctx, cm, rec); err != nil {
			p.logger.Warn("mqtt discovery publish failed", "dev_id", rec.DevID, "error", err)
		}
	}
}

func (p *Publisher) publishAvailability(ctx context.Context, cm *autopaho.ConnectionManager, status string) {
	if _, err := cm.Publish(ctx, &paho.Publish{
		Topic:   p.AvailabilityTopic(),
		Payload: []byte(status),
		QoS:     1,
		Retain:  true,
	}); err != nil {
		p.logger.Warn("mqtt availability publish failed", "status", status, "error", err)
	} else {
		p.logger.Info("mqtt availability published", "status", status)
	}
}
