// Package homeassistant publishes device records through the Home
// Assistant REST API using the device_tracker.see service.
package homeassistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"cmee-tracker/internal/device"
	"cmee-tracker/internal/httpkit"
)

// Client is a Home Assistant REST API client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// APIStatus represents the HA API status response.
type APIStatus struct {
	Message string `json:"message"`
}

// NewClient creates a new Home Assistant client. baseURL is the HA root,
// e.g. "http://homeassistant.local:8123".
func NewClient(baseURL, token string, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	hc, err := httpkit.NewClient(httpkit.WithTimeout(15 * time.Second))
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		httpClient: hc,
		logger:     logger,
	}, nil
}

func (c *Client) Name() string {
	return "homeassistant"
}

// Ping checks if the API is reachable.
func (c *Client) Ping(ctx context.Context) error {
	var status APIStatus
	if err := c.do(ctx, http.MethodGet, "/api/", nil, &status); err != nil {
		return err
	}
	if status.Message != "API running." {
		return fmt.Errorf("unexpected API status: %s", status.Message)
	}
	return nil
}

// See upserts one tracked device.
func (c *Client) See(ctx context.Context, rec device.Record) error {
	return c.do(ctx, http.MethodPost, "/api/services/device_tracker/see", SeePayload(rec), nil)
}

// Publish calls See for every record and joins the failures.
func (c *Client) Publish(ctx context.Context, records []device.Record) error {
	var errs []error
	for _, rec := range records {
		if err := c.See(ctx, rec); err != nil {
			errs = append(errs, fmt.Errorf("see %s: %w", rec.DevID, err))
			continue
		}
		c.logger.Debug("device seen", "dev_id", rec.DevID)
	}
	return errors.Join(errs...)
}

// SeePayload builds the device_tracker.see service data. The service
// schema has no icon key, so the icon travels as an attribute.
func SeePayload(rec device.Record) map[string]any {
	attrs := map[string]any{
		"icon":                   rec.Icon,
		"last_updated":           rec.Attributes.LastUpdated,
		"watch_id":               rec.Attributes.WatchID,
		"watch_sid":              rec.Attributes.WatchSID,
		"watch_status":           rec.Attributes.Status,
		"watch_location":         rec.Attributes.Location,
		"watch_positioning_time": rec.Attributes.PositioningTime,
		"watch_reception_time":   rec.Attributes.ReceptionTime,
	}
	data := map[string]any{
		"dev_id":      rec.DevID,
		"host_name":   rec.HostName,
		"gps":         []float64{rec.Latitude(), rec.Longitude()},
		"source_type": rec.SourceType,
		"attributes":  attrs,
	}
	if rec.GPSAccuracy != nil {
		data["gps_accuracy"] = *rec.GPSAccuracy
	}
	if rec.Battery != nil {
		data["battery"] = *rec.Battery
	}
	return data
}

func (c *Client) do(ctx context.Context, method, path string, data any, result any) error {
	var reqBody []byte
	if data != nil {
		var err error
		reqBody, err = json.Marshal(data)
		if err != nil {
			return fmt.Errorf("marshal data: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer httpkit.DrainAndClose(resp.Body, 4096)

	if resp.StatusCode != http.StatusOK {
		body := httpkit.ReadErrorBody(resp.Body, 512)
		return fmt.Errorf("API error %d: %s", resp.StatusCode, body)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
