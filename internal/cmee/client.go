// Package cmee talks to the CMEE watch tracking web service. One Client
// value owns one cookie session and is meant to live for a single poll
// cycle: login, alarm data, device data, logout.
package cmee

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"cmee-tracker/internal/config"
	"cmee-tracker/internal/httpkit"
)

const maxBodySize = 4 << 20

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -o cmeefakes/fake_client.go . Client

type Client interface {
	Login(ctx context.Context) (string, error)
	FetchAlarmData(ctx context.Context, token, startTime string) ([]byte, error)
	FetchDeviceData(ctx context.Context, token string) ([]byte, error)
	Logout(ctx context.Context) error
}

type sessionClient struct {
	cfg        config.Config
	httpClient *http.Client
	logger     *slog.Logger
}

// New returns a Client with a fresh cookie session. cfg.VerifySSL
// applies to every request of the session.
func New(cfg config.Config, logger *slog.Logger) (Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts := []httpkit.ClientOption{
		httpkit.WithCookieJar(),
		httpkit.WithTimeout(cfg.RequestTimeout),
	}
	if !cfg.VerifySSL {
		opts = append(opts, httpkit.WithTLSInsecureSkipVerify())
	}
	hc, err := httpkit.NewClient(opts...)
	if err != nil {
		return nil, err
	}
	return &sessionClient{cfg: cfg, httpClient: hc, logger: logger}, nil
}

// Login returns the usermd5 token. A missing or unreadable token yields
// "" and an error wrapping ErrNoToken; transport failures yield a
// StepError that does not.
func (c *sessionClient) Login(ctx context.Context) (string, error) {
	status, body, err := c.get(ctx, StepLogin, FormatURL(c.cfg.LoginURL, c.cfg.Username, c.cfg.Password))
	if err != nil {
		return "", stepErr(StepLogin, err)
	}
	if status != http.StatusOK {
		return "", stepErr(StepLogin, fmt.Errorf("%w: HTTP %d", ErrNoToken, status))
	}
	token, err := ParseToken(body)
	if err != nil {
		return "", stepErr(StepLogin, err)
	}
	return token, nil
}

// FetchAlarmData returns the alarm body. The status code is not checked.
func (c *sessionClient) FetchAlarmData(ctx context.Context, token, startTime string) ([]byte, error) {
	_, body, err := c.get(ctx, StepAlarmData, FormatURL(c.cfg.AlarmDataURL, token, startTime))
	if err != nil {
		return nil, stepErr(StepAlarmData, err)
	}
	return body, nil
}

func (c *sessionClient) FetchDeviceData(ctx context.Context, token string) ([]byte, error) {
	status, body, err := c.get(ctx, StepDeviceData, FormatURL(c.cfg.DeviceDataURL, token))
	if err != nil {
		return nil, stepErr(StepDeviceData, err)
	}
	if status != http.StatusOK {
		return nil, stepErr(StepDeviceData, fmt.Errorf("HTTP %d", status))
	}
	return body, nil
}

// Logout ends the session. Only transport failures are reported.
func (c *sessionClient) Logout(ctx context.Context) error {
	if _, _, err := c.get(ctx, StepLogout, FormatURL(c.cfg.LogoutURL)); err != nil {
		return stepErr(StepLogout, err)
	}
	return nil
}

func (c *sessionClient) get(ctx context.Context, step Step, rawURL string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The login URL carries the password; keep it out of the error.
		return 0, nil, fmt.Errorf("request %s: %w", step, redact(err))
	}
	defer httpkit.DrainAndClose(resp.Body, 4096)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read %s response: %w", step, err)
	}
	c.logger.Debug("cmee response", "step", step, "status", resp.StatusCode, "bytes", len(body))
	return resp.StatusCode, body, nil
}
