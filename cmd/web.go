package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"cmee-tracker/internal/config"
	"cmee-tracker/internal/homeassistant"
	"cmee-tracker/internal/metrics"
	"cmee-tracker/internal/mqtt"
	"cmee-tracker/internal/natspub"
	"cmee-tracker/internal/publish"
	"cmee-tracker/internal/scheduler"
	"cmee-tracker/internal/state"
	"cmee-tracker/internal/tracker"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

// webCmd runs the background poll loop and serves the status API.
var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Run background polling, publish devices and serve /status and /metrics",
	RunE:  runWeb,
}

func init() {
	rootCmd.AddCommand(webCmd)
	d := config.Defaults()
	flags := webCmd.Flags()

	flags.Duration("scan-interval", d.ScanInterval, "Interval between poll cycles")
	flags.Duration("min-interval", d.MinInterval, "Lower bound for the scan interval")
	flags.Bool("force-interval", d.ForceInterval, "Allow a scan interval below the minimum")
	flags.String("listen", d.Web.Listen, "Address for the status and metrics endpoints")
	flags.String("homeassistant-url", "", "Home Assistant base URL (enables the REST sink)")
	flags.String("homeassistant-token", "", "Home Assistant long-lived access token")
	flags.String("mqtt-broker", "", "MQTT broker URL, e.g. mqtt://host:1883 (enables the MQTT sink)")
	flags.String("mqtt-username", "", "MQTT username")
	flags.String("mqtt-password", "", "MQTT password")
	flags.String("mqtt-discovery-prefix", d.MQTT.DiscoveryPrefix, "Home Assistant MQTT discovery prefix")
	flags.String("nats-url", "", "NATS server URL (enables the NATS sink)")
	flags.String("nats-subject", d.NATS.Subject, "NATS subject prefix")

	bindFlags(flags.Lookup, map[string]string{
		"scan_interval":         "scan-interval",
		"min_interval":          "min-interval",
		"force_interval":        "force-interval",
		"web.listen":            "listen",
		"homeassistant.url":     "homeassistant-url",
		"homeassistant.token":   "homeassistant-token",
		"mqtt.broker":           "mqtt-broker",
		"mqtt.username":         "mqtt-username",
		"mqtt.password":         "mqtt-password",
		"mqtt.discovery_prefix": "mqtt-discovery-prefix",
		"nats.url":              "nats-url",
		"nats.subject":          "nats-subject",
	})
}

func runWeb(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.New(reg)

	fanout, cleanup, err := buildPublishers(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	server := &http.Server{
		Addr:              cfg.Web.Listen,
		Handler:           NewMux(reg),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
	go func() {
		logger.Info("status server listening", "addr", cfg.Web.Listen, "paths", []string{"/status", "/metrics"})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("status server error", "error", err)
		}
	}()

	interval := cfg.EffectiveInterval()
	if interval != cfg.ScanInterval {
		logger.Info("scan interval raised to minimum", "configured", cfg.ScanInterval, "effective", interval)
	}
	opts := tracker.Options{Config: cfg, Logger: logger}
	return scheduler.Every(ctx, interval, logger, func(ctx context.Context) {
		PollOnce(ctx, opts, fanout, collector)
	})
}

// PollOnce runs a cycle, records it, and publishes the devices when the
// cycle succeeded. After a failure the host keeps the previous devices.
func PollOnce(ctx context.Context, opts tracker.Options, fanout *publish.Fanout, collector *metrics.Collector) tracker.Summary {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	summary, err := tracker.Run(ctx, opts)
	state.Update(summary)
	if collector != nil {
		collector.ObserveCycle(summary)
	}
	if err != nil {
		return summary
	}
	if len(summary.Devices) == 0 {
		logger.Warn("no devices found", "cycle", summary.CycleID)
		return summary
	}
	if fanout != nil && fanout.Len() > 0 {
		// Failures are logged per sink by the fan-out.
		_ = fanout.Publish(ctx, summary.Devices)
	}
	return summary
}

// NewMux serves the latest state on /status and reg on /metrics.
func NewMux(reg *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(state.Get()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	return mux
}

// buildPublishers connects every configured sink. The returned cleanup
// disconnects them.
func buildPublishers(ctx context.Context, cfg config.Config, logger *slog.Logger) (*publish.Fanout, func(), error) {
	var (
		pubs    []publish.Publisher
		closers []func()
	)
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.HomeAssistant.URL != "" {
		ha, err := homeassistant.NewClient(cfg.HomeAssistant.URL, cfg.HomeAssistant.Token, logger)
		if err != nil {
			return nil, cleanup, err
		}
		if err := ha.Ping(ctx); err != nil {
			logger.Warn("home assistant not reachable yet", "url", cfg.HomeAssistant.URL, "error", err)
		}
		pubs = append(pubs, ha)
	}

	if cfg.MQTT.Broker != "" {
		mp := mqtt.New(cfg.MQTT, cfg.Name, logger)
		if err := mp.Start(ctx); err != nil {
			cleanup()
			return nil, func() {}, err
		}
		closers = append(closers, func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := mp.Stop(stopCtx); err != nil {
				logger.Warn("mqtt disconnect failed", "error", err)
			}
		})
		pubs = append(pubs, mp)
	}

	if cfg.NATS.URL != "" {
		np := natspub.New(cfg.NATS, cfg.Name, logger)
		if err := np.Connect(); err != nil {
			cleanup()
			return nil, func() {}, err
		}
		closers = append(closers, np.Close)
		pubs = append(pubs, np)
	}

	if len(pubs) == 0 {
		logger.Info("no sinks configured, devices are only served on /status", "listen", cfg.Web.Listen)
	}
	return publish.NewFanout(logger, pubs...), cleanup, nil
}
