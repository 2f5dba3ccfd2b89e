// Package metrics exposes poll cycle outcomes as Prometheus collectors.
package metrics

import (
	"cmee-tracker/internal/device"
	"cmee-tracker/internal/tracker"

	"github.com/prometheus/client_golang/prometheus"
)

type Collector struct {
	cycles      *prometheus.CounterVec
	duration    prometheus.Histogram
	devices     prometheus.Gauge
	lastSuccess prometheus.Gauge
	battery     *prometheus.GaugeVec
	online      *prometheus.GaugeVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		cycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cmee_poll_cycles_total",
				Help: "Poll cycles by result (success or failure)",
			},
			[]string{"result"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "cmee_poll_duration_seconds",
				Help:    "Duration of poll cycles",
				Buckets: prometheus.DefBuckets,
			},
		),
		devices: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "cmee_devices",
				Help: "Devices returned by the last successful poll",
			},
		),
		lastSuccess: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "cmee_last_success_timestamp_seconds",
				Help: "Unix timestamp of the last successful poll",
			},
		),
		battery: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cmee_device_battery_percent",
				Help: "Battery level reported by the watch",
			},
			[]string{"dev_id"},
		),
		online: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cmee_device_online",
				Help: "1 if the watch reports online, 0 if offline, -1 if unknown",
			},
			[]string{"dev_id"},
		),
	}
	reg.MustRegister(c.cycles, c.duration, c.devices, c.lastSuccess, c.battery, c.online)
	return c
}

// ObserveCycle records one poll summary. Per-device gauges keep their
// previous values when the cycle failed.
func (c *Collector) ObserveCycle(s tracker.Summary) {
	c.duration.Observe(s.Duration.Seconds())
	if !s.OK() {
		c.cycles.WithLabelValues("failure").Inc()
		return
	}
	c.cycles.WithLabelValues("success").Inc()
	c.devices.Set(float64(len(s.Devices)))
	c.lastSuccess.Set(float64(s.StartTime.Unix()))

	for _, rec := range s.Devices {
		if rec.Battery != nil {
			c.battery.WithLabelValues(rec.DevID).Set(float64(*rec.Battery))
		}
		c.online.WithLabelValues(rec.DevID).Set(onlineValue(rec.Attributes.Status))
	}
}

func onlineValue(status string) float64 {
	switch status {
	case device.StatusOnline:
		return 1
	case device.StatusOffline:
		return 0
	default:
		return -1
	}
}
