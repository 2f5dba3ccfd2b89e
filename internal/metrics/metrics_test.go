package metrics_test

import (
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"cmee-tracker/internal/device"
	"cmee-tracker/internal/metrics"
	"cmee-tracker/internal/tracker"
)

var _ = Describe("Collector", func() {
	var (
		reg *prometheus.Registry
		c   *metrics.Collector
	)

	BeforeEach(func() {
		reg = prometheus.NewRegistry()
		c = metrics.New(reg)
	})

	It("records a successful cycle", func() {
		batt := 80
		c.ObserveCycle(tracker.Summary{
			StartTime: time.Unix(1700000000, 0),
			Duration:  2 * time.Second,
			Devices: []device.Record{
				{DevID: "cmee_a", Battery: &batt, Attributes: device.Attributes{Status: device.StatusOnline}},
				{DevID: "cmee_b", Attributes: device.Attributes{Status: device.Unknown}},
			},
		})

		Expect(testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP cmee_devices Devices returned by the last successful poll
# TYPE cmee_devices gauge
cmee_devices 2
# HELP cmee_device_battery_percent Battery level reported by the watch
# TYPE cmee_device_battery_percent gauge
cmee_device_battery_percent{dev_id="cmee_a"} 80
# HELP cmee_device_online 1 if the watch reports online, 0 if offline, -1 if unknown
# TYPE cmee_device_online gauge
cmee_device_online{dev_id="cmee_a"} 1
cmee_device_online{dev_id="cmee_b"} -1
# HELP cmee_last_success_timestamp_seconds Unix timestamp of the last successful poll
# TYPE cmee_last_success_timestamp_seconds gauge
cmee_last_success_timestamp_seconds 1.7e+09
# HELP cmee_poll_cycles_total Poll cycles by result (success or failure)
# TYPE cmee_poll_cycles_total counter
cmee_poll_cycles_total{result="success"} 1
`), "cmee_devices", "cmee_device_battery_percent", "cmee_device_online",
			"cmee_last_success_timestamp_seconds", "cmee_poll_cycles_total")).To(Succeed())
	})

	It("counts failures without touching device gauges", func() {
		c.ObserveCycle(tracker.Summary{
			Devices: []device.Record{{DevID: "cmee_a", Attributes: device.Attributes{Status: device.StatusOffline}}},
		})
		c.ObserveCycle(tracker.Summary{Errors: []string{"login: connection refused"}})

		Expect(testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP cmee_devices Devices returned by the last successful poll
# TYPE cmee_devices gauge
cmee_devices 1
# HELP cmee_device_online 1 if the watch reports online, 0 if offline, -1 if unknown
# TYPE cmee_device_online gauge
cmee_device_online{dev_id="cmee_a"} 0
# HELP cmee_poll_cycles_total Poll cycles by result (success or failure)
# TYPE cmee_poll_cycles_total counter
cmee_poll_cycles_total{result="failure"} 1
cmee_poll_cycles_total{result="success"} 1
`), "cmee_devices", "cmee_device_online", "cmee_poll_cycles_total")).To(Succeed())
		Expect(testutil.CollectAndCount(reg, "cmee_poll_duration_seconds")).To(Equal(1))
	})
})
