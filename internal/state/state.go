// Package state keeps the latest poll summary in memory together with
// the device list of the last successful cycle, which stays in place
// while later cycles fail. It is safe for concurrent use.
package state

import (
	"sync"
	"time"

	"cmee-tracker/internal/device"
	"cmee-tracker/internal/tracker"
)

// Status is the JSON document served on /status.
type Status struct {
	Latest      tracker.Summary `json:"latest"`
	Devices     []device.Record `json:"devices"`
	LastSuccess time.Time       `json:"last_success"`
	Cycles      int             `json:"cycles"`
	Failures    int             `json:"failures"`
}

var (
	mu      sync.RWMutex
	current Status
)

// Update stores the provided summary. Devices are only replaced when
// the cycle succeeded.
func Update(summary tracker.Summary) {
	mu.Lock()
	defer mu.Unlock()
	current.Latest = summary
	current.Cycles++
	if !summary.OK() {
		current.Failures++
		return
	}
	current.Devices = summary.Devices
	current.LastSuccess = summary.StartTime
}

// Get returns a snapshot of the current status.
func Get() Status {
	mu.RLock()
	defer mu.RUnlock()
	s := current
	s.Devices = append([]device.Record(nil), current.Devices...)
	return s
}

// Reset clears the stored status.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	current = Status{}
}
