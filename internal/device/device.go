// Package device defines the normalized watch record handed to the
// home automation host on every successful poll.
package device

const (
	// SourceTypeGPS is the device_tracker source type for every record.
	SourceTypeGPS = "gps"
	Icon          = "mdi:watch"

	StatusOffline = "Offline"
	StatusOnline  = "Online"
	Unknown       = "Unknown"
)

// Record is one tracked watch. Field names follow the Home Assistant
// device_tracker.see payload so the record can be posted as is.
type Record struct {
	HostName    string     `json:"host_name"`
	DevID       string     `json:"dev_id"`
	GPS         [2]float64 `json:"gps"`
	GPSAccuracy *int       `json:"gps_accuracy,omitempty"`
	Battery     *int       `json:"battery,omitempty"`
	SourceType  string     `json:"source_type"`
	Icon        string     `json:"icon"`
	Attributes  Attributes `json:"attributes"`
}

type Attributes struct {
	LastUpdated     string `json:"last_updated"`
	WatchID         string `json:"watch_id"`
	WatchSID        string `json:"watch_sid"`
	Status          string `json:"watch_status"`
	Location        string `json:"watch_location"`
	PositioningTime string `json:"watch_positioning_time"`
	ReceptionTime   string `json:"watch_reception_time"`
}

func (r Record) Latitude() float64 {
	return r.GPS[0]
}

func (r Record) Longitude() float64 {
	return r.GPS[1]
}
