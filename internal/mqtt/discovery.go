package mqtt

import (
	"cmee-tracker/internal/device"
)

// DeviceInfo holds the Home Assistant device registry fields. Each watch
// is its own HA device so the tracker entity groups under it.
type DeviceInfo struct {
	Identifiers  []string `json:"identifiers"`
	Name         string   `json:"name"`
	Manufacturer string   `json:"manufacturer"`
	Model        string   `json:"model"`
}

// TrackerConfig is the discovery payload for an MQTT device_tracker.
// Without a state topic HA derives the zone from the GPS attributes
// published on JSONAttributesTopic.
type TrackerConfig struct {
	Name                string     `json:"name"`
	UniqueID            string     `json:"unique_id"`
	ObjectID            string     `json:"object_id,omitempty"`
	JSONAttributesTopic string     `json:"json_attributes_topic"`
	AvailabilityTopic   string     `json:"availability_topic"`
	SourceType          string     `json:"source_type"`
	Icon                string     `json:"icon,omitempty"`
	Device              DeviceInfo `json:"device"`
}

// NewTrackerConfig builds the discovery payload for rec.
func NewTrackerConfig(rec device.Record, attributesTopic, availabilityTopic string) TrackerConfig {
	return TrackerConfig{
		Name:                rec.HostName,
		UniqueID:            rec.DevID,
		ObjectID:            rec.DevID,
		JSONAttributesTopic: attributesTopic,
		AvailabilityTopic:   availabilityTopic,
		SourceType:          rec.SourceType,
		Icon:                rec.Icon,
		Device: DeviceInfo{
			Identifiers:  []string{rec.DevID},
			Name:         rec.HostName,
			Manufacturer: "CMEE",
			Model:        "GPS Watch",
		},
	}
}

// Attributes builds the json_attributes payload. latitude, longitude,
// gps_accuracy and battery_level are the keys HA reads for location.
func Attributes(rec device.Record) map[string]any {
	attrs := map[string]any{
		"latitude":               rec.Latitude(),
		"longitude":              rec.Longitude(),
		"source_type":            rec.SourceType,
		"last_updated":           rec.Attributes.LastUpdated,
		"watch_id":               rec.Attributes.WatchID,
		"watch_sid":              rec.Attributes.WatchSID,
		"watch_status":           rec.Attributes.Status,
		"watch_location":         rec.Attributes.Location,
		"watch_positioning_time": rec.Attributes.PositioningTime,
		"watch_reception_time":   rec.Attributes.ReceptionTime,
	}
	if rec.GPSAccuracy != nil {
		attrs["gps_accuracy"] = *rec.GPSAccuracy
	}
	if rec.Battery != nil {
		attrs["battery_level"] = *rec.Battery
	}
	return attrs
}
