// Package normalize maps device data rows from the CMEE service into
// device records. Malformed optional fields fall back to defaults and
// are reported as FieldErrors; only rows that cannot be identified or
// located are dropped.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cmee-tracker/internal/cmee"
	"cmee-tracker/internal/device"
)

var (
	ErrMissing = errors.New("field missing")
	ErrInvalid = errors.New("field invalid")
)

// FieldError describes one field of one row that was defaulted, or the
// reason a row was skipped.
type FieldError struct {
	Row      int
	DeviceID string
	Field    string
	Skipped  bool
	Err      error
}

func (e FieldError) Error() string {
	msg := fmt.Sprintf("row %d", e.Row)
	if e.DeviceID != "" {
		msg += " (" + e.DeviceID + ")"
	}
	msg += fmt.Sprintf(": %s: %v", e.Field, e.Err)
	if e.Skipped {
		msg += " (row skipped)"
	}
	return msg
}

func (e FieldError) Unwrap() error {
	return e.Err
}

type Normalizer struct {
	loc    *time.Location
	clock  Clock
	logger *slog.Logger
}

// New returns a Normalizer presenting times in loc (time.Local when nil).
func New(loc *time.Location, logger *slog.Logger) *Normalizer {
	return NewWithClock(loc, RealClock{}, logger)
}

func NewWithClock(loc *time.Location, clock Clock, logger *slog.Logger) *Normalizer {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{loc: loc, clock: clock, logger: logger}
}

// Normalize decodes a device data body and maps its rows. An empty rows
// collection yields an empty, non-nil slice.
func (n *Normalizer) Normalize(body []byte) ([]device.Record, []FieldError, error) {
	data, err := cmee.DecodeDeviceData(body)
	if err != nil {
		return nil, nil, err
	}
	records, warnings := n.NormalizeRows(*data.Rows)
	return records, warnings, nil
}

// NormalizeRows maps rows in order. No sorting or deduplication is done.
func (n *Normalizer) NormalizeRows(rows []cmee.RawRow) ([]device.Record, []FieldError) {
	lastUpdated := n.clock.Now().In(n.loc).Format(time.RFC3339)
	records := make([]device.Record, 0, len(rows))
	var warnings []FieldError
	for i, row := range rows {
		rec, errs, ok := n.normalizeRow(i, row, lastUpdated)
		warnings = append(warnings, errs...)
		if ok {
			records = append(records, rec)
		}
	}
	return records, warnings
}

func (n *Normalizer) normalizeRow(i int, row cmee.RawRow, lastUpdated string) (device.Record, []FieldError, bool) {
	var errs []FieldError
	fail := func(field string, err error) {
		errs = append(errs, FieldError{Row: i, Field: field, Err: err})
	}

	mid, ok := text(row.MID)
	if !ok || mid == "" {
		return device.Record{}, []FieldError{{Row: i, Field: "mid", Skipped: true, Err: ErrMissing}}, false
	}
	devID := DeviceID(mid)
	if devID == devIDPrefix {
		return device.Record{}, []FieldError{{Row: i, Field: "mid", Skipped: true, Err: ErrInvalid}}, false
	}

	lat, okLat := number(row.LT)
	lon, okLon := number(row.LO)
	if !okLat || !okLon {
		return device.Record{}, []FieldError{{Row: i, DeviceID: devID, Field: "lt/lo", Skipped: true, Err: ErrInvalid}}, false
	}

	obn, ok := text(row.OBN)
	if !ok {
		fail("obn", ErrMissing)
	}
	hn, ok := text(row.HN)
	if !ok {
		fail("hn", ErrMissing)
	}
	sid, _ := text(row.SID)

	rec := device.Record{
		HostName:   DisplayName(obn, hn),
		DevID:      devID,
		GPS:        [2]float64{lat, lon},
		SourceType: device.SourceTypeGPS,
		Icon:       device.Icon,
		Attributes: device.Attributes{
			LastUpdated: lastUpdated,
			WatchID:     mid,
			WatchSID:    sid,
			Status:      ParseStatus(row.TT),
			Location:    device.Unknown,
		},
	}

	if ov, ok := str(row.OV); !ok {
		fail("ov", ErrMissing)
	} else if md, err := ParseMetadata(ov); err != nil {
		fail("ov", err)
	} else {
		if acc, ok := md.Int("gps"); ok {
			rec.GPSAccuracy = &acc
		} else {
			fail("ov.gps", ErrMissing)
		}
		if batt, ok := md.Int("batt"); ok {
			rec.Battery = &batt
		} else {
			fail("ov.batt", ErrMissing)
		}
		rec.Attributes.Location = ParseLocation(md)
	}

	rec.Attributes.PositioningTime = n.timestamp(row.GT, PositioningOffset, devID, "gt", fail)
	rec.Attributes.ReceptionTime = n.timestamp(row.RT, ReceptionOffset, devID, "rt", fail)

	for k := range errs {
		errs[k].DeviceID = devID
	}
	return rec, errs, true
}

func (n *Normalizer) timestamp(raw json.RawMessage, offset time.Duration, devID, field string, fail func(string, error)) string {
	s, ok := text(raw)
	if !ok {
		fail(field, ErrMissing)
		return s
	}
	out, err := CorrectTimestamp(s, offset, n.loc)
	if err != nil {
		n.logger.Warn("unparseable timestamp", "device", devID, "field", field, "value", s, "error", err)
		fail(field, err)
	}
	return out
}
