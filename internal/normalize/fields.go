package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"cmee-tracker/internal/device"

	"github.com/gosimple/slug"
	jsoniter "github.com/json-iterator/go"
)

const (
	// TimeLayout is the layout of gt and rt in device data rows.
	TimeLayout = "2006-01-02 15:04:05"

	PositioningOffset = 16 * time.Hour
	ReceptionOffset   = 8 * time.Hour

	devIDPrefix = "cmee_"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// Metadata is the parsed ov fragment of a row.
type Metadata map[string]json.RawMessage

// ParseMetadata wraps ov in braces and parses it as a JSON object.
// Fragments with bare keys ("gps:5,batt:80") are accepted too.
func ParseMetadata(ov string) (Metadata, error) {
	wrapped := "{" + ov + "}"
	var md Metadata
	if err := jsonAPI.UnmarshalFromString(wrapped, &md); err == nil {
		return md, nil
	}
	md = nil
	if err := jsonAPI.UnmarshalFromString(quoteBareKeys(wrapped), &md); err != nil {
		return nil, fmt.Errorf("parse ov fragment: %w", err)
	}
	return md, nil
}

// Int returns the integer value of key. Numeric strings count.
func (md Metadata) Int(key string) (int, bool) {
	raw, ok := md[key]
	if !ok {
		return 0, false
	}
	f, ok := number(raw)
	if !ok {
		return 0, false
	}
	return int(math.Round(f)), true
}

// ParseLocation joins the indoor room-name pair, or failing that the
// outdoor pair, with " | ". A present pair that is not two strings
// yields Unknown without trying the other pair.
func ParseLocation(md Metadata) string {
	for _, keys := range [][2]string{{"inrn", "inrn1"}, {"outrn", "outrn1"}} {
		a, okA := md[keys[0]]
		b, okB := md[keys[1]]
		if !okA || !okB {
			continue
		}
		sa, ok1 := str(a)
		sb, ok2 := str(b)
		if !ok1 || !ok2 {
			return device.Unknown
		}
		return sa + " | " + sb
	}
	return device.Unknown
}

// ParseStatus maps the tt flag by numeric value: 0 Offline, 1 Online,
// anything else (including strings and absence) Unknown.
func ParseStatus(tt json.RawMessage) string {
	if len(tt) == 0 || jsoniter.Get(tt).ValueType() != jsoniter.NumberValue {
		return device.Unknown
	}
	f, ok := number(tt)
	if !ok {
		return device.Unknown
	}
	switch f {
	case 0:
		return device.StatusOffline
	case 1:
		return device.StatusOnline
	default:
		return device.Unknown
	}
}

// CorrectTimestamp parses s as UTC, subtracts offset and renders the
// result in loc as RFC 3339. On a parse failure s is returned unchanged
// along with the error.
func CorrectTimestamp(s string, offset time.Duration, loc *time.Location) (string, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return s, err
	}
	if loc == nil {
		loc = time.Local
	}
	return t.Add(-offset).In(loc).Format(time.RFC3339), nil
}

// DeviceID slugifies the raw watch id and adds the cmee_ prefix.
func DeviceID(mid string) string {
	return devIDPrefix + slug.Make(mid)
}

// DisplayName builds "<obn> <HN> Watch".
func DisplayName(obn, hn string) string {
	return obn + " " + strings.ToUpper(hn) + " Watch"
}

// quoteBareKeys quotes identifiers that sit in key position (after "{"
// or "," and before ":") outside of string literals.
func quoteBareKeys(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 16)
	inString, escaped, keyPos := false, false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			b.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch {
		case c == '"':
			inString, keyPos = true, false
		case c == '{' || c == ',':
			keyPos = true
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
		case keyPos && isIdentStart(c):
			j := i + 1
			for j < len(s) && isIdentPart(s[j]) {
				j++
			}
			k := j
			for k < len(s) && (s[k] == ' ' || s[k] == '\t') {
				k++
			}
			keyPos = false
			if k < len(s) && s[k] == ':' {
				b.WriteByte('"')
				b.WriteString(s[i:j])
				b.WriteByte('"')
				i = j - 1
				continue
			}
		default:
			keyPos = false
		}
		b.WriteByte(c)
	}
	return b.String()
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// str returns raw when it is a JSON string.
func str(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	v := jsoniter.Get(raw)
	if v.ValueType() != jsoniter.StringValue {
		return "", false
	}
	return v.ToString(), true
}

// text returns raw as text when it is a JSON string or number.
func text(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	switch jsoniter.Get(raw).ValueType() {
	case jsoniter.StringValue:
		return str(raw)
	case jsoniter.NumberValue:
		return string(bytes.TrimSpace(raw)), true
	default:
		return "", false
	}
}

// number returns raw as a float when it is a JSON number or a numeric
// string.
func number(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	v := jsoniter.Get(raw)
	switch v.ValueType() {
	case jsoniter.NumberValue:
		return v.ToFloat64(), true
	case jsoniter.StringValue:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.ToString()), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
