package cmee

import (
	"encoding/json"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// DeviceData is the device data response body. Rows is nil when the
// body has no rows key.
type DeviceData struct {
	Rows *[]RawRow `json:"rows"`
}

// RawRow is one device in the device data response. The service is
// loosely typed (numbers arrive as strings and vice versa), so every
// field is kept raw and checked for presence by the normalizer.
type RawRow struct {
	// MID is the watch id.
	MID json.RawMessage `json:"mid"`
	SID json.RawMessage `json:"sid"`
	// OBN is the owner/base name, HN the device name.
	OBN json.RawMessage `json:"obn"`
	HN  json.RawMessage `json:"hn"`
	// TT is the online flag: 0 offline, 1 online.
	TT json.RawMessage `json:"tt"`
	LT json.RawMessage `json:"lt"`
	LO json.RawMessage `json:"lo"`
	// GT is the positioning time, RT the reception time.
	GT json.RawMessage `json:"gt"`
	RT json.RawMessage `json:"rt"`
	// OV is a JSON object body without its enclosing braces.
	OV json.RawMessage `json:"ov"`
}

// DecodeDeviceData parses a device data body.
func DecodeDeviceData(body []byte) (DeviceData, error) {
	var data DeviceData
	if err := jsonAPI.Unmarshal(body, &data); err != nil {
		return DeviceData{}, fmt.Errorf("decode device data: %w", err)
	}
	if data.Rows == nil {
		return DeviceData{}, ErrNoRows
	}
	return data, nil
}

// ParseToken extracts usermd5 from a login body. The returned error
// wraps ErrNoToken whenever the token is missing or unreadable; the
// token is then "".
func ParseToken(body []byte) (string, error) {
	if !jsoniter.Valid(body) {
		return "", fmt.Errorf("%w: body is not JSON", ErrNoToken)
	}
	v := jsoniter.Get(body, "usermd5")
	switch v.ValueType() {
	case jsoniter.StringValue, jsoniter.NumberValue:
		return v.ToString(), nil
	case jsoniter.InvalidValue, jsoniter.NilValue:
		return "", ErrNoToken
	default:
		return "", fmt.Errorf("%w: usermd5 has unexpected type", ErrNoToken)
	}
}
