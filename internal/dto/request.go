package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/BarkinBalci/fall-event-service/internal/domain"
)

// FallEventRequest represents a fall report sent by a device. Every field is optional.
type FallEventRequest struct {
	Detect   bool   `json:"detect" example:"true"`
	Type     string `json:"type" example:"real alert"`
	DeviceID string `json:"device_id" example:"esp-7"`
}

// FallEventReport is a device report with defaults substituted for missing or malformed fields
type FallEventReport struct {
	Detect   bool
	Type     string
	DeviceID string
}

// ParseFallEventReport decodes an untrusted report body. It never fails: anything it
// cannot use is replaced by a default and described in the returned warnings.
func ParseFallEventReport(body []byte) (FallEventReport, []string) {
	report := FallEventReport{
		Detect:   false,
		Type:     domain.Unknown,
		DeviceID: domain.Unknown,
	}
	var warnings []string

	var fields map[string]any
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	if err := decoder.Decode(&fields); err != nil || fields == nil {
		if len(bytes.TrimSpace(body)) > 0 {
			warnings = append(warnings, "body is not a JSON object, using defaults")
		}
		return report, warnings
	}

	if value, ok := fields["detect"]; ok && value != nil {
		detect, valid := getBool(value)
		if !valid {
			warnings = append(warnings, fmt.Sprintf("detect: unusable value %v, using false", value))
		}
		report.Detect = detect
	}

	if value, ok := fields["type"]; ok && value != nil {
		alertType, valid := getString(value)
		if !valid {
			warnings = append(warnings, fmt.Sprintf("type: unusable value %v, using %q", value, domain.Unknown))
		}
		report.Type = alertType
	}

	if value, ok := fields["device_id"]; ok && value != nil {
		deviceID, valid := getString(value)
		if !valid {
			warnings = append(warnings, fmt.Sprintf("device_id: unusable value %v, using %q", value, domain.Unknown))
		}
		report.DeviceID = deviceID
	}

	return report, warnings
}

// getBool accepts JSON booleans, strings understood by strconv.ParseBool and numbers
func getBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, false
		}
		return b, true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return false, false
		}
		return f != 0, true
	default:
		return false, false
	}
}

// getString accepts strings and numbers. Empty strings map to unknown.
func getString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		if v == "" {
			return domain.Unknown, true
		}
		return v, true
	case json.Number:
		return v.String(), true
	default:
		return domain.Unknown, false
	}
}
