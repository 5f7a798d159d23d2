// Package view turns stored records of either backend shape into the uniform event view
// served by the API and the dashboard.
package view

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/BarkinBalci/fall-event-service/internal/clock"
	"github.com/BarkinBalci/fall-event-service/internal/domain"
	"github.com/BarkinBalci/fall-event-service/internal/repository"
	"github.com/BarkinBalci/fall-event-service/internal/store"
)

// PageSize caps every listing of recent events
const PageSize = 20

// Event is the backend-independent view of one stored fall event
type Event struct {
	Timestamp string `json:"timestamp" example:"2025-03-01 10:00:00 IST"`
	Detection bool   `json:"detection" example:"true"`
	AlertType string `json:"alert_type" example:"real alert"`
	DeviceID  string `json:"device_id" example:"esp-7"`
	SMSSent   string `json:"sms_sent" example:"Yes"`
	ID        string `json:"id,omitempty" example:"3f1c9a0e..."`
}

// Normalize converts records in the order given, keeping at most PageSize
func Normalize(records []store.Record) []Event {
	if len(records) > PageSize {
		records = records[:PageSize]
	}

	events := make([]Event, 0, len(records))
	for _, record := range records {
		if record.Document != nil {
			events = append(events, FromDocument(record.Document))
			continue
		}
		events = append(events, FromRow(record.Row))
	}
	return events
}

// FromDocument maps a primary-store document, defaulting absent fields
func FromDocument(doc repository.Document) Event {
	return Event{
		Timestamp: documentTimestamp(doc),
		Detection: coerceBool(doc[repository.FieldDetection]),
		AlertType: stringOr(doc[repository.FieldAlertType], domain.Unknown),
		DeviceID:  stringOr(doc[repository.FieldDeviceID], domain.Unknown),
		SMSSent:   stringOr(doc[repository.FieldSMSSent], string(domain.SMSNotSent)),
		ID:        stringOr(doc[repository.FieldID], ""),
	}
}

// FromRow maps a positional fallback-file row, defaulting missing trailing columns
func FromRow(row []string) Event {
	field := func(i int, fallback string) string {
		if i < len(row) && strings.TrimSpace(row[i]) != "" {
			return row[i]
		}
		return fallback
	}

	return Event{
		Timestamp: field(0, ""),
		Detection: coerceBool(field(1, "false")),
		AlertType: field(2, domain.Unknown),
		DeviceID:  field(3, domain.Unknown),
		SMSSent:   field(4, string(domain.SMSNotSent)),
	}
}

// AlertClass is the dashboard style for the alert classification
func (e Event) AlertClass() string {
	switch e.AlertType {
	case domain.RealAlert:
		return "real"
	case domain.FalseAlert:
		return "false"
	default:
		return "none"
	}
}

// SMSLabel is the dashboard text for the notification outcome
func (e Event) SMSLabel() string {
	switch domain.SMSStatus(e.SMSSent) {
	case domain.SMSSent:
		return "Sent"
	case domain.SMSFailed:
		return "Failed"
	default:
		return "Not Sent"
	}
}

// SMSClass is the dashboard style for the notification outcome
func (e Event) SMSClass() string {
	switch domain.SMSStatus(e.SMSSent) {
	case domain.SMSSent:
		return "sms-sent"
	case domain.SMSFailed:
		return "sms-failed"
	default:
		return "none"
	}
}

func documentTimestamp(doc repository.Document) string {
	if display := stringOr(doc[repository.FieldTimestampDisplay], ""); display != "" {
		return display
	}

	switch ts := doc[repository.FieldTimestamp].(type) {
	case time.Time:
		return ts.Format(clock.DisplayLayout)
	case nil:
		return ""
	default:
		return fmt.Sprint(ts)
	}
}

func stringOr(value any, fallback string) string {
	switch v := value.(type) {
	case string:
		if v == "" {
			return fallback
		}
		return v
	case nil:
		return fallback
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// coerceBool reads detection flags stored as booleans, strings ("True", "false") or numbers
func coerceBool(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && b
	case float64:
		return v != 0
	case int:
		return v != 0
	case int64:
		return v != 0
	default:
		return false
	}
}
