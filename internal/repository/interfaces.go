package repository

import (
	"context"
	"errors"

	"github.com/BarkinBalci/fall-event-service/internal/domain"
)

// ErrPrimaryDisabled is returned by Open when no primary connection string is configured
var ErrPrimaryDisabled = errors.New("primary store is not configured")

// ErrDuplicateEvent is returned by Insert when the primary already holds an event with the same key
var ErrDuplicateEvent = errors.New("event already stored")

// Document keys shared by every primary backend
const (
	FieldID               = "_id"
	FieldTimestamp        = "timestamp"
	FieldTimestampDisplay = "timestamp_str"
	FieldDeviceID         = "device_id"
	FieldDetection        = "detection"
	FieldAlertType        = "alert_type"
	FieldSMSSent          = "sms_sent"
)

// Document is a schemaless record as read back from the primary store.
// Records written by older releases may lack device_id, sms_sent or timestamp_str.
type Document map[string]any

// EventRepository defines the interface for primary event storage operations
type EventRepository interface {
	// Insert stores a single event and returns the backend-assigned identifier
	Insert(ctx context.Context, event *domain.FallEvent) (string, error)

	// InsertBatch stores events replayed from the fallback file and returns how many were new.
	// An event is skipped when the primary already holds more than Ordinal events with its ContentKey.
	InsertBatch(ctx context.Context, events []*domain.FallEvent) (int, error)

	// Recent returns up to limit documents, newest first by timestamp
	Recent(ctx context.Context, limit int) ([]Document, error)

	// Count returns the number of stored events
	Count(ctx context.Context) (int64, error)

	// InitSchema initializes the database schema (creates tables if they don't exist)
	InitSchema(ctx context.Context) error

	// Ping checks if the database connection is alive
	Ping(ctx context.Context) error

	// Close closes the repository and releases resources
	Close() error

	// Name identifies the backend in status output
	Name() string
}

// NewDocument converts an event into the document shape every backend returns
func NewDocument(event *domain.FallEvent) Document {
	return Document{
		FieldID:               event.ID,
		FieldTimestamp:        event.Timestamp,
		FieldTimestampDisplay: event.TimestampDisplay,
		FieldDeviceID:         event.DeviceID,
		FieldDetection:        event.Detection,
		FieldAlertType:        event.AlertType,
		FieldSMSSent:          string(event.SMSSent),
	}
}

// ContentKeys returns the distinct content keys of events in first-seen order
func ContentKeys(events []*domain.FallEvent) []string {
	seen := make(map[string]struct{}, len(events))
	keys := make([]string, 0, len(events))
	for _, event := range events {
		key := event.ContentKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys
}

// Missing filters replayed events down to those the primary does not hold yet.
// stored counts the primary's events per content key.
func Missing(events []*domain.FallEvent, stored map[string]int64) []*domain.FallEvent {
	missing := make([]*domain.FallEvent, 0, len(events))
	for _, event := range events {
		if int64(event.Ordinal) >= stored[event.ContentKey()] {
			missing = append(missing, event)
		}
	}
	return missing
}
