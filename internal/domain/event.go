package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

const (
	// RealAlert is the device classification that warrants an SMS alert
	RealAlert = "real alert"
	// FalseAlert is the device classification for a dismissed detection
	FalseAlert = "false alert"
	// Unknown is substituted for a missing device id or classification
	Unknown = "unknown"
)

// SMSStatus is the outcome of the notification attempt for an event
type SMSStatus string

const (
	SMSSent    SMSStatus = "Yes"
	SMSFailed  SMSStatus = "Failed"
	SMSNotSent SMSStatus = "No"
)

// SMSStatusFromDelivery maps a gateway result to the persisted status
func SMSStatusFromDelivery(delivered bool) SMSStatus {
	if delivered {
		return SMSSent
	}
	return SMSFailed
}

// FallEvent represents a single fall report as it is persisted
type FallEvent struct {
	ID               string
	Timestamp        time.Time
	TimestampDisplay string
	DeviceID         string
	Detection        bool
	AlertType        string
	SMSSent          SMSStatus

	// Ordinal counts earlier fallback rows with the same ContentKey. Set only when replaying the fallback file.
	Ordinal int
}

// ContentKey hashes the persisted fields.
// Uses SHA-256 hash of: timestamp_display|device_id|detection|alert_type|sms_sent
func (e *FallEvent) ContentKey() string {
	data := fmt.Sprintf("%s|%s|%t|%s|%s",
		e.TimestampDisplay,
		e.DeviceID,
		e.Detection,
		e.AlertType,
		e.SMSSent,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// Key is the primary-store identifier. Live events carry a random ID; replayed rows
// without one get a deterministic key from their content and ordinal.
func (e *FallEvent) Key() string {
	if e.ID != "" {
		return e.ID
	}

	hash := sha256.Sum256([]byte(fmt.Sprintf("%s|%d", e.ContentKey(), e.Ordinal)))
	return hex.EncodeToString(hash[:])
}
