// Package clock produces timezone-qualified timestamps for fall event records.
package clock

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

// DisplayLayout is the pre-formatted timestamp stored alongside every event
const DisplayLayout = "2006-01-02 15:04:05 MST"

// Stamp is an instant plus its display string captured at the same moment
type Stamp struct {
	Time    time.Time
	Display string
}

// Clock stamps events in a fixed location
type Clock struct {
	zone     string
	location *time.Location
	now      func() time.Time
}

// Option customizes a Clock
type Option func(*Clock)

// WithNow replaces the wall clock source
func WithNow(now func() time.Time) Option {
	return func(c *Clock) {
		c.now = now
	}
}

// New creates a clock for the given IANA timezone identifier
func New(zone string, opts ...Option) (*Clock, error) {
	location, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", zone, err)
	}

	c := &Clock{
		zone:     zone,
		location: location,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Now returns the current instant in the configured zone
func (c *Clock) Now() Stamp {
	now := c.now().In(c.location)
	return Stamp{
		Time:    now,
		Display: now.Format(DisplayLayout),
	}
}

// Format renders t the same way Now renders its display string
func (c *Clock) Format(t time.Time) string {
	return t.In(c.location).Format(DisplayLayout)
}

// ParseDisplay is the inverse of the display string
func (c *Clock) ParseDisplay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	t, err := time.ParseInLocation(DisplayLayout, s, c.location)
	if err == nil {
		return t, nil
	}

	// rows written without a zone abbreviation
	if t, plainErr := time.ParseInLocation(time.DateTime, s, c.location); plainErr == nil {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", s, err)
}

// Zone returns the configured timezone identifier
func (c *Clock) Zone() string {
	return c.zone
}

// Location returns the configured location
func (c *Clock) Location() *time.Location {
	return c.location
}
