package backfill

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BarkinBalci/fall-event-service/internal/clock"
	"github.com/BarkinBalci/fall-event-service/internal/domain"
)

func newTestParser(t *testing.T) *CSVRowParser {
	t.Helper()
	c, err := clock.New("UTC")
	require.NoError(t, err)
	return NewCSVRowParser(c)
}

func TestCSVRowParser_Parse(t *testing.T) {
	parser := newTestParser(t)

	tests := []struct {
		name     string
		row      []string
		expected *domain.FallEvent
		wantErr  bool
	}{
		{
			name: "full row",
			row:  []string{"2025-03-01 10:00:00 UTC", "true", "real alert", "esp-7", "Yes"},
			expected: &domain.FallEvent{
				Timestamp:        time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
				TimestampDisplay: "2025-03-01 10:00:00 UTC",
				DeviceID:         "esp-7",
				Detection:        true,
				AlertType:        domain.RealAlert,
				SMSSent:          domain.SMSSent,
			},
		},
		{
			name: "legacy row without device and sms columns",
			row:  []string{"2024-01-01 08:30:00 UTC", "True", "false alert"},
			expected: &domain.FallEvent{
				Timestamp:        time.Date(2024, 1, 1, 8, 30, 0, 0, time.UTC),
				TimestampDisplay: "2024-01-01 08:30:00 UTC",
				DeviceID:         domain.Unknown,
				Detection:        true,
				AlertType:        domain.FalseAlert,
				SMSSent:          domain.SMSNotSent,
			},
		},
		{
			name: "timestamp without zone",
			row:  []string{"2024-01-01 08:30:00", "false", "unknown", "esp-1", "No"},
			expected: &domain.FallEvent{
				Timestamp:        time.Date(2024, 1, 1, 8, 30, 0, 0, time.UTC),
				TimestampDisplay: "2024-01-01 08:30:00",
				DeviceID:         "esp-1",
				Detection:        false,
				AlertType:        domain.Unknown,
				SMSSent:          domain.SMSNotSent,
			},
		},
		{
			name:    "empty row",
			row:     []string{},
			wantErr: true,
		},
		{
			name:    "blank timestamp",
			row:     []string{"  ", "true", "real alert"},
			wantErr: true,
		},
		{
			name:    "garbage timestamp",
			row:     []string{"yesterday", "true", "real alert", "esp-7", "Yes"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := parser.Parse(tt.row)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, event)
				return
			}

			require.NoError(t, err)
			assert.True(t, tt.expected.Timestamp.Equal(event.Timestamp))
			assert.Equal(t, tt.expected.TimestampDisplay, event.TimestampDisplay)
			assert.Equal(t, tt.expected.DeviceID, event.DeviceID)
			assert.Equal(t, tt.expected.Detection, event.Detection)
			assert.Equal(t, tt.expected.AlertType, event.AlertType)
			assert.Equal(t, tt.expected.SMSSent, event.SMSSent)
		})
	}
}

func TestCSVRowParser_ContentKeyMatchesLiveWrite(t *testing.T) {
	parser := newTestParser(t)

	live := &domain.FallEvent{
		ID:               "0b6f2c1e-6d4a-4a53-9a57-3c1b1f0e2d11",
		Timestamp:        time.Date(2025, 3, 1, 10, 0, 0, 123_000_000, time.UTC),
		TimestampDisplay: "2025-03-01 10:00:00 UTC",
		DeviceID:         "esp-7",
		Detection:        true,
		AlertType:        domain.RealAlert,
		SMSSent:          domain.SMSSent,
	}

	replayed, err := parser.Parse([]string{"2025-03-01 10:00:00 UTC", "true", "real alert", "esp-7", "Yes"})
	require.NoError(t, err)

	assert.Equal(t, live.ContentKey(), replayed.ContentKey())
	assert.Empty(t, replayed.ID)
}

func TestCSVRowParser_NumbersIdenticalRows(t *testing.T) {
	parser := newTestParser(t)
	row := []string{"2025-03-01 10:00:00 UTC", "true", "real alert", "esp-7", "Yes"}

	first, err := parser.Parse(row)
	require.NoError(t, err)
	other, err := parser.Parse([]string{"2025-03-01 10:00:00 UTC", "true", "real alert", "esp-8", "Yes"})
	require.NoError(t, err)
	second, err := parser.Parse(row)
	require.NoError(t, err)

	assert.Equal(t, 0, first.Ordinal)
	assert.Equal(t, 0, other.Ordinal)
	assert.Equal(t, 1, second.Ordinal)
	assert.NotEqual(t, first.Key(), second.Key())

	rerun, err := newTestParser(t).Parse(row)
	require.NoError(t, err)
	assert.Equal(t, first.Key(), rerun.Key())
}
