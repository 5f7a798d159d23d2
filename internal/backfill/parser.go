package backfill

import (
	"fmt"
	"strings"

	"github.com/BarkinBalci/fall-event-service/internal/clock"
	"github.com/BarkinBalci/fall-event-service/internal/domain"
	"github.com/BarkinBalci/fall-event-service/internal/view"
)

// CSVRowParser implements RowParser for the fallback file column layout.
// It numbers identical rows in the order it sees them, so one parser must read the file oldest first.
type CSVRowParser struct {
	clock *clock.Clock
	seen  map[string]int
}

// NewCSVRowParser creates a parser that reads display timestamps in the clock's zone
func NewCSVRowParser(c *clock.Clock) *CSVRowParser {
	return &CSVRowParser{
		clock: c,
		seen:  make(map[string]int),
	}
}

// Parse rebuilds the event a row was written from. Missing trailing columns take the
// same defaults the event listing applies.
func (p *CSVRowParser) Parse(row []string) (*domain.FallEvent, error) {
	if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
		return nil, fmt.Errorf("row has no timestamp")
	}

	ts, err := p.clock.ParseDisplay(row[0])
	if err != nil {
		return nil, err
	}

	v := view.FromRow(row)

	event := &domain.FallEvent{
		Timestamp:        ts,
		TimestampDisplay: v.Timestamp,
		DeviceID:         v.DeviceID,
		Detection:        v.Detection,
		AlertType:        v.AlertType,
		SMSSent:          domain.SMSStatus(v.SMSSent),
	}

	key := event.ContentKey()
	event.Ordinal = p.seen[key]
	p.seen[key]++

	return event, nil
}
