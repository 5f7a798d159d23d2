package backfill

import (
	"github.com/BarkinBalci/fall-event-service/internal/domain"
)

// RowSource supplies fallback-file rows oldest first
type RowSource interface {
	Rows() ([][]string, error)
	Path() string
}

// RowParser defines the interface for turning a fallback-file row into an event
type RowParser interface {
	Parse(row []string) (*domain.FallEvent, error)
}

// Row is one fallback-file record with its position among the data rows
type Row struct {
	Line   int
	Fields []string
}
