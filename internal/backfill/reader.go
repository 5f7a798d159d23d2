package backfill

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Reader emits fallback-file rows into the pipeline
type Reader struct {
	source RowSource
	log    *zap.Logger
	read   int
}

// NewReader creates a new reader stage
func NewReader(source RowSource, log *zap.Logger) *Reader {
	return &Reader{
		source: source,
		log:    log,
	}
}

// Start reads the whole source and sends every row, closing out when done
func (r *Reader) Start(ctx context.Context, out chan<- Row) error {
	defer close(out)

	rows, err := r.source.Rows()
	if err != nil {
		return fmt.Errorf("failed to read fallback file: %w", err)
	}

	r.log.Info("Fallback file loaded",
		zap.String("path", r.source.Path()),
		zap.Int("row_count", len(rows)))

	for i, fields := range rows {
		select {
		case <-ctx.Done():
			r.log.Info("Reader stage shutting down", zap.Int("rows_sent", r.read))
			return ctx.Err()
		case out <- Row{Line: i + 1, Fields: fields}:
			r.read++
		}
	}

	return nil
}

// Read returns the number of rows sent downstream
func (r *Reader) Read() int {
	return r.read
}
