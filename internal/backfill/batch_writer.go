package backfill

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/BarkinBalci/fall-event-service/internal/domain"
	"github.com/BarkinBalci/fall-event-service/internal/repository"
)

// BatchWriterConfig configures the batch writer
type BatchWriterConfig struct {
	MaxBatchSize int
	FlushTimeout time.Duration
	WriteTimeout time.Duration
}

// BatchWriter handles batching and writing events to the primary repository
type BatchWriter struct {
	repository repository.EventRepository
	config     BatchWriterConfig
	log        *zap.Logger
	written    int
	failed     int
}

// NewBatchWriter creates a new batch writer
func NewBatchWriter(repo repository.EventRepository, config BatchWriterConfig, log *zap.Logger) *BatchWriter {
	if config.MaxBatchSize <= 0 {
		config.MaxBatchSize = 1
	}
	return &BatchWriter{
		repository: repo,
		config:     config,
		log:        log,
	}
}

// Start begins batching events and writing them to the repository
func (w *BatchWriter) Start(ctx context.Context, in <-chan *domain.FallEvent) {
	ticker := time.NewTicker(w.config.FlushTimeout)
	defer ticker.Stop()

	batch := make([]*domain.FallEvent, 0, w.config.MaxBatchSize)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Batch writer shutting down", zap.Int("unwritten", len(batch)))
			w.failed += len(batch)
			return

		case event, ok := <-in:
			if !ok {
				w.log.Info("Batch writer input channel closed")
				if len(batch) > 0 {
					w.log.Info("Flushing final batch", zap.Int("event_count", len(batch)))
					w.processBatch(ctx, batch)
				}
				return
			}

			batch = append(batch, event)

			if len(batch) >= w.config.MaxBatchSize {
				w.log.Debug("Batch size threshold reached", zap.Int("batch_size", len(batch)))
				w.processBatch(ctx, batch)
				batch = make([]*domain.FallEvent, 0, w.config.MaxBatchSize)
				ticker.Reset(w.config.FlushTimeout)
			}

		case <-ticker.C:
			if len(batch) > 0 {
				w.log.Debug("Batch timeout reached", zap.Int("event_count", len(batch)))
				w.processBatch(ctx, batch)
				batch = make([]*domain.FallEvent, 0, w.config.MaxBatchSize)
			}
		}
	}
}

// processBatch writes one batch. Rows the primary already holds are not counted as written.
func (w *BatchWriter) processBatch(ctx context.Context, events []*domain.FallEvent) {
	if len(events) == 0 {
		return
	}

	if w.config.WriteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.config.WriteTimeout)
		defer cancel()
	}

	insertedCount, err := w.repository.InsertBatch(ctx, events)
	if err != nil {
		w.failed += len(events)
		w.log.Error("Failed to insert batch",
			zap.Error(err),
			zap.Int("event_count", len(events)))
		return
	}

	w.written += insertedCount
	w.log.Info("Inserted batch",
		zap.Int("inserted", insertedCount),
		zap.Int("already_present", len(events)-insertedCount))
}

// Written returns the number of events the primary newly accepted
func (w *BatchWriter) Written() int {
	return w.written
}

// Failed returns the number of events in batches the primary rejected
func (w *BatchWriter) Failed() int {
	return w.failed
}
