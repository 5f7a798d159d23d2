// Package backfill replays the fallback file into the primary store.
package backfill

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BarkinBalci/fall-event-service/internal/clock"
	"github.com/BarkinBalci/fall-event-service/internal/config"
	"github.com/BarkinBalci/fall-event-service/internal/domain"
	"github.com/BarkinBalci/fall-event-service/internal/repository"
)

// Summary counts what one run did
type Summary struct {
	Read    int
	Parsed  int
	Written int
	Failed  int
}

// Backfiller orchestrates a pipeline of stages replaying fallback rows into the primary
type Backfiller struct {
	reader      *Reader
	parser      *ParserStage
	batchWriter *BatchWriter
	bufferSize  int
}

// NewBackfiller creates a new backfiller with a pipeline architecture
func NewBackfiller(cfg *config.Config, source RowSource, repo repository.EventRepository, c *clock.Clock, log *zap.Logger) *Backfiller {
	return &Backfiller{
		reader: NewReader(source, log),
		parser: NewParserStage(NewCSVRowParser(c), log),
		batchWriter: NewBatchWriter(repo, BatchWriterConfig{
			MaxBatchSize: cfg.Backfill.BatchSize,
			FlushTimeout: time.Duration(cfg.Backfill.FlushTimeoutSec) * time.Second,
			WriteTimeout: time.Duration(cfg.Storage.PrimaryTimeoutSec) * time.Second,
		}, log),
		bufferSize: 100,
	}
}

// Run drives the pipeline until the source is exhausted or ctx is cancelled
func (b *Backfiller) Run(ctx context.Context) (Summary, error) {
	rowChan := make(chan Row, b.bufferSize)
	eventChan := make(chan *domain.FallEvent, b.bufferSize)

	var (
		wg      sync.WaitGroup
		readErr error
	)

	wg.Add(3)

	// Stage 1: read the fallback file
	go func() {
		defer wg.Done()
		readErr = b.reader.Start(ctx, rowChan)
	}()

	// Stage 2: parse rows into events
	go func() {
		defer wg.Done()
		b.parser.Start(ctx, rowChan, eventChan)
	}()

	// Stage 3: batch and write to the primary
	go func() {
		defer wg.Done()
		b.batchWriter.Start(ctx, eventChan)
	}()

	wg.Wait()

	summary := Summary{
		Read:    b.reader.Read(),
		Parsed:  b.parser.Parsed(),
		Written: b.batchWriter.Written(),
		Failed:  b.parser.Skipped() + b.batchWriter.Failed(),
	}
	return summary, readErr
}
