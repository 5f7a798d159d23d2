// Package store combines the primary repository and the flat-file backend into one event store
// that keeps accepting writes when the primary is unavailable.
package store

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/BarkinBalci/fall-event-service/internal/domain"
	"github.com/BarkinBalci/fall-event-service/internal/repository"
)

const (
	BackendPrimary  = "primary"
	BackendFallback = "fallback"
)

// Fallback is the always-written local backend
type Fallback interface {
	Append(event *domain.FallEvent) error
	Recent(n int) ([][]string, error)
	Count() (int, error)
	Path() string
}

// Record is one stored event as read back. Exactly one of Document or Row is set.
type Record struct {
	Document repository.Document
	Row      []string
}

// WriteResult reports which backends accepted an append
type WriteResult struct {
	FallbackWritten bool
	PrimaryWritten  bool
	ID              string
	PrimaryErr      error
}

// EventStore writes every event to the fallback file and, when it was reachable at startup, to the primary
type EventStore struct {
	primary  repository.EventRepository
	fallback Fallback
	timeout  time.Duration
	log      *zap.Logger
}

// New creates the store. A nil primary makes the store fallback-only for its lifetime.
func New(primary repository.EventRepository, fallback Fallback, timeout time.Duration, log *zap.Logger) *EventStore {
	return &EventStore{
		primary:  primary,
		fallback: fallback,
		timeout:  timeout,
		log:      log,
	}
}

// PrimaryAvailable reports whether the primary was reachable at startup
func (s *EventStore) PrimaryAvailable() bool {
	return s.primary != nil
}

// Backend names the backend reads are served from
func (s *EventStore) Backend() string {
	if s.PrimaryAvailable() {
		return BackendPrimary
	}
	return BackendFallback
}

// PrimaryName describes the primary backend, empty when it is unavailable
func (s *EventStore) PrimaryName() string {
	if !s.PrimaryAvailable() {
		return ""
	}
	return s.primary.Name()
}

// FallbackPath returns the location of the fallback file
func (s *EventStore) FallbackPath() string {
	return s.fallback.Path()
}

// Append persists event. Only a fallback failure is returned as an error;
// a primary failure is logged and reported in the result.
func (s *EventStore) Append(ctx context.Context, event *domain.FallEvent) (WriteResult, error) {
	var result WriteResult

	if err := s.fallback.Append(event); err != nil {
		return result, fmt.Errorf("failed to write fallback file: %w", err)
	}
	result.FallbackWritten = true

	if !s.PrimaryAvailable() {
		return result, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	id, err := s.primary.Insert(ctx, event)
	if err != nil {
		s.log.Warn("Primary write failed, event kept in fallback file only",
			zap.String("device_id", event.DeviceID),
			zap.String("backend", s.primary.Name()),
			zap.Error(err))
		result.PrimaryErr = err
		return result, nil
	}

	event.ID = id
	result.PrimaryWritten = true
	result.ID = id
	return result, nil
}

// ListRecent returns up to n events newest first, from the primary when it is
// available and answering, from the fallback file otherwise
func (s *EventStore) ListRecent(ctx context.Context, n int) []Record {
	if n <= 0 {
		return []Record{}
	}

	if s.PrimaryAvailable() {
		docs, err := s.recentFromPrimary(ctx, n)
		if err == nil {
			records := make([]Record, 0, len(docs))
			for _, doc := range docs {
				records = append(records, Record{Document: doc})
			}
			return records
		}
		s.log.Warn("Primary read failed, serving fallback file", zap.Error(err))
	}

	rows, err := s.fallback.Recent(n)
	if err != nil {
		s.log.Error("Failed to read fallback file", zap.String("path", s.fallback.Path()), zap.Error(err))
		return []Record{}
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, Record{Row: row})
	}
	return records
}

// Count returns the number of stored events from the backend reads are served from
func (s *EventStore) Count(ctx context.Context) int64 {
	if s.PrimaryAvailable() {
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		count, err := s.primary.Count(ctx)
		cancel()
		if err == nil {
			return count
		}
		s.log.Warn("Primary count failed, counting fallback file", zap.Error(err))
	}

	count, err := s.fallback.Count()
	if err != nil {
		s.log.Error("Failed to count fallback file", zap.String("path", s.fallback.Path()), zap.Error(err))
		return 0
	}
	return int64(count)
}

// Close releases the primary connection
func (s *EventStore) Close() error {
	if !s.PrimaryAvailable() {
		return nil
	}
	return s.primary.Close()
}

func (s *EventStore) recentFromPrimary(ctx context.Context, n int) ([]repository.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	docs, err := s.primary.Recent(ctx, n)
	if err != nil {
		return nil, err
	}
	if len(docs) > n {
		docs = docs[:n]
	}
	return docs, nil
}
