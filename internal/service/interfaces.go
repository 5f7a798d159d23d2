package service

import (
	"context"

	"github.com/BarkinBalci/fall-event-service/internal/domain"
	"github.com/BarkinBalci/fall-event-service/internal/dto"
	"github.com/BarkinBalci/fall-event-service/internal/store"
	"github.com/BarkinBalci/fall-event-service/internal/view"
)

// EventServicer defines the interface for fall event service operations
type EventServicer interface {
	HandleReport(ctx context.Context, report dto.FallEventReport) (*Outcome, error)
	RecentEvents(ctx context.Context) []view.Event
	Status(ctx context.Context) Status
}

// EventStorer is the durable event store the service writes through
type EventStorer interface {
	Append(ctx context.Context, event *domain.FallEvent) (store.WriteResult, error)
	ListRecent(ctx context.Context, n int) []store.Record
	Count(ctx context.Context) int64
	PrimaryAvailable() bool
	PrimaryName() string
	Backend() string
}
