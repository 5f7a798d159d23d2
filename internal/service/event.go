package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BarkinBalci/fall-event-service/internal/clock"
	"github.com/BarkinBalci/fall-event-service/internal/domain"
	"github.com/BarkinBalci/fall-event-service/internal/dto"
	"github.com/BarkinBalci/fall-event-service/internal/notify"
	"github.com/BarkinBalci/fall-event-service/internal/store"
	"github.com/BarkinBalci/fall-event-service/internal/view"
)

// Outcome is the result of handling one report
type Outcome struct {
	SMSSent domain.SMSStatus
	Event   *domain.FallEvent
	Write   store.WriteResult
}

// Status summarizes the service and its dependencies
type Status struct {
	Time                  time.Time
	Timezone              string
	RecordsCount          int64
	Backend               string
	PrimaryAvailable      bool
	PrimaryName           string
	NotificationAvailable bool
}

// FallEventService classifies reports, alerts the emergency contact and persists events
type FallEventService struct {
	store   EventStorer
	gateway notify.Gateway
	clock   *clock.Clock
	log     *zap.Logger
}

// NewFallEventService creates a new fall event service
func NewFallEventService(store EventStorer, gateway notify.Gateway, clock *clock.Clock, log *zap.Logger) *FallEventService {
	return &FallEventService{
		store:   store,
		gateway: gateway,
		clock:   clock,
		log:     log,
	}
}

// ShouldNotify reports whether a report warrants an SMS alert
func ShouldNotify(report dto.FallEventReport) bool {
	return report.Detect && report.Type == domain.RealAlert
}

// HandleReport notifies when the report is a real alert, then persists the event with
// the notification outcome. A caller going away does not cancel either step; only the
// gateway and store timeouts bound them. Panics are recovered and returned as errors.
func (s *FallEventService) HandleReport(ctx context.Context, report dto.FallEventReport) (outcome *Outcome, err error) {
	ctx = context.WithoutCancel(ctx)

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Recovered from panic while handling fall report",
				zap.Any("panic", r),
				zap.String("device_id", report.DeviceID))
			outcome = nil
			err = fmt.Errorf("internal error while handling report: %v", r)
		}
	}()

	s.log.Info("Received fall event",
		zap.Bool("detect", report.Detect),
		zap.String("type", report.Type),
		zap.String("device_id", report.DeviceID))

	smsSent := domain.SMSNotSent
	if ShouldNotify(report) {
		smsSent = domain.SMSStatusFromDelivery(s.gateway.SendAlert(ctx, report.DeviceID, report.Type))
	}

	stamp := s.clock.Now()
	event := &domain.FallEvent{
		ID:               uuid.NewString(),
		Timestamp:        stamp.Time,
		TimestampDisplay: stamp.Display,
		DeviceID:         report.DeviceID,
		Detection:        report.Detect,
		AlertType:        report.Type,
		SMSSent:          smsSent,
	}

	result, err := s.store.Append(ctx, event)
	if err != nil {
		s.log.Error("Failed to persist fall event",
			zap.String("device_id", event.DeviceID),
			zap.String("sms_sent", string(smsSent)),
			zap.Error(err))
		return nil, fmt.Errorf("failed to persist event: %w", err)
	}

	s.log.Info("Fall event logged",
		zap.String("device_id", event.DeviceID),
		zap.String("sms_sent", string(smsSent)),
		zap.Bool("primary_written", result.PrimaryWritten))

	return &Outcome{SMSSent: smsSent, Event: event, Write: result}, nil
}

// RecentEvents returns the latest events, newest first
func (s *FallEventService) RecentEvents(ctx context.Context) []view.Event {
	return view.Normalize(s.store.ListRecent(ctx, view.PageSize))
}

// Status reports record count and dependency availability
func (s *FallEventService) Status(ctx context.Context) Status {
	return Status{
		Time:                  s.clock.Now().Time,
		Timezone:              s.clock.Zone(),
		RecordsCount:          s.store.Count(ctx),
		Backend:               s.store.Backend(),
		PrimaryAvailable:      s.store.PrimaryAvailable(),
		PrimaryName:           s.store.PrimaryName(),
		NotificationAvailable: s.gateway.Available(),
	}
}
