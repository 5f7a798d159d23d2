package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BarkinBalci/fall-event-service/internal/clock"
	"github.com/BarkinBalci/fall-event-service/internal/dto"
	"github.com/BarkinBalci/fall-event-service/internal/repository/flatfile"
	"github.com/BarkinBalci/fall-event-service/internal/repository/postgres"
	"github.com/BarkinBalci/fall-event-service/internal/store"
)

// newPostgresPipeline wires the service to a real store backed by a flat file and a
// sqlmock-driven PostgreSQL repository
func newPostgresPipeline(t *testing.T) (*FallEventService, sqlmock.Sqlmock, *MockGateway) {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	file, err := flatfile.Open(filepath.Join(t.TempDir(), "fall_events.csv"))
	require.NoError(t, err)

	c, err := clock.New("Asia/Kolkata", clock.WithNow(func() time.Time { return testNow }))
	require.NoError(t, err)

	repo := postgres.NewRepository(db, "fall_detection", "fall_events", zap.NewNop())
	eventStore := store.New(repo, file, time.Second, zap.NewNop())
	gateway := new(MockGateway)

	return NewFallEventService(eventStore, gateway, c, zap.NewNop()), sqlMock, gateway
}

func TestPipeline_CancelledRequestStillReachesPrimary(t *testing.T) {
	service, sqlMock, gateway := newPostgresPipeline(t)

	gateway.On("SendAlert", mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil }), "esp-7", "real alert").
		Return(true).Once()
	sqlMock.ExpectExec(`INSERT INTO "fall_events"`).WillReturnResult(sqlmock.NewResult(0, 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome, err := service.HandleReport(ctx, dto.FallEventReport{Detect: true, Type: "real alert", DeviceID: "esp-7"})

	require.NoError(t, err)
	assert.True(t, outcome.Write.FallbackWritten)
	assert.True(t, outcome.Write.PrimaryWritten)
	assert.NoError(t, outcome.Write.PrimaryErr)
	assert.Equal(t, outcome.Event.ID, outcome.Write.ID)
	gateway.AssertExpectations(t)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestPipeline_SameSecondReportsYieldTwoPrimaryRows(t *testing.T) {
	service, sqlMock, _ := newPostgresPipeline(t)

	sqlMock.ExpectExec(`INSERT INTO "fall_events"`).WillReturnResult(sqlmock.NewResult(0, 1))
	sqlMock.ExpectExec(`INSERT INTO "fall_events"`).WillReturnResult(sqlmock.NewResult(0, 1))

	report := dto.FallEventReport{Detect: true, Type: "false alert", DeviceID: "esp-7"}
	first, err := service.HandleReport(context.Background(), report)
	require.NoError(t, err)
	second, err := service.HandleReport(context.Background(), report)
	require.NoError(t, err)

	assert.True(t, first.Write.PrimaryWritten)
	assert.True(t, second.Write.PrimaryWritten)
	assert.NotEqual(t, first.Write.ID, second.Write.ID)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}
