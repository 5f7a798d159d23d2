package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BarkinBalci/fall-event-service/internal/domain"
	"github.com/BarkinBalci/fall-event-service/internal/repository"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *Repository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewRepository(db, "fall_detection", "fall_events", zap.NewNop())

	return db, mock, repo
}

func testEvent(deviceID string) *domain.FallEvent {
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return &domain.FallEvent{
		Timestamp:        ts,
		TimestampDisplay: "2025-03-01 10:00:00 UTC",
		DeviceID:         deviceID,
		Detection:        true,
		AlertType:        domain.RealAlert,
		SMSSent:          domain.SMSSent,
	}
}

func TestName(t *testing.T) {
	db, _, repo := setupMockDB(t)
	defer db.Close()

	assert.Equal(t, "postgres (fall_detection.fall_events)", repo.Name())
	assert.Equal(t, "postgres (fall_events)", NewRepository(db, "", "fall_events", zap.NewNop()).Name())
}

func TestInitSchema_Success(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS "fall_events"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`CREATE INDEX IF NOT EXISTS "fall_events_occurred_at_idx" ON "fall_events"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`CREATE INDEX IF NOT EXISTS "fall_events_content_key_idx" ON "fall_events" (content_key)`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.InitSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInitSchema_Error(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE`).WillReturnError(errors.New("permission denied"))

	err := repo.InitSchema(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create events table")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert_Success(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	event := testEvent("esp-7")
	event.ID = "5d1c0a54-3f0e-4c59-8d6e-0f9b7a2e1c33"

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "fall_events" (event_id, content_key, occurred_at, document) VALUES ($1, $2, $3, $4) ON CONFLICT (event_id) DO NOTHING`)).
		WithArgs(event.ID, event.ContentKey(), event.Timestamp, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := repo.Insert(context.Background(), event)

	require.NoError(t, err)
	assert.Equal(t, event.ID, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert_SameSecondReportsAreKeptApart(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	first, second := testEvent("esp-7"), testEvent("esp-7")
	first.ID = "1b4e28ba-2fa1-11d2-883f-0016d3cca427"
	second.ID = "6fa459ea-ee8a-3ca4-894e-db77e160355e"

	mock.ExpectExec(`INSERT INTO "fall_events"`).
		WithArgs(first.ID, first.ContentKey(), first.Timestamp, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "fall_events"`).
		WithArgs(second.ID, second.ContentKey(), second.Timestamp, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	firstID, err := repo.Insert(context.Background(), first)
	require.NoError(t, err)
	secondID, err := repo.Insert(context.Background(), second)
	require.NoError(t, err)

	assert.NotEqual(t, firstID, secondID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert_DuplicateKey(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	event := testEvent("esp-7")
	event.ID = "already-there"

	mock.ExpectExec(`INSERT INTO "fall_events"`).WillReturnResult(sqlmock.NewResult(0, 0))

	id, err := repo.Insert(context.Background(), event)

	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrDuplicateEvent)
	assert.Empty(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert_Error(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO`).WillReturnError(errors.New("connection reset"))

	id, err := repo.Insert(context.Background(), testEvent("esp-7"))

	require.Error(t, err)
	assert.Empty(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func countRows(counts map[string]int64) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"content_key", "count"})
	for key, count := range counts {
		rows.AddRow(key, count)
	}
	return rows
}

func TestInsertBatch_SkipsEventsAlreadyStored(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	live := testEvent("esp-1")
	again := testEvent("esp-1")
	again.Ordinal = 1
	other := testEvent("esp-2")
	events := []*domain.FallEvent{live, again, other}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT content_key, COUNT(*) FROM "fall_events" WHERE content_key = ANY($1) GROUP BY content_key`)).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(countRows(map[string]int64{live.ContentKey(): 1}))
	mock.ExpectBegin()
	prep := mock.ExpectPrepare(`INSERT INTO "fall_events"`)
	prep.ExpectExec().WithArgs(again.Key(), again.ContentKey(), again.Timestamp, sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WithArgs(other.Key(), other.ContentKey(), other.Timestamp, sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	inserted, err := repo.InsertBatch(context.Background(), events)

	require.NoError(t, err)
	assert.Equal(t, 2, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertBatch_NothingMissing(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	event := testEvent("esp-1")

	mock.ExpectQuery(`SELECT content_key`).
		WillReturnRows(countRows(map[string]int64{event.ContentKey(): 1}))

	inserted, err := repo.InsertBatch(context.Background(), []*domain.FallEvent{event})

	require.NoError(t, err)
	assert.Equal(t, 0, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertBatch_CountQueryError(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT content_key`).WillReturnError(errors.New("timeout"))

	inserted, err := repo.InsertBatch(context.Background(), []*domain.FallEvent{testEvent("esp-1")})

	require.Error(t, err)
	assert.Equal(t, 0, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertBatch_RollsBackOnError(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT content_key`).WillReturnRows(countRows(nil))
	mock.ExpectBegin()
	prep := mock.ExpectPrepare(`INSERT INTO "fall_events"`)
	prep.ExpectExec().WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	inserted, err := repo.InsertBatch(context.Background(), []*domain.FallEvent{testEvent("esp-1")})

	require.Error(t, err)
	assert.Equal(t, 0, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertBatch_Empty(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	inserted, err := repo.InsertBatch(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, 0, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecent_Success(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	newer := time.Date(2025, 3, 1, 10, 0, 5, 0, time.UTC)
	older := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"event_id", "occurred_at", "document"}).
		AddRow("id-2", newer, []byte(`{"timestamp_str":"2025-03-01 10:00:05 UTC","device_id":"esp-7","detection":true,"alert_type":"real alert","sms_sent":"Yes"}`)).
		AddRow("id-1", older, []byte(`{"detection":false,"alert_type":"false alert"}`))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT event_id, occurred_at, document FROM "fall_events" ORDER BY occurred_at DESC LIMIT $1`)).
		WithArgs(20).
		WillReturnRows(rows)

	docs, err := repo.Recent(context.Background(), 20)

	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "id-2", docs[0][repository.FieldID])
	assert.Equal(t, newer, docs[0][repository.FieldTimestamp])
	assert.Equal(t, "esp-7", docs[0][repository.FieldDeviceID])
	assert.Equal(t, true, docs[0][repository.FieldDetection])

	assert.Equal(t, "id-1", docs[1][repository.FieldID])
	assert.NotContains(t, docs[1], repository.FieldDeviceID)
	assert.NotContains(t, docs[1], repository.FieldSMSSent)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecent_SkipsUndecodableDocuments(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"event_id", "occurred_at", "document"}).
		AddRow("bad", time.Now(), []byte(`not json`)).
		AddRow("good", time.Now(), []byte(`{"alert_type":"real alert"}`))

	mock.ExpectQuery(`SELECT event_id`).WithArgs(5).WillReturnRows(rows)

	docs, err := repo.Recent(context.Background(), 5)

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "good", docs[0][repository.FieldID])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecent_QueryError(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT event_id`).WillReturnError(errors.New("timeout"))

	docs, err := repo.Recent(context.Background(), 20)

	require.Error(t, err)
	assert.Nil(t, docs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCount(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM "fall_events"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(42)))

	count, err := repo.Count(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(42), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEncode_OmitsColumnFields(t *testing.T) {
	payload, err := encode(testEvent("esp-7"))
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(payload, &doc))

	assert.NotContains(t, doc, repository.FieldID)
	assert.NotContains(t, doc, repository.FieldTimestamp)
	assert.Equal(t, "esp-7", doc[repository.FieldDeviceID])
	assert.Equal(t, "Yes", doc[repository.FieldSMSSent])
	assert.Equal(t, true, doc[repository.FieldDetection])
}
