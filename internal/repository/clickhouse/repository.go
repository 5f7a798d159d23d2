package clickhouse

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"github.com/BarkinBalci/fall-event-service/internal/domain"
	"github.com/BarkinBalci/fall-event-service/internal/repository"
)

const columns = "event_id, content_key, timestamp, timestamp_str, device_id, detection, alert_type, sms_sent, version"

// Repository implements EventRepository for ClickHouse
type Repository struct {
	client    *Client
	tableName string
	table     string
	log       *zap.Logger
}

// NewRepository creates a new ClickHouse repository storing events in table
func NewRepository(client *Client, table string, log *zap.Logger) *Repository {
	return &Repository{
		client:    client,
		tableName: table,
		table:     quoteIdentifier(table),
		log:       log,
	}
}

// Name identifies the backend
func (r *Repository) Name() string {
	return fmt.Sprintf("clickhouse (%s.%s)", r.client.Database(), r.tableName)
}

// InitSchema initializes the ClickHouse schema with ReplacingMergeTree engine
func (r *Repository) InitSchema(ctx context.Context) error {
	if err := r.client.Conn().Exec(ctx, createTableQuery(r.table)); err != nil {
		return fmt.Errorf("failed to create events table: %w", err)
	}

	r.log.Info("ClickHouse schema initialized", zap.String("table", r.table))
	return nil
}

// Insert stores a single event under its key
func (r *Repository) Insert(ctx context.Context, event *domain.FallEvent) (string, error) {
	if err := r.send(ctx, []*domain.FallEvent{event}); err != nil {
		return "", err
	}
	return event.Key(), nil
}

// InsertBatch inserts the replayed events the table does not hold yet and returns how many were sent
func (r *Repository) InsertBatch(ctx context.Context, events []*domain.FallEvent) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	stored, err := r.storedCounts(ctx, repository.ContentKeys(events))
	if err != nil {
		return 0, err
	}

	missing := repository.Missing(events, stored)
	if len(missing) == 0 {
		return 0, nil
	}

	if err := r.send(ctx, missing); err != nil {
		return 0, err
	}
	return len(missing), nil
}

func (r *Repository) send(ctx context.Context, events []*domain.FallEvent) error {
	batch, err := r.client.Conn().PrepareBatch(ctx, fmt.Sprintf("INSERT INTO %s (%s)", r.table, columns))
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	version := uint64(time.Now().UnixNano())
	for _, event := range events {
		if err := batch.Append(rowValues(event, version)...); err != nil {
			_ = batch.Abort()
			return fmt.Errorf("failed to append event to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}
	return nil
}

// storedCounts counts the table's events per content key
func (r *Repository) storedCounts(ctx context.Context, keys []string) (map[string]int64, error) {
	query := fmt.Sprintf(`
		SELECT content_key, count()
		FROM %s FINAL
		WHERE content_key IN (?)
		GROUP BY content_key
	`, r.table)

	rows, err := r.client.Conn().Query(ctx, query, keys)
	if err != nil {
		return nil, fmt.Errorf("failed to count stored events: %w", err)
	}
	defer func(rows driver.Rows) {
		if err := rows.Close(); err != nil {
			r.log.Error("Failed to close stored count rows", zap.Error(err))
		}
	}(rows)

	counts := make(map[string]int64, len(keys))
	for rows.Next() {
		var (
			key   string
			count uint64
		)
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("failed to scan stored count: %w", err)
		}
		counts[key] = int64(count)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stored counts: %w", err)
	}

	return counts, nil
}

// Recent returns up to limit events, newest first
func (r *Repository) Recent(ctx context.Context, limit int) ([]repository.Document, error) {
	if limit <= 0 {
		return []repository.Document{}, nil
	}

	query := fmt.Sprintf(`
		SELECT event_id, timestamp, timestamp_str, device_id, detection, alert_type, sms_sent
		FROM %s FINAL
		ORDER BY timestamp DESC
		LIMIT ?
	`, r.table)

	rows, err := r.client.Conn().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent events: %w", err)
	}
	defer func(rows driver.Rows) {
		if err := rows.Close(); err != nil {
			r.log.Error("Failed to close recent events rows", zap.Error(err))
		}
	}(rows)

	documents := make([]repository.Document, 0, limit)
	for rows.Next() {
		var row storedRow
		if err := rows.Scan(&row.ID, &row.Timestamp, &row.TimestampDisplay, &row.DeviceID, &row.Detection, &row.AlertType, &row.SMSSent); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		documents = append(documents, row.document())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}

	return documents, nil
}

// Count returns the number of distinct stored events
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count uint64
	if err := r.client.Conn().QueryRow(ctx, fmt.Sprintf("SELECT count() FROM %s FINAL", r.table)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return int64(count), nil
}

// Ping checks if the ClickHouse connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.client.Conn().Ping(ctx)
}

// Close closes the ClickHouse connection
func (r *Repository) Close() error {
	return r.client.Close()
}

func createTableQuery(table string) string {
	return fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		event_id String,
		content_key String,
		timestamp DateTime64(3, 'UTC'),
		timestamp_str String,
		device_id LowCardinality(String),
		detection Bool,
		alert_type LowCardinality(String),
		sms_sent LowCardinality(String),
		version UInt64
	) ENGINE = ReplacingMergeTree(version)
	ORDER BY event_id
	PARTITION BY toYYYYMM(timestamp)
	SETTINGS index_granularity = 8192
	`, table)
}

func rowValues(event *domain.FallEvent, version uint64) []any {
	return []any{
		event.Key(),
		event.ContentKey(),
		event.Timestamp.UTC(),
		event.TimestampDisplay,
		event.DeviceID,
		event.Detection,
		event.AlertType,
		string(event.SMSSent),
		version,
	}
}

// storedRow mirrors the table columns read back by Recent
type storedRow struct {
	ID               string
	Timestamp        time.Time
	TimestampDisplay string
	DeviceID         string
	Detection        bool
	AlertType        string
	SMSSent          string
}

// document converts a row into the shared document shape. Empty columns written by
// older releases are left out so readers apply their own defaults.
func (s storedRow) document() repository.Document {
	doc := repository.Document{
		repository.FieldID:        s.ID,
		repository.FieldTimestamp: s.Timestamp,
		repository.FieldDetection: s.Detection,
	}

	optional := map[string]string{
		repository.FieldTimestampDisplay: s.TimestampDisplay,
		repository.FieldDeviceID:         s.DeviceID,
		repository.FieldAlertType:        s.AlertType,
		repository.FieldSMSSent:          s.SMSSent,
	}
	for key, value := range optional {
		if value != "" {
			doc[key] = value
		}
	}

	return doc
}

// quoteIdentifier backtick-quotes a table name, escaping embedded backticks
func quoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
