// Package postgres stores events as JSONB documents in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/BarkinBalci/fall-event-service/internal/domain"
	"github.com/BarkinBalci/fall-event-service/internal/repository"
)

const (
	maxOpenConns = 5
	maxIdleConns = 2
)

// Open connects to PostgreSQL and verifies the connection
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Repository implements EventRepository for PostgreSQL
type Repository struct {
	db        *sql.DB
	database  string
	tableName string
	table     string
	log       *zap.Logger
}

// NewRepository creates a repository storing events in table
func NewRepository(db *sql.DB, database, table string, log *zap.Logger) *Repository {
	return &Repository{
		db:        db,
		database:  database,
		tableName: table,
		table:     pq.QuoteIdentifier(table),
		log:       log,
	}
}

// Name identifies the backend
func (r *Repository) Name() string {
	if r.database == "" {
		return fmt.Sprintf("postgres (%s)", r.tableName)
	}
	return fmt.Sprintf("postgres (%s.%s)", r.database, r.tableName)
}

// InitSchema creates the events table and its timestamp index
func (r *Repository) InitSchema(ctx context.Context) error {
	table := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			event_id TEXT PRIMARY KEY,
			content_key TEXT NOT NULL,
			occurred_at TIMESTAMPTZ NOT NULL,
			document JSONB NOT NULL
		)`, r.table)
	if _, err := r.db.ExecContext(ctx, table); err != nil {
		return fmt.Errorf("failed to create events table: %w", err)
	}

	indexes := []string{
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (occurred_at DESC)",
			pq.QuoteIdentifier(r.tableName+"_occurred_at_idx"), r.table),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (content_key)",
			pq.QuoteIdentifier(r.tableName+"_content_key_idx"), r.table),
	}
	for _, index := range indexes {
		if _, err := r.db.ExecContext(ctx, index); err != nil {
			return fmt.Errorf("failed to create events index: %w", err)
		}
	}

	r.log.Info("PostgreSQL schema initialized", zap.String("table", r.tableName))
	return nil
}

// Insert stores a single event under its key. A key the table already holds is reported as ErrDuplicateEvent.
func (r *Repository) Insert(ctx context.Context, event *domain.FallEvent) (string, error) {
	payload, err := encode(event)
	if err != nil {
		return "", err
	}

	id := event.Key()
	result, err := r.db.ExecContext(ctx, r.insertQuery(), id, event.ContentKey(), event.Timestamp, payload)
	if err != nil {
		return "", fmt.Errorf("failed to insert event: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return "", fmt.Errorf("failed to insert event %s: %w", id, repository.ErrDuplicateEvent)
	}

	return id, nil
}

// InsertBatch inserts the replayed events the table does not hold yet, in one transaction,
// and returns how many were new
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

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, r.insertQuery())
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, event := range missing {
		payload, err := encode(event)
		if err != nil {
			return 0, err
		}

		result, err := stmt.ExecContext(ctx, event.Key(), event.ContentKey(), event.Timestamp, payload)
		if err != nil {
			return 0, fmt.Errorf("failed to insert event: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to read affected rows: %w", err)
		}
		inserted += int(affected)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit batch: %w", err)
	}

	return inserted, nil
}

// storedCounts counts the table's events per content key
func (r *Repository) storedCounts(ctx context.Context, keys []string) (map[string]int64, error) {
	query := fmt.Sprintf(
		"SELECT content_key, COUNT(*) FROM %s WHERE content_key = ANY($1) GROUP BY content_key", r.table)

	rows, err := r.db.QueryContext(ctx, query, pq.Array(keys))
	if err != nil {
		return nil, fmt.Errorf("failed to count stored events: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64, len(keys))
	for rows.Next() {
		var (
			key   string
			count int64
		)
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("failed to scan stored count: %w", err)
		}
		counts[key] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stored counts: %w", err)
	}

	return counts, nil
}

// Recent returns up to limit documents, newest first
func (r *Repository) Recent(ctx context.Context, limit int) ([]repository.Document, error) {
	if limit <= 0 {
		return []repository.Document{}, nil
	}

	query := fmt.Sprintf("SELECT event_id, occurred_at, document FROM %s ORDER BY occurred_at DESC LIMIT $1", r.table)
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent events: %w", err)
	}
	defer rows.Close()

	documents := make([]repository.Document, 0, limit)
	for rows.Next() {
		var (
			id         string
			occurredAt time.Time
			raw        []byte
		)
		if err := rows.Scan(&id, &occurredAt, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}

		doc := repository.Document{}
		if err := json.Unmarshal(raw, &doc); err != nil {
			r.log.Warn("Skipping undecodable event document", zap.String("event_id", id), zap.Error(err))
			continue
		}
		doc[repository.FieldID] = id
		doc[repository.FieldTimestamp] = occurredAt
		documents = append(documents, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}

	return documents, nil
}

// Count returns the number of stored events
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", r.table)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection
func (r *Repository) Close() error {
	r.log.Info("Closing PostgreSQL connection")
	return r.db.Close()
}

func (r *Repository) insertQuery() string {
	return fmt.Sprintf(
		"INSERT INTO %s (event_id, content_key, occurred_at, document) VALUES ($1, $2, $3, $4) ON CONFLICT (event_id) DO NOTHING",
		r.table)
}

// encode marshals the event into its JSONB document. The id and instant live in their own columns.
func encode(event *domain.FallEvent) ([]byte, error) {
	doc := repository.NewDocument(event)
	delete(doc, repository.FieldID)
	delete(doc, repository.FieldTimestamp)

	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event document: %w", err)
	}
	return payload, nil
}
