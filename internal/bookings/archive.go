package bookings

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PostgresArchive mirrors booking records into Postgres for querying from
// the admin endpoints. The flat-file log stays the source of truth; archive
// writes are best effort. All methods are nil-receiver safe so callers can
// wire it unconditionally.
type PostgresArchive struct {
	db *sql.DB
}

// NewPostgresArchive creates the archive. Returns nil when db is nil.
func NewPostgresArchive(db *sql.DB) *PostgresArchive {
	if db == nil {
		return nil
	}
	return &PostgresArchive{db: db}
}

// EnsureSchema creates the bookings table when missing.
func (a *PostgresArchive) EnsureSchema(ctx context.Context) error {
	if a == nil || a.db == nil {
		return nil
	}
	_, err := a.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS bookings (
			id            UUID PRIMARY KEY,
			name          TEXT NOT NULL,
			phone         TEXT NOT NULL,
			scheduled_for TEXT NOT NULL,
			sender        TEXT NOT NULL,
			recorded_at   TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("bookings: failed to ensure schema: %w", err)
	}
	return nil
}

// Insert mirrors one record. Re-inserting the same record ID is a no-op,
// which keeps the at-least-once file log and the archive consistent.
func (a *PostgresArchive) Insert(ctx context.Context, rec Record) error {
	if a == nil || a.db == nil {
		return nil
	}
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO bookings (id, name, phone, scheduled_for, sender, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`, rec.ID, rec.Name, rec.Phone, rec.ScheduledFor, rec.Sender, rec.RecordedAt)
	if err != nil {
		return fmt.Errorf("bookings: failed to insert record: %w", err)
	}
	return nil
}

// List returns the most recent records first.
func (a *PostgresArchive) List(ctx context.Context, limit int) ([]Record, error) {
	if a == nil || a.db == nil {
		return nil, nil
	}
	query := `
		SELECT id, name, phone, scheduled_for, sender, recorded_at
		FROM bookings
		ORDER BY recorded_at DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("bookings: failed to list records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var recordedAt time.Time
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Phone, &rec.ScheduledFor, &rec.Sender, &recordedAt); err != nil {
			return nil, fmt.Errorf("bookings: failed to scan record: %w", err)
		}
		rec.RecordedAt = recordedAt
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("bookings: failed to read records: %w", err)
	}
	return records, nil
}
