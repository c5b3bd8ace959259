package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// PostgresStore persists call records in the call_records table.
//
// Schema:
//
//	CREATE TABLE call_records (
//	    call_id       TEXT PRIMARY KEY,
//	    phone_number  TEXT NOT NULL,
//	    status        TEXT NOT NULL,
//	    transcript    TEXT NOT NULL DEFAULT '',
//	    recording_url TEXT NOT NULL DEFAULT '',
//	    created_at    TIMESTAMPTZ NOT NULL,
//	    updated_at    TIMESTAMPTZ NOT NULL
//	);
type PostgresStore struct {
	db *sql.DB
	sb sq.StatementBuilderType

	clock func() time.Time
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db:    db,
		sb:    sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		clock: time.Now,
	}
}

func (s *PostgresStore) Save(ctx context.Context, rec CallRecord) error {
	if rec.CallID == "" {
		return errors.New("records: call_id is required")
	}

	now := s.clock().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}

	query, args, err := s.sb.Insert("call_records").
		Columns("call_id", "phone_number", "status", "transcript", "recording_url", "created_at", "updated_at").
		Values(rec.CallID, rec.PhoneNumber, rec.Status, rec.Transcript, rec.RecordingURL, rec.CreatedAt, now).
		Suffix(`ON CONFLICT (call_id) DO UPDATE SET
			phone_number = EXCLUDED.phone_number,
			status = EXCLUDED.status,
			transcript = EXCLUDED.transcript,
			recording_url = EXCLUDED.recording_url,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("records: build upsert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("records: save %s: %w", rec.CallID, err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, callID string) (CallRecord, error) {
	query, args, err := s.sb.Select("call_id", "phone_number", "status", "transcript", "recording_url", "created_at", "updated_at").
		From("call_records").
		Where(sq.Eq{"call_id": callID}).
		ToSql()
	if err != nil {
		return CallRecord{}, fmt.Errorf("records: build select: %w", err)
	}

	var rec CallRecord
	row := s.db.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&rec.CallID, &rec.PhoneNumber, &rec.Status, &rec.Transcript, &rec.RecordingURL, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CallRecord{}, ErrNotFound
		}
		return CallRecord{}, fmt.Errorf("records: get %s: %w", callID, err)
	}
	return rec, nil
}

func (s *PostgresStore) List(ctx context.Context, from, to time.Time) ([]CallRecord, error) {
	b := s.sb.Select("call_id", "phone_number", "status", "transcript", "recording_url", "created_at", "updated_at").
		From("call_records").
		OrderBy("created_at DESC")
	if !from.IsZero() {
		b = b.Where(sq.GtOrEq{"created_at": from})
	}
	if !to.IsZero() {
		b = b.Where(sq.Lt{"created_at": to})
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("records: build list: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("records: list: %w", err)
	}
	defer rows.Close()

	var out []CallRecord
	for rows.Next() {
		var rec CallRecord
		if err := rows.Scan(&rec.CallID, &rec.PhoneNumber, &rec.Status, &rec.Transcript, &rec.RecordingURL, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("records: scan: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("records: list: %w", err)
	}
	return out, nil
}
