package store

import (
	"context"
	"fmt"
	"time"
)

// PutMarker records a successful submission for visitorID.
func (db *DB) PutMarker(ctx context.Context, visitorID string, submittedAt time.Time, ttl time.Duration) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO success_markers (visitor_id, submitted_at, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT(visitor_id) DO UPDATE SET
			submitted_at = excluded.submitted_at,
			expires_at   = excluded.expires_at
	`, visitorID, submittedAt.UnixNano(), submittedAt.Add(ttl).UnixNano())
	if err != nil {
		return fmt.Errorf("store: put marker: %w", err)
	}
	return nil
}

// ValidMarker reports whether visitorID has a marker that has not expired at now.
func (db *DB) ValidMarker(ctx context.Context, visitorID string, now time.Time) (bool, error) {
	var n int
	err := db.conn.QueryRowContext(ctx, `
		SELECT count(*) FROM success_markers WHERE visitor_id = ? AND expires_at > ?
	`, visitorID, now.UnixNano()).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("store: get marker: %w", err)
	}
	return n > 0, nil
}

// SweepExpired deletes markers that expired at or before now.
func (db *DB) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM success_markers WHERE expires_at <= ?`, now.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("store: sweep markers: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
