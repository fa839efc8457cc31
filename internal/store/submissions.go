package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/starford/designa/internal/models"
)

// RecordSubmission appends s to the log. A missing ID or timestamp is filled in.
func (db *DB) RecordSubmission(ctx context.Context, s models.Submission) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.ExecContext(ctx, `
		INSERT INTO submissions (id, visitor_id, name, email, message, status, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, s.ID, s.VisitorID, s.Name, s.Email, s.Message, s.Status, s.Error, s.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("store: insert submission: %w", err)
	}
	if err := ftsInsert(tx, s); err != nil {
		return err
	}
	return tx.Commit()
}

// ListSubmissions returns submissions newest first, optionally filtered by
// status, and the total count matching the filter.
func (db *DB) ListSubmissions(ctx context.Context, status string, limit, offset int) ([]models.Submission, int, error) {
	if limit <= 0 {
		limit = 50
	}
	where := ""
	args := []any{}
	if status != "" {
		where = "WHERE status = ?"
		args = append(args, status)
	}

	var total int
	if err := db.conn.QueryRowContext(ctx, `SELECT count(*) FROM submissions `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("store: count submissions: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, visitor_id, name, email, message, status, error, created_at
		FROM submissions `+where+`
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?
	`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("store: list submissions: %w", err)
	}
	defer rows.Close()

	out := []models.Submission{}
	for rows.Next() {
		var s models.Submission
		if err := rows.Scan(&s.ID, &s.VisitorID, &s.Name, &s.Email, &s.Message, &s.Status, &s.Error, &s.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}
