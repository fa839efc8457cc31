//go:build sqlite_fts5

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/starford/designa/internal/models"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS submissions_fts USING fts5(
			id UNINDEXED,
			name,
			email,
			message,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsInsert(tx *sql.Tx, s models.Submission) error {
	_, err := tx.Exec(`INSERT INTO submissions_fts (id, name, email, message) VALUES (?, ?, ?, ?)`,
		s.ID, s.Name, s.Email, s.Message)
	if err != nil {
		return fmt.Errorf("store: insert fts: %w", err)
	}
	return nil
}

// SearchSubmissions performs an FTS5 search over sender and message text.
func (db *DB) SearchSubmissions(ctx context.Context, query string, limit int) ([]models.Submission, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT s.id, s.visitor_id, s.name, s.email, s.message, s.status, s.error, s.created_at
		FROM submissions_fts f
		JOIN submissions s ON s.id = f.id
		WHERE submissions_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, ftsQuery(query), limit)
	if err != nil {
		return nil, fmt.Errorf("store: search: %w", err)
	}
	defer rows.Close()

	out := []models.Submission{}
	for rows.Next() {
		var s models.Submission
		if err := rows.Scan(&s.ID, &s.VisitorID, &s.Name, &s.Email, &s.Message, &s.Status, &s.Error, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ftsQuery quotes every term so user input cannot use FTS5 operators.
func ftsQuery(q string) string {
	terms := strings.Fields(q)
	for i, t := range terms {
		terms[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	return strings.Join(terms, " ")
}
