package mirrorserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	apperrors "studyhub/internal/platform/errors"
)

const documentsSchema = `
CREATE TABLE IF NOT EXISTS documents (
	user_id    TEXT NOT NULL,
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	body       TEXT NOT NULL,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (user_id, collection, id)
);`

// Store keeps one JSON body per user, collection and id.
type Store struct {
	db *sql.DB
}

func OpenStore(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("%w: create mirror dir: %v", apperrors.ErrStorageUnavailable, err)
		}
	}
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open mirror db: %v", apperrors.ErrStorageUnavailable, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(documentsSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: migrate mirror db: %v", apperrors.ErrStorageUnavailable, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Upsert(ctx context.Context, userID, collection, id string, body json.RawMessage) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO documents(user_id, collection, id, body, updated_at) VALUES(?, ?, ?, ?, ?)
ON CONFLICT(user_id, collection, id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		userID, collection, id, string(body), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("%w: upsert document: %v", apperrors.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, userID, collection, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE user_id = ? AND collection = ? AND id = ?`, userID, collection, id)
	if err != nil {
		return false, fmt.Errorf("%w: delete document: %v", apperrors.ErrStorageUnavailable, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *Store) List(ctx context.Context, userID, collection string) ([]json.RawMessage, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT body FROM documents WHERE user_id = ? AND collection = ? ORDER BY rowid`, userID, collection)
	if err != nil {
		return nil, fmt.Errorf("%w: list documents: %v", apperrors.ErrStorageUnavailable, err)
	}
	defer rows.Close()
	out := []json.RawMessage{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("%w: scan document: %v", apperrors.ErrStorageUnavailable, err)
		}
		out = append(out, json.RawMessage(body))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list documents: %v", apperrors.ErrStorageUnavailable, err)
	}
	return out, nil
}
