package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"studyhub/internal/modules/record/domain"
	recordout "studyhub/internal/modules/record/port/out"
	apperrors "studyhub/internal/platform/errors"

	_ "modernc.org/sqlite"
)

type migration struct {
	version int
	name    string
	stmts   []string
}

func collectionDDL(c domain.Collection) []string {
	stmts := []string{fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
  id TEXT PRIMARY KEY,
  date_string TEXT NOT NULL DEFAULT '',
  payload TEXT NOT NULL,
  updated_at TEXT NOT NULL
)`, c)}
	if c.DateIndexed() {
		stmts = append(stmts, fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_date ON %s(date_string)`, c, c))
	}
	return stmts
}

// migrations only ever add tables and indexes. A step runs once, when the
// stored version is below it.
var migrations = func() []migration {
	var v1 []string
	for _, c := range []domain.Collection{domain.Sessions, domain.Categories, domain.Goals, domain.Tasks, domain.Exams, domain.Chats} {
		v1 = append(v1, collectionDDL(c)...)
	}
	return []migration{
		{version: 1, name: "core collections", stmts: v1},
		{version: 2, name: "journal", stmts: collectionDDL(domain.Journal)},
	}
}()

// LatestSchemaVersion is the version a freshly opened engine reports.
var LatestSchemaVersion = migrations[len(migrations)-1].version

type SQLiteEngine struct {
	db    *sql.DB
	now   func() time.Time
	locks map[domain.Collection]*sync.Mutex
}

func NewSQLiteEngine(dbPath string) (*SQLiteEngine, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, fmt.Errorf("%w: sqlite db path is empty", apperrors.ErrInvalidInput)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, unavailable("create db dir", err)
	}
	dsn := "file:" + dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, unavailable("open sqlite", err)
	}
	engine := &SQLiteEngine{db: db, now: time.Now, locks: map[domain.Collection]*sync.Mutex{}}
	for _, c := range domain.AllCollections {
		engine.locks[c] = &sync.Mutex{}
	}
	if err := engine.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return engine, nil
}

var _ recordout.Engine = (*SQLiteEngine)(nil)

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", apperrors.ErrStorageUnavailable, op, err)
}

func (s *SQLiteEngine) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_meta (version INTEGER NOT NULL)`); err != nil {
		return unavailable("create schema_meta", err)
	}
	current, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := s.apply(ctx, m); err != nil {
			return err
		}
		current = m.version
	}
	return nil
}

func (s *SQLiteEngine) apply(ctx context.Context, m migration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("begin migration", err)
	}
	defer func() { _ = tx.Rollback() }()
	for _, stmt := range m.stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return unavailable(fmt.Sprintf("migration %d (%s)", m.version, m.name), err)
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM schema_meta`); err != nil {
		return unavailable("reset schema version", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_meta (version) VALUES (?)`, m.version); err != nil {
		return unavailable("record schema version", err)
	}
	if err := tx.Commit(); err != nil {
		return unavailable("commit migration", err)
	}
	return nil
}

func (s *SQLiteEngine) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	err := s.db.QueryRowContext(ctx, `SELECT version FROM schema_meta LIMIT 1`).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, unavailable("read schema version", err)
	}
	return version, nil
}

func (s *SQLiteEngine) lock(c domain.Collection) (func(), error) {
	mu, ok := s.locks[c]
	if !ok {
		return nil, fmt.Errorf("%w: unknown collection %q", apperrors.ErrInvalidInput, c)
	}
	mu.Lock()
	return mu.Unlock, nil
}

func (s *SQLiteEngine) Put(ctx context.Context, c domain.Collection, doc domain.Document) error {
	unlock, err := s.lock(c)
	if err != nil {
		return err
	}
	defer unlock()
	stmt := fmt.Sprintf(`
INSERT INTO %s (id, date_string, payload, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  date_string=excluded.date_string,
  payload=excluded.payload,
  updated_at=excluded.updated_at`, c)
	if _, err := s.db.ExecContext(ctx, stmt, doc.ID, doc.Date, string(doc.Body), s.now().UTC().Format(time.RFC3339Nano)); err != nil {
		return unavailable("put "+string(c), err)
	}
	return nil
}

func (s *SQLiteEngine) GetAll(ctx context.Context, c domain.Collection) ([]domain.Document, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: unknown collection %q", apperrors.ErrInvalidInput, c)
	}
	return s.query(ctx, c, fmt.Sprintf(`SELECT id, date_string, payload FROM %s ORDER BY rowid`, c))
}

func (s *SQLiteEngine) GetByDate(ctx context.Context, c domain.Collection, date string) ([]domain.Document, error) {
	if !c.DateIndexed() {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrNotDateIndexed, c)
	}
	return s.query(ctx, c, fmt.Sprintf(`SELECT id, date_string, payload FROM %s WHERE date_string = ? ORDER BY rowid`, c), date)
}

func (s *SQLiteEngine) query(ctx context.Context, c domain.Collection, q string, args ...any) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, unavailable("read "+string(c), err)
	}
	defer rows.Close()
	docs := []domain.Document{}
	for rows.Next() {
		var (
			doc     domain.Document
			payload string
		)
		if err := rows.Scan(&doc.ID, &doc.Date, &payload); err != nil {
			return nil, unavailable("scan "+string(c), err)
		}
		doc.Body = []byte(payload)
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate "+string(c), err)
	}
	return docs, nil
}

func (s *SQLiteEngine) Delete(ctx context.Context, c domain.Collection, id string) (bool, error) {
	unlock, err := s.lock(c)
	if err != nil {
		return false, err
	}
	defer unlock()
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, c), id)
	if err != nil {
		return false, unavailable("delete from "+string(c), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, unavailable("delete from "+string(c), err)
	}
	return n > 0, nil
}

func (s *SQLiteEngine) DeleteByDate(ctx context.Context, c domain.Collection, date string) ([]string, error) {
	if !c.DateIndexed() {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrNotDateIndexed, c)
	}
	return s.deleteWhere(ctx, c, "WHERE date_string = ?", date)
}

func (s *SQLiteEngine) Clear(ctx context.Context, c domain.Collection) ([]string, error) {
	return s.deleteWhere(ctx, c, "")
}

// deleteWhere removes matching rows and reports their ids in one transaction.
func (s *SQLiteEngine) deleteWhere(ctx context.Context, c domain.Collection, where string, args ...any) ([]string, error) {
	unlock, err := s.lock(c)
	if err != nil {
		return nil, err
	}
	defer unlock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, unavailable("begin delete", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, fmt.Sprintf(`SELECT id FROM %s %s ORDER BY rowid`, c, where), args...)
	if err != nil {
		return nil, unavailable("select ids from "+string(c), err)
	}
	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, unavailable("scan id", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate ids", err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s %s`, c, where), args...); err != nil {
		return nil, unavailable("delete from "+string(c), err)
	}
	if err := tx.Commit(); err != nil {
		return nil, unavailable("commit delete", err)
	}
	return ids, nil
}

func (s *SQLiteEngine) Close() error {
	return s.db.Close()
}
