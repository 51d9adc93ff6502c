package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite via modernc.org/sqlite (pure Go).
type SQLiteStore struct {
	db *sql.DB
}

// Compile-time check that SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite-backed store.
// dbPath is the path to the database file; use ":memory:" for testing.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping database: %w", err)
	}

	createTableSQL := `
		CREATE TABLE IF NOT EXISTS history (
			id         TEXT PRIMARY KEY,
			kind       TEXT NOT NULL,
			company    TEXT NOT NULL,
			score      REAL DEFAULT 0,
			grade      TEXT DEFAULT '',
			detail     TEXT DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create table: %w", err)
	}

	createIndexSQL := `
		CREATE INDEX IF NOT EXISTS idx_history_company ON history(company);
	`
	if _, err := db.Exec(createIndexSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Save persists a record. If the record's ID is empty, a new UUID is
// generated and assigned.
func (s *SQLiteStore) Save(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO history (id, kind, company, score, grade, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind    = excluded.kind,
			company = excluded.company,
			score   = excluded.score,
			grade   = excluded.grade,
			detail  = excluded.detail
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.ID,
		string(rec.Kind),
		rec.Company,
		rec.Score,
		rec.Grade,
		rec.Detail,
		rec.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("store: save record: %w", err)
	}
	return nil
}

// List returns all records, newest first.
func (s *SQLiteStore) List(ctx context.Context) ([]*Record, error) {
	query := `
		SELECT id, kind, company, score, grade, detail, created_at
		FROM history
		ORDER BY created_at DESC
	`
	return s.query(ctx, query)
}

// ListByCompany returns records for one company, newest first.
func (s *SQLiteStore) ListByCompany(ctx context.Context, company string) ([]*Record, error) {
	query := `
		SELECT id, kind, company, score, grade, detail, created_at
		FROM history
		WHERE company = ?
		ORDER BY created_at DESC
	`
	return s.query(ctx, query, company)
}

// Delete removes a record by ID. Deleting an unknown ID is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM history WHERE id = ?`, id); err != nil {
		return fmt.Errorf("store: delete record: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) query(ctx context.Context, query string, args ...any) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list records: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		var rec Record
		var kind, createdAt string
		if err := rows.Scan(&rec.ID, &kind, &rec.Company, &rec.Score, &rec.Grade, &rec.Detail, &createdAt); err != nil {
			return nil, fmt.Errorf("store: scan record: %w", err)
		}
		rec.Kind = ActivityKind(kind)
		if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
			rec.CreatedAt = ts
		}
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate records: %w", err)
	}
	return out, nil
}
