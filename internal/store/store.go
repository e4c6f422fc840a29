// Package store is the on-disk cache of fetched meals, keyed the same way
// the backend is queried: one user, one month.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"mealdiary/internal/api"

	_ "github.com/mattn/go-sqlite3"
)

// ErrMiss is returned when a month is not cached or has gone stale.
var ErrMiss = errors.New("store: cache miss")

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	// one connection so ":memory:" databases are shared
	db.SetMaxOpenConns(1)
	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func createTables(db *sql.DB) error {
	months := `
    CREATE TABLE IF NOT EXISTS meal_months (
        user_id    TEXT NOT NULL,
        month      TEXT NOT NULL,
        payload    BLOB NOT NULL,
        fetched_at INTEGER NOT NULL,
        PRIMARY KEY (user_id, month)
    );
    `
	uploads := `
    CREATE TABLE IF NOT EXISTS quick_adds (
        user_id     TEXT NOT NULL,
        fingerprint TEXT NOT NULL,
        sent_at     INTEGER NOT NULL,
        PRIMARY KEY (user_id, fingerprint)
    );
    `
	if _, err := db.Exec(months); err != nil {
		return fmt.Errorf("create meal_months table: %w", err)
	}
	if _, err := db.Exec(uploads); err != nil {
		return fmt.Errorf("create quick_adds table: %w", err)
	}
	return nil
}

func monthKey(t time.Time) string { return t.Format("2006-01") }

// PutMonth replaces the cached meals of the month containing at.
func (s *Store) PutMonth(ctx context.Context, userID string, at time.Time, meals []api.Meal) error {
	if meals == nil {
		meals = []api.Meal{}
	}
	payload, err := json.Marshal(meals)
	if err != nil {
		return fmt.Errorf("encode meals: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO meal_months (user_id, month, payload, fetched_at) VALUES (?, ?, ?, ?)",
		userID, monthKey(at), payload, s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("store month: %w", err)
	}
	return nil
}

// Month returns the cached meals of the month containing at. Entries older
// than maxAge are misses; maxAge <= 0 accepts any age.
func (s *Store) Month(ctx context.Context, userID string, at time.Time, maxAge time.Duration) ([]api.Meal, error) {
	var (
		payload   []byte
		fetchedAt int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT payload, fetched_at FROM meal_months WHERE user_id = ? AND month = ?",
		userID, monthKey(at)).Scan(&payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("load month: %w", err)
	}
	if maxAge > 0 && s.now().Sub(time.UnixMilli(fetchedAt)) > maxAge {
		return nil, ErrMiss
	}

	var meals []api.Meal
	if err := json.Unmarshal(payload, &meals); err != nil {
		return nil, fmt.Errorf("decode cached meals: %w", err)
	}
	return meals, nil
}

// Invalidate drops every cached month of userID.
func (s *Store) Invalidate(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM meal_months WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("invalidate %s: %w", userID, err)
	}
	return nil
}

// MarkSent records an uploaded voice note by fingerprint.
func (s *Store) MarkSent(ctx context.Context, userID, fingerprint string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO quick_adds (fingerprint, user_id, sent_at) VALUES (?, ?, ?)",
		fingerprint, userID, s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("mark sent: %w", err)
	}
	return nil
}

// Sent reports whether userID uploaded the voice note before.
func (s *Store) Sent(ctx context.Context, userID, fingerprint string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM quick_adds WHERE user_id = ? AND fingerprint = ?",
		userID, fingerprint).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("lookup fingerprint: %w", err)
	}
	return n > 0, nil
}
