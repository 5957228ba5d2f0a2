package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"noor-service/internal/adapters/repositories"
	"noor-service/internal/platform/obs"
)

// SQLStore keeps key-value pairs in the kv_store table.
type SQLStore struct {
	DB      *sql.DB
	Dialect repositories.Dialect
}

func NewSqliteStore(db *sql.DB) *SQLStore {
	return &SQLStore{DB: db, Dialect: repositories.SQLite}
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{DB: db, Dialect: repositories.Postgres}
}

// bind rewrites ? placeholders to $n for Postgres.
func (s *SQLStore) bind(q string) string {
	if s.Dialect != repositories.Postgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) Get(ctx context.Context, key string) (_ string, _ bool, err error) {
	defer obs.Time(ctx, "kv.sql.Get")(&err)

	if s.DB == nil {
		return "", false, errors.New("kv store: db is nil")
	}

	var value string
	err = s.DB.QueryRowContext(ctx, s.bind(`SELECT value FROM kv_store WHERE key = ?;`), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kv get key=%q: %w", key, err)
	}

	return value, true, nil
}

func (s *SQLStore) Set(ctx context.Context, key, value string) (err error) {
	defer obs.Time(ctx, "kv.sql.Set")(&err)

	if s.DB == nil {
		return errors.New("kv store: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("kv set: key must be non-empty")
	}

	q := s.bind(`
	INSERT INTO kv_store (key, value)
	VALUES (?, ?)
	ON CONFLICT (key) DO UPDATE
	SET value = excluded.value;
	`)
	if _, err := s.DB.ExecContext(ctx, q, key, value); err != nil {
		return fmt.Errorf("kv set key=%q: %w", key, err)
	}

	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) (err error) {
	defer obs.Time(ctx, "kv.sql.Delete")(&err)

	if s.DB == nil {
		return errors.New("kv store: db is nil")
	}

	if _, err := s.DB.ExecContext(ctx, s.bind(`DELETE FROM kv_store WHERE key = ?;`), key); err != nil {
		return fmt.Errorf("kv delete key=%q: %w", key, err)
	}

	return nil
}
