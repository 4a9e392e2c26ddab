package settingsstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// PostgresStore persists settings documents in a single table, using
// prepared statements the way src/mapping/metadata_resolver_postgres.go
// prepares its metadata queries up front rather than per call.
type PostgresStore struct {
	db        *sql.DB
	timeout   time.Duration
	upsert    *sql.Stmt
	selectOne *sql.Stmt
}

// NewPostgresStore prepares its statements against a table with columns
// (key TEXT PRIMARY KEY, data BYTEA, updated_at TIMESTAMPTZ).
func NewPostgresStore(db *sql.DB, timeout time.Duration) (*PostgresStore, error) {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	upsert, err := db.Prepare(`
		INSERT INTO feature_engine_settings (key, data, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
	`)
	if err != nil {
		return nil, fmt.Errorf("settingsstore: prepare upsert: %w", err)
	}
	selectOne, err := db.Prepare(`SELECT data FROM feature_engine_settings WHERE key = $1`)
	if err != nil {
		return nil, fmt.Errorf("settingsstore: prepare select: %w", err)
	}
	return &PostgresStore{db: db, timeout: timeout, upsert: upsert, selectOne: selectOne}, nil
}

func (s *PostgresStore) Save(ctx context.Context, key string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if _, err := s.upsert.ExecContext(ctx, key, data); err != nil {
		return fmt.Errorf("settingsstore: postgres save %q: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	var data []byte
	err := s.selectOne.QueryRowContext(ctx, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("settingsstore: postgres load %q: %w", key, err)
	}
	return data, true, nil
}
