package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/loresmith/pdfstore/pkg/pdfstore"
)

// Store is a PostgreSQL implementation of the pdfstore.RecordStore
// interface. TTL is emulated with an expires_at column: reads filter
// expired rows and a write over an expired key replaces it.
//
// Create the table with:
//
//	CREATE TABLE records (
//	    key        TEXT PRIMARY KEY,
//	    value      BYTEA NOT NULL,
//	    expires_at TIMESTAMPTZ
//	);
type Store struct {
	db DBTX
}

// DBTX is an interface that allows us to use either a connection pool or a
// transaction
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// New creates a new PostgreSQL record store
func New(db DBTX) *Store {
	return &Store{db: db}
}

// NewWithPool creates a new PostgreSQL record store from a connection pool
func NewWithPool(pool *pgxpool.Pool) *Store {
	return &Store{db: pool}
}

// Connect opens a connection pool for the given URL and returns a store
// over it.
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return NewWithPool(pool), nil
}

// Get returns the value for a key, treating expired rows as absent.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	query := `
		SELECT value FROM records
		WHERE key = $1 AND (expires_at IS NULL OR expires_at > now())`

	var value []byte
	err := s.db.QueryRow(ctx, query, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, pdfstore.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record %s: %w", key, err)
	}

	return value, nil
}

// Put upserts a value. A non-positive ttl stores the row without expiry.
func (s *Store) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt *time.Time
	if ttl > 0 {
		t := time.Now().UTC().Add(ttl)
		expiresAt = &t
	}

	query := `
		INSERT INTO records (key, value, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = $2, expires_at = $3`

	if _, err := s.db.Exec(ctx, query, key, value, expiresAt); err != nil {
		return fmt.Errorf("failed to put record %s: %w", key, err)
	}

	return nil
}

// Delete removes a key. Missing keys are ignored.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM records WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete record %s: %w", key, err)
	}
	return nil
}

// List returns all live keys beginning with prefix, sorted.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	query := `
		SELECT key FROM records
		WHERE key LIKE $1 AND (expires_at IS NULL OR expires_at > now())
		ORDER BY key`

	rows, err := s.db.Query(ctx, query, escapeLike(prefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan record key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	return keys, nil
}

// Sweep deletes expired rows. Expiry is otherwise applied lazily on read;
// callers may run this periodically to reclaim space.
func (s *Store) Sweep(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM records WHERE expires_at IS NOT NULL AND expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep expired records: %w", err)
	}
	return tag.RowsAffected(), nil
}

func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
