package blobstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/flexigantt/pkg/domain/interfaces"
	_ "modernc.org/sqlite"
)

// SQLite stores blobs in a single key-value table of a local SQLite database
type SQLite struct {
	db *sql.DB
}

var _ interfaces.BlobStore = &SQLite{}

// NewSQLite opens (and creates when missing) the database at path
func NewSQLite(ctx context.Context, path string) (*SQLite, error) {
	// modernc.org/sqlite registers itself as "sqlite"
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open sqlite database", goerr.V("path", path))
	}

	// One writer with many readers; busy_timeout avoids "database is locked" between processes.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, goerr.Wrap(err, "failed to set pragma", goerr.V("pragma", p))
		}
	}

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS blobs (
		k TEXT PRIMARY KEY,
		v BLOB NOT NULL,
		updated_at_unixms INTEGER NOT NULL
	);`); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to create blobs table")
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT v FROM blobs WHERE k = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read blob", goerr.V("key", key))
	}
	return data, nil
}

func (s *SQLite) Put(ctx context.Context, key string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO blobs(k, v, updated_at_unixms) VALUES(?, ?, strftime('%s','now') * 1000)`,
		key, data)
	if err != nil {
		return goerr.Wrap(err, "failed to write blob", goerr.V("key", key))
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
