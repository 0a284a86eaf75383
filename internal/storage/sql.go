package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/hooklab/content-intelligence-service/internal/config"
)

// sqlDialect holds the statements that differ between SQL engines
type sqlDialect struct {
	schema string
	get    string
	put    string
	// text sends documents as strings, needed for JSONB columns
	text bool
}

var sqliteDialect = sqlDialect{
	schema: `CREATE TABLE IF NOT EXISTS corpus_documents (
		doc_key TEXT PRIMARY KEY,
		body BLOB NOT NULL,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	get: `SELECT body FROM corpus_documents WHERE doc_key = ?`,
	put: `INSERT INTO corpus_documents (doc_key, body, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(doc_key) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
}

var postgresDialect = sqlDialect{
	schema: `CREATE TABLE IF NOT EXISTS corpus_documents (
		doc_key TEXT PRIMARY KEY,
		body JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	get: `SELECT body FROM corpus_documents WHERE doc_key = $1`,
	put: `INSERT INTO corpus_documents (doc_key, body, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (doc_key) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`,
	text: true,
}

// sqlBlobs stores documents as rows of a single key/body table
type sqlBlobs struct {
	db      *sql.DB
	dialect sqlDialect
}

func (s sqlBlobs) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.schema); err != nil {
		return fmt.Errorf("failed to create corpus_documents table: %w", err)
	}
	return nil
}

func (s sqlBlobs) get(ctx context.Context, key string) ([]byte, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx, s.dialect.get, key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document %s: %w", key, err)
	}
	return body, nil
}

func (s sqlBlobs) put(ctx context.Context, key string, data []byte) error {
	var body any = data
	if s.dialect.text {
		body = string(data)
	}
	if _, err := s.db.ExecContext(ctx, s.dialect.put, key, body); err != nil {
		return fmt.Errorf("failed to upsert document %s: %w", key, err)
	}
	return nil
}

// SQLiteStorage implements Storage on an embedded SQLite database
type SQLiteStorage struct {
	blobDocuments
	db *sql.DB
}

// NewSQLiteStorage opens (and migrates) the SQLite database at cfg.Path.
// ":memory:" is accepted for tests.
func NewSQLiteStorage(cfg config.StorageConfig) (*SQLiteStorage, error) {
	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// a single connection keeps :memory: databases alive and serializes writers
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), timeoutOrDefault(cfg))
	defer cancel()

	blobs := sqlBlobs{db: db, dialect: sqliteDialect}
	if err := blobs.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStorage{
		blobDocuments: blobDocuments{blobs: blobs, key: cfg.Key},
		db:            db,
	}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// PostgreSQLStorage implements Storage on PostgreSQL, one JSONB row per document
type PostgreSQLStorage struct {
	blobDocuments
	db *sql.DB
}

// NewPostgreSQLStorage connects to cfg.PostgresURI
func NewPostgreSQLStorage(cfg config.StorageConfig) (*PostgreSQLStorage, error) {
	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeoutOrDefault(cfg))
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	store, err := NewPostgreSQLStorageFromDB(ctx, db, cfg.Key)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewPostgreSQLStorageFromDB wraps an open database handle and migrates it
func NewPostgreSQLStorageFromDB(ctx context.Context, db *sql.DB, key string) (*PostgreSQLStorage, error) {
	blobs := sqlBlobs{db: db, dialect: postgresDialect}
	if err := blobs.migrate(ctx); err != nil {
		return nil, err
	}
	return &PostgreSQLStorage{
		blobDocuments: blobDocuments{blobs: blobs, key: key},
		db:            db,
	}, nil
}

// Close closes the database connection
func (p *PostgreSQLStorage) Close() error {
	return p.db.Close()
}
