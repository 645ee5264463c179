package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const (
	selectState = `SELECT version, payload FROM app_state WHERE namespace = ?`
	upsertState = `INSERT INTO app_state (namespace, version, payload, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(namespace) DO UPDATE SET
    version = excluded.version,
    payload = excluded.payload,
    updated_at = excluded.updated_at`
)

// SQLiteStore keeps the state document in the app_state table.
type SQLiteStore struct {
	db        *sql.DB
	namespace string
	nowFn     func() time.Time
}

var _ StateStore = (*SQLiteStore)(nil)

func NewSQLiteStore(dbPath, namespace string) (*SQLiteStore, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db, namespace: namespace, nowFn: time.Now}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) (Snapshot, error) {
	var (
		version int
		payload string
	)
	err := s.db.QueryRowContext(ctx, selectState, s.namespace).Scan(&version, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNoSnapshot
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("load state %s: %w", s.namespace, err)
	}
	return Decode([]byte(payload))
}

func (s *SQLiteStore) Save(ctx context.Context, snap Snapshot) error {
	payload, err := Encode(snap)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, upsertState,
		s.namespace, SnapshotVersion, string(payload), s.nowFn().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save state %s: %w", s.namespace, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
