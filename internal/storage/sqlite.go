//go:build sqlite

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/ruphel/neat-python/internal/model"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func newSQLiteStore(path string) (Store, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	return NewSQLiteStore(path), nil
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveAllocatorState(ctx context.Context, state model.AllocatorState) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeAllocatorState(state)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO allocators (scope, schema_version, codec_version, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(scope) DO UPDATE SET
			schema_version = excluded.schema_version,
			codec_version = excluded.codec_version,
			payload = excluded.payload
	`, state.Scope, state.SchemaVersion, state.CodecVersion, payload)
	return err
}

func (s *SQLiteStore) GetAllocatorState(ctx context.Context, scope string) (model.AllocatorState, bool, error) {
	payload, ok, err := s.getPayload(ctx, `SELECT payload FROM allocators WHERE scope = ?`, scope)
	if err != nil || !ok {
		return model.AllocatorState{}, false, err
	}
	state, err := DecodeAllocatorState(payload)
	if err != nil {
		return model.AllocatorState{}, false, fmt.Errorf("decode allocator %s: %w", scope, err)
	}
	return state, true, nil
}

func (s *SQLiteStore) SavePolicy(ctx context.Context, policy model.PolicyRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodePolicy(policy)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO policies (scope, schema_version, codec_version, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(scope) DO UPDATE SET
			schema_version = excluded.schema_version,
			codec_version = excluded.codec_version,
			payload = excluded.payload
	`, policy.Scope, policy.SchemaVersion, policy.CodecVersion, payload)
	return err
}

func (s *SQLiteStore) GetPolicy(ctx context.Context, scope string) (model.PolicyRecord, bool, error) {
	payload, ok, err := s.getPayload(ctx, `SELECT payload FROM policies WHERE scope = ?`, scope)
	if err != nil || !ok {
		return model.PolicyRecord{}, false, err
	}
	policy, err := DecodePolicy(payload)
	if err != nil {
		return model.PolicyRecord{}, false, fmt.Errorf("decode policy %s: %w", scope, err)
	}
	return policy, true, nil
}

func (s *SQLiteStore) SaveSweepTrace(ctx context.Context, trace model.SweepTrace) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeSweepTrace(trace)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO sweep_traces (run_id, schema_version, codec_version, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			schema_version = excluded.schema_version,
			codec_version = excluded.codec_version,
			payload = excluded.payload
	`, trace.RunID, trace.SchemaVersion, trace.CodecVersion, payload)
	return err
}

func (s *SQLiteStore) GetSweepTrace(ctx context.Context, runID string) (model.SweepTrace, bool, error) {
	payload, ok, err := s.getPayload(ctx, `SELECT payload FROM sweep_traces WHERE run_id = ?`, runID)
	if err != nil || !ok {
		return model.SweepTrace{}, false, err
	}
	trace, err := DecodeSweepTrace(payload)
	if err != nil {
		return model.SweepTrace{}, false, fmt.Errorf("decode sweep trace %s: %w", runID, err)
	}
	return trace, true, nil
}

func (s *SQLiteStore) ListSweepTraces(ctx context.Context, limit int) ([]model.SweepTrace, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := db.QueryContext(ctx, `SELECT run_id, payload FROM sweep_traces ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.SweepTrace
	for rows.Next() {
		var (
			runID   string
			payload []byte
		)
		if err := rows.Scan(&runID, &payload); err != nil {
			return nil, err
		}
		trace, err := DecodeSweepTrace(payload)
		if err != nil {
			return nil, fmt.Errorf("decode sweep trace %s: %w", runID, err)
		}
		out = append(out, trace)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getPayload(ctx context.Context, query, key string) ([]byte, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, query, key).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return payload, true, nil
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errNotInitialized
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS allocators (
			scope TEXT PRIMARY KEY,
			schema_version INTEGER NOT NULL,
			codec_version INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS policies (
			scope TEXT PRIMARY KEY,
			schema_version INTEGER NOT NULL,
			codec_version INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS sweep_traces (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL UNIQUE,
			schema_version INTEGER NOT NULL,
			codec_version INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
	`)
	return err
}
