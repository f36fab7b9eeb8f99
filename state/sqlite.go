package state

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/teranos/wbwatch/am"
	"github.com/teranos/wbwatch/db"
	"github.com/teranos/wbwatch/errors"
	"github.com/teranos/wbwatch/logger"
)

// SQLiteStore keeps state in the stream_state and monitor_state tables
type SQLiteStore struct {
	db     *sql.DB
	owned  bool
	logger *zap.SugaredLogger
}

// NewSQLiteStore wraps an already migrated database. Close leaves conn open.
func NewSQLiteStore(conn *sql.DB, log *zap.SugaredLogger) *SQLiteStore {
	return &SQLiteStore{
		db:     conn,
		logger: logger.OrNop(log).With(logger.FieldBackend, am.BackendSQLite),
	}
}

// OpenSQLiteStore opens and migrates the database at path
func OpenSQLiteStore(path string, log *zap.SugaredLogger) (*SQLiteStore, error) {
	conn, err := db.OpenAndMigrate(path, log)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open state database %s", path)
	}
	s := NewSQLiteStore(conn, log)
	s.owned = true
	return s, nil
}

// Backend implements Store
func (s *SQLiteStore) Backend() string { return am.BackendSQLite }

// Close implements Store
func (s *SQLiteStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

// Load implements Store
func (s *SQLiteStore) Load(ctx context.Context, stream string) (Map, error) {
	return s.query(ctx, "SELECT record_id, marker FROM stream_state WHERE stream = ?", stream)
}

// LoadMonitor implements Store
func (s *SQLiteStore) LoadMonitor(ctx context.Context) (Map, error) {
	return s.query(ctx, "SELECT key, value FROM monitor_state")
}

func (s *SQLiteStore) query(ctx context.Context, query string, args ...interface{}) (Map, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return Map{}, dbError(err, "failed to query state")
	}
	defer rows.Close()

	m := Map{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return Map{}, dbError(err, "failed to scan state row")
		}
		m[k] = v
	}
	if err := rows.Err(); err != nil {
		return Map{}, dbError(err, "failed to read state rows")
	}
	return m, nil
}

// Save implements Store. The stream's rows are replaced in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, stream string, m Map) error {
	return s.replace(ctx,
		"DELETE FROM stream_state WHERE stream = ?", []interface{}{stream},
		"INSERT INTO stream_state (stream, record_id, marker) VALUES (?, ?, ?)",
		func(id, marker string) []interface{} { return []interface{}{stream, id, marker} },
		m)
}

// SaveMonitor implements Store
func (s *SQLiteStore) SaveMonitor(ctx context.Context, m Map) error {
	return s.replace(ctx,
		"DELETE FROM monitor_state", nil,
		"INSERT INTO monitor_state (key, value) VALUES (?, ?)",
		func(k, v string) []interface{} { return []interface{}{k, v} },
		m)
}

func (s *SQLiteStore) replace(ctx context.Context, del string, delArgs []interface{}, ins string, row func(k, v string) []interface{}, m Map) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return dbError(err, "failed to begin state transaction")
	}

	if _, err := tx.ExecContext(ctx, del, delArgs...); err != nil {
		tx.Rollback()
		return dbError(err, "failed to clear state")
	}

	stmt, err := tx.PrepareContext(ctx, ins)
	if err != nil {
		tx.Rollback()
		return dbError(err, "failed to prepare state insert")
	}
	defer stmt.Close()

	for _, k := range m.IDs() {
		if _, err := stmt.ExecContext(ctx, row(k, m[k])...); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "failed to store %q", k)
		}
	}

	if err := tx.Commit(); err != nil {
		return dbError(err, "failed to commit state")
	}
	s.logger.Debugw("state saved", logger.FieldCount, len(m))
	return nil
}

// dbError wraps err, marking a closed connection with db.ErrDatabaseClosed
func dbError(err error, msg string) error {
	if db.IsDatabaseClosed(err) {
		return errors.WithSecondaryError(errors.Wrap(db.ErrDatabaseClosed, msg), err)
	}
	return errors.Wrap(err, msg)
}
