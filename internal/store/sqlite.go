package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/me/sourcewatch/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and returns
// a Store. Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "store"),
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

// --- host.Settings ---
// Settings reads sit on the engine's tick/config path where the host API is
// (value, ok); storage errors are logged and reported as "unset".

func (s *SQLiteStore) GetInt(key string) (int64, bool) {
	raw, ok := s.getValue(key)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.logger.Warn("malformed int setting", "key", key, "value", raw)
		return 0, false
	}
	return v, true
}

func (s *SQLiteStore) GetBool(key string) (bool, bool) {
	raw, ok := s.getValue(key)
	if !ok {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		s.logger.Warn("malformed bool setting", "key", key, "value", raw)
		return false, false
	}
	return v, true
}

func (s *SQLiteStore) SetInt(key string, v int64) error {
	return s.setValue(key, strconv.FormatInt(v, 10))
}

func (s *SQLiteStore) SetBool(key string, v bool) error {
	return s.setValue(key, strconv.FormatBool(v))
}

func (s *SQLiteStore) getValue(key string) (string, bool) {
	s.logger.Debug("sql", "op", "select", "table", "settings", "key", key)
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false
	}
	if err != nil {
		s.logger.Error("read setting", "key", key, "error", err)
		return "", false
	}
	return value, true
}

func (s *SQLiteStore) setValue(key, value string) error {
	s.logger.Debug("sql", "op", "upsert", "table", "settings", "key", key)
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// --- attempt history ---

func (s *SQLiteStore) RecordAttempt(ctx context.Context, rec model.AttemptRecord) error {
	s.logger.Debug("sql", "op", "insert", "table", "attempts", "id", rec.ID)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attempts (id, resource_name, type_id, control, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.ResourceName, rec.TypeID, rec.Control,
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListAttempts(ctx context.Context, opts model.ListOptions) ([]model.AttemptRecord, int, error) {
	opts.Clamp()
	s.logger.Debug("sql", "op", "select", "table", "attempts", "limit", opts.Limit, "offset", opts.Offset)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM attempts`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count attempts: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, resource_name, type_id, control, created_at
		 FROM attempts ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var out []model.AttemptRecord
	for rows.Next() {
		var rec model.AttemptRecord
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.ResourceName, &rec.TypeID, &rec.Control, &createdAt); err != nil {
			return nil, 0, fmt.Errorf("scan attempt: %w", err)
		}
		rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, 0, fmt.Errorf("parse attempt timestamp: %w", err)
		}
		out = append(out, rec)
	}
	return out, total, rows.Err()
}

func (s *SQLiteStore) AttemptStats(ctx context.Context) (model.AttemptStats, error) {
	s.logger.Debug("sql", "op", "select", "table", "attempts", "agg", "by_control")
	rows, err := s.db.QueryContext(ctx,
		`SELECT control, COUNT(*) FROM attempts GROUP BY control`)
	if err != nil {
		return model.AttemptStats{}, fmt.Errorf("attempt stats: %w", err)
	}
	defer rows.Close()

	stats := model.AttemptStats{ByControl: make(map[string]int)}
	for rows.Next() {
		var control string
		var count int
		if err := rows.Scan(&control, &count); err != nil {
			return model.AttemptStats{}, fmt.Errorf("scan attempt stats: %w", err)
		}
		stats.ByControl[control] = count
		stats.Total += count
	}
	return stats, rows.Err()
}
