package tracker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Atul17-std/pokemon-tracker/internal/progress"
	"github.com/Atul17-std/pokemon-tracker/internal/snapshot"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS student_records (
	profile_id TEXT PRIMARY KEY,
	document   TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLiteStore keeps records in a local SQLite file.
type SQLiteStore struct {
	sqlDB *sql.DB
}

// OpenSQLiteStore opens the database at path, creating the table if needed.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if _, err := sqlDB.Exec(sqliteSchema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{sqlDB: sqlDB}, nil
}

// Close releases the underlying SQLite connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// HealthCheck verifies the database file is reachable.
func (s *SQLiteStore) HealthCheck(ctx context.Context) error {
	return s.sqlDB.PingContext(ctx)
}

func (s *SQLiteStore) Load(ctx context.Context, profileID string) (*progress.StudentRecord, bool, error) {
	profileID, err := checkProfileID(profileID)
	if err != nil {
		return nil, false, err
	}

	var doc string
	err = s.sqlDB.QueryRowContext(ctx,
		`SELECT document FROM student_records WHERE profile_id = ?`,
		profileID,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load record: %w", err)
	}

	r, err := snapshot.Decode([]byte(doc))
	if err != nil {
		return nil, false, err
	}
	return r, true, nil
}

func (s *SQLiteStore) Save(ctx context.Context, profileID string, r *progress.StudentRecord) error {
	profileID, err := checkProfileID(profileID)
	if err != nil {
		return err
	}
	data, err := snapshot.Encode(r)
	if err != nil {
		return err
	}

	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO student_records (profile_id, document, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(profile_id) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at`,
		profileID,
		string(data),
		time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save record: %w", err)
	}
	return nil
}

// Quarantine moves the stored document to profileID+InvalidSuffix, replacing
// any document set aside earlier.
func (s *SQLiteStore) Quarantine(ctx context.Context, profileID string) error {
	profileID, err := checkProfileID(profileID)
	if err != nil {
		return err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin quarantine: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO student_records (profile_id, document, updated_at)
		 SELECT ?, document, updated_at FROM student_records WHERE profile_id = ?
		 ON CONFLICT(profile_id) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at`,
		profileID+InvalidSuffix,
		profileID,
	); err != nil {
		return fmt.Errorf("copy invalid record: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM student_records WHERE profile_id = ?`, profileID); err != nil {
		return fmt.Errorf("remove invalid record: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit quarantine: %w", err)
	}
	return nil
}
