package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Atul17-std/pokemon-tracker/internal/progress"
	"github.com/Atul17-std/pokemon-tracker/internal/snapshot"
)

const dbTimeout = 5 * time.Second

// PostgresStore is a PostgreSQL-backed RecordStore implementation. Records
// live as jsonb documents in student_records.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed record store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Load(ctx context.Context, profileID string) (*progress.StudentRecord, bool, error) {
	profileID, err := checkProfileID(profileID)
	if err != nil {
		return nil, false, err
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var doc []byte
	err = s.pool.QueryRow(ctx,
		`SELECT document FROM student_records WHERE profile_id = $1`,
		profileID,
	).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load record: %w", err)
	}

	r, err := snapshot.Decode(doc)
	if err != nil {
		return nil, false, err
	}
	return r, true, nil
}

func (s *PostgresStore) Save(ctx context.Context, profileID string, r *progress.StudentRecord) error {
	profileID, err := checkProfileID(profileID)
	if err != nil {
		return err
	}
	data, err := snapshot.Encode(r)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err = s.pool.Exec(ctx,
		`INSERT INTO student_records (profile_id, document, updated_at)
		 VALUES ($1, $2::jsonb, now())
		 ON CONFLICT (profile_id)
		 DO UPDATE SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at`,
		profileID,
		string(data),
	)
	if err != nil {
		return fmt.Errorf("save record: %w", err)
	}
	return nil
}

// Quarantine moves the stored document to profileID+InvalidSuffix in one
// transaction.
func (s *PostgresStore) Quarantine(ctx context.Context, profileID string) error {
	profileID, err := checkProfileID(profileID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO student_records (profile_id, document, updated_at)
			 SELECT $1, document, updated_at FROM student_records WHERE profile_id = $2
			 ON CONFLICT (profile_id)
			 DO UPDATE SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at`,
			profileID+InvalidSuffix,
			profileID,
		); err != nil {
			return fmt.Errorf("copy invalid record: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM student_records WHERE profile_id = $1`, profileID); err != nil {
			return fmt.Errorf("remove invalid record: %w", err)
		}
		return nil
	})
}
