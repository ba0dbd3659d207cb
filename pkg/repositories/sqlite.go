package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cbodonnell/slide/pkg/messages"
	"github.com/cbodonnell/slide/pkg/repositories/models"
	_ "github.com/mattn/go-sqlite3"
)

type SQLiteRepository struct {
	db *sql.DB
}

var _ Repository = &SQLiteRepository{}

// NewSQLiteRepository opens the database at path and applies the migrations.
// The caller is responsible for calling Close() on the repository.
func NewSQLiteRepository(ctx context.Context, path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}
	// a single connection keeps in memory databases alive between queries
	db.SetMaxOpenConns(1)

	scripts, err := readMigrations("sqlite")
	if err != nil {
		db.Close()
		return nil, err
	}
	for i, migration := range scripts {
		if _, err := db.ExecContext(ctx, migration); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute migration %d: %v", i+1, err)
		}
	}

	return &SQLiteRepository{
		db: db,
	}, nil
}

func (r *SQLiteRepository) Close(ctx context.Context) error {
	return r.db.Close()
}

func (r *SQLiteRepository) CreateRun(ctx context.Context, run *models.Run) error {
	q := `
	INSERT INTO runs (run_id, scene, frames, finished, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?);
	`
	_, err := r.db.ExecContext(ctx, q, run.ID, run.Scene, run.Frames, run.Finished, run.CreatedAt.UnixMilli(), run.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to insert run: %v", err)
	}

	return nil
}

func (r *SQLiteRepository) FinishRun(ctx context.Context, runID string, frames uint64) error {
	q := `
	UPDATE runs SET frames = ?, finished = 1, updated_at = ? WHERE run_id = ?;
	`
	result, err := r.db.ExecContext(ctx, q, frames, time.Now().UnixMilli(), runID)
	if err != nil {
		return fmt.Errorf("failed to update run: %v", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v", err)
	}
	if n == 0 {
		return &ErrNotFound{}
	}

	return nil
}

func (r *SQLiteRepository) GetRun(ctx context.Context, runID string) (*models.Run, error) {
	q := `
	SELECT run_id, scene, frames, finished, created_at, updated_at FROM runs WHERE run_id = ?;
	`
	run, err := scanRun(r.db.QueryRowContext(ctx, q, runID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan run: %v", err)
	}

	return run, nil
}

func (r *SQLiteRepository) ListRuns(ctx context.Context) ([]*models.Run, error) {
	q := `
	SELECT run_id, scene, frames, finished, created_at, updated_at FROM runs ORDER BY created_at DESC, run_id;
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %v", err)
	}
	defer rows.Close()

	runs := make([]*models.Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %v", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %v", err)
	}

	return runs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*models.Run, error) {
	run := &models.Run{}
	var createdAt, updatedAt int64
	if err := row.Scan(&run.ID, &run.Scene, &run.Frames, &run.Finished, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	run.CreatedAt = time.UnixMilli(createdAt).UTC()
	run.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return run, nil
}

func (r *SQLiteRepository) SaveCheckpoint(ctx context.Context, runID string, snapshot *messages.Snapshot) error {
	b, err := messages.SerializeSnapshot(snapshot)
	if err != nil {
		return fmt.Errorf("failed to serialize snapshot: %v", err)
	}

	q := `
	INSERT OR REPLACE INTO checkpoints (run_id, frame, snapshot, created_at)
	VALUES (?, ?, ?, ?);
	`
	if _, err := r.db.ExecContext(ctx, q, runID, snapshot.Frame, b, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to insert checkpoint: %v", err)
	}

	return nil
}

func (r *SQLiteRepository) LoadCheckpoint(ctx context.Context, runID string) (*messages.Snapshot, error) {
	q := `
	SELECT snapshot FROM checkpoints WHERE run_id = ?;
	`
	var b []byte
	if err := r.db.QueryRowContext(ctx, q, runID).Scan(&b); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan checkpoint: %v", err)
	}

	snapshot, err := messages.DeserializeSnapshot(b)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize checkpoint: %v", err)
	}

	return snapshot, nil
}
