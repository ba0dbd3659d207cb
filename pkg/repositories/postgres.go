package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cbodonnell/slide/pkg/log"
	"github.com/cbodonnell/slide/pkg/messages"
	"github.com/cbodonnell/slide/pkg/repositories/models"
	"github.com/jackc/pgx/v5"
)

type PostgresRepository struct {
	conn *pgx.Conn
}

var _ Repository = &PostgresRepository{}

// NewPostgresRepository connects to the database and applies the migrations.
// The caller is responsible for calling Close() on the repository.
func NewPostgresRepository(ctx context.Context, connStr string) (*PostgresRepository, error) {
	conn, err := connectDb(ctx, connStr)
	if err != nil {
		return nil, err
	}

	scripts, err := readMigrations("postgres")
	if err != nil {
		conn.Close(ctx)
		return nil, err
	}
	for i, migration := range scripts {
		if _, err := conn.Exec(ctx, migration); err != nil {
			conn.Close(ctx)
			return nil, fmt.Errorf("failed to execute migration %d: %v", i+1, err)
		}
	}

	return &PostgresRepository{
		conn: conn,
	}, nil
}

func connectDb(ctx context.Context, connStr string) (*pgx.Conn, error) {
	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %v", err)
	}

	var username string
	var database string
	err = conn.QueryRow(ctx, "SELECT current_user, current_database()").Scan(&username, &database)
	if err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("unable to query database: %v", err)
	}

	log.Info("Connected to %s as %s", database, username)

	return conn, nil
}

func (r *PostgresRepository) Close(ctx context.Context) error {
	return r.conn.Close(ctx)
}

func (r *PostgresRepository) CreateRun(ctx context.Context, run *models.Run) error {
	q := `
	INSERT INTO runs (run_id, scene, frames, finished, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err := r.conn.Exec(ctx, q, run.ID, run.Scene, int64(run.Frames), run.Finished, run.CreatedAt.UnixMilli(), run.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to insert run: %v", err)
	}

	return nil
}

func (r *PostgresRepository) FinishRun(ctx context.Context, runID string, frames uint64) error {
	q := `
	UPDATE runs SET frames = $1, finished = TRUE, updated_at = $2 WHERE run_id = $3;
	`
	tag, err := r.conn.Exec(ctx, q, int64(frames), time.Now().UnixMilli(), runID)
	if err != nil {
		return fmt.Errorf("failed to update run: %v", err)
	}
	if tag.RowsAffected() == 0 {
		return &ErrNotFound{}
	}

	return nil
}

func (r *PostgresRepository) GetRun(ctx context.Context, runID string) (*models.Run, error) {
	q := `
	SELECT run_id::text, scene, frames, finished, created_at, updated_at FROM runs WHERE run_id = $1;
	`
	run, err := scanPostgresRun(r.conn.QueryRow(ctx, q, runID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan run: %v", err)
	}

	return run, nil
}

func (r *PostgresRepository) ListRuns(ctx context.Context) ([]*models.Run, error) {
	q := `
	SELECT run_id::text, scene, frames, finished, created_at, updated_at FROM runs ORDER BY created_at DESC, run_id;
	`
	rows, err := r.conn.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %v", err)
	}
	defer rows.Close()

	runs := make([]*models.Run, 0)
	for rows.Next() {
		run, err := scanPostgresRun(rows)
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

func scanPostgresRun(row pgx.Row) (*models.Run, error) {
	run := &models.Run{}
	var frames, createdAt, updatedAt int64
	if err := row.Scan(&run.ID, &run.Scene, &frames, &run.Finished, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	run.Frames = uint64(frames)
	run.CreatedAt = time.UnixMilli(createdAt).UTC()
	run.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return run, nil
}

func (r *PostgresRepository) SaveCheckpoint(ctx context.Context, runID string, snapshot *messages.Snapshot) error {
	b, err := messages.SerializeSnapshot(snapshot)
	if err != nil {
		return fmt.Errorf("failed to serialize snapshot: %v", err)
	}

	q := `
	INSERT INTO checkpoints (run_id, frame, snapshot, created_at) VALUES ($1, $2, $3, $4)
	ON CONFLICT (run_id) DO UPDATE SET frame = $2, snapshot = $3, created_at = $4;
	`
	if _, err := r.conn.Exec(ctx, q, runID, int64(snapshot.Frame), b, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to insert checkpoint: %v", err)
	}

	return nil
}

func (r *PostgresRepository) LoadCheckpoint(ctx context.Context, runID string) (*messages.Snapshot, error) {
	q := `
	SELECT snapshot FROM checkpoints WHERE run_id = $1;
	`
	var b []byte
	if err := r.conn.QueryRow(ctx, q, runID).Scan(&b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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
