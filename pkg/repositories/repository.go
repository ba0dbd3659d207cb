package repositories

import (
	"context"
	"embed"

	"github.com/cbodonnell/slide/pkg/messages"
	"github.com/cbodonnell/slide/pkg/repositories/models"
)

//go:embed migrations
var migrations embed.FS

type Repository interface {
	Close(ctx context.Context) error
	// CreateRun stores a new, unfinished run.
	CreateRun(ctx context.Context, run *models.Run) error
	// FinishRun marks a run as finished after frames ticks.
	FinishRun(ctx context.Context, runID string, frames uint64) error
	GetRun(ctx context.Context, runID string) (*models.Run, error)
	// ListRuns returns every run, newest first.
	ListRuns(ctx context.Context) ([]*models.Run, error)
	// SaveCheckpoint replaces the checkpoint of a run.
	SaveCheckpoint(ctx context.Context, runID string, snapshot *messages.Snapshot) error
	LoadCheckpoint(ctx context.Context, runID string) (*messages.Snapshot, error)
}
