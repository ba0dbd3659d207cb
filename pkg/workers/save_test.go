package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cbodonnell/slide/pkg/messages"
	"github.com/cbodonnell/slide/pkg/repositories/models"
	"github.com/cbodonnell/slide/pkg/state"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Close(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockRepository) CreateRun(ctx context.Context, run *models.Run) error {
	return m.Called(ctx, run).Error(0)
}

func (m *mockRepository) FinishRun(ctx context.Context, runID string, frames uint64) error {
	return m.Called(ctx, runID, frames).Error(0)
}

func (m *mockRepository) GetRun(ctx context.Context, runID string) (*models.Run, error) {
	args := m.Called(ctx, runID)
	run, _ := args.Get(0).(*models.Run)
	return run, args.Error(1)
}

func (m *mockRepository) ListRuns(ctx context.Context) ([]*models.Run, error) {
	args := m.Called(ctx)
	runs, _ := args.Get(0).([]*models.Run)
	return runs, args.Error(1)
}

func (m *mockRepository) SaveCheckpoint(ctx context.Context, runID string, snapshot *messages.Snapshot) error {
	return m.Called(ctx, runID, snapshot).Error(0)
}

func (m *mockRepository) LoadCheckpoint(ctx context.Context, runID string) (*messages.Snapshot, error) {
	args := m.Called(ctx, runID)
	snapshot, _ := args.Get(0).(*messages.Snapshot)
	return snapshot, args.Error(1)
}

func frame(n uint64) interface{} {
	return mock.MatchedBy(func(s *messages.Snapshot) bool { return s.Frame == n })
}

func TestSaveCheckpointWorker_SavesOnStop(t *testing.T) {
	stateManager := state.NewInMemoryStateManager()
	require.NoError(t, stateManager.Set(context.Background(), &messages.Snapshot{Frame: 42}))

	repo := &mockRepository{}
	repo.On("SaveCheckpoint", mock.Anything, "run-1", frame(42)).Return(nil).Once()

	worker := NewSaveCheckpointWorker(NewSaveCheckpointWorkerOptions{
		Repository:   repo,
		RunID:        "run-1",
		StateManager: stateManager,
		Interval:     time.Hour,
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	worker.Start(ctx)

	<-worker.Done()
	repo.AssertExpectations(t)
}

func TestSaveCheckpointWorker_SkipsUnchangedFrames(t *testing.T) {
	stateManager := state.NewInMemoryStateManager()
	require.NoError(t, stateManager.Set(context.Background(), &messages.Snapshot{Frame: 7}))

	repo := &mockRepository{}
	repo.On("SaveCheckpoint", mock.Anything, "run-2", frame(7)).Return(nil).Once()

	worker := NewSaveCheckpointWorker(NewSaveCheckpointWorkerOptions{
		Repository:   repo,
		RunID:        "run-2",
		StateManager: stateManager,
	})
	ctx := context.Background()
	worker.save(ctx)
	worker.save(ctx)

	repo.AssertExpectations(t)
	repo.AssertNumberOfCalls(t, "SaveCheckpoint", 1)
}

func TestSaveCheckpointWorker_RetriesAfterError(t *testing.T) {
	stateManager := state.NewInMemoryStateManager()
	require.NoError(t, stateManager.Set(context.Background(), &messages.Snapshot{Frame: 3}))

	repo := &mockRepository{}
	repo.On("SaveCheckpoint", mock.Anything, "run-3", frame(3)).Return(errors.New("database is locked")).Once()
	repo.On("SaveCheckpoint", mock.Anything, "run-3", frame(3)).Return(nil).Once()

	worker := NewSaveCheckpointWorker(NewSaveCheckpointWorkerOptions{
		Repository:   repo,
		RunID:        "run-3",
		StateManager: stateManager,
	})
	ctx := context.Background()
	worker.save(ctx)
	worker.save(ctx)
	worker.save(ctx)

	repo.AssertExpectations(t)
	repo.AssertNumberOfCalls(t, "SaveCheckpoint", 2)
}
