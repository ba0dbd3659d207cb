package workers

import (
	"context"
	"time"

	"github.com/cbodonnell/slide/pkg/log"
	"github.com/cbodonnell/slide/pkg/repositories"
	"github.com/cbodonnell/slide/pkg/state"
)

// finalSaveTimeout bounds the checkpoint written after the worker is stopped.
const finalSaveTimeout = 5 * time.Second

type SaveCheckpointWorker struct {
	repository   repositories.Repository
	runID        string
	stateManager state.StateManager
	interval     time.Duration
	lastFrame    uint64
	saved        bool
	done         chan struct{}
}

type NewSaveCheckpointWorkerOptions struct {
	Repository   repositories.Repository
	RunID        string
	StateManager state.StateManager
	Interval     time.Duration
}

// NewSaveCheckpointWorker creates a new SaveCheckpointWorker.
// The worker periodically saves the latest snapshot of a run to the
// repository, and once more when it is stopped.
func NewSaveCheckpointWorker(opts NewSaveCheckpointWorkerOptions) *SaveCheckpointWorker {
	interval := opts.Interval
	if interval <= 0 {
		interval = time.Second
	}
	return &SaveCheckpointWorker{
		repository:   opts.Repository,
		runID:        opts.RunID,
		stateManager: opts.StateManager,
		interval:     interval,
		done:         make(chan struct{}),
	}
}

func (w *SaveCheckpointWorker) Start(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			saveCtx, cancel := context.WithTimeout(context.Background(), finalSaveTimeout)
			w.save(saveCtx)
			cancel()
			return
		case <-ticker.C:
			w.save(ctx)
		}
	}
}

// Done is closed once Start has returned.
func (w *SaveCheckpointWorker) Done() <-chan struct{} {
	return w.done
}

// save writes the latest snapshot unless it has already been saved.
func (w *SaveCheckpointWorker) save(ctx context.Context) {
	snapshot, err := w.stateManager.Get(ctx)
	if err != nil {
		log.Error("Failed to get latest snapshot: %v", err)
		return
	}
	if w.saved && snapshot.Frame == w.lastFrame {
		return
	}
	if err := w.repository.SaveCheckpoint(ctx, w.runID, snapshot); err != nil {
		log.Error("Failed to save checkpoint for run %s: %v", w.runID, err)
		return
	}
	w.saved, w.lastFrame = true, snapshot.Frame
	log.Debug("Saved checkpoint of run %s at frame %d", w.runID, snapshot.Frame)
}
