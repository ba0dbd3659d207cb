package workers

import (
	"context"
	"errors"
	"time"

	"github.com/cbodonnell/slide/pkg/log"
	"github.com/cbodonnell/slide/pkg/messages"
	"github.com/cbodonnell/slide/pkg/state"
)

// SnapshotWriter is satisfied by replay.Writer.
type SnapshotWriter interface {
	WriteSnapshot(snapshot *messages.Snapshot) error
	Flush() error
}

// Publisher is satisfied by Broadcaster.
type Publisher interface {
	Publish(snapshot *messages.Snapshot)
}

type RecordWorker struct {
	writer       SnapshotWriter
	snapshotChan <-chan *messages.Snapshot
	stateManager state.StateManager
	publisher    Publisher
	interval     time.Duration
	done         chan struct{}
}

type NewRecordWorkerOptions struct {
	// Writer is optional; without one snapshots only update the state manager.
	Writer       SnapshotWriter
	SnapshotChan <-chan *messages.Snapshot
	// StateManager is optional and receives every snapshot.
	StateManager state.StateManager
	// Publisher is optional and is handed every snapshot after it is stored.
	Publisher Publisher
	// Interval is how often buffered frames are flushed.
	Interval time.Duration
}

// NewRecordWorker creates a new RecordWorker.
// The worker consumes the snapshots produced by the game loop, appends them
// to the recording and periodically flushes it.
func NewRecordWorker(opts NewRecordWorkerOptions) *RecordWorker {
	interval := opts.Interval
	if interval <= 0 {
		interval = time.Second
	}
	return &RecordWorker{
		writer:       opts.Writer,
		snapshotChan: opts.SnapshotChan,
		stateManager: opts.StateManager,
		publisher:    opts.Publisher,
		interval:     interval,
		done:         make(chan struct{}),
	}
}

// Start runs until ctx is cancelled or the snapshot channel is closed. Any
// snapshots still buffered in the channel are written before it returns.
func (w *RecordWorker) Start(ctx context.Context) {
	defer close(w.done)
	defer w.flush()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.drain(ctx)
			return
		case snapshot, ok := <-w.snapshotChan:
			if !ok {
				return
			}
			w.record(ctx, snapshot)
		case <-ticker.C:
			w.flush()
		}
	}
}

// Done is closed once Start has returned.
func (w *RecordWorker) Done() <-chan struct{} {
	return w.done
}

func (w *RecordWorker) drain(ctx context.Context) {
	for {
		select {
		case snapshot, ok := <-w.snapshotChan:
			if !ok {
				return
			}
			w.record(ctx, snapshot)
		default:
			return
		}
	}
}

func (w *RecordWorker) record(ctx context.Context, snapshot *messages.Snapshot) {
	if w.stateManager != nil {
		if err := w.stateManager.Set(ctx, snapshot); err != nil {
			log.Error("Failed to set latest snapshot: %v", err)
		}
	}
	if w.publisher != nil {
		w.publisher.Publish(snapshot)
	}
	if w.writer == nil {
		return
	}
	if err := w.writer.WriteSnapshot(snapshot); err != nil {
		log.Error("Failed to record snapshot for frame %d: %v", snapshot.Frame, err)
	}
}

func (w *RecordWorker) flush() {
	if w.writer == nil {
		return
	}
	if err := w.writer.Flush(); err != nil {
		log.Error("Failed to flush recording: %v", err)
	}
}

type multiSnapshotWriter []SnapshotWriter

// MultiSnapshotWriter writes every snapshot to each of writers in turn. Nil
// writers are skipped, and nil is returned if none are left.
func MultiSnapshotWriter(writers ...SnapshotWriter) SnapshotWriter {
	var m multiSnapshotWriter
	for _, w := range writers {
		if w != nil {
			m = append(m, w)
		}
	}
	switch len(m) {
	case 0:
		return nil
	case 1:
		return m[0]
	}
	return m
}

func (m multiSnapshotWriter) WriteSnapshot(snapshot *messages.Snapshot) error {
	var errs []error
	for _, w := range m {
		if err := w.WriteSnapshot(snapshot); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m multiSnapshotWriter) Flush() error {
	var errs []error
	for _, w := range m {
		if err := w.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
