package state

import (
	"context"

	"github.com/cbodonnell/slide/pkg/messages"
)

// StateManager provides shared access to the latest snapshot of the world.
// Implementations must be thread-safe.
type StateManager interface {
	// Get returns a copy of the latest snapshot.
	Get(ctx context.Context) (*messages.Snapshot, error)
	// Set replaces the latest snapshot.
	Set(ctx context.Context, snapshot *messages.Snapshot) error
}
