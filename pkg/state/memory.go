package state

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/cbodonnell/slide/pkg/messages"
)

type InMemoryStateManager struct {
	lock     sync.RWMutex
	snapshot *messages.Snapshot
}

func NewInMemoryStateManager() *InMemoryStateManager {
	return &InMemoryStateManager{
		snapshot: &messages.Snapshot{},
	}
}

func (m *InMemoryStateManager) Get(ctx context.Context) (*messages.Snapshot, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return &messages.Snapshot{
		Frame:    m.snapshot.Frame,
		Entities: slices.Clone(m.snapshot.Entities),
	}, nil
}

func (m *InMemoryStateManager) Set(ctx context.Context, snapshot *messages.Snapshot) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if snapshot == nil {
		return fmt.Errorf("snapshot is nil")
	}

	m.snapshot = snapshot
	return nil
}
