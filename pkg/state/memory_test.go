package state

import (
	"context"
	"testing"

	"github.com/cbodonnell/slide/pkg/kinematic"
	"github.com/cbodonnell/slide/pkg/messages"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStateManager(t *testing.T) {
	ctx := context.Background()
	m := NewInMemoryStateManager()

	empty, err := m.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), empty.Frame)
	assert.Empty(t, empty.Entities)

	assert.Error(t, m.Set(ctx, nil))

	snapshot := &messages.Snapshot{
		Frame:    3,
		Entities: []messages.EntitySnapshot{{ID: 1, Position: kinematic.Vec(1, 2)}},
	}
	require.NoError(t, m.Set(ctx, snapshot))

	got, err := m.Get(ctx)
	require.NoError(t, err)
	assert.True(t, got.Equal(snapshot))

	// the copy does not alias the stored snapshot
	got.Entities[0].Position = kinematic.Vec(9, 9)
	again, err := m.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, kinematic.Vec(1, 2), again.Entities[0].Position)
}
