package game

import (
	"context"
	"testing"
	"time"

	"github.com/cbodonnell/slide/pkg/game/types"
	"github.com/cbodonnell/slide/pkg/messages"
	"github.com/cbodonnell/slide/pkg/queue"
	"github.com/cbodonnell/slide/pkg/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// jumpScript waits for the player to settle, then jumps and walks right.
var jumpScript = scene.Script{
	{Ticks: 10},
	{Ticks: 1, InputEvent: types.InputEvent{Jump: true, Right: 1}},
	{Ticks: 50, InputEvent: types.InputEvent{Right: 1}},
}

func run(t *testing.T, frames uint64, script InputScript) []*messages.Snapshot {
	t.Helper()
	snapshotChan := make(chan *messages.Snapshot, frames)
	gm := NewGameManager(NewGameManagerOptions{
		InputScript:  script,
		GameState:    scene.Default().NewGameState(),
		SnapshotChan: snapshotChan,
		MaxFrames:    frames,
	})
	require.NoError(t, gm.Start(context.Background()))
	close(snapshotChan)

	var snapshots []*messages.Snapshot
	for s := range snapshotChan {
		snapshots = append(snapshots, s)
	}
	return snapshots
}

func TestGameManager_Start(t *testing.T) {
	snapshots := run(t, 20, nil)

	require.Len(t, snapshots, 20)
	for i, s := range snapshots {
		assert.Equal(t, uint64(i+1), s.Frame)
		assert.Len(t, s.Entities, 18)
	}
	player := snapshots[19].Entities[0]
	assert.InDelta(t, 436, player.Position.Y, 1e-9)
	assert.True(t, player.CanJump)
}

func TestGameManager_Deterministic(t *testing.T) {
	first := run(t, 60, jumpScript)
	second := run(t, 60, jumpScript)

	require.Len(t, second, len(first))
	for i := range first {
		assert.True(t, first[i].Equal(second[i]), "frame %d", first[i].Frame)
	}

	// the jump on frame 10 is visible in the snapshot that follows it
	assert.Less(t, first[10].Entities[0].Position.Y, first[9].Entities[0].Position.Y)
	assert.Greater(t, first[20].Entities[0].Position.X, first[9].Entities[0].Position.X)
}

func TestGameManager_Tick_Queue(t *testing.T) {
	inputQueue := queue.NewInMemoryQueue[types.InputEvent](0)
	state := scene.Default().NewGameState()
	gm := NewGameManager(NewGameManagerOptions{
		InputQueue: inputQueue,
		GameState:  state,
	})
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, gm.Tick(ctx))
	}

	require.NoError(t, inputQueue.Enqueue(types.InputEvent{Left: 1}))
	require.NoError(t, inputQueue.Enqueue(types.InputEvent{Jump: true}))
	require.NoError(t, gm.Tick(ctx))

	assert.Equal(t, 0, inputQueue.Size())
	player, _ := state.PlayerID()
	// the last event wins
	assert.InDelta(t, 0, state.Velocity(player).X, 1e-9)
	assert.InDelta(t, -4, state.Velocity(player).Y, 1e-9)
}

func TestGameManager_Tick_Context(t *testing.T) {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name         string
		ctx          context.Context
		capacity     int
		wantErr      bool
		wantFrame    uint64
		wantSnapshot bool
	}{
		{name: "live", ctx: context.Background(), capacity: 1, wantFrame: 1, wantSnapshot: true},
		{name: "cancelled before the frame", ctx: cancelled, capacity: 1, wantErr: true},
		{name: "cancelled with a full channel", ctx: cancelled, capacity: 0, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshotChan := make(chan *messages.Snapshot, tt.capacity)
			gm := NewGameManager(NewGameManagerOptions{
				GameState:    scene.Default().NewGameState(),
				SnapshotChan: snapshotChan,
			})

			err := gm.Tick(tt.ctx)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantFrame, gm.GameState().Frame)
			assert.Equal(t, tt.wantSnapshot, len(snapshotChan) == 1)
		})
	}
}

func TestGameManager_Start_Ticker(t *testing.T) {
	snapshotChan := make(chan *messages.Snapshot, 100)
	gm := NewGameManager(NewGameManagerOptions{
		GameState:        scene.Default().NewGameState(),
		SnapshotChan:     snapshotChan,
		GameLoopInterval: time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.NoError(t, gm.Start(ctx))

	assert.NotEmpty(t, snapshotChan)
	assert.Equal(t, uint64(len(snapshotChan)), gm.GameState().Frame)
}

func TestGameManager_Start_NoPlayer(t *testing.T) {
	gm := NewGameManager(NewGameManagerOptions{
		GameState: types.NewGameState(scene.Default().Size),
	})
	err := gm.Start(context.Background())
	assert.ErrorIs(t, err, types.ErrNoPlayer)
}

func TestSnapshotFromState(t *testing.T) {
	state := scene.Default().NewGameState()
	snapshot := SnapshotFromState(state)

	assert.Equal(t, uint64(0), snapshot.Frame)
	require.Len(t, snapshot.Entities, 18)
	for i, entity := range snapshot.Entities {
		assert.EqualValues(t, i, entity.ID)
	}
	assert.Equal(t, 550.0, snapshot.Entities[0].Position.X)
}
