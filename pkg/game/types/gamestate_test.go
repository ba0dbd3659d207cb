package types

import (
	"math"
	"testing"

	"github.com/cbodonnell/slide/pkg/aabb"
	"github.com/cbodonnell/slide/pkg/collisions"
	"github.com/cbodonnell/slide/pkg/kinematic"
	"github.com/cbodonnell/slide/pkg/movement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func v(x, y float64) kinematic.Vector {
	return kinematic.Vec(x, y)
}

// newFloorState has a player standing on a wide floor.
func newFloorState() (*GameState, collisions.EntityID) {
	g := NewGameState(v(1000, 200))
	id := g.AddPlayer(Entity{Position: v(0, 36), Shape: collisions.NewCharacter(v(32, 64))})
	g.AddStatic(Entity{Position: v(0, 100), Shape: collisions.NewRect(v(1000, 20))})
	return g, id
}

func update(t *testing.T, g *GameState, input *InputModel, ctx *movement.Context, ticks int) {
	t.Helper()
	for i := 0; i < ticks; i++ {
		require.NoError(t, g.Update(input, ctx))
		input.EndFrame()
	}
}

func TestGameState_RestsOnFloor(t *testing.T) {
	g, player := newFloorState()
	input := &InputModel{}

	update(t, g, input, movement.NewContext(), 30)

	entity, ok := g.Entity(player)
	require.True(t, ok)
	assert.Equal(t, v(0, 36), entity.Position)
	assert.InDelta(t, 0, g.Velocity(player).Y, 1e-9)
	assert.True(t, g.CanJump(player))
	assert.Equal(t, uint64(30), g.Frame)
}

func TestGameState_Jump(t *testing.T) {
	g, player := newFloorState()
	input := &InputModel{}
	ctx := movement.NewContext()
	update(t, g, input, ctx, 5)

	input.SetJump(true)
	require.NoError(t, g.Update(input, ctx))
	input.EndFrame()

	entity, _ := g.Entity(player)
	assert.InDelta(t, 32, entity.Position.Y, 1e-9)
	assert.InDelta(t, -4, g.Velocity(player).Y, 1e-9)
	assert.False(t, g.CanJump(player))

	// holding jump does not jump again
	require.NoError(t, g.Update(input, ctx))
	input.EndFrame()
	assert.InDelta(t, -3.9, g.Velocity(player).Y, 1e-9)
	entity, _ = g.Entity(player)
	assert.InDelta(t, 28.1, entity.Position.Y, 1e-9)
}

func TestGameState_JumpInAir(t *testing.T) {
	g := NewGameState(v(1000, 200))
	player := g.AddPlayer(Entity{Position: v(0, 0), Shape: collisions.NewCharacter(v(32, 64))})
	g.AddStatic(Entity{Position: v(0, 100), Shape: collisions.NewRect(v(1000, 20))})

	input := &InputModel{}
	input.SetJump(true)
	require.NoError(t, g.Update(input, movement.NewContext()))

	assert.InDelta(t, kinematic.Gravity, g.Velocity(player).Y, 1e-9)
}

func TestPlayerVelocity(t *testing.T) {
	right := &InputModel{}
	right.SetRight(1)

	tests := []struct {
		name    string
		current kinematic.Vector
		input   *InputModel
		jumping bool
		want    kinematic.Vector
	}{
		{name: "falling", current: v(0, 1), input: &InputModel{}, want: v(0, 1.1)},
		{name: "running", current: v(1, 0), input: right, want: v(1.1, 0.1)},
		{name: "jumping replaces gravity", current: v(0, 0), input: &InputModel{}, jumping: true, want: v(0, -4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := playerVelocity(tt.current, tt.input, tt.jumping)
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
		})
	}
}

func TestGameState_BumpsOverStep(t *testing.T) {
	g, player := newFloorState()
	g.AddStatic(Entity{Position: v(100, 99), Shape: collisions.NewRect(v(200, 20))})

	input := &InputModel{}
	input.SetRight(1)
	update(t, g, input, movement.NewContext(), 60)

	entity, _ := g.Entity(player)
	assert.Greater(t, entity.Position.X, 100.0)
	assert.InDelta(t, 99, entity.Position.Y+64, 1e-6)
	assert.True(t, g.CanJump(player))
}

func TestGameState_MovingPlatform(t *testing.T) {
	g, _ := newFloorState()
	platform := g.AddMovingPlatform(Entity{Position: v(200, 0), Shape: collisions.NewRect(v(128, 32))})
	ctx := movement.NewContext()
	input := &InputModel{}

	update(t, g, input, ctx, 1)
	entity, _ := g.Entity(platform)
	assert.Equal(t, v(200, 0), entity.Position)

	update(t, g, input, ctx, 1)
	entity, _ = g.Entity(platform)
	assert.Equal(t, v(200+math.Sin(0.05)*2, 0), entity.Position)
	assert.Equal(t, v(math.Sin(0.05)*2, 0), g.Velocity(platform))

	id, ok := g.MovingPlatformID()
	assert.True(t, ok)
	assert.Equal(t, platform, id)
}

func TestGameState_NoPlayer(t *testing.T) {
	g := NewGameState(v(100, 100))
	g.AddStatic(Entity{Position: v(0, 0), Shape: collisions.NewRect(v(10, 10))})

	err := g.Update(&InputModel{}, movement.NewContext())
	assert.ErrorIs(t, err, ErrNoPlayer)
}

func TestGameState_IDsAndClear(t *testing.T) {
	g, player := newFloorState()
	assert.Equal(t, collisions.EntityID(0), player)
	assert.Equal(t, 2, g.Len())

	var ids []collisions.EntityID
	g.ForEachEntity(func(id collisions.EntityID, _ Entity) {
		ids = append(ids, id)
	})
	assert.Equal(t, []collisions.EntityID{0, 1}, ids)

	update(t, g, &InputModel{}, movement.NewContext(), 3)
	g.Clear()
	assert.Equal(t, 0, g.Len())
	assert.Equal(t, uint64(0), g.Frame)
	_, ok := g.PlayerID()
	assert.False(t, ok)
	_, ok = g.Entity(player)
	assert.False(t, ok)

	again := g.AddPlayer(Entity{Position: v(0, 0), Shape: collisions.NewCharacter(v(32, 64))})
	assert.Equal(t, collisions.EntityID(0), again)
}

func TestGameState_ForEach(t *testing.T) {
	g, player := newFloorState()
	require.NoError(t, g.Update(&InputModel{}, movement.NewContext()))

	var found []collisions.EntityID
	g.ForEach(aabb.New(v(0, 40), v(10, 10)), func(sp movement.ShapePosition) {
		found = append(found, sp.EntityID)
	})
	assert.Equal(t, []collisions.EntityID{player}, found)

	// an index entry with no entity behind it is a bug
	g.tree.Insert(aabb.New(v(500, 0), v(10, 10)), 99)
	assert.Panics(t, func() {
		g.ForEach(aabb.New(v(500, 0), v(10, 10)), func(movement.ShapePosition) {})
	})
}
