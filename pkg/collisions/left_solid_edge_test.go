package collisions

import (
	"testing"

	"github.com/cbodonnell/slide/pkg/kinematic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func v(x, y float64) kinematic.Vector {
	return kinematic.Vec(x, y)
}

func edge(x0, y0, x1, y1 float64) Edge {
	return NewEdge(v(x0, y0), v(x1, y1), ChannelAll, FlagNone)
}

func TestCollideWithStationaryEdge(t *testing.T) {
	tests := []struct {
		name           string
		moving         Edge
		stationary     Edge
		movement       kinematic.Vector
		wantOK         bool
		wantMultiplier float64
	}{
		{
			name:           "bottom onto floor",
			moving:         edge(32, 44, 0, 44),
			stationary:     edge(0, 50, 400, 50),
			movement:       v(0, 10),
			wantOK:         true,
			wantMultiplier: 0.6,
		},
		{
			name:           "narrow bottom onto wide floor",
			moving:         edge(12, 0, 8, 0),
			stationary:     edge(0, 4, 20, 4),
			movement:       v(0, 8),
			wantOK:         true,
			wantMultiplier: 0.5,
		},
		{
			name:           "wide bottom onto narrow floor",
			moving:         edge(20, 0, 0, 0),
			stationary:     edge(8, 4, 12, 4),
			movement:       v(0, 8),
			wantOK:         true,
			wantMultiplier: 0.5,
		},
		{
			name:           "right side into wall",
			moving:         edge(10, 0, 10, 10),
			stationary:     edge(15, 20, 15, -10),
			movement:       v(10, 0),
			wantOK:         true,
			wantMultiplier: 0.5,
		},
		{
			name:       "floor faces away",
			moving:     edge(32, 44, 0, 44),
			stationary: edge(400, 50, 0, 50),
			movement:   v(0, 10),
		},
		{
			name:       "moving edge faces away",
			moving:     edge(0, 44, 32, 44),
			stationary: edge(0, 50, 400, 50),
			movement:   v(0, 10),
		},
		{
			name:       "moving apart",
			moving:     edge(32, 44, 0, 44),
			stationary: edge(0, 50, 400, 50),
			movement:   v(0, -10),
		},
		{
			name:       "parallel to movement",
			moving:     edge(32, 44, 0, 44),
			stationary: edge(0, 50, 400, 50),
			movement:   v(10, 0),
		},
		{
			name:       "too far",
			moving:     edge(32, 0, 0, 0),
			stationary: edge(0, 50, 400, 50),
			movement:   v(0, 10),
		},
		{
			name:       "passes beside",
			moving:     edge(32, 44, 0, 44),
			stationary: edge(100, 50, 400, 50),
			movement:   v(0, 10),
		},
		{
			name:       "zero length stationary edge",
			moving:     edge(32, 44, 0, 44),
			stationary: edge(10, 50, 10, 50),
			movement:   v(0, 10),
		},
		{
			name:       "zero movement",
			moving:     edge(32, 44, 0, 44),
			stationary: edge(0, 50, 400, 50),
			movement:   kinematic.Zero,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CollideWithStationaryEdge(tt.moving, tt.stationary, tt.movement)
			require.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.InDelta(t, tt.wantMultiplier, got.MovementMultiplier, 1e-9)

			// the multiplier and its complement always cover the movement
			total := got.MovementToCollision(tt.movement).Add(got.MovementFollowingCollision(tt.movement))
			assert.InDelta(t, tt.movement.X, total.X, 1e-9)
			assert.InDelta(t, tt.movement.Y, total.Y, 1e-9)

			// sliding never moves towards the struck edge
			slide := got.Slide(tt.movement)
			assert.InDelta(t, 0, slide.Dot(got.EdgeVector.Left()), 1e-9)
		})
	}
}

func TestCollideWithStationaryEdge_SharedCorner(t *testing.T) {
	// two floor blocks meet at x=20; the moving corner lands exactly on the
	// seam and is counted by one of them only
	moving := edge(20, 0, 10, 0)
	left := edge(0, 4, 20, 4)
	right := edge(20, 4, 40, 4)

	leftCollision, leftOK := CollideWithStationaryEdge(moving, left, v(0, 8))
	rightCollision, rightOK := CollideWithStationaryEdge(moving, right, v(0, 8))

	require.True(t, leftOK)
	assert.InDelta(t, 0.5, leftCollision.MovementMultiplier, 1e-9)
	assert.False(t, rightOK, "unexpected collision with %+v", rightCollision)
}

func TestLeftSolidEdgeCollision_Contacts(t *testing.T) {
	// a character's right edge runs top to bottom; a step corner strikes
	// it one pixel above its end
	moving := NewEdge(v(10, 0), v(10, 10), ChannelMain, FlagBumpEnd|FlagFloorEnd)
	step := edge(20, 9, 20, 20)
	step = NewEdge(step.End, step.Start, ChannelAll, FlagNone)
	top := edge(20, 9, 40, 9)

	got, ok := CollideWithStationaryEdge(moving, step, v(20, 0))
	require.True(t, ok)
	assert.InDelta(t, 0.5, got.MovementMultiplier, 1e-9)

	contact, ok := got.MovingEdgeMaxContact()
	require.True(t, ok)
	assert.Equal(t, End, contact.OtherPart)
	assert.InDelta(t, 0.9, contact.Along, 1e-9)
	assert.True(t, got.MovingVertexTouching(End))
	assert.False(t, got.MovingVertexTouching(Start))

	// the top of the step faces up, away from a horizontal move
	_, ok = CollideWithStationaryEdge(moving, top, v(20, 0))
	assert.False(t, ok)
}

func TestLeftSolidEdgeCollision_MovingVertexTouching(t *testing.T) {
	// bottom edge runs right to left, so its start is the bottom right corner
	moving := edge(32, 44, 0, 44)
	floor := edge(20, 50, 400, 50)

	got, ok := CollideWithStationaryEdge(moving, floor, v(0, 10))
	require.True(t, ok)
	assert.True(t, got.MovingVertexTouching(Start))
	assert.False(t, got.MovingVertexTouching(End))

	min, ok := got.MovingEdgeMinContact()
	require.True(t, ok)
	assert.Equal(t, Start, min.OtherPart)
	assert.InDelta(t, 12.0/32.0, min.Along, 1e-9)
}

func TestVertexEdgeReflection(t *testing.T) {
	tests := []struct {
		name     string
		vertex   kinematic.Vector
		movement kinematic.Vector
		edge     Edge
	}{
		{name: "diagonal onto diagonal", vertex: v(0, 0), movement: v(3, 3), edge: edge(0, 4, 4, 0)},
		{name: "glancing left", vertex: v(0, 1), movement: v(-10, -2), edge: edge(-10, 0, 10, 0)},
		{name: "glancing right", vertex: v(0, 1), movement: v(10, -2), edge: edge(10, 0, -10, 0)},
		{name: "onto vertical", vertex: v(-5, 2), movement: v(8, 1), edge: edge(0, -4, 0, 4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vertexMoving, ok := VertexMovingTowardsEdge(tt.vertex, tt.movement, tt.edge)
			require.True(t, ok)
			edgeMoving, ok := EdgeMovingTowardsVertex(tt.vertex, tt.movement.Neg(), tt.edge)
			require.True(t, ok)

			assert.InDelta(t, vertexMoving.MovementMultiplier, edgeMoving.MovementMultiplier, 1e-9)
			assertVectorInDelta(t, vertexMoving.AllowedMovement.Neg(), edgeMoving.AllowedMovement)
			assertVectorInDelta(t, vertexMoving.SlideMovement.Neg(), edgeMoving.SlideMovement)
		})
	}
}

func TestEdgeMovingTowardsVertex(t *testing.T) {
	// a floor edge rising by (0, -10) meets the vertex 4 above it
	got, ok := EdgeMovingTowardsVertex(v(5, 46), v(0, -10), edge(0, 50, 20, 50))
	require.True(t, ok)
	assert.InDelta(t, 0.4, got.MovementMultiplier, 1e-9)
	assertVectorInDelta(t, v(0, -4), got.AllowedMovement)
	assertVectorInDelta(t, v(0, 0), got.SlideMovement)

	_, ok = EdgeMovingTowardsVertex(v(25, 46), v(0, -10), edge(0, 50, 20, 50))
	assert.False(t, ok, "vertex past the end of the edge")

	_, ok = EdgeMovingTowardsVertex(v(5, 30), v(0, -10), edge(0, 50, 20, 50))
	assert.False(t, ok, "vertex out of reach")

	_, ok = EdgeMovingTowardsVertex(v(5, 46), v(10, 0), edge(0, 50, 20, 50))
	assert.False(t, ok, "parallel")
}

func TestCollideWithStationaryEdge_Reflection(t *testing.T) {
	tests := []struct {
		name     string
		moving   Edge
		still    Edge
		movement kinematic.Vector
	}{
		{name: "box bottom onto floor", moving: edge(32, 44, 0, 44), still: edge(20, 50, 400, 50), movement: v(0, 10)},
		{name: "box bottom onto slope", moving: edge(32, 44, 0, 44), still: edge(0, 70, 40, 50), movement: v(2, 10)},
		{name: "box side into wall", moving: edge(32, 0, 32, 64), still: edge(40, 80, 40, -20), movement: v(12, 1)},
		{name: "corner onto corner", moving: edge(10, 10, 0, 10), still: edge(10, 12, 20, 12), movement: v(3, 3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forward, ok := CollideWithStationaryEdge(tt.moving, tt.still, tt.movement)
			require.True(t, ok)
			backward, ok := CollideWithStationaryEdge(tt.still, tt.moving, tt.movement.Neg())
			require.True(t, ok)

			assert.InDelta(t, forward.MovementMultiplier, backward.MovementMultiplier, 1e-9)
			assertVectorInDelta(t, forward.MovementToCollision(tt.movement).Neg(), backward.MovementToCollision(tt.movement.Neg()))
			assertVectorInDelta(t, forward.MovementFollowingCollision(tt.movement).Neg(), backward.MovementFollowingCollision(tt.movement.Neg()))
		})
	}
}

func assertVectorInDelta(t *testing.T, want, got kinematic.Vector) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-9, "x")
	assert.InDelta(t, want.Y, got.Y, 1e-9, "y")
}

func TestVertexMovingTowardsEdge(t *testing.T) {
	got, ok := VertexMovingTowardsEdge(v(0, 0), v(3, 3), edge(0, 4, 4, 0))
	require.True(t, ok)
	assert.InDelta(t, 2, got.AllowedMovement.X, 1e-9)
	assert.InDelta(t, 2, got.AllowedMovement.Y, 1e-9)
	assert.InDelta(t, 0, got.SlideMovement.Length(), 1e-9)

	got, ok = VertexMovingTowardsEdge(v(0, 1), v(-10, -2), edge(-10, 0, 10, 0))
	require.True(t, ok)
	assert.InDelta(t, -5, got.AllowedMovement.X, 1e-9)
	assert.InDelta(t, -1, got.AllowedMovement.Y, 1e-9)
	assert.InDelta(t, -5, got.SlideMovement.X, 1e-9)
	assert.InDelta(t, 0, got.SlideMovement.Y, 1e-9)

	_, ok = VertexMovingTowardsEdge(v(0, 0), v(2, 2), edge(0, 5, 5, 0))
	assert.False(t, ok, "stops short")

	_, ok = VertexMovingTowardsEdge(v(0, 0), v(2, 1), edge(1, 1, 3, 2))
	assert.False(t, ok, "parallel")
}
