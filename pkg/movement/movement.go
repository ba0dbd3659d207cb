package movement

import (
	"math"

	"github.com/cbodonnell/slide/pkg/aabb"
	"github.com/cbodonnell/slide/pkg/collisions"
	"github.com/cbodonnell/slide/pkg/kinematic"
	"github.com/cbodonnell/slide/pkg/log"
)

const (
	// MaxIterations bounds the slide and bump steps of a single resolve.
	MaxIterations = 16
	// SteepSlopeDegrees is how close to vertical a surface can be and still
	// not count as floor.
	SteepSlopeDegrees = 25.0
	// JumpProbeDistance is how far below a shape CanJump looks for floor.
	JumpProbeDistance = 1.0
)

var sinSteepSlope = math.Sin(SteepSlopeDegrees * math.Pi / 180)

// ShapePosition is a shape placed in the world.
type ShapePosition struct {
	EntityID collisions.EntityID
	Position kinematic.Vector
	Shape    collisions.Shape
}

func (s ShapePosition) Aabb() aabb.Aabb {
	return s.Shape.Aabb(s.Position)
}

// MovementAabb bounds the shape over the whole of movement.
func (s ShapePosition) MovementAabb(movement kinematic.Vector) aabb.Aabb {
	return s.Aabb().Union(s.Shape.Aabb(s.Position.Add(movement)))
}

// Provider finds the shapes that could block a movement.
type Provider interface {
	// ForEach calls f for every shape whose bound intersects bound.
	ForEach(bound aabb.Aabb, f func(ShapePosition))
}

// Result is the outcome of resolving one tick of movement.
type Result struct {
	Position kinematic.Vector
	// Velocity is the movement actually made, excluding bumps.
	Velocity kinematic.Vector
	// CanJump is set when the shape touched floor during the movement.
	CanJump bool
	// StoppedEarly is set when the iteration limit discarded the rest of
	// the movement.
	StoppedEarly bool
	Iterations   int
}

// Context holds the scratch buffers of the resolver. It is reused across
// calls and must not be shared between goroutines.
type Context struct {
	// MaxIterations overrides the package limit when positive.
	MaxIterations int

	closest         collisions.ClosestCollisions
	movingEdges     []collisions.Edge
	stationaryEdges []collisions.Edge
}

func NewContext() *Context {
	return &Context{
		movingEdges:     make([]collisions.Edge, 0, 4),
		stationaryEdges: make([]collisions.Edge, 0, 4),
	}
}

type state struct {
	movement kinematic.Vector
	bumping  bool
	// original is the movement to resume once a bump succeeds.
	original kinematic.Vector
}

// Resolve moves shapePosition by velocity as far as the shapes reported by
// provider allow, sliding along and bumping over whatever it strikes.
func (c *Context) Resolve(shapePosition ShapePosition, velocity kinematic.Vector, provider Provider) Result {
	maxIterations := c.MaxIterations
	if maxIterations <= 0 {
		maxIterations = MaxIterations
	}

	position := shapePosition.Position
	var velocityCorrection kinematic.Vector
	result := Result{}
	current := state{movement: velocity}

	for {
		if isNegligible(current.movement) {
			break
		}
		if result.Iterations == maxIterations {
			result.StoppedEarly = true
			log.Trace("Movement of entity %d stopped after %d iterations at %v", shapePosition.EntityID, result.Iterations, position)
			break
		}
		result.Iterations++

		step := current.movement
		c.findClosest(ShapePosition{
			EntityID: shapePosition.EntityID,
			Position: position,
			Shape:    shapePosition.Shape,
		}, step, provider)

		if c.closest.Len() == 0 {
			position = position.Add(step)
			if !current.bumping {
				break
			}
			velocityCorrection = velocityCorrection.Sub(step)
			current = state{movement: current.original}
			continue
		}

		if current.bumping {
			// the corner could not be cleared
			break
		}

		position = position.Add(c.closest.MovementToCollision(step))
		if c.floorContact() {
			result.CanJump = true
		}

		if bump, ok := MaxBump(c.closest.All()); ok {
			current = state{
				movement: bump.Vector(),
				bumping:  true,
				original: c.closest.MovementFollowingCollision(step),
			}
			continue
		}
		current = state{movement: c.closest.Slide(step)}
	}

	result.Position = position
	result.Velocity = position.Sub(shapePosition.Position).Add(velocityCorrection)
	return result
}

// CanJump reports whether shapePosition is standing on floor.
func (c *Context) CanJump(shapePosition ShapePosition, provider Provider) bool {
	c.findClosest(shapePosition, kinematic.Vec(0, JumpProbeDistance), provider)
	return c.floorContact()
}

// findClosest fills c.closest with the earliest collisions of shapePosition
// moving by movement, in canonical order.
func (c *Context) findClosest(shapePosition ShapePosition, movement kinematic.Vector, provider Provider) {
	c.closest.Reset()
	c.movingEdges = shapePosition.Shape.Edges(shapePosition.Position, c.movingEdges[:0])
	provider.ForEach(shapePosition.MovementAabb(movement), func(other ShapePosition) {
		if other.EntityID == shapePosition.EntityID {
			return
		}
		c.stationaryEdges = other.Shape.Edges(other.Position, c.stationaryEdges[:0])
		for i, moving := range c.movingEdges {
			for j, stationary := range c.stationaryEdges {
				if !moving.CanCollideWith(stationary) {
					continue
				}
				collision, ok := collisions.CollideWithStationaryEdge(moving, stationary, movement)
				if !ok {
					continue
				}
				c.closest.Insert(collisions.Collision{
					LeftSolidEdgeCollision: collision,
					MovingEdge:             moving,
					StationaryEdge:         stationary,
					MovingEntityID:         shapePosition.EntityID,
					StationaryEntityID:     other.EntityID,
					MovingEdgeIndex:        i,
					StationaryEdgeIndex:    j,
				})
			}
		}
	})
	c.closest.Sort()
}

func (c *Context) floorContact() bool {
	for _, collision := range c.closest.All() {
		if isFloorContact(collision) {
			return true
		}
	}
	return false
}

func isFloorContact(collision collisions.Collision) bool {
	moving := collision.MovingEdge
	floor := moving.Channels&collisions.ChannelFloor != 0 ||
		(moving.HasFlag(collisions.FlagFloorStart) && collision.MovingVertexTouching(collisions.Start)) ||
		(moving.HasFlag(collisions.FlagFloorEnd) && collision.MovingVertexTouching(collisions.End))
	if !floor {
		return false
	}
	surface := collision.StationaryEdge.Vector()
	return math.Abs(surface.X) > sinSteepSlope*surface.Length()
}

func isNegligible(movement kinematic.Vector) bool {
	return movement.LengthSquared() < collisions.Epsilon*collisions.Epsilon
}
