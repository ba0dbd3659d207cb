package collisions

import (
	"cmp"
	"slices"

	"github.com/cbodonnell/slide/pkg/kinematic"
)

// TieEpsilon is the multiplier window within which collisions are considered
// simultaneous.
const TieEpsilon = 0.001

// Collision is a swept edge collision tagged with the edges and entities
// that produced it.
type Collision struct {
	LeftSolidEdgeCollision

	MovingEdge          Edge
	StationaryEdge      Edge
	MovingEntityID      EntityID
	StationaryEntityID  EntityID
	MovingEdgeIndex     int
	StationaryEdgeIndex int
}

// ClosestCollisions collects the collisions tied for the smallest movement
// multiplier of a query. The zero value is empty and ready to use.
type ClosestCollisions struct {
	collisions []Collision
	multiplier float64
}

// Reset empties the set, keeping its storage.
func (c *ClosestCollisions) Reset() {
	c.collisions = c.collisions[:0]
	c.multiplier = 0
}

// Insert adds collision if it ties with or beats the current minimum.
// Entries no longer within TieEpsilon of a new minimum are dropped.
func (c *ClosestCollisions) Insert(collision Collision) {
	multiplier := collision.MovementMultiplier
	switch {
	case len(c.collisions) == 0:
		c.multiplier = multiplier
	case multiplier < c.multiplier:
		c.multiplier = multiplier
		c.collisions = slices.DeleteFunc(c.collisions, func(existing Collision) bool {
			return existing.MovementMultiplier > multiplier+TieEpsilon
		})
	case multiplier > c.multiplier+TieEpsilon:
		return
	}
	c.collisions = append(c.collisions, collision)
}

func (c *ClosestCollisions) Len() int {
	return len(c.collisions)
}

// All returns the tied collisions. The slice is only valid until the next
// Reset or Insert.
func (c *ClosestCollisions) All() []Collision {
	return c.collisions
}

// Multiplier returns the smallest movement multiplier in the set.
func (c *ClosestCollisions) Multiplier() float64 {
	return c.multiplier
}

// Sort puts the set in canonical order: by stationary entity, then by moving
// edge, then by stationary edge.
func (c *ClosestCollisions) Sort() {
	slices.SortStableFunc(c.collisions, func(a, b Collision) int {
		if n := cmp.Compare(a.StationaryEntityID, b.StationaryEntityID); n != 0 {
			return n
		}
		if n := cmp.Compare(a.MovingEdgeIndex, b.MovingEdgeIndex); n != 0 {
			return n
		}
		return cmp.Compare(a.StationaryEdgeIndex, b.StationaryEdgeIndex)
	})
}

// MovementToCollision returns the movement that can be applied before the
// first contact.
func (c *ClosestCollisions) MovementToCollision(movement kinematic.Vector) kinematic.Vector {
	return movement.Scale(c.multiplier)
}

// MovementFollowingCollision returns the movement left after the first
// contact.
func (c *ClosestCollisions) MovementFollowingCollision(movement kinematic.Vector) kinematic.Vector {
	return movement.Scale(1 - c.multiplier)
}

// Slide returns the first slide, in set order, that does not push into any of
// the struck edges. It returns the zero vector when every slide is blocked,
// as when moving into an inside corner.
func (c *ClosestCollisions) Slide(movement kinematic.Vector) kinematic.Vector {
	remaining := c.MovementFollowingCollision(movement)
	for _, collision := range c.collisions {
		slide := remaining.ProjectOn(collision.EdgeVector)
		if c.isFree(slide) {
			return slide
		}
	}
	return kinematic.Zero
}

func (c *ClosestCollisions) isFree(slide kinematic.Vector) bool {
	for _, collision := range c.collisions {
		if slide.Dot(collision.StationaryEdge.SolidNormal()) > Epsilon {
			return false
		}
	}
	return true
}
