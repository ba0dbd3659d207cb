package types

import (
	"image/color"

	"github.com/cbodonnell/slide/pkg/aabb"
	"github.com/cbodonnell/slide/pkg/collisions"
	"github.com/cbodonnell/slide/pkg/kinematic"
)

// PhysicsType selects how an entity with a velocity is moved each tick.
type PhysicsType uint8

const (
	// PhysicsTypeStatic entities are translated by their velocity and push
	// nothing.
	PhysicsTypeStatic PhysicsType = iota
	// PhysicsTypeDynamic entities are moved with collision resolution.
	PhysicsTypeDynamic
)

// Colour is an RGB triple in [0, 1].
type Colour [3]float32

func (c Colour) RGBA() color.RGBA {
	return color.RGBA{
		R: uint8(clamp(float64(c[0]), 0, 1) * 255),
		G: uint8(clamp(float64(c[1]), 0, 1) * 255),
		B: uint8(clamp(float64(c[2]), 0, 1) * 255),
		A: 255,
	}
}

// Entity is the data shared by everything in the world.
type Entity struct {
	Position kinematic.Vector
	Shape    collisions.Shape
	Colour   Colour
}

func (e Entity) Aabb() aabb.Aabb {
	return e.Shape.Aabb(e.Position)
}

type idAllocator struct {
	next collisions.EntityID
}

func (a *idAllocator) allocate() collisions.EntityID {
	id := a.next
	a.next++
	return id
}

func (a *idAllocator) reset() {
	a.next = 0
}
