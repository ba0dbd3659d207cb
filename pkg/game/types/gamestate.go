package types

import (
	"errors"
	"fmt"
	"math"

	"github.com/cbodonnell/slide/pkg/aabb"
	"github.com/cbodonnell/slide/pkg/collisions"
	"github.com/cbodonnell/slide/pkg/game/constants"
	"github.com/cbodonnell/slide/pkg/kinematic"
	"github.com/cbodonnell/slide/pkg/log"
	"github.com/cbodonnell/slide/pkg/movement"
	"github.com/cbodonnell/slide/pkg/quadtree"
)

// ErrNoPlayer is returned by Update when no player has been added.
var ErrNoPlayer = errors.New("game state has no player")

type entityVector struct {
	id     collisions.EntityID
	vector kinematic.Vector
}

// changes are collected during an update and applied once every entity has
// moved, so each entity resolves against the positions of the previous tick.
type changes struct {
	positions  []entityVector
	velocities []entityVector
}

func (c *changes) reset() {
	c.positions = c.positions[:0]
	c.velocities = c.velocities[:0]
}

type GameState struct {
	// Frame is the number of updates run since the state was cleared
	Frame uint64

	ids        idAllocator
	entities   map[collisions.EntityID]*Entity
	velocities map[collisions.EntityID]kinematic.Vector
	physics    map[collisions.EntityID]PhysicsType
	canJump    map[collisions.EntityID]bool
	// sorted holds every entity id in ascending order
	sorted []collisions.EntityID
	tree   *quadtree.LooseQuadTree[collisions.EntityID]

	playerID    collisions.EntityID
	hasPlayer   bool
	platformID  collisions.EntityID
	hasPlatform bool

	changes changes
}

// NewGameState creates an empty world. size is a hint for the spatial index;
// entities outside it still collide.
func NewGameState(size kinematic.Vector) *GameState {
	return &GameState{
		entities:   make(map[collisions.EntityID]*Entity),
		velocities: make(map[collisions.EntityID]kinematic.Vector),
		physics:    make(map[collisions.EntityID]PhysicsType),
		canJump:    make(map[collisions.EntityID]bool),
		tree:       quadtree.New[collisions.EntityID](size),
	}
}

// Clear removes every entity and resets the frame counter and id allocation.
func (g *GameState) Clear() {
	g.Frame = 0
	g.ids.reset()
	clear(g.entities)
	clear(g.velocities)
	clear(g.physics)
	clear(g.canJump)
	g.sorted = g.sorted[:0]
	g.tree.Clear()
	g.hasPlayer = false
	g.hasPlatform = false
	g.changes.reset()
}

func (g *GameState) add(entity Entity) collisions.EntityID {
	id := g.ids.allocate()
	g.entities[id] = &entity
	// ids only grow so appending keeps the order
	g.sorted = append(g.sorted, id)
	return id
}

// AddStatic adds a solid that never moves.
func (g *GameState) AddStatic(entity Entity) collisions.EntityID {
	id := g.add(entity)
	g.tree.Insert(entity.Aabb(), id)
	return id
}

// AddPlayer adds the entity driven by the input model. There is at most one
// player; adding another replaces which entity is driven.
func (g *GameState) AddPlayer(entity Entity) collisions.EntityID {
	id := g.add(entity)
	g.velocities[id] = kinematic.Zero
	g.physics[id] = PhysicsTypeDynamic
	g.playerID, g.hasPlayer = id, true
	return id
}

// AddMovingPlatform adds a solid that swings left and right each tick.
func (g *GameState) AddMovingPlatform(entity Entity) collisions.EntityID {
	id := g.AddStatic(entity)
	g.velocities[id] = kinematic.Zero
	g.physics[id] = PhysicsTypeStatic
	g.platformID, g.hasPlatform = id, true
	return id
}

func (g *GameState) PlayerID() (collisions.EntityID, bool) {
	return g.playerID, g.hasPlayer
}

func (g *GameState) MovingPlatformID() (collisions.EntityID, bool) {
	return g.platformID, g.hasPlatform
}

func (g *GameState) Len() int {
	return len(g.sorted)
}

func (g *GameState) Entity(id collisions.EntityID) (Entity, bool) {
	entity, ok := g.entities[id]
	if !ok {
		return Entity{}, false
	}
	return *entity, true
}

func (g *GameState) Velocity(id collisions.EntityID) kinematic.Vector {
	return g.velocities[id]
}

// CanJump reports whether the entity touched floor during the last update.
func (g *GameState) CanJump(id collisions.EntityID) bool {
	return g.canJump[id]
}

// ForEachEntity calls f for every entity in ascending id order.
func (g *GameState) ForEachEntity(f func(collisions.EntityID, Entity)) {
	for _, id := range g.sorted {
		f(id, *g.entities[id])
	}
}

// ForEach implements movement.Provider over the spatial index.
func (g *GameState) ForEach(bound aabb.Aabb, f func(movement.ShapePosition)) {
	g.tree.ForEachIntersection(bound, func(_ aabb.Aabb, id collisions.EntityID) {
		entity, ok := g.entities[id]
		if !ok {
			panic(fmt.Sprintf("entity %d is indexed but not in the game state", id))
		}
		f(movement.ShapePosition{
			EntityID: id,
			Position: entity.Position,
			Shape:    entity.Shape,
		})
	})
}

func (g *GameState) shapePosition(id collisions.EntityID) movement.ShapePosition {
	entity := g.entities[id]
	return movement.ShapePosition{
		EntityID: id,
		Position: entity.Position,
		Shape:    entity.Shape,
	}
}

// Update advances the world by one tick.
func (g *GameState) Update(input *InputModel, ctx *movement.Context) error {
	if !g.hasPlayer {
		return ErrNoPlayer
	}

	g.tree.Clear()
	for _, id := range g.sorted {
		g.tree.Insert(g.entities[id].Aabb(), id)
	}

	jumping := false
	if input.JumpThisFrame() {
		jumping = ctx.CanJump(g.shapePosition(g.playerID), g)
	}
	g.velocities[g.playerID] = playerVelocity(g.velocities[g.playerID], input, jumping)

	if g.hasPlatform {
		speed := math.Sin(float64(g.Frame)*constants.PlatformFrequency) * constants.PlatformAmplitude
		g.velocities[g.platformID] = kinematic.Vec(speed, 0)
	}

	g.changes.reset()
	for _, id := range g.sorted {
		velocity, ok := g.velocities[id]
		if !ok {
			continue
		}
		switch g.physics[id] {
		case PhysicsTypeDynamic:
			result := ctx.Resolve(g.shapePosition(id), velocity, g)
			if result.StoppedEarly {
				log.Debug("Entity %d stopped early on frame %d", id, g.Frame)
			}
			g.changes.positions = append(g.changes.positions, entityVector{id: id, vector: result.Position})
			g.changes.velocities = append(g.changes.velocities, entityVector{id: id, vector: result.Velocity})
			g.canJump[id] = result.CanJump
		case PhysicsTypeStatic:
			g.changes.positions = append(g.changes.positions, entityVector{id: id, vector: g.entities[id].Position.Add(velocity)})
		}
	}

	for _, change := range g.changes.positions {
		g.entities[change.id].Position = change.vector
	}
	for _, change := range g.changes.velocities {
		g.velocities[change.id] = change.vector
	}

	g.Frame++
	return nil
}

func playerVelocity(current kinematic.Vector, input *InputModel, jumping bool) kinematic.Vector {
	velocity := current.Add(input.Movement().Mul(constants.InputMultiplier))
	if jumping {
		return velocity.Add(constants.JumpImpulse)
	}
	// one tick of gravity
	velocity.Y = kinematic.FinalVelocity(velocity.Y, 1, kinematic.Gravity)
	return velocity
}
