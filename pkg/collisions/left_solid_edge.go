package collisions

import (
	"math"

	"github.com/cbodonnell/slide/pkg/kinematic"
)

// Epsilon is the tolerance of the swept edge algebra.
const Epsilon = 0.000001

// Parameter windows along the struck edge. A vertex that starts an edge of its
// polygon accepts (0, 1], one that ends an edge accepts [0, 1), so a contact
// exactly on a shared corner is not counted twice.
const (
	startMinMultiplier = Epsilon
	startMaxMultiplier = 1 + Epsilon
	endMinMultiplier   = -Epsilon
	endMaxMultiplier   = 1 - Epsilon
)

// StartOrEnd names one end of an edge.
type StartOrEnd uint8

const (
	Start StartOrEnd = iota
	End
)

func (s StartOrEnd) String() string {
	if s == Start {
		return "start"
	}
	return "end"
}

// EdgeContact is a point on an edge struck by a vertex of the other edge.
type EdgeContact struct {
	// Along is the position on this edge, 0 at its start and 1 at its end.
	Along float64
	// OtherPart is the vertex of the other edge that made contact.
	OtherPart StartOrEnd
}

// sub-problems of an edge-vs-edge sweep
const (
	stationaryStartOnMoving = iota
	stationaryEndOnMoving
	movingStartOnStationary
	movingEndOnStationary
	numVertexContacts
)

type vertexContact struct {
	ok         bool
	along      float64
	multiplier float64
}

// LeftSolidEdgeCollision is the result of sweeping a moving edge against a
// stationary one.
type LeftSolidEdgeCollision struct {
	// MovementMultiplier is the fraction of the attempted movement that can
	// be applied before contact.
	MovementMultiplier float64
	// EdgeVector is the direction of the struck edge, used for sliding.
	EdgeVector kinematic.Vector

	contacts [numVertexContacts]vertexContact
}

// MovementToCollision returns the part of the movement that can be applied
// without penetrating.
func (c LeftSolidEdgeCollision) MovementToCollision(movement kinematic.Vector) kinematic.Vector {
	return movement.Scale(c.MovementMultiplier)
}

// MovementFollowingCollision returns the part of the movement left over after
// contact.
func (c LeftSolidEdgeCollision) MovementFollowingCollision(movement kinematic.Vector) kinematic.Vector {
	return movement.Scale(1 - c.MovementMultiplier)
}

// Slide returns the remaining movement projected onto the struck edge.
func (c LeftSolidEdgeCollision) Slide(movement kinematic.Vector) kinematic.Vector {
	return c.MovementFollowingCollision(movement).ProjectOn(c.EdgeVector)
}

// MovingEdgeMinContact returns the contact closest to the moving edge's start
// made by a vertex of the stationary edge.
func (c LeftSolidEdgeCollision) MovingEdgeMinContact() (EdgeContact, bool) {
	return c.movingEdgeContact(func(a, b float64) bool { return a < b })
}

// MovingEdgeMaxContact returns the contact closest to the moving edge's end
// made by a vertex of the stationary edge.
func (c LeftSolidEdgeCollision) MovingEdgeMaxContact() (EdgeContact, bool) {
	return c.movingEdgeContact(func(a, b float64) bool { return a > b })
}

func (c LeftSolidEdgeCollision) movingEdgeContact(better func(a, b float64) bool) (EdgeContact, bool) {
	var best EdgeContact
	found := false
	for i, part := range [...]StartOrEnd{Start, End} {
		contact := c.contacts[stationaryStartOnMoving+i]
		if !contact.ok {
			continue
		}
		if !found || better(contact.along, best.Along) {
			best = EdgeContact{Along: contact.along, OtherPart: part}
			found = true
		}
	}
	return best, found
}

// StationaryEdgeContact returns where the given vertex of the moving edge
// struck the stationary edge.
func (c LeftSolidEdgeCollision) StationaryEdgeContact(movingPart StartOrEnd) (float64, bool) {
	contact := c.contacts[movingStartOnStationary+int(movingPart)]
	return contact.along, contact.ok
}

// MovingVertexTouching reports whether the given vertex of the moving edge is
// a point of contact, either by striking the stationary edge or by being
// struck at that end.
func (c LeftSolidEdgeCollision) MovingVertexTouching(part StartOrEnd) bool {
	if _, ok := c.StationaryEdgeContact(part); ok {
		return true
	}
	switch part {
	case Start:
		contact, ok := c.MovingEdgeMinContact()
		return ok && contact.Along <= Epsilon
	default:
		contact, ok := c.MovingEdgeMaxContact()
		return ok && contact.Along >= 1-Epsilon
	}
}

// CollideWithStationaryEdge sweeps moving by movement against stationary. It
// reports false when the edges cannot touch during the movement: when either
// edge faces away from the other, is parallel to the movement or has no
// length, or when the swept paths miss.
func CollideWithStationaryEdge(moving, stationary Edge, movement kinematic.Vector) (LeftSolidEdgeCollision, bool) {
	stationaryEdgeVector := stationary.Vector()
	stationaryEdgeCross := movement.Cross(stationaryEdgeVector)
	if stationaryEdgeCross > -Epsilon {
		return LeftSolidEdgeCollision{}, false
	}
	movingEdgeVector := moving.Vector()
	reverseMovement := movement.Neg()
	movingEdgeCross := reverseMovement.Cross(movingEdgeVector)
	if movingEdgeCross > -Epsilon {
		return LeftSolidEdgeCollision{}, false
	}

	var contacts [numVertexContacts]vertexContact
	contacts[stationaryStartOnMoving] = vertexCollision(moving.Start, movingEdgeVector, stationary.Start, reverseMovement, movingEdgeCross, startMinMultiplier, startMaxMultiplier)
	contacts[stationaryEndOnMoving] = vertexCollision(moving.Start, movingEdgeVector, stationary.End, reverseMovement, movingEdgeCross, endMinMultiplier, endMaxMultiplier)
	contacts[movingStartOnStationary] = vertexCollision(stationary.Start, stationaryEdgeVector, moving.Start, movement, stationaryEdgeCross, startMinMultiplier, startMaxMultiplier)
	contacts[movingEndOnStationary] = vertexCollision(stationary.Start, stationaryEdgeVector, moving.End, movement, stationaryEdgeCross, endMinMultiplier, endMaxMultiplier)

	winner := -1
	multiplier := 0.0
	for i, contact := range contacts {
		if !contact.ok {
			continue
		}
		switch {
		case winner < 0 || contact.multiplier < multiplier-Epsilon:
			winner, multiplier = i, contact.multiplier
		case contact.multiplier <= multiplier+Epsilon:
			// later sub-problems win ties, so a vertex striking the
			// stationary edge slides along the stationary edge
			winner = i
			multiplier = math.Min(multiplier, contact.multiplier)
		}
	}
	if winner < 0 {
		return LeftSolidEdgeCollision{}, false
	}

	for i := range contacts {
		if contacts[i].ok && contacts[i].multiplier > multiplier+Epsilon {
			contacts[i].ok = false
		}
	}

	edgeVector := stationaryEdgeVector
	if winner == stationaryStartOnMoving || winner == stationaryEndOnMoving {
		edgeVector = movingEdgeVector
	}

	return LeftSolidEdgeCollision{
		MovementMultiplier: multiplier,
		EdgeVector:         edgeVector,
		contacts:           contacts,
	}, true
}

// vertexCollision intersects the path of vertex moving by vertexMovement with
// the edge starting at edgeStart. cross must be vertexMovement x edgeVector and
// must be non-zero.
func vertexCollision(edgeStart, edgeVector, vertex, vertexMovement kinematic.Vector, cross, minEdgeMultiplier, maxEdgeMultiplier float64) vertexContact {
	vertexToStart := edgeStart.Sub(vertex)
	edgeMultiplier := vertexToStart.Cross(vertexMovement) / cross
	if edgeMultiplier < minEdgeMultiplier || edgeMultiplier > maxEdgeMultiplier {
		return vertexContact{}
	}
	movementMultiplier := vertexToStart.Cross(edgeVector) / cross
	if movementMultiplier < -Epsilon || movementMultiplier > 1+Epsilon {
		return vertexContact{}
	}
	return vertexContact{
		ok:         true,
		along:      edgeMultiplier,
		multiplier: movementMultiplier,
	}
}
