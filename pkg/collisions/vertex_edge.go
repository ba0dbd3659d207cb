package collisions

import "github.com/cbodonnell/slide/pkg/kinematic"

// VertexEdgeCollision is where a single vertex path meets an edge.
type VertexEdgeCollision struct {
	MovementMultiplier float64
	AllowedMovement    kinematic.Vector
	SlideMovement      kinematic.Vector
}

// VertexMovingTowardsEdge sweeps vertex by movement against edge. Both sides
// of the edge are treated as solid. Parallel paths and zero-length edges
// report false.
func VertexMovingTowardsEdge(vertex, movement kinematic.Vector, edge Edge) (VertexEdgeCollision, bool) {
	edgeVector := edge.Vector()
	cross := movement.Cross(edgeVector)
	if cross > -Epsilon && cross < Epsilon {
		return VertexEdgeCollision{}, false
	}
	contact := vertexCollision(edge.Start, edgeVector, vertex, movement, cross, -Epsilon, 1+Epsilon)
	if !contact.ok {
		return VertexEdgeCollision{}, false
	}
	allowed := movement.Scale(contact.multiplier)
	return VertexEdgeCollision{
		MovementMultiplier: contact.multiplier,
		AllowedMovement:    allowed,
		SlideMovement:      movement.Sub(allowed).ProjectOn(edgeVector),
	}, true
}

// EdgeMovingTowardsVertex sweeps edge by movement against a stationary
// vertex. The result is expressed as movement of the edge.
func EdgeMovingTowardsVertex(vertex, movement kinematic.Vector, edge Edge) (VertexEdgeCollision, bool) {
	edgeVector := edge.Vector()
	cross := movement.Cross(edgeVector)
	if cross > -Epsilon && cross < Epsilon {
		return VertexEdgeCollision{}, false
	}
	// solve edge.Start + movement*t + edgeVector*along == vertex
	startToVertex := vertex.Sub(edge.Start)
	along := movement.Cross(startToVertex) / cross
	if along < -Epsilon || along > 1+Epsilon {
		return VertexEdgeCollision{}, false
	}
	multiplier := startToVertex.Cross(edgeVector) / cross
	if multiplier < -Epsilon || multiplier > 1+Epsilon {
		return VertexEdgeCollision{}, false
	}
	allowed := movement.Scale(multiplier)
	return VertexEdgeCollision{
		MovementMultiplier: multiplier,
		AllowedMovement:    allowed,
		SlideMovement:      movement.Sub(allowed).ProjectOn(edgeVector),
	}, true
}
