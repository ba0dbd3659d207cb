package movement

import (
	"math"

	"github.com/cbodonnell/slide/pkg/collisions"
	"github.com/cbodonnell/slide/pkg/kinematic"
)

const (
	// BumpDistancePx is the tallest corner a character steps over.
	BumpDistancePx  = 2.0
	bumpDistancePx2 = BumpDistancePx * BumpDistancePx
	// bumpPadding2 is added to the squared bump distance so the bumped
	// edge clears the corner instead of sliding along it.
	bumpPadding2 = 0.01
)

// Bump is a small nudge along a moving edge that lifts it over a corner.
type Bump struct {
	Distance2 float64
	Direction kinematic.Vector
}

// Vector returns the nudge itself.
func (b Bump) Vector() kinematic.Vector {
	return b.Direction.NormalizeTo(math.Sqrt(b.Distance2))
}

// MaxBump returns the largest bump offered by the given collisions.
func MaxBump(tied []collisions.Collision) (Bump, bool) {
	var best Bump
	found := false
	for _, collision := range tied {
		bump, ok := bumpFor(collision)
		if !ok {
			continue
		}
		if !found || bump.Distance2 > best.Distance2 {
			best, found = bump, true
		}
	}
	return best, found
}

func bumpFor(collision collisions.Collision) (Bump, bool) {
	moving := collision.MovingEdge
	if moving.HasFlag(collisions.FlagBumpStart) {
		if contact, ok := collision.MovingEdgeMinContact(); ok && contact.OtherPart == collisions.Start {
			if bump, ok := newBump(moving.Vector(), contact.Along, moving.Vector()); ok {
				return bump, true
			}
		}
	}
	if moving.HasFlag(collisions.FlagBumpEnd) {
		if contact, ok := collision.MovingEdgeMaxContact(); ok && contact.OtherPart == collisions.End {
			if bump, ok := newBump(moving.Vector(), 1-contact.Along, moving.Vector().Neg()); ok {
				return bump, true
			}
		}
	}
	return Bump{}, false
}

func newBump(edgeVector kinematic.Vector, along float64, direction kinematic.Vector) (Bump, bool) {
	distance2 := edgeVector.LengthSquared() * along * along
	if distance2 > bumpDistancePx2 {
		return Bump{}, false
	}
	return Bump{
		Distance2: math.Min(distance2+bumpPadding2, bumpDistancePx2),
		Direction: direction,
	}, true
}
