package aabb

import "github.com/cbodonnell/slide/pkg/kinematic"

// Aabb is an axis-aligned bounding box in y-down screen space.
type Aabb struct {
	TopLeft kinematic.Vector
	Size    kinematic.Vector
}

// SplitFour holds the four quadrants of a box.
type SplitFour struct {
	TopLeft     Aabb
	TopRight    Aabb
	BottomLeft  Aabb
	BottomRight Aabb
}

func New(topLeft, size kinematic.Vector) Aabb {
	return Aabb{TopLeft: topLeft, Size: size}
}

func FromCentreAndHalfSize(centre, halfSize kinematic.Vector) Aabb {
	return New(centre.Sub(halfSize), halfSize.Scale(2))
}

// FromCorners returns the smallest box containing both points.
func FromCorners(a, b kinematic.Vector) Aabb {
	topLeft := a.Min(b)
	return New(topLeft, a.Max(b).Sub(topLeft))
}

func (a Aabb) BottomRight() kinematic.Vector {
	return a.TopLeft.Add(a.Size)
}

func (a Aabb) Centre() kinematic.Vector {
	return a.TopLeft.Add(a.Size.Scale(0.5))
}

// Union returns the smallest box containing both a and other.
func (a Aabb) Union(other Aabb) Aabb {
	topLeft := a.TopLeft.Min(other.TopLeft)
	bottomRight := a.BottomRight().Max(other.BottomRight())
	return New(topLeft, bottomRight.Sub(topLeft))
}

// IsIntersecting reports whether the boxes overlap. Touching boxes intersect.
func (a Aabb) IsIntersecting(other Aabb) bool {
	return a.TopLeft.X+a.Size.X >= other.TopLeft.X &&
		other.TopLeft.X+other.Size.X >= a.TopLeft.X &&
		a.TopLeft.Y+a.Size.Y >= other.TopLeft.Y &&
		other.TopLeft.Y+other.Size.Y >= a.TopLeft.Y
}

// Contains reports whether other lies entirely within a.
func (a Aabb) Contains(other Aabb) bool {
	bottomRight := a.BottomRight()
	otherBottomRight := other.BottomRight()
	return other.TopLeft.X >= a.TopLeft.X &&
		other.TopLeft.Y >= a.TopLeft.Y &&
		otherBottomRight.X <= bottomRight.X &&
		otherBottomRight.Y <= bottomRight.Y
}

// SplitFour divides the box into four quadrants of half the size.
func (a Aabb) SplitFour() SplitFour {
	size := a.Size.Scale(0.5)
	return SplitFour{
		TopLeft:     New(a.TopLeft, size),
		TopRight:    New(kinematic.Vec(a.TopLeft.X+size.X, a.TopLeft.Y), size),
		BottomLeft:  New(kinematic.Vec(a.TopLeft.X, a.TopLeft.Y+size.Y), size),
		BottomRight: New(a.TopLeft.Add(size), size),
	}
}

// Quadrants returns the quadrants indexed top-left, top-right, bottom-left, bottom-right.
func (s SplitFour) Quadrants() [4]Aabb {
	return [4]Aabb{s.TopLeft, s.TopRight, s.BottomLeft, s.BottomRight}
}

// DoubleAboutCentre returns a box with the same centre and twice the size.
// It is used as the loose bound of a quadtree cell during queries.
func (a Aabb) DoubleAboutCentre() Aabb {
	return FromCentreAndHalfSize(a.Centre(), a.Size)
}
