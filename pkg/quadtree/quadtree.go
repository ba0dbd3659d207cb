package quadtree

import (
	"fmt"

	"github.com/cbodonnell/slide/pkg/aabb"
	"github.com/cbodonnell/slide/pkg/kinematic"
)

// child slots within a block of four nodes
const (
	topLeft = iota
	topRight
	bottomLeft
	bottomRight
	numChildren
)

// maxDepth stops tiny items from descending forever.
const maxDepth = 16

type item[T any] struct {
	bound aabb.Aabb
	value T
}

type node[T any] struct {
	items []item[T]
	// childOffset is the index of the first of four children, or 0 when the
	// node has none. The root is at index 0 so no child can be.
	childOffset int
	generation  uint64
}

func (n *node[T]) reset(generation uint64) {
	clear(n.items)
	n.items = n.items[:0]
	n.childOffset = 0
	n.generation = generation
}

// LooseQuadTree is a quadtree over the region from the origin to size where
// each cell holds items up to the size of the cell itself, centred anywhere
// inside it. Nodes live in a flat slice and are reused after Clear.
type LooseQuadTree[T any] struct {
	nodes      []node[T]
	size       kinematic.Vector
	generation uint64
	nextFree   int
	count      int
}

// New creates a tree covering the region from the origin to size. It panics
// if either dimension is not positive.
func New[T any](size kinematic.Vector) *LooseQuadTree[T] {
	if size.X <= 0 || size.Y <= 0 {
		panic(fmt.Sprintf("quadtree size must be positive, got %v", size))
	}
	return &LooseQuadTree[T]{
		nodes:      []node[T]{{generation: 1}},
		size:       size,
		generation: 1,
		nextFree:   1,
	}
}

func (t *LooseQuadTree[T]) Size() kinematic.Vector {
	return t.size
}

// Len returns the number of items inserted since the last Clear.
func (t *LooseQuadTree[T]) Len() int {
	return t.count
}

// Clear logically empties the tree without walking it. Nodes are reset as
// they are next reached by Insert.
func (t *LooseQuadTree[T]) Clear() {
	t.generation++
	t.nodes[0].reset(t.generation)
	t.nextFree = 1
	t.count = 0
}

// Insert adds value with the given bound. Items that do not lie within the
// tree's region are kept at the root.
func (t *LooseQuadTree[T]) Insert(bound aabb.Aabb, value T) {
	t.count++
	it := item[T]{bound: bound, value: value}
	if !aabb.New(kinematic.Zero, t.size).Contains(bound) {
		root := t.visit(0)
		root.items = append(root.items, it)
		return
	}

	index := 0
	centre := bound.Centre()
	maxSize := t.size.Scale(0.5)
	for depth := 0; ; depth++ {
		n := t.visit(index)
		if depth == maxDepth || bound.Size.X > maxSize.X || bound.Size.Y > maxSize.Y {
			n.items = append(n.items, it)
			return
		}
		childOffset := n.childOffset
		if childOffset == 0 {
			// allocation may grow the node slice, so n is not used after this
			childOffset = t.allocateChildren()
			t.nodes[index].childOffset = childOffset
		}

		switch {
		case centre.X < maxSize.X && centre.Y < maxSize.Y:
			index = childOffset + topLeft
		case centre.Y < maxSize.Y:
			index = childOffset + topRight
			centre.X -= maxSize.X
		case centre.X < maxSize.X:
			index = childOffset + bottomLeft
			centre.Y -= maxSize.Y
		default:
			index = childOffset + bottomRight
			centre = centre.Sub(maxSize)
		}
		maxSize = maxSize.Scale(0.5)
	}
}

// visit returns the node at index, resetting it if it is left over from
// before the last Clear.
func (t *LooseQuadTree[T]) visit(index int) *node[T] {
	n := &t.nodes[index]
	if n.generation != t.generation {
		n.reset(t.generation)
	}
	return n
}

func (t *LooseQuadTree[T]) allocateChildren() int {
	offset := t.nextFree
	t.nextFree += numChildren
	for len(t.nodes) < t.nextFree {
		t.nodes = append(t.nodes, node[T]{})
	}
	for i := offset; i < t.nextFree; i++ {
		t.nodes[i].reset(t.generation)
	}
	return offset
}

// ForEachIntersection calls f for every item whose bound intersects bound.
func (t *LooseQuadTree[T]) ForEachIntersection(bound aabb.Aabb, f func(aabb.Aabb, T)) {
	t.forEachIntersection(0, aabb.New(kinematic.Zero, t.size), bound, f)
}

func (t *LooseQuadTree[T]) forEachIntersection(index int, cell aabb.Aabb, bound aabb.Aabb, f func(aabb.Aabb, T)) {
	n := &t.nodes[index]
	if n.generation != t.generation {
		return
	}
	for _, it := range n.items {
		if it.bound.IsIntersecting(bound) {
			f(it.bound, it.value)
		}
	}
	if n.childOffset == 0 {
		return
	}
	childOffset := n.childOffset
	for i, quadrant := range cell.SplitFour().Quadrants() {
		if quadrant.DoubleAboutCentre().IsIntersecting(bound) {
			t.forEachIntersection(childOffset+i, quadrant, bound, f)
		}
	}
}
