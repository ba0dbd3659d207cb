package objects

import (
	"fmt"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
)

// SortedZIndexObject is a GameObject that maintains a sorted list of child objects by z-index.
type SortedZIndexObject struct {
	*BaseObject

	// sorted is a list of child objects sorted by z-index. Children with the
	// same z-index keep the order they were added in.
	sorted []GameObject
	ids    map[string]struct{}
}

var _ GameObject = &SortedZIndexObject{}

func NewSortedZIndexObject(id string) *SortedZIndexObject {
	return &SortedZIndexObject{
		BaseObject: NewBaseObject(id, nil),
		sorted:     make([]GameObject, 0),
		ids:        make(map[string]struct{}),
	}
}

func (o *SortedZIndexObject) AddChild(child GameObject) error {
	id := child.GetID()
	if _, ok := o.ids[id]; ok {
		return fmt.Errorf("child object with id %s already exists", id)
	}
	o.ids[id] = struct{}{}
	i := sort.Search(len(o.sorted), func(i int) bool {
		return o.sorted[i].GetZIndex() > child.GetZIndex()
	})
	o.sorted = append(o.sorted, nil)
	copy(o.sorted[i+1:], o.sorted[i:])
	o.sorted[i] = child
	return nil
}

func (o *SortedZIndexObject) RemoveChild(id string) error {
	if _, ok := o.ids[id]; !ok {
		return fmt.Errorf("child object with id %s does not exist", id)
	}
	delete(o.ids, id)
	for i, obj := range o.sorted {
		if obj.GetID() == id {
			o.sorted = append(o.sorted[:i], o.sorted[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("child %s not found in sorted list", id)
}

func (o *SortedZIndexObject) ClearChildren() {
	clear(o.sorted)
	o.sorted = o.sorted[:0]
	clear(o.ids)
}

func (o *SortedZIndexObject) GetChildren() []GameObject {
	return o.sorted
}

func (o *SortedZIndexObject) Update() error {
	for _, child := range o.sorted {
		if err := child.Update(); err != nil {
			return fmt.Errorf("failed to update %s: %v", child.GetID(), err)
		}
	}
	return nil
}

func (o *SortedZIndexObject) Draw(screen *ebiten.Image) {
	for _, child := range o.sorted {
		child.Draw(screen)
	}
}
