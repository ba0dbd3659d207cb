package messages

import (
	"github.com/cbodonnell/slide/pkg/collisions"
	"github.com/cbodonnell/slide/pkg/kinematic"
)

// Snapshot is the state of every entity after a tick.
type Snapshot struct {
	Frame    uint64           `json:"frame"`
	Entities []EntitySnapshot `json:"entities"`
}

type EntitySnapshot struct {
	ID       collisions.EntityID `json:"id"`
	Position kinematic.Vector    `json:"position"`
	Velocity kinematic.Vector    `json:"velocity"`
	CanJump  bool                `json:"canJump"`
}

// Equal returns true if both snapshots hold exactly the same values in the
// same order.
func (s *Snapshot) Equal(other *Snapshot) bool {
	if s.Frame != other.Frame || len(s.Entities) != len(other.Entities) {
		return false
	}
	for i := range s.Entities {
		if s.Entities[i] != other.Entities[i] {
			return false
		}
	}
	return true
}
