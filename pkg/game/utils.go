package game

import (
	"github.com/cbodonnell/slide/pkg/collisions"
	"github.com/cbodonnell/slide/pkg/game/types"
	"github.com/cbodonnell/slide/pkg/messages"
)

// SnapshotFromState captures every entity in ascending id order.
func SnapshotFromState(state *types.GameState) *messages.Snapshot {
	snapshot := &messages.Snapshot{
		Frame:    state.Frame,
		Entities: make([]messages.EntitySnapshot, 0, state.Len()),
	}
	state.ForEachEntity(func(id collisions.EntityID, entity types.Entity) {
		snapshot.Entities = append(snapshot.Entities, messages.EntitySnapshot{
			ID:       id,
			Position: entity.Position,
			Velocity: state.Velocity(id),
			CanJump:  state.CanJump(id),
		})
	})
	return snapshot
}
