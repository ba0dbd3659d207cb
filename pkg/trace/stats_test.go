package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	rows := []Row{
		{Frame: 1, EntityID: 2, X: 10, Y: 10},
		{Frame: 1, EntityID: 1, X: 0, Y: 0, VelocityX: 3, VelocityY: 4, CanJump: true},
		{Frame: 2, EntityID: 1, X: 3, Y: 4},
		{Frame: 3, EntityID: 1, X: 3, Y: 4},
	}

	stats := Summarize(rows)
	require.Len(t, stats, 2)

	player := stats[0]
	assert.Equal(t, uint32(1), player.EntityID)
	assert.Equal(t, 3, player.Frames)
	assert.InDelta(t, 5, player.Distance, 1e-9)
	assert.InDelta(t, 5.0/3, player.MeanSpeed, 1e-9)
	assert.InDelta(t, 5, player.MaxSpeed, 1e-9)
	assert.InDelta(t, 1.0/3, player.Grounded, 1e-9)

	still := stats[1]
	assert.Equal(t, uint32(2), still.EntityID)
	assert.Equal(t, 1, still.Frames)
	assert.Zero(t, still.Distance)
	assert.Zero(t, still.MaxSpeed)
	assert.Zero(t, still.Grounded)
}

func TestSummarize_Empty(t *testing.T) {
	assert.Empty(t, Summarize(nil))
}
