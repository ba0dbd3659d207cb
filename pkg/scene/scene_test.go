package scene

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cbodonnell/slide/pkg/collisions"
	"github.com/cbodonnell/slide/pkg/game/types"
	"github.com/cbodonnell/slide/pkg/kinematic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimal = `
name: box
size: {x: 400, y: 300}
player:
  position: {x: 10, y: 10}
  size: {x: 32, y: 64}
  colour: [1, 0, 0]
solids:
  - {kind: rect, position: {x: 0, y: 200}, size: {x: 400, y: 20}, colour: [1, 1, 0]}
  - {kind: line_segment, position: {x: 0, y: 0}, start: {x: 0, y: 0}, end: {x: 10, y: 10}, colour: [0, 1, 0]}
script:
  - {ticks: 3, right: 1}
  - {ticks: 1, right: 1, jump: true}
`

func TestDefault(t *testing.T) {
	s := Default()
	assert.Equal(t, "demo", s.Name)
	require.NotNil(t, s.MovingPlatform)
	assert.Len(t, s.Solids, 16)
	assert.Empty(t, s.Script)

	state := s.NewGameState()
	assert.Equal(t, 18, state.Len())

	player, ok := state.PlayerID()
	require.True(t, ok)
	assert.Equal(t, collisions.EntityID(0), player)
	platform, ok := state.MovingPlatformID()
	require.True(t, ok)
	assert.Equal(t, collisions.EntityID(1), platform)

	entity, ok := state.Entity(2)
	require.True(t, ok)
	assert.Equal(t, kinematic.Vec(700, 200), entity.Position)
	assert.Equal(t, collisions.NewRect(kinematic.Vec(32, 64)), entity.Shape)
}

func TestParse(t *testing.T) {
	s, err := Parse([]byte(minimal))
	require.NoError(t, err)

	assert.Equal(t, "box", s.Name)
	assert.Nil(t, s.MovingPlatform)
	assert.Equal(t, types.Colour{1, 0, 0}, s.Player.Colour)
	require.Len(t, s.Solids, 2)
	assert.Equal(t, collisions.ShapeKindLineSegment, s.Solids[1].Shape().Kind)
	assert.Equal(t, collisions.DefaultHalfWidth, s.Solids[1].Shape().Segment.HalfWidth)
	require.Len(t, s.Script, 2)
	assert.Equal(t, 1.0, s.Script[0].Right)
	assert.True(t, s.Script[1].Jump)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "empty", data: ""},
		{name: "not yaml", data: "name: [unclosed"},
		{name: "unknown field", data: "name: a\nsize: {x: 1, y: 1}\nplayer: {size: {x: 1, y: 1}}\ngravity: 3\n"},
		{name: "no name", data: "size: {x: 1, y: 1}\nplayer: {size: {x: 1, y: 1}}\n"},
		{name: "no size", data: "name: a\nplayer: {size: {x: 1, y: 1}}\n"},
		{name: "no player size", data: "name: a\nsize: {x: 1, y: 1}\n"},
		{name: "bad colour", data: "name: a\nsize: {x: 1, y: 1}\nplayer: {size: {x: 1, y: 1}, colour: [1, 0]}\n"},
		{name: "platform without size", data: "name: a\nsize: {x: 1, y: 1}\nplayer: {size: {x: 1, y: 1}}\nmoving_platform: {position: {x: 1, y: 1}}\n"},
		{name: "unknown kind", data: "name: a\nsize: {x: 1, y: 1}\nplayer: {size: {x: 1, y: 1}}\nsolids: [{kind: circle}]\n"},
		{name: "empty rect", data: "name: a\nsize: {x: 1, y: 1}\nplayer: {size: {x: 1, y: 1}}\nsolids: [{kind: rect, size: {x: 0, y: 4}}]\n"},
		{name: "point segment", data: "name: a\nsize: {x: 1, y: 1}\nplayer: {size: {x: 1, y: 1}}\nsolids: [{kind: line_segment, start: {x: 1, y: 1}, end: {x: 1, y: 1}}]\n"},
		{name: "negative half width", data: "name: a\nsize: {x: 1, y: 1}\nplayer: {size: {x: 1, y: 1}}\nsolids: [{kind: line_segment, end: {x: 1, y: 1}, half_width: -1}]\n"},
		{name: "zero ticks", data: "name: a\nsize: {x: 1, y: 1}\nplayer: {size: {x: 1, y: 1}}\nscript: [{ticks: 0}]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "box.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimal), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "box", s.Name)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestScript_InputAt(t *testing.T) {
	s, err := Parse([]byte(minimal))
	require.NoError(t, err)
	assert.Equal(t, uint64(4), s.Script.Len())

	tests := []struct {
		frame  uint64
		wantOK bool
		want   types.InputEvent
	}{
		{frame: 0, wantOK: true, want: types.InputEvent{Right: 1}},
		{frame: 2, wantOK: true, want: types.InputEvent{Right: 1}},
		{frame: 3, wantOK: true, want: types.InputEvent{Right: 1, Jump: true}},
		{frame: 4, wantOK: false},
	}
	for _, tt := range tests {
		got, ok := s.Script.InputAt(tt.frame)
		assert.Equal(t, tt.wantOK, ok, "frame %d", tt.frame)
		assert.Equal(t, tt.want, got, "frame %d", tt.frame)
	}
}

func TestReset(t *testing.T) {
	s, err := Parse([]byte(minimal))
	require.NoError(t, err)

	state := s.NewGameState()
	state.Frame = 12
	s.Reset(state)

	assert.Equal(t, uint64(0), state.Frame)
	assert.Equal(t, 3, state.Len())
	entity, ok := state.Entity(0)
	require.True(t, ok)
	assert.Equal(t, kinematic.Vec(10, 10), entity.Position)
}
