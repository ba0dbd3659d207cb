package scene

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cbodonnell/slide/pkg/collisions"
	"github.com/cbodonnell/slide/pkg/game/types"
	"github.com/cbodonnell/slide/pkg/kinematic"
	"gopkg.in/yaml.v3"
)

//go:embed demo.yaml
var demoYAML []byte

// Solid kinds
const (
	KindRect        = "rect"
	KindFloorOnly   = "floor_only"
	KindLineSegment = "line_segment"
)

// Scene describes a world to load into a game state.
type Scene struct {
	Name string `yaml:"name"`
	// Size is the region covered by the spatial index
	Size           kinematic.Vector `yaml:"size"`
	Player         Body             `yaml:"player"`
	MovingPlatform *Body            `yaml:"moving_platform,omitempty"`
	Solids         []Solid          `yaml:"solids"`
	Script         Script           `yaml:"script,omitempty"`
}

// Body is a rect placed at Position.
type Body struct {
	Position kinematic.Vector `yaml:"position"`
	Size     kinematic.Vector `yaml:"size"`
	Colour   types.Colour     `yaml:"colour"`
}

// Solid is a static shape. Size is used by rects, Start, End and HalfWidth by
// line segments, both relative to Position.
type Solid struct {
	Kind      string           `yaml:"kind"`
	Position  kinematic.Vector `yaml:"position"`
	Size      kinematic.Vector `yaml:"size,omitempty"`
	Start     kinematic.Vector `yaml:"start,omitempty"`
	End       kinematic.Vector `yaml:"end,omitempty"`
	HalfWidth float64          `yaml:"half_width,omitempty"`
	Colour    types.Colour     `yaml:"colour"`
}

// Default returns the built in demo scene.
func Default() *Scene {
	s, err := Parse(demoYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded demo scene is invalid: %v", err))
	}
	return s
}

// Load reads and validates the scene at path.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene %s: %v", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load scene %s: %v", path, err)
	}
	return s, nil
}

// Parse decodes and validates a scene. Unknown fields are rejected.
func Parse(data []byte) (*Scene, error) {
	var s Scene
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("scene is empty")
		}
		return nil, fmt.Errorf("failed to parse scene: %v", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Scene) Validate() error {
	if s.Name == "" {
		return errors.New("scene has no name")
	}
	if !positive(s.Size) {
		return fmt.Errorf("scene size must be positive, got %v", s.Size)
	}
	if !positive(s.Player.Size) {
		return fmt.Errorf("player size must be positive, got %v", s.Player.Size)
	}
	if s.MovingPlatform != nil && !positive(s.MovingPlatform.Size) {
		return fmt.Errorf("moving platform size must be positive, got %v", s.MovingPlatform.Size)
	}
	for i, solid := range s.Solids {
		if err := solid.validate(); err != nil {
			return fmt.Errorf("solid %d: %v", i, err)
		}
	}
	for i, step := range s.Script {
		if step.Ticks <= 0 {
			return fmt.Errorf("script step %d: ticks must be positive, got %d", i, step.Ticks)
		}
	}
	return nil
}

func (s Solid) validate() error {
	switch s.Kind {
	case KindRect, KindFloorOnly:
		if !positive(s.Size) {
			return fmt.Errorf("%s size must be positive, got %v", s.Kind, s.Size)
		}
	case KindLineSegment:
		if s.Start == s.End {
			return errors.New("line segment has no length")
		}
		if s.HalfWidth < 0 {
			return fmt.Errorf("line segment half width must not be negative, got %v", s.HalfWidth)
		}
	default:
		return fmt.Errorf("unknown solid kind %q", s.Kind)
	}
	return nil
}

// Shape returns the collision shape of a valid solid.
func (s Solid) Shape() collisions.Shape {
	switch s.Kind {
	case KindFloorOnly:
		return collisions.NewFloorOnly(s.Size)
	case KindLineSegment:
		halfWidth := s.HalfWidth
		if halfWidth == 0 {
			halfWidth = collisions.DefaultHalfWidth
		}
		return collisions.NewLineSegment(s.Start, s.End, halfWidth)
	default:
		return collisions.NewRect(s.Size)
	}
}

// NewGameState builds a world from the scene. The player gets id 0, the
// moving platform the next id, then the solids in order.
func (s *Scene) NewGameState() *types.GameState {
	state := types.NewGameState(s.Size)
	s.Reset(state)
	return state
}

// Reset clears state and loads the scene into it.
func (s *Scene) Reset(state *types.GameState) {
	state.Clear()
	state.AddPlayer(types.Entity{
		Position: s.Player.Position,
		Shape:    collisions.NewCharacter(s.Player.Size),
		Colour:   s.Player.Colour,
	})
	if s.MovingPlatform != nil {
		state.AddMovingPlatform(types.Entity{
			Position: s.MovingPlatform.Position,
			Shape:    collisions.NewRect(s.MovingPlatform.Size),
			Colour:   s.MovingPlatform.Colour,
		})
	}
	for _, solid := range s.Solids {
		state.AddStatic(types.Entity{
			Position: solid.Position,
			Shape:    solid.Shape(),
			Colour:   solid.Colour,
		})
	}
}

func positive(v kinematic.Vector) bool {
	return v.X > 0 && v.Y > 0
}
