package types

import "github.com/cbodonnell/slide/pkg/kinematic"

// InputModel tracks the player controls across ticks.
type InputModel struct {
	left         float64
	right        float64
	up           float64
	down         float64
	jumpCurrent  bool
	jumpPrevious bool
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func (m *InputModel) SetLeft(value float64) {
	m.left = clamp(value, 0, 1)
}

func (m *InputModel) SetRight(value float64) {
	m.right = clamp(value, 0, 1)
}

func (m *InputModel) SetUp(value float64) {
	m.up = clamp(value, 0, 1)
}

func (m *InputModel) SetDown(value float64) {
	m.down = clamp(value, 0, 1)
}

func (m *InputModel) SetJump(jump bool) {
	m.jumpCurrent = jump
}

// Apply replaces the current controls with those of event.
func (m *InputModel) Apply(event InputEvent) {
	m.SetLeft(event.Left)
	m.SetRight(event.Right)
	m.SetUp(event.Up)
	m.SetDown(event.Down)
	m.SetJump(event.Jump)
}

// Movement returns the direction being held, no longer than 1.
func (m *InputModel) Movement() kinematic.Vector {
	raw := kinematic.Vec(m.right-m.left, m.down-m.up)
	if raw.LengthSquared() > 1 {
		return raw.Normalize()
	}
	return raw
}

// JumpThisFrame reports whether jump was pressed since the last EndFrame.
func (m *InputModel) JumpThisFrame() bool {
	return m.jumpCurrent && !m.jumpPrevious
}

// EndFrame must be called once per tick after the state has been updated.
func (m *InputModel) EndFrame() {
	m.jumpPrevious = m.jumpCurrent
}
