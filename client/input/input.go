package input

import (
	"github.com/cbodonnell/slide/pkg/game/types"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// stickDeadZone is how far a gamepad stick must move before it counts.
const stickDeadZone = 0.2

// ReadInputEvent samples the keyboard and any connected gamepads.
func ReadInputEvent() types.InputEvent {
	event := types.InputEvent{
		Left:  pressed(ebiten.KeyLeft, ebiten.KeyA),
		Right: pressed(ebiten.KeyRight, ebiten.KeyD),
		Up:    pressed(ebiten.KeyUp, ebiten.KeyW),
		Down:  pressed(ebiten.KeyDown, ebiten.KeyS),
		Jump:  inpututil.IsKeyJustPressed(ebiten.KeySpace),
	}

	for _, g := range ebiten.AppendGamepadIDs(nil) {
		if !ebiten.IsStandardGamepadLayoutAvailable(g) {
			// The button 0 might not be A.
			if inpututil.IsGamepadButtonJustPressed(g, ebiten.GamepadButton0) {
				event.Jump = true
			}
			continue
		}
		x := ebiten.StandardGamepadAxisValue(g, ebiten.StandardGamepadAxisLeftStickHorizontal)
		y := ebiten.StandardGamepadAxisValue(g, ebiten.StandardGamepadAxisLeftStickVertical)
		event.Left = max(event.Left, axis(-x))
		event.Right = max(event.Right, axis(x))
		event.Up = max(event.Up, axis(-y))
		event.Down = max(event.Down, axis(y))
		if inpututil.IsStandardGamepadButtonJustPressed(g, ebiten.StandardGamepadButtonRightBottom) {
			event.Jump = true
		}
	}

	return event
}

func pressed(keys ...ebiten.Key) float64 {
	for _, key := range keys {
		if ebiten.IsKeyPressed(key) {
			return 1
		}
	}
	return 0
}

func axis(value float64) float64 {
	if value < stickDeadZone {
		return 0
	}
	return value
}

// IsPositiveJustPressed returns a boolean value indicating whether the generic positive input is just pressed.
// This is used to handle both keyboard and gamepad inputs.
func IsPositiveJustPressed() bool {
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		return true
	}
	for _, g := range ebiten.AppendGamepadIDs(nil) {
		if ebiten.IsStandardGamepadLayoutAvailable(g) && inpututil.IsStandardGamepadButtonJustPressed(g, ebiten.StandardGamepadButtonCenterRight) {
			return true
		}
	}
	return false
}

// IsPauseJustPressed returns a boolean value indicating whether the pause menu should be toggled.
func IsPauseJustPressed() bool {
	return inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyP)
}

func IsResetJustPressed() bool {
	return inpututil.IsKeyJustPressed(ebiten.KeyR)
}

// IsStepJustPressed advances a paused world by a single tick.
func IsStepJustPressed() bool {
	return inpututil.IsKeyJustPressed(ebiten.KeyPeriod)
}

func IsDebugJustPressed() bool {
	return inpututil.IsKeyJustPressed(ebiten.KeyF3)
}
