package constants

import "github.com/cbodonnell/slide/pkg/kinematic"

var (
	// InputMultiplier scales the normalised input into a per-tick velocity change
	InputMultiplier = kinematic.Vec(0.1, 0.5)
	// JumpImpulse is added to the player velocity on the tick it jumps
	JumpImpulse = kinematic.Vec(0, -4)
)

const (
	// PlatformFrequency is the angular speed of the moving platform in radians per tick
	PlatformFrequency float64 = 0.05
	// PlatformAmplitude is the peak horizontal speed of the moving platform
	PlatformAmplitude float64 = 2.0
)
