package scene

import "github.com/cbodonnell/slide/pkg/game/types"

// Step holds the controls for a run of ticks.
type Step struct {
	Ticks            int `yaml:"ticks"`
	types.InputEvent `yaml:",inline"`
}

// Script is a sequence of steps played from frame 0.
type Script []Step

// Len returns the number of frames the script covers.
func (s Script) Len() uint64 {
	var total uint64
	for _, step := range s {
		total += uint64(step.Ticks)
	}
	return total
}

// InputAt returns the controls for frame. Past the end of the script it
// returns false and the controls stay as they were.
func (s Script) InputAt(frame uint64) (types.InputEvent, bool) {
	var start uint64
	for _, step := range s {
		end := start + uint64(step.Ticks)
		if frame < end {
			return step.InputEvent, true
		}
		start = end
	}
	return types.InputEvent{}, false
}
