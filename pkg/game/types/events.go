package types

// InputEvent is the state of the controls at the time it was sampled. Values
// outside [0, 1] are clamped when applied.
type InputEvent struct {
	Left  float64 `json:"left" yaml:"left"`
	Right float64 `json:"right" yaml:"right"`
	Up    float64 `json:"up" yaml:"up"`
	Down  float64 `json:"down" yaml:"down"`
	Jump  bool    `json:"jump" yaml:"jump"`
}
