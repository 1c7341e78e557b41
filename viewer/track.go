package viewer

import (
	"fmt"
	"slices"
)

// AnimationTrack is one time-sampled value curve driving the front-end's
// animation engine: the target object path, the animated action (for example
// "t", "rx" or "q"), and parallel time and value samples. Tracks are
// immutable once constructed.
type AnimationTrack struct {
	path   string
	action string
	times  []float64
	values []float64
}

// NewAnimationTrack validates and builds a track. The time and value
// sequences must have the same length; both are copied.
func NewAnimationTrack(path, action string, times, values []float64) (AnimationTrack, error) {
	if len(times) != len(values) {
		return AnimationTrack{}, fmt.Errorf("%w: %d times, %d values",
			ErrTrackLength, len(times), len(values))
	}
	t := AnimationTrack{
		path:   path,
		action: action,
		times:  make([]float64, len(times)),
		values: make([]float64, len(values)),
	}
	copy(t.times, times)
	copy(t.values, values)
	return t, nil
}

// Path returns the animated object path.
func (t AnimationTrack) Path() string { return t.path }

// Action returns the animated action name.
func (t AnimationTrack) Action() string { return t.action }

// Times returns a copy of the time samples.
func (t AnimationTrack) Times() []float64 { return slices.Clone(t.times) }

// Values returns a copy of the value samples.
func (t AnimationTrack) Values() []float64 { return slices.Clone(t.values) }

// Len returns the number of samples.
func (t AnimationTrack) Len() int { return len(t.times) }

// ToArray returns the wire form consumed by the front-end:
// [path, action, times, values].
func (t AnimationTrack) ToArray() []any {
	return []any{t.path, t.action, t.Times(), t.Values()}
}
