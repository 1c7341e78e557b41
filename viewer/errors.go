package viewer

import "errors"

var (
	// ErrNotAttached reports an operation that needs a bound presentation
	// channel before Attach was called.
	ErrNotAttached = errors.New("viewer not attached to a channel")
	// ErrInvalidOption reports a construction or scene option outside its
	// allowed range.
	ErrInvalidOption = errors.New("invalid option")
	// ErrModeConflict reports an operation disallowed in the current camera
	// control or animation mode.
	ErrModeConflict = errors.New("mode conflict")
	// ErrTrackLength reports an animation track whose time and value
	// sequences differ in length.
	ErrTrackLength = errors.New("track times and values differ in length")
)
