package viewer

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/vertexfoundry/cadviewer-bridge/internal/logging"
)

// AddTrack appends one track to the staged animation set. Staged tracks reach
// the front-end on the next Animate call.
func (v *Viewer) AddTrack(t AnimationTrack) {
	v.mu.Lock()
	v.tracks = append(v.tracks, t)
	v.mu.Unlock()
}

// ReplaceTracks replaces the staged animation set with a copy of tracks.
func (v *Viewer) ReplaceTracks(tracks []AnimationTrack) {
	v.mu.Lock()
	v.tracks = slices.Clone(tracks)
	v.mu.Unlock()
}

// Tracks returns a copy of the staged animation set.
func (v *Viewer) Tracks() []AnimationTrack {
	v.mu.Lock()
	defer v.mu.Unlock()
	return slices.Clone(v.tracks)
}

// ClearTracks drops the staged animation set and clears the front-end's
// track list.
func (v *Viewer) ClearTracks(ctx context.Context) error {
	if _, err := v.channelOrErr(); err != nil {
		return err
	}
	ctx = logging.ContextWithViewerID(ctx, v.id)

	v.mu.Lock()
	v.tracks = nil
	v.mu.Unlock()
	return v.set(ctx, attrTracks, "[]")
}

// Animate sends the staged tracks to the front-end and starts playback at the
// given speed multiplier. The scene must have been submitted with
// AnimationLoop enabled.
func (v *Viewer) Animate(ctx context.Context, speed float64) error {
	if _, err := v.channelOrErr(); err != nil {
		return err
	}
	ctx = logging.ContextWithViewerID(ctx, v.id)

	if !v.store.Bool(attrAnimationLoop) {
		return fmt.Errorf("%w: scene was submitted without the animation loop enabled", ErrModeConflict)
	}

	v.mu.Lock()
	arr := make([]any, 0, len(v.tracks))
	for _, t := range v.tracks {
		arr = append(arr, t.ToArray())
	}
	v.mu.Unlock()

	blob, err := json.Marshal(arr)
	if err != nil {
		return fmt.Errorf("encode tracks: %w", err)
	}
	if err := v.set(ctx, attrTracks, string(blob)); err != nil {
		return err
	}
	if _, err := v.Execute(ctx, "animate", speed); err != nil {
		return err
	}
	return v.Play(ctx)
}

// Play starts front-end animation playback.
func (v *Viewer) Play(ctx context.Context) error { return v.controlAnimation(ctx, "play") }

// Stop stops front-end animation playback and rewinds.
func (v *Viewer) Stop(ctx context.Context) error { return v.controlAnimation(ctx, "stop") }

// Pause pauses front-end animation playback.
func (v *Viewer) Pause(ctx context.Context) error { return v.controlAnimation(ctx, "pause") }

func (v *Viewer) controlAnimation(ctx context.Context, action string) error {
	_, err := v.Execute(ctx, "viewer.controlAnimation", action)
	return err
}
