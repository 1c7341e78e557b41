package viewer

import (
	"context"
	"fmt"

	"github.com/vertexfoundry/cadviewer-bridge/internal/logging"
)

// SetCamera repositions the camera. Trackball control needs both position and
// quaternion and writes the quaternion first so the front-end never renders a
// mixed pose; orbit control derives its own orientation and accepts position
// only.
func (v *Viewer) SetCamera(ctx context.Context, position [3]float64, quaternion *[4]float64) error {
	if _, err := v.channelOrErr(); err != nil {
		return err
	}
	ctx = logging.ContextWithViewerID(ctx, v.id)

	switch v.store.String(attrControl) {
	case ControlTrackball:
		if quaternion == nil {
			return fmt.Errorf("%w: trackball control needs both position and quaternion", ErrModeConflict)
		}
		if err := v.set(ctx, attrQuaternion, *quaternion); err != nil {
			return err
		}
		return v.set(ctx, attrPosition, position)
	case ControlOrbit:
		if quaternion != nil {
			return fmt.Errorf("%w: orbit control does not support setting a quaternion", ErrModeConflict)
		}
		return v.set(ctx, attrPosition, position)
	default:
		return fmt.Errorf("%w: unknown camera control %q", ErrModeConflict, v.store.String(attrControl))
	}
}

// SelectTree raises the navigation tree tab. Clip planes are switched off
// while the tree is shown; the current setting is remembered and restored by
// SelectClipping.
func (v *Viewer) SelectTree(ctx context.Context) error {
	if _, err := v.channelOrErr(); err != nil {
		return err
	}
	ctx = logging.ContextWithViewerID(ctx, v.id)

	v.mu.Lock()
	v.savedClip = v.store.Bool(attrClipPlanes)
	v.mu.Unlock()

	if err := v.set(ctx, attrClipPlanes, false); err != nil {
		return err
	}
	return v.set(ctx, attrTab, TabTree)
}

// SelectClipping raises the clipping tab and restores the clip plane setting
// remembered by the last SelectTree.
func (v *Viewer) SelectClipping(ctx context.Context) error {
	if _, err := v.channelOrErr(); err != nil {
		return err
	}
	ctx = logging.ContextWithViewerID(ctx, v.id)

	if err := v.set(ctx, attrTab, TabClip); err != nil {
		return err
	}
	v.mu.Lock()
	saved := v.savedClip
	v.mu.Unlock()
	return v.set(ctx, attrClipPlanes, saved)
}
