package viewer

import (
	"context"
	"fmt"

	"github.com/vertexfoundry/cadviewer-bridge/attrsync"
)

// Typed accessors over the synchronized attribute set. Setters validate
// through the slot descriptor and fail without mutating state; getters read
// the current synchronized value. Attributes owned by the scene submission
// flow (control, timeit, animation_loop) expose getters only.

// Layout and construction-time configuration.

func (v *Viewer) CadWidth() int  { return v.store.Int(attrCadWidth) }
func (v *Viewer) Height() int    { return v.store.Int(attrHeight) }
func (v *Viewer) TreeWidth() int { return v.store.Int(attrTreeWidth) }
func (v *Viewer) Theme() string  { return v.store.String(attrTheme) }
func (v *Viewer) Tools() bool    { return v.store.Bool(attrTools) }
func (v *Viewer) JSDebug() bool  { return v.store.Bool(attrJSDebug) }
func (v *Viewer) Timeit() bool   { return v.store.Bool(attrTimeit) }

func (v *Viewer) Control() string     { return v.store.String(attrControl) }
func (v *Viewer) AnimationLoop() bool { return v.store.Bool(attrAnimationLoop) }

// SetTools toggles the front-end tool bar.
func (v *Viewer) SetTools(ctx context.Context, enabled bool) error {
	return v.set(ctx, attrTools, enabled)
}

// SetJSDebug toggles front-end console debugging.
func (v *Viewer) SetJSDebug(ctx context.Context, enabled bool) error {
	return v.set(ctx, attrJSDebug, enabled)
}

// Render appearance.

func (v *Viewer) AmbientIntensity() float64 { return v.store.Float(attrAmbientIntensity) }
func (v *Viewer) DirectIntensity() float64  { return v.store.Float(attrDirectIntensity) }
func (v *Viewer) EdgeColor() string         { return v.store.String(attrEdgeColor) }
func (v *Viewer) Transparent() bool         { return v.store.Bool(attrTransparent) }
func (v *Viewer) BlackEdges() bool          { return v.store.Bool(attrBlackEdges) }
func (v *Viewer) Ortho() bool               { return v.store.Bool(attrOrtho) }
func (v *Viewer) Axes() bool                { return v.store.Bool(attrAxes) }
func (v *Viewer) Axes0() bool               { return v.store.Bool(attrAxes0) }
func (v *Viewer) Grid() [3]bool             { return v.store.Bool3(attrGrid) }
func (v *Viewer) Ticks() int                { return v.store.Int(attrTicks) }

func (v *Viewer) SetAmbientIntensity(ctx context.Context, intensity float64) error {
	return v.set(ctx, attrAmbientIntensity, intensity)
}

func (v *Viewer) SetDirectIntensity(ctx context.Context, intensity float64) error {
	return v.set(ctx, attrDirectIntensity, intensity)
}

// SetEdgeColor sets the shape edge color, prepending the "#" the front-end
// expects when the caller passed a bare hex value.
func (v *Viewer) SetEdgeColor(ctx context.Context, color string) error {
	return v.set(ctx, attrEdgeColor, normalizeHexColor(color))
}

func (v *Viewer) SetTransparent(ctx context.Context, enabled bool) error {
	return v.set(ctx, attrTransparent, enabled)
}

func (v *Viewer) SetBlackEdges(ctx context.Context, enabled bool) error {
	return v.set(ctx, attrBlackEdges, enabled)
}

func (v *Viewer) SetOrtho(ctx context.Context, enabled bool) error {
	return v.set(ctx, attrOrtho, enabled)
}

func (v *Viewer) SetAxes(ctx context.Context, shown bool) error {
	return v.set(ctx, attrAxes, shown)
}

func (v *Viewer) SetAxes0(ctx context.Context, atOrigin bool) error {
	return v.set(ctx, attrAxes0, atOrigin)
}

// SetGrid toggles the grid per plane: xy, xz, yz.
func (v *Viewer) SetGrid(ctx context.Context, grid [3]bool) error {
	return v.set(ctx, attrGrid, grid)
}

func (v *Viewer) SetTicks(ctx context.Context, ticks int) error {
	return v.set(ctx, attrTicks, ticks)
}

// Clipping. Planes are indexed 0 to 2.

func (v *Viewer) ClipIntersection() bool { return v.store.Bool(attrClipIntersection) }
func (v *Viewer) ClipPlanes() bool       { return v.store.Bool(attrClipPlanes) }

func (v *Viewer) SetClipIntersection(ctx context.Context, enabled bool) error {
	return v.set(ctx, attrClipIntersection, enabled)
}

func (v *Viewer) SetClipPlanes(ctx context.Context, shown bool) error {
	return v.set(ctx, attrClipPlanes, shown)
}

// ClipNormal returns the normal vector of one clipping plane.
func (v *Viewer) ClipNormal(plane int) [3]float64 {
	name, err := clipSlot(clipNormalSlots, plane)
	if err != nil {
		return [3]float64{}
	}
	if n := v.store.Float3(name); n != nil {
		return *n
	}
	return [3]float64{}
}

// SetClipNormal sets the normal vector of one clipping plane.
func (v *Viewer) SetClipNormal(ctx context.Context, plane int, normal [3]float64) error {
	name, err := clipSlot(clipNormalSlots, plane)
	if err != nil {
		return err
	}
	return v.set(ctx, name, normal)
}

// ClipValue returns the slider offset of one clipping plane.
func (v *Viewer) ClipValue(plane int) float64 {
	name, err := clipSlot(clipSliderSlots, plane)
	if err != nil {
		return 0
	}
	return v.store.Float(name)
}

// SetClipValue sets the slider offset of one clipping plane.
func (v *Viewer) SetClipValue(ctx context.Context, plane int, value float64) error {
	name, err := clipSlot(clipSliderSlots, plane)
	if err != nil {
		return err
	}
	return v.set(ctx, name, value)
}

var (
	clipNormalSlots = [3]string{attrClipNormal0, attrClipNormal1, attrClipNormal2}
	clipSliderSlots = [3]string{attrClipSlider0, attrClipSlider1, attrClipSlider2}
)

func clipSlot(slots [3]string, plane int) (string, error) {
	if plane < 0 || plane >= len(slots) {
		return "", fmt.Errorf("%w: clip plane %d", attrsync.ErrUnknownAttribute, plane)
	}
	return slots[plane], nil
}

// Camera.

func (v *Viewer) PanSpeed() float64    { return v.store.Float(attrPanSpeed) }
func (v *Viewer) RotateSpeed() float64 { return v.store.Float(attrRotateSpeed) }
func (v *Viewer) ZoomSpeed() float64   { return v.store.Float(attrZoomSpeed) }

func (v *Viewer) SetPanSpeed(ctx context.Context, speed float64) error {
	return v.set(ctx, attrPanSpeed, speed)
}

func (v *Viewer) SetRotateSpeed(ctx context.Context, speed float64) error {
	return v.set(ctx, attrRotateSpeed, speed)
}

func (v *Viewer) SetZoomSpeed(ctx context.Context, speed float64) error {
	return v.set(ctx, attrZoomSpeed, speed)
}

// Zoom returns the camera zoom, nil before the front-end fitted the scene.
func (v *Viewer) Zoom() *float64 { return v.store.FloatPtr(attrZoom) }

// Position returns the camera position, nil before the front-end fitted the
// scene.
func (v *Viewer) Position() *[3]float64 { return v.store.Float3(attrPosition) }

// Quaternion returns the camera orientation, nil before the front-end fitted
// the scene. Only the trackball control maintains it.
func (v *Viewer) Quaternion() *[4]float64 { return v.store.Float4(attrQuaternion) }

func (v *Viewer) SetZoom(ctx context.Context, zoom float64) error {
	return v.set(ctx, attrZoom, zoom)
}

func (v *Viewer) SetPosition(ctx context.Context, position [3]float64) error {
	return v.set(ctx, attrPosition, position)
}

// SetQuaternion writes the camera orientation directly. Prefer SetCamera,
// which keeps orientation and position coherent.
func (v *Viewer) SetQuaternion(ctx context.Context, quaternion [4]float64) error {
	return v.set(ctx, attrQuaternion, quaternion)
}

// Front-end owned state.

// LastPick returns the last object picked in the front-end, empty when
// nothing was picked yet.
func (v *Viewer) LastPick() map[string]any { return v.store.AnyMap(attrLastPick) }

// Target returns the camera target, nil before the front-end fitted the
// scene.
func (v *Viewer) Target() *[3]float64 { return v.store.Float3(attrTarget) }
