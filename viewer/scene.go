package viewer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/vertexfoundry/cadviewer-bridge/attrsync"
	"github.com/vertexfoundry/cadviewer-bridge/internal/logging"
	"github.com/vertexfoundry/cadviewer-bridge/internal/observability"
)

// SceneOptions carries the per-scene display configuration applied by
// SubmitScene. The zero value is not useful; start from DefaultSceneOptions.
type SceneOptions struct {
	Tracks []AnimationTrack

	Ortho   bool
	Control string // ControlTrackball or ControlOrbit
	Axes    bool
	Axes0   bool
	Grid    *[3]bool // nil means no grid on any plane
	Ticks   int

	Transparent      bool
	BlackEdges       bool
	EdgeColor        string
	AmbientIntensity float64
	DirectIntensity  float64

	// Camera placement, honored only when ResetCamera is set. Nil fields
	// let the front-end fit the camera to the scene.
	Position   *[3]float64
	Quaternion *[4]float64
	Zoom       *float64

	ResetCamera   bool
	Timeit        bool
	AnimationLoop bool
}

// DefaultSceneOptions returns the options SubmitScene applies when the caller
// passes nil.
func DefaultSceneOptions() SceneOptions {
	return SceneOptions{
		Ortho:            true,
		Control:          ControlTrackball,
		Ticks:            10,
		EdgeColor:        "#707070",
		AmbientIntensity: 0.9,
		DirectIntensity:  0.12,
		ResetCamera:      true,
		AnimationLoop:    true,
	}
}

// SubmitScene replaces the rendered scene. The shapes value is serialized to
// the JSON blob the front-end renders, states maps every navigation tree node
// to its [shown, selected] pair, and opts configures the display (nil applies
// DefaultSceneOptions).
//
// The front-end observes the whole submission as one coherent update: an
// initialize marker, a single atomic batch carrying the scene and display
// attributes, and the marker cleared. Camera placement fields are honored
// only with ResetCamera; a control switch forces a reset and an orbit control
// discards any quaternion, both reported as notices.
func (v *Viewer) SubmitScene(ctx context.Context, shapes any, states map[string][2]int, opts *SceneOptions) error {
	if _, err := v.channelOrErr(); err != nil {
		return err
	}
	ctx = logging.ContextWithViewerID(ctx, v.id)

	o := DefaultSceneOptions()
	if opts != nil {
		o = *opts
	}
	if states == nil {
		states = map[string][2]int{}
	}
	grid := [3]bool{}
	if o.Grid != nil {
		grid = *o.Grid
	}

	blob, err := v.serialize(shapes)
	if err != nil {
		return fmt.Errorf("serialize shapes: %w", err)
	}

	ctx, span := observability.StartSpan(ctx, "viewer.submit_scene",
		attribute.Int("tree_states", len(states)),
		attribute.Int("tracks", len(o.Tracks)))
	defer span.End()
	start := time.Now()

	if err := v.store.Set(ctx, attrInitialize, true); err != nil {
		return err
	}

	// Switching the control type invalidates the current camera pose, so a
	// reset is forced even when the caller asked to keep the camera.
	if v.store.String(attrControl) != o.Control {
		o.ResetCamera = true
		v.noticef(ctx, "camera control changed to %q, camera was reset", o.Control)
	}
	if o.Control == ControlOrbit && o.Quaternion != nil {
		o.Quaternion = nil
		v.noticef(ctx, "camera quaternion cannot be used with orbit camera control")
	}

	batched := 0
	gerr := v.store.GroupWrites(ctx, func(g *attrsync.Group) error {
		writes := []attrsync.Update{
			{Name: attrShapes, Value: string(blob)},
			{Name: attrStates, Value: states},
			{Name: attrEdgeColor, Value: normalizeHexColor(o.EdgeColor)},
			{Name: attrAmbientIntensity, Value: o.AmbientIntensity},
			{Name: attrDirectIntensity, Value: o.DirectIntensity},
			{Name: attrAxes, Value: o.Axes},
			{Name: attrAxes0, Value: o.Axes0},
			{Name: attrGrid, Value: grid},
			{Name: attrTicks, Value: o.Ticks},
			{Name: attrOrtho, Value: o.Ortho},
			{Name: attrControl, Value: o.Control},
			{Name: attrTransparent, Value: o.Transparent},
			{Name: attrBlackEdges, Value: o.BlackEdges},
			{Name: attrTimeit, Value: o.Timeit},
			{Name: attrAnimationLoop, Value: o.AnimationLoop},
		}
		if o.ResetCamera {
			writes = append(writes,
				attrsync.Update{Name: attrPosition, Value: o.Position},
				attrsync.Update{Name: attrQuaternion, Value: o.Quaternion},
				attrsync.Update{Name: attrZoom, Value: o.Zoom},
			)
		} else {
			if o.Position != nil {
				v.noticef(ctx, "scene option position needs ResetCamera")
			}
			if o.Quaternion != nil {
				v.noticef(ctx, "scene option quaternion needs ResetCamera")
			}
			if o.Zoom != nil {
				v.noticef(ctx, "scene option zoom needs ResetCamera")
			}
		}
		for _, w := range writes {
			if err := g.Set(w.Name, w.Value); err != nil {
				return err
			}
		}
		v.ReplaceTracks(o.Tracks)
		batched = len(writes)
		return nil
	})

	// The initialize marker is cleared even when the batch failed, so the
	// front-end never stays stuck in the initializing state.
	ferr := v.store.Set(ctx, attrInitialize, false)
	if gerr != nil {
		span.RecordError(gerr)
		return fmt.Errorf("submit scene: %w", gerr)
	}
	if ferr != nil {
		return ferr
	}

	v.metrics.ObserveSubmit(time.Since(start), batched)
	v.metrics.SetSceneCounts(len(states), len(o.Tracks))
	v.log.Info(ctx, "scene submitted",
		logging.Int("shape_bytes", len(blob)),
		logging.Int("tree_states", len(states)),
		logging.Int("tracks", len(o.Tracks)),
		logging.Bool("reset_camera", o.ResetCamera))
	return nil
}

// UpdateTreeStates pushes incremental visibility changes for navigation tree
// nodes without resubmitting the scene. Keys are tree node paths, values the
// [shown, selected] pair for each.
func (v *Viewer) UpdateTreeStates(ctx context.Context, states map[string][2]int) error {
	ctx = logging.ContextWithViewerID(ctx, v.id)
	return v.set(ctx, attrStateUpdates, states)
}

// normalizeHexColor prepends the "#" the front-end expects when the caller
// passed a bare hex value.
func normalizeHexColor(c string) string {
	if strings.HasPrefix(c, "#") {
		return c
	}
	return "#" + c
}
