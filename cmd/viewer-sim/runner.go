package main

import (
	"context"
	"fmt"
	"time"

	"github.com/vertexfoundry/cadviewer-bridge/internal/logging"
	"github.com/vertexfoundry/cadviewer-bridge/internal/observability"
	"github.com/vertexfoundry/cadviewer-bridge/internal/pacing"
	"github.com/vertexfoundry/cadviewer-bridge/internal/script"
	"github.com/vertexfoundry/cadviewer-bridge/viewer"
)

// runScript replays every step against an attached viewer, honoring scripted
// delays through the pacer and stopping at the first failure.
func runScript(ctx context.Context, v *viewer.Viewer, steps []script.Step, pacer *pacing.Pacer, metrics *observability.RunnerCollector, log logging.Logger) error {
	metrics.SetScriptSteps(len(steps))

	for i, step := range steps {
		if err := pacer.Wait(ctx, step.Delay); err != nil {
			return fmt.Errorf("step %d (%s): %w", i, step.Op, err)
		}

		started := time.Now()
		err := applyStep(ctx, v, step)
		metrics.ObserveStep(step.Op, time.Since(started))
		if err != nil {
			metrics.IncStepFailure()
			return fmt.Errorf("step %d (%s): %w", i, step.Op, err)
		}

		log.Debug(ctx, "applied step", logging.Int("step", i), logging.String("op", step.Op))
	}

	return nil
}

func applyStep(ctx context.Context, v *viewer.Viewer, step script.Step) error {
	switch step.Op {
	case script.OpSet:
		if err := applySet(ctx, v, step.Attribute, step.Value); err != nil {
			return fmt.Errorf("set %s: %w", step.Attribute, err)
		}
		return nil
	case script.OpStates:
		return v.UpdateTreeStates(ctx, step.States)
	case script.OpCamera:
		return v.SetCamera(ctx, step.Position, step.Quaternion)
	case script.OpTrack:
		track, err := viewer.NewAnimationTrack(step.Path, step.Action, step.Times, step.Values)
		if err != nil {
			return err
		}
		v.AddTrack(track)
		return nil
	case script.OpClearTracks:
		return v.ClearTracks(ctx)
	case script.OpAnimate:
		return v.Animate(ctx, step.Speed)
	case script.OpPlay:
		return v.Play(ctx)
	case script.OpStop:
		return v.Stop(ctx)
	case script.OpPause:
		return v.Pause(ctx)
	case script.OpTab:
		if step.Name == "clip" {
			return v.SelectClipping(ctx)
		}
		return v.SelectTree(ctx)
	case script.OpExecute:
		_, err := v.Execute(ctx, step.Method, step.Args...)
		return err
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}
}

// applySet maps a registry slot name to its typed setter, coercing the YAML
// value to the setter's shape.
func applySet(ctx context.Context, v *viewer.Viewer, attribute string, value any) error {
	switch attribute {
	case "transparent", "black_edges", "ortho", "axes", "axes0",
		"clip_intersection", "clip_planes", "tools", "js_debug":
		b, err := asBool(value)
		if err != nil {
			return err
		}
		return setBoolAttr(ctx, v, attribute, b)

	case "ambient_intensity", "direct_intensity", "pan_speed", "rotate_speed",
		"zoom_speed", "zoom", "clip_slider_0", "clip_slider_1", "clip_slider_2":
		f, err := asFloat(value)
		if err != nil {
			return err
		}
		return setFloatAttr(ctx, v, attribute, f)

	case "ticks":
		n, err := asInt(value)
		if err != nil {
			return err
		}
		return v.SetTicks(ctx, n)

	case "edge_color":
		s, err := asString(value)
		if err != nil {
			return err
		}
		return v.SetEdgeColor(ctx, s)

	case "grid":
		grid, err := asBool3(value)
		if err != nil {
			return err
		}
		return v.SetGrid(ctx, grid)

	case "clip_normal_0", "clip_normal_1", "clip_normal_2":
		normal, err := asFloat3(value)
		if err != nil {
			return err
		}
		return v.SetClipNormal(ctx, planeIndex(attribute), normal)

	case "position":
		position, err := asFloat3(value)
		if err != nil {
			return err
		}
		return v.SetPosition(ctx, position)

	case "quaternion":
		quaternion, err := asFloat4(value)
		if err != nil {
			return err
		}
		return v.SetQuaternion(ctx, quaternion)

	default:
		return fmt.Errorf("no settable attribute %q", attribute)
	}
}

func setBoolAttr(ctx context.Context, v *viewer.Viewer, attribute string, b bool) error {
	switch attribute {
	case "transparent":
		return v.SetTransparent(ctx, b)
	case "black_edges":
		return v.SetBlackEdges(ctx, b)
	case "ortho":
		return v.SetOrtho(ctx, b)
	case "axes":
		return v.SetAxes(ctx, b)
	case "axes0":
		return v.SetAxes0(ctx, b)
	case "clip_intersection":
		return v.SetClipIntersection(ctx, b)
	case "clip_planes":
		return v.SetClipPlanes(ctx, b)
	case "tools":
		return v.SetTools(ctx, b)
	case "js_debug":
		return v.SetJSDebug(ctx, b)
	}
	return fmt.Errorf("no bool attribute %q", attribute)
}

func setFloatAttr(ctx context.Context, v *viewer.Viewer, attribute string, f float64) error {
	switch attribute {
	case "ambient_intensity":
		return v.SetAmbientIntensity(ctx, f)
	case "direct_intensity":
		return v.SetDirectIntensity(ctx, f)
	case "pan_speed":
		return v.SetPanSpeed(ctx, f)
	case "rotate_speed":
		return v.SetRotateSpeed(ctx, f)
	case "zoom_speed":
		return v.SetZoomSpeed(ctx, f)
	case "zoom":
		return v.SetZoom(ctx, f)
	case "clip_slider_0", "clip_slider_1", "clip_slider_2":
		return v.SetClipValue(ctx, planeIndex(attribute), f)
	}
	return fmt.Errorf("no float attribute %q", attribute)
}

// planeIndex reads the trailing digit of clip_normal_N / clip_slider_N.
func planeIndex(attribute string) int {
	return int(attribute[len(attribute)-1] - '0')
}

func asBool(v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("value %v (%T) is not a bool", v, v)
	}
	return b, nil
}

func asFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	}
	return 0, fmt.Errorf("value %v (%T) is not a number", v, v)
}

func asInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	}
	return 0, fmt.Errorf("value %v (%T) is not an integer", v, v)
}

func asString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("value %v (%T) is not a string", v, v)
	}
	return s, nil
}

func asFloatSlice(v any, n int) ([]float64, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("value %v (%T) is not a list", v, v)
	}
	if len(items) != n {
		return nil, fmt.Errorf("got %d components, want %d", len(items), n)
	}
	out := make([]float64, n)
	for i, item := range items {
		f, err := asFloat(item)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

func asFloat3(v any) ([3]float64, error) {
	s, err := asFloatSlice(v, 3)
	if err != nil {
		return [3]float64{}, err
	}
	return [3]float64{s[0], s[1], s[2]}, nil
}

func asFloat4(v any) ([4]float64, error) {
	s, err := asFloatSlice(v, 4)
	if err != nil {
		return [4]float64{}, err
	}
	return [4]float64{s[0], s[1], s[2], s[3]}, nil
}

func asBool3(v any) ([3]bool, error) {
	items, ok := v.([]any)
	if !ok {
		return [3]bool{}, fmt.Errorf("value %v (%T) is not a list", v, v)
	}
	if len(items) != 3 {
		return [3]bool{}, fmt.Errorf("got %d components, want 3", len(items))
	}
	var out [3]bool
	for i, item := range items {
		b, err := asBool(item)
		if err != nil {
			return [3]bool{}, err
		}
		out[i] = b
	}
	return out, nil
}
