// Package script loads the YAML session scripts replayed by viewer-sim: an
// optional opening scene plus an ordered list of viewer operations.
package script

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vertexfoundry/cadviewer-bridge/viewer"
)

// Step operations understood by the runner.
const (
	OpSet         = "set"
	OpStates      = "states"
	OpCamera      = "camera"
	OpTrack       = "track"
	OpClearTracks = "clear_tracks"
	OpAnimate     = "animate"
	OpPlay        = "play"
	OpStop        = "stop"
	OpPause       = "pause"
	OpTab         = "tab"
	OpExecute     = "execute"
)

// Script is one replayable viewer session.
type Script struct {
	Scene *Scene
	Steps []Step
}

// Scene describes the opening scene submission. ShapesFile names a JSON
// payload on disk and wins over the inline Shapes value; Options starts from
// the viewer defaults with only the scripted fields overridden.
type Scene struct {
	ShapesFile string
	Shapes     any
	States     map[string][2]int
	Options    viewer.SceneOptions
}

// Step is one scripted viewer operation. Only the fields of its Op are
// meaningful; Delay is honored before the step runs.
type Step struct {
	Op    string
	Delay time.Duration

	// set
	Attribute string
	Value     any

	// states
	States map[string][2]int

	// camera
	Position   [3]float64
	Quaternion *[4]float64

	// track
	Path   string
	Action string
	Times  []float64
	Values []float64

	// animate
	Speed float64

	// tab
	Name string

	// execute
	Method string
	Args   []any
}

// internal YAML shapes, kept unexported so the file format can evolve.
type scriptYAML struct {
	Scene *sceneYAML `yaml:"scene"`
	Steps []stepYAML `yaml:"steps"`
}

type sceneYAML struct {
	ShapesFile string           `yaml:"shapes_file"`
	Shapes     any              `yaml:"shapes"`
	States     map[string][]int `yaml:"states"`
	Options    *optionsYAML     `yaml:"options"`
}

// optionsYAML overlays viewer.DefaultSceneOptions: absent fields keep the
// default, present fields override it.
type optionsYAML struct {
	Ortho            *bool     `yaml:"ortho"`
	Control          *string   `yaml:"control"`
	Axes             *bool     `yaml:"axes"`
	Axes0            *bool     `yaml:"axes0"`
	Grid             []bool    `yaml:"grid"`
	Ticks            *int      `yaml:"ticks"`
	Transparent      *bool     `yaml:"transparent"`
	BlackEdges       *bool     `yaml:"black_edges"`
	EdgeColor        *string   `yaml:"edge_color"`
	AmbientIntensity *float64  `yaml:"ambient_intensity"`
	DirectIntensity  *float64  `yaml:"direct_intensity"`
	Position         []float64 `yaml:"position"`
	Quaternion       []float64 `yaml:"quaternion"`
	Zoom             *float64  `yaml:"zoom"`
	ResetCamera      *bool     `yaml:"reset_camera"`
	Timeit           *bool     `yaml:"timeit"`
	AnimationLoop    *bool     `yaml:"animation_loop"`
}

type stepYAML struct {
	Op         string           `yaml:"op"`
	DelayMS    int              `yaml:"delay_ms"`
	Attribute  string           `yaml:"attribute"`
	Value      any              `yaml:"value"`
	States     map[string][]int `yaml:"states"`
	Position   []float64        `yaml:"position"`
	Quaternion []float64        `yaml:"quaternion"`
	Path       string           `yaml:"path"`
	Action     string           `yaml:"action"`
	Times      []float64        `yaml:"times"`
	Values     []float64        `yaml:"values"`
	Speed      float64          `yaml:"speed"`
	Name       string           `yaml:"name"`
	Method     string           `yaml:"method"`
	Args       []any            `yaml:"args"`
}

// Load reads and parses a session script from path.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML session script.
//
// Parsing fails only on structural problems: unknown ops, required fields
// missing, fixed-size vectors with the wrong length. Value-level validation
// (attribute kinds, enums, track lengths) stays with the viewer so a script
// failure reports the same error an embedding program would see.
func Parse(data []byte) (*Script, error) {
	var payload scriptYAML
	if err := yaml.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}

	out := &Script{}

	if payload.Scene != nil {
		scene, err := convertScene(payload.Scene)
		if err != nil {
			return nil, err
		}
		out.Scene = scene
	}

	out.Steps = make([]Step, 0, len(payload.Steps))
	for i, raw := range payload.Steps {
		step, err := convertStep(raw)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		out.Steps = append(out.Steps, step)
	}

	return out, nil
}

func convertScene(sc *sceneYAML) (*Scene, error) {
	states, err := statePairs(sc.States)
	if err != nil {
		return nil, fmt.Errorf("scene states: %w", err)
	}

	opts := viewer.DefaultSceneOptions()
	if o := sc.Options; o != nil {
		if o.Ortho != nil {
			opts.Ortho = *o.Ortho
		}
		if o.Control != nil {
			opts.Control = *o.Control
		}
		if o.Axes != nil {
			opts.Axes = *o.Axes
		}
		if o.Axes0 != nil {
			opts.Axes0 = *o.Axes0
		}
		if o.Grid != nil {
			grid, err := vec3Bool(o.Grid)
			if err != nil {
				return nil, fmt.Errorf("scene options grid: %w", err)
			}
			opts.Grid = &grid
		}
		if o.Ticks != nil {
			opts.Ticks = *o.Ticks
		}
		if o.Transparent != nil {
			opts.Transparent = *o.Transparent
		}
		if o.BlackEdges != nil {
			opts.BlackEdges = *o.BlackEdges
		}
		if o.EdgeColor != nil {
			opts.EdgeColor = *o.EdgeColor
		}
		if o.AmbientIntensity != nil {
			opts.AmbientIntensity = *o.AmbientIntensity
		}
		if o.DirectIntensity != nil {
			opts.DirectIntensity = *o.DirectIntensity
		}
		if o.Position != nil {
			pos, err := vec3(o.Position)
			if err != nil {
				return nil, fmt.Errorf("scene options position: %w", err)
			}
			opts.Position = &pos
		}
		if o.Quaternion != nil {
			quat, err := vec4(o.Quaternion)
			if err != nil {
				return nil, fmt.Errorf("scene options quaternion: %w", err)
			}
			opts.Quaternion = &quat
		}
		if o.Zoom != nil {
			opts.Zoom = o.Zoom
		}
		if o.ResetCamera != nil {
			opts.ResetCamera = *o.ResetCamera
		}
		if o.Timeit != nil {
			opts.Timeit = *o.Timeit
		}
		if o.AnimationLoop != nil {
			opts.AnimationLoop = *o.AnimationLoop
		}
	}

	return &Scene{
		ShapesFile: sc.ShapesFile,
		Shapes:     sc.Shapes,
		States:     states,
		Options:    opts,
	}, nil
}

func convertStep(raw stepYAML) (Step, error) {
	if raw.DelayMS < 0 {
		return Step{}, fmt.Errorf("negative delay_ms %d", raw.DelayMS)
	}

	step := Step{
		Op:    raw.Op,
		Delay: time.Duration(raw.DelayMS) * time.Millisecond,
	}

	switch raw.Op {
	case OpSet:
		if raw.Attribute == "" {
			return Step{}, fmt.Errorf("set needs an attribute")
		}
		step.Attribute = raw.Attribute
		step.Value = raw.Value

	case OpStates:
		states, err := statePairs(raw.States)
		if err != nil {
			return Step{}, err
		}
		if len(states) == 0 {
			return Step{}, fmt.Errorf("states needs at least one entry")
		}
		step.States = states

	case OpCamera:
		pos, err := vec3(raw.Position)
		if err != nil {
			return Step{}, fmt.Errorf("camera position: %w", err)
		}
		step.Position = pos
		if raw.Quaternion != nil {
			quat, err := vec4(raw.Quaternion)
			if err != nil {
				return Step{}, fmt.Errorf("camera quaternion: %w", err)
			}
			step.Quaternion = &quat
		}

	case OpTrack:
		if raw.Path == "" || raw.Action == "" {
			return Step{}, fmt.Errorf("track needs path and action")
		}
		step.Path = raw.Path
		step.Action = raw.Action
		step.Times = raw.Times
		step.Values = raw.Values

	case OpClearTracks, OpPlay, OpStop, OpPause:
		// no fields

	case OpAnimate:
		step.Speed = raw.Speed
		if step.Speed == 0 {
			step.Speed = 1
		}

	case OpTab:
		if raw.Name != "tree" && raw.Name != "clip" {
			return Step{}, fmt.Errorf("tab name %q, want tree or clip", raw.Name)
		}
		step.Name = raw.Name

	case OpExecute:
		if raw.Method == "" {
			return Step{}, fmt.Errorf("execute needs a method")
		}
		step.Method = raw.Method
		step.Args = raw.Args

	default:
		return Step{}, fmt.Errorf("unknown op %q", raw.Op)
	}

	return step, nil
}

func statePairs(in map[string][]int) (map[string][2]int, error) {
	if in == nil {
		return nil, nil
	}
	out := make(map[string][2]int, len(in))
	for path, pair := range in {
		if len(pair) != 2 {
			return nil, fmt.Errorf("node %q has %d state values, want 2", path, len(pair))
		}
		out[path] = [2]int{pair[0], pair[1]}
	}
	return out, nil
}

func vec3(in []float64) ([3]float64, error) {
	if len(in) != 3 {
		return [3]float64{}, fmt.Errorf("got %d components, want 3", len(in))
	}
	return [3]float64{in[0], in[1], in[2]}, nil
}

func vec4(in []float64) ([4]float64, error) {
	if len(in) != 4 {
		return [4]float64{}, fmt.Errorf("got %d components, want 4", len(in))
	}
	return [4]float64{in[0], in[1], in[2], in[3]}, nil
}

func vec3Bool(in []bool) ([3]bool, error) {
	if len(in) != 3 {
		return [3]bool{}, fmt.Errorf("got %d components, want 3", len(in))
	}
	return [3]bool{in[0], in[1], in[2]}, nil
}
