package viewer

import "github.com/vertexfoundry/cadviewer-bridge/attrsync"

// Slot names are the wire contract with the front-end widget and must match
// it exactly, including the one camelCase holdout.
const (
	attrCadWidth         = "cad_width"
	attrHeight           = "height"
	attrTreeWidth        = "tree_width"
	attrTheme            = "theme"
	attrShapes           = "shapes"
	attrStates           = "states"
	attrTracks           = "tracks"
	attrAnimationLoop    = "animation_loop"
	attrTimeit           = "timeit"
	attrTools            = "tools"
	attrOrtho            = "ortho"
	attrControl          = "control"
	attrAxes             = "axes"
	attrAxes0            = "axes0"
	attrGrid             = "grid"
	attrTicks            = "ticks"
	attrTransparent      = "transparent"
	attrBlackEdges       = "black_edges"
	attrEdgeColor        = "edge_color"
	attrAmbientIntensity = "ambient_intensity"
	attrDirectIntensity  = "direct_intensity"
	attrTab              = "tab"
	attrClipIntersection = "clip_intersection"
	attrClipPlanes       = "clip_planes"
	attrClipNormal0      = "clip_normal_0"
	attrClipNormal1      = "clip_normal_1"
	attrClipNormal2      = "clip_normal_2"
	attrClipSlider0      = "clip_slider_0"
	attrClipSlider1      = "clip_slider_1"
	attrClipSlider2      = "clip_slider_2"
	attrPosition         = "position"
	attrQuaternion       = "quaternion"
	attrZoom             = "zoom"
	attrZoomSpeed        = "zoom_speed"
	attrPanSpeed         = "pan_speed"
	attrRotateSpeed      = "rotate_speed"
	attrStateUpdates     = "state_updates"
	attrLastPick         = "lastPick"
	attrTarget           = "target"
	attrInitialize       = "initialize"
	attrJSDebug          = "js_debug"
)

// Camera control modes.
const (
	ControlTrackball = "trackball"
	ControlOrbit     = "orbit"
)

// Sidebar tabs.
const (
	TabTree = "tree"
	TabClip = "clip"
)

// registryDescriptors declares every synchronized slot with its default.
// Declaration order is the order the initial snapshot reaches the front-end.
func registryDescriptors(cadWidth, height, treeWidth int, theme string, tools bool) []attrsync.Descriptor {
	return []attrsync.Descriptor{
		{Name: attrCadWidth, Kind: attrsync.KindInt, Default: cadWidth},
		{Name: attrHeight, Kind: attrsync.KindInt, Default: height},
		{Name: attrTreeWidth, Kind: attrsync.KindInt, Default: treeWidth},
		{Name: attrTheme, Kind: attrsync.KindString, Default: theme},

		{Name: attrShapes, Kind: attrsync.KindString, Nullable: true, Default: ""},
		{Name: attrStates, Kind: attrsync.KindStateMap, Nullable: true, Default: map[string][2]int{}},
		{Name: attrTracks, Kind: attrsync.KindString, Nullable: true, Default: ""},
		{Name: attrAnimationLoop, Kind: attrsync.KindBool, Nullable: true, Default: true},
		{Name: attrTimeit, Kind: attrsync.KindBool, Nullable: true, Default: false},
		{Name: attrTools, Kind: attrsync.KindBool, Nullable: true, Default: tools},

		{Name: attrOrtho, Kind: attrsync.KindBool, Nullable: true, Default: false},
		{Name: attrControl, Kind: attrsync.KindString, Enum: []string{ControlTrackball, ControlOrbit}, Default: ControlTrackball},
		{Name: attrAxes, Kind: attrsync.KindBool, Nullable: true, Default: false},
		{Name: attrAxes0, Kind: attrsync.KindBool, Nullable: true, Default: false},
		{Name: attrGrid, Kind: attrsync.KindBool3, Nullable: true, Default: [3]bool{}},
		{Name: attrTicks, Kind: attrsync.KindInt, Nullable: true, Default: 10},
		{Name: attrTransparent, Kind: attrsync.KindBool, Nullable: true, Default: false},
		{Name: attrBlackEdges, Kind: attrsync.KindBool, Nullable: true, Default: false},
		{Name: attrEdgeColor, Kind: attrsync.KindString, Nullable: true, Default: "#707070"},
		{Name: attrAmbientIntensity, Kind: attrsync.KindFloat, Nullable: true, Default: 0.9},
		{Name: attrDirectIntensity, Kind: attrsync.KindFloat, Nullable: true, Default: 0.12},

		{Name: attrTab, Kind: attrsync.KindString, Enum: []string{TabTree, TabClip}, Nullable: true, Default: TabTree},
		{Name: attrClipIntersection, Kind: attrsync.KindBool, Nullable: true, Default: false},
		{Name: attrClipPlanes, Kind: attrsync.KindBool, Nullable: true, Default: false},
		{Name: attrClipNormal0, Kind: attrsync.KindFloat3, Nullable: true, Default: [3]float64{-1, 0, 0}},
		{Name: attrClipNormal1, Kind: attrsync.KindFloat3, Nullable: true, Default: [3]float64{0, -1, 0}},
		{Name: attrClipNormal2, Kind: attrsync.KindFloat3, Nullable: true, Default: [3]float64{0, 0, -1}},
		{Name: attrClipSlider0, Kind: attrsync.KindFloat, Nullable: true, Default: 0.0},
		{Name: attrClipSlider1, Kind: attrsync.KindFloat, Nullable: true, Default: 0.0},
		{Name: attrClipSlider2, Kind: attrsync.KindFloat, Nullable: true, Default: 0.0},

		{Name: attrPosition, Kind: attrsync.KindFloat3, Nullable: true},
		{Name: attrQuaternion, Kind: attrsync.KindFloat4, Nullable: true},
		{Name: attrZoom, Kind: attrsync.KindFloat, Nullable: true},
		{Name: attrZoomSpeed, Kind: attrsync.KindFloat, Nullable: true, Default: 0.5},
		{Name: attrPanSpeed, Kind: attrsync.KindFloat, Nullable: true, Default: 0.5},
		{Name: attrRotateSpeed, Kind: attrsync.KindFloat, Nullable: true, Default: 1.0},

		{Name: attrStateUpdates, Kind: attrsync.KindStateMap, Nullable: true, Default: map[string][2]int{}},
		{Name: attrLastPick, Kind: attrsync.KindAnyMap, Nullable: true, ReadOnly: true, Default: map[string]any{}},
		{Name: attrTarget, Kind: attrsync.KindFloat3, Nullable: true, ReadOnly: true},

		{Name: attrInitialize, Kind: attrsync.KindBool, Nullable: true, Default: false},
		{Name: attrJSDebug, Kind: attrsync.KindBool, Nullable: true, Default: false},
	}
}
