package viewer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/vertexfoundry/cadviewer-bridge/attrsync"
)

func batchNames(batch []attrsync.Update) []string {
	names := make([]string, len(batch))
	for i, up := range batch {
		names[i] = up.Name
	}
	return names
}

func batchValue(t *testing.T, batch []attrsync.Update, name string) any {
	t.Helper()
	for _, up := range batch {
		if up.Name == name {
			return up.Value
		}
	}
	t.Fatalf("batch carries no %q update", name)
	return nil
}

func TestSubmitSceneDefaultFlow(t *testing.T) {
	v, ch := newAttachedViewer(t)
	ctx := context.Background()

	shapes := map[string]any{"name": "box", "loc": []float64{0, 0, 0}}
	states := map[string][2]int{"/box": {1, 1}}
	if err := v.SubmitScene(ctx, shapes, states, nil); err != nil {
		t.Fatalf("SubmitScene: %v", err)
	}

	pushes := ch.Pushes()
	if len(pushes) != 3 {
		t.Fatalf("PushCount = %d, want initialize/batch/initialize", len(pushes))
	}
	if pushes[0][0].Name != "initialize" || pushes[0][0].Value != true {
		t.Fatalf("first push = %+v, want initialize=true", pushes[0])
	}
	last := pushes[2]
	if last[0].Name != "initialize" || last[0].Value != false {
		t.Fatalf("last push = %+v, want initialize=false", last)
	}

	batch := pushes[1]
	wantOrder := []string{
		"shapes", "states", "edge_color", "ambient_intensity", "direct_intensity",
		"axes", "axes0", "grid", "ticks", "ortho", "control", "transparent",
		"black_edges", "timeit", "animation_loop", "position", "quaternion", "zoom",
	}
	got := batchNames(batch)
	if len(got) != len(wantOrder) {
		t.Fatalf("batch carries %d updates %v, want %d", len(got), got, len(wantOrder))
	}
	for i := range wantOrder {
		if got[i] != wantOrder[i] {
			t.Fatalf("batch[%d] = %q, want %q (full order %v)", i, got[i], wantOrder[i], got)
		}
	}

	var decoded map[string]any
	blob, _ := batchValue(t, batch, "shapes").(string)
	if err := json.Unmarshal([]byte(blob), &decoded); err != nil {
		t.Fatalf("shapes blob is not JSON: %v", err)
	}
	if decoded["name"] != "box" {
		t.Errorf("shapes blob = %s, want serialized box", blob)
	}
	if got := batchValue(t, batch, "ortho"); got != true {
		t.Errorf("ortho = %v, want scene default true", got)
	}
	if got := batchValue(t, batch, "position"); got != nil {
		t.Errorf("position = %v, want nil on default reset", got)
	}
	if !v.Ortho() || !v.AnimationLoop() {
		t.Error("scene defaults not visible through accessors")
	}
}

func TestSubmitSceneControlChangeForcesReset(t *testing.T) {
	var notices []string
	v, ch := newAttachedViewer(t, WithNotices(func(msg string) { notices = append(notices, msg) }))
	ctx := context.Background()

	opts := DefaultSceneOptions()
	opts.Control = ControlOrbit
	opts.ResetCamera = false
	if err := v.SubmitScene(ctx, "{}", nil, &opts); err != nil {
		t.Fatalf("SubmitScene: %v", err)
	}

	if len(notices) != 1 {
		t.Fatalf("notices = %v, want a single control-change notice", notices)
	}
	batch := ch.Pushes()[1]
	got := batchNames(batch)
	if got[len(got)-1] != "zoom" || len(got) != 18 {
		t.Fatalf("batch = %v, want camera writes forced by control change", got)
	}
	if v.Control() != ControlOrbit {
		t.Errorf("Control = %q, want orbit", v.Control())
	}
}

func TestSubmitSceneOrbitDiscardsQuaternion(t *testing.T) {
	var notices []string
	v, ch := newAttachedViewer(t, WithNotices(func(msg string) { notices = append(notices, msg) }))
	ctx := context.Background()

	orbit := DefaultSceneOptions()
	orbit.Control = ControlOrbit
	if err := v.SubmitScene(ctx, "{}", nil, &orbit); err != nil {
		t.Fatalf("first SubmitScene: %v", err)
	}
	notices = nil
	ch.Reset()

	again := DefaultSceneOptions()
	again.Control = ControlOrbit
	again.Quaternion = &[4]float64{0, 0, 0, 1}
	again.Position = &[3]float64{10, 0, 0}
	if err := v.SubmitScene(ctx, "{}", nil, &again); err != nil {
		t.Fatalf("second SubmitScene: %v", err)
	}

	if len(notices) != 1 {
		t.Fatalf("notices = %v, want a single quaternion notice", notices)
	}
	batch := ch.Pushes()[1]
	if got := batchValue(t, batch, "quaternion"); got != nil {
		t.Errorf("quaternion = %v, want discarded nil", got)
	}
	pos := batchValue(t, batch, "position")
	if pos != [3]float64{10, 0, 0} {
		t.Errorf("position = %v, want [10 0 0]", pos)
	}
}

func TestSubmitSceneWithoutResetIgnoresCameraFields(t *testing.T) {
	var notices []string
	v, ch := newAttachedViewer(t, WithNotices(func(msg string) { notices = append(notices, msg) }))
	ctx := context.Background()

	opts := DefaultSceneOptions()
	opts.ResetCamera = false
	opts.Position = &[3]float64{1, 2, 3}
	opts.Quaternion = &[4]float64{0, 0, 0, 1}
	zoom := 2.0
	opts.Zoom = &zoom
	if err := v.SubmitScene(ctx, "{}", nil, &opts); err != nil {
		t.Fatalf("SubmitScene: %v", err)
	}

	if len(notices) != 3 {
		t.Fatalf("notices = %v, want one per ignored camera field", notices)
	}
	batch := ch.Pushes()[1]
	if len(batch) != 15 {
		t.Fatalf("batch carries %d updates %v, want 15 without camera writes", len(batch), batchNames(batch))
	}
	if v.Position() != nil || v.Quaternion() != nil || v.Zoom() != nil {
		t.Error("camera slots written despite ResetCamera=false")
	}
}

func TestSubmitSceneValidationFailureRollsBack(t *testing.T) {
	v, ch := newAttachedViewer(t)
	ctx := context.Background()

	opts := DefaultSceneOptions()
	opts.Control = "fly"
	err := v.SubmitScene(ctx, `{"name":"box"}`, nil, &opts)
	if !errors.Is(err, attrsync.ErrInvalidValue) {
		t.Fatalf("error = %v, want ErrInvalidValue", err)
	}

	// The batch never reached the channel and the initialize marker was
	// cleared again: exactly two single-slot pushes.
	pushes := ch.Pushes()
	if len(pushes) != 2 {
		t.Fatalf("pushes = %d, want initialize toggles only", len(pushes))
	}
	for _, p := range pushes {
		if len(p) != 1 || p[0].Name != "initialize" {
			t.Fatalf("unexpected push %+v", p)
		}
	}
	if shapes, _ := v.store.Get("shapes"); shapes != "" {
		t.Errorf("shapes = %v after rollback, want empty", shapes)
	}
	if v.Control() != ControlTrackball {
		t.Errorf("Control = %q after rollback, want trackball", v.Control())
	}
}

func TestSubmitSceneSerializerFailureSendsNothing(t *testing.T) {
	boom := errors.New("unmappable geometry")
	v, ch := newAttachedViewer(t, WithShapeSerializer(func(any) ([]byte, error) { return nil, boom }))

	err := v.SubmitScene(context.Background(), struct{}{}, nil, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want serializer failure", err)
	}
	if ch.PushCount() != 0 {
		t.Error("failed submission pushed attributes")
	}
}

func TestSubmitSceneRawMessagePassesThrough(t *testing.T) {
	v, ch := newAttachedViewer(t)

	raw := json.RawMessage(`{"pre":"encoded"}`)
	if err := v.SubmitScene(context.Background(), raw, nil, nil); err != nil {
		t.Fatalf("SubmitScene: %v", err)
	}
	batch := ch.Pushes()[1]
	if got := batchValue(t, batch, "shapes"); got != `{"pre":"encoded"}` {
		t.Errorf("shapes = %v, want raw JSON passthrough", got)
	}
}

func TestSubmitSceneReplacesStagedTracks(t *testing.T) {
	v, _ := newAttachedViewer(t)
	ctx := context.Background()

	track, err := NewAnimationTrack("/box", "t", []float64{0, 1}, []float64{0, 1})
	if err != nil {
		t.Fatalf("NewAnimationTrack: %v", err)
	}
	opts := DefaultSceneOptions()
	opts.Tracks = []AnimationTrack{track}
	if err := v.SubmitScene(ctx, "{}", nil, &opts); err != nil {
		t.Fatalf("SubmitScene: %v", err)
	}
	if got := len(v.Tracks()); got != 1 {
		t.Fatalf("Tracks = %d, want 1", got)
	}

	if err := v.SubmitScene(ctx, "{}", nil, nil); err != nil {
		t.Fatalf("second SubmitScene: %v", err)
	}
	if got := len(v.Tracks()); got != 0 {
		t.Fatalf("Tracks = %d after track-less submission, want 0", got)
	}
}

func TestUpdateTreeStates(t *testing.T) {
	v, ch := newAttachedViewer(t)

	states := map[string][2]int{"/box/top": {0, 1}, "/box/side": {1, 0}}
	if err := v.UpdateTreeStates(context.Background(), states); err != nil {
		t.Fatalf("UpdateTreeStates: %v", err)
	}

	last := ch.LastPush()
	if len(last) != 1 || last[0].Name != "state_updates" {
		t.Fatalf("push = %+v, want single state_updates write", last)
	}
	got, ok := last[0].Value.(map[string][2]int)
	if !ok || got["/box/top"] != [2]int{0, 1} {
		t.Fatalf("state_updates = %v, want typed pairs", last[0].Value)
	}
}

func ExampleViewer_SubmitScene() {
	v, _ := New(WithID("example"))
	_ = v.Attach(context.Background(), discardChannel{})

	opts := DefaultSceneOptions()
	opts.Axes = true
	err := v.SubmitScene(context.Background(),
		json.RawMessage(`{"name":"box"}`),
		map[string][2]int{"/box": {1, 1}},
		&opts)
	fmt.Println(err, v.Axes(), v.Ortho())
	// Output: <nil> true true
}

type discardChannel struct{}

func (discardChannel) PushAttributes(context.Context, []attrsync.Update) error { return nil }
func (discardChannel) SendMessage(context.Context, []byte, [][]byte) error     { return nil }
