package viewer

import (
	"context"
	"errors"
	"slices"
	"testing"
)

func mustTrack(t *testing.T, path, action string, times, values []float64) AnimationTrack {
	t.Helper()
	track, err := NewAnimationTrack(path, action, times, values)
	if err != nil {
		t.Fatalf("NewAnimationTrack(%s): %v", path, err)
	}
	return track
}

func TestAnimateSendsTracksThenStartsPlayback(t *testing.T) {
	v, ch := newAttachedViewer(t)
	ctx := context.Background()

	v.AddTrack(mustTrack(t, "/box", "t", []float64{0, 1}, []float64{0, 5}))
	v.AddTrack(mustTrack(t, "/arm", "rz", []float64{0, 1}, []float64{0, 90}))

	if err := v.Animate(ctx, 2); err != nil {
		t.Fatalf("Animate: %v", err)
	}

	blobs := ch.ValuesFor("tracks")
	if len(blobs) != 1 {
		t.Fatalf("tracks writes = %d, want 1", len(blobs))
	}
	want := `[["/box","t",[0,1],[0,5]],["/arm","rz",[0,1],[0,90]]]`
	if blobs[0] != want {
		t.Fatalf("tracks blob = %v, want %s", blobs[0], want)
	}

	msgs := ch.Messages()
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want animate then play", len(msgs))
	}
	id, tokens, args := decodeEnvelope(t, msgs[0])
	if id != 1 || !slices.Equal(tokens, []string{"animate"}) || args != `[2]` {
		t.Errorf("first message = (%d, %v, %s), want (1, [animate], [2])", id, tokens, args)
	}
	id, tokens, args = decodeEnvelope(t, msgs[1])
	if id != 2 || !slices.Equal(tokens, []string{"viewer", "controlAnimation"}) || args != `["play"]` {
		t.Errorf("second message = (%d, %v, %s), want (2, [viewer controlAnimation], [\"play\"])", id, tokens, args)
	}
}

func TestAnimateWithoutAnimationLoopFails(t *testing.T) {
	v, ch := newAttachedViewer(t)
	ctx := context.Background()

	opts := DefaultSceneOptions()
	opts.AnimationLoop = false
	if err := v.SubmitScene(ctx, "{}", nil, &opts); err != nil {
		t.Fatalf("SubmitScene: %v", err)
	}
	ch.Reset()

	v.AddTrack(mustTrack(t, "/box", "t", []float64{0}, []float64{0}))
	if err := v.Animate(ctx, 1); !errors.Is(err, ErrModeConflict) {
		t.Fatalf("error = %v, want ErrModeConflict", err)
	}
	if ch.MessageCount() != 0 || ch.PushCount() != 0 {
		t.Error("rejected Animate still produced traffic")
	}
}

func TestClearTracksWritesEmptyArray(t *testing.T) {
	v, ch := newAttachedViewer(t)
	ctx := context.Background()

	v.AddTrack(mustTrack(t, "/box", "t", []float64{0}, []float64{0}))
	if err := v.ClearTracks(ctx); err != nil {
		t.Fatalf("ClearTracks: %v", err)
	}

	if got := len(v.Tracks()); got != 0 {
		t.Fatalf("Tracks = %d after clear, want 0", got)
	}
	last := ch.LastPush()
	if len(last) != 1 || last[0].Name != "tracks" || last[0].Value != "[]" {
		t.Fatalf("push = %+v, want tracks=\"[]\"", last)
	}
}

func TestPlayStopPause(t *testing.T) {
	v, ch := newAttachedViewer(t)
	ctx := context.Background()

	if err := v.Play(ctx); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if err := v.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := v.Pause(ctx); err != nil {
		t.Fatalf("Pause: %v", err)
	}

	msgs := ch.Messages()
	if len(msgs) != 3 {
		t.Fatalf("messages = %d, want 3", len(msgs))
	}
	wantArgs := []string{`["play"]`, `["stop"]`, `["pause"]`}
	for i, msg := range msgs {
		id, tokens, args := decodeEnvelope(t, msg)
		if id != int64(i+1) {
			t.Errorf("message %d id = %d, want %d", i, id, i+1)
		}
		if !slices.Equal(tokens, []string{"viewer", "controlAnimation"}) {
			t.Errorf("message %d tokens = %v", i, tokens)
		}
		if args != wantArgs[i] {
			t.Errorf("message %d args = %s, want %s", i, args, wantArgs[i])
		}
	}
}

func TestAddTrackAccumulates(t *testing.T) {
	v := newTestViewer(t)

	v.AddTrack(mustTrack(t, "/a", "t", nil, nil))
	v.AddTrack(mustTrack(t, "/b", "rx", nil, nil))

	got := v.Tracks()
	if len(got) != 2 || got[0].Path() != "/a" || got[1].Path() != "/b" {
		t.Fatalf("Tracks = %v, want /a then /b", got)
	}
}

func TestReplaceTracksDoesNotAliasCaller(t *testing.T) {
	v := newTestViewer(t)

	first := mustTrack(t, "/a", "t", nil, nil)
	second := mustTrack(t, "/b", "t", nil, nil)
	ts := []AnimationTrack{first}
	v.ReplaceTracks(ts)

	ts[0] = second
	if got := v.Tracks(); got[0].Path() != "/a" {
		t.Fatalf("Tracks[0] = %s after caller mutation, want /a", got[0].Path())
	}
}
