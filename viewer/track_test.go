package viewer

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestNewAnimationTrackLengthMismatch(t *testing.T) {
	_, err := NewAnimationTrack("/box", "t", []float64{0, 1, 2}, []float64{0, 1})
	if !errors.Is(err, ErrTrackLength) {
		t.Fatalf("error = %v, want ErrTrackLength", err)
	}
	if !strings.Contains(err.Error(), "3 times") || !strings.Contains(err.Error(), "2 values") {
		t.Fatalf("error %q does not name both lengths", err)
	}
}

func TestAnimationTrackCopiesInput(t *testing.T) {
	times := []float64{0, 1, 2}
	values := []float64{0, 0.5, 1}
	track, err := NewAnimationTrack("/box", "rx", times, values)
	if err != nil {
		t.Fatalf("NewAnimationTrack: %v", err)
	}

	times[0] = 99
	values[2] = -1
	if got := track.Times(); got[0] != 0 {
		t.Fatalf("Times[0] = %v after caller mutation, want 0", got[0])
	}
	if got := track.Values(); got[2] != 1 {
		t.Fatalf("Values[2] = %v after caller mutation, want 1", got[2])
	}

	// Mutating a returned copy must not leak back either.
	track.Times()[1] = 42
	if got := track.Times(); got[1] != 1 {
		t.Fatalf("Times[1] = %v after copy mutation, want 1", got[1])
	}
}

func TestAnimationTrackToArray(t *testing.T) {
	track, err := NewAnimationTrack("/base/arm", "rz", []float64{0, 2}, []float64{0, 90})
	if err != nil {
		t.Fatalf("NewAnimationTrack: %v", err)
	}

	blob, err := json.Marshal(track.ToArray())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `["/base/arm","rz",[0,2],[0,90]]`
	if string(blob) != want {
		t.Fatalf("ToArray JSON = %s, want %s", blob, want)
	}
}

func TestAnimationTrackEmptySamples(t *testing.T) {
	track, err := NewAnimationTrack("/box", "t", nil, nil)
	if err != nil {
		t.Fatalf("NewAnimationTrack: %v", err)
	}
	if track.Len() != 0 {
		t.Fatalf("Len = %d, want 0", track.Len())
	}

	blob, err := json.Marshal(track.ToArray())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `["/box","t",[],[]]`
	if string(blob) != want {
		t.Fatalf("ToArray JSON = %s, want %s", blob, want)
	}
}
