package attrsync

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestRecorderWritesOneLinePerEvent(t *testing.T) {
	var buf bytes.Buffer
	rec := NewRecorder(&buf)

	err := rec.PushAttributes(context.Background(), []Update{
		{Name: "axes", Value: true},
		{Name: "ticks", Value: 12},
	})
	if err != nil {
		t.Fatalf("PushAttributes = %v, want nil", err)
	}
	if err := rec.SendMessage(context.Background(), []byte(`{"type":"cad_viewer_method","id":1}`), nil); err != nil {
		t.Fatalf("SendMessage = %v, want nil", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("recorded %d lines, want 2", len(lines))
	}

	var push struct {
		Event   string `json:"event"`
		Updates []struct {
			Name  string `json:"name"`
			Value any    `json:"value"`
		} `json:"updates"`
	}
	if err := json.Unmarshal([]byte(lines[0]), &push); err != nil {
		t.Fatalf("unmarshal push line: %v", err)
	}
	if push.Event != "attributes" || len(push.Updates) != 2 {
		t.Fatalf("push line = %+v, want attributes event with 2 updates", push)
	}
	if push.Updates[0].Name != "axes" || push.Updates[1].Name != "ticks" {
		t.Fatalf("push order = %q,%q, want axes,ticks", push.Updates[0].Name, push.Updates[1].Name)
	}

	var msg struct {
		Event   string          `json:"event"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal([]byte(lines[1]), &msg); err != nil {
		t.Fatalf("unmarshal message line: %v", err)
	}
	if msg.Event != "message" {
		t.Fatalf("message line event = %q, want message", msg.Event)
	}
	var envelope struct {
		Type string `json:"type"`
		ID   int64  `json:"id"`
	}
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		t.Fatalf("unmarshal embedded payload: %v", err)
	}
	if envelope.Type != "cad_viewer_method" || envelope.ID != 1 {
		t.Fatalf("payload = %+v, want cad_viewer_method id 1", envelope)
	}
}
