package attrsync

import (
	"context"
	"encoding/json"
	"io"
	"sync"
)

// Channel is the transport a Store mirrors itself through: a set of named
// attribute slots on the remote side plus a one-way structured message
// primitive. Implementations bridge to the concrete widget/front-end wire.
type Channel interface {
	// PushAttributes delivers one notification unit of committed writes.
	// A grouped batch arrives in a single call.
	PushAttributes(ctx context.Context, updates []Update) error
	// SendMessage transmits a fire-and-forget payload with optional binary
	// buffers attached.
	SendMessage(ctx context.Context, payload []byte, buffers [][]byte) error
}

// RemoteSource is implemented by channels whose remote side can write
// attributes back. Bind registers the store's inbound handler through it.
type RemoteSource interface {
	OnRemoteUpdate(fn func(updates []Update))
}

// Recorder is a Channel that appends one JSON line per event to a writer.
// It backs offline transcripts: every attribute push and every message the
// proxy would have sent, in order.
type Recorder struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewRecorder returns a Recorder writing to w.
func NewRecorder(w io.Writer) *Recorder {
	return &Recorder{enc: json.NewEncoder(w)}
}

type recordedUpdate struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

type recordLine struct {
	Event   string           `json:"event"`
	Updates []recordedUpdate `json:"updates,omitempty"`
	Payload json.RawMessage  `json:"payload,omitempty"`
	Buffers int              `json:"buffers,omitempty"`
}

func (r *Recorder) PushAttributes(ctx context.Context, updates []Update) error {
	line := recordLine{Event: "attributes"}
	for _, up := range updates {
		line.Updates = append(line.Updates, recordedUpdate{Name: up.Name, Value: up.Value})
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enc.Encode(line)
}

func (r *Recorder) SendMessage(ctx context.Context, payload []byte, buffers [][]byte) error {
	line := recordLine{Event: "message", Payload: json.RawMessage(payload), Buffers: len(buffers)}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enc.Encode(line)
}
