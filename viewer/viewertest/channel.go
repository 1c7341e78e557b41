// Package viewertest provides an in-memory presentation channel for testing
// code that drives a viewer. The Channel records every attribute push and
// method message, injects transport failures on demand, and can play the
// remote front-end by feeding updates back into the bound store.
package viewertest

import (
	"context"
	"slices"
	"sync"

	"github.com/vertexfoundry/cadviewer-bridge/attrsync"
)

// Message is one recorded fire-and-forget method message.
type Message struct {
	Payload []byte
	Buffers [][]byte
}

// Channel implements attrsync.Channel and attrsync.RemoteSource. The zero
// value is not usable; construct with NewChannel. All methods are safe for
// concurrent use.
type Channel struct {
	mu       sync.Mutex
	pushes   [][]attrsync.Update
	messages []Message
	pushErr  error
	sendErr  error
	remote   func([]attrsync.Update)
}

// NewChannel returns an empty recording channel.
func NewChannel() *Channel {
	return &Channel{}
}

// PushAttributes records one attribute batch, or fails with the injected
// push error.
func (c *Channel) PushAttributes(_ context.Context, updates []attrsync.Update) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pushErr != nil {
		return c.pushErr
	}
	c.pushes = append(c.pushes, slices.Clone(updates))
	return nil
}

// SendMessage records one method message, or fails with the injected send
// error.
func (c *Channel) SendMessage(_ context.Context, payload []byte, buffers [][]byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	c.messages = append(c.messages, Message{
		Payload: slices.Clone(payload),
		Buffers: slices.Clone(buffers),
	})
	return nil
}

// OnRemoteUpdate registers the store's remote-update sink; the bound store
// calls this through attrsync.RemoteSource during Bind.
func (c *Channel) OnRemoteUpdate(fn func([]attrsync.Update)) {
	c.mu.Lock()
	c.remote = fn
	c.mu.Unlock()
}

// EmitRemote plays the front-end writing attributes back, for example a pick
// event updating lastPick. It is a no-op before a store is bound.
func (c *Channel) EmitRemote(updates ...attrsync.Update) {
	c.mu.Lock()
	fn := c.remote
	c.mu.Unlock()
	if fn != nil {
		fn(updates)
	}
}

// FailPushes makes subsequent PushAttributes calls return err; nil restores
// normal recording.
func (c *Channel) FailPushes(err error) {
	c.mu.Lock()
	c.pushErr = err
	c.mu.Unlock()
}

// FailSends makes subsequent SendMessage calls return err; nil restores
// normal recording.
func (c *Channel) FailSends(err error) {
	c.mu.Lock()
	c.sendErr = err
	c.mu.Unlock()
}

// Pushes returns every recorded attribute batch in arrival order.
func (c *Channel) Pushes() [][]attrsync.Update {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]attrsync.Update, len(c.pushes))
	for i, p := range c.pushes {
		out[i] = slices.Clone(p)
	}
	return out
}

// LastPush returns the most recent attribute batch, nil when nothing was
// pushed.
func (c *Channel) LastPush() []attrsync.Update {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.pushes) == 0 {
		return nil
	}
	return slices.Clone(c.pushes[len(c.pushes)-1])
}

// PushCount returns the number of attribute batches recorded.
func (c *Channel) PushCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pushes)
}

// Messages returns every recorded method message in arrival order.
func (c *Channel) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.messages)
}

// MessageCount returns the number of method messages recorded.
func (c *Channel) MessageCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// ValuesFor returns every value pushed for one attribute across all batches,
// in arrival order.
func (c *Channel) ValuesFor(name string) []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []any
	for _, batch := range c.pushes {
		for _, up := range batch {
			if up.Name == name {
				out = append(out, up.Value)
			}
		}
	}
	return out
}

// Reset drops everything recorded so far, keeping injected errors and the
// remote sink.
func (c *Channel) Reset() {
	c.mu.Lock()
	c.pushes = nil
	c.messages = nil
	c.mu.Unlock()
}
