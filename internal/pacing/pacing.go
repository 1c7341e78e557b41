// Package pacing converts script-timeline delays into wall-clock waits for
// session replay.
package pacing

import (
	"context"
	"sync"
	"time"
)

// Mode describes how a Pacer treats scripted delays.
type Mode int

const (
	// Paced honors scripted delays in wall-clock time, scaled by speed.
	Paced Mode = iota
	// Immediate skips all waits while still advancing the script clock.
	Immediate
)

// Pacer replays a script timeline. A speed of 2 plays delays back twice as
// fast; Immediate mode plays them back as fast as the steps execute. The
// script clock advances by the unscaled delay either way, so Elapsed reports
// the same timeline position regardless of mode or speed.
type Pacer struct {
	mu      sync.RWMutex
	speed   float64
	mode    Mode
	elapsed time.Duration
}

// NewPacer constructs a pacer. Speeds <= 0 are treated as 1.
func NewPacer(speed float64, mode Mode) *Pacer {
	if speed <= 0 {
		speed = 1
	}
	return &Pacer{speed: speed, mode: mode}
}

// Wait blocks for d scaled by the configured speed, or returns the context's
// error when ctx ends first. On success the script clock advances by d.
func (p *Pacer) Wait(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if d < 0 {
		d = 0
	}

	if p.mode == Paced && d > 0 {
		timer := time.NewTimer(time.Duration(float64(d) / p.speed))
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	p.mu.Lock()
	p.elapsed += d
	p.mu.Unlock()
	return nil
}

// Elapsed reports the script-timeline position: the sum of all delays waited
// through so far.
func (p *Pacer) Elapsed() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.elapsed
}
