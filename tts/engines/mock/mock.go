// Package mock provides a synthesis engine for testing: it records every
// request it receives and can simulate generation delay and failures.
package mock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/notevox/notevox/tts"
)

// Engine is a fake synthesis backend.
type Engine struct {
	// GenerationDelay is slept on every Speak call when set.
	GenerationDelay time.Duration
	// FailAfter makes Speak fail once this many chunks have succeeded.
	// Zero means never fail.
	FailAfter int

	mu       sync.Mutex
	sessions []tts.SessionParams
	spoken   []tts.SpeakRequest
	stopped  int
	closed   bool
}

var _ tts.Engine = (*Engine)(nil)

// New creates a mock engine.
func New() *Engine {
	return &Engine{}
}

// Ping always succeeds while the engine is open.
func (e *Engine) Ping(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return tts.ErrEngineClosed
	}
	return nil
}

// StartSession records the session parameters.
func (e *Engine) StartSession(_ context.Context, params tts.SessionParams) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return tts.ErrEngineClosed
	}
	e.sessions = append(e.sessions, params)
	return nil
}

// Speak records the request, simulating delay and injected failures.
func (e *Engine) Speak(ctx context.Context, req tts.SpeakRequest) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return tts.ErrEngineClosed
	}
	if e.FailAfter > 0 && len(e.spoken) >= e.FailAfter {
		e.mu.Unlock()
		return fmt.Errorf("%w: injected failure", tts.ErrBackendError)
	}
	e.spoken = append(e.spoken, req)
	delay := e.GenerationDelay
	e.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil
}

// Stop records the stop request.
func (e *Engine) Stop(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return tts.ErrEngineClosed
	}
	e.stopped++
	return nil
}

// Close marks the engine closed.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

// Sessions returns a copy of the recorded session starts.
func (e *Engine) Sessions() []tts.SessionParams {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]tts.SessionParams(nil), e.sessions...)
}

// Spoken returns a copy of the recorded speak requests in order.
func (e *Engine) Spoken() []tts.SpeakRequest {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]tts.SpeakRequest(nil), e.spoken...)
}

// Stopped returns how many times Stop was called.
func (e *Engine) Stopped() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stopped
}
