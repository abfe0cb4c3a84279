// Package mock provides test doubles for the engine package interfaces.
//
// Use Engine to verify that the caller starts streams with the expected
// Config and to script the event sequence a session will observe. Use
// Stream directly when a test needs to feed events one at a time.
//
// Example:
//
//	st := mock.NewStream()
//	e := &mock.Engine{Stream: st, SupportedVal: true}
//	// ... start a session against e, then:
//	st.Emit(engine.Event{Type: engine.EventResult, Interim: "xin"})
//	st.End()
package mock

import (
	"context"
	"sync"

	"github.com/ndhoang91/voicap/pkg/engine"
)

// StartCall records a single invocation of Engine.Start.
type StartCall struct {
	// Ctx is the context passed to Start.
	Ctx context.Context
	// Cfg is the Config passed to Start.
	Cfg engine.Config
}

// Engine is a mock implementation of engine.Engine.
type Engine struct {
	mu sync.Mutex

	// SupportedVal is returned by Supported.
	SupportedVal bool

	// Stream is returned by Start. If nil, Start returns a new default
	// Stream with a buffered event channel.
	Stream engine.Stream

	// StartErr, if non-nil, is returned as the error from Start.
	StartErr error

	// StartCalls records every call to Start.
	StartCalls []StartCall
}

// Supported returns SupportedVal.
func (e *Engine) Supported() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.SupportedVal
}

// Start records the call and returns Stream, StartErr.
func (e *Engine) Start(ctx context.Context, cfg engine.Config) (engine.Stream, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.StartCalls = append(e.StartCalls, StartCall{Ctx: ctx, Cfg: cfg})
	if e.StartErr != nil {
		return nil, e.StartErr
	}
	if e.Stream != nil {
		return e.Stream, nil
	}
	return NewStream(), nil
}

// Ensure Engine implements engine.Engine at compile time.
var _ engine.Engine = (*Engine)(nil)

// Stream is a scriptable implementation of engine.Stream. Tests feed events
// with Emit and terminate the stream with End or Fail.
type Stream struct {
	mu sync.Mutex

	events chan engine.Event
	ended  bool

	// StopCalls counts invocations of Stop.
	StopCalls int

	// CloseCalls counts invocations of Close.
	CloseCalls int

	// OnStop, when non-nil, runs on the first Stop call. Use it to emit
	// the trailing EventEnded the way a real backend would.
	OnStop func()
}

// NewStream returns a Stream with a buffered event channel large enough for
// typical test scripts.
func NewStream() *Stream {
	return &Stream{events: make(chan engine.Event, 32)}
}

// Ensure Stream implements engine.Stream at compile time.
var _ engine.Stream = (*Stream)(nil)

// Events returns the scripted event channel.
func (s *Stream) Events() <-chan engine.Event {
	return s.events
}

// Emit delivers ev to the consumer. Emit after End is a no-op so that test
// scripts cannot panic on a closed channel.
func (s *Stream) Emit(ev engine.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.events <- ev
}

// End emits EventEnded and closes the event channel. Safe to call more than
// once.
func (s *Stream) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.ended = true
	s.events <- engine.Event{Type: engine.EventEnded}
	close(s.events)
}

// Fail emits an error event with the given code, then ends the stream.
func (s *Stream) Fail(code engine.ErrorCode) {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	s.events <- engine.Event{Type: engine.EventError, Code: code}
	s.mu.Unlock()
	s.End()
}

// Stop records the call and runs OnStop once.
func (s *Stream) Stop() {
	s.mu.Lock()
	s.StopCalls++
	first := s.StopCalls == 1
	fn := s.OnStop
	s.mu.Unlock()
	if first && fn != nil {
		fn()
	}
}

// Close records the call and ends the stream.
func (s *Stream) Close() error {
	s.mu.Lock()
	s.CloseCalls++
	s.mu.Unlock()
	s.End()
	return nil
}
