// Package session implements the dictation session state machine.
//
// A Session owns one recognition stream on an [engine.Engine] plus the
// [LevelMeter] for UI loudness feedback, accumulates the transcript, and
// notifies its host through the four lifecycle callbacks. It is created
// fresh for every dictation attempt and is disposable: once it has ended it
// cannot be restarted.
//
// State machine:
//
//	Idle → Listening → (Idle | Error)
//
// Two event-driven activities interleave while Listening: the engine's
// result/error/end events, and audio frames feeding the level meter. Both
// arrive on the same ordered stream and are handled by a single goroutine,
// which is what guarantees that results are applied in emission order and
// that the transcript handed to OnEnd reflects every result received before
// termination. The meter only reads audio samples — it never touches the
// transcript.
//
// Termination may be initiated by the user (Stop), by the engine (silence
// timeout, backend closing), by an engine error, or by the optional idle
// timeout. All paths converge on the same finish step, which runs exactly
// once: OnEnd is never delivered twice and teardown never double-frees the
// stream, no matter how Stop, Close and a natural end race.
package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ndhoang91/voicap/internal/normalize"
	"github.com/ndhoang91/voicap/pkg/engine"
)

// stopGrace bounds how long Stop waits for the engine to flush in-flight
// results and emit its end event before forcing teardown.
const stopGrace = 3 * time.Second

// State identifies where a [Session] is in its lifecycle.
type State int

const (
	// StateIdle is both the initial and the terminal state.
	StateIdle State = iota

	// StateListening means the engine is capturing and emitting results.
	StateListening

	// StateError is terminal: the engine reported a fault.
	StateError
)

// String returns the human-readable name of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateListening:
		return "LISTENING"
	case StateError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ErrAlreadyStarted is returned by Start when the session has been started
// before. Sessions are single-use; create a new one per dictation attempt.
var ErrAlreadyStarted = errors.New("session: already started")

// ErrNotSupported is returned by Start when the engine reports no
// speech-recognition capability. The host receives the localized message
// through OnError as well.
var ErrNotSupported = errors.New("session: speech recognition not supported")

// Callbacks is the contract between a session and its host. Any field may
// be nil. Callbacks are invoked from the session's event goroutine (and, for
// OnStart and the capability-error OnError, from the Start caller); they
// must not block for long and must not call back into Stop/Close.
type Callbacks struct {
	// OnStart fires once when the engine has begun capturing.
	OnStart func()

	// OnResult fires on every recognized segment with the current interim
	// text (replaced wholesale each event) and the accumulated final text
	// (append-only, never retracted).
	OnResult func(interim, final string)

	// OnError fires with the engine fault code and a localized,
	// user-presentable message. Only the message is meant for display; the
	// code is there for logging and metrics.
	OnError func(code engine.ErrorCode, message string)

	// OnEnd fires exactly once when the session terminates for any reason.
	// The argument is the accumulated final transcript, passed by value so
	// the host never reads shared state that a late result could race with.
	// Hosts run transaction extraction from here.
	OnEnd func(final string)
}

// Options configures one session.
type Options struct {
	// Language is the recognition locale. Empty defaults to "vi-VN".
	Language string

	// Continuous keeps the engine listening across pauses.
	Continuous bool

	// Normalizer, when non-nil, pre-cleans transcript text as it arrives
	// (interim pipeline only — provisional text never gets punctuation or
	// casing inferred).
	Normalizer *normalize.Normalizer

	// IdleTimeout stops the session when no result arrives within the
	// window. Zero disables the timeout; the engine's own silence
	// detection and explicit Stop remain the usual termination triggers.
	IdleTimeout time.Duration
}

// Session is one dictation attempt. All exported methods are safe for
// concurrent use.
type Session struct {
	eng  engine.Engine
	opts Options
	cb   Callbacks

	meter *LevelMeter

	mu       sync.Mutex
	state    State
	started  bool
	ended    bool
	cleaned  bool
	interim  string
	final    string
	stream   engine.Stream
	cancel   context.CancelFunc
	idleTick *time.Timer

	done chan struct{}
}

// New creates an idle session on the given engine.
func New(eng engine.Engine, opts Options, cb Callbacks) *Session {
	if opts.Language == "" {
		opts.Language = "vi-VN"
	}
	return &Session{
		eng:   eng,
		opts:  opts,
		cb:    cb,
		meter: NewLevelMeter(),
		done:  make(chan struct{}),
	}
}

// Start transitions Idle → Listening: it checks engine capability, opens the
// recognition stream, starts consuming events, and invokes OnStart.
//
// When the engine is not supported, the session reports the capability error
// through OnError, stays Idle, and returns [ErrNotSupported].
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true

	if !s.eng.Supported() {
		s.started = false
		s.mu.Unlock()
		if s.cb.OnError != nil {
			s.cb.OnError(engine.ErrNotSupported, MessageFor(engine.ErrNotSupported))
		}
		return ErrNotSupported
	}

	streamCtx, cancel := context.WithCancel(ctx)
	stream, err := s.eng.Start(streamCtx, engine.Config{
		Language:       s.opts.Language,
		Continuous:     s.opts.Continuous,
		InterimResults: true,
	})
	if err != nil {
		cancel()
		s.started = false
		s.mu.Unlock()
		if s.cb.OnError != nil {
			s.cb.OnError(engine.ErrAudioCapture, MessageFor(engine.ErrAudioCapture))
		}
		return err
	}

	s.stream = stream
	s.cancel = cancel
	s.state = StateListening
	if s.opts.IdleTimeout > 0 {
		s.idleTick = time.AfterFunc(s.opts.IdleTimeout, s.idleExpired)
	}
	s.mu.Unlock()

	go s.loop()

	slog.Debug("session: listening", "language", s.opts.Language, "continuous", s.opts.Continuous)
	if s.cb.OnStart != nil {
		s.cb.OnStart()
	}
	return nil
}

// Stop halts the session on the user's initiative. It asks the engine to
// stop, waits briefly for in-flight results and the engine's own end event
// so no committed text is lost, then guarantees teardown. Stop is
// idempotent.
func (s *Session) Stop() {
	s.mu.Lock()
	stream := s.stream
	s.mu.Unlock()

	if stream != nil {
		stream.Stop()
		select {
		case <-s.done:
		case <-time.After(stopGrace):
			slog.Warn("session: engine did not end after stop, forcing teardown")
		}
	}
	s.finish()
}

// Close releases all session resources. It implies Stop and is idempotent:
// closing twice (user dismissing the UI while the engine ends naturally)
// neither double-frees nor re-invokes OnEnd.
func (s *Session) Close() error {
	s.finish()
	return nil
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Level returns the current microphone loudness in [0, 1].
func (s *Session) Level() float64 {
	return s.meter.Level()
}

// Transcript returns the current interim and accumulated final text.
func (s *Session) Transcript() (interim, final string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interim, s.final
}

// Done is closed once the event loop has terminated.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// loop consumes the engine's ordered event stream until it ends.
func (s *Session) loop() {
	defer close(s.done)
	for ev := range s.stream.Events() {
		switch ev.Type {
		case engine.EventStarted:
			s.touchIdle()
		case engine.EventResult:
			s.handleResult(ev)
		case engine.EventAudio:
			s.meter.Observe(ev.Frame)
		case engine.EventError:
			s.handleError(ev.Code)
		case engine.EventEnded:
			// Keep draining: the channel closes right after.
		}
	}
	s.finish()
}

// handleResult applies one transcript update: interim text is replaced
// wholesale, final text is appended and never retracted. An interim update
// arriving after a final segment cannot overwrite it — the two accumulate
// independently.
func (s *Session) handleResult(ev engine.Event) {
	interim := ev.Interim
	segment := ev.Final
	if n := s.opts.Normalizer; n != nil {
		interim = n.Interim(interim)
		segment = n.Interim(segment)
	}

	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	s.interim = interim
	if segment != "" {
		if s.final == "" {
			s.final = segment
		} else {
			s.final = s.final + " " + strings.TrimSpace(segment)
		}
	}
	interim, final := s.interim, s.final
	s.mu.Unlock()

	s.touchIdle()
	if s.cb.OnResult != nil {
		s.cb.OnResult(interim, final)
	}
}

// handleError translates the fault into the fixed vocabulary, moves to
// StateError and reports it. Teardown follows exactly as on a normal end.
func (s *Session) handleError(code engine.ErrorCode) {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	s.state = StateError
	s.mu.Unlock()

	slog.Warn("session: engine error", "code", string(code))
	if s.cb.OnError != nil {
		s.cb.OnError(code, MessageFor(code))
	}
}

// idleExpired fires when no result arrived within the idle window.
func (s *Session) idleExpired() {
	s.mu.Lock()
	stream := s.stream
	ended := s.ended
	s.mu.Unlock()
	if ended {
		return
	}
	slog.Info("session: idle timeout reached, stopping")
	if stream != nil {
		stream.Stop()
	}
	s.finish()
}

// touchIdle pushes the idle deadline out after activity.
func (s *Session) touchIdle() {
	s.mu.Lock()
	t := s.idleTick
	s.mu.Unlock()
	if t != nil {
		t.Reset(s.opts.IdleTimeout)
	}
}

// finish is the single convergence point for every termination path. The
// first caller snapshots the final transcript, releases resources and
// delivers OnEnd; later callers find ended set and return after making sure
// cleanup ran. A session that never started has nothing to end: Stop or
// Close on it must not deliver OnEnd.
func (s *Session) finish() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	if s.ended {
		s.mu.Unlock()
		s.cleanup()
		return
	}
	s.ended = true
	final := s.final
	if s.state == StateListening {
		s.state = StateIdle
	}
	s.mu.Unlock()

	s.cleanup()

	slog.Debug("session: ended", "final_len", len(final))
	if s.cb.OnEnd != nil {
		s.cb.OnEnd(final)
	}
}

// cleanup releases the stream and cancels the stream context exactly once.
func (s *Session) cleanup() {
	s.mu.Lock()
	if s.cleaned {
		s.mu.Unlock()
		return
	}
	s.cleaned = true
	stream := s.stream
	cancel := s.cancel
	timer := s.idleTick
	s.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}
	if stream != nil {
		_ = stream.Close()
	}
	if cancel != nil {
		cancel()
	}
}
