package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ndhoang91/voicap/internal/normalize"
	"github.com/ndhoang91/voicap/internal/session"
	"github.com/ndhoang91/voicap/pkg/engine"
	"github.com/ndhoang91/voicap/pkg/engine/mock"
)

// recorder collects callback invocations for assertions.
type recorder struct {
	mu sync.Mutex
	calls
}

// calls is the snapshot of everything the callbacks delivered so far.
type calls struct {
	starts   int
	results  [][2]string
	errors   []string
	errCodes []engine.ErrorCode
	ends     []string
}

func (r *recorder) callbacks() session.Callbacks {
	return session.Callbacks{
		OnStart: func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.starts++
		},
		OnResult: func(interim, final string) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.results = append(r.results, [2]string{interim, final})
		},
		OnError: func(code engine.ErrorCode, message string) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.errCodes = append(r.errCodes, code)
			r.errors = append(r.errors, message)
		},
		OnEnd: func(final string) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.ends = append(r.ends, final)
		},
	}
}

func (r *recorder) snapshot() calls {
	r.mu.Lock()
	defer r.mu.Unlock()
	return calls{
		starts:   r.starts,
		results:  append([][2]string(nil), r.results...),
		errors:   append([]string(nil), r.errors...),
		errCodes: append([]engine.ErrorCode(nil), r.errCodes...),
		ends:     append([]string(nil), r.ends...),
	}
}

func waitDone(t *testing.T, s *session.Session) {
	t.Helper()
	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("session did not end in time")
	}
}

func TestSessionLifecycle(t *testing.T) {
	t.Parallel()

	st := mock.NewStream()
	eng := &mock.Engine{SupportedVal: true, Stream: st}
	rec := &recorder{}

	s := session.New(eng, session.Options{Continuous: true}, rec.callbacks())
	if s.State() != session.StateIdle {
		t.Fatalf("initial state = %v, want IDLE", s.State())
	}

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if s.State() != session.StateListening {
		t.Fatalf("state after Start = %v, want LISTENING", s.State())
	}
	if got := eng.StartCalls[0].Cfg; got.Language != "vi-VN" || !got.Continuous || !got.InterimResults {
		t.Errorf("engine config = %+v, want vi-VN continuous with interim results", got)
	}

	st.Emit(engine.Event{Type: engine.EventStarted})
	st.Emit(engine.Event{Type: engine.EventResult, Interim: "mua cà"})
	st.Emit(engine.Event{Type: engine.EventResult, Final: "mua cà phê"})
	st.Emit(engine.Event{Type: engine.EventResult, Final: "hết 50k"})
	st.End()
	waitDone(t, s)

	got := rec.snapshot()
	if got.starts != 1 {
		t.Errorf("OnStart fired %d times, want 1", got.starts)
	}
	wantResults := [][2]string{
		{"mua cà", ""},
		{"", "mua cà phê"},
		{"", "mua cà phê hết 50k"},
	}
	if len(got.results) != len(wantResults) {
		t.Fatalf("OnResult fired %d times, want %d: %v", len(got.results), len(wantResults), got.results)
	}
	for i, want := range wantResults {
		if got.results[i] != want {
			t.Errorf("result[%d] = %v, want %v", i, got.results[i], want)
		}
	}
	if len(got.ends) != 1 || got.ends[0] != "mua cà phê hết 50k" {
		t.Errorf("OnEnd = %v, want exactly one call with accumulated transcript", got.ends)
	}
	if s.State() != session.StateIdle {
		t.Errorf("terminal state = %v, want IDLE", s.State())
	}
}

// Final text is append-only: a later interim update must never erase a
// committed segment.
func TestSessionFinalNeverRetracted(t *testing.T) {
	t.Parallel()

	st := mock.NewStream()
	eng := &mock.Engine{SupportedVal: true, Stream: st}
	rec := &recorder{}

	s := session.New(eng, session.Options{}, rec.callbacks())
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	st.Emit(engine.Event{Type: engine.EventResult, Final: "một trăm nghìn"})
	st.Emit(engine.Event{Type: engine.EventResult, Interim: "đồ"})
	st.End()
	waitDone(t, s)

	got := rec.snapshot()
	if got.ends[0] != "một trăm nghìn" {
		t.Errorf("final transcript = %q, want committed segment preserved", got.ends[0])
	}
	last := got.results[len(got.results)-1]
	if last != [2]string{"đồ", "một trăm nghìn"} {
		t.Errorf("last result = %v, want interim alongside committed final", last)
	}
}

func TestSessionNormalizesResults(t *testing.T) {
	t.Parallel()

	st := mock.NewStream()
	eng := &mock.Engine{SupportedVal: true, Stream: st}
	rec := &recorder{}

	s := session.New(eng, session.Options{Normalizer: normalize.New()}, rec.callbacks())
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	st.Emit(engine.Event{Type: engine.EventResult, Final: "hom nay mua ca phe"})
	st.End()
	waitDone(t, s)

	got := rec.snapshot()
	if got.ends[0] != "hôm nay mua cà phê" {
		t.Errorf("final = %q, want interim-normalized text without inferred punctuation", got.ends[0])
	}
}

func TestSessionStop(t *testing.T) {
	t.Parallel()

	st := mock.NewStream()
	// A real backend flushes and ends after being told to stop.
	st.OnStop = func() {
		st.Emit(engine.Event{Type: engine.EventResult, Final: "đoạn cuối"})
		st.End()
	}
	eng := &mock.Engine{SupportedVal: true, Stream: st}
	rec := &recorder{}

	s := session.New(eng, session.Options{}, rec.callbacks())
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	st.Emit(engine.Event{Type: engine.EventResult, Final: "mua đồ"})
	s.Stop()
	waitDone(t, s)

	got := rec.snapshot()
	if len(got.ends) != 1 || got.ends[0] != "mua đồ đoạn cuối" {
		t.Errorf("OnEnd = %v, want one call including the flushed segment", got.ends)
	}
	if s.State() != session.StateIdle {
		t.Errorf("state after Stop = %v, want IDLE", s.State())
	}

	// Stop and Close again: no second OnEnd, no double teardown.
	s.Stop()
	_ = s.Close()
	got = rec.snapshot()
	if len(got.ends) != 1 {
		t.Errorf("OnEnd fired %d times after repeated Stop/Close, want 1", len(got.ends))
	}
	if st.CloseCalls < 1 {
		t.Error("stream was never closed")
	}
}

func TestSessionEngineError(t *testing.T) {
	t.Parallel()

	st := mock.NewStream()
	eng := &mock.Engine{SupportedVal: true, Stream: st}
	rec := &recorder{}

	s := session.New(eng, session.Options{}, rec.callbacks())
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	st.Fail(engine.ErrPermissionDenied)
	waitDone(t, s)

	got := rec.snapshot()
	if len(got.errors) != 1 {
		t.Fatalf("OnError fired %d times, want 1", len(got.errors))
	}
	if got.errCodes[0] != engine.ErrPermissionDenied {
		t.Errorf("error code = %q, want %q", got.errCodes[0], engine.ErrPermissionDenied)
	}
	if got.errors[0] != session.MessageFor(engine.ErrPermissionDenied) {
		t.Errorf("error message = %q, want localized permission message", got.errors[0])
	}
	if s.State() != session.StateError {
		t.Errorf("state = %v, want ERROR", s.State())
	}
	if len(got.ends) != 1 {
		t.Errorf("OnEnd fired %d times after error, want 1", len(got.ends))
	}
}

func TestSessionNotSupported(t *testing.T) {
	t.Parallel()

	eng := &mock.Engine{SupportedVal: false}
	rec := &recorder{}

	s := session.New(eng, session.Options{}, rec.callbacks())
	err := s.Start(context.Background())
	if !errors.Is(err, session.ErrNotSupported) {
		t.Fatalf("Start err = %v, want ErrNotSupported", err)
	}
	if s.State() != session.StateIdle {
		t.Errorf("state = %v, want IDLE after capability failure", s.State())
	}

	got := rec.snapshot()
	if len(got.errors) != 1 || got.errCodes[0] != engine.ErrNotSupported {
		t.Fatalf("OnError = %v (%v), want one not-supported report", got.errors, got.errCodes)
	}
	if got.starts != 0 || len(got.ends) != 0 {
		t.Errorf("OnStart/OnEnd fired on capability failure: starts=%d ends=%v", got.starts, got.ends)
	}
	if len(eng.StartCalls) != 0 {
		t.Errorf("engine started %d times despite missing capability", len(eng.StartCalls))
	}
}

// Stop or Close before Start is a no-op: there is no session to end, so
// OnEnd must not fire and a later Start must still work.
func TestSessionStopBeforeStart(t *testing.T) {
	t.Parallel()

	st := mock.NewStream()
	eng := &mock.Engine{SupportedVal: true, Stream: st}
	rec := &recorder{}

	s := session.New(eng, session.Options{}, rec.callbacks())
	s.Stop()
	_ = s.Close()

	got := rec.snapshot()
	if len(got.ends) != 0 {
		t.Fatalf("OnEnd fired %d times before Start, want 0", len(got.ends))
	}
	if s.State() != session.StateIdle {
		t.Fatalf("state = %v, want IDLE", s.State())
	}

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start after early Stop/Close: %v", err)
	}
	st.Emit(engine.Event{Type: engine.EventResult, Final: "mua đồ"})
	st.End()
	waitDone(t, s)

	got = rec.snapshot()
	if len(got.ends) != 1 || got.ends[0] != "mua đồ" {
		t.Errorf("OnEnd = %v, want exactly one call after the real session", got.ends)
	}
}

func TestSessionStartTwice(t *testing.T) {
	t.Parallel()

	st := mock.NewStream()
	eng := &mock.Engine{SupportedVal: true, Stream: st}
	s := session.New(eng, session.Options{}, session.Callbacks{})

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Start(context.Background()); !errors.Is(err, session.ErrAlreadyStarted) {
		t.Fatalf("second Start err = %v, want ErrAlreadyStarted", err)
	}
	st.End()
	waitDone(t, s)
}

func TestSessionEngineStartError(t *testing.T) {
	t.Parallel()

	startErr := errors.New("backend unavailable")
	eng := &mock.Engine{SupportedVal: true, StartErr: startErr}
	rec := &recorder{}

	s := session.New(eng, session.Options{}, rec.callbacks())
	if err := s.Start(context.Background()); !errors.Is(err, startErr) {
		t.Fatalf("Start err = %v, want %v", err, startErr)
	}
	if s.State() != session.StateIdle {
		t.Errorf("state = %v, want IDLE", s.State())
	}
	got := rec.snapshot()
	if len(got.errors) != 1 || got.errCodes[0] != engine.ErrAudioCapture {
		t.Errorf("OnError = %v (%v), want one capture-failure report", got.errors, got.errCodes)
	}
}

func TestSessionIdleTimeout(t *testing.T) {
	t.Parallel()

	st := mock.NewStream()
	eng := &mock.Engine{SupportedVal: true, Stream: st}
	rec := &recorder{}

	s := session.New(eng, session.Options{IdleTimeout: 50 * time.Millisecond}, rec.callbacks())
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	waitDone(t, s)
	got := rec.snapshot()
	if len(got.ends) != 1 {
		t.Errorf("OnEnd fired %d times after idle timeout, want 1", len(got.ends))
	}
	if st.StopCalls == 0 {
		t.Error("idle timeout did not ask the engine to stop")
	}
}

func TestSessionLevelFromAudio(t *testing.T) {
	t.Parallel()

	st := mock.NewStream()
	eng := &mock.Engine{SupportedVal: true, Stream: st}
	s := session.New(eng, session.Options{}, session.Callbacks{})
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if lvl := s.Level(); lvl != 0 {
		t.Errorf("initial level = %v, want 0", lvl)
	}

	st.Emit(engine.Event{Type: engine.EventAudio, Frame: loudFrame()})
	st.End()
	waitDone(t, s)

	if lvl := s.Level(); lvl <= 0 || lvl > 1 {
		t.Errorf("level after loud frame = %v, want within (0, 1]", lvl)
	}
}
