// Package engine defines the capability interface over a speech-recognition
// backend used for dictation.
//
// The actual recognition work happens outside this process — in the host
// browser's Web Speech API, or in a test double. An Engine abstracts that
// backend behind a narrow surface: a support check, a Start call, and a
// single ordered stream of tagged [Event] values. The dictation session
// consumes the stream in one loop, which keeps the engine-facing code
// deterministic and trivially testable with synthetic events.
//
// Implementations must preserve the order in which the backend emitted
// events: a result event delivered after another result event must appear
// later on the Events channel. Implementations must be safe for concurrent
// use of Stop/Close against the event-producing goroutine.
package engine

import (
	"context"

	"github.com/ndhoang91/voicap/pkg/audio"
)

// Config describes one recognition session.
type Config struct {
	// Language is the BCP-47 language tag for recognition (e.g., "vi-VN").
	Language string

	// Continuous keeps the backend listening across pauses instead of
	// ending after the first detected utterance.
	Continuous bool

	// InterimResults requests low-latency provisional results in addition
	// to committed finals.
	InterimResults bool
}

// EventType classifies the events a [Stream] emits.
type EventType int

const (
	// EventStarted is emitted once when the backend begins capturing.
	EventStarted EventType = iota

	// EventResult carries a transcript update. Interim holds the current
	// provisional text (replaced wholesale on each event); Final holds
	// newly committed text to append, and may be empty.
	EventResult

	// EventAudio carries a microphone frame for loudness monitoring.
	EventAudio

	// EventError reports a backend fault. The stream ends after an error.
	EventError

	// EventEnded is emitted once when the backend stops listening, whether
	// from silence detection, a Stop call, or the client going away.
	EventEnded
)

// String returns the human-readable name of the event type.
func (t EventType) String() string {
	switch t {
	case EventStarted:
		return "STARTED"
	case EventResult:
		return "RESULT"
	case EventAudio:
		return "AUDIO"
	case EventError:
		return "ERROR"
	case EventEnded:
		return "ENDED"
	default:
		return "UNKNOWN"
	}
}

// ErrorCode classifies backend faults into the fixed vocabulary the session
// translates for the host. Raw backend error strings never cross this
// boundary.
type ErrorCode string

const (
	// ErrNotSupported: the platform has no speech-recognition capability.
	ErrNotSupported ErrorCode = "not-supported"

	// ErrPermissionDenied: microphone access was denied by the user or OS.
	ErrPermissionDenied ErrorCode = "permission-denied"

	// ErrNoSpeech: the backend detected no speech before giving up.
	ErrNoSpeech ErrorCode = "no-speech"

	// ErrAudioCapture: the microphone or audio hardware failed.
	ErrAudioCapture ErrorCode = "audio-capture"

	// ErrNetwork: the recognition backend was unreachable.
	ErrNetwork ErrorCode = "network"

	// ErrUnknown: any fault that does not map to a more specific code.
	ErrUnknown ErrorCode = "unknown"
)

// Event is one tagged element of a recognition stream.
type Event struct {
	// Type discriminates which of the remaining fields are meaningful.
	Type EventType

	// Interim is the provisional transcript for EventResult. It replaces
	// any previously reported interim text entirely.
	Interim string

	// Final is newly committed transcript text for EventResult. Committed
	// text is never retracted by a later event.
	Final string

	// Frame is the audio payload for EventAudio.
	Frame audio.Frame

	// Code is the fault classification for EventError.
	Code ErrorCode
}

// Stream is an open recognition session on a backend.
//
// The Events channel is closed after the terminal event (EventEnded or
// EventError followed by EventEnded). Callers must call Close when done;
// Close more than once is safe.
type Stream interface {
	// Events returns the ordered event stream. The channel is closed when
	// the session ends for any reason.
	Events() <-chan Event

	// Stop asks the backend to stop listening. The backend finishes
	// delivering any in-flight results and then emits EventEnded. Stop is
	// idempotent and safe to call concurrently with event delivery.
	Stop()

	// Close releases all resources associated with the stream. It implies
	// Stop. Calling Close more than once is safe and returns nil.
	Close() error
}

// Engine is the entry point for a recognition backend.
//
// Implementations must be safe for concurrent use; each Start call yields an
// independent Stream.
type Engine interface {
	// Supported reports whether the backend is usable at all. When false,
	// Start must not be called; the session reports a capability error to
	// the host instead.
	Supported() bool

	// Start opens a recognition stream. The supplied ctx governs the
	// lifetime of the stream: when it is cancelled the stream shuts down
	// as if Stop had been called.
	Start(ctx context.Context, cfg Config) (Stream, error)
}
