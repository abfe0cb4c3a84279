// Package wsbridge implements the engine interface for a browser client.
//
// Recognition itself runs in the browser via the Web Speech API; the client
// opens a websocket to the dictation endpoint and relays its recognizer
// events (interim/final results, faults, end-of-speech) plus optional
// microphone frames for the loudness indicator. This package is the
// server-side adapter that turns those messages into the ordered
// [engine.Event] stream a session consumes.
//
// Wire protocol (one JSON object per text message):
//
//	client → server:
//	  {"type":"hello","speech_supported":true}
//	  {"type":"result","interim":"...","final":"..."}
//	  {"type":"audio","opus":"<base64>","ts_ms":1234}
//	  {"type":"audio","pcm":"<base64>","sample_rate":48000,"channels":1}
//	  {"type":"error","code":"not-allowed"}
//	  {"type":"end"}
//
//	server → client:
//	  {"type":"start","language":"vi-VN","continuous":true,"interim_results":true}
//	  {"type":"stop"}
//
// Raw Web Speech error strings are translated to [engine.ErrorCode] values
// here and never travel further.
package wsbridge

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/ndhoang91/voicap/pkg/audio"
	"github.com/ndhoang91/voicap/pkg/engine"
)

// helloTimeout bounds how long the bridge waits for the client's capability
// declaration after the websocket is accepted.
const helloTimeout = 10 * time.Second

// message is the wire format shared by both directions.
type message struct {
	Type string `json:"type"`

	// hello
	SpeechSupported bool `json:"speech_supported,omitempty"`

	// start (server → client)
	Language       string `json:"language,omitempty"`
	Continuous     bool   `json:"continuous,omitempty"`
	InterimResults bool   `json:"interim_results,omitempty"`

	// result
	Interim string `json:"interim,omitempty"`
	Final   string `json:"final,omitempty"`

	// audio
	Opus       string `json:"opus,omitempty"`
	PCM        string `json:"pcm,omitempty"`
	SampleRate int    `json:"sample_rate,omitempty"`
	Channels   int    `json:"channels,omitempty"`
	TsMs       int64  `json:"ts_ms,omitempty"`

	// error
	Code string `json:"code,omitempty"`
}

// Engine adapts one accepted websocket connection to [engine.Engine].
// One Engine serves exactly one connection and at most one stream.
type Engine struct {
	conn      *websocket.Conn
	supported bool
}

// Compile-time interface check.
var _ engine.Engine = (*Engine)(nil)

// New wraps an accepted websocket connection. It blocks until the client
// sends its hello message declaring whether the browser supports speech
// recognition, or until the timeout elapses.
func New(ctx context.Context, conn *websocket.Conn) (*Engine, error) {
	ctx, cancel := context.WithTimeout(ctx, helloTimeout)
	defer cancel()

	var hello message
	if err := readMessage(ctx, conn, &hello); err != nil {
		return nil, fmt.Errorf("wsbridge: read hello: %w", err)
	}
	if hello.Type != "hello" {
		return nil, fmt.Errorf("wsbridge: expected hello, got %q", hello.Type)
	}
	return &Engine{conn: conn, supported: hello.SpeechSupported}, nil
}

// Supported reports the capability the client declared in its hello.
func (e *Engine) Supported() bool {
	return e.supported
}

// Start instructs the client to begin recognition and starts relaying its
// messages as engine events.
func (e *Engine) Start(ctx context.Context, cfg engine.Config) (engine.Stream, error) {
	s := &stream{
		conn:   e.conn,
		events: make(chan engine.Event, 64),
	}
	s.ctx, s.cancel = context.WithCancel(ctx)

	if err := s.write(message{
		Type:           "start",
		Language:       cfg.Language,
		Continuous:     cfg.Continuous,
		InterimResults: cfg.InterimResults,
	}); err != nil {
		s.cancel()
		return nil, fmt.Errorf("wsbridge: send start: %w", err)
	}

	go s.readLoop()
	return s, nil
}

// stream is one live relay of client messages into engine events.
type stream struct {
	conn   *websocket.Conn
	events chan engine.Event

	ctx    context.Context
	cancel context.CancelFunc

	writeMu sync.Mutex

	closeOnce sync.Once

	// opus is created lazily on the first compressed audio frame. Only the
	// read loop touches it.
	opus *audio.OpusDecoder
}

// Compile-time interface check.
var _ engine.Stream = (*stream)(nil)

// Events returns the relayed event stream.
func (s *stream) Events() <-chan engine.Event {
	return s.events
}

// Stop tells the client to stop recognition. The client answers with its
// remaining results followed by an end message, which terminates the stream.
func (s *stream) Stop() {
	if err := s.write(message{Type: "stop"}); err != nil {
		slog.Debug("wsbridge: send stop", "err", err)
	}
}

// Close tears the relay down: the read loop is cancelled and the websocket
// closed. Safe to call more than once.
func (s *stream) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		_ = s.conn.Close(websocket.StatusNormalClosure, "session closed")
	})
	return nil
}

// readLoop relays client messages until the client ends, the connection
// drops, or the stream context is cancelled. It owns the events channel and
// always terminates it with EventEnded followed by close.
func (s *stream) readLoop() {
	defer close(s.events)
	defer func() { s.events <- engine.Event{Type: engine.EventEnded} }()

	started := false
	for {
		var msg message
		if err := readMessage(s.ctx, s.conn, &msg); err != nil {
			// Client gone or stream cancelled; both end the session.
			slog.Debug("wsbridge: read loop ended", "err", err)
			return
		}

		switch msg.Type {
		case "result":
			if !started {
				started = true
				s.events <- engine.Event{Type: engine.EventStarted}
			}
			s.events <- engine.Event{
				Type:    engine.EventResult,
				Interim: msg.Interim,
				Final:   msg.Final,
			}
		case "audio":
			frame, err := s.decodeAudio(msg)
			if err != nil {
				slog.Debug("wsbridge: drop audio frame", "err", err)
				continue
			}
			s.events <- engine.Event{Type: engine.EventAudio, Frame: frame}
		case "error":
			s.events <- engine.Event{Type: engine.EventError, Code: mapErrorCode(msg.Code)}
			return
		case "end":
			return
		default:
			slog.Debug("wsbridge: ignoring unknown message", "type", msg.Type)
		}
	}
}

// decodeAudio turns an audio message into a PCM frame, decoding Opus
// packets when present.
func (s *stream) decodeAudio(msg message) (audio.Frame, error) {
	ts := time.Duration(msg.TsMs) * time.Millisecond

	if msg.Opus != "" {
		packet, err := base64.StdEncoding.DecodeString(msg.Opus)
		if err != nil {
			return audio.Frame{}, fmt.Errorf("decode opus base64: %w", err)
		}
		if s.opus == nil {
			dec, err := audio.NewOpusDecoder()
			if err != nil {
				return audio.Frame{}, err
			}
			s.opus = dec
		}
		return s.opus.Decode(packet, ts)
	}

	pcm, err := base64.StdEncoding.DecodeString(msg.PCM)
	if err != nil {
		return audio.Frame{}, fmt.Errorf("decode pcm base64: %w", err)
	}
	sampleRate := msg.SampleRate
	if sampleRate == 0 {
		sampleRate = 48000
	}
	channels := msg.Channels
	if channels == 0 {
		channels = 1
	}
	return audio.Frame{Data: pcm, SampleRate: sampleRate, Channels: channels, Timestamp: ts}, nil
}

// write sends one JSON message, serialized against concurrent writers.
func (s *stream) write(msg message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.Write(s.ctx, websocket.MessageText, data)
}

// readMessage reads and decodes one JSON text message.
func readMessage(ctx context.Context, conn *websocket.Conn, msg *message) error {
	_, data, err := conn.Read(ctx)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, msg)
}

// mapErrorCode translates Web Speech API error identifiers into the fixed
// engine vocabulary.
func mapErrorCode(raw string) engine.ErrorCode {
	switch raw {
	case "not-allowed", "service-not-allowed", "permission-denied":
		return engine.ErrPermissionDenied
	case "no-speech":
		return engine.ErrNoSpeech
	case "audio-capture", "aborted":
		return engine.ErrAudioCapture
	case "network":
		return engine.ErrNetwork
	default:
		return engine.ErrUnknown
	}
}
