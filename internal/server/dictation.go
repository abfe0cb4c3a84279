package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/ndhoang91/voicap/internal/extract"
	"github.com/ndhoang91/voicap/internal/session"
	"github.com/ndhoang91/voicap/pkg/engine"
	"github.com/ndhoang91/voicap/pkg/engine/wsbridge"
)

// levelInterval is how often the microphone loudness is pushed to the
// client while the session is live.
const levelInterval = 100 * time.Millisecond

// msgNoAmount is shown when end-of-session extraction finds no amount.
const msgNoAmount = "Không nhận diện được số tiền, vui lòng nói rõ hơn"

// outbound is the JSON envelope for server → client session events.
type outbound struct {
	Type string `json:"type"`

	// state
	State string `json:"state,omitempty"`

	// result
	Interim string `json:"interim,omitempty"`
	Final   string `json:"final,omitempty"`

	// level
	Level float64 `json:"level,omitempty"`

	// error
	Message string `json:"message,omitempty"`

	// transaction
	Transaction *extract.Transaction `json:"transaction,omitempty"`
}

// handleDictation runs one dictation session over a websocket connection.
//
// Message flow: the client is accepted, sends its hello, and from then on
// the wsbridge engine relays its recognizer events into the session. Every
// session callback is mirrored back to the client as an outbound JSON event,
// and a ticker pushes loudness updates. When the session ends — user stop,
// engine silence detection, fault, or idle timeout — the accumulated
// transcript is normalized, the catalogs are fetched, and extraction runs
// exactly once inside OnEnd.
func (s *Server) handleDictation(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("dictation: accept websocket", "err", err)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	log := slog.With("remote", r.RemoteAddr)

	eng, err := wsbridge.New(ctx, conn)
	if err != nil {
		log.Warn("dictation: handshake failed", "err", err)
		return
	}

	out := &sender{conn: conn, ctx: ctx}

	start := time.Now()
	s.metrics.ActiveSessions.Add(ctx, 1)
	defer func() {
		s.metrics.ActiveSessions.Add(ctx, -1)
		s.metrics.SessionDuration.Record(ctx, time.Since(start).Seconds())
	}()

	// Closed by OnEnd; releases the handler once the session is over and
	// the transaction (or its absence) has been reported.
	finished := make(chan struct{})

	var sess *session.Session
	sess = session.New(eng, session.Options{
		Language:    s.recognition.Language,
		Continuous:  s.recognition.Continuous,
		Normalizer:  s.normalizer,
		IdleTimeout: s.recognition.IdleTimeout.Std(),
	}, session.Callbacks{
		OnStart: func() {
			out.send(outbound{Type: "state", State: session.StateListening.String()})
		},
		OnResult: func(interim, final string) {
			s.metrics.RecordResult(ctx, final != "")
			out.send(outbound{Type: "result", Interim: interim, Final: final})
		},
		OnError: func(code engine.ErrorCode, message string) {
			s.metrics.RecordEngineError(ctx, string(code))
			out.send(outbound{Type: "error", Message: message})
		},
		OnEnd: func(final string) {
			defer close(finished)
			out.send(outbound{Type: "state", State: sess.State().String()})
			s.concludeSession(ctx, out, final)
		},
	})

	if err := sess.Start(ctx); err != nil {
		log.Info("dictation: session did not start", "err", err)
		return
	}
	defer sess.Close()

	ticker := time.NewTicker(levelInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			out.send(outbound{Type: "level", Level: sess.Level()})
		case <-ctx.Done():
			// Client went away; tear down and let OnEnd fire.
			sess.Close()
			<-finished
			return
		case <-finished:
			_ = conn.Close(websocket.StatusNormalClosure, "session ended")
			return
		}
	}
}

// concludeSession normalizes the transcript, runs extraction against the
// user's catalogs, and reports the outcome to the client.
func (s *Server) concludeSession(ctx context.Context, out *sender, final string) {
	text := s.normalizer.Normalize(final)
	out.send(outbound{Type: "end", Final: text})
	if text == "" {
		return
	}

	categories, err := s.catalogs.Categories(ctx)
	if err != nil {
		slog.Warn("dictation: load categories", "err", err)
	}
	wallets, err := s.catalogs.Wallets(ctx)
	if err != nil {
		slog.Warn("dictation: load wallets", "err", err)
	}

	tx, ok := s.extractor.Extract(text, categories, wallets)
	s.metrics.RecordExtraction(ctx, ok)
	if !ok {
		out.send(outbound{Type: "error", Message: msgNoAmount})
		return
	}
	slog.Info("dictation: transaction extracted",
		"type", tx.Type, "amount", tx.Amount, "category", tx.CategoryID, "wallet", tx.WalletID)
	out.send(outbound{Type: "transaction", Transaction: tx})
}

// sender serializes outbound JSON writes; callbacks and the level ticker
// write concurrently.
type sender struct {
	conn *websocket.Conn
	ctx  context.Context
	mu   sync.Mutex
}

func (s *sender) send(msg outbound) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("dictation: marshal outbound", "err", err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.Write(s.ctx, websocket.MessageText, data); err != nil {
		slog.Debug("dictation: client write failed", "err", err)
	}
}
