package session

import (
	"math"
	"sync/atomic"

	"github.com/ndhoang91/voicap/pkg/audio"
)

// levelSmoothing is the weight of the previous value in the exponential
// moving average, keeping the UI indicator from flickering frame to frame.
const levelSmoothing = 0.7

// LevelMeter tracks a normalized microphone loudness signal in [0, 1].
//
// The meter is fed one frame at a time by the session's event loop and read
// concurrently by the host (typically on a UI refresh tick). It carries no
// identity or persistence — the level is a transient signal that resets to
// zero with each new session. Observe must be called from a single
// goroutine; Level is safe to call from any goroutine.
type LevelMeter struct {
	bits atomic.Uint64
}

// NewLevelMeter returns a meter reading 0.
func NewLevelMeter() *LevelMeter {
	return &LevelMeter{}
}

// Observe folds one audio frame into the smoothed loudness value.
func (m *LevelMeter) Observe(f audio.Frame) {
	rms := audio.RMSLevel(f)
	next := levelSmoothing*m.Level() + (1-levelSmoothing)*rms
	if next > 1 {
		next = 1
	} else if next < 0 {
		next = 0
	}
	m.bits.Store(math.Float64bits(next))
}

// Level returns the current smoothed loudness in [0, 1].
func (m *LevelMeter) Level() float64 {
	return math.Float64frombits(m.bits.Load())
}
