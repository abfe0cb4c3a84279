package session_test

import (
	"testing"

	"github.com/ndhoang91/voicap/internal/session"
	"github.com/ndhoang91/voicap/pkg/audio"
)

// pcmFrame builds a mono 48 kHz frame from int16 samples.
func pcmFrame(samples ...int16) audio.Frame {
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		data[i*2] = byte(s)
		data[i*2+1] = byte(s >> 8)
	}
	return audio.Frame{Data: data, SampleRate: 48000, Channels: 1}
}

// loudFrame returns a frame near full scale.
func loudFrame() audio.Frame {
	samples := make([]int16, 960)
	for i := range samples {
		samples[i] = 30000
	}
	return pcmFrame(samples...)
}

func TestLevelMeter(t *testing.T) {
	t.Parallel()

	m := session.NewLevelMeter()
	if m.Level() != 0 {
		t.Fatalf("fresh meter level = %v, want 0", m.Level())
	}

	m.Observe(loudFrame())
	first := m.Level()
	if first <= 0 || first > 1 {
		t.Fatalf("level after one loud frame = %v, want within (0, 1]", first)
	}

	// Smoothing: a second loud frame raises the level, but the meter must
	// approach the raw RMS gradually rather than jumping to it.
	m.Observe(loudFrame())
	second := m.Level()
	if second <= first {
		t.Errorf("level did not rise: %v then %v", first, second)
	}
	if raw := audio.RMSLevel(loudFrame()); second >= raw {
		t.Errorf("level %v reached raw RMS %v after two frames, want smoothed approach", second, raw)
	}

	// Silence decays the level toward zero without going negative.
	for range 20 {
		m.Observe(pcmFrame(0, 0, 0, 0))
	}
	if lvl := m.Level(); lvl < 0 || lvl > 0.01 {
		t.Errorf("level after sustained silence = %v, want near 0", lvl)
	}
}

func TestLevelMeterClampsToOne(t *testing.T) {
	t.Parallel()

	m := session.NewLevelMeter()
	full := make([]int16, 960)
	for i := range full {
		full[i] = -32768
	}
	for range 50 {
		m.Observe(pcmFrame(full...))
	}
	if lvl := m.Level(); lvl > 1 {
		t.Errorf("level = %v, want clamped to 1", lvl)
	}
}
