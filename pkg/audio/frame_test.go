package audio_test

import (
	"math"
	"testing"

	"github.com/ndhoang91/voicap/pkg/audio"
)

func frameOf(samples ...int16) audio.Frame {
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		data[i*2] = byte(s)
		data[i*2+1] = byte(s >> 8)
	}
	return audio.Frame{Data: data, SampleRate: 48000, Channels: 1}
}

func TestFrameSamples(t *testing.T) {
	t.Parallel()

	f := frameOf(0, 1, -1, 32767, -32768)
	got := f.Samples()
	want := []int16{0, 1, -1, 32767, -32768}
	if len(got) != len(want) {
		t.Fatalf("Samples() length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample[%d] = %d, want %d", i, got[i], want[i])
		}
	}

	// A trailing odd byte is not a sample.
	f.Data = append(f.Data, 0x7f)
	if got := f.Samples(); len(got) != len(want) {
		t.Errorf("Samples() with odd trailing byte length = %d, want %d", len(got), len(want))
	}
}

func TestRMSLevel(t *testing.T) {
	t.Parallel()

	if lvl := audio.RMSLevel(audio.Frame{}); lvl != 0 {
		t.Errorf("empty frame level = %v, want 0", lvl)
	}

	silence := frameOf(0, 0, 0, 0)
	if lvl := audio.RMSLevel(silence); lvl != 0 {
		t.Errorf("silence level = %v, want 0", lvl)
	}

	// A constant-amplitude signal has RMS equal to its amplitude.
	constant := frameOf(16384, -16384, 16384, -16384)
	want := 16384.0 / 32768.0
	if lvl := audio.RMSLevel(constant); math.Abs(lvl-want) > 1e-9 {
		t.Errorf("constant signal level = %v, want %v", lvl, want)
	}

	// Full negative scale reaches the normalization divisor exactly.
	full := frameOf(-32768, -32768)
	if lvl := audio.RMSLevel(full); lvl != 1 {
		t.Errorf("full-scale level = %v, want 1", lvl)
	}
}
