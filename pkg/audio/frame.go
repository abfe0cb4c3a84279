// Package audio defines the small PCM audio surface needed by the dictation
// pipeline: the [Frame] transport type, loudness measurement for the UI level
// indicator, and an Opus packet decoder for clients that send compressed
// microphone frames.
//
// Audio never reaches a transcription backend here — recognition happens in
// the host browser. Frames exist solely so the service can compute a
// normalized loudness signal while a session is listening.
package audio

import (
	"math"
	"time"
)

// Frame is a single chunk of microphone audio as little-endian int16 PCM.
type Frame struct {
	// Data holds interleaved little-endian int16 samples.
	Data []byte

	// SampleRate in Hz (e.g., 48000 for browser capture, 16000 downsampled).
	SampleRate int

	// Channels: 1 for mono, 2 for stereo.
	Channels int

	// Timestamp marks when this frame was captured, relative to session start.
	Timestamp time.Duration
}

// Samples returns the frame data decoded into int16 samples.
// Trailing odd bytes are ignored.
func (f Frame) Samples() []int16 {
	return bytesToInt16s(f.Data)
}

// RMSLevel computes the root-mean-square loudness of the frame, normalized
// to [0, 1] against the full int16 range. An empty frame reports 0.
func RMSLevel(f Frame) float64 {
	samples := f.Samples()
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		v := float64(s)
		sum += v * v
	}
	rms := math.Sqrt(sum / float64(len(samples)))
	level := rms / 32768.0
	if level > 1 {
		level = 1
	}
	return level
}

// int16sToBytes converts a slice of int16 PCM samples to little-endian bytes.
func int16sToBytes(pcm []int16) []byte {
	b := make([]byte, len(pcm)*2)
	for i, s := range pcm {
		b[i*2] = byte(s)
		b[i*2+1] = byte(s >> 8)
	}
	return b
}

// bytesToInt16s converts little-endian bytes to a slice of int16 PCM samples.
func bytesToInt16s(b []byte) []int16 {
	pcm := make([]int16, len(b)/2)
	for i := range pcm {
		pcm[i] = int16(b[i*2]) | int16(b[i*2+1])<<8
	}
	return pcm
}
