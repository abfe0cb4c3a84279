package audio

import (
	"fmt"
	"time"

	"layeh.com/gopus"
)

// Browser clients capture at 48 kHz mono and send 20 ms Opus packets.
const (
	opusSampleRate  = 48000
	opusChannels    = 1
	opusFrameSizeMs = 20
	// opusFrameSize is the number of samples per channel per 20 ms frame.
	opusFrameSize = opusSampleRate * opusFrameSizeMs / 1000 // 960
)

// OpusDecoder decodes Opus packets from a single client stream into PCM
// frames. Each stream needs its own decoder to keep decoder state correct
// across consecutive packets. Not safe for concurrent use.
type OpusDecoder struct {
	dec *gopus.Decoder
}

// NewOpusDecoder creates a decoder configured for browser microphone audio.
func NewOpusDecoder() (*OpusDecoder, error) {
	dec, err := gopus.NewDecoder(opusSampleRate, opusChannels)
	if err != nil {
		return nil, fmt.Errorf("audio: create opus decoder: %w", err)
	}
	return &OpusDecoder{dec: dec}, nil
}

// Decode decodes one Opus packet into a PCM [Frame] stamped with ts.
func (d *OpusDecoder) Decode(packet []byte, ts time.Duration) (Frame, error) {
	pcm, err := d.dec.Decode(packet, opusFrameSize, false)
	if err != nil {
		return Frame{}, fmt.Errorf("audio: opus decode: %w", err)
	}
	return Frame{
		Data:       int16sToBytes(pcm),
		SampleRate: opusSampleRate,
		Channels:   opusChannels,
		Timestamp:  ts,
	}, nil
}
