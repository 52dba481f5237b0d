// ABOUTME: Opus packet decoder for inbound live chunks
// ABOUTME: Decodes base64 opus packets to float buffers
package codec

import (
	"encoding/base64"
	"fmt"

	opus "gopkg.in/hraban/opus.v2"
)

// OpusStream decodes a sequence of opus packets from one live session.
// Opus is stateful across packets, so the decoder is kept for the
// lifetime of the stream.
type OpusStream struct {
	dec        *opus.Decoder
	sampleRate int
	channels   int
}

// NewOpusStream creates a packet decoder for the given format.
func NewOpusStream(sampleRate, channels int) (*OpusStream, error) {
	dec, err := opus.NewDecoder(sampleRate, channels)
	if err != nil {
		return nil, fmt.Errorf("opus decoder: %w", err)
	}
	return &OpusStream{dec: dec, sampleRate: sampleRate, channels: channels}, nil
}

// Decode decodes one base64-wrapped opus packet.
func (s *OpusStream) Decode(payload string) (*Buffer, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: bad base64: %v", ErrDecode, err)
	}

	// 120ms at 48kHz is the maximum opus frame size.
	pcm := make([]int16, 5760*s.channels)
	n, err := s.dec.Decode(raw, pcm)
	if err != nil {
		return nil, fmt.Errorf("%w: opus: %v", ErrDecode, err)
	}

	data := make([][]float32, s.channels)
	for ch := range data {
		data[ch] = make([]float32, n)
	}
	for i := 0; i < n; i++ {
		for ch := 0; ch < s.channels; ch++ {
			data[ch][i] = float32(pcm[i*s.channels+ch]) / 32768.0
		}
	}

	return &Buffer{
		SampleRate: s.sampleRate,
		Channels:   s.channels,
		Data:       data,
	}, nil
}
