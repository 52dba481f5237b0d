// ABOUTME: MP3 speech payload decoder
// ABOUTME: Decodes base64 MP3 narration to a float buffer
package codec

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
)

// DecodeMP3 decodes a base64 MP3 payload. go-mp3 always yields stereo
// 16-bit PCM at the stream's native rate.
func DecodeMP3(payload string) (*Buffer, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: bad base64: %v", ErrDecode, err)
	}

	dec, err := mp3.NewDecoder(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: mp3: %v", ErrDecode, err)
	}

	pcm, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: mp3 read: %v", ErrDecode, err)
	}

	// Trim a trailing partial frame rather than failing the whole payload.
	const channels = 2
	pcm = pcm[:len(pcm)-len(pcm)%(channels*2)]

	frames := len(pcm) / (channels * 2)
	data := make([][]float32, channels)
	for ch := range data {
		data[ch] = make([]float32, frames)
	}
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			off := (i*channels + ch) * 2
			sample := int16(binary.LittleEndian.Uint16(pcm[off:]))
			data[ch][i] = float32(sample) / 32768.0
		}
	}

	return &Buffer{
		SampleRate: dec.SampleRate(),
		Channels:   channels,
		Data:       data,
	}, nil
}
