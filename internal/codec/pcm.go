// ABOUTME: PCM codec adapter for provider audio payloads
// ABOUTME: Converts base64 PCM16LE to float buffers and back
package codec

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrDecode reports a malformed or truncated encoded payload. It is fatal
// to the operation, not the session.
var ErrDecode = errors.New("codec: decode failed")

// DecodePCM16 decodes a base64 payload of 16-bit little-endian PCM into a
// channel-separated float buffer. Samples are scaled by 1/32768.
func DecodePCM16(payload string, sampleRate, channels int) (*Buffer, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: bad base64: %v", ErrDecode, err)
	}
	return PCM16ToBuffer(raw, sampleRate, channels)
}

// PCM16ToBuffer de-interleaves raw PCM16LE bytes into per-channel floats.
func PCM16ToBuffer(raw []byte, sampleRate, channels int) (*Buffer, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("%w: invalid channel count %d", ErrDecode, channels)
	}
	if len(raw)%(channels*2) != 0 {
		return nil, fmt.Errorf("%w: %d bytes not a multiple of %d", ErrDecode, len(raw), channels*2)
	}

	frames := len(raw) / (channels * 2)
	data := make([][]float32, channels)
	for ch := range data {
		data[ch] = make([]float32, frames)
	}

	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			off := (i*channels + ch) * 2
			sample := int16(binary.LittleEndian.Uint16(raw[off:]))
			data[ch][i] = float32(sample) / 32768.0
		}
	}

	return &Buffer{
		SampleRate: sampleRate,
		Channels:   channels,
		Data:       data,
	}, nil
}

// EncodePayload wraps a raw byte sequence in the provider's base64 encoding.
func EncodePayload(raw []byte) string {
	return base64.StdEncoding.EncodeToString(raw)
}

// FloatsToPCM16 converts normalized float samples to raw PCM16LE bytes
// via value*32768 truncation, clamping to the 16-bit range.
func FloatsToPCM16(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		v := int32(s * 32768)
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(v)))
	}
	return out
}

// InterleavePCM16 flattens a buffer back to interleaved PCM16LE bytes,
// starting at the given frame offset.
func InterleavePCM16(buf *Buffer, fromFrame int) []byte {
	frames := buf.Frames()
	if fromFrame < 0 {
		fromFrame = 0
	}
	if fromFrame > frames {
		fromFrame = frames
	}
	out := make([]byte, (frames-fromFrame)*buf.Channels*2)
	for i := fromFrame; i < frames; i++ {
		for ch := 0; ch < buf.Channels; ch++ {
			v := int32(buf.Data[ch][i] * 32768)
			if v > 32767 {
				v = 32767
			} else if v < -32768 {
				v = -32768
			}
			off := ((i-fromFrame)*buf.Channels + ch) * 2
			binary.LittleEndian.PutUint16(out[off:], uint16(int16(v)))
		}
	}
	return out
}
