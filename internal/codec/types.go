// ABOUTME: Audio type definitions
// ABOUTME: Defines decoded sample buffers and mimetype helpers
package codec

import (
	"strconv"
	"strings"
)

const (
	// NarrationRate is the sample rate of narration and inbound live audio.
	NarrationRate = 24000
	// CaptureRate is the sample rate of outbound microphone audio.
	CaptureRate = 16000
)

// Buffer holds decoded PCM audio as normalized float samples in [-1, 1],
// one slice per channel.
type Buffer struct {
	SampleRate int
	Channels   int
	Data       [][]float32
}

// Frames returns the per-channel frame count.
func (b *Buffer) Frames() int {
	if len(b.Data) == 0 {
		return 0
	}
	return len(b.Data[0])
}

// Duration returns the playback duration in seconds.
func (b *Buffer) Duration() float64 {
	if b.SampleRate == 0 {
		return 0
	}
	return float64(b.Frames()) / float64(b.SampleRate)
}

// RateFromMime extracts the sample rate from a mimetype descriptor such as
// "audio/pcm;rate=24000". Returns def when no rate parameter is present.
func RateFromMime(mime string, def int) int {
	for _, part := range strings.Split(mime, ";") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, "rate=") {
			if rate, err := strconv.Atoi(strings.TrimPrefix(part, "rate=")); err == nil && rate > 0 {
				return rate
			}
		}
	}
	return def
}

// CodecFromMime extracts the codec name from a mimetype descriptor,
// e.g. "audio/pcm;rate=24000" -> "pcm". Defaults to "pcm".
func CodecFromMime(mime string) string {
	base := strings.TrimSpace(strings.Split(mime, ";")[0])
	if i := strings.Index(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	if base == "" {
		return "pcm"
	}
	return strings.ToLower(base)
}
