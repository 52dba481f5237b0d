// ABOUTME: Mock generation service
// ABOUTME: Deterministic offline stand-in for demos and tests
package provider

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/Stillwave-Audio/stillwave-go/internal/script"
)

// Mock is an offline Service producing deterministic artifacts. The
// speech payload is a quiet sine tone sized to the script duration.
type Mock struct {
	// ScriptSeconds is the narration length of generated scripts.
	ScriptSeconds float64
}

// NewMock creates a mock service with a 12-second script.
func NewMock() *Mock {
	return &Mock{ScriptSeconds: 12}
}

func (m *Mock) GenerateScript(ctx context.Context, theme string) (script.Script, error) {
	d := m.ScriptSeconds
	return script.Script{
		Title: fmt.Sprintf("%s Meditation", theme),
		FullText: fmt.Sprintf(
			"Settle in. Picture the %s around you. Breathe slowly. Let go.",
			strings.ToLower(theme)),
		Segments: []script.Segment{
			{Text: "Settle in.", Start: 0, End: d * 0.2},
			{Text: fmt.Sprintf("Picture the %s around you.", strings.ToLower(theme)), Start: d * 0.2, End: d * 0.6},
			{Text: "Breathe slowly. Let go.", Start: d * 0.6, End: d},
		},
	}, nil
}

func (m *Mock) GenerateSpeech(ctx context.Context, text, voice string) (Speech, error) {
	const rate = 24000
	frames := int(m.ScriptSeconds * rate)
	raw := make([]byte, frames*2)
	for i := 0; i < frames; i++ {
		v := int16(2000 * math.Sin(2*math.Pi*220*float64(i)/rate))
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(v))
	}
	return Speech{
		Payload:  base64.StdEncoding.EncodeToString(raw),
		MimeType: "audio/pcm;rate=24000",
	}, nil
}

func (m *Mock) GenerateImage(ctx context.Context, prompt, size, ratio string) (string, error) {
	return "mock-image-" + size, nil
}

func (m *Mock) EditImage(ctx context.Context, imageRef, prompt string) (string, error) {
	return imageRef + "-edited", nil
}

func (m *Mock) GenerateVideo(ctx context.Context, prompt, imageRef string) (string, error) {
	return "mock-video", nil
}

func (m *Mock) Transcribe(ctx context.Context, pcm []byte, sampleRate int) (string, error) {
	return "play the ocean meditation", nil
}

// InterpretCommand does naive keyword matching so voice commands work
// against the mock end to end.
func (m *Mock) InterpretCommand(ctx context.Context, transcript string) (RawIntent, error) {
	lower := strings.ToLower(transcript)
	intent := RawIntent{}

	for _, theme := range []string{"Forest", "Ocean", "Mountain", "Rain", "Cosmos"} {
		if strings.Contains(lower, strings.ToLower(theme)) {
			intent.Theme = theme
			break
		}
	}
	for _, voice := range []string{"Puck", "Charon", "Kore", "Fenrir", "Aoede"} {
		if strings.Contains(lower, strings.ToLower(voice)) {
			intent.Voice = voice
			break
		}
	}
	switch {
	case strings.Contains(lower, "video"):
		intent.Action = "generate_video"
	case strings.Contains(lower, "image") || strings.Contains(lower, "picture"):
		intent.Action = "generate_image"
	case strings.Contains(lower, "pause"):
		intent.Action = "pause"
	case strings.Contains(lower, "stop"):
		intent.Action = "stop"
	case strings.Contains(lower, "play"):
		intent.Action = "play"
	}

	return intent, nil
}
