// ABOUTME: Generation service contract
// ABOUTME: Script, speech, visual, transcription, and intent endpoints
package provider

import (
	"context"

	"github.com/Stillwave-Audio/stillwave-go/internal/script"
)

// Speech is a synthesized narration payload.
type Speech struct {
	Payload  string // base64 audio
	MimeType string // e.g. "audio/pcm;rate=24000"
}

// RawIntent is the service's interpretation of a transcript, before
// vocabulary validation. Empty fields mean "not requested".
type RawIntent struct {
	Theme  string `json:"theme,omitempty"`
	Voice  string `json:"voice,omitempty"`
	Action string `json:"action,omitempty"`
}

// Service is the remote generation API. All calls are blocking round
// trips and honor context cancellation.
type Service interface {
	// GenerateScript produces a meditation script for a theme. Callers
	// must not assume segments are monotonic or non-overlapping.
	GenerateScript(ctx context.Context, theme string) (script.Script, error)

	// GenerateSpeech narrates text in the given voice.
	GenerateSpeech(ctx context.Context, text, voice string) (Speech, error)

	// GenerateImage produces a still visual for a prompt.
	GenerateImage(ctx context.Context, prompt, size, ratio string) (string, error)

	// EditImage applies a prompt to an existing image reference.
	EditImage(ctx context.Context, imageRef, prompt string) (string, error)

	// GenerateVideo produces a video, optionally animating an image.
	// Long-running: implementations poll until completion.
	GenerateVideo(ctx context.Context, prompt, imageRef string) (string, error)

	// Transcribe converts captured PCM16LE audio to text.
	Transcribe(ctx context.Context, pcm []byte, sampleRate int) (string, error)

	// InterpretCommand extracts an intent from a transcript.
	InterpretCommand(ctx context.Context, transcript string) (RawIntent, error)
}
