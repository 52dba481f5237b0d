// ABOUTME: Meditation session artifact
// ABOUTME: One generated script + narration + visual bundle
package session

import (
	"time"

	"github.com/Stillwave-Audio/stillwave-go/internal/script"
	"github.com/google/uuid"
)

// Session is one complete generated meditation. The player consumes it
// read-only; playback state lives in the player.
type Session struct {
	ID        string
	Theme     string
	Voice     string
	ImageRef  string
	VideoRef  string
	Audio     string // base64 PCM16LE narration payload
	AudioMime string // e.g. "audio/pcm;rate=24000"
	Script    script.Script
	CreatedAt time.Time
}

// New creates an empty session for the given theme and voice.
func New(theme, voice string) *Session {
	return &Session{
		ID:        uuid.New().String(),
		Theme:     theme,
		Voice:     voice,
		CreatedAt: time.Now(),
	}
}
