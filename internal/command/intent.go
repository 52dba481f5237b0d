// ABOUTME: Voice command intent vocabulary and validation
// ABOUTME: Drops unrecognized theme/voice/action fields instead of failing
package command

import "log"

// Themes is the fixed set of meditation themes a voice command may select.
var Themes = []string{"Forest", "Ocean", "Mountain", "Rain", "Cosmos"}

// Voices is the fixed set of narration voices.
var Voices = []string{"Puck", "Charon", "Kore", "Fenrir", "Aoede"}

// Action is a playback or generation command from a voice intent.
type Action string

const (
	ActionGenerateImage Action = "generate_image"
	ActionGenerateVideo Action = "generate_video"
	ActionPlay          Action = "play"
	ActionPause         Action = "pause"
	ActionStop          Action = "stop"
)

// Intent is the interpreted meaning of one utterance. Empty fields mean
// "no change requested".
type Intent struct {
	Transcript string
	Theme      string
	Voice      string
	Action     Action
}

// Validate drops any field whose value is outside the fixed vocabulary.
// Validation failures recover locally and never propagate.
func Validate(in Intent) Intent {
	out := Intent{Transcript: in.Transcript}

	if in.Theme != "" {
		if contains(Themes, in.Theme) {
			out.Theme = in.Theme
		} else {
			log.Printf("Dropping unrecognized theme: %q", in.Theme)
		}
	}

	if in.Voice != "" {
		if contains(Voices, in.Voice) {
			out.Voice = in.Voice
		} else {
			log.Printf("Dropping unrecognized voice: %q", in.Voice)
		}
	}

	switch in.Action {
	case ActionGenerateImage, ActionGenerateVideo, ActionPlay, ActionPause, ActionStop:
		out.Action = in.Action
	case "":
	default:
		log.Printf("Dropping unrecognized action: %q", in.Action)
	}

	return out
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
