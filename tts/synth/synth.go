// Package synth defines the remote speech-synthesis collaborator interface
// and its implementations.
package synth

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrSynthesis indicates the remote synthesis call failed. The engine does
// no retry or backoff; the failure is surfaced to the chunk state machine.
var ErrSynthesis = errors.New("synth: synthesis failed")

// Voice identifies one of the fixed set of synthesis voices.
type Voice string

// The available voices.
const (
	VoiceAlloy   Voice = "alloy"
	VoiceEcho    Voice = "echo"
	VoiceFable   Voice = "fable"
	VoiceOnyx    Voice = "onyx"
	VoiceNova    Voice = "nova"
	VoiceShimmer Voice = "shimmer"
)

// DefaultVoice is used when no voice is configured.
const DefaultVoice = VoiceAlloy

// Voices returns all valid voices in a stable order.
func Voices() []Voice {
	return []Voice{VoiceAlloy, VoiceEcho, VoiceFable, VoiceOnyx, VoiceNova, VoiceShimmer}
}

// ParseVoice validates a voice name, case-insensitively.
func ParseVoice(s string) (Voice, error) {
	name := Voice(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range Voices() {
		if v == name {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown voice %q (available: %v)", s, Voices())
}

// Synthesizer converts text to speech. The returned payload is
// base64-encoded mono 16-bit little-endian PCM at 24000 Hz.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, voice Voice) (string, error)
}
