// Package tts implements the incremental text-to-speech playback engine:
// text is split into speakable chunks, synthesized and decoded one chunk
// ahead of playback, and played back-to-back with pause/resume, speed
// change and per-chunk retry.
package tts

import (
	"github.com/notevox/notevox/tts/audio"
	"github.com/notevox/notevox/tts/synth"
)

// ChunkStatus tracks a chunk's progress through fetch and decode.
type ChunkStatus int

const (
	// StatusPending means the chunk has not been picked up by the loader.
	StatusPending ChunkStatus = iota
	// StatusLoading means a fetch+decode is in flight for the chunk.
	StatusLoading
	// StatusReady means the chunk has a playable buffer.
	StatusReady
	// StatusError means the fetch or decode failed; retry returns the
	// chunk to StatusPending.
	StatusError
)

// String returns a string representation of the chunk status.
func (s ChunkStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Chunk is one speakable unit of the session's text. Text is immutable once
// created; status and buffer are written only by the loader (and by retry).
type Chunk struct {
	Text   string
	Buffer *audio.Buffer
	Status ChunkStatus
	Err    error
}

// PlaybackState is the controller's top-level state.
type PlaybackState int

const (
	// StateStopped means no session is playing.
	StateStopped PlaybackState = iota
	// StatePlaying means chunks are being played (or the player is
	// stalled waiting for the current chunk to load).
	StatePlaying
	// StatePaused means the audio clock is suspended mid-chunk.
	StatePaused
)

// String returns a string representation of the playback state.
func (s PlaybackState) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// ChunkInfo is the read-only view of one chunk.
type ChunkInfo struct {
	Text   string
	Status ChunkStatus
	Err    error
}

// Snapshot is a read-only view of the playback session, safe to hand to
// observers like the UI and the visualizer.
type Snapshot struct {
	State       PlaybackState
	Current     int
	Total       int
	Speed       float64
	Voice       synth.Voice
	ReadyToPlay bool
	// Waiting reports a stalled player: Playing with no active source
	// because the current chunk is still loading or failed.
	Waiting bool
	Chunks  []ChunkInfo
	// SynthesizedBytes counts decoded audio fetched this process.
	SynthesizedBytes int64
}

// Progress is the fraction of chunks completed, 0 when there are none.
func (s Snapshot) Progress() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Current) / float64(s.Total)
}
