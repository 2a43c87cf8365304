package audio

import "time"

// Engine abstracts the host audio environment: an output graph at a fixed
// sample rate with a shared clock that can be suspended and resumed, plus a
// tap on the live output signal for visualization. Implementations exist for
// real hardware (oto) and for tests (mock), so the playback state machine
// never needs a real audio device.
type Engine interface {
	// NewSource creates a one-shot playable source bound to a decoded
	// buffer. Sources are never reused across chunks.
	NewSource(buf *Buffer) (Source, error)

	// Suspend pauses the shared output clock. In-flight sources keep their
	// position and resume sample-accurately.
	Suspend() error

	// Resume restarts the shared output clock.
	Resume() error

	// Tap returns up to n of the most recently output samples, oldest
	// first. It is a read-only observation with no effect on playback.
	Tap(n int) []float64

	// Close stops output and releases all audio resources. Closing twice
	// is harmless.
	Close() error
}

// Source is a single playable instance of one decoded buffer.
type Source interface {
	// Play starts playback. A source plays at most once.
	Play()

	// SetRate changes the playback speed multiplier, taking effect
	// immediately without interrupting playback.
	SetRate(rate float64)

	// Done is closed when the source finishes playing or is closed.
	Done() <-chan struct{}

	// Position reports the current playback offset in the buffer's
	// timeline.
	Position() time.Duration

	// Close stops and releases the source. Closing twice is harmless.
	Close() error
}
