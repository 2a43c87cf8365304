package tts

import "errors"

var (
	// ErrNotPlaying is returned by Pause when nothing is playing.
	ErrNotPlaying = errors.New("tts: not playing")

	// ErrNotPaused is returned by Resume when playback is not paused.
	ErrNotPaused = errors.New("tts: not paused")

	// ErrNoChunks is returned by operations that need an active session.
	ErrNoChunks = errors.New("tts: no chunks loaded")

	// ErrNothingToRetry is returned by Retry when the current chunk is
	// not in the error state.
	ErrNothingToRetry = errors.New("tts: current chunk is not in error")

	// ErrSpeedOutOfRange is returned by SetSpeed for values outside
	// [MinSpeed, MaxSpeed].
	ErrSpeedOutOfRange = errors.New("tts: speed out of range")

	// ErrControllerClosed is returned by operations on a closed controller.
	ErrControllerClosed = errors.New("tts: controller closed")
)
