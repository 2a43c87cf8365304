// Package audio decodes synthesized PCM payloads and plays them through a
// pluggable output engine.
package audio

import (
	"errors"
	"time"
)

// Synthesis output format. The remote service returns mono 16-bit
// little-endian PCM at this rate; the output engine runs at the same rate so
// no resampling happens outside of speed adjustment.
const (
	// SampleRate is the fixed synthesis sample rate in Hz.
	SampleRate = 24000
	// Channels is the number of audio channels (mono).
	Channels = 1
	// BitDepth is the bit depth per sample.
	BitDepth = 16
	// BytesPerSample is the number of bytes per sample.
	BytesPerSample = BitDepth / 8
)

// TapWindow is the number of recent output samples an Engine keeps available
// through Tap for visualization.
const TapWindow = 256

// Sentinel errors for the audio subsystem.
var (
	// ErrDecode indicates a malformed synthesized-audio payload.
	ErrDecode = errors.New("audio: malformed payload")
	// ErrEngineClosed indicates use of an engine after Close.
	ErrEngineClosed = errors.New("audio: engine closed")
	// ErrNoDevice indicates no usable audio output device.
	ErrNoDevice = errors.New("audio: no output device available")
)

// Buffer is a decoded, playable audio buffer: mono samples normalized to
// [-1, 1] at a fixed sample rate.
type Buffer struct {
	Samples []float64
	Rate    int
}

// Len returns the number of samples.
func (b *Buffer) Len() int { return len(b.Samples) }

// Duration returns the playing time of the buffer at normal speed.
func (b *Buffer) Duration() time.Duration {
	if b.Rate <= 0 {
		return 0
	}
	return time.Duration(float64(len(b.Samples)) / float64(b.Rate) * float64(time.Second))
}
