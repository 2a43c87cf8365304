package synth

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/notevox/notevox/tts/audio"
)

// Mock implements Synthesizer offline: it renders each chunk as a sine tone
// whose length is proportional to the text length and whose pitch depends on
// the voice. The payload is valid PCM for the decoder, which makes it usable
// both in tests and as the fallback when no API key is configured.
type Mock struct {
	mu       sync.Mutex
	failures map[string]error
	delay    time.Duration

	// SamplesPerChar controls the tone length; tests lower it to keep
	// playback short.
	SamplesPerChar int

	calls       int
	inFlight    int
	maxInFlight int
}

// NewMock creates a mock synthesizer.
func NewMock() *Mock {
	return &Mock{
		failures:       make(map[string]error),
		SamplesPerChar: audio.SampleRate / 20, // 50ms of audio per character
	}
}

// FailWith makes synthesis of exactly text fail with err until cleared with
// ClearFailure.
func (m *Mock) FailWith(text string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[text] = err
}

// ClearFailure removes an injected failure for text.
func (m *Mock) ClearFailure(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.failures, text)
}

// SetDelay adds an artificial synthesis latency.
func (m *Mock) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// Calls returns how many synthesis calls were made.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MaxInFlight returns the highest number of concurrent synthesis calls
// observed, for asserting the loader's depth-1 prefetch bound.
func (m *Mock) MaxInFlight() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxInFlight
}

// Synthesize implements Synthesizer.
func (m *Mock) Synthesize(ctx context.Context, text string, voice Voice) (string, error) {
	m.mu.Lock()
	m.calls++
	m.inFlight++
	if m.inFlight > m.maxInFlight {
		m.maxInFlight = m.inFlight
	}
	delay := m.delay
	failure := m.failures[text]
	perChar := m.SamplesPerChar
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.inFlight--
		m.mu.Unlock()
	}()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", ErrSynthesis, ctx.Err())
		}
	}

	if failure != nil {
		return "", fmt.Errorf("%w: %v", ErrSynthesis, failure)
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSynthesis, err)
	}

	return base64.StdEncoding.EncodeToString(tonePCM(len(text)*perChar, voicePitch(voice))), nil
}

// tonePCM renders n samples of a sine wave as 16-bit little-endian PCM.
func tonePCM(n int, freq float64) []byte {
	if n < 1 {
		n = 1
	}
	data := make([]byte, n*audio.BytesPerSample)
	for i := 0; i < n; i++ {
		v := math.Sin(2 * math.Pi * freq * float64(i) / audio.SampleRate)
		binary.LittleEndian.PutUint16(data[i*audio.BytesPerSample:], uint16(int16(v*0.6*32767)))
	}
	return data
}

// voicePitch gives each voice a distinct, stable pitch.
func voicePitch(voice Voice) float64 {
	for i, v := range Voices() {
		if v == voice {
			return 220 * math.Pow(1.26, float64(i))
		}
	}
	return 220
}
