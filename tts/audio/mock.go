package audio

import (
	"fmt"
	"sync"
	"time"
)

// MockEngine implements Engine with a fake audio clock, for tests and for
// environments without an output device. Sources advance on wall time
// (optionally compressed by a time scale) instead of writing to hardware,
// and feed the same output tap a real engine would.
type MockEngine struct {
	mu        sync.Mutex
	suspended bool
	closed    bool
	scale     float64
	tap       *tapRing

	// Counters for tests.
	SourcesCreated int
	SourcesClosed  int
}

// NewMockEngine creates a mock engine whose clock runs at real time.
func NewMockEngine() *MockEngine {
	return &MockEngine{
		scale: 1,
		tap:   newTapRing(4 * TapWindow),
	}
}

// SetTimeScale makes the fake playback clock run scale times faster than
// real time. Tests use this to play long buffers in milliseconds.
func (e *MockEngine) SetTimeScale(scale float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if scale > 0 {
		e.scale = scale
	}
}

// NewSource creates a fake source bound to buf.
func (e *MockEngine) NewSource(buf *Buffer) (Source, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, ErrEngineClosed
	}
	if buf == nil || buf.Len() == 0 {
		return nil, fmt.Errorf("%w: empty buffer", ErrDecode)
	}

	e.SourcesCreated++
	return &mockSource{
		eng:  e,
		buf:  buf,
		rate: 1,
		done: make(chan struct{}),
	}, nil
}

// Suspend pauses the fake clock.
func (e *MockEngine) Suspend() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrEngineClosed
	}
	e.suspended = true
	return nil
}

// Resume restarts the fake clock.
func (e *MockEngine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrEngineClosed
	}
	e.suspended = false
	return nil
}

// Tap returns the most recent output samples.
func (e *MockEngine) Tap(n int) []float64 {
	return e.tap.last(n)
}

// Close shuts the engine down. Sources stop on their next tick.
func (e *MockEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	e.tap.reset()
	return nil
}

func (e *MockEngine) isSuspended() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.suspended || e.closed
}

func (e *MockEngine) timeScale() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scale
}

func (e *MockEngine) sourceClosed() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.SourcesClosed++
}

// mockSource advances a cursor through the buffer on a millisecond ticker,
// honoring the engine's suspend flag and the current rate.
type mockSource struct {
	eng *MockEngine
	buf *Buffer

	mu      sync.Mutex
	rate    float64
	pos     float64 // input samples consumed
	playing bool
	closed  bool

	done     chan struct{}
	doneOnce sync.Once
}

func (s *mockSource) Play() {
	s.mu.Lock()
	if s.playing || s.closed {
		s.mu.Unlock()
		return
	}
	s.playing = true
	s.mu.Unlock()

	go s.run()
}

func (s *mockSource) run() {
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()

	last := time.Now()
	for range ticker.C {
		now := time.Now()
		dt := now.Sub(last)
		last = now

		if s.eng.isSuspended() {
			continue
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		advance := dt.Seconds() * float64(s.buf.Rate) * s.rate * s.eng.timeScale()
		start := int(s.pos)
		s.pos += advance
		end := int(s.pos)
		if end > s.buf.Len() {
			end = s.buf.Len()
		}
		if end > start {
			s.eng.tap.push(s.buf.Samples[start:end])
		}
		finished := s.pos >= float64(s.buf.Len())
		s.mu.Unlock()

		if finished {
			s.doneOnce.Do(func() { close(s.done) })
			return
		}
	}
}

func (s *mockSource) SetRate(rate float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rate > 0 {
		s.rate = rate
	}
}

func (s *mockSource) Done() <-chan struct{} { return s.done }

func (s *mockSource) Position() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos := s.pos
	if pos > float64(s.buf.Len()) {
		pos = float64(s.buf.Len())
	}
	return time.Duration(pos / float64(s.buf.Rate) * float64(time.Second))
}

func (s *mockSource) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.eng.sourceClosed()
	s.doneOnce.Do(func() { close(s.done) })
	return nil
}
