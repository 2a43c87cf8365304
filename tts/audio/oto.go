package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
)

// Format is the oto sample format matching the synthesis output.
const Format = oto.FormatSignedInt16LE

// OtoEngine implements Engine on real audio hardware via oto. The oto
// context is the shared output clock: Suspend and Resume map directly onto
// it, which is what makes pause/resume sample-accurate.
type OtoEngine struct {
	ctx *oto.Context

	mu     sync.Mutex
	closed bool
	tap    *tapRing
}

// NewOtoEngine opens the host audio device at the synthesis sample rate.
func NewOtoEngine() (*OtoEngine, error) {
	options := &oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: Channels,
		Format:       Format,
	}

	// Platform-specific buffer size adjustments.
	switch runtime.GOOS {
	case "darwin":
		options.BufferSize = 100 * time.Millisecond
	default:
		options.BufferSize = 50 * time.Millisecond
	}

	ctx, ready, err := oto.NewContext(options)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoDevice, err)
	}
	<-ready

	log.Debug("audio engine ready", "sampleRate", SampleRate, "channels", Channels)
	return &OtoEngine{
		ctx: ctx,
		tap: newTapRing(4 * TapWindow),
	}, nil
}

// NewSource creates a hardware-backed source for buf.
func (e *OtoEngine) NewSource(buf *Buffer) (Source, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, ErrEngineClosed
	}
	if buf == nil || buf.Len() == 0 {
		return nil, fmt.Errorf("%w: empty buffer", ErrDecode)
	}

	reader := newRateReader(buf, e.tap)
	return &otoSource{
		player: e.ctx.NewPlayer(reader),
		reader: reader,
		done:   make(chan struct{}),
	}, nil
}

// Suspend pauses the shared audio clock.
func (e *OtoEngine) Suspend() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrEngineClosed
	}
	return e.ctx.Suspend()
}

// Resume restarts the shared audio clock.
func (e *OtoEngine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrEngineClosed
	}
	return e.ctx.Resume()
}

// Tap returns the most recent output samples.
func (e *OtoEngine) Tap(n int) []float64 {
	return e.tap.last(n)
}

// Close suspends the device and marks the engine unusable. oto contexts
// cannot be destroyed, so suspending is the strongest release available.
func (e *OtoEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	e.tap.reset()
	_ = e.ctx.Suspend()
	return nil
}

// otoSource wraps an oto player reading through a rate-adjusting reader.
type otoSource struct {
	player *oto.Player
	reader *rateReader

	mu      sync.Mutex
	playing bool
	closed  bool

	done     chan struct{}
	doneOnce sync.Once
}

func (s *otoSource) Play() {
	s.mu.Lock()
	if s.playing || s.closed {
		s.mu.Unlock()
		return
	}
	s.playing = true
	s.mu.Unlock()

	s.player.Play()
	go s.monitor()
}

// monitor watches for the player draining its reader and closes done.
func (s *otoSource) monitor() {
	ticker := time.NewTicker(25 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.Lock()
		closed := s.closed
		s.mu.Unlock()
		if closed {
			return
		}

		if s.reader.exhausted() && !s.player.IsPlaying() {
			s.doneOnce.Do(func() { close(s.done) })
			return
		}
	}
}

func (s *otoSource) SetRate(rate float64) { s.reader.setRate(rate) }

func (s *otoSource) Done() <-chan struct{} { return s.done }

func (s *otoSource) Position() time.Duration { return s.reader.position() }

func (s *otoSource) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	_ = s.player.Close()
	s.doneOnce.Do(func() { close(s.done) })
	return nil
}

// rateReader streams a float buffer as int16 little-endian bytes while
// resampling on the fly by linear interpolation, so a rate change takes
// effect on the very next device read instead of requiring the buffer to be
// re-rendered.
type rateReader struct {
	mu   sync.Mutex
	buf  *Buffer
	pos  float64 // fractional input cursor, in samples
	rate float64
	tap  *tapRing
}

func newRateReader(buf *Buffer, tap *tapRing) *rateReader {
	return &rateReader{buf: buf, rate: 1, tap: tap}
}

func (r *rateReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	total := float64(r.buf.Len())
	if r.pos >= total {
		return 0, io.EOF
	}

	n := 0
	taps := make([]float64, 0, len(p)/BytesPerSample)
	for n+BytesPerSample <= len(p) && r.pos < total {
		i := int(r.pos)
		frac := r.pos - float64(i)

		v := r.buf.Samples[i]
		if i+1 < r.buf.Len() {
			v = v*(1-frac) + r.buf.Samples[i+1]*frac
		}
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}

		binary.LittleEndian.PutUint16(p[n:], uint16(int16(v*32767)))
		taps = append(taps, v)

		n += BytesPerSample
		r.pos += r.rate
	}

	if r.tap != nil {
		r.tap.push(taps)
	}
	return n, nil
}

func (r *rateReader) setRate(rate float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rate > 0 {
		r.rate = rate
	}
}

func (r *rateReader) exhausted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pos >= float64(r.buf.Len())
}

func (r *rateReader) position() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	pos := r.pos
	if pos > float64(r.buf.Len()) {
		pos = float64(r.buf.Len())
	}
	return time.Duration(pos / float64(r.buf.Rate) * float64(time.Second))
}
