package tts

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/notevox/notevox/tts/audio"
	"github.com/notevox/notevox/tts/segment"
	"github.com/notevox/notevox/tts/synth"
)

// Speed bounds for playback rate.
const (
	MinSpeed = 0.5
	MaxSpeed = 2.0
)

// SpeedSteps are the discrete rates SpeedUp and SpeedDown move between.
var SpeedSteps = []float64{0.5, 0.75, 1.0, 1.25, 1.5, 2.0}

// Controller drives a playback session: it segments text into chunks,
// keeps a loader goroutine fetching and decoding audio one chunk at a
// time, and plays ready chunks strictly in order.
//
// All methods are safe for concurrent use. Feeding new text replaces the
// session and starts playback immediately.
type Controller struct {
	engine audio.Engine
	syn    synth.Synthesizer

	mu          sync.Mutex
	chunks      []*Chunk
	current     int
	state       PlaybackState
	speed       float64
	voice       synth.Voice
	readyToPlay bool
	source      audio.Source
	suspended   bool
	closed      bool
	synthBytes  int64

	// gen counts sessions; loader results carrying a stale gen are
	// discarded so a fetch from replaced text never lands.
	gen int

	limit  int
	kick   chan struct{}
	events chan Event

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// Option configures a Controller.
type Option func(*Controller)

// WithVoice sets the initial synthesis voice.
func WithVoice(v synth.Voice) Option {
	return func(c *Controller) { c.voice = v }
}

// WithSpeed sets the initial playback rate. Out-of-range values are
// clamped to [MinSpeed, MaxSpeed].
func WithSpeed(speed float64) Option {
	return func(c *Controller) { c.speed = clampSpeed(speed) }
}

// WithChunkLimit sets the character budget used when segmenting text.
func WithChunkLimit(limit int) Option {
	return func(c *Controller) {
		if limit > 0 {
			c.limit = limit
		}
	}
}

// NewController creates a controller over the given audio engine and
// synthesizer and starts its loader goroutine. Call Close to release it.
func NewController(engine audio.Engine, syn synth.Synthesizer, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		engine: engine,
		syn:    syn,
		state:  StateStopped,
		speed:  1.0,
		voice:  synth.DefaultVoice,
		limit:  segment.DefaultLimit,
		kick:   make(chan struct{}, 1),
		events: make(chan Event, 32),
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.wg.Add(1)
	go c.loaderLoop()
	return c
}

// SetText replaces the session with freshly segmented chunks and starts
// playing from the first one. Empty or whitespace-only text stops
// playback and clears the session.
func (c *Controller) SetText(text string) {
	chunks := segment.Split(text, c.limit)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.gen++
	c.stopSourceLocked()
	c.chunks = make([]*Chunk, len(chunks))
	for i, t := range chunks {
		c.chunks[i] = &Chunk{Text: t, Status: StatusPending}
	}
	c.current = 0
	c.readyToPlay = false
	if len(c.chunks) == 0 {
		c.setStateLocked(StateStopped)
	} else {
		c.resumeClockLocked()
		c.setStateLocked(StatePlaying)
	}
	c.mu.Unlock()

	c.kickLoader()
	log.Debug("session replaced", "chunks", len(chunks), "chars", len(text))
}

// Pause suspends the audio clock mid-sample. The active source keeps its
// position and resumes exactly where it left off.
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrControllerClosed
	}
	if c.state != StatePlaying {
		return ErrNotPlaying
	}
	if err := c.engine.Suspend(); err != nil {
		return err
	}
	c.suspended = true
	c.setStateLocked(StatePaused)
	return nil
}

// Resume releases the audio clock and continues playback. If the current
// chunk became ready while paused, its source is started now.
func (c *Controller) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrControllerClosed
	}
	if c.state != StatePaused {
		return ErrNotPaused
	}
	c.resumeClockLocked()
	c.setStateLocked(StatePlaying)
	if c.source == nil && c.readyToPlay {
		c.startSourceLocked()
	}
	return nil
}

// Skip abandons the current chunk and moves to the next one, or stops at
// the end of the session.
func (c *Controller) Skip() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrControllerClosed
	}
	if len(c.chunks) == 0 {
		return ErrNoChunks
	}
	c.stopSourceLocked()
	if c.current >= len(c.chunks)-1 {
		c.current = 0
		c.readyToPlay = false
		c.setStateLocked(StateStopped)
		return nil
	}
	c.current++
	c.enterCurrentLocked()
	c.kickLoaderLocked()
	return nil
}

// Retry returns the current chunk to the pending state after a failure
// and resumes loading. Other chunks keep whatever they already loaded.
func (c *Controller) Retry() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrControllerClosed
	}
	if len(c.chunks) == 0 {
		return ErrNoChunks
	}
	ch := c.chunks[c.current]
	if ch.Status != StatusError {
		return ErrNothingToRetry
	}
	ch.Status = StatusPending
	ch.Err = nil
	c.resumeClockLocked()
	c.setStateLocked(StatePlaying)
	c.kickLoaderLocked()
	log.Debug("chunk retried", "chunk", c.current)
	return nil
}

// SetSpeed sets the playback rate. A source that is already playing picks
// the new rate up immediately.
func (c *Controller) SetSpeed(speed float64) error {
	if speed < MinSpeed || speed > MaxSpeed {
		return fmt.Errorf("%w: %.2f not in [%.1f, %.1f]", ErrSpeedOutOfRange, speed, MinSpeed, MaxSpeed)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrControllerClosed
	}
	c.speed = speed
	if c.source != nil {
		c.source.SetRate(speed)
	}
	c.emit(Event{Kind: EventSettingsChanged, State: c.state, Index: c.current})
	return nil
}

// SpeedUp moves to the next discrete speed step and returns the new rate.
func (c *Controller) SpeedUp() float64 {
	return c.stepSpeed(1)
}

// SpeedDown moves to the previous discrete speed step and returns the new
// rate.
func (c *Controller) SpeedDown() float64 {
	return c.stepSpeed(-1)
}

func (c *Controller) stepSpeed(dir int) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := 0
	for i, s := range SpeedSteps {
		if s <= c.speed {
			idx = i
		}
	}
	idx += dir
	if idx < 0 {
		idx = 0
	}
	if idx > len(SpeedSteps)-1 {
		idx = len(SpeedSteps) - 1
	}
	c.speed = SpeedSteps[idx]
	if c.source != nil {
		c.source.SetRate(c.speed)
	}
	c.emit(Event{Kind: EventSettingsChanged, State: c.state, Index: c.current})
	return c.speed
}

// SetVoice changes the synthesis voice for chunks that have not loaded
// yet. Chunks already decoded keep their audio and are not re-fetched.
func (c *Controller) SetVoice(v synth.Voice) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || v == c.voice {
		return
	}
	c.voice = v
	c.emit(Event{Kind: EventSettingsChanged, State: c.state, Index: c.current})
	c.kickLoaderLocked()
}

// State returns the current playback state.
func (c *Controller) State() PlaybackState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Speed returns the current playback rate.
func (c *Controller) Speed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speed
}

// Voice returns the current synthesis voice.
func (c *Controller) Voice() synth.Voice {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.voice
}

// Progress returns the fraction of chunks completed, 0 for an empty
// session.
func (c *Controller) Progress() float64 {
	return c.Snapshot().Progress()
}

// Snapshot returns a copy of the session state for observers.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	chunks := make([]ChunkInfo, len(c.chunks))
	for i, ch := range c.chunks {
		chunks[i] = ChunkInfo{Text: ch.Text, Status: ch.Status, Err: ch.Err}
	}
	return Snapshot{
		State:            c.state,
		Current:          c.current,
		Total:            len(c.chunks),
		Speed:            c.speed,
		Voice:            c.voice,
		ReadyToPlay:      c.readyToPlay,
		Waiting:          c.state == StatePlaying && c.source == nil,
		Chunks:           chunks,
		SynthesizedBytes: c.synthBytes,
	}
}

// Events returns the session's event channel. Events are dropped rather
// than blocking when the receiver falls behind; poll Snapshot for full
// state.
func (c *Controller) Events() <-chan Event {
	return c.events
}

// Close stops playback, shuts down the loader and releases the audio
// engine. It is safe to call more than once; teardown failures from the
// audio device are swallowed.
func (c *Controller) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.gen++
		c.stopSourceLocked()
		c.setStateLocked(StateStopped)
		c.mu.Unlock()
		c.cancel()
		c.wg.Wait()
		if err := c.engine.Close(); err != nil {
			log.Debug("engine close", "error", err)
		}
	})
	return nil
}

// loaderLoop serializes chunk fetches. Exactly one synthesis request is
// in flight at any time.
func (c *Controller) loaderLoop() {
	defer c.wg.Done()
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-c.kick:
		}
		c.drainWork()
	}
}

func (c *Controller) drainWork() {
	for {
		gen, idx, text, voice, ok := c.claimNext()
		if !ok {
			return
		}
		log.Debug("loading chunk", "chunk", idx, "voice", voice, "chars", len(text))
		payload, err := c.syn.Synthesize(c.ctx, text, voice)
		var buf *audio.Buffer
		if err == nil {
			var raw []byte
			if raw, err = audio.DecodeBase64(payload); err == nil {
				buf, err = audio.DecodePCM(raw)
			}
		}
		c.finishLoad(gen, idx, buf, err)
		select {
		case <-c.ctx.Done():
			return
		default:
		}
	}
}

// claimNext finds the first pending chunk at or after the playback index
// and marks it loading. Chunks behind the playhead are never prefetched.
func (c *Controller) claimNext() (gen, idx int, text string, voice synth.Voice, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := c.current; i < len(c.chunks); i++ {
		if c.chunks[i].Status == StatusPending {
			c.chunks[i].Status = StatusLoading
			return c.gen, i, c.chunks[i].Text, c.voice, true
		}
	}
	return 0, 0, "", "", false
}

func (c *Controller) finishLoad(gen, idx int, buf *audio.Buffer, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen || idx >= len(c.chunks) {
		return
	}
	ch := c.chunks[idx]
	if err != nil {
		ch.Status = StatusError
		ch.Err = err
		if idx == c.current {
			c.readyToPlay = false
		}
		c.emit(Event{Kind: EventChunkFailed, State: c.state, Index: idx, Err: err})
		log.Warn("chunk failed", "chunk", idx, "error", err)
		return
	}
	ch.Buffer = buf
	ch.Status = StatusReady
	ch.Err = nil
	c.synthBytes += int64(buf.Len() * audio.BytesPerSample)
	if idx == c.current {
		c.readyToPlay = true
		if c.state == StatePlaying && c.source == nil {
			c.startSourceLocked()
		}
	}
	c.emit(Event{Kind: EventChunkReady, State: c.state, Index: idx})
}

// startSourceLocked builds and starts a source for the current chunk.
// Callers hold c.mu and have verified the chunk has a buffer.
func (c *Controller) startSourceLocked() {
	ch := c.chunks[c.current]
	src, err := c.engine.NewSource(ch.Buffer)
	if err != nil {
		ch.Status = StatusError
		ch.Err = err
		c.readyToPlay = false
		c.emit(Event{Kind: EventChunkFailed, State: c.state, Index: c.current, Err: err})
		log.Warn("source failed", "chunk", c.current, "error", err)
		return
	}
	src.SetRate(c.speed)
	c.source = src
	src.Play()
	c.emit(Event{Kind: EventChunkStarted, State: c.state, Index: c.current})

	gen := c.gen
	c.wg.Add(1)
	go c.watchSource(src, gen)
}

func (c *Controller) watchSource(src audio.Source, gen int) {
	defer c.wg.Done()
	select {
	case <-c.ctx.Done():
		return
	case <-src.Done():
	}
	c.advance(src, gen)
}

// advance moves the playhead after a source finishes. A stale generation
// or a replaced source means the session moved on without us.
func (c *Controller) advance(src audio.Source, gen int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen || c.source != src {
		return
	}
	if err := c.source.Close(); err != nil {
		log.Debug("source close", "error", err)
	}
	c.source = nil
	if c.current >= len(c.chunks)-1 {
		c.current = 0
		c.readyToPlay = false
		c.setStateLocked(StateStopped)
		return
	}
	c.current++
	c.enterCurrentLocked()
	c.kickLoaderLocked()
}

// enterCurrentLocked starts the new current chunk if it is ready, or
// reports why playback is stalled.
func (c *Controller) enterCurrentLocked() {
	ch := c.chunks[c.current]
	c.readyToPlay = ch.Status == StatusReady && ch.Buffer != nil
	switch {
	case c.readyToPlay && c.state == StatePlaying:
		c.startSourceLocked()
	case ch.Status == StatusError:
		c.emit(Event{Kind: EventChunkFailed, State: c.state, Index: c.current, Err: ch.Err})
	default:
		c.emit(Event{Kind: EventWaiting, State: c.state, Index: c.current})
	}
}

func (c *Controller) stopSourceLocked() {
	if c.source == nil {
		return
	}
	if err := c.source.Close(); err != nil {
		log.Debug("source close", "error", err)
	}
	c.source = nil
}

func (c *Controller) resumeClockLocked() {
	if !c.suspended {
		return
	}
	if err := c.engine.Resume(); err != nil {
		log.Debug("engine resume", "error", err)
	}
	c.suspended = false
}

func (c *Controller) setStateLocked(s PlaybackState) {
	if c.state == s {
		return
	}
	c.state = s
	c.emit(Event{Kind: EventStateChanged, State: s, Index: c.current})
}

// emit never blocks; a full channel drops the event.
func (c *Controller) emit(e Event) {
	select {
	case c.events <- e:
	default:
	}
}

func (c *Controller) kickLoader() {
	select {
	case c.kick <- struct{}{}:
	default:
	}
}

func (c *Controller) kickLoaderLocked() {
	// kick is buffered and never blocks, so it is safe under c.mu.
	c.kickLoader()
}

func clampSpeed(speed float64) float64 {
	if speed < MinSpeed {
		return MinSpeed
	}
	if speed > MaxSpeed {
		return MaxSpeed
	}
	return speed
}
