package audio

import (
	"errors"
	"math"
	"testing"
	"time"
)

// tone generates a sine buffer of the given duration.
func tone(d time.Duration, freq float64) *Buffer {
	n := int(d.Seconds() * SampleRate)
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * freq * float64(i) / SampleRate)
	}
	return &Buffer{Samples: samples, Rate: SampleRate}
}

func waitDone(t *testing.T, src Source, timeout time.Duration) {
	t.Helper()
	select {
	case <-src.Done():
	case <-time.After(timeout):
		t.Fatal("source did not finish in time")
	}
}

func TestMockSourceFinishes(t *testing.T) {
	eng := NewMockEngine()
	defer eng.Close()
	eng.SetTimeScale(50)

	src, err := eng.NewSource(tone(time.Second, 440))
	if err != nil {
		t.Fatal(err)
	}
	src.Play()
	waitDone(t, src, 2*time.Second)

	if got := src.Position(); got < 990*time.Millisecond {
		t.Errorf("final position = %v, want ~1s", got)
	}
}

func TestMockSuspendHoldsPosition(t *testing.T) {
	eng := NewMockEngine()
	defer eng.Close()
	eng.SetTimeScale(10)

	src, err := eng.NewSource(tone(2*time.Second, 440))
	if err != nil {
		t.Fatal(err)
	}
	src.Play()

	time.Sleep(30 * time.Millisecond)
	if err := eng.Suspend(); err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond) // let the ticker observe the flag

	p1 := src.Position()
	if p1 == 0 {
		t.Fatal("no progress before suspend")
	}
	time.Sleep(50 * time.Millisecond)
	p2 := src.Position()
	if p2 != p1 {
		t.Errorf("position advanced while suspended: %v -> %v", p1, p2)
	}

	// Resume continues the same source from where it stopped.
	if err := eng.Resume(); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)
	if p3 := src.Position(); p3 <= p2 {
		t.Errorf("position did not advance after resume: %v", p3)
	}
	src.Close()
}

func TestMockSetRate(t *testing.T) {
	eng := NewMockEngine()
	defer eng.Close()
	eng.SetTimeScale(10)

	// At 2x a one-second buffer drains in half the scaled time.
	src, err := eng.NewSource(tone(time.Second, 220))
	if err != nil {
		t.Fatal(err)
	}
	src.SetRate(2.0)
	start := time.Now()
	src.Play()
	waitDone(t, src, 2*time.Second)

	// Scaled realtime would be ~100ms; 2x should land well under that.
	if elapsed := time.Since(start); elapsed > 80*time.Millisecond {
		t.Errorf("2x playback took %v, expected well under scaled realtime", elapsed)
	}
}

func TestMockTapSeesOutput(t *testing.T) {
	eng := NewMockEngine()
	defer eng.Close()
	eng.SetTimeScale(50)

	src, err := eng.NewSource(tone(500*time.Millisecond, 440))
	if err != nil {
		t.Fatal(err)
	}
	src.Play()
	waitDone(t, src, 2*time.Second)

	samples := eng.Tap(TapWindow)
	if len(samples) == 0 {
		t.Fatal("tap returned no samples after playback")
	}
	var peak float64
	for _, s := range samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	if peak < 0.5 {
		t.Errorf("tap peak = %v, want sine amplitude", peak)
	}
}

func TestMockEngineClosed(t *testing.T) {
	eng := NewMockEngine()
	if err := eng.Close(); err != nil {
		t.Fatal(err)
	}
	// Closing twice is harmless.
	if err := eng.Close(); err != nil {
		t.Errorf("second close = %v, want nil", err)
	}
	if _, err := eng.NewSource(tone(time.Millisecond, 440)); !errors.Is(err, ErrEngineClosed) {
		t.Errorf("NewSource after close = %v, want ErrEngineClosed", err)
	}
	if err := eng.Suspend(); !errors.Is(err, ErrEngineClosed) {
		t.Errorf("Suspend after close = %v, want ErrEngineClosed", err)
	}
}

func TestMockSourceCloseIdempotent(t *testing.T) {
	eng := NewMockEngine()
	defer eng.Close()

	src, err := eng.NewSource(tone(time.Second, 440))
	if err != nil {
		t.Fatal(err)
	}
	src.Play()
	if err := src.Close(); err != nil {
		t.Fatal(err)
	}
	if err := src.Close(); err != nil {
		t.Errorf("second close = %v, want nil", err)
	}
	// Done is closed once the source is released.
	select {
	case <-src.Done():
	default:
		t.Error("Done not closed after Close")
	}
	if eng.SourcesClosed != 1 {
		t.Errorf("SourcesClosed = %d, want 1", eng.SourcesClosed)
	}
}

func TestTapRingChronology(t *testing.T) {
	r := newTapRing(4)
	r.push([]float64{1, 2, 3, 4, 5, 6})

	got := r.last(3)
	want := []float64{4, 5, 6}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("last(3) = %v, want %v", got, want)
		}
	}
	if more := r.last(10); len(more) != 4 {
		t.Errorf("last(10) returned %d samples, want 4", len(more))
	}
}
