package tts

import (
	"math"

	"github.com/notevox/notevox/tts/audio"
)

// DefaultBins is the number of frequency bars a visualizer renders.
const DefaultBins = 16

// Visualizer turns the engine's recent output into frequency-domain
// magnitude bars. It holds no state between frames; callers sample it
// once per render tick while audio is playing.
type Visualizer struct {
	engine audio.Engine
	bins   int
	window int
}

// NewVisualizer creates a visualizer with the given number of bars.
func NewVisualizer(engine audio.Engine, bins int) *Visualizer {
	if bins <= 0 {
		bins = DefaultBins
	}
	return &Visualizer{engine: engine, bins: bins, window: audio.TapWindow}
}

// Bins returns the number of bars per frame.
func (v *Visualizer) Bins() int {
	return v.bins
}

// Frame computes one bar per frequency band over the engine's most
// recent output window. Values are normalized to [0, 1]; a silent or
// idle engine yields all zeros.
func (v *Visualizer) Frame() []float64 {
	out := make([]float64, v.bins)
	samples := v.engine.Tap(v.window)
	if len(samples) < 2 {
		return out
	}
	n := len(samples)
	half := n / 2
	if half < v.bins {
		half = v.bins
	}
	for b := 0; b < v.bins; b++ {
		// Skip bin 0 so the DC offset does not light the first bar.
		k0 := 1 + b*half/v.bins
		k1 := 1 + (b+1)*half/v.bins
		var peak float64
		for k := k0; k < k1 && k <= n/2; k++ {
			if mag := magnitude(samples, k); mag > peak {
				peak = mag
			}
		}
		// Square-root scaling keeps quiet bands visible.
		out[b] = clamp01(math.Sqrt(peak))
	}
	return out
}

// magnitude computes the normalized DFT magnitude of frequency index k.
func magnitude(samples []float64, k int) float64 {
	n := len(samples)
	var re, im float64
	step := 2 * math.Pi * float64(k) / float64(n)
	for i, s := range samples {
		theta := step * float64(i)
		re += s * math.Cos(theta)
		im -= s * math.Sin(theta)
	}
	return 2 * math.Hypot(re, im) / float64(n)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
