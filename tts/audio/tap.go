package audio

import "sync"

// tapRing is a fixed-size ring buffer of recently output samples shared
// between a playing source and the visualizer.
type tapRing struct {
	mu   sync.Mutex
	buf  []float64
	head int
	full bool
}

func newTapRing(n int) *tapRing {
	if n <= 0 {
		n = 1
	}
	return &tapRing{buf: make([]float64, n)}
}

func (r *tapRing) push(samples []float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range samples {
		r.buf[r.head] = s
		r.head++
		if r.head == len(r.buf) {
			r.head = 0
			r.full = true
		}
	}
}

// last returns up to n of the most recent samples in chronological order.
func (r *tapRing) last(n int) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	size := r.head
	if r.full {
		size = len(r.buf)
	}
	if n > size {
		n = size
	}
	if n <= 0 {
		return nil
	}

	out := make([]float64, n)
	start := r.head - n
	if start < 0 {
		start += len(r.buf)
	}
	for i := 0; i < n; i++ {
		out[i] = r.buf[(start+i)%len(r.buf)]
	}
	return out
}

func (r *tapRing) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.head = 0
	r.full = false
}
