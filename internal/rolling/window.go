// Package rolling provides fixed-size trailing-window statistics. The
// Window type updates in O(1) per sample by maintaining a running sum and
// sum of squares over a ring buffer; the package-level helpers are the
// O(N) single-shot equivalents for callers that hold a full slice.
package rolling

import "math"

// Window maintains mean, standard deviation and sum over the last size
// samples pushed into it. Values are undefined until the window fills;
// the engine treats a partially filled window as missing data, never as
// zero-padded.
type Window struct {
	values []float64
	pos    int
	count  int
	sum    float64
	sumSq  float64
	sample bool
}

// New creates a window over the trailing size samples using the population
// standard deviation formula. size must be >= 1; it is validated once at
// configuration time, not per push.
func New(size int) *Window {
	return &Window{values: make([]float64, size)}
}

// NewSample is New with the sample (n-1 divisor) standard deviation formula.
func NewSample(size int) *Window {
	w := New(size)
	w.sample = true
	return w
}

// Push adds a value, evicting the oldest once the window is full.
func (w *Window) Push(v float64) {
	if w.count == len(w.values) {
		old := w.values[w.pos]
		w.sum -= old
		w.sumSq -= old * old
	} else {
		w.count++
	}

	w.values[w.pos] = v
	w.sum += v
	w.sumSq += v * v
	w.pos = (w.pos + 1) % len(w.values)
}

// Full reports whether size samples have been pushed.
func (w *Window) Full() bool {
	return w.count == len(w.values)
}

// Count returns the number of samples currently held.
func (w *Window) Count() int {
	return w.count
}

// Sum returns the window sum; ok is false until the window is full.
func (w *Window) Sum() (float64, bool) {
	if !w.Full() {
		return 0, false
	}
	return w.sum, true
}

// Mean returns the window mean; ok is false until the window is full.
func (w *Window) Mean() (float64, bool) {
	if !w.Full() {
		return 0, false
	}
	return w.sum / float64(w.count), true
}

// StdDev returns the window standard deviation; ok is false until the
// window is full, and for a sample-mode window of size 1.
func (w *Window) StdDev() (float64, bool) {
	if !w.Full() {
		return 0, false
	}

	n := float64(w.count)
	mean := w.sum / n
	variance := w.sumSq/n - mean*mean
	if w.sample {
		if w.count < 2 {
			return 0, false
		}
		variance *= n / (n - 1)
	}

	// The running sum of squares can drift a hair below zero for constant
	// series; clamp instead of producing NaN.
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance), true
}

// Reset discards all samples.
func (w *Window) Reset() {
	for i := range w.values {
		w.values[i] = 0
	}
	w.pos = 0
	w.count = 0
	w.sum = 0
	w.sumSq = 0
}

// Sum computes the sum of the n values ending at index, inclusive.
// ok is false when fewer than n values exist at or before index.
func Sum(values []float64, index, n int) (float64, bool) {
	if n < 1 || index >= len(values) || index-n+1 < 0 {
		return 0, false
	}
	var sum float64
	for _, v := range values[index-n+1 : index+1] {
		sum += v
	}
	return sum, true
}

// Mean computes the mean of the n values ending at index, inclusive.
func Mean(values []float64, index, n int) (float64, bool) {
	sum, ok := Sum(values, index, n)
	if !ok {
		return 0, false
	}
	return sum / float64(n), true
}

// StdDev computes the standard deviation of the n values ending at index,
// inclusive. sample selects the n-1 divisor; the default engine profile
// uses the population formula.
func StdDev(values []float64, index, n int, sample bool) (float64, bool) {
	mean, ok := Mean(values, index, n)
	if !ok {
		return 0, false
	}
	if sample && n < 2 {
		return 0, false
	}

	var sq float64
	for _, v := range values[index-n+1 : index+1] {
		d := v - mean
		sq += d * d
	}

	if sample {
		return math.Sqrt(sq / float64(n-1)), true
	}
	return math.Sqrt(sq / float64(n)), true
}
