package logic

// Window is a fixed-size sample history with an integer running mean.
// Newest samples are inserted at the front and the oldest falls off the end.
type Window struct {
	samples []int
	average int
}

// NewWindow creates a window holding size samples. Sizes below one are
// treated as one.
func NewWindow(size int) *Window {
	if size < 1 {
		size = 1
	}
	return &Window{samples: make([]int, size)}
}

// Seed fills every slot with value so the first average is not pulled
// towards zero.
func (w *Window) Seed(value int) {
	for i := range w.samples {
		w.samples[i] = value
	}
	w.average = value
}

// Push shifts value into the front of the window and returns the new mean.
// The mean uses truncating integer division.
func (w *Window) Push(value int) int {
	sum := 0
	for i := len(w.samples) - 1; i > 0; i-- {
		w.samples[i] = w.samples[i-1]
		sum += w.samples[i]
	}
	w.samples[0] = value
	sum += value
	w.average = sum / len(w.samples)
	return w.average
}

// Average returns the current mean.
func (w *Window) Average() int {
	return w.average
}
