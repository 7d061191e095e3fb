package gpio

import (
	"errors"
	"time"
)

// FakeOutput is a test double that records every level written.
type FakeOutput struct {
	// Levels contains every value passed to SetValue, in order.
	Levels []int

	// SetError, if set, will be returned by SetValue (the level is still recorded).
	SetError error

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeOutput creates a FakeOutput.
func NewFakeOutput() *FakeOutput {
	return &FakeOutput{}
}

// SetValue records level.
func (f *FakeOutput) SetValue(level int) error {
	f.Levels = append(f.Levels, level)
	return f.SetError
}

// Close marks the output as closed.
func (f *FakeOutput) Close() error {
	f.Closed = true
	return nil
}

// FakeEcho is a test double that returns scripted pulse widths.
type FakeEcho struct {
	// Widths contains scripted pulse widths to return.
	// Each call to PulseWidth() consumes the next width.
	Widths []time.Duration

	// index tracks current position in Widths
	index int

	// Calls counts PulseWidth invocations.
	Calls int

	// Timeouts records the timeout passed to each call.
	Timeouts []time.Duration

	// ReadError, if set, will be returned by PulseWidth() with a zero width.
	ReadError error

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeEcho creates a FakeEcho with the given widths.
func NewFakeEcho(widths ...time.Duration) *FakeEcho {
	return &FakeEcho{Widths: widths}
}

// PulseWidth returns the next scripted width.
// If widths are exhausted, returns the last width repeatedly.
func (f *FakeEcho) PulseWidth(timeout time.Duration) (time.Duration, error) {
	f.Calls++
	f.Timeouts = append(f.Timeouts, timeout)

	if f.ReadError != nil {
		return 0, f.ReadError
	}

	if len(f.Widths) == 0 {
		return 0, errors.New("no widths configured")
	}

	w := f.Widths[f.index]
	if f.index < len(f.Widths)-1 {
		f.index++
	}
	return w, nil
}

// Close marks the echo input as closed.
func (f *FakeEcho) Close() error {
	f.Closed = true
	return nil
}

// FakeAnalog is a test double that returns scripted analog samples.
type FakeAnalog struct {
	// Samples contains scripted values to return.
	// Each call to ReadAnalog() consumes the next sample.
	Samples []int

	// index tracks current position in Samples
	index int

	// Reads counts ReadAnalog invocations.
	Reads int

	// ReadError, if set, will be returned by ReadAnalog()
	ReadError error

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeAnalog creates a FakeAnalog with the given samples.
func NewFakeAnalog(samples ...int) *FakeAnalog {
	return &FakeAnalog{Samples: samples}
}

// ReadAnalog returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeAnalog) ReadAnalog() (int, error) {
	f.Reads++

	if f.ReadError != nil {
		return 0, f.ReadError
	}

	if len(f.Samples) == 0 {
		return 0, errors.New("no samples configured")
	}

	v := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return v, nil
}

// Close marks the input as closed.
func (f *FakeAnalog) Close() error {
	f.Closed = true
	return nil
}
