// Package gpio provides the hardware contract the sensors are built on:
// digital trigger output, blocking echo timing, and analog sampling.
// The real implementations use the Linux GPIO character device, an ADS1115
// over I2C, or a serial ADC bridge. The fakes allow testing without hardware.
package gpio

import "time"

// Output drives a digital line.
type Output interface {
	// SetValue asserts (1) or deasserts (0) the line.
	SetValue(level int) error

	// Close releases GPIO resources.
	Close() error
}

// EchoInput times the width of the next high pulse on a line.
type EchoInput interface {
	// PulseWidth blocks until a rising then falling edge are seen and
	// returns the time between them. If no complete pulse arrives within
	// timeout it returns zero and an error.
	PulseWidth(timeout time.Duration) (time.Duration, error)

	// Close releases GPIO resources.
	Close() error
}

// AnalogInput samples an analog channel.
type AnalogInput interface {
	// ReadAnalog returns a sample in the range 0..AnalogMax.
	ReadAnalog() (int, error)

	// Close releases resources.
	Close() error
}

// AnalogMax is the full-scale analog reading (10-bit).
const AnalogMax = 1023

// Default wiring (BCM numbering) and I/O settings.
const (
	DefaultChip       = "gpiochip0"
	DefaultPinTrigger = 23
	DefaultPinEcho    = 24
	DefaultI2CBus     = "" // first available bus
	DefaultADCChannel = 0
)

// BusyWait spins for d. Sleeping is too coarse for the microsecond trigger
// pulse.
func BusyWait(d time.Duration) {
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
	}
}
