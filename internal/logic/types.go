// Package logic contains pure sensor-interpretation state machines.
// This package has NO external dependencies (no GPIO, ADC, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// Phase is the hysteresis phase of a pulse detector.
type Phase string

const (
	PhaseSeekingHigh Phase = "SEEKING_HIGH"
	PhaseSeekingLow  Phase = "SEEKING_LOW"
)

// NoDistance marks a range cache that has never been filled.
const NoDistance = -1

// SoundVelocity is the speed of sound in centimeters per microsecond.
const SoundVelocity = 0.034

// PulseConfig is the immutable configuration of a PulseDetector.
type PulseConfig struct {
	// Timeout bounds how long a high excursion may last before it is
	// discarded.
	Timeout time.Duration
	// Upper and Lower are absolute thresholds, or offsets from the rolling
	// average when Adaptive is set. Lower must be below Upper.
	Upper int
	Lower int
	// Adaptive enables the rolling-average baseline.
	Adaptive bool
	// WindowSize is the number of samples in the rolling window.
	WindowSize int
	// SampleInterval is how often a sample is shifted into the window.
	SampleInterval time.Duration
}

// DefaultPulseConfig returns the light-sensor settings of the garage
// controller: thresholds 400/200 above a rolling 32-sample average taken
// every two seconds, with a five second timeout.
func DefaultPulseConfig() PulseConfig {
	return PulseConfig{
		Timeout:        5 * time.Second,
		Upper:          400,
		Lower:          200,
		Adaptive:       true,
		WindowSize:     32,
		SampleInterval: 2 * time.Second,
	}
}

// RangeConfig is the immutable configuration of a ranging sensor.
type RangeConfig struct {
	// RefreshInterval is the minimum age of a cached distance before it is
	// measured again. Zero or negative disables caching.
	RefreshInterval time.Duration
	// SoundVelocity in centimeters per microsecond.
	SoundVelocity float64
	// EchoTimeout is handed to the echo primitive.
	EchoTimeout time.Duration
}

// DefaultRangeConfig returns a one second refresh with the sea-level speed
// of sound.
func DefaultRangeConfig() RangeConfig {
	return RangeConfig{
		RefreshInterval: time.Second,
		SoundVelocity:   SoundVelocity,
		EchoTimeout:     time.Second,
	}
}

// Counts tracks sensor activity since startup.
type Counts struct {
	Pulses       int // completed high->low excursions
	Aborted      int // excursions discarded by timeout
	Measurements int // physical ranging measurements taken
}

// HeartbeatData contains information for a heartbeat log line.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
}
