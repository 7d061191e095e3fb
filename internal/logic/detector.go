package logic

import "time"

// PulseDetector finds high->low excursions in a noisy analog signal using
// two thresholds and a timeout. It is not safe for concurrent use.
type PulseDetector struct {
	cfg PulseConfig

	seekingHigh bool
	detected    bool
	peakTime    time.Time

	window     *Window
	seeded     bool
	lastSample time.Time

	counts Counts
}

// NewPulseDetector creates a detector in the seeking-high phase.
func NewPulseDetector(cfg PulseConfig) *PulseDetector {
	d := &PulseDetector{
		cfg:         cfg,
		seekingHigh: true,
	}
	if cfg.Adaptive {
		d.window = NewWindow(cfg.WindowSize)
	}
	return d
}

// Seed initializes the rolling window from a single sample and starts the
// sampling clock. It is a no-op for fixed thresholds.
func (d *PulseDetector) Seed(value int, now time.Time) {
	if d.window == nil {
		return
	}
	d.window.Seed(value)
	d.lastSample = now
	d.seeded = true
}

// Process feeds one sample taken at now through the state machine.
func (d *PulseDetector) Process(value int, now time.Time) {
	if d.window != nil {
		if !d.seeded {
			d.Seed(value, now)
		} else if now.After(d.lastSample.Add(d.cfg.SampleInterval)) {
			d.window.Push(value)
			d.lastSample = now
		}
	}

	base := d.baseline()

	if d.seekingHigh {
		if value >= base+d.cfg.Upper {
			d.seekingHigh = false
			d.detected = false
			d.peakTime = now
		}
		return
	}

	// Timeout wins over a low crossing in the same tick.
	if d.Expire(now) {
		return
	}
	if value <= base+d.cfg.Lower {
		d.seekingHigh = true
		d.detected = true
		d.counts.Pulses++
	}
}

// Expire runs only the timeout step: an excursion older than the timeout is
// abandoned without a pulse. It reports whether an abort happened. Use it on
// ticks where no sample could be read; the window does not advance.
func (d *PulseDetector) Expire(now time.Time) bool {
	if d.seekingHigh || !now.After(d.peakTime.Add(d.cfg.Timeout)) {
		return false
	}
	d.seekingHigh = true
	d.counts.Aborted++
	return true
}

// DidPulse reports whether a pulse completed since the last call and clears
// the latch.
func (d *PulseDetector) DidPulse() bool {
	if d.detected {
		d.detected = false
		return true
	}
	return false
}

// Phase returns the current hysteresis phase.
func (d *PulseDetector) Phase() Phase {
	if d.seekingHigh {
		return PhaseSeekingHigh
	}
	return PhaseSeekingLow
}

// Average returns the live baseline: the rolling mean when adaptive,
// otherwise zero.
func (d *PulseDetector) Average() int {
	return d.baseline()
}

// Thresholds returns the effective upper and lower thresholds.
func (d *PulseDetector) Thresholds() (upper, lower int) {
	base := d.baseline()
	return base + d.cfg.Upper, base + d.cfg.Lower
}

// Counts returns pulse and abort counters. Measurements is always zero.
func (d *PulseDetector) Counts() Counts {
	return d.counts
}

func (d *PulseDetector) baseline() int {
	if d.window == nil {
		return 0
	}
	return d.window.Average()
}
