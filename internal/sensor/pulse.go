package sensor

import (
	"log"
	"time"

	"github.com/sweeney/garage-sensor/internal/gpio"
	"github.com/sweeney/garage-sensor/internal/logic"
)

// PulseSensor detects light pulses on an analog input.
type PulseSensor struct {
	in       gpio.AnalogInput
	now      func() time.Time
	detector *logic.PulseDetector
	last     int
}

// NewPulseSensor creates a sensor reading from in.
func NewPulseSensor(in gpio.AnalogInput, cfg logic.PulseConfig, now func() time.Time) *PulseSensor {
	return &PulseSensor{
		in:       in,
		now:      now,
		detector: logic.NewPulseDetector(cfg),
	}
}

// Begin seeds the rolling baseline from one sample. If the read fails the
// first Update seeds it instead.
func (s *PulseSensor) Begin() {
	v, err := s.in.ReadAnalog()
	if err != nil {
		log.Printf("sensor: pulse begin: %v", err)
		return
	}
	s.last = v
	s.detector.Seed(v, s.now())
}

// Update takes one sample and advances the detector. A failed read still
// lets a stale excursion time out, but the rolling window waits for the next
// good sample.
func (s *PulseSensor) Update() {
	v, err := s.in.ReadAnalog()
	if err != nil {
		log.Printf("sensor: pulse read: %v", err)
		if s.detector.Expire(s.now()) {
			log.Printf("sensor: pulse timed out while input unreadable")
		}
		return
	}
	s.last = v
	s.detector.Process(v, s.now())
}

// DidPulse reports whether a pulse completed since the last call and clears
// the latch.
func (s *PulseSensor) DidPulse() bool {
	return s.detector.DidPulse()
}

// Phase returns the detector phase.
func (s *PulseSensor) Phase() logic.Phase {
	return s.detector.Phase()
}

// Average returns the live baseline.
func (s *PulseSensor) Average() int {
	return s.detector.Average()
}

// Thresholds returns the effective upper and lower light levels.
func (s *PulseSensor) Thresholds() (upper, lower int) {
	return s.detector.Thresholds()
}

// LastValue returns the most recent successful sample.
func (s *PulseSensor) LastValue() int {
	return s.last
}

// Counts returns pulse and abort counters.
func (s *PulseSensor) Counts() logic.Counts {
	return s.detector.Counts()
}
