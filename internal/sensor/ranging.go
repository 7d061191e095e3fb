// Package sensor binds the pure state machines in logic to the hardware
// contract in gpio and an injected clock. Components are polled from a
// single control loop and are not safe for concurrent use.
//
// Hardware failures are logged and degraded into ordinary readings; no
// method here returns an error.
package sensor

import (
	"log"
	"time"

	"github.com/sweeney/garage-sensor/internal/gpio"
	"github.com/sweeney/garage-sensor/internal/logic"
)

// Trigger pulse timing for HC-SR04 style modules.
const (
	triggerSettle = 2 * time.Microsecond
	triggerWidth  = 10 * time.Microsecond
)

// RangingSensor is an ultrasonic distance sensor with a time-gated cache.
type RangingSensor struct {
	trigger gpio.Output
	echo    gpio.EchoInput
	cfg     logic.RangeConfig
	now     func() time.Time
	wait    func(time.Duration)
	cache   *logic.RangeCache
}

// NewRangingSensor creates a sensor with an empty cache. wait is the
// microsecond delay used while shaping the trigger pulse.
func NewRangingSensor(trigger gpio.Output, echo gpio.EchoInput, cfg logic.RangeConfig, now func() time.Time, wait func(time.Duration)) *RangingSensor {
	return &RangingSensor{
		trigger: trigger,
		echo:    echo,
		cfg:     cfg,
		now:     now,
		wait:    wait,
		cache:   logic.NewRangeCache(cfg.RefreshInterval),
	}
}

// GetDistance returns the distance in centimeters. The first call, and any
// call made more than the refresh interval after the last measurement,
// fires the module and blocks on the echo; all other calls return the
// cached value without touching hardware.
//
// A missing echo reads as zero and is returned as-is.
func (s *RangingSensor) GetDistance() int {
	now := s.now()
	if !s.cache.Stale(now) {
		return s.cache.Distance()
	}

	d := logic.EchoToDistance(s.measure(), s.cfg.SoundVelocity)
	s.cache.Store(d, now)
	return d
}

// measure emits the trigger pulse and times the echo.
func (s *RangingSensor) measure() time.Duration {
	s.setTrigger(0)
	s.wait(triggerSettle)
	s.setTrigger(1)
	s.wait(triggerWidth)
	s.setTrigger(0)

	width, err := s.echo.PulseWidth(s.cfg.EchoTimeout)
	if err != nil {
		log.Printf("sensor: ranging: %v", err)
		return 0
	}
	return width
}

func (s *RangingSensor) setTrigger(level int) {
	if err := s.trigger.SetValue(level); err != nil {
		log.Printf("sensor: trigger: %v", err)
	}
}

// Measurements returns how many physical measurements have been taken.
func (s *RangingSensor) Measurements() int {
	return s.cache.Measurements()
}

// LastMeasured returns when the cached distance was measured.
func (s *RangingSensor) LastMeasured() time.Time {
	return s.cache.MeasuredAt()
}
