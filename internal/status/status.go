// Package status provides a thread-safe status tracker for the garage-sensor
// daemon. The control loop writes it; print-state and heartbeat logging read
// point-in-time snapshots.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/garage-sensor/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	PollMs         int64
	RefreshMs      int64
	HeartbeatMs    int64
	LightUpper     int
	LightLower     int
	LightTimeoutMs int64
	Adaptive       bool
	ADC            string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Distance     int
	LastMeasured time.Time
	Phase        logic.Phase
	LightLevel   int
	Average      int
	Counts       logic.Counts
	StartTime    time.Time
	Now          time.Time
	Config       Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			Distance:  logic.NoDistance,
			StartTime: startTime,
			Config:    cfg,
		},
		now: time.Now,
	}
}

// UpdateRanging records the latest distance reading.
func (t *Tracker) UpdateRanging(distance int, measured time.Time, measurements int) {
	t.mu.Lock()
	t.snap.Distance = distance
	t.snap.LastMeasured = measured
	t.snap.Counts.Measurements = measurements
	t.mu.Unlock()
}

// UpdatePulse records the pulse detector state. The Measurements field of
// counts is ignored.
func (t *Tracker) UpdatePulse(phase logic.Phase, level, average int, counts logic.Counts) {
	t.mu.Lock()
	t.snap.Phase = phase
	t.snap.LightLevel = level
	t.snap.Average = average
	t.snap.Counts.Pulses = counts.Pulses
	t.snap.Counts.Aborted = counts.Aborted
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = t.now()
	return s
}
