package logic

import "time"

// RangeCache holds the most recent distance and when it was measured.
type RangeCache struct {
	interval     time.Duration
	distance     int
	measuredAt   time.Time
	measurements int
}

// NewRangeCache creates an empty cache. An interval of zero or less makes
// every read stale.
func NewRangeCache(interval time.Duration) *RangeCache {
	return &RangeCache{
		interval: interval,
		distance: NoDistance,
	}
}

// Stale reports whether a new measurement is needed at now: the cache was
// never filled, caching is disabled, or strictly more than the refresh
// interval has elapsed since the last measurement.
func (c *RangeCache) Stale(now time.Time) bool {
	if c.distance == NoDistance || c.interval <= 0 {
		return true
	}
	return now.Sub(c.measuredAt) > c.interval
}

// Store records a fresh measurement taken at now.
func (c *RangeCache) Store(distance int, now time.Time) {
	c.distance = distance
	c.measuredAt = now
	c.measurements++
}

// Distance returns the cached distance or NoDistance.
func (c *RangeCache) Distance() int {
	return c.distance
}

// MeasuredAt returns the time of the last measurement.
func (c *RangeCache) MeasuredAt() time.Time {
	return c.measuredAt
}

// Measurements returns how many times the cache has been filled.
func (c *RangeCache) Measurements() int {
	return c.measurements
}

// EchoToDistance converts a round-trip echo width into a one-way distance
// in centimeters, truncated toward zero. velocity is in cm/µs.
// A zero width yields zero; callers decide what that means.
// The arithmetic is single precision so truncation matches the controller
// firmware's float math on every width.
func EchoToDistance(width time.Duration, velocity float64) int {
	return int(float32(width.Microseconds()) * float32(velocity) / 2)
}
