package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/garage-sensor/internal/logic"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string      `json:"event,omitempty"`
	UptimeSeconds int64       `json:"uptime_seconds"`
	StartTime     string      `json:"start_time"`
	Timestamp     string      `json:"timestamp"`
	Ranging       RangingJSON `json:"ranging"`
	Light         LightJSON   `json:"light"`
	Config        ConfigJSON  `json:"config"`
}

// RangingJSON reports the distance sensor.
type RangingJSON struct {
	DistanceCm   *int   `json:"distance_cm"` // null until first measurement
	MeasuredAt   string `json:"measured_at,omitempty"`
	Measurements int    `json:"measurements"`
}

// LightJSON reports the light pulse sensor.
type LightJSON struct {
	Phase   string `json:"phase"`
	Level   int    `json:"level"`
	Average int    `json:"average"`
	Pulses  int    `json:"pulses"`
	Aborted int    `json:"aborted"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs         int64  `json:"poll_ms"`
	RefreshMs      int64  `json:"refresh_ms"`
	HeartbeatMs    int64  `json:"heartbeat_ms"`
	LightUpper     int    `json:"light_upper"`
	LightLower     int    `json:"light_lower"`
	LightTimeoutMs int64  `json:"light_timeout_ms"`
	Adaptive       bool   `json:"adaptive"`
	ADC            string `json:"adc"`
}

func buildInner(snap Snapshot) StatusInner {
	phase := string(snap.Phase)
	if phase == "" {
		phase = "UNKNOWN"
	}

	inner := StatusInner{
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		Ranging: RangingJSON{
			Measurements: snap.Counts.Measurements,
		},
		Light: LightJSON{
			Phase:   phase,
			Level:   snap.LightLevel,
			Average: snap.Average,
			Pulses:  snap.Counts.Pulses,
			Aborted: snap.Counts.Aborted,
		},
		Config: ConfigJSON{
			PollMs:         snap.Config.PollMs,
			RefreshMs:      snap.Config.RefreshMs,
			HeartbeatMs:    snap.Config.HeartbeatMs,
			LightUpper:     snap.Config.LightUpper,
			LightLower:     snap.Config.LightLower,
			LightTimeoutMs: snap.Config.LightTimeoutMs,
			Adaptive:       snap.Config.Adaptive,
			ADC:            snap.Config.ADC,
		},
	}

	if snap.Distance != logic.NoDistance {
		d := snap.Distance
		inner.Ranging.DistanceCm = &d
		inner.Ranging.MeasuredAt = snap.LastMeasured.UTC().Format(time.RFC3339)
	}
	return inner
}

// FormatJSON returns the indented JSON status printed by -print-state.
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns single-line JSON status tagged with event, for
// log lines.
func FormatStatusEvent(snap Snapshot, event string) []byte {
	inner := buildInner(snap)
	inner.Event = event

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
