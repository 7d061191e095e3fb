package status

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/sweeney/garage-sensor/internal/logic"
)

func TestNewTracker(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := Config{PollMs: 50, RefreshMs: 1000, LightUpper: 400, LightLower: 200, ADC: "ads1115"}
	tr := NewTracker(start, cfg)

	snap := tr.Snapshot()
	if !snap.StartTime.Equal(start) {
		t.Errorf("StartTime: got %v, want %v", snap.StartTime, start)
	}
	if snap.Config.PollMs != 50 {
		t.Errorf("Config.PollMs: got %d, want 50", snap.Config.PollMs)
	}
	if snap.Config.ADC != "ads1115" {
		t.Errorf("Config.ADC: got %q, want ads1115", snap.Config.ADC)
	}
	if snap.Distance != logic.NoDistance {
		t.Errorf("Distance: got %d, want %d initially", snap.Distance, logic.NoDistance)
	}
}

func TestUpdateAndSnapshot(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	measured := time.Date(2026, 1, 1, 0, 0, 5, 0, time.UTC)

	tr.UpdateRanging(87, measured, 4)
	tr.UpdatePulse(logic.PhaseSeekingLow, 640, 210, logic.Counts{Pulses: 3, Aborted: 1, Measurements: 99})

	snap := tr.Snapshot()
	if snap.Distance != 87 {
		t.Errorf("Distance: got %d, want 87", snap.Distance)
	}
	if !snap.LastMeasured.Equal(measured) {
		t.Errorf("LastMeasured: got %v, want %v", snap.LastMeasured, measured)
	}
	if snap.Phase != logic.PhaseSeekingLow {
		t.Errorf("Phase: got %q, want SEEKING_LOW", snap.Phase)
	}
	if snap.LightLevel != 640 || snap.Average != 210 {
		t.Errorf("light: got level=%d average=%d", snap.LightLevel, snap.Average)
	}
	want := logic.Counts{Pulses: 3, Aborted: 1, Measurements: 4}
	if snap.Counts != want {
		t.Errorf("Counts: got %+v, want %+v", snap.Counts, want)
	}
}

func TestSnapshotUptime(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		StartTime: start,
		Now:       start.Add(15 * time.Minute),
	}

	if snap.Uptime() != 15*time.Minute {
		t.Errorf("Uptime: got %v, want 15m", snap.Uptime())
	}
}

func TestSnapshotNowIsSet(t *testing.T) {
	tr := NewTracker(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Config{})
	fixed := time.Date(2026, 1, 1, 0, 10, 0, 0, time.UTC)
	tr.now = func() time.Time { return fixed }

	if snap := tr.Snapshot(); !snap.Now.Equal(fixed) {
		t.Errorf("Now: got %v, want %v", snap.Now, fixed)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	tr.UpdateRanging(10, time.Now(), 1)

	snap1 := tr.Snapshot()

	tr.UpdateRanging(20, time.Now(), 2)

	if snap1.Distance != 10 {
		t.Error("snapshot should be a copy; Distance was modified")
	}
}

func TestFormatJSON(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		Distance:     120,
		LastMeasured: start.Add(14 * time.Minute),
		Phase:        logic.PhaseSeekingHigh,
		LightLevel:   180,
		Average:      175,
		Counts:       logic.Counts{Pulses: 5, Aborted: 2, Measurements: 900},
		StartTime:    start,
		Now:          start.Add(15 * time.Minute),
		Config:       Config{PollMs: 50, RefreshMs: 1000, HeartbeatMs: 900000, LightUpper: 400, LightLower: 200, LightTimeoutMs: 5000, ADC: "serial"},
	}

	data := FormatJSON(snap)

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Status.UptimeSeconds != 900 {
		t.Errorf("UptimeSeconds: got %d, want 900", parsed.Status.UptimeSeconds)
	}
	if parsed.Status.Ranging.DistanceCm == nil || *parsed.Status.Ranging.DistanceCm != 120 {
		t.Errorf("Ranging.DistanceCm: got %v, want 120", parsed.Status.Ranging.DistanceCm)
	}
	if parsed.Status.Ranging.MeasuredAt != "2026-01-01T00:14:00Z" {
		t.Errorf("Ranging.MeasuredAt: got %q", parsed.Status.Ranging.MeasuredAt)
	}
	if parsed.Status.Ranging.Measurements != 900 {
		t.Errorf("Ranging.Measurements: got %d, want 900", parsed.Status.Ranging.Measurements)
	}
	if parsed.Status.Light.Phase != "SEEKING_HIGH" {
		t.Errorf("Light.Phase: got %q, want SEEKING_HIGH", parsed.Status.Light.Phase)
	}
	if parsed.Status.Light.Pulses != 5 || parsed.Status.Light.Aborted != 2 {
		t.Errorf("Light counts: got pulses=%d aborted=%d", parsed.Status.Light.Pulses, parsed.Status.Light.Aborted)
	}
	if parsed.Status.Config.ADC != "serial" {
		t.Errorf("Config.ADC: got %q, want serial", parsed.Status.Config.ADC)
	}
	// Event should be omitted
	if parsed.Status.Event != "" {
		t.Errorf("expected empty Event for print format, got %q", parsed.Status.Event)
	}
}

func TestFormatJSONUnknownState(t *testing.T) {
	snap := Snapshot{
		Distance:  logic.NoDistance,
		StartTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Now:       time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC),
	}

	data := FormatJSON(snap)

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	status := raw["status"].(map[string]interface{})
	ranging := status["ranging"].(map[string]interface{})
	if ranging["distance_cm"] != nil {
		t.Errorf("distance_cm: got %v, want null before first measurement", ranging["distance_cm"])
	}
	if _, exists := ranging["measured_at"]; exists {
		t.Error("measured_at should be omitted before first measurement")
	}
	light := status["light"].(map[string]interface{})
	if light["phase"] != "UNKNOWN" {
		t.Errorf("phase: got %v, want UNKNOWN", light["phase"])
	}
}

func TestFormatJSONZeroDistance(t *testing.T) {
	snap := Snapshot{
		Distance:  0,
		StartTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Now:       time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC),
	}

	var parsed StatusJSON
	if err := json.Unmarshal(FormatJSON(snap), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Status.Ranging.DistanceCm == nil || *parsed.Status.Ranging.DistanceCm != 0 {
		t.Errorf("a zero reading is reported as 0, got %v", parsed.Status.Ranging.DistanceCm)
	}
}

func TestFormatStatusEvent(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		Distance:  55,
		Phase:     logic.PhaseSeekingLow,
		Counts:    logic.Counts{Pulses: 3},
		StartTime: start,
		Now:       start.Add(15 * time.Minute),
	}

	data := FormatStatusEvent(snap, "HEARTBEAT")

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Status.Event != "HEARTBEAT" {
		t.Errorf("Event: got %q, want HEARTBEAT", parsed.Status.Event)
	}
	if parsed.Status.Light.Phase != "SEEKING_LOW" {
		t.Errorf("Light.Phase: got %q, want SEEKING_LOW", parsed.Status.Light.Phase)
	}
	if parsed.Status.UptimeSeconds != 900 {
		t.Errorf("UptimeSeconds: got %d, want 900", parsed.Status.UptimeSeconds)
	}
	for _, b := range data {
		if b == '\n' {
			t.Fatal("status event should be a single line")
		}
	}
}

func TestConcurrentAccess(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	var wg sync.WaitGroup

	// Writer
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			tr.UpdateRanging(i, time.Now(), i)
			tr.UpdatePulse(logic.PhaseSeekingHigh, i, i, logic.Counts{Pulses: i})
		}
	}()

	// Reader
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			snap := tr.Snapshot()
			_ = snap.Uptime()
		}
	}()

	wg.Wait()
}
