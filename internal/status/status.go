// Package status provides a thread-safe status tracker for the metronome daemon.
// It is designed to be read by HTTP handlers and MQTT heartbeat publishing.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/metronome/internal/engine"
)

// Counts accumulates control event totals since startup.
type Counts struct {
	Beats       int
	Accents     int
	ModeChanges int
	Starts      int
	Stops       int
	TempoSteps  int
}

// Config contains daemon configuration for display.
type Config struct {
	PollMs      int64
	HeartbeatMs int64
	TickRate    int64
	Broker      string
	HTTPAddr    string
	TelemetryDB string // empty = telemetry disabled
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type. Safe to use after the lock is released.
type Snapshot struct {
	Engine        engine.Snapshot
	Counts        Counts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
	prev engine.Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
// The engine deterministically starts from its default snapshot, so
// that is the baseline the first Apply diffs against.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
			Engine:    engine.DefaultSnapshot(),
		},
		prev: engine.DefaultSnapshot(),
	}
}

// Apply records the latest engine state and accumulates event counts
// by diffing against the previously applied snapshot.
// Called from runLoop on every tick.
func (t *Tracker) Apply(s engine.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if s.Beat {
		t.snap.Counts.Beats++
		if s.Accented {
			t.snap.Counts.Accents++
		}
	}
	if s.Mode != t.prev.Mode {
		t.snap.Counts.ModeChanges++
	}
	if s.Running && !t.prev.Running {
		t.snap.Counts.Starts++
	}
	if !s.Running && t.prev.Running {
		t.snap.Counts.Stops++
	}
	if s.BPM != t.prev.BPM {
		t.snap.Counts.TempoSteps++
	}

	t.snap.Engine = s
	t.prev = s
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
