package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string     `json:"event,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	BPM           int        `json:"bpm"`
	Running       bool       `json:"running"`
	Mode          string     `json:"mode"`
	TimeSignature string     `json:"time_signature"`
	Accent        bool       `json:"accent"`
	Visual        bool       `json:"visual"`
	BeatPosition  int        `json:"beat_position"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Counts        CountsJSON `json:"event_counts"`
	Config        ConfigJSON `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Beats       int `json:"beats"`
	Accents     int `json:"accents"`
	ModeChanges int `json:"mode_changes"`
	Starts      int `json:"starts"`
	Stops       int `json:"stops"`
	TempoSteps  int `json:"tempo_steps"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs      int64  `json:"poll_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	TickRate    int64  `json:"tick_rate"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
	TelemetryDB string `json:"telemetry_db,omitempty"`
}

func buildInner(snap Snapshot) StatusInner {
	return StatusInner{
		BPM:           snap.Engine.BPM,
		Running:       snap.Engine.Running,
		Mode:          snap.Engine.Mode.String(),
		TimeSignature: snap.Engine.TimeSignature.String(),
		Accent:        snap.Engine.AccentEnabled,
		Visual:        snap.Engine.VisualOnly,
		BeatPosition:  snap.Engine.BeatPosition,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Beats:       snap.Counts.Beats,
			Accents:     snap.Counts.Accents,
			ModeChanges: snap.Counts.ModeChanges,
			Starts:      snap.Counts.Starts,
			Stops:       snap.Counts.Stops,
			TempoSteps:  snap.Counts.TempoSteps,
		},
		Config: ConfigJSON{
			PollMs:      snap.Config.PollMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			TickRate:    snap.Config.TickRate,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
			TelemetryDB: snap.Config.TelemetryDB,
		},
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
