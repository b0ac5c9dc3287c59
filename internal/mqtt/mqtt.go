// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/metronome/internal/engine"
)

// Topic is the MQTT topic for metronome control events.
const Topic = "music/metronome/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "music/metronome/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a control event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event engine.Event, at time.Time) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Metronome MetronomePayload `json:"metronome"`
}

// MetronomePayload contains the control event details.
type MetronomePayload struct {
	Timestamp     string `json:"timestamp"`
	Event         string `json:"event"`
	BPM           int    `json:"bpm"`
	Running       bool   `json:"running"`
	Mode          string `json:"mode"`
	TimeSignature string `json:"time_signature"`
	Accent        bool   `json:"accent"`
	Visual        bool   `json:"visual"`
}

// FormatPayload creates the JSON payload for a control event.
func FormatPayload(event engine.Event, at time.Time) ([]byte, error) {
	payload := Payload{
		Metronome: MetronomePayload{
			Timestamp:     at.UTC().Format(time.RFC3339),
			Event:         string(event.Type),
			BPM:           event.State.BPM,
			Running:       event.State.Running,
			Mode:          event.State.Mode.String(),
			TimeSignature: event.State.TimeSignature.String(),
			Accent:        event.State.AccentEnabled,
			Visual:        event.State.VisualOnly,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
