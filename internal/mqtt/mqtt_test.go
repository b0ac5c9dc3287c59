package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/metronome/internal/engine"
)

func sampleEvent() engine.Event {
	return engine.Event{
		Type: engine.EventTempo,
		State: engine.Snapshot{
			BPM:           128,
			Running:       true,
			Mode:          engine.ModeRun,
			TimeSignature: engine.TimeSig4_4,
			AccentEnabled: true,
		},
	}
}

func TestFormatPayload(t *testing.T) {
	at := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

	data, err := FormatPayload(sampleEvent(), at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded Payload
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}

	m := decoded.Metronome
	if m.Timestamp != "2025-03-14T09:26:53Z" {
		t.Errorf("timestamp: got %s", m.Timestamp)
	}
	if m.Event != "TEMPO" {
		t.Errorf("event: got %s, want TEMPO", m.Event)
	}
	if m.BPM != 128 {
		t.Errorf("bpm: got %d, want 128", m.BPM)
	}
	if !m.Running {
		t.Error("running: got false, want true")
	}
	if m.Mode != "RUN" {
		t.Errorf("mode: got %s, want RUN", m.Mode)
	}
	if m.TimeSignature != "4/4" {
		t.Errorf("time signature: got %s, want 4/4", m.TimeSignature)
	}
	if !m.Accent {
		t.Error("accent: got false, want true")
	}
	if m.Visual {
		t.Error("visual: got true, want false")
	}
}

func TestFormatPayloadExactJSON(t *testing.T) {
	at := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	event := engine.Event{
		Type: engine.EventStart,
		State: engine.Snapshot{
			BPM:           120,
			Running:       true,
			Mode:          engine.ModeRun,
			TimeSignature: engine.TimeSig4_4,
			AccentEnabled: true,
		},
	}

	data, err := FormatPayload(event, at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := `{"metronome":{"timestamp":"2025-03-14T09:26:53Z","event":"START","bpm":120,"running":true,"mode":"RUN","time_signature":"4/4","accent":true,"visual":false}}`
	if string(data) != want {
		t.Errorf("payload mismatch:\ngot  %s\nwant %s", data, want)
	}
}

func TestFormatPayloadTimezoneConversion(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	at := time.Date(2025, 3, 14, 10, 26, 53, 0, loc)

	data, err := FormatPayload(sampleEvent(), at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded Payload
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if decoded.Metronome.Timestamp != "2025-03-14T09:26:53Z" {
		t.Errorf("timestamp should be UTC: got %s", decoded.Metronome.Timestamp)
	}
}

func TestFormatPayloadAllEventTypes(t *testing.T) {
	types := []engine.EventType{
		engine.EventStart,
		engine.EventStop,
		engine.EventTempo,
		engine.EventMode,
		engine.EventTimeSig,
		engine.EventAccentOn,
		engine.EventAccentOff,
		engine.EventVisualOn,
		engine.EventVisualOff,
	}

	at := time.Now()
	for _, typ := range types {
		event := sampleEvent()
		event.Type = typ

		data, err := FormatPayload(event, at)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", typ, err)
			continue
		}

		var decoded Payload
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Errorf("%s: payload is not valid JSON: %v", typ, err)
			continue
		}
		if decoded.Metronome.Event != string(typ) {
			t.Errorf("%s: event field got %s", typ, decoded.Metronome.Event)
		}
	}
}

func TestTopic(t *testing.T) {
	if Topic != "music/metronome/events" {
		t.Errorf("unexpected topic: %s", Topic)
	}
}

func TestTopicSystem(t *testing.T) {
	if TopicSystem != "music/metronome/system" {
		t.Errorf("unexpected system topic: %s", TopicSystem)
	}
}

func TestFormatSystemPayload(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	}

	data, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded SystemPayload
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}

	if decoded.System.Event != "SHUTDOWN" {
		t.Errorf("event: got %s", decoded.System.Event)
	}
	if decoded.System.Reason != "SIGTERM" {
		t.Errorf("reason: got %s", decoded.System.Reason)
	}
	if decoded.System.Timestamp != "2025-03-14T09:26:53Z" {
		t.Errorf("timestamp: got %s", decoded.System.Timestamp)
	}
}

func TestFormatSystemPayloadExactJSON(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGINT",
	}

	data, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := `{"system":{"timestamp":"2025-03-14T09:26:53Z","event":"SHUTDOWN","reason":"SIGINT"}}`
	if string(data) != want {
		t.Errorf("payload mismatch:\ngot  %s\nwant %s", data, want)
	}
}

func TestFormatSystemPayloadOmitsEmptyReason(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC),
		Event:     "HEARTBEAT",
	}

	data, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var raw map[string]map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if _, present := raw["system"]["reason"]; present {
		t.Error("empty reason should be omitted")
	}
}

func TestFormatSystemPayloadRawPassthrough(t *testing.T) {
	raw := []byte(`{"system":{"event":"STARTUP","bpm":120}}`)
	event := SystemEvent{
		Timestamp:  time.Now(),
		Event:      "STARTUP",
		RawPayload: raw,
	}

	data, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != string(raw) {
		t.Errorf("raw payload should pass through unchanged:\ngot  %s\nwant %s", data, raw)
	}
}

func TestFakePublisher(t *testing.T) {
	f := NewFakePublisher()
	at := time.Now()

	if err := f.Publish(sampleEvent(), at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(f.Events))
	}
	if f.Events[0].Type != engine.EventTempo {
		t.Errorf("event type: got %s", f.Events[0].Type)
	}
	if len(f.Payloads) != 1 {
		t.Fatalf("expected 1 payload, got %d", len(f.Payloads))
	}

	var decoded Payload
	if err := json.Unmarshal(f.Payloads[0], &decoded); err != nil {
		t.Errorf("recorded payload is not valid JSON: %v", err)
	}
}

func TestFakePublisherError(t *testing.T) {
	f := NewFakePublisher()
	f.PublishError = errors.New("broker unreachable")

	if err := f.Publish(sampleEvent(), time.Now()); err == nil {
		t.Error("expected configured publish error")
	}
	if len(f.Events) != 0 {
		t.Error("failed publish should not record the event")
	}
}

func TestFakePublisherPublishSystem(t *testing.T) {
	f := NewFakePublisher()

	event := SystemEvent{
		Timestamp: time.Now(),
		Event:     "STARTUP",
	}
	if err := f.PublishSystem(event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.SystemEvents) != 1 {
		t.Fatalf("expected 1 system event, got %d", len(f.SystemEvents))
	}
	if f.SystemEvents[0].Event != "STARTUP" {
		t.Errorf("system event: got %s", f.SystemEvents[0].Event)
	}
	if len(f.SystemPayloads) != 1 {
		t.Fatalf("expected 1 system payload, got %d", len(f.SystemPayloads))
	}
}

func TestFakePublisherPreservesEventOrder(t *testing.T) {
	f := NewFakePublisher()
	at := time.Now()

	order := []engine.EventType{
		engine.EventStart,
		engine.EventTempo,
		engine.EventMode,
		engine.EventStop,
	}
	for _, typ := range order {
		event := sampleEvent()
		event.Type = typ
		if err := f.Publish(event, at); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if len(f.Events) != len(order) {
		t.Fatalf("expected %d events, got %d", len(order), len(f.Events))
	}
	for i, typ := range order {
		if f.Events[i].Type != typ {
			t.Errorf("event %d: got %s, want %s", i, f.Events[i].Type, typ)
		}
	}
}

func TestFakePublisherReset(t *testing.T) {
	f := NewFakePublisher()
	f.Publish(sampleEvent(), time.Now())
	f.PublishSystem(SystemEvent{Timestamp: time.Now(), Event: "STARTUP"})
	f.Connected = true
	f.Close()

	f.Reset()

	if len(f.Events) != 0 || len(f.Payloads) != 0 {
		t.Error("Reset should clear events and payloads")
	}
	if len(f.SystemEvents) != 0 || len(f.SystemPayloads) != 0 {
		t.Error("Reset should clear system events and payloads")
	}
	if f.Closed {
		t.Error("Reset should clear Closed")
	}
	if f.IsConnected() {
		t.Error("Reset should clear Connected")
	}
}

func TestFakePublisherClose(t *testing.T) {
	f := NewFakePublisher()
	if err := f.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !f.Closed {
		t.Error("Close should mark publisher closed")
	}
}
