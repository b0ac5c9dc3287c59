package internal

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sweeney/metronome/internal/display"
	"github.com/sweeney/metronome/internal/engine"
	"github.com/sweeney/metronome/internal/gpio"
	"github.com/sweeney/metronome/internal/mqtt"
	"github.com/sweeney/metronome/internal/status"
)

const tickRate = 1000

// drive runs the reader/engine/publisher/writer pipeline for every
// scripted sample, the way the daemon loop does.
func drive(t *testing.T, samples []gpio.Buttons, eng *engine.Engine, pub *mqtt.FakePublisher, writer *gpio.FakeWriter, tracker *status.Tracker) {
	t.Helper()
	reader := gpio.NewFakeReader(samples)
	startTime := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	prev := eng.Snapshot()

	for i := range samples {
		buttons, err := reader.Read()
		if err != nil {
			t.Fatalf("sample %d: gpio read error: %v", i, err)
		}

		snap := eng.Tick(engine.Inputs{
			Increase: buttons.Increase,
			Decrease: buttons.Decrease,
			Mode:     buttons.Mode,
			Option:   buttons.Option,
		})

		if writer != nil {
			writer.SetPulse(snap.PulseOutput)
			writer.SetBeatLEDs(display.BeatLEDs(snap))
		}

		now := startTime.Add(time.Duration(i) * time.Millisecond)
		for _, event := range engine.Diff(prev, snap) {
			if err := pub.Publish(event, now); err != nil {
				t.Fatalf("sample %d: publish error: %v", i, err)
			}
		}
		prev = snap

		if tracker != nil {
			tracker.Apply(snap)
		}
	}
}

func quiet(n int) []gpio.Buttons {
	return make([]gpio.Buttons, n)
}

func held(b gpio.Buttons, n int) []gpio.Buttons {
	out := make([]gpio.Buttons, n)
	for i := range out {
		out[i] = b
	}
	return out
}

func press(b gpio.Buttons) []gpio.Buttons {
	return append(held(b, 12), quiet(20)...)
}

// TestIntegrationFullFlow walks a realistic session: tempo up, switch to
// TIME_SIG, cycle the signature, stop, and checks the published events.
func TestIntegrationFullFlow(t *testing.T) {
	var samples []gpio.Buttons
	samples = append(samples, quiet(4)...)
	samples = append(samples, press(gpio.Buttons{Increase: true})...) // 120 -> 121
	samples = append(samples, press(gpio.Buttons{Mode: true})...)     // RUN -> TIME_SIG
	samples = append(samples, press(gpio.Buttons{Option: true})...)   // 4/4 -> 6/8
	samples = append(samples, press(gpio.Buttons{Mode: true})...)     // TIME_SIG -> ACCENT
	samples = append(samples, press(gpio.Buttons{Mode: true})...)     // ACCENT -> VISUAL
	samples = append(samples, press(gpio.Buttons{Mode: true})...)     // VISUAL -> RUN
	samples = append(samples, press(gpio.Buttons{Option: true})...)   // stop

	eng := engine.New(engine.Scaled(tickRate))
	pub := mqtt.NewFakePublisher()
	drive(t, samples, eng, pub, nil, nil)

	wantTypes := []engine.EventType{
		engine.EventTempo,
		engine.EventMode,
		engine.EventTimeSig,
		engine.EventMode,
		engine.EventMode,
		engine.EventMode,
		engine.EventStop,
	}
	if len(pub.Events) != len(wantTypes) {
		t.Fatalf("expected %d events, got %d", len(wantTypes), len(pub.Events))
	}
	for i, want := range wantTypes {
		if pub.Events[i].Type != want {
			t.Errorf("event %d: expected %s, got %s", i, want, pub.Events[i].Type)
		}
	}

	last := pub.Events[len(pub.Events)-1].State
	if last.BPM != 121 {
		t.Errorf("final BPM: expected 121, got %d", last.BPM)
	}
	if last.TimeSignature != engine.TimeSig6_8 {
		t.Errorf("final signature: expected 6/8, got %s", last.TimeSignature)
	}
	if last.Running {
		t.Error("expected stopped at end of session")
	}

	// Every payload must be valid JSON with the basics filled in
	for i, payload := range pub.Payloads {
		var parsed mqtt.Payload
		if err := json.Unmarshal(payload, &parsed); err != nil {
			t.Errorf("payload %d: invalid JSON: %v", i, err)
			continue
		}
		if parsed.Metronome.Timestamp == "" {
			t.Errorf("payload %d: missing timestamp", i)
		}
		if parsed.Metronome.Event == "" {
			t.Errorf("payload %d: missing event", i)
		}
	}
}

// TestIntegrationNoEventsWhenIdle verifies a quiet tick stream publishes
// nothing (beats are pin activity, not events).
func TestIntegrationNoEventsWhenIdle(t *testing.T) {
	eng := engine.New(engine.Scaled(tickRate))
	pub := mqtt.NewFakePublisher()

	// 1200 ticks covers two full beats at 120 BPM
	drive(t, quiet(1200), eng, pub, nil, nil)

	if len(pub.Events) != 0 {
		t.Errorf("expected no events while idle, got %d", len(pub.Events))
	}
}

// TestIntegrationBounceRejection verifies a sub-sustain button blip does
// not reach the mode controls.
func TestIntegrationBounceRejection(t *testing.T) {
	var samples []gpio.Buttons
	samples = append(samples, quiet(4)...)
	samples = append(samples, held(gpio.Buttons{Option: true}, 3)...) // too short to sustain
	samples = append(samples, quiet(20)...)

	eng := engine.New(engine.Scaled(tickRate))
	pub := mqtt.NewFakePublisher()
	drive(t, samples, eng, pub, nil, nil)

	if len(pub.Events) != 0 {
		t.Errorf("expected no events for bounce, got %d", len(pub.Events))
	}
	if !eng.Snapshot().Running {
		t.Error("bounce must not toggle transport")
	}
}

// TestIntegrationPulseReachesWriter verifies beats show up on the output
// pin with the correct accent width.
func TestIntegrationPulseReachesWriter(t *testing.T) {
	eng := engine.New(engine.Scaled(tickRate))
	pub := mqtt.NewFakePublisher()
	writer := gpio.NewFakeWriter()

	// 510 ticks: one beat at tick 500 (threshold = 1000*60/120)
	drive(t, quiet(510), eng, pub, writer, nil)

	asserted := 0
	for _, level := range writer.PulseLevels {
		if level {
			asserted++
		}
	}
	// First beat of the measure is accented: 10 ms at 1 kHz
	if asserted != 10 {
		t.Errorf("expected 10 asserted pulse ticks, got %d", asserted)
	}
}

// TestIntegrationVisualOnlySuppressesPin verifies visual-only mutes the
// writer while the LEDs keep walking.
func TestIntegrationVisualOnlySuppressesPin(t *testing.T) {
	var samples []gpio.Buttons
	// Navigate RUN -> TIME_SIG -> ACCENT -> VISUAL, toggle visual-only on
	samples = append(samples, press(gpio.Buttons{Mode: true})...)
	samples = append(samples, press(gpio.Buttons{Mode: true})...)
	samples = append(samples, press(gpio.Buttons{Mode: true})...)
	samples = append(samples, press(gpio.Buttons{Option: true})...)
	// Then run through two beats
	samples = append(samples, quiet(1100)...)

	eng := engine.New(engine.Scaled(tickRate))
	pub := mqtt.NewFakePublisher()
	writer := gpio.NewFakeWriter()
	drive(t, samples, eng, pub, writer, nil)

	if !eng.Snapshot().VisualOnly {
		t.Fatal("expected visual-only enabled")
	}

	for i, level := range writer.PulseLevels {
		if level {
			t.Fatalf("pulse asserted at tick %d despite visual-only", i)
		}
	}

	lit := false
	for _, frame := range writer.LEDFrames {
		for _, on := range frame {
			if on {
				lit = true
			}
		}
	}
	if !lit {
		t.Error("beat LEDs should keep walking in visual-only")
	}
}

// TestIntegrationStatusPipeline verifies engine state flows through the
// tracker into the web JSON document.
func TestIntegrationStatusPipeline(t *testing.T) {
	var samples []gpio.Buttons
	samples = append(samples, quiet(4)...)
	samples = append(samples, press(gpio.Buttons{Increase: true})...)
	samples = append(samples, quiet(1100)...) // two beats

	eng := engine.New(engine.Scaled(tickRate))
	pub := mqtt.NewFakePublisher()
	tracker := status.NewTracker(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC), status.Config{
		PollMs:   1,
		TickRate: tickRate,
		Broker:   "tcp://localhost:1883",
	})
	drive(t, samples, eng, pub, nil, tracker)

	data := status.FormatJSON(tracker.Snapshot())
	var parsed status.StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid status JSON: %v", err)
	}

	if parsed.Status.BPM != 121 {
		t.Errorf("status BPM: expected 121, got %d", parsed.Status.BPM)
	}
	if parsed.Status.Counts.TempoSteps != 1 {
		t.Errorf("status tempo steps: expected 1, got %d", parsed.Status.Counts.TempoSteps)
	}
	if parsed.Status.Counts.Beats < 2 {
		t.Errorf("status beats: expected at least 2, got %d", parsed.Status.Counts.Beats)
	}
}

// TestIntegrationResetLine verifies the dedicated reset input restores
// defaults regardless of accumulated state.
func TestIntegrationResetLine(t *testing.T) {
	var samples []gpio.Buttons
	samples = append(samples, press(gpio.Buttons{Increase: true})...)
	samples = append(samples, press(gpio.Buttons{Mode: true})...)

	eng := engine.New(engine.Scaled(tickRate))
	pub := mqtt.NewFakePublisher()
	drive(t, samples, eng, pub, nil, nil)

	if eng.Snapshot().BPM == 120 && eng.Snapshot().Mode == engine.ModeRun {
		t.Fatal("precondition: state should have drifted from defaults")
	}

	snap := eng.Tick(engine.Inputs{Reset: true})
	if snap != engine.DefaultSnapshot() {
		t.Errorf("reset: expected default snapshot, got %+v", snap)
	}
}

// TestIntegrationShutdownEvent verifies the lifecycle payload for a
// signal-driven shutdown.
func TestIntegrationShutdownEvent(t *testing.T) {
	publisher := mqtt.NewFakePublisher()

	shutdownTime := time.Date(2026, 2, 3, 15, 30, 0, 0, time.UTC)
	event := mqtt.SystemEvent{
		Timestamp: shutdownTime,
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	}

	if err := publisher.PublishSystem(event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed mqtt.SystemPayload
	if err := json.Unmarshal(publisher.SystemPayloads[0], &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.System.Event != "SHUTDOWN" {
		t.Errorf("payload event: expected SHUTDOWN, got %s", parsed.System.Event)
	}
	if parsed.System.Reason != "SIGTERM" {
		t.Errorf("payload reason: expected SIGTERM, got %s", parsed.System.Reason)
	}
	if parsed.System.Timestamp != "2026-02-03T15:30:00Z" {
		t.Errorf("payload timestamp: expected 2026-02-03T15:30:00Z, got %s", parsed.System.Timestamp)
	}
}

// TestIntegrationStartupStatusPayload verifies STARTUP carries the full
// status document the daemon publishes at boot.
func TestIntegrationStartupStatusPayload(t *testing.T) {
	tracker := status.NewTracker(time.Date(2026, 2, 3, 19, 5, 51, 0, time.UTC), status.Config{
		PollMs:      1,
		HeartbeatMs: 900000,
		TickRate:    tickRate,
		Broker:      "tcp://192.168.1.200:1883",
		HTTPAddr:    ":8080",
	})

	snap := tracker.Snapshot()
	publisher := mqtt.NewFakePublisher()
	event := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed status.StatusJSON
	if err := json.Unmarshal(publisher.SystemPayloads[0], &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Status.Event != "STARTUP" {
		t.Errorf("payload event: expected STARTUP, got %s", parsed.Status.Event)
	}
	if parsed.Status.BPM != 120 {
		t.Errorf("payload bpm: expected 120, got %d", parsed.Status.BPM)
	}
	if parsed.Status.Config.Broker != "tcp://192.168.1.200:1883" {
		t.Errorf("payload broker: got %s", parsed.Status.Config.Broker)
	}
}
