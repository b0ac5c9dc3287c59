package engine

// EventType classifies a control change between two committed ticks.
type EventType string

const (
	EventStart     EventType = "START"
	EventStop      EventType = "STOP"
	EventTempo     EventType = "TEMPO"
	EventMode      EventType = "MODE"
	EventTimeSig   EventType = "TIME_SIGNATURE"
	EventAccentOn  EventType = "ACCENT_ON"
	EventAccentOff EventType = "ACCENT_OFF"
	EventVisualOn  EventType = "VISUAL_ON"
	EventVisualOff EventType = "VISUAL_OFF"
)

// Event is a control change to be published. State carries the full
// snapshot after the change so consumers never need to re-query.
type Event struct {
	Type  EventType
	State Snapshot
}

// Diff derives the control events that separate two consecutive
// snapshots. Beat pulses are deliberately not events: at 300 BPM they
// fire five times a second and belong on the output pin, not the wire.
func Diff(prev, next Snapshot) []Event {
	var events []Event
	add := func(t EventType) {
		events = append(events, Event{Type: t, State: next})
	}

	if !prev.Running && next.Running {
		add(EventStart)
	}
	if prev.Running && !next.Running {
		add(EventStop)
	}
	if prev.BPM != next.BPM {
		add(EventTempo)
	}
	if prev.Mode != next.Mode {
		add(EventMode)
	}
	if prev.TimeSignature != next.TimeSignature {
		add(EventTimeSig)
	}
	if prev.AccentEnabled != next.AccentEnabled {
		if next.AccentEnabled {
			add(EventAccentOn)
		} else {
			add(EventAccentOff)
		}
	}
	if prev.VisualOnly != next.VisualOnly {
		if next.VisualOnly {
			add(EventVisualOn)
		} else {
			add(EventVisualOff)
		}
	}
	return events
}
