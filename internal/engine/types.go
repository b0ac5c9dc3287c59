// Package engine contains the metronome control core: a synchronous,
// tick-driven state machine covering debounced button input, tempo
// generation, beat accounting, mode selection, and pulse shaping.
// This package has NO external dependencies (no GPIO, MQTT, OS, or
// time.Sleep). Time is the tick: one call to Engine.Tick is one step
// of the driving clock, and nothing else advances state.
package engine

// Mode is the currently selected settings page.
type Mode int

const (
	ModeRun Mode = iota
	ModeTimeSig
	ModeAccent
	ModeVisual

	modeCount = 4
)

// Next returns the mode that follows in cycle order (VISUAL wraps to RUN).
func (m Mode) Next() Mode {
	return (m + 1) % modeCount
}

func (m Mode) String() string {
	switch m {
	case ModeRun:
		return "RUN"
	case ModeTimeSig:
		return "TIME_SIG"
	case ModeAccent:
		return "ACCENT"
	case ModeVisual:
		return "VISUAL"
	}
	return "UNKNOWN"
}

// TimeSignature selects the beats-per-measure mapping.
type TimeSignature int

const (
	TimeSig2_4 TimeSignature = iota
	TimeSig3_4
	TimeSig4_4
	TimeSig6_8

	timeSigCount = 4
)

// Next returns the signature that follows in cycle order (6/8 wraps to 2/4).
func (ts TimeSignature) Next() TimeSignature {
	return (ts + 1) % timeSigCount
}

// BeatsPerMeasure returns the measure length for the signature.
func (ts TimeSignature) BeatsPerMeasure() int {
	switch ts {
	case TimeSig2_4:
		return 2
	case TimeSig3_4:
		return 3
	case TimeSig6_8:
		return 6
	}
	return 4
}

func (ts TimeSignature) String() string {
	switch ts {
	case TimeSig2_4:
		return "2/4"
	case TimeSig3_4:
		return "3/4"
	case TimeSig6_8:
		return "6/8"
	}
	return "4/4"
}

// Inputs is one tick's worth of sampled button state, already converted
// from raw active-low levels to logical "pressed" booleans by the GPIO
// layer. Reset is the asynchronous override: when set, the entire state
// reverts to defaults this tick regardless of everything else.
type Inputs struct {
	Increase bool
	Decrease bool
	Mode     bool
	Option   bool
	Reset    bool
}

// Snapshot is the committed, read-only view of one tick. Rendering
// collaborators (display decoder, LED mapper, status page) consume
// snapshots and never mutate engine state.
type Snapshot struct {
	BPM           int
	Running       bool
	Mode          Mode
	TimeSignature TimeSignature
	AccentEnabled bool
	VisualOnly    bool

	// BeatPosition is beatCount mod 4. It deliberately truncates to four
	// values even in 6/8 time: beats 4 and 5 alias onto positions 0 and 1.
	// Correcting this would change observable beat-indicator behavior, so
	// it stays.
	BeatPosition int

	// ShowMode is the transient "just changed mode" overlay window. While
	// set, the display presents the mode legend instead of the BPM.
	ShowMode bool

	// PulseOutput is the logical beat pulse (true = asserted). The GPIO
	// layer maps it to the active-low hardware line. Held false for the
	// whole pulse window when VisualOnly is set.
	PulseOutput bool

	// Beat is set only on the tick a new beat begins; Accented mirrors
	// whether that beat landed on an accented downbeat.
	Beat     bool
	Accented bool
}
