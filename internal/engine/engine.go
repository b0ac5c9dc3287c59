package engine

// state is the single mutable aggregate, exclusively owned by the
// Engine and rewritten once per tick. Everything the four buttons and
// the tempo generator touch lives here; external collaborators only
// ever see a Snapshot copied out after commit.
type state struct {
	bpm           int
	running       bool
	mode          Mode
	timeSignature TimeSignature
	accentEnabled bool
	visualOnly    bool

	beatCount    int // position in measure, always < beatsPerMeasure
	beatPosition int // beatCount mod 4, latched at each beat

	tickCounter   int64
	tickThreshold int64

	pulseActive  bool
	pulseCounter int64
	accentedBeat bool
	pulseOutput  bool

	showMode     bool
	overlayTimer int64

	increase  debouncer
	decrease  debouncer
	modeBtn   debouncer
	optionBtn debouncer

	repeatUp   repeater
	repeatDown repeater
}

func defaultState() state {
	return state{
		bpm:           BPMDefault,
		running:       true,
		mode:          ModeRun,
		timeSignature: TimeSig4_4,
		accentEnabled: true,
		visualOnly:    false,
	}
}

// Engine advances the metronome state one tick at a time. It is not
// safe for concurrent use: one goroutine owns the tick schedule, and
// everyone else works from returned Snapshots.
type Engine struct {
	params Params
	s      state
}

// New creates an Engine at the default snapshot (120 BPM, RUN mode,
// running, 4/4, accent on, visual-only off).
func New(p Params) *Engine {
	return &Engine{params: p, s: defaultState()}
}

// Params returns the timing constants the engine was built with.
func (e *Engine) Params() Params {
	return e.params
}

// Snapshot returns the last committed state without advancing a tick.
// The Beat flag is always false here; it only appears on the Tick that
// produced the beat.
func (e *Engine) Snapshot() Snapshot {
	return e.s.snapshot(false)
}

// Reset forces the default snapshot immediately, overriding whatever
// was mid-flight (pulses, overlays, hold counters included).
func (e *Engine) Reset() {
	e.s = defaultState()
}

// Tick advances exactly one tick of the driving clock. It computes the
// entire next state from the previous committed state, then commits it
// atomically; callers never observe a half-updated aggregate. The fixed
// in-tick dataflow is debounce -> fast repeat -> mode control -> tempo
// -> beat accounting -> pulse shaping.
func (e *Engine) Tick(in Inputs) Snapshot {
	if in.Reset {
		e.s = defaultState()
		return e.s.snapshot(false)
	}

	prev := e.s
	next := prev

	next.increase.sample(in.Increase)
	next.decrease.sample(in.Decrease)
	next.modeBtn.sample(in.Mode)
	next.optionBtn.sample(in.Option)

	// Overlay countdown runs before edge handling so a fresh mode change
	// gets its full window starting this tick.
	if next.showMode {
		next.overlayTimer--
		if next.overlayTimer <= 0 {
			next.showMode = false
			next.overlayTimer = 0
		}
	}

	e.stepTempoButtons(&next, prev.tickCounter)
	e.stepModeControl(&next, prev)

	beat := e.stepTempo(&next)
	if beat {
		stepBeatAccounting(&next)
	}
	e.stepPulse(&next, beat)

	e.s = next
	return next.snapshot(beat)
}

// stepTempoButtons applies the Increase/Decrease fast-repeat policy.
// tickBits is the previous committed tempo counter; the repeat period
// is derived from its low bits.
func (e *Engine) stepTempoButtons(next *state, tickBits int64) {
	if step, fast := next.repeatUp.advance(next.increase.heldRecently(), tickBits, e.params); step {
		next.bpm = clampBPM(next.bpm + upStep(next.bpm, fast))
	}
	if step, fast := next.repeatDown.advance(next.decrease.heldRecently(), tickBits, e.params); step {
		next.bpm = clampBPM(next.bpm - downStep(next.bpm, fast))
	}
}

// upStep returns the increment for an Increase step, easing back to 1
// within FastStep of the ceiling so fast repeat cannot overshoot 300.
func upStep(bpm int, fast bool) int {
	if !fast {
		return 1
	}
	if bpm+FastStep > BPMMax {
		return 1
	}
	return FastStep
}

func downStep(bpm int, fast bool) int {
	if !fast {
		return 1
	}
	if bpm-FastStep < BPMMin {
		return 1
	}
	return FastStep
}

func clampBPM(bpm int) int {
	if bpm < BPMMin {
		return BPMMin
	}
	if bpm > BPMMax {
		return BPMMax
	}
	return bpm
}

// stepModeControl handles the Mode and Option release edges. Routing
// decisions read the previous committed mode, so a Mode and Option edge
// landing on the same tick acts on the page that was visible when the
// buttons went down.
func (e *Engine) stepModeControl(next *state, prev state) {
	if next.modeBtn.releaseEdge() {
		next.mode = prev.mode.Next()
		next.showMode = true
		next.overlayTimer = e.params.OverlayTicks
	}

	if !next.optionBtn.releaseEdge() {
		return
	}
	switch prev.mode {
	case ModeRun:
		if !prev.running {
			// A start resets the position cursors; a stop freezes them.
			next.beatCount = 0
			next.beatPosition = 0
			next.tickCounter = 0
		}
		next.running = !prev.running
	case ModeTimeSig:
		next.timeSignature = prev.timeSignature.Next()
		if next.beatCount >= next.timeSignature.BeatsPerMeasure() {
			next.beatCount = 0
		}
	case ModeAccent:
		next.accentEnabled = !prev.accentEnabled
	case ModeVisual:
		next.visualOnly = !prev.visualOnly
	}
}

// stepTempo recomputes the tick threshold from the current BPM and
// advances the period counter, reporting whether a beat fires this
// tick. A stopped metronome freezes the counter without resetting it.
func (e *Engine) stepTempo(next *state) bool {
	next.tickThreshold = e.params.TickRate * 60 / int64(next.bpm)
	if !next.running {
		return false
	}
	next.tickCounter++
	if next.tickCounter >= next.tickThreshold {
		next.tickCounter = 0
		return true
	}
	return false
}

// stepBeatAccounting latches the accent flag and display position for
// the beat that just fired, then advances the measure cursor.
func stepBeatAccounting(next *state) {
	next.accentedBeat = next.beatCount == 0 && next.accentEnabled
	next.beatPosition = next.beatCount % 4
	if next.beatCount+1 >= next.timeSignature.BeatsPerMeasure() {
		next.beatCount = 0
	} else {
		next.beatCount++
	}
}

// stepPulse shapes the output pulse: 10 ms worth of ticks for an
// accented beat, 5 ms otherwise. Visual-only mode suppresses the
// output level while leaving the pulse window itself (and all beat
// accounting) untouched.
func (e *Engine) stepPulse(next *state, beat bool) {
	if beat {
		next.pulseActive = true
		next.pulseCounter = 0
	}
	if !next.pulseActive {
		next.pulseOutput = false
		return
	}

	length := e.params.PulseTicks
	if next.accentedBeat {
		length = e.params.AccentPulseTicks
	}
	if next.pulseCounter < length {
		next.pulseOutput = !next.visualOnly
		next.pulseCounter++
	} else {
		next.pulseOutput = false
		next.pulseActive = false
	}
}

func (s *state) snapshot(beat bool) Snapshot {
	return Snapshot{
		BPM:           s.bpm,
		Running:       s.running,
		Mode:          s.mode,
		TimeSignature: s.timeSignature,
		AccentEnabled: s.accentEnabled,
		VisualOnly:    s.visualOnly,
		BeatPosition:  s.beatPosition,
		ShowMode:      s.showMode,
		PulseOutput:   s.pulseOutput,
		Beat:          beat,
		Accented:      beat && s.accentedBeat,
	}
}

// DefaultSnapshot returns the snapshot the engine presents after reset.
func DefaultSnapshot() Snapshot {
	s := defaultState()
	return s.snapshot(false)
}
