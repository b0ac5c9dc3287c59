package engine

// Tuning constants that do not vary with the driving clock rate.
const (
	// BPM bounds and defaults. Steps outside [BPMMin, BPMMax] are
	// silent no-ops, never errors.
	BPMMin     = 30
	BPMMax     = 300
	BPMDefault = 120

	// FastStep is the increment applied per fast-repeat period once a
	// button has been held past the fast-hold threshold. Near the bound
	// being approached the step drops back to 1 to avoid overshoot.
	FastStep = 5

	// debounceWindow is the number of raw samples kept per button;
	// debounceSustain is the sub-window that must be uniformly pressed
	// before a press counts as confirmed.
	debounceWindow  = 16
	debounceSustain = 10
)

// referenceTickRate is the driving clock of the reference hardware.
const referenceTickRate = 50_000_000

// Params bundles the timing constants that scale with the driving clock.
// A Params value is fixed at Engine construction and never changes at
// runtime.
type Params struct {
	// TickRate is the number of ticks per second of the driving clock.
	TickRate int64

	// PulseTicks and AccentPulseTicks are the output pulse lengths
	// (5 ms and 10 ms at the reference rate).
	PulseTicks       int64
	AccentPulseTicks int64

	// OverlayTicks is the show-mode window after a mode change (2 s).
	OverlayTicks int64

	// FastHoldTicks is how long a BPM button must be held before fast
	// repeat engages (5 s).
	FastHoldTicks int64

	// FastStepMask selects the fast-repeat period from the low bits of
	// the tempo tick counter: a step fires when tickCounter&mask == 0.
	// Must be a power of two minus one.
	FastStepMask int64
}

// Reference returns the constants of the 50 MHz reference hardware.
// Useful for bit-exact tests; far too fast to drive in real time from
// a software loop.
func Reference() Params {
	return Params{
		TickRate:         referenceTickRate,
		PulseTicks:       250_000,
		AccentPulseTicks: 500_000,
		OverlayTicks:     100_000_000,
		FastHoldTicks:    250_000_000,
		FastStepMask:     1<<17 - 1,
	}
}

// Scaled derives Params for a software driving clock at the given rate,
// preserving the reference wall-clock durations. The fast-repeat period
// is rounded up to the nearest power of two so the low-bits selection
// still works.
func Scaled(tickRate int64) Params {
	if tickRate <= 0 {
		tickRate = 1
	}
	return Params{
		TickRate:         tickRate,
		PulseTicks:       atLeastOne(tickRate * 5 / 1000),
		AccentPulseTicks: atLeastOne(tickRate * 10 / 1000),
		OverlayTicks:     atLeastOne(tickRate * 2),
		FastHoldTicks:    atLeastOne(tickRate * 5),
		FastStepMask:     scaledStepMask(tickRate),
	}
}

func scaledStepMask(tickRate int64) int64 {
	period := tickRate * (1 << 17) / referenceTickRate
	mask := int64(1)
	for mask < period {
		mask <<= 1
	}
	return mask - 1
}

func atLeastOne(n int64) int64 {
	if n < 1 {
		return 1
	}
	return n
}
