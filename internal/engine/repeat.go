package engine

// repeater escalates a held BPM button from a single tap into fast
// repeat. One instance per direction; the two directions accumulate
// independently.
//
// Behavior while the button reads heldRecently:
//
//   - first tick of a fresh press (hold counter still zero): one
//     immediate step of 1;
//   - after that, nothing until the hold counter crosses the fast-hold
//     threshold (the deliberate pause between "tap" and "fast repeat");
//   - once fast mode engages, a step fires on every tick where the low
//     bits of the tempo counter are zero.
//
// While not held, both the counter and fast mode reset. A rapid
// double-tap inside the heldRecently window therefore reads as one
// continuous hold; that matches the reference behavior and is left
// as-is.
type repeater struct {
	holdTicks int64
	fast      bool
}

// advance consumes one tick of hold state and reports whether a step is
// due this tick, and whether it is a fast step (caller picks the step
// size and direction). tickBits is the previous committed tempo counter.
func (r *repeater) advance(held bool, tickBits int64, p Params) (step, fast bool) {
	if !held {
		r.holdTicks = 0
		r.fast = false
		return false, false
	}

	first := r.holdTicks == 0
	if r.holdTicks < p.FastHoldTicks {
		r.holdTicks++
	}
	if r.holdTicks >= p.FastHoldTicks {
		r.fast = true
	}

	if first {
		return true, false
	}
	if r.fast && tickBits&p.FastStepMask == 0 {
		return true, true
	}
	return false, false
}
