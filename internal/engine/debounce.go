package engine

// debouncer filters one noisy button line into a stable logical state.
// It keeps a sliding window of the last debounceWindow raw samples and
// derives three predicates from it:
//
//   - heldRecently: at least one pressed sample anywhere in the window.
//     Biased toward detecting a press quickly; feeds the fast-repeat path.
//   - sustainedHeld: the most recent debounceSustain samples are all
//     pressed. Noise-resistant; feeds the mode/option edge path.
//   - releaseEdge: sustainedHeld went true -> false on the latest sample,
//     so the edge registers on clean release after a confirmed press,
//     not on initial contact. This debounces both press and release.
//
// The zero value is ready to use. debouncer has no side effects beyond
// its own window; it is a plain value and copies freely with the state
// aggregate that owns it.
type debouncer struct {
	window  [debounceWindow]bool
	next    int // write index into window
	pressed int // pressed samples currently in window

	held     bool // sustainedHeld as of the latest sample
	prevHeld bool // sustainedHeld as of the previous sample
}

// sample records one raw sample and re-derives the predicates.
func (d *debouncer) sample(pressed bool) {
	if d.window[d.next] {
		d.pressed--
	}
	d.window[d.next] = pressed
	if pressed {
		d.pressed++
	}
	d.next = (d.next + 1) % debounceWindow

	d.prevHeld = d.held
	d.held = d.sustained()
}

// sustained reports whether the most recent debounceSustain samples are
// all pressed.
func (d *debouncer) sustained() bool {
	for i := 1; i <= debounceSustain; i++ {
		if !d.window[(d.next-i+debounceWindow)%debounceWindow] {
			return false
		}
	}
	return true
}

func (d *debouncer) heldRecently() bool {
	return d.pressed > 0
}

func (d *debouncer) sustainedHeld() bool {
	return d.held
}

func (d *debouncer) releaseEdge() bool {
	return d.prevHeld && !d.held
}
