// Package display maps engine snapshots to 7-segment digit patterns and
// beat LED levels. It is entirely stateless: every function is a pure
// lookup from a committed snapshot to an output pattern, with no control
// logic of its own.
package display

import "github.com/sweeney/metronome/internal/engine"

// SegPattern is a 7-segment bitmask, one bit per segment:
//
//	 _      bit 0: a (top)
//	|_|     bit 1: b    bit 5: f    bit 6: g (middle)
//	|_|     bit 2: c    bit 4: e    bit 3: d (bottom)
type SegPattern byte

const (
	SegA SegPattern = 1 << iota
	SegB
	SegC
	SegD
	SegE
	SegF
	SegG

	Blank SegPattern = 0
)

// digits indexes patterns by decimal digit.
var digits = [10]SegPattern{
	SegA | SegB | SegC | SegD | SegE | SegF,        // 0
	SegB | SegC,                                    // 1
	SegA | SegB | SegG | SegE | SegD,               // 2
	SegA | SegB | SegG | SegC | SegD,               // 3
	SegF | SegG | SegB | SegC,                      // 4
	SegA | SegF | SegG | SegC | SegD,               // 5
	SegA | SegF | SegG | SegE | SegD | SegC,        // 6
	SegA | SegB | SegC,                             // 7
	SegA | SegB | SegC | SegD | SegE | SegF | SegG, // 8
	SegA | SegB | SegC | SegD | SegF | SegG,        // 9
}

// Lowercase letter approximations used by the mode legends. 7-segment
// text is lossy; some letters share a pattern with a digit.
var letters = map[rune]SegPattern{
	'a': SegA | SegB | SegC | SegE | SegF | SegG,
	'c': SegG | SegE | SegD,
	'g': digits[9],
	'i': SegC,
	'n': SegE | SegG | SegC,
	'r': SegE | SegG,
	's': digits[5],
	't': SegF | SegG | SegE | SegD,
	'u': SegE | SegD | SegC,
	'v': SegE | SegD | SegC,
}

// modeLegends maps each mode to its three-character overlay text.
var modeLegends = map[engine.Mode]string{
	engine.ModeRun:     "run",
	engine.ModeTimeSig: "tsg",
	engine.ModeAccent:  "acc",
	engine.ModeVisual:  "vis",
}

// Frame is one rendered display refresh: three 7-segment digits and
// four beat indicator LEDs.
type Frame struct {
	Digits [3]SegPattern
	LEDs   [4]bool
}

// Render produces the frame for a snapshot: the mode legend while the
// show-mode overlay is up, the BPM otherwise, plus the beat LEDs.
func Render(snap engine.Snapshot) Frame {
	var f Frame
	if snap.ShowMode {
		f.Digits = Legend(modeLegends[snap.Mode])
	} else {
		f.Digits = BPMDigits(snap.BPM)
	}
	f.LEDs = BeatLEDs(snap)
	return f
}

// BPMDigits renders a BPM value as three digits with leading blanks
// (e.g. 45 renders as " 45"). Values are expected to be within the
// engine's range; anything else is truncated to its low three digits.
func BPMDigits(bpm int) [3]SegPattern {
	if bpm < 0 {
		bpm = 0
	}
	bpm %= 1000

	out := [3]SegPattern{Blank, Blank, digits[bpm%10]}
	if bpm >= 10 {
		out[1] = digits[bpm/10%10]
	}
	if bpm >= 100 {
		out[0] = digits[bpm/100]
	}
	return out
}

// Legend renders up to three characters of 7-segment text. Unknown
// characters render blank.
func Legend(text string) [3]SegPattern {
	var out [3]SegPattern
	i := 0
	for _, r := range text {
		if i == len(out) {
			break
		}
		if r >= '0' && r <= '9' {
			out[i] = digits[r-'0']
		} else {
			out[i] = letters[r]
		}
		i++
	}
	return out
}

// BeatLEDs maps the snapshot's beat position to the four indicator
// LEDs. All four are dark while the metronome is stopped.
func BeatLEDs(snap engine.Snapshot) [4]bool {
	var leds [4]bool
	if !snap.Running {
		return leds
	}
	leds[snap.BeatPosition%4] = true
	return leds
}
