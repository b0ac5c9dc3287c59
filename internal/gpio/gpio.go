// Package gpio provides GPIO button input and pulse/LED output with
// hardware abstraction. The real implementation uses the Linux GPIO
// character device. The fake implementations allow testing without
// hardware.
package gpio

// Buttons holds the logical states of the four front panel buttons.
type Buttons struct {
	Increase bool
	Decrease bool
	Mode     bool
	Option   bool
}

// Reader reads GPIO button states.
type Reader interface {
	// Read returns the logical button states.
	// The raw GPIO values are inverted: raw low = pressed.
	Read() (Buttons, error)

	// Close releases GPIO resources.
	Close() error
}

// Writer drives the pulse output and the beat LEDs.
type Writer interface {
	// SetPulse drives the pulse output line. true = asserted.
	SetPulse(on bool) error

	// SetBeatLEDs drives the four beat position LEDs.
	SetBeatLEDs(leds [4]bool) error

	// Close releases GPIO resources.
	Close() error
}

// ButtonPins holds BCM pin numbers for the four buttons.
type ButtonPins struct {
	Increase int
	Decrease int
	Mode     int
	Option   int
}

// OutputPins holds BCM pin numbers for the pulse output and beat LEDs.
type OutputPins struct {
	Pulse int
	LEDs  [4]int
}

// Default pin assignments (BCM numbering).
var (
	DefaultButtonPins = ButtonPins{Increase: 5, Decrease: 6, Mode: 13, Option: 19}
	DefaultOutputPins = OutputPins{Pulse: 12, LEDs: [4]int{16, 20, 21, 26}}
)
