//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealReader reads the panel buttons from actual hardware using the
// Linux GPIO character device.
type RealReader struct {
	chip     *gpiocdev.Chip
	increase *gpiocdev.Line
	decrease *gpiocdev.Line
	mode     *gpiocdev.Line
	option   *gpiocdev.Line
}

// NewRealReader creates a GPIO button reader for actual Raspberry Pi hardware.
func NewRealReader(pins ButtonPins) (*RealReader, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	r := &RealReader{chip: chip}

	// Buttons short the pin to ground when pressed, so request with
	// pull-up and invert on read.
	request := func(pin int, name string) (*gpiocdev.Line, error) {
		line, err := chip.RequestLine(pin, gpiocdev.AsInput, gpiocdev.WithPullUp)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("request %s pin %d: %w", name, pin, err)
		}
		return line, nil
	}

	if r.increase, err = request(pins.Increase, "increase"); err != nil {
		return nil, err
	}
	if r.decrease, err = request(pins.Decrease, "decrease"); err != nil {
		return nil, err
	}
	if r.mode, err = request(pins.Mode, "mode"); err != nil {
		return nil, err
	}
	if r.option, err = request(pins.Option, "option"); err != nil {
		return nil, err
	}

	return r, nil
}

// Read returns the logical button states.
// Inverts raw GPIO: raw low (0) = pressed, raw high (1) = released.
func (r *RealReader) Read() (Buttons, error) {
	var b Buttons
	read := func(line *gpiocdev.Line, name string) (bool, error) {
		raw, err := line.Value()
		if err != nil {
			return false, fmt.Errorf("read %s pin: %w", name, err)
		}
		return raw == 0, nil
	}

	var err error
	if b.Increase, err = read(r.increase, "increase"); err != nil {
		return Buttons{}, err
	}
	if b.Decrease, err = read(r.decrease, "decrease"); err != nil {
		return Buttons{}, err
	}
	if b.Mode, err = read(r.mode, "mode"); err != nil {
		return Buttons{}, err
	}
	if b.Option, err = read(r.option, "option"); err != nil {
		return Buttons{}, err
	}

	return b, nil
}

// Close releases GPIO resources.
// Reconfigures pins to input with pull-up before closing so the buttons
// read as released during system shutdown/reboot.
func (r *RealReader) Close() error {
	var errs []error

	closeLine := func(line *gpiocdev.Line, name string) {
		if line == nil {
			return
		}
		if err := line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullUp); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure %s pin: %w", name, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s pin: %w", name, err))
		}
	}

	closeLine(r.increase, "increase")
	closeLine(r.decrease, "decrease")
	closeLine(r.mode, "mode")
	closeLine(r.option, "option")

	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealWriter drives the pulse output and beat LEDs on actual hardware.
type RealWriter struct {
	chip  *gpiocdev.Chip
	pulse *gpiocdev.Line
	leds  [4]*gpiocdev.Line
}

// NewRealWriter creates a GPIO output writer for actual Raspberry Pi hardware.
func NewRealWriter(pins OutputPins) (*RealWriter, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	w := &RealWriter{chip: chip}

	// The pulse line feeds an active-low driver stage, so it idles high.
	w.pulse, err = chip.RequestLine(pins.Pulse, gpiocdev.AsOutput(1))
	if err != nil {
		w.Close()
		return nil, fmt.Errorf("request pulse pin %d: %w", pins.Pulse, err)
	}

	for i, pin := range pins.LEDs {
		line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
		if err != nil {
			w.Close()
			return nil, fmt.Errorf("request led pin %d: %w", pin, err)
		}
		w.leds[i] = line
	}

	return w, nil
}

// SetPulse drives the pulse output line.
// Inverts for the active-low driver stage: asserted = raw low.
func (w *RealWriter) SetPulse(on bool) error {
	raw := 1
	if on {
		raw = 0
	}
	if err := w.pulse.SetValue(raw); err != nil {
		return fmt.Errorf("set pulse pin: %w", err)
	}
	return nil
}

// SetBeatLEDs drives the four beat position LEDs. LEDs are active-high.
func (w *RealWriter) SetBeatLEDs(leds [4]bool) error {
	for i, on := range leds {
		raw := 0
		if on {
			raw = 1
		}
		if err := w.leds[i].SetValue(raw); err != nil {
			return fmt.Errorf("set led %d pin: %w", i, err)
		}
	}
	return nil
}

// Close releases GPIO resources.
// Parks the pulse line high (deasserted) and the LEDs dark before closing.
func (w *RealWriter) Close() error {
	var errs []error

	if w.pulse != nil {
		if err := w.pulse.SetValue(1); err != nil {
			errs = append(errs, fmt.Errorf("park pulse pin: %w", err))
		}
		if err := w.pulse.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pulse pin: %w", err))
		}
	}
	for i, line := range w.leds {
		if line == nil {
			continue
		}
		if err := line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("park led %d pin: %w", i, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close led %d pin: %w", i, err))
		}
	}
	if w.chip != nil {
		if err := w.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
