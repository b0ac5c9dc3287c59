package gpio

import "errors"

// FakeReader is a test double that returns scripted button states.
type FakeReader struct {
	// Samples contains scripted button states to return.
	// Each call to Read() consumes the next sample.
	Samples []Buttons

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples []Buttons) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Read returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeReader) Read() (Buttons, error) {
	if f.ReadError != nil {
		return Buttons{}, f.ReadError
	}

	if len(f.Samples) == 0 {
		return Buttons{}, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return sample, nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the reader to the beginning of samples.
func (f *FakeReader) Reset() {
	f.index = 0
	f.Closed = false
}

// FakeWriter is a test double that records output writes.
type FakeWriter struct {
	// PulseLevels records every value passed to SetPulse, in order.
	PulseLevels []bool

	// LEDFrames records every frame passed to SetBeatLEDs, in order.
	LEDFrames [][4]bool

	// Closed tracks if Close was called
	Closed bool

	// WriteError, if set, will be returned by SetPulse and SetBeatLEDs
	WriteError error
}

// NewFakeWriter creates an empty FakeWriter.
func NewFakeWriter() *FakeWriter {
	return &FakeWriter{}
}

// SetPulse records the pulse level.
func (f *FakeWriter) SetPulse(on bool) error {
	if f.WriteError != nil {
		return f.WriteError
	}
	f.PulseLevels = append(f.PulseLevels, on)
	return nil
}

// SetBeatLEDs records the LED frame.
func (f *FakeWriter) SetBeatLEDs(leds [4]bool) error {
	if f.WriteError != nil {
		return f.WriteError
	}
	f.LEDFrames = append(f.LEDFrames, leds)
	return nil
}

// Close marks the writer as closed.
func (f *FakeWriter) Close() error {
	f.Closed = true
	return nil
}

// LastPulse returns the most recent pulse level, or false if none recorded.
func (f *FakeWriter) LastPulse() bool {
	if len(f.PulseLevels) == 0 {
		return false
	}
	return f.PulseLevels[len(f.PulseLevels)-1]
}

// LastLEDs returns the most recent LED frame, or all-dark if none recorded.
func (f *FakeWriter) LastLEDs() [4]bool {
	if len(f.LEDFrames) == 0 {
		return [4]bool{}
	}
	return f.LEDFrames[len(f.LEDFrames)-1]
}
