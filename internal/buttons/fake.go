package buttons

import "errors"

// Sample represents a single button reading (already in logical form).
type Sample struct {
	Mode bool
	Up   bool
	Down bool
}

// FakeReader is a test double that returns scripted button values.
type FakeReader struct {
	// Samples contains scripted values to return. Each call to Read()
	// consumes the next sample; the last one repeats when exhausted.
	Samples []Sample

	index int

	// Closed tracks if Close was called.
	Closed bool

	// ReadError, if set, will be returned by Read().
	ReadError error
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples []Sample) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Read returns the next scripted sample.
func (f *FakeReader) Read() (bool, bool, bool, error) {
	if f.ReadError != nil {
		return false, false, false, f.ReadError
	}
	if len(f.Samples) == 0 {
		return false, false, false, errors.New("no samples configured")
	}

	s := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return s.Mode, s.Up, s.Down, nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset rewinds to the beginning of the samples.
func (f *FakeReader) Reset() {
	f.index = 0
	f.Closed = false
}
