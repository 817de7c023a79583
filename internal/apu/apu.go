// Package apu stands in for the NES Audio Processing Unit. Cycle-accurate
// audio synthesis is an explicit non-goal of this emulator: the $4000-$4015
// register window is open-bus on read and its writes are silently ignored,
// per the bus decode table.
package apu

// APU is a no-op placeholder occupying the CPU bus's APU register range.
// It exists so the bus, memory, and presentation layers have a stable
// component to wire against if audio synthesis is added later.
type APU struct {
	sampleRate int
}

// New creates a stub APU.
func New() *APU {
	return &APU{sampleRate: 44100}
}

// Reset is a no-op; the stub carries no state that needs clearing.
func (a *APU) Reset() {}

// Step is a no-op; a real APU would clock its channels and frame counter
// here once per CPU cycle.
func (a *APU) Step() {}

// WriteRegister discards writes to $4000-$4013, $4015, and $4017.
func (a *APU) WriteRegister(address uint16, value uint8) {}

// ReadStatus returns open-bus (0) for $4015 reads.
func (a *APU) ReadStatus() uint8 { return 0 }

// GetSamples returns no audio; retained so the presentation layer's audio
// path has something to call without a nil check at every call site.
func (a *APU) GetSamples() []float32 { return nil }

// SetSampleRate records the requested rate; it has no effect without a
// real synthesis path behind it.
func (a *APU) SetSampleRate(rate int) { a.sampleRate = rate }
