package logic

// Fake devices for tests. They live here rather than in a test file so the
// integration test and the cmd tests can share them.

// Sample is a canned accelerometer reading in m/s².
type Sample struct {
	X, Y, Z float64
}

var (
	// SampleRaised classifies as RAISED (lid tipped up, gravity on x/y).
	SampleRaised = Sample{X: 5.2, Y: 3.1, Z: 0.8}
	// SampleLowered classifies as LOWERED (lid flat, gravity on z).
	SampleLowered = Sample{X: 0.3, Y: 0.2, Z: 9.8}
	// SampleAmbiguous falls in neither band and classifies as UNKNOWN.
	SampleAmbiguous = Sample{X: 1.0, Y: 0.9, Z: 1.2}
)

// FakeAccelerometer returns scripted samples. After the script is
// exhausted the last sample repeats forever. If ReadError is set it is
// returned instead of a sample.
type FakeAccelerometer struct {
	Samples   []Sample
	ReadError error

	index int
}

// NewFakeAccelerometer creates a fake that plays back the given samples.
func NewFakeAccelerometer(samples ...Sample) *FakeAccelerometer {
	return &FakeAccelerometer{Samples: samples}
}

// Read returns the next scripted sample.
func (f *FakeAccelerometer) Read() (float64, float64, float64, error) {
	if f.ReadError != nil {
		return 0, 0, 0, f.ReadError
	}
	if len(f.Samples) == 0 {
		return 0, 0, 0, nil
	}
	s := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return s.X, s.Y, s.Z, nil
}

// Set replaces the script with a single repeating sample.
func (f *FakeAccelerometer) Set(s Sample) {
	f.Samples = []Sample{s}
	f.index = 0
}

// FakeIndicator records every color write.
type FakeIndicator struct {
	// Writes holds every write in order; Off is recorded as ColorOff.
	Writes []Color
	// Current is the most recent write.
	Current  Color
	SetError error
}

// NewFakeIndicator creates a fake indicator showing ColorOff.
func NewFakeIndicator() *FakeIndicator {
	return &FakeIndicator{Current: ColorOff}
}

// SetColor records a color write.
func (f *FakeIndicator) SetColor(c Color) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.Writes = append(f.Writes, c)
	f.Current = c
	return nil
}

// Off records the indicator being turned off.
func (f *FakeIndicator) Off() error {
	if f.SetError != nil {
		return f.SetError
	}
	f.Writes = append(f.Writes, ColorOff)
	f.Current = ColorOff
	return nil
}

// FakeTone records tone commands.
type FakeTone struct {
	// Starts holds the frequency of every StartTone call.
	Starts []uint
	Stops  int
	// Sounding is true between a StartTone and the next StopTone.
	Sounding   bool
	StartError error
	StopError  error
}

// StartTone records the start of a tone.
func (f *FakeTone) StartTone(freqHz uint) error {
	if f.StartError != nil {
		return f.StartError
	}
	f.Starts = append(f.Starts, freqHz)
	f.Sounding = true
	return nil
}

// StopTone records the end of a tone.
func (f *FakeTone) StopTone() error {
	if f.StopError != nil {
		return f.StopError
	}
	f.Stops++
	f.Sounding = false
	return nil
}

// FakeButtons reports a settable pressed set.
type FakeButtons struct {
	Current   Buttons
	ReadError error
}

// Pressed returns the current pressed set.
func (f *FakeButtons) Pressed() (Buttons, error) {
	if f.ReadError != nil {
		return 0, f.ReadError
	}
	return f.Current, nil
}

// Press adds b to the pressed set.
func (f *FakeButtons) Press(b Buttons) {
	f.Current |= b
}

// Release removes b from the pressed set.
func (f *FakeButtons) Release(b Buttons) {
	f.Current &^= b
}

// FakeMute is a settable mute switch.
type FakeMute struct {
	On bool
}

// Engaged reports the switch position.
func (f *FakeMute) Engaged() bool {
	return f.On
}
