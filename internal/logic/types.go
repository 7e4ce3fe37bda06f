// Package logic contains the pure control logic for the lid timer.
// This package has NO hardware dependencies (no I2C, GPIO, MQTT, OS, or
// time.Sleep). Time is always injected via mono.Clock, and devices are
// reached only through the narrow interfaces defined here.
package logic

// LidState is the debounced orientation of the container lid.
type LidState string

const (
	LidUnknown LidState = "UNKNOWN"
	LidRaised  LidState = "RAISED"
	LidLowered LidState = "LOWERED"
)

// Severity is the four-level state derived from time since baseline.
type Severity string

const (
	SeverityOK       Severity = "ok"
	SeverityWarn     Severity = "warn"
	SeverityCritical Severity = "critical"
	SeverityAlarm    Severity = "alarm"
)

// Color identifies a discrete indicator color. The device maps these to
// whatever it can physically render.
type Color string

const (
	ColorOff      Color = "off"
	ColorOK       Color = "ok"
	ColorWarn     Color = "warn"
	ColorCritical Color = "critical"
	ColorAlert    Color = "alert"
)

// Buttons is a bitmask of currently pressed buttons.
type Buttons uint8

const (
	ButtonA Buttons = 1 << iota // undo
	ButtonB                     // snooze
)

// Has reports whether btn is set in b.
func (b Buttons) Has(btn Buttons) bool {
	return b&btn != 0
}

// Behavioral constants. All spans are milliseconds unless named otherwise.
const (
	// DebounceWindowMS is how long a candidate lid state must hold before
	// it is promoted to the confirmed state.
	DebounceWindowMS uint32 = 100

	OneHourMS uint32 = 60 * 60 * 1000

	// Severity thresholds, compared strictly: a severity applies once
	// elapsed time exceeds its threshold.
	WarnAfterMS     uint32 = 4 * OneHourMS
	CriticalAfterMS uint32 = 8 * OneHourMS
	AlarmAfterMS    uint32 = 12 * OneHourMS

	// VisibleIntervalMS is the alarm indicator toggle period.
	VisibleIntervalMS uint32 = 1000

	// The audible alarm fires on an interval that starts at the maximum
	// and halves after every firing, never dropping below the minimum.
	AudibleIntervalMaxMS uint32 = OneHourMS
	AudibleIntervalMinMS uint32 = 60 * 1000

	// Each audible firing is a run of BeepCount beeps: BeepOnMS of tone,
	// then BeepGapMS until the next beep starts.
	BeepCount = 3
	BeepOnMS  uint32 = 600
	BeepGapMS uint32 = 1000

	AlarmToneHz uint = 1760

	// SnoozeGraceMS is how long a snooze holds off the next alarm.
	SnoozeGraceMS uint32 = OneHourMS

	// HistoryCap bounds the undo history; the oldest entry is evicted.
	HistoryCap = 10

	// Button feedback chirps.
	undoToneHz     uint   = 880
	snoozeToneHz   uint   = 1319
	feedbackToneMS uint32 = 150
)

// Accelerometer supplies one 3-axis acceleration reading per call, in m/s².
type Accelerometer interface {
	Read() (x, y, z float64, err error)
}

// Indicator is the tri-color light.
type Indicator interface {
	SetColor(c Color) error
	Off() error
}

// ToneOutput is the audible channel.
type ToneOutput interface {
	StartTone(freqHz uint) error
	StopTone() error
}

// ButtonInput reports the currently pressed buttons.
type ButtonInput interface {
	Pressed() (Buttons, error)
}

// MuteInput is the hardware silence switch.
type MuteInput interface {
	Engaged() bool
}

// Hardware bundles the devices a Timer drives.
type Hardware struct {
	Accel     Accelerometer
	Indicator Indicator
	Tone      ToneOutput
	Buttons   ButtonInput
	Mute      MuteInput
}

// Counters tracks event and fault counts since startup. The core counts
// instead of logging; faults are absorbed and operation continues degraded.
type Counters struct {
	Raised         int
	Undos          int
	Snoozes        int
	AlarmTriggers  int
	SensorFaults   int
	InputFaults    int
	ActuatorFaults int
}

// Snapshot is a point-in-time view of the timer for status reporting.
type Snapshot struct {
	Lid             LidState
	Severity        Severity
	ElapsedMS       uint32
	AlarmActive     bool
	AlarmIntervalMS uint32
	HistoryDepth    int
	Counts          Counters
}
