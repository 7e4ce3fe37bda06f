package logic

import (
	"math"

	"github.com/erickhammersmark/dogfoodtimer/internal/mono"
)

// classifyThreshold splits the orientation bands, in m/s². With the device
// mounted under the lid, gravity sits on the z axis while lowered and
// swings onto x/y as the lid tips past roughly 65 degrees.
const classifyThreshold = 4.0

// Lid turns noisy accelerometer samples into a debounced RAISED/LOWERED
// state with one-shot edge detection.
type Lid struct {
	clock mono.Clock
	accel Accelerometer

	// Current confirmed (debounced) state
	state LidState
	// Candidate state during debounce, LidUnknown when none
	pending LidState
	// Instant the candidate was first observed
	pendingSince mono.Millis
	// Unconsumed promotion, LidUnknown when none
	edge LidState

	sensorFaults int
}

// NewLid creates a lid monitor. The confirmed state is LidUnknown until a
// classification holds for the debounce window.
func NewLid(clock mono.Clock, accel Accelerometer) *Lid {
	return &Lid{
		clock:   clock,
		accel:   accel,
		state:   LidUnknown,
		pending: LidUnknown,
		edge:    LidUnknown,
	}
}

// Classify maps one orientation sample to a lid state. Axis values are
// taken as absolute magnitudes. Orientations in neither band (mid-swing,
// or exactly on a boundary) return LidUnknown.
func Classify(x, y, z float64) LidState {
	ax, ay, az := math.Abs(x), math.Abs(y), math.Abs(z)
	switch {
	case az < classifyThreshold && ax+ay > classifyThreshold:
		return LidRaised
	case az >= classifyThreshold && ax+ay <= classifyThreshold:
		return LidLowered
	}
	return LidUnknown
}

// Sample reads the accelerometer and performs one debounce step. A read
// error counts a sensor fault; errors and ambiguous orientations leave
// debounce state untouched.
func (l *Lid) Sample() {
	x, y, z, err := l.accel.Read()
	if err != nil {
		l.sensorFaults++
		return
	}

	observed := Classify(x, y, z)
	if observed == LidUnknown {
		return
	}

	switch observed {
	case l.state:
		// No change from confirmed state, clear any candidate
		l.pending = LidUnknown
	case l.pending:
		// Same candidate, check debounce
		if mono.Since(l.clock.Now(), l.pendingSince) >= DebounceWindowMS {
			l.state = observed
			l.pending = LidUnknown
			l.edge = observed
		}
	default:
		// New candidate
		l.pending = observed
		l.pendingSince = l.clock.Now()
	}
}

// ConsumeEdge reports whether the most recent promotion was into target.
// The stored edge is cleared regardless of target, so each promotion is
// observable at most once; callers must poll every tick or miss edges.
func (l *Lid) ConsumeEdge(target LidState) bool {
	edge := l.edge
	l.edge = LidUnknown
	return edge == target
}

// Raised reports whether the confirmed state is RAISED.
func (l *Lid) Raised() bool {
	return l.state == LidRaised
}

// Lowered reports whether the confirmed state is LOWERED.
func (l *Lid) Lowered() bool {
	return l.state == LidLowered
}

// State returns the confirmed (debounced) state.
func (l *Lid) State() LidState {
	return l.state
}

// SensorFaults returns the number of failed accelerometer reads.
func (l *Lid) SensorFaults() int {
	return l.sensorFaults
}
