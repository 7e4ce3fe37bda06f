package logic

import "github.com/erickhammersmark/dogfoodtimer/internal/mono"

// Timer is the top-level orchestrator. Each Tick it samples the lid,
// re-baselines on a raise edge, maps elapsed time since baseline to a
// severity driving the indicator and the alarm, and handles button edges
// (A undoes the last baseline, B snoozes an active alarm).
type Timer struct {
	clock mono.Clock
	lid   *Lid
	alarm *Alarm

	indicator Indicator
	tone      ToneOutput
	buttons   ButtonInput

	// Instant the lid was last confirmed raised; all severity math is
	// elapsed time since this.
	baseline mono.Millis
	history  *historyStack

	prevPressed Buttons

	// Last color written, to skip redundant device writes. Unknown while
	// the alarm owns the indicator or after a failed write.
	color      Color
	colorKnown bool

	chirpArmed bool
	chirpOffAt mono.Millis

	raised         int
	undos          int
	snoozes        int
	inputFaults    int
	actuatorFaults int
}

// NewTimer creates a timer over the given devices. The baseline starts at
// the current instant.
func NewTimer(clock mono.Clock, hw Hardware) *Timer {
	return &Timer{
		clock:     clock,
		lid:       NewLid(clock, hw.Accel),
		alarm:     NewAlarm(clock, hw.Indicator, hw.Tone, hw.Mute),
		indicator: hw.Indicator,
		tone:      hw.Tone,
		buttons:   hw.Buttons,
		baseline:  clock.Now(),
		history:   newHistoryStack(),
	}
}

// Tick runs one control-loop iteration. It never blocks; call it as often
// as the host allows.
func (t *Timer) Tick() {
	t.lid.Sample()
	if t.lid.ConsumeEdge(LidRaised) {
		t.raised++
		t.alarm.Update(false)
		t.recordBaseline(t.clock.Now())
	}
	t.updateIndicator()
	t.handleButtons()
	t.updateChirp()
}

// Severity returns the current severity from elapsed time alone.
func (t *Timer) Severity() Severity {
	elapsed := t.ElapsedMS()
	switch {
	case elapsed > AlarmAfterMS:
		return SeverityAlarm
	case elapsed > CriticalAfterMS:
		return SeverityCritical
	case elapsed > WarnAfterMS:
		return SeverityWarn
	}
	return SeverityOK
}

// ElapsedMS returns milliseconds since the current baseline.
func (t *Timer) ElapsedMS() uint32 {
	return mono.Since(t.clock.Now(), t.baseline)
}

// Baseline returns the current baseline instant.
func (t *Timer) Baseline() mono.Millis {
	return t.baseline
}

// AlarmActive reports whether the escalating alarm is running.
func (t *Timer) AlarmActive() bool {
	return t.alarm.Active()
}

// Undo discards the current baseline and restores the most recent history
// entry, returning the discarded instant. With empty history it is a
// no-op. A direct undo plays audible feedback; the undo performed inside
// Snooze does not.
func (t *Timer) Undo() (mono.Millis, bool) {
	displaced, ok := t.popBaseline()
	if !ok {
		return 0, false
	}
	t.undos++
	t.updateIndicator()
	t.chirp(undoToneHz)
	return displaced, true
}

// Snooze pushes the next alarm out by one grace interval. A raised lid
// means the press followed a fresh baseline reset, so the reset is first
// undone quietly; if the timer then turns out not to be past the alarm
// threshold the undo is reversed and nothing else happens. Snoozing only
// applies once genuinely in alarm.
func (t *Timer) Snooze() {
	var displaced mono.Millis
	var undone bool
	if t.lid.Raised() {
		displaced, undone = t.popBaseline()
	}

	if mono.Since(t.clock.Now(), t.baseline) <= AlarmAfterMS {
		if undone {
			t.recordBaseline(displaced)
		}
		t.updateIndicator()
		return
	}

	if undone {
		t.undos++
	}
	t.recordBaseline(t.clock.Now().Sub(AlarmAfterMS - SnoozeGraceMS))
	t.snoozes++
	t.updateIndicator()
	t.chirp(snoozeToneHz)
}

// Snapshot assembles the current outward-facing state.
func (t *Timer) Snapshot() Snapshot {
	return Snapshot{
		Lid:             t.lid.State(),
		Severity:        t.Severity(),
		ElapsedMS:       t.ElapsedMS(),
		AlarmActive:     t.alarm.Active(),
		AlarmIntervalMS: t.alarm.IntervalMS(),
		HistoryDepth:    t.history.depth(),
		Counts: Counters{
			Raised:         t.raised,
			Undos:          t.undos,
			Snoozes:        t.snoozes,
			AlarmTriggers:  t.alarm.Triggers(),
			SensorFaults:   t.lid.SensorFaults(),
			InputFaults:    t.inputFaults,
			ActuatorFaults: t.actuatorFaults + t.alarm.Faults(),
		},
	}
}

// recordBaseline pushes the current baseline into history and adopts at.
func (t *Timer) recordBaseline(at mono.Millis) {
	t.history.push(t.baseline)
	t.baseline = at
}

// popBaseline restores the most recent history entry as the baseline and
// returns the displaced one. It does not count an undo; callers count one
// only when the pop sticks, so the reversed pop inside Snooze stays
// invisible to the outside.
func (t *Timer) popBaseline() (mono.Millis, bool) {
	restored, ok := t.history.pop()
	if !ok {
		return 0, false
	}
	displaced := t.baseline
	t.baseline = restored
	return displaced, true
}

// updateIndicator maps severity to the indicator and the alarm. While the
// lid is raised the indicator stays dark and the alarm stays down.
func (t *Timer) updateIndicator() {
	if t.lid.Raised() {
		t.alarm.Update(false)
		t.setColor(ColorOff)
		return
	}

	switch t.Severity() {
	case SeverityAlarm:
		t.alarm.Update(true)
		// The alarm owns the indicator while active
		t.colorKnown = false
	case SeverityCritical:
		t.alarm.Update(false)
		t.setColor(ColorCritical)
	case SeverityWarn:
		t.alarm.Update(false)
		t.setColor(ColorWarn)
	default:
		t.alarm.Update(false)
		t.setColor(ColorOK)
	}
}

// setColor writes c to the indicator unless it is already showing. A
// failed write counts an actuator fault and leaves the cached color
// unknown so the write is retried next tick.
func (t *Timer) setColor(c Color) {
	if t.colorKnown && t.color == c {
		return
	}

	var err error
	if c == ColorOff {
		err = t.indicator.Off()
	} else {
		err = t.indicator.SetColor(c)
	}
	if err != nil {
		t.actuatorFaults++
		t.colorKnown = false
		return
	}
	t.color = c
	t.colorKnown = true
}

// handleButtons fires undo and snooze on press edges. Only transitions
// into pressed fire, so holding a button does not repeat.
func (t *Timer) handleButtons() {
	cur, err := t.buttons.Pressed()
	if err != nil {
		t.inputFaults++
		return
	}

	newPresses := cur &^ t.prevPressed
	t.prevPressed = cur

	if newPresses.Has(ButtonA) {
		t.Undo()
	}
	if newPresses.Has(ButtonB) {
		t.Snooze()
	}
}

// chirp starts a short feedback tone. The alarm owns the tone channel
// while active, so feedback is skipped then.
func (t *Timer) chirp(freqHz uint) {
	if t.alarm.Active() {
		return
	}
	if err := t.tone.StartTone(freqHz); err != nil {
		t.actuatorFaults++
		return
	}
	t.chirpArmed = true
	t.chirpOffAt = t.clock.Now().Add(feedbackToneMS)
}

// updateChirp ends a feedback tone once its deadline passes. If the alarm
// activated meanwhile the chirp is abandoned; the alarm's own bookkeeping
// controls the tone from then on.
func (t *Timer) updateChirp() {
	if !t.chirpArmed {
		return
	}
	if t.alarm.Active() {
		t.chirpArmed = false
		return
	}
	if !mono.Reached(t.clock.Now(), t.chirpOffAt) {
		return
	}
	if err := t.tone.StopTone(); err != nil {
		t.actuatorFaults++
	}
	t.chirpArmed = false
}
