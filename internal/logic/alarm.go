package logic

import "github.com/erickhammersmark/dogfoodtimer/internal/mono"

// Alarm drives the escalating alert once triggered. Two periodic behaviors
// run from the same tick while active: the indicator toggles between the
// alert color and off every VisibleIntervalMS, and a beep pattern fires on
// an interval that halves after every firing down to AudibleIntervalMinMS.
// All timing compares the clock against stored deadlines; nothing sleeps.
type Alarm struct {
	clock     mono.Clock
	indicator Indicator
	tone      ToneOutput
	mute      MuteInput

	active     bool
	ledOn      bool
	nextToggle mono.Millis
	nextFire   mono.Millis
	intervalMS uint32

	// Logical beep state; advances on schedule even while muted
	beepOn bool
	// Whether the tone device is actually running
	sounding  bool
	beepNum   int
	stepArmed bool
	stepAt    mono.Millis

	triggers int
	faults   int
}

// NewAlarm creates an idle alarm.
func NewAlarm(clock mono.Clock, indicator Indicator, tone ToneOutput, mute MuteInput) *Alarm {
	a := &Alarm{
		clock:     clock,
		indicator: indicator,
		tone:      tone,
		mute:      mute,
	}
	a.Deactivate()
	return a
}

// Update is the per-tick driver: it brings the alarm to the requested state
// and, while active, advances both alert channels.
func (a *Alarm) Update(active bool) {
	if !active {
		a.Deactivate()
		return
	}
	a.Trigger()
	a.updateBeep()
	a.updateLights()
}

// Trigger activates the alarm. It is idempotent while active: escalation
// state is preserved until a full Deactivate.
func (a *Alarm) Trigger() {
	if a.active {
		return
	}
	a.active = true
	a.triggers++

	// Both channels fire on the next update
	now := a.clock.Now()
	a.nextToggle = now
	a.nextFire = now
}

// Deactivate silences the alarm immediately, even mid-beep, and resets the
// escalation interval to its maximum. Safe to call repeatedly.
func (a *Alarm) Deactivate() {
	a.setBeep(false)
	a.active = false
	a.ledOn = true
	a.nextToggle = 0
	a.nextFire = 0
	a.intervalMS = AudibleIntervalMaxMS
	a.beepNum = 0
	a.stepArmed = false
}

// Active reports whether the alarm is active.
func (a *Alarm) Active() bool {
	return a.active
}

// IntervalMS returns the current audible escalation interval.
func (a *Alarm) IntervalMS() uint32 {
	return a.intervalMS
}

// Triggers returns the number of Idle to Active transitions since startup.
func (a *Alarm) Triggers() int {
	return a.triggers
}

// Faults returns the number of absorbed actuator failures.
func (a *Alarm) Faults() int {
	return a.faults
}

// updateBeep advances the audible channel: fire the escalation schedule,
// then step the in-progress beep pattern.
func (a *Alarm) updateBeep() {
	now := a.clock.Now()

	if mono.Reached(now, a.nextFire) {
		a.nextFire = a.nextFire.Add(a.intervalMS)
		a.intervalMS /= 2
		if a.intervalMS < AudibleIntervalMinMS {
			a.intervalMS = AudibleIntervalMinMS
		}

		// Restart the beep pattern from silence
		a.setBeep(false)
		a.beepNum = 0
		a.stepArmed = true
		a.stepAt = now
	}

	if !a.stepArmed || !mono.Reached(now, a.stepAt) {
		return
	}

	if a.beepOn {
		a.setBeep(false)
		a.beepNum++
		if a.beepNum >= BeepCount {
			a.stepArmed = false
			a.beepNum = 0
			return
		}
		a.stepAt = a.stepAt.Add(BeepGapMS)
		return
	}

	a.setBeep(true)
	a.stepAt = a.stepAt.Add(BeepOnMS)
}

// updateLights advances the visible channel. The first toggle after
// Trigger turns the indicator off: the steady critical color is already
// showing when the alarm threshold is crossed.
func (a *Alarm) updateLights() {
	now := a.clock.Now()
	if !mono.Reached(now, a.nextToggle) {
		return
	}
	a.nextToggle = a.nextToggle.Add(VisibleIntervalMS)
	a.ledOn = !a.ledOn

	var err error
	if a.ledOn {
		err = a.indicator.SetColor(ColorAlert)
	} else {
		err = a.indicator.Off()
	}
	if err != nil {
		a.faults++
	}
}

// setBeep moves the logical beep state and drives the tone device. The
// mute switch suppresses only the tone output: the logical state and the
// schedule still advance while muted.
func (a *Alarm) setBeep(on bool) {
	if on == a.beepOn {
		return
	}
	a.beepOn = on

	if on {
		if a.mute.Engaged() {
			return
		}
		if err := a.tone.StartTone(AlarmToneHz); err != nil {
			a.faults++
			return
		}
		a.sounding = true
		return
	}

	if a.sounding {
		if err := a.tone.StopTone(); err != nil {
			a.faults++
		}
		a.sounding = false
	}
}
