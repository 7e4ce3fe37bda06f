package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/erickhammersmark/dogfoodtimer/internal/config"
	"github.com/erickhammersmark/dogfoodtimer/internal/logic"
	"github.com/erickhammersmark/dogfoodtimer/internal/mono"
	"github.com/erickhammersmark/dogfoodtimer/internal/mqtt"
	"github.com/erickhammersmark/dogfoodtimer/internal/status"
)

func TestResolveWSBroker(t *testing.T) {
	logger := zap.NewNop().Sugar()

	tests := []struct {
		name   string
		ws     string
		broker string
		want   string
	}{
		{"explicit URL passes through", "ws://other:9001", "tcp://b:1883", "ws://other:9001"},
		{"empty disables", "", "tcp://b:1883", ""},
		{"derives from broker", "=broker", "tcp://192.168.1.200:1883", "ws://192.168.1.200:9001"},
		{"derive with mqtt off", "=broker", "off", ""},
		{"derive with no broker", "=broker", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveWSBroker(tt.ws, tt.broker, logger)
			if got != tt.want {
				t.Errorf("resolveWSBroker(%q, %q) = %q, want %q", tt.ws, tt.broker, got, tt.want)
			}
		})
	}
}

func TestPost(t *testing.T) {
	ind := logic.NewFakeIndicator()
	var sleeps []time.Duration
	post(ind, func(d time.Duration) { sleeps = append(sleeps, d) })

	want := []logic.Color{logic.ColorOK, logic.ColorWarn, logic.ColorCritical, logic.ColorOff}
	if len(ind.Writes) != len(want) {
		t.Fatalf("expected %d writes, got %d (%v)", len(want), len(ind.Writes), ind.Writes)
	}
	for i, c := range want {
		if ind.Writes[i] != c {
			t.Errorf("write %d: got %s, want %s", i, ind.Writes[i], c)
		}
	}

	if len(sleeps) != 3 {
		t.Fatalf("expected 3 sleeps, got %d", len(sleeps))
	}
	for _, d := range sleeps {
		if d != 500*time.Millisecond {
			t.Errorf("sleep: got %v, want 500ms", d)
		}
	}
}

func TestSeverityEvent(t *testing.T) {
	tests := []struct {
		severity logic.Severity
		want     mqtt.EventType
	}{
		{logic.SeverityOK, mqtt.EventSeverityOK},
		{logic.SeverityWarn, mqtt.EventSeverityWarn},
		{logic.SeverityCritical, mqtt.EventSeverityCritical},
		{logic.SeverityAlarm, mqtt.EventSeverityAlarm},
	}
	for _, tt := range tests {
		if got := severityEvent(tt.severity); got != tt.want {
			t.Errorf("severityEvent(%s) = %s, want %s", tt.severity, got, tt.want)
		}
	}
}

func TestDeriveEventsNoChange(t *testing.T) {
	snap := logic.Snapshot{Lid: logic.LidLowered, Severity: logic.SeverityOK}
	events := deriveEvents(time.Now(), snap, snap)
	if len(events) != 0 {
		t.Errorf("expected no events, got %v", events)
	}
}

func TestDeriveEventsLidChange(t *testing.T) {
	ts := time.Now()
	prev := logic.Snapshot{Lid: logic.LidLowered, Severity: logic.SeverityOK}
	cur := logic.Snapshot{Lid: logic.LidRaised, Severity: logic.SeverityOK}

	events := deriveEvents(ts, prev, cur)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Type != mqtt.EventLidRaised {
		t.Errorf("type: got %s, want LID_RAISED", events[0].Type)
	}
	if events[0].Lid != logic.LidRaised {
		t.Errorf("lid: got %s, want RAISED", events[0].Lid)
	}
	if !events[0].Timestamp.Equal(ts) {
		t.Error("timestamp not carried")
	}
}

func TestDeriveEventsUnknownToLowered(t *testing.T) {
	prev := logic.Snapshot{Lid: logic.LidUnknown}
	cur := logic.Snapshot{Lid: logic.LidLowered}
	events := deriveEvents(time.Now(), prev, cur)
	if len(events) != 1 || events[0].Type != mqtt.EventLidLowered {
		t.Fatalf("expected one LID_LOWERED, got %v", events)
	}
}

func TestDeriveEventsSeverityAndCounters(t *testing.T) {
	prev := logic.Snapshot{
		Lid:      logic.LidLowered,
		Severity: logic.SeverityCritical,
		Counts:   logic.Counters{Undos: 1, Snoozes: 0},
	}
	cur := logic.Snapshot{
		Lid:             logic.LidLowered,
		Severity:        logic.SeverityAlarm,
		ElapsedMS:       43200001,
		AlarmActive:     true,
		AlarmIntervalMS: 1800000,
		Counts:          logic.Counters{Undos: 2, Snoozes: 1},
	}

	events := deriveEvents(time.Now(), prev, cur)
	wantTypes := []mqtt.EventType{mqtt.EventSeverityAlarm, mqtt.EventUndo, mqtt.EventSnooze}
	if len(events) != len(wantTypes) {
		t.Fatalf("expected %d events, got %d (%v)", len(wantTypes), len(events), events)
	}
	for i, want := range wantTypes {
		if events[i].Type != want {
			t.Errorf("event %d: got %s, want %s", i, events[i].Type, want)
		}
	}
	if !events[0].AlarmActive {
		t.Error("alarm flag not carried")
	}
	if events[0].ElapsedSeconds != 43200 {
		t.Errorf("elapsed: got %d, want 43200", events[0].ElapsedSeconds)
	}
}

// --- runLoop tests ---

// testClock advances both the wall clock and the core's monotonic clock by
// one fixed step per call. Only called from runLoop's goroutine.
type testClock struct {
	mono *mono.FakeClock
	wall time.Time
	step time.Duration
}

func newTestClock(mc *mono.FakeClock, step time.Duration) *testClock {
	return &testClock{
		mono: mc,
		wall: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		step: step,
	}
}

func (c *testClock) now() time.Time {
	c.mono.Advance(uint32(c.step.Milliseconds()))
	c.wall = c.wall.Add(c.step)
	return c.wall
}

// loopFixture is everything a runLoop test needs.
type loopFixture struct {
	timer *logic.Timer
	accel *logic.FakeAccelerometer
	pub   *mqtt.FakePublisher
	clock *testClock
}

func newLoopFixture(t *testing.T, samples ...logic.Sample) *loopFixture {
	t.Helper()
	mc := mono.NewFakeClock(0)
	accel := logic.NewFakeAccelerometer(samples...)
	timer := logic.NewTimer(mc, logic.Hardware{
		Accel:     accel,
		Indicator: logic.NewFakeIndicator(),
		Tone:      &logic.FakeTone{},
		Buttons:   &logic.FakeButtons{},
		Mute:      &logic.FakeMute{},
	})
	return &loopFixture{
		timer: timer,
		accel: accel,
		pub:   mqtt.NewFakePublisher(),
		clock: newTestClock(mc, 100*time.Millisecond),
	}
}

// drive runs runLoop for nTicks ticks and then delivers signal.
func (f *loopFixture) drive(t *testing.T, tracker *status.Tracker, heartbeat time.Duration, nTicks int, signal os.Signal) error {
	t.Helper()
	tick := make(chan time.Time)
	sig := make(chan os.Signal, 1)
	logger := zap.NewNop().Sugar()

	errCh := make(chan error, 1)
	go func() {
		errCh <- runLoop(f.timer, f.pub, f.pub, tracker, logger, heartbeat, f.clock.now, tick, sig)
	}()

	for i := 0; i < nTicks; i++ {
		tick <- time.Time{}
	}
	sig <- signal

	return <-errCh
}

func TestRunLoopPublishesLoweredEdge(t *testing.T) {
	// Two 100ms ticks of a stable lowered reading: candidate on the
	// first, promotion on the second.
	f := newLoopFixture(t, logic.SampleLowered)

	if err := f.drive(t, nil, 0, 2, syscall.SIGTERM); err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if len(f.pub.Events) != 1 {
		t.Fatalf("expected 1 event, got %d (%v)", len(f.pub.Events), f.pub.EventTypes())
	}
	if f.pub.Events[0].Type != mqtt.EventLidLowered {
		t.Errorf("expected LID_LOWERED, got %s", f.pub.Events[0].Type)
	}

	// Exactly one system event: SHUTDOWN
	if len(f.pub.SystemEvents) != 1 {
		t.Fatalf("expected 1 system event, got %d", len(f.pub.SystemEvents))
	}
	if f.pub.SystemEvents[0].Event != "SHUTDOWN" {
		t.Errorf("expected SHUTDOWN, got %q", f.pub.SystemEvents[0].Event)
	}
	if f.pub.SystemEvents[0].Reason != "SIGTERM" {
		t.Errorf("expected SIGTERM reason, got %q", f.pub.SystemEvents[0].Reason)
	}
}

func TestRunLoopPublishesRaiseAfterLower(t *testing.T) {
	f := newLoopFixture(t, logic.SampleLowered, logic.SampleLowered, logic.SampleRaised)

	if err := f.drive(t, nil, 0, 4, syscall.SIGTERM); err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	got := f.pub.EventTypes()
	want := []mqtt.EventType{mqtt.EventLidLowered, mqtt.EventLidRaised}
	if len(got) != len(want) {
		t.Fatalf("expected %d events, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestRunLoopBounceRejected(t *testing.T) {
	// A single raised outlier inside stable lowered readings never holds
	// the debounce window, so only the initial promotion is published.
	f := newLoopFixture(t,
		logic.SampleLowered, logic.SampleLowered,
		logic.SampleRaised,
		logic.SampleLowered,
	)

	if err := f.drive(t, nil, 0, 6, syscall.SIGTERM); err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	got := f.pub.EventTypes()
	if len(got) != 1 || got[0] != mqtt.EventLidLowered {
		t.Errorf("expected only LID_LOWERED, got %v", got)
	}
}

func TestRunLoopSensorFaultContinues(t *testing.T) {
	f := newLoopFixture(t, logic.SampleLowered)
	f.accel.ReadError = errors.New("i2c fault")

	if err := f.drive(t, nil, 0, 3, syscall.SIGTERM); err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if len(f.pub.Events) != 0 {
		t.Errorf("expected no events on sensor faults, got %v", f.pub.EventTypes())
	}
	if len(f.pub.SystemEvents) != 1 || f.pub.SystemEvents[0].Event != "SHUTDOWN" {
		t.Error("expected SHUTDOWN after sensor faults")
	}

	snap := f.timer.Snapshot()
	if snap.Counts.SensorFaults != 3 {
		t.Errorf("expected 3 sensor faults, got %d", snap.Counts.SensorFaults)
	}
}

func TestRunLoopPublishFailureDoesNotAbort(t *testing.T) {
	f := newLoopFixture(t, logic.SampleLowered)
	f.pub.PublishError = errors.New("broker gone")

	if err := f.drive(t, nil, 0, 2, syscall.SIGTERM); err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	// SHUTDOWN still goes out on the system channel
	if len(f.pub.SystemEvents) != 1 || f.pub.SystemEvents[0].Event != "SHUTDOWN" {
		t.Error("expected SHUTDOWN despite event publish failures")
	}
}

func TestRunLoopHeartbeatCadence(t *testing.T) {
	// 100ms ticks with a 500ms heartbeat: first tick arms the schedule,
	// heartbeats fire at 600ms and 1100ms. 12 ticks => 2 heartbeats.
	f := newLoopFixture(t, logic.SampleLowered)
	tracker := status.NewTracker(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), status.Config{})

	if err := f.drive(t, tracker, 500*time.Millisecond, 12, syscall.SIGINT); err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	var heartbeats int
	for _, se := range f.pub.SystemEvents {
		if se.Event == "HEARTBEAT" {
			heartbeats++
			if se.RawPayload == nil {
				t.Error("heartbeat should carry the status payload")
			}
		}
	}
	if heartbeats != 2 {
		t.Errorf("expected 2 heartbeats, got %d", heartbeats)
	}

	last := f.pub.SystemEvents[len(f.pub.SystemEvents)-1]
	if last.Event != "SHUTDOWN" || last.Reason != "SIGINT" {
		t.Errorf("expected final SHUTDOWN/SIGINT, got %s/%s", last.Event, last.Reason)
	}
}

func TestRunLoopUpdatesTracker(t *testing.T) {
	f := newLoopFixture(t, logic.SampleLowered)
	f.pub.Connected = true
	tracker := status.NewTracker(time.Now(), status.Config{})

	if err := f.drive(t, tracker, 0, 2, syscall.SIGTERM); err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	snap := tracker.Snapshot()
	if snap.Timer.Lid != logic.LidLowered {
		t.Errorf("tracker lid: got %s, want LOWERED", snap.Timer.Lid)
	}
	if !snap.MQTTConnected {
		t.Error("tracker should reflect the connection status")
	}
}

// --- command tests ---

func TestInitConfigCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dogfoodtimer.yaml")

	root := rootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"init-config", path})

	if err := root.Execute(); err != nil {
		t.Fatalf("init-config: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load written config: %v", err)
	}
	if cfg.GPIOChip != "gpiochip0" {
		t.Errorf("unexpected chip in written config: %q", cfg.GPIOChip)
	}
}

func TestVersionCommand(t *testing.T) {
	root := rootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	if err := root.Execute(); err != nil {
		t.Fatalf("version: %v", err)
	}
	if out.Len() == 0 {
		t.Error("version printed nothing")
	}
}
