// Package status provides a thread-safe status tracker for the dogfoodtimer
// daemon. It is read by the HTTP handlers and embedded into MQTT heartbeats.
package status

import (
	"sync"
	"time"

	"github.com/erickhammersmark/dogfoodtimer/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	PollMs      int64
	HeartbeatMs int64
	Broker      string
	HTTPAddr    string
	WSBroker    string // Websocket broker URL for browser MQTT (empty = disabled)

	// Severity thresholds, for the status page threshold table.
	WarnMs     int64
	CriticalMs int64
	AlarmMs    int64
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Timer         logic.Snapshot
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Elapsed returns the time since the timer baseline as a Duration.
func (s Snapshot) Elapsed() time.Duration {
	return time.Duration(s.Timer.ElapsedMS) * time.Millisecond
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update stores the latest core snapshot. Called from runLoop every tick.
func (t *Tracker) Update(timer logic.Snapshot) {
	t.mu.Lock()
	t.snap.Timer = timer
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
