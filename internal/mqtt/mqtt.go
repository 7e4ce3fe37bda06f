// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/erickhammersmark/dogfoodtimer/internal/logic"
)

// Topic is the MQTT topic for timer events.
const Topic = "pets/dogfood/timer/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "pets/dogfood/timer/system"

// EventType labels a timer event.
type EventType string

const (
	EventLidRaised        EventType = "LID_RAISED"
	EventLidLowered       EventType = "LID_LOWERED"
	EventSeverityOK       EventType = "SEVERITY_OK"
	EventSeverityWarn     EventType = "SEVERITY_WARN"
	EventSeverityCritical EventType = "SEVERITY_CRITICAL"
	EventSeverityAlarm    EventType = "SEVERITY_ALARM"
	EventUndo             EventType = "UNDO"
	EventSnooze           EventType = "SNOOZE"
)

// Event is one timer state change, derived by the daemon from consecutive
// core snapshots.
type Event struct {
	Timestamp       time.Time
	Type            EventType
	Lid             logic.LidState
	Severity        logic.Severity
	ElapsedSeconds  int64
	AlarmActive     bool
	AlarmIntervalMS uint32
}

// Publisher publishes events to MQTT.
type Publisher interface {
	// PublishEvent sends a timer event to the broker.
	// Returns error if publishing fails (must not crash the process).
	PublishEvent(event Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Timer TimerPayload `json:"timer"`
}

// TimerPayload contains the timer event details.
type TimerPayload struct {
	Timestamp       string `json:"timestamp"`
	Event           string `json:"event"`
	Lid             string `json:"lid"`
	Severity        string `json:"severity"`
	ElapsedSeconds  int64  `json:"elapsed_seconds"`
	AlarmActive     bool   `json:"alarm_active"`
	AlarmIntervalMS uint32 `json:"alarm_interval_ms"`
}

// FormatPayload creates the JSON payload for a timer event.
func FormatPayload(event Event) ([]byte, error) {
	payload := Payload{
		Timer: TimerPayload{
			Timestamp:       event.Timestamp.UTC().Format(time.RFC3339),
			Event:           string(event.Type),
			Lid:             string(event.Lid),
			Severity:        string(event.Severity),
			ElapsedSeconds:  event.ElapsedSeconds,
			AlarmActive:     event.AlarmActive,
			AlarmIntervalMS: event.AlarmIntervalMS,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
