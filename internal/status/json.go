package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event          string     `json:"event,omitempty"`
	Reason         string     `json:"reason,omitempty"`
	Lid            string     `json:"lid"`
	Severity       string     `json:"severity"`
	ElapsedSeconds int64      `json:"elapsed_seconds"`
	Alarm          AlarmJSON  `json:"alarm"`
	HistoryDepth   int        `json:"history_depth"`
	UptimeSeconds  int64      `json:"uptime_seconds"`
	StartTime      string     `json:"start_time"`
	Timestamp      string     `json:"timestamp"`
	MQTT           MQTTStatus `json:"mqtt"`
	Counts         CountsJSON `json:"event_counts"`
	Config         ConfigJSON `json:"config"`
}

// AlarmJSON reports the escalating alarm state.
type AlarmJSON struct {
	Active     bool   `json:"active"`
	IntervalMs uint32 `json:"interval_ms"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event and fault counts.
type CountsJSON struct {
	Raised         int `json:"raised"`
	Undos          int `json:"undos"`
	Snoozes        int `json:"snoozes"`
	AlarmTriggers  int `json:"alarm_triggers"`
	SensorFaults   int `json:"sensor_faults"`
	InputFaults    int `json:"input_faults"`
	ActuatorFaults int `json:"actuator_faults"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs      int64  `json:"poll_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
	WSBroker    string `json:"ws_broker,omitempty"`
	WarnMs      int64  `json:"warn_ms"`
	CriticalMs  int64  `json:"critical_ms"`
	AlarmMs     int64  `json:"alarm_ms"`
}

func buildInner(snap Snapshot) StatusInner {
	lid := string(snap.Timer.Lid)
	if lid == "" {
		lid = "UNKNOWN"
	}
	severity := string(snap.Timer.Severity)
	if severity == "" {
		severity = "ok"
	}

	return StatusInner{
		Lid:            lid,
		Severity:       severity,
		ElapsedSeconds: int64(snap.Timer.ElapsedMS / 1000),
		Alarm: AlarmJSON{
			Active:     snap.Timer.AlarmActive,
			IntervalMs: snap.Timer.AlarmIntervalMS,
		},
		HistoryDepth:  snap.Timer.HistoryDepth,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Raised:         snap.Timer.Counts.Raised,
			Undos:          snap.Timer.Counts.Undos,
			Snoozes:        snap.Timer.Counts.Snoozes,
			AlarmTriggers:  snap.Timer.Counts.AlarmTriggers,
			SensorFaults:   snap.Timer.Counts.SensorFaults,
			InputFaults:    snap.Timer.Counts.InputFaults,
			ActuatorFaults: snap.Timer.Counts.ActuatorFaults,
		},
		Config: ConfigJSON{
			PollMs:      snap.Config.PollMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
			WSBroker:    snap.Config.WSBroker,
			WarnMs:      snap.Config.WarnMs,
			CriticalMs:  snap.Config.CriticalMs,
			AlarmMs:     snap.Config.AlarmMs,
		},
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
