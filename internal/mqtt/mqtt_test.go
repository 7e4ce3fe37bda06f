package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/erickhammersmark/dogfoodtimer/internal/logic"
)

func TestTopic(t *testing.T) {
	expected := "pets/dogfood/timer/events"
	if Topic != expected {
		t.Errorf("unexpected topic: got %s, want %s", Topic, expected)
	}
}

func TestTopicSystem(t *testing.T) {
	expected := "pets/dogfood/timer/system"
	if TopicSystem != expected {
		t.Errorf("unexpected system topic: got %s, want %s", TopicSystem, expected)
	}
}

func TestFormatPayload(t *testing.T) {
	event := Event{
		Timestamp:       time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		Type:            EventSeverityWarn,
		Lid:             logic.LidLowered,
		Severity:        logic.SeverityWarn,
		ElapsedSeconds:  14401,
		AlarmActive:     false,
		AlarmIntervalMS: 3600000,
	}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed Payload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Timer.Timestamp != "2026-02-02T22:18:12Z" {
		t.Errorf("unexpected timestamp: %s", parsed.Timer.Timestamp)
	}
	if parsed.Timer.Event != "SEVERITY_WARN" {
		t.Errorf("unexpected event: %s", parsed.Timer.Event)
	}
	if parsed.Timer.Lid != "LOWERED" {
		t.Errorf("unexpected lid state: %s", parsed.Timer.Lid)
	}
	if parsed.Timer.Severity != "warn" {
		t.Errorf("unexpected severity: %s", parsed.Timer.Severity)
	}
	if parsed.Timer.ElapsedSeconds != 14401 {
		t.Errorf("unexpected elapsed: %d", parsed.Timer.ElapsedSeconds)
	}
	if parsed.Timer.AlarmActive {
		t.Error("alarm_active should be false")
	}
}

func TestFormatPayloadAllEventTypes(t *testing.T) {
	types := []EventType{
		EventLidRaised,
		EventLidLowered,
		EventSeverityOK,
		EventSeverityWarn,
		EventSeverityCritical,
		EventSeverityAlarm,
		EventUndo,
		EventSnooze,
	}

	for _, et := range types {
		t.Run(string(et), func(t *testing.T) {
			event := Event{
				Timestamp: time.Now(),
				Type:      et,
				Lid:       logic.LidLowered,
				Severity:  logic.SeverityOK,
			}

			payload, err := FormatPayload(event)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			var parsed Payload
			if err := json.Unmarshal(payload, &parsed); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}

			if parsed.Timer.Event != string(et) {
				t.Errorf("event: got %s, want %s", parsed.Timer.Event, et)
			}
		})
	}
}

func TestFormatPayloadTimezoneConversion(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	event := Event{
		Timestamp: time.Date(2026, 2, 2, 23, 18, 12, 0, loc),
		Type:      EventUndo,
	}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed Payload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	// 23:18 CET is 22:18 UTC
	if parsed.Timer.Timestamp != "2026-02-02T22:18:12Z" {
		t.Errorf("timestamp not converted to UTC: %s", parsed.Timer.Timestamp)
	}
}

func TestFormatSystemPayload(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 2, 3, 10, 30, 45, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed SystemPayload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.System.Timestamp != "2026-02-03T10:30:45Z" {
		t.Errorf("unexpected timestamp: %s", parsed.System.Timestamp)
	}
	if parsed.System.Event != "SHUTDOWN" {
		t.Errorf("unexpected event: %s", parsed.System.Event)
	}
	if parsed.System.Reason != "SIGTERM" {
		t.Errorf("unexpected reason: %s", parsed.System.Reason)
	}
}

func TestFormatSystemPayloadExactJSON(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 2, 3, 10, 30, 45, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"system":{"timestamp":"2026-02-03T10:30:45Z","event":"SHUTDOWN","reason":"SIGTERM"}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", string(payload), expected)
	}
}

func TestFormatSystemPayloadOmitsEmptyReason(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 2, 3, 10, 30, 45, 0, time.UTC),
		Event:     "HEARTBEAT",
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var raw map[string]map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if _, ok := raw["system"]["reason"]; ok {
		t.Error("empty reason should be omitted")
	}
}

func TestFormatSystemPayloadRawPassthrough(t *testing.T) {
	raw := []byte(`{"status":{"event":"STARTUP"}}`)
	event := SystemEvent{
		Timestamp:  time.Now(),
		Event:      "STARTUP",
		RawPayload: raw,
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(payload) != string(raw) {
		t.Errorf("raw payload not passed through: %s", payload)
	}
}

func TestFakePublisher(t *testing.T) {
	pub := NewFakePublisher()

	event := Event{
		Timestamp: time.Now(),
		Type:      EventLidRaised,
		Lid:       logic.LidRaised,
		Severity:  logic.SeverityOK,
	}

	if err := pub.PublishEvent(event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(pub.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(pub.Events))
	}
	if pub.Events[0].Type != EventLidRaised {
		t.Errorf("unexpected event type: %s", pub.Events[0].Type)
	}
	if len(pub.Payloads) != 1 {
		t.Fatalf("expected 1 payload, got %d", len(pub.Payloads))
	}
}

func TestFakePublisherError(t *testing.T) {
	pub := NewFakePublisher()
	pub.PublishError = errors.New("broker unreachable")

	err := pub.PublishEvent(Event{Type: EventUndo})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(pub.Events) != 0 {
		t.Errorf("failed publish should not record events, got %d", len(pub.Events))
	}
}

func TestFakePublisherPublishSystem(t *testing.T) {
	pub := NewFakePublisher()

	event := SystemEvent{
		Timestamp: time.Now(),
		Event:     "STARTUP",
		Retained:  true,
	}

	if err := pub.PublishSystem(event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(pub.SystemEvents) != 1 {
		t.Fatalf("expected 1 system event, got %d", len(pub.SystemEvents))
	}
	if pub.SystemEvents[0].Event != "STARTUP" {
		t.Errorf("unexpected event: %s", pub.SystemEvents[0].Event)
	}
	if !pub.SystemEvents[0].Retained {
		t.Error("retained flag lost")
	}
}

func TestFakePublisherEventTypes(t *testing.T) {
	pub := NewFakePublisher()
	pub.PublishEvent(Event{Type: EventLidRaised})
	pub.PublishEvent(Event{Type: EventLidLowered})
	pub.PublishEvent(Event{Type: EventSnooze})

	got := pub.EventTypes()
	want := []EventType{EventLidRaised, EventLidLowered, EventSnooze}
	if len(got) != len(want) {
		t.Fatalf("expected %d types, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("type %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestFakePublisherClose(t *testing.T) {
	pub := NewFakePublisher()
	if pub.Closed {
		t.Fatal("new publisher should not be closed")
	}
	if err := pub.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !pub.Closed {
		t.Error("Close did not mark the publisher closed")
	}
}

func TestFakePublisherReset(t *testing.T) {
	pub := NewFakePublisher()
	pub.PublishEvent(Event{Type: EventUndo})
	pub.PublishSystem(SystemEvent{Event: "STARTUP"})
	pub.Connected = true
	pub.Close()

	pub.Reset()

	if len(pub.Events) != 0 || len(pub.Payloads) != 0 {
		t.Error("Reset did not clear events")
	}
	if len(pub.SystemEvents) != 0 || len(pub.SystemPayloads) != 0 {
		t.Error("Reset did not clear system events")
	}
	if pub.Closed || pub.Connected {
		t.Error("Reset did not clear flags")
	}
}
