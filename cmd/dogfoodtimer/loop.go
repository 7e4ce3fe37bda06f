package main

import (
	"os"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/erickhammersmark/dogfoodtimer/internal/logic"
	"github.com/erickhammersmark/dogfoodtimer/internal/mqtt"
	"github.com/erickhammersmark/dogfoodtimer/internal/status"
)

// runLoop drives the core once per tick and publishes the state changes it
// observes between consecutive snapshots. It returns after a signal, once
// the shutdown event has been published.
func runLoop(timer *logic.Timer, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, logger *zap.SugaredLogger, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	prev := timer.Snapshot()
	var nextHeartbeat time.Time

	for {
		select {
		case s := <-sig:
			logger.Infow("shutting down", "signal", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				logger.Warnw("shutdown event publish failed", "error", err)
			} else {
				logger.Info("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			timer.Tick()
			snap := timer.Snapshot()

			for _, event := range deriveEvents(t, prev, snap) {
				logger.Infow("event", "type", event.Type, "lid", event.Lid, "severity", event.Severity, "elapsed", event.ElapsedSeconds)
				if err := publisher.PublishEvent(event); err != nil {
					// Don't crash on publish failure
					logger.Warnw("publish failed", "type", event.Type, "error", err)
				}
			}
			prev = snap

			if tracker != nil {
				tracker.Update(snap)
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}

			if heartbeat <= 0 {
				continue
			}
			if nextHeartbeat.IsZero() {
				nextHeartbeat = t.Add(heartbeat)
				continue
			}
			if t.Before(nextHeartbeat) {
				continue
			}
			nextHeartbeat = t.Add(heartbeat)

			hbEvent := mqtt.SystemEvent{
				Timestamp: t,
				Event:     "HEARTBEAT",
			}
			if tracker != nil {
				hbEvent.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "HEARTBEAT", "")
			}
			logger.Debugw("heartbeat", "lid", snap.Lid, "severity", snap.Severity)
			if err := publisher.PublishSystem(hbEvent); err != nil {
				logger.Warnw("heartbeat publish failed", "error", err)
			}
		}
	}
}

// deriveEvents compares consecutive core snapshots and returns the MQTT
// events for whatever changed this tick.
func deriveEvents(ts time.Time, prev, cur logic.Snapshot) []mqtt.Event {
	var events []mqtt.Event

	add := func(et mqtt.EventType) {
		events = append(events, mqtt.Event{
			Timestamp:       ts,
			Type:            et,
			Lid:             cur.Lid,
			Severity:        cur.Severity,
			ElapsedSeconds:  int64(cur.ElapsedMS / 1000),
			AlarmActive:     cur.AlarmActive,
			AlarmIntervalMS: cur.AlarmIntervalMS,
		})
	}

	if cur.Lid != prev.Lid {
		switch cur.Lid {
		case logic.LidRaised:
			add(mqtt.EventLidRaised)
		case logic.LidLowered:
			add(mqtt.EventLidLowered)
		}
	}

	if cur.Severity != prev.Severity {
		add(severityEvent(cur.Severity))
	}

	if cur.Counts.Undos > prev.Counts.Undos {
		add(mqtt.EventUndo)
	}
	if cur.Counts.Snoozes > prev.Counts.Snoozes {
		add(mqtt.EventSnooze)
	}

	return events
}

func severityEvent(s logic.Severity) mqtt.EventType {
	switch s {
	case logic.SeverityWarn:
		return mqtt.EventSeverityWarn
	case logic.SeverityCritical:
		return mqtt.EventSeverityCritical
	case logic.SeverityAlarm:
		return mqtt.EventSeverityAlarm
	}
	return mqtt.EventSeverityOK
}
