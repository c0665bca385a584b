// Package telemetry publishes lifecycle events over MQTT with abstraction
// for testing.
package telemetry

import (
	"encoding/json"
	"time"

	"github.com/sweeney/wifi-clock/internal/logic"
)

// Topic is the MQTT topic for lifecycle transition events.
const Topic = "home/wifi-clock/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "home/wifi-clock/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a lifecycle transition to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event StateEvent) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// StateEvent represents one lifecycle transition.
type StateEvent struct {
	Timestamp         time.Time
	From              logic.State
	To                logic.State
	ReconnectAttempts int
	TimeSynced        bool
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
	Clock ClockPayload `json:"clock"`
}

// ClockPayload contains the transition details.
type ClockPayload struct {
	Timestamp         string `json:"timestamp"`
	From              string `json:"from"`
	To                string `json:"to"`
	ReconnectAttempts int    `json:"reconnect_attempts"`
	TimeSynced        bool   `json:"time_synced"`
}

// FormatPayload creates the JSON payload for a lifecycle transition.
func FormatPayload(event StateEvent) ([]byte, error) {
	payload := Payload{
		Clock: ClockPayload{
			Timestamp:         event.Timestamp.UTC().Format(time.RFC3339),
			From:              string(event.From),
			To:                string(event.To),
			ReconnectAttempts: event.ReconnectAttempts,
			TimeSynced:        event.TimeSynced,
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
