package telemetry

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sweeney/wifi-clock/internal/logic"
)

func TestFormatPayload(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	data, err := FormatPayload(StateEvent{
		Timestamp:         ts,
		From:              logic.StateConnecting,
		To:                logic.StateSyncingTime,
		ReconnectAttempts: 2,
		TimeSynced:        false,
	})
	if err != nil {
		t.Fatalf("format: %v", err)
	}

	var out Payload
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Clock.Timestamp != "2026-03-14T09:26:53Z" {
		t.Errorf("timestamp: got %q", out.Clock.Timestamp)
	}
	if out.Clock.From != string(logic.StateConnecting) || out.Clock.To != string(logic.StateSyncingTime) {
		t.Errorf("transition: got %q -> %q", out.Clock.From, out.Clock.To)
	}
	if out.Clock.ReconnectAttempts != 2 {
		t.Errorf("reconnect_attempts: got %d", out.Clock.ReconnectAttempts)
	}
}

func TestFormatSystemPayload(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	data, err := FormatSystemPayload(SystemEvent{
		Timestamp: ts,
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	})
	if err != nil {
		t.Fatalf("format: %v", err)
	}

	var out SystemPayload
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.System.Event != "SHUTDOWN" || out.System.Reason != "SIGTERM" {
		t.Errorf("system event: got %+v", out.System)
	}
}

func TestFormatSystemPayloadRawPassthrough(t *testing.T) {
	raw := []byte(`{"status":{"state":"RUNNING"}}`)
	data, err := FormatSystemPayload(SystemEvent{RawPayload: raw})
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if string(data) != string(raw) {
		t.Errorf("raw payload not passed through: %s", data)
	}
}

func TestFormatSystemPayloadOmitsEmptyReason(t *testing.T) {
	data, err := FormatSystemPayload(SystemEvent{
		Timestamp: time.Now(),
		Event:     "HEARTBEAT",
	})
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	var m map[string]map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := m["system"]["reason"]; ok {
		t.Error("empty reason should be omitted")
	}
}

func TestFakePublisherRecords(t *testing.T) {
	f := NewFakePublisher()
	ev := StateEvent{Timestamp: time.Now(), From: logic.StateBoot, To: logic.StateConnecting}
	if err := f.Publish(ev); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := f.PublishSystem(SystemEvent{Event: "STARTUP", Timestamp: time.Now()}); err != nil {
		t.Fatalf("publish system: %v", err)
	}

	if len(f.Events) != 1 || f.Events[0].To != logic.StateConnecting {
		t.Errorf("events: %+v", f.Events)
	}
	if len(f.SystemEvents) != 1 || f.SystemEvents[0].Event != "STARTUP" {
		t.Errorf("system events: %+v", f.SystemEvents)
	}
	if len(f.Payloads) != 1 || len(f.SystemPayloads) != 1 {
		t.Error("payloads not recorded")
	}
}
