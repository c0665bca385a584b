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
	Event             string       `json:"event,omitempty"`
	Reason            string       `json:"reason,omitempty"`
	State             string       `json:"state"`
	ReconnectAttempts int          `json:"reconnect_attempts"`
	TimeSynced        bool         `json:"time_synced"`
	UptimeSeconds     int64        `json:"uptime_seconds"`
	StartTime         string       `json:"start_time"`
	Timestamp         string       `json:"timestamp"`
	MQTT              MQTTStatus   `json:"mqtt"`
	Clock             ClockJSON    `json:"clock_settings"`
	Network           *NetworkJSON `json:"network,omitempty"`
	Config            ConfigJSON   `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// ClockJSON is the JSON representation of the active clock settings.
type ClockJSON struct {
	Brightness   int  `json:"brightness"`
	Hour24       bool `json:"hour24"`
	UTCOffsetSec int  `json:"utc_offset_sec"`
	DSTOffsetSec int  `json:"dst_offset_sec"`
	ZoneInferred bool `json:"zone_inferred"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	SSID string `json:"ssid"`
	IP   string `json:"ip"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	TickMs     int64  `json:"tick_ms"`
	Broker     string `json:"broker"`
	NTPHost    string `json:"ntp_host"`
	SerialPort string `json:"serial_port,omitempty"`
	PortalAddr string `json:"portal_addr"`
	APSSID     string `json:"ap_ssid"`
}

func buildInner(snap Snapshot) StatusInner {
	state := string(snap.State)
	if state == "" {
		state = "UNKNOWN"
	}

	return StatusInner{
		State:             state,
		ReconnectAttempts: snap.ReconnectAttempts,
		TimeSynced:        snap.TimeSynced,
		UptimeSeconds:     int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:         snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:         snap.Now.UTC().Format(time.RFC3339),
		MQTT:              MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Clock: ClockJSON{
			Brightness:   snap.Settings.Brightness,
			Hour24:       snap.Settings.Hour24,
			UTCOffsetSec: int(snap.Settings.UTCOffsetSec),
			DSTOffsetSec: int(snap.Settings.DSTOffsetSec),
			ZoneInferred: snap.Settings.HasZone,
		},
		Config: ConfigJSON{
			TickMs:     snap.Config.TickMs,
			Broker:     snap.Config.Broker,
			NTPHost:    snap.Config.NTPHost,
			SerialPort: snap.Config.SerialPort,
			PortalAddr: snap.Config.PortalAddr,
			APSSID:     snap.Config.APSSID,
		},
	}
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			SSID: snap.Network.SSID,
			IP:   snap.Network.IP,
		}
	}
}

// FormatJSON returns the JSON status for the portal endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
