// Package status provides a thread-safe status tracker for the clock
// daemon. It is read by the portal's HTTP handlers and by telemetry.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/wifi-clock/internal/logic"
)

// NetworkInfo contains network state. This is a local copy to avoid
// importing internal/wifi from status.
type NetworkInfo struct {
	SSID string
	IP   string
}

// Config contains daemon configuration for display.
type Config struct {
	TickMs     int64
	Broker     string
	NTPHost    string
	SerialPort string
	PortalAddr string
	APSSID     string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	State             logic.State
	ReconnectAttempts int
	TimeSynced        bool
	Settings          logic.Settings
	StartTime         time.Time
	Now               time.Time
	MQTTConnected     bool
	Network           *NetworkInfo
	Config            Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
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

// Update sets the lifecycle state, reconnect attempt count, time sync
// status, and active settings. Called from runLoop on every tick.
func (t *Tracker) Update(state logic.State, attempts int, synced bool, cfg logic.Settings) {
	t.mu.Lock()
	t.snap.State = state
	t.snap.ReconnectAttempts = attempts
	t.snap.TimeSynced = synced
	t.snap.Settings = cfg
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
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
