// Package logic contains pure business logic for the clock's connectivity
// lifecycle. This package has NO external dependencies (no GPIO, serial,
// network, or time.Sleep). Time is always injected as a monotonic
// millisecond counter.
package logic

// Millis is a monotonic millisecond counter. It deliberately wraps at 32
// bits (~49.7 days); all elapsed-time math must go through Since so that
// comparisons stay correct across the wrap.
type Millis uint32

// Since returns now - then with unsigned wraparound.
func Since(now, then Millis) Millis {
	return now - then
}

// State represents the connectivity lifecycle phase.
type State string

const (
	StateBoot             State = "BOOT"
	StateProvisioningWait State = "PROVISIONING_WAIT"
	StateConnecting       State = "CONNECTING"
	StateSyncingTime      State = "SYNCING_TIME"
	StateShowingAddress   State = "SHOWING_ADDRESS"
	StateRunning          State = "RUNNING"
	StateConnectionLost   State = "CONNECTION_LOST"
	StateConfigPortal     State = "CONFIG_PORTAL"
)

// Phase timeouts and display pacing.
const (
	// BootHoldMs is how long the firmware version stays up after power-on.
	BootHoldMs Millis = 3000
	// ProvisioningWaitMs is the window for a provisioning session before
	// falling back to saved credentials (or the portal).
	ProvisioningWaitMs Millis = 10000
	// PlaceholderHoldMs is how long the provisioning placeholder is shown.
	PlaceholderHoldMs Millis = 500
	// ConnectTimeoutMs bounds a credential-based association attempt.
	ConnectTimeoutMs Millis = 20000
	// SyncTimeoutMs bounds the initial NTP wait; after it sync is deferred.
	SyncTimeoutMs Millis = 10000
	// TimeRefreshMs is the cadence of the local-time health check while
	// running.
	TimeRefreshMs Millis = 1000
	// ScrollStepMs is the address scroll step.
	ScrollStepMs Millis = 350
	// AddressScrollCycles is how many full cycles the address scroll runs.
	AddressScrollCycles = 2
	// VisibleDigits is the width of the physical display window.
	VisibleDigits = 4
)

// Reconnect backoff policy constants.
const (
	ReconnectInitialMs Millis = 5000
	ReconnectCapMs     Millis = 300000
	// ReconnectPortalAttempts is the failed-attempt budget before the
	// machine gives up and opens the configuration portal. A policy
	// constant, not derived from the schedule.
	ReconnectPortalAttempts uint32 = 36
)

// Input timing constants.
const (
	// ActionGapMs is the minimum spacing between accepted button actions.
	ActionGapMs Millis = 200
	// ComboGapMs is the minimum spacing before an Up+Down combo fires.
	ComboGapMs Millis = 500
	// LongPressMs is the hold time for a Mode long press.
	LongPressMs Millis = 2000
)

// Brightness range of the display hardware.
const (
	BrightnessMin = 0
	BrightnessMax = 15
)

// Settings is the durable clock configuration. It is read once at boot and
// written back through the store whenever a button or the portal changes it.
type Settings struct {
	Brightness   int
	Hour24       bool
	UTCOffsetSec int32
	DSTOffsetSec int32
	// HasZone reports whether the offsets were ever configured. While
	// false, a successful connection triggers one-shot timezone inference.
	HasZone bool
}

// DefaultSettings are the factory values used when the store is empty.
func DefaultSettings() Settings {
	return Settings{
		Brightness: 8,
		Hour24:     true,
	}
}

// StateContext tracks the active state and when it was entered. It is
// mutated only by the machine's transition operation.
type StateContext struct {
	Current   State
	Previous  State
	EnteredAt Millis
}

// InputEvent is an accepted button action.
type InputEvent string

const (
	EventForceReconnect   InputEvent = "FORCE_RECONNECT"
	EventShowAddress      InputEvent = "SHOW_ADDRESS"
	EventToggleHourFormat InputEvent = "TOGGLE_HOUR_FORMAT"
	EventBrightnessUp     InputEvent = "BRIGHTNESS_UP"
	EventBrightnessDown   InputEvent = "BRIGHTNESS_DOWN"
)

// IntentKind selects how the display should render an Intent.
type IntentKind string

const (
	IntentBlank  IntentKind = "BLANK"
	IntentText   IntentKind = "TEXT"
	IntentScroll IntentKind = "SCROLL"
	IntentTime   IntentKind = "TIME"
)

// Intent is the display arbiter's output for one tick. It is a plain value;
// the caller diffs successive intents and issues display commands only on
// change.
type Intent struct {
	Kind       IntentKind
	Text       string
	DotOn      bool
	StepMs     Millis
	Cycles     int // 0 = repeat until superseded
	Brightness int
}
