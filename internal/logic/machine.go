package logic

import (
	"log"
	"time"
)

// Radio initiates and tears down WiFi associations. Connect must only
// initiate the attempt; the machine observes the outcome through the
// wifiConnected flag passed to Tick.
type Radio interface {
	Connect(ssid, password string)
	Disconnect()
	Address() string
}

// TimeSource is the synchronized wall clock. Request kicks one background
// sync attempt and must not block; Now reports the local time and whether
// sync has ever succeeded.
type TimeSource interface {
	Request()
	Synced() bool
	Now() (time.Time, bool)
}

// Store is the slice of persistence the machine needs: saved credentials
// for reconnect attempts and a place to write settings changed by buttons.
type Store interface {
	Credentials() (ssid, password string, ok bool)
	SaveSettings(Settings) error
}

// Portal is the fallback configuration portal lifecycle.
type Portal interface {
	Start() error
	Stop()
	Address() string
}

// Beeper plays the bounded audible confirmations (each under 300 ms).
type Beeper interface {
	Confirm()
	ConfirmDouble()
}

// Machine is the connectivity lifecycle coordinator. It owns all timers,
// the reconnect policy, and the lifetime of every scroll request. It is
// driven from a single tick goroutine and is not safe for concurrent use.
type Machine struct {
	radio  Radio
	clock  TimeSource
	store  Store
	portal Portal
	beeper Beeper

	// InferZone, when set, is invoked once after the first successful
	// connection if no timezone has been configured. It must not block.
	InferZone func()

	// OnTransition, when set, observes every state change.
	OnTransition func(from, to State)

	version  string
	settings Settings

	ctx    StateContext
	policy ReconnectPolicy

	// Transient per-state data. Reset on every transition so nothing
	// leaks between visits to the same state.
	scroll        *ScrollRequest
	overlay       *ScrollRequest
	lastTimeCheck Millis
	zoneRequested bool
}

// NewMachine creates the coordinator in the Boot state.
func NewMachine(radio Radio, clock TimeSource, store Store, portal Portal, beeper Beeper, version string, settings Settings, now Millis) *Machine {
	return &Machine{
		radio:    radio,
		clock:    clock,
		store:    store,
		portal:   portal,
		beeper:   beeper,
		version:  version,
		settings: settings,
		ctx: StateContext{
			Current:   StateBoot,
			Previous:  StateBoot,
			EnteredAt: now,
		},
	}
}

// State returns the active lifecycle state.
func (m *Machine) State() State {
	return m.ctx.Current
}

// Context returns a copy of the state context.
func (m *Machine) Context() StateContext {
	return m.ctx
}

// Settings returns the current in-memory settings.
func (m *Machine) Settings() Settings {
	return m.settings
}

// Attempts returns the reconnect attempt counter.
func (m *Machine) Attempts() uint32 {
	return m.policy.Attempts
}

// Tick advances the machine one step and returns the display intent for
// this tick. provisioned reports that a provisioning session completed a
// connection since the last tick; it preempts every state that does not
// already represent a connected session.
func (m *Machine) Tick(now Millis, wifiConnected, provisioned bool) Intent {
	if provisioned {
		m.preemptProvisioned(now)
	}

	m.step(now, wifiConnected)
	m.expireOverlay(now)

	return BuildIntent(m.view(now))
}

// preemptProvisioned applies the cross-cutting provisioning rule: a
// completed provisioning connection jumps straight to time sync unless the
// machine is already in a connected-session state. Leaving ConfigPortal
// tears the portal down first (handled by the transition's exit action).
func (m *Machine) preemptProvisioned(now Millis) {
	switch m.ctx.Current {
	case StateSyncingTime, StateShowingAddress, StateRunning:
		return
	}
	m.transition(StateSyncingTime, now)
}

// CredentialsChanged reacts to new credentials written outside the machine,
// e.g. a portal form post. No association exists yet, so this starts a
// fresh connect attempt rather than claiming a provisioning success.
// States representing a connected session are left alone.
func (m *Machine) CredentialsChanged(now Millis) {
	switch m.ctx.Current {
	case StateSyncingTime, StateShowingAddress, StateRunning:
		return
	case StateConnecting:
		// Already trying: restart with the new credentials.
		m.attemptConnectFresh(now)
		return
	}
	m.transition(StateConnecting, now)
}

func (m *Machine) step(now Millis, wifiConnected bool) {
	elapsed := Since(now, m.ctx.EnteredAt)

	switch m.ctx.Current {
	case StateBoot:
		if elapsed >= BootHoldMs {
			m.transition(StateProvisioningWait, now)
		}

	case StateProvisioningWait:
		if wifiConnected {
			m.transition(StateSyncingTime, now)
			return
		}
		if elapsed >= ProvisioningWaitMs {
			if _, _, ok := m.store.Credentials(); ok {
				m.transition(StateConnecting, now)
			} else {
				m.transition(StateConfigPortal, now)
			}
		}

	case StateConnecting:
		if wifiConnected {
			m.beeper.Confirm()
			m.requestZoneOnce()
			m.transition(StateSyncingTime, now)
			return
		}
		if elapsed >= ConnectTimeoutMs {
			m.transition(StateConfigPortal, now)
		}

	case StateSyncingTime:
		if m.clock.Synced() {
			m.beeper.ConfirmDouble()
			m.transition(StateShowingAddress, now)
			return
		}
		if elapsed >= SyncTimeoutMs {
			log.Printf("time sync deferred, continuing without it")
			m.transition(StateShowingAddress, now)
		}

	case StateShowingAddress:
		if m.scroll == nil || m.scroll.Done(now) {
			m.transition(StateRunning, now)
		}

	case StateRunning:
		if !wifiConnected {
			m.transition(StateConnectionLost, now)
			return
		}
		if Since(now, m.lastTimeCheck) >= TimeRefreshMs {
			m.lastTimeCheck = now
			if _, ok := m.clock.Now(); !ok {
				// Sync was deferred or lost; keep retrying silently.
				m.clock.Request()
			}
		}

	case StateConnectionLost:
		if wifiConnected {
			m.beeper.Confirm()
			m.clock.Request()
			m.transition(StateRunning, now)
			return
		}
		if m.policy.Due(now) {
			if m.policy.Exhausted() {
				m.transition(StateConfigPortal, now)
				return
			}
			m.policy.Fail()
			m.attemptConnect(now)
		}

	case StateConfigPortal:
		if wifiConnected {
			m.transition(StateSyncingTime, now)
		}
	}
}

// transition is the single state-change operation. Requesting the current
// state is a no-op: entry actions do not re-fire and EnteredAt is kept, so
// redundant signals cannot reset timers.
func (m *Machine) transition(to State, now Millis) {
	if to == m.ctx.Current {
		return
	}
	from := m.ctx.Current
	m.exit(from)

	m.ctx.Previous = from
	m.ctx.Current = to
	m.ctx.EnteredAt = now

	// Reset per-state transient data so nothing from a previous visit
	// leaks forward.
	m.scroll = nil
	m.lastTimeCheck = now

	m.enter(to, now)

	if m.OnTransition != nil {
		m.OnTransition(from, to)
	}
}

func (m *Machine) exit(from State) {
	if from == StateConfigPortal {
		m.portal.Stop()
	}
}

func (m *Machine) enter(to State, now Millis) {
	switch to {
	case StateConnecting:
		m.attemptConnectFresh(now)

	case StateSyncingTime:
		m.clock.Request()

	case StateShowingAddress:
		s := NewScrollRequest(m.radio.Address(), ScrollStepMs, AddressScrollCycles, now)
		m.scroll = &s

	case StateRunning:
		// The attempt counter reports the current outage only; a
		// connected session shows zero.
		m.policy.Reset(now)

	case StateConnectionLost:
		m.policy.Reset(now)
		m.attemptConnect(now)

	case StateConfigPortal:
		if err := m.portal.Start(); err != nil {
			log.Printf("config portal start: %v", err)
		}
		s := NewScrollRequest(m.portal.Address(), ScrollStepMs, 0, now)
		m.scroll = &s
	}
}

// attemptConnect is the single funnel for reconnect attempts: drop the
// current association, load saved credentials, and initiate a connect. It
// never waits for the result.
func (m *Machine) attemptConnect(now Millis) {
	m.policy.Issue(now)
	m.radio.Disconnect()
	ssid, password, ok := m.store.Credentials()
	if !ok {
		log.Printf("reconnect attempt %d: no saved credentials", m.policy.Attempts)
		return
	}
	log.Printf("reconnect attempt %d (next retry in %dms)", m.policy.Attempts, m.policy.IntervalMs)
	m.radio.Connect(ssid, password)
}

// attemptConnectFresh resets the policy before the first attempt. Used when
// entering Connecting and on manual force-reconnect.
func (m *Machine) attemptConnectFresh(now Millis) {
	m.policy.Reset(now)
	m.attemptConnect(now)
}

func (m *Machine) requestZoneOnce() {
	if m.settings.HasZone || m.zoneRequested || m.InferZone == nil {
		return
	}
	m.zoneRequested = true
	m.InferZone()
}

// HandleInput applies one accepted button action synchronously.
func (m *Machine) HandleInput(ev InputEvent, now Millis) {
	switch ev {
	case EventForceReconnect:
		log.Printf("force reconnect requested")
		m.attemptConnectFresh(now)

	case EventToggleHourFormat:
		m.settings.Hour24 = !m.settings.Hour24
		m.persistSettings()

	case EventBrightnessUp:
		m.setBrightness(m.settings.Brightness + 1)

	case EventBrightnessDown:
		m.setBrightness(m.settings.Brightness - 1)

	case EventShowAddress:
		m.showAddress(now)
	}
}

// ApplySettings replaces the in-memory settings, e.g. after the portal or
// the timezone lookup wrote new values to the store.
func (m *Machine) ApplySettings(s Settings) {
	m.settings = s
}

func (m *Machine) setBrightness(level int) {
	if level < BrightnessMin {
		level = BrightnessMin
	}
	if level > BrightnessMax {
		level = BrightnessMax
	}
	if level == m.settings.Brightness {
		return
	}
	m.settings.Brightness = level
	m.persistSettings()
}

func (m *Machine) persistSettings() {
	if err := m.store.SaveSettings(m.settings); err != nil {
		log.Printf("save settings: %v", err)
	}
}

// showAddress starts the user-requested address overlay: two full scroll
// cycles of whichever address is meaningful for the current state. A no-op
// everywhere else.
func (m *Machine) showAddress(now Millis) {
	var text string
	switch m.ctx.Current {
	case StateRunning:
		text = m.radio.Address()
	case StateConfigPortal:
		text = m.portal.Address()
	default:
		return
	}
	s := NewScrollRequest(text, ScrollStepMs, AddressScrollCycles, now)
	m.overlay = &s
}

func (m *Machine) expireOverlay(now Millis) {
	if m.overlay != nil && m.overlay.Done(now) {
		m.overlay = nil
	}
}

func (m *Machine) view(now Millis) View {
	t, ok := m.clock.Now()
	return View{
		State:    m.ctx.Current,
		Elapsed:  Since(now, m.ctx.EnteredAt),
		Settings: m.settings,
		Version:  m.version,
		Scroll:   m.scroll,
		Overlay:  m.overlay,
		Attempts: m.policy.Attempts,
		Time:     t,
		TimeOK:   ok,
	}
}
