package main

import (
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/sweeney/wifi-clock/internal/buttons"
	"github.com/sweeney/wifi-clock/internal/display"
	"github.com/sweeney/wifi-clock/internal/logic"
	"github.com/sweeney/wifi-clock/internal/portal"
	"github.com/sweeney/wifi-clock/internal/settings"
	"github.com/sweeney/wifi-clock/internal/status"
	"github.com/sweeney/wifi-clock/internal/telemetry"
	"github.com/sweeney/wifi-clock/internal/timesync"
	"github.com/sweeney/wifi-clock/internal/tone"
	"github.com/sweeney/wifi-clock/internal/tzlookup"
	"github.com/sweeney/wifi-clock/internal/wifi"
)

// harness wires a daemon out of fakes and drives its run loop tick by tick
// with a hand-cranked millisecond counter. Assertions happen only after
// finish(), when the loop goroutine has exited.
type harness struct {
	d     *daemon
	radio *wifi.Fake
	disp  *display.Fake
	pub   *telemetry.FakePublisher
	store *settings.Memory
	clock *timesync.Service

	now      logic.Millis
	tickCh   chan time.Time
	sigCh    chan os.Signal
	done     chan struct{}
	err      error
	finished bool

	settingsCh chan logic.Settings
	credsCh    chan struct{}
	zoneCh     chan tzlookup.Zone
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		radio:      wifi.NewFake(),
		disp:       display.NewFake(),
		pub:        telemetry.NewFakePublisher(),
		store:      settings.NewMemory(),
		tickCh:     make(chan time.Time),
		sigCh:      make(chan os.Signal, 1),
		done:       make(chan struct{}),
		settingsCh: make(chan logic.Settings, 4),
		credsCh:    make(chan struct{}, 1),
		zoneCh:     make(chan tzlookup.Zone, 1),
	}
	h.clock = timesync.New("ntp.test")

	fallback := portal.NewFallback(h.radio, "wifi-clock-setup", "")
	machine := logic.NewMachine(h.radio, h.clock, h.store, fallback, &tone.Fake{}, version, logic.DefaultSettings(), 0)

	h.d = &daemon{
		machine:    machine,
		input:      logic.NewInputController(),
		buttons:    buttons.NewFakeReader([]buttons.Sample{{}}),
		applier:    display.NewApplier(h.disp),
		disp:       h.disp,
		radio:      h.radio,
		clock:      h.clock,
		store:      h.store,
		publisher:  h.pub,
		mqttStatus: h.pub,
		tracker:    status.NewTracker(time.Now(), status.Config{}),
		nowMillis:  func() logic.Millis { return h.now },
		settingsCh: h.settingsCh,
		credsCh:    h.credsCh,
		zoneCh:     h.zoneCh,
	}

	go func() {
		h.err = h.d.runLoop(h.tickCh, h.sigCh)
		close(h.done)
	}()
	t.Cleanup(func() { h.finish(t) })
	return h
}

// advance steps the loop in 10ms ticks until the counter reaches target.
func (h *harness) advance(target logic.Millis) {
	for h.now != target {
		h.now += 10
		h.tickCh <- time.Time{}
	}
}

// finish signals shutdown and waits for the loop goroutine to exit.
func (h *harness) finish(t *testing.T) {
	t.Helper()
	if h.finished {
		return
	}
	h.finished = true
	h.sigCh <- syscall.SIGTERM
	select {
	case <-h.done:
		if h.err != nil {
			t.Fatalf("runLoop: %v", h.err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("runLoop did not stop")
	}
}

func TestLoopBootToPortalWithoutCredentials(t *testing.T) {
	h := newHarness(t)

	h.advance(13100)
	h.finish(t)

	if got := h.d.machine.State(); got != logic.StateConfigPortal {
		t.Fatalf("state = %s, want CONFIG_PORTAL", got)
	}
	if !h.radio.HotspotUp {
		t.Error("hotspot should be up in portal mode")
	}
	if op, ok := h.disp.Last("scroll"); !ok || !strings.Contains(op.Text, portal.HotspotAddress) {
		t.Errorf("display should scroll the portal address, last scroll: %+v", op)
	}
}

func TestLoopPortalCredentialsTriggerConnect(t *testing.T) {
	h := newHarness(t)
	h.advance(13100) // settle in the portal

	h.store.SSID, h.store.Password = "homenet", "hunter22"
	h.credsCh <- struct{}{}
	h.advance(13200)
	h.finish(t)

	if got := h.d.machine.State(); got != logic.StateConnecting {
		t.Fatalf("state = %s, want CONNECTING", got)
	}
	if h.radio.HotspotUp {
		t.Error("hotspot should be torn down when leaving the portal")
	}
	if len(h.radio.Connects) == 0 || !strings.HasPrefix(h.radio.Connects[len(h.radio.Connects)-1], "homenet/") {
		t.Errorf("expected a connect attempt with the new credentials, got %v", h.radio.Connects)
	}
}

func TestLoopPublishesTransitions(t *testing.T) {
	h := newHarness(t)
	h.d.machine.OnTransition = func(from, to logic.State) {
		h.pub.Publish(telemetry.StateEvent{From: from, To: to})
	}

	h.advance(3100) // leave BOOT
	h.finish(t)

	if len(h.pub.Events) == 0 {
		t.Fatal("no transition events published")
	}
	first := h.pub.Events[0]
	if first.From != logic.StateBoot {
		t.Errorf("first transition from %s, want BOOT", first.From)
	}
}

func TestLoopShutdownPublishesRetainedEvent(t *testing.T) {
	h := newHarness(t)
	h.advance(100)
	h.finish(t)

	if len(h.pub.SystemEvents) != 1 {
		t.Fatalf("got %d system events, want 1", len(h.pub.SystemEvents))
	}
	ev := h.pub.SystemEvents[0]
	if ev.Event != "SHUTDOWN" || ev.Reason != "SIGTERM" {
		t.Errorf("event = %s/%s", ev.Event, ev.Reason)
	}
	if !ev.Retained {
		t.Error("shutdown event should be retained")
	}
	if h.disp.Count("clear") == 0 {
		t.Error("display should be blanked on shutdown")
	}
}

func TestLoopHeartbeat(t *testing.T) {
	h := newHarness(t)
	h.d.heartbeat = time.Nanosecond // fires on the next tick

	h.radio.Addr = "192.168.1.50"
	h.store.SSID = "homenet"
	h.advance(20)
	h.finish(t)

	var hb *telemetry.SystemEvent
	for i := range h.pub.SystemEvents {
		if h.pub.SystemEvents[i].Event == "HEARTBEAT" {
			hb = &h.pub.SystemEvents[i]
			break
		}
	}
	if hb == nil {
		t.Fatal("no heartbeat published")
	}
	if hb.RawPayload == nil {
		t.Error("heartbeat should carry a status snapshot")
	}
	net := h.d.tracker.Snapshot().Network
	if net == nil || net.SSID != "homenet" || net.IP != "192.168.1.50" {
		t.Errorf("network info = %+v", net)
	}
}

func TestLoopAppliesPortalSettings(t *testing.T) {
	h := newHarness(t)
	h.advance(100)

	s := logic.DefaultSettings()
	s.Brightness = 1
	s.UTCOffsetSec = 7200
	s.HasZone = true
	h.settingsCh <- s
	h.advance(200)
	h.finish(t)

	if got := h.d.machine.Settings(); got.Brightness != 1 || got.UTCOffsetSec != 7200 {
		t.Errorf("machine settings = %+v", got)
	}
	if op, ok := h.disp.Last("brightness"); !ok || op.Val != 1 {
		t.Errorf("display brightness not applied, last: %+v", op)
	}
}

func TestLoopZoneInferenceResult(t *testing.T) {
	h := newHarness(t)
	h.advance(100)

	h.zoneCh <- tzlookup.Zone{UTCOffsetSec: 3600, DSTOffsetSec: 3600}
	h.advance(200)
	h.finish(t)

	got := h.d.machine.Settings()
	if !got.HasZone || got.UTCOffsetSec != 3600 || got.DSTOffsetSec != 3600 {
		t.Errorf("settings after inference = %+v", got)
	}
	if h.store.Saves == 0 {
		t.Error("inferred zone should be persisted")
	}
}

func TestConnectAndWait(t *testing.T) {
	radio := wifi.NewFake()
	radio.ConnectedFlag = true
	if !connectAndWait(radio, "homenet", "pw", time.Second) {
		t.Error("expected success when the radio reports connected")
	}
	if len(radio.Connects) != 1 {
		t.Errorf("connect attempts = %v", radio.Connects)
	}

	radio2 := wifi.NewFake()
	if connectAndWait(radio2, "homenet", "pw", 300*time.Millisecond) {
		t.Error("expected timeout when the radio never connects")
	}
}
