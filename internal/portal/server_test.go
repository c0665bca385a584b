package portal

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/wifi-clock/internal/logic"
	"github.com/sweeney/wifi-clock/internal/settings"
	"github.com/sweeney/wifi-clock/internal/status"
	"github.com/sweeney/wifi-clock/internal/wifi"
)

func newTestServer(t *testing.T, cb Callbacks) (*httptest.Server, *status.Tracker, *settings.Memory) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		TickMs:     10,
		Broker:     "tcp://192.168.1.200:1883",
		NTPHost:    "pool.ntp.org",
		PortalAddr: ":80",
	}
	tr := status.NewTracker(start, cfg)
	store := settings.NewMemory()
	srv := New(":0", tr, store, cb)
	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts, tr, store
}

var errFake = errors.New("nmcli failed")

// noRedirectClient keeps 303 responses observable.
func noRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func TestIndexRendersSettingsForm(t *testing.T) {
	ts, tr, store := newTestServer(t, Callbacks{})
	cfg := logic.DefaultSettings()
	cfg.Brightness = 11
	store.Clock = cfg
	tr.Update(logic.StateRunning, 0, true, cfg)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	html := string(body)
	if !strings.Contains(html, `value="11"`) {
		t.Error("expected brightness value in form")
	}
	if !strings.Contains(html, "RUNNING") {
		t.Errorf("expected lifecycle state in page, got:\n%s", html)
	}
	if !strings.Contains(html, `action="/wifi"`) {
		t.Error("expected wifi form")
	}
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr, _ := newTestServer(t, Callbacks{})
	tr.Update(logic.StateConnectionLost, 4, true, logic.DefaultSettings())
	tr.SetMQTTConnected(true)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}
	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if sj.Status.State != string(logic.StateConnectionLost) {
		t.Errorf("state: got %q", sj.Status.State)
	}
	if sj.Status.ReconnectAttempts != 4 {
		t.Errorf("reconnect_attempts: got %d, want 4", sj.Status.ReconnectAttempts)
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
}

func TestSettingsPostSavesAndNotifies(t *testing.T) {
	var got logic.Settings
	notified := false
	ts, _, store := newTestServer(t, Callbacks{
		OnSettings: func(cfg logic.Settings) { got = cfg; notified = true },
	})

	form := url.Values{
		"brightness":     {"2"},
		"hour24":         {"on"},
		"utc_offset_sec": {"3600"},
		"dst_offset_sec": {"3600"},
	}
	resp, err := noRedirectClient().PostForm(ts.URL+"/settings", form)
	if err != nil {
		t.Fatalf("POST /settings: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("status: got %d, want 303", resp.StatusCode)
	}
	if !notified {
		t.Fatal("OnSettings not called")
	}
	if got.Brightness != 2 || !got.Hour24 || got.UTCOffsetSec != 3600 || !got.HasZone {
		t.Errorf("notified settings = %+v", got)
	}
	if store.Clock != got {
		t.Errorf("stored %+v, notified %+v", store.Clock, got)
	}
}

func TestSettingsPostUncheckedHour24(t *testing.T) {
	ts, _, store := newTestServer(t, Callbacks{})

	resp, err := noRedirectClient().PostForm(ts.URL+"/settings", url.Values{"brightness": {"8"}})
	if err != nil {
		t.Fatalf("POST /settings: %v", err)
	}
	resp.Body.Close()

	if store.Clock.Hour24 {
		t.Error("unchecked checkbox should turn 24-hour format off")
	}
}

func TestSettingsPostRejectsBadBrightness(t *testing.T) {
	ts, _, store := newTestServer(t, Callbacks{})

	for _, v := range []string{"16", "-1", "bright"} {
		resp, err := noRedirectClient().PostForm(ts.URL+"/settings", url.Values{"brightness": {v}})
		if err != nil {
			t.Fatalf("POST /settings: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("brightness %q: status %d, want 400", v, resp.StatusCode)
		}
	}
	if store.Clock.Brightness != logic.DefaultSettings().Brightness {
		t.Error("rejected values must not be stored")
	}
}

func TestWiFiPostSavesCredentials(t *testing.T) {
	var gotSSID, gotPass string
	ts, _, store := newTestServer(t, Callbacks{
		OnCredentials: func(ssid, password string) { gotSSID, gotPass = ssid, password },
	})

	form := url.Values{"ssid": {"homenet"}, "password": {"hunter22"}}
	resp, err := noRedirectClient().PostForm(ts.URL+"/wifi", form)
	if err != nil {
		t.Fatalf("POST /wifi: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("status: got %d, want 303", resp.StatusCode)
	}
	if gotSSID != "homenet" || gotPass != "hunter22" {
		t.Errorf("callback got %q/%q", gotSSID, gotPass)
	}
	if store.SSID != "homenet" {
		t.Errorf("stored ssid %q", store.SSID)
	}
}

func TestWiFiPostRequiresSSID(t *testing.T) {
	ts, _, _ := newTestServer(t, Callbacks{
		OnCredentials: func(string, string) { t.Fatal("callback on empty ssid") },
	})

	resp, err := noRedirectClient().PostForm(ts.URL+"/wifi", url.Values{"password": {"x"}})
	if err != nil {
		t.Fatalf("POST /wifi: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", resp.StatusCode)
	}
}

func TestResetErasesStore(t *testing.T) {
	reset := false
	ts, _, store := newTestServer(t, Callbacks{OnReset: func() { reset = true }})
	store.SSID, store.Password = "homenet", "hunter22"
	store.Clock.Brightness = 1

	resp, err := noRedirectClient().PostForm(ts.URL+"/reset", nil)
	if err != nil {
		t.Fatalf("POST /reset: %v", err)
	}
	resp.Body.Close()

	if !reset {
		t.Error("OnReset not called")
	}
	if store.SSID != "" || store.Clock != logic.DefaultSettings() {
		t.Errorf("store not erased: %+v", store)
	}
}

func TestMutatingEndpointsRejectGET(t *testing.T) {
	ts, _, _ := newTestServer(t, Callbacks{})
	for _, path := range []string{"/settings", "/wifi", "/reset"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("GET %s: status %d, want 405", path, resp.StatusCode)
		}
	}
}

func TestFallbackLifecycle(t *testing.T) {
	radio := &wifi.Fake{}
	fb := NewFallback(radio, "wifi-clock-setup", "")

	if fb.Address() != HotspotAddress {
		t.Errorf("Address = %q", fb.Address())
	}
	if err := fb.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !radio.HotspotUp {
		t.Error("hotspot should be up after Start")
	}
	// Second Start is a no-op.
	if err := fb.Start(); err != nil {
		t.Fatalf("restart: %v", err)
	}

	fb.Stop()
	if radio.HotspotUp {
		t.Error("hotspot should be down after Stop")
	}
	fb.Stop() // idempotent
}

func TestFallbackStartErrorPropagates(t *testing.T) {
	radio := &wifi.Fake{HotspotErr: errFake}
	fb := NewFallback(radio, "wifi-clock-setup", "")
	if err := fb.Start(); err == nil {
		t.Fatal("expected hotspot error")
	}
	if radio.HotspotUp {
		t.Error("failed start must not leave the hotspot marked up")
	}
}
