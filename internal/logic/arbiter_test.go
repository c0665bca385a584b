package logic

import (
	"testing"
	"time"
)

func TestBootShowsVersion(t *testing.T) {
	in := BuildIntent(View{State: StateBoot, Version: "1.00", Settings: DefaultSettings()})
	if in.Kind != IntentText || in.Text != "1.00" {
		t.Errorf("boot intent = %s %q", in.Kind, in.Text)
	}
	if in.Brightness != DefaultSettings().Brightness {
		t.Errorf("intent brightness = %d", in.Brightness)
	}
}

func TestProvisioningWaitPlaceholderThenBlank(t *testing.T) {
	in := BuildIntent(View{State: StateProvisioningWait, Elapsed: 499})
	if in.Kind != IntentText || in.Text != "----" {
		t.Errorf("placeholder intent = %s %q", in.Kind, in.Text)
	}
	in = BuildIntent(View{State: StateProvisioningWait, Elapsed: 500})
	if in.Kind != IntentBlank {
		t.Errorf("expected blank after placeholder window, got %s", in.Kind)
	}
}

func TestTransitionalStateText(t *testing.T) {
	cases := []struct {
		state State
		want  string
	}{
		{StateConnecting, "Conn"},
		{StateSyncingTime, "Sync"},
	}
	for _, tc := range cases {
		in := BuildIntent(View{State: tc.state})
		if in.Kind != IntentText || in.Text != tc.want {
			t.Errorf("%s intent = %s %q, want %q", tc.state, in.Kind, in.Text, tc.want)
		}
	}
}

func TestRunningTimeSeparatorParity(t *testing.T) {
	base := time.Date(2026, 8, 30, 9, 5, 0, 0, time.UTC)
	cfg := Settings{Hour24: true}

	in := BuildIntent(View{State: StateRunning, Settings: cfg, Time: base, TimeOK: true})
	if in.Kind != IntentTime || in.Text != "0905" {
		t.Fatalf("time intent = %s %q", in.Kind, in.Text)
	}
	if !in.DotOn {
		t.Error("separator should be on during even seconds")
	}

	in = BuildIntent(View{State: StateRunning, Settings: cfg, Time: base.Add(time.Second), TimeOK: true})
	if in.DotOn {
		t.Error("separator should be off during odd seconds")
	}
}

func TestRunningTwelveHourConversion(t *testing.T) {
	cfg := Settings{Hour24: false}
	cases := []struct {
		hour int
		want string
	}{
		{0, "1200"},
		{1, "0100"},
		{12, "1200"},
		{13, "0100"},
		{23, "1100"},
	}
	for _, tc := range cases {
		ts := time.Date(2026, 8, 30, tc.hour, 0, 0, 0, time.UTC)
		in := BuildIntent(View{State: StateRunning, Settings: cfg, Time: ts, TimeOK: true})
		if in.Text != tc.want {
			t.Errorf("hour %d -> %q, want %q", tc.hour, in.Text, tc.want)
		}
	}
}

func TestRunningWithoutTimeShowsPlaceholder(t *testing.T) {
	in := BuildIntent(View{State: StateRunning})
	if in.Kind != IntentText || in.Text != "----" {
		t.Errorf("deferred-sync intent = %s %q", in.Kind, in.Text)
	}
}

func TestConnectionLostShowsAttemptCounter(t *testing.T) {
	in := BuildIntent(View{State: StateConnectionLost, Attempts: 3})
	if in.Kind != IntentText || in.Text != "r3" {
		t.Errorf("attempt intent = %s %q", in.Kind, in.Text)
	}

	// Clipped to the display width.
	in = BuildIntent(View{State: StateConnectionLost, Attempts: 12345})
	if in.Text != "r123" {
		t.Errorf("clipped attempt text = %q", in.Text)
	}
}

func TestPortalScrollRepeatsForever(t *testing.T) {
	s := NewScrollRequest("192.168.4.1", ScrollStepMs, 0, 0)
	in := BuildIntent(View{State: StateConfigPortal, Scroll: &s})
	if in.Kind != IntentScroll || in.Cycles != 0 {
		t.Errorf("portal intent = %s cycles=%d", in.Kind, in.Cycles)
	}
	if s.Done(1 << 30) {
		t.Error("endless scroll must never report done")
	}
}

func TestOverlayBeatsStateContent(t *testing.T) {
	o := NewScrollRequest("10.0.0.9", ScrollStepMs, AddressScrollCycles, 0)
	in := BuildIntent(View{State: StateRunning, TimeOK: true, Time: time.Now(), Overlay: &o})
	if in.Kind != IntentScroll || in.Text != "10.0.0.9" {
		t.Errorf("overlay intent = %s %q", in.Kind, in.Text)
	}
}

func TestScrollDurationFormula(t *testing.T) {
	// L=11, 4-digit window, 350ms step, 2 cycles: 8*350*2 = 5600ms.
	s := NewScrollRequest("192.168.4.1", 350, 2, 0)
	if s.StepsPerCycle() != 8 {
		t.Errorf("steps per cycle = %d, want 8", s.StepsPerCycle())
	}
	if s.DurationMs() != 5600 {
		t.Errorf("duration = %d, want 5600", s.DurationMs())
	}
	if s.Done(5599) {
		t.Error("done before full duration")
	}
	if !s.Done(5600) {
		t.Error("not done at full duration")
	}
}

func TestShortTextScrollsOneStepPerCycle(t *testing.T) {
	s := NewScrollRequest("ab", 350, 2, 0)
	if s.StepsPerCycle() != 1 {
		t.Errorf("steps per cycle = %d, want 1", s.StepsPerCycle())
	}
	if s.DurationMs() != 700 {
		t.Errorf("duration = %d, want 700", s.DurationMs())
	}
}
