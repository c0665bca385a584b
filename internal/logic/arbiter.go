package logic

import (
	"fmt"
	"time"
)

// View is everything the display arbiter is allowed to look at. The arbiter
// keeps no state of its own; content is always reproducible from a View.
type View struct {
	State    State
	Elapsed  Millis
	Settings Settings
	Version  string
	Scroll   *ScrollRequest // state-owned address scroll, if any
	Overlay  *ScrollRequest // user-requested address overlay, if any
	Attempts uint32
	Time     time.Time
	TimeOK   bool
}

// Fixed text shown in the transitional states.
const (
	textPlaceholder = "----"
	textConnecting  = "Conn"
	textSyncing     = "Sync"
)

// BuildIntent derives the display content for one tick. Pure function of
// the View.
func BuildIntent(v View) Intent {
	in := buildContent(v)
	in.Brightness = v.Settings.Brightness
	return in
}

func buildContent(v View) Intent {
	// A user-requested address overlay beats the state content for its
	// fixed duration.
	if v.Overlay != nil {
		return scrollIntent(*v.Overlay)
	}

	switch v.State {
	case StateBoot:
		return Intent{Kind: IntentText, Text: v.Version}

	case StateProvisioningWait:
		if v.Elapsed < PlaceholderHoldMs {
			return Intent{Kind: IntentText, Text: textPlaceholder}
		}
		return Intent{Kind: IntentBlank}

	case StateConnecting:
		return Intent{Kind: IntentText, Text: textConnecting}

	case StateSyncingTime:
		return Intent{Kind: IntentText, Text: textSyncing}

	case StateShowingAddress, StateConfigPortal:
		if v.Scroll == nil {
			return Intent{Kind: IntentBlank}
		}
		return scrollIntent(*v.Scroll)

	case StateRunning:
		if !v.TimeOK {
			// Sync is still deferred; show a neutral placeholder while
			// the machine keeps retrying in the background.
			return Intent{Kind: IntentText, Text: textPlaceholder}
		}
		return timeIntent(v.Time, v.Settings.Hour24)

	case StateConnectionLost:
		return Intent{Kind: IntentText, Text: attemptText(v.Attempts)}
	}

	return Intent{Kind: IntentBlank}
}

func scrollIntent(s ScrollRequest) Intent {
	return Intent{
		Kind:   IntentScroll,
		Text:   s.Text,
		StepMs: s.StepMs,
		Cycles: s.Cycles,
	}
}

// timeIntent renders HHMM with the separator dot on during even seconds.
func timeIntent(t time.Time, hour24 bool) Intent {
	h := t.Hour()
	if !hour24 {
		h = h % 12
		if h == 0 {
			h = 12
		}
	}
	return Intent{
		Kind:  IntentTime,
		Text:  fmt.Sprintf("%02d%02d", h, t.Minute()),
		DotOn: t.Second()%2 == 0,
	}
}

// attemptText renders the reconnect counter, clipped to the display width.
func attemptText(attempts uint32) string {
	s := fmt.Sprintf("r%d", attempts)
	if len(s) > VisibleDigits {
		s = s[:VisibleDigits]
	}
	return s
}
