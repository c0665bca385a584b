package display

import (
	"time"

	"github.com/sweeney/wifi-clock/internal/logic"
)

// Applier translates the arbiter's intents into display commands. It diffs
// successive intents so a scroll is started once and fixed text is not
// rewritten on every tick.
type Applier struct {
	d    Display
	last logic.Intent
	have bool
}

// NewApplier wraps a display.
func NewApplier(d Display) *Applier {
	return &Applier{d: d}
}

// Apply issues whatever commands are needed to make the display match the
// intent.
func (a *Applier) Apply(in logic.Intent) {
	if a.have && in == a.last {
		return
	}

	if !a.have || in.Brightness != a.last.Brightness {
		a.d.SetBrightness(in.Brightness)
	}

	content := in
	content.Brightness = 0
	prev := a.last
	prev.Brightness = 0
	if !a.have || content != prev {
		switch in.Kind {
		case logic.IntentBlank:
			a.d.Clear()
		case logic.IntentText, logic.IntentTime:
			a.d.WriteText(in.Text, in.DotOn)
		case logic.IntentScroll:
			a.d.StartScroll(in.Text, time.Duration(in.StepMs)*time.Millisecond)
		}
	}

	a.last = in
	a.have = true
}
