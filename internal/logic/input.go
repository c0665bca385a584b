package logic

// ButtonSample is one raw poll of the three buttons (true = pressed).
type ButtonSample struct {
	Mode bool
	Up   bool
	Down bool
}

// buttonRuntime tracks one physical button between polls.
type buttonRuntime struct {
	level     bool
	pressedAt Millis
	longFired bool
}

// observe updates the level and returns whether this poll is a press edge.
func (b *buttonRuntime) observe(pressed bool, now Millis) bool {
	edge := pressed && !b.level
	if edge {
		b.pressedAt = now
		b.longFired = false
	}
	b.level = pressed
	return edge
}

// InputController turns raw button levels into debounced input events. The
// debounce is a minimum-spacing gate on accepted actions, not a filter on
// the raw signal.
type InputController struct {
	mode buttonRuntime
	up   buttonRuntime
	down buttonRuntime

	// Shared across all buttons so the combo and the individual buttons
	// cannot both be handled for the same press.
	lastAction Millis
	acted      bool
}

// NewInputController returns a controller with no press history.
func NewInputController() *InputController {
	return &InputController{}
}

// gateOpen reports whether enough time has passed since the last accepted
// action. The first action is always accepted.
func (c *InputController) gateOpen(now, gap Millis) bool {
	return !c.acted || Since(now, c.lastAction) >= gap
}

func (c *InputController) accept(now Millis) {
	c.lastAction = now
	c.acted = true
}

// Poll processes one sample and returns the accepted events, highest
// priority first.
func (c *InputController) Poll(s ButtonSample, now Millis) []InputEvent {
	modeWasDown := c.mode.level
	c.mode.observe(s.Mode, now)
	upEdge := c.up.observe(s.Up, now)
	downEdge := c.down.observe(s.Down, now)
	modeReleased := modeWasDown && !s.Mode

	var events []InputEvent

	// Priority 1: Up+Down combo. Suppresses individual Up/Down handling
	// for this tick; Mode is still tracked.
	if s.Up && s.Down {
		if c.gateOpen(now, ComboGapMs) {
			c.accept(now)
			events = append(events, EventForceReconnect)
		}
		c.handleMode(s.Mode, modeReleased, now, &events)
		return events
	}

	// Priority 2 and 3: Mode long press, then short press on release.
	c.handleMode(s.Mode, modeReleased, now, &events)

	// Priority 4: Up / Down edge presses, each only while the other
	// button is not held.
	if upEdge && !s.Down && c.gateOpen(now, ActionGapMs) {
		c.accept(now)
		events = append(events, EventBrightnessUp)
	}
	if downEdge && !s.Up && c.gateOpen(now, ActionGapMs) {
		c.accept(now)
		events = append(events, EventBrightnessDown)
	}

	return events
}

// handleMode fires the long-press latch at most once per continuous hold,
// and the short press on release when the latch never fired.
func (c *InputController) handleMode(held, released bool, now Millis, events *[]InputEvent) {
	if held {
		if !c.mode.longFired && Since(now, c.mode.pressedAt) >= LongPressMs {
			c.mode.longFired = true
			c.accept(now)
			*events = append(*events, EventShowAddress)
		}
		return
	}
	if released && !c.mode.longFired && c.gateOpen(now, ActionGapMs) {
		c.accept(now)
		*events = append(*events, EventToggleHourFormat)
	}
}
