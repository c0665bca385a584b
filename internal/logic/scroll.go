package logic

// ScrollRequest describes one scrolling display job. Its duration is fixed
// when the request is created and never re-derived, even if the underlying
// address changes mid-scroll.
type ScrollRequest struct {
	Text      string
	StepMs    Millis
	Cycles    int // 0 = repeat until superseded
	StartedAt Millis
}

// NewScrollRequest fixes the scroll content and duration at start time.
func NewScrollRequest(text string, stepMs Millis, cycles int, now Millis) ScrollRequest {
	return ScrollRequest{
		Text:      text,
		StepMs:    stepMs,
		Cycles:    cycles,
		StartedAt: now,
	}
}

// StepsPerCycle returns how many scroll steps one full traversal of the
// text takes across the 4-digit visible window.
func (s ScrollRequest) StepsPerCycle() int {
	steps := len(s.Text) - VisibleDigits + 1
	if steps < 1 {
		steps = 1
	}
	return steps
}

// DurationMs is the total fixed duration of the request. Zero for endless
// scrolls.
func (s ScrollRequest) DurationMs() Millis {
	if s.Cycles <= 0 {
		return 0
	}
	return Millis(s.StepsPerCycle()) * s.StepMs * Millis(s.Cycles)
}

// Done reports whether a finite scroll has run its full duration.
func (s ScrollRequest) Done(now Millis) bool {
	if s.Cycles <= 0 {
		return false
	}
	return Since(now, s.StartedAt) >= s.DurationMs()
}
