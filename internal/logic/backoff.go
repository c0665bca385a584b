package logic

// ReconnectPolicy is the exponential backoff schedule used while the
// connection is lost. An attempt counts as failed only when its whole
// interval elapses without the radio associating.
type ReconnectPolicy struct {
	// IntervalMs is the wait before the current attempt is declared failed.
	IntervalMs Millis
	// Attempts counts connect attempts issued since the last reset.
	Attempts uint32
	// LastAttemptAt is when the current attempt was issued.
	LastAttemptAt Millis
}

// Reset restores the initial schedule. Called on every entry to the
// connection-lost state and on manual force-reconnect.
func (p *ReconnectPolicy) Reset(now Millis) {
	p.IntervalMs = ReconnectInitialMs
	p.Attempts = 0
	p.LastAttemptAt = now
}

// Issue records that a connect attempt was started at now.
func (p *ReconnectPolicy) Issue(now Millis) {
	p.Attempts++
	p.LastAttemptAt = now
}

// Due reports whether the current attempt's interval has elapsed, i.e. the
// attempt has failed and the next one is due.
func (p *ReconnectPolicy) Due(now Millis) bool {
	return Since(now, p.LastAttemptAt) >= p.IntervalMs
}

// Fail doubles the interval up to the cap. Applied after every failed
// attempt, yielding 5s, 10s, 20s, 40s, 80s, 160s, 300s, 300s, ...
func (p *ReconnectPolicy) Fail() {
	next := p.IntervalMs * 2
	if next > ReconnectCapMs || next < p.IntervalMs {
		next = ReconnectCapMs
	}
	p.IntervalMs = next
}

// Exhausted reports whether the portal-fallback attempt budget is spent.
func (p *ReconnectPolicy) Exhausted() bool {
	return p.Attempts >= ReconnectPortalAttempts
}
