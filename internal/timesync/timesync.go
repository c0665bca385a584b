// Package timesync keeps a network-synchronized wall clock. The appliance
// has no battery-backed RTC, so until the first successful NTP exchange the
// time of day is simply unknown.
package timesync

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/beevik/ntp"
)

const queryTimeout = 5 * time.Second

// Service answers "what time is it" from the last NTP offset plus the
// configured zone offsets. Request never blocks; at most one query is in
// flight at a time.
type Service struct {
	host  string
	query func(host string) (time.Duration, error)
	nowFn func() time.Time

	inflight atomic.Bool

	mu        sync.Mutex
	synced    bool
	offset    time.Duration
	utcOffset time.Duration
	dstOffset time.Duration
}

// New creates a service that syncs against the given NTP host.
func New(host string) *Service {
	return &Service{
		host:  host,
		query: ntpOffset,
		nowFn: time.Now,
	}
}

func ntpOffset(host string) (time.Duration, error) {
	resp, err := ntp.QueryWithOptions(host, ntp.QueryOptions{Timeout: queryTimeout})
	if err != nil {
		return 0, err
	}
	if err := resp.Validate(); err != nil {
		return 0, err
	}
	return resp.ClockOffset, nil
}

// Request starts one background sync attempt unless one is already
// running. Failures are logged and leave the previous offset in place.
func (s *Service) Request() {
	if !s.inflight.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer s.inflight.Store(false)
		offset, err := s.query(s.host)
		if err != nil {
			log.Printf("timesync: query %s: %v", s.host, err)
			return
		}
		s.mu.Lock()
		s.offset = offset
		s.synced = true
		s.mu.Unlock()
		log.Printf("timesync: synced, offset %v", offset)
	}()
}

// Synced reports whether at least one sync has succeeded.
func (s *Service) Synced() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.synced
}

// SetZone sets the standard and daylight-saving offsets from UTC.
func (s *Service) SetZone(utcOffsetSec, dstOffsetSec int) {
	s.mu.Lock()
	s.utcOffset = time.Duration(utcOffsetSec) * time.Second
	s.dstOffset = time.Duration(dstOffsetSec) * time.Second
	s.mu.Unlock()
}

// Now returns the local time of day and whether it is trustworthy.
func (s *Service) Now() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.synced {
		return time.Time{}, false
	}
	t := s.nowFn().UTC().Add(s.offset + s.utcOffset + s.dstOffset)
	return t, true
}
