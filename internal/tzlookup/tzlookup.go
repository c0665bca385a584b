// Package tzlookup infers the appliance's timezone offsets from its public
// IP address. One best-effort query; if it fails the clock stays on UTC
// until the portal is used to set a zone by hand.
package tzlookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultURL = "https://worldtimeapi.org/api/ip"

// Zone is a pair of offsets from UTC in seconds. DSTOffsetSec is zero when
// daylight saving is not in effect.
type Zone struct {
	UTCOffsetSec int
	DSTOffsetSec int
}

// Lookup queries the geolocation service for the local zone.
func Lookup(ctx context.Context) (Zone, error) {
	return lookup(ctx, defaultURL)
}

func lookup(ctx context.Context, url string) (Zone, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Zone{}, fmt.Errorf("build request: %w", err)
	}
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return Zone{}, fmt.Errorf("query timezone: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Zone{}, fmt.Errorf("timezone service: %s", resp.Status)
	}

	var body struct {
		RawOffset int  `json:"raw_offset"`
		DSTOffset int  `json:"dst_offset"`
		DST       bool `json:"dst"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Zone{}, fmt.Errorf("decode timezone response: %w", err)
	}

	z := Zone{UTCOffsetSec: body.RawOffset}
	if body.DST {
		z.DSTOffsetSec = body.DSTOffset
	}
	return z, nil
}
