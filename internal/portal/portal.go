package portal

import (
	"log"

	"github.com/sweeney/wifi-clock/internal/wifi"
)

// HotspotAddress is the fixed IPv4 of the fallback access point's gateway,
// which is what the display scrolls while the portal is up.
const HotspotAddress = "192.168.4.1"

// Fallback exposes the configuration UI when the home network is
// unreachable. The HTTP server itself runs for the whole process lifetime
// and listens on every interface; entering portal mode only brings the
// appliance's own access point up so the UI becomes reachable again.
// Driven from the lifecycle machine's tick thread.
type Fallback struct {
	radio   wifi.Controller
	apSSID  string
	apPass  string
	running bool
}

// NewFallback creates the fallback portal lifecycle.
func NewFallback(radio wifi.Controller, apSSID, apPass string) *Fallback {
	return &Fallback{radio: radio, apSSID: apSSID, apPass: apPass}
}

// Start brings the access point up. Safe to call when already running.
func (f *Fallback) Start() error {
	if f.running {
		return nil
	}
	if err := f.radio.StartHotspot(f.apSSID, f.apPass); err != nil {
		return err
	}
	f.running = true
	log.Printf("portal: up at http://%s/ (AP %q)", HotspotAddress, f.apSSID)
	return nil
}

// Stop tears the access point down. Safe to call when not running.
func (f *Fallback) Stop() {
	if !f.running {
		return
	}
	f.running = false
	if err := f.radio.StopHotspot(); err != nil {
		log.Printf("portal: stop hotspot: %v", err)
	}
	log.Printf("portal: down")
}

// Address returns the portal's gateway address for display.
func (f *Fallback) Address() string {
	return HotspotAddress
}
