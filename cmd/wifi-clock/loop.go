package main

import (
	"log"
	"os"
	"syscall"
	"time"

	"github.com/sweeney/wifi-clock/internal/buttons"
	"github.com/sweeney/wifi-clock/internal/display"
	"github.com/sweeney/wifi-clock/internal/logic"
	"github.com/sweeney/wifi-clock/internal/provision"
	"github.com/sweeney/wifi-clock/internal/status"
	"github.com/sweeney/wifi-clock/internal/telemetry"
	"github.com/sweeney/wifi-clock/internal/timesync"
	"github.com/sweeney/wifi-clock/internal/tzlookup"
	"github.com/sweeney/wifi-clock/internal/wifi"
)

// configStore is the slice of persistence the run loop touches directly.
type configStore interface {
	Credentials() (ssid, password string, ok bool)
	SaveSettings(logic.Settings) error
}

// daemon ties the tick loop's collaborators together. Everything the
// machine owns is mutated only from runLoop; the channels are the
// mailboxes other goroutines (portal handlers, timezone lookup) post to.
type daemon struct {
	machine    *logic.Machine
	input      *logic.InputController
	buttons    buttons.Reader
	applier    *display.Applier
	disp       display.Display
	radio      wifi.Controller
	clock      *timesync.Service
	prov       *provision.Provisioner
	store      configStore
	publisher  telemetry.Publisher
	mqttStatus telemetry.ConnectionStatus
	tracker    *status.Tracker
	heartbeat  time.Duration
	nowMillis  func() logic.Millis

	settingsCh <-chan logic.Settings
	credsCh    <-chan struct{}
	zoneCh     <-chan tzlookup.Zone
}

func (d *daemon) runLoop(tick <-chan time.Time, sig <-chan os.Signal) error {
	lastHeartbeat := time.Now()

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			d.shutdown(s)
			return nil

		case <-tick:
			now := d.nowMillis()

			if d.prov != nil {
				d.prov.Handle()
			}
			provisioned := d.prov != nil && d.prov.ConsumeConnected()

			select {
			case <-d.credsCh:
				// Credentials submitted through the portal: no
				// association exists yet, so start a connect attempt
				// instead of claiming a provisioning success.
				d.machine.CredentialsChanged(now)
			default:
			}
			d.drainSettings()
			d.drainZone()

			intent := d.machine.Tick(now, d.radio.Connected(), provisioned)

			mode, up, down, err := d.buttons.Read()
			if err != nil {
				log.Printf("button read error: %v", err)
			} else {
				for _, ev := range d.input.Poll(logic.ButtonSample{Mode: mode, Up: up, Down: down}, now) {
					log.Printf("input: %s", ev)
					d.machine.HandleInput(ev, now)
				}
			}

			d.applier.Apply(intent)
			d.disp.Tick()

			d.tracker.Update(d.machine.State(), int(d.machine.Attempts()), d.clock.Synced(), d.machine.Settings())
			if d.mqttStatus != nil {
				d.tracker.SetMQTTConnected(d.mqttStatus.IsConnected())
			}

			if d.heartbeat > 0 && time.Since(lastHeartbeat) >= d.heartbeat {
				lastHeartbeat = time.Now()
				d.publishHeartbeat()
			}
		}
	}
}

// drainSettings applies settings changed outside the tick thread (portal
// form posts, factory reset).
func (d *daemon) drainSettings() {
	for {
		select {
		case s := <-d.settingsCh:
			log.Printf("settings changed: brightness=%d hour24=%v zone=%v", s.Brightness, s.Hour24, s.HasZone)
			d.machine.ApplySettings(s)
			if s.HasZone {
				d.clock.SetZone(int(s.UTCOffsetSec), int(s.DSTOffsetSec))
			}
		default:
			return
		}
	}
}

// drainZone folds a completed timezone inference into the settings.
func (d *daemon) drainZone() {
	select {
	case z := <-d.zoneCh:
		s := d.machine.Settings()
		s.UTCOffsetSec = int32(z.UTCOffsetSec)
		s.DSTOffsetSec = int32(z.DSTOffsetSec)
		s.HasZone = true
		log.Printf("timezone inferred: utc%+ds dst%+ds", z.UTCOffsetSec, z.DSTOffsetSec)
		d.machine.ApplySettings(s)
		d.clock.SetZone(z.UTCOffsetSec, z.DSTOffsetSec)
		if err := d.store.SaveSettings(s); err != nil {
			log.Printf("persist inferred zone: %v", err)
		}
	default:
	}
}

func (d *daemon) publishHeartbeat() {
	d.refreshNetwork()

	snap := d.tracker.Snapshot()
	hb := telemetry.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "HEARTBEAT",
		RawPayload: status.FormatStatusEvent(snap, "HEARTBEAT", ""),
	}
	if err := d.publisher.PublishSystem(hb); err != nil {
		log.Printf("heartbeat publish error: %v", err)
	}
}

func (d *daemon) refreshNetwork() {
	ip := d.radio.Address()
	if ip == "" {
		d.tracker.SetNetwork(nil)
		return
	}
	ssid, _, _ := d.store.Credentials()
	d.tracker.SetNetwork(&status.NetworkInfo{SSID: ssid, IP: ip})
}

func (d *daemon) shutdown(s os.Signal) {
	signalName := "UNKNOWN"
	if s == syscall.SIGINT {
		signalName = "SIGINT"
	} else if s == syscall.SIGTERM {
		signalName = "SIGTERM"
	}

	if d.mqttStatus != nil {
		d.tracker.SetMQTTConnected(d.mqttStatus.IsConnected())
	}
	snap := d.tracker.Snapshot()
	event := telemetry.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "SHUTDOWN",
		Reason:     signalName,
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "SHUTDOWN", signalName),
	}
	if err := d.publisher.PublishSystem(event); err != nil {
		log.Printf("failed to publish shutdown event: %v", err)
	}

	d.disp.Clear()
}
