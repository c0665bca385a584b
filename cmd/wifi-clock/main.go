// Command wifi-clock drives a 4-digit seven-segment WiFi clock appliance:
// it keeps the network association alive, syncs time over NTP, and renders
// whatever the lifecycle state calls for.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/wifi-clock/internal/buttons"
	"github.com/sweeney/wifi-clock/internal/display"
	"github.com/sweeney/wifi-clock/internal/logic"
	"github.com/sweeney/wifi-clock/internal/portal"
	"github.com/sweeney/wifi-clock/internal/provision"
	"github.com/sweeney/wifi-clock/internal/settings"
	"github.com/sweeney/wifi-clock/internal/status"
	"github.com/sweeney/wifi-clock/internal/telemetry"
	"github.com/sweeney/wifi-clock/internal/timesync"
	"github.com/sweeney/wifi-clock/internal/tone"
	"github.com/sweeney/wifi-clock/internal/tzlookup"
	"github.com/sweeney/wifi-clock/internal/wifi"
)

const version = "1.00"

func main() {
	tick := flag.Duration("tick", 10*time.Millisecond, "Run loop tick interval")
	broker := flag.String("broker", "tcp://192.168.1.200:1883", "MQTT broker address (empty to disable telemetry)")
	heartbeat := flag.Duration("heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	httpAddr := flag.String("http", ":80", "HTTP settings/status address (empty to disable)")
	dbPath := flag.String("db", "/var/lib/wifi-clock/clock.db", "Settings database path")
	ntpHost := flag.String("ntp", "pool.ntp.org", "NTP host")
	serialPort := flag.String("serial", "", "Serial port for provisioning over USB (empty to disable)")
	iface := flag.String("iface", "wlan0", "WiFi interface name")
	chip := flag.String("chip", "gpiochip0", "GPIO character device")
	pinDIN := flag.Int("pin-din", display.DefaultPinDIN, "BCM pin for display DIN")
	pinCLK := flag.Int("pin-clk", display.DefaultPinCLK, "BCM pin for display CLK")
	pinCS := flag.Int("pin-cs", display.DefaultPinCS, "BCM pin for display CS")
	pinMode := flag.Int("pin-mode", buttons.PinMode, "BCM pin for the Mode button")
	pinUp := flag.Int("pin-up", buttons.PinUp, "BCM pin for the Up button")
	pinDown := flag.Int("pin-down", buttons.PinDown, "BCM pin for the Down button")
	pinBuzzer := flag.Int("pin-buzzer", tone.DefaultPin, "BCM pin for the buzzer")
	apSSID := flag.String("ap-ssid", "wifi-clock-setup", "Fallback access point SSID")
	apPass := flag.String("ap-pass", "", "Fallback access point password (empty for open)")
	showVersion := flag.Bool("version", false, "Print version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Printf("wifi-clock %s\n", version)
		return
	}

	cfg := config{
		tick:       *tick,
		broker:     *broker,
		heartbeat:  *heartbeat,
		httpAddr:   *httpAddr,
		dbPath:     *dbPath,
		ntpHost:    *ntpHost,
		serialPort: *serialPort,
		iface:      *iface,
		chip:       *chip,
		pinDIN:     *pinDIN, pinCLK: *pinCLK, pinCS: *pinCS,
		pinMode: *pinMode, pinUp: *pinUp, pinDown: *pinDown,
		pinBuzzer: *pinBuzzer,
		apSSID:    *apSSID,
		apPass:    *apPass,
	}
	if err := run(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

type config struct {
	tick       time.Duration
	broker     string
	heartbeat  time.Duration
	httpAddr   string
	dbPath     string
	ntpHost    string
	serialPort string
	iface      string
	chip       string

	pinDIN, pinCLK, pinCS   int
	pinMode, pinUp, pinDown int
	pinBuzzer               int

	apSSID, apPass string
}

func run(cfg config) error {
	// Hardware first; nothing else is useful without the display.
	disp, err := display.NewMAX7219(cfg.chip, cfg.pinDIN, cfg.pinCLK, cfg.pinCS)
	if err != nil {
		return fmt.Errorf("init display: %w", err)
	}
	defer disp.Close()

	btns, err := buttons.NewRealReader(cfg.chip, cfg.pinMode, cfg.pinUp, cfg.pinDown)
	if err != nil {
		return fmt.Errorf("init buttons: %w", err)
	}
	defer btns.Close()

	beeper, err := tone.NewGPIOBeeper(cfg.chip, cfg.pinBuzzer)
	if err != nil {
		return fmt.Errorf("init buzzer: %w", err)
	}
	defer beeper.Close()

	store, err := settings.Open(context.Background(), cfg.dbPath)
	if err != nil {
		return fmt.Errorf("open settings db: %w", err)
	}
	defer store.Close()

	radio := wifi.NewNmcli(cfg.iface, time.Second)
	defer radio.Close()

	clock := timesync.New(cfg.ntpHost)

	var publisher telemetry.Publisher
	var mqttStatus telemetry.ConnectionStatus
	if cfg.broker != "" {
		real := telemetry.NewRealPublisher(cfg.broker)
		defer real.Close()
		publisher, mqttStatus = real, real
	} else {
		publisher = telemetry.NewFakePublisher()
	}

	tracker := status.NewTracker(time.Now(), status.Config{
		TickMs:     cfg.tick.Milliseconds(),
		Broker:     cfg.broker,
		NTPHost:    cfg.ntpHost,
		SerialPort: cfg.serialPort,
		PortalAddr: cfg.httpAddr,
		APSSID:     cfg.apSSID,
	})

	// Run-loop mailboxes for changes arriving from other goroutines.
	settingsCh := make(chan logic.Settings, 4)
	credsCh := make(chan struct{}, 1)
	zoneCh := make(chan tzlookup.Zone, 1)

	fallback := portal.NewFallback(radio, cfg.apSSID, cfg.apPass)

	clockCfg := store.LoadClock()
	if clockCfg.HasZone {
		clock.SetZone(int(clockCfg.UTCOffsetSec), int(clockCfg.DSTOffsetSec))
	}

	start := time.Now()
	nowMillis := func() logic.Millis {
		return logic.Millis(time.Since(start).Milliseconds())
	}

	machine := logic.NewMachine(radio, clock, store, fallback, beeper, version, clockCfg, nowMillis())
	machine.InferZone = func() {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			z, err := tzlookup.Lookup(ctx)
			if err != nil {
				log.Printf("tzlookup: %v", err)
				return
			}
			select {
			case zoneCh <- z:
			default:
			}
		}()
	}
	machine.OnTransition = func(from, to logic.State) {
		log.Printf("state: %s -> %s", from, to)
		ev := telemetry.StateEvent{
			Timestamp:         time.Now(),
			From:              from,
			To:                to,
			ReconnectAttempts: int(machine.Attempts()),
			TimeSynced:        clock.Synced(),
		}
		if err := publisher.Publish(ev); err != nil {
			log.Printf("publish transition: %v", err)
		}
	}

	// Improv provisioning over a USB serial gadget, if wired up.
	var prov *provision.Provisioner
	if cfg.serialPort != "" {
		port, err := provision.OpenSerial(cfg.serialPort)
		if err != nil {
			return fmt.Errorf("open serial %s: %w", cfg.serialPort, err)
		}
		defer port.Close()
		prov = provision.New(port, provision.Callbacks{
			OnConnectRequest: func(ssid, password string) bool {
				return connectAndWait(radio, ssid, password, 10*time.Second)
			},
			OnConnected: func(ssid, password string) {
				if err := store.SaveCredentials(ssid, password); err != nil {
					log.Printf("save credentials: %v", err)
				}
			},
		}, provision.DeviceInfo{
			Firmware: "wifi-clock",
			Version:  version,
			Chip:     "bcm2835",
			Name:     "WiFi Clock",
		})
		log.Printf("provisioning listening on %s", cfg.serialPort)
	}

	// Always-on settings/status server. It also serves the fallback
	// portal: the listener covers the hotspot interface too.
	if cfg.httpAddr != "" {
		srv := portal.New(cfg.httpAddr, tracker, store, portal.Callbacks{
			OnSettings: func(s logic.Settings) { settingsCh <- s },
			OnCredentials: func(ssid, password string) {
				select {
				case credsCh <- struct{}{}:
				default:
				}
			},
			OnReset: func() { settingsCh <- logic.DefaultSettings() },
		})
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("settings server listening on %s", cfg.httpAddr)
	}

	snap := tracker.Snapshot()
	startupEvent := telemetry.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	}

	log.Printf("started: tick=%v ntp=%s broker=%s iface=%s", cfg.tick, cfg.ntpHost, cfg.broker, cfg.iface)

	ticker := time.NewTicker(cfg.tick)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	d := &daemon{
		machine:    machine,
		input:      logic.NewInputController(),
		buttons:    btns,
		applier:    display.NewApplier(disp),
		disp:       disp,
		radio:      radio,
		clock:      clock,
		prov:       prov,
		store:      store,
		publisher:  publisher,
		mqttStatus: mqttStatus,
		tracker:    tracker,
		heartbeat:  cfg.heartbeat,
		nowMillis:  nowMillis,
		settingsCh: settingsCh,
		credsCh:    credsCh,
		zoneCh:     zoneCh,
	}
	return d.runLoop(ticker.C, sigCh)
}

// connectAndWait drives one provisioning connection attempt: kick the
// radio and poll for the association to come up.
func connectAndWait(radio wifi.Controller, ssid, password string, timeout time.Duration) bool {
	radio.Connect(ssid, password)
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if radio.Connected() {
			return true
		}
		time.Sleep(200 * time.Millisecond)
	}
	return false
}
