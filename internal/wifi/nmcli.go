package wifi

import (
	"fmt"
	"log"
	"net"
	"os/exec"
	"strings"
	"sync/atomic"
	"time"
)

// runner executes one external command. Injectable for tests.
type runner func(name string, args ...string) ([]byte, error)

func execRunner(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).CombinedOutput()
}

// Nmcli drives the radio through NetworkManager. Association state is
// refreshed by a background goroutine and crosses into the tick thread
// through an atomic flag only.
type Nmcli struct {
	iface string
	run   runner

	connected atomic.Bool
	addr      atomic.Value // string

	stop chan struct{}
	done chan struct{}
}

// NewNmcli creates a controller for the given wireless interface and
// starts the state monitor.
func NewNmcli(iface string, pollEvery time.Duration) *Nmcli {
	c := &Nmcli{
		iface: iface,
		run:   execRunner,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	c.addr.Store("")
	go c.monitor(pollEvery)
	return c
}

func (c *Nmcli) monitor(every time.Duration) {
	defer close(c.done)
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	c.refresh()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.refresh()
		}
	}
}

// refresh polls nmcli for the device state and the interface address.
func (c *Nmcli) refresh() {
	out, err := c.run("nmcli", "-t", "-f", "DEVICE,STATE", "device", "status")
	if err != nil {
		c.connected.Store(false)
		return
	}
	c.connected.Store(deviceConnected(string(out), c.iface))
	c.addr.Store(interfaceAddr(c.iface))
}

// deviceConnected parses `nmcli -t -f DEVICE,STATE device status` output.
func deviceConnected(out, iface string) bool {
	for _, line := range strings.Split(out, "\n") {
		fields := strings.SplitN(strings.TrimSpace(line), ":", 2)
		if len(fields) != 2 {
			continue
		}
		if fields[0] == iface {
			return fields[1] == "connected"
		}
	}
	return false
}

func interfaceAddr(iface string) string {
	ifi, err := net.InterfaceByName(iface)
	if err != nil {
		return ""
	}
	addrs, err := ifi.Addrs()
	if err != nil {
		return ""
	}
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		if ip4 := ipnet.IP.To4(); ip4 != nil {
			return ip4.String()
		}
	}
	return ""
}

// Connect initiates an association attempt in the background. The outcome
// is observed through Connected.
func (c *Nmcli) Connect(ssid, password string) {
	go func() {
		out, err := c.run("nmcli", "device", "wifi", "connect", ssid,
			"password", password, "ifname", c.iface)
		if err != nil {
			log.Printf("wifi connect %q: %v (%s)", ssid, err, strings.TrimSpace(string(out)))
			return
		}
		c.refresh()
	}()
}

// Disconnect drops the current association.
func (c *Nmcli) Disconnect() {
	if out, err := c.run("nmcli", "device", "disconnect", c.iface); err != nil {
		log.Printf("wifi disconnect: %v (%s)", err, strings.TrimSpace(string(out)))
	}
	c.connected.Store(false)
}

// Connected reports the last observed association state.
func (c *Nmcli) Connected() bool {
	return c.connected.Load()
}

// Address returns the last observed IPv4 address.
func (c *Nmcli) Address() string {
	s, _ := c.addr.Load().(string)
	return s
}

// StartHotspot brings up the portal access point on the interface.
func (c *Nmcli) StartHotspot(ssid, password string) error {
	args := []string{"device", "wifi", "hotspot", "ifname", c.iface, "ssid", ssid}
	if password != "" {
		args = append(args, "password", password)
	}
	if out, err := c.run("nmcli", args...); err != nil {
		return fmt.Errorf("start hotspot: %w (%s)", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// StopHotspot tears the access point down.
func (c *Nmcli) StopHotspot() error {
	if out, err := c.run("nmcli", "connection", "down", "Hotspot"); err != nil {
		return fmt.Errorf("stop hotspot: %w (%s)", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Close stops the state monitor.
func (c *Nmcli) Close() error {
	close(c.stop)
	<-c.done
	return nil
}
