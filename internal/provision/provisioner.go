package provision

import (
	"io"
	"log"
)

// Callbacks is the pair of hooks the core supplies. OnConnectRequest must
// attempt a real connection and may block for up to ~10 seconds before
// reporting the outcome; OnConnected is invoked after a successful attempt
// so the core can persist credentials.
type Callbacks struct {
	OnConnectRequest func(ssid, password string) bool
	OnConnected      func(ssid, password string)
}

// DeviceInfo is reported in response to GetDeviceInfo.
type DeviceInfo struct {
	Firmware string
	Version  string
	Chip     string
	Name     string
}

// Provisioner polls a host connection for Improv frames and answers them.
// Handle is called once per run-loop tick from the tick thread; callbacks
// run on the same thread.
type Provisioner struct {
	rw        io.ReadWriter
	callbacks Callbacks
	info      DeviceInfo

	dec       Decoder
	state     byte
	readBuf   []byte
	connected bool
}

// New creates a provisioner in the Authorized state.
func New(rw io.ReadWriter, cb Callbacks, info DeviceInfo) *Provisioner {
	return &Provisioner{
		rw:        rw,
		callbacks: cb,
		info:      info,
		state:     StateAuthorized,
		readBuf:   make([]byte, 256),
	}
}

// State returns the current Improv device state.
func (p *Provisioner) State() byte {
	return p.state
}

// ConsumeConnected reports (once) that a provisioning session completed a
// connection since the last call.
func (p *Provisioner) ConsumeConnected() bool {
	c := p.connected
	p.connected = false
	return c
}

// Handle drains available bytes from the host connection and processes any
// complete frames. Read errors and malformed frames are ignored; the
// protocol is best-effort.
func (p *Provisioner) Handle() {
	n, _ := p.rw.Read(p.readBuf)
	if n <= 0 {
		return
	}
	for _, pkt := range p.dec.Feed(p.readBuf[:n]) {
		p.dispatch(pkt)
	}
}

func (p *Provisioner) dispatch(pkt Packet) {
	switch pkt.Cmd {
	case CmdGetCurrentState:
		p.send(CmdGetCurrentState, []byte{p.state})

	case CmdGetDeviceInfo:
		p.send(CmdGetDeviceInfo, encodeStrings(
			p.info.Firmware, p.info.Version, p.info.Chip, p.info.Name))

	case CmdGetWiFiNetworks:
		// Scanning is not supported; reply with an empty list terminator.
		p.send(CmdGetWiFiNetworks, nil)

	case CmdSetWiFi:
		p.handleSetWiFi(pkt.Data)

	default:
		// Unknown command: ignored, not escalated.
	}
}

func (p *Provisioner) handleSetWiFi(data []byte) {
	ssid, password, err := ParseCredentials(data)
	if err != nil {
		log.Printf("provision: bad credentials payload: %v", err)
		p.sendError(ErrorUnableToConnect)
		return
	}

	log.Printf("provision: connect request for %q", ssid)
	p.state = StateProvisioning

	if p.callbacks.OnConnectRequest == nil || !p.callbacks.OnConnectRequest(ssid, password) {
		log.Printf("provision: connect to %q failed", ssid)
		p.state = StateAuthorized
		p.sendError(ErrorUnableToConnect)
		return
	}

	p.state = StateProvisioned
	p.send(CmdSetWiFi, []byte{p.state})
	if p.callbacks.OnConnected != nil {
		p.callbacks.OnConnected(ssid, password)
	}
	p.connected = true
}

func (p *Provisioner) send(cmd byte, data []byte) {
	frame, err := Encode(cmd, data)
	if err != nil {
		log.Printf("provision: encode: %v", err)
		return
	}
	if _, err := p.rw.Write(frame); err != nil {
		log.Printf("provision: write: %v", err)
	}
}

func (p *Provisioner) sendError(code byte) {
	p.send(0x02, []byte{code})
}

// encodeStrings packs strings as length-prefixed fields.
func encodeStrings(fields ...string) []byte {
	var out []byte
	for _, f := range fields {
		if len(f) > 0xFF {
			f = f[:0xFF]
		}
		out = append(out, byte(len(f)))
		out = append(out, f...)
	}
	return out
}
