// Package provision receives WiFi credentials over a serial host
// connection using the Improv WiFi serial protocol.
//
// Wire format: 'I' 'M', protocol version, command, payload length, payload,
// CRC-8 (poly 0x31) over everything before it.
package provision

import "fmt"

const protocolVersion = 1

// Improv commands.
const (
	CmdGetCurrentState = 0x01
	CmdGetDeviceInfo   = 0x02
	CmdGetWiFiNetworks = 0x03
	CmdSetWiFi         = 0x04
)

// Improv device states.
const (
	StateAuthorized   = 0x03
	StateProvisioning = 0x04
	StateProvisioned  = 0x05
)

// ErrorUnableToConnect is reported when a SetWiFi attempt fails.
const ErrorUnableToConnect = 0x03

var header = [2]byte{'I', 'M'}

// Packet is one decoded Improv frame.
type Packet struct {
	Cmd  byte
	Data []byte
}

// crc8 implements the protocol's CRC-8 with polynomial 0x31.
func crc8(data []byte) byte {
	var crc byte
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ 0x31
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// Encode builds one frame for the given command and payload.
func Encode(cmd byte, data []byte) ([]byte, error) {
	if len(data) > 0xFF {
		return nil, fmt.Errorf("payload too large: %d", len(data))
	}
	frame := make([]byte, 0, 6+len(data))
	frame = append(frame, header[0], header[1], protocolVersion, cmd, byte(len(data)))
	frame = append(frame, data...)
	frame = append(frame, crc8(frame))
	return frame, nil
}

// Decoder accumulates serial bytes and extracts complete frames. Bytes that
// do not form a valid frame (noise, debug output, bad CRC) are silently
// skipped.
type Decoder struct {
	buf []byte
}

// Feed appends raw bytes and returns every complete frame now available.
func (d *Decoder) Feed(p []byte) []Packet {
	d.buf = append(d.buf, p...)

	var packets []Packet
	for {
		pkt, ok := d.next()
		if !ok {
			return packets
		}
		packets = append(packets, pkt)
	}
}

// next extracts one frame from the front of the buffer, resyncing past
// noise. Returns false when no complete frame is buffered.
func (d *Decoder) next() (Packet, bool) {
	for {
		d.resync()
		if len(d.buf) < 5 {
			return Packet{}, false
		}

		n := int(d.buf[4])
		total := 6 + n
		if len(d.buf) < total {
			return Packet{}, false
		}

		frame := d.buf[:total]
		if d.buf[2] != protocolVersion || crc8(frame[:total-1]) != frame[total-1] {
			// Corrupt frame: drop the header byte and rescan.
			d.buf = d.buf[1:]
			continue
		}

		data := make([]byte, n)
		copy(data, frame[5:5+n])
		cmd := frame[3]
		d.buf = d.buf[total:]
		return Packet{Cmd: cmd, Data: data}, true
	}
}

// resync discards bytes until the buffer starts with the frame header.
func (d *Decoder) resync() {
	for len(d.buf) > 0 {
		if d.buf[0] == header[0] {
			if len(d.buf) == 1 || d.buf[1] == header[1] {
				return
			}
		}
		d.buf = d.buf[1:]
	}
}

// ParseCredentials splits a SetWiFi payload into ssid and password. Both
// are length-prefixed strings.
func ParseCredentials(data []byte) (ssid, password string, err error) {
	if len(data) < 1 {
		return "", "", fmt.Errorf("empty credentials payload")
	}
	n := int(data[0])
	if len(data) < 1+n+1 {
		return "", "", fmt.Errorf("truncated ssid")
	}
	ssid = string(data[1 : 1+n])

	rest := data[1+n:]
	m := int(rest[0])
	if len(rest) < 1+m {
		return "", "", fmt.Errorf("truncated password")
	}
	password = string(rest[1 : 1+m])
	return ssid, password, nil
}
