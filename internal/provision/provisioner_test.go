package provision

import (
	"bytes"
	"testing"
)

// scriptRW feeds scripted reads to the provisioner and records writes.
type scriptRW struct {
	reads  [][]byte
	writes bytes.Buffer
}

func (s *scriptRW) Read(p []byte) (int, error) {
	if len(s.reads) == 0 {
		return 0, nil
	}
	n := copy(p, s.reads[0])
	if n == len(s.reads[0]) {
		s.reads = s.reads[1:]
	} else {
		s.reads[0] = s.reads[0][n:]
	}
	return n, nil
}

func (s *scriptRW) Write(p []byte) (int, error) {
	return s.writes.Write(p)
}

func decodeWrites(t *testing.T, buf []byte) []Packet {
	t.Helper()
	var d Decoder
	return d.Feed(buf)
}

func newTestProvisioner(rw *scriptRW, cb Callbacks) *Provisioner {
	return New(rw, cb, DeviceInfo{
		Firmware: "wifi-clock",
		Version:  "1.00",
		Chip:     "bcm2835",
		Name:     "clock",
	})
}

func TestGetCurrentStateReportsAuthorized(t *testing.T) {
	rw := &scriptRW{reads: [][]byte{frameGetState}}
	p := newTestProvisioner(rw, Callbacks{})

	p.Handle()

	replies := decodeWrites(t, rw.writes.Bytes())
	if len(replies) != 1 {
		t.Fatalf("got %d replies, want 1", len(replies))
	}
	if replies[0].Cmd != CmdGetCurrentState {
		t.Errorf("reply cmd = %#x", replies[0].Cmd)
	}
	if len(replies[0].Data) != 1 || replies[0].Data[0] != StateAuthorized {
		t.Errorf("reply state = %x", replies[0].Data)
	}
}

func TestSetWiFiSuccessRunsCallbacksInOrder(t *testing.T) {
	frame := setWiFiFrame(t, "homenet", "hunter22")
	rw := &scriptRW{reads: [][]byte{frame}}

	var order []string
	p := newTestProvisioner(rw, Callbacks{
		OnConnectRequest: func(ssid, password string) bool {
			order = append(order, "connect:"+ssid)
			return true
		},
		OnConnected: func(ssid, password string) {
			order = append(order, "connected:"+ssid)
		},
	})

	p.Handle()

	if len(order) != 2 || order[0] != "connect:homenet" || order[1] != "connected:homenet" {
		t.Fatalf("callback order = %v", order)
	}
	if p.State() != StateProvisioned {
		t.Errorf("state = %#x, want provisioned", p.State())
	}
	if !p.ConsumeConnected() {
		t.Error("expected connected signal")
	}
	if p.ConsumeConnected() {
		t.Error("connected signal must be consumed once")
	}
}

func TestSetWiFiFailureReturnsToAuthorized(t *testing.T) {
	frame := setWiFiFrame(t, "homenet", "wrong")
	rw := &scriptRW{reads: [][]byte{frame}}

	connected := false
	p := newTestProvisioner(rw, Callbacks{
		OnConnectRequest: func(ssid, password string) bool { return false },
		OnConnected:      func(ssid, password string) { connected = true },
	})

	p.Handle()

	if connected {
		t.Error("OnConnected must not run after a failed attempt")
	}
	if p.State() != StateAuthorized {
		t.Errorf("state = %#x, want authorized", p.State())
	}
	if p.ConsumeConnected() {
		t.Error("no connected signal expected")
	}

	replies := decodeWrites(t, rw.writes.Bytes())
	if len(replies) != 1 || replies[0].Cmd != 0x02 {
		t.Fatalf("expected an error reply, got %v", replies)
	}
}

func TestMalformedPayloadIgnoredNotEscalated(t *testing.T) {
	frame, err := Encode(CmdSetWiFi, []byte{0x09, 'x'})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	rw := &scriptRW{reads: [][]byte{frame}}
	p := newTestProvisioner(rw, Callbacks{
		OnConnectRequest: func(string, string) bool {
			t.Fatal("connect attempted with malformed payload")
			return false
		},
	})

	p.Handle()
	if p.State() != StateAuthorized {
		t.Errorf("state = %#x after malformed payload", p.State())
	}
}

func TestHandleWithNoBytesIsQuiet(t *testing.T) {
	rw := &scriptRW{}
	p := newTestProvisioner(rw, Callbacks{})
	p.Handle()
	if rw.writes.Len() != 0 {
		t.Errorf("idle handle wrote %d bytes", rw.writes.Len())
	}
}
