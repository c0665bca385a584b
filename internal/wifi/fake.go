package wifi

// Fake is a test double with settable radio state.
type Fake struct {
	ConnectedFlag bool
	Addr          string

	Connects    []string
	Disconnects int
	HotspotUp   bool
	Closed      bool

	// HotspotErr, if set, is returned by StartHotspot.
	HotspotErr error
}

// NewFake creates a disconnected fake controller.
func NewFake() *Fake {
	return &Fake{}
}

func (f *Fake) Connect(ssid, password string) {
	f.Connects = append(f.Connects, ssid+"/"+password)
}

func (f *Fake) Disconnect() {
	f.Disconnects++
	f.ConnectedFlag = false
}

func (f *Fake) Connected() bool { return f.ConnectedFlag }

func (f *Fake) Address() string { return f.Addr }

func (f *Fake) StartHotspot(ssid, password string) error {
	if f.HotspotErr != nil {
		return f.HotspotErr
	}
	f.HotspotUp = true
	return nil
}

func (f *Fake) StopHotspot() error {
	f.HotspotUp = false
	return nil
}

func (f *Fake) Close() error {
	f.Closed = true
	return nil
}
