package settings

import "github.com/sweeney/wifi-clock/internal/logic"

// Memory is an in-memory store for tests and non-persistent runs.
type Memory struct {
	SSID     string
	Password string
	Clock    logic.Settings
	Saves    int
}

// NewMemory returns a store holding the default clock settings.
func NewMemory() *Memory {
	return &Memory{Clock: logic.DefaultSettings()}
}

func (m *Memory) Credentials() (ssid, password string, ok bool) {
	if m.SSID == "" {
		return "", "", false
	}
	return m.SSID, m.Password, true
}

func (m *Memory) SaveCredentials(ssid, password string) error {
	m.SSID, m.Password = ssid, password
	return nil
}

func (m *Memory) LoadClock() logic.Settings {
	return m.Clock
}

func (m *Memory) SaveSettings(cfg logic.Settings) error {
	m.Clock = cfg
	m.Saves++
	return nil
}

func (m *Memory) EraseAll() error {
	m.SSID, m.Password = "", ""
	m.Clock = logic.DefaultSettings()
	return nil
}
