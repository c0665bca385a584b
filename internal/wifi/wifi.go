// Package wifi controls the WiFi radio with abstraction for testing.
// The real implementation drives NetworkManager through nmcli.
package wifi

// Controller owns the radio: association attempts, teardown, and the
// fallback access point used by the configuration portal.
type Controller interface {
	// Connect initiates an association attempt. It must not wait for the
	// result; the caller observes the outcome through Connected.
	Connect(ssid, password string)

	// Disconnect drops the current association.
	Disconnect()

	// Connected reports whether the radio currently has an association
	// with IP connectivity.
	Connected() bool

	// Address returns the current IPv4 address, or "" when unknown.
	Address() string

	// StartHotspot brings up the local access point.
	StartHotspot(ssid, password string) error

	// StopHotspot tears the access point down.
	StopHotspot() error

	// Close stops any background monitoring.
	Close() error
}
