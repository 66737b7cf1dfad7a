package discovery

import (
	"errors"
	"time"
)

// Domain errors for the discovery package.
var (
	// ErrScanInFlight is returned when a scan is requested while another
	// is still running.
	ErrScanInFlight = errors.New("discovery: scan already in flight")

	// ErrNoStrategies is returned when the reconciler has nothing to run.
	ErrNoStrategies = errors.New("discovery: no strategies configured")
)

// DiscoveredDevice is one device reported by a strategy. It carries only
// what the network announcement exposes; pairing state and favourites live
// in the registry.
type DiscoveredDevice struct {
	// Name is the advertised friendly name.
	Name string `json:"name"`

	// Host is the device's IPv4 address.
	Host string `json:"ip"`

	// Port is the advertised API port, or 0 when the announcement does
	// not carry one (SSDP responses do not).
	Port int `json:"port"`

	// DeviceType is the class inferred from the announcement, or "" when
	// the strategy cannot tell.
	DeviceType string `json:"device_type,omitempty"`

	// UDN is the unique device name from the announcement, when present.
	UDN string `json:"udn,omitempty"`

	// Source names the strategy that found the device.
	Source string `json:"source"`
}

// Result is the outcome of one full scan. Devices and Trace are delivered
// together as a single unit.
type Result struct {
	// Devices is the deduplicated device list from the strategy that
	// produced results.
	Devices []DiscoveredDevice `json:"devices"`

	// Strategy names the strategy whose results were kept, or "" when
	// nothing was found.
	Strategy string `json:"strategy,omitempty"`

	// Trace is the human-readable scan log, one line per step.
	Trace []string `json:"trace"`

	// StartedAt is when the scan began.
	StartedAt time.Time `json:"started_at"`

	// Duration is the total scan time.
	Duration time.Duration `json:"duration"`
}
