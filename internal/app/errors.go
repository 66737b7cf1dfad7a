package app

import "errors"

// Domain errors for the app package.
var (
	// ErrNotConnected is returned when an operation needs an active
	// device connection and none exists.
	ErrNotConnected = errors.New("app: no device connected")

	// ErrNoPairingInFlight is returned when finishing or cancelling a
	// pairing exchange that was never started.
	ErrNoPairingInFlight = errors.New("app: no pairing in flight")

	// ErrPairingInFlight is returned when starting a pairing exchange
	// while another is still open.
	ErrPairingInFlight = errors.New("app: pairing already in flight")

	// ErrNoSuchDevice is returned when a discovered-device reference does
	// not match the current scan result.
	ErrNoSuchDevice = errors.New("app: no such discovered device")

	// ErrNoScanResult is returned when discovered devices are requested
	// before any scan has completed.
	ErrNoScanResult = errors.New("app: no scan has completed yet")

	// ErrFavoriteOutOfRange is returned when a favourite is activated by
	// a position that does not exist.
	ErrFavoriteOutOfRange = errors.New("app: favourite index out of range")

	// ErrUnknownStatusProbe is returned when a status request names a
	// probe that is not in the probe set.
	ErrUnknownStatusProbe = errors.New("app: unknown status probe")
)
