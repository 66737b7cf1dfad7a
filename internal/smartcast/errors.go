package smartcast

import "errors"

// Domain errors for the smartcast package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, smartcast.ErrUnauthorised) {
//	    // prompt for pairing
//	}
var (
	// ErrUnreachable is returned when the device cannot be contacted.
	ErrUnreachable = errors.New("smartcast: device unreachable")

	// ErrUnauthorised is returned when the device rejects the auth token.
	ErrUnauthorised = errors.New("smartcast: unauthorised")

	// ErrRequestFailed is returned when the device reports a non-success result.
	ErrRequestFailed = errors.New("smartcast: request failed")

	// ErrPairingDenied is returned when the device rejects a pairing attempt
	// (wrong PIN, challenge expired, or pairing blocked).
	ErrPairingDenied = errors.New("smartcast: pairing denied")

	// ErrUnknownKey is returned when a key name is not in the key code table.
	ErrUnknownKey = errors.New("smartcast: unknown key")

	// ErrUnknownApp is returned when an app name is not in the catalogue.
	ErrUnknownApp = errors.New("smartcast: unknown app")

	// ErrUnknownInput is returned when an input name does not exist on the device.
	ErrUnknownInput = errors.New("smartcast: unknown input")

	// ErrInvalidTarget is returned when a dial target is malformed.
	ErrInvalidTarget = errors.New("smartcast: invalid target")
)
