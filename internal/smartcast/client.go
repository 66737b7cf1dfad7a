package smartcast

import (
	"context"
	"strings"
	"time"
)

// Controller is the full control surface for one SmartCast device. All
// methods issue a single request to the device and honour ctx cancellation.
type Controller interface {
	// Target returns the device this controller talks to.
	Target() Target

	// Key sends a single virtual remote key press.
	Key(ctx context.Context, key Key) error

	// PowerState reports whether the device is powered on.
	PowerState(ctx context.Context) (bool, error)

	// Volume returns the current volume level (0-100).
	Volume(ctx context.Context) (int, error)

	// SetVolume sets the volume to an absolute level (0-100).
	SetVolume(ctx context.Context, level int) error

	// Muted reports whether audio is muted.
	Muted(ctx context.Context) (bool, error)

	// CurrentInput returns the name of the active input.
	CurrentInput(ctx context.Context) (string, error)

	// Inputs lists the device's available inputs.
	Inputs(ctx context.Context) ([]Input, error)

	// SetInput switches to the named input. The name may be either the
	// internal identifier or the user-assigned friendly name.
	SetInput(ctx context.Context, name string) error

	// CurrentApp returns the name of the running app, or "" when the
	// device is showing an input rather than an app.
	CurrentApp(ctx context.Context) (string, error)

	// LaunchApp launches an app from the known-apps catalogue by name.
	LaunchApp(ctx context.Context, name string) error

	// SerialNumber returns the device serial number.
	SerialNumber(ctx context.Context) (string, error)

	// ESN returns the device's electronic serial number.
	ESN(ctx context.Context) (string, error)

	// Version returns the firmware version string.
	Version(ctx context.Context) (string, error)

	// ChargingStatus reports whether a battery-powered device is on
	// charge. Mains-only devices return ErrRequestFailed.
	ChargingStatus(ctx context.Context) (bool, error)

	// BatteryLevel returns the battery percentage for portable devices.
	BatteryLevel(ctx context.Context) (int, error)

	// StartPair begins a pairing exchange. The device displays a PIN and
	// returns a challenge to be completed with FinishPair.
	StartPair(ctx context.Context) (*PairChallenge, error)

	// FinishPair completes a pairing exchange with the on-screen PIN and
	// returns the auth token to persist.
	FinishPair(ctx context.Context, ch *PairChallenge, pin string) (string, error)

	// CancelPair abandons an in-flight pairing exchange.
	CancelPair(ctx context.Context, ch *PairChallenge) error
}

// Dialer constructs Controllers for targets. It exists so the app layer can
// be tested against a fake without any HTTP machinery.
type Dialer interface {
	Dial(ctx context.Context, target Target) (Controller, error)
}

// DialerConfig carries the client identity presented to devices during
// pairing, plus the per-request timeout.
type DialerConfig struct {
	// DeviceID uniquely identifies this castdeck instance to devices.
	// Devices key issued auth tokens to it, so it must stay stable
	// across restarts.
	DeviceID string

	// DeviceName is the label shown on the TV's pairing screen.
	DeviceName string

	// Timeout bounds each request to a device.
	Timeout time.Duration
}

// validateTarget checks the fields Dial requires.
func validateTarget(t Target) error {
	if strings.TrimSpace(t.Host) == "" {
		return ErrInvalidTarget
	}
	if t.Port <= 0 || t.Port > 65535 {
		return ErrInvalidTarget
	}
	return nil
}
