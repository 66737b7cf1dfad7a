package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nwrenn/castdeck/internal/history"
	"github.com/nwrenn/castdeck/internal/smartcast"
)

// Status probe names. ProbeAll (or an empty probe) collects everything that
// applies to the connected device's class.
const (
	ProbeAll      = "all"
	ProbePower    = "power"
	ProbeVolume   = "volume"
	ProbeMute     = "mute"
	ProbeInput    = "input"
	ProbeApp      = "app"
	ProbeCharging = "charging"
	ProbeBattery  = "battery"
	ProbeSerial   = "serial"
	ProbeESN      = "esn"
	ProbeVersion  = "version"
)

// Status probes the connected device and returns a snapshot. Each probe is
// independently best-effort: a field the device does not answer stays nil
// rather than failing the whole snapshot. An empty probe or ProbeAll runs
// every probe; battery probes only run for portable devices.
func (c *Controller) Status(ctx context.Context, probe string) (*smartcast.Status, error) {
	conn, err := c.connection()
	if err != nil {
		return nil, err
	}

	probe = strings.ToLower(strings.TrimSpace(probe))
	if probe == "" {
		probe = ProbeAll
	}

	target := conn.Target()
	status := &smartcast.Status{CollectedAt: time.Now()}

	all := probe == ProbeAll
	matched := all

	if all || probe == ProbePower {
		matched = true
		if on, err := conn.PowerState(ctx); err == nil {
			status.PowerOn = &on
		}
	}
	if all || probe == ProbeVolume {
		matched = true
		if level, err := conn.Volume(ctx); err == nil {
			status.Volume = &level
		}
	}
	if all || probe == ProbeMute {
		matched = true
		if muted, err := conn.Muted(ctx); err == nil {
			status.Muted = &muted
		}
	}
	if all || probe == ProbeInput {
		matched = true
		if input, err := conn.CurrentInput(ctx); err == nil {
			status.CurrentInput = &input
		}
	}
	if all || probe == ProbeApp {
		matched = true
		if app, err := conn.CurrentApp(ctx); err == nil {
			status.CurrentApp = &app
		}
	}
	if (all && target.DeviceClass == "crave360") || probe == ProbeCharging {
		matched = true
		if charging, err := conn.ChargingStatus(ctx); err == nil {
			status.Charging = &charging
		}
	}
	if (all && target.DeviceClass == "crave360") || probe == ProbeBattery {
		matched = true
		if level, err := conn.BatteryLevel(ctx); err == nil {
			status.BatteryLevel = &level
		}
	}
	if all || probe == ProbeSerial {
		matched = true
		if serial, err := conn.SerialNumber(ctx); err == nil {
			status.SerialNumber = &serial
		}
	}
	if all || probe == ProbeESN {
		matched = true
		if esn, err := conn.ESN(ctx); err == nil {
			status.ESN = &esn
		}
	}
	if all || probe == ProbeVersion {
		matched = true
		if version, err := conn.Version(ctx); err == nil {
			status.Version = &version
		}
	}

	if !matched {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatusProbe, probe)
	}

	c.record(ctx, history.KindStatus, address(target.Host, target.Port),
		fmt.Sprintf("status %s", probe), nil)
	return status, nil
}
