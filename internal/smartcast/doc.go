// Package smartcast defines the device-control client boundary for castdeck.
//
// Everything the rest of the application knows about a SmartCast device goes
// through the Controller interface: key presses, settings reads and writes,
// pairing, and identity queries. Core packages (app, command, registry) depend
// only on the interface; the HTTP adapter in this package is the single place
// that knows endpoint paths and payload shapes.
//
// # Usage
//
//	dialer := smartcast.NewDialer(smartcast.DialerConfig{
//	    DeviceID:   cfg.Client.DeviceID,
//	    DeviceName: cfg.Client.DeviceName,
//	    Timeout:    cfg.GetClientTimeout(),
//	})
//	ctrl, err := dialer.Dial(ctx, smartcast.Target{
//	    Host:        "192.168.1.80",
//	    Port:        7345,
//	    AuthToken:   "Zabc123...",
//	    DeviceClass: "tv",
//	})
//	if err != nil { ... }
//	err = ctrl.Key(ctx, smartcast.KeyVolumeUp)
//
// # Pairing
//
// Pairing follows the device's challenge/PIN exchange:
//
//	ch, _ := ctrl.StartPair(ctx)      // PIN appears on the TV screen
//	token, _ := ctrl.FinishPair(ctx, ch, "1234")
//
// The returned token authorises all subsequent control calls and should be
// persisted with the device's registry record.
//
// # Thread Safety
//
// Controllers are safe for concurrent use; each call is an independent HTTP
// request with its own timeout.
package smartcast
