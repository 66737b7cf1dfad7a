package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/nwrenn/castdeck/internal/discovery"
	"github.com/nwrenn/castdeck/internal/history"
	"github.com/nwrenn/castdeck/internal/registry"
	"github.com/nwrenn/castdeck/internal/smartcast"
)

// Scan starts a background discovery pass. It returns immediately;
// completion is announced through the Notifier and the result becomes the
// new discovered-device list. A scan already in flight is reported via
// discovery.ErrScanInFlight, not queued.
func (c *Controller) Scan(ctx context.Context) error {
	// The scan must outlive the request that triggered it.
	scanCtx := context.WithoutCancel(ctx)

	results, err := c.reconciler.ScanAsync(scanCtx)
	if err != nil {
		return err
	}

	go func() {
		result := <-results
		if result == nil {
			return
		}

		c.mu.Lock()
		c.lastScan = result
		c.mu.Unlock()

		c.record(scanCtx, history.KindScan, "",
			fmt.Sprintf("scan found %d device(s) via %s", len(result.Devices), result.Strategy), nil)
		c.notifier.Broadcast(EventScanComplete, result)
	}()
	return nil
}

// ScanSync runs a discovery pass and waits for the result. Used at startup
// and by clients that prefer blocking behaviour.
func (c *Controller) ScanSync(ctx context.Context) (*discovery.Result, error) {
	result, err := c.reconciler.Scan(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.lastScan = result
	c.mu.Unlock()

	c.record(ctx, history.KindScan, "",
		fmt.Sprintf("scan found %d device(s) via %s", len(result.Devices), result.Strategy), nil)
	c.notifier.Broadcast(EventScanComplete, result)
	return result, nil
}

// ScanInFlight reports whether a scan is currently running.
func (c *Controller) ScanInFlight() bool {
	return c.reconciler.InFlight()
}

// Discovered returns the most recent scan result, or ErrNoScanResult before
// the first scan completes.
func (c *Controller) Discovered() (*discovery.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastScan == nil {
		return nil, ErrNoScanResult
	}
	return c.lastScan, nil
}

// SaveRequest identifies a discovered device to save, with optional
// overrides for the stored name and device type.
type SaveRequest struct {
	Host       string
	Port       int
	Name       string
	DeviceType string
}

// SaveDiscovered persists a device from the current scan result into the
// registry. The record is enriched with the serial number, ESN and firmware
// version when the device answers; each probe is independently best-effort.
// Favourites and any existing auth token survive a re-save.
func (c *Controller) SaveDiscovered(ctx context.Context, req SaveRequest) (*registry.DeviceRecord, error) {
	dev, err := c.findDiscovered(req.Host, req.Port)
	if err != nil {
		return nil, err
	}

	port := dev.Port
	if port == 0 {
		port = DefaultPort
	}
	if req.Port != 0 {
		port = req.Port
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = dev.Name
	}

	class := registry.DeviceClass(req.DeviceType)
	if class == "" {
		class = registry.DeviceClass(dev.DeviceType)
	}
	if class == "" {
		class = registry.DeviceClassTV
	}

	rec := &registry.DeviceRecord{
		Name:       name,
		Host:       dev.Host,
		Port:       &port,
		DeviceType: class,
		UDN:        dev.UDN,
		Favorites:  []string{},
	}

	// Re-saving a known device keeps what pairing and the user built up.
	if existing, err := c.registry.Get(dev.Host, port); err == nil {
		rec.AuthToken = existing.AuthToken
		rec.Favorites = existing.Favorites
	}

	// The active connection's token wins when it is for this device.
	c.mu.Lock()
	if c.conn != nil {
		t := c.conn.Target()
		if t.Host == dev.Host && t.Port == port && t.AuthToken != "" {
			rec.AuthToken = t.AuthToken
		}
	}
	c.mu.Unlock()

	c.enrich(ctx, rec)

	saved, err := c.registry.Upsert(rec)
	if err != nil {
		c.record(ctx, history.KindSave, address(dev.Host, port), "save device", err)
		return nil, err
	}

	c.record(ctx, history.KindSave, saved.Address(), fmt.Sprintf("saved %q", saved.Name), nil)
	c.notifier.Broadcast(EventDeviceSaved, saved)
	return saved, nil
}

// findDiscovered matches a device in the last scan result. A zero request
// port matches any discovered port; a request port of DefaultPort also
// matches SSDP results, which carry no port.
func (c *Controller) findDiscovered(host string, port int) (discovery.DiscoveredDevice, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lastScan == nil {
		return discovery.DiscoveredDevice{}, ErrNoScanResult
	}
	for _, dev := range c.lastScan.Devices {
		if dev.Host != host {
			continue
		}
		if port == 0 || dev.Port == port || (dev.Port == 0 && port == DefaultPort) {
			return dev, nil
		}
	}
	return discovery.DiscoveredDevice{}, fmt.Errorf("%w: %s", ErrNoSuchDevice, host)
}

// enrich fills in identity fields from the device itself. Every probe is
// optional; a device that is off or unpaired just yields a sparser record.
func (c *Controller) enrich(ctx context.Context, rec *registry.DeviceRecord) {
	ctrl, err := c.dialer.Dial(ctx, smartcast.Target{
		Host:        rec.Host,
		Port:        rec.PortValue(),
		AuthToken:   rec.AuthToken,
		DeviceClass: string(rec.DeviceType),
	})
	if err != nil {
		return
	}

	if serial, err := ctrl.SerialNumber(ctx); err == nil {
		rec.SerialNumber = serial
	}
	if esn, err := ctrl.ESN(ctx); err == nil {
		rec.ESN = esn
	}
	if version, err := ctrl.Version(ctx); err == nil {
		rec.Version = version
	}
}
