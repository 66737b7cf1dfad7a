package app

import (
	"context"
	"net"
	"strconv"
	"sync"

	"github.com/nwrenn/castdeck/internal/discovery"
	"github.com/nwrenn/castdeck/internal/history"
	"github.com/nwrenn/castdeck/internal/infrastructure/logging"
	"github.com/nwrenn/castdeck/internal/registry"
	"github.com/nwrenn/castdeck/internal/smartcast"
)

// DefaultPort is the control API port assumed for devices discovered
// without one.
const DefaultPort = 7345

// Event names pushed through the Notifier.
const (
	EventScanComplete  = "scan_complete"
	EventConnected     = "connected"
	EventDisconnected  = "disconnected"
	EventDeviceSaved   = "device_saved"
	EventDeviceRemoved = "device_removed"
)

// Notifier receives state-change events for push delivery to clients.
type Notifier interface {
	Broadcast(event string, payload any)
}

// noopNotifier drops events when no hub is attached.
type noopNotifier struct{}

func (noopNotifier) Broadcast(string, any) {}

// Deps carries the collaborators a Controller needs. History may be nil
// when the feature is disabled.
type Deps struct {
	Registry   *registry.Registry
	Reconciler *discovery.Reconciler
	Dialer     smartcast.Dialer
	History    history.Repository
	Logger     *logging.Logger
	Notifier   Notifier
}

// Controller owns castdeck's mutable application state.
type Controller struct {
	registry   *registry.Registry
	reconciler *discovery.Reconciler
	dialer     smartcast.Dialer
	history    history.Repository
	logger     *logging.Logger
	notifier   Notifier

	mu       sync.Mutex
	lastScan *discovery.Result
	conn     smartcast.Controller
	pairing  *smartcast.PairChallenge

	// pairStarting holds the in-flight guard between PairStart's check and
	// the challenge landing in pairing, so concurrent starts cannot both
	// pass it.
	pairStarting bool
}

// NewController creates the application controller.
func NewController(deps Deps) *Controller {
	notifier := deps.Notifier
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &Controller{
		registry:   deps.Registry,
		reconciler: deps.Reconciler,
		dialer:     deps.Dialer,
		history:    deps.History,
		logger:     deps.Logger.With("component", "app"),
		notifier:   notifier,
	}
}

// Registry exposes the saved-device registry for read paths.
func (c *Controller) Registry() *registry.Registry {
	return c.registry
}

// Connect dials the saved device at host and port and makes it the active
// connection, replacing any previous one.
func (c *Controller) Connect(ctx context.Context, host string, port int) (smartcast.Target, error) {
	rec, err := c.registry.Get(host, port)
	if err != nil {
		return smartcast.Target{}, err
	}
	return c.connect(ctx, targetFor(rec))
}

// targetFor builds a dial target from a saved record.
func targetFor(rec *registry.DeviceRecord) smartcast.Target {
	return smartcast.Target{
		Host:        rec.Host,
		Port:        rec.PortValue(),
		Name:        rec.Name,
		AuthToken:   rec.AuthToken,
		DeviceClass: string(rec.DeviceType),
	}
}

// ConnectManual dials a device that is not in the registry, typically ahead
// of pairing and saving it. A zero port falls back to DefaultPort.
func (c *Controller) ConnectManual(ctx context.Context, host string, port int, deviceClass string) (smartcast.Target, error) {
	if port == 0 {
		port = DefaultPort
	}
	return c.connect(ctx, smartcast.Target{
		Host:        host,
		Port:        port,
		Name:        host,
		DeviceClass: deviceClass,
	})
}

func (c *Controller) connect(ctx context.Context, target smartcast.Target) (smartcast.Target, error) {
	ctrl, err := c.dialer.Dial(ctx, target)
	if err != nil {
		c.record(ctx, history.KindConnect, address(target.Host, target.Port), "connect", err)
		return smartcast.Target{}, err
	}

	c.mu.Lock()
	c.conn = ctrl
	c.pairing = nil
	c.mu.Unlock()

	c.logger.Info("device connected", "address", address(target.Host, target.Port))
	c.record(ctx, history.KindConnect, address(target.Host, target.Port), "connect", nil)
	c.notifier.Broadcast(EventConnected, map[string]any{
		"ip":   target.Host,
		"port": target.Port,
		"name": target.Name,
	})
	return target, nil
}

// Disconnect drops the active connection. Disconnecting when nothing is
// connected is a no-op.
func (c *Controller) Disconnect() {
	c.mu.Lock()
	hadConn := c.conn != nil
	c.conn = nil
	c.pairing = nil
	c.mu.Unlock()

	if hadConn {
		c.logger.Info("device disconnected")
		c.notifier.Broadcast(EventDisconnected, nil)
	}
}

// Current returns the active connection's target.
func (c *Controller) Current() (smartcast.Target, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return smartcast.Target{}, false
	}
	return c.conn.Target(), true
}

// connection returns the active controller or ErrNotConnected.
func (c *Controller) connection() (smartcast.Controller, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil, ErrNotConnected
	}
	return c.conn, nil
}

// RemoveDevice deletes a saved device. Removing the currently connected
// device also drops the connection.
func (c *Controller) RemoveDevice(ctx context.Context, host string, port int) error {
	if err := c.registry.Remove(host, port); err != nil {
		return err
	}

	c.mu.Lock()
	if c.conn != nil {
		t := c.conn.Target()
		if t.Host == host && t.Port == port {
			c.conn = nil
			c.pairing = nil
		}
	}
	c.mu.Unlock()

	c.record(ctx, history.KindSave, address(host, port), "remove device", nil)
	c.notifier.Broadcast(EventDeviceRemoved, map[string]any{"ip": host, "port": port})
	return nil
}

// record appends a history entry, if history is enabled. Recording never
// fails the operation it describes.
func (c *Controller) record(ctx context.Context, kind, device, detail string, opErr error) {
	if c.history == nil {
		return
	}
	entry := &history.Entry{
		Kind:    kind,
		Device:  device,
		Detail:  detail,
		Outcome: history.OutcomeOK,
	}
	if opErr != nil {
		entry.Outcome = history.OutcomeError
		entry.Error = opErr.Error()
	}
	if err := c.history.Record(ctx, entry); err != nil {
		c.logger.Warn("recording history entry failed", "error", err)
	}
}

func address(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// History exposes the activity log, or nil when disabled.
func (c *Controller) History() history.Repository {
	return c.history
}
