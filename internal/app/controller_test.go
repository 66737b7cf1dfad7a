package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/nwrenn/castdeck/internal/command"
	"github.com/nwrenn/castdeck/internal/discovery"
	"github.com/nwrenn/castdeck/internal/infrastructure/logging"
	"github.com/nwrenn/castdeck/internal/registry"
	"github.com/nwrenn/castdeck/internal/smartcast"
)

func testLogger() *logging.Logger {
	return &logging.Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// fakeDevice is a scriptable smartcast.Controller.
type fakeDevice struct {
	target smartcast.Target

	serial, esn, version string
	probeErr             error

	powerOn bool
	volume  int
	battery int

	keys      []smartcast.Key
	launched  []string
	pairToken string
	pairErr   error

	// pairEntered and pairGate make StartPair signal entry and block until
	// released, for exercising in-flight guards.
	pairEntered chan struct{}
	pairGate    chan struct{}
}

func (f *fakeDevice) Target() smartcast.Target { return f.target }

func (f *fakeDevice) Key(_ context.Context, key smartcast.Key) error {
	f.keys = append(f.keys, key)
	return nil
}

func (f *fakeDevice) PowerState(context.Context) (bool, error) { return f.powerOn, f.probeErr }
func (f *fakeDevice) Volume(context.Context) (int, error)      { return f.volume, f.probeErr }
func (f *fakeDevice) SetVolume(context.Context, int) error     { return nil }
func (f *fakeDevice) Muted(context.Context) (bool, error)      { return false, f.probeErr }
func (f *fakeDevice) CurrentInput(context.Context) (string, error) {
	return "HDMI-1", f.probeErr
}
func (f *fakeDevice) Inputs(context.Context) ([]smartcast.Input, error) { return nil, nil }
func (f *fakeDevice) SetInput(context.Context, string) error            { return nil }
func (f *fakeDevice) CurrentApp(context.Context) (string, error)        { return "", f.probeErr }

func (f *fakeDevice) LaunchApp(_ context.Context, name string) error {
	f.launched = append(f.launched, name)
	return nil
}

func (f *fakeDevice) SerialNumber(context.Context) (string, error) { return f.serial, f.probeErr }
func (f *fakeDevice) ESN(context.Context) (string, error)          { return f.esn, f.probeErr }
func (f *fakeDevice) Version(context.Context) (string, error)      { return f.version, f.probeErr }
func (f *fakeDevice) ChargingStatus(context.Context) (bool, error) { return true, f.probeErr }
func (f *fakeDevice) BatteryLevel(context.Context) (int, error)    { return f.battery, f.probeErr }

func (f *fakeDevice) StartPair(context.Context) (*smartcast.PairChallenge, error) {
	if f.pairEntered != nil {
		f.pairEntered <- struct{}{}
	}
	if f.pairGate != nil {
		<-f.pairGate
	}
	if f.pairErr != nil {
		return nil, f.pairErr
	}
	return &smartcast.PairChallenge{ChallengeType: 1, Token: 42}, nil
}

func (f *fakeDevice) FinishPair(_ context.Context, ch *smartcast.PairChallenge, pin string) (string, error) {
	if f.pairErr != nil {
		return "", f.pairErr
	}
	return f.pairToken, nil
}

func (f *fakeDevice) CancelPair(context.Context, *smartcast.PairChallenge) error { return nil }

// fakeDialer hands out fakeDevices and records dial targets.
type fakeDialer struct {
	mu      sync.Mutex
	dialled []smartcast.Target
	device  *fakeDevice
	err     error
}

func (d *fakeDialer) Dial(_ context.Context, target smartcast.Target) (smartcast.Controller, error) {
	d.mu.Lock()
	d.dialled = append(d.dialled, target)
	d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	dev := d.device
	if dev == nil {
		dev = &fakeDevice{}
	}
	clone := *dev
	clone.target = target
	return &clone, nil
}

func (d *fakeDialer) lastTarget(t *testing.T) smartcast.Target {
	t.Helper()
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.dialled) == 0 {
		t.Fatal("no dial recorded")
	}
	return d.dialled[len(d.dialled)-1]
}

// fakeNotifier records broadcast events.
type fakeNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *fakeNotifier) Broadcast(event string, _ any) {
	n.mu.Lock()
	n.events = append(n.events, event)
	n.mu.Unlock()
}

func (n *fakeNotifier) has(event string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, e := range n.events {
		if e == event {
			return true
		}
	}
	return false
}

// fixedStrategy feeds canned scan results through a real reconciler.
type fixedStrategy struct {
	devices []discovery.DiscoveredDevice
}

func (s *fixedStrategy) Name() string { return "fake" }
func (s *fixedStrategy) Discover(context.Context) ([]discovery.DiscoveredDevice, error) {
	return s.devices, nil
}

type testEnv struct {
	controller *Controller
	registry   *registry.Registry
	dialer     *fakeDialer
	notifier   *fakeNotifier
	device     *fakeDevice
}

func newTestEnv(t *testing.T, discovered ...discovery.DiscoveredDevice) *testEnv {
	t.Helper()

	store := registry.NewFileStore(filepath.Join(t.TempDir(), "devices.json"))
	reg, err := registry.NewRegistry(store, testLogger())
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	device := &fakeDevice{pairToken: "Zpaired123"}
	dialer := &fakeDialer{device: device}
	notifier := &fakeNotifier{}
	rec := discovery.NewReconciler(
		[]discovery.Strategy{&fixedStrategy{devices: discovered}},
		100*time.Millisecond, testLogger(),
	)

	ctrl := NewController(Deps{
		Registry:   reg,
		Reconciler: rec,
		Dialer:     dialer,
		Logger:     testLogger(),
		Notifier:   notifier,
	})
	return &testEnv{controller: ctrl, registry: reg, dialer: dialer, notifier: notifier, device: device}
}

func intPtr(v int) *int { return &v }

func savedRecord(t *testing.T, env *testEnv, name, host string, port int, token string) {
	t.Helper()
	_, err := env.registry.Upsert(&registry.DeviceRecord{
		Name:       name,
		Host:       host,
		Port:       intPtr(port),
		DeviceType: registry.DeviceClassTV,
		AuthToken:  token,
	})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
}

func TestConnect_UsesSavedRecord(t *testing.T) {
	env := newTestEnv(t)
	savedRecord(t, env, "Living Room", "192.168.1.80", 7345, "Ztoken1")

	target, err := env.controller.Connect(context.Background(), "192.168.1.80", 7345)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if target.AuthToken != "Ztoken1" || target.Name != "Living Room" {
		t.Errorf("target = %+v, want saved record fields", target)
	}
	if _, ok := env.controller.Current(); !ok {
		t.Error("Current() reports no connection after Connect")
	}
	if !env.notifier.has(EventConnected) {
		t.Error("connected event not broadcast")
	}
}

func TestConnect_UnknownDevice(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.controller.Connect(context.Background(), "10.0.0.9", 7345)
	if !errors.Is(err, registry.ErrNotFound) {
		t.Errorf("Connect() error = %v, want registry.ErrNotFound", err)
	}
}

func TestConnectManual_DefaultsPort(t *testing.T) {
	env := newTestEnv(t)

	target, err := env.controller.ConnectManual(context.Background(), "192.168.1.90", 0, "speaker")
	if err != nil {
		t.Fatalf("ConnectManual() error = %v", err)
	}
	if target.Port != DefaultPort {
		t.Errorf("Port = %d, want DefaultPort", target.Port)
	}
	if target.DeviceClass != "speaker" {
		t.Errorf("DeviceClass = %q, want speaker", target.DeviceClass)
	}
}

func TestCommand_RequiresConnection(t *testing.T) {
	env := newTestEnv(t)

	err := env.controller.Command(context.Background(), command.Command{Name: command.PowerToggle})
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("Command() error = %v, want ErrNotConnected", err)
	}
}

func TestScan_ReplacesDiscoveredWholesale(t *testing.T) {
	env := newTestEnv(t,
		discovery.DiscoveredDevice{Name: "TV", Host: "192.168.1.80", Port: 7345, Source: "fake"},
	)

	if _, err := env.controller.Discovered(); !errors.Is(err, ErrNoScanResult) {
		t.Errorf("Discovered() before scan error = %v, want ErrNoScanResult", err)
	}

	result, err := env.controller.ScanSync(context.Background())
	if err != nil {
		t.Fatalf("ScanSync() error = %v", err)
	}
	if len(result.Devices) != 1 {
		t.Fatalf("scan found %d devices, want 1", len(result.Devices))
	}

	got, err := env.controller.Discovered()
	if err != nil {
		t.Fatalf("Discovered() error = %v", err)
	}
	if len(got.Devices) != 1 || got.Devices[0].Name != "TV" {
		t.Errorf("Discovered() = %+v, want scan result", got.Devices)
	}
	if !env.notifier.has(EventScanComplete) {
		t.Error("scan_complete event not broadcast")
	}
}

func TestScan_AsyncDeliversResult(t *testing.T) {
	env := newTestEnv(t,
		discovery.DiscoveredDevice{Name: "TV", Host: "192.168.1.80", Port: 7345, Source: "fake"},
	)

	if err := env.controller.Scan(context.Background()); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := env.controller.Discovered(); err == nil {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("async scan never delivered a result")
}

func TestSaveDiscovered_EnrichesAndDefaults(t *testing.T) {
	env := newTestEnv(t,
		// SSDP-style result: no port, no type.
		discovery.DiscoveredDevice{Name: "TV", Host: "192.168.1.80", Source: "fake", UDN: "uuid-1"},
	)
	env.dialer.device.serial = "SN-9"
	env.dialer.device.esn = "ESN-9"
	env.dialer.device.version = "1.2.3"

	if _, err := env.controller.ScanSync(context.Background()); err != nil {
		t.Fatalf("ScanSync() error = %v", err)
	}

	saved, err := env.controller.SaveDiscovered(context.Background(), SaveRequest{
		Host: "192.168.1.80",
		Name: "Den TV",
	})
	if err != nil {
		t.Fatalf("SaveDiscovered() error = %v", err)
	}
	if saved.PortValue() != DefaultPort {
		t.Errorf("Port = %d, want DefaultPort for portless discovery", saved.PortValue())
	}
	if saved.Name != "Den TV" {
		t.Errorf("Name = %q, want override", saved.Name)
	}
	if saved.DeviceType != registry.DeviceClassTV {
		t.Errorf("DeviceType = %q, want tv default", saved.DeviceType)
	}
	if saved.SerialNumber != "SN-9" || saved.ESN != "ESN-9" || saved.Version != "1.2.3" {
		t.Errorf("enrichment = (%q, %q, %q), want probed values",
			saved.SerialNumber, saved.ESN, saved.Version)
	}
	if saved.UDN != "uuid-1" {
		t.Errorf("UDN = %q, want discovery value", saved.UDN)
	}
	if !env.notifier.has(EventDeviceSaved) {
		t.Error("device_saved event not broadcast")
	}
}

func TestSaveDiscovered_EnrichmentFailureIsNotFatal(t *testing.T) {
	env := newTestEnv(t,
		discovery.DiscoveredDevice{Name: "TV", Host: "192.168.1.80", Port: 7345, Source: "fake"},
	)
	env.dialer.device.probeErr = errors.New("powered off")

	if _, err := env.controller.ScanSync(context.Background()); err != nil {
		t.Fatalf("ScanSync() error = %v", err)
	}

	saved, err := env.controller.SaveDiscovered(context.Background(), SaveRequest{Host: "192.168.1.80"})
	if err != nil {
		t.Fatalf("SaveDiscovered() error = %v", err)
	}
	if saved.SerialNumber != "" || saved.ESN != "" || saved.Version != "" {
		t.Errorf("enrichment fields = %+v, want empty on probe failure", saved)
	}
}

func TestSaveDiscovered_PreservesFavoritesAndToken(t *testing.T) {
	env := newTestEnv(t,
		discovery.DiscoveredDevice{Name: "TV", Host: "192.168.1.80", Port: 7345, Source: "fake"},
	)
	savedRecord(t, env, "Old Name", "192.168.1.80", 7345, "Zkeepme")
	if err := env.registry.AddFavorite("192.168.1.80", 7345, "Netflix"); err != nil {
		t.Fatalf("AddFavorite() error = %v", err)
	}

	if _, err := env.controller.ScanSync(context.Background()); err != nil {
		t.Fatalf("ScanSync() error = %v", err)
	}

	saved, err := env.controller.SaveDiscovered(context.Background(), SaveRequest{Host: "192.168.1.80"})
	if err != nil {
		t.Fatalf("SaveDiscovered() error = %v", err)
	}
	if saved.AuthToken != "Zkeepme" {
		t.Errorf("AuthToken = %q, want preserved token", saved.AuthToken)
	}
	if len(saved.Favorites) != 1 || saved.Favorites[0] != "Netflix" {
		t.Errorf("Favorites = %v, want preserved", saved.Favorites)
	}
	if env.registry.Count() != 1 {
		t.Errorf("registry count = %d, want in-place replace", env.registry.Count())
	}
}

func TestSaveDiscovered_UnknownHost(t *testing.T) {
	env := newTestEnv(t,
		discovery.DiscoveredDevice{Name: "TV", Host: "192.168.1.80", Port: 7345, Source: "fake"},
	)
	if _, err := env.controller.ScanSync(context.Background()); err != nil {
		t.Fatalf("ScanSync() error = %v", err)
	}

	_, err := env.controller.SaveDiscovered(context.Background(), SaveRequest{Host: "10.9.9.9"})
	if !errors.Is(err, ErrNoSuchDevice) {
		t.Errorf("SaveDiscovered() error = %v, want ErrNoSuchDevice", err)
	}
}

func TestPairing_FullExchange(t *testing.T) {
	env := newTestEnv(t)
	savedRecord(t, env, "TV", "192.168.1.80", 7345, "")

	if _, err := env.controller.Connect(context.Background(), "192.168.1.80", 7345); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	if err := env.controller.PairFinish(context.Background(), "1234"); !errors.Is(err, ErrNoPairingInFlight) {
		t.Errorf("PairFinish() before start error = %v, want ErrNoPairingInFlight", err)
	}

	ch, err := env.controller.PairStart(context.Background())
	if err != nil {
		t.Fatalf("PairStart() error = %v", err)
	}
	if ch.Token != 42 {
		t.Errorf("challenge token = %d, want 42", ch.Token)
	}

	if _, err := env.controller.PairStart(context.Background()); !errors.Is(err, ErrPairingInFlight) {
		t.Errorf("second PairStart() error = %v, want ErrPairingInFlight", err)
	}

	if err := env.controller.PairFinish(context.Background(), "1234"); err != nil {
		t.Fatalf("PairFinish() error = %v", err)
	}

	// The connection now carries the token and the saved record was updated.
	target, ok := env.controller.Current()
	if !ok || target.AuthToken != "Zpaired123" {
		t.Errorf("current target token = %q, want Zpaired123", target.AuthToken)
	}
	rec, err := env.registry.Get("192.168.1.80", 7345)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if rec.AuthToken != "Zpaired123" {
		t.Errorf("persisted token = %q, want Zpaired123", rec.AuthToken)
	}
}

func TestPairStart_RejectsConcurrentStart(t *testing.T) {
	env := newTestEnv(t)
	env.device.pairEntered = make(chan struct{}, 1)
	env.device.pairGate = make(chan struct{})

	savedRecord(t, env, "TV", "192.168.1.80", 7345, "")
	if _, err := env.controller.Connect(context.Background(), "192.168.1.80", 7345); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	firstErr := make(chan error, 1)
	go func() {
		_, err := env.controller.PairStart(context.Background())
		firstErr <- err
	}()

	// The first exchange is mid-flight on the device, before any
	// challenge has been stored.
	<-env.device.pairEntered

	if _, err := env.controller.PairStart(context.Background()); !errors.Is(err, ErrPairingInFlight) {
		t.Errorf("overlapping PairStart() error = %v, want ErrPairingInFlight", err)
	}

	close(env.device.pairGate)
	if err := <-firstErr; err != nil {
		t.Fatalf("first PairStart() error = %v", err)
	}

	// The winning exchange is the open one; cancelling it clears the guard.
	if err := env.controller.PairCancel(context.Background()); err != nil {
		t.Errorf("PairCancel() error = %v", err)
	}
}

func TestPairCancel(t *testing.T) {
	env := newTestEnv(t)
	savedRecord(t, env, "TV", "192.168.1.80", 7345, "")

	if _, err := env.controller.Connect(context.Background(), "192.168.1.80", 7345); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if _, err := env.controller.PairStart(context.Background()); err != nil {
		t.Fatalf("PairStart() error = %v", err)
	}
	if err := env.controller.PairCancel(context.Background()); err != nil {
		t.Fatalf("PairCancel() error = %v", err)
	}
	// The exchange is closed; starting again is allowed.
	if _, err := env.controller.PairStart(context.Background()); err != nil {
		t.Errorf("PairStart() after cancel error = %v", err)
	}
}

func TestActivateFavorite(t *testing.T) {
	env := newTestEnv(t)
	savedRecord(t, env, "TV", "192.168.1.80", 7345, "Ztoken1")
	for _, app := range []string{"Netflix", "Plex"} {
		if err := env.registry.AddFavorite("192.168.1.80", 7345, app); err != nil {
			t.Fatalf("AddFavorite() error = %v", err)
		}
	}

	if err := env.controller.ActivateFavorite(context.Background(), "192.168.1.80", 7345, 1); err != nil {
		t.Fatalf("ActivateFavorite() error = %v", err)
	}
	// The launch went over a one-off connection using the saved token.
	if got := env.dialer.lastTarget(t); got.AuthToken != "Ztoken1" {
		t.Errorf("dial token = %q, want saved token", got.AuthToken)
	}

	err := env.controller.ActivateFavorite(context.Background(), "192.168.1.80", 7345, 5)
	if !errors.Is(err, ErrFavoriteOutOfRange) {
		t.Errorf("ActivateFavorite(5) error = %v, want ErrFavoriteOutOfRange", err)
	}
}

func TestStatus_Crave360IncludesBattery(t *testing.T) {
	env := newTestEnv(t)
	env.dialer.device.powerOn = true
	env.dialer.device.volume = 30
	env.dialer.device.battery = 80

	_, err := env.controller.ConnectManual(context.Background(), "192.168.1.95", 7345, "crave360")
	if err != nil {
		t.Fatalf("ConnectManual() error = %v", err)
	}

	status, err := env.controller.Status(context.Background(), ProbeAll)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if status.PowerOn == nil || !*status.PowerOn {
		t.Error("PowerOn not collected")
	}
	if status.Volume == nil || *status.Volume != 30 {
		t.Error("Volume not collected")
	}
	if status.BatteryLevel == nil || *status.BatteryLevel != 80 {
		t.Error("BatteryLevel not collected for crave360")
	}
}

func TestStatus_TVSkipsBattery(t *testing.T) {
	env := newTestEnv(t)
	savedRecord(t, env, "TV", "192.168.1.80", 7345, "Ztoken1")
	if _, err := env.controller.Connect(context.Background(), "192.168.1.80", 7345); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	status, err := env.controller.Status(context.Background(), "")
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if status.BatteryLevel != nil || status.Charging != nil {
		t.Error("battery fields collected for a TV")
	}
}

func TestStatus_SingleProbe(t *testing.T) {
	env := newTestEnv(t)
	env.dialer.device.powerOn = true
	env.dialer.device.volume = 30

	if _, err := env.controller.ConnectManual(context.Background(), "192.168.1.80", 7345, "tv"); err != nil {
		t.Fatalf("ConnectManual() error = %v", err)
	}

	status, err := env.controller.Status(context.Background(), ProbeVolume)
	if err != nil {
		t.Fatalf("Status(volume) error = %v", err)
	}
	if status.Volume == nil || *status.Volume != 30 {
		t.Error("Volume not collected")
	}
	if status.PowerOn != nil {
		t.Error("PowerOn collected for a volume-only probe")
	}

	if _, err := env.controller.Status(context.Background(), "bogus"); !errors.Is(err, ErrUnknownStatusProbe) {
		t.Errorf("Status(bogus) error = %v, want ErrUnknownStatusProbe", err)
	}
}

func TestRemoveDevice_DropsActiveConnection(t *testing.T) {
	env := newTestEnv(t)
	savedRecord(t, env, "TV", "192.168.1.80", 7345, "Ztoken1")
	if _, err := env.controller.Connect(context.Background(), "192.168.1.80", 7345); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	if err := env.controller.RemoveDevice(context.Background(), "192.168.1.80", 7345); err != nil {
		t.Fatalf("RemoveDevice() error = %v", err)
	}
	if _, ok := env.controller.Current(); ok {
		t.Error("connection survived removal of its device")
	}
	if !env.notifier.has(EventDeviceRemoved) {
		t.Error("device_removed event not broadcast")
	}
}
