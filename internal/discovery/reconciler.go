package discovery

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/nwrenn/castdeck/internal/infrastructure/logging"
)

// Strategy is one way of finding devices on the network.
type Strategy interface {
	// Name identifies the strategy in traces and results.
	Name() string

	// Discover returns every device that answered before ctx expired.
	Discover(ctx context.Context) ([]DiscoveredDevice, error)
}

// Reconciler runs the configured strategies in strict fallback order and
// enforces the one-scan-at-a-time rule.
type Reconciler struct {
	strategies []Strategy
	timeout    time.Duration
	logger     *logging.Logger

	mu       sync.Mutex
	inFlight bool
}

// NewReconciler creates a reconciler over the given strategies, tried in
// order. Each strategy runs for at most timeout.
func NewReconciler(strategies []Strategy, timeout time.Duration, logger *logging.Logger) *Reconciler {
	return &Reconciler{
		strategies: strategies,
		timeout:    timeout,
		logger:     logger.With("component", "discovery"),
	}
}

// InFlight reports whether a scan is currently running.
func (r *Reconciler) InFlight() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inFlight
}

// Scan runs a full discovery pass synchronously. A second scan requested
// while one is running fails with ErrScanInFlight; a reconciler with no
// strategies fails with ErrNoStrategies.
func (r *Reconciler) Scan(ctx context.Context) (*Result, error) {
	if len(r.strategies) == 0 {
		return nil, ErrNoStrategies
	}
	if err := r.acquire(); err != nil {
		return nil, err
	}
	defer r.release()
	return r.run(ctx), nil
}

// ScanAsync starts a scan in the background and returns a channel that
// delivers exactly one Result. The channel is buffered, so the scan
// goroutine never blocks on a slow consumer.
func (r *Reconciler) ScanAsync(ctx context.Context) (<-chan *Result, error) {
	if len(r.strategies) == 0 {
		return nil, ErrNoStrategies
	}
	if err := r.acquire(); err != nil {
		return nil, err
	}

	results := make(chan *Result, 1)
	go func() {
		defer r.release()
		results <- r.run(ctx)
		close(results)
	}()
	return results, nil
}

func (r *Reconciler) acquire() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inFlight {
		return ErrScanInFlight
	}
	r.inFlight = true
	return nil
}

func (r *Reconciler) release() {
	r.mu.Lock()
	r.inFlight = false
	r.mu.Unlock()
}

// run executes the strategies in order, stopping at the first one that
// finds devices. The trace records every step, found or not.
func (r *Reconciler) run(ctx context.Context) *Result {
	result := &Result{
		Devices:   []DiscoveredDevice{},
		Trace:     []string{},
		StartedAt: time.Now(),
	}
	defer func() {
		result.Duration = time.Since(result.StartedAt)
	}()

	for _, strategy := range r.strategies {
		if ctx.Err() != nil {
			result.Trace = append(result.Trace, "scan cancelled")
			return result
		}

		result.Trace = append(result.Trace,
			fmt.Sprintf("scanning via %s (%s timeout)", strategy.Name(), r.timeout))

		strategyCtx, cancel := context.WithTimeout(ctx, r.timeout)
		devices, err := strategy.Discover(strategyCtx)
		cancel()

		if err != nil {
			r.logger.Warn("discovery strategy failed",
				"strategy", strategy.Name(),
				"error", err,
			)
			result.Trace = append(result.Trace,
				fmt.Sprintf("%s failed: %v", strategy.Name(), err))
			continue
		}

		devices = dedupe(devices)
		result.Trace = append(result.Trace,
			fmt.Sprintf("%s found %d device(s)", strategy.Name(), len(devices)))

		if len(devices) > 0 {
			result.Devices = devices
			result.Strategy = strategy.Name()
			break
		}
	}

	r.logger.Info("scan complete",
		"strategy", result.Strategy,
		"devices", len(result.Devices),
	)
	return result
}

// dedupe removes devices sharing a host and port, keeping first occurrence
// order.
func dedupe(devices []DiscoveredDevice) []DiscoveredDevice {
	seen := make(map[string]bool, len(devices))
	out := devices[:0]
	for _, dev := range devices {
		key := net.JoinHostPort(dev.Host, strconv.Itoa(dev.Port))
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, dev)
	}
	return out
}
