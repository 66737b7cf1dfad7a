// castdeck - local control service for SmartCast TVs and soundbars
//
// This is the main entry point for the castdeck service. It hosts the
// saved-device registry, network discovery, pairing and command dispatch
// behind a local HTTP/WebSocket API for the desktop UI and CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/nwrenn/castdeck/internal/api"
	"github.com/nwrenn/castdeck/internal/app"
	"github.com/nwrenn/castdeck/internal/discovery"
	"github.com/nwrenn/castdeck/internal/history"
	"github.com/nwrenn/castdeck/internal/infrastructure/config"
	"github.com/nwrenn/castdeck/internal/infrastructure/database"
	"github.com/nwrenn/castdeck/internal/infrastructure/logging"
	"github.com/nwrenn/castdeck/internal/registry"
	"github.com/nwrenn/castdeck/internal/smartcast"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting castdeck",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Resolve the controller device identity used during pairing
	deviceID, err := ensureDeviceID(cfg)
	if err != nil {
		return fmt.Errorf("resolving device identity: %w", err)
	}
	log.Info("device identity ready", "device_id", deviceID, "device_name", cfg.Client.DeviceName)

	// Initialise the saved-device registry
	store := registry.NewFileStore(cfg.Registry.StorePath)
	reg, err := registry.NewRegistry(store, log)
	if err != nil {
		return fmt.Errorf("loading device registry: %w", err)
	}
	log.Info("device registry initialised",
		"path", cfg.Registry.StorePath,
		"devices", len(reg.List()),
	)

	// Open the activity-log database (optional)
	var historyRepo history.Repository
	if cfg.History.Enabled {
		db, openErr := database.Open(database.Config{
			Path:        cfg.History.Path,
			WALMode:     cfg.History.WALMode,
			BusyTimeout: cfg.History.BusyTimeout,
		})
		if openErr != nil {
			return fmt.Errorf("opening history database: %w", openErr)
		}
		defer func() {
			log.Info("closing history database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing history database", "error", closeErr)
			}
		}()

		historyRepo, err = history.NewSQLiteRepository(ctx, db)
		if err != nil {
			return fmt.Errorf("initialising activity log: %w", err)
		}
		log.Info("activity log enabled", "path", cfg.History.Path)

		// Age out old entries. A failed prune never blocks startup.
		if days := cfg.History.RetentionDays; days > 0 {
			cutoff := time.Now().AddDate(0, 0, -days)
			if removed, pruneErr := historyRepo.Prune(ctx, cutoff); pruneErr != nil {
				log.Warn("pruning activity log failed", "error", pruneErr)
			} else if removed > 0 {
				log.Info("activity log pruned", "removed", removed, "retention_days", days)
			}
		}
	} else {
		log.Info("activity log disabled")
	}

	// Discovery: mDNS first, SSDP as strict fallback
	reconciler := discovery.NewReconciler(
		[]discovery.Strategy{
			discovery.NewMDNSStrategy(),
			discovery.NewSSDPStrategy(),
		},
		cfg.GetStrategyTimeout(),
		log,
	)

	// SmartCast dialer shared by all device connections
	dialer := smartcast.NewDialer(smartcast.DialerConfig{
		DeviceID:   deviceID,
		DeviceName: cfg.Client.DeviceName,
		Timeout:    cfg.GetClientTimeout(),
	})

	// One WebSocket hub is shared between the app controller (as its
	// event notifier) and the API server.
	hub := api.NewHub(cfg.WebSocket, log)
	go hub.Run(ctx)

	controller := app.NewController(app.Deps{
		Registry:   reg,
		Reconciler: reconciler,
		Dialer:     dialer,
		History:    historyRepo,
		Logger:     log,
		Notifier:   hub,
	})

	// Start the API server
	server, err := api.New(api.Deps{
		Config:  cfg.API,
		WS:      cfg.WebSocket,
		Logger:  log,
		App:     controller,
		Hub:     hub,
		Version: version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	if err := server.HealthCheck(ctx); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	// Kick off an initial scan so the UI has devices to show
	if cfg.Discovery.ScanOnStartup {
		if scanErr := controller.Scan(ctx); scanErr != nil {
			log.Warn("startup scan failed to start", "error", scanErr)
		} else {
			log.Info("startup discovery scan started")
		}
	}

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	log.Info("castdeck stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses CASTDECK_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("CASTDECK_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// ensureDeviceID returns the configured device ID, or generates one and
// persists it next to the registry store so pairings survive restarts.
func ensureDeviceID(cfg *config.Config) (string, error) {
	if cfg.Client.DeviceID != "" {
		return cfg.Client.DeviceID, nil
	}

	idPath := filepath.Join(filepath.Dir(cfg.Registry.StorePath), "device_id")
	if data, err := os.ReadFile(idPath); err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, nil
		}
	}

	id := uuid.NewString()
	if err := os.MkdirAll(filepath.Dir(idPath), 0o750); err != nil {
		return "", fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.WriteFile(idPath, []byte(id+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("persisting device id: %w", err)
	}
	return id, nil
}
