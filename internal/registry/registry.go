package registry

import (
	"fmt"
	"sync"
	"time"

	"github.com/nwrenn/castdeck/internal/infrastructure/logging"
)

// Registry holds the saved device list and keeps it in sync with the store.
type Registry struct {
	store  Store
	logger *logging.Logger

	mu      sync.RWMutex
	devices []*DeviceRecord
}

// NewRegistry creates a registry backed by the given store and loads the
// saved device list from it.
func NewRegistry(store Store, logger *logging.Logger) (*Registry, error) {
	r := &Registry{
		store:  store,
		logger: logger,
	}
	devices, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading device registry: %w", err)
	}
	r.devices = devices

	logger.Info("device registry initialised",
		"path", store.Path(),
		"devices", len(devices),
	)
	return r, nil
}

// List returns all saved records in store order. Records are clones.
func (r *Registry) List() []*DeviceRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*DeviceRecord, len(r.devices))
	for i, rec := range r.devices {
		out[i] = rec.Clone()
	}
	return out
}

// Get returns the record matching host and port, or ErrNotFound.
func (r *Registry) Get(host string, port int) (*DeviceRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if rec := r.findLocked(host, port); rec != nil {
		return rec.Clone(), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, deviceKey(host, port))
}

// Count returns the number of saved records.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.devices)
}

// Upsert saves a record, replacing any existing record with the same host
// and port in place, and persists the result. The stored record is returned.
func (r *Registry) Upsert(rec *DeviceRecord) (*DeviceRecord, error) {
	if rec == nil {
		return nil, fmt.Errorf("%w: nil record", ErrInvalidRecord)
	}
	rec = rec.Clone()
	if rec.Favorites == nil {
		rec.Favorites = []string{}
	}
	if rec.SavedAt.IsZero() {
		rec.SavedAt = time.Now()
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	replaced := false
	for i, existing := range r.devices {
		if existing.Key() == rec.Key() {
			r.devices[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		r.devices = append(r.devices, rec)
	}

	if err := r.persistLocked(); err != nil {
		return nil, err
	}

	r.logger.Info("device saved",
		"name", rec.Name,
		"address", rec.Address(),
		"replaced", replaced,
	)
	return rec.Clone(), nil
}

// Remove deletes the record matching host and port and persists the result.
func (r *Registry) Remove(host string, port int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := deviceKey(host, port)
	for i, rec := range r.devices {
		if rec.Key() == key {
			r.devices = append(r.devices[:i], r.devices[i+1:]...)
			if err := r.persistLocked(); err != nil {
				return err
			}
			r.logger.Info("device removed", "name", rec.Name, "address", rec.Address())
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, key)
}

// findLocked returns the live record for host and port. Caller holds r.mu.
func (r *Registry) findLocked(host string, port int) *DeviceRecord {
	key := deviceKey(host, port)
	for _, rec := range r.devices {
		if rec.Key() == key {
			return rec
		}
	}
	return nil
}

// persistLocked saves the current list and reloads it from the store, so the
// in-memory view always matches what the next startup would see. Caller
// holds r.mu.
func (r *Registry) persistLocked() error {
	if err := r.store.Save(r.devices); err != nil {
		return fmt.Errorf("saving device registry: %w", err)
	}
	devices, err := r.store.Load()
	if err != nil {
		return fmt.Errorf("reloading device registry: %w", err)
	}
	r.devices = devices
	return nil
}
