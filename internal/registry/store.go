package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// File permission constants.
const (
	dirPermissions  = 0750
	filePermissions = 0600
)

// Store persists the full device record list. Implementations must make
// Save atomic: a crash mid-write leaves either the old list or the new one,
// never a truncated file.
type Store interface {
	// Load reads all records. A missing, unreadable or malformed store
	// yields an empty list, not an error.
	Load() ([]*DeviceRecord, error)

	// Save writes the full record list, replacing previous contents.
	Save(records []*DeviceRecord) error

	// Path returns the store's location for logging.
	Path() string
}

// FileStore persists records as an indented JSON array, matching the
// devices.json format castdeck has always used.
type FileStore struct {
	path string
}

// NewFileStore creates a store at the given path. The file and its
// directory are created on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the record list from disk. A missing or unreadable file, or
// one that does not parse as a record array, is treated as an empty
// registry.
func (s *FileStore) Load() ([]*DeviceRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		// An absent or unreadable store is recoverable by the next
		// save; failing startup over it is not.
		return []*DeviceRecord{}, nil
	}

	var records []*DeviceRecord
	if err := json.Unmarshal(data, &records); err != nil {
		// A corrupt store is recoverable by re-saving devices; failing
		// startup over it is not.
		return []*DeviceRecord{}, nil
	}

	out := records[:0]
	for _, rec := range records {
		if rec == nil {
			continue
		}
		if rec.Favorites == nil {
			rec.Favorites = []string{}
		}
		out = append(out, rec)
	}
	return out, nil
}

// Save writes the record list atomically via a temp file and rename.
func (s *FileStore) Save(records []*DeviceRecord) error {
	if records == nil {
		records = []*DeviceRecord{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding device store: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".devices-*.json")
	if err != nil {
		return fmt.Errorf("creating temp store file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()          //nolint:errcheck // Best effort cleanup on error path
		os.Remove(tmpPath)   //nolint:errcheck // Best effort cleanup on error path
		return fmt.Errorf("writing device store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath) //nolint:errcheck // Best effort cleanup on error path
		return fmt.Errorf("closing temp store file: %w", err)
	}
	if err := os.Chmod(tmpPath, filePermissions); err != nil {
		os.Remove(tmpPath) //nolint:errcheck // Best effort cleanup on error path
		return fmt.Errorf("setting store permissions: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath) //nolint:errcheck // Best effort cleanup on error path
		return fmt.Errorf("replacing device store: %w", err)
	}
	return nil
}

// Path returns the store's location.
func (s *FileStore) Path() string {
	return s.path
}
