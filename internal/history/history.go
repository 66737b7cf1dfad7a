package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nwrenn/castdeck/internal/infrastructure/database"
)

// Entry kinds.
const (
	KindCommand = "command"
	KindScan    = "scan"
	KindPairing = "pairing"
	KindConnect = "connect"
	KindStatus  = "status"
	KindSave    = "save"
)

// Entry outcomes.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// ErrInvalidEntry is returned when an entry is missing required fields.
var ErrInvalidEntry = errors.New("history: invalid entry")

// Entry is one recorded activity.
type Entry struct {
	// ID is assigned by the store.
	ID int64 `json:"id"`

	// OccurredAt is when the activity happened.
	OccurredAt time.Time `json:"occurred_at"`

	// Kind is one of the Kind constants.
	Kind string `json:"kind"`

	// Device is the host:port of the device involved, or "" for
	// device-independent activity such as scans.
	Device string `json:"device,omitempty"`

	// Detail describes the activity (command name, scan summary).
	Detail string `json:"detail"`

	// Outcome is OutcomeOK or OutcomeError.
	Outcome string `json:"outcome"`

	// Error holds the failure message when Outcome is OutcomeError.
	Error string `json:"error,omitempty"`
}

// Repository stores and queries activity entries.
type Repository interface {
	// Record appends one entry, filling in its ID.
	Record(ctx context.Context, entry *Entry) error

	// List returns the most recent entries, newest first. A zero limit
	// applies the default page size.
	List(ctx context.Context, limit, offset int) ([]*Entry, error)

	// ListByDevice returns the most recent entries for one device.
	ListByDevice(ctx context.Context, device string, limit int) ([]*Entry, error)

	// Prune deletes entries older than the cutoff and reports how many
	// were removed.
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// Default and maximum page sizes for List.
const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// SQLiteRepository implements Repository on the castdeck database.
type SQLiteRepository struct {
	db *database.DB
}

// NewSQLiteRepository creates the repository and ensures its schema exists.
func NewSQLiteRepository(ctx context.Context, db *database.DB) (*SQLiteRepository, error) {
	r := &SQLiteRepository{db: db}
	if err := r.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// ensureSchema creates the activity table and index if missing.
func (r *SQLiteRepository) ensureSchema(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS activity_log (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			occurred_at TIMESTAMP NOT NULL,
			kind        TEXT NOT NULL,
			device      TEXT NOT NULL DEFAULT '',
			detail      TEXT NOT NULL DEFAULT '',
			outcome     TEXT NOT NULL,
			error       TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_activity_occurred ON activity_log(occurred_at);
		CREATE INDEX IF NOT EXISTS idx_activity_device ON activity_log(device);
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating activity schema: %w", err)
	}
	return nil
}

// Record appends one entry, filling in its ID and defaulting OccurredAt to
// now.
func (r *SQLiteRepository) Record(ctx context.Context, entry *Entry) error {
	if entry == nil || entry.Kind == "" || entry.Outcome == "" {
		return fmt.Errorf("%w: kind and outcome are required", ErrInvalidEntry)
	}
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = time.Now()
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO activity_log (occurred_at, kind, device, detail, outcome, error)
		VALUES (?, ?, ?, ?, ?, ?)`,
		entry.OccurredAt, entry.Kind, entry.Device, entry.Detail, entry.Outcome, entry.Error,
	)
	if err != nil {
		return fmt.Errorf("recording activity: %w", err)
	}
	entry.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading activity id: %w", err)
	}
	return nil
}

// List returns the most recent entries, newest first.
func (r *SQLiteRepository) List(ctx context.Context, limit, offset int) ([]*Entry, error) {
	limit = clampLimit(limit)
	if offset < 0 {
		offset = 0
	}
	return r.query(ctx, `
		SELECT id, occurred_at, kind, device, detail, outcome, error
		FROM activity_log
		ORDER BY id DESC
		LIMIT ? OFFSET ?`, limit, offset)
}

// ListByDevice returns the most recent entries for one device.
func (r *SQLiteRepository) ListByDevice(ctx context.Context, device string, limit int) ([]*Entry, error) {
	limit = clampLimit(limit)
	return r.query(ctx, `
		SELECT id, occurred_at, kind, device, detail, outcome, error
		FROM activity_log
		WHERE device = ?
		ORDER BY id DESC
		LIMIT ?`, device, limit)
}

// Prune deletes entries older than the cutoff.
func (r *SQLiteRepository) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM activity_log WHERE occurred_at < ?`, before)
	if err != nil {
		return 0, fmt.Errorf("pruning activity log: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting pruned entries: %w", err)
	}
	return removed, nil
}

func (r *SQLiteRepository) query(ctx context.Context, q string, args ...any) ([]*Entry, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying activity log: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-side close

	entries := []*Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.OccurredAt, &e.Kind, &e.Device, &e.Detail, &e.Outcome, &e.Error); err != nil {
			return nil, fmt.Errorf("scanning activity entry: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating activity log: %w", err)
	}
	return entries, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultPageSize
	case limit > maxPageSize:
		return maxPageSize
	default:
		return limit
	}
}
