package history

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/nwrenn/castdeck/internal/infrastructure/database"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "castdeck.db"),
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo, err := NewSQLiteRepository(context.Background(), db)
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	return repo
}

func TestRecordAndList(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	entry := &Entry{
		Kind:    KindCommand,
		Device:  "192.168.1.80:7345",
		Detail:  "volume_set 25",
		Outcome: OutcomeOK,
	}
	if err := repo.Record(ctx, entry); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if entry.ID == 0 {
		t.Error("Record() did not assign an ID")
	}
	if entry.OccurredAt.IsZero() {
		t.Error("Record() did not default OccurredAt")
	}

	entries, err := repo.List(ctx, 10, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("List() returned %d entries, want 1", len(entries))
	}
	if entries[0].Detail != "volume_set 25" || entries[0].Outcome != OutcomeOK {
		t.Errorf("entry = %+v, want recorded fields", entries[0])
	}
}

func TestRecord_RequiresKindAndOutcome(t *testing.T) {
	repo := newTestRepository(t)

	tests := []*Entry{
		nil,
		{Outcome: OutcomeOK},
		{Kind: KindScan},
	}
	for i, entry := range tests {
		if err := repo.Record(context.Background(), entry); !errors.Is(err, ErrInvalidEntry) {
			t.Errorf("Record(case %d) error = %v, want ErrInvalidEntry", i, err)
		}
	}
}

func TestList_NewestFirstWithPaging(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		err := repo.Record(ctx, &Entry{
			Kind:    KindCommand,
			Detail:  fmt.Sprintf("command %d", i),
			Outcome: OutcomeOK,
		})
		if err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	page, err := repo.List(ctx, 2, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("List() returned %d entries, want 2", len(page))
	}
	if page[0].Detail != "command 4" || page[1].Detail != "command 3" {
		t.Errorf("page = [%s, %s], want newest first", page[0].Detail, page[1].Detail)
	}

	next, err := repo.List(ctx, 2, 2)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(next) != 2 || next[0].Detail != "command 2" {
		t.Errorf("second page starts at %q, want command 2", next[0].Detail)
	}
}

func TestListByDevice(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	for _, device := range []string{"192.168.1.80:7345", "192.168.1.81:7345", "192.168.1.80:7345"} {
		err := repo.Record(ctx, &Entry{
			Kind:    KindCommand,
			Device:  device,
			Detail:  "power_toggle",
			Outcome: OutcomeOK,
		})
		if err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	entries, err := repo.ListByDevice(ctx, "192.168.1.80:7345", 10)
	if err != nil {
		t.Fatalf("ListByDevice() error = %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("ListByDevice() returned %d entries, want 2", len(entries))
	}
}

func TestPrune(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	old := &Entry{
		Kind:       KindScan,
		Detail:     "old scan",
		Outcome:    OutcomeOK,
		OccurredAt: time.Now().Add(-48 * time.Hour),
	}
	recent := &Entry{
		Kind:    KindScan,
		Detail:  "recent scan",
		Outcome: OutcomeOK,
	}
	for _, e := range []*Entry{old, recent} {
		if err := repo.Record(ctx, e); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	removed, err := repo.Prune(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("Prune() removed %d entries, want 1", removed)
	}

	entries, _ := repo.List(ctx, 10, 0)
	if len(entries) != 1 || entries[0].Detail != "recent scan" {
		t.Errorf("remaining entries = %v, want only the recent scan", entries)
	}
}
