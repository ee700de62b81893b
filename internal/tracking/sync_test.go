package tracking

import (
	"path/filepath"
	"testing"

	"hvdcmap/internal/config"
	"hvdcmap/internal/storage"
)

func TestLastSyncAt(t *testing.T) {
	tmp := t.TempDir()
	db, err := storage.Open(filepath.Join(tmp, "app.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	svc := NewSyncService(db, config.Config{})

	got, err := svc.LastSyncAt("")
	if err != nil {
		t.Fatalf("LastSyncAt: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil before any sync, got %q", *got)
	}

	if err := db.SetMetadata("tracking.last_initial_sync", "2026-08-30T06:00:00Z"); err != nil {
		t.Fatalf("SetMetadata: %v", err)
	}
	if err := db.SetMetadata("tracking.last_incremental_sync.day", "2026-08-31T06:00:00Z"); err != nil {
		t.Fatalf("SetMetadata: %v", err)
	}

	got, err = svc.LastSyncAt("")
	if err != nil || got == nil || *got != "2026-08-30T06:00:00Z" {
		t.Fatalf("initial sync time = %v, %v", got, err)
	}
	got, err = svc.LastSyncAt("day")
	if err != nil || got == nil || *got != "2026-08-31T06:00:00Z" {
		t.Fatalf("incremental sync time = %v, %v", got, err)
	}
	got, err = svc.LastSyncAt("hour")
	if err != nil {
		t.Fatalf("LastSyncAt: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for unsynced mode, got %q", *got)
	}
}
