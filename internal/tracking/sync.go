package tracking

import (
	"context"
	"time"

	"hvdcmap/internal/config"
	"hvdcmap/internal/storage"
)

const (
	metaKeyInitialSync     = "tracking.last_initial_sync"
	metaKeyIncrementalSync = "tracking.last_incremental_sync."
)

type SyncService struct {
	db     *storage.DB
	client *Client
	cfg    config.Config
}

func NewSyncService(db *storage.DB, cfg config.Config) *SyncService {
	return &SyncService{db: db, client: NewClient(cfg), cfg: cfg}
}

func (s *SyncService) InitialSync(ctx context.Context) (int, error) {
	records, err := s.client.GetCargoRecordsAll(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.db.UpsertCargoRecords(records); err != nil {
		return 0, err
	}
	_ = s.db.SetMetadata(metaKeyInitialSync, time.Now().UTC().Format(time.RFC3339))
	return len(records), nil
}

func (s *SyncService) IncrementalSync(ctx context.Context, mode string) (int, error) {
	records, err := s.client.GetCargoRecordsIncremental(ctx, mode)
	if err != nil {
		return 0, err
	}
	if len(records) > 0 {
		if err := s.db.UpsertCargoRecords(records); err != nil {
			return 0, err
		}
	}
	_ = s.db.SetMetadata(metaKeyIncrementalSync+mode, time.Now().UTC().Format(time.RFC3339))
	return len(records), nil
}

// LastSyncAt reports when the given sync last completed. An empty mode
// refers to the initial full sync; otherwise mode names an incremental
// sync window. Returns nil when no sync of that kind has run yet.
func (s *SyncService) LastSyncAt(mode string) (*string, error) {
	key := metaKeyInitialSync
	if mode != "" {
		key = metaKeyIncrementalSync + mode
	}
	return s.db.GetMetadata(key)
}
