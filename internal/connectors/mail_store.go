package connectors

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"

	"hvdcmap/internal"
	"hvdcmap/internal/storage"
)

// MailStoreService persists fetched raw messages on disk and registers
// them in the database as "fetched". Files are content-addressed by
// SHA-256 under a per-provider directory, so refetching the same
// message from the same provider never duplicates the blob.
type MailStoreService struct {
	db         *storage.DB
	rawMailDir string
}

func NewMailStoreService(db *storage.DB, rawMailDir string) *MailStoreService {
	return &MailStoreService{db: db, rawMailDir: rawMailDir}
}

func (s *MailStoreService) Store(msg internal.FetchedMailMessage) (internal.EmailRow, error) {
	if len(msg.Raw) == 0 {
		return internal.EmailRow{}, errors.New("refusing to store message with empty raw body")
	}

	hashBytes := sha256.Sum256(msg.Raw)
	hash := hex.EncodeToString(hashBytes[:])

	dir := filepath.Join(s.rawMailDir, msg.Provider)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return internal.EmailRow{}, err
	}

	rawPath := filepath.Join(dir, hash+".eml")
	if _, err := os.Stat(rawPath); os.IsNotExist(err) {
		if err := os.WriteFile(rawPath, msg.Raw, 0o644); err != nil {
			return internal.EmailRow{}, err
		}
	}

	return s.db.UpsertEmail(msg.Provider, msg.MessageID, msg.Subject, msg.From, msg.ReceivedAt, hash, rawPath, "fetched")
}
