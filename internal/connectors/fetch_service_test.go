package connectors

import (
	"os"
	"path/filepath"
	"testing"

	"hvdcmap/internal"
	"hvdcmap/internal/codes"
	"hvdcmap/internal/storage"
)

type fakeConnector struct {
	messages []internal.FetchedMailMessage
}

func (f *fakeConnector) FetchInbox(label string, max int) ([]internal.FetchedMailMessage, error) {
	if len(f.messages) > max {
		return f.messages[:max], nil
	}
	return f.messages, nil
}

func TestFetchAndStore(t *testing.T) {
	tmp := t.TempDir()
	db, err := storage.Open(filepath.Join(tmp, "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	conn := &fakeConnector{messages: []internal.FetchedMailMessage{
		{
			Provider:   "imap",
			MessageID:  "<a@example.com>",
			Subject:    "RE: HVDC-ADOPT-HE-0476 shipment update",
			From:       "ops@example.com",
			ReceivedAt: "2026-08-30T00:00:00Z",
			Raw:        []byte("From: ops@example.com\r\nSubject: RE: HVDC-ADOPT-HE-0476 shipment update\r\n\r\nbody\r\n"),
		},
		{
			Provider:   "imap",
			MessageID:  "<b@example.com>",
			Subject:    "Weekly minutes",
			From:       "pm@example.com",
			ReceivedAt: "2026-08-30T01:00:00Z",
			Raw:        []byte("From: pm@example.com\r\nSubject: Weekly minutes\r\n\r\nbody\r\n"),
		},
	}}

	rawDir := filepath.Join(tmp, "raw")
	svc := NewFetchService(db, rawDir, conn, codes.NewEngine(codes.MustRegistry()))
	result, err := svc.FetchAndStore("INBOX", 50)
	if err != nil {
		t.Fatal(err)
	}
	if result.Fetched != 2 || result.Stored != 2 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.WithCodes != 1 {
		t.Fatalf("expected 1 code-bearing subject, got %d", result.WithCodes)
	}

	// Raw blobs land under a per-provider directory.
	entries, err := os.ReadDir(filepath.Join(rawDir, "imap"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 stored blobs, got %d", len(entries))
	}

	email, err := db.MustEmailByProviderMessageID("imap", "<a@example.com>")
	if err != nil {
		t.Fatal(err)
	}
	if email.Status != "fetched" {
		t.Fatalf("unexpected status: %s", email.Status)
	}
	if _, err := os.Stat(email.RawRef); err != nil {
		t.Fatal(err)
	}
}

func TestStoreRejectsEmptyRaw(t *testing.T) {
	tmp := t.TempDir()
	db, err := storage.Open(filepath.Join(tmp, "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	store := NewMailStoreService(db, filepath.Join(tmp, "raw"))
	if _, err := store.Store(internal.FetchedMailMessage{Provider: "imap", MessageID: "<x@example.com>"}); err == nil {
		t.Fatal("expected error for empty raw body")
	}
}
