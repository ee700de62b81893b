package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"hvdcmap/internal/codes"
	"hvdcmap/internal/config"
	"hvdcmap/internal/storage"
)

func TestScanRoot(t *testing.T) {
	tmp := t.TempDir()
	db, err := storage.Open(filepath.Join(tmp, "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	root := filepath.Join(tmp, "archive")
	caseDir := filepath.Join(root, "HVDC-ADOPT-HE-0476 DAS PO-5001005009 PHASE-2")
	plainDir := filepath.Join(root, "Admin misc")
	for _, dir := range []string{caseDir, plainDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	for _, name := range []string{"update1.eml", "update2.eml", "notes.txt", "outlook.pst", "photo.jpg"} {
		if err := os.WriteFile(filepath.Join(caseDir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	cfg, _ := config.Load()
	cfg.ScanWorkers = 2
	s := NewScanner(db, cfg, codes.NewEngine(codes.MustRegistry()))

	res, err := s.ScanRoot(root)
	if err != nil {
		t.Fatal(err)
	}
	if res.Folders != 1 {
		t.Fatalf("expected 1 folder record, got %d", res.Folders)
	}
	if res.FilesSkipped != 1 {
		t.Fatalf("expected 1 skipped container file, got %d", res.FilesSkipped)
	}

	folders, err := db.ListFolders()
	if err != nil {
		t.Fatal(err)
	}
	if len(folders) != 1 {
		t.Fatalf("expected 1 stored folder, got %d", len(folders))
	}

	rec := folders[0]
	if len(rec.Codes) != 1 || rec.Codes[0] != "HVDC-ADOPT-HE-0476" {
		t.Fatalf("unexpected codes: %v", rec.Codes)
	}
	if len(rec.Sites) != 1 || rec.Sites[0] != "DAS" {
		t.Fatalf("unexpected sites: %v", rec.Sites)
	}
	if len(rec.POs) != 1 || rec.POs[0] != "PO-5001005009" {
		t.Fatalf("unexpected POs: %v", rec.POs)
	}
	if len(rec.Phases) != 1 || rec.Phases[0] != "PHASE-2" {
		t.Fatalf("unexpected phases: %v", rec.Phases)
	}
	// .eml and .txt count; .pst and .jpg do not.
	if rec.FileCount != 3 {
		t.Fatalf("unexpected file count: %d", rec.FileCount)
	}
	// The HE segment in the case code resolves to its vendor.
	if len(rec.Vendors) != 1 || rec.Vendors[0] != "Hitachi Energy" {
		t.Fatalf("unexpected vendors: %v", rec.Vendors)
	}
}

func TestVendorsInTitle(t *testing.T) {
	cfg, _ := config.Load()
	s := NewScanner(nil, cfg, codes.NewEngine(codes.MustRegistry()))

	tests := []struct {
		title string
		want  []string
	}{
		{"Samsung C&T site handover", []string{"Samsung C&T"}},
		{"MOSB gate passes 2026", []string{"MOSB"}},
		// misspelled vendor still resolves through the fuzzy match
		{"Hitachhi weekly reports", []string{"Hitachi Energy"}},
		{"Admin misc", nil},
	}
	for _, tc := range tests {
		got := s.vendorsInTitle(tc.title)
		if len(got) != len(tc.want) {
			t.Fatalf("%q vendors = %v, want %v", tc.title, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("%q vendors = %v, want %v", tc.title, got, tc.want)
			}
		}
	}
}

func TestScanRootNoRootConfigured(t *testing.T) {
	tmp := t.TempDir()
	db, err := storage.Open(filepath.Join(tmp, "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	cfg, _ := config.Load()
	cfg.EmailRootDir = ""
	s := NewScanner(db, cfg, codes.NewEngine(codes.MustRegistry()))
	if _, err := s.ScanRoot(""); err == nil {
		t.Fatal("expected error when no root configured")
	}
}
