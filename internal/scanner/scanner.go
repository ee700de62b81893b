// Package scanner walks an on-disk email archive and parses case codes,
// site tokens, PO numbers, and phases out of folder titles.
package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"hvdcmap/internal"
	"hvdcmap/internal/codes"
	"hvdcmap/internal/config"
	"hvdcmap/internal/storage"
)

var allowedExtensions = map[string]struct{}{
	".eml":  {},
	".txt":  {},
	".html": {},
	".csv":  {},
	".xlsx": {},
	".pdf":  {},
}

// Mailbox container formats need a dedicated reader, so the walk counts
// them but never opens them.
var skippedExtensions = map[string]struct{}{
	".pst": {},
	".ost": {},
	".msg": {},
}

type Scanner struct {
	db       *storage.DB
	cfg      config.Config
	engine   *codes.Engine
	resolver *codes.Resolver
}

func NewScanner(db *storage.DB, cfg config.Config, engine *codes.Engine) *Scanner {
	return &Scanner{
		db:       db,
		cfg:      cfg,
		engine:   engine,
		resolver: codes.NewResolver(engine.Registry()),
	}
}

type ScanResult struct {
	Folders      int
	FilesSeen    int
	FilesSkipped int
}

// ScanRoot walks every directory under root, parses each folder title, and
// stores one record per folder that yields codes, sites, POs, or phases.
func (s *Scanner) ScanRoot(root string) (ScanResult, error) {
	if root == "" {
		root = s.cfg.EmailRootDir
	}
	if root == "" {
		return ScanResult{}, fmt.Errorf("no email root directory configured")
	}

	dirs := []string{}
	filesSeen := 0
	filesSkipped := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			dirs = append(dirs, path)
			return nil
		}
		ext := strings.ToLower(filepath.Ext(d.Name()))
		if _, skip := skippedExtensions[ext]; skip {
			filesSkipped++
			return nil
		}
		if _, ok := allowedExtensions[ext]; ok {
			filesSeen++
			if s.cfg.ScanMaxFiles > 0 && filesSeen >= s.cfg.ScanMaxFiles {
				return fs.SkipAll
			}
		}
		return nil
	})
	if err != nil {
		return ScanResult{}, err
	}

	var mu sync.Mutex
	records := []internal.FolderRecord{}

	g := new(errgroup.Group)
	workers := s.cfg.ScanWorkers
	if workers <= 0 {
		workers = 1
	}
	g.SetLimit(workers)

	for _, dir := range dirs {
		g.Go(func() error {
			rec, ok, err := s.scanFolder(dir)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			mu.Lock()
			records = append(records, rec)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ScanResult{}, err
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Path < records[j].Path })
	for _, rec := range records {
		if err := s.db.UpsertFolder(rec); err != nil {
			return ScanResult{}, err
		}
	}

	return ScanResult{Folders: len(records), FilesSeen: filesSeen, FilesSkipped: filesSkipped}, nil
}

func (s *Scanner) scanFolder(dir string) (internal.FolderRecord, bool, error) {
	name := filepath.Base(dir)
	rec := internal.FolderRecord{
		Path:    dir,
		Name:    name,
		Codes:   s.engine.ExtractCaseCodes(name),
		Sites:   s.engine.ExtractSites(name),
		POs:     s.engine.ExtractPONumbers(name),
		Phases:  s.engine.ExtractPhases(name),
		Vendors: s.vendorsInTitle(name),
	}
	if len(rec.Codes) == 0 && len(rec.Sites) == 0 && len(rec.POs) == 0 &&
		len(rec.Phases) == 0 && len(rec.Vendors) == 0 {
		return internal.FolderRecord{}, false, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return internal.FolderRecord{}, false, err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := allowedExtensions[ext]; ok {
			rec.FileCount++
		}
	}
	return rec, true, nil
}

// vendorsInTitle matches folder title words against the vendor alias
// table. Matching is fuzzy so typos like "Hitachi Enegy" still resolve;
// the threshold comes from FUZZY_THRESHOLD.
func (s *Scanner) vendorsInTitle(name string) []string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == ' ' || r == '_' || r == '-' || r == '(' || r == ')' || r == '[' || r == ']'
	})
	// Aliases like "samsung c&t" span two words, so adjacent pairs are
	// candidates too.
	candidates := append([]string{}, words...)
	for i := 0; i+1 < len(words); i++ {
		candidates = append(candidates, words[i]+" "+words[i+1])
	}
	seen := map[string]struct{}{}
	vendors := []string{}
	for _, tok := range s.engine.Registry().VendorTokens() {
		if !codes.FuzzyContains(tok, candidates, s.cfg.FuzzyThreshold) {
			continue
		}
		display := s.resolver.ResolveVendor(tok)
		if _, dup := seen[display]; dup {
			continue
		}
		seen[display] = struct{}{}
		vendors = append(vendors, display)
	}
	return vendors
}
