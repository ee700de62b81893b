package pipeline

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"hvdcmap/internal"
	"hvdcmap/internal/codes"
	"hvdcmap/internal/config"
	"hvdcmap/internal/storage"
	"hvdcmap/internal/util"
)

type ProcessingService struct {
	db       *storage.DB
	cfg      config.Config
	engine   *codes.Engine
	resolver *codes.Resolver
}

func NewProcessingService(db *storage.DB, cfg config.Config, engine *codes.Engine, resolver *codes.Resolver) *ProcessingService {
	return &ProcessingService{db: db, cfg: cfg, engine: engine, resolver: resolver}
}

type ProcessResult struct {
	EmailID   int
	Processed int
}

func (s *ProcessingService) ProcessByProviderMessageID(provider, messageID string) (ProcessResult, error) {
	email, err := s.db.MustEmailByProviderMessageID(provider, messageID)
	if err != nil {
		return ProcessResult{}, err
	}
	return s.ProcessEmail(email)
}

func (s *ProcessingService) ProcessPending(limit int, provider string) (int, int, error) {
	pending, err := s.db.ListEmailsByStatus("fetched", limit)
	if err != nil {
		return 0, 0, err
	}
	processedEmails := 0
	processedHits := 0
	for _, email := range pending {
		if provider != "" && email.Provider != provider {
			continue
		}
		res, err := s.ProcessEmail(email)
		if err != nil {
			return processedEmails, processedHits, err
		}
		processedEmails++
		processedHits += res.Processed
	}
	return processedEmails, processedHits, nil
}

func (s *ProcessingService) ProcessEmail(email internal.EmailRow) (ProcessResult, error) {
	start := time.Now()
	raw, err := os.ReadFile(email.RawRef)
	if err != nil {
		return ProcessResult{}, err
	}

	hits, subject, text, attachmentNames, err := ExtractHitsFromEmailRaw(s.engine, raw)
	if err != nil {
		return ProcessResult{}, err
	}

	detect := DetectProjectMail(util.FirstNonEmpty(subject, email.Subject), text, "", attachmentNames, len(hits))
	if err := s.db.ClearEmailProcessing(email.ID); err != nil {
		return ProcessResult{}, err
	}

	if !detect.IsProjectMail {
		_ = s.db.UpdateEmailStatus(email.ID, "skipped")
		_ = s.db.InsertRun(traceID(), email.ID, map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())}, map[string]int{"extracted": 0, "ok": 0, "review": 0, "notFound": 0})
		return ProcessResult{EmailID: email.ID, Processed: 0}, nil
	}

	records, err := s.db.ListCargoRecords()
	if err != nil {
		return ProcessResult{}, err
	}
	matcher := NewMatcher(s.cfg, records)

	okCount, reviewCount, notFoundCount := 0, 0, 0
	for _, hit := range hits {
		vendor, site := vendorSiteForHit(s.resolver, hit)
		hitID, err := s.db.InsertCodeHit(email.ID, hit, vendor, site)
		if err != nil {
			return ProcessResult{}, err
		}

		match := matcher.Match(hit.Code)
		if err := s.db.InsertCrossRef(hitID, match); err != nil {
			return ProcessResult{}, err
		}

		switch match.Status {
		case internal.CrossRefOK:
			okCount++
		case internal.CrossRefReview:
			reviewCount++
		case internal.CrossRefNotFound:
			notFoundCount++
		}
	}

	if err := s.db.UpdateEmailStatus(email.ID, "processed"); err != nil {
		return ProcessResult{}, err
	}
	_ = s.db.InsertRun(traceID(), email.ID, map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())}, map[string]int{"extracted": len(hits), "ok": okCount, "review": reviewCount, "notFound": notFoundCount})

	return ProcessResult{EmailID: email.ID, Processed: len(hits)}, nil
}

func traceID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
