package pipeline

import (
	"hvdcmap/internal"
	"hvdcmap/internal/config"
	"hvdcmap/internal/tracking"
	"hvdcmap/internal/util"
)

// Matcher cross-references extracted case codes against the cargo
// tracking index.
type Matcher struct {
	cfg   config.Config
	index *tracking.Index
}

func NewMatcher(cfg config.Config, records []internal.CargoRecord) *Matcher {
	return &Matcher{cfg: cfg, index: tracking.BuildIndex(records)}
}

func (m *Matcher) Match(code string) internal.CrossRefResult {
	var byCase []internal.CargoRecord
	if util.LooksLikeCode(code) {
		byCase = m.index.Lookup(code)
	}
	if len(byCase) == 1 {
		record := byCase[0]
		return internal.CrossRefResult{
			Status:     internal.CrossRefOK,
			Confidence: 0.99,
			Reason:     internal.ReasonCode,
			Record:     &record,
			Candidates: []internal.CrossRefCandidate{{ID: record.ID, Case: record.Case, Status: record.Status, Score: 0.99}},
		}
	}
	if len(byCase) > 1 {
		return internal.CrossRefResult{
			Status:     internal.CrossRefReview,
			Confidence: 0.80,
			Reason:     internal.ReasonCode,
			Record:     nil,
			Candidates: toCandidates(byCase, 0.80),
		}
	}

	candidates := m.index.RankCandidates(code)
	if len(candidates) == 0 {
		return internal.CrossRefResult{Status: internal.CrossRefNotFound, Confidence: 0, Reason: internal.ReasonNone, Record: nil, Candidates: []internal.CrossRefCandidate{}}
	}

	top1 := candidates[0]
	gap := top1.Score
	if len(candidates) > 1 {
		gap = top1.Score - candidates[1].Score
	}

	best := m.index.RecordsByID[top1.ID]
	if top1.Score >= m.cfg.CrossRefOKThreshold && gap >= m.cfg.CrossRefGapThreshold {
		return internal.CrossRefResult{Status: internal.CrossRefOK, Confidence: top1.Score, Reason: internal.ReasonFuzzy, Record: &best, Candidates: candidates}
	}
	if top1.Score >= m.cfg.CrossRefReviewThreshold {
		return internal.CrossRefResult{Status: internal.CrossRefReview, Confidence: top1.Score, Reason: internal.ReasonFuzzy, Record: &best, Candidates: candidates}
	}
	return internal.CrossRefResult{Status: internal.CrossRefNotFound, Confidence: top1.Score, Reason: internal.ReasonNone, Record: nil, Candidates: candidates}
}

func toCandidates(records []internal.CargoRecord, score float64) []internal.CrossRefCandidate {
	limit := len(records)
	if limit > 5 {
		limit = 5
	}
	out := make([]internal.CrossRefCandidate, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, internal.CrossRefCandidate{ID: records[i].ID, Case: records[i].Case, Status: records[i].Status, Score: score})
	}
	return out
}
