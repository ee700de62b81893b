package pipeline

import (
	"testing"

	"hvdcmap/internal"
	"hvdcmap/internal/config"
)

func TestMatcherExactCode(t *testing.T) {
	records := []internal.CargoRecord{
		{ID: 1, Case: "HVDC-ADOPT-HE-0476", Status: "IN_TRANSIT", RawJSON: "{}"},
		{ID: 2, Case: "HVDC-ADOPT-HE-0504", Status: "WAREHOUSE", RawJSON: "{}"},
	}
	cfg, _ := config.Load()
	m := NewMatcher(cfg, records)

	res := m.Match("hvdc-adopt-he-0476")
	if res.Status != internal.CrossRefOK || res.Reason != internal.ReasonCode {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Record == nil || res.Record.ID != 1 {
		t.Fatalf("expected record 1, got %+v", res.Record)
	}
	if res.Confidence != 0.99 {
		t.Fatalf("unexpected confidence: %v", res.Confidence)
	}
}

func TestMatcherAmbiguousCode(t *testing.T) {
	records := []internal.CargoRecord{
		{ID: 1, Case: "HVDC-ADOPT-HE-0476", Status: "IN_TRANSIT", RawJSON: "{}"},
		{ID: 2, Case: "HVDC-ADOPT-HE-0476", Status: "SITE_DELIVERED", RawJSON: "{}"},
	}
	cfg, _ := config.Load()
	m := NewMatcher(cfg, records)

	res := m.Match("HVDC-ADOPT-HE-0476")
	if res.Status != internal.CrossRefReview || res.Reason != internal.ReasonCode {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(res.Candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(res.Candidates))
	}
}

func TestMatcherFuzzy(t *testing.T) {
	records := []internal.CargoRecord{
		{ID: 1, Case: "HVDC-ADOPT-HE-0476", Status: "IN_TRANSIT", RawJSON: "{}"},
		{ID: 2, Case: "PRL-O-046-O4", Status: "CUSTOMS", RawJSON: "{}"},
	}
	cfg, _ := config.Load()
	m := NewMatcher(cfg, records)

	// One hyphen segment off from record 1.
	res := m.Match("HVDC-ADOPT-HE-0478")
	if res.Reason != internal.ReasonFuzzy {
		t.Fatalf("expected fuzzy reason, got %+v", res)
	}
	if res.Status == internal.CrossRefNotFound {
		t.Fatalf("expected a near match, got %+v", res)
	}
	if res.Record == nil || res.Record.ID != 1 {
		t.Fatalf("expected record 1 as best, got %+v", res.Record)
	}
}

func TestMatcherNotFound(t *testing.T) {
	cfg, _ := config.Load()
	m := NewMatcher(cfg, nil)

	res := m.Match("HVDC-ADOPT-HE-0476")
	if res.Status != internal.CrossRefNotFound || res.Reason != internal.ReasonNone {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(res.Candidates) != 0 {
		t.Fatalf("expected no candidates, got %+v", res.Candidates)
	}
}
