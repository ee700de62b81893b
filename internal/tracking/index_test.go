package tracking

import (
	"testing"

	"hvdcmap/internal"
)

func sp(v string) *string { return &v }

func TestIndexLookup(t *testing.T) {
	idx := BuildIndex([]internal.CargoRecord{
		{ID: 1, Case: "HVDC-ADOPT-HE-0476", Status: StatusInTransit, Vendor: sp("HE")},
		{ID: 2, Case: "HVDC-ADOPT-SCT-0136", Status: StatusCustoms, Vendor: sp("SCT")},
	})

	hits := idx.Lookup("hvdc-adopt-he-0476")
	if len(hits) != 1 || hits[0].ID != 1 {
		t.Fatalf("hits=%v", hits)
	}
	if got := idx.Lookup("HVDC-ADOPT-ALS-9999"); len(got) != 0 {
		t.Fatalf("unexpected hits %v", got)
	}
}

func TestIndexRankCandidates(t *testing.T) {
	idx := BuildIndex([]internal.CargoRecord{
		{ID: 1, Case: "HVDC-ADOPT-HE-0476", Status: StatusInTransit},
		{ID: 2, Case: "HVDC-ADOPT-HE-0477", Status: StatusWarehouse},
		{ID: 3, Case: "JPTW-71/GRM-123", Status: StatusSiteDelivered},
	})

	ranked := idx.RankCandidates("HVDC-ADOPT-HE-0476")
	if len(ranked) != 3 {
		t.Fatalf("len=%d", len(ranked))
	}
	if ranked[0].ID != 1 || ranked[0].Score != 1.0 {
		t.Fatalf("top=%+v", ranked[0])
	}
	if ranked[1].ID != 2 {
		t.Fatalf("second=%+v", ranked[1])
	}
	if ranked[2].Score >= ranked[1].Score {
		t.Fatalf("order broken: %+v", ranked)
	}
}
