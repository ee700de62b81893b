package tracking

import (
	"sort"

	"hvdcmap/internal"
	"hvdcmap/internal/codes"
	"hvdcmap/internal/util"
)

// Index is the in-memory lookup over cargo records used for
// cross-referencing extracted case codes.
type Index struct {
	RecordsByID map[int]internal.CargoRecord
	ByCase      map[string][]internal.CargoRecord

	normalizedCases []indexedCase
}

type indexedCase struct {
	id   int
	norm string
}

func BuildIndex(records []internal.CargoRecord) *Index {
	idx := &Index{
		RecordsByID: map[int]internal.CargoRecord{},
		ByCase:      map[string][]internal.CargoRecord{},
	}

	for _, r := range records {
		idx.RecordsByID[r.ID] = r
		norm := util.NormalizeCode(r.Case)
		if norm == "" {
			continue
		}
		idx.ByCase[norm] = append(idx.ByCase[norm], r)
		idx.normalizedCases = append(idx.normalizedCases, indexedCase{id: r.ID, norm: norm})
	}

	return idx
}

// Lookup returns the records whose case code equals the query after
// normalization.
func (idx *Index) Lookup(code string) []internal.CargoRecord {
	return idx.ByCase[util.NormalizeCode(code)]
}

// RankCandidates scores every indexed case against the query code and
// returns the top five by similarity.
func (idx *Index) RankCandidates(code string) []internal.CrossRefCandidate {
	query := util.NormalizeCode(code)
	if query == "" {
		return nil
	}

	out := make([]internal.CrossRefCandidate, 0, len(idx.normalizedCases))
	for _, ic := range idx.normalizedCases {
		record := idx.RecordsByID[ic.id]
		out = append(out, internal.CrossRefCandidate{
			ID:     record.ID,
			Case:   record.Case,
			Status: record.Status,
			Score:  codes.Similarity(query, ic.norm),
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > 5 {
		out = out[:5]
	}
	return out
}
