package pipeline

import (
	"fmt"
	"os"

	"hvdcmap/internal"
	"hvdcmap/internal/codes"
)

// ExtractHitsFromInput runs extraction over a single ad-hoc input without
// touching the database. Text inputs are taken verbatim; file inputs are
// read from disk.
func ExtractHitsFromInput(engine *codes.Engine, inputType, input string) ([]internal.CodeHit, error) {
	switch inputType {
	case "text":
		return dedupeHits(hitsFromText(engine, internal.SourceSubject, input, nil)), nil
	case "html":
		return dedupeHits(hitsFromHTML(engine, input)), nil
	case "eml":
		raw, err := os.ReadFile(input)
		if err != nil {
			return nil, err
		}
		hits, _, _, _, err := ExtractHitsFromEmailRaw(engine, raw)
		return hits, err
	case "xlsx":
		blob, err := os.ReadFile(input)
		if err != nil {
			return nil, err
		}
		hits, err := hitsFromXLSX(engine, blob, input)
		if err != nil {
			return nil, err
		}
		return dedupeHits(hits), nil
	case "pdf":
		blob, err := os.ReadFile(input)
		if err != nil {
			return nil, err
		}
		hits, err := hitsFromPDF(engine, blob, input)
		if err != nil {
			return nil, err
		}
		return dedupeHits(hits), nil
	default:
		return nil, fmt.Errorf("unsupported input type: %s", inputType)
	}
}
