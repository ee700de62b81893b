package codes

// Supplementary extractors for the non-case identifiers that ride along
// in the same subject lines and folder titles: purchase orders, site
// tokens and project phases.

// ExtractPONumbers finds purchase-order references like "LPO-12345" or
// "PO NO : 5001005009" and normalizes them to PO-<digits>, deduplicated
// in first-seen order.
func (e *Engine) ExtractPONumbers(text string) []string {
	if text == "" {
		return nil
	}
	matches := e.reg.poRE.FindAllStringSubmatch(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, "PO-"+m[1])
	}
	return DedupeCodes(out)
}

// ExtractSites returns the known site tokens mentioned in text, in
// first-appearance order.
func (e *Engine) ExtractSites(text string) []string {
	if text == "" {
		return nil
	}
	upper := toUpperASCII(text)
	type hit struct {
		tok string
		pos int
	}
	hits := make([]hit, 0, 2)
	for _, tok := range siteTokens {
		loc := e.reg.siteREs[tok].FindStringIndex(upper)
		if loc != nil {
			hits = append(hits, hit{tok: tok, pos: loc[0]})
		}
	}
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].pos < hits[j-1].pos; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.tok)
	}
	return out
}

// ExtractPhases finds phase markers like "PHASE-1", "PH1" or "STAGE 2"
// and normalizes them to PHASE-<n>.
func (e *Engine) ExtractPhases(text string) []string {
	if text == "" {
		return nil
	}
	matches := e.reg.phaseRE.FindAllStringSubmatch(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, "PHASE-"+m[1])
	}
	return DedupeCodes(out)
}

func toUpperASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}
