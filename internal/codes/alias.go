package codes

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Resolver maps short vendor/site tokens to canonical display names.
// Lookups never fail: a miss falls back to a best-effort rendering of
// the token itself, since the vendor and site vocabularies are not
// exhaustively known in advance.
type Resolver struct {
	reg *Registry
}

func NewResolver(reg *Registry) *Resolver {
	return &Resolver{reg: reg}
}

// Normalize applies NFKC, trims and lowercases. All alias lookups and
// similarity scoring go through this.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(s)))
}

// ResolveVendor returns the display name for a vendor token, e.g.
// "he" -> "Hitachi Energy". Unknown tokens come back title-cased.
func (r *Resolver) ResolveVendor(token string) string {
	if name, ok := r.reg.vendorAliases[Normalize(token)]; ok {
		return name
	}
	return cases.Title(language.English).String(strings.ToLower(strings.TrimSpace(token)))
}

// ResolveSite returns the display name for a site token, e.g.
// "das" -> "DAS Site". Unknown tokens come back upper-cased.
func (r *Resolver) ResolveSite(token string) string {
	if name, ok := r.reg.siteAliases[Normalize(token)]; ok {
		return name
	}
	return strings.ToUpper(strings.TrimSpace(token))
}

// Similarity scores two strings in [0,1] over their normalized forms
// using a bigram Dice coefficient. It is symmetric and returns 1.0 only
// for identical normalized strings.
func Similarity(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == nb {
		return 1
	}
	if na == "" || nb == "" {
		return 0
	}

	aPairs := bigrams(na)
	bPairs := bigrams(nb)
	if len(aPairs) == 0 || len(bPairs) == 0 {
		return 0
	}

	counts := map[string]int{}
	for _, p := range bPairs {
		counts[p]++
	}
	inter := 0
	for _, p := range aPairs {
		if counts[p] > 0 {
			inter++
			counts[p]--
		}
	}
	score := float64(2*inter) / float64(len(aPairs)+len(bPairs))
	// Distinct strings can share a bigram multiset (e.g. rotations); only
	// identical normalized strings may score 1.0.
	if score == 1 {
		score = 0.99
	}
	return score
}

// FuzzyContains reports whether any candidate scores at or above the
// threshold against term. Used for tolerant display-name lookups, never
// for code matching.
func FuzzyContains(term string, candidates []string, threshold float64) bool {
	for _, c := range candidates {
		if Similarity(term, c) >= threshold {
			return true
		}
	}
	return false
}

func bigrams(s string) []string {
	r := []rune(s)
	if len(r) < 2 {
		return nil
	}
	out := make([]string, 0, len(r)-1)
	for i := 0; i < len(r)-1; i++ {
		out = append(out, string(r[i:i+2]))
	}
	return out
}
