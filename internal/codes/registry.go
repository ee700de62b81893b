// Package codes implements the case-code extraction engine: a fixed
// registry of named patterns, canonicalization of raw matches into
// project code strings, order-preserving deduplication, and vendor/site
// alias resolution with a fuzzy fallback.
//
// Everything in this package is pure and side-effect free. A Registry is
// built once at startup and is read-only afterwards, so the engine is
// safe to call from any number of goroutines.
package codes

import (
	"fmt"
	"regexp"
	"sort"

	"hvdcmap/internal"
)

// Rule is one named extraction pattern. The capture-group layout is
// fixed per kind and consumed by the canonicalizer.
type Rule struct {
	Name string
	Kind internal.CodeKind
	re   *regexp.Regexp
}

// patternDefs lists every rule in precedence order. Rules are not
// mutually exclusive: the extractor runs all of them and keeps every
// match, relying on dedupe to collapse overlaps.
var patternDefs = []struct {
	name    string
	kind    internal.CodeKind
	pattern string
}{
	// HVDC-ADOPT-HE-0476, HVDC-ADOPT-SCT-0136
	{"hvdc_adopt", internal.KindHVDCAdopt, `(?i)HVDC-ADOPT-([A-Z]+)-([A-Z0-9\-]+)`},
	// HVDC-<site>-<vendor>-<suffix>, e.g. HVDC-AGI-SCT-0134
	{"hvdc_generic", internal.KindHVDCGeneric, `(?i)HVDC-([A-Z]+)-([A-Z]+)-([A-Z0-9\-]+)`},
	// (HE-0504) or (HE-0427, HE-0428); interior re-scanned by the canonicalizer
	{"paren_derived", internal.KindParenDerived, `\(([^)]+)\)`},
	// [HVDC-AGI] ... JPTW-71 / GRM-123 -> composite code
	{"jptw_grm_tagged", internal.KindJPTWGRMTag, `(?i)\[HVDC-AGI\].*?JPTW-(\d+)\s*/\s*GRM-(\d+)`},
	// standalone JPTW-71 / GRM-123 pair
	{"jptw_grm_pair", internal.KindJPTWGRMPair, `(?i)JPTW-(\d+)\s*/\s*GRM-(\d+)`},
	// ": HVDC-AGI-JPTW71-GRM65" style fully formed trailer after a colon
	{"trailing", internal.KindTrailing, `(?i):\s*([A-Z]+(?:-[A-Z0-9]+){2,})`},
	// PRL-O-046-O4(HE-0486); parenthetical kept as part of the token
	{"prl", internal.KindPRL, `(?i)PRL-[A-Z]+-\d{2,4}-[A-Z0-9\-]*(?:\([A-Z]+-\d{3,5}(?:-[0-9A-Z]+)?\))?`},
}

// parenInnerPattern matches one <VENDOR>-<NUMBER> sub-token inside a
// parenthesized group, e.g. HE-0427 or HE-0499-3.
const parenInnerPattern = `(?i)([A-Z]+)-([0-9]+(?:-[0-9A-Z]+)?)`

var vendorAliases = map[string]string{
	"he":             "Hitachi Energy",
	"hitachi energy": "Hitachi Energy",
	"hitachi":        "Hitachi Energy",
	"sct":            "Samsung C&T",
	"samsung c&t":    "Samsung C&T",
	"mosb":           "MOSB",
	"als":            "ALS",
}

var siteAliases = map[string]string{
	"das":     "DAS Site",
	"agi":     "AGI Site",
	"mir":     "MIR Site",
	"mirfa":   "MIRFA Site",
	"ghallan": "GHALLAN Site",
}

var siteTokens = []string{"AGI", "DAS", "MIRFA", "SHU", "ZAK"}

// Registry holds the compiled rule set and the alias tables. It is the
// single source of truth for patterns: the extractor, resolver and tests
// all go through it.
type Registry struct {
	rules      []Rule
	parenInner *regexp.Regexp
	poRE       *regexp.Regexp
	phaseRE    *regexp.Regexp
	siteREs    map[string]*regexp.Regexp

	vendorAliases map[string]string
	siteAliases   map[string]string
}

// NewRegistry compiles every registered pattern. A compile failure is a
// configuration error and the process must not start with it.
func NewRegistry() (*Registry, error) {
	reg := &Registry{
		rules:         make([]Rule, 0, len(patternDefs)),
		siteREs:       make(map[string]*regexp.Regexp, len(siteTokens)),
		vendorAliases: vendorAliases,
		siteAliases:   siteAliases,
	}

	for _, def := range patternDefs {
		re, err := regexp.Compile(def.pattern)
		if err != nil {
			return nil, fmt.Errorf("compile pattern %s: %w", def.name, err)
		}
		reg.rules = append(reg.rules, Rule{Name: def.name, Kind: def.kind, re: re})
	}

	var err error
	if reg.parenInner, err = regexp.Compile(parenInnerPattern); err != nil {
		return nil, fmt.Errorf("compile pattern paren_inner: %w", err)
	}
	if reg.poRE, err = regexp.Compile(`(?i)\b(?:LPO|PO)\s*[-:]?\s*(\d{5,12})\b`); err != nil {
		return nil, fmt.Errorf("compile pattern po: %w", err)
	}
	if reg.phaseRE, err = regexp.Compile(`(?i)\b(?:PHASE|PH|STAGE)[- ]?(\d{1,2})\b`); err != nil {
		return nil, fmt.Errorf("compile pattern phase: %w", err)
	}
	for _, tok := range siteTokens {
		re, err := regexp.Compile(`\b` + tok + `\b`)
		if err != nil {
			return nil, fmt.Errorf("compile site token %s: %w", tok, err)
		}
		reg.siteREs[tok] = re
	}

	return reg, nil
}

// MustRegistry is for wiring code where a broken registry means the
// binary cannot run at all.
func MustRegistry() *Registry {
	reg, err := NewRegistry()
	if err != nil {
		panic(err)
	}
	return reg
}

// Rules returns the rule set in registration order.
func (r *Registry) Rules() []Rule {
	return r.rules
}

// VendorTokens returns every normalized vendor alias token, sorted.
func (r *Registry) VendorTokens() []string {
	tokens := make([]string, 0, len(r.vendorAliases))
	for tok := range r.vendorAliases {
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)
	return tokens
}

// Rule returns the named rule, or nil.
func (r *Registry) Rule(name string) *Rule {
	for i := range r.rules {
		if r.rules[i].Name == name {
			return &r.rules[i]
		}
	}
	return nil
}
