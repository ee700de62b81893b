package codes

import (
	"strings"

	"hvdcmap/internal"
)

// RawMatch is one hit of one rule against the input text. Groups holds
// the capture groups in pattern order; Start/End span the full match in
// the original (un-normalized) text so composite rules keep positions.
type RawMatch struct {
	Rule   string
	Kind   internal.CodeKind
	Full   string
	Groups []string
	Start  int
	End    int
}

// CanonicalCode is the finished form of a raw match.
type CanonicalCode struct {
	Kind  internal.CodeKind
	Value string
}

// Engine runs the registry's rules against text. It holds no mutable
// state and can be shared between goroutines.
type Engine struct {
	reg *Registry
}

func NewEngine(reg *Registry) *Engine {
	return &Engine{reg: reg}
}

func (e *Engine) Registry() *Registry {
	return e.reg
}

// Extract collects every raw match of every rule, in rule registration
// order and left-to-right within a rule. Empty input yields an empty
// result; extraction never fails.
func (e *Engine) Extract(text string) []RawMatch {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	out := make([]RawMatch, 0, 8)
	for _, rule := range e.reg.rules {
		idx := rule.re.FindAllStringSubmatchIndex(text, -1)
		for _, loc := range idx {
			groups := make([]string, 0, len(loc)/2-1)
			for g := 1; g < len(loc)/2; g++ {
				s, t := loc[2*g], loc[2*g+1]
				if s < 0 {
					groups = append(groups, "")
					continue
				}
				groups = append(groups, text[s:t])
			}
			out = append(out, RawMatch{
				Rule:   rule.Name,
				Kind:   rule.Kind,
				Full:   text[loc[0]:loc[1]],
				Groups: groups,
				Start:  loc[0],
				End:    loc[1],
			})
		}
	}
	return out
}

// ExtractCodes runs the full pipeline short of flattening: extract,
// canonicalize, dedupe (case-insensitive on value, first kind wins).
func (e *Engine) ExtractCodes(text string) []CanonicalCode {
	matches := e.Extract(text)
	if len(matches) == 0 {
		return nil
	}

	codes := make([]CanonicalCode, 0, len(matches))
	for _, m := range matches {
		codes = append(codes, e.canonicalize(m)...)
	}

	seen := map[string]struct{}{}
	out := make([]CanonicalCode, 0, len(codes))
	for _, c := range codes {
		key := strings.ToUpper(c.Value)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

// ExtractCaseCodes returns the deduplicated canonical code strings found
// in text, in extraction order. This is the primary entry point for
// collaborators feeding in subject lines, body text and folder names.
func (e *Engine) ExtractCaseCodes(text string) []string {
	codes := e.ExtractCodes(text)
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		out = append(out, c.Value)
	}
	return DedupeCodes(out)
}
