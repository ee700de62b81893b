package codes

import (
	"strings"

	"hvdcmap/internal"
)

// canonicalize turns one raw match into zero or more canonical codes.
// Each kind has exactly one formatting rule; the switch is exhaustive
// over the registered kinds.
func (e *Engine) canonicalize(m RawMatch) []CanonicalCode {
	switch m.Kind {
	case internal.KindHVDCAdopt:
		return e.canonAdopt(m)
	case internal.KindHVDCGeneric:
		return e.canonGeneric(m)
	case internal.KindParenDerived:
		return e.canonParen(m)
	case internal.KindJPTWGRMTag:
		return e.canonJPTWTagged(m)
	case internal.KindJPTWGRMPair:
		return e.canonJPTWPair(m)
	case internal.KindTrailing:
		return e.canonTrailing(m)
	case internal.KindPRL:
		return e.canonPRL(m)
	}
	return nil
}

func (e *Engine) canonAdopt(m RawMatch) []CanonicalCode {
	if len(m.Groups) < 2 {
		return nil
	}
	vendor := strings.ToUpper(m.Groups[0])
	number := strings.ToUpper(m.Groups[1])
	return []CanonicalCode{{Kind: m.Kind, Value: "HVDC-ADOPT-" + vendor + "-" + number}}
}

func (e *Engine) canonGeneric(m RawMatch) []CanonicalCode {
	if len(m.Groups) < 3 {
		return nil
	}
	site := strings.ToUpper(m.Groups[0])
	// an ADOPT code also satisfies the generic shape; the adopt rule
	// already claimed it
	if site == "ADOPT" {
		return nil
	}
	vendor := strings.ToUpper(m.Groups[1])
	suffix := strings.ToUpper(m.Groups[2])
	return []CanonicalCode{{Kind: m.Kind, Value: "HVDC-" + site + "-" + vendor + "-" + suffix}}
}

// canonParen re-scans the parenthesized interior for <VENDOR>-<NUMBER>
// sub-tokens. The interior is split on commas first so (HE-0427, HE-0428)
// expands to two independent codes.
func (e *Engine) canonParen(m RawMatch) []CanonicalCode {
	if len(m.Groups) < 1 {
		return nil
	}
	out := make([]CanonicalCode, 0, 2)
	for _, part := range strings.Split(m.Groups[0], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		for _, sub := range e.reg.parenInner.FindAllStringSubmatch(part, -1) {
			vendor := strings.ToUpper(sub[1])
			number := strings.ToUpper(sub[2])
			out = append(out, CanonicalCode{Kind: m.Kind, Value: "HVDC-ADOPT-" + vendor + "-" + number})
		}
	}
	return out
}

// canonJPTWTagged folds the tagged pair into the composite index form
// downstream consumers key on. The tag text itself is discarded.
func (e *Engine) canonJPTWTagged(m RawMatch) []CanonicalCode {
	if len(m.Groups) < 2 {
		return nil
	}
	return []CanonicalCode{{Kind: m.Kind, Value: "HVDC-AGI-JPTW" + m.Groups[0] + "-GRM" + m.Groups[1]}}
}

func (e *Engine) canonJPTWPair(m RawMatch) []CanonicalCode {
	if len(m.Groups) < 2 {
		return nil
	}
	return []CanonicalCode{{Kind: m.Kind, Value: "JPTW-" + m.Groups[0] + "/GRM-" + m.Groups[1]}}
}

func (e *Engine) canonTrailing(m RawMatch) []CanonicalCode {
	if len(m.Groups) < 1 {
		return nil
	}
	value := strings.ToUpper(strings.TrimSpace(m.Groups[0]))
	if i := strings.IndexByte(value, '('); i >= 0 {
		value = strings.TrimSpace(value[:i])
	}
	if value == "" {
		return nil
	}
	return []CanonicalCode{{Kind: m.Kind, Value: value}}
}

// canonPRL keeps the full PRL token, parenthetical suffix included. The
// interior short code is expanded separately by the paren rule running
// over the same text.
func (e *Engine) canonPRL(m RawMatch) []CanonicalCode {
	value := strings.ToUpper(strings.TrimSpace(m.Full))
	if value == "" {
		return nil
	}
	return []CanonicalCode{{Kind: m.Kind, Value: value}}
}
