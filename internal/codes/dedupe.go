package codes

import "strings"

// DedupeCodes removes duplicate code values case-insensitively while
// keeping first-seen order. Callers display results "most relevant
// first", so the relative order of survivors must not change.
func DedupeCodes(values []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(values))
	for _, v := range values {
		key := strings.ToUpper(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}
