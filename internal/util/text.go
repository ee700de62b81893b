package util

import (
	"regexp"
	"strings"
)

var reSpaces = regexp.MustCompile(`\s+`)

// NormalizeSpaces collapses runs of whitespace and trims the result.
func NormalizeSpaces(input string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(input, " "))
}

// SplitLines splits text into trimmed, non-empty lines.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// NormalizeCode uppercases a code and strips everything that cannot be
// part of a case-code key.
func NormalizeCode(input string) string {
	s := strings.ToUpper(strings.TrimSpace(input))
	s = strings.ReplaceAll(s, " ", "")
	out := strings.Builder{}
	for _, r := range s {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' || r == '/' || r == '.' {
			out.WriteRune(r)
		}
	}
	return out.String()
}

// LooksLikeCode reports whether input has the letters+digits shape of a
// project identifier rather than free text.
func LooksLikeCode(input string) bool {
	if len(strings.TrimSpace(input)) < 3 {
		return false
	}
	hasLetter := false
	hasDigit := false
	for _, r := range input {
		if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
			hasLetter = true
		}
		if r >= '0' && r <= '9' {
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}

func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func StringPtr(v string) *string { return &v }
