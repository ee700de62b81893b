package pipeline

import "strings"

type DetectResult struct {
	IsProjectMail bool
	Score         float64
	Reason        string
}

var detectKeywords = []string{"hvdc", "adopt", "jptw", "grm", "prl", "cargo", "shipment", "delivery", "customs", "mosb"}

// DetectProjectMail scores a message for relevance to project logistics
// traffic. Code hits dominate; keywords and attachments refine the score.
func DetectProjectMail(subject, text, html string, attachmentNames []string, codeHits int) DetectResult {
	subject = strings.ToLower(subject)
	text = strings.ToLower(text)
	html = strings.ToLower(html)

	score := 0.0
	for _, kw := range detectKeywords {
		if strings.Contains(subject, kw) {
			score += 0.2
		}
		if strings.Contains(text, kw) || strings.Contains(html, kw) {
			score += 0.1
		}
	}

	if codeHits >= 2 {
		score += 0.4
	} else if codeHits == 1 {
		score += 0.3
	}

	for _, name := range attachmentNames {
		ln := strings.ToLower(name)
		if strings.HasSuffix(ln, ".xlsx") || strings.HasSuffix(ln, ".xls") || strings.HasSuffix(ln, ".pdf") {
			score += 0.15
			break
		}
	}

	if score > 1 {
		score = 1
	}

	isProject := score >= 0.45
	reason := "rules_negative"
	if isProject {
		reason = "rules_positive"
	}

	return DetectResult{IsProjectMail: isProject, Score: score, Reason: reason}
}
