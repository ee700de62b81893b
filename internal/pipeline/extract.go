package pipeline

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jhillyerd/enmime"
	pdf "github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"hvdcmap/internal"
	"hvdcmap/internal/codes"
	"hvdcmap/internal/util"
)

// ExtractHitsFromEmailRaw parses a raw RFC 5322 message and collects case-code
// hits from the subject, the plain-text body, HTML tables and cells, and any
// spreadsheet or PDF attachment. Hits are deduped per source.
func ExtractHitsFromEmailRaw(engine *codes.Engine, raw []byte) ([]internal.CodeHit, string, string, []string, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return nil, "", "", nil, err
	}

	subject := env.GetHeader("Subject")
	hits := make([]internal.CodeHit, 0)
	hits = append(hits, hitsFromText(engine, internal.SourceSubject, subject, nil)...)
	if env.Text != "" {
		hits = append(hits, hitsFromText(engine, internal.SourceBodyText, env.Text, nil)...)
	}
	if env.HTML != "" {
		hits = append(hits, hitsFromHTML(engine, env.HTML)...)
	}

	attachmentNames := make([]string, 0, len(env.Attachments))
	for _, att := range env.Attachments {
		filename := strings.TrimSpace(att.FileName)
		if filename == "" {
			filename = "attachment"
		}
		attachmentNames = append(attachmentNames, filename)
		lower := strings.ToLower(filename)

		meta := map[string]any{"attachment": filename}
		// Filenames themselves often carry the case code.
		hits = append(hits, hitsFromText(engine, internal.SourceAttachment, filename, meta)...)

		if strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xls") {
			extra, err := hitsFromXLSX(engine, att.Content, filename)
			if err == nil {
				hits = append(hits, extra...)
			}
		}
		if strings.HasSuffix(lower, ".pdf") {
			extra, err := hitsFromPDF(engine, att.Content, filename)
			if err == nil {
				hits = append(hits, extra...)
			}
		}
	}

	hits = dedupeHits(hits)
	return hits, subject, env.Text, attachmentNames, nil
}

func hitsFromText(engine *codes.Engine, source internal.HitSource, text string, meta map[string]any) []internal.CodeHit {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	out := []internal.CodeHit{}
	for _, c := range engine.ExtractCodes(text) {
		hit := internal.CodeHit{
			Source: source,
			Kind:   c.Kind,
			Code:   c.Value,
		}
		if meta != nil {
			hit.Meta = map[string]any{}
			for k, v := range meta {
				hit.Meta[k] = v
			}
		}
		out = append(out, hit)
	}
	return out
}

func hitsFromHTML(engine *codes.Engine, html string) []internal.CodeHit {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	doc.Find("script,style").Remove()
	text := util.NormalizeSpaces(doc.Text())
	return hitsFromText(engine, internal.SourceBodyHTML, text, nil)
}

func hitsFromXLSX(engine *codes.Engine, content []byte, filename string) ([]internal.CodeHit, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := []internal.CodeHit{}
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		for i, row := range rows {
			line := strings.Join(row, " ")
			meta := map[string]any{"attachment": filename, "sheet": sheet, "rowNumber": i + 1}
			out = append(out, hitsFromText(engine, internal.SourceAttachment, line, meta)...)
		}
	}
	return out, nil
}

func hitsFromPDF(engine *codes.Engine, content []byte, filename string) ([]internal.CodeHit, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, err
	}

	out := []internal.CodeHit{}
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		for _, line := range util.SplitLines(text) {
			meta := map[string]any{"attachment": filename, "page": i}
			out = append(out, hitsFromText(engine, internal.SourceAttachment, line, meta)...)
		}
	}
	return out, nil
}

// dedupeHits keeps the first hit per (source, code) pair; the same code seen
// in a different source is a distinct hit.
func dedupeHits(hits []internal.CodeHit) []internal.CodeHit {
	seen := map[string]struct{}{}
	out := make([]internal.CodeHit, 0, len(hits))
	for _, hit := range hits {
		key := string(hit.Source) + "|" + strings.ToUpper(hit.Code)
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, hit)
	}
	return out
}
