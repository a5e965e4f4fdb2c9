package clause

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Error codes surfaced by slicing. These are data, not Go errors: a lookup
// that misses a level still returns the levels it did resolve.
const (
	ErrArticleNotFound   = "article_not_found"
	ErrParagraphNotFound = "paragraph_not_found"
	ErrItemNotFound      = "item_not_found"
)

// Result carries the text slices located for a Reference. Matched flags are
// tri-state: nil means the level was never requested.
type Result struct {
	Reference        *Reference `json:"reference"`
	SourcePath       string     `json:"source_path,omitempty"`
	DocumentType     string     `json:"document_type,omitempty"`
	ArticleText      string     `json:"article_text,omitempty"`
	ParagraphText    string     `json:"paragraph_text,omitempty"`
	ItemText         string     `json:"item_text,omitempty"`
	ArticleMatched   *bool      `json:"article_matched,omitempty"`
	ParagraphMatched *bool      `json:"paragraph_matched,omitempty"`
	ItemMatched      *bool      `json:"item_matched,omitempty"`
	Err              string     `json:"error,omitempty"`
}

// BestText returns the most specific slice that was located.
func (r *Result) BestText() string {
	switch {
	case r.ItemText != "":
		return r.ItemText
	case r.ParagraphText != "":
		return r.ParagraphText
	default:
		return r.ArticleText
	}
}

var (
	genericArticleRe = regexp.MustCompile(`^\s*第\s*` + NumberClass + `+\s*条`)
	genericBulletRe  = regexp.MustCompile(`^\s*` + NumberClass + `+\s*(?:、|\.|．|﹒|:|：|·|•)`)
	multiSpaceRe     = regexp.MustCompile(`\s+`)

	conclusionSelfRe  = regexp.MustCompile(`^(本通知|本办法|本规定|本细则|本规则|本意见|本通告|本方案|本决定|本措施|本指南|本公告)自.+(实施|施行|执行|印发|公布|发布)`)
	conclusionNoteRe  = regexp.MustCompile(`^特此(通知|公告|通告|说明)`)
	itemMarkerPattern = `(?:[(（]\s*(` + NumberClass + `+)\s*[)）]\s*(?:项|目)?)|(?:第\s*(` + NumberClass + `+)\s*(?:项|目))`
	itemMarkerRe      = regexp.MustCompile(itemMarkerPattern)
)

// normalizeLine folds a line to the comparison form used for heading
// matching: NFKC, half-width brackets and quotes, collapsed whitespace.
func normalizeLine(text string) string {
	n := norm.NFKC.String(text)
	n = strings.NewReplacer(
		"（", "(", "）", ")",
		"〔", "[", "〕", "]",
		"【", "[", "】", "]",
		"《", `"`, "》", `"`,
		"“", `"`, "”", `"`,
		"　", " ",
	).Replace(n)
	return strings.TrimSpace(multiSpaceRe.ReplaceAllString(n, " "))
}

// IsConclusionLine reports whether a normalized line closes the operative
// body of a policy document (本办法自…施行, 特此通知).
func IsConclusionLine(normLine string) bool {
	stripped := strings.TrimSpace(normLine)
	if stripped == "" {
		return false
	}
	return conclusionSelfRe.MatchString(stripped) || conclusionNoteRe.MatchString(stripped)
}

// prepareLines splits text into raw lines plus their normalized twins. Raw
// lines feed the output slices; normalized lines feed the heading matches.
func prepareLines(text string) ([]string, []string) {
	sanitized := strings.ReplaceAll(text, "\r\n", "\n")
	sanitized = strings.ReplaceAll(sanitized, "\r", "\n")
	raw := strings.Split(sanitized, "\n")
	normed := make([]string, len(raw))
	for i, line := range raw {
		normed[i] = normalizeLine(line)
	}
	return raw, normed
}

func stripEmptyEdges(lines, normLines []string) ([]string, []string) {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return lines[start:end], normLines[start:end]
}

func composeText(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	trimmed := make([]string, len(lines))
	for i, line := range lines {
		trimmed[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(trimmed, "\n"))
}

// articleSlice locates the lines of the referenced article. Falls back to
// bullet headings ("三、") when no 第N条 heading exists, as circulars often
// number their operative sections that way.
func articleSlice(lines, normLines []string, ref *Reference) ([]string, []string) {
	pattern := numberPattern(ref.Article)
	if pattern == "" {
		return nil, nil
	}
	articleRe := regexp.MustCompile(`^\s*第\s*(?:` + pattern + `)\s*条`)

	startIndex := -1
	boundaryRe := genericArticleRe
	for i, line := range normLines {
		if articleRe.MatchString(line) {
			startIndex = i
			break
		}
	}
	if startIndex < 0 {
		bulletRe := regexp.MustCompile(`^\s*(?:` + pattern + `)\s*(?:、|\.|．|﹒|:|：|·|•)`)
		for i, line := range normLines {
			if bulletRe.MatchString(line) {
				startIndex = i
				boundaryRe = genericBulletRe
				break
			}
		}
	}
	if startIndex < 0 {
		return nil, nil
	}
	endIndex := len(lines)
	for i := startIndex + 1; i < len(normLines); i++ {
		if boundaryRe.MatchString(normLines[i]) || IsConclusionLine(normLines[i]) {
			endIndex = i
			break
		}
	}
	return stripEmptyEdges(lines[startIndex:endIndex], normLines[startIndex:endIndex])
}

// paragraphSlice locates the referenced paragraph within an article slice.
// Returns the whole article when no paragraph was requested, nil when one
// was requested but not found.
func paragraphSlice(articleLines, articleNormLines []string, ref *Reference) ([]string, []string) {
	if ref.Paragraph == nil {
		return articleLines, articleNormLines
	}
	pattern := numberPattern(*ref.Paragraph)
	if pattern == "" {
		return nil, nil
	}
	units := []string{"款", "段"}
	if ref.ParagraphUnit == "款" || ref.ParagraphUnit == "段" {
		units = []string{ref.ParagraphUnit}
	}
	startIndex := -1
	matchedUnit := ""
	for _, unit := range units {
		paragraphRe := regexp.MustCompile(`^\s*第\s*(?:` + pattern + `)\s*` + regexp.QuoteMeta(unit))
		for i, line := range articleNormLines {
			if paragraphRe.MatchString(line) {
				startIndex = i
				matchedUnit = unit
				break
			}
		}
		if startIndex >= 0 {
			break
		}
	}
	if startIndex < 0 {
		return nil, nil
	}
	boundaryRe := regexp.MustCompile(`^\s*第\s*` + NumberClass + `+\s*` + regexp.QuoteMeta(matchedUnit))
	endIndex := len(articleLines)
	for i := startIndex + 1; i < len(articleNormLines); i++ {
		if boundaryRe.MatchString(articleNormLines[i]) {
			endIndex = i
			break
		}
	}
	return stripEmptyEdges(articleLines[startIndex:endIndex], articleNormLines[startIndex:endIndex])
}

// itemText scans for （N）/第N项 markers anywhere in text; items are often
// inline, so matching is not line-anchored. The slice runs from the target
// marker to the next marker or end of text.
func itemText(text string, ref *Reference) (string, string) {
	if ref.Item == nil {
		return "", ""
	}
	type marker struct {
		number int
		start  int
	}
	var markers []marker
	for _, m := range itemMarkerRe.FindAllStringSubmatchIndex(text, -1) {
		var numberText string
		if m[2] >= 0 {
			numberText = text[m[2]:m[3]]
		} else if m[4] >= 0 {
			numberText = text[m[4]:m[5]]
		}
		if numberText == "" {
			continue
		}
		value, ok := ParseNumber(numberText)
		if !ok {
			continue
		}
		markers = append(markers, marker{number: value, start: m[0]})
	}
	if len(markers) == 0 {
		return "", ErrItemNotFound
	}
	targetIndex := -1
	for i, m := range markers {
		if m.number == *ref.Item {
			targetIndex = i
			break
		}
	}
	if targetIndex < 0 {
		return "", ErrItemNotFound
	}
	end := len(text)
	if targetIndex+1 < len(markers) {
		end = markers[targetIndex+1].start
	}
	return strings.TrimSpace(text[markers[targetIndex].start:end]), ""
}

// Slice resolves a Reference against normalized document text. Levels that
// fail to match set their flag false and record an error code; levels above
// them keep whatever already resolved.
func Slice(text string, ref *Reference) *Result {
	result := &Result{Reference: ref}
	if ref == nil {
		result.Err = ErrArticleNotFound
		return result
	}
	lines, normLines := prepareLines(text)
	articleLines, articleNormLines := articleSlice(lines, normLines, ref)
	if articleLines == nil {
		result.ArticleMatched = boolPtr(false)
		result.Err = ErrArticleNotFound
		return result
	}
	result.ArticleMatched = boolPtr(true)
	result.ArticleText = composeText(articleLines)

	paragraphLines, _ := paragraphSlice(articleLines, articleNormLines, ref)
	if paragraphLines == nil {
		paragraphLines = articleLines
		if ref.Paragraph != nil {
			result.ParagraphMatched = boolPtr(false)
		}
	} else if ref.Paragraph != nil {
		result.ParagraphMatched = boolPtr(true)
	}
	if paragraphText := composeText(paragraphLines); paragraphText != "" {
		result.ParagraphText = paragraphText
	}

	if ref.Item != nil {
		base := result.ParagraphText
		if base == "" {
			base = result.ArticleText
		}
		text, errCode := itemText(base, ref)
		if text != "" {
			result.ItemText = text
			result.ItemMatched = boolPtr(true)
		} else {
			result.ItemMatched = boolPtr(false)
			if errCode == "" {
				errCode = ErrItemNotFound
			}
			result.Err = errCode
		}
	} else if ref.Paragraph != nil && result.ParagraphMatched != nil && !*result.ParagraphMatched {
		result.Err = ErrParagraphNotFound
	}
	return result
}

func boolPtr(v bool) *bool { return &v }
