package normalize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// HeaderMaxLength bounds the line length considered as repeated page
	// furniture. Longer lines are body text even when they repeat.
	HeaderMaxLength = 60

	// headerZoneLines is how many lines at each page edge are inspected.
	headerZoneLines = 3
)

var (
	pageNumberRe = regexp.MustCompile(`^-?\s*\d+\s*-?$`)
	pageLabelRes = []*regexp.Regexp{
		regexp.MustCompile(`^第\s*\d+\s*[页頁]$`),
		regexp.MustCompile(`^第\s*\d+\s*[页頁]\s*/\s*共?\s*\d+\s*[页頁]$`),
		regexp.MustCompile(`^\d+\s*/\s*\d+$`),
		regexp.MustCompile(`(?i)^Page\s*\d+(?:\s*/\s*\d+)?$`),
	}
	openingPunct = "([{“‘（"
	closingPunct = ")]},.;:?!”’、。，．：！？；）》」』】"
	paraEndChars = ".?!;:。？！；：…)）》」』】"
	headingPunct = ",.?!；：，。！？:;、"
)

// SplitPages splits extractor output on form feeds, dropping a trailing
// empty segment left by a final page break.
func SplitPages(text string) []string {
	if text == "" {
		return nil
	}
	pages := strings.Split(text, "\f")
	for len(pages) > 0 && pages[len(pages)-1] == "" {
		pages = pages[:len(pages)-1]
	}
	return pages
}

// PageDensity counts the non-blank characters on a page, the measure used
// to decide whether a page has a usable text layer.
func PageDensity(pageText string) int {
	total := 0
	for _, line := range strings.Split(pageText, "\n") {
		total += utf8.RuneCountInString(strings.TrimSpace(line))
	}
	return total
}

// collectPageMarkers finds short lines repeating in the top/bottom zones of
// two or more pages. Those are running headers and footers.
func collectPageMarkers(pages []string) (map[string]bool, map[string]bool) {
	headerCount := map[string]int{}
	footerCount := map[string]int{}
	for _, page := range pages {
		var lines []string
		for _, raw := range strings.Split(page, "\n") {
			if line := strings.TrimSpace(raw); line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) == 0 {
			continue
		}
		top := lines
		if len(top) > headerZoneLines {
			top = top[:headerZoneLines]
		}
		bottom := lines
		if len(bottom) > headerZoneLines {
			bottom = bottom[len(bottom)-headerZoneLines:]
		}
		for _, line := range top {
			if utf8.RuneCountInString(line) <= HeaderMaxLength {
				headerCount[line]++
			}
		}
		for _, line := range bottom {
			if utf8.RuneCountInString(line) <= HeaderMaxLength {
				footerCount[line]++
			}
		}
	}
	headers := map[string]bool{}
	footers := map[string]bool{}
	for line, count := range headerCount {
		if count >= 2 {
			headers[line] = true
		}
	}
	for line, count := range footerCount {
		if count >= 2 {
			footers[line] = true
		}
	}
	return headers, footers
}

func isPageFurniture(line string, headers, footers map[string]bool) bool {
	if pageNumberRe.MatchString(line) {
		return true
	}
	for _, re := range pageLabelRes {
		if re.MatchString(line) {
			return true
		}
	}
	return headers[line] || footers[line]
}

func shouldInsertSpace(left, right string) bool {
	if left == "" || right == "" {
		return false
	}
	leftRunes := []rune(left)
	rightRunes := []rune(right)
	leftChar := leftRunes[len(leftRunes)-1]
	rightChar := rightRunes[0]
	if IsCJK(leftChar) || IsCJK(rightChar) {
		return false
	}
	if strings.ContainsRune(openingPunct, leftChar) {
		return false
	}
	if strings.ContainsRune(closingPunct, rightChar) {
		return false
	}
	return (unicode.IsLetter(leftChar) || unicode.IsDigit(leftChar)) &&
		(unicode.IsLetter(rightChar) || unicode.IsDigit(rightChar))
}

// mergeWrappedLines joins the soft-wrapped lines of one paragraph.
// Hyphenated Latin words rejoin without the hyphen; CJK boundaries join
// directly; Latin alphanumeric boundaries get a single space.
func mergeWrappedLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	merged := lines[0]
	for _, line := range lines[1:] {
		if merged == "" {
			merged = line
			continue
		}
		if strings.HasSuffix(merged, "-") && line != "" && unicode.IsLetter([]rune(line)[0]) {
			merged = strings.TrimRight(merged, "-") + line
			continue
		}
		if shouldInsertSpace(merged, line) {
			merged += " " + line
		} else {
			merged += line
		}
	}
	return merged
}

// looksLikeHeading reports whether a short punctuation-free line reads as a
// section heading rather than wrapped body text.
func looksLikeHeading(line string) bool {
	stripped := strings.TrimSpace(line)
	if stripped == "" || utf8.RuneCountInString(stripped) > 20 {
		return false
	}
	return !strings.ContainsAny(stripped, headingPunct)
}

// PDF rebuilds extractor output into one line per paragraph. Headers,
// footers, and page-number lines are dropped; blank lines break a paragraph
// only after terminal punctuation or a heading, because paragraphs span
// page boundaries.
func PDF(text string) string {
	if text == "" {
		return ""
	}
	pages := SplitPages(text)
	headers, footers := collectPageMarkers(pages)

	var result []string
	var paragraph []string
	pendingBlank := false

	flush := func() {
		if len(paragraph) > 0 {
			if merged := mergeWrappedLines(paragraph); merged != "" {
				result = append(result, merged)
			}
			paragraph = paragraph[:0]
		}
	}

	for _, page := range pages {
		for _, rawLine := range strings.Split(page, "\n") {
			line := strings.TrimSpace(rawLine)
			if line == "" {
				if len(paragraph) > 0 {
					pendingBlank = true
				}
				continue
			}
			if isPageFurniture(line, headers, footers) {
				continue
			}
			if pendingBlank {
				shouldBreak := false
				if len(paragraph) > 0 {
					last := paragraph[len(paragraph)-1]
					lastRunes := []rune(last)
					if strings.ContainsRune(paraEndChars, lastRunes[len(lastRunes)-1]) {
						shouldBreak = true
					} else if looksLikeHeading(last) {
						shouldBreak = true
					}
				}
				if shouldBreak {
					flush()
				}
				pendingBlank = false
			}
			paragraph = append(paragraph, line)
		}
	}
	flush()
	return strings.Join(result, "\n")
}
