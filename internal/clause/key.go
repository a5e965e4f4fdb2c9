package clause

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Query pairs a policy title with a single clause citation, as split out of
// a compound lookup key like 《办法》第三条第一款、第二款.
type Query struct {
	Title  string `json:"title"`
	Clause string `json:"clause"`
}

const (
	segmentStripChars = " ，,、;；。：:　\n\r\t"
	connectorChars    = "及和与或跟其"
)

var (
	keyTitleRe  = regexp.MustCompile(`《([^》]+)》`)
	diSearchRe  = regexp.MustCompile(`第`)
	articleUnit = regexp.MustCompile(`(条|点)`)
	paraUnit    = regexp.MustCompile(`(款|段)`)
	itemUnit    = regexp.MustCompile(`(项|目)`)
)

func isDelimiter(r rune) bool {
	return strings.ContainsRune(segmentStripChars+connectorChars, r)
}

func cleanSegment(s string) string {
	s = strings.Trim(s, segmentStripChars)
	s = strings.TrimLeft(s, connectorChars)
	s = strings.TrimRight(s, connectorChars)
	return s
}

// splitClauseBlock splits 第三条第一款、第二款 into standalone citations. A
// segment without a 条/点 unit inherits the last article segment as its base
// (and the last paragraph segment when it names an item).
func splitClauseBlock(block string) []string {
	text := strings.TrimSpace(block)
	if text == "" {
		return nil
	}
	var starts []int
	for _, loc := range diSearchRe.FindAllStringIndex(text, -1) {
		index := loc[0]
		if index == 0 {
			starts = append(starts, index)
			continue
		}
		prev, _ := utf8.DecodeLastRuneInString(text[:index])
		if isDelimiter(prev) {
			starts = append(starts, index)
		}
	}
	if len(starts) == 0 {
		if cleaned := cleanSegment(text); cleaned != "" {
			return []string{cleaned}
		}
		return nil
	}
	starts = append(starts, len(text))
	var candidates []string
	for i := 0; i < len(starts)-1; i++ {
		if cleaned := cleanSegment(text[starts[i]:starts[i+1]]); cleaned != "" {
			candidates = append(candidates, cleaned)
		}
	}

	var merged []string
	articleBase := ""
	paragraphBase := ""
	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		if articleUnit.MatchString(candidate) {
			articleBase = candidate
			paragraphBase = ""
			merged = append(merged, candidate)
			continue
		}
		if articleBase == "" {
			merged = append(merged, candidate)
			continue
		}
		base := articleBase
		if paragraphBase != "" && itemUnit.MatchString(candidate) {
			base = paragraphBase
		}
		combined := strings.TrimSpace(base + " " + candidate)
		if len(merged) > 0 && merged[len(merged)-1] == base {
			merged[len(merged)-1] = combined
		} else {
			merged = append(merged, combined)
		}
		if paraUnit.MatchString(candidate) {
			paragraphBase = combined
		}
	}

	out := merged[:0]
	for _, segment := range merged {
		if trimmed := strings.TrimSpace(segment); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// ParseKey splits a free-text citation block into (title, clause) queries.
// Titles come from 《…》 markers when present; otherwise a colon or the
// first 第 divides title from clauses.
func ParseKey(value string) []Query {
	text := strings.TrimSpace(value)
	if text == "" {
		return nil
	}
	var queries []Query

	titleMatches := keyTitleRe.FindAllStringSubmatchIndex(text, -1)
	if len(titleMatches) > 0 {
		for i, m := range titleMatches {
			title := strings.TrimSpace(text[m[2]:m[3]])
			if title == "" {
				continue
			}
			blockStart := m[1]
			blockEnd := len(text)
			if i+1 < len(titleMatches) {
				blockEnd = titleMatches[i+1][0]
			}
			for _, clauseText := range splitClauseBlock(text[blockStart:blockEnd]) {
				if stripped := strings.Trim(clauseText, segmentStripChars); stripped != "" {
					queries = append(queries, Query{Title: title, Clause: stripped})
				}
			}
		}
		return queries
	}

	colonIndex := max(strings.LastIndex(text, "："), strings.LastIndex(text, ":"))
	if colonIndex > 0 {
		title := strings.Trim(strings.TrimSpace(text[:colonIndex]), "《》\"'：:，,")
		colonWidth := 1
		if strings.HasPrefix(text[colonIndex:], "：") {
			colonWidth = len("：")
		}
		clauseBlock := strings.TrimSpace(text[colonIndex+colonWidth:])
		if title != "" && clauseBlock != "" && strings.Contains(clauseBlock, "第") {
			clauses := splitClauseBlock(clauseBlock)
			if len(clauses) == 0 {
				clauses = []string{clauseBlock}
			}
			for _, clauseText := range clauses {
				if stripped := strings.Trim(clauseText, segmentStripChars); stripped != "" {
					queries = append(queries, Query{Title: title, Clause: stripped})
				}
			}
			if len(queries) > 0 {
				return queries
			}
		}
	}

	divider := strings.Index(text, "第")
	if divider <= 0 {
		return nil
	}
	title := strings.Trim(strings.TrimSpace(text[:divider]), "《》\"'：:，,")
	clauseBlock := strings.TrimSpace(text[divider:])
	if title == "" || clauseBlock == "" {
		return nil
	}
	clauses := splitClauseBlock(clauseBlock)
	if len(clauses) == 0 {
		clauses = []string{clauseBlock}
	}
	for _, clauseText := range clauses {
		if stripped := strings.Trim(clauseText, segmentStripChars); stripped != "" {
			queries = append(queries, Query{Title: title, Clause: stripped})
		}
	}
	return queries
}
