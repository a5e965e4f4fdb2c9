// Package extract picks the best local document for each policy entry,
// decodes it to text, and drives batch extraction across a crawler state
// file.
package extract

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/policyops/regtext/internal/decode"
	"github.com/policyops/regtext/internal/policy"
)

// Base weights per normalized document type. Word formats carry the
// authoritative full text most often, PDFs next, HTML pages are frequently
// summaries, and plain text is a last resort.
var documentWeights = map[string]int{
	"docx": 3,
	"doc":  3,
	"word": 3,
	"pdf":  2,
	"html": 1,
	"text": 0,
}

var (
	attachmentPrefixRe = regexp.MustCompile(`^\s*(附件|附表|附录|附图)`)
	penalizedTypes     = map[string]bool{"doc": true, "docx": true, "word": true}
	documentSuffixes   = map[string]bool{".pdf": true, ".doc": true, ".docx": true, ".wps": true, ".txt": true}
)

// Candidate is one resolvable document of an entry, scored for extraction
// order. Order preserves the state-file position for tie-breaks.
type Candidate struct {
	Doc            *policy.Document
	Path           string
	DeclaredType   string
	NormalizedType string
	Priority       float64
	Order          int
}

// normalizeTitleForPriority lowers a title to its alphanumeric skeleton,
// with any document-file extension stripped, so 附件1.pdf and 附件1 compare
// equal.
func normalizeTitleForPriority(value string) string {
	trimmed := strings.TrimSpace(value)
	if ext := strings.ToLower(filepath.Ext(trimmed)); documentSuffixes[ext] {
		trimmed = strings.TrimRight(strings.TrimSuffix(trimmed, filepath.Ext(trimmed)), " .。．")
	}
	var sb strings.Builder
	for _, r := range trimmed {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(unicode.ToLower(r))
		}
	}
	return sb.String()
}

// similarityRatio approximates sequence similarity as 2*LCS/(len_a+len_b),
// operating on runes.
func similarityRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	prev := make([]int, len(rb)+1)
	current := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				current[j] = prev[j-1] + 1
			} else if prev[j] >= current[j-1] {
				current[j] = prev[j]
			} else {
				current[j] = current[j-1]
			}
		}
		prev, current = current, prev
	}
	lcs := prev[len(rb)]
	return 2 * float64(lcs) / float64(len(ra)+len(rb))
}

// titleMatchBonus ranks how strongly a document title names the entry
// itself rather than an attachment. Returns a coarse rank (dominates the
// priority) and a fine bonus.
func titleMatchBonus(entryTitle, docTitle string) (int, float64) {
	entryNorm := normalizeTitleForPriority(entryTitle)
	docNorm := normalizeTitleForPriority(docTitle)
	if entryNorm == "" || docNorm == "" {
		return 0, 0
	}
	if entryNorm == docNorm {
		return 3, 2.0
	}
	if strings.Contains(docNorm, entryNorm) || strings.Contains(entryNorm, docNorm) {
		return 2, 1.0
	}
	if similarityRatio(entryNorm, docNorm) >= 0.85 {
		return 1, 0.5
	}
	return 0, 0
}

// attachmentPenalty demotes Word-family attachments unrelated to the entry
// title and anything titled 附件/附表/附录/附图.
func attachmentPenalty(normalizedType string, matchBonus float64, docTitle string, hasEntryTitle bool) float64 {
	penalty := 0.0
	if hasEntryTitle && matchBonus <= 0 && penalizedTypes[normalizedType] {
		penalty -= 1.0
	}
	if docTitle != "" && attachmentPrefixRe.MatchString(docTitle) {
		penalty -= 0.5
	}
	return penalty
}

// resolveCandidatePath locates a document's local file, trying the recorded
// path relative to the state directory, its downloads/ subdirectory, and
// the parent directory layouts older crawler versions used.
func resolveCandidatePath(pathValue, stateDir string) string {
	if pathValue == "" {
		return ""
	}
	var searchPaths []string
	if filepath.IsAbs(pathValue) {
		searchPaths = append(searchPaths, pathValue)
	} else {
		name := filepath.Base(pathValue)
		parent := filepath.Dir(stateDir)
		searchPaths = append(searchPaths,
			filepath.Join(stateDir, pathValue),
			filepath.Join(stateDir, name),
			filepath.Join(stateDir, "downloads", name),
			filepath.Join(parent, pathValue),
			filepath.Join(parent, "downloads", name),
			filepath.Join(parent, "downloads", pathValue),
		)
	}
	searchPaths = append(searchPaths, pathValue)

	seen := map[string]bool{}
	for _, candidate := range searchPaths {
		resolved, err := filepath.Abs(candidate)
		if err != nil {
			resolved = candidate
		}
		if seen[resolved] {
			continue
		}
		seen[resolved] = true
		if info, err := os.Stat(resolved); err == nil && info.Mode().IsRegular() {
			return resolved
		}
	}
	return ""
}

// BuildCandidates resolves and scores an entry's documents. The result is
// ordered best-first: priority descending, state-file order breaking ties,
// with preferred documents moved to the front as a group.
func BuildCandidates(entry *policy.Entry, stateDir string) []*Candidate {
	hasEntryTitle := entry.Title != ""

	var candidates []*Candidate
	for index := range entry.Documents {
		doc := &entry.Documents[index]
		resolved := resolveCandidatePath(doc.LocalPath, stateDir)
		if resolved == "" {
			continue
		}
		declared := strings.ToLower(strings.TrimSpace(doc.Type))
		normalized := decode.NormalizeType(declared, strings.ToLower(filepath.Ext(resolved)))
		matchRank, matchBonus := titleMatchBonus(entry.Title, doc.Title)
		baseWeight := -1
		if weight, ok := documentWeights[normalized]; ok {
			baseWeight = weight
		}
		priority := float64(matchRank)*1000 +
			float64(baseWeight)*10 +
			matchBonus +
			attachmentPenalty(normalized, matchBonus, doc.Title, hasEntryTitle)
		candidates = append(candidates, &Candidate{
			Doc:            doc,
			Path:           resolved,
			DeclaredType:   declared,
			NormalizedType: normalized,
			Priority:       priority,
			Order:          index,
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Priority != candidates[j].Priority {
			return candidates[i].Priority > candidates[j].Priority
		}
		return candidates[i].Order < candidates[j].Order
	})

	var preferred, fallback []*Candidate
	for _, candidate := range candidates {
		if candidate.Doc.Preferred {
			preferred = append(preferred, candidate)
		} else {
			fallback = append(fallback, candidate)
		}
	}
	if len(preferred) > 0 {
		return append(preferred, fallback...)
	}
	return fallback
}
