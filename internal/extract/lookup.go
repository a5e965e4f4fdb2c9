package extract

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/policyops/regtext/internal/clause"
	"github.com/policyops/regtext/internal/decode"
	"github.com/policyops/regtext/internal/normalize"
	"github.com/policyops/regtext/internal/policy"
)

// Lookup error codes.
const (
	CodeMissingTitle     = "missing_title"
	CodeInvalidReference = "invalid_clause_reference"
	CodePolicyNotFound   = "policy_not_found"
	CodeClauseNotFound   = "clause_not_found"
	CodeDocUnavailable   = "document_unavailable"
)

// clauseTypePreference orders document types for clause lookups. Plain
// text (usually a prior extraction) slices most reliably, then rendered
// HTML, then PDF, with Word formats last. This deliberately differs from
// the extraction priority, which optimizes for completeness instead.
var clauseTypePreference = [][]string{
	{"text"},
	{"html"},
	{"pdf"},
	{"docx", "doc", "word"},
	nil, // anything left
}

var lookupSpaceRe = regexp.MustCompile(`\s+`)

// NormTitle folds a policy title to its comparison form.
func NormTitle(text string) string {
	if text == "" {
		return ""
	}
	normalized := norm.NFKC.String(text)
	normalized = strings.NewReplacer(
		"（", "(", "）", ")",
		"〔", "[", "〕", "]",
		"【", "[", "】", "]",
		"《", `"`, "》", `"`,
		"“", `"`, "”", `"`,
		"‘", "'", "’", "'",
	).Replace(normalized)
	return strings.TrimSpace(lookupSpaceRe.ReplaceAllString(normalized, " "))
}

// Lookup resolves clause citations against the entries of a state file.
type Lookup struct {
	stateDir string
	byTitle  map[string][]*policy.Entry
	entries  []*policy.Entry
}

// NewLookup indexes entries by normalized title.
func NewLookup(state *policy.State, stateDir string) *Lookup {
	l := &Lookup{
		stateDir: stateDir,
		byTitle:  map[string][]*policy.Entry{},
	}
	for i := range state.Entries {
		entry := &state.Entries[i]
		if entry.Title == "" {
			continue
		}
		key := NormTitle(entry.Title)
		l.byTitle[key] = append(l.byTitle[key], entry)
		l.entries = append(l.entries, entry)
	}
	return l
}

// Titles lists every indexed policy title.
func (l *Lookup) Titles() []string {
	titles := make([]string, 0, len(l.entries))
	for _, entry := range l.entries {
		titles = append(titles, entry.Title)
	}
	return titles
}

// matchEntries finds candidate entries for a queried title: exact
// normalized match, then substring containment either way, then the
// closest title above a similarity floor.
func (l *Lookup) matchEntries(title string) []*policy.Entry {
	normalized := NormTitle(title)
	if normalized == "" {
		return nil
	}
	if matches := l.byTitle[normalized]; len(matches) > 0 {
		return matches
	}
	var partial []*policy.Entry
	for key, bucket := range l.byTitle {
		if strings.Contains(key, normalized) || strings.Contains(normalized, key) {
			partial = append(partial, bucket...)
		}
	}
	if len(partial) > 0 {
		return partial
	}
	bestScore := 0.75
	bestKey := ""
	for key := range l.byTitle {
		if score := similarityRatio(normalized, key); score >= bestScore {
			bestScore = score
			bestKey = key
		}
	}
	if bestKey != "" {
		return l.byTitle[bestKey]
	}
	return nil
}

// Match pairs the located entry with its slicing result.
type Match struct {
	Entry  *policy.Entry  `json:"entry"`
	Result *clause.Result `json:"result"`
}

// FindClause resolves a (title, citation) query. The error code is empty
// on a clean hit; a Match may still accompany a code when a lower level
// missed but higher levels resolved.
func (l *Lookup) FindClause(title, clauseText string) (*Match, string) {
	if title == "" {
		return nil, CodeMissingTitle
	}
	ref := clause.Parse(clauseText)
	if ref == nil {
		return nil, CodeInvalidReference
	}
	candidates := l.matchEntries(title)
	if len(candidates) == 0 {
		return nil, CodePolicyNotFound
	}

	var fallback *Match
	fallbackCode := ""
	var last *Match

	for _, entry := range candidates {
		seen := map[string]bool{}
		for _, preference := range clauseTypePreference {
			docs := documentsOfTypes(entry, preference)
			if len(docs) == 0 {
				continue
			}
			signature := docSignature(docs)
			if seen[signature] {
				continue
			}
			seen[signature] = true

			result := l.extractClause(docs, ref)
			last = &Match{Entry: entry, Result: result}
			switch result.Err {
			case clause.ErrArticleNotFound, clause.ErrParagraphNotFound, clause.ErrItemNotFound:
				if fallback == nil {
					fallback = last
					fallbackCode = result.Err
				}
				continue
			}
			if result.BestText() != "" {
				return last, ""
			}
			if fallback == nil {
				fallback = last
				fallbackCode = result.Err
				if fallbackCode == "" {
					fallbackCode = CodeClauseNotFound
				}
			}
		}
		if fallback != nil {
			break
		}
	}
	if fallback != nil {
		return fallback, fallbackCode
	}
	if last != nil {
		code := last.Result.Err
		if code == "" {
			code = CodeClauseNotFound
		}
		return last, code
	}
	return nil, CodeClauseNotFound
}

func documentsOfTypes(entry *policy.Entry, types []string) []*policy.Document {
	var docs []*policy.Document
	for i := range entry.Documents {
		doc := &entry.Documents[i]
		if doc.LocalPath == "" {
			continue
		}
		if types == nil {
			docs = append(docs, doc)
			continue
		}
		docType := strings.ToLower(doc.Type)
		for _, t := range types {
			if docType == t {
				docs = append(docs, doc)
				break
			}
		}
	}
	return docs
}

func docSignature(docs []*policy.Document) string {
	paths := make([]string, len(docs))
	for i, doc := range docs {
		paths[i] = doc.LocalPath
	}
	return strings.Join(paths, "\x00")
}

// extractClause walks the documents in order, slicing the first one whose
// text contains the referenced article.
func (l *Lookup) extractClause(docs []*policy.Document, ref *clause.Reference) *clause.Result {
	lastErr := ""
	for _, doc := range docs {
		path := resolveCandidatePath(doc.LocalPath, l.stateDir)
		if path == "" {
			if lastErr == "" {
				lastErr = CodeDocUnavailable
			}
			continue
		}
		text, docType, code := loadDocumentText(path, strings.ToLower(doc.Type))
		if code != "" || strings.TrimSpace(text) == "" {
			if lastErr == "" {
				if code == "" {
					code = CodeDocUnavailable
				}
				lastErr = code
			}
			continue
		}
		result := clause.Slice(text, ref)
		if result.Err == clause.ErrArticleNotFound {
			if lastErr == "" {
				lastErr = clause.ErrArticleNotFound
			}
			continue
		}
		result.SourcePath = path
		result.DocumentType = docType
		return result
	}
	code := lastErr
	if code == "" {
		code = CodeDocUnavailable
	}
	return &clause.Result{Reference: ref, Err: code}
}

// loadDocumentText decodes one document for clause slicing.
func loadDocumentText(path, declaredType string) (string, string, string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", declaredType, CodeDocUnavailable
	}
	docType := decode.NormalizeType(declaredType, strings.ToLower(filepath.Ext(path)))
	switch docType {
	case "html":
		text, code := decode.HTML(data)
		return text, docType, code
	case "pdf":
		raw, err := decode.PDFText(path)
		if err != nil {
			return "", docType, decode.CodePDFParseError
		}
		return normalize.PDF(raw), docType, ""
	case "docx", "doc", "word":
		if decode.IsZip(data) {
			text, code, _ := decode.Docx(data)
			return text, "docx", code
		}
		if decode.IsOLE(data) {
			if text := decode.LegacyWord(data); text != "" {
				return text, "doc", ""
			}
			return "", "doc", decode.CodeDocBinaryUnsupported
		}
		return decode.Bytes(data), docType, ""
	default:
		return decode.Bytes(data), "text", ""
	}
}
