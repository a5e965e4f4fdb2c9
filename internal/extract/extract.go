package extract

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/policyops/regtext/internal/decode"
	"github.com/policyops/regtext/internal/normalize"
	"github.com/policyops/regtext/internal/ocr"
	"github.com/policyops/regtext/internal/policy"
)

// Entry extraction statuses.
const (
	StatusNoSource = "no_source"
	StatusSuccess  = "success"
	StatusEmpty    = "empty"
	StatusError    = "error"
	StatusNeedsOCR = "needs_ocr"
)

// Tunable thresholds for deciding when a PDF text layer is unusable.
const (
	// MinPageChars is the per-page character density below which a page is
	// treated as scanned, provided some other page is confidently textual.
	MinPageChars = 12

	// MinExpectedCJKChars is the floor of CJK characters expected from a
	// document whose title is CJK; below it the whole text layer is suspect.
	MinExpectedCJKChars = 5
)

// Attempt records one candidate's extraction try. Err is an error code
// string; Text may be non-empty even alongside a code (partial OCR).
type Attempt struct {
	Candidate   *Candidate
	Text        string
	Err         string
	RequiresOCR bool
	Used        bool
	OCREngine   string
	PageCount   int
}

// EntryExtraction is the outcome for one entry: every attempt made, the
// selected one, and the derived status.
type EntryExtraction struct {
	Entry       *policy.Entry
	Attempts    []*Attempt
	Selected    *Attempt
	Text        string
	Status      string
	RequiresOCR bool
}

// Extractor walks an entry's candidates best-first and decodes the first
// one that yields text. OCR may be nil; PDF attempts then record
// ocr_not_configured instead of transcribing.
type Extractor struct {
	OCR    *ocr.Engine
	Logger *slog.Logger
}

func (e *Extractor) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// ExtractEntry tries candidates in priority order until one produces
// non-blank text. All attempts are retained for diagnostics.
func (e *Extractor) ExtractEntry(ctx context.Context, entry *policy.Entry, stateDir string) *EntryExtraction {
	candidates := BuildCandidates(entry, stateDir)
	if len(candidates) == 0 {
		return &EntryExtraction{Entry: entry, Status: StatusNoSource}
	}

	var attempts []*Attempt
	var selected, fallback *Attempt
	requiresOCR := false

	for _, candidate := range candidates {
		attempt := e.attemptExtract(ctx, candidate, entry.Title)
		attempts = append(attempts, attempt)
		if candidate.NormalizedType == "pdf" && attempt.RequiresOCR {
			requiresOCR = true
		}
		if strings.TrimSpace(attempt.Text) != "" {
			attempt.Used = true
			selected = attempt
			break
		}
		if fallback == nil {
			fallback = attempt
		}
	}
	if selected == nil && fallback != nil {
		fallback.Used = true
		selected = fallback
	}
	if selected == nil && len(attempts) > 0 {
		attempts[0].Used = true
		selected = attempts[0]
	}

	text := ""
	if selected != nil {
		text = selected.Text
	}
	stripped := strings.TrimSpace(text)

	var status string
	switch {
	case selected == nil:
		status = StatusNoSource
	case selected.Err != "" && selected.RequiresOCR && (selected.Candidate.NormalizedType == "pdf" || requiresOCR):
		status = StatusNeedsOCR
	case selected.Err != "":
		status = StatusError
	case stripped != "":
		status = StatusSuccess
	case selected.RequiresOCR && (selected.Candidate.NormalizedType == "pdf" || requiresOCR):
		status = StatusNeedsOCR
	default:
		status = StatusEmpty
	}

	return &EntryExtraction{
		Entry:       entry,
		Attempts:    attempts,
		Selected:    selected,
		Text:        text,
		Status:      status,
		RequiresOCR: requiresOCR,
	}
}

// attemptExtract decodes a single candidate according to its (sniffed)
// type. A ".doc" that is really a zip archive is corrected to docx in
// place so the attempt reports what was actually decoded.
func (e *Extractor) attemptExtract(ctx context.Context, candidate *Candidate, entryTitle string) *Attempt {
	data, err := os.ReadFile(candidate.Path)
	if err != nil {
		return &Attempt{Candidate: candidate, Err: decode.CodeFileMissing}
	}

	normalized := candidate.NormalizedType
	if normalized == "" {
		normalized = strings.TrimPrefix(strings.ToLower(filepath.Ext(candidate.Path)), ".")
	}
	if normalized != "docx" && decode.IsZip(data) && decode.IsDocxArchive(data) {
		normalized = "docx"
		candidate.NormalizedType = "docx"
	}

	switch normalized {
	case "docx":
		text, code, pages := decode.Docx(data)
		return &Attempt{Candidate: candidate, Text: text, Err: code, PageCount: pages}
	case "doc", "word":
		return e.attemptLegacyWord(candidate, data)
	case "html":
		text, code := decode.HTML(data)
		return &Attempt{Candidate: candidate, Text: text, Err: code}
	case "pdf":
		return e.attemptPDF(ctx, candidate, entryTitle)
	default:
		text, code := decode.Text(data)
		return &Attempt{Candidate: candidate, Text: text, Err: code}
	}
}

// attemptLegacyWord handles .doc/.wps files. OLE compound documents first
// look for a converted sibling ("file.docx" saved next to "file.doc"),
// then fall back to raw UTF-16 stream recovery.
func (e *Extractor) attemptLegacyWord(candidate *Candidate, data []byte) *Attempt {
	if !decode.IsOLE(data) {
		text, code := decode.Text(data)
		if code != "" {
			return &Attempt{Candidate: candidate, Err: decode.CodeDocEmpty}
		}
		return &Attempt{Candidate: candidate, Text: text}
	}

	siblings := []string{candidate.Path + "x"}
	withSuffix := strings.TrimSuffix(candidate.Path, filepath.Ext(candidate.Path)) + ".docx"
	if withSuffix != siblings[0] {
		siblings = append(siblings, withSuffix)
	}
	for _, altPath := range siblings {
		altData, err := os.ReadFile(altPath)
		if err != nil {
			continue
		}
		text, code, pages := decode.Docx(altData)
		candidate.Path = altPath
		candidate.NormalizedType = "docx"
		return &Attempt{Candidate: candidate, Text: text, Err: code, PageCount: pages}
	}

	if text := decode.LegacyWord(data); text != "" {
		return &Attempt{Candidate: candidate, Text: text}
	}
	return &Attempt{Candidate: candidate, Err: decode.CodeDocBinaryUnsupported}
}

// attemptPDF extracts the PDF text layer and escalates to OCR when the
// layer is missing, sparse on specific pages, or empty of expected CJK.
func (e *Extractor) attemptPDF(ctx context.Context, candidate *Candidate, entryTitle string) *Attempt {
	pages, err := decode.PDFPages(candidate.Path)
	if err != nil {
		return &Attempt{Candidate: candidate, Err: decode.CodePDFParseError}
	}
	pageCount := len(pages)
	if physical, err := decode.PDFPageCount(candidate.Path); err == nil && physical > 0 {
		pageCount = physical
	}
	for len(pages) < pageCount {
		pages = append(pages, "")
	}
	rawText := strings.Join(pages, "\f")

	if strings.TrimSpace(rawText) == "" {
		// No text layer at all: transcribe the whole document.
		result := e.runOCR(ctx, candidate.Path, nil)
		if result.Text != "" {
			return &Attempt{
				Candidate: candidate,
				Text:      normalize.PDF(result.Text),
				OCREngine: result.Engine,
				PageCount: pageCount,
			}
		}
		return &Attempt{
			Candidate:   candidate,
			Text:        rawText,
			Err:         result.Code,
			RequiresOCR: true,
			OCREngine:   result.Engine,
			PageCount:   pageCount,
		}
	}

	normalizedText := normalize.PDF(rawText)

	densities := make([]int, len(pages))
	hasConfidentPage := false
	for i, page := range pages {
		densities[i] = normalize.PageDensity(page)
		if densities[i] >= MinPageChars {
			hasConfidentPage = true
		}
	}
	var pagesToOCR []int
	if hasConfidentPage {
		for i, density := range densities {
			if density < MinPageChars {
				pagesToOCR = append(pagesToOCR, i)
			}
		}
	}

	if len(pagesToOCR) > 0 {
		result := e.runOCR(ctx, candidate.Path, pagesToOCR)
		if len(result.Pages) > 0 {
			merged := mergeOCRPages(pages, result.Pages, pageCount)
			normalizedText = normalize.PDF(strings.Join(merged, "\f"))
			missing := false
			for _, index := range pagesToOCR {
				if _, ok := result.Pages[index]; !ok {
					missing = true
					break
				}
			}
			code := ""
			if missing {
				code = result.Code
				if code == "" {
					code = ocr.CodePartial
				}
			}
			return &Attempt{
				Candidate:   candidate,
				Text:        normalizedText,
				Err:         code,
				RequiresOCR: missing,
				OCREngine:   result.Engine,
				PageCount:   pageCount,
			}
		}
		return &Attempt{
			Candidate:   candidate,
			Text:        normalizedText,
			Err:         result.Code,
			RequiresOCR: true,
			OCREngine:   result.Engine,
			PageCount:   pageCount,
		}
	}

	if normalize.LacksExpectedCJK(normalizedText, entryTitle, MinExpectedCJKChars) {
		result := e.runOCR(ctx, candidate.Path, nil)
		if result.Text != "" {
			return &Attempt{
				Candidate: candidate,
				Text:      normalize.PDF(result.Text),
				OCREngine: result.Engine,
				PageCount: pageCount,
			}
		}
		return &Attempt{
			Candidate:   candidate,
			Err:         result.Code,
			RequiresOCR: true,
			OCREngine:   result.Engine,
			PageCount:   pageCount,
		}
	}

	return &Attempt{Candidate: candidate, Text: normalizedText, PageCount: pageCount}
}

func (e *Extractor) runOCR(ctx context.Context, path string, indices []int) ocr.DocumentResult {
	if e.OCR == nil {
		return ocr.DocumentResult{Code: ocr.CodeNotConfigured}
	}
	e.logger().Info("running remote ocr", "path", path, "pages", len(indices))
	return e.OCR.Document(ctx, path, indices)
}

// mergeOCRPages overlays transcribed fragments onto the page sequence,
// growing it to the physical page count so indexes line up.
func mergeOCRPages(existing []string, ocrPages map[int]string, totalPages int) []string {
	merged := make([]string, len(existing))
	copy(merged, existing)
	required := len(merged)
	for index := range ocrPages {
		if index+1 > required {
			required = index + 1
		}
	}
	if totalPages > required {
		required = totalPages
	}
	for len(merged) < required {
		merged = append(merged, "")
	}
	for index, text := range ocrPages {
		if index < 0 {
			continue
		}
		normalized := strings.ReplaceAll(text, "\r\n", "\n")
		normalized = strings.ReplaceAll(normalized, "\r", "\n")
		merged[index] = strings.TrimSpace(normalized)
	}
	return merged
}
