package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/policyops/regtext/internal/ocr"
	"github.com/policyops/regtext/internal/policy"
)

// buildPDFFile writes a minimal uncompressed PDF with one page per entry of
// pageTexts; an empty string yields a page without text operators.
func buildPDFFile(t *testing.T, dir, name string, pageTexts []string) string {
	t.Helper()

	kids := make([]string, 0, len(pageTexts))
	for i := range pageTexts {
		kids = append(kids, fmt.Sprintf("%d 0 R", 4+2*i))
	}
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pageTexts)),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}
	for i, text := range pageTexts {
		objects = append(objects, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			5+2*i,
		))
		stream := ""
		if text != "" {
			stream = "BT\n/F1 12 Tf\n(" + text + ") Tj\nET"
		}
		objects = append(objects, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, body := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}
	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, offset := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offset)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xrefOffset)

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// fakeRenderer serves pre-baked PNG bytes and records which page indices
// the engine asked for.
type fakeRenderer struct {
	pages     map[int][]byte
	requested [][]int
}

func (f *fakeRenderer) RenderPages(ctx context.Context, pdfPath string, indices []int, dpi, maxPages int) ([]ocr.RenderedPage, error) {
	f.requested = append(f.requested, indices)
	var targets []int
	if indices == nil {
		for index := range f.pages {
			targets = append(targets, index)
		}
	} else {
		for _, index := range indices {
			if _, ok := f.pages[index]; ok {
				targets = append(targets, index)
			}
		}
	}
	sort.Ints(targets)
	var rendered []ocr.RenderedPage
	for _, index := range targets {
		rendered = append(rendered, ocr.RenderedPage{Index: index, PNG: f.pages[index]})
	}
	return rendered, nil
}

func testOCREngine(t *testing.T, renderer ocr.PageRenderer, transcription string) *ocr.Engine {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": transcription}},
			},
		})
	}))
	t.Cleanup(server.Close)
	return ocr.NewEngine(ocr.Config{
		APIKey:  "test-key",
		APIBase: server.URL,
		Model:   "vision-model",
	}, renderer, nil)
}

func pdfEntry(title string) *policy.Entry {
	return &policy.Entry{
		Title: title,
		Documents: []policy.Document{
			{Type: "pdf", LocalPath: "scan.pdf"},
		},
	}
}

func TestExtractEntryPDFNoTextLayerWithoutOCR(t *testing.T) {
	dir := t.TempDir()
	buildPDFFile(t, dir, "scan.pdf", []string{""})

	extractor := &Extractor{}
	result := extractor.ExtractEntry(context.Background(), pdfEntry("扫描版管理办法"), dir)

	if result.Status != StatusNeedsOCR {
		t.Errorf("status = %q, want %q", result.Status, StatusNeedsOCR)
	}
	if result.Selected == nil {
		t.Fatal("expected a selected attempt")
	}
	if result.Selected.Err != ocr.CodeNotConfigured {
		t.Errorf("error = %q, want %q", result.Selected.Err, ocr.CodeNotConfigured)
	}
	if !result.Selected.RequiresOCR || !result.RequiresOCR {
		t.Error("a textless pdf must be flagged as requiring ocr")
	}
	if result.Selected.PageCount != 1 {
		t.Errorf("page count = %d", result.Selected.PageCount)
	}
}

func TestExtractEntryPDFNoTextLayerTranscribed(t *testing.T) {
	dir := t.TempDir()
	buildPDFFile(t, dir, "scan.pdf", []string{""})

	renderer := &fakeRenderer{pages: map[int][]byte{0: []byte("png-page-0")}}
	extractor := &Extractor{OCR: testOCREngine(t, renderer, "第一条 为了规范扫描件处理。")}
	result := extractor.ExtractEntry(context.Background(), pdfEntry("扫描版管理办法"), dir)

	if result.Status != StatusSuccess {
		t.Fatalf("status = %q, attempts = %+v", result.Status, result.Attempts)
	}
	if !strings.Contains(result.Text, "第一条 为了规范扫描件处理。") {
		t.Errorf("text = %q", result.Text)
	}
	if result.Selected.OCREngine != "vision-model" {
		t.Errorf("engine = %q", result.Selected.OCREngine)
	}
	// All pages were requested, not a subset.
	if len(renderer.requested) != 1 || renderer.requested[0] != nil {
		t.Errorf("requested = %v", renderer.requested)
	}
}

func TestExtractEntryPDFSparsePageTranscribed(t *testing.T) {
	dir := t.TempDir()
	buildPDFFile(t, dir, "scan.pdf", []string{
		"Article one of this regulation carries plenty of extractable body text.",
		"",
	})

	renderer := &fakeRenderer{pages: map[int][]byte{1: []byte("png-page-1")}}
	extractor := &Extractor{OCR: testOCREngine(t, renderer, "第二页的补充内容。")}
	result := extractor.ExtractEntry(context.Background(), pdfEntry("扫描版管理办法"), dir)

	if result.Status != StatusSuccess {
		t.Fatalf("status = %q", result.Status)
	}
	if result.Selected.Err != "" {
		t.Errorf("error = %q", result.Selected.Err)
	}
	if !strings.Contains(result.Text, "extractable body text") ||
		!strings.Contains(result.Text, "第二页的补充内容。") {
		t.Errorf("text = %q", result.Text)
	}
	if len(renderer.requested) != 1 || len(renderer.requested[0]) != 1 || renderer.requested[0][0] != 1 {
		t.Errorf("only the sparse page should be transcribed, requested = %v", renderer.requested)
	}
	if result.Selected.PageCount != 2 {
		t.Errorf("page count = %d", result.Selected.PageCount)
	}
}

func TestExtractEntryPDFSparsePageWithoutOCR(t *testing.T) {
	dir := t.TempDir()
	buildPDFFile(t, dir, "scan.pdf", []string{
		"Article one of this regulation carries plenty of extractable body text.",
		"",
	})

	extractor := &Extractor{}
	result := extractor.ExtractEntry(context.Background(), pdfEntry("扫描版管理办法"), dir)

	if result.Status != StatusNeedsOCR {
		t.Errorf("status = %q, want %q", result.Status, StatusNeedsOCR)
	}
	if result.Selected.Err != ocr.CodeNotConfigured {
		t.Errorf("error = %q", result.Selected.Err)
	}
	// The readable page survives even though the sparse one is pending.
	if !strings.Contains(result.Selected.Text, "extractable body text") {
		t.Errorf("text = %q", result.Selected.Text)
	}
}

func TestExtractEntryPDFPartialTranscription(t *testing.T) {
	dir := t.TempDir()
	buildPDFFile(t, dir, "scan.pdf", []string{
		"Article one of this regulation carries plenty of extractable body text.",
		"",
		"",
	})

	// Page 2 never renders, so only page 1 of the two sparse pages comes back.
	renderer := &fakeRenderer{pages: map[int][]byte{1: []byte("png-page-1")}}
	extractor := &Extractor{OCR: testOCREngine(t, renderer, "第二页的补充内容。")}
	result := extractor.ExtractEntry(context.Background(), pdfEntry("扫描版管理办法"), dir)

	if result.Status != StatusNeedsOCR {
		t.Errorf("status = %q, want %q", result.Status, StatusNeedsOCR)
	}
	if result.Selected.Err != ocr.CodePartial {
		t.Errorf("error = %q, want %q", result.Selected.Err, ocr.CodePartial)
	}
	if !result.Selected.RequiresOCR {
		t.Error("missing pages must keep the ocr flag set")
	}
	if !strings.Contains(result.Selected.Text, "第二页的补充内容。") {
		t.Errorf("transcribed page missing from text: %q", result.Selected.Text)
	}
}

func TestExtractEntryPDFMissingExpectedCJK(t *testing.T) {
	dir := t.TempDir()
	buildPDFFile(t, dir, "scan.pdf", []string{
		"This text layer is garbage for a Chinese regulation and has no hanzi.",
	})

	extractor := &Extractor{}
	result := extractor.ExtractEntry(context.Background(), pdfEntry("反洗钱管理办法"), dir)

	if result.Status != StatusNeedsOCR {
		t.Errorf("status = %q, want %q", result.Status, StatusNeedsOCR)
	}
	if result.Selected.Err != ocr.CodeNotConfigured {
		t.Errorf("error = %q", result.Selected.Err)
	}
}
