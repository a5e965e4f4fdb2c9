package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/policyops/regtext/internal/policy"
)

func buildDocxFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	f, err := writer.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	xml := `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>` +
		body + `</w:t></w:r></w:p></w:body></w:document>`
	if _, err := f.Write([]byte(xml)); err != nil {
		t.Fatal(err)
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtractEntryDocxSuccess(t *testing.T) {
	dir := t.TempDir()
	buildDocxFile(t, dir, "body.docx", "第一条 为了规范活动。")

	entry := &policy.Entry{
		Title: "管理办法",
		Documents: []policy.Document{
			{Type: "docx", Title: "管理办法", LocalPath: "body.docx"},
		},
	}
	extractor := &Extractor{}
	result := extractor.ExtractEntry(context.Background(), entry, dir)
	if result.Status != StatusSuccess {
		t.Fatalf("status = %q", result.Status)
	}
	if result.Text != "第一条 为了规范活动。" {
		t.Errorf("text = %q", result.Text)
	}
	if result.Selected == nil || !result.Selected.Used {
		t.Error("selected attempt not marked used")
	}
}

func TestExtractEntryNoSource(t *testing.T) {
	entry := &policy.Entry{Title: "没有附件的公告"}
	extractor := &Extractor{}
	result := extractor.ExtractEntry(context.Background(), entry, t.TempDir())
	if result.Status != StatusNoSource {
		t.Errorf("status = %q, want %q", result.Status, StatusNoSource)
	}
}

func TestExtractEntryFallsThroughToNextCandidate(t *testing.T) {
	dir := t.TempDir()
	// The docx is empty; the plain-text fallback carries the body.
	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	f, _ := writer.Create("word/document.xml")
	_, _ = f.Write([]byte(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body/></w:document>`))
	_ = writer.Close()
	if err := os.WriteFile(filepath.Join(dir, "empty.docx"), buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "body.txt"), []byte("纯文本正文。"), 0o644); err != nil {
		t.Fatal(err)
	}

	entry := &policy.Entry{
		Title: "管理办法",
		Documents: []policy.Document{
			{Type: "docx", Title: "管理办法", LocalPath: "empty.docx"},
			{Type: "text", Title: "管理办法", LocalPath: "body.txt"},
		},
	}
	extractor := &Extractor{}
	result := extractor.ExtractEntry(context.Background(), entry, dir)
	if result.Status != StatusSuccess {
		t.Fatalf("status = %q", result.Status)
	}
	if result.Text != "纯文本正文。" {
		t.Errorf("text = %q", result.Text)
	}
	if len(result.Attempts) != 2 {
		t.Errorf("got %d attempts, want 2", len(result.Attempts))
	}
}

func TestExtractEntryMislabelledDocx(t *testing.T) {
	dir := t.TempDir()
	// A zip archive saved with a .doc name decodes as docx.
	path := buildDocxFile(t, dir, "body.doc", "第一条 内容。")

	entry := &policy.Entry{
		Title: "管理办法",
		Documents: []policy.Document{
			{Type: "doc", Title: "管理办法", LocalPath: filepath.Base(path)},
		},
	}
	extractor := &Extractor{}
	result := extractor.ExtractEntry(context.Background(), entry, dir)
	if result.Status != StatusSuccess {
		t.Fatalf("status = %q", result.Status)
	}
	if result.Selected.Candidate.NormalizedType != "docx" {
		t.Errorf("type not corrected: %q", result.Selected.Candidate.NormalizedType)
	}
}

func TestExtractEntryLegacyDocSibling(t *testing.T) {
	dir := t.TempDir()
	// OLE .doc with a converted .docx sibling saved next to it.
	oleData := append([]byte{0xd0, 0xcf, 0x11, 0xe0, 0xa1, 0xb1, 0x1a, 0xe1}, make([]byte, 64)...)
	if err := os.WriteFile(filepath.Join(dir, "old.doc"), oleData, 0o644); err != nil {
		t.Fatal(err)
	}
	buildDocxFile(t, dir, "old.docx", "转换后的正文。")

	entry := &policy.Entry{
		Title: "管理办法",
		Documents: []policy.Document{
			{Type: "doc", Title: "管理办法", LocalPath: "old.doc"},
		},
	}
	extractor := &Extractor{}
	result := extractor.ExtractEntry(context.Background(), entry, dir)
	if result.Status != StatusSuccess {
		t.Fatalf("status = %q", result.Status)
	}
	if result.Text != "转换后的正文。" {
		t.Errorf("text = %q", result.Text)
	}
}

func TestMergeOCRPages(t *testing.T) {
	existing := []string{"第一页原文", "", "第三页原文"}
	merged := mergeOCRPages(existing, map[int]string{1: "第二页转写\r\n结果", 4: "第五页"}, 5)
	if len(merged) != 5 {
		t.Fatalf("got %d pages, want 5", len(merged))
	}
	if merged[1] != "第二页转写\n结果" {
		t.Errorf("page 1 = %q", merged[1])
	}
	if merged[0] != "第一页原文" || merged[2] != "第三页原文" {
		t.Error("existing pages must be preserved")
	}
	if merged[4] != "第五页" {
		t.Errorf("page 4 = %q", merged[4])
	}
}
