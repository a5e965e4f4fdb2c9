package ocr

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type stubRenderer struct {
	pages []RenderedPage
	err   error
}

func (s *stubRenderer) RenderPages(ctx context.Context, pdfPath string, indices []int, dpi, maxPages int) ([]RenderedPage, error) {
	return s.pages, s.err
}

func TestEngineDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Messages []struct {
				Content json.RawMessage `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		// Echo the page image marker back so pages stay distinguishable.
		text := "页面内容"
		if strings.Contains(string(payload.Messages[1].Content), "cGFnZS0x") { // base64("page-1")
			text = "第二页内容"
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": text}},
			},
		})
	}))
	defer server.Close()

	renderer := &stubRenderer{pages: []RenderedPage{
		{Index: 0, PNG: []byte("page-0")},
		{Index: 1, PNG: []byte("page-1")},
	}}
	engine := NewEngine(testConfig(server.URL), renderer, nil)
	result := engine.Document(context.Background(), "doc.pdf", nil)
	if result.Code != "" {
		t.Fatalf("code = %q", result.Code)
	}
	if len(result.Pages) != 2 {
		t.Fatalf("pages = %v", result.Pages)
	}
	if result.Pages[1] != "第二页内容" {
		t.Errorf("page 1 = %q", result.Pages[1])
	}
	if !strings.Contains(result.Text, "页面内容") || !strings.Contains(result.Text, "第二页内容") {
		t.Errorf("text = %q", result.Text)
	}
	if result.Engine != "vision-model" {
		t.Errorf("engine = %q", result.Engine)
	}
}

func TestEngineDocumentRenderUnavailable(t *testing.T) {
	engine := NewEngine(testConfig("http://unused"), &stubRenderer{err: errors.New("pdftoppm not installed")}, nil)
	result := engine.Document(context.Background(), "doc.pdf", nil)
	if result.Code != CodeRenderUnavailable {
		t.Errorf("code = %q, want %q", result.Code, CodeRenderUnavailable)
	}
}

func TestEngineDocumentFailedPagesAbsent(t *testing.T) {
	// Page 1 always errors; it must be missing from Pages while page 0
	// still transcribes.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		if strings.Contains(string(raw), "cGFnZS0x") {
			http.Error(w, "bad page", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "仅有的一页"}},
			},
		})
	}))
	defer server.Close()

	renderer := &stubRenderer{pages: []RenderedPage{
		{Index: 0, PNG: []byte("page-0")},
		{Index: 1, PNG: []byte("page-1")},
	}}
	engine := NewEngine(testConfig(server.URL), renderer, nil)
	result := engine.Document(context.Background(), "doc.pdf", nil)
	if result.Code != "" {
		t.Fatalf("code = %q", result.Code)
	}
	if _, ok := result.Pages[1]; ok {
		t.Error("failed page should be absent from Pages")
	}
	if result.Pages[0] != "仅有的一页" {
		t.Errorf("page 0 = %q", result.Pages[0])
	}
}
