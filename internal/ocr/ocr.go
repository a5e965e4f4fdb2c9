package ocr

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DocumentResult is the outcome of transcribing a document. Pages holds the
// per-page fragments by zero-based index; Text is the fragments joined in
// index order. Code is empty on full success.
type DocumentResult struct {
	Text   string
	Pages  map[int]string
	Code   string
	Engine string
}

// Engine drives page rendering and transcription for whole documents. A nil
// *Engine is valid and reports ocr_not_configured, mirroring a deployment
// without OCR credentials.
type Engine struct {
	client   *Client
	renderer PageRenderer
	cfg      Config
	logger   *slog.Logger
}

// NewEngine wires a transcription client to a page renderer.
func NewEngine(cfg Config, renderer PageRenderer, logger *slog.Logger) *Engine {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		client:   NewClient(cfg, logger),
		renderer: renderer,
		cfg:      cfg,
		logger:   logger,
	}
}

// Model returns the configured model identifier, or "" when disabled.
func (e *Engine) Model() string {
	if e == nil {
		return ""
	}
	return e.cfg.Model
}

// Document transcribes the given pages of a PDF (all pages when indices is
// nil). Page calls run concurrently up to the worker limit; a page that
// fails after retries is simply absent from Pages.
func (e *Engine) Document(ctx context.Context, pdfPath string, indices []int) DocumentResult {
	if e == nil {
		return DocumentResult{Code: CodeNotConfigured}
	}

	rendered, err := e.renderer.RenderPages(ctx, pdfPath, indices, e.cfg.RenderDPI, e.cfg.MaxPages)
	if err != nil || len(rendered) == 0 {
		if err != nil {
			e.logger.Warn("page rendering unavailable", "path", pdfPath, "error", err)
		}
		return DocumentResult{Code: CodeRenderUnavailable, Engine: e.cfg.Model}
	}

	fragments := make(map[int]string, len(rendered))
	var mu sync.Mutex

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(e.cfg.MaxWorkers)
	for _, page := range rendered {
		page := page
		group.Go(func() error {
			text, err := e.client.TranscribePage(groupCtx, page.PNG, page.Index)
			if err != nil {
				e.logger.Warn("ocr failed after retries", "path", pdfPath, "page", page.Index+1, "error", err)
				return nil
			}
			mu.Lock()
			fragments[page.Index] = strings.TrimSpace(text)
			mu.Unlock()
			return nil
		})
	}
	// Workers only return nil; the group is for the concurrency limit.
	_ = group.Wait()

	var ordered []string
	indexes := make([]int, 0, len(fragments))
	for index := range fragments {
		indexes = append(indexes, index)
	}
	sort.Ints(indexes)
	for _, index := range indexes {
		if fragment := fragments[index]; fragment != "" {
			ordered = append(ordered, fragment)
		}
	}
	combined := strings.TrimSpace(strings.Join(ordered, "\n\n"))
	if combined == "" {
		return DocumentResult{Code: CodeNoText, Engine: e.cfg.Model}
	}
	return DocumentResult{Text: combined, Pages: fragments, Engine: e.cfg.Model}
}
