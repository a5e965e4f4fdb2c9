package ocr

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
)

// PageRenderer rasterizes PDF pages for transcription. Page indices are
// zero-based throughout the package.
type PageRenderer interface {
	// RenderPages renders the requested pages as PNG bytes, or all pages
	// when indices is nil, capped at maxPages. Pages that fail to render
	// are skipped, not fatal.
	RenderPages(ctx context.Context, pdfPath string, indices []int, dpi, maxPages int) ([]RenderedPage, error)
}

// RenderedPage is one rasterized page keyed by its zero-based index.
type RenderedPage struct {
	Index int
	PNG   []byte
}

// PopplerRenderer renders pages by shelling out to pdftoppm
// (poppler-utils).
type PopplerRenderer struct {
	// PageCount reports the document's physical page count, used to bound
	// the render loop when all pages were requested.
	PageCount func(path string) (int, error)
}

// RenderPages renders each requested page with a separate pdftoppm call.
func (r *PopplerRenderer) RenderPages(ctx context.Context, pdfPath string, indices []int, dpi, maxPages int) ([]RenderedPage, error) {
	total, err := r.PageCount(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("determine page count: %w", err)
	}

	var targets []int
	if indices == nil {
		for i := 0; i < total; i++ {
			targets = append(targets, i)
		}
	} else {
		seen := map[int]bool{}
		for _, index := range indices {
			if index >= 0 && index < total && !seen[index] {
				seen[index] = true
				targets = append(targets, index)
			}
		}
		sort.Ints(targets)
	}

	var rendered []RenderedPage
	for _, index := range targets {
		if len(rendered) >= maxPages {
			break
		}
		png, err := renderPage(ctx, pdfPath, index, dpi)
		if err != nil {
			continue
		}
		rendered = append(rendered, RenderedPage{Index: index, PNG: png})
	}
	return rendered, nil
}

// renderPage renders one zero-based page to PNG via pdftoppm.
func renderPage(ctx context.Context, pdfPath string, index, dpi int) ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "regtext-page-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	outputPrefix := filepath.Join(tmpDir, "page")

	// -f/-l select a single 1-based page; -singlefile drops the numeric
	// suffix so the output path is predictable.
	pageStr := strconv.Itoa(index + 1)
	cmd := exec.CommandContext(ctx, "pdftoppm",
		"-png",
		"-f", pageStr,
		"-l", pageStr,
		"-r", strconv.Itoa(dpi),
		"-singlefile",
		pdfPath,
		outputPrefix,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm page %s: %w (%s)", pageStr, err, output)
	}

	png, err := os.ReadFile(outputPrefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("read rendered page: %w", err)
	}
	return png, nil
}
