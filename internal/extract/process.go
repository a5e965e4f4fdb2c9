package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/policyops/regtext/internal/policy"
)

// AttemptSummary is the diagnostic row persisted for each attempt.
type AttemptSummary struct {
	Type        string `json:"type,omitempty"`
	Path        string `json:"path"`
	Used        bool   `json:"used"`
	RequiresOCR bool   `json:"requires_ocr"`
	Err         string `json:"error,omitempty"`
	CharCount   int    `json:"char_count,omitempty"`
	OCREngine   string `json:"ocr_engine,omitempty"`
	PageCount   int    `json:"page_count,omitempty"`
}

// Record is one batch result row.
type Record struct {
	EntryIndex  int              `json:"entry_index"`
	Serial      *int             `json:"serial,omitempty"`
	Title       string           `json:"title"`
	TextPath    string           `json:"text_path"`
	Status      string           `json:"status"`
	SourceType  string           `json:"source_type,omitempty"`
	SourcePath  string           `json:"source_path,omitempty"`
	RequiresOCR bool             `json:"requires_ocr"`
	OCREngine   string           `json:"ocr_engine,omitempty"`
	Attempts    []AttemptSummary `json:"attempts,omitempty"`
	Reused      bool             `json:"reused,omitempty"`
	PageCount   int              `json:"page_count,omitempty"`
}

// Report aggregates a batch run.
type Report struct {
	Records []Record `json:"records"`
}

// RecordsRequiringOCR lists the entries whose selected document still
// needs transcription.
func (r *Report) RecordsRequiringOCR() []Record {
	var out []Record
	for _, record := range r.Records {
		if record.RequiresOCR {
			out = append(out, record)
		}
	}
	return out
}

// ProcessOptions configures a batch run.
type ProcessOptions struct {
	OutputDir   string
	StateDir    string
	Slug        string
	VerifyLocal bool
	Force       bool
	Workers     int
	Serials     map[int]bool
	EntryIDs    map[string]bool
}

var unsafeFilenameRe = regexp.MustCompile(`[^0-9A-Za-z\x{4e00}-\x{9fff}_.-]+`)

func safeFilename(value string) string {
	cleaned := unsafeFilenameRe.ReplaceAllString(strings.TrimSpace(value), "_")
	return strings.Trim(cleaned, "_")
}

// textFilename builds the deterministic output name
// <slug>_<serial|entry_N>_000.txt, with a _NN counter appended for
// duplicates. Callers must allocate names sequentially so the counter is
// stable across runs.
func textFilename(entry *policy.Entry, index int, used map[string]int, slug string) string {
	var parts []string
	if slugComponent := safeFilename(slug); slugComponent != "" {
		parts = append(parts, slugComponent)
	}
	if entry.Serial != nil {
		parts = append(parts, fmt.Sprintf("%06d", *entry.Serial))
	} else {
		parts = append(parts, fmt.Sprintf("entry_%06d", index+1))
	}
	parts = append(parts, "000")
	base := strings.Join(parts, "_")
	counter := used[base]
	used[base] = counter + 1
	if counter > 0 {
		base = fmt.Sprintf("%s_%02d", base, counter)
	}
	return base + ".txt"
}

func summarizeAttempts(attempts []*Attempt) []AttemptSummary {
	summaries := make([]AttemptSummary, 0, len(attempts))
	for _, attempt := range attempts {
		summary := AttemptSummary{
			Type:        attempt.Candidate.NormalizedType,
			Path:        attempt.Candidate.Path,
			Used:        attempt.Used,
			RequiresOCR: attempt.RequiresOCR,
			Err:         attempt.Err,
			CharCount:   len([]rune(attempt.Text)),
			OCREngine:   attempt.OCREngine,
			PageCount:   attempt.PageCount,
		}
		if summary.Type == "" {
			summary.Type = attempt.Candidate.DeclaredType
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

type workItem struct {
	index    int
	entry    *policy.Entry
	textPath string
}

// ProcessAll extracts every selected entry of a state file into the output
// directory. Entries run concurrently up to Workers; output filenames are
// allocated sequentially beforehand so concurrency never changes them.
// Failures write a .txt.error.json sidecar and remove any stale text file.
func (e *Extractor) ProcessAll(ctx context.Context, state *policy.State, opts ProcessOptions) (*Report, error) {
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	stateDir := opts.StateDir
	if stateDir == "" {
		stateDir = opts.OutputDir
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	usedNames := map[string]int{}
	var items []workItem
	for index := range state.Entries {
		entry := &state.Entries[index]
		if len(opts.Serials) > 0 {
			if entry.Serial == nil || !opts.Serials[*entry.Serial] {
				continue
			}
		}
		if len(opts.EntryIDs) > 0 {
			if entry.ID == "" {
				// Without an identifier the entry can only pass a serial
				// filter, which it already did above when one was active.
				if len(opts.Serials) == 0 {
					continue
				}
			} else if !opts.EntryIDs[entry.ID] {
				continue
			}
		}
		filename := textFilename(entry, index, usedNames, opts.Slug)
		items = append(items, workItem{
			index:    index,
			entry:    entry,
			textPath: filepath.Join(opts.OutputDir, filename),
		})
	}

	records := make([]Record, len(items))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for slot, item := range items {
		slot, item := slot, item
		group.Go(func() error {
			record, err := e.processEntry(groupCtx, item, stateDir, opts)
			if err != nil {
				return err
			}
			records[slot] = record
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return &Report{Records: records}, nil
}

func (e *Extractor) processEntry(ctx context.Context, item workItem, stateDir string, opts ProcessOptions) (Record, error) {
	logger := e.logger().With("entry", item.entry.Identifier(item.index), "title", item.entry.Title)

	if opts.VerifyLocal && !opts.Force {
		if _, err := os.Stat(item.textPath); err == nil {
			logger.Debug("existing text verified, skipping extraction", "path", item.textPath)
			return Record{
				EntryIndex: item.index,
				Serial:     item.entry.Serial,
				Title:      item.entry.Title,
				TextPath:   item.textPath,
				Status:     StatusSuccess,
				Reused:     true,
			}, nil
		}
	}

	extraction := e.ExtractEntry(ctx, item.entry, stateDir)
	record := Record{
		EntryIndex:  item.index,
		Serial:      item.entry.Serial,
		Title:       item.entry.Title,
		TextPath:    item.textPath,
		Status:      extraction.Status,
		RequiresOCR: extraction.RequiresOCR,
		Attempts:    summarizeAttempts(extraction.Attempts),
	}
	if selected := extraction.Selected; selected != nil {
		record.SourceType = selected.Candidate.NormalizedType
		if record.SourceType == "" {
			record.SourceType = selected.Candidate.DeclaredType
		}
		record.SourcePath = selected.Candidate.Path
		record.OCREngine = selected.OCREngine
		record.PageCount = selected.PageCount
	}

	errorPath := item.textPath + ".error.json"
	if extraction.Status == StatusSuccess {
		if err := os.WriteFile(item.textPath, []byte(extraction.Text), 0o644); err != nil {
			return record, fmt.Errorf("write text for entry %d: %w", item.index, err)
		}
		os.Remove(errorPath)
		logger.Info("extracted entry text",
			"status", record.Status,
			"source_type", record.SourceType,
			"path", item.textPath)
	} else {
		os.Remove(item.textPath)
		if err := writeErrorSidecar(errorPath, record); err != nil {
			logger.Warn("failed to write error sidecar", "path", errorPath, "error", err)
		}
		logger.Warn("entry extraction did not produce text",
			"status", record.Status,
			"requires_ocr", record.RequiresOCR)
	}
	return record, nil
}

func writeErrorSidecar(path string, record Record) error {
	payload := struct {
		EntryIndex  int              `json:"entry_index"`
		Serial      *int             `json:"serial,omitempty"`
		Title       string           `json:"title"`
		Status      string           `json:"status"`
		RequiresOCR bool             `json:"requires_ocr"`
		SourceType  string           `json:"source_type,omitempty"`
		SourcePath  string           `json:"source_path,omitempty"`
		Attempts    []AttemptSummary `json:"attempts,omitempty"`
	}{
		EntryIndex:  record.EntryIndex,
		Serial:      record.Serial,
		Title:       record.Title,
		Status:      record.Status,
		RequiresOCR: record.RequiresOCR,
		SourceType:  record.SourceType,
		SourcePath:  record.SourcePath,
		Attempts:    record.Attempts,
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
