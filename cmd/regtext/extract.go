package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/policyops/regtext/internal/cli"
	"github.com/policyops/regtext/internal/config"
	"github.com/policyops/regtext/internal/extract"
)

var (
	extractStatePath   string
	extractOutputDir   string
	extractSlug        string
	extractVerifyLocal bool
	extractForce       bool
	extractWorkers     int
	extractSerials     []int
	extractEntryIDs    []string
)

// extractReport is the command's structured output.
type extractReport struct {
	Total       int              `json:"total" yaml:"total"`
	ByStatus    map[string]int   `json:"by_status" yaml:"by_status"`
	RequiresOCR []string         `json:"requires_ocr,omitempty" yaml:"requires_ocr,omitempty"`
	Records     []extract.Record `json:"records" yaml:"records"`
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract text for every entry of a crawler state file",
	Long: `Extract walks each entry's documents in priority order, decodes the
first that yields text, and writes one .txt per entry into the output
directory. Failures leave a .txt.error.json sidecar with the attempt
details instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := loadManager()
		if err != nil {
			return err
		}
		cfg := manager.Get()

		// Batch runs can take a while; config edits retune logging on the fly.
		manager.OnChange(func(updated *config.Config) {
			slog.SetDefault(newLogger(updated))
			slog.Info("configuration reloaded", "log_level", updated.Log.Level)
		})
		manager.WatchConfig()

		state, stateDir, err := loadState(extractStatePath)
		if err != nil {
			return err
		}

		opts := extract.ProcessOptions{
			OutputDir:   extractOutputDir,
			StateDir:    stateDir,
			Slug:        extractSlug,
			VerifyLocal: extractVerifyLocal,
			Force:       extractForce,
			Workers:     extractWorkers,
		}
		if opts.OutputDir == "" {
			opts.OutputDir = cfg.Extract.OutputDir
		}
		if opts.Slug == "" {
			opts.Slug = cfg.Extract.Slug
		}
		if opts.Workers <= 0 {
			opts.Workers = cfg.Extract.Workers
		}
		if len(extractSerials) > 0 {
			opts.Serials = map[int]bool{}
			for _, serial := range extractSerials {
				opts.Serials[serial] = true
			}
		}
		if len(extractEntryIDs) > 0 {
			opts.EntryIDs = map[string]bool{}
			for _, id := range extractEntryIDs {
				opts.EntryIDs[id] = true
			}
		}

		extractor := newExtractor(cfg)
		report, err := extractor.ProcessAll(cmd.Context(), state, opts)
		if err != nil {
			return fmt.Errorf("batch extraction: %w", err)
		}

		out := extractReport{
			Total:    len(report.Records),
			ByStatus: map[string]int{},
			Records:  report.Records,
		}
		for _, record := range report.Records {
			out.ByStatus[record.Status]++
		}
		for _, record := range report.RecordsRequiringOCR() {
			out.RequiresOCR = append(out.RequiresOCR, record.Title)
		}
		return cli.Output(out)
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractStatePath, "state", "", "crawler state JSON file (required)")
	extractCmd.Flags().StringVar(&extractOutputDir, "output-dir", "", "directory for extracted .txt files")
	extractCmd.Flags().StringVar(&extractSlug, "slug", "", "filename prefix for extracted texts")
	extractCmd.Flags().BoolVar(&extractVerifyLocal, "verify-local", false, "skip entries whose text file already exists")
	extractCmd.Flags().BoolVar(&extractForce, "force", false, "re-extract even when a text file exists")
	extractCmd.Flags().IntVar(&extractWorkers, "workers", 0, "concurrent entry workers")
	extractCmd.Flags().IntSliceVar(&extractSerials, "serial", nil, "only process entries with these serial numbers")
	extractCmd.Flags().StringSliceVar(&extractEntryIDs, "entry-id", nil, "only process entries with these identifiers")
	_ = extractCmd.MarkFlagRequired("state")

	rootCmd.AddCommand(extractCmd)
}
