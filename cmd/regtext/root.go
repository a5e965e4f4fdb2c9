package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/policyops/regtext/internal/cli"
	"github.com/policyops/regtext/internal/config"
	"github.com/policyops/regtext/internal/decode"
	"github.com/policyops/regtext/internal/extract"
	"github.com/policyops/regtext/internal/ocr"
	"github.com/policyops/regtext/internal/policy"
	"github.com/policyops/regtext/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "regtext",
	Short: "Extract and address text from crawled regulatory documents",
	Long: `Regtext turns the documents collected by a policy crawler into clean
plain text and answers clause citations against them.

It decodes DOCX, legacy DOC, HTML, PDF, and plain-text sources, falls
back to remote OCR for scanned PDFs, and slices Chinese legal texts by
article, paragraph, and item references such as 第三条第一款（二）项.`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.regtext/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "regtext home directory (default: ~/.regtext)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		cli.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}

// loadManager loads configuration and installs the slog default logger.
func loadManager() (*config.Manager, error) {
	manager, err := config.NewManager(cfgFile)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(newLogger(manager.Get()))
	return manager, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(cfg.Log.Format) == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// newExtractor builds an extractor with OCR enabled when credentials are
// configured. Logger is left nil so the extractor follows the process
// default, which a config reload may swap mid-run.
func newExtractor(cfg *config.Config) *extract.Extractor {
	extractor := &extract.Extractor{}
	if ocrCfg := cfg.ToOCRConfig(); ocrCfg != nil {
		renderer := &ocr.PopplerRenderer{PageCount: decode.PDFPageCount}
		extractor.OCR = ocr.NewEngine(*ocrCfg, renderer, slog.Default())
	}
	return extractor
}

// loadState reads a crawler state file and returns it with its directory,
// which anchors relative document paths.
func loadState(statePath string) (*policy.State, string, error) {
	state, err := policy.LoadState(statePath)
	if err != nil {
		return nil, "", fmt.Errorf("load state %s: %w", statePath, err)
	}
	stateDir, err := filepath.Abs(filepath.Dir(statePath))
	if err != nil {
		stateDir = filepath.Dir(statePath)
	}
	return state, stateDir, nil
}
