package config

import (
	"time"

	"github.com/policyops/regtext/internal/ocr"
)

// Config is the full application configuration.
type Config struct {
	OCR     OCRConfig     `mapstructure:"ocr" yaml:"ocr"`
	Extract ExtractConfig `mapstructure:"extract" yaml:"extract"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// OCRConfig configures the remote transcription fallback. OCR is enabled
// only when both api_key and model are set.
type OCRConfig struct {
	APIKey            string  `mapstructure:"api_key" yaml:"api_key"`
	APIBase           string  `mapstructure:"api_base" yaml:"api_base"`
	Model             string  `mapstructure:"model" yaml:"model"`
	SystemPrompt      string  `mapstructure:"system_prompt" yaml:"system_prompt,omitempty"`
	UserPrompt        string  `mapstructure:"user_prompt" yaml:"user_prompt,omitempty"`
	Temperature       float64 `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens         int     `mapstructure:"max_tokens" yaml:"max_tokens"`
	RenderDPI         int     `mapstructure:"render_dpi" yaml:"render_dpi"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	MaxPages          int     `mapstructure:"max_pages" yaml:"max_pages"`
	MaxRetries        int     `mapstructure:"max_retries" yaml:"max_retries"`
	RetryDelaySeconds int     `mapstructure:"retry_delay_seconds" yaml:"retry_delay_seconds"`
	MaxWorkers        int     `mapstructure:"max_workers" yaml:"max_workers"`
}

// ExtractConfig holds batch extraction defaults, overridable per run by
// CLI flags.
type ExtractConfig struct {
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
	Workers   int    `mapstructure:"workers" yaml:"workers"`
	Slug      string `mapstructure:"slug" yaml:"slug,omitempty"`
}

// LogConfig controls slog output.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DefaultConfig returns the baseline configuration.
func DefaultConfig() *Config {
	return &Config{
		OCR: OCRConfig{
			APIKey:            "${REGTEXT_OCR_API_KEY}",
			APIBase:           ocr.DefaultAPIBase,
			Model:             "",
			Temperature:       0,
			MaxTokens:         ocr.DefaultMaxTokens,
			RenderDPI:         ocr.DefaultRenderDPI,
			TimeoutSeconds:    int(ocr.DefaultRequestTimeout / time.Second),
			MaxPages:          ocr.DefaultMaxPages,
			MaxRetries:        ocr.DefaultMaxRetries,
			RetryDelaySeconds: int(ocr.DefaultRetryDelay / time.Second),
			MaxWorkers:        ocr.DefaultMaxWorkers,
		},
		Extract: ExtractConfig{
			OutputDir: "texts",
			Workers:   4,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// ToOCRConfig resolves ${ENV_VAR} references and converts to the ocr
// package's config. Returns nil when OCR is not configured; extraction
// then degrades to needs_ocr statuses instead of failing.
func (c *Config) ToOCRConfig() *ocr.Config {
	apiKey := ResolveEnvVars(c.OCR.APIKey)
	if apiKey == "" || c.OCR.Model == "" {
		return nil
	}
	return &ocr.Config{
		APIKey:         apiKey,
		APIBase:        c.OCR.APIBase,
		Model:          c.OCR.Model,
		SystemPrompt:   c.OCR.SystemPrompt,
		UserPrompt:     c.OCR.UserPrompt,
		Temperature:    c.OCR.Temperature,
		MaxTokens:      c.OCR.MaxTokens,
		RenderDPI:      c.OCR.RenderDPI,
		RequestTimeout: time.Duration(c.OCR.TimeoutSeconds) * time.Second,
		MaxPages:       c.OCR.MaxPages,
		MaxRetries:     c.OCR.MaxRetries,
		RetryDelay:     time.Duration(c.OCR.RetryDelaySeconds) * time.Second,
		MaxWorkers:     c.OCR.MaxWorkers,
	}
}
