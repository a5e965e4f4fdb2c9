// Package ocr transcribes rendered PDF pages through a remote
// chat-completions endpoint. It is the fallback for scanned documents whose
// text layer is missing or useless.
package ocr

import "time"

// Error codes reported by OCR operations.
const (
	CodeNotConfigured     = "ocr_not_configured"
	CodeRenderUnavailable = "ocr_render_unavailable"
	CodeNoText            = "ocr_no_text"
	CodePartial           = "ocr_partial"
)

// Defaults for fields left zero in Config.
const (
	DefaultAPIBase        = "https://api.openai.com/v1"
	DefaultSystemPrompt   = "You are an OCR assistant. Transcribe the document faithfully and keep the original paragraph structure."
	DefaultUserPrompt     = "请识别图像中的所有正文并保持原有段落格式，忽略页眉、页脚、页码等非正文元素。"
	DefaultMaxTokens      = 4096
	DefaultRenderDPI      = 150
	DefaultRequestTimeout = 60 * time.Second
	DefaultMaxPages       = 50
	DefaultMaxRetries     = 2
	DefaultRetryDelay     = 10 * time.Second
	DefaultMaxWorkers     = 3
)

// Config holds the remote transcription settings. A nil *Config disables
// OCR entirely; operations then report ocr_not_configured.
type Config struct {
	APIKey         string
	APIBase        string
	Model          string
	SystemPrompt   string
	UserPrompt     string
	Temperature    float64
	MaxTokens      int
	RenderDPI      int
	RequestTimeout time.Duration
	MaxPages       int
	MaxRetries     int
	RetryDelay     time.Duration
	MaxWorkers     int
}

// withDefaults fills zero-valued fields.
func (c Config) withDefaults() Config {
	if c.APIBase == "" {
		c.APIBase = DefaultAPIBase
	}
	if c.SystemPrompt == "" {
		c.SystemPrompt = DefaultSystemPrompt
	}
	if c.UserPrompt == "" {
		c.UserPrompt = DefaultUserPrompt
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.RenderDPI <= 0 {
		c.RenderDPI = DefaultRenderDPI
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.MaxPages <= 0 {
		c.MaxPages = DefaultMaxPages
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RetryDelay < 0 {
		c.RetryDelay = 0
	}
	if c.MaxWorkers < 1 {
		c.MaxWorkers = 1
	}
	return c
}
