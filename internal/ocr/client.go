package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
)

// Client posts page images to a chat-completions endpoint. The raw wire
// format is provider-dependent (token-limit field naming, content blocks),
// so the request is built by hand.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient builds a transcription client. Zero config fields pick up
// package defaults.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		logger:     logger,
	}
}

// Model returns the configured model identifier, recorded on extraction
// attempts as the OCR engine.
func (c *Client) Model() string {
	return c.cfg.Model
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentBlock struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content json.RawMessage `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// endpoint resolves the chat-completions URL, appending /v1 when the
// configured base lacks a version segment.
func (c *Client) endpoint() string {
	base := strings.TrimRight(c.cfg.APIBase, "/")
	if strings.HasSuffix(base, "/v1") {
		return base + "/chat/completions"
	}
	return base + "/v1/chat/completions"
}

// buildPayload assembles the request body. Siliconflow hosts reject
// max_tokens and want max_output_tokens; everyone else is the opposite.
func (c *Client) buildPayload(imageB64 string) map[string]any {
	payload := map[string]any{
		"model": c.cfg.Model,
		"messages": []chatMessage{
			{Role: "system", Content: c.cfg.SystemPrompt},
			{Role: "user", Content: []contentBlock{
				{Type: "text", Text: c.cfg.UserPrompt},
				{Type: "image_url", ImageURL: &imageURL{URL: "data:image/png;base64," + imageB64}},
			}},
		},
		"temperature": c.cfg.Temperature,
	}
	if strings.Contains(strings.ToLower(c.cfg.APIBase), "siliconflow") {
		payload["max_output_tokens"] = c.cfg.MaxTokens
	} else {
		payload["max_tokens"] = c.cfg.MaxTokens
	}
	return payload
}

// TranscribePage sends one rendered page and returns the transcribed text.
// Failures retry up to the configured count with a fixed delay.
func (c *Client) TranscribePage(ctx context.Context, png []byte, pageIndex int) (string, error) {
	requestID := uuid.NewString()
	imageB64 := base64.StdEncoding.EncodeToString(png)

	var text string
	err := retry.Do(
		func() error {
			result, err := c.transcribeOnce(ctx, imageB64, pageIndex, requestID)
			if err != nil {
				return err
			}
			text = result
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.cfg.MaxRetries)+1),
		retry.Delay(c.cfg.RetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(attempt uint, err error) {
			c.logger.Warn("ocr attempt failed, retrying",
				"request_id", requestID,
				"page", pageIndex+1,
				"attempt", attempt+1,
				"error", err)
		}),
	)
	if err != nil {
		return "", err
	}
	return text, nil
}

func (c *Client) transcribeOnce(ctx context.Context, imageB64 string, pageIndex int, requestID string) (string, error) {
	body, err := json.Marshal(c.buildPayload(imageB64))
	if err != nil {
		return "", fmt.Errorf("marshal ocr payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build ocr request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ocr request page %d: %w", pageIndex+1, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read ocr response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		snippet := strings.TrimSpace(string(respBody))
		if len(snippet) > 500 {
			snippet = snippet[:500] + "…"
		}
		c.logger.Warn("ocr request failed",
			"request_id", requestID,
			"page", pageIndex+1,
			"status", resp.StatusCode,
			"response", snippet)
		return "", fmt.Errorf("ocr request page %d: status %d", pageIndex+1, resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("decode ocr response: %w", err)
	}
	text := extractCompletionText(&parsed)
	if text == "" {
		return "", fmt.Errorf("ocr response for page %d contained no text", pageIndex+1)
	}
	return text, nil
}

// extractCompletionText handles both content shapes providers return: a
// plain string or a list of typed blocks with text fields.
func extractCompletionText(resp *chatResponse) string {
	if len(resp.Choices) == 0 {
		return ""
	}
	raw := resp.Choices[0].Message.Content
	if len(raw) == 0 {
		return ""
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return strings.TrimSpace(asString)
	}
	var blocks []struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return ""
	}
	var segments []string
	for _, block := range blocks {
		if block.Text != "" {
			segments = append(segments, block.Text)
		}
	}
	return strings.TrimSpace(strings.Join(segments, "\n"))
}
