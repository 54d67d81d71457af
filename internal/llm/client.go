// Package llm talks to the Gemini REST API: one-shot content generation and
// the Files API for media too large to send inline.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hpungsan/focusbrief/internal/config"
	"github.com/hpungsan/focusbrief/internal/errors"
	"github.com/hpungsan/focusbrief/internal/logging"
	"github.com/hpungsan/focusbrief/internal/prompt"
)

const (
	defaultBaseURL       = "https://generativelanguage.googleapis.com"
	defaultTimeout       = 60 * time.Second
	defaultUploadTimeout = 5 * time.Minute
	defaultPollInterval  = 2 * time.Second
)

// Config captures the runtime settings required to talk to the model.
type Config struct {
	APIKey           string
	BaseURL          string
	Model            string
	Temperature      float64
	TopP             float64
	MaxOutputTokens  int
	StructuredOutput bool
	Timeout          time.Duration

	// UploadTimeout bounds one Files API upload, polling included.
	UploadTimeout time.Duration
}

// ConfigFrom maps application config onto client config.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		APIKey:           cfg.APIKey,
		BaseURL:          cfg.APIBaseURL,
		Model:            cfg.Model,
		Temperature:      cfg.Temperature,
		TopP:             cfg.TopP,
		MaxOutputTokens:  cfg.MaxOutputTokens,
		StructuredOutput: cfg.StructuredOutputEnabled(),
		Timeout:          cfg.GenerationTimeout(),
		UploadTimeout:    cfg.UploadTimeout(),
	}
}

// Client is a single-attempt Gemini client. It never retries; callers own
// retry policy.
type Client struct {
	cfg          Config
	httpClient   *http.Client
	log          *logging.Logger
	pollInterval time.Duration
	now          func() time.Time
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger sets the logger used for generation_call events.
func WithLogger(log *logging.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithPollInterval sets how often an uploaded file's state is checked.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// NewClient constructs a client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UploadTimeout <= 0 {
		cfg.UploadTimeout = defaultUploadTimeout
	}

	c := &Client{
		cfg:          cfg,
		httpClient:   &http.Client{},
		log:          logging.Nop(),
		pollInterval: defaultPollInterval,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model names the model requests are sent to.
func (c *Client) Model() string {
	return c.cfg.Model
}

// Generate sends req and returns the model's raw text. Failures are
// GenerationError, or RateLimited when the provider rejects for quota.
func (c *Client) Generate(ctx context.Context, req prompt.Request) (string, error) {
	start := c.now()
	text, err := c.generate(ctx, req)
	c.log.GenerationCall("generate_content", time.Since(start), err)
	return text, err
}

func (c *Client) generate(ctx context.Context, req prompt.Request) (string, error) {
	if c.cfg.APIKey == "" {
		return "", errors.NewGeneration("model api key is not configured", nil)
	}
	if c.cfg.Model == "" {
		return "", errors.NewGeneration("model name is not configured", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	payload, err := json.Marshal(c.buildRequest(req))
	if err != nil {
		return "", errors.NewGeneration("encode request", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.cfg.BaseURL, url.PathEscape(c.cfg.Model))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", errors.NewGeneration("build request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", errors.NewGeneration(fmt.Sprintf("model request timed out after %s", c.cfg.Timeout), err)
		}
		return "", errors.NewGeneration("model request failed: "+err.Error(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.NewGeneration("read model response", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", statusError(resp, body)
	}

	var decoded generateResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", errors.NewGeneration("decode model response: "+summarizePayloadSnippet(string(body)), err)
	}
	if decoded.PromptFeedback != nil && decoded.PromptFeedback.BlockReason != "" {
		return "", errors.NewGeneration("prompt blocked: "+decoded.PromptFeedback.BlockReason, nil)
	}

	text, finishReason := decoded.text()
	if strings.TrimSpace(text) == "" {
		return "", errors.NewGeneration(fmt.Sprintf("model returned empty content (finishReason=%q)", finishReason), nil)
	}
	return text, nil
}

func (c *Client) buildRequest(req prompt.Request) generateRequest {
	out := generateRequest{
		GenerationConfig: generationConfig{
			Temperature:      c.cfg.Temperature,
			TopP:             c.cfg.TopP,
			MaxOutputTokens:  c.cfg.MaxOutputTokens,
			ResponseMIMEType: "application/json",
		},
	}
	if c.cfg.StructuredOutput {
		out.GenerationConfig.ResponseSchema = prompt.ResponseSchema()
	}
	if req.System != "" {
		out.SystemInstruction = &content{Parts: []part{{Text: req.System}}}
	}

	user := content{Role: "user"}
	for _, p := range req.Parts {
		switch {
		case p.Media != nil && p.Media.Inline():
			user.Parts = append(user.Parts, part{InlineData: &blob{MIMEType: p.Media.MIMEType, Data: p.Media.Data}})
		case p.Media != nil:
			user.Parts = append(user.Parts, part{FileData: &fileData{MIMEType: p.Media.MIMEType, FileURI: p.Media.URI}})
		case p.Text != "":
			user.Parts = append(user.Parts, part{Text: p.Text})
		}
	}
	out.Contents = []content{user}
	return out
}

// statusError maps a non-2xx provider response onto a BriefError.
func statusError(resp *http.Response, body []byte) error {
	snippet := summarizePayloadSnippet(string(body))
	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter, ok := parseRetryAfter(resp.Header.Get("Retry-After"))
		if !ok {
			retryAfter = retryDelayFromBody(body)
		}
		return errors.NewRateLimited("model quota exceeded: "+snippet, ceilSeconds(retryAfter))
	}
	return errors.NewGeneration(fmt.Sprintf("model request failed: http %d: %s", resp.StatusCode, snippet), nil)
}

func summarizePayloadSnippet(content string) string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "<empty>"
	}
	clean := strings.Join(strings.Fields(trimmed), " ")
	const limit = 160
	runes := []rune(clean)
	if len(runes) > limit {
		clean = string(runes[:limit]) + "..."
	}
	return clean
}
