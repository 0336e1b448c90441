// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package enrich

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	DefaultTimeout = 5 * time.Second
	maxTokens      = 100
)

var (
	// ErrUnknownTitle is returned when the service answers but does not recognize the title
	ErrUnknownTitle = errors.New("title not recognized")
	// ErrEmptyDescription is returned when the service answers with no text
	ErrEmptyDescription = errors.New("empty description")
)

// Describer fetches a one-sentence description for a candidate title
type Describer interface {
	Describe(ctx context.Context, title string) (string, error)
}

// Config configures the Messages API client. BaseURL is the API root;
// an empty value uses the SDK default.
type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	HTTPClient *http.Client
}

// Client calls the Anthropic Messages API
type Client struct {
	cfg Config
	api anthropic.Client
}

// NewClient builds a Client, filling in defaults for zero fields
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(cfg.Timeout),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &Client{cfg: cfg, api: anthropic.NewClient(opts...)}
}

// Describe asks the service for a description of a movie title. The call
// is bounded by the configured timeout regardless of ctx.
func (c *Client) Describe(ctx context.Context, title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("title is required")
	}
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return "", fmt.Errorf("api key is required")
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	prompt := fmt.Sprintf("Provide a single sentence description of the movie %q. Just the description, no preamble.", title)
	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.cfg.Model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text = strings.TrimSpace(block.Text)
			break
		}
	}
	if text == "" {
		return "", ErrEmptyDescription
	}
	if IsUnknownAnswer(text) {
		return "", ErrUnknownTitle
	}
	return text, nil
}

var unknownPhrases = []string{
	"don't have any information",
	"don't have information",
	"no information",
	"not familiar",
	"don't know",
	"cannot find",
	"can't find",
	"unable to provide",
	"not aware of",
}

// IsUnknownAnswer reports whether a description is really a refusal
func IsUnknownAnswer(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range unknownPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
