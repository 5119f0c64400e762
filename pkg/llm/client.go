package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/StonerSensei/nlp-analytics/pkg/apperrors"
)

// sqlTemperature keeps generation nearly deterministic; SQL synthesis has no
// use for creative sampling.
const sqlTemperature = 0.1

// Client talks to an OpenAI-compatible chat endpoint.
type Client struct {
	client  *openai.Client
	baseURL string
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// Config holds configuration for creating a generator client.
type Config struct {
	BaseURL string // e.g. "http://localhost:11434/v1" for Ollama
	Model   string // e.g. "sqlcoder:7b"
	APIKey  string // optional for local endpoints
	Timeout time.Duration
}

// NewClient creates a generator backed by an OpenAI-compatible endpoint.
func NewClient(cfg *Config, logger *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")

	return &Client{
		client:  openai.NewClientWithConfig(clientConfig),
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  logger.Named("llm"),
	}, nil
}

// Generate sends the prompt and returns the completion with token accounting.
// Failures are classified: connection refused vs timeout vs empty completion
// are distinct conditions with distinct operator advice.
func (c *Client) Generate(ctx context.Context, prompt string) (*Completion, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	c.logger.Debug("generator request",
		zap.String("model", c.model),
		zap.Int("prompt_len", len(prompt)))

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: sqlTemperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		c.logger.Error("generator request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, ClassifyError(err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return nil, apperrors.Generation(apperrors.ReasonEmptyCompletion, nil,
			"model %s returned an empty completion; check model configuration", c.model)
	}

	c.logger.Info("generator request completed",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))

	return &Completion{
		Text:             resp.Choices[0].Message.Content,
		Model:            resp.Model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}, nil
}

// Ping checks endpoint reachability by listing models.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return ClassifyError(err)
	}
	return nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// ClassifyError maps a transport-level generator failure onto the error
// taxonomy. Connection failures are permanent until an operator intervenes;
// timeouts are transient and marked retryable; everything else is surfaced as
// a generic generation failure.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Generation(apperrors.ReasonTimeout, err, "generator request timed out")
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperrors.Generation(apperrors.ReasonTimeout, err, "generator request timed out")
	}

	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "connection refused"),
		strings.Contains(lower, "no such host"),
		strings.Contains(lower, "network is unreachable"):
		return apperrors.Generation(apperrors.ReasonConnection, err, "generator service unreachable")
	case strings.Contains(lower, "timeout"),
		strings.Contains(lower, "deadline exceeded"):
		return apperrors.Generation(apperrors.ReasonTimeout, err, "generator request timed out")
	default:
		return apperrors.Generation("", err, "generator request failed")
	}
}
