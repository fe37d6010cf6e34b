package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Client wraps the Gemini API client
type Client struct {
	client         *genai.Client
	embedder       *genai.EmbeddingModel
	model          *genai.GenerativeModel
	logger         *zap.Logger
	embeddingModel string
	maxRetries     int
	retryDelay     time.Duration
}

// Config for Gemini client
type Config struct {
	APIKey         string
	EmbeddingModel string // Default: "text-embedding-004"
	ChatModel      string // Default: "gemini-2.0-flash"
	MaxRetries     int
	RetryDelay     time.Duration
}

// NewClient creates a new Gemini client
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = "text-embedding-004"
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = "gemini-2.0-flash"
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 2 * time.Second
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	logger.Info("Gemini client initialized",
		zap.String("embedding_model", cfg.EmbeddingModel),
		zap.String("chat_model", cfg.ChatModel),
		zap.Int("max_retries", cfg.MaxRetries))

	return &Client{
		client:         client,
		embedder:       client.EmbeddingModel(cfg.EmbeddingModel),
		model:          client.GenerativeModel(cfg.ChatModel),
		logger:         logger,
		embeddingModel: cfg.EmbeddingModel,
		maxRetries:     cfg.MaxRetries,
		retryDelay:     cfg.RetryDelay,
	}, nil
}

// Close closes the Gemini client
func (c *Client) Close() error {
	return c.client.Close()
}

// Model returns the embedding model name.
func (c *Client) Model() string {
	return c.embeddingModel
}

// Name identifies the provider in logs and responses.
func (c *Client) Name() string {
	return "gemini"
}

// Embed returns the embedding vector of text, retrying transient failures.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("Retrying Gemini embedding request",
				zap.Int("attempt", attempt+1),
				zap.Int("max_retries", c.maxRetries))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}

		res, err := c.embedder.EmbedContent(ctx, genai.Text(text))
		if err != nil {
			lastErr = fmt.Errorf("gemini API error: %w", err)
			c.logger.Error("Gemini API error", zap.Error(err), zap.Int("attempt", attempt+1))
			continue
		}
		if res.Embedding == nil || len(res.Embedding.Values) == 0 {
			lastErr = fmt.Errorf("empty embedding from gemini")
			continue
		}
		return res.Embedding.Values, nil
	}
	return nil, fmt.Errorf("failed after %d attempts: %w", c.maxRetries, lastErr)
}

// Generate runs a single completion and joins the text parts of the first
// candidate.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from gemini")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
