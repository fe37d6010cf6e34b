// Package llm forwards free-form prompts to a language model, with per
// provider rate limiting and fallback across providers.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ArishaRashid/WhoYap/internal/metrics"
	"go.uber.org/zap"
)

// ErrEmptyPrompt is returned for blank prompts.
var ErrEmptyPrompt = errors.New("prompt is empty")

// Provider is any backend that can complete a prompt.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// Reply is one completion.
type Reply struct {
	Provider string `json:"provider"`
	Response string `json:"response"`
}

type limitedProvider struct {
	Provider
	limiter *RateLimiter
}

// Client tries providers in order, moving on after maxFailures consecutive
// failures of the current one.
type Client struct {
	providers    []limitedProvider
	logger       *zap.Logger
	maxFailures  int
	mu           sync.Mutex
	current      int
	failureCount map[int]int
}

// NewClient wraps providers with a limiter of requestsPerMinute each.
func NewClient(providers []Provider, requestsPerMinute, maxFailures int, logger *zap.Logger) (*Client, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("at least one provider is required")
	}
	if requestsPerMinute <= 0 {
		requestsPerMinute = 30
	}
	if maxFailures <= 0 {
		maxFailures = 3
	}

	c := &Client{
		logger:       logger,
		maxFailures:  maxFailures,
		failureCount: make(map[int]int),
	}
	for _, p := range providers {
		c.providers = append(c.providers, limitedProvider{Provider: p, limiter: NewRateLimiter(requestsPerMinute)})
		logger.Info("LLM provider initialized", zap.String("provider", p.Name()), zap.Int("rate_limit", requestsPerMinute))
	}
	return c, nil
}

// Chat completes prompt with the first provider that answers, starting
// from the current one.
func (c *Client) Chat(ctx context.Context, prompt string) (*Reply, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}

	start := c.currentIndex()
	var lastErr error
	for i := 0; i < len(c.providers); i++ {
		idx := (start + i) % len(c.providers)
		p := c.providers[idx]

		if err := p.limiter.Wait(ctx); err != nil {
			metrics.LLMRequests.WithLabelValues("cancelled").Inc()
			return nil, fmt.Errorf("rate limit wait cancelled: %w", err)
		}

		out, err := p.Generate(ctx, prompt)
		if err == nil {
			c.resetFailures(idx)
			metrics.LLMRequests.WithLabelValues("ok").Inc()
			return &Reply{Provider: p.Name(), Response: out}, nil
		}

		lastErr = err
		c.logger.Error("LLM provider failed", zap.String("provider", p.Name()), zap.Error(err))
		c.recordFailure(idx)
	}

	metrics.LLMRequests.WithLabelValues("error").Inc()
	return nil, fmt.Errorf("all providers failed: %w", lastErr)
}

func (c *Client) currentIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *Client) resetFailures(idx int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failureCount[idx] = 0
}

// recordFailure counts a failure; after maxFailures in a row the next
// provider becomes current.
func (c *Client) recordFailure(idx int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.failureCount[idx]++
	if c.current == idx && c.failureCount[idx] >= c.maxFailures {
		c.current = (idx + 1) % len(c.providers)
		c.logger.Warn("Switching LLM provider",
			zap.Int("from_index", idx),
			zap.Int("to_index", c.current),
			zap.Int("failures", c.failureCount[idx]))
	}
}
