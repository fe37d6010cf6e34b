package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ArishaRashid/WhoYap/internal/metrics"
	"github.com/ArishaRashid/WhoYap/internal/models"
	"github.com/ArishaRashid/WhoYap/internal/repository"
	"go.uber.org/zap"
)

// Backfiller embeds messages that have no stored embedding yet. Every pass
// is keyed by message id, so it can be repeated or resumed at any time.
type Backfiller struct {
	repo         repository.ChatRepository
	embedder     Embedder
	logger       *zap.Logger
	batchSize    int
	pollInterval time.Duration
	callTimeout  time.Duration
}

// Config tunes a Backfiller.
type Config struct {
	BatchSize    int
	PollInterval time.Duration
	CallTimeout  time.Duration
}

// NewBackfiller creates a new embedding backfiller.
func NewBackfiller(repo repository.ChatRepository, embedder Embedder, cfg Config, logger *zap.Logger) *Backfiller {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 64
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Minute
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 30 * time.Second
	}
	return &Backfiller{
		repo:         repo,
		embedder:     embedder,
		logger:       logger,
		batchSize:    cfg.BatchSize,
		pollInterval: cfg.PollInterval,
		callTimeout:  cfg.CallTimeout,
	}
}

// maxConsecutiveFailures ends a pass early when the embedder looks down
// rather than rejecting single messages.
const maxConsecutiveFailures = 5

// EmbedChat embeds every pending message of one chat (all chats when
// groupChatID is zero) and returns how many embeddings were stored. A message
// the embedder rejects is skipped for the rest of the pass; the pass still
// reports an error so callers know it is incomplete. Store failures and
// context cancellation end the pass immediately.
func (b *Backfiller) EmbedChat(ctx context.Context, groupChatID int64) (int, error) {
	var (
		stored      int
		failed      int
		consecutive int
		lastErr     error
		cursor      int64
	)
	for {
		batch, err := b.repo.ListUnembeddedMessages(ctx, groupChatID, cursor, b.batchSize)
		if err != nil {
			return stored, err
		}
		if len(batch) == 0 {
			break
		}

		for _, msg := range batch {
			cursor = msg.ID
			if strings.TrimSpace(msg.MessageText) == "" {
				continue
			}

			err := b.embedMessage(ctx, msg)
			switch {
			case err == nil:
				stored++
				consecutive = 0
				continue
			case ctx.Err() != nil:
				return stored, ctx.Err()
			case errors.As(err, new(*repository.StoreError)):
				return stored, err
			}

			failed++
			consecutive++
			lastErr = err
			if consecutive >= maxConsecutiveFailures {
				return stored, fmt.Errorf("embedder failed %d times in a row: %w", consecutive, lastErr)
			}
		}
	}

	if failed > 0 {
		return stored, fmt.Errorf("%d messages could not be embedded, last: %w", failed, lastErr)
	}
	return stored, nil
}

// Run periodically embeds pending messages of every chat until ctx is done.
func (b *Backfiller) Run(ctx context.Context) {
	b.logger.Info("Embedding backfill started.", zap.Duration("interval", b.pollInterval), zap.String("model", b.embedder.Model()))

	ticker := time.NewTicker(b.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Embedding backfill stopped.")
			return
		case <-ticker.C:
			n, err := b.EmbedChat(ctx, 0)
			if err != nil {
				b.logger.Warn("Embedding backfill pass incomplete", zap.Int("embedded", n), zap.Error(err))
				continue
			}
			if n > 0 {
				b.logger.Info("Embedding backfill pass finished", zap.Int("embedded", n))
			}
		}
	}
}
