package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ArishaRashid/WhoYap/internal/metrics"
	"github.com/ArishaRashid/WhoYap/internal/models"
	"github.com/ArishaRashid/WhoYap/internal/repository"
	"github.com/ArishaRashid/WhoYap/internal/transcript"
	"go.uber.org/zap"
)

// ChatEmbedder embeds every not-yet-embedded message of a chat and returns
// how many it stored.
type ChatEmbedder interface {
	EmbedChat(ctx context.Context, groupChatID int64) (int, error)
}

// ImportInput is one transcript to ingest.
type ImportInput struct {
	ChatName   string
	Uploader   string
	Transcript io.Reader
}

// ImportResult summarizes a finished import.
type ImportResult struct {
	GroupChatID      int64    `json:"group_chat_id"`
	Participants     []string `json:"participants"`
	MessageCount     int      `json:"message_count"`
	EmbeddedCount    int      `json:"embedded_count"`
	EmbeddingPending bool     `json:"embedding_pending"`
}

// Importer turns a raw transcript into a persisted group chat.
type Importer struct {
	repo     repository.ChatRepository
	embedder ChatEmbedder
	logger   *zap.Logger
}

// NewImporter creates an Importer. embedder may be nil, in which case
// messages are left for the backfill worker.
func NewImporter(repo repository.ChatRepository, embedder ChatEmbedder, logger *zap.Logger) *Importer {
	return &Importer{repo: repo, embedder: embedder, logger: logger}
}

// Import parses the transcript and writes chat, participants and messages in
// one transaction. Embedding runs afterwards and never fails the import.
func (s *Importer) Import(ctx context.Context, in ImportInput) (*ImportResult, error) {
	in.ChatName = strings.TrimSpace(in.ChatName)
	in.Uploader = strings.TrimSpace(in.Uploader)
	if in.ChatName == "" || in.Uploader == "" {
		return nil, fmt.Errorf("%w: chat name and uploader are required", ErrInvalidInput)
	}
	if in.Transcript == nil {
		return nil, fmt.Errorf("%w: transcript is required", ErrInvalidInput)
	}

	parsed, err := transcript.Parse(in.Transcript)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var chat *models.GroupChat
	err = s.repo.WithTx(ctx, func(tx repository.ChatRepository) error {
		chat, err = tx.CreateGroupChat(ctx, in.ChatName, in.Uploader)
		if err != nil {
			return err
		}

		ids := make(map[string]int64, len(parsed.Participants))
		for _, name := range parsed.Participants {
			p, err := tx.CreateParticipant(ctx, chat.ID, name)
			if err != nil {
				return err
			}
			ids[name] = p.ID
		}

		for _, m := range parsed.Messages {
			if _, err := tx.CreateMessage(ctx, chat.ID, ids[m.Sender], m.Timestamp, m.Text); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to import transcript", zap.String("chat_name", in.ChatName), zap.Error(err))
		return nil, err
	}

	metrics.ChatsImported.Inc()
	metrics.MessagesImported.Add(float64(len(parsed.Messages)))
	s.logger.Info("Transcript imported",
		zap.Int64("group_chat_id", chat.ID),
		zap.Int("participants", len(parsed.Participants)),
		zap.Int("messages", len(parsed.Messages)))

	result := &ImportResult{
		GroupChatID:  chat.ID,
		Participants: parsed.Participants,
		MessageCount: len(parsed.Messages),
	}
	if result.Participants == nil {
		result.Participants = []string{}
	}

	if len(parsed.Messages) == 0 {
		return result, nil
	}
	if s.embedder == nil {
		result.EmbeddingPending = true
		return result, nil
	}

	n, err := s.embedder.EmbedChat(ctx, chat.ID)
	result.EmbeddedCount = n
	if err != nil {
		s.logger.Warn("Embedding pass incomplete, leaving it to the backfill worker",
			zap.Int64("group_chat_id", chat.ID), zap.Int("embedded", n), zap.Error(err))
		result.EmbeddingPending = true
	}
	return result, nil
}
