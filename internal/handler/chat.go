package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ArishaRashid/WhoYap/internal/models"
	"github.com/ArishaRashid/WhoYap/internal/repository"
	"github.com/ArishaRashid/WhoYap/internal/service"
	"github.com/ArishaRashid/WhoYap/internal/upload"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Importer ingests transcripts.
type Importer interface {
	Import(ctx context.Context, in service.ImportInput) (*service.ImportResult, error)
}

type ChatHandler interface {
	Upload(c *gin.Context)
	Import(c *gin.Context)
	Embed(c *gin.Context)
}

type chatHandler struct {
	importer Importer
	uploads  upload.Store
	chats    repository.ChatRepository
	embedder service.ChatEmbedder
	maxBytes int64
	logger   *zap.Logger
}

// NewChatHandler creates the transcript handlers. embedder may be nil when
// embeddings are disabled.
func NewChatHandler(importer Importer, uploads upload.Store, chats repository.ChatRepository,
	embedder service.ChatEmbedder, maxBytes int64, logger *zap.Logger) ChatHandler {
	return &chatHandler{
		importer: importer,
		uploads:  uploads,
		chats:    chats,
		embedder: embedder,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// Upload handles POST /api/v1/uploads (multipart: username, file)
func (h *chatHandler) Upload(c *gin.Context) {
	if strings.TrimSpace(c.PostForm("username")) == "" {
		badRequest(c, "username is required")
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file is required")
		return
	}
	if h.maxBytes > 0 && fh.Size > h.maxBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file is too large", "reason": ReasonInvalidInput})
		return
	}

	f, err := fh.Open()
	if err != nil {
		h.logger.Error("Failed to open uploaded file", zap.Error(err))
		badRequest(c, "could not read file")
		return
	}
	defer f.Close()

	id, err := h.uploads.Save(c.Request.Context(), f, fh.Size)
	if err != nil {
		h.logger.Error("Failed to store upload", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "could not store upload", "reason": ReasonUnavailable})
		return
	}

	h.logger.Info("Transcript uploaded", zap.String("upload_id", id), zap.Int64("size", fh.Size))
	c.JSON(http.StatusCreated, gin.H{"upload_id": id, "filename": fh.Filename})
}

// Import handles POST /api/v1/chats/import
func (h *chatHandler) Import(c *gin.Context) {
	var input models.ImportChatInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	in := service.ImportInput{ChatName: input.ChatName, Uploader: input.Username}

	switch {
	case input.UploadID != "":
		rc, err := h.uploads.Open(ctx, input.UploadID)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		defer rc.Close()
		in.Transcript = rc
	case input.Transcript != "":
		in.Transcript = strings.NewReader(input.Transcript)
	default:
		badRequest(c, "upload_id or transcript is required")
		return
	}

	result, err := h.importer.Import(ctx, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if input.UploadID != "" {
		if err := h.uploads.Delete(ctx, input.UploadID); err != nil {
			h.logger.Warn("Failed to remove consumed upload", zap.String("upload_id", input.UploadID), zap.Error(err))
		}
	}

	c.JSON(http.StatusCreated, gin.H{"import": result})
}

// Embed handles POST /api/v1/chats/:id/embeddings
func (h *chatHandler) Embed(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if h.embedder == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "embeddings are disabled", "reason": ReasonUnavailable})
		return
	}

	if _, err := h.chats.GetGroupChat(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			err = &service.NotFoundError{Entity: "group chat", ID: id}
		}
		respondError(c, h.logger, err)
		return
	}

	n, err := h.embedder.EmbedChat(c.Request.Context(), id)
	if err != nil {
		var storeErr *repository.StoreError
		if errors.As(err, &storeErr) {
			respondError(c, h.logger, err)
			return
		}
		h.logger.Warn("Embedding pass incomplete", zap.Int64("group_chat_id", id), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "embedding provider unavailable", "reason": ReasonUnavailable, "embedded": n})
		return
	}
	c.JSON(http.StatusOK, gin.H{"embedded": n})
}
