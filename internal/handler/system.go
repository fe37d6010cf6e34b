package handler

import (
	"context"
	"net/http"

	"github.com/ArishaRashid/WhoYap/internal/llm"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger is satisfied by *sqlx.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Chatter completes free-form prompts.
type Chatter interface {
	Chat(ctx context.Context, prompt string) (*llm.Reply, error)
}

type SystemHandler interface {
	Root(c *gin.Context)
	Health(c *gin.Context)
	LLMChat(c *gin.Context)
}

type systemHandler struct {
	db     Pinger
	llm    Chatter
	logger *zap.Logger
}

// NewSystemHandler creates status and LLM handlers. chatter may be nil when
// no LLM provider is configured.
func NewSystemHandler(db Pinger, chatter Chatter, logger *zap.Logger) SystemHandler {
	return &systemHandler{db: db, llm: chatter, logger: logger}
}

// Root handles GET /
func (h *systemHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "WhoYap API is running"})
}

// Health handles GET /health
func (h *systemHandler) Health(c *gin.Context) {
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		h.logger.Error("Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": "unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "database": "ok"})
}

// LLMChatRequest is the body of POST /api/v1/llm/chat
type LLMChatRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// LLMChat handles POST /api/v1/llm/chat
func (h *systemHandler) LLMChat(c *gin.Context) {
	if h.llm == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no LLM provider configured", "reason": ReasonUnavailable})
		return
	}
	var req LLMChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	reply, err := h.llm.Chat(c.Request.Context(), req.Prompt)
	if err != nil {
		status, reason := statusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("LLM chat failed", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "LLM provider failed", "reason": ReasonUnavailable})
			return
		}
		c.JSON(status, gin.H{"error": err.Error(), "reason": reason})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}
