package handler

import (
	"context"
	"net/http"

	"github.com/ArishaRashid/WhoYap/internal/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Sessions is the session lifecycle used by the handlers.
type Sessions interface {
	CreateSession(ctx context.Context, groupChatID int64, creator string) (*models.GameSession, error)
	GetSession(ctx context.Context, id int64) (*models.GameSession, error)
	RequestJoin(ctx context.Context, sessionID int64, username string) (*models.JoinRequest, error)
	DecideJoin(ctx context.Context, requestID int64, approve bool) (*models.JoinRequest, error)
	ListJoinRequests(ctx context.Context, sessionID int64, status string) ([]*models.JoinRequest, error)
}

// JoinNotifier tells the session host about a new join request.
type JoinNotifier interface {
	SendJoinRequestNotification(session *models.GameSession, req *models.JoinRequest) error
}

type SessionHandler interface {
	CreateSession(c *gin.Context)
	GetSession(c *gin.Context)
	RequestJoin(c *gin.Context)
	ListJoinRequests(c *gin.Context)
	DecideJoin(c *gin.Context)
}

type sessionHandler struct {
	sessions Sessions
	notifier JoinNotifier
	logger   *zap.Logger
}

// NewSessionHandler creates the session handlers. notifier may be nil.
func NewSessionHandler(sessions Sessions, notifier JoinNotifier, logger *zap.Logger) SessionHandler {
	return &sessionHandler{sessions: sessions, notifier: notifier, logger: logger}
}

// CreateSession handles POST /api/v1/sessions
func (h *sessionHandler) CreateSession(c *gin.Context) {
	var input models.CreateSessionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}

	session, err := h.sessions.CreateSession(c.Request.Context(), input.GroupChatID, input.Username)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": session})
}

// GetSession handles GET /api/v1/sessions/:id
func (h *sessionHandler) GetSession(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	session, err := h.sessions.GetSession(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// RequestJoin handles POST /api/v1/sessions/:id/join-requests
func (h *sessionHandler) RequestJoin(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input models.RequestJoinInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	req, err := h.sessions.RequestJoin(ctx, id, input.Username)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if h.notifier != nil {
		session, err := h.sessions.GetSession(ctx, id)
		if err == nil {
			err = h.notifier.SendJoinRequestNotification(session, req)
		}
		if err != nil {
			h.logger.Warn("Failed to notify host about join request", zap.Int64("request_id", req.ID), zap.Error(err))
		}
	}

	c.JSON(http.StatusCreated, gin.H{"join_request": req})
}

// ListJoinRequests handles GET /api/v1/sessions/:id/join-requests?status=
func (h *sessionHandler) ListJoinRequests(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	requests, err := h.sessions.ListJoinRequests(c.Request.Context(), id, c.Query("status"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"join_requests": requests})
}

// DecideJoin handles POST /api/v1/join-requests/:id/decision
func (h *sessionHandler) DecideJoin(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input models.DecideJoinInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}

	req, err := h.sessions.DecideJoin(c.Request.Context(), id, *input.Approve)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"join_request": req})
}
