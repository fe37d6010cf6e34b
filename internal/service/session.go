package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ArishaRashid/WhoYap/internal/metrics"
	"github.com/ArishaRashid/WhoYap/internal/models"
	"github.com/ArishaRashid/WhoYap/internal/repository"
	"go.uber.org/zap"
)

// SessionManager owns game sessions and the join-request lifecycle.
type SessionManager struct {
	chats    repository.ChatRepository
	sessions repository.SessionRepository
	logger   *zap.Logger
	now      func() time.Time
}

func NewSessionManager(chats repository.ChatRepository, sessions repository.SessionRepository, logger *zap.Logger) *SessionManager {
	return &SessionManager{
		chats:    chats,
		sessions: sessions,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateSession opens a new session over an imported chat. Several sessions
// may share a chat.
func (s *SessionManager) CreateSession(ctx context.Context, groupChatID int64, creator string) (*models.GameSession, error) {
	creator = strings.TrimSpace(creator)
	if creator == "" {
		return nil, fmt.Errorf("%w: creator username is required", ErrInvalidInput)
	}
	if _, err := s.chats.GetGroupChat(ctx, groupChatID); err != nil {
		return nil, notFound(err, "group chat", groupChatID)
	}

	session, err := s.sessions.CreateSession(ctx, groupChatID, creator)
	if err != nil {
		s.logger.Error("Failed to create session", zap.Int64("group_chat_id", groupChatID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Session created", zap.Int64("session_id", session.ID), zap.String("creator", creator))
	return session, nil
}

func (s *SessionManager) GetSession(ctx context.Context, id int64) (*models.GameSession, error) {
	session, err := s.sessions.GetSession(ctx, id)
	if err != nil {
		return nil, notFound(err, "session", id)
	}
	return session, nil
}

// RequestJoin files a pending join request. Repeated requests by the same
// user are stored as separate rows.
func (s *SessionManager) RequestJoin(ctx context.Context, sessionID int64, username string) (*models.JoinRequest, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}

	req, err := s.sessions.CreateJoinRequest(ctx, sessionID, username)
	if err != nil {
		s.logger.Error("Failed to create join request", zap.Int64("session_id", sessionID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Join request filed", zap.Int64("session_id", sessionID), zap.Int64("request_id", req.ID), zap.String("username", username))
	return req, nil
}

// DecideJoin approves or declines a pending request. Decided requests are
// terminal and return ErrJoinRequestDecided.
func (s *SessionManager) DecideJoin(ctx context.Context, requestID int64, approve bool) (*models.JoinRequest, error) {
	req, err := s.sessions.GetJoinRequest(ctx, requestID)
	if err != nil {
		return nil, notFound(err, "join request", requestID)
	}
	if req.Status != models.JoinStatusPending {
		return nil, fmt.Errorf("join request %d is %s: %w", requestID, req.Status, ErrJoinRequestDecided)
	}

	status := models.JoinStatusDeclined
	if approve {
		status = models.JoinStatusApproved
	}

	ok, err := s.sessions.DecideJoinRequest(ctx, requestID, status, s.now())
	if err != nil {
		s.logger.Error("Failed to decide join request", zap.Int64("request_id", requestID), zap.Error(err))
		return nil, err
	}
	if !ok {
		// Another decision landed between the read and the update.
		return nil, fmt.Errorf("join request %d: %w", requestID, ErrJoinRequestDecided)
	}

	metrics.JoinDecisions.WithLabelValues(status).Inc()
	s.logger.Info("Join request decided", zap.Int64("request_id", requestID), zap.String("status", status))

	req, err = s.sessions.GetJoinRequest(ctx, requestID)
	if err != nil {
		return nil, notFound(err, "join request", requestID)
	}
	return req, nil
}

// ListJoinRequests returns a session's requests, optionally filtered by status.
func (s *SessionManager) ListJoinRequests(ctx context.Context, sessionID int64, status string) ([]*models.JoinRequest, error) {
	switch status {
	case "", models.JoinStatusPending, models.JoinStatusApproved, models.JoinStatusDeclined:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	requests, err := s.sessions.ListJoinRequests(ctx, sessionID, status)
	if err != nil {
		return nil, err
	}
	if requests == nil {
		requests = []*models.JoinRequest{}
	}
	return requests, nil
}
