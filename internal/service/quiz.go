package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/ArishaRashid/WhoYap/internal/metrics"
	"github.com/ArishaRashid/WhoYap/internal/models"
	"github.com/ArishaRashid/WhoYap/internal/repository"
	"go.uber.org/zap"
)

// maxDistractors is the number of wrong options offered when the chat has
// enough participants.
const maxDistractors = 3

// RoundGuard remembers redeemed round tokens. Redeem reports false when key
// was already redeemed. Release forgets a redemption whose answer could not
// be stored.
type RoundGuard interface {
	Redeem(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// QuizConfig tunes round token handling.
type QuizConfig struct {
	// RequireRoundToken rejects answers submitted without a round token.
	RequireRoundToken bool
}

// QuizService generates questions and scores answers.
type QuizService struct {
	chats    repository.ChatRepository
	sessions repository.SessionRepository
	signer   *RoundSigner
	guard    RoundGuard
	cfg      QuizConfig
	logger   *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewQuizService creates a QuizService. guard may be nil to disable replay
// protection.
func NewQuizService(chats repository.ChatRepository, sessions repository.SessionRepository, signer *RoundSigner,
	guard RoundGuard, src rand.Source, cfg QuizConfig, logger *zap.Logger) *QuizService {
	return &QuizService{
		chats:    chats,
		sessions: sessions,
		signer:   signer,
		guard:    guard,
		cfg:      cfg,
		logger:   logger,
		rng:      rand.New(src),
	}
}

// NextRound picks a random message of the session's chat and builds a
// multiple-choice question for it. The correct author is not part of the
// returned round.
func (s *QuizService) NextRound(ctx context.Context, sessionID int64) (*models.Round, error) {
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, notFound(err, "session", sessionID)
	}

	messages, err := s.chats.GetMessagesByGroupChat(ctx, session.GroupChatID)
	if err != nil {
		return nil, err
	}
	participants, err := s.chats.GetParticipantsByGroupChat(ctx, session.GroupChatID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	msg, options, err := buildRound(s.rng, messages, participants)
	s.mu.Unlock()
	if err != nil {
		var ec *EmptyCorpusError
		if errors.As(err, &ec) {
			ec.GroupChatID = session.GroupChatID
		}
		return nil, err
	}

	ids := make([]int64, len(options))
	for i, o := range options {
		ids[i] = o.ParticipantID
	}
	token, _, err := s.signer.Sign(session.ID, msg.ID, ids)
	if err != nil {
		return nil, err
	}

	metrics.RoundsServed.Inc()
	return &models.Round{
		Token:       token,
		SessionID:   session.ID,
		MessageID:   msg.ID,
		MessageText: msg.MessageText,
		Options:     options,
	}, nil
}

// buildRound selects one message uniformly and offers its author plus up to
// maxDistractors other participants, sampled without replacement, in random
// order.
func buildRound(rng *rand.Rand, messages []*models.Message, participants []*models.Participant) (*models.Message, []models.Option, error) {
	if len(messages) == 0 || len(participants) < 2 {
		return nil, nil, &EmptyCorpusError{Messages: len(messages), Participants: len(participants)}
	}

	msg := messages[rng.Intn(len(messages))]

	var correct *models.Participant
	others := make([]*models.Participant, 0, len(participants)-1)
	for _, p := range participants {
		if p.ID == msg.ParticipantID {
			correct = p
			continue
		}
		others = append(others, p)
	}
	if correct == nil {
		return nil, nil, fmt.Errorf("message %d references participant %d outside its chat", msg.ID, msg.ParticipantID)
	}

	k := maxDistractors
	if len(others) < k {
		k = len(others)
	}
	options := make([]models.Option, 0, k+1)
	for _, i := range rng.Perm(len(others))[:k] {
		options = append(options, models.Option{ParticipantID: others[i].ID, Name: others[i].NameOnWhatsApp})
	}
	options = append(options, models.Option{ParticipantID: correct.ID, Name: correct.NameOnWhatsApp})
	rng.Shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })

	return msg, options, nil
}

// SubmitAnswer scores a guess, records it and reveals the author.
func (s *QuizService) SubmitAnswer(ctx context.Context, sessionID int64, in models.SubmitAnswerInput) (*models.AnswerResult, error) {
	in.PlayerUsername = strings.TrimSpace(in.PlayerUsername)
	if in.PlayerUsername == "" {
		return nil, fmt.Errorf("%w: player username is required", ErrInvalidInput)
	}

	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, notFound(err, "session", sessionID)
	}
	msg, err := s.chats.GetMessageByID(ctx, in.MessageID)
	if err != nil {
		return nil, notFound(err, "message", in.MessageID)
	}
	if msg.GroupChatID != session.GroupChatID {
		return nil, &NotFoundError{Entity: "message", ID: in.MessageID}
	}

	claims, release, err := s.redeemToken(ctx, session.ID, msg.ID, in)
	if err != nil {
		return nil, err
	}
	if claims != nil && !slices.Contains(claims.Options, in.SelectedParticipantID) {
		s.logger.Info("Answer outside the offered options",
			zap.Int64("session_id", session.ID),
			zap.Int64("message_id", msg.ID),
			zap.Int64("selected_participant_id", in.SelectedParticipantID))
	}

	answer := &models.SessionAnswer{
		SessionID:             session.ID,
		PlayerUsername:        in.PlayerUsername,
		MessageID:             msg.ID,
		SelectedParticipantID: in.SelectedParticipantID,
		IsCorrect:             in.SelectedParticipantID == msg.ParticipantID,
	}
	if err := s.sessions.CreateAnswer(ctx, answer); err != nil {
		s.logger.Error("Failed to store answer", zap.Int64("session_id", session.ID), zap.Error(err))
		release()
		return nil, err
	}

	outcome := "incorrect"
	if answer.IsCorrect {
		outcome = "correct"
	}
	metrics.Answers.WithLabelValues(outcome).Inc()

	participants, err := s.chats.GetParticipantsByGroupChat(ctx, session.GroupChatID)
	if err != nil {
		return nil, err
	}
	result := &models.AnswerResult{IsCorrect: answer.IsCorrect, CorrectParticipantID: msg.ParticipantID}
	for _, p := range participants {
		if p.ID == msg.ParticipantID {
			result.CorrectAnswer = p.NameOnWhatsApp
			break
		}
	}
	return result, nil
}

// redeemToken verifies the submitted round token and marks it used for the
// player. It returns nil claims when no token was submitted. release undoes
// the redemption and is always safe to call.
func (s *QuizService) redeemToken(ctx context.Context, sessionID, messageID int64, in models.SubmitAnswerInput) (*RoundClaims, func(), error) {
	noop := func() {}
	if in.RoundToken == "" {
		if s.cfg.RequireRoundToken {
			return nil, noop, fmt.Errorf("%w: round token is required", ErrInvalidRoundToken)
		}
		return nil, noop, nil
	}

	claims, err := s.signer.Verify(in.RoundToken)
	if err != nil {
		return nil, noop, err
	}
	if claims.SessionID != sessionID || claims.MessageID != messageID {
		return nil, noop, fmt.Errorf("%w: token was issued for another question", ErrInvalidRoundToken)
	}
	if s.guard == nil {
		return claims, noop, nil
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		ttl = time.Second
	}
	key := claims.ID + ":" + in.PlayerUsername
	ok, err := s.guard.Redeem(ctx, key, ttl)
	if err != nil {
		s.logger.Error("Round guard unavailable", zap.Error(err))
		return nil, noop, fmt.Errorf("round guard: %w", err)
	}
	if !ok {
		return nil, noop, ErrRoundAlreadyAnswered
	}

	release := func() {
		if err := s.guard.Release(context.WithoutCancel(ctx), key); err != nil {
			s.logger.Warn("Failed to release round token", zap.String("jti", claims.ID), zap.Error(err))
		}
	}
	return claims, release, nil
}

// Scoreboard returns per-player results for a session.
func (s *QuizService) Scoreboard(ctx context.Context, sessionID int64) ([]*models.PlayerScore, error) {
	if _, err := s.sessions.GetSession(ctx, sessionID); err != nil {
		return nil, notFound(err, "session", sessionID)
	}
	scores, err := s.sessions.Scoreboard(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if scores == nil {
		scores = []*models.PlayerScore{}
	}
	return scores, nil
}
