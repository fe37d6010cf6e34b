package repository

import (
	"context"
	"time"

	"github.com/ArishaRashid/WhoYap/internal/models"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// SessionRepository persists game sessions, join requests and answers.
type SessionRepository interface {
	CreateSession(ctx context.Context, groupChatID int64, creator string) (*models.GameSession, error)
	GetSession(ctx context.Context, id int64) (*models.GameSession, error)
	CreateJoinRequest(ctx context.Context, sessionID int64, username string) (*models.JoinRequest, error)
	GetJoinRequest(ctx context.Context, id int64) (*models.JoinRequest, error)
	ListJoinRequests(ctx context.Context, sessionID int64, status string) ([]*models.JoinRequest, error)
	// DecideJoinRequest moves a pending request to status. It reports false
	// when the request was not pending (or does not exist).
	DecideJoinRequest(ctx context.Context, id int64, status string, respondedAt time.Time) (bool, error)
	CreateAnswer(ctx context.Context, answer *models.SessionAnswer) error
	Scoreboard(ctx context.Context, sessionID int64) ([]*models.PlayerScore, error)
}

type sessionRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewSessionRepository(db *sqlx.DB, logger *zap.Logger) SessionRepository {
	return &sessionRepository{db: db, logger: logger}
}

const joinRequestColumns = `id, session_id, requested_by_username, status, created_at, responded_at`

func (r *sessionRepository) CreateSession(ctx context.Context, groupChatID int64, creator string) (*models.GameSession, error) {
	s := &models.GameSession{
		GroupChatID:       groupChatID,
		CreatedByUsername: creator,
		CreatedAt:         time.Now().UTC(),
	}
	query := r.db.Rebind(`INSERT INTO game_sessions (group_chat_id, created_by_username, created_at) VALUES (?, ?, ?) RETURNING id`)
	if err := r.db.QueryRowxContext(ctx, query, s.GroupChatID, s.CreatedByUsername, s.CreatedAt).Scan(&s.ID); err != nil {
		return nil, wrapErr("create session", err)
	}
	return s, nil
}

func (r *sessionRepository) GetSession(ctx context.Context, id int64) (*models.GameSession, error) {
	var s models.GameSession
	query := r.db.Rebind(`SELECT id, group_chat_id, created_by_username, created_at FROM game_sessions WHERE id = ?`)
	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		return nil, wrapErr("get session", err)
	}
	return &s, nil
}

func (r *sessionRepository) CreateJoinRequest(ctx context.Context, sessionID int64, username string) (*models.JoinRequest, error) {
	jr := &models.JoinRequest{
		SessionID:           sessionID,
		RequestedByUsername: username,
		Status:              models.JoinStatusPending,
		CreatedAt:           time.Now().UTC(),
	}
	query := r.db.Rebind(`INSERT INTO join_requests (session_id, requested_by_username, status, created_at) VALUES (?, ?, ?, ?) RETURNING id`)
	if err := r.db.QueryRowxContext(ctx, query, jr.SessionID, jr.RequestedByUsername, jr.Status, jr.CreatedAt).Scan(&jr.ID); err != nil {
		return nil, wrapErr("create join request", err)
	}
	return jr, nil
}

func (r *sessionRepository) GetJoinRequest(ctx context.Context, id int64) (*models.JoinRequest, error) {
	var jr models.JoinRequest
	query := r.db.Rebind(`SELECT ` + joinRequestColumns + ` FROM join_requests WHERE id = ?`)
	if err := r.db.GetContext(ctx, &jr, query, id); err != nil {
		return nil, wrapErr("get join request", err)
	}
	return &jr, nil
}

// ListJoinRequests returns the requests of a session in filing order. An
// empty status returns all of them.
func (r *sessionRepository) ListJoinRequests(ctx context.Context, sessionID int64, status string) ([]*models.JoinRequest, error) {
	query := `SELECT ` + joinRequestColumns + ` FROM join_requests WHERE session_id = ?`
	args := []interface{}{sessionID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY id`

	var requests []*models.JoinRequest
	if err := r.db.SelectContext(ctx, &requests, r.db.Rebind(query), args...); err != nil {
		return nil, wrapErr("list join requests", err)
	}
	return requests, nil
}

func (r *sessionRepository) DecideJoinRequest(ctx context.Context, id int64, status string, respondedAt time.Time) (bool, error) {
	query := r.db.Rebind(`UPDATE join_requests SET status = ?, responded_at = ? WHERE id = ? AND status = ?`)
	res, err := r.db.ExecContext(ctx, query, status, respondedAt, id, models.JoinStatusPending)
	if err != nil {
		return false, wrapErr("decide join request", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrapErr("decide join request", err)
	}
	return n == 1, nil
}

func (r *sessionRepository) CreateAnswer(ctx context.Context, answer *models.SessionAnswer) error {
	if answer.AnsweredAt.IsZero() {
		answer.AnsweredAt = time.Now().UTC()
	}
	query := r.db.Rebind(`INSERT INTO session_answers (session_id, player_username, message_id, selected_participant_id, is_correct, answered_at)
	          VALUES (?, ?, ?, ?, ?, ?) RETURNING id`)
	err := r.db.QueryRowxContext(ctx, query, answer.SessionID, answer.PlayerUsername, answer.MessageID,
		answer.SelectedParticipantID, answer.IsCorrect, answer.AnsweredAt).Scan(&answer.ID)
	return wrapErr("create answer", err)
}

// Scoreboard aggregates answers per player, best first.
func (r *sessionRepository) Scoreboard(ctx context.Context, sessionID int64) ([]*models.PlayerScore, error) {
	query := r.db.Rebind(`SELECT player_username,
	                 SUM(CASE WHEN is_correct THEN 1 ELSE 0 END) AS correct,
	                 COUNT(*) AS total
	          FROM session_answers
	          WHERE session_id = ?
	          GROUP BY player_username
	          ORDER BY correct DESC, player_username`)
	var scores []*models.PlayerScore
	if err := r.db.SelectContext(ctx, &scores, query, sessionID); err != nil {
		return nil, wrapErr("scoreboard", err)
	}
	return scores, nil
}
