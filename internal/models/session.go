package models

import "time"

// Join request statuses. A request leaves pending exactly once.
const (
	JoinStatusPending  = "pending"
	JoinStatusApproved = "approved"
	JoinStatusDeclined = "declined"
)

// GameSession is the root of a play session bound to one group chat.
type GameSession struct {
	ID                int64     `db:"id" json:"id"`
	GroupChatID       int64     `db:"group_chat_id" json:"group_chat_id"`
	CreatedByUsername string    `db:"created_by_username" json:"created_by_username"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

// JoinRequest is a membership claim against a session.
type JoinRequest struct {
	ID                  int64      `db:"id" json:"id"`
	SessionID           int64      `db:"session_id" json:"session_id"`
	RequestedByUsername string     `db:"requested_by_username" json:"requested_by_username"`
	Status              string     `db:"status" json:"status"` // pending, approved, declined
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	RespondedAt         *time.Time `db:"responded_at" json:"responded_at,omitempty"`
}

// SessionAnswer is one submitted guess. Append-only.
type SessionAnswer struct {
	ID                    int64     `db:"id" json:"id"`
	SessionID             int64     `db:"session_id" json:"session_id"`
	PlayerUsername        string    `db:"player_username" json:"player_username"`
	MessageID             int64     `db:"message_id" json:"message_id"`
	SelectedParticipantID int64     `db:"selected_participant_id" json:"selected_participant_id"`
	IsCorrect             bool      `db:"is_correct" json:"is_correct"`
	AnsweredAt            time.Time `db:"answered_at" json:"answered_at"`
}

// PlayerScore is one scoreboard row.
type PlayerScore struct {
	PlayerUsername string `db:"player_username" json:"player_username"`
	Correct        int    `db:"correct" json:"correct"`
	Total          int    `db:"total" json:"total"`
}

// Option is one multiple-choice answer shown to the player.
type Option struct {
	ParticipantID int64  `json:"participant_id"`
	Name          string `json:"name"`
}

// Round is one "who sent this message" question. It deliberately carries no
// correct answer; the token is redeemed when the answer is submitted.
type Round struct {
	Token       string   `json:"round_token"`
	SessionID   int64    `json:"session_id"`
	MessageID   int64    `json:"message_id"`
	MessageText string   `json:"message_text"`
	Options     []Option `json:"options"`
}

// AnswerResult is returned after scoring a guess.
type AnswerResult struct {
	IsCorrect            bool   `json:"is_correct"`
	CorrectParticipantID int64  `json:"correct_participant_id"`
	CorrectAnswer        string `json:"correct_answer"`
}

// CreateSessionInput represents input for creating a game session
type CreateSessionInput struct {
	Username    string `json:"username" binding:"required"`
	GroupChatID int64  `json:"group_chat_id" binding:"required"`
}

// RequestJoinInput represents input for filing a join request
type RequestJoinInput struct {
	Username string `json:"username" binding:"required"`
}

// DecideJoinInput represents input for approving or declining a join request
type DecideJoinInput struct {
	Approve *bool `json:"approve" binding:"required"`
}

// SubmitAnswerInput represents a submitted guess.
type SubmitAnswerInput struct {
	PlayerUsername        string `json:"player_username" binding:"required"`
	MessageID             int64  `json:"message_id" binding:"required"`
	SelectedParticipantID int64  `json:"selected_participant_id"`
	RoundToken            string `json:"round_token"`
}
