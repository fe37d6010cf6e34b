package service

import (
	"errors"
	"fmt"

	"github.com/ArishaRashid/WhoYap/internal/repository"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrEmptyCorpus          = errors.New("empty corpus")
	ErrJoinRequestDecided   = errors.New("join request already decided")
	ErrInvalidRoundToken    = errors.New("invalid round token")
	ErrRoundAlreadyAnswered = errors.New("round already answered")
	ErrInvalidInput         = errors.New("invalid input")
)

// NotFoundError reports a missing session, chat, message or join request.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// EmptyCorpusError means a chat cannot produce a question: it has no
// messages or fewer than two participants.
type EmptyCorpusError struct {
	GroupChatID  int64
	Messages     int
	Participants int
}

func (e *EmptyCorpusError) Error() string {
	return fmt.Sprintf("group chat %d cannot produce a question: %d messages, %d participants",
		e.GroupChatID, e.Messages, e.Participants)
}

func (e *EmptyCorpusError) Is(target error) bool {
	return target == ErrEmptyCorpus
}

// notFound converts repository.ErrNotFound into a NotFoundError for entity.
// Store errors pass through unchanged.
func notFound(err error, entity string, id int64) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return err
}
