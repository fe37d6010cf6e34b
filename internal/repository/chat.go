package repository

import (
	"context"
	"time"

	"github.com/ArishaRashid/WhoYap/internal/models"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// ChatRepository persists imported chats, their participants and messages.
type ChatRepository interface {
	CreateGroupChat(ctx context.Context, name, uploader string) (*models.GroupChat, error)
	GetGroupChat(ctx context.Context, id int64) (*models.GroupChat, error)
	CreateParticipant(ctx context.Context, groupChatID int64, name string) (*models.Participant, error)
	CreateMessage(ctx context.Context, groupChatID, participantID int64, timestamp time.Time, text string) (*models.Message, error)
	StoreEmbedding(ctx context.Context, messageID int64, vector models.Vector, model string) error
	GetEmbedding(ctx context.Context, messageID int64) (*models.MessageEmbedding, error)
	GetMessagesByGroupChat(ctx context.Context, groupChatID int64) ([]*models.Message, error)
	GetParticipantsByGroupChat(ctx context.Context, groupChatID int64) ([]*models.Participant, error)
	GetMessageByID(ctx context.Context, id int64) (*models.Message, error)
	ListUnembeddedMessages(ctx context.Context, groupChatID, afterID int64, limit int) ([]*models.Message, error)
	// WithTx runs fn against a repository bound to one transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(ChatRepository) error) error
}

type chatRepository struct {
	db     *sqlx.DB
	ext    sqlx.ExtContext
	logger *zap.Logger
}

func NewChatRepository(db *sqlx.DB, logger *zap.Logger) ChatRepository {
	return &chatRepository{db: db, ext: db, logger: logger}
}

const messageColumns = `id, group_chat_id, participant_id, sent_at, message_text`

func (r *chatRepository) CreateGroupChat(ctx context.Context, name, uploader string) (*models.GroupChat, error) {
	chat := &models.GroupChat{
		ChatName:           name,
		UploadedByUsername: uploader,
		CreatedAt:          time.Now().UTC(),
	}
	query := r.ext.Rebind(`INSERT INTO group_chats (chat_name, uploaded_by_username, created_at) VALUES (?, ?, ?) RETURNING id`)
	if err := r.ext.QueryRowxContext(ctx, query, chat.ChatName, chat.UploadedByUsername, chat.CreatedAt).Scan(&chat.ID); err != nil {
		return nil, wrapErr("create group chat", err)
	}
	return chat, nil
}

func (r *chatRepository) GetGroupChat(ctx context.Context, id int64) (*models.GroupChat, error) {
	var chat models.GroupChat
	query := r.ext.Rebind(`SELECT id, chat_name, uploaded_by_username, created_at FROM group_chats WHERE id = ?`)
	if err := sqlx.GetContext(ctx, r.ext, &chat, query, id); err != nil {
		return nil, wrapErr("get group chat", err)
	}
	return &chat, nil
}

func (r *chatRepository) CreateParticipant(ctx context.Context, groupChatID int64, name string) (*models.Participant, error) {
	p := &models.Participant{GroupChatID: groupChatID, NameOnWhatsApp: name}
	query := r.ext.Rebind(`INSERT INTO participants (group_chat_id, name_on_whatsapp) VALUES (?, ?) RETURNING id`)
	if err := r.ext.QueryRowxContext(ctx, query, groupChatID, name).Scan(&p.ID); err != nil {
		return nil, wrapErr("create participant", err)
	}
	return p, nil
}

func (r *chatRepository) CreateMessage(ctx context.Context, groupChatID, participantID int64, timestamp time.Time, text string) (*models.Message, error) {
	msg := &models.Message{
		GroupChatID:   groupChatID,
		ParticipantID: participantID,
		Timestamp:     timestamp,
		MessageText:   text,
	}
	query := r.ext.Rebind(`INSERT INTO messages (group_chat_id, participant_id, sent_at, message_text) VALUES (?, ?, ?, ?) RETURNING id`)
	if err := r.ext.QueryRowxContext(ctx, query, groupChatID, participantID, timestamp, text).Scan(&msg.ID); err != nil {
		return nil, wrapErr("create message", err)
	}
	return msg, nil
}

// StoreEmbedding inserts or replaces the embedding of one message.
func (r *chatRepository) StoreEmbedding(ctx context.Context, messageID int64, vector models.Vector, model string) error {
	query := r.ext.Rebind(`INSERT INTO message_embeddings (message_id, embedding, model, created_at) VALUES (?, ?, ?, ?)
	          ON CONFLICT (message_id) DO UPDATE SET embedding = excluded.embedding, model = excluded.model, created_at = excluded.created_at`)
	_, err := r.ext.ExecContext(ctx, query, messageID, vector, model, time.Now().UTC())
	return wrapErr("store embedding", err)
}

func (r *chatRepository) GetEmbedding(ctx context.Context, messageID int64) (*models.MessageEmbedding, error) {
	var e models.MessageEmbedding
	query := r.ext.Rebind(`SELECT message_id, embedding, model, created_at FROM message_embeddings WHERE message_id = ?`)
	if err := sqlx.GetContext(ctx, r.ext, &e, query, messageID); err != nil {
		return nil, wrapErr("get embedding", err)
	}
	return &e, nil
}

func (r *chatRepository) GetMessagesByGroupChat(ctx context.Context, groupChatID int64) ([]*models.Message, error) {
	var messages []*models.Message
	query := r.ext.Rebind(`SELECT ` + messageColumns + ` FROM messages WHERE group_chat_id = ? ORDER BY id`)
	if err := sqlx.SelectContext(ctx, r.ext, &messages, query, groupChatID); err != nil {
		return nil, wrapErr("get messages", err)
	}
	return messages, nil
}

func (r *chatRepository) GetParticipantsByGroupChat(ctx context.Context, groupChatID int64) ([]*models.Participant, error) {
	var participants []*models.Participant
	query := r.ext.Rebind(`SELECT id, group_chat_id, name_on_whatsapp FROM participants WHERE group_chat_id = ? ORDER BY id`)
	if err := sqlx.SelectContext(ctx, r.ext, &participants, query, groupChatID); err != nil {
		return nil, wrapErr("get participants", err)
	}
	return participants, nil
}

func (r *chatRepository) GetMessageByID(ctx context.Context, id int64) (*models.Message, error) {
	var msg models.Message
	query := r.ext.Rebind(`SELECT ` + messageColumns + ` FROM messages WHERE id = ?`)
	if err := sqlx.GetContext(ctx, r.ext, &msg, query, id); err != nil {
		return nil, wrapErr("get message", err)
	}
	return &msg, nil
}

// ListUnembeddedMessages returns non-blank messages without a stored
// embedding whose id is greater than afterID, oldest first. A zero
// groupChatID scans every chat.
func (r *chatRepository) ListUnembeddedMessages(ctx context.Context, groupChatID, afterID int64, limit int) ([]*models.Message, error) {
	query := `SELECT m.id, m.group_chat_id, m.participant_id, m.sent_at, m.message_text
	          FROM messages m
	          LEFT JOIN message_embeddings e ON e.message_id = m.id
	          WHERE e.message_id IS NULL AND m.id > ? AND TRIM(m.message_text) <> ''`
	args := []interface{}{afterID}
	if groupChatID != 0 {
		query += ` AND m.group_chat_id = ?`
		args = append(args, groupChatID)
	}
	query += ` ORDER BY m.id LIMIT ?`
	args = append(args, limit)

	var messages []*models.Message
	if err := sqlx.SelectContext(ctx, r.ext, &messages, r.ext.Rebind(query), args...); err != nil {
		return nil, wrapErr("list unembedded messages", err)
	}
	return messages, nil
}

func (r *chatRepository) WithTx(ctx context.Context, fn func(ChatRepository) error) error {
	if r.db == nil {
		// Already inside a transaction.
		return fn(r)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return wrapErr("begin transaction", err)
	}

	if err := fn(&chatRepository{ext: tx, logger: r.logger}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			r.logger.Error("Failed to roll back transaction", zap.Error(rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return wrapErr("commit transaction", err)
	}
	return nil
}
