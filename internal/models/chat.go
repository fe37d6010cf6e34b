package models

import "time"

// GroupChat is one imported transcript.
type GroupChat struct {
	ID                 int64     `db:"id" json:"id"`
	ChatName           string    `db:"chat_name" json:"chat_name"`
	UploadedByUsername string    `db:"uploaded_by_username" json:"uploaded_by_username"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

// Participant is a distinct sender name within one group chat.
type Participant struct {
	ID             int64  `db:"id" json:"id"`
	GroupChatID    int64  `db:"group_chat_id" json:"group_chat_id"`
	NameOnWhatsApp string `db:"name_on_whatsapp" json:"name_on_whatsapp"`
}

// Message represents a message stored in the 'messages' table.
type Message struct {
	ID            int64     `db:"id" json:"id"`
	GroupChatID   int64     `db:"group_chat_id" json:"group_chat_id"`
	ParticipantID int64     `db:"participant_id" json:"participant_id"`
	Timestamp     time.Time `db:"sent_at" json:"timestamp"`
	MessageText   string    `db:"message_text" json:"message_text"`
}

// MessageEmbedding is derived data, one row per message.
type MessageEmbedding struct {
	MessageID int64     `db:"message_id" json:"message_id"`
	Embedding Vector    `db:"embedding" json:"embedding"`
	Model     string    `db:"model" json:"model"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ImportChatInput is the body of POST /api/v1/chats/import.
// Either UploadID or Transcript must be set.
type ImportChatInput struct {
	Username   string `json:"username" binding:"required"`
	ChatName   string `json:"chat_name" binding:"required"`
	UploadID   string `json:"upload_id"`
	Transcript string `json:"transcript"`
}
