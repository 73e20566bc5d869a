package models

import (
	"time"

	"github.com/google/uuid"
)

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

type Message struct {
	ID             uuid.UUID   `db:"id"`
	ConversationID uuid.UUID   `db:"conversation_id"`
	Role           MessageRole `db:"role"`
	Content        string      `db:"content"`
	CreatedAt      time.Time   `db:"created_at"`
}
