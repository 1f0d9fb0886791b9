package domain

import (
	"fmt"
	"time"
)

// MessageRole represents the sender of a message
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// MessageStatus tracks server acknowledgment of a message. It is client
// state only and never sent over the wire.
type MessageStatus string

const (
	StatusPending   MessageStatus = "pending"
	StatusConfirmed MessageStatus = "confirmed"
	StatusFailed    MessageStatus = "failed"
)

// Message represents a chat message
type Message struct {
	ID        ID             `json:"id"`
	Role      MessageRole    `json:"role"`
	Content   string         `json:"content"`
	CreatedAt Timestamp      `json:"created_at"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Status    MessageStatus  `json:"-"`
}

// MessageCreate is the body of POST chat/{id}/messages
type MessageCreate struct {
	Role    MessageRole `json:"role" validate:"required,oneof=user assistant system"`
	Content string      `json:"content" validate:"required"`
}

// ChatResponse is the assistant reply returned by POST chat/{id}/messages
type ChatResponse struct {
	ID        ID             `json:"id"`
	Content   string         `json:"content"`
	CreatedAt Timestamp      `json:"created_at"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Message converts the reply into a confirmed assistant message
func (r ChatResponse) Message() Message {
	return Message{
		ID:        r.ID,
		Role:      RoleAssistant,
		Content:   r.Content,
		CreatedAt: r.CreatedAt,
		Metadata:  r.Metadata,
		Status:    StatusConfirmed,
	}
}

// ProvisionalID derives a temporary message id from the client clock
func ProvisionalID(now time.Time) ID {
	return ID(fmt.Sprintf("temp-%d", now.UnixNano()))
}

// IsProvisional reports whether the id was generated client side
func (id ID) IsProvisional() bool {
	return len(id) > 5 && id[:5] == "temp-"
}
