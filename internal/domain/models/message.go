package models

import (
	"time"
)

// Message roles accepted by the store and emitted by the conversation assembler
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is one entry of a chat group. ChatID distinguishes parallel chats
// (one per model) inside the same group; it defaults to the group id.
type Message struct {
	ID          string    `json:"id"`
	ChatID      string    `json:"chat_id"`
	ChatGroupID string    `json:"chat_group_id"`
	Role        string    `json:"role"`
	Content     string    `json:"content"`
	Model       *string   `json:"model,omitempty"`
	Starred     bool      `json:"starred"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (m Message) Key() string { return m.ID }

// ChatMessage is the role/content pair handed to model invocation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
