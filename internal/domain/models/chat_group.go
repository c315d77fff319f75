package models

import (
	"time"
)

// ChatGroup is a single conversation thread. A non-empty OwnSystemPrompt
// overrides anything inherited from the folder chain.
type ChatGroup struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	FolderID        *string   `json:"folder_id"` // nil = not filed
	OwnSystemPrompt string    `json:"own_system_prompt,omitempty"`
	Model           string    `json:"model,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (g ChatGroup) Key() string { return g.ID }
