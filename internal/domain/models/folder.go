package models

import (
	"time"
)

// Folder groups chat groups and nested folders. Folders form a forest through
// ParentFolderID and may carry a default system prompt for everything below them.
type Folder struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	ParentFolderID *string   `json:"parent_folder_id"` // nil = root level
	SystemPrompt   string    `json:"system_prompt,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (f Folder) Key() string { return f.ID }

// FolderRef is one step of a folder ancestry path
type FolderRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FolderTreeNode represents a folder in the sidebar tree with nested children
type FolderTreeNode struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	ParentFolderID  *string           `json:"parent_folder_id"`
	HasSystemPrompt bool              `json:"has_system_prompt"`
	Folders         []*FolderTreeNode `json:"folders"`
	ChatGroupIDs    []string          `json:"chat_group_ids"`
}
