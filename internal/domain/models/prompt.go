package models

import (
	"time"
)

// CopyTitlePrefix marks the title of a duplicated prompt
const CopyTitlePrefix = "Copy of "

// Prompt is a reusable prompt from the user's library
type Prompt struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	Tags        []string  `json:"tags"`
	IsStarred   bool      `json:"is_starred"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (p Prompt) Key() string { return p.ID }
