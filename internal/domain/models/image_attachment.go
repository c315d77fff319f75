package models

import (
	"time"
)

// ImageAttachment is a binary image pasted into a chat group
type ImageAttachment struct {
	ID          string    `json:"id"`
	ChatGroupID string    `json:"chat_group_id"`
	MimeType    string    `json:"mime_type"`
	Data        []byte    `json:"data"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (a ImageAttachment) Key() string { return a.ID }
