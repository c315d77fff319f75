package models

import (
	"time"
)

// CustomModel is a user-defined model endpoint
type CustomModel struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Provider      string    `json:"provider"`
	ModelID       string    `json:"model_id"`
	BaseURL       string    `json:"base_url"`
	APIKey        string    `json:"api_key,omitempty"`
	ContextWindow int       `json:"context_window"`
	Temperature   *float64  `json:"temperature,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (m CustomModel) Key() string { return m.ID }
