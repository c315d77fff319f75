package models

// PromptSource says where an effective system prompt came from
type PromptSource string

const (
	PromptSourceChat   PromptSource = "chat"
	PromptSourceFolder PromptSource = "folder"
	PromptSourceNone   PromptSource = "none"
)

// EffectivePrompt is the resolved system prompt of a chat group (or the
// prompt a folder inherits from its ancestors).
type EffectivePrompt struct {
	Prompt   string       `json:"prompt"`
	Source   PromptSource `json:"source"`
	SourceID string       `json:"source_id,omitempty"`
}

// NoPrompt is the terminal "nothing found" resolution
func NoPrompt() EffectivePrompt {
	return EffectivePrompt{Source: PromptSourceNone}
}

// PromptChange describes how a pending folder prompt edit would alter a chat group
type PromptChange struct {
	ChatGroupID string          `json:"chat_group_id"`
	Before      EffectivePrompt `json:"before"`
	After       EffectivePrompt `json:"after"`
}
