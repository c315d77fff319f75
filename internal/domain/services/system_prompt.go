package services

import (
	"context"

	"chatterhub/internal/domain/models"
)

// SystemPromptResolver resolves inherited system prompts through the folder tree.
// Results are computed from current store state on every call.
type SystemPromptResolver interface {
	// EffectivePrompt resolves a chat group's prompt: own override, else the
	// nearest ancestor folder prompt, else none.
	EffectivePrompt(ctx context.Context, chatGroupID string) (models.EffectivePrompt, error)

	// InheritedForFolder resolves what a folder inherits from its ancestors,
	// excluding its own prompt.
	InheritedForFolder(ctx context.Context, folderID string) (models.EffectivePrompt, error)

	// AffectedChatGroups lists chat groups whose effective prompt comes from folderID
	AffectedChatGroups(ctx context.Context, folderID string) ([]string, error)

	// AncestryPath lists the folders above a chat group, root first
	AncestryPath(ctx context.Context, chatGroupID string) ([]models.FolderRef, error)

	// PreviewFolderPrompt reports chat groups whose effective prompt would change
	// if folderID's prompt became newPrompt
	PreviewFolderPrompt(ctx context.Context, folderID, newPrompt string) ([]models.PromptChange, error)
}
