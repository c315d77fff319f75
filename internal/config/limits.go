package config

const (
	// MaxFolderNameLength is the maximum length for folder names.
	MaxFolderNameLength = 255

	// MaxChatGroupNameLength is the maximum length for chat group names.
	MaxChatGroupNameLength = 255

	// MaxPromptTitleLength is the maximum length for prompt titles.
	// Leaves room for the "Copy of " prefix added by duplication.
	MaxPromptTitleLength = 240

	// MaxSystemPromptLength bounds folder and chat group system prompts.
	MaxSystemPromptLength = 100_000

	// MaxTagLength is the maximum length of a single prompt tag.
	MaxTagLength = 64

	// MaxTagsPerPrompt is the maximum number of tags on one prompt.
	MaxTagsPerPrompt = 32

	// MaxImageBytes is the largest image attachment accepted (20 MiB).
	MaxImageBytes = 20 << 20

	// MaxServerNameLength is the maximum length for MCP server and custom model names.
	MaxServerNameLength = 128
)
