package handler

import "net/http"

// Handlers groups every HTTP handler of the API
type Handlers struct {
	Folders      *FolderHandler
	ChatGroups   *ChatGroupHandler
	Messages     *MessageHandler
	Prompts      *PromptHandler
	CustomModels *CustomModelHandler
	MCPServers   *MCPServerHandler
	Images       *ImageHandler
	Live         *LiveHandler
}

// RegisterRoutes mounts the API on mux
func RegisterRoutes(mux *http.ServeMux, h *Handlers) {
	mux.HandleFunc("GET /health", HealthCheck)

	// Folders
	mux.HandleFunc("GET /api/tree", h.Folders.GetTree)
	mux.HandleFunc("GET /api/folders", h.Folders.ListFolders)
	mux.HandleFunc("POST /api/folders", h.Folders.CreateFolder)
	mux.HandleFunc("GET /api/folders/{id}", h.Folders.GetFolder)
	mux.HandleFunc("PATCH /api/folders/{id}", h.Folders.UpdateFolder)
	mux.HandleFunc("DELETE /api/folders/{id}", h.Folders.DeleteFolder)
	mux.HandleFunc("GET /api/folders/{id}/inherited-prompt", h.Folders.GetInheritedPrompt)
	mux.HandleFunc("GET /api/folders/{id}/affected-chat-groups", h.Folders.GetAffectedChatGroups)
	mux.HandleFunc("POST /api/folders/{id}/prompt-preview", h.Folders.PreviewPrompt)

	// Chat groups
	mux.HandleFunc("GET /api/chat-groups", h.ChatGroups.ListChatGroups)
	mux.HandleFunc("POST /api/chat-groups", h.ChatGroups.CreateChatGroup)
	mux.HandleFunc("GET /api/chat-groups/{id}", h.ChatGroups.GetChatGroup)
	mux.HandleFunc("PATCH /api/chat-groups/{id}", h.ChatGroups.UpdateChatGroup)
	mux.HandleFunc("DELETE /api/chat-groups/{id}", h.ChatGroups.DeleteChatGroup)
	mux.HandleFunc("GET /api/chat-groups/{id}/messages", h.ChatGroups.ListMessages)
	mux.HandleFunc("DELETE /api/chat-groups/{id}/messages", h.ChatGroups.DeleteMessages)
	mux.HandleFunc("GET /api/chat-groups/{id}/effective-prompt", h.ChatGroups.GetEffectivePrompt)
	mux.HandleFunc("GET /api/chat-groups/{id}/ancestry", h.ChatGroups.GetAncestry)
	mux.HandleFunc("POST /api/chat-groups/{id}/conversation", h.ChatGroups.AssembleConversation)
	mux.HandleFunc("GET /api/chat-groups/{id}/images", h.ChatGroups.ListImages)
	mux.HandleFunc("POST /api/chat-groups/{id}/images", h.ChatGroups.UploadImage)

	// Messages
	mux.HandleFunc("POST /api/messages", h.Messages.CreateMessage)
	mux.HandleFunc("GET /api/messages/{id}", h.Messages.GetMessage)
	mux.HandleFunc("PATCH /api/messages/{id}", h.Messages.UpdateMessage)
	mux.HandleFunc("DELETE /api/messages/{id}", h.Messages.DeleteMessage)
	mux.HandleFunc("POST /api/messages/{id}/star", h.Messages.ToggleStar)

	// Prompt library
	mux.HandleFunc("GET /api/prompts", h.Prompts.ListPrompts)
	mux.HandleFunc("POST /api/prompts", h.Prompts.CreatePrompt)
	mux.HandleFunc("GET /api/prompts/{id}", h.Prompts.GetPrompt)
	mux.HandleFunc("PATCH /api/prompts/{id}", h.Prompts.UpdatePrompt)
	mux.HandleFunc("DELETE /api/prompts/{id}", h.Prompts.DeletePrompt)
	mux.HandleFunc("POST /api/prompts/{id}/star", h.Prompts.ToggleStar)
	mux.HandleFunc("POST /api/prompts/{id}/duplicate", h.Prompts.Duplicate)

	// Custom models
	mux.HandleFunc("GET /api/providers", h.CustomModels.ListProviders)
	mux.HandleFunc("GET /api/custom-models", h.CustomModels.ListCustomModels)
	mux.HandleFunc("POST /api/custom-models", h.CustomModels.CreateCustomModel)
	mux.HandleFunc("GET /api/custom-models/{id}", h.CustomModels.GetCustomModel)
	mux.HandleFunc("PATCH /api/custom-models/{id}", h.CustomModels.UpdateCustomModel)
	mux.HandleFunc("DELETE /api/custom-models/{id}", h.CustomModels.DeleteCustomModel)
	mux.HandleFunc("POST /api/custom-models/{id}/toggle", h.CustomModels.ToggleActive)

	// Tool servers
	mux.HandleFunc("GET /api/mcp-servers", h.MCPServers.ListMCPServers)
	mux.HandleFunc("POST /api/mcp-servers", h.MCPServers.CreateMCPServer)
	mux.HandleFunc("GET /api/mcp-servers/{id}", h.MCPServers.GetMCPServer)
	mux.HandleFunc("PATCH /api/mcp-servers/{id}", h.MCPServers.UpdateMCPServer)
	mux.HandleFunc("DELETE /api/mcp-servers/{id}", h.MCPServers.DeleteMCPServer)
	mux.HandleFunc("POST /api/mcp-servers/{id}/toggle", h.MCPServers.ToggleActive)
	mux.HandleFunc("POST /api/mcp-servers/{id}/probe", h.MCPServers.Probe)

	// Images
	mux.HandleFunc("GET /api/images/{id}", h.Images.GetImage)
	mux.HandleFunc("DELETE /api/images/{id}", h.Images.DeleteImage)

	// Live queries
	mux.HandleFunc("GET /api/live", h.Live.ListQueries)
	mux.HandleFunc("GET /api/live/{query}", h.Live.Stream)
}
