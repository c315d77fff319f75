package repositories

import "fmt"

// Collection names one durable table of entities
type Collection string

const (
	Folders          Collection = "folders"
	ChatGroups       Collection = "chat_groups"
	Messages         Collection = "messages"
	Prompts          Collection = "prompts"
	CustomModels     Collection = "custom_models"
	MCPServers       Collection = "mcp_servers"
	ImageAttachments Collection = "image_attachments"
)

// AllCollections lists every collection in creation order
var AllCollections = []Collection{
	Folders,
	ChatGroups,
	Messages,
	Prompts,
	CustomModels,
	MCPServers,
	ImageAttachments,
}

// IndexedFields lists the JSON fields each collection can be queried by
var IndexedFields = map[Collection][]string{
	Folders:          {"parent_folder_id"},
	ChatGroups:       {"folder_id"},
	Messages:         {"chat_group_id", "chat_id"},
	CustomModels:     {"is_active"},
	MCPServers:       {"is_active"},
	ImageAttachments: {"chat_group_id"},
}

// IsIndexed reports whether field is an indexed field of the collection
func IsIndexed(c Collection, field string) bool {
	for _, f := range IndexedFields[c] {
		if f == field {
			return true
		}
	}
	return false
}

// TableNames maps collections to prefixed table names
type TableNames struct {
	prefix string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{prefix: prefix}
}

// For returns the table name of a collection
func (t *TableNames) For(c Collection) string {
	if t == nil {
		return string(c)
	}
	return fmt.Sprintf("%s%s", t.prefix, c)
}
