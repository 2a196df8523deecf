package api

import (
	"time"

	"github.com/shopspring/decimal"
)

// Conversation is a chat thread on the workspace server.
type Conversation struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	UserID          string    `json:"user_id"`
	AssistantID     string    `json:"assistant_id,omitempty"`
	ModelProviderID string    `json:"model_provider_id,omitempty"`
	ModelID         string    `json:"model_id,omitempty"`
	ActiveBranchID  string    `json:"active_branch_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ConversationSummary is the list-view projection of a conversation.
type ConversationSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	LastMessage  string    `json:"last_message,omitempty"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Message is a single message in a conversation. Lineage position is
// the created_at timestamp: sibling branches share it. The server
// keeps exactly one active sibling per lineage position.
type Message struct {
	ID               string    `json:"id"`
	ConversationID   string    `json:"conversation_id"`
	ParentID         string    `json:"parent_id,omitempty"`
	Role             string    `json:"role"`
	Content          string    `json:"content"`
	BranchID         string    `json:"branch_id"`
	IsActiveBranch   bool      `json:"is_active_branch"`
	OriginatedFromID string    `json:"originated_from_id,omitempty"`
	EditCount        int       `json:"edit_count"`
	ModelProviderID  string    `json:"model_provider_id,omitempty"`
	ModelID          string    `json:"model_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ConversationList is a paginated page of conversation summaries.
type ConversationList struct {
	Conversations []ConversationSummary `json:"conversations"`
	Total         int                   `json:"total"`
	Page          int                   `json:"page"`
	PerPage       int                   `json:"per_page"`
}

// RAG engine types.
const (
	EngineSimpleVector = "simple_vector"
	EngineSimpleGraph  = "simple_graph"
)

// RAG file processing statuses.
const (
	FileStatusPending    = "pending"
	FileStatusProcessing = "processing"
	FileStatusCompleted  = "completed"
	FileStatusFailed     = "failed"
)

// RAGInstance is a retrieval index owned by a user or team.
type RAGInstance struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Description      string          `json:"description,omitempty"`
	EngineType       string          `json:"engine_type"`
	EngineSettings   map[string]any  `json:"engine_settings,omitempty"`
	EmbeddingModelID string          `json:"embedding_model_id,omitempty"`
	LLMModelID       string          `json:"llm_model_id,omitempty"`
	Enabled          bool            `json:"enabled"`
	Files            []RAGInstanceFile `json:"files,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// RAGInstanceFile is a document uploaded to an instance, tracked
// through its ingestion pipeline.
type RAGInstanceFile struct {
	ID               string    `json:"id"`
	RAGInstanceID    string    `json:"rag_instance_id"`
	Filename         string    `json:"filename"`
	SizeBytes        int64     `json:"size_bytes"`
	ProcessingStatus string    `json:"processing_status"`
	ProcessingError  string    `json:"processing_error,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// RAGInstanceList is a paginated page of RAG instances.
type RAGInstanceList struct {
	Instances []RAGInstance `json:"instances"`
	Total     int           `json:"total"`
	Page      int           `json:"page"`
	PerPage   int           `json:"per_page"`
}

// RAGFileList is a paginated page of instance files.
type RAGFileList struct {
	Files   []RAGInstanceFile `json:"files"`
	Total   int               `json:"total"`
	Page    int               `json:"page"`
	PerPage int               `json:"per_page"`
}

// RAGStatus is a point-in-time ingestion summary for an instance.
type RAGStatus struct {
	InstanceID      string            `json:"instance_id"`
	TotalFiles      int               `json:"total_files"`
	ProcessedFiles  int               `json:"processed_files"`
	ProcessingFiles int               `json:"processing_files"`
	FailedFiles     int               `json:"failed_files"`
	Files           []RAGInstanceFile `json:"files"`
}

// Provider is an upstream model provider configured on the server.
type Provider struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	BaseURL   string    `json:"base_url,omitempty"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Model is a model exposed by a provider. Prices are per million
// tokens; decimals avoid float drift in the admin views.
type Model struct {
	ID               string          `json:"id"`
	ProviderID       string          `json:"provider_id"`
	Name             string          `json:"name"`
	DisplayName      string          `json:"display_name,omitempty"`
	ContextLength    int             `json:"context_length,omitempty"`
	InputPricePerM   decimal.Decimal `json:"input_price_per_m"`
	OutputPricePerM  decimal.Decimal `json:"output_price_per_m"`
	SupportsStreaming bool           `json:"supports_streaming"`
	Enabled          bool            `json:"enabled"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// User is a workspace account.
type User struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email,omitempty"`
	DisplayName string    `json:"display_name,omitempty"`
	Active      bool      `json:"active"`
	Groups      []string  `json:"groups,omitempty"`
	Permissions []string  `json:"permissions,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserGroup bundles permissions for assignment to users.
type UserGroup struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Permissions []string  `json:"permissions"`
	ProviderIDs []string  `json:"provider_ids,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserList is a paginated page of users.
type UserList struct {
	Users   []User `json:"users"`
	Total   int    `json:"total"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
}
