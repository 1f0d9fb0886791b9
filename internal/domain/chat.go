package domain

// Chat is a conversation summary as listed by GET chat
type Chat struct {
	ID           ID        `json:"id"`
	Title        string    `json:"title"`
	Model        string    `json:"model"`
	SystemPrompt *string   `json:"system_prompt,omitempty"`
	CreatedAt    Timestamp `json:"created_at"`
	UpdatedAt    Timestamp `json:"updated_at"`
}

// ChatWithMessages is the detail returned by GET chat/{id}
type ChatWithMessages struct {
	Chat
	Messages []Message `json:"messages"`
}

// ChatCreate represents conversation creation data
type ChatCreate struct {
	Title        string  `json:"title" validate:"required,max=255"`
	Model        string  `json:"model" validate:"required,max=255"`
	SystemPrompt *string `json:"system_prompt"`
}

// DefaultChatTitle is the title given to new conversations
const DefaultChatTitle = "New conversation"

// Conversation is the currently open conversation held by the chat store.
// The zero value is the empty, uninitialized conversation.
type Conversation struct {
	ID        ID
	Title     string
	Model     string
	Messages  []Message
	IsLoading bool
	Phase     Phase
}

// Phase is the loading lifecycle of the current conversation
type Phase string

const (
	PhaseIdle    Phase = ""
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
)

// IsZero reports whether no conversation is open
func (c Conversation) IsZero() bool {
	return c.ID.IsZero()
}

// Summary returns the list entry for the conversation
func (c Conversation) Summary() Chat {
	return Chat{ID: c.ID, Title: c.Title, Model: c.Model}
}

// Model describes a model the backend can chat with
type Model struct {
	ID          ID             `json:"id"`
	Name        string         `json:"name"`
	Provider    string         `json:"provider"`
	ModelID     string         `json:"model_id"`
	Description string         `json:"description,omitempty"`
	Settings    map[string]any `json:"settings,omitempty"`
	CreatedAt   Timestamp      `json:"created_at"`
}
