package entity

import "time"

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is a single turn in a conversation.
type Message struct {
	Role      Role              `json:"role"`
	Content   string            `json:"content"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Conversation is the per-session message history. Messages are ordered
// oldest first.
type Conversation struct {
	ID        string    `json:"id"`
	PersonaID string    `json:"personaId"`
	ChannelID string    `json:"channelId"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Summary is a cheap aggregate view of a conversation.
type Summary struct {
	ID            string    `json:"id"`
	PersonaID     string    `json:"personaId"`
	ChannelID     string    `json:"channelId"`
	MessageCount  int       `json:"messageCount"`
	UserMessages  int       `json:"userMessages"`
	FirstActivity time.Time `json:"firstActivity"`
	LastActivity  time.Time `json:"lastActivity"`
	Preview       string    `json:"preview,omitempty"`
}
