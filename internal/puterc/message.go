// Package puterc holds the core conversation types shared by the CLI
// commands and the session store.
package puterc

import "time"

// Conversation roles. The set is open; the backend accepts roles
// beyond these.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single message in a conversation.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
