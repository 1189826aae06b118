package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/RealHickory4944/puter/internal/puterc"
)

// Session represents a conversation session. Sessions persist
// conversations only; tokens are never written to disk.
type Session struct {
	ID           string           `json:"id"`            // UUID v4
	Name         string           `json:"name"`          // Optional session name (empty by default)
	TemplateName string           `json:"template_name"` // Prompt template name (reference info, can be empty)
	SystemPrompt string           `json:"system_prompt"` // System prompt snapshot (can be empty)
	Model        string           `json:"model"`         // Model name
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	Messages     []puterc.Message `json:"messages"`
}

// NewSession creates a new session with the given model.
func NewSession(model string) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.New().String(),
		Model:     model,
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  []puterc.Message{},
	}
}

// AddMessage adds a new message to the session.
func (s *Session) AddMessage(role, content string) {
	s.Messages = append(s.Messages, puterc.Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
	s.UpdatedAt = time.Now()
}

// GetShortID returns the shortened session ID (first 8 characters).
func (s *Session) GetShortID() string {
	if len(s.ID) >= 8 {
		return s.ID[:8]
	}
	return s.ID
}

// GetDisplayName returns the name if set, otherwise the short ID.
func (s *Session) GetDisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.GetShortID()
}

// MessageCount returns the number of messages in the session.
func (s *Session) MessageCount() int {
	return len(s.Messages)
}
