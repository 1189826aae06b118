package puter

import (
	"time"

	"github.com/google/uuid"
)

// OpenAIResponse mirrors the chat.completion response schema, for
// callers that already speak the OpenAI API shape.
type OpenAIResponse struct {
	ID      string         `json:"id"`
	Object  string         `json:"object"`
	Created int64          `json:"created"`
	Model   string         `json:"model"`
	Choices []OpenAIChoice `json:"choices"`
}

type OpenAIChoice struct {
	Index        int           `json:"index"`
	Message      OpenAIMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type OpenAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ToOpenAIResponse wraps a normalized result into the chat.completion
// shape.
func ToOpenAIResponse(result *Result, model string) OpenAIResponse {
	return OpenAIResponse{
		ID:      "chatcmpl-" + uuid.New().String(),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   model,
		Choices: []OpenAIChoice{
			{
				Index:        0,
				Message:      OpenAIMessage{Role: "assistant", Content: result.Text},
				FinishReason: "stop",
			},
		},
	}
}
