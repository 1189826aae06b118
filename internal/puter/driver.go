package puter

import "encoding/json"

const (
	driverInterface = "puter-chat-completion"
	driverName      = "ai-chat"
	driverMethod    = "complete"

	driversCallPath = "/drivers/call"
)

// Message is a single conversation turn sent to the backend.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ContentPart is one element of a structured message content list.
type ContentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// driverRequest is the generic RPC envelope understood by /drivers/call.
type driverRequest struct {
	Interface string         `json:"interface"`
	Driver    string         `json:"driver"`
	Method    string         `json:"method"`
	Args      map[string]any `json:"args"`
	AuthToken string         `json:"auth_token"`
}

// driverResponse is the portion of the response envelope the client
// interprets. Success is a pointer because some responses omit it.
type driverResponse struct {
	Success *bool           `json:"success,omitempty"`
	Error   json.RawMessage `json:"error,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
}

type driverErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
