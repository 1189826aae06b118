package puter

import (
	"bytes"
	"encoding/json"
	"strings"
)

// extractor probes one known response shape. It returns the extracted
// text and whether the shape matched.
type extractor func(result json.RawMessage) (string, bool)

// Probing order matters: more specific shapes come before the generic
// OpenAI-compatible one.
var extractors = []extractor{
	topLevelString("text"),
	topLevelString("content"),
	messageContentString,
	messageContentParts,
	choicesMessageContent,
}

// ExtractText pulls the completion text out of a driver result by
// applying shape probes in priority order. Unrecognized shapes fall
// back to the compact serialization of the whole result, so extraction
// never fails.
func ExtractText(result json.RawMessage) string {
	for _, probe := range extractors {
		if text, ok := probe(result); ok && strings.TrimSpace(text) != "" {
			return text
		}
	}
	return fallbackString(result)
}

// topLevelString matches {"<key>": "..."} at the top of the result.
func topLevelString(key string) extractor {
	return func(result json.RawMessage) (string, bool) {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(result, &obj); err != nil {
			return "", false
		}
		raw, ok := obj[key]
		if !ok {
			return "", false
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, true
	}
}

// messageContentString matches {"message": {"content": "..."}}.
func messageContentString(result json.RawMessage) (string, bool) {
	var shape struct {
		Message struct {
			Content json.RawMessage `json:"content"`
		} `json:"message"`
	}
	if err := json.Unmarshal(result, &shape); err != nil {
		return "", false
	}
	var s string
	if err := json.Unmarshal(shape.Message.Content, &s); err != nil {
		return "", false
	}
	return s, true
}

// messageContentParts matches {"message": {"content": [{"type":"text","text":"..."}]}}
// and joins the text parts with single spaces.
func messageContentParts(result json.RawMessage) (string, bool) {
	var shape struct {
		Message struct {
			Content []ContentPart `json:"content"`
		} `json:"message"`
	}
	if err := json.Unmarshal(result, &shape); err != nil {
		return "", false
	}
	var parts []string
	for _, p := range shape.Message.Content {
		if p.Text != "" {
			parts = append(parts, p.Text)
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, " "), true
}

// choicesMessageContent matches the OpenAI-compatible
// {"choices": [{"message": {"content": "..."}}]} shape.
func choicesMessageContent(result json.RawMessage) (string, bool) {
	var shape struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(result, &shape); err != nil {
		return "", false
	}
	if len(shape.Choices) == 0 {
		return "", false
	}
	return shape.Choices[0].Message.Content, true
}

func fallbackString(result json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, result); err != nil {
		return string(result)
	}
	return buf.String()
}
