package puter

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
)

// Fragment is one incremental unit of a streamed completion.
type Fragment struct {
	Text string `json:"text"`
}

// streamChunk covers the chunk shapes the backend emits: plain
// {"text": ...} fragments and OpenAI-style delta chunks.
type streamChunk struct {
	Type    string `json:"type"`
	Text    string `json:"text"`
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Stream reads incremental completion fragments from a response body.
// The caller must Close it, even after Next has returned io.EOF;
// closing early releases the underlying connection without draining it.
type Stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	err     error
}

func newStream(body io.ReadCloser) *Stream {
	sc := bufio.NewScanner(body)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Stream{body: body, scanner: sc}
}

// Next returns the next non-empty text fragment. It returns io.EOF
// once the backend has finished sending.
func (s *Stream) Next() (Fragment, error) {
	if s.err != nil {
		return Fragment{}, s.err
	}
	for s.scanner.Scan() {
		line := bytes.TrimSpace(s.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		// Tolerate SSE-style framing.
		line = bytes.TrimPrefix(line, []byte("data: "))
		if bytes.Equal(line, []byte("[DONE]")) {
			s.err = io.EOF
			return Fragment{}, io.EOF
		}
		var chunk streamChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			continue
		}
		text := chunk.Text
		if text == "" && len(chunk.Choices) > 0 {
			text = chunk.Choices[0].Delta.Content
		}
		if text == "" {
			continue
		}
		return Fragment{Text: text}, nil
	}
	if err := s.scanner.Err(); err != nil {
		s.err = err
		return Fragment{}, err
	}
	s.err = io.EOF
	return Fragment{}, io.EOF
}

// Close releases the underlying connection. Safe to call at any point,
// including before the stream is drained.
func (s *Stream) Close() error {
	return s.body.Close()
}
