package puter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestChatMessages_DriverCallShape(t *testing.T) {
	var sent driverRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/drivers/call", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&sent))

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"result":  map[string]any{"message": map[string]any{"content": "hello"}},
		})
	}))
	defer server.Close()

	client := New(Config{APIBaseURL: server.URL, Token: "tok_123", Model: "gpt-5-nano"})
	result, err := client.Chat(context.Background(), "Hi", Options{})
	require.NoError(t, err)

	assert.Equal(t, "hello", result.Text)
	assert.Equal(t, "puter-chat-completion", sent.Interface)
	assert.Equal(t, "ai-chat", sent.Driver)
	assert.Equal(t, "complete", sent.Method)
	assert.Equal(t, "tok_123", sent.AuthToken)
	assert.Equal(t, "gpt-5-nano", sent.Args["model"])
	assert.Equal(t, false, sent.Args["stream"])

	messages, ok := sent.Args["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 1)
	first := messages[0].(map[string]any)
	assert.Equal(t, "user", first["role"])
	assert.Equal(t, "Hi", first["content"])
}

func TestChatMessages_PreservesOrder(t *testing.T) {
	conversation := []Message{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "one"},
		{Role: "assistant", Content: "two"},
		{Role: "user", Content: "three"},
	}

	var sent driverRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
		json.NewEncoder(w).Encode(map[string]any{"success": true, "result": map[string]any{"text": "ok"}})
	}))
	defer server.Close()

	client := New(Config{APIBaseURL: server.URL, Token: "tok"})
	_, err := client.ChatMessages(context.Background(), conversation, Options{})
	require.NoError(t, err)

	messages, ok := sent.Args["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, len(conversation))
	for i, want := range conversation {
		got := messages[i].(map[string]any)
		assert.Equal(t, want.Role, got["role"], "message %d role", i)
		assert.Equal(t, want.Content, got["content"], "message %d content", i)
	}
}

func TestChatMessages_EmptyConversation(t *testing.T) {
	httpClient := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		t.Fatal("no request should be sent for an empty conversation")
		return nil, nil
	})}

	client := New(Config{Token: "tok", HTTPClient: httpClient})
	_, err := client.ChatMessages(context.Background(), nil, Options{})
	assert.ErrorIs(t, err, ErrEmptyConversation)

	_, err = client.StreamMessages(context.Background(), []Message{}, Options{})
	assert.ErrorIs(t, err, ErrEmptyConversation)
}

func TestChatMessages_BackendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":"insufficient funds"}`))
	}))
	defer server.Close()

	client := New(Config{APIBaseURL: server.URL, Token: "tok"})
	_, err := client.Chat(context.Background(), "Hi", Options{})

	var backendErr *BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, http.StatusPaymentRequired, backendErr.Status)
	assert.Contains(t, backendErr.Body, "insufficient funds")
}

func TestChatMessages_DriverError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   map[string]any{"code": "insufficient_funds", "message": "out of credit"},
		})
	}))
	defer server.Close()

	client := New(Config{APIBaseURL: server.URL, Token: "tok"})
	_, err := client.Chat(context.Background(), "Hi", Options{})

	var driverErr *DriverError
	require.ErrorAs(t, err, &driverErr)
	assert.Equal(t, "insufficient_funds", driverErr.Code)
	assert.Equal(t, "out of credit", driverErr.Message)
}

func TestChatMessages_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := New(Config{APIBaseURL: server.URL, Token: "tok"})
	_, err := client.Chat(context.Background(), "Hi", Options{})

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Contains(t, transportErr.URL, "/drivers/call")
}

func TestChat_SystemPromptPrepended(t *testing.T) {
	var sent driverRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
		json.NewEncoder(w).Encode(map[string]any{"success": true, "result": map[string]any{"text": "ok"}})
	}))
	defer server.Close()

	client := New(Config{APIBaseURL: server.URL, Token: "tok"})
	_, err := client.Chat(context.Background(), "Hi", Options{SystemPrompt: "be brief"})
	require.NoError(t, err)

	messages := sent.Args["messages"].([]any)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.Equal(t, "be brief", messages[0].(map[string]any)["content"])
	assert.Equal(t, "user", messages[1].(map[string]any)["role"])
}

func TestGuestToken_CachedAcrossCalls(t *testing.T) {
	var sentTokens []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req driverRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		sentTokens = append(sentTokens, req.AuthToken)
		json.NewEncoder(w).Encode(map[string]any{"success": true, "result": map[string]any{"text": "ok"}})
	}))
	defer server.Close()

	client := New(Config{APIBaseURL: server.URL, AllowTempGuest: true})
	captures := 0
	client.tokenSource = func(ctx context.Context) (string, error) {
		captures++
		return "guest_tok", nil
	}

	_, err := client.Chat(context.Background(), "one", Options{})
	require.NoError(t, err)
	_, err = client.Chat(context.Background(), "two", Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, captures)
	assert.Equal(t, []string{"guest_tok", "guest_tok"}, sentTokens)
}

func TestGuestToken_RotatedPerRequest(t *testing.T) {
	var sentTokens []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req driverRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		sentTokens = append(sentTokens, req.AuthToken)
		json.NewEncoder(w).Encode(map[string]any{"success": true, "result": map[string]any{"text": "ok"}})
	}))
	defer server.Close()

	client := New(Config{APIBaseURL: server.URL, AllowTempGuest: true, TempGuestPerRequest: true})
	captures := 0
	client.tokenSource = func(ctx context.Context) (string, error) {
		captures++
		if captures == 1 {
			return "guest_tok_1", nil
		}
		return "guest_tok_2", nil
	}

	_, err := client.Chat(context.Background(), "one", Options{})
	require.NoError(t, err)
	_, err = client.Chat(context.Background(), "two", Options{})
	require.NoError(t, err)

	assert.Equal(t, 2, captures)
	assert.Equal(t, []string{"guest_tok_1", "guest_tok_2"}, sentTokens)
}

func TestChat_NoTokenNoGuest(t *testing.T) {
	client := New(Config{})
	_, err := client.Chat(context.Background(), "Hi", Options{})
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestChatMessages_ExtraArgsAndModelOverride(t *testing.T) {
	var sent driverRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
		json.NewEncoder(w).Encode(map[string]any{"success": true, "result": map[string]any{"text": "ok"}})
	}))
	defer server.Close()

	client := New(Config{APIBaseURL: server.URL, Token: "tok", Model: "gpt-5-nano"})
	_, err := client.Chat(context.Background(), "Hi", Options{
		Model:     "claude-sonnet",
		Provider:  "anthropic",
		ExtraArgs: map[string]any{"temperature": 0.2},
	})
	require.NoError(t, err)

	assert.Equal(t, "claude-sonnet", sent.Args["model"])
	assert.Equal(t, "anthropic", sent.Args["provider"])
	assert.Equal(t, 0.2, sent.Args["temperature"])
}

func TestToOpenAIResponse(t *testing.T) {
	result := &Result{Text: "hello"}
	resp := ToOpenAIResponse(result, "gpt-5-nano")

	assert.Contains(t, resp.ID, "chatcmpl-")
	assert.Equal(t, "chat.completion", resp.Object)
	assert.Equal(t, "gpt-5-nano", resp.Model)
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "assistant", resp.Choices[0].Message.Role)
	assert.Equal(t, "hello", resp.Choices[0].Message.Content)
	assert.Equal(t, "stop", resp.Choices[0].FinishReason)
	assert.InDelta(t, time.Now().Unix(), resp.Created, 5)
}
