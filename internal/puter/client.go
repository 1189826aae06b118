// Package puter is a client for the Puter AI driver-call API.
//
// It targets the same backend path used by puter.js: POST /drivers/call
// with interface "puter-chat-completion", driver "ai-chat" and method
// "complete". Authentication uses an opaque bearer token, either
// supplied directly or captured through the browser-based temporary
// guest flow in the auth package.
package puter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/RealHickory4944/puter/internal/auth"
)

const (
	DefaultAPIBaseURL = "https://api.puter.com"
	DefaultGUIOrigin  = "https://puter.com"
	DefaultModel      = "gpt-5-nano"
)

// Config holds the settings for a Client. The zero value works: every
// field falls back to a fixed default. Two clients with different
// configs are fully independent.
type Config struct {
	APIBaseURL string
	GUIOrigin  string
	Token      string
	Model      string

	// AllowTempGuest enables the browser-based temporary guest flow
	// when Token is empty.
	AllowTempGuest bool

	// TempGuestPerRequest forces a fresh guest token on every call
	// instead of reusing the first captured one.
	TempGuestPerRequest bool

	// AuthTimeout bounds the wait for the browser auth callback.
	AuthTimeout time.Duration

	// CallbackPort is the local port for the auth callback listener.
	// Zero uses auth.DefaultPort.
	CallbackPort int

	// HTTPClient overrides the transport. Nil uses a client with a
	// 60-second timeout.
	HTTPClient *http.Client
}

// Options controls a single chat call.
type Options struct {
	// Model overrides the client's default model for this call.
	Model string

	// Provider is forwarded to the backend's args when set.
	Provider string

	// SystemPrompt is prepended to the conversation as a system message.
	SystemPrompt string

	// ExtraArgs are merged into the driver call args verbatim.
	ExtraArgs map[string]any
}

// Result is a normalized completion response.
type Result struct {
	// Text is the best-effort extracted model text.
	Text string

	// Result is the driver result object when present, else the whole
	// response body.
	Result json.RawMessage

	// Raw is the full response body.
	Raw json.RawMessage
}

// Client talks to one Puter backend. Safe for concurrent use.
type Client struct {
	cfg        Config
	httpClient *http.Client

	// tokenSource runs the browser auth flow; replaced in tests.
	tokenSource func(ctx context.Context) (string, error)

	mu         sync.Mutex
	guestToken string
}

// New creates a Client from cfg, filling unset fields with defaults.
func New(cfg Config) *Client {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}
	if cfg.GUIOrigin == "" {
		cfg.GUIOrigin = DefaultGUIOrigin
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.AuthTimeout == 0 {
		cfg.AuthTimeout = auth.DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}

	c := &Client{cfg: cfg, httpClient: httpClient}
	c.tokenSource = func(ctx context.Context) (string, error) {
		flow := &auth.Flow{
			GUIOrigin:      cfg.GUIOrigin,
			Port:           cfg.CallbackPort,
			AllowTempGuest: true,
			Timeout:        cfg.AuthTimeout,
		}
		return flow.Run(ctx)
	}
	return c
}

// Chat sends a single prompt and returns the normalized response. A
// system prompt from opts is prepended as its own message.
func (c *Client) Chat(ctx context.Context, prompt string, opts Options) (*Result, error) {
	return c.ChatMessages(ctx, c.buildConversation(prompt, opts), opts)
}

// ChatMessages sends a full conversation. The message order is
// preserved in the request and the caller's slice is never mutated.
func (c *Client) ChatMessages(ctx context.Context, messages []Message, opts Options) (*Result, error) {
	if len(messages) == 0 {
		return nil, ErrEmptyConversation
	}

	resp, err := c.call(ctx, messages, opts, false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	var envelope driverResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("parsing response body: %w", err)
	}

	if envelope.Success != nil && !*envelope.Success {
		return nil, driverError(envelope.Error)
	}

	result := envelope.Result
	if len(result) == 0 {
		result = raw
	}

	return &Result{
		Text:   ExtractText(result),
		Result: result,
		Raw:    raw,
	}, nil
}

// Stream sends a single prompt in streaming mode.
func (c *Client) Stream(ctx context.Context, prompt string, opts Options) (*Stream, error) {
	return c.StreamMessages(ctx, c.buildConversation(prompt, opts), opts)
}

// StreamMessages sends a full conversation in streaming mode. The
// returned Stream yields text fragments as the backend produces them;
// the caller must Close it.
func (c *Client) StreamMessages(ctx context.Context, messages []Message, opts Options) (*Stream, error) {
	if len(messages) == 0 {
		return nil, ErrEmptyConversation
	}

	resp, err := c.call(ctx, messages, opts, true)
	if err != nil {
		return nil, err
	}
	return newStream(resp.Body), nil
}

// buildConversation assembles the message list for a one-shot prompt.
func (c *Client) buildConversation(prompt string, opts Options) []Message {
	var messages []Message
	if opts.SystemPrompt != "" {
		messages = append(messages, Message{Role: "system", Content: opts.SystemPrompt})
	}
	return append(messages, Message{Role: "user", Content: prompt})
}

// call builds the driver envelope, resolves the auth token and issues
// the POST. On success the response body is live and owned by the
// caller; on failure the body is already closed.
func (c *Client) call(ctx context.Context, messages []Message, opts Options, stream bool) (*http.Response, error) {
	token, err := c.authToken(ctx)
	if err != nil {
		return nil, err
	}

	args := map[string]any{
		"messages": messages,
		"stream":   stream,
	}
	model := opts.Model
	if model == "" {
		model = c.cfg.Model
	}
	if model != "" {
		args["model"] = model
	}
	if opts.Provider != "" {
		args["provider"] = opts.Provider
	}
	for k, v := range opts.ExtraArgs {
		args[k] = v
	}

	payload, err := json.Marshal(driverRequest{
		Interface: driverInterface,
		Driver:    driverName,
		Method:    driverMethod,
		Args:      args,
		AuthToken: token,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := strings.TrimRight(c.cfg.APIBaseURL, "/") + driversCallPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &BackendError{Status: resp.StatusCode, Body: string(body)}
	}
	return resp, nil
}

// authToken resolves the bearer token for one call. A configured token
// wins; otherwise the guest flow runs, cached across calls unless
// TempGuestPerRequest is set. The mutex also serializes overlapping
// guest captures, which cannot share the fixed callback port.
func (c *Client) authToken(ctx context.Context) (string, error) {
	if c.cfg.Token != "" {
		return c.cfg.Token, nil
	}
	if !c.cfg.AllowTempGuest {
		return "", ErrNoToken
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cfg.TempGuestPerRequest || c.guestToken == "" {
		token, err := c.tokenSource(ctx)
		if err != nil {
			return "", fmt.Errorf("temporary guest auth: %w", err)
		}
		c.guestToken = token
	}
	return c.guestToken, nil
}

func driverError(raw json.RawMessage) error {
	var body driverErrorBody
	if len(raw) > 0 && json.Unmarshal(raw, &body) == nil {
		return &DriverError{Code: body.Code, Message: body.Message, Raw: string(raw)}
	}
	return &DriverError{Raw: string(raw)}
}
