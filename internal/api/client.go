// Package api is the client for the remote pet record and chat APIs. It
// speaks plain HTTP+JSON; transport retries and timeouts beyond the
// per-request deadline live in the caller.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StatusError captures a non-2xx response with whatever detail the server
// included.
type StatusError struct {
	StatusCode int
	URL        string
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("api: status %d from %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("api: status %d from %s: %s", e.StatusCode, e.URL, e.Detail)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	se, ok := err.(*StatusError)
	return ok && se.StatusCode == http.StatusNotFound
}

// Client talks to one server on behalf of one authenticated owner.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option adjusts a Client at construction time.
type Option func(*Client)

// WithHTTPClient substitutes the underlying *http.Client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient builds a client for the given base URL and bearer token.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// doJSON performs one request. in is marshalled as the JSON body when
// non-nil; out is decoded from the response body when non-nil.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("api: marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("api: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("api: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody struct {
			Detail string `json:"detail"`
			Error  string `json:"error"`
		}
		_ = json.Unmarshal(raw, &errBody)
		detail := errBody.Detail
		if detail == "" {
			detail = errBody.Error
		}
		return &StatusError{StatusCode: resp.StatusCode, URL: url, Detail: detail}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("api: decode response: %w", err)
	}
	return nil
}

// MyPets lists the pets owned by the authenticated user.
func (c *Client) MyPets(ctx context.Context) ([]Pet, error) {
	var pets []Pet
	if err := c.doJSON(ctx, http.MethodGet, "/pets/my", nil, &pets); err != nil {
		return nil, err
	}
	return pets, nil
}

// GetPet fetches one pet by ID.
func (c *Client) GetPet(ctx context.Context, petID int) (*Pet, error) {
	var pet Pet
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/pets/%d", petID), nil, &pet); err != nil {
		return nil, err
	}
	return &pet, nil
}

// CreatePet registers a new pet. Not idempotent: every call creates a record.
func (c *Client) CreatePet(ctx context.Context, req CreatePetRequest) (*Pet, error) {
	var pet Pet
	if err := c.doJSON(ctx, http.MethodPost, "/pets", req, &pet); err != nil {
		return nil, err
	}
	return &pet, nil
}

// PatchStats applies a partial stat/XP delta and returns the authoritative
// record after server-side clamping.
func (c *Client) PatchStats(ctx context.Context, petID int, delta StatsDelta) (*Pet, error) {
	var pet Pet
	if err := c.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/pets/%d", petID), delta, &pet); err != nil {
		return nil, err
	}
	return &pet, nil
}

// RenamePet changes the pet's display name.
func (c *Client) RenamePet(ctx context.Context, petID int, name string) (*Pet, error) {
	var pet Pet
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/pets/%d/name", petID), renameRequest{Name: name}, &pet); err != nil {
		return nil, err
	}
	return &pet, nil
}

// DeletePet removes the pet.
func (c *Client) DeletePet(ctx context.Context, petID int) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/pets/%d", petID), nil, nil)
}

// ListChats returns the caller's chat sessions.
func (c *Client) ListChats(ctx context.Context) ([]ChatRoom, error) {
	var chats []ChatRoom
	if err := c.doJSON(ctx, http.MethodGet, "/chats", nil, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

// CreateChat opens a chat session for the pet. Not idempotent; callers
// should look up existing sessions first.
func (c *Client) CreateChat(ctx context.Context, petID int) (*ChatRoom, error) {
	var chat ChatRoom
	if err := c.doJSON(ctx, http.MethodPost, "/chats", createChatRequest{PetID: petID}, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

// ListMessages returns the full message history of a chat session.
func (c *Client) ListMessages(ctx context.Context, chatID int) ([]Message, error) {
	var msgs []Message
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/chats/%d/messages", chatID), nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// SendMessage posts one owner message and returns the stored copy with its
// server-assigned identity. The pet's reply is generated asynchronously and
// shows up in a later ListMessages.
func (c *Client) SendMessage(ctx context.Context, chatID int, content string) (*Message, error) {
	var msg Message
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/chats/%d/messages", chatID), sendMessageRequest{Content: content}, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
