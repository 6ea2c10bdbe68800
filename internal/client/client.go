// Package client is a typed HTTP client for the wppd API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matheus3301/wppclone/internal/api"
	"github.com/matheus3301/wppclone/internal/chat"
	"github.com/matheus3301/wppclone/internal/store"
)

// DefaultTimeout bounds each request made with the default HTTP client.
const DefaultTimeout = 10 * time.Second

// Client calls a wppd server over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New returns a client for the server at baseURL. A bare host:port gets http://.
func New(baseURL string, opts ...Option) *Client {
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// Timeout returns the per-request limit of the underlying HTTP client.
func (c *Client) Timeout() time.Duration { return c.http.Timeout }

// APIError is a non-2xx reply. It unwraps to the matching chat sentinel so
// callers can use errors.Is(err, chat.ErrNotFound) and friends.
type APIError struct {
	Status  int
	Message string
	kind    error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error { return e.kind }

func classify(status int, msg string) error {
	switch status {
	case http.StatusBadRequest:
		switch {
		case strings.HasPrefix(msg, chat.ErrDuplicatePhone.Error()):
			return chat.ErrDuplicatePhone
		case strings.HasPrefix(msg, chat.ErrDuplicateContact.Error()):
			return chat.ErrDuplicateContact
		}
		return chat.ErrInvalidInput
	case http.StatusNotFound:
		return chat.ErrNotFound
	case http.StatusInternalServerError:
		return chat.ErrPersistence
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e api.ErrorResponse
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(data, &e) != nil || e.Error == "" {
			e.Error = strings.TrimSpace(string(data))
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error, kind: classify(resp.StatusCode, e.Error)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Register creates a user.
func (c *Client) Register(ctx context.Context, name, phone string) (store.User, error) {
	var resp api.UserResponse
	err := c.do(ctx, http.MethodPost, "/register", api.RegisterRequest{Name: name, Phone: phone}, &resp)
	return resp.User, err
}

// Login marks the user online.
func (c *Client) Login(ctx context.Context, phone string) (store.User, error) {
	var resp api.UserResponse
	err := c.do(ctx, http.MethodPost, "/login", api.PhoneRequest{Phone: phone}, &resp)
	return resp.User, err
}

// Logout marks the user offline.
func (c *Client) Logout(ctx context.Context, phone string) error {
	return c.do(ctx, http.MethodPost, "/logout", api.PhoneRequest{Phone: phone}, nil)
}

// Heartbeat refreshes the user's presence.
func (c *Client) Heartbeat(ctx context.Context, phone string) (store.User, error) {
	var resp api.UserResponse
	err := c.do(ctx, http.MethodPost, "/presence", api.PhoneRequest{Phone: phone}, &resp)
	return resp.User, err
}

// Users lists every registered user.
func (c *Client) Users(ctx context.Context) ([]store.User, error) {
	var users []store.User
	err := c.do(ctx, http.MethodGet, "/users", nil, &users)
	return users, err
}

// User fetches one user.
func (c *Client) User(ctx context.Context, phone string) (store.User, error) {
	var user store.User
	err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(phone), nil, &user)
	return user, err
}

// UpdateProfile changes the provided profile fields.
func (c *Client) UpdateProfile(ctx context.Context, phone string, upd chat.ProfileUpdate) (store.User, error) {
	var resp api.UserResponse
	req := api.ProfileRequest{Phone: phone, Name: upd.Name, Bio: upd.Bio, ProfilePic: upd.ProfilePic}
	err := c.do(ctx, http.MethodPut, "/profile", req, &resp)
	return resp.User, err
}

// AddContact saves contactPhone under owner's contacts.
func (c *Client) AddContact(ctx context.Context, owner, contactName, contactPhone string) (store.Contact, error) {
	var resp api.ContactResponse
	req := api.AddContactRequest{UserPhone: owner, ContactName: contactName, ContactPhone: contactPhone}
	err := c.do(ctx, http.MethodPost, "/contacts", req, &resp)
	return resp.Contact, err
}

// Contacts lists owner's contacts.
func (c *Client) Contacts(ctx context.Context, owner string) ([]store.Contact, error) {
	var contacts []store.Contact
	err := c.do(ctx, http.MethodGet, "/contacts/"+url.PathEscape(owner), nil, &contacts)
	return contacts, err
}

// SendMessage sends a text or image message.
func (c *Client) SendMessage(ctx context.Context, sender, receiver, content string, isImage bool) (store.Message, error) {
	var resp api.MessageResponse
	req := api.SendMessageRequest{Sender: sender, Receiver: receiver, Message: content, IsImage: isImage}
	err := c.do(ctx, http.MethodPost, "/messages", req, &resp)
	return resp.Message, err
}

// Messages returns the thread between user and contact.
func (c *Client) Messages(ctx context.Context, user, contact string) ([]store.Message, error) {
	var msgs []store.Message
	err := c.do(ctx, http.MethodGet, "/messages/"+url.PathEscape(user)+"/"+url.PathEscape(contact), nil, &msgs)
	return msgs, err
}

// ChatList returns the user's conversations, most recent first.
func (c *Client) ChatList(ctx context.Context, user string) ([]chat.ChatSummary, error) {
	var rows []chat.ChatSummary
	err := c.do(ctx, http.MethodGet, "/chats/"+url.PathEscape(user), nil, &rows)
	return rows, err
}

// Health returns the server health summary.
func (c *Client) Health(ctx context.Context) (api.HealthResponse, error) {
	var resp api.HealthResponse
	err := c.do(ctx, http.MethodGet, "/health", nil, &resp)
	return resp, err
}

// IsUnavailable reports whether err means the server could not be reached.
func IsUnavailable(err error) bool {
	var apiErr *APIError
	return err != nil && !errors.As(err, &apiErr) && !errors.Is(err, context.Canceled)
}
