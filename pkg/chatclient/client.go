// Package chatclient talks to the marketplace HTTP API on behalf of one
// logged-in user.
package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"Homemade/models"
)

// ErrNetwork wraps transport failures: the request never produced an HTTP
// response.
var ErrNetwork = errors.New("network error")

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Session is the identity the client acts as. It is passed explicitly rather
// than held in package state.
type Session struct {
	UserID   uint
	Username string
	Role     string
	Token    string
}

type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the server at baseURL (e.g. http://localhost:3000).
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// Login exchanges credentials for a Session.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	var out struct {
		Token string `json:"token"`
		User  struct {
			ID       uint   `json:"id"`
			Username string `json:"username"`
			Role     string `json:"role"`
		} `json:"user"`
	}
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/login", "", body, &out); err != nil {
		return nil, err
	}
	return &Session{UserID: out.User.ID, Username: out.User.Username, Role: out.User.Role, Token: out.Token}, nil
}

// Send posts a message from the session user to receiverID and returns the
// stored record.
func (c *Client) Send(ctx context.Context, s *Session, receiverID uint, content string) (*models.Message, error) {
	var out struct {
		ID   uint            `json:"id"`
		Data *models.Message `json:"data"`
	}
	body := map[string]any{"sender_id": s.UserID, "receiver_id": receiverID, "content": content}
	if err := c.do(ctx, http.MethodPost, "/api/messages", s.Token, body, &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		out.Data = &models.Message{ID: out.ID, SenderID: s.UserID, ReceiverID: receiverID, Content: content}
	}
	return out.Data, nil
}

// Conversation fetches the full ordered history between the session user and otherID.
func (c *Client) Conversation(ctx context.Context, s *Session, otherID uint) ([]models.Message, error) {
	var out struct {
		Message string           `json:"message"`
		Data    []models.Message `json:"data"`
	}
	path := "/api/messages/" + strconv.FormatUint(uint64(s.UserID), 10) + "/" + strconv.FormatUint(uint64(otherID), 10)
	if err := c.do(ctx, http.MethodGet, path, s.Token, nil, &out); err != nil {
		return nil, err
	}
	if out.Message != "success" {
		return nil, fmt.Errorf("unexpected response message %q", out.Message)
	}
	if out.Data == nil {
		out.Data = []models.Message{}
	}
	return out.Data, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(respBytes, &e)
		if e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBytes, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
