package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"matchsync-server/internal/domain"
)

// Client speaks the server's JSON API. Every response is wrapped in the
// standard envelope; callers get the unwrapped payload or an error carrying
// the server's message.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decoding response from %s %s: %w", method, path, err)
	}
	if !env.Success {
		if env.Error != "" {
			return fmt.Errorf("server: %s", env.Error)
		}
		return fmt.Errorf("server returned status %d for %s %s", resp.StatusCode, method, path)
	}
	if out != nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decoding payload from %s %s: %w", method, path, err)
		}
	}
	return nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

// Login authenticates the operator and installs the access token on the
// client for the following calls.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var res loginResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", loginRequest{Email: email, Password: password}, &res); err != nil {
		return err
	}
	c.token = res.AccessToken
	return nil
}

func (c *Client) CreateMatchingSession(ctx context.Context, name, problemDocID, solutionDocID string) (*domain.MatchingSession, error) {
	req := domain.CreateSessionRequest{
		Name:               name,
		ProblemDocumentID:  problemDocID,
		SolutionDocumentID: solutionDocID,
	}
	var sess domain.MatchingSession
	if err := c.do(ctx, http.MethodPost, "/api/v1/sessions", req, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (c *Client) GetSession(ctx context.Context, sessionID string) (*domain.MatchingSession, error) {
	var sess domain.MatchingSession
	if err := c.do(ctx, http.MethodGet, "/api/v1/sessions/"+sessionID, nil, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (c *Client) SyncStatus(ctx context.Context, sessionID string) (*domain.SyncSnapshot, error) {
	var snap domain.SyncSnapshot
	if err := c.do(ctx, http.MethodGet, "/api/v1/sessions/"+sessionID+"/status", nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *Client) FullSync(ctx context.Context, sessionID string) (*domain.SyncReport, error) {
	var report domain.SyncReport
	if err := c.do(ctx, http.MethodPost, "/api/v1/sessions/"+sessionID+"/sync", nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *Client) CreateLink(ctx context.Context, sessionID string, req *domain.CreateLinkRequest) (*domain.Link, error) {
	var link domain.Link
	if err := c.do(ctx, http.MethodPost, "/api/v1/sessions/"+sessionID+"/links", req, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

func (c *Client) RemoveLink(ctx context.Context, sessionID, problemGroupID string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/sessions/"+sessionID+"/links/"+problemGroupID, nil, nil)
}

func (c *Client) ParentFlagSync(ctx context.Context, sessionID string) (*domain.ParentFlagReport, error) {
	var report domain.ParentFlagReport
	if err := c.do(ctx, http.MethodPost, "/api/v1/sessions/"+sessionID+"/parent-flags", nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *Client) ListGroups(ctx context.Context, documentID string) ([]*domain.GroupRef, error) {
	var groups []*domain.GroupRef
	if err := c.do(ctx, http.MethodGet, "/api/v1/documents/"+documentID+"/groups", nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func (c *Client) ListLinks(ctx context.Context, sessionID string) ([]*domain.Link, error) {
	var links []*domain.Link
	if err := c.do(ctx, http.MethodGet, "/api/v1/sessions/"+sessionID+"/links", nil, &links); err != nil {
		return nil, err
	}
	return links, nil
}
