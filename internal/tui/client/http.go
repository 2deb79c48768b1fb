package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/code-arsenal/arsenal/internal/app"
	"github.com/code-arsenal/arsenal/internal/assistant"
	"github.com/code-arsenal/arsenal/internal/catalog"
	"github.com/code-arsenal/arsenal/internal/gamification"
	"github.com/code-arsenal/arsenal/internal/ws"
)

// HTTPClient makes REST calls to the arsenal server.
type HTTPClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPClient creates a client targeting the given base URL (e.g. "http://127.0.0.1:8642").
// The timeout has to cover the assistant's thinking delay.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// ChallengeQuery selects a page of challenges.
type ChallengeQuery struct {
	Category      string
	Difficulty    string
	Search        string
	HideCompleted bool
	Limit         int
	Offset        int
}

func (q ChallengeQuery) encode() string {
	v := url.Values{}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Difficulty != "" {
		v.Set("difficulty", q.Difficulty)
	}
	if q.Search != "" {
		v.Set("q", q.Search)
	}
	if q.HideCompleted {
		v.Set("hide_completed", "true")
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

func (c *HTTPClient) Profile(ctx context.Context) (*gamification.Profile, error) {
	var p gamification.Profile
	if err := c.do(ctx, http.MethodGet, "/api/profile", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) Rename(ctx context.Context, name string) (*gamification.Profile, error) {
	var p gamification.Profile
	if err := c.do(ctx, http.MethodPatch, "/api/profile", ws.RenameRequest{Username: name}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) Challenges(ctx context.Context, q ChallengeQuery) (*catalog.Page, error) {
	var page catalog.Page
	if err := c.do(ctx, http.MethodGet, "/api/challenges"+q.encode(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *HTTPClient) Open(ctx context.Context, id string) (*ws.OpenResponse, error) {
	var out ws.OpenResponse
	if err := c.do(ctx, http.MethodPost, "/api/challenges/"+url.PathEscape(id)+"/open", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Submit(ctx context.Context, id string, elapsed int) (*ws.SubmitResponse, error) {
	var out ws.SubmitResponse
	body := ws.SubmitRequest{ElapsedSeconds: elapsed}
	if err := c.do(ctx, http.MethodPost, "/api/challenges/"+url.PathEscape(id)+"/submit", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Achievements(ctx context.Context) (*ws.AchievementsResponse, error) {
	var out ws.AchievementsResponse
	if err := c.do(ctx, http.MethodGet, "/api/achievements", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Stats(ctx context.Context) (*app.Stats, error) {
	var out app.Stats
	if err := c.do(ctx, http.MethodGet, "/api/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Leaderboard(ctx context.Context) ([]gamification.LeaderboardEntry, error) {
	var out []gamification.LeaderboardEntry
	if err := c.do(ctx, http.MethodGet, "/api/leaderboard", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) Chat(ctx context.Context, message, challengeID string) (*assistant.Reply, error) {
	var out assistant.Reply
	body := ws.ChatRequest{Message: message, ChallengeID: challengeID}
	if err := c.do(ctx, http.MethodPost, "/api/chat", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Terminal(ctx context.Context, command string) (*assistant.TermResult, error) {
	var out assistant.TermResult
	if err := c.do(ctx, http.MethodPost, "/api/terminal", ws.TerminalRequest{Command: command}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setAuth(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var apiErr ws.ErrorPayload
		respBody, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "" {
			return &APIError{Status: resp.StatusCode, Message: apiErr.Message}
		}
		return &APIError{Status: resp.StatusCode, Message: string(respBody)}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *HTTPClient) setAuth(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, http.StatusText(e.Status), e.Message)
}
