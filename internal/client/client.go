// Package client talks to the loopboard API on behalf of a display.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Nixie-Tech-LLC/loopboard/internal/model"
	"github.com/Nixie-Tech-LLC/loopboard/internal/playback"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotLoggedIn  = errors.New("not logged in")
)

const requestTimeout = 10 * time.Second

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client
	session *Session

	mu   sync.Mutex
	etag string
	last model.Snapshot
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: requestTimeout},
		session: &Session{},
	}
}

func (c *Client) Session() *Session { return c.session }

type loginResponse struct {
	Token    string         `json:"token"`
	Identity model.Identity `json:"identity"`
}

// Login authenticates and stores the session. The server flips the
// account to playing as part of it.
func (c *Client) Login(ctx context.Context, username, password string) (model.Identity, error) {
	body := map[string]string{"username": username, "password": password}
	var out loginResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, "", &out); err != nil {
		return model.Identity{}, err
	}
	c.session.set(out.Token, out.Identity)
	c.resetCache()
	return out.Identity, nil
}

// Logout marks the account disconnected and clears the session, even when
// the request fails.
func (c *Client) Logout(ctx context.Context) error {
	token := c.session.Token()
	if token == "" {
		return ErrNotLoggedIn
	}
	defer c.session.Clear()
	defer c.resetCache()
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, token, nil)
}

// Fetch implements playback.Fetcher. An unchanged playlist is answered with
// 304 and served from the last snapshot. A rejected session is reported as
// playback.ErrAccountGone.
func (c *Client) Fetch(ctx context.Context) (model.Snapshot, error) {
	token := c.session.Token()
	if token == "" {
		return model.Snapshot{}, ErrNotLoggedIn
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/play/session", nil)
	if err != nil {
		return model.Snapshot{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	c.mu.Lock()
	if c.etag != "" {
		req.Header.Set("If-None-Match", c.etag)
	}
	c.mu.Unlock()

	resp, err := c.http.Do(req)
	if err != nil {
		return model.Snapshot{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		c.mu.Lock()
		defer c.mu.Unlock()
		return cloneSnapshot(c.last), nil
	}
	if err := checkStatus(resp); err != nil {
		// the server answers 401 once the account is deleted or renamed
		if errors.Is(err, ErrUnauthorized) {
			return model.Snapshot{}, fmt.Errorf("%w: %w", playback.ErrAccountGone, err)
		}
		return model.Snapshot{}, err
	}

	var snap model.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return model.Snapshot{}, fmt.Errorf("decode session: %w", err)
	}
	c.mu.Lock()
	c.etag = resp.Header.Get("ETag")
	c.last = cloneSnapshot(snap)
	c.mu.Unlock()
	return snap, nil
}

func (c *Client) resetCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.etag = ""
	c.last = model.Snapshot{}
}

func (c *Client) do(ctx context.Context, method, path string, body any, token string, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	var envelope struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&envelope)
	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: %s", ErrUnauthorized, envelope.Error)
	}
	return &APIError{Status: resp.StatusCode, Message: envelope.Error}
}

func cloneSnapshot(s model.Snapshot) model.Snapshot {
	return model.Snapshot{Status: s.Status, MediaPlaying: s.MediaPlaying.Clone()}
}
