// Package client talks to a lovenest server: the record collections, the
// entity specific mutations, the passcode session and the live feeds.
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

	"lovenest/gate"
	"lovenest/store"
	"lovenest/validate"
)

// ErrUnauthorized means the session token is missing, expired or revoked.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		return validate.Errors(e.Fields).Error()
	}
	if e.Message == "" {
		return http.StatusText(e.Status)
	}
	return e.Message
}

// Is maps status codes onto the sentinel errors the client core checks.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case store.ErrNotFound:
		return e.Status == http.StatusNotFound
	case validate.ErrValidation:
		return e.Status == http.StatusBadRequest
	}
	return false
}

type Client struct {
	base  *url.URL
	http  *http.Client
	token func() string
}

// New creates a client for baseURL. token is read before every request and
// may return "".
func New(baseURL string, token func() string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url %q must be http or https", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if token == nil {
		token = func() string { return "" }
	}
	return &Client{base: u, http: httpClient, token: token}, nil
}

// URL resolves an API path against the server address.
func (c *Client) URL(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, in any) (*http.Request, error) {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.URL(path, query), body)
	if err != nil {
		return nil, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if t := c.token(); t != "" {
		req.Header.Set("Authorization", "Bearer "+t)
	}
	return req, nil
}

// do sends a JSON request and decodes a JSON answer into out (if not nil).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	req, err := c.newRequest(ctx, method, path, query, in)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(raw, &body)
	return &APIError{Status: resp.StatusCode, Message: body.Error, Fields: body.Fields}
}

// Health pings the server.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil)
}

// Login exchanges the passcode for a session token.
func (c *Client) Login(ctx context.Context, passcode string) (string, time.Time, error) {
	var out struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expiresAt"`
	}
	err := c.do(ctx, http.MethodPost, "/api/session", nil, map[string]string{"passcode": passcode}, &out)
	if errors.Is(err, ErrUnauthorized) {
		return "", time.Time{}, gate.ErrWrongPasscode
	}
	if err != nil {
		return "", time.Time{}, err
	}
	return out.Token, out.ExpiresAt, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/session", nil, nil, nil)
}

// Verifier unlocks a gate against the server session endpoint.
type Verifier struct {
	Client *Client
}

func (v Verifier) Verify(ctx context.Context, passcode string) (string, error) {
	token, _, err := v.Client.Login(ctx, passcode)
	return token, err
}

// Poster looks a movie poster up through the server.
func (c *Client) Poster(ctx context.Context, title string) (string, error) {
	var out struct {
		Poster string `json:"poster"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/posters", url.Values{"title": {title}}, nil, &out); err != nil {
		return "", err
	}
	return out.Poster, nil
}

// MemoryBook downloads the memory book PDF into w.
func (c *Client) MemoryBook(ctx context.Context, w io.Writer) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/export/memories.pdf", nil, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/pdf")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("download memory book: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return err
	}
	_, err = io.Copy(w, resp.Body)
	return err
}
