// Package moviemeta looks up movie posters from an OMDb-style metadata API.
package moviemeta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var ErrPosterNotFound = errors.New("poster not found")

// Client queries GET <BaseURL>?<TitleParam>=<title>[&apikey=<APIKey>].
type Client struct {
	BaseURL    string
	APIKey     string
	TitleParam string
	HTTP       *http.Client
}

func New(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		TitleParam: "title",
		HTTP:       &http.Client{Timeout: 10 * time.Second},
	}
}

type lookupResponse struct {
	// Matches both "poster" and OMDb's "Poster".
	Poster   string `json:"poster"`
	Response string `json:"Response"`
}

// Poster returns the poster URL for title. Missing posters, "N/A" and
// upstream 404s are ErrPosterNotFound.
func (c *Client) Poster(ctx context.Context, title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrPosterNotFound
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", fmt.Errorf("poster lookup url: %w", err)
	}
	q := u.Query()
	param := c.TitleParam
	if param == "" {
		param = "title"
	}
	q.Set(param, title)
	if c.APIKey != "" {
		q.Set("apikey", c.APIKey)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("poster lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", ErrPosterNotFound
	}
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("poster lookup: unexpected status %d", resp.StatusCode)
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("poster lookup: decode: %w", err)
	}
	if body.Response == "False" || body.Poster == "" || body.Poster == "N/A" {
		return "", ErrPosterNotFound
	}
	return body.Poster, nil
}
