// Package updater checks GitHub releases for newer moai versions.
package updater

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/modu-ai/moai-adk/internal/version"
)

const (
	defaultBaseURL = "https://api.github.com"
	defaultTimeout = 10 * time.Second
	retryCount     = 2
)

// Release is the subset of a GitHub release the checker reads.
type Release struct {
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	Draft       bool      `json:"draft"`
	Prerelease  bool      `json:"prerelease"`
	HTMLURL     string    `json:"html_url"`
	PublishedAt time.Time `json:"published_at"`
}

// Client talks to the GitHub Releases API for one repository.
type Client struct {
	client *resty.Client
	repo   string
}

// NewClient returns a client for repo ("owner/name"). A zero timeout uses 10s.
func NewClient(repo string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := resty.New().
		SetBaseURL(defaultBaseURL).
		SetTimeout(timeout).
		SetRetryCount(retryCount).
		SetRetryWaitTime(200*time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			code := r.StatusCode()
			return code == http.StatusTooManyRequests || (code >= 500 && code <= 504)
		}).
		SetHeader("Accept", "application/vnd.github+json").
		SetHeader("User-Agent", version.Name+"/"+version.Short())
	return &Client{client: client, repo: repo}
}

// SetBaseURL points the client at another API host.
func (c *Client) SetBaseURL(u string) *Client {
	c.client.SetBaseURL(u)
	return c
}

// Latest fetches the latest published release.
func (c *Client) Latest(ctx context.Context) (*Release, error) {
	var release Release
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&release).
		Get("/repos/" + c.repo + "/releases/latest")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest release: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to fetch latest release: HTTP %d", resp.StatusCode())
	}
	if release.TagName == "" {
		return nil, fmt.Errorf("latest release of %s has no tag", c.repo)
	}
	return &release, nil
}
