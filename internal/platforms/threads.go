package platforms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/alphacopilot/social-agent/internal/config"
)

const (
	threadsMaxLength      = 500
	defaultThreadsBaseURL = "https://graph.threads.net/v1.0"
)

// Threads publishes via Meta's Graph API for Threads. Publishing is a
// two-step flow: create a media container, then publish it.
type Threads struct {
	baseURL     string
	accessToken string
	userID      string
	client      *http.Client
	logger      *slog.Logger
	dryRun      bool
	// containerDelay is the settle time the API requires between container
	// creation and publish.
	containerDelay time.Duration
}

// NewThreads creates the adapter. Gate on config.ValidateThreads first.
func NewThreads(cfg config.ThreadsConfig, dryRun bool, logger *slog.Logger) *Threads {
	if logger == nil {
		logger = slog.Default()
	}
	return &Threads{
		baseURL:        defaultThreadsBaseURL,
		accessToken:    cfg.AccessToken,
		userID:         cfg.UserID,
		client:         &http.Client{Timeout: 30 * time.Second},
		logger:         logger.With("component", "platforms.threads"),
		dryRun:         dryRun,
		containerDelay: time.Second,
	}
}

func (t *Threads) Name() string   { return "threads" }
func (t *Threads) MaxLength() int { return threadsMaxLength }

func (t *Threads) Publish(ctx context.Context, content string) (*PublishResult, error) {
	if t.dryRun {
		t.logger.Info("dry run, threads post not sent", "preview", Truncate(content, 50))
		return &PublishResult{
			PostID: "dry_run_threads_id",
			URL:    "https://threads.net/dry_run",
			DryRun: true,
		}, nil
	}

	content = Truncate(content, threadsMaxLength)

	containerID, err := t.createContainer(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("create threads container: %w", err)
	}

	select {
	case <-time.After(t.containerDelay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	postID, err := t.publishContainer(ctx, containerID)
	if err != nil {
		return nil, fmt.Errorf("publish threads container: %w", err)
	}

	return &PublishResult{
		PostID: postID,
		URL:    "https://www.threads.net/post/" + postID,
	}, nil
}

func (t *Threads) createContainer(ctx context.Context, content string) (string, error) {
	query := url.Values{
		"media_type":   {"TEXT"},
		"text":         {content},
		"access_token": {t.accessToken},
	}
	var resp struct {
		ID string `json:"id"`
	}
	if err := t.do(ctx, "POST", "/"+t.userID+"/threads", query, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("no container id in response")
	}
	return resp.ID, nil
}

func (t *Threads) publishContainer(ctx context.Context, containerID string) (string, error) {
	query := url.Values{
		"creation_id":  {containerID},
		"access_token": {t.accessToken},
	}
	var resp struct {
		ID string `json:"id"`
	}
	if err := t.do(ctx, "POST", "/"+t.userID+"/threads_publish", query, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return containerID, nil
	}
	return resp.ID, nil
}

func (t *Threads) RecentPosts(ctx context.Context, limit int) ([]Post, error) {
	if limit <= 0 {
		limit = 10
	}
	query := url.Values{
		"fields":       {"id,text,timestamp"},
		"limit":        {fmt.Sprintf("%d", limit)},
		"access_token": {t.accessToken},
	}
	var resp struct {
		Data []struct {
			ID        string `json:"id"`
			Text      string `json:"text"`
			Timestamp string `json:"timestamp"`
		} `json:"data"`
	}
	if err := t.do(ctx, "GET", "/"+t.userID+"/threads", query, &resp); err != nil {
		return nil, err
	}

	posts := make([]Post, len(resp.Data))
	for i, p := range resp.Data {
		posts[i] = Post{ID: p.ID, Content: p.Text, CreatedAt: parseThreadsTime(p.Timestamp)}
	}
	return posts, nil
}

// parseThreadsTime handles both RFC 3339 and the +0000 offset form the
// Graph API actually returns.
func parseThreadsTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05-0700"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}
	return time.Time{}
}

func (t *Threads) HealthCheck(ctx context.Context) error {
	query := url.Values{
		"fields":       {"id,username"},
		"access_token": {t.accessToken},
	}
	var resp struct {
		ID string `json:"id"`
	}
	if err := t.do(ctx, "GET", "/me", query, &resp); err != nil {
		return fmt.Errorf("threads health check: %w", err)
	}
	if resp.ID == "" {
		return fmt.Errorf("threads health check: no user id")
	}
	return nil
}

func (t *Threads) do(ctx context.Context, method, path string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.URL.RawQuery = query.Encode()

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("threads API error %d: %s", resp.StatusCode, string(body))
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}
