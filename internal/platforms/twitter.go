package platforms

import (
	"bytes"
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
	twitterMaxLength      = 280
	defaultTwitterBaseURL = "https://api.twitter.com"
)

// Twitter publishes via the X API v2 with OAuth 1.0a user context.
type Twitter struct {
	baseURL string
	signer  *oauth1Signer
	client  *http.Client
	logger  *slog.Logger
	dryRun  bool
}

// NewTwitter creates the adapter. Credentials must be complete; gate on
// config.ValidateTwitter before constructing.
func NewTwitter(cfg config.TwitterConfig, dryRun bool, logger *slog.Logger) *Twitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Twitter{
		baseURL: defaultTwitterBaseURL,
		signer:  newOAuth1Signer(cfg.APIKey, cfg.APISecret, cfg.AccessToken, cfg.AccessSecret),
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger.With("component", "platforms.twitter"),
		dryRun:  dryRun,
	}
}

func (t *Twitter) Name() string   { return "twitter" }
func (t *Twitter) MaxLength() int { return twitterMaxLength }

func (t *Twitter) Publish(ctx context.Context, content string) (*PublishResult, error) {
	if t.dryRun {
		t.logger.Info("dry run, tweet not sent", "preview", Truncate(content, 50))
		return &PublishResult{
			PostID: "dry_run_id",
			URL:    "https://twitter.com/dry_run",
			DryRun: true,
		}, nil
	}

	content = Truncate(content, twitterMaxLength)

	body, err := json.Marshal(map[string]string{"text": content})
	if err != nil {
		return nil, fmt.Errorf("marshal tweet: %w", err)
	}

	var resp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := t.do(ctx, "POST", "/2/tweets", nil, body, &resp); err != nil {
		return nil, err
	}

	return &PublishResult{
		PostID: resp.Data.ID,
		URL:    "https://twitter.com/i/status/" + resp.Data.ID,
	}, nil
}

func (t *Twitter) RecentPosts(ctx context.Context, limit int) ([]Post, error) {
	if limit < 5 {
		limit = 5 // API minimum for max_results
	}

	userID, err := t.me(ctx)
	if err != nil {
		return nil, err
	}

	query := url.Values{
		"max_results":  {fmt.Sprintf("%d", limit)},
		"tweet.fields": {"created_at,text"},
	}
	var resp struct {
		Data []struct {
			ID        string    `json:"id"`
			Text      string    `json:"text"`
			CreatedAt time.Time `json:"created_at"`
		} `json:"data"`
	}
	if err := t.do(ctx, "GET", "/2/users/"+userID+"/tweets", query, nil, &resp); err != nil {
		return nil, err
	}

	posts := make([]Post, len(resp.Data))
	for i, tw := range resp.Data {
		posts[i] = Post{ID: tw.ID, Content: tw.Text, CreatedAt: tw.CreatedAt}
	}
	return posts, nil
}

func (t *Twitter) HealthCheck(ctx context.Context) error {
	if _, err := t.me(ctx); err != nil {
		return fmt.Errorf("twitter health check: %w", err)
	}
	return nil
}

func (t *Twitter) me(ctx context.Context) (string, error) {
	var resp struct {
		Data struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"data"`
	}
	if err := t.do(ctx, "GET", "/2/users/me", nil, nil, &resp); err != nil {
		return "", err
	}
	if resp.Data.ID == "" {
		return "", fmt.Errorf("twitter: no authenticated user")
	}
	return resp.Data.ID, nil
}

func (t *Twitter) do(ctx context.Context, method, path string, query url.Values, body []byte, out any) error {
	rawURL := t.baseURL + path

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if query != nil {
		req.URL.RawQuery = query.Encode()
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", t.signer.authorizationHeader(method, rawURL, query))

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("twitter API error %d: %s", resp.StatusCode, string(respBody))
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}
