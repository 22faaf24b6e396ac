// Package copilot is the client for the Alpha Copilot backend, the options
// analysis API behind the web app. Auth is either a static API key or a
// Supabase session token.
package copilot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/alphacopilot/social-agent/internal/config"
)

// Recommendation is one options trade suggestion from the analysis API.
type Recommendation struct {
	Symbol              string  `json:"symbol"`
	Strategy            string  `json:"strategy"`
	Rationale           string  `json:"rationale"`
	Strike              float64 `json:"strike,omitempty"`
	Premium             float64 `json:"premium,omitempty"`
	ProbabilityOfProfit float64 `json:"probability_of_profit,omitempty"`
	Expiration          string  `json:"expiration,omitempty"`
	Delta               float64 `json:"delta,omitempty"`
}

// Analysis is the payload of a successful query.
type Analysis struct {
	MarketOverview  string           `json:"market_overview"`
	Recommendations []Recommendation `json:"recommendations"`
}

// QueryResponse is the /api/query envelope. Status is "success",
// "needs_clarification", or an error status.
type QueryResponse struct {
	Status       string   `json:"status"`
	Message      string   `json:"message,omitempty"`
	ErrorMessage string   `json:"error_message,omitempty"`
	Analysis     Analysis `json:"analysis,omitempty"`
}

// Mover is a stock with notable price action today.
type Mover struct {
	Symbol        string  `json:"symbol"`
	ChangePercent float64 `json:"change_percent"`
	Reason        string  `json:"reason,omitempty"`
}

// EarningsEvent is an upcoming earnings report.
type EarningsEvent struct {
	Symbol string `json:"symbol"`
	Date   string `json:"date"`
	Timing string `json:"timing,omitempty"` // BMO or AMC
}

// HighIV is a stock with elevated implied volatility.
type HighIV struct {
	Symbol       string  `json:"symbol"`
	IVRank       float64 `json:"iv_rank"`
	IVPercentile float64 `json:"iv_percentile"`
}

// Sentiment is the broad-market mood snapshot.
type Sentiment struct {
	VIX       float64 `json:"vix"`
	SPYChange float64 `json:"spy_change"`
}

// MarketContext is the /api/market-context payload.
type MarketContext struct {
	Movers    []Mover         `json:"movers,omitempty"`
	Earnings  []EarningsEvent `json:"earnings,omitempty"`
	HighIV    []HighIV        `json:"high_iv,omitempty"`
	Sentiment *Sentiment      `json:"sentiment,omitempty"`
}

// TokenSource supplies bearer tokens for API calls.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// staticToken is a fixed API key.
type staticToken string

func (t staticToken) AccessToken(context.Context) (string, error) { return string(t), nil }

// Client calls the Alpha Copilot backend.
type Client struct {
	baseURL string
	tokens  TokenSource
	client  *http.Client
	logger  *slog.Logger
}

// NewClient builds a client from config. A static API key wins over Supabase
// credentials when both are present.
func NewClient(cfg config.CopilotConfig, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var tokens TokenSource
	switch {
	case cfg.APIKey != "":
		tokens = staticToken(cfg.APIKey)
	case cfg.Supabase.URL != "":
		tokens = NewSupabaseAuth(cfg.Supabase, logger)
	default:
		return nil, fmt.Errorf("copilot: no API key or supabase credentials configured")
	}

	return &Client{
		baseURL: cfg.BaseURL,
		tokens:  tokens,
		// LLM-backed analysis can take a while
		client: &http.Client{Timeout: 120 * time.Second},
		logger: logger.With("component", "copilot"),
	}, nil
}

// Query runs a natural language options analysis query. Each call gets a
// fresh session id so backend history never bleeds between runs.
func (c *Client) Query(ctx context.Context, query string) (*QueryResponse, error) {
	c.logger.Info("querying alpha copilot", "query", query)

	id := uuid.New()
	sessionID := fmt.Sprintf("social_agent_%x", id[:4])
	body, err := json.Marshal(map[string]string{
		"query":      query,
		"session_id": sessionID,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	var resp QueryResponse
	if err := c.do(ctx, "POST", "/api/query", "", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetMarketContext fetches the market snapshot. contextType is one of
// movers, earnings, volatility, all.
func (c *Client) GetMarketContext(ctx context.Context, contextType string) (*MarketContext, error) {
	c.logger.Info("fetching market context", "type", contextType)

	var mc MarketContext
	if err := c.do(ctx, "GET", "/api/market-context", "type="+contextType, nil, &mc); err != nil {
		return nil, err
	}
	return &mc, nil
}

func (c *Client) do(ctx context.Context, method, path, query string, body []byte, out any) error {
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return fmt.Errorf("get access token: %w", err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if query != "" {
		req.URL.RawQuery = query
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("copilot API error %d: %s", resp.StatusCode, string(respBody))
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
