package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/alphacopilot/social-agent/internal/copilot"
	"github.com/alphacopilot/social-agent/internal/llm"
)

// ContextFetcher supplies the market snapshot.
type ContextFetcher interface {
	GetMarketContext(ctx context.Context, contextType string) (*copilot.MarketContext, error)
}

// fallbackMarketContext keeps the agent productive when the backend is down.
const fallbackMarketContext = `MARKET_CONTEXT (fallback - API unavailable):

Use these attention-grabbing approaches:
- Focus on stocks with upcoming earnings (check financial calendars)
- Look for stocks making 52-week highs/lows
- Find elevated IV situations for premium selling
- Reference current market conditions (VIX level, trend)

SUGGESTED QUERIES:
- "Find high IV stocks for premium selling"
- "Find earnings plays for this week"
- "Find momentum stocks breaking out"
`

// MarketContextTool formats the backend market snapshot for the agent, with
// a static fallback when the API is unreachable.
type MarketContextTool struct {
	copilot ContextFetcher
	logger  *slog.Logger
	now     func() time.Time
}

// NewMarketContextTool returns the market context tool.
func NewMarketContextTool(fetcher ContextFetcher, logger *slog.Logger) *MarketContextTool {
	if logger == nil {
		logger = slog.Default()
	}
	return &MarketContextTool{
		copilot: fetcher,
		logger:  logger.With("component", "tools"),
		now:     time.Now,
	}
}

func (t *MarketContextTool) Name() string { return "get_market_context" }

func (t *MarketContextTool) Description() string {
	return "Get current market context including top movers, earnings calendar, " +
		"and market sentiment. Use this BEFORE querying Alpha Copilot to make " +
		"posts timely and relevant to what's happening TODAY."
}

func (t *MarketContextTool) Schema() llm.ToolSchema {
	return llm.ToolSchema{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: llm.ObjectParameters(map[string]llm.ParameterDef{
			"context_type": {
				Type:        "string",
				Enum:        []string{"movers", "earnings", "volatility", "all"},
				Description: "Type of market context to fetch",
			},
		}, "context_type"),
	}
}

func (t *MarketContextTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	contextType, ok := stringArg(args, "context_type")
	if !ok || contextType == "" {
		contextType = "all"
	}

	mc, err := t.copilot.GetMarketContext(ctx, contextType)
	if err != nil {
		// The fallback keeps the run alive; the agent can still post from
		// general knowledge.
		t.logger.Warn("market context fetch failed, using fallback", "error", err)
		return fallbackMarketContext, nil
	}
	return t.formatContext(mc), nil
}

func (t *MarketContextTool) formatContext(mc *copilot.MarketContext) string {
	parts := []string{
		fmt.Sprintf("MARKET_CONTEXT (%s):", t.now().Format("2006-01-02 15:04")),
		"",
	}

	if len(mc.Movers) > 0 {
		parts = append(parts, "TOP MOVERS TODAY:")
		for _, m := range top(mc.Movers, 5) {
			direction := "🟢"
			if m.ChangePercent <= 0 {
				direction = "🔴"
			}
			parts = append(parts, fmt.Sprintf("  %s %s: %+.1f%% - %s", direction, m.Symbol, m.ChangePercent, m.Reason))
		}
		parts = append(parts, "")
	}

	if len(mc.Earnings) > 0 {
		parts = append(parts, "EARNINGS THIS WEEK:")
		for _, e := range top(mc.Earnings, 5) {
			parts = append(parts, fmt.Sprintf("  📅 %s - %s (%s)", e.Symbol, e.Date, e.Timing))
		}
		parts = append(parts, "")
	}

	if len(mc.HighIV) > 0 {
		parts = append(parts, "ELEVATED IV (premium selling opportunities):")
		for _, s := range top(mc.HighIV, 5) {
			parts = append(parts, fmt.Sprintf("  🔥 %s: IV Rank %s%% | IV Percentile %s%%",
				s.Symbol, num(s.IVRank), num(s.IVPercentile)))
		}
		parts = append(parts, "")
	}

	if mc.Sentiment != nil {
		mood := "NEUTRAL"
		switch {
		case mc.Sentiment.SPYChange > 0.5:
			mood = "BULLISH"
		case mc.Sentiment.SPYChange < -0.5:
			mood = "BEARISH"
		}
		parts = append(parts,
			"MARKET SENTIMENT: "+mood,
			fmt.Sprintf("  VIX: %.1f | SPY: %+.1f%%", mc.Sentiment.VIX, mc.Sentiment.SPYChange),
			"")
	}

	parts = append(parts, "SUGGESTED FOCUS:")
	if len(mc.Movers) > 0 {
		m := mc.Movers[0]
		parts = append(parts, fmt.Sprintf("  - %s is moving %+.1f%% - timely opportunity", m.Symbol, m.ChangePercent))
	}
	if len(mc.Earnings) > 0 {
		e := mc.Earnings[0]
		parts = append(parts, fmt.Sprintf("  - %s earnings %s - play the IV crush", e.Symbol, e.Date))
	}
	if len(mc.HighIV) > 0 {
		s := mc.HighIV[0]
		parts = append(parts, fmt.Sprintf("  - %s IV rank %s%% - premium selling setup", s.Symbol, num(s.IVRank)))
	}

	return strings.Join(parts, "\n")
}

// num renders a float the short way, without a trailing ".0" on whole
// numbers.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func top[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
