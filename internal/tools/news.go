package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alphacopilot/social-agent/internal/llm"
)

// TextGenerator produces a plain-text completion, with search grounding when
// the provider has it enabled. Sources are "Title: URI" strings.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, []string, error)
}

// marketNewsQuery asks for exactly one story so the agent gets a single
// actionable lead instead of a digest.
const marketNewsQuery = "What is the single biggest US stock market news story RIGHT NOW? " +
	"Focus on ONE stock that is moving significantly today or has major news. " +
	"Include:\n" +
	"1. The ticker symbol\n" +
	"2. What happened (earnings, FDA approval, upgrade, price movement, etc.)\n" +
	"3. The percentage move if applicable\n" +
	"Be specific with the ticker and numbers. Just give me the ONE most important story."

// MarketNewsTool fetches today's biggest market story via a grounded LLM
// completion.
type MarketNewsTool struct {
	llm    TextGenerator
	logger *slog.Logger
}

// NewMarketNewsTool returns the news research tool.
func NewMarketNewsTool(gen TextGenerator, logger *slog.Logger) *MarketNewsTool {
	if logger == nil {
		logger = slog.Default()
	}
	return &MarketNewsTool{llm: gen, logger: logger.With("component", "tools")}
}

func (t *MarketNewsTool) Name() string { return "get_market_news" }

func (t *MarketNewsTool) Description() string {
	return "Get the BIGGEST stock market news right now using Google Search. " +
		"Returns the top moving stock or most important news of the day. " +
		"USE THIS FIRST to find a timely opportunity to post about."
}

func (t *MarketNewsTool) Schema() llm.ToolSchema {
	return llm.ToolSchema{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters:  llm.ObjectParameters(map[string]llm.ParameterDef{}),
	}
}

func (t *MarketNewsTool) Execute(ctx context.Context, _ map[string]any) (string, error) {
	t.logger.Info("fetching biggest market news")

	text, sources, err := t.llm.GenerateText(ctx, marketNewsQuery)
	if err != nil {
		return "", fmt.Errorf("fetch market news: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.New("empty model response")
	}
	t.logger.Info("market news fetched", "grounding_sources", len(sources))

	rule := strings.Repeat("=", 40)
	lines := []string{
		"TODAY'S BIGGEST NEWS (via Google Search):",
		rule,
		"",
		strings.TrimSpace(text),
		"",
		rule,
		"",
		"NEXT STEP: Query Alpha Copilot for an options play on this stock.",
		"Remember to check recent posts first to avoid duplicates!",
	}
	return strings.Join(lines, "\n"), nil
}
