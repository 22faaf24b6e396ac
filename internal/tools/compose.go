package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/alphacopilot/social-agent/internal/llm"
)

// ComposePostTool builds a structured post from analysis fields. It is the
// templated counterpart to write_post for when the model wants a fixed
// layout instead of free-form text.
type ComposePostTool struct{}

// NewComposePostTool returns the structured composition tool.
func NewComposePostTool() *ComposePostTool { return &ComposePostTool{} }

func (t *ComposePostTool) Name() string { return "compose_post" }

func (t *ComposePostTool) Description() string {
	return "Compose a social media post from options analysis results. Adapts format to target platform."
}

func (t *ComposePostTool) Schema() llm.ToolSchema {
	return llm.ToolSchema{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: llm.ObjectParameters(map[string]llm.ParameterDef{
			"symbol":     {Type: "string", Description: "Stock symbol (e.g., AAPL)"},
			"strategy":   {Type: "string", Description: "Options strategy (e.g., Covered Call, Iron Condor)"},
			"strike":     {Type: "string", Description: "Strike price info (e.g., '$280 (3% OTM)')"},
			"expiration": {Type: "string", Description: "Expiration date (e.g., 'Jan 30')"},
			"premium":    {Type: "string", Description: "Premium amount (e.g., '$4.50')"},
			"pop":        {Type: "string", Description: "Probability of profit (e.g., '68%')"},
			"why_now":    {Type: "string", Description: "Brief explanation of why this is a good opportunity NOW"},
			"platform": {
				Type:        "string",
				Enum:        []string{"twitter", "threads"},
				Description: "Target platform to adapt format",
			},
		}, "symbol", "strategy", "why_now", "platform"),
	}
}

func (t *ComposePostTool) Execute(_ context.Context, args map[string]any) (string, error) {
	symbol, _ := stringArg(args, "symbol")
	strategy, _ := stringArg(args, "strategy")
	whyNow, _ := stringArg(args, "why_now")
	platform, _ := stringArg(args, "platform")
	strike, _ := stringArg(args, "strike")
	expiration, _ := stringArg(args, "expiration")
	premium, _ := stringArg(args, "premium")
	pop, _ := stringArg(args, "pop")

	var composed string
	if platform == "threads" {
		composed = formatThreadsPost(symbol, strategy, strike, expiration, premium, pop, whyNow)
	} else {
		composed = formatTwitterPost(symbol, strategy, strike, expiration, premium, pop, whyNow)
	}

	return fmt.Sprintf("COMPOSED_POST:\n%s\n\nCHARACTER_COUNT: %d", composed, len(composed)), nil
}

// formatTwitterPost packs the fields into the 280 character budget, trimming
// the why-now line to whatever space the metrics leave.
func formatTwitterPost(symbol, strategy, strike, expiration, premium, pop, whyNow string) string {
	var metrics []string
	if strike != "" {
		metrics = append(metrics, strike)
	}
	if expiration != "" {
		metrics = append(metrics, "Exp: "+expiration)
	}

	var stats []string
	if premium != "" {
		stats = append(stats, "Premium: "+premium)
	}
	if pop != "" {
		stats = append(stats, "POP: "+pop)
	}

	parts := []string{"Options Alert", "", fmt.Sprintf("$%s %s", symbol, strategy)}
	if len(metrics) > 0 {
		parts = append(parts, strings.Join(metrics, " | "))
	}
	if len(stats) > 0 {
		parts = append(parts, strings.Join(stats, " | "))
	}
	parts = append(parts, "")

	base := strings.Join(parts, "\n")
	const hashtags = "\n#options #trading"
	remaining := 280 - len(base) - len(hashtags) - 1
	if len(whyNow) > remaining && remaining > 3 {
		whyNow = whyNow[:remaining-3] + "..."
	}

	parts = append(parts, whyNow, "#options #trading")
	return strings.Join(parts, "\n")
}

// formatThreadsPost uses the 500 character budget for a line-per-metric
// layout with more room for the rationale.
func formatThreadsPost(symbol, strategy, strike, expiration, premium, pop, whyNow string) string {
	parts := []string{"Options Alert", "", fmt.Sprintf("$%s %s", symbol, strategy), ""}

	if strike != "" {
		parts = append(parts, "Strike: "+strike)
	}
	if expiration != "" {
		parts = append(parts, "Expiration: "+expiration)
	}
	if premium != "" {
		parts = append(parts, "Premium: "+premium)
	}
	if pop != "" {
		parts = append(parts, "Probability of Profit: "+pop)
	}

	parts = append(parts, "", head(whyNow, 300), "", "#options #trading #stocks")
	return strings.Join(parts, "\n")
}
