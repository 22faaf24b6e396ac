package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alphacopilot/social-agent/internal/copilot"
	"github.com/alphacopilot/social-agent/internal/llm"
)

// CopilotQuerier runs natural language analysis queries against the backend.
type CopilotQuerier interface {
	Query(ctx context.Context, query string) (*copilot.QueryResponse, error)
}

// QueryCopilotTool asks the Alpha Copilot backend for options analysis and
// formats the top recommendations for the agent.
type QueryCopilotTool struct {
	copilot CopilotQuerier
	logger  *slog.Logger
}

// NewQueryCopilotTool returns the analysis query tool.
func NewQueryCopilotTool(querier CopilotQuerier, logger *slog.Logger) *QueryCopilotTool {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryCopilotTool{copilot: querier, logger: logger.With("component", "tools")}
}

func (t *QueryCopilotTool) Name() string { return "query_alpha_copilot" }

func (t *QueryCopilotTool) Description() string {
	return "Query the Alpha Copilot API for options trading analysis. Uses the same API as the web app."
}

func (t *QueryCopilotTool) Schema() llm.ToolSchema {
	return llm.ToolSchema{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: llm.ObjectParameters(map[string]llm.ParameterDef{
			"query": {
				Type:        "string",
				Description: "Natural language query for options analysis (e.g., 'Find covered call opportunities for AAPL, MSFT')",
			},
		}, "query"),
	}
}

func (t *QueryCopilotTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	query, _ := stringArg(args, "query")

	resp, err := t.copilot.Query(ctx, query)
	if err != nil {
		// Returned as a result rather than an error so the agent can adjust
		// its query instead of aborting the iteration.
		t.logger.Warn("alpha copilot query failed", "error", err)
		return fmt.Sprintf("ERROR: %v", err), nil
	}

	switch resp.Status {
	case "needs_clarification":
		msg := resp.Message
		if msg == "" {
			msg = "Need more information"
		}
		return "CLARIFICATION_NEEDED: " + msg, nil
	case "success":
	default:
		errMsg := resp.ErrorMessage
		if errMsg == "" {
			errMsg = "Unknown error"
		}
		return "ERROR: " + errMsg, nil
	}

	recs := resp.Analysis.Recommendations
	if len(recs) == 0 {
		return "NO_RECOMMENDATIONS: The query returned no options recommendations.", nil
	}

	parts := []string{
		"QUERY: " + query,
		"STATUS: success",
		"MARKET_OVERVIEW: " + resp.Analysis.MarketOverview,
		fmt.Sprintf("RECOMMENDATIONS_COUNT: %d", len(recs)),
		"",
	}

	for i, rec := range top(recs, 3) {
		var metrics []string
		if rec.Strike != 0 {
			metrics = append(metrics, "Strike: $"+num(rec.Strike))
		}
		if rec.Premium != 0 {
			metrics = append(metrics, "Premium: $"+num(rec.Premium))
		}
		if rec.ProbabilityOfProfit != 0 {
			metrics = append(metrics, "POP: "+num(rec.ProbabilityOfProfit)+"%")
		}
		if rec.Expiration != "" {
			metrics = append(metrics, "Exp: "+rec.Expiration)
		}
		if rec.Delta != 0 {
			metrics = append(metrics, "Delta: "+num(rec.Delta))
		}

		parts = append(parts,
			fmt.Sprintf("RECOMMENDATION %d:", i+1),
			"  Symbol: "+rec.Symbol,
			"  Strategy: "+rec.Strategy,
			"  Metrics: "+strings.Join(metrics, ", "),
			"  Rationale: "+head(rec.Rationale, 200)+"...",
			"")
	}

	return strings.Join(parts, "\n"), nil
}
