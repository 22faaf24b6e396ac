package tools

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

func composePost(t *testing.T, args map[string]any) string {
	t.Helper()
	got, err := NewComposePostTool().Execute(context.Background(), args)
	if err != nil {
		t.Fatal(err)
	}
	return got
}

// extractComposed pulls the post body out of the tool result and checks the
// reported character count against it.
func extractComposed(t *testing.T, result string) string {
	t.Helper()
	if !strings.HasPrefix(result, "COMPOSED_POST:\n") {
		t.Fatalf("missing marker:\n%s", result)
	}
	idx := strings.LastIndex(result, "\n\nCHARACTER_COUNT: ")
	if idx < 0 {
		t.Fatalf("missing character count:\n%s", result)
	}
	composed := result[len("COMPOSED_POST:\n"):idx]
	want := fmt.Sprintf("CHARACTER_COUNT: %d", len(composed))
	if !strings.HasSuffix(result, want) {
		t.Errorf("count mismatch, want %q in:\n%s", want, result)
	}
	return composed
}

func TestComposeTwitterLayout(t *testing.T) {
	result := composePost(t, map[string]any{
		"symbol": "AAPL", "strategy": "Covered Call",
		"strike": "$180", "expiration": "Jan 30",
		"premium": "$3.50", "pop": "72%",
		"why_now": "Earnings cushion after the breakout.",
		"platform": "twitter",
	})
	composed := extractComposed(t, result)

	want := "Options Alert\n\n" +
		"$AAPL Covered Call\n" +
		"$180 | Exp: Jan 30\n" +
		"Premium: $3.50 | POP: 72%\n\n" +
		"Earnings cushion after the breakout.\n" +
		"#options #trading"
	if composed != want {
		t.Errorf("layout mismatch:\ngot:\n%s\nwant:\n%s", composed, want)
	}
}

func TestComposeTwitterOmitsEmptyMetrics(t *testing.T) {
	result := composePost(t, map[string]any{
		"symbol": "NVDA", "strategy": "Put Credit Spread",
		"why_now": "Rally momentum.", "platform": "twitter",
	})
	composed := extractComposed(t, result)

	if strings.Contains(composed, "Exp:") || strings.Contains(composed, "POP:") {
		t.Errorf("empty metrics must be dropped:\n%s", composed)
	}
	if !strings.Contains(composed, "$NVDA Put Credit Spread") {
		t.Errorf("missing headline:\n%s", composed)
	}
}

func TestComposeTwitterTrimsWhyNow(t *testing.T) {
	result := composePost(t, map[string]any{
		"symbol": "TSLA", "strategy": "Iron Condor",
		"strike": "$240/$260", "expiration": "Feb 21",
		"premium": "$4.20", "pop": "68%",
		"why_now":  strings.Repeat("volatility ", 30),
		"platform": "twitter",
	})
	composed := extractComposed(t, result)

	if len(composed) > 280 {
		t.Errorf("composed tweet over limit: %d chars", len(composed))
	}
	if !strings.Contains(composed, "...\n#options #trading") {
		t.Errorf("long why_now must be trimmed with an ellipsis:\n%s", composed)
	}
}

func TestComposeThreadsLayout(t *testing.T) {
	result := composePost(t, map[string]any{
		"symbol": "AAPL", "strategy": "Covered Call",
		"strike": "$180", "expiration": "Jan 30",
		"premium": "$3.50", "pop": "72%",
		"why_now":  "Earnings cushion after the breakout.",
		"platform": "threads",
	})
	composed := extractComposed(t, result)

	for _, line := range []string{
		"Strike: $180",
		"Expiration: Jan 30",
		"Premium: $3.50",
		"Probability of Profit: 72%",
		"#options #trading #stocks",
	} {
		if !strings.Contains(composed, line) {
			t.Errorf("missing %q in:\n%s", line, composed)
		}
	}
}

func TestComposeThreadsTrimsWhyNow(t *testing.T) {
	why := strings.Repeat("z", 400)
	result := composePost(t, map[string]any{
		"symbol": "META", "strategy": "CSP",
		"why_now": why, "platform": "threads",
	})
	composed := extractComposed(t, result)

	if strings.Contains(composed, why) {
		t.Error("why_now must be capped at 300 chars for threads")
	}
	if !strings.Contains(composed, strings.Repeat("z", 300)) {
		t.Error("first 300 chars must survive")
	}
}
