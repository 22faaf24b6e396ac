package tools

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/alphacopilot/social-agent/internal/llm"
)

// postLimits are the per-platform character budgets enforced before a post
// reaches the evaluator.
var postLimits = map[string]int{
	"twitter": 280,
	"threads": 500,
}

const minPostLength = 50

var (
	tickerRe = regexp.MustCompile(`\$[A-Z]{1,5}\b`)
	digitRe  = regexp.MustCompile(`\d`)
)

// WritePostTool accepts a fully model-written post, validates its length,
// and hands it back with the POST_READY marker the publication gate keys on.
type WritePostTool struct{}

// NewWritePostTool returns the free-form post writing tool.
func NewWritePostTool() *WritePostTool { return &WritePostTool{} }

func (t *WritePostTool) Name() string { return "write_post" }

func (t *WritePostTool) Description() string {
	return "Write a complete, engaging social media post about an options trade. " +
		"You have full creative control - write the ENTIRE post text from scratch. " +
		"NO templates - use your own words to tell a compelling story that leads with NEWS."
}

func (t *WritePostTool) Schema() llm.ToolSchema {
	return llm.ToolSchema{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: llm.ObjectParameters(map[string]llm.ParameterDef{
			"post_text": {
				Type: "string",
				Description: "The COMPLETE post text. Write it exactly as it should appear. " +
					"Lead with the news hook, follow with the trade idea. " +
					"Include specific details (strike, premium, expiration, POP). " +
					"Make it sound human and engaging, not robotic.",
			},
			"platform": {
				Type:        "string",
				Enum:        []string{"twitter", "threads"},
				Description: "Target platform (for length validation)",
			},
		}, "post_text", "platform"),
	}
}

func (t *WritePostTool) Execute(_ context.Context, args map[string]any) (string, error) {
	postText, _ := stringArg(args, "post_text")
	platform, ok := stringArg(args, "platform")
	if !ok || platform == "" {
		platform = "twitter"
	}

	limit, ok := postLimits[platform]
	if !ok {
		limit = postLimits["twitter"]
	}
	charCount := utf8.RuneCountInString(postText)

	if charCount > limit {
		return tooLongError(postText, platform, charCount, limit), nil
	}
	if charCount < minPostLength {
		return fmt.Sprintf("ERROR: Post too short (%d chars). Add more context or details.", charCount), nil
	}

	// Suggestive checks only. A missing ticker is flagged, not rejected.
	var warnings []string
	if !tickerRe.MatchString(postText) {
		warnings = append(warnings, "WARNING: No ticker symbol ($SYMBOL) found")
	}
	if !digitRe.MatchString(postText) {
		warnings = append(warnings, "WARNING: No numbers found (strike/premium/date)")
	}

	parts := []string{
		fmt.Sprintf("POST_READY: %d/%d characters", charCount, limit),
		"Platform: " + platform,
		"",
		"POST TEXT:",
		postText,
	}
	if len(warnings) > 0 {
		parts = append(parts, "", "SUGGESTIONS:")
		parts = append(parts, warnings...)
	}
	return strings.Join(parts, "\n"), nil
}

// tooLongError builds the over-limit rejection with concrete shortening tips
// derived from the post text itself.
func tooLongError(postText, platform string, charCount, limit int) string {
	lower := strings.ToLower(postText)

	var tips []string
	if strings.Contains(postText, "(") {
		tips = append(tips, "Remove company name in parentheses")
	}
	if strings.Contains(lower, "approximately") {
		tips = append(tips, "Use '~' instead of 'approximately'")
	}
	if strings.Contains(lower, " just ") {
		tips = append(tips, "Remove filler word 'just'")
	}
	if strings.Contains(lower, "expiration") || strings.Contains(lower, "expiry") {
		tips = append(tips, "Use 'exp' instead of 'expiration/expiry'")
	}
	if len(tips) == 0 {
		tips = append(tips, "Remove adjectives and shorten phrases")
	}

	return fmt.Sprintf(
		"ERROR: Post too long for %s. %d/%d characters (over by %d). "+
			"Tips to shorten: %s. Be aggressive - cut anything non-essential!",
		platform, charCount, limit, charCount-limit, strings.Join(tips, ", "))
}
