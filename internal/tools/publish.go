package tools

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/alphacopilot/social-agent/internal/llm"
	"github.com/alphacopilot/social-agent/internal/platforms"
	"github.com/alphacopilot/social-agent/internal/store"
)

// PlatformSet maps platform name to its adapter. Only configured platforms
// are present.
type PlatformSet map[string]platforms.Platform

func (ps PlatformSet) names() []string {
	names := make([]string, 0, len(ps))
	for name := range ps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PostRecorder is the slice of the post store the publishing tools use.
type PostRecorder interface {
	RecordPost(ctx context.Context, rec store.Record) (string, error)
	RecentPosts(ctx context.Context, platform string, within time.Duration, limit int) ([]store.Record, error)
}

// publishOutcome renders the non-error result markers shared by publish and
// cross_post.
func publishOutcome(platform, content string, res *platforms.PublishResult) string {
	if res.DryRun {
		return fmt.Sprintf("DRY_RUN: Would have published to %s. Content: %s...", platform, head(content, 100))
	}
	return fmt.Sprintf("SUCCESS: Published to %s. Post ID: %s. URL: %s", platform, res.PostID, res.URL)
}

// recordPublish persists the post for duplicate checks. Store failures are
// logged, not surfaced; the post already went out.
func recordPublish(ctx context.Context, recorder PostRecorder, logger *slog.Logger, platform, content string, res *platforms.PublishResult) {
	if recorder == nil {
		return
	}
	_, err := recorder.RecordPost(ctx, store.Record{
		Platform: platform,
		Content:  content,
		PostID:   res.PostID,
		URL:      res.URL,
		DryRun:   res.DryRun,
	})
	if err != nil {
		logger.Warn("failed to record post", "platform", platform, "error", err)
	}
}

// PublishTool posts content to a single platform.
type PublishTool struct {
	platforms PlatformSet
	store     PostRecorder
	logger    *slog.Logger
}

// NewPublishTool returns the single-platform publish tool.
func NewPublishTool(ps PlatformSet, recorder PostRecorder, logger *slog.Logger) *PublishTool {
	if logger == nil {
		logger = slog.Default()
	}
	return &PublishTool{platforms: ps, store: recorder, logger: logger.With("component", "tools")}
}

func (t *PublishTool) Name() string { return "publish" }

func (t *PublishTool) Description() string {
	return "Publish content to a social media platform (twitter, threads)."
}

func (t *PublishTool) Schema() llm.ToolSchema {
	return llm.ToolSchema{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: llm.ObjectParameters(map[string]llm.ParameterDef{
			"content": {Type: "string", Description: "The content to publish"},
			"platform": {
				Type:        "string",
				Enum:        []string{"twitter", "threads"},
				Description: "Target platform",
			},
		}, "content", "platform"),
	}
}

func (t *PublishTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	content, _ := stringArg(args, "content")
	platform, _ := stringArg(args, "platform")

	t.logger.Info("publishing", "platform", platform, "content", head(content, 50))

	adapter, ok := t.platforms[platform]
	if !ok {
		return fmt.Sprintf("ERROR: Platform '%s' is not supported. Available: %v", platform, t.platforms.names()), nil
	}

	res, err := adapter.Publish(ctx, content)
	if err != nil {
		return fmt.Sprintf("ERROR: Failed to publish to %s. Error: %v", platform, err), nil
	}

	recordPublish(ctx, t.store, t.logger, platform, content, res)
	return publishOutcome(platform, content, res), nil
}

// crossPostOrder is the fixed fan-out order for cross_post.
var crossPostOrder = []string{"twitter", "threads"}

// CrossPostTool publishes to every cross-post platform in one step and
// optionally follows up with a promotional post.
type CrossPostTool struct {
	platforms   PlatformSet
	store       PostRecorder
	promoURL    string
	enablePromo bool
	logger      *slog.Logger
}

// NewCrossPostTool returns the multi-platform publish tool.
func NewCrossPostTool(ps PlatformSet, recorder PostRecorder, promoURL string, enablePromo bool, logger *slog.Logger) *CrossPostTool {
	if logger == nil {
		logger = slog.Default()
	}
	return &CrossPostTool{
		platforms:   ps,
		store:       recorder,
		promoURL:    promoURL,
		enablePromo: enablePromo,
		logger:      logger.With("component", "tools"),
	}
}

func (t *CrossPostTool) Name() string { return "cross_post" }

func (t *CrossPostTool) Description() string {
	return "Post to BOTH Twitter and Threads with promo follow-up (PREFERRED)."
}

func (t *CrossPostTool) Schema() llm.ToolSchema {
	return llm.ToolSchema{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: llm.ObjectParameters(map[string]llm.ParameterDef{
			"content": {Type: "string", Description: "The content to publish to all platforms"},
		}, "content"),
	}
}

func (t *CrossPostTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	content, _ := stringArg(args, "content")

	lines := []string{"CROSS_POST RESULTS:"}
	var published []string

	for _, name := range crossPostOrder {
		adapter, ok := t.platforms[name]
		if !ok {
			lines = append(lines, fmt.Sprintf("%s: ERROR: Platform '%s' is not supported. Available: %v",
				name, name, t.platforms.names()))
			continue
		}

		res, err := adapter.Publish(ctx, content)
		if err != nil {
			t.logger.Warn("cross post failed", "platform", name, "error", err)
			lines = append(lines, fmt.Sprintf("%s: ERROR: Failed to publish to %s. Error: %v", name, name, err))
			continue
		}

		recordPublish(ctx, t.store, t.logger, name, content, res)
		published = append(published, name)
		lines = append(lines, name+": "+publishOutcome(name, content, res))
	}

	if t.enablePromo && len(published) > 0 && t.promoURL != "" {
		promo := fmt.Sprintf("Want more setups like this? Alpha Copilot scans the options market for you: %s", t.promoURL)
		for _, name := range published {
			res, err := t.platforms[name].Publish(ctx, promo)
			if err != nil {
				t.logger.Warn("promo post failed", "platform", name, "error", err)
				lines = append(lines, fmt.Sprintf("promo %s: ERROR: Failed to publish to %s. Error: %v", name, name, err))
				continue
			}
			recordPublish(ctx, t.store, t.logger, name, promo, res)
			lines = append(lines, "promo "+name+": "+publishOutcome(name, promo, res))
		}
	}

	return strings.Join(lines, "\n"), nil
}

// CheckRecentPostsTool lists recent posts so the agent avoids duplicates.
// The local store is checked first since it also knows about dry runs; the
// platform API is the fallback for history made outside this agent.
type CheckRecentPostsTool struct {
	platforms PlatformSet
	store     PostRecorder
	logger    *slog.Logger
}

// NewCheckRecentPostsTool returns the duplicate check tool.
func NewCheckRecentPostsTool(ps PlatformSet, recorder PostRecorder, logger *slog.Logger) *CheckRecentPostsTool {
	if logger == nil {
		logger = slog.Default()
	}
	return &CheckRecentPostsTool{platforms: ps, store: recorder, logger: logger.With("component", "tools")}
}

func (t *CheckRecentPostsTool) Name() string { return "check_recent_posts" }

func (t *CheckRecentPostsTool) Description() string {
	return "Check recent posts on a platform to avoid posting duplicate content."
}

func (t *CheckRecentPostsTool) Schema() llm.ToolSchema {
	return llm.ToolSchema{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: llm.ObjectParameters(map[string]llm.ParameterDef{
			"platform": {
				Type:        "string",
				Enum:        []string{"twitter", "threads"},
				Description: "Platform to check",
			},
			"hours": {
				Type:        "integer",
				Description: "How many hours back to check (default: 24)",
			},
		}, "platform"),
	}
}

func (t *CheckRecentPostsTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	platform, _ := stringArg(args, "platform")
	hours := intArg(args, "hours", 24)
	if hours <= 0 {
		hours = 24
	}

	var records []store.Record
	if t.store != nil {
		var err error
		records, err = t.store.RecentPosts(ctx, platform, time.Duration(hours)*time.Hour, 5)
		if err != nil {
			t.logger.Warn("post store lookup failed", "error", err)
		}
	}

	if len(records) == 0 {
		if adapter, ok := t.platforms[platform]; ok {
			posts, err := adapter.RecentPosts(ctx, 5)
			if err != nil {
				t.logger.Warn("platform recent posts failed", "platform", platform, "error", err)
			}
			for _, p := range posts {
				records = append(records, store.Record{Content: p.Content, CreatedAt: p.CreatedAt})
			}
		}
	}

	if len(records) == 0 {
		return fmt.Sprintf("NO_RECENT_POSTS: No posts found on %s in the last %d hours.", platform, hours), nil
	}

	lines := []string{fmt.Sprintf("RECENT_POSTS on %s (last %d hours):", platform, hours)}
	for i, rec := range top(records, 5) {
		created := rec.CreatedAt.Format("2006-01-02 15:04")
		lines = append(lines, fmt.Sprintf("%d. [%s] %s...", i+1, created, head(rec.Content, 100)))
	}
	return strings.Join(lines, "\n"), nil
}

// PlatformStatusTool reports whether a platform is configured and healthy.
type PlatformStatusTool struct {
	platforms PlatformSet
	logger    *slog.Logger
}

// NewPlatformStatusTool returns the platform availability tool.
func NewPlatformStatusTool(ps PlatformSet, logger *slog.Logger) *PlatformStatusTool {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlatformStatusTool{platforms: ps, logger: logger.With("component", "tools")}
}

func (t *PlatformStatusTool) Name() string { return "get_platform_status" }

func (t *PlatformStatusTool) Description() string {
	return "Check if a platform is available and properly configured."
}

func (t *PlatformStatusTool) Schema() llm.ToolSchema {
	return llm.ToolSchema{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: llm.ObjectParameters(map[string]llm.ParameterDef{
			"platform": {
				Type:        "string",
				Enum:        []string{"twitter", "threads"},
				Description: "Platform to check",
			},
		}, "platform"),
	}
}

func (t *PlatformStatusTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	platform, _ := stringArg(args, "platform")

	adapter, ok := t.platforms[platform]
	if !ok {
		return fmt.Sprintf("UNAVAILABLE: Platform '%s' is not implemented yet.", platform), nil
	}

	if err := adapter.HealthCheck(ctx); err != nil {
		t.logger.Warn("platform health check failed", "platform", platform, "error", err)
		return fmt.Sprintf("UNAVAILABLE: %s credentials are not configured or invalid.", platform), nil
	}
	return fmt.Sprintf("AVAILABLE: %s is configured and ready to use.", platform), nil
}
