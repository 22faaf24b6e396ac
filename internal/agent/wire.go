package agent

import (
	"fmt"
	"log/slog"

	"github.com/alphacopilot/social-agent/internal/config"
	"github.com/alphacopilot/social-agent/internal/copilot"
	"github.com/alphacopilot/social-agent/internal/evals"
	"github.com/alphacopilot/social-agent/internal/llm"
	"github.com/alphacopilot/social-agent/internal/platforms"
	"github.com/alphacopilot/social-agent/internal/prompts"
	"github.com/alphacopilot/social-agent/internal/store"
	"github.com/alphacopilot/social-agent/internal/tools"
)

// NewDefault wires a fully configured loop from config: Gemini client, tool
// registry, platform adapters, post store, and the evaluation gate. The
// returned cleanup closes the post store.
func NewDefault(cfg *config.Config, logger *slog.Logger) (*Loop, func() error, error) {
	if logger == nil {
		logger = slog.Default()
	}

	model, err := llm.NewGeminiClient(cfg.LLM, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("agent: %w", err)
	}

	postStore, err := store.Open(cfg.Store.Path, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("agent: %w", err)
	}

	platformSet := tools.PlatformSet{}
	if cfg.ValidateTwitter() {
		platformSet["twitter"] = platforms.NewTwitter(cfg.Twitter, cfg.Agent.DryRun, logger)
	}
	if cfg.ValidateThreads() {
		platformSet["threads"] = platforms.NewThreads(cfg.Threads, cfg.Agent.DryRun, logger)
	}
	if len(platformSet) == 0 {
		logger.Warn("no platform credentials configured, publishing tools will report errors")
	}

	registry := tools.NewRegistry(logger)
	registry.Register(tools.NewMarketNewsTool(model, logger))

	if cfg.ValidateCopilot() {
		copilotClient, err := copilot.NewClient(cfg.Copilot, logger)
		if err != nil {
			postStore.Close() //nolint:errcheck
			return nil, nil, fmt.Errorf("agent: %w", err)
		}
		registry.Register(tools.NewMarketContextTool(copilotClient, logger))
		registry.Register(tools.NewQueryCopilotTool(copilotClient, logger))
	} else {
		logger.Warn("no alpha copilot credentials, market context and query tools disabled")
	}

	registry.Register(tools.NewWritePostTool())
	registry.Register(tools.NewComposePostTool())
	registry.Register(tools.NewPublishTool(platformSet, postStore, logger))
	registry.Register(tools.NewCrossPostTool(platformSet, postStore,
		cfg.Copilot.PromoURL, cfg.Agent.EnablePromo, logger))
	registry.Register(tools.NewCheckRecentPostsTool(platformSet, postStore, logger))
	registry.Register(tools.NewPlatformStatusTool(platformSet, logger))
	registry.Register(tools.NewDoneTool())

	evaluator := evals.NewEvaluator(cfg.Eval, logger)
	loop := New(model, registry, evaluator, prompts.SystemPrompt, cfg.Agent, cfg.Eval, logger)

	if cfg.Prompts.TasksPath != "" {
		templates, err := prompts.LoadTaskTemplates(cfg.Prompts.TasksPath)
		if err != nil {
			postStore.Close() //nolint:errcheck
			return nil, nil, fmt.Errorf("agent: %w", err)
		}
		loop.SetTaskTemplates(templates)
		logger.Info("task template overrides loaded", "path", cfg.Prompts.TasksPath)
	}

	return loop, postStore.Close, nil
}
