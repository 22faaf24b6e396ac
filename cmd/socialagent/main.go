package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"

	"github.com/alphacopilot/social-agent/internal/agent"
	"github.com/alphacopilot/social-agent/internal/config"
	"github.com/alphacopilot/social-agent/internal/evals"
	"github.com/alphacopilot/social-agent/internal/prompts"
	"github.com/alphacopilot/social-agent/internal/scheduler"
)

var (
	version   = "0.1.0"
	buildTime = "dev"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	passStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981"))
	failStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) < 2 {
		usage()
		return 1
	}

	switch os.Args[1] {
	case "run":
		return runCommand(os.Args[2:])
	case "serve":
		return serveCommand(os.Args[2:])
	case "eval":
		return evalCommand(os.Args[2:])
	case "bench":
		return benchCommand(os.Args[2:])
	case "version", "--version", "-version":
		fmt.Printf("socialagent v%s (built %s)\n", version, buildTime)
		return 0
	case "help", "--help", "-h":
		usage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		usage()
		return 1
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: socialagent <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  run      Run the agent once and publish a post")
	fmt.Fprintln(os.Stderr, "  serve    Run the post scheduler until interrupted")
	fmt.Fprintln(os.Stderr, "  eval     Generate N posts in dry-run mode and score them")
	fmt.Fprintln(os.Stderr, "  bench    Score the hookiness benchmark samples")
	fmt.Fprintln(os.Stderr, "  version  Show version")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Examples:")
	fmt.Fprintln(os.Stderr, "  socialagent run -post morning")
	fmt.Fprintln(os.Stderr, "  socialagent run -post sector -sector XLF")
	fmt.Fprintln(os.Stderr, "  socialagent run -post morning -dry-run -no-promo")
	fmt.Fprintln(os.Stderr, "  socialagent run -task \"Post a bullish play for NVDA\"")
	fmt.Fprintln(os.Stderr, "  socialagent eval -runs 5")
	fmt.Fprintln(os.Stderr, "  socialagent serve -config socialagent.json")
}

func runCommand(args []string) int {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "socialagent.json", "Path to config file")
	postType := fs.String("post", "", "Type of post: morning, eod, volatility, sector")
	platform := fs.String("platform", "", "Target platform hint (twitter, threads)")
	sector := fs.String("sector", "", "Sector ETF for sector posts (e.g. XLF, XLK)")
	task := fs.String("task", "", "Custom task description (overrides -post)")
	dryRun := fs.Bool("dry-run", false, "Run without actually posting")
	noPromo := fs.Bool("no-promo", false, "Skip the promotional follow-up post")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	if *postType == "" && *task == "" {
		fmt.Fprintln(os.Stderr, "ERROR: -post or -task is required")
		fs.Usage()
		return 1
	}
	if *postType == "sector" && *sector == "" {
		fmt.Fprintln(os.Stderr, "ERROR: -sector is required for sector posts")
		return 1
	}

	cfg, logger, err := setup(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Setup failed: %v\n", err)
		return 1
	}
	if *dryRun {
		cfg.Agent.DryRun = true
	}
	if *noPromo {
		cfg.Agent.EnablePromo = false
	}

	if *task == "" {
		templates, err := loadTemplates(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
			return 1
		}
		if !slices.Contains(templates.Types(), *postType) {
			fmt.Fprintf(os.Stderr, "ERROR: unknown post type %q. Available: %s\n",
				*postType, strings.Join(templates.Types(), ", "))
			return 1
		}
	}

	printBanner(cfg)

	if !cfg.ValidateLLM() {
		fmt.Fprintln(os.Stderr, failStyle.Render("ERROR: LLM API key not configured"))
		return 1
	}

	loop, cleanup, err := agent.NewDefault(cfg, logger)
	if err != nil {
		logger.Error("agent setup failed", "error", err)
		return 1
	}
	defer cleanup() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var result string
	if *task != "" {
		result = loop.Run(ctx, *task)
	} else {
		result, err = loop.RunPost(ctx, *postType, *platform, *sector)
		if err != nil {
			logger.Error("run failed", "error", err)
		}
	}

	fmt.Println(mutedStyle.Render(strings.Repeat("=", 50)))
	fmt.Println("Result:")
	fmt.Println(result)
	fmt.Println(mutedStyle.Render(strings.Repeat("=", 50)))

	if strings.Contains(result, "TASK_COMPLETE") || strings.Contains(result, "SUCCESS") {
		fmt.Println(passStyle.Render("Run completed"))
		return 0
	}
	fmt.Println(failStyle.Render("Run did not complete"))
	return 1
}

func serveCommand(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "socialagent.json", "Path to config file")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg, logger, err := setup(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Setup failed: %v\n", err)
		return 1
	}
	if len(cfg.Scheduler.Jobs) == 0 {
		fmt.Fprintln(os.Stderr, "ERROR: no scheduled jobs configured")
		return 1
	}
	if !cfg.Scheduler.Enabled {
		logger.Warn("scheduler disabled in config, starting anyway because serve was requested")
	}

	printBanner(cfg)

	loop, cleanup, err := agent.NewDefault(cfg, logger)
	if err != nil {
		logger.Error("agent setup failed", "error", err)
		return 1
	}
	defer cleanup() //nolint:errcheck

	sched := scheduler.NewScheduler(loop, logger)
	sched.LoadJobs(cfg.Scheduler)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sched.Start(ctx); err != nil {
		logger.Error("scheduler start failed", "error", err)
		return 1
	}

	stats := sched.Stats()
	fmt.Printf("  Jobs: %v loaded, %v active\n\n", stats["total_jobs"], stats["active_jobs"])

	<-ctx.Done()
	logger.Info("shutdown signal received")
	sched.Stop()
	logger.Info("scheduler stopped")
	return 0
}

func evalCommand(args []string) int {
	fs := flag.NewFlagSet("eval", flag.ExitOnError)
	configPath := fs.String("config", "socialagent.json", "Path to config file")
	runs := fs.Int("runs", 5, "Number of posts to generate and score")
	postType := fs.String("post", "morning", "Type of post to create")
	platform := fs.String("platform", "twitter", "Platform the posts target")
	sector := fs.String("sector", "", "Sector ETF for sector posts")
	task := fs.String("task", "", "Custom task description (overrides -post)")
	concurrency := fs.Int("concurrency", 1, "Parallel agent runs")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg, logger, err := setup(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Setup failed: %v\n", err)
		return 1
	}
	// Evaluation never publishes.
	cfg.Agent.DryRun = true

	if !cfg.ValidateLLM() {
		fmt.Fprintln(os.Stderr, failStyle.Render("ERROR: LLM API key not configured"))
		return 1
	}

	evalTask := *task
	if evalTask == "" {
		templates, err := loadTemplates(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
			return 1
		}
		evalTask = templates.Prompt(*postType, *sector)
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("EVALUATION MODE - %d runs", *runs)))
	fmt.Printf("Task: %s\n\n", evalTask)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	evaluator := evals.NewEvaluator(cfg.Eval, logger)
	runner := evals.NewBatchRunner(evaluator, *concurrency, logger)

	// Each run gets a fresh loop so conversation state never leaks between
	// runs.
	runOne := func(ctx context.Context) (string, error) {
		loop, cleanup, err := agent.NewDefault(cfg, logger)
		if err != nil {
			return "", err
		}
		defer cleanup() //nolint:errcheck
		return loop.Run(ctx, evalTask), nil
	}

	report, err := runner.Run(ctx, *platform, *runs, runOne)
	if err != nil {
		logger.Error("evaluation aborted", "error", err)
		return 1
	}

	fmt.Println(report.Format())

	path, err := report.WriteReport(cfg.Server.DataDir)
	if err != nil {
		logger.Error("failed to save report", "error", err)
		return 1
	}
	fmt.Println(mutedStyle.Render("Detailed results saved to: " + path))
	return 0
}

func benchCommand(args []string) int {
	fs := flag.NewFlagSet("bench", flag.ExitOnError)
	configPath := fs.String("config", "socialagent.json", "Path to config file")
	samplesPath := fs.String("samples", "", "YAML file with benchmark samples (default: built-in set)")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg, logger, err := setup(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Setup failed: %v\n", err)
		return 1
	}

	samples := evals.DefaultBenchSamples()
	if *samplesPath != "" {
		samples, err = evals.LoadBenchSamples(*samplesPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
			return 1
		}
	}

	evaluator := evals.NewEvaluator(cfg.Eval, logger)
	report := evaluator.RunBench(samples)
	fmt.Println(report.Format())

	if report.NewStyleAvg <= report.OldStyleAvg {
		fmt.Println(failStyle.Render("Benchmark regression: new-style posts no longer score higher"))
		return 1
	}
	fmt.Println(passStyle.Render("Benchmark healthy"))
	return 0
}

// setup loads config (creating a default file on first run) and builds the
// logger at the configured level.
func setup(configPath string) (*config.Config, *slog.Logger, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Server.LogLevel),
	}))
	return cfg, logger, nil
}

// loadTemplates resolves the task templates, applying the configured
// tasks.toml overrides when present.
func loadTemplates(cfg *config.Config) (*prompts.TaskTemplates, error) {
	if cfg.Prompts.TasksPath == "" {
		return prompts.DefaultTaskTemplates(), nil
	}
	return prompts.LoadTaskTemplates(cfg.Prompts.TasksPath)
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg = config.DefaultConfig()
			if saveErr := cfg.Save(path); saveErr != nil {
				return nil, fmt.Errorf("save default config: %w", saveErr)
			}
			fmt.Fprintf(os.Stderr, "No config found, default created at %s\n", path)
			return cfg, nil
		}
		return nil, err
	}
	return cfg, nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func printBanner(cfg *config.Config) {
	fmt.Println()
	fmt.Println("  " + titleStyle.Render("Alpha Copilot Social Agent v"+version))
	fmt.Println("  " + mutedStyle.Render("Options insights, posted on schedule"))
	fmt.Println()
	fmt.Printf("  Dry run: %v\n", cfg.Agent.DryRun)
	fmt.Printf("  Promo posts: %v\n", cfg.Agent.EnablePromo)
	fmt.Printf("  Backend: %s\n", cfg.Copilot.BaseURL)
	fmt.Printf("  Backend auth: %s\n", backendAuth(cfg))
	fmt.Printf("  LLM model: %s\n", cfg.LLM.Model)
	fmt.Printf("  Platforms: %s\n", platformSummary(cfg))
	fmt.Println()
}

func backendAuth(cfg *config.Config) string {
	switch {
	case cfg.ValidateSupabase():
		return "Supabase (" + cfg.Copilot.Supabase.Email + ")"
	case cfg.Copilot.APIKey != "":
		return "static API key"
	default:
		return "NOT CONFIGURED"
	}
}

func platformSummary(cfg *config.Config) string {
	enabled := cfg.EnabledPlatforms()
	if len(enabled) == 0 {
		return "none configured"
	}
	return strings.Join(enabled, ", ")
}
