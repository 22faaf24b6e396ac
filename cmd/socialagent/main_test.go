package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/alphacopilot/social-agent/internal/config"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"unknown": slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoadConfigCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "socialagent.json")

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Agent.MaxIterations != 10 {
		t.Errorf("default config wrong: %+v", cfg.Agent)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("default config file not written: %v", err)
	}

	// Second load reads the file back instead of recreating it.
	again, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if again.Eval.TotalMin != cfg.Eval.TotalMin {
		t.Errorf("reloaded config differs: %+v", again.Eval)
	}
}

func TestBackendAuth(t *testing.T) {
	cfg := config.DefaultConfig()
	if got := backendAuth(cfg); got != "NOT CONFIGURED" {
		t.Errorf("no credentials: %q", got)
	}

	cfg.Copilot.APIKey = "key"
	if got := backendAuth(cfg); got != "static API key" {
		t.Errorf("api key: %q", got)
	}

	cfg.Copilot.Supabase = config.SupabaseConfig{
		URL: "https://x.supabase.co", AnonKey: "anon",
		Email: "agent@example.com", Password: "pw",
	}
	if got := backendAuth(cfg); got != "Supabase (agent@example.com)" {
		t.Errorf("supabase wins over api key: %q", got)
	}
}

func TestPlatformSummary(t *testing.T) {
	cfg := config.DefaultConfig()
	if got := platformSummary(cfg); got != "none configured" {
		t.Errorf("empty: %q", got)
	}

	cfg.Twitter = config.TwitterConfig{
		APIKey: "k", APISecret: "s", AccessToken: "t", AccessSecret: "ts",
	}
	cfg.Threads = config.ThreadsConfig{AccessToken: "t", UserID: "u"}
	if got := platformSummary(cfg); got != "twitter, threads" {
		t.Errorf("both: %q", got)
	}
}

func TestLoadTemplates(t *testing.T) {
	cfg := config.DefaultConfig()

	templates, err := loadTemplates(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Contains(templates.Types(), "morning") {
		t.Errorf("built-in types missing: %v", templates.Types())
	}

	path := filepath.Join(t.TempDir(), "tasks.toml")
	override := `weekend = "Create a weekend market recap post. Cross-post to Twitter and Threads."`
	if err := os.WriteFile(path, []byte(override), 0640); err != nil {
		t.Fatal(err)
	}
	cfg.Prompts.TasksPath = path

	templates, err = loadTemplates(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Contains(templates.Types(), "weekend") {
		t.Errorf("override type missing: %v", templates.Types())
	}

	cfg.Prompts.TasksPath = filepath.Join(t.TempDir(), "missing.toml")
	if _, err := loadTemplates(cfg); err == nil {
		t.Error("missing override file must error")
	}
}
