// Package config loads and validates the social agent configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds all social agent configuration. It is loaded once at startup
// and treated as immutable afterwards; tests construct fresh values instead
// of mutating shared state.
type Config struct {
	// Server settings
	Server ServerConfig `json:"server"`

	// LLM provider settings
	LLM LLMConfig `json:"llm"`

	// Agent loop settings
	Agent AgentConfig `json:"agent"`

	// Post evaluation thresholds
	Eval EvalConfig `json:"eval"`

	// Alpha Copilot backend API
	Copilot CopilotConfig `json:"copilot"`

	// Social platform credentials
	Twitter TwitterConfig `json:"twitter"`
	Threads ThreadsConfig `json:"threads"`

	// Post history store
	Store StoreConfig `json:"store"`

	// Scheduler configuration
	Scheduler SchedulerConfig `json:"scheduler,omitempty"`

	// Prompt template overrides
	Prompts PromptsConfig `json:"prompts,omitempty"`
}

// PromptsConfig points at optional operator-editable prompt files.
type PromptsConfig struct {
	// TasksPath is a TOML file of postType = "prompt" pairs overriding the
	// built-in task templates.
	TasksPath string `json:"tasksPath,omitempty"`
}

type ServerConfig struct {
	DataDir  string `json:"dataDir"`
	LogLevel string `json:"logLevel"`
}

type LLMConfig struct {
	APIKey          string `json:"apiKey"`
	Model           string `json:"model"`
	BaseURL         string `json:"baseUrl,omitempty"`
	TimeoutSeconds  int    `json:"timeoutSeconds"`
	EnableGrounding bool   `json:"enableGrounding"`
}

type AgentConfig struct {
	MaxIterations int  `json:"maxIterations"`
	DryRun        bool `json:"dryRun"`
	EnablePromo   bool `json:"enablePromo"`
}

// EvalConfig holds the publication gate thresholds. Mode selects which
// minimums apply: "hookiness", "quality", or "both". The total minimum
// always applies.
type EvalConfig struct {
	HookinessMin int    `json:"hookinessMin"`
	QualityMin   int    `json:"qualityMin"`
	TotalMin     int    `json:"totalMin"`
	Mode         string `json:"mode"`
}

type CopilotConfig struct {
	BaseURL  string         `json:"baseUrl"`
	APIKey   string         `json:"apiKey,omitempty"`
	PromoURL string         `json:"promoUrl,omitempty"`
	Supabase SupabaseConfig `json:"supabase,omitempty"`
}

// SupabaseConfig holds email/password credentials for the same auth flow the
// web frontend uses. Used when no static API key is configured.
type SupabaseConfig struct {
	URL      string `json:"url"`
	AnonKey  string `json:"anonKey"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TwitterConfig struct {
	APIKey       string `json:"apiKey"`
	APISecret    string `json:"apiSecret"`
	AccessToken  string `json:"accessToken"`
	AccessSecret string `json:"accessSecret"`
}

type ThreadsConfig struct {
	AccessToken string `json:"accessToken"`
	UserID      string `json:"userId"`
}

type StoreConfig struct {
	Path string `json:"path"`
}

// SchedulerConfig holds scheduler configuration
type SchedulerConfig struct {
	Enabled bool        `json:"enabled"`
	Jobs    []JobConfig `json:"jobs"`
}

// JobConfig defines a scheduled posting job
type JobConfig struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Schedule ScheduleConfig `json:"schedule"`
	PostType string         `json:"postType"`
	Platform string         `json:"platform,omitempty"`
	Sector   string         `json:"sector,omitempty"`
	Enabled  bool           `json:"enabled"`
}

// ScheduleConfig defines when a job runs
type ScheduleConfig struct {
	Kind       string `json:"kind"` // "interval", "cron", "at"
	IntervalMs int64  `json:"intervalMs,omitempty"`
	Expr       string `json:"expr,omitempty"` // cron expression
	Time       string `json:"time,omitempty"` // "HH:MM" for daily
	Timezone   string `json:"timezone,omitempty"`
}

// EvalMode values accepted by EvalConfig.Mode.
const (
	EvalModeHookiness = "hookiness"
	EvalModeQuality   = "quality"
	EvalModeBoth      = "both"
)

// DefaultConfig returns a sensible default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			DataDir:  "./data",
			LogLevel: "info",
		},
		LLM: LLMConfig{
			APIKey:          "${GEMINI_API_KEY}",
			Model:           "gemini-3-flash-preview",
			TimeoutSeconds:  60,
			EnableGrounding: true,
		},
		Agent: AgentConfig{
			MaxIterations: 10,
			DryRun:        true,
			EnablePromo:   true,
		},
		Eval: EvalConfig{
			HookinessMin: 15, // 15/25 = 60%
			QualityMin:   30, // 30/50 = 60%
			TotalMin:     45, // 45/75 = 60%
			Mode:         EvalModeBoth,
		},
		Copilot: CopilotConfig{
			BaseURL:  "http://localhost:8002",
			PromoURL: "https://alphacopilot.ai",
		},
		Store: StoreConfig{
			Path: "./data/posts.db",
		},
	}
}

// Load reads config from a JSON file. Values of the form ${VAR} are expanded
// from the environment after parsing, so secrets stay out of the file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.expandEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Ensure data directory exists
	if err := os.MkdirAll(cfg.Server.DataDir, 0750); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	return cfg, nil
}

// Save writes config to a JSON file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0640)
}

// Validate checks values the agent loop and evaluator depend on.
func (c *Config) Validate() error {
	if c.Agent.MaxIterations < 1 {
		return fmt.Errorf("config: maxIterations must be >= 1, got %d", c.Agent.MaxIterations)
	}
	switch c.Eval.Mode {
	case EvalModeHookiness, EvalModeQuality, EvalModeBoth:
	default:
		return fmt.Errorf("config: unknown eval mode %q (use hookiness, quality, or both)", c.Eval.Mode)
	}
	if c.Eval.HookinessMin < 0 || c.Eval.HookinessMin > 25 {
		return fmt.Errorf("config: hookinessMin out of range [0,25]: %d", c.Eval.HookinessMin)
	}
	if c.Eval.QualityMin < 0 || c.Eval.QualityMin > 50 {
		return fmt.Errorf("config: qualityMin out of range [0,50]: %d", c.Eval.QualityMin)
	}
	if c.Eval.TotalMin < 0 || c.Eval.TotalMin > 75 {
		return fmt.Errorf("config: totalMin out of range [0,75]: %d", c.Eval.TotalMin)
	}
	return nil
}

// expandEnv resolves ${VAR} placeholders in credential fields.
func (c *Config) expandEnv() {
	fields := []*string{
		&c.LLM.APIKey,
		&c.Copilot.APIKey,
		&c.Copilot.Supabase.URL,
		&c.Copilot.Supabase.AnonKey,
		&c.Copilot.Supabase.Email,
		&c.Copilot.Supabase.Password,
		&c.Twitter.APIKey,
		&c.Twitter.APISecret,
		&c.Twitter.AccessToken,
		&c.Twitter.AccessSecret,
		&c.Threads.AccessToken,
		&c.Threads.UserID,
	}
	for _, f := range fields {
		*f = os.Expand(*f, func(key string) string {
			return os.Getenv(key)
		})
	}
}

// ValidateLLM reports whether the LLM credentials are configured.
func (c *Config) ValidateLLM() bool {
	return c.LLM.APIKey != ""
}

// ValidateCopilot reports whether backend credentials are configured, either
// a static API key or the full Supabase login.
func (c *Config) ValidateCopilot() bool {
	return c.Copilot.APIKey != "" || c.ValidateSupabase()
}

// ValidateSupabase reports whether all Supabase credentials are set.
func (c *Config) ValidateSupabase() bool {
	s := c.Copilot.Supabase
	return s.URL != "" && s.AnonKey != "" && s.Email != "" && s.Password != ""
}

// ValidateTwitter reports whether all Twitter credentials are set.
func (c *Config) ValidateTwitter() bool {
	t := c.Twitter
	return t.APIKey != "" && t.APISecret != "" && t.AccessToken != "" && t.AccessSecret != ""
}

// ValidateThreads reports whether Threads credentials are set.
func (c *Config) ValidateThreads() bool {
	return c.Threads.AccessToken != "" && c.Threads.UserID != ""
}

// EnabledPlatforms returns the platforms with valid credentials.
func (c *Config) EnabledPlatforms() []string {
	var platforms []string
	if c.ValidateTwitter() {
		platforms = append(platforms, "twitter")
	}
	if c.ValidateThreads() {
		platforms = append(platforms, "threads")
	}
	return platforms
}
