package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/alphacopilot/social-agent/internal/config"
	"github.com/alphacopilot/social-agent/internal/retry"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// ServerError is a 5xx response from the Gemini API. Only these are retried;
// auth and validation failures surface immediately.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("gemini server error %d: %s", e.StatusCode, e.Message)
}

// IsServerError reports whether err is a retryable 5xx API error.
func IsServerError(err error) bool {
	var se *ServerError
	return errors.As(err, &se)
}

// GeminiClient calls the Gemini REST API.
type GeminiClient struct {
	baseURL         string
	apiKey          string
	model           string
	enableGrounding bool
	client          *http.Client
	logger          *slog.Logger
	policy          retry.Policy
}

type geminiRequest struct {
	Contents         []geminiContent   `json:"contents"`
	Tools            []geminiTool      `json:"tools,omitempty"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiTool struct {
	GoogleSearch *struct{} `json:"google_search,omitempty"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		GroundingMetadata *struct {
			GroundingChunks []struct {
				Web *struct {
					URI   string `json:"uri"`
					Title string `json:"title"`
				} `json:"web,omitempty"`
			} `json:"groundingChunks"`
			WebSearchQueries []string `json:"webSearchQueries"`
		} `json:"groundingMetadata,omitempty"`
	} `json:"candidates"`
}

type geminiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// NewGeminiClient creates a Gemini client from config. The API key must be
// present; call config.ValidateLLM first.
func NewGeminiClient(cfg config.LLMConfig, logger *slog.Logger) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: api key not configured")
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "llm")

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	if cfg.EnableGrounding {
		logger.Info("llm initialized with search grounding enabled", "model", cfg.Model)
	} else {
		logger.Info("llm initialized without grounding", "model", cfg.Model)
	}

	return &GeminiClient{
		baseURL:         baseURL,
		apiKey:          cfg.APIKey,
		model:           cfg.Model,
		enableGrounding: cfg.EnableGrounding,
		client:          &http.Client{Timeout: timeout},
		logger:          logger,
		policy:          retry.DefaultPolicy("gemini.generate", logger),
	}, nil
}

// Generate produces the next agent step for the given conversation and tool
// set. The raw completion is parsed for a tool call; parsing never fails, so
// the only errors here are transport and API errors.
func (c *GeminiClient) Generate(ctx context.Context, messages []Message, tools []ToolSchema) (*Response, error) {
	prompt := BuildPrompt(messages, tools)

	raw, err := retry.Do(ctx, c.policy, IsServerError, func() (*geminiResponse, error) {
		return c.generateContent(ctx, prompt, false)
	})
	if err != nil {
		return nil, err
	}

	resp := ParseResponse(candidateText(raw))
	resp.GroundingSources = groundingSources(raw)
	if len(resp.GroundingSources) > 0 {
		c.logger.Info("grounding sources used", "count", len(resp.GroundingSources))
	}
	return resp, nil
}

// GenerateText runs a plain completion without the tool convention. Used for
// market news research, where grounding is attached when enabled.
func (c *GeminiClient) GenerateText(ctx context.Context, prompt string) (string, []string, error) {
	raw, err := retry.Do(ctx, c.policy, IsServerError, func() (*geminiResponse, error) {
		return c.generateContent(ctx, prompt, c.enableGrounding)
	})
	if err != nil {
		return "", nil, err
	}
	return candidateText(raw), groundingSources(raw), nil
}

func (c *GeminiClient) generateContent(ctx context.Context, prompt string, grounded bool) (*geminiResponse, error) {
	body := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: &generationConfig{
			Temperature:     0.7,
			MaxOutputTokens: 1024,
		},
	}
	if grounded {
		body.Tools = []geminiTool{{GoogleSearch: &struct{}{}}}
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != 200 {
		var apiErr geminiError
		msg := string(respBody)
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
		if resp.StatusCode >= 500 {
			return nil, &ServerError{StatusCode: resp.StatusCode, Message: msg}
		}
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, msg)
	}

	var apiResp geminiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return &apiResp, nil
}

func candidateText(resp *geminiResponse) string {
	text := ""
	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			text += part.Text
		}
	}
	return text
}

func groundingSources(resp *geminiResponse) []string {
	var sources []string
	for _, cand := range resp.Candidates {
		md := cand.GroundingMetadata
		if md == nil {
			continue
		}
		for _, chunk := range md.GroundingChunks {
			if chunk.Web == nil || chunk.Web.URI == "" {
				continue
			}
			if chunk.Web.Title != "" {
				sources = append(sources, chunk.Web.Title+": "+chunk.Web.URI)
			} else {
				sources = append(sources, chunk.Web.URI)
			}
		}
	}
	return sources
}
