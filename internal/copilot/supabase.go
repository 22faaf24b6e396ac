package copilot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/alphacopilot/social-agent/internal/config"
)

// expiryLeeway is how early a token is treated as expired, covering clock
// skew and in-flight request time.
const expiryLeeway = 30 * time.Second

// SupabaseAuth obtains backend JWTs via the same email/password flow the web
// frontend uses. Tokens are cached and refreshed when close to expiry.
// Safe for concurrent use.
type SupabaseAuth struct {
	url     string
	anonKey string
	email   string
	pass    string
	client  *http.Client
	logger  *slog.Logger

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

// NewSupabaseAuth creates the auth client. Gate on config.ValidateSupabase.
func NewSupabaseAuth(cfg config.SupabaseConfig, logger *slog.Logger) *SupabaseAuth {
	if logger == nil {
		logger = slog.Default()
	}
	return &SupabaseAuth{
		url:     cfg.URL,
		anonKey: cfg.AnonKey,
		email:   cfg.Email,
		pass:    cfg.Password,
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  logger.With("component", "copilot.auth"),
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AccessToken returns a valid access token, logging in or refreshing as
// needed.
func (s *SupabaseAuth) AccessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accessToken != "" && !tokenExpired(s.accessToken) {
		return s.accessToken, nil
	}

	if s.refreshToken != "" {
		if err := s.refreshLocked(ctx); err == nil {
			return s.accessToken, nil
		}
		s.logger.Warn("token refresh failed, attempting full login")
	}

	if err := s.loginLocked(ctx); err != nil {
		return "", err
	}
	return s.accessToken, nil
}

// ClearTokens drops cached tokens, forcing re-auth on the next call.
func (s *SupabaseAuth) ClearTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = ""
	s.refreshToken = ""
}

func (s *SupabaseAuth) loginLocked(ctx context.Context) error {
	body := map[string]string{"email": s.email, "password": s.pass}
	tok, err := s.tokenRequest(ctx, "password", body)
	if err != nil {
		return fmt.Errorf("supabase login: %w", err)
	}
	s.accessToken = tok.AccessToken
	s.refreshToken = tok.RefreshToken
	s.logger.Info("supabase login successful")
	return nil
}

func (s *SupabaseAuth) refreshLocked(ctx context.Context) error {
	body := map[string]string{"refresh_token": s.refreshToken}
	tok, err := s.tokenRequest(ctx, "refresh_token", body)
	if err != nil {
		return err
	}
	s.accessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		s.refreshToken = tok.RefreshToken
	}
	s.logger.Info("supabase token refreshed")
	return nil
}

func (s *SupabaseAuth) tokenRequest(ctx context.Context, grantType string, body map[string]string) (*tokenResponse, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/auth/v1/token?grant_type=%s", s.url, grantType)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("apikey", s.anonKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch resp.StatusCode {
	case 200:
	case 400:
		var apiErr struct {
			ErrorDescription string `json:"error_description"`
		}
		msg := "invalid credentials"
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.ErrorDescription != "" {
			msg = apiErr.ErrorDescription
		}
		return nil, fmt.Errorf("invalid credentials: %s", msg)
	case 422:
		return nil, fmt.Errorf("invalid email format")
	default:
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	var tok tokenResponse
	if err := json.Unmarshal(respBody, &tok); err != nil {
		return nil, fmt.Errorf("unmarshal token: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("no access token in response")
	}
	return &tok, nil
}

// tokenExpired decodes the JWT's exp claim without verifying the signature;
// verification is Supabase's job, this only decides whether to re-auth.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return time.Now().Add(expiryLeeway).After(exp.Time)
}
