package copilot

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alphacopilot/social-agent/internal/config"
)

// makeJWT builds an unsigned-but-parseable JWT with the given expiry.
func makeJWT(t *testing.T, exp time.Time) string {
	t.Helper()
	enc := func(v any) string {
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatal(err)
		}
		return base64.RawURLEncoding.EncodeToString(data)
	}
	header := enc(map[string]string{"alg": "HS256", "typ": "JWT"})
	claims := enc(map[string]any{"exp": exp.Unix(), "sub": "user-1"})
	return header + "." + claims + ".sig"
}

func supabaseConfig(url string) config.SupabaseConfig {
	return config.SupabaseConfig{
		URL: url, AnonKey: "anon", Email: "bot@example.com", Password: "pw",
	}
}

func TestAccessTokenLogsInOnce(t *testing.T) {
	valid := ""
	logins := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/token" || r.URL.Query().Get("grant_type") != "password" {
			t.Errorf("unexpected request %s?%s", r.URL.Path, r.URL.RawQuery)
		}
		if r.Header.Get("apikey") != "anon" {
			t.Error("missing anon key header")
		}
		logins++
		json.NewEncoder(w).Encode(tokenResponse{AccessToken: valid, RefreshToken: "refresh-1"})
	}))
	defer srv.Close()
	valid = makeJWT(t, time.Now().Add(time.Hour))

	auth := NewSupabaseAuth(supabaseConfig(srv.URL), nil)

	for i := 0; i < 3; i++ {
		tok, err := auth.AccessToken(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if tok != valid {
			t.Errorf("unexpected token %q", tok)
		}
	}
	if logins != 1 {
		t.Errorf("expected 1 login, got %d", logins)
	}
}

func TestAccessTokenRefreshesExpired(t *testing.T) {
	expired := makeJWT(t, time.Now().Add(-time.Minute))
	fresh := makeJWT(t, time.Now().Add(time.Hour))

	var grants []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		grant := r.URL.Query().Get("grant_type")
		grants = append(grants, grant)
		switch grant {
		case "password":
			json.NewEncoder(w).Encode(tokenResponse{AccessToken: expired, RefreshToken: "refresh-1"})
		case "refresh_token":
			var body struct {
				RefreshToken string `json:"refresh_token"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			if body.RefreshToken != "refresh-1" {
				t.Errorf("unexpected refresh token %q", body.RefreshToken)
			}
			json.NewEncoder(w).Encode(tokenResponse{AccessToken: fresh, RefreshToken: "refresh-2"})
		}
	}))
	defer srv.Close()

	auth := NewSupabaseAuth(supabaseConfig(srv.URL), nil)

	if _, err := auth.AccessToken(context.Background()); err != nil {
		t.Fatal(err)
	}
	// Cached token is expired, so the next call must refresh.
	tok, err := auth.AccessToken(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if tok != fresh {
		t.Error("expected the refreshed token")
	}
	if len(grants) != 2 || grants[0] != "password" || grants[1] != "refresh_token" {
		t.Errorf("unexpected grant sequence %v", grants)
	}
}

func TestAccessTokenFallsBackToLoginWhenRefreshFails(t *testing.T) {
	expired := makeJWT(t, time.Now().Add(-time.Minute))
	fresh := makeJWT(t, time.Now().Add(time.Hour))

	firstLogin := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("grant_type") {
		case "password":
			if firstLogin {
				firstLogin = false
				json.NewEncoder(w).Encode(tokenResponse{AccessToken: expired, RefreshToken: "stale"})
				return
			}
			json.NewEncoder(w).Encode(tokenResponse{AccessToken: fresh})
		case "refresh_token":
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer srv.Close()

	auth := NewSupabaseAuth(supabaseConfig(srv.URL), nil)
	if _, err := auth.AccessToken(context.Background()); err != nil {
		t.Fatal(err)
	}
	tok, err := auth.AccessToken(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if tok != fresh {
		t.Error("expected fallback login to produce a fresh token")
	}
}

func TestLoginSurfacesCredentialError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error_description": "Invalid login credentials"})
	}))
	defer srv.Close()

	auth := NewSupabaseAuth(supabaseConfig(srv.URL), nil)
	_, err := auth.AccessToken(context.Background())
	if err == nil || !strings.Contains(err.Error(), "Invalid login credentials") {
		t.Errorf("expected credential error, got %v", err)
	}
}

func TestTokenExpired(t *testing.T) {
	if tokenExpired(makeJWT(t, time.Now().Add(time.Hour))) {
		t.Error("hour-valid token must not read as expired")
	}
	if !tokenExpired(makeJWT(t, time.Now().Add(-time.Minute))) {
		t.Error("past-expiry token must read as expired")
	}
	// Inside the leeway window counts as expired.
	if !tokenExpired(makeJWT(t, time.Now().Add(10*time.Second))) {
		t.Error("token expiring within leeway must read as expired")
	}
	if !tokenExpired("not-a-jwt") {
		t.Error("garbage must read as expired")
	}
}
