package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/portkey-logistics/portkey/internal/config"
)

const testSecret = "super-secret-jwt-key"

func signToken(t *testing.T, secret, sub string, exp time.Time) string {
	t.Helper()
	claims := &Claims{
		Email: sub + "@example.com",
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(exp.Add(-time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

// fakeAuthServer mimics the two GoTrue endpoints the client uses.
type fakeAuthServer struct {
	*httptest.Server

	mu            sync.Mutex
	validTokens   map[string]string
	refreshTokens map[string]string
	userCalls     int
	refreshCalls  int
	fail          bool
}

func newFakeAuthServer(t *testing.T) *fakeAuthServer {
	t.Helper()
	f := &fakeAuthServer{
		validTokens:   map[string]string{},
		refreshTokens: map[string]string{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/v1/user", f.handleUser)
	mux.HandleFunc("/auth/v1/token", f.handleToken)
	mux.HandleFunc("/auth/v1/logout", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func (f *fakeAuthServer) handleUser(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userCalls++
	if f.fail {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	if r.Header.Get("apikey") != "anon-key" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	token := r.Header.Get("Authorization")
	if len(token) > len("Bearer ") {
		token = token[len("Bearer "):]
	}
	userID, ok := f.validTokens[token]
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"msg":"invalid JWT"}`))
		return
	}
	writeJSON(w, map[string]any{
		"id":            userID,
		"email":         userID + "@example.com",
		"role":          "authenticated",
		"user_metadata": map[string]any{"full_name": "Test " + userID},
	})
}

func (f *fakeAuthServer) handleToken(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshCalls++
	if r.URL.Query().Get("grant_type") != "refresh_token" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	userID, ok := f.refreshTokens[body.RefreshToken]
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid Refresh Token"}`))
		return
	}
	delete(f.refreshTokens, body.RefreshToken)
	writeJSON(w, map[string]any{
		"access_token":  "rotated-access",
		"refresh_token": "rotated-refresh",
		"token_type":    "bearer",
		"expires_in":    3600,
		"user":          map[string]any{"id": userID, "email": userID + "@example.com"},
	})
}

func (f *fakeAuthServer) counts() (user, refresh int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.userCalls, f.refreshCalls
}

func (f *fakeAuthServer) setFail(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func testSupabaseConfig(url string) config.SupabaseConfig {
	return config.SupabaseConfig{
		URL:                  url,
		AnonKey:              "anon-key",
		JWTSecret:            testSecret,
		TimeoutSeconds:       2,
		RefreshWindowSeconds: 60,
		AccessCookie:         "sb-access-token",
		RefreshCookie:        "sb-refresh-token",
		CookiePath:           "/",
		CookieSecure:         true,
		CookieSameSite:       "Lax",
		RefreshCookieMaxAge:  3600,
	}
}
