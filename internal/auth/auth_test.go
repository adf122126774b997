package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coreos/go-oidc"
	"github.com/stretchr/testify/assert"

	"workflow-app/backend/internal/config"
	"workflow-app/backend/pkg/models"
)

// NoOpLogger for testing
type NoOpLogger struct{}

func (l *NoOpLogger) Debug(msg string, args ...any) {}
func (l *NoOpLogger) Info(msg string, args ...any)  {}
func (l *NoOpLogger) Error(msg string, args ...any) {}

// MockKeySet satisfies oidc.KeySet to bypass signature verification
type MockKeySet struct{}

func (m *MockKeySet) VerifySignature(ctx context.Context, jwtToken string) ([]byte, error) {
	parts := strings.Split(jwtToken, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("malformed jwt")
	}
	return base64.RawURLEncoding.DecodeString(parts[1])
}

func TestRequireUser_BypassDefaults(t *testing.T) {
	cfg := &config.Config{}
	cfg.Auth.DevBypass = true

	a, err := New(context.Background(), cfg, &NoOpLogger{})
	assert.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/workflows", nil)
	rec := httptest.NewRecorder()

	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := UserFromContext(r.Context())
		assert.Equal(t, "user-001", user.ID)
		assert.Equal(t, "Taro Tanaka", user.Name)
		assert.Equal(t, "tanaka@example.com", user.Email)
		assert.Equal(t, "manager", user.Role)
		w.WriteHeader(http.StatusOK)
	})

	a.RequireUser(nextHandler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireUser_BypassHeaders(t *testing.T) {
	cfg := &config.Config{}
	cfg.Auth.DevBypass = true

	a, err := New(context.Background(), cfg, &NoOpLogger{})
	assert.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/workflows", nil)
	req.Header.Set(HeaderUserID, "user-042")
	req.Header.Set(HeaderUserName, "Hanako Suzuki")
	req.Header.Set(HeaderUserEmail, "suzuki@example.com")
	req.Header.Set(HeaderUserRole, "member")
	rec := httptest.NewRecorder()

	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := UserFromContext(r.Context())
		assert.Equal(t, "user-042", user.ID)
		assert.Equal(t, "Hanako Suzuki", user.Name)
		assert.Equal(t, "suzuki@example.com", user.Email)
		assert.Equal(t, "member", user.Role)
		w.WriteHeader(http.StatusOK)
	})

	a.RequireUser(nextHandler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireUser_BearerToken(t *testing.T) {
	issuer := "https://test-issuer.com"
	clientID := "test-client"

	claims := map[string]interface{}{
		"iss":   issuer,
		"aud":   clientID,
		"sub":   "test-user",
		"exp":   time.Now().Add(time.Hour).Unix(),
		"iat":   time.Now().Add(-1 * time.Minute).Unix(),
		"email": "user@example.com",
		"name":  "Test User",
	}
	headerData := map[string]interface{}{
		"alg": "RS256",
		"typ": "JWT",
		"kid": "test-key",
	}
	headerBytes, _ := json.Marshal(headerData)
	encodedHeader := base64.RawURLEncoding.EncodeToString(headerBytes)
	payload, _ := json.Marshal(claims)
	encodedPayload := base64.RawURLEncoding.EncodeToString(payload)
	encodedSignature := base64.RawURLEncoding.EncodeToString([]byte("fakesignature"))
	fakeToken := encodedHeader + "." + encodedPayload + "." + encodedSignature

	verifier := oidc.NewVerifier(issuer, &MockKeySet{}, &oidc.Config{
		ClientID:          clientID,
		SkipClientIDCheck: true, // Matches logic in auth.go for apiVerifier
	})

	a := &Auth{
		apiVerifier: verifier,
		logger:      &NoOpLogger{},
	}

	req := httptest.NewRequest("GET", "/api/workflows", nil)
	req.Header.Set("Authorization", "Bearer "+fakeToken)
	rec := httptest.NewRecorder()

	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := UserFromContext(r.Context())
		assert.Equal(t, "test-user", user.ID)
		assert.Equal(t, "user@example.com", user.Email)
		assert.Equal(t, "Test User", user.Name)
		w.WriteHeader(http.StatusOK)
	})

	a.RequireUser(nextHandler).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Logf("Response Body: %s", rec.Body.String())
	}
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireUser_MissingCredentialsRedirects(t *testing.T) {
	issuer := "https://test-issuer.com"
	verifier := oidc.NewVerifier(issuer, &MockKeySet{}, &oidc.Config{SkipClientIDCheck: true})

	a := &Auth{
		verifier:    verifier,
		apiVerifier: verifier,
		logger:      &NoOpLogger{},
	}

	req := httptest.NewRequest("GET", "/api/workflows", nil)
	rec := httptest.NewRecorder()

	a.RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run without credentials")
	})).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestUserFromContext_ZeroValue(t *testing.T) {
	user := UserFromContext(context.Background())
	assert.Equal(t, models.User{}, user)
}
