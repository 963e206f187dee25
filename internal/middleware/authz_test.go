package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/middleware"
)

const (
	testSecret = "test-secret"
	testIssuer = "superproductive"
)

var guard = middleware.AuthzConfig{Enabled: true, Secret: testSecret, Issuer: testIssuer}

func newGuardedRouter(config middleware.AuthzConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(middleware.AuthzMiddleware(config))
	router.POST("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"subject": middleware.TokenSubject(c)})
	})
	return router
}

func doRequest(router *gin.Engine, header string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("POST", "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthzMiddleware_Disabled(t *testing.T) {
	w := doRequest(newGuardedRouter(middleware.AuthzConfig{}), "")

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
}

func TestAuthzMiddleware_NoToken(t *testing.T) {
	w := doRequest(newGuardedRouter(guard), "")

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestAuthzMiddleware_WrongScheme(t *testing.T) {
	w := doRequest(newGuardedRouter(guard), "Basic abc")

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestAuthzMiddleware_InvalidToken(t *testing.T) {
	w := doRequest(newGuardedRouter(guard), "Bearer invalid_token")

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestAuthzMiddleware_ValidToken(t *testing.T) {
	token, err := middleware.IssueToken(testSecret, testIssuer, "cli", time.Hour)
	if err != nil {
		t.Fatal("Failed to create test token:", err)
	}

	w := doRequest(newGuardedRouter(guard), "Bearer "+token)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	if w.Body.String() != `{"subject":"cli"}` {
		t.Errorf("Expected subject cli, got %s", w.Body.String())
	}
}

func TestAuthzMiddleware_ExpiredToken(t *testing.T) {
	token, err := middleware.IssueToken(testSecret, testIssuer, "cli", -time.Minute)
	if err != nil {
		t.Fatal("Failed to create test token:", err)
	}

	w := doRequest(newGuardedRouter(guard), "Bearer "+token)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
	if !strings.Contains(w.Body.String(), "expired_token") {
		t.Errorf("Expected expired_token error, got %s", w.Body.String())
	}
}

func TestAuthzMiddleware_WrongIssuer(t *testing.T) {
	token, _ := middleware.IssueToken(testSecret, "someone-else", "cli", time.Hour)

	w := doRequest(newGuardedRouter(guard), "Bearer "+token)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestAuthzMiddleware_WrongSecret(t *testing.T) {
	token, _ := middleware.IssueToken("other-secret", testIssuer, "cli", time.Hour)

	w := doRequest(newGuardedRouter(guard), "Bearer "+token)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestAuthzMiddleware_NoExpiry(t *testing.T) {
	claims := jwt.RegisteredClaims{Issuer: testIssuer, Subject: "cli"}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))

	w := doRequest(newGuardedRouter(guard), "Bearer "+token)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestIssueToken_EmptySecret(t *testing.T) {
	if _, err := middleware.IssueToken("", testIssuer, "cli", time.Hour); err == nil {
		t.Error("Expected error for empty secret")
	}
}
