package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shiptrack-next/internal/config"
	"github.com/shiptrack-next/internal/http/response"
	"github.com/shiptrack-next/internal/service"

	"github.com/gin-gonic/gin"
)

const testJWTSecret = "router-test-secret-key-0123456789abcdef"

func newAuthedRouter(t *testing.T, secretKey string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/protected", JWTAuthMiddleware(secretKey), func(c *gin.Context) {
		response.Success(c, gin.H{"username": c.GetString("username")})
	})
	return engine
}

func issueTestToken(t *testing.T, secretKey, username string) string {
	t.Helper()
	cfg := &config.Config{}
	cfg.JWT.SecretKey = secretKey
	cfg.JWT.ExpireHours = 1
	token, _, err := service.NewAuthService(cfg).GenerateJWT(username)
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}
	return token
}

func doProtected(t *testing.T, engine *gin.Engine, authHeader string) *response.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, req)
	var resp response.Response
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	return &resp
}

func TestJWTAuthMiddleware(t *testing.T) {
	engine := newAuthedRouter(t, testJWTSecret)

	resp := doProtected(t, engine, "Bearer "+issueTestToken(t, testJWTSecret, "ops"))
	if resp.StatusCode != 0 {
		t.Fatalf("valid token rejected: %+v", resp)
	}
	data, ok := resp.Data.(map[string]interface{})
	if !ok || data["username"] != "ops" {
		t.Fatalf("expected username in context, got %+v", resp.Data)
	}

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not-a-token"},
		{"wrong key", "Bearer " + issueTestToken(t, "another-secret-key-0123456789abcdef", "ops")},
		{"empty username", "Bearer " + issueTestToken(t, testJWTSecret, "")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doProtected(t, engine, tc.header)
			if resp.StatusCode != response.CodeUnauthorized {
				t.Fatalf("expected %d, got %+v", response.CodeUnauthorized, resp)
			}
		})
	}

	t.Run("secret not configured", func(t *testing.T) {
		engine := newAuthedRouter(t, "")
		resp := doProtected(t, engine, "Bearer "+issueTestToken(t, testJWTSecret, "ops"))
		if resp.StatusCode != response.CodeUnauthorized {
			t.Fatalf("expected %d, got %+v", response.CodeUnauthorized, resp)
		}
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestIDMiddleware())
	engine.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"request_id": getRequestID(c)})
	})

	// 未携带请求 ID 时自动生成
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, req)
	if recorder.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected a generated request id header")
	}

	// 携带请求 ID 时原样透传
	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-123")
	recorder = httptest.NewRecorder()
	engine.ServeHTTP(recorder, req)
	if got := recorder.Header().Get(requestIDHeader); got != "req-123" {
		t.Fatalf("expected request id passthrough, got %q", got)
	}
}

func TestCORSMiddlewarePreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(CORSMiddleware(config.CORSConfig{
		AllowedOrigins: []string{"https://console.example.com"},
		MaxAge:         int((10 * time.Minute).Seconds()),
	}))
	engine.GET("/ping", func(c *gin.Context) {
		response.Success(c, nil)
	})

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://console.example.com")
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, req)
	if recorder.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", recorder.Code)
	}
	if got := recorder.Header().Get("Access-Control-Allow-Origin"); got != "https://console.example.com" {
		t.Fatalf("unexpected allow-origin: %q", got)
	}

	// 未放行的来源不回写 allow-origin
	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	recorder = httptest.NewRecorder()
	engine.ServeHTTP(recorder, req)
	if got := recorder.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("disallowed origin must not be echoed, got %q", got)
	}
}
