package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newAuthRouter(cfg *AuthConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(BearerAuth(cfg))
	ok := func(c *gin.Context) { c.String(http.StatusOK, "ok") }
	r.GET("/healthz", ok)
	r.POST("/v1/chat", ok)
	return r
}

func doRequest(router *gin.Engine, method, path, remoteAddr, authHeader string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = remoteAddr
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestBearerAuth(t *testing.T) {
	router := newAuthRouter(&AuthConfig{Enabled: true, Token: "sekrit"})

	tests := []struct {
		name       string
		path       string
		remoteAddr string
		header     string
		wantStatus int
	}{
		{"valid token", "/v1/chat", "10.1.2.3:4444", "Bearer sekrit", http.StatusOK},
		{"wrong token", "/v1/chat", "10.1.2.3:4444", "Bearer nope", http.StatusUnauthorized},
		{"missing header", "/v1/chat", "10.1.2.3:4444", "", http.StatusUnauthorized},
		{"bad scheme", "/v1/chat", "10.1.2.3:4444", "Basic sekrit", http.StatusUnauthorized},
		{"loopback bypass", "/v1/chat", "127.0.0.1:5555", "", http.StatusOK},
		{"healthz whitelisted", "/healthz", "10.1.2.3:4444", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := http.MethodPost
			if tt.path == "/healthz" {
				method = http.MethodGet
			}
			w := doRequest(router, method, tt.path, tt.remoteAddr, tt.header)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestBearerAuthDisabled(t *testing.T) {
	router := newAuthRouter(&AuthConfig{Enabled: false, Token: "sekrit"})
	w := doRequest(router, http.MethodPost, "/v1/chat", "10.1.2.3:4444", "")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 when auth disabled", w.Code)
	}
}

func TestBearerAuthNoTokenConfigured(t *testing.T) {
	router := newAuthRouter(&AuthConfig{Enabled: true})
	w := doRequest(router, http.MethodPost, "/v1/chat", "10.1.2.3:4444", "")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 when no token is configured", w.Code)
	}
}

func TestResolveTokenEnvFallback(t *testing.T) {
	t.Setenv("GITSEER_GATEWAY_TOKEN", "from-env")

	cfg := &AuthConfig{}
	if got := cfg.ResolveToken(); got != "from-env" {
		t.Errorf("ResolveToken = %q", got)
	}

	cfg.Token = "explicit"
	if got := cfg.ResolveToken(); got != "explicit" {
		t.Errorf("ResolveToken = %q, explicit token must win", got)
	}
}
