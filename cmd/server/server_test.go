package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/martinsuchenak/merakilife/internal/api"
	"github.com/martinsuchenak/merakilife/internal/config"
	"github.com/martinsuchenak/merakilife/internal/mcp"
	"github.com/martinsuchenak/merakilife/internal/report"
)

func testServerConfig(apiToken string) *ServerConfig {
	service := &report.Service{}
	return &ServerConfig{
		Config:     &config.Config{APIAuthToken: apiToken},
		MCPServer:  mcp.NewServer(service, "", "test"),
		APIHandler: api.NewHandler(service, "test"),
	}
}

func TestNewHandler(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		path       string
		auth       string
		wantStatus int
	}{
		{"Health without auth", "", "/api/health", "", http.StatusOK},
		{"Health stays open with auth", "secret", "/api/health", "", http.StatusOK},
		{"API requires token", "secret", "/api/organizations", "", http.StatusUnauthorized},
		{"Unknown route", "", "/nope", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHandler(testServerConfig(tt.token))

			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if w.Header().Get("X-Content-Type-Options") != "nosniff" {
				t.Error("Expected security headers on every response")
			}
		})
	}
}
