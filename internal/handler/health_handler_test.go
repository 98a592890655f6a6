package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestHealthHandler_Ping はpingレスポンスの形状を検証する。
func TestHealthHandler_Ping(t *testing.T) {
	h := NewHealthHandler(nil)

	w := httptest.NewRecorder()
	h.Ping(w, httptest.NewRequest(http.MethodGet, "/api/ping", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if resp["message"] != "Server is running" {
		t.Errorf("message = %q", resp["message"])
	}
	if _, err := time.Parse(time.RFC3339Nano, resp["timestamp"]); err != nil {
		t.Errorf("timestamp %q is not RFC3339: %v", resp["timestamp"], err)
	}
}

// TestHealthHandler_Health はDB疎通の有無でステータスが変わることを検証する。
func TestHealthHandler_Health(t *testing.T) {
	tests := []struct {
		name       string
		checker    HealthChecker
		wantStatus int
		wantBody   string
	}{
		{"疎通OK", &mockHealthChecker{}, http.StatusOK, "ok"},
		{"疎通NG", &mockHealthChecker{err: errors.New("db down")}, http.StatusServiceUnavailable, "unavailable"},
		{"checkerなし", nil, http.StatusOK, "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.checker)

			w := httptest.NewRecorder()
			h.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var resp map[string]string
			json.Unmarshal(w.Body.Bytes(), &resp)
			if resp["status"] != tt.wantBody {
				t.Errorf("status body = %q, want %q", resp["status"], tt.wantBody)
			}
		})
	}
}
