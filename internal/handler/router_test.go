package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/hitoshi/bloglist/internal/metrics"
	"github.com/hitoshi/bloglist/internal/middleware"
	"github.com/hitoshi/bloglist/internal/model"
)

// newTestRouterDeps はモックで構成したRouterDepsを返す。
func newTestRouterDeps() *RouterDeps {
	blogSvc := &mockBlogService{
		createBlogFn: func(ctx context.Context, in model.CreateBlogInput) (*model.Blog, error) {
			return &model.Blog{ID: "b1", Title: in.Title, Author: in.Author, UserID: in.UserID}, nil
		},
		listBlogsFn: func(ctx context.Context) ([]model.BlogWithUser, error) {
			return []model.BlogWithUser{}, nil
		},
		listUsersFn: func(ctx context.Context) ([]model.UserWithBlogs, error) {
			return []model.UserWithBlogs{}, nil
		},
	}
	userSvc := &mockUserService{
		createUserFn: func(ctx context.Context, in model.CreateUserInput) (*model.User, error) {
			return &model.User{ID: "u1", Username: in.Username, Name: in.Name}, nil
		},
	}
	return &RouterDeps{
		CORSAllowedOrigin: "*",
		HealthChecker:     &mockHealthChecker{},
		UserService:       userSvc,
		UserLister:        blogSvc,
		BlogService:       blogSvc,
	}
}

// TestNewRouter_Routes は公開エンドポイントがルーティングされることを検証する。
func TestNewRouter_Routes(t *testing.T) {
	router := NewRouter(newTestRouterDeps())

	tests := []struct {
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodGet, "/api/ping", "", http.StatusOK},
		{http.MethodGet, "/api/users", "", http.StatusOK},
		{http.MethodPost, "/api/users", `{"username":"a","name":"b","password":"c"}`, http.StatusCreated},
		{http.MethodGet, "/api/blogs", "", http.StatusOK},
		{http.MethodPost, "/api/blogs", `{"title":"t","author":"a","userId":"u1"}`, http.StatusCreated},
		{http.MethodGet, "/api/blogs/feed.xml", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body=%s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

// TestNewRouter_NotFound は未定義パスにJSONの404を返すことを検証する。
func TestNewRouter_NotFound(t *testing.T) {
	router := NewRouter(newTestRouterDeps())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/unknown", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if resp["error"] == "" {
		t.Error("error message should not be empty")
	}
}

// TestNewRouter_RateLimitAppliesToWritesOnly は書き込みのみレート制限されることを検証する。
func TestNewRouter_RateLimitAppliesToWritesOnly(t *testing.T) {
	rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		WriteRate:       rate.Every(time.Hour),
		WriteBurst:      1,
		CleanupInterval: time.Hour,
	})
	defer rl.Stop()

	deps := newTestRouterDeps()
	deps.RateLimiter = rl
	router := NewRouter(deps)

	post := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(`{"username":"a","name":"b","password":"c"}`))
		req.RemoteAddr = "192.0.2.10:4000"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	if code := post(); code != http.StatusCreated {
		t.Fatalf("first POST status = %d, want %d", code, http.StatusCreated)
	}
	if code := post(); code != http.StatusTooManyRequests {
		t.Fatalf("second POST status = %d, want %d", code, http.StatusTooManyRequests)
	}

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		req.RemoteAddr = "192.0.2.10:4000"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("GET #%d status = %d, want %d", i, w.Code, http.StatusOK)
		}
	}
}

func TestNewRouter_CORSPreflight(t *testing.T) {
	router := NewRouter(newTestRouterDeps())

	req := httptest.NewRequest(http.MethodOptions, "/api/blogs", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

// TestNewRouter_Metrics は/metricsがリクエスト数と作成数を公開することを検証する。
func TestNewRouter_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	deps := newTestRouterDeps()
	deps.RequestRecorder = collector
	deps.MetricsGatherer = reg
	router := NewRouter(deps)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	collector.RecordUserCreated()

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	body := w.Body.String()
	for _, name := range []string{
		"bloglist_http_requests_total",
		"bloglist_http_request_duration_seconds",
		"bloglist_users_created_total 1",
	} {
		if !strings.Contains(body, name) {
			t.Errorf("metrics output missing %q", name)
		}
	}
}

func TestNewRouter_NoMetricsRouteWithoutGatherer(t *testing.T) {
	router := NewRouter(newTestRouterDeps())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
