package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/bloglist/internal/metrics"
	"github.com/hitoshi/bloglist/internal/middleware"
	"github.com/hitoshi/bloglist/internal/security"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	RequestRecorder   middleware.RequestRecorder

	// 監視
	HealthChecker   HealthChecker
	MetricsGatherer prometheus.Gatherer

	// ユーザー
	UserService UserServiceInterface
	UserLister  UserListerInterface

	// ブログ
	BlogService   BlogServiceInterface
	FeedSanitizer security.FeedHTMLSanitizer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → RealIP → Logging → Metrics → SecurityHeaders → CORS
//
// 書き込み（POST）ルートにのみクライアントIP単位のレート制限を適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(chimw.RealIP)
	r.Use(middleware.NewLoggingMiddleware(logger))
	if deps.RequestRecorder != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.RequestRecorder))
	}
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
	})

	writeLimit := func(next http.Handler) http.Handler { return next }
	if deps.RateLimiter != nil {
		writeLimit = deps.RateLimiter.WriteMiddleware()
	}

	healthHandler := NewHealthHandler(deps.HealthChecker)
	userHandler := NewUserHandler(deps.UserService, deps.UserLister)
	blogHandler := NewBlogHandler(deps.BlogService)
	feedHandler := NewFeedHandler(deps.BlogService, deps.FeedSanitizer)

	// --- 監視 ---
	r.Get("/health", healthHandler.Health)
	if deps.MetricsGatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	// --- API ---
	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", healthHandler.Ping)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", userHandler.ListUsers)
			r.With(writeLimit).Post("/", userHandler.CreateUser)
		})

		r.Route("/blogs", func(r chi.Router) {
			r.Get("/", blogHandler.ListBlogs)
			r.Get("/feed.xml", feedHandler.BlogsFeed)
			r.With(writeLimit).Post("/", blogHandler.CreateBlog)
		})
	})

	return r
}
