package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hitoshi/bloglist/internal/blog"
	"github.com/hitoshi/bloglist/internal/config"
	"github.com/hitoshi/bloglist/internal/database"
	"github.com/hitoshi/bloglist/internal/events"
	"github.com/hitoshi/bloglist/internal/handler"
	"github.com/hitoshi/bloglist/internal/logger"
	"github.com/hitoshi/bloglist/internal/metrics"
	"github.com/hitoshi/bloglist/internal/middleware"
	"github.com/hitoshi/bloglist/internal/repository"
	"github.com/hitoshi/bloglist/internal/security"
	"github.com/hitoshi/bloglist/internal/user"
)

// dbPingTimeout は起動時のDB疎通確認に許容する時間。
const dbPingTimeout = 5 * time.Second

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. ログレベルの反映
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		slog.Warn("unknown LOG_LEVEL, falling back to info", slog.String("log_level", cfg.LogLevel))
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port, err := config.LoadServerPort()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg, migrateDirection(args))
	case CommandSeed:
		return runSeed(cfg)
	default:
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runServe(ctx, cfg)
	}
}

// openDatabase はコネクションプール付きでDBを開き、疎通を確認する。
func openDatabase(ctx context.Context, databaseURL string) (*sqlx.DB, error) {
	db, err := database.Open(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return sqlx.NewDb(db, "postgres"), nil
}

// newPublisher はRABBITMQ_URLが設定されていればRabbitMQ、なければ何もしないPublisherを返す。
// 返されるclose関数は常に呼び出してよい。
func newPublisher(cfg *config.Config) (events.Publisher, func(), error) {
	if !cfg.EventsEnabled() {
		slog.Info("domain events disabled (RABBITMQ_URL is not set)")
		return events.NoopPublisher{}, func() {}, nil
	}

	pub, err := events.NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.RabbitMQQueue)
	if err != nil {
		return nil, nil, err
	}
	return pub, func() {
		if err := pub.Close(); err != nil {
			slog.Warn("failed to close RabbitMQ publisher", slog.String("error", err.Error()))
		}
	}, nil
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// ctxがキャンセルされるとグレースフルシャットダウンを行う。
func runServe(ctx context.Context, cfg *config.Config) error {
	// 1. DB接続
	db, err := openDatabase(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	slog.Info("database connection established")

	// 2. マイグレーション
	if cfg.AutoMigrate {
		if err := runMigrate(cfg, "up"); err != nil {
			return err
		}
	}

	// 3. リポジトリの初期化
	userRepo := repository.NewPostgresUserRepo(db)
	blogRepo := repository.NewPostgresBlogRepo(db)

	// 4. セキュリティ・メトリクス・イベントの初期化
	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	feedSanitizer := security.NewFeedHTMLSanitizer()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	publisher, closePublisher, err := newPublisher(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize event publisher: %w", err)
	}
	defer closePublisher()

	// 5. ドメインサービスの初期化
	userService := user.NewService(userRepo, hasher, publisher, collector)
	blogService := blog.NewService(userRepo, blogRepo, publisher, collector)

	// 6. ルーターの構築
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfigPerMinute(cfg.RateLimitWrite))
	defer rateLimiter.Stop()

	router := handler.NewRouter(&handler.RouterDeps{
		Logger:            slog.Default(),
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		RequestRecorder:   collector,

		HealthChecker:   db,
		MetricsGatherer: registry,

		UserService:   userService,
		UserLister:    blogService,
		BlogService:   blogService,
		FeedSanitizer: feedSanitizer,
	})

	// 7. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// directionが"down"の場合は1ステップ戻し、それ以外は未適用分をすべて適用する。
func runMigrate(cfg *config.Config, direction string) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
		slog.String("direction", direction),
	)

	if direction == "down" {
		if err := database.RollbackMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("migration rollback failed: %w", err)
		}
		slog.Info("database migration rolled back one step")
		return nil
	}

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runSeed はサンプルユーザーとサンプルブログを投入する。
// 既にユーザーが存在する場合は何もしない。
func runSeed(cfg *config.Config) error {
	ctx := context.Background()

	db, err := openDatabase(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := runMigrate(cfg, "up"); err != nil {
		return err
	}

	hash, err := security.NewBcryptHasher(cfg.BcryptCost).Hash(database.SeedPassword)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	result, err := database.Seed(ctx, db.DB, hash)
	if err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}

	slog.Info("seed finished",
		slog.Bool("skipped", result.Skipped),
		slog.Int("users_created", result.UsersCreated),
		slog.Int("blogs_created", result.BlogsCreated),
	)
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLのパスワードをマスクする。
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	return u.Redacted()
}
