package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// healthCheckTimeout はDB疎通確認に許容する時間。
const healthCheckTimeout = 2 * time.Second

// HealthChecker は依存先の疎通確認インターフェース。*sql.DBが満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// HealthHandler は死活監視用のHTTPハンドラー。
type HealthHandler struct {
	checker HealthChecker
	now     func() time.Time
}

// NewHealthHandler はHealthHandlerを生成する。checkerがnilの場合はDB確認を省略する。
func NewHealthHandler(checker HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker, now: time.Now}
}

type pingResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type healthResponse struct {
	Status string `json:"status"`
}

// Ping はサーバーの稼働を返す。DBには触れない。
// GET /api/ping
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, pingResponse{
		Message:   "Server is running",
		Timestamp: h.now().UTC().Format(time.RFC3339Nano),
	})
}

// Health はDB疎通を含む稼働状態を返す。疎通できない場合は503。
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.checker != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		if err := h.checker.PingContext(ctx); err != nil {
			slog.Warn("health check failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
