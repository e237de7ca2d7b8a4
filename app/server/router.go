package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/servicehub/provider-directory/app/api"
	"github.com/servicehub/provider-directory/app/categories"
	"github.com/servicehub/provider-directory/app/config"
	"github.com/servicehub/provider-directory/app/database"
	"github.com/servicehub/provider-directory/app/middleware"
	"github.com/servicehub/provider-directory/app/providers"
	"github.com/servicehub/provider-directory/models"
	"gorm.io/gorm"
)

const healthTimeout = 2 * time.Second

// NewRouter wires the directory endpoints onto db.
func NewRouter(cfg *config.Config, db *gorm.DB, logger *slog.Logger) http.Handler {
	categoryHandler := categories.NewCategoryHandler(models.NewCategoriesRepository(db))
	providerHandler := providers.NewProviderHandler(models.NewProvidersRepository(db), cfg.App.BaseURL)

	prefix := cfg.HTTP.Prefix
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+prefix+"/categories", categoryHandler.HandleGetAll)
	mux.HandleFunc("GET "+prefix+"/providers", providerHandler.HandleGet)
	mux.Handle("GET "+prefix+"/providers/{slug}",
		providerHandler.ResolveProvider(http.HandlerFunc(providerHandler.HandleGetProvider)))

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := database.Ping(ctx, db); err != nil {
			logger.WarnContext(r.Context(), "health check failed", "error", err)
			api.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		api.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.Handle("GET /storage/", http.StripPrefix("/storage/", http.FileServer(http.Dir(cfg.Storage.Dir))))

	mws := []middleware.Middleware{
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.Recover(logger),
	}
	if cfg.RateLimit.RPS > 0 {
		mws = append(mws, middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.TrustProxy).Middleware)
	}
	return middleware.Chain(jsonFallback(mux), mws...)
}

// jsonFallback answers requests that match no route with the JSON error
// envelope, keeping the status and Allow header the mux chose.
func jsonFallback(mux *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, pattern := mux.Handler(r)
		if pattern != "" {
			mux.ServeHTTP(w, r)
			return
		}

		capture := &statusCapture{header: http.Header{}, status: http.StatusOK}
		h.ServeHTTP(capture, r)
		if allow := capture.header.Get("Allow"); allow != "" {
			w.Header().Set("Allow", allow)
		}
		api.WriteError(w, capture.status, http.StatusText(capture.status))
	})
}

// statusCapture records the status a fallback handler writes and drops its
// body.
type statusCapture struct {
	header http.Header
	status int
}

func (c *statusCapture) Header() http.Header         { return c.header }
func (c *statusCapture) Write(b []byte) (int, error) { return len(b), nil }
func (c *statusCapture) WriteHeader(status int)      { c.status = status }
