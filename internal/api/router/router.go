package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/campusbot/course-ai-platform/internal/gateway"
	httpmiddleware "github.com/campusbot/course-ai-platform/internal/http/middleware"
	"github.com/campusbot/course-ai-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	Chat           *gateway.Handler
	Stats          *gateway.StatsHandler
	MetricsHandler http.Handler

	CORSAllowedOrigins []string

	// Per-client rate limit for the public message endpoint. Zero rate
	// disables limiting (useful in tests).
	MessageRatePerSec float64
	MessageBurst      int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", healthCheck)

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Public chat surface used by the embeddable widget.
	if cfg.Chat != nil {
		r.Route("/chat", func(chat chi.Router) {
			if cfg.MessageRatePerSec > 0 {
				chat.With(httpmiddleware.RateLimit(cfg.MessageRatePerSec, cfg.MessageBurst)).
					Post("/message", cfg.Chat.HandleMessage)
			} else {
				chat.Post("/message", cfg.Chat.HandleMessage)
			}
			chat.Get("/history", cfg.Chat.HandleHistory)
			chat.Get("/ws", cfg.Chat.HandleWebSocket)
			chat.Get("/widget.js", cfg.Chat.HandleWidgetJS)
			if cfg.Stats != nil {
				chat.Get("/stats", cfg.Stats.GetStats)
			}
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
