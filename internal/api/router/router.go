// Package router wires the HTTP surface: the chat pipeline, session history,
// provider testing, health, and metrics.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mehdi-chebbi/k8s-chat/internal/http/handlers"
	httpmiddleware "github.com/mehdi-chebbi/k8s-chat/internal/http/middleware"
	"github.com/mehdi-chebbi/k8s-chat/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger             *logging.Logger
	Chat               *handlers.ChatHandler
	LLMTest            *handlers.LLMTestHandler
	Health             *handlers.HealthHandler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

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

	if cfg.Health != nil {
		r.Get("/health", cfg.Health.Health)
	}
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.Chat != nil {
		r.Post("/chat", cfg.Chat.Chat)
		r.Route("/sessions/{sessionID}/history", func(r chi.Router) {
			r.Get("/", cfg.Chat.GetHistory)
			r.Delete("/", cfg.Chat.DeleteHistory)
		})
	}
	if cfg.LLMTest != nil {
		r.Post("/llm/test", cfg.LLMTest.Test)
	}

	return r
}
